package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voicechat/pkg/domain"
)

type fakeView struct {
	entries []domain.TranscriptEntry
	events  []string
}

func (f *fakeView) Append(entry domain.TranscriptEntry) {
	f.entries = append(f.entries, entry)
	f.events = append(f.events, "append")
}

func (f *fakeView) ScrollToBottom() {
	f.events = append(f.events, "scroll")
}

func (f *fakeView) Clear() {
	f.entries = nil
	f.events = append(f.events, "clear")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "full line bold becomes subheading",
			in:   "**Title**",
			want: "<h5>Title</h5>",
		},
		{
			name: "numbered heading with colon",
			in:   "1. **First**: details here",
			want: "<h6>1. First:</h6><p>details here</p>",
		},
		{
			name: "numbered heading with dash and leading whitespace",
			in:   "  2. **Second** - more detail",
			want: "<h6>2. Second -</h6><p>more detail</p>",
		},
		{
			name: "inline bold",
			in:   "say **hi** now",
			want: "say <strong>hi</strong> now",
		},
		{
			name: "list item wraps whole message",
			in:   "* item",
			want: "<ul><li>item</li></ul>",
		},
		{
			name: "newlines become breaks",
			in:   "line1\nline2",
			want: "line1<br>line2",
		},
		{
			name: "subheading wins over inline bold",
			in:   "**Head**\nsay **hi**",
			want: "<h5>Head</h5><br>say <strong>hi</strong>",
		},
		{
			name: "list wrap covers non-list lines too",
			in:   "intro\n* a\n* b",
			want: "<ul>intro<br><li>a</li><br><li>b</li></ul>",
		},
		{
			name: "plain text untouched",
			in:   "just words",
			want: "just words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestAppendScrollsSynchronouslyWithEachEntry(t *testing.T) {
	view := &fakeView{}
	r := NewRenderer(view)

	r.Append(domain.SenderBot, "one", 0)
	r.Append(domain.SenderBot, "two", 0)

	assert.Equal(t, []string{"append", "scroll", "append", "scroll"}, view.events)
}

func TestAppendFormatsBotTextOnly(t *testing.T) {
	view := &fakeView{}
	r := NewRenderer(view)

	r.Append(domain.SenderBot, "**Title**", 0)
	r.Append(domain.SenderUser, "**Title** <b>", 0)

	assert.Equal(t, "<h5>Title</h5>", view.entries[0].HTML)
	assert.Equal(t, "**Title** &lt;b&gt;", view.entries[1].HTML)
}

func TestAppendImageProducesSeparateBotEntry(t *testing.T) {
	view := &fakeView{}
	r := NewRenderer(view)

	r.Append(domain.SenderBot, "here you go", 0)
	r.AppendImage("aW1hZ2U=", 0)

	assert.Len(t, view.entries, 2)
	assert.Empty(t, view.entries[0].Image)
	assert.Equal(t, domain.SenderBot, view.entries[1].Sender)
	assert.Equal(t, "aW1hZ2U=", view.entries[1].Image)
	assert.Empty(t, view.entries[1].HTML)
}

func TestAppendCarriesTimestamp(t *testing.T) {
	view := &fakeView{}
	r := NewRenderer(view)

	r.Append(domain.SenderUser, "hi", 1700000000)

	assert.Equal(t, float64(1700000000), view.entries[0].Timestamp)
}

func TestClear(t *testing.T) {
	view := &fakeView{}
	r := NewRenderer(view)

	r.Append(domain.SenderBot, "one", 0)
	r.Clear()

	assert.Empty(t, view.entries)
}
