package transcript

import (
	"html"
	"regexp"
	"strings"

	"voicechat/pkg/domain"
)

// View is the presentation surface the renderer drives. The browser bridge
// implements it by mirroring calls to the page; tests implement it with a
// slice.
type View interface {
	Append(entry domain.TranscriptEntry)
	ScrollToBottom()
	Clear()
}

// Renderer turns raw message text into transcript entries. Formatting is
// applied to bot and system text only; user text is inserted as plain
// content.
type Renderer struct {
	view View
}

func NewRenderer(view View) *Renderer {
	return &Renderer{view: view}
}

// Append renders one text entry and scrolls the view. The scroll happens
// synchronously with the append so that replaying a burst of history ends
// at the true bottom, not an intermediate position.
func (r *Renderer) Append(sender domain.Sender, text string, timestamp float64) {
	markup := Format(text)
	if sender == domain.SenderUser {
		markup = plainText(text)
	}

	r.view.Append(domain.TranscriptEntry{
		Sender:    sender,
		HTML:      markup,
		Timestamp: timestamp,
	})
	r.view.ScrollToBottom()
}

// AppendImage renders a generated image as its own bot-voiced entry,
// separate from any text entry of the same turn.
func (r *Renderer) AppendImage(imageBase64 string, timestamp float64) {
	r.view.Append(domain.TranscriptEntry{
		Sender:    domain.SenderBot,
		Image:     imageBase64,
		Timestamp: timestamp,
	})
	r.view.ScrollToBottom()
}

// Clear empties the transcript view.
func (r *Renderer) Clear() {
	r.view.Clear()
}

var (
	subheadingRe   = regexp.MustCompile(`(?m)^\*\*(.*?)\*\*$`)
	numberedHeadRe = regexp.MustCompile(`(?m)^\s*(\d+)\.\s\*\*(.+?)\*\*(:| -)\s*(.+)$`)
	boldRe         = regexp.MustCompile(`\*\*(.+?)\*\*`)
	listItemRe     = regexp.MustCompile(`(?m)^\*\s(.+)$`)
)

// Format applies the bot-reply markup rules. The rules run in this exact
// order; later rules must not re-match output produced by earlier ones.
func Format(text string) string {
	formatted := subheadingRe.ReplaceAllString(text, "<h5>${1}</h5>")
	formatted = numberedHeadRe.ReplaceAllString(formatted, "<h6>${1}. ${2}${3}</h6><p>${4}</p>")
	formatted = boldRe.ReplaceAllString(formatted, "<strong>${1}</strong>")
	formatted = listItemRe.ReplaceAllString(formatted, "<li>${1}</li>")
	formatted = strings.ReplaceAll(formatted, "\n", "<br>")

	// The wrap is intentionally coarse: one list item puts the whole
	// message inside the list container.
	if strings.Contains(formatted, "<li>") {
		formatted = "<ul>" + formatted + "</ul>"
	}

	return formatted
}

func plainText(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
