package domain

type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// Label is the fixed display name shown above a transcript entry.
func (s Sender) Label() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderSystem:
		return "System"
	default:
		return "Chatbot"
	}
}

// TranscriptEntry is one rendered block in the transcript view. Either
// HTML or Image is set, never both.
type TranscriptEntry struct {
	Sender    Sender
	HTML      string
	Image     string // base64 PNG bytes
	Timestamp float64
}
