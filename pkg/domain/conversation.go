package domain

const DefaultMode = "pakistan"

// Conversation is the server-owned chat session. The client keeps a
// read-through copy of the one being displayed plus summaries for the
// sidebar; the collaborator service is the source of truth.
type Conversation struct {
	ID          string
	Mode        string
	Title       string
	LastUpdated float64
	History     []Turn
}

// Turn is one record in a conversation history. All fields are optional
// and not mutually exclusive: a turn may carry user text, bot text, an
// image, any combination, or (degenerately) none.
type Turn struct {
	User      string
	Bot       string
	Image     string // base64 PNG bytes
	Timestamp float64
}
