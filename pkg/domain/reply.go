package domain

// ChatReply is the usable part of a text turn response. Response and Image
// are independent; either or both may be set.
type ChatReply struct {
	Response string
	Image    string
}

// AudioReply is the usable part of an audio turn response. The service is
// authoritative for conversation identity on this path, so ConversationID
// may differ from the id the caller sent.
type AudioReply struct {
	ConversationID string
	UserMessage    string
	Reply          string
	Image          string
}
