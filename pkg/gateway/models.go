package gateway

// Wire types for the collaborator chat service. Field names are fixed by
// its contract; see the endpoint table in the service docs.

type conversationPayload struct {
	Title       string        `json:"title"`
	Mode        string        `json:"mode"`
	LastUpdated float64       `json:"last_updated"`
	History     []turnPayload `json:"history"`
}

type turnPayload struct {
	User      string  `json:"user,omitempty"`
	Bot       string  `json:"bot,omitempty"`
	Image     string  `json:"image,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

type currentConversationResponse struct {
	ConversationID string              `json:"conversation_id"`
	Conversation   conversationPayload `json:"conversation"`
}

type conversationsResponse struct {
	Conversations map[string]conversationPayload `json:"conversations"`
}

type newChatRequest struct {
	Mode string `json:"mode"`
}

type newChatResponse struct {
	Status         string `json:"status"`
	ConversationID string `json:"conversation_id"`
	Mode           string `json:"mode"`
}

type deleteChatRequest struct {
	ConversationID string `json:"conversation_id"`
}

type deleteChatResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Mode           string `json:"mode"`
	GenerateImage  bool   `json:"generate_image"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Mode           string `json:"mode"`
	Image          string `json:"image"`
}

type audioChatRequest struct {
	Audio          string `json:"audio"`
	ConversationID string `json:"conversation_id"`
	Mode           string `json:"mode"`
	GenerateImage  bool   `json:"generate_image"`
}

type audioChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
	UserMessage    string `json:"user_message"`
	AudioBase64    string `json:"audio_base64"`
	Image          string `json:"image"`
}

type uploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorBody covers both failure shapes the service emits.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
