package web

import "encoding/json"

// MessageType discriminates envelopes on the browser bridge.
type MessageType string

// Outbound: controller to page.
const (
	TypeTranscriptAppend MessageType = "transcript_append"
	TypeTranscriptClear  MessageType = "transcript_clear"
	TypeTranscriptScroll MessageType = "transcript_scroll"
	TypeSidebar          MessageType = "sidebar"
	TypeMode             MessageType = "mode"
	TypeAlert            MessageType = "alert"
	TypeConfirm          MessageType = "confirm"
	TypeRecording        MessageType = "recording"
	TypeSpeak            MessageType = "speak"
	TypeSpeakAudio       MessageType = "speak_audio"
	TypeSpeechCancel     MessageType = "speech_cancel"
	TypeMicQuery         MessageType = "mic_query"
	TypeMicOpen          MessageType = "mic_open"
	TypeMicStop          MessageType = "mic_stop"
)

// Inbound: page to controller.
const (
	TypeSend          MessageType = "send"
	TypeNewChat       MessageType = "new_chat"
	TypeLoadChat      MessageType = "load_chat"
	TypeDeleteChat    MessageType = "delete_chat"
	TypeSetMode       MessageType = "set_mode"
	TypeUpload        MessageType = "upload"
	TypeRecordStart   MessageType = "record_start"
	TypeRecordStop    MessageType = "record_stop"
	TypeRequestMic    MessageType = "request_mic"
	TypeConfirmResult MessageType = "confirm_result"
	TypeMicPermission MessageType = "mic_permission"
	TypeMicOpened     MessageType = "mic_opened"
	TypeAudioChunk    MessageType = "audio_chunk"
	TypeAudioDone     MessageType = "audio_done"
)

// Envelope is the wire frame for every bridge message.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type TranscriptAppendPayload struct {
	Sender    string  `json:"sender"`
	Label     string  `json:"label"`
	HTML      string  `json:"html,omitempty"`
	Image     string  `json:"image,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

type SidebarPayload struct {
	Items []SidebarItemPayload `json:"items"`
}

type SidebarItemPayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type ModePayload struct {
	Mode string `json:"mode"`
}

type AlertPayload struct {
	Message string `json:"message"`
}

type ConfirmPayload struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

type ConfirmResultPayload struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

type RecordingPayload struct {
	Recording bool `json:"recording"`
}

type SpeakPayload struct {
	Text string `json:"text"`
}

type SpeakAudioPayload struct {
	Audio string `json:"audio"` // base64 MP3
}

type MicRequestPayload struct {
	ID string `json:"id"`
}

type MicPermissionPayload struct {
	ID        string `json:"id"`
	Supported bool   `json:"supported"`
	Granted   bool   `json:"granted"`
}

type MicOpenedPayload struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type AudioChunkPayload struct {
	Data string `json:"data"` // base64 fragment
}

type SendPayload struct {
	Text          string `json:"text"`
	GenerateImage bool   `json:"generate_image"`
}

type NewChatPayload struct {
	Mode string `json:"mode,omitempty"`
}

type LoadChatPayload struct {
	ConversationID string `json:"conversation_id"`
}

type DeleteChatPayload struct {
	ConversationID string `json:"conversation_id"`
}

type RecordStopPayload struct {
	GenerateImage bool `json:"generate_image"`
}

type UploadPayload struct {
	Files []UploadFilePayload `json:"files"`
}

type UploadFilePayload struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64 contents
}
