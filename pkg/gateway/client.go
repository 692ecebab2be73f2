package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"voicechat/pkg/domain"
)

// Client wraps the collaborator chat service endpoints one to one. Every
// method makes exactly one attempt; retry policy belongs to the caller.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is empty")
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
	}, nil
}

func (c *Client) CurrentConversation(ctx context.Context) (string, domain.Conversation, error) {
	var out currentConversationResponse
	if err := c.getJSON(ctx, "/api/current_conversation", &out); err != nil {
		return "", domain.Conversation{}, err
	}
	conv := out.Conversation.toDomain(out.ConversationID)
	return out.ConversationID, conv, nil
}

func (c *Client) Conversations(ctx context.Context) (map[string]domain.Conversation, error) {
	var out conversationsResponse
	if err := c.getJSON(ctx, "/api/conversations", &out); err != nil {
		return nil, err
	}

	conversations := make(map[string]domain.Conversation, len(out.Conversations))
	for id, payload := range out.Conversations {
		conversations[id] = payload.toDomain(id)
	}
	return conversations, nil
}

func (c *Client) NewChat(ctx context.Context, mode string) (string, error) {
	var out newChatResponse
	if err := c.postJSON(ctx, "/api/new_chat", newChatRequest{Mode: mode}, &out); err != nil {
		return "", err
	}
	if out.Status != "success" || out.ConversationID == "" {
		return "", &domain.GatewayError{Message: "chat service did not return a conversation id"}
	}
	return out.ConversationID, nil
}

func (c *Client) DeleteChat(ctx context.Context, conversationID string) error {
	var out deleteChatResponse
	if err := c.postJSON(ctx, "/api/delete_chat", deleteChatRequest{ConversationID: conversationID}, &out); err != nil {
		return err
	}
	if out.Status != "success" {
		return &domain.GatewayError{Message: "chat service did not confirm deletion"}
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, message, conversationID, mode string, generateImage bool) (*domain.ChatReply, error) {
	req := chatRequest{
		Message:        message,
		ConversationID: conversationID,
		Mode:           mode,
		GenerateImage:  generateImage,
	}
	var out chatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &domain.ChatReply{Response: out.Response, Image: out.Image}, nil
}

func (c *Client) SendAudio(ctx context.Context, audioBase64, conversationID, mode string, generateImage bool) (*domain.AudioReply, error) {
	req := audioChatRequest{
		Audio:          audioBase64,
		ConversationID: conversationID,
		Mode:           mode,
		GenerateImage:  generateImage,
	}
	var out audioChatResponse
	if err := c.postJSON(ctx, "/chat-audio", req, &out); err != nil {
		return nil, err
	}
	return &domain.AudioReply{
		ConversationID: out.ConversationID,
		UserMessage:    out.UserMessage,
		Reply:          out.Reply,
		Image:          out.Image,
	}, nil
}

// Upload posts the selected files as multipart form data and returns the
// service's status message.
func (c *Client) Upload(ctx context.Context, files []domain.UploadFile, mode string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return "", fmt.Errorf("creating form file %q: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return "", fmt.Errorf("writing form file %q: %w", f.Name, err)
		}
	}
	if err := mw.WriteField("mode", mode); err != nil {
		return "", fmt.Errorf("writing mode field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromBody(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    "unexpected response from chat service",
		}
	}
	return nil
}

func (c *Client) errorFromBody(resp *http.Response) error {
	gwErr := &domain.GatewayError{StatusCode: resp.StatusCode}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return gwErr
	}

	var body errorBody
	if err := json.Unmarshal(bodyBytes, &body); err == nil {
		if body.Message != "" {
			gwErr.Message = body.Message
		} else if body.Error != "" {
			gwErr.Message = body.Error
		}
	}
	return gwErr
}

func (p conversationPayload) toDomain(id string) domain.Conversation {
	conv := domain.Conversation{
		ID:          id,
		Mode:        p.Mode,
		Title:       p.Title,
		LastUpdated: p.LastUpdated,
		History:     make([]domain.Turn, 0, len(p.History)),
	}
	for _, t := range p.History {
		conv.History = append(conv.History, domain.Turn{
			User:      t.User,
			Bot:       t.Bot,
			Image:     t.Image,
			Timestamp: t.Timestamp,
		})
	}
	return conv
}
