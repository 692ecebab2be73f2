package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicechat/pkg/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return c
}

func TestCurrentConversation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/current_conversation", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"conversation_id": "c1",
			"conversation": map[string]any{
				"title":        "First chat",
				"mode":         "pakistan",
				"last_updated": 1700000000.5,
				"history": []map[string]any{
					{"user": "hi", "bot": "hello", "timestamp": 1700000000.5},
				},
			},
		})
	})

	id, conv, err := c.CurrentConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
	assert.Equal(t, "pakistan", conv.Mode)
	require.Len(t, conv.History, 1)
	assert.Equal(t, "hi", conv.History[0].User)
	assert.Equal(t, "hello", conv.History[0].Bot)
}

func TestConversations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"conversations": map[string]any{
				"c1": map[string]any{"title": "One", "mode": "general", "last_updated": 1.0},
				"c2": map[string]any{"title": "Two", "mode": "pakistan", "last_updated": 2.0},
			},
		})
	})

	conversations, err := c.Conversations(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "c2", conversations["c2"].ID)
	assert.Equal(t, "Two", conversations["c2"].Title)
}

func TestNewChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/new_chat", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pakistan", body["mode"])

		json.NewEncoder(w).Encode(map[string]any{"status": "success", "conversation_id": "c9"})
	})

	id, err := c.NewChat(context.Background(), "pakistan")
	require.NoError(t, err)
	assert.Equal(t, "c9", id)
}

func TestNewChatWithoutConversationID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	})

	_, err := c.NewChat(context.Background(), "pakistan")
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
}

func TestSendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["message"])
		assert.Equal(t, "c1", body["conversation_id"])
		assert.Equal(t, "pakistan", body["mode"])
		assert.Equal(t, true, body["generate_image"])

		json.NewEncoder(w).Encode(map[string]any{"response": "hi there", "image": "aW1n"})
	})

	reply, err := c.SendMessage(context.Background(), "hello", "c1", "pakistan", true)
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply.Response)
	assert.Equal(t, "aW1n", reply.Image)
}

func TestSendMessageServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": "model exploded"})
	})

	_, err := c.SendMessage(context.Background(), "hello", "c1", "pakistan", false)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusInternalServerError, gwErr.StatusCode)
	assert.Equal(t, "model exploded", gwErr.Error())
}

func TestSendMessageMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.SendMessage(context.Background(), "hello", "c1", "pakistan", false)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
}

func TestSendAudio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat-audio", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "YXVkaW8=", body["audio"])

		json.NewEncoder(w).Encode(map[string]any{
			"conversation_id": "c2",
			"user_message":    "what time is it",
			"reply":           "half past nine",
		})
	})

	reply, err := c.SendAudio(context.Background(), "YXVkaW8=", "c1", "pakistan", false)
	require.NoError(t, err)
	assert.Equal(t, "c2", reply.ConversationID)
	assert.Equal(t, "what time is it", reply.UserMessage)
	assert.Equal(t, "half past nine", reply.Reply)
}

func TestSendAudioErrorCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"message": "No audio provided"})
	})

	_, err := c.SendAudio(context.Background(), "", "c1", "pakistan", false)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "No audio provided", gwErr.Error())
}

func TestDeleteChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/delete_chat", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c1", body["conversation_id"])

		json.NewEncoder(w).Encode(map[string]any{"status": "success", "message": "Chat deleted"})
	})

	require.NoError(t, c.DeleteChat(context.Background(), "c1"))
}

func TestDeleteChatUnconfirmed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "not yours"})
	})

	err := c.DeleteChat(context.Background(), "c1")

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "pakistan", r.FormValue("mode"))

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Filename)
		assert.Equal(t, "b.txt", files[1].Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "File(s) processed successfully",
		})
	})

	message, err := c.Upload(context.Background(), []domain.UploadFile{
		{Name: "a.txt", Data: []byte("alpha")},
		{Name: "b.txt", Data: []byte("beta")},
	}, "pakistan")
	require.NoError(t, err)
	assert.Equal(t, "File(s) processed successfully", message)
}
