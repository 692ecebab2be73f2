package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voicechat/pkg/capture"
	"voicechat/pkg/domain"
	"voicechat/pkg/logger"
)

const (
	confirmTimeout = 2 * time.Minute
	micTimeout     = 10 * time.Second
)

// Conn is one page session. It carries every controller-to-page signal as
// an envelope and implements the session and capture collaborator
// interfaces, so the managers stay unaware of the websocket underneath.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan json.RawMessage

	audioMu sync.Mutex
	audioCh chan []byte
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:      ws,
		pending: make(map[string]chan json.RawMessage),
	}
}

func (c *Conn) send(msgType MessageType, payload any) {
	data, err := MarshalEnvelope(msgType, payload)
	if err != nil {
		slog.Error("Encoding envelope failed", "type", msgType, logger.Err(err))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("Writing to page failed", "type", msgType, logger.Err(err))
	}
}

// Append implements transcript.View.
func (c *Conn) Append(entry domain.TranscriptEntry) {
	c.send(TypeTranscriptAppend, TranscriptAppendPayload{
		Sender:    string(entry.Sender),
		Label:     entry.Sender.Label(),
		HTML:      entry.HTML,
		Image:     entry.Image,
		Timestamp: entry.Timestamp,
	})
}

// ScrollToBottom implements transcript.View.
func (c *Conn) ScrollToBottom() {
	c.send(TypeTranscriptScroll, nil)
}

// Clear implements transcript.View.
func (c *Conn) Clear() {
	c.send(TypeTranscriptClear, nil)
}

// Update implements session.SidebarView.
func (c *Conn) Update(items []domain.SidebarItem) {
	payload := SidebarPayload{Items: make([]SidebarItemPayload, 0, len(items))}
	for _, item := range items {
		payload.Items = append(payload.Items, SidebarItemPayload{
			ID:     item.ID,
			Title:  item.Title,
			Active: item.Active,
		})
	}
	c.send(TypeSidebar, payload)
}

// SetMode implements session.ModeView.
func (c *Conn) SetMode(mode string) {
	c.send(TypeMode, ModePayload{Mode: mode})
}

// Alert implements session.Alerter and capture.Alerter.
func (c *Conn) Alert(message string) {
	c.send(TypeAlert, AlertPayload{Message: message})
}

// SetRecording implements capture.RecorderView.
func (c *Conn) SetRecording(recording bool) {
	c.send(TypeRecording, RecordingPayload{Recording: recording})
}

// Speak implements session.Speaker via the page's speech synthesis.
func (c *Conn) Speak(_ context.Context, text string) {
	c.send(TypeSpeak, SpeakPayload{Text: text})
}

// Cancel implements session.Speaker.
func (c *Conn) Cancel() {
	c.send(TypeSpeechCancel, nil)
}

// PlayAudio implements speech.AudioSink for the server-side TTS speaker.
func (c *Conn) PlayAudio(audioBase64 string) {
	c.send(TypeSpeakAudio, SpeakAudioPayload{Audio: audioBase64})
}

// StopAudio implements speech.AudioSink.
func (c *Conn) StopAudio() {
	c.send(TypeSpeechCancel, nil)
}

// Confirm implements session.Confirmer with a correlated round-trip to the
// page's confirm dialog. An unanswered dialog counts as declined.
func (c *Conn) Confirm(prompt string) bool {
	id := uuid.NewString()
	ch := c.register(id)
	defer c.drop(id)

	c.send(TypeConfirm, ConfirmPayload{ID: id, Prompt: prompt})

	select {
	case raw := <-ch:
		result, err := UnmarshalPayload[ConfirmResultPayload](raw)
		if err != nil {
			slog.Warn("Decoding confirm result failed", logger.Err(err))
			return false
		}
		return result.OK
	case <-time.After(confirmTimeout):
		return false
	}
}

// QueryPermission implements capture.Device. A page without the
// permissions API answers unsupported, which surfaces here as an error so
// the controller falls back to probing via a real capture request.
func (c *Conn) QueryPermission(ctx context.Context) (bool, error) {
	id := uuid.NewString()
	ch := c.register(id)
	defer c.drop(id)

	c.send(TypeMicQuery, MicRequestPayload{ID: id})

	select {
	case raw := <-ch:
		result, err := UnmarshalPayload[MicPermissionPayload](raw)
		if err != nil {
			return false, fmt.Errorf("decoding permission result: %w", err)
		}
		if !result.Supported {
			return false, errors.New("permissions query unsupported")
		}
		return result.Granted, nil
	case <-time.After(micTimeout):
		return false, errors.New("permission query timed out")
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Capture implements capture.Device: it asks the page to start its
// recorder and returns the stream its chunks arrive on. The stream is
// exclusive; a second open while one is live fails.
func (c *Conn) Capture(ctx context.Context) (capture.Stream, error) {
	c.audioMu.Lock()
	if c.audioCh != nil {
		c.audioMu.Unlock()
		return nil, errors.New("capture stream already open")
	}
	audioCh := make(chan []byte, 64)
	c.audioCh = audioCh
	c.audioMu.Unlock()

	id := uuid.NewString()
	ch := c.register(id)
	defer c.drop(id)

	c.send(TypeMicOpen, MicRequestPayload{ID: id})

	select {
	case raw := <-ch:
		result, err := UnmarshalPayload[MicOpenedPayload](raw)
		if err != nil {
			c.closeAudio()
			return nil, fmt.Errorf("decoding capture result: %w", err)
		}
		if !result.OK {
			c.closeAudio()
			return nil, fmt.Errorf("page recorder failed: %s", result.Error)
		}
		return &browserStream{conn: c, chunks: audioCh}, nil
	case <-time.After(micTimeout):
		c.closeAudio()
		return nil, errors.New("capture request timed out")
	case <-ctx.Done():
		c.closeAudio()
		return nil, ctx.Err()
	}
}

// browserStream is the page-resident recorder seen from the controller
// side. Stop tells the page to release its tracks; the chunk channel
// closes when the page acknowledges with audio_done.
type browserStream struct {
	conn   *Conn
	chunks chan []byte
}

func (s *browserStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *browserStream) Stop() error {
	s.conn.send(TypeMicStop, nil)
	return nil
}

func (c *Conn) register(id string) chan json.RawMessage {
	ch := make(chan json.RawMessage, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	return ch
}

func (c *Conn) drop(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

func (c *Conn) resolve(raw json.RawMessage) {
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil || ref.ID == "" {
		slog.Warn("Reply without correlation id dropped")
		return
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[ref.ID]
	c.pendingMu.Unlock()
	if !ok {
		return
	}
	// Never block the read loop on a reply; a duplicate for the same id
	// is dropped instead.
	select {
	case ch <- raw:
	default:
		slog.Warn("Duplicate reply dropped", "id", ref.ID)
	}
}

func (c *Conn) pushAudio(dataBase64 string) {
	chunk, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		slog.Warn("Dropping undecodable audio chunk", logger.Err(err))
		return
	}

	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	if c.audioCh == nil {
		return
	}
	select {
	case c.audioCh <- chunk:
	default:
		slog.Warn("Audio buffer full, dropping chunk")
	}
}

func (c *Conn) closeAudio() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	if c.audioCh != nil {
		close(c.audioCh)
		c.audioCh = nil
	}
}

// Run pumps inbound envelopes until the connection drops. Correlated
// replies and audio frames are handled inline; everything else is a user
// action dispatched through the router on its own goroutine, so a blocked
// confirm dialog cannot stall the read side.
func (c *Conn) Run(ctx context.Context, router *Router) {
	defer c.closeAudio()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			slog.DebugContext(ctx, "Page connection closed", logger.Err(err))
			return
		}

		msgType, payload, err := UnmarshalEnvelope(data)
		if err != nil {
			slog.WarnContext(ctx, "Dropping malformed envelope", logger.Err(err))
			continue
		}

		switch msgType {
		case TypeConfirmResult, TypeMicPermission, TypeMicOpened:
			c.resolve(payload)
		case TypeAudioChunk:
			chunk, err := UnmarshalPayload[AudioChunkPayload](payload)
			if err != nil {
				slog.WarnContext(ctx, "Dropping malformed audio chunk", logger.Err(err))
				continue
			}
			c.pushAudio(chunk.Data)
		case TypeAudioDone:
			c.closeAudio()
		default:
			go router.Route(ctx, msgType, payload)
		}
	}
}
