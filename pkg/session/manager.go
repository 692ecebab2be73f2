package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"voicechat/pkg/domain"
)

const (
	greetingMessage      = "Hello! How can I assist you today?"
	sendErrorMessage     = "Sorry, I encountered an error. Please try again."
	audioPlaceholderText = "[Audio message sent]"

	createFailedAlert  = "Failed to create new chat. Please try again."
	deleteFailedAlert  = "Failed to delete chat"
	deleteConfirmation = "Are you sure you want to delete this chat?"
)

type Gateway interface {
	CurrentConversation(ctx context.Context) (string, domain.Conversation, error)
	Conversations(ctx context.Context) (map[string]domain.Conversation, error)
	NewChat(ctx context.Context, mode string) (string, error)
	DeleteChat(ctx context.Context, conversationID string) error
	SendMessage(ctx context.Context, message, conversationID, mode string, generateImage bool) (*domain.ChatReply, error)
	SendAudio(ctx context.Context, audioBase64, conversationID, mode string, generateImage bool) (*domain.AudioReply, error)
	Upload(ctx context.Context, files []domain.UploadFile, mode string) (string, error)
}

type TranscriptRenderer interface {
	Append(sender domain.Sender, text string, timestamp float64)
	AppendImage(imageBase64 string, timestamp float64)
	Clear()
}

type SidebarView interface {
	Update(items []domain.SidebarItem)
}

type ModeView interface {
	SetMode(mode string)
}

type Alerter interface {
	Alert(message string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type Speaker interface {
	Speak(ctx context.Context, text string)
	Cancel()
}

// Manager owns the client-side conversation state: which conversation is
// active, which mode the UI selector shows, and how server responses fan
// out to the transcript and sidebar. One instance lives for one page
// session; there is no teardown.
type Manager struct {
	gateway    Gateway
	transcript TranscriptRenderer
	sidebar    SidebarView
	modeView   ModeView
	alerter    Alerter
	confirmer  Confirmer
	speaker    Speaker

	mu                    sync.Mutex
	currentConversationID string
	currentMode           string
}

func NewManager(
	gateway Gateway,
	transcript TranscriptRenderer,
	sidebar SidebarView,
	modeView ModeView,
	alerter Alerter,
	confirmer Confirmer,
	speaker Speaker,
) *Manager {
	return &Manager{
		gateway:     gateway,
		transcript:  transcript,
		sidebar:     sidebar,
		modeView:    modeView,
		alerter:     alerter,
		confirmer:   confirmer,
		speaker:     speaker,
		currentMode: domain.DefaultMode,
	}
}

// Initialize adopts the service's current conversation, or falls back to
// creating a fresh one. The fallback is unconditional: any gateway failure
// here means "no conversation yet", never a fatal error.
func (m *Manager) Initialize(ctx context.Context) {
	m.speaker.Cancel()

	id, conv, err := m.gateway.CurrentConversation(ctx)
	if err != nil {
		slog.DebugContext(ctx, "No current conversation, creating a new one", "reason", err)
		m.CreateNew(ctx, m.Mode())
		return
	}

	mode, _ := lo.Coalesce(conv.Mode, domain.DefaultMode)
	m.setState(id, mode)
	m.modeView.SetMode(mode)

	m.Load(ctx, id)
}

// CreateNew requests a fresh conversation seeded with mode (the current
// mode when empty). On success the transcript is replaced with a single
// synthesized greeting; on failure state is left untouched.
func (m *Manager) CreateNew(ctx context.Context, mode string) {
	m.speaker.Cancel()

	mode, _ = lo.Coalesce(mode, m.Mode(), domain.DefaultMode)

	id, err := m.gateway.NewChat(ctx, mode)
	if err != nil {
		slog.ErrorContext(ctx, "Creating new chat failed", "err", err)
		m.alerter.Alert(createFailedAlert)
		return
	}

	m.setState(id, mode)

	m.transcript.Clear()
	m.transcript.Append(domain.SenderBot, greetingMessage, 0)
	m.refreshSidebar(ctx)
}

// Load re-fetches the conversation list and replays the requested
// conversation. A missing id is silently ignored: a sidebar click may race
// a concurrent delete, and the current transcript must survive that.
func (m *Manager) Load(ctx context.Context, conversationID string) {
	m.speaker.Cancel()

	conversations, err := m.gateway.Conversations(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Fetching conversations failed", "err", err)
		return
	}

	conv, ok := conversations[conversationID]
	if !ok {
		return
	}

	mode, _ := lo.Coalesce(conv.Mode, domain.DefaultMode)
	m.setState(conversationID, mode)
	m.modeView.SetMode(mode)

	m.transcript.Clear()
	for _, turn := range conv.History {
		if turn.User != "" {
			m.transcript.Append(domain.SenderUser, turn.User, turn.Timestamp)
		}
		if turn.Bot != "" {
			m.transcript.Append(domain.SenderBot, turn.Bot, turn.Timestamp)
		}
		if turn.Image != "" {
			m.transcript.AppendImage(turn.Image, turn.Timestamp)
		}
	}

	m.refreshSidebar(ctx)
}

// Delete removes a conversation after user confirmation and refreshes the
// sidebar. It never reassigns the active conversation: deleting the
// current one leaves the session pointing at the dead id until the user
// loads or creates another. Review item for the product owner, kept as is.
func (m *Manager) Delete(ctx context.Context, conversationID string) {
	m.speaker.Cancel()

	if !m.confirmer.Confirm(deleteConfirmation) {
		return
	}

	if err := m.gateway.DeleteChat(ctx, conversationID); err != nil {
		slog.ErrorContext(ctx, "Deleting chat failed", "conversationID", conversationID, "err", err)
		m.alerter.Alert(deleteFailedAlert)
		return
	}

	m.refreshSidebar(ctx)
}

// Send submits a text turn. The user's entry is appended optimistically
// before the round-trip and is never rolled back; a gateway failure shows
// as a single bot-voiced error line.
func (m *Manager) Send(ctx context.Context, text string, generateImage bool) {
	m.speaker.Cancel()

	text = strings.TrimSpace(text)
	conversationID := m.ConversationID()
	if text == "" || conversationID == "" {
		return
	}

	m.transcript.Append(domain.SenderUser, text, 0)

	reply, err := m.gateway.SendMessage(ctx, text, conversationID, m.Mode(), generateImage)
	if err != nil {
		slog.ErrorContext(ctx, "Sending message failed", "err", err)
		m.transcript.Append(domain.SenderBot, sendErrorMessage, 0)
		m.refreshSidebar(ctx)
		return
	}

	if reply.Response != "" {
		m.transcript.Append(domain.SenderBot, reply.Response, 0)
	}
	if reply.Image != "" {
		m.transcript.AppendImage(reply.Image, 0)
	}

	m.refreshSidebar(ctx)
}

// SendAudio submits a recorded turn. The audio endpoint is authoritative
// for conversation identity, so its conversation_id is adopted even when
// it differs from the one sent. Unlike Send this never refreshes the
// sidebar; the asymmetry is preserved deliberately.
func (m *Manager) SendAudio(ctx context.Context, audioBase64 string, generateImage bool) {
	m.speaker.Cancel()

	conversationID := m.ConversationID()
	if conversationID == "" {
		return
	}

	m.transcript.Append(domain.SenderUser, audioPlaceholderText, 0)

	reply, err := m.gateway.SendAudio(ctx, audioBase64, conversationID, m.Mode(), generateImage)
	if err != nil {
		slog.ErrorContext(ctx, "Sending audio failed", "err", err)
		m.transcript.Append(domain.SenderSystem, err.Error(), 0)
		return
	}

	m.setState(reply.ConversationID, m.Mode())

	m.transcript.Append(domain.SenderUser, reply.UserMessage, 0)
	m.transcript.Append(domain.SenderBot, reply.Reply, 0)
	if reply.Image != "" {
		m.transcript.AppendImage(reply.Image, 0)
	}

	go m.speaker.Speak(context.WithoutCancel(ctx), reply.Reply)
}

// SetMode switches the persona profile for subsequent turns.
func (m *Manager) SetMode(mode string) {
	m.mu.Lock()
	m.currentMode = mode
	m.mu.Unlock()

	m.transcript.Append(domain.SenderSystem, "Mode changed to: "+mode, 0)
}

// Upload ships the selected files to the knowledge endpoint. Progress and
// outcome both surface as system transcript lines.
func (m *Manager) Upload(ctx context.Context, files []domain.UploadFile) {
	if len(files) == 0 {
		m.transcript.Append(domain.SenderSystem, "Please select at least one file", 0)
		return
	}

	var merr *multierror.Error
	for i, f := range files {
		if f.Name == "" {
			merr = multierror.Append(merr, fmt.Errorf("file %d has no name", i+1))
		}
		if len(f.Data) == 0 {
			merr = multierror.Append(merr, fmt.Errorf("file %q is empty", f.Name))
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		m.transcript.Append(domain.SenderSystem, err.Error(), 0)
		return
	}

	m.transcript.Append(domain.SenderSystem, fmt.Sprintf("Uploading %d file(s)...", len(files)), 0)

	message, err := m.gateway.Upload(ctx, files, m.Mode())
	if err != nil {
		slog.ErrorContext(ctx, "Uploading files failed", "err", err)
		m.transcript.Append(domain.SenderSystem, err.Error(), 0)
		return
	}

	m.transcript.Append(domain.SenderSystem, message, 0)
}

// ConversationID returns the active conversation id, empty until the first
// successful Initialize or CreateNew.
func (m *Manager) ConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentConversationID
}

// Mode returns the active persona mode.
func (m *Manager) Mode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentMode
}

func (m *Manager) setState(conversationID, mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentConversationID = conversationID
	m.currentMode = mode
}

// refreshSidebar recomputes the full conversation list, newest first.
// No incremental patching: correctness over efficiency at these sizes.
func (m *Manager) refreshSidebar(ctx context.Context) {
	conversations, err := m.gateway.Conversations(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Refreshing sidebar failed", "err", err)
		return
	}

	sorted := lo.Values(conversations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastUpdated > sorted[j].LastUpdated
	})

	currentID := m.ConversationID()
	items := lo.Map(sorted, func(conv domain.Conversation, _ int) domain.SidebarItem {
		return domain.SidebarItem{
			ID:     conv.ID,
			Title:  conv.Title,
			Active: conv.ID == currentID,
		}
	})

	m.sidebar.Update(items)
}
