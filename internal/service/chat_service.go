package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"kbchat-backend/internal/config"
	"kbchat-backend/internal/export"
	"kbchat-backend/internal/model"
	"kbchat-backend/internal/qa"
	"kbchat-backend/internal/storage"
	"kbchat-backend/pkg/logger"

	"github.com/google/uuid"
)

const (
	defaultTitlePrefix = "New Chat"
	maxTitleRunes      = 30

	genericFailure = "Failed to get response. Please try again."
)

// QueryClient is the outbound dependency of SendMessage: one round-trip to
// the QA backend with the resolved mode string.
type QueryClient interface {
	Ask(ctx context.Context, question, backendMode string) (*qa.AskResponse, error)
}

// ChatService owns the session collection, the active session and the
// conversation state machine. All mutations persist through the injected
// Storage; persistence failures are logged and swallowed, the in-memory
// state stays authoritative.
type ChatService struct {
	storage storage.Storage
	backend QueryClient

	mu           sync.Mutex
	sessions     []*model.Session // most-recent-first
	current      *model.Session
	chatMode     model.Mode
	citationMode bool
	inFlight     bool
}

func NewChatService(cfg *config.Config, store storage.Storage, backend QueryClient) *ChatService {
	s := &ChatService{
		storage:      store,
		backend:      backend,
		chatMode:     model.ParseMode(cfg.Chat.DefaultMode),
		citationMode: cfg.Chat.CitationMode,
	}

	sessions, err := store.LoadSessions()
	if err != nil {
		logger.Errorf("Failed to load stored sessions: %v", err)
		sessions = []*model.Session{}
	}
	s.sessions = sessions

	if mode, err := store.LoadMode(); err != nil {
		logger.Errorf("Failed to load stored mode: %v", err)
	} else if mode != "" {
		s.chatMode = mode
	}

	if activeID, err := store.LoadActiveSession(); err != nil {
		logger.Errorf("Failed to load active session pointer: %v", err)
	} else if activeID != "" {
		s.current = s.findSession(activeID)
	}

	// if sessions exist, exactly one is current
	if s.current == nil && len(s.sessions) > 0 {
		s.current = s.sessions[0]
	}

	return s
}

// CreateNewSession allocates a fresh session, inserts it at the head of the
// collection and makes it current. Other sessions are untouched.
func (s *ChatService) CreateNewSession() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createNewSessionLocked()
}

func (s *ChatService) createNewSessionLocked() *model.Session {
	now := time.Now()
	session := &model.Session{
		ID:        fmt.Sprintf("%d", now.UnixNano()),
		Title:     defaultTitlePrefix + " " + now.Format("2006-01-02 15:04"),
		Messages:  make([]model.Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.sessions = append([]*model.Session{session}, s.sessions...)
	s.current = session

	s.persistSessionsLocked()
	s.persistActiveLocked()

	return session
}

func (s *ChatService) ensureSessionLocked() *model.Session {
	if s.current != nil {
		return s.current
	}
	return s.createNewSessionLocked()
}

// LoadSession makes the session with the given id current. Unknown ids are
// ignored: a stale reference must not disturb the current state.
func (s *ChatService) LoadSession(sessionID string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findSession(sessionID)
	if session == nil {
		logger.Debugf("Load of unknown session %s ignored", sessionID)
		return nil
	}

	s.current = session
	s.persistActiveLocked()

	return session
}

// SendMessage runs one conversation turn: optimistic commit of the user
// message, one backend round-trip, then the bot (or error) commit. Empty
// content and sends while a request is in flight are rejected as no-ops;
// the returned message is nil in that case.
func (s *ChatService) SendMessage(ctx context.Context, content string) *model.Message {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		logger.Debugf("Send rejected, request already in flight")
		return nil
	}
	s.inFlight = true

	// cleared last, whatever path the send takes
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	session := s.ensureSessionLocked()

	userMsg := model.Message{
		ID:        uuid.New().String(),
		Content:   content,
		Sender:    model.SenderUser,
		Timestamp: time.Now(),
	}
	session.Messages = append(session.Messages, userMsg)
	session.UpdatedAt = time.Now()

	// 如果这是第一条用户消息，并且会话标题是默认标题，则更新标题
	if len(session.Messages) == 1 && strings.HasPrefix(session.Title, defaultTitlePrefix) {
		session.Title = truncateTitle(content, maxTitleRunes)
	}

	// commit before the network call so a reload during the pending request
	// does not lose the user's question
	s.persistSessionsLocked()

	backendMode := s.chatMode.BackendString()
	citationMode := s.citationMode
	s.mu.Unlock()

	resp, err := s.backend.Ask(ctx, content, backendMode)

	var botMsg model.Message
	if err != nil {
		logger.Errorf("Backend request failed: %v", err)
		detail := err.Error()
		if detail == "" {
			detail = genericFailure
		}
		botMsg = model.Message{
			ID:        uuid.New().String(),
			Content:   "Error: " + detail,
			Sender:    model.SenderBot,
			Timestamp: time.Now(),
			IsError:   true,
		}
	} else {
		botMsg = model.Message{
			ID:        uuid.New().String(),
			Content:   resp.AnswerDisplayText,
			Sender:    model.SenderBot,
			Timestamp: time.Now(),
		}
		if citations := qa.NormalizeSources(resp.SourcesList); citationMode && len(citations) > 0 {
			botMsg.Citations = citations
		}
	}

	s.mu.Lock()
	session.Messages = append(session.Messages, botMsg)
	session.UpdatedAt = time.Now()
	s.persistSessionsLocked()
	s.mu.Unlock()

	return &botMsg
}

// ToggleCitationMode flips citation display for future sends only.
func (s *ChatService) ToggleCitationMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.citationMode = !s.citationMode
	return s.citationMode
}

// SetMode selects the backend mode for all subsequent sends and persists it
// immediately. Unrecognized values collapse to the default mode.
func (s *ChatService) SetMode(mode string) model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatMode = model.ParseMode(mode)
	if err := s.storage.SaveMode(s.chatMode); err != nil {
		logger.Errorf("Failed to persist mode: %v", err)
	}

	return s.chatMode
}

// Export serializes the current session (or the most recently created one
// when none is current) in the requested format.
func (s *ChatService) Export(format string) ([]byte, string, error) {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	session := s.current
	if session == nil && len(s.sessions) > 0 {
		session = s.sessions[0]
	}
	if session == nil {
		s.mu.Unlock()
		return nil, "", fmt.Errorf("no session to export")
	}

	snapshot := *session
	snapshot.Messages = append([]model.Message(nil), session.Messages...)
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := exporter.Export(&snapshot, &buf); err != nil {
		return nil, "", fmt.Errorf("failed to export session: %w", err)
	}

	filename := fmt.Sprintf("chat-%s.%s", snapshot.ID, exporter.Extension())
	return buf.Bytes(), filename, nil
}

func (s *ChatService) GetSession(sessionID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findSession(sessionID)
	if session == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}

	return session, nil
}

func (s *ChatService) GetAllSessions() []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]*model.Session, len(s.sessions))
	copy(sessions, s.sessions)
	return sessions
}

// DeleteSession removes a session from the collection. When the current
// session is deleted, the most recent remaining one becomes current.
func (s *ChatService) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, session := range s.sessions {
		if session.ID == sessionID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}

	deleted := s.sessions[index]
	s.sessions = append(s.sessions[:index], s.sessions[index+1:]...)

	if s.current == deleted {
		s.current = nil
		if len(s.sessions) > 0 {
			s.current = s.sessions[0]
		}
		s.persistActiveLocked()
	}

	s.persistSessionsLocked()
	return nil
}

func (s *ChatService) ClearAllSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make([]*model.Session, 0)
	s.current = nil

	s.persistSessionsLocked()
	s.persistActiveLocked()
}

func (s *ChatService) UpdateSessionTitle(sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findSession(sessionID)
	if session == nil {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}

	session.Title = title
	session.UpdatedAt = time.Now()
	s.persistSessionsLocked()

	return nil
}

// CurrentSession returns the session targeted by SendMessage and Export,
// nil when no session exists yet.
func (s *ChatService) CurrentSession() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Messages returns a copy of the current session's message list.
func (s *ChatService) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return []model.Message{}
	}

	return append([]model.Message(nil), s.current.Messages...)
}

func (s *ChatService) Mode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chatMode
}

func (s *ChatService) IsCitationMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.citationMode
}

// IsLoading reports whether a backend request is in flight.
func (s *ChatService) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inFlight
}

func (s *ChatService) findSession(sessionID string) *model.Session {
	for _, session := range s.sessions {
		if session.ID == sessionID {
			return session
		}
	}
	return nil
}

func (s *ChatService) persistSessionsLocked() {
	if err := s.storage.SaveSessions(s.sessions); err != nil {
		logger.Errorf("Failed to persist sessions: %v", err)
	}
}

func (s *ChatService) persistActiveLocked() {
	id := ""
	if s.current != nil {
		id = s.current.ID
	}
	if err := s.storage.SaveActiveSession(id); err != nil {
		logger.Errorf("Failed to persist active session pointer: %v", err)
	}
}

func truncateTitle(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}
