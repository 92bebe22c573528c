package storage

import (
	"sync"

	"kbchat-backend/internal/model"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	sessions []*model.Session
	activeID string
	mode     model.Mode
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make([]*model.Session, 0),
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) LoadSessions() ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*model.Session, len(m.sessions))
	copy(sessions, m.sessions)
	return sessions, nil
}

func (m *MemoryStorage) SaveSessions(sessions []*model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make([]*model.Session, len(sessions))
	copy(m.sessions, sessions)
	return nil
}

func (m *MemoryStorage) LoadActiveSession() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.activeID, nil
}

func (m *MemoryStorage) SaveActiveSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeID = sessionID
	return nil
}

func (m *MemoryStorage) LoadMode() (model.Mode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.mode, nil
}

func (m *MemoryStorage) SaveMode(mode model.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mode = mode
	return nil
}
