package storage

import (
	"kbchat-backend/internal/model"
)

// Storage persists the chat state across restarts. Three independent
// entries, each written on its own mutation path: the session collection,
// the active-session pointer, and the selected query mode.
//
// Loads fail closed: malformed stored data is reported as empty state, never
// partially hydrated.
type Storage interface {
	// 会话集合
	LoadSessions() ([]*model.Session, error)
	SaveSessions(sessions []*model.Session) error

	// 活动会话指针
	LoadActiveSession() (string, error)
	SaveActiveSession(sessionID string) error

	// 查询模式
	LoadMode() (model.Mode, error)
	SaveMode(mode model.Mode) error

	// 存储管理
	Init() error
	Close() error
}
