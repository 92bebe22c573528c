package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kbchat-backend/internal/model"
	"kbchat-backend/pkg/logger"
)

const (
	sessionsFile = "sessions.json"
	activeFile   = "active_session"
	modeFile     = "mode"
)

// DiskStorage keeps the whole session collection in a single JSON file plus
// two small pointer files, written atomically via tmp+rename. There is no
// enforced capacity; in practice a collection beyond a few tens of megabytes
// of JSON will make every save noticeably slow, since each mutation rewrites
// the full file. Write failures are surfaced to the caller, which treats
// them as non-fatal (in-memory state stays authoritative).
type DiskStorage struct {
	dataDir string
}

func NewDiskStorage(dataDir string) *DiskStorage {
	return &DiskStorage{dataDir: dataDir}
}

func (d *DiskStorage) Init() error {
	if err := os.MkdirAll(d.dataDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Info("Disk storage initialized successfully")
	return nil
}

func (d *DiskStorage) Close() error {
	return nil
}

func (d *DiskStorage) LoadSessions() ([]*model.Session, error) {
	path := filepath.Join(d.dataDir, sessionsFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []*model.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	var sessions []*model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		// Fail closed: a collection that does not parse is discarded as a
		// whole rather than partially trusted.
		logger.Errorf("Stored sessions are malformed, discarding collection: %v", err)
		return []*model.Session{}, nil
	}

	for _, session := range sessions {
		if session == nil || session.ID == "" || session.CreatedAt.IsZero() || session.UpdatedAt.IsZero() {
			logger.Errorf("Stored sessions contain an entry with missing id or dates, discarding collection")
			return []*model.Session{}, nil
		}
	}

	return sessions, nil
}

func (d *DiskStorage) SaveSessions(sessions []*model.Session) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return d.writeAtomic(sessionsFile, data)
}

func (d *DiskStorage) LoadActiveSession() (string, error) {
	data, err := os.ReadFile(filepath.Join(d.dataDir, activeFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	return strings.TrimSpace(string(data)), nil
}

func (d *DiskStorage) SaveActiveSession(sessionID string) error {
	return d.writeAtomic(activeFile, []byte(sessionID))
}

// LoadMode returns the stored mode selection, "" when none has been saved
// yet. A stored value that is no longer a recognized mode comes back as the
// default instead of propagating an invalid state.
func (d *DiskStorage) LoadMode() (model.Mode, error) {
	data, err := os.ReadFile(filepath.Join(d.dataDir, modeFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	return model.ParseMode(strings.TrimSpace(string(data))), nil
}

func (d *DiskStorage) SaveMode(mode model.Mode) error {
	return d.writeAtomic(modeFile, []byte(mode))
}

func (d *DiskStorage) writeAtomic(name string, data []byte) error {
	path := filepath.Join(d.dataDir, name)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	return nil
}
