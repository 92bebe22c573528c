package model

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Mode selects the retrieval/generation policy requested from the QA backend.
type Mode string

const (
	ModeLLM           Mode = "llm"
	ModeKnowledgeBase Mode = "knowledgebase"
	// ModeFallback is the legacy blended mode. Still accepted from stored
	// state so old profiles keep working.
	ModeFallback Mode = "knowledgebase_fallback"

	DefaultMode = ModeKnowledgeBase
)

// BackendString maps the internal mode to the string the backend expects.
func (m Mode) BackendString() string {
	switch m {
	case ModeLLM:
		return "General LLM"
	case ModeKnowledgeBase:
		return "Knowledge Base"
	default:
		return "Standard"
	}
}

// ParseMode returns the mode named by s, or DefaultMode when s is not a
// recognized value (e.g. a corrupt or outdated stored selection).
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeLLM, ModeKnowledgeBase, ModeFallback:
		return Mode(s)
	default:
		return DefaultMode
	}
}

// Citation is a normalized reference to a source document attached to a bot
// response. IDs are unique within one message, not globally.
type Citation struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

type Message struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Sender    Sender     `json:"sender"`
	Timestamp time.Time  `json:"timestamp"`
	Citations []Citation `json:"citations,omitempty"`
	IsError   bool       `json:"is_error,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
