package model

import "time"

type SessionResponse struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// SendMessageResponse carries the bot turn appended by a send. Message is
// null when the send was rejected (empty content or a request in flight).
type SendMessageResponse struct {
	SessionID string   `json:"session_id"`
	Message   *Message `json:"message"`
}

// StateResponse is the denormalized view the UI renders from.
type StateResponse struct {
	SessionID    string    `json:"session_id,omitempty"`
	Title        string    `json:"title,omitempty"`
	Messages     []Message `json:"messages"`
	Mode         Mode      `json:"mode"`
	CitationMode bool      `json:"citation_mode"`
	InFlight     bool      `json:"in_flight"`
}
