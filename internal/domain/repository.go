package domain

import "time"

// Repository is a git repository registered with the backend
type Repository struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScannedRepo is a repository discovered by a directory scan
type ScannedRepo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// MessageRole identifies the author of a session message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a prompt or response attached to a session
type Message struct {
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	SessionID string      `json:"sessionId"`
}
