package domain

import "time"

// SessionStatus represents the lifecycle status of a session
type SessionStatus string

const (
	StatusIdle      SessionStatus = "idle"
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusError     SessionStatus = "error"
	StatusCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether the status is one of the final states.
// A terminal status is only left by a new run, which resets the session
// to StatusRunning.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether the status is one of the known values
func (s SessionStatus) IsValid() bool {
	switch s {
	case StatusIdle, StatusRunning, StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// DefaultOrchestrator is the agent CLI backing new sessions
const DefaultOrchestrator = "ralph"

// Session pairs one repository with one logical run of the agent process
type Session struct {
	CreatedAt    time.Time     `json:"createdAt"`
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Orchestrator string        `json:"orchestrator"`
	RepoID       string        `json:"repoId"`
	Status       SessionStatus `json:"status"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
