package domain

import (
	"errors"
	"fmt"
)

// Sentinels mapped from driver errors and input validation at the
// adapter boundaries
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInvalid  = errors.New("invalid input")
)

// RepoBusyError is returned when a repository already has a running
// agent process. At most one session per repository may be running.
type RepoBusyError struct {
	RepoID    string
	SessionID string // session currently occupying the repo
}

func (e *RepoBusyError) Error() string {
	return fmt.Sprintf("repository %s already has a running agent process", e.RepoID)
}

// SessionAlreadyRunningError is returned when a run is requested for a
// session that already has a live process.
type SessionAlreadyRunningError struct {
	SessionID string
}

func (e *SessionAlreadyRunningError) Error() string {
	return fmt.Sprintf("session %s already has a running process", e.SessionID)
}

// NotRunningError is returned when cancel is requested for a session
// with no live process.
type NotRunningError struct {
	SessionID string
}

func (e *NotRunningError) Error() string {
	return fmt.Sprintf("session %s has no running process", e.SessionID)
}

// SpawnError wraps a process start failure other than a missing executable
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn agent process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// AgentNotFoundError means the agent executable could not be resolved
// via PATH. It always carries remediation steps for the user.
type AgentNotFoundError struct {
	Message   string
	HelpSteps []string
}

func (e *AgentNotFoundError) Error() string {
	return fmt.Sprintf("agent CLI not found: %s", e.Message)
}

// NewAgentNotFoundError builds the standard missing-executable error
func NewAgentNotFoundError(agent string) *AgentNotFoundError {
	return &AgentNotFoundError{
		Message: fmt.Sprintf("%s CLI not found in PATH", agent),
		HelpSteps: []string{
			fmt.Sprintf("Install %s: cargo install %s", agent, agent),
			"Or download from release page",
			"Ensure ~/.cargo/bin is in your PATH",
			"Restart your terminal after installation",
		},
	}
}

// CloneErrorKind is the closed classification of clone failures,
// mapped once at the git boundary from the underlying failure.
type CloneErrorKind string

const (
	CloneSSHAuthFailed   CloneErrorKind = "ssh_auth_failed"
	CloneHTTPSAuthFailed CloneErrorKind = "https_auth_failed"
	CloneNetworkError    CloneErrorKind = "network_error"
	CloneFailed          CloneErrorKind = "operation_failed"
)

// CloneError is a classified clone failure. HelpSteps is empty unless
// the kind is one of the actionable authentication classes.
type CloneError struct {
	Kind      CloneErrorKind
	Message   string
	HelpSteps []string
}

func (e *CloneError) Error() string {
	switch e.Kind {
	case CloneSSHAuthFailed:
		return fmt.Sprintf("SSH authentication failed: %s", e.Message)
	case CloneHTTPSAuthFailed:
		return fmt.Sprintf("HTTPS authentication failed: %s", e.Message)
	case CloneNetworkError:
		return fmt.Sprintf("network error: %s", e.Message)
	default:
		return fmt.Sprintf("clone operation failed: %s", e.Message)
	}
}

// NewSSHAuthError builds a classified SSH auth failure with its
// remediation steps.
func NewSSHAuthError(message string) *CloneError {
	return &CloneError{
		Kind:    CloneSSHAuthFailed,
		Message: message,
		HelpSteps: []string{
			"Ensure your SSH key is added to ssh-agent: ssh-add ~/.ssh/id_ed25519",
			"Verify your key is added to GitHub: ssh -T git@github.com",
			"If using a passphrase, the ssh-agent must have the key unlocked",
		},
	}
}

// NewHTTPSAuthError builds a classified HTTPS auth failure with its
// remediation steps.
func NewHTTPSAuthError(message string) *CloneError {
	return &CloneError{
		Kind:    CloneHTTPSAuthFailed,
		Message: message,
		HelpSteps: []string{
			"HTTPS cloning requires a Personal Access Token (PAT)",
			"Create a PAT at GitHub Settings > Developer Settings > Tokens",
			"Use the PAT as password when prompted, or configure git credential helper",
		},
	}
}
