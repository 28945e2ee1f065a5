package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// SessionRunner is the orchestrator surface the session service drives
type SessionRunner interface {
	Run(ctx context.Context, sessionID, repoID, repoPath, prompt string) error
	Cancel(ctx context.Context, sessionID string) error
	IsSessionRunning(sessionID string) bool
	ActiveSessions() []string
}

// SessionStore is the persistence slice the session service touches
type SessionStore interface {
	ports.RepoStore
	ports.SessionStore
	ports.MessageStore
	ports.OutputLogStore
}

// SessionService manages session records and drives agent runs
type SessionService struct {
	runner SessionRunner
	store  SessionStore
}

// NewSessionService creates a new SessionService
func NewSessionService(store SessionStore, runner SessionRunner) *SessionService {
	return &SessionService{runner: runner, store: store}
}

// Create adds a session for an existing repository
func (s *SessionService) Create(ctx context.Context, repoID, name string) (*domain.Session, error) {
	if _, err := s.store.GetRepo(ctx, repoID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := domain.Session{
		CreatedAt:    now,
		ID:           uuid.NewString(),
		Name:         name,
		Orchestrator: domain.DefaultOrchestrator,
		RepoID:       repoID,
		Status:       domain.StatusIdle,
		UpdatedAt:    now,
	}
	if err := s.store.AddSession(ctx, session); err != nil {
		return nil, err
	}

	logging.Logger.Info("Session created", "session_id", session.ID, "repo_id", repoID)
	return &session, nil
}

// Get returns one session by ID
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// GetWithMessages returns a session together with its message history
func (s *SessionService) GetWithMessages(ctx context.Context, id string) (*domain.Session, []domain.Message, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// List returns sessions, optionally filtered by repository
func (s *SessionService) List(ctx context.Context, repoID string) ([]domain.Session, error) {
	if repoID == "" {
		return s.store.ListSessions(ctx)
	}
	return s.store.ListSessionsByRepo(ctx, repoID)
}

// Delete removes a session. A live process is cancelled first so the
// exclusivity registry never points at a deleted record.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if s.runner.IsSessionRunning(id) {
		var notRunning *domain.NotRunningError
		if err := s.runner.Cancel(ctx, id); err != nil && !errors.As(err, &notRunning) {
			return err
		}
	}
	return s.store.DeleteSession(ctx, id)
}

// Run starts the agent on a session with the given prompt. The prompt
// is recorded as a user message before the process starts.
func (s *SessionService) Run(ctx context.Context, id, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is empty: %w", domain.ErrInvalid)
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	repo, err := s.store.GetRepo(ctx, session.RepoID)
	if err != nil {
		return fmt.Errorf("repository %s missing for session %s: %w", session.RepoID, id, err)
	}

	if _, err := s.AddMessage(ctx, id, domain.RoleUser, prompt); err != nil {
		logging.Logger.Error("Failed to record prompt message", "session_id", id, "error", err)
	}

	return s.runner.Run(ctx, id, repo.ID, repo.Path, prompt)
}

// Cancel stops a session's running process
func (s *SessionService) Cancel(ctx context.Context, id string) error {
	if _, err := s.store.GetSession(ctx, id); err != nil {
		return err
	}
	return s.runner.Cancel(ctx, id)
}

// AddMessage appends a message to a session's history
func (s *SessionService) AddMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string) (*domain.Message, error) {
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return nil, fmt.Errorf("unknown message role %q: %w", role, domain.ErrInvalid)
	}
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	message := domain.Message{
		Content:   content,
		CreatedAt: time.Now().UTC(),
		ID:        uuid.NewString(),
		Role:      role,
		SessionID: sessionID,
	}
	if err := s.store.AddMessage(ctx, message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Messages returns a session's message history in chronological order
func (s *SessionService) Messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, sessionID)
}

// Output returns a page of persisted process output for a session
func (s *SessionService) Output(ctx context.Context, q ports.OutputLogQuery) ([]domain.OutputLog, error) {
	if _, err := s.store.GetSession(ctx, q.SessionID); err != nil {
		return nil, err
	}
	return s.store.ListOutput(ctx, q)
}

// Active returns the IDs of sessions with a live process
func (s *SessionService) Active() []string {
	return s.runner.ActiveSessions()
}
