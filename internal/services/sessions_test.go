package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
)

var (
	_ SessionStore  = (*fakeSessionBackend)(nil)
	_ SessionRunner = (*fakeRunner)(nil)
)

// fakeSessionBackend composes the repo and session fakes and adds
// message storage.
type fakeSessionBackend struct {
	*fakeRepoStore
	*fakeRunStore
	messages map[string][]domain.Message
	msgErr   error
	msgMu    sync.Mutex
}

func newFakeSessionBackend() *fakeSessionBackend {
	return &fakeSessionBackend{
		fakeRepoStore: newFakeRepoStore(),
		fakeRunStore:  newFakeRunStore(),
		messages:      make(map[string][]domain.Message),
	}
}

func (f *fakeSessionBackend) AddMessage(ctx context.Context, message domain.Message) error {
	f.msgMu.Lock()
	defer f.msgMu.Unlock()
	if f.msgErr != nil {
		return f.msgErr
	}
	f.messages[message.SessionID] = append(f.messages[message.SessionID], message)
	return nil
}

func (f *fakeSessionBackend) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	f.msgMu.Lock()
	defer f.msgMu.Unlock()
	out := make([]domain.Message, len(f.messages[sessionID]))
	copy(out, f.messages[sessionID])
	return out, nil
}

type runRequest struct {
	prompt    string
	repoID    string
	repoPath  string
	sessionID string
}

// fakeRunner records orchestrator calls
type fakeRunner struct {
	active    []string
	cancelErr error
	cancelled []string
	mu        sync.Mutex
	runErr    error
	running   map[string]bool
	runs      []runRequest
}

func (f *fakeRunner) Run(ctx context.Context, sessionID, repoID, repoPath, prompt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, runRequest{prompt: prompt, repoID: repoID, repoPath: repoPath, sessionID: sessionID})
	return f.runErr
}

func (f *fakeRunner) Cancel(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, sessionID)
	return f.cancelErr
}

func (f *fakeRunner) IsSessionRunning(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[sessionID]
}

func (f *fakeRunner) ActiveSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func seedSession(t *testing.T, backend *fakeSessionBackend) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, backend.AddRepo(ctx, domain.Repository{ID: "r-1", Name: "widget", Path: "/repos/widget"}))
	require.NoError(t, backend.AddSession(ctx, domain.Session{ID: "s-1", RepoID: "r-1", Status: domain.StatusIdle}))
}

func TestSessionCreate(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSessionBackend()
	require.NoError(t, backend.AddRepo(ctx, domain.Repository{ID: "r-1", Name: "widget", Path: "/repos/widget"}))
	svc := NewSessionService(backend, &fakeRunner{})

	session, err := svc.Create(ctx, "r-1", "refactor auth")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "refactor auth", session.Name)
	assert.Equal(t, domain.DefaultOrchestrator, session.Orchestrator)
	assert.Equal(t, "r-1", session.RepoID)
	assert.Equal(t, domain.StatusIdle, session.Status)
	assert.False(t, session.CreatedAt.IsZero())

	stored, err := backend.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.RepoID, stored.RepoID)

	_, err = svc.Create(ctx, "ghost", "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRun(t *testing.T) {
	ctx := context.Background()

	t.Run("records prompt and starts the process", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{}
		svc := NewSessionService(backend, runner)

		require.NoError(t, svc.Run(ctx, "s-1", "fix the login bug"))

		require.Equal(t, []runRequest{{
			prompt:    "fix the login bug",
			repoID:    "r-1",
			repoPath:  "/repos/widget",
			sessionID: "s-1",
		}}, runner.runs)

		messages, err := backend.ListMessages(ctx, "s-1")
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, domain.RoleUser, messages[0].Role)
		assert.Equal(t, "fix the login bug", messages[0].Content)
	})

	t.Run("rejects blank prompt", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{}
		svc := NewSessionService(backend, runner)

		require.ErrorIs(t, svc.Run(ctx, "s-1", "   \n"), domain.ErrInvalid)
		assert.Empty(t, runner.runs)
		messages, err := backend.ListMessages(ctx, "s-1")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("unknown session", func(t *testing.T) {
		backend := newFakeSessionBackend()
		runner := &fakeRunner{}
		svc := NewSessionService(backend, runner)

		require.ErrorIs(t, svc.Run(ctx, "ghost", "hello"), domain.ErrNotFound)
		assert.Empty(t, runner.runs)
	})

	t.Run("missing repository", func(t *testing.T) {
		backend := newFakeSessionBackend()
		require.NoError(t, backend.AddSession(ctx, domain.Session{ID: "s-1", RepoID: "gone"}))
		svc := NewSessionService(backend, &fakeRunner{})

		err := svc.Run(ctx, "s-1", "hello")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "repository gone missing for session s-1")
	})

	t.Run("message persistence failure does not block the run", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		backend.msgErr = errors.New("database is locked")
		runner := &fakeRunner{}
		svc := NewSessionService(backend, runner)

		require.NoError(t, svc.Run(ctx, "s-1", "hello"))
		assert.Len(t, runner.runs, 1)
	})

	t.Run("propagates busy repository", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{runErr: &domain.RepoBusyError{RepoID: "r-1", SessionID: "other"}}
		svc := NewSessionService(backend, runner)

		var busy *domain.RepoBusyError
		require.ErrorAs(t, svc.Run(ctx, "s-1", "hello"), &busy)
		assert.Equal(t, "other", busy.SessionID)
	})
}

func TestSessionCancel(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSessionBackend()
	seedSession(t, backend)
	runner := &fakeRunner{}
	svc := NewSessionService(backend, runner)

	require.ErrorIs(t, svc.Cancel(ctx, "ghost"), domain.ErrNotFound)
	assert.Empty(t, runner.cancelled)

	require.NoError(t, svc.Cancel(ctx, "s-1"))
	assert.Equal(t, []string{"s-1"}, runner.cancelled)

	runner.cancelErr = &domain.NotRunningError{SessionID: "s-1"}
	var notRunning *domain.NotRunningError
	require.ErrorAs(t, svc.Cancel(ctx, "s-1"), &notRunning)
}

func TestSessionDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("idle session is deleted directly", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{}
		svc := NewSessionService(backend, runner)

		require.NoError(t, svc.Delete(ctx, "s-1"))
		assert.Empty(t, runner.cancelled)
		_, err := backend.GetSession(ctx, "s-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("running session is cancelled first", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{running: map[string]bool{"s-1": true}}
		svc := NewSessionService(backend, runner)

		require.NoError(t, svc.Delete(ctx, "s-1"))
		assert.Equal(t, []string{"s-1"}, runner.cancelled)
		_, err := backend.GetSession(ctx, "s-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("process exiting during delete is tolerated", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{
			cancelErr: &domain.NotRunningError{SessionID: "s-1"},
			running:   map[string]bool{"s-1": true},
		}
		svc := NewSessionService(backend, runner)

		require.NoError(t, svc.Delete(ctx, "s-1"))
		_, err := backend.GetSession(ctx, "s-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("cancel failure aborts the delete", func(t *testing.T) {
		backend := newFakeSessionBackend()
		seedSession(t, backend)
		runner := &fakeRunner{
			cancelErr: errors.New("kill failed"),
			running:   map[string]bool{"s-1": true},
		}
		svc := NewSessionService(backend, runner)

		require.Error(t, svc.Delete(ctx, "s-1"))
		_, err := backend.GetSession(ctx, "s-1")
		require.NoError(t, err)
	})
}

func TestSessionAddMessage(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSessionBackend()
	seedSession(t, backend)
	svc := NewSessionService(backend, &fakeRunner{})

	message, err := svc.AddMessage(ctx, "s-1", domain.RoleAssistant, "done, see the diff")
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.Equal(t, domain.RoleAssistant, message.Role)

	_, err = svc.AddMessage(ctx, "s-1", "robot", "beep")
	require.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.AddMessage(ctx, "ghost", domain.RoleUser, "hello")
	require.ErrorIs(t, err, domain.ErrNotFound)

	messages, err := svc.Messages(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "done, see the diff", messages[0].Content)
}

func TestSessionGetWithMessages(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSessionBackend()
	seedSession(t, backend)
	svc := NewSessionService(backend, &fakeRunner{})

	_, err := svc.AddMessage(ctx, "s-1", domain.RoleUser, "first")
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, "s-1", domain.RoleAssistant, "second")
	require.NoError(t, err)

	session, messages, err := svc.GetWithMessages(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", session.ID)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)

	_, _, err = svc.GetWithMessages(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionList(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSessionBackend()
	require.NoError(t, backend.AddSession(ctx, domain.Session{ID: "s-1", RepoID: "r-1"}))
	require.NoError(t, backend.AddSession(ctx, domain.Session{ID: "s-2", RepoID: "r-2"}))
	svc := NewSessionService(backend, &fakeRunner{})

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(ctx, "r-2")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "s-2", filtered[0].ID)
}

func TestSessionOutput(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSessionBackend()
	seedSession(t, backend)
	require.NoError(t, backend.AppendOutput(ctx, "s-1", domain.StreamStdout, "hello"))
	require.NoError(t, backend.AppendOutput(ctx, "s-1", domain.StreamStderr, "oops"))
	svc := NewSessionService(backend, &fakeRunner{})

	logs, err := svc.Output(ctx, ports.OutputLogQuery{SessionID: "s-1"})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	stderrOnly, err := svc.Output(ctx, ports.OutputLogQuery{SessionID: "s-1", Stream: domain.StreamStderr})
	require.NoError(t, err)
	require.Len(t, stderrOnly, 1)
	assert.Equal(t, "oops", stderrOnly[0].Content)

	_, err = svc.Output(ctx, ports.OutputLogQuery{SessionID: "ghost"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionActive(t *testing.T) {
	runner := &fakeRunner{active: []string{"s-1", "s-9"}}
	svc := NewSessionService(newFakeSessionBackend(), runner)
	assert.Equal(t, []string{"s-1", "s-9"}, svc.Active())
}
