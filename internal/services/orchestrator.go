// Package services holds the application services between the HTTP
// layer and the adapters.
package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// cancelGracePeriod is the window between the graceful and the forced
// termination signal. Fixed policy, not derived from process behavior.
const cancelGracePeriod = 5 * time.Second

// maxOutputLine bounds a single scanned output line. Agent CLIs emit
// large JSON lines.
const maxOutputLine = 1024 * 1024

// OrchestratorStore is the slice of persistence the orchestrator touches
type OrchestratorStore interface {
	ports.SessionStore
	ports.OutputLogStore
}

// activeRun tracks one live agent process
type activeRun struct {
	handle   ports.ProcessHandle // nil while the spawn is in flight
	repoID   string
	stopping bool // cancel has claimed the terminal status
}

// Orchestrator is the only component that starts, observes or stops
// session processes. It enforces at most one running session per
// repository and at most one process per session.
type Orchestrator struct {
	agent      string
	grace      time.Duration
	hub        ports.Broadcaster
	mu         sync.Mutex
	processes  map[string]*activeRun // session ID -> live process
	repos      map[string]string     // repo ID -> owning session ID
	store      OrchestratorStore
	supervisor ports.ProcessSupervisor
}

// NewOrchestrator creates the process orchestrator. agent is the CLI
// executable backing sessions; empty selects the default.
func NewOrchestrator(store OrchestratorStore, hub ports.Broadcaster, supervisor ports.ProcessSupervisor, agent string) *Orchestrator {
	if agent == "" {
		agent = domain.DefaultOrchestrator
	}
	return &Orchestrator{
		agent:      agent,
		grace:      cancelGracePeriod,
		hub:        hub,
		processes:  make(map[string]*activeRun),
		repos:      make(map[string]string),
		store:      store,
		supervisor: supervisor,
	}
}

// Run starts the agent process for a session in the repository's
// working directory. It returns once the process is started; output
// draining and exit handling continue in the background.
func (o *Orchestrator) Run(ctx context.Context, sessionID, repoID, repoPath, prompt string) error {
	o.mu.Lock()
	if owner, busy := o.repos[repoID]; busy {
		o.mu.Unlock()
		return &domain.RepoBusyError{RepoID: repoID, SessionID: owner}
	}
	if _, running := o.processes[sessionID]; running {
		o.mu.Unlock()
		return &domain.SessionAlreadyRunningError{SessionID: sessionID}
	}
	// Reserve both slots so concurrent runs are rejected while the
	// spawn is in flight. The lock is never held across the spawn.
	o.processes[sessionID] = &activeRun{repoID: repoID}
	o.repos[repoID] = sessionID
	o.mu.Unlock()

	handle, err := o.supervisor.Spawn(repoPath, o.agent, "run", "--autonomous", "--prompt", prompt)
	if err != nil {
		o.release(sessionID, repoID)
		return err
	}

	o.mu.Lock()
	if run, ok := o.processes[sessionID]; ok {
		run.handle = handle
	}
	o.mu.Unlock()

	logging.Logger.Info("Agent process started",
		"session_id", sessionID,
		"repo_id", repoID,
		"pid", handle.PID())

	o.setStatus(ctx, sessionID, domain.StatusRunning)

	go o.supervise(sessionID, repoID, handle)
	return nil
}

// Cancel stops a running session's process. It signals the process
// group to terminate, waits the grace window, and force-kills if the
// process is still registered afterwards. The session always ends up
// cancelled, even when the process exited during the window.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID string) error {
	o.mu.Lock()
	run, ok := o.processes[sessionID]
	if !ok || run.handle == nil {
		o.mu.Unlock()
		return &domain.NotRunningError{SessionID: sessionID}
	}
	// Claim the terminal status so an exit racing the grace window
	// records cancelled, not error.
	run.stopping = true
	handle, repoID := run.handle, run.repoID
	o.mu.Unlock()

	logging.Logger.Info("Cancelling session", "session_id", sessionID, "pid", handle.PID())
	if err := handle.RequestGracefulStop(); err != nil {
		logging.Logger.Warn("Graceful stop signal failed", "session_id", sessionID, "error", err)
	}

	time.Sleep(o.grace)

	o.mu.Lock()
	_, still := o.processes[sessionID]
	o.mu.Unlock()
	if still {
		logging.Logger.Warn("Process survived grace window, killing",
			"session_id", sessionID,
			"pid", handle.PID())
		if err := handle.ForceStop(); err != nil {
			logging.Logger.Error("Force kill failed", "session_id", sessionID, "error", err)
		}
	}

	if o.release(sessionID, repoID) {
		o.setStatus(ctx, sessionID, domain.StatusCancelled)
	}
	return nil
}

// IsRepoBusy reports whether any session of the repository has a live process
func (o *Orchestrator) IsRepoBusy(repoID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.repos[repoID]
	return busy
}

// IsSessionRunning reports whether the session has a live process
func (o *Orchestrator) IsSessionRunning(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, running := o.processes[sessionID]
	return running
}

// ActiveSessions returns the IDs of sessions with a live process
func (o *Orchestrator) ActiveSessions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.processes))
	for id := range o.processes {
		ids = append(ids, id)
	}
	return ids
}

// ReconcileStartup demotes sessions a previous process left in running
// state (crash, power loss). Called once before the server accepts
// requests, while the registry is still empty.
func (o *Orchestrator) ReconcileStartup(ctx context.Context) error {
	sessions, err := o.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions for reconciliation: %w", err)
	}

	for _, session := range sessions {
		if session.Status != domain.StatusRunning {
			continue
		}
		logging.Logger.Warn("Demoting orphaned running session", "session_id", session.ID)
		if err := o.store.UpdateSessionStatus(ctx, session.ID, domain.StatusError); err != nil {
			logging.Logger.Error("Failed to demote orphaned session",
				"session_id", session.ID,
				"error", err)
		}
	}
	return nil
}

// supervise drains both output streams, then records the exit outcome.
// Removing the registry entry claims the terminal status: whichever of
// the exit path and cancel removes it persists exactly once, the other
// only reaps.
func (o *Orchestrator) supervise(sessionID, repoID string, handle ports.ProcessHandle) {
	var g errgroup.Group
	g.Go(func() error {
		return o.drainStream(sessionID, domain.StreamStdout, handle.Stdout())
	})
	g.Go(func() error {
		return o.drainStream(sessionID, domain.StreamStderr, handle.Stderr())
	})
	if err := g.Wait(); err != nil {
		logging.Logger.Warn("Output stream closed abnormally", "session_id", sessionID, "error", err)
	}

	o.mu.Lock()
	run, owned := o.processes[sessionID]
	delete(o.processes, sessionID)
	if o.repos[repoID] == sessionID {
		delete(o.repos, repoID)
	}
	stopping := owned && run.stopping
	o.mu.Unlock()

	outcome, err := handle.Wait()
	if err != nil {
		logging.Logger.Error("Failed to reap agent process", "session_id", sessionID, "error", err)
	}

	if !owned {
		return
	}

	status := domain.StatusError
	switch {
	case stopping:
		status = domain.StatusCancelled
	case err == nil && outcome.Success:
		status = domain.StatusCompleted
	}
	logging.Logger.Info("Agent process exited",
		"session_id", sessionID,
		"exit_code", outcome.Code,
		"status", status)
	o.setStatus(context.Background(), sessionID, status)
}

// drainStream persists then broadcasts every line of one stream, in
// order. Persistence failures are logged and skipped; losing a line
// must never lose the process.
func (o *Orchestrator) drainStream(sessionID string, stream domain.OutputStream, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
	for scanner.Scan() {
		line := scanner.Text()
		if err := o.store.AppendOutput(context.Background(), sessionID, stream, line); err != nil {
			logging.Logger.Error("Failed to persist output line",
				"session_id", sessionID,
				"stream", stream,
				"error", err)
		}
		o.hub.Broadcast(sessionID, domain.NewOutputMessage(sessionID, stream, line))
	}
	return scanner.Err()
}

// release removes the session from both registry maps and reports
// whether the entry was still present, meaning the caller now owns the
// terminal status.
func (o *Orchestrator) release(sessionID, repoID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, present := o.processes[sessionID]
	delete(o.processes, sessionID)
	if o.repos[repoID] == sessionID {
		delete(o.repos, repoID)
	}
	return present
}

// setStatus persists and broadcasts a status transition. Failures are
// logged; registry cleanup never depends on them.
func (o *Orchestrator) setStatus(ctx context.Context, sessionID string, status domain.SessionStatus) {
	if err := o.store.UpdateSessionStatus(ctx, sessionID, status); err != nil {
		logging.Logger.Error("Failed to persist session status",
			"session_id", sessionID,
			"status", status,
			"error", err)
	}
	o.hub.Broadcast(sessionID, domain.NewStatusMessage(sessionID, status))
}
