package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// progressBuffer is the capacity of the lossy progress channel between
// the clone and the event stream. A full channel drops snapshots
// rather than stalling the transfer.
const progressBuffer = 32

// CloneGit is the git surface the clone service needs
type CloneGit interface {
	ports.RepoCloner
	ports.SourceParser
}

// CloneService turns a blocking clone into an observable event stream
// with a deterministic terminal event.
type CloneService struct {
	cloneDir string
	git      CloneGit
	store    ports.RepoStore
}

// NewCloneService creates a clone service placing repositories under
// cloneDir.
func NewCloneService(store ports.RepoStore, git CloneGit, cloneDir string) *CloneService {
	return &CloneService{cloneDir: cloneDir, git: git, store: store}
}

// Clone starts cloning url in the background and returns the event
// stream. The stream always ends with exactly one complete or error
// event and is then closed. ctx covers event delivery only; the clone
// itself runs to completion so a consumer that disconnects mid-way
// still gets the repository registered.
func (s *CloneService) Clone(ctx context.Context, url string) <-chan domain.CloneEvent {
	events := make(chan domain.CloneEvent)
	go s.clone(ctx, url, events)
	return events
}

func (s *CloneService) clone(ctx context.Context, url string, events chan<- domain.CloneEvent) {
	defer close(events)

	name, err := s.git.ExtractRepoName(url)
	if err != nil {
		s.emit(ctx, events, domain.CloneEvent{Type: domain.CloneEventError, Message: err.Error()})
		return
	}

	dest := filepath.Join(s.cloneDir, name)
	if _, err := os.Stat(dest); err == nil {
		s.emit(ctx, events, domain.CloneEvent{
			Type:    domain.CloneEventError,
			Message: fmt.Sprintf("repository directory already exists: %s", dest),
		})
		return
	}

	progress := make(chan domain.CloneProgress, progressBuffer)
	result := make(chan error, 1)
	go func() {
		defer close(progress)
		// A crashed clone still has to terminate the event stream
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("clone aborted: %v", r)
			}
		}()
		result <- s.git.CloneWithProgress(context.Background(), url, dest, progress)
	}()

	for snapshot := range progress {
		snap := snapshot
		s.emit(ctx, events, domain.CloneEvent{Type: domain.CloneEventProgress, Progress: &snap})
	}

	if err := <-result; err != nil {
		s.emit(ctx, events, cloneErrorEvent(err))
		return
	}

	now := time.Now().UTC()
	repo := domain.Repository{
		CreatedAt: now,
		ID:        uuid.NewString(),
		Name:      name,
		Path:      dest,
		UpdatedAt: now,
	}
	if err := s.store.AddRepo(context.Background(), repo); err != nil {
		// The clone itself succeeded, only the bookkeeping failed
		logging.Logger.Error("Cloned but failed to register repository", "path", dest, "error", err)
		s.emit(ctx, events, domain.CloneEvent{
			Type:    domain.CloneEventError,
			Message: fmt.Sprintf("repository cloned to %s but could not be registered: %v", dest, err),
		})
		return
	}

	logging.Logger.Info("Repository cloned and registered", "name", name, "path", dest)
	s.emit(ctx, events, domain.CloneEvent{
		Type:       domain.CloneEventComplete,
		Repository: &repo,
		Message:    "Repository cloned successfully",
	})
}

// emit delivers an event unless the consumer is gone
func (s *CloneService) emit(ctx context.Context, events chan<- domain.CloneEvent, event domain.CloneEvent) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

// cloneErrorEvent maps a clone failure onto its terminal event,
// carrying remediation steps for the actionable authentication classes.
func cloneErrorEvent(err error) domain.CloneEvent {
	var cloneErr *domain.CloneError
	if errors.As(err, &cloneErr) {
		return domain.CloneEvent{
			Type:      domain.CloneEventError,
			Message:   cloneErr.Error(),
			HelpSteps: cloneErr.HelpSteps,
		}
	}
	return domain.CloneEvent{Type: domain.CloneEventError, Message: err.Error()}
}
