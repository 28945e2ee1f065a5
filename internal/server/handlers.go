package server

import (
	"context"
	"net/http"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
	svc "github.com/ralphtown/ralphtown/internal/service"
	"github.com/ralphtown/ralphtown/internal/services"
)

// RepoAPI is the repository surface the handlers call
type RepoAPI interface {
	Add(ctx context.Context, path, name string) (*domain.Repository, error)
	Get(ctx context.Context, id string) (*domain.Repository, error)
	List(ctx context.Context) ([]domain.Repository, error)
	Delete(ctx context.Context, id string) error
	Scan(root string, depth int) ([]domain.ScannedRepo, error)
	Status(ctx context.Context, id string) (*domain.GitStatus, error)
	Log(ctx context.Context, id string, limit int) ([]domain.Commit, error)
	Branches(ctx context.Context, id string) ([]domain.Branch, error)
	DiffStats(ctx context.Context, id string) ([]domain.FileDelta, error)
	Checkout(ctx context.Context, id, branch string) (*domain.CommandOutput, error)
	CreateBranch(ctx context.Context, id, branch string) (*domain.CommandOutput, error)
	Pull(ctx context.Context, id string) (*domain.CommandOutput, error)
	Push(ctx context.Context, id string) (*domain.CommandOutput, error)
	CommitAll(ctx context.Context, id, message string) (*domain.CommandOutput, error)
	ResetHard(ctx context.Context, id string) (*domain.CommandOutput, error)
}

// SessionAPI is the session surface the handlers call
type SessionAPI interface {
	Create(ctx context.Context, repoID, name string) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	GetWithMessages(ctx context.Context, id string) (*domain.Session, []domain.Message, error)
	List(ctx context.Context, repoID string) ([]domain.Session, error)
	Delete(ctx context.Context, id string) error
	Run(ctx context.Context, id, prompt string) error
	Cancel(ctx context.Context, id string) error
	AddMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string) (*domain.Message, error)
	Messages(ctx context.Context, sessionID string) ([]domain.Message, error)
	Output(ctx context.Context, q ports.OutputLogQuery) ([]domain.OutputLog, error)
	Active() []string
}

// CloneAPI starts clone jobs and streams their progress
type CloneAPI interface {
	Clone(ctx context.Context, url string) <-chan domain.CloneEvent
}

// ConfigAPI is the settings surface the handlers call
type ConfigAPI interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}

// ServiceAPI reports background service state
type ServiceAPI interface {
	Status() (svc.StatusInfo, error)
}

var (
	_ RepoAPI    = (*services.RepoService)(nil)
	_ SessionAPI = (*services.SessionService)(nil)
	_ CloneAPI   = (*services.CloneService)(nil)
	_ ConfigAPI  = (*services.ConfigService)(nil)
	_ ServiceAPI = (*svc.Controller)(nil)
)

// Handler carries the service dependencies shared by all routes
type Handler struct {
	clone    CloneAPI
	config   ConfigAPI
	hub      ports.Subscriber
	repos    RepoAPI
	service  ServiceAPI
	sessions SessionAPI
}

// NewHandler creates the API handler set
func NewHandler(repos RepoAPI, sessions SessionAPI, clone CloneAPI, config ConfigAPI, service ServiceAPI, hub ports.Subscriber) *Handler {
	return &Handler{
		clone:    clone,
		config:   config,
		hub:      hub,
		repos:    repos,
		service:  service,
		sessions: sessions,
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) serviceStatus(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
