package ports

import (
	"context"

	"github.com/ralphtown/ralphtown/internal/domain"
)

// RepoStore persists repository records
type RepoStore interface {
	AddRepo(ctx context.Context, repo domain.Repository) error
	GetRepo(ctx context.Context, id string) (*domain.Repository, error)
	GetRepoByPath(ctx context.Context, path string) (*domain.Repository, error)
	ListRepos(ctx context.Context) ([]domain.Repository, error)
	DeleteRepo(ctx context.Context, id string) error
}

// SessionStore persists session records
type SessionStore interface {
	AddSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
	ListSessionsByRepo(ctx context.Context, repoID string) ([]domain.Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status domain.SessionStatus) error
	DeleteSession(ctx context.Context, id string) error
}

// MessageStore persists session messages
type MessageStore interface {
	AddMessage(ctx context.Context, message domain.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
}

// OutputLogQuery selects a page of output records
type OutputLogQuery struct {
	Limit     int // <=0 means the default page size
	Offset    int
	SessionID string
	Stream    domain.OutputStream // empty means both streams
}

// OutputLogStore persists process output lines
type OutputLogStore interface {
	AppendOutput(ctx context.Context, sessionID string, stream domain.OutputStream, content string) error
	ListOutput(ctx context.Context, q OutputLogQuery) ([]domain.OutputLog, error)
	DeleteOutput(ctx context.Context, sessionID string) error
}

// ConfigStore persists string key-value settings
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error
	ListConfig(ctx context.Context) (map[string]string, error)
}

// Store is the composite persistence interface
type Store interface {
	RepoStore
	SessionStore
	MessageStore
	OutputLogStore
	ConfigStore
	Close() error
}
