package ports

import (
	"context"

	"github.com/ralphtown/ralphtown/internal/domain"
)

// RepoCloner clones repositories with best-effort progress reporting.
// Progress snapshots are pushed to the channel with a non-blocking
// send; the caller owns (and closes) the channel after the call
// returns. A nil channel disables progress reporting.
type RepoCloner interface {
	CloneWithProgress(ctx context.Context, url, dest string, progress chan<- domain.CloneProgress) error
}

// RepoInspector runs read-only queries against a repository
type RepoInspector interface {
	IsGitRepo(path string) bool
	CurrentBranch(path string) (string, error)
	Status(ctx context.Context, path string) (*domain.GitStatus, error)
	Log(ctx context.Context, path string, limit int) ([]domain.Commit, error)
	Branches(ctx context.Context, path string) ([]domain.Branch, error)
	DiffStats(ctx context.Context, path string) ([]domain.FileDelta, error)
}

// RepoWriter runs mutating git commands
type RepoWriter interface {
	Checkout(ctx context.Context, path, branch string) (*domain.CommandOutput, error)
	CreateBranch(ctx context.Context, path, branch string) (*domain.CommandOutput, error)
	Pull(ctx context.Context, path string) (*domain.CommandOutput, error)
	Push(ctx context.Context, path string) (*domain.CommandOutput, error)
	CommitAll(ctx context.Context, path, message string) (*domain.CommandOutput, error)
	ResetHard(ctx context.Context, path string) (*domain.CommandOutput, error)
}

// RepoScanner discovers git repositories under a directory tree
type RepoScanner interface {
	ScanForRepos(root string, maxDepth int) ([]string, error)
}

// SourceParser inspects repository source strings
type SourceParser interface {
	// ExtractRepoName derives the repository name from a clone URL.
	// Fails with domain.ErrInvalid when no name can be derived.
	ExtractRepoName(url string) (string, error)
	IsGitURL(source string) bool
}

// GitRepository is the composite interface
type GitRepository interface {
	RepoCloner
	RepoInspector
	RepoScanner
	RepoWriter
	SourceParser
}
