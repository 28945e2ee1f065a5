package git

import (
	"context"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// CLIRepository implements ports.GitRepository using the git CLI
type CLIRepository struct{}

var _ ports.GitRepository = (*CLIRepository)(nil)

// NewCLIRepository creates a new git CLI adapter
func NewCLIRepository() *CLIRepository {
	return &CLIRepository{}
}

func (r *CLIRepository) CloneWithProgress(ctx context.Context, url, dest string, progress chan<- domain.CloneProgress) error {
	return cloneWithProgress(ctx, url, dest, progress)
}

func (r *CLIRepository) IsGitRepo(path string) bool {
	return isGitRepo(path)
}

func (r *CLIRepository) CurrentBranch(path string) (string, error) {
	return currentBranch(path)
}

func (r *CLIRepository) Status(ctx context.Context, path string) (*domain.GitStatus, error) {
	return status(ctx, path)
}

func (r *CLIRepository) Log(ctx context.Context, path string, limit int) ([]domain.Commit, error) {
	return commitLog(ctx, path, limit)
}

func (r *CLIRepository) Branches(ctx context.Context, path string) ([]domain.Branch, error) {
	return branches(ctx, path)
}

func (r *CLIRepository) DiffStats(ctx context.Context, path string) ([]domain.FileDelta, error) {
	return diffStats(ctx, path)
}

func (r *CLIRepository) Checkout(ctx context.Context, path, branch string) (*domain.CommandOutput, error) {
	return checkout(ctx, path, branch)
}

func (r *CLIRepository) CreateBranch(ctx context.Context, path, branch string) (*domain.CommandOutput, error) {
	return createBranch(ctx, path, branch)
}

func (r *CLIRepository) Pull(ctx context.Context, path string) (*domain.CommandOutput, error) {
	return pull(ctx, path)
}

func (r *CLIRepository) Push(ctx context.Context, path string) (*domain.CommandOutput, error) {
	return push(ctx, path)
}

func (r *CLIRepository) CommitAll(ctx context.Context, path, message string) (*domain.CommandOutput, error) {
	return commitAll(ctx, path, message)
}

func (r *CLIRepository) ResetHard(ctx context.Context, path string) (*domain.CommandOutput, error) {
	return resetHard(ctx, path)
}

func (r *CLIRepository) ScanForRepos(root string, maxDepth int) ([]string, error) {
	return scanForRepos(root, maxDepth)
}

func (r *CLIRepository) ExtractRepoName(url string) (string, error) {
	return extractRepoName(url)
}

func (r *CLIRepository) IsGitURL(source string) bool {
	return isGitURL(source)
}
