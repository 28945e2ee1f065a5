package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ralphtown/ralphtown/internal/config"
	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// defaultScanDepth bounds directory scans when the caller does not
// specify one
const defaultScanDepth = 2

// RunRegistry is the orchestrator view other services consult before
// mutating state tied to live processes.
type RunRegistry interface {
	IsRepoBusy(repoID string) bool
	IsSessionRunning(sessionID string) bool
}

// RepoService manages registered repositories and runs git operations
// against them.
type RepoService struct {
	git      ports.GitRepository
	registry RunRegistry
	store    ports.RepoStore
}

// NewRepoService creates a new RepoService
func NewRepoService(store ports.RepoStore, git ports.GitRepository, registry RunRegistry) *RepoService {
	return &RepoService{git: git, registry: registry, store: store}
}

// Add registers an existing local repository. name defaults to the
// directory name.
func (s *RepoService) Add(ctx context.Context, path, name string) (*domain.Repository, error) {
	path = config.ExpandPath(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid repository path %q: %w", path, domain.ErrInvalid)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("path does not exist or is not a directory: %s: %w", abs, domain.ErrInvalid)
	}
	if !s.git.IsGitRepo(abs) {
		return nil, fmt.Errorf("not a git repository: %s: %w", abs, domain.ErrInvalid)
	}

	if name == "" {
		name = filepath.Base(abs)
	}

	now := time.Now().UTC()
	repo := domain.Repository{
		CreatedAt: now,
		ID:        uuid.NewString(),
		Name:      name,
		Path:      abs,
		UpdatedAt: now,
	}
	if err := s.store.AddRepo(ctx, repo); err != nil {
		return nil, err
	}

	logging.Logger.Info("Repository registered", "name", name, "path", abs)
	return &repo, nil
}

// Get returns one repository by ID
func (s *RepoService) Get(ctx context.Context, id string) (*domain.Repository, error) {
	return s.store.GetRepo(ctx, id)
}

// List returns all repositories, newest first
func (s *RepoService) List(ctx context.Context) ([]domain.Repository, error) {
	return s.store.ListRepos(ctx)
}

// Delete removes a repository and, through cascade, its sessions.
// Rejected while a session of the repository is running.
func (s *RepoService) Delete(ctx context.Context, id string) error {
	if s.registry.IsRepoBusy(id) {
		return &domain.RepoBusyError{RepoID: id}
	}
	return s.store.DeleteRepo(ctx, id)
}

// Scan walks root looking for git repositories. depth <= 0 selects the
// default.
func (s *RepoService) Scan(root string, depth int) ([]domain.ScannedRepo, error) {
	if depth <= 0 {
		depth = defaultScanDepth
	}

	paths, err := s.git.ScanForRepos(config.ExpandPath(root), depth)
	if err != nil {
		return nil, err
	}

	repos := make([]domain.ScannedRepo, 0, len(paths))
	for _, path := range paths {
		repos = append(repos, domain.ScannedRepo{Name: filepath.Base(path), Path: path})
	}
	return repos, nil
}

// Status reports the working tree status of a registered repository
func (s *RepoService) Status(ctx context.Context, id string) (*domain.GitStatus, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.Status(ctx, repo.Path)
}

// Log returns the last limit commits of a registered repository
func (s *RepoService) Log(ctx context.Context, id string, limit int) ([]domain.Commit, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.Log(ctx, repo.Path, limit)
}

// Branches lists the branches of a registered repository
func (s *RepoService) Branches(ctx context.Context, id string) ([]domain.Branch, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.Branches(ctx, repo.Path)
}

// DiffStats reports uncommitted line counts of a registered repository
func (s *RepoService) DiffStats(ctx context.Context, id string) ([]domain.FileDelta, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.DiffStats(ctx, repo.Path)
}

// Checkout switches a registered repository to branch
func (s *RepoService) Checkout(ctx context.Context, id, branch string) (*domain.CommandOutput, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.Checkout(ctx, repo.Path, branch)
}

// CreateBranch creates branch in a registered repository and switches
// to it
func (s *RepoService) CreateBranch(ctx context.Context, id, branch string) (*domain.CommandOutput, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.CreateBranch(ctx, repo.Path, branch)
}

// Pull runs git pull in a registered repository
func (s *RepoService) Pull(ctx context.Context, id string) (*domain.CommandOutput, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.Pull(ctx, repo.Path)
}

// Push runs git push in a registered repository
func (s *RepoService) Push(ctx context.Context, id string) (*domain.CommandOutput, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.Push(ctx, repo.Path)
}

// CommitAll stages and commits everything in a registered repository
func (s *RepoService) CommitAll(ctx context.Context, id, message string) (*domain.CommandOutput, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.CommitAll(ctx, repo.Path, message)
}

// ResetHard discards uncommitted changes in a registered repository
func (s *RepoService) ResetHard(ctx context.Context, id string) (*domain.CommandOutput, error) {
	repo, err := s.store.GetRepo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.git.ResetHard(ctx, repo.Path)
}
