package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
)

// runGitCommand executes git in repoPath and captures both streams.
// A non-zero exit is reported through CommandOutput.Success, not as an
// error; only failing to run git at all is an error.
func runGitCommand(ctx context.Context, repoPath string, args ...string) (*domain.CommandOutput, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := &domain.CommandOutput{
		Success: err == nil,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run git %s: %w", args[0], err)
		}
		logging.Logger.Debug("git command failed",
			"args", strings.Join(args, " "),
			"path", repoPath,
			"stderr", strings.TrimSpace(stderr.String()))
	}

	return output, nil
}

// validateBranchName rejects names git would refuse or that could be
// mistaken for command flags
func validateBranchName(branch string) error {
	switch {
	case branch == "":
		return fmt.Errorf("branch name is empty: %w", domain.ErrInvalid)
	case strings.HasPrefix(branch, "-"):
		return fmt.Errorf("branch name %q starts with a dash: %w", branch, domain.ErrInvalid)
	case strings.Contains(branch, ".."):
		return fmt.Errorf("branch name %q contains '..': %w", branch, domain.ErrInvalid)
	case strings.ContainsRune(branch, 0):
		return fmt.Errorf("branch name contains a NUL byte: %w", domain.ErrInvalid)
	}
	return nil
}

func checkout(ctx context.Context, path, branch string) (*domain.CommandOutput, error) {
	if err := validateBranchName(branch); err != nil {
		return nil, err
	}
	return runGitCommand(ctx, path, "checkout", branch)
}

// createBranch creates the branch and switches to it
func createBranch(ctx context.Context, path, branch string) (*domain.CommandOutput, error) {
	if err := validateBranchName(branch); err != nil {
		return nil, err
	}
	return runGitCommand(ctx, path, "checkout", "-b", branch)
}

func pull(ctx context.Context, path string) (*domain.CommandOutput, error) {
	return runGitCommand(ctx, path, "pull")
}

func push(ctx context.Context, path string) (*domain.CommandOutput, error) {
	return runGitCommand(ctx, path, "push")
}

// commitAll stages everything and commits. A failed stage is returned
// as-is without attempting the commit.
func commitAll(ctx context.Context, path, message string) (*domain.CommandOutput, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("commit message is empty: %w", domain.ErrInvalid)
	}

	added, err := runGitCommand(ctx, path, "add", "-A")
	if err != nil {
		return nil, err
	}
	if !added.Success {
		return added, nil
	}

	return runGitCommand(ctx, path, "commit", "-m", message)
}

func resetHard(ctx context.Context, path string) (*domain.CommandOutput, error) {
	return runGitCommand(ctx, path, "reset", "--hard")
}
