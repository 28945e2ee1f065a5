// Package git runs repository operations through the git CLI.
package git

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
)

// isGitURL checks if string is a git URL (https://, git@, ssh://)
func isGitURL(source string) bool {
	if source == "" {
		return false
	}

	// Match common git URL patterns
	patterns := []string{
		`^https?://`,          // https:// or http://
		`^git@`,               // git@github.com:owner/repo
		`^ssh://`,             // ssh://git@github.com/owner/repo
		`^git://`,             // git://github.com/owner/repo
		`^ftps?://`,           // ftp:// or ftps://
		`\.git(/|\\)?$`,       // ends with .git
		`^[a-zA-Z0-9.-]+@.*:`, // generic user@host:path format
	}

	for _, pattern := range patterns {
		matched, _ := regexp.MatchString(pattern, source)
		if matched {
			return true
		}
	}

	return false
}

// extractRepoName derives the repository name from a clone URL.
// Handles both HTTPS and SSH formats:
//   - https://github.com/user/repo.git -> repo
//   - https://github.com/user/repo     -> repo
//   - git@github.com:user/repo.git     -> repo
func extractRepoName(url string) (string, error) {
	trimmed := strings.TrimRight(url, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	// Last path segment first (HTTPS style), then the part after the
	// colon (SSH style) when that yields nothing new
	name := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if name == "" || name == trimmed {
		name = trimmed[strings.LastIndex(trimmed, ":")+1:]
	}

	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("could not extract repository name from %q: %w", url, domain.ErrInvalid)
	}

	return name, nil
}

// isGitRepo checks whether path is inside a git working tree
func isGitRepo(path string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path

	if err := cmd.Run(); err != nil {
		logging.Logger.Debug("Not a git repository", "path", path)
		return false
	}
	return true
}

// currentBranch returns the checked out branch, or the short commit ID
// when HEAD is detached
func currentBranch(path string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	branch := strings.TrimSpace(string(output))
	if branch != "HEAD" {
		return branch, nil
	}

	// Detached HEAD
	cmd = exec.Command("git", "rev-parse", "--short=7", "HEAD")
	cmd.Dir = path
	output, err = cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve detached HEAD: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
