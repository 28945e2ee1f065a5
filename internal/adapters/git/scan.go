package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralphtown/ralphtown/internal/domain"
)

// scanForRepos walks root looking for git repositories. Repositories
// are not descended into, and hidden directories are skipped. maxDepth
// bounds recursion below root; the root itself is always checked.
func scanForRepos(root string, maxDepth int) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path %s is not a directory: %w", root, domain.ErrInvalid)
	}

	found := []string{}
	scanDir(root, 0, maxDepth, &found)
	return found, nil
}

func scanDir(dir string, depth, maxDepth int, found *[]string) {
	if hasGitEntry(dir) {
		*found = append(*found, dir)
		return
	}
	if depth >= maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are skipped rather than failing the scan
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		scanDir(filepath.Join(dir, entry.Name()), depth+1, maxDepth, found)
	}
}

// hasGitEntry is a cheap repository check for scans. A .git file (not
// just a directory) also counts, which covers worktrees and submodules.
func hasGitEntry(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
