package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ralphtown/ralphtown/internal/domain"
)

// emptyTreeHash is git's well-known empty tree object, used to diff
// repositories that have no commits yet
const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Field and record separators for log parsing. Commit messages can
// contain newlines, so records use an explicit separator.
const (
	logFieldSep  = "\x1f"
	logRecordSep = "\x1e"
)

// status reports branch, ahead/behind counts and per-file states
func status(ctx context.Context, path string) (*domain.GitStatus, error) {
	branch, err := currentBranch(path)
	if err != nil {
		return nil, notARepo(path, err)
	}

	ahead, behind := aheadBehind(ctx, path)

	out, err := gitOutput(ctx, path, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	result := &domain.GitStatus{
		Branch:    branch,
		Ahead:     ahead,
		Behind:    behind,
		Staged:    []domain.FileStatus{},
		Unstaged:  []domain.FileStatus{},
		Untracked: []string{},
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		index, worktree := line[0], line[1]
		path := line[3:]

		if index == '?' && worktree == '?' {
			result.Untracked = append(result.Untracked, path)
			continue
		}

		// Renames carry "old -> new"
		oldPath := ""
		if i := strings.Index(path, " -> "); i >= 0 {
			oldPath = path[:i]
			path = path[i+4:]
		}

		if fs, ok := fileStatus(index, path, oldPath); ok {
			result.Staged = append(result.Staged, fs)
		}
		if fs, ok := fileStatus(worktree, path, oldPath); ok {
			result.Unstaged = append(result.Unstaged, fs)
		}
	}

	return result, nil
}

// fileStatus maps a porcelain status letter to a file entry
func fileStatus(code byte, path, oldPath string) (domain.FileStatus, bool) {
	var change domain.FileChangeType
	switch code {
	case 'A':
		change = domain.ChangeAdded
	case 'M':
		change = domain.ChangeModified
	case 'D':
		change = domain.ChangeDeleted
	case 'R':
		change = domain.ChangeRenamed
	case 'C':
		change = domain.ChangeCopied
	default:
		return domain.FileStatus{}, false
	}

	fs := domain.FileStatus{Path: path, Status: change}
	if change == domain.ChangeRenamed || change == domain.ChangeCopied {
		fs.OldPath = oldPath
	}
	return fs, true
}

// aheadBehind counts commits relative to the upstream branch. Missing
// upstream reads as (0, 0).
func aheadBehind(ctx context.Context, path string) (int, int) {
	out, err := gitOutput(ctx, path, "rev-list", "--left-right", "--count", "HEAD...@{upstream}")
	if err != nil {
		return 0, 0
	}

	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0
	}
	ahead, _ := strconv.Atoi(fields[0])
	behind, _ := strconv.Atoi(fields[1])
	return ahead, behind
}

// commitLog returns up to limit commits starting at HEAD, newest first
func commitLog(ctx context.Context, path string, limit int) ([]domain.Commit, error) {
	if !isGitRepo(path) {
		return nil, notARepo(path, nil)
	}

	format := strings.Join([]string{"%H", "%h", "%an", "%ae", "%cI", "%B"}, logFieldSep) + logRecordSep
	out, err := gitOutput(ctx, path, "log", "-n", strconv.Itoa(limit), "--pretty=format:"+format)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	commits := []domain.Commit{}
	for _, record := range strings.Split(out, logRecordSep) {
		fields := strings.Split(strings.TrimLeft(record, "\n"), logFieldSep)
		if len(fields) != 6 {
			continue
		}

		commits = append(commits, domain.Commit{
			ID:        fields[0],
			ShortID:   fields[1],
			Author:    fields[2],
			Email:     fields[3],
			Timestamp: fields[4],
			Message:   strings.TrimSpace(fields[5]),
		})
	}

	return commits, nil
}

// branches lists local and remote branches. Remote HEAD pointers are
// skipped.
func branches(ctx context.Context, path string) ([]domain.Branch, error) {
	if !isGitRepo(path) {
		return nil, notARepo(path, nil)
	}

	format := strings.Join([]string{"%(refname)", "%(refname:short)", "%(upstream:short)", "%(HEAD)"}, logFieldSep)
	out, err := gitOutput(ctx, path, "branch", "-a", "--format="+format)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	result := []domain.Branch{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, logFieldSep)
		if len(fields) != 4 || fields[1] == "" {
			continue
		}

		refname, short, upstream, head := fields[0], fields[1], fields[2], fields[3]
		if strings.HasSuffix(refname, "/HEAD") {
			continue
		}

		isRemote := strings.HasPrefix(refname, "refs/remotes/")
		branch := domain.Branch{
			Name:      short,
			IsCurrent: head == "*",
			IsRemote:  isRemote,
		}
		if !isRemote {
			branch.Upstream = upstream
		}
		result = append(result, branch)
	}

	return result, nil
}

// diffStats reports per-file added/removed line counts for uncommitted
// changes, staged and unstaged combined. Binary files report zero
// counts.
func diffStats(ctx context.Context, path string) ([]domain.FileDelta, error) {
	if !isGitRepo(path) {
		return nil, notARepo(path, nil)
	}

	base := "HEAD"
	if _, err := gitOutput(ctx, path, "rev-parse", "--verify", "HEAD"); err != nil {
		// No commits yet, diff against the empty tree
		base = emptyTreeHash
	}

	out, err := gitOutput(ctx, path, "diff", "--numstat", base)
	if err != nil {
		return nil, fmt.Errorf("failed to read diff stats: %w", err)
	}

	deltas := []domain.FileDelta{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}

		// "-" marks binary content
		added, _ := strconv.Atoi(fields[0])
		removed, _ := strconv.Atoi(fields[1])
		deltas = append(deltas, domain.FileDelta{
			Path:    fields[2],
			Added:   added,
			Removed: removed,
		})
	}

	return deltas, nil
}

// gitOutput runs a read-only git command and returns trimmed stdout
func gitOutput(ctx context.Context, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(output), "\n"), nil
}

// notARepo wraps path validation failures consistently
func notARepo(path string, err error) error {
	if err != nil {
		return fmt.Errorf("not a git repository: %s: %w", path, err)
	}
	return fmt.Errorf("not a git repository: %s: %w", path, domain.ErrInvalid)
}
