package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralphtown/ralphtown/internal/domain"
)

// initTestRepo creates a repository with one commit on branch main
func initTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	gitRun(t, dir, "init")
	gitRun(t, dir, "config", "user.email", "test@example.com")
	gitRun(t, dir, "config", "user.name", "Test User")
	gitRun(t, dir, "config", "core.abbrev", "7")
	writeTestFile(t, dir, "README.md", "# test\n")
	gitRun(t, dir, "add", ".")
	gitRun(t, dir, "commit", "-m", "initial commit")
	gitRun(t, dir, "branch", "-M", "main")
	return dir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
}

func gitOut(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err, "git %s", strings.Join(args, " "))
	return strings.TrimSpace(string(out))
}

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestIsGitRepo(t *testing.T) {
	requireGit(t)

	assert.True(t, isGitRepo(initTestRepo(t)))
	assert.False(t, isGitRepo(t.TempDir()))
}

func TestCurrentBranch(t *testing.T) {
	repo := initTestRepo(t)

	branch, err := currentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestCurrentBranchDetachedHead(t *testing.T) {
	repo := initTestRepo(t)
	gitRun(t, repo, "checkout", "--detach")

	branch, err := currentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, gitOut(t, repo, "rev-parse", "--short=7", "HEAD"), branch)
}

func TestStatusCleanRepo(t *testing.T) {
	repo := initTestRepo(t)

	st, err := status(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, "main", st.Branch)
	assert.Zero(t, st.Ahead)
	assert.Zero(t, st.Behind)
	assert.Empty(t, st.Staged)
	assert.Empty(t, st.Unstaged)
	assert.Empty(t, st.Untracked)
}

func TestStatusSeesChanges(t *testing.T) {
	repo := initTestRepo(t)

	writeTestFile(t, repo, "untracked.txt", "new\n")
	writeTestFile(t, repo, "README.md", "# test\nchanged\n")
	writeTestFile(t, repo, "staged.txt", "staged\n")
	gitRun(t, repo, "add", "staged.txt")

	st, err := status(context.Background(), repo)
	require.NoError(t, err)

	assert.Contains(t, st.Untracked, "untracked.txt")
	assert.Contains(t, st.Staged, domain.FileStatus{Path: "staged.txt", Status: domain.ChangeAdded})
	assert.Contains(t, st.Unstaged, domain.FileStatus{Path: "README.md", Status: domain.ChangeModified})
}

func TestStatusStagedRename(t *testing.T) {
	repo := initTestRepo(t)
	gitRun(t, repo, "mv", "README.md", "DOCS.md")

	st, err := status(context.Background(), repo)
	require.NoError(t, err)

	assert.Contains(t, st.Staged, domain.FileStatus{
		Path:    "DOCS.md",
		Status:  domain.ChangeRenamed,
		OldPath: "README.md",
	})
}

func TestStatusNotARepo(t *testing.T) {
	requireGit(t)

	_, err := status(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestCommitLog(t *testing.T) {
	repo := initTestRepo(t)
	writeTestFile(t, repo, "feature.txt", "work\n")
	gitRun(t, repo, "add", ".")
	gitRun(t, repo, "commit", "-m", "add feature\n\nwith a longer body")

	commits, err := commitLog(context.Background(), repo, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	newest := commits[0]
	assert.Equal(t, "add feature\n\nwith a longer body", newest.Message)
	assert.Equal(t, "Test User", newest.Author)
	assert.Equal(t, "test@example.com", newest.Email)
	assert.Len(t, newest.ID, 40)
	assert.Len(t, newest.ShortID, 7)

	_, err = time.Parse(time.RFC3339, newest.Timestamp)
	assert.NoError(t, err)

	assert.Equal(t, "initial commit", commits[1].Message)
}

func TestCommitLogHonorsLimit(t *testing.T) {
	repo := initTestRepo(t)
	writeTestFile(t, repo, "second.txt", "x\n")
	gitRun(t, repo, "add", ".")
	gitRun(t, repo, "commit", "-m", "second")

	commits, err := commitLog(context.Background(), repo, 1)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "second", commits[0].Message)
}

func TestCommitLogNotARepo(t *testing.T) {
	requireGit(t)

	_, err := commitLog(context.Background(), t.TempDir(), 10)
	require.ErrorIs(t, err, domain.ErrInvalid)
}

func TestBranches(t *testing.T) {
	repo := initTestRepo(t)
	gitRun(t, repo, "branch", "feature")

	list, err := branches(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]domain.Branch{}
	for _, b := range list {
		byName[b.Name] = b
	}

	require.Contains(t, byName, "main")
	assert.True(t, byName["main"].IsCurrent)
	assert.False(t, byName["main"].IsRemote)

	require.Contains(t, byName, "feature")
	assert.False(t, byName["feature"].IsCurrent)
}

func TestDiffStatsCleanRepo(t *testing.T) {
	repo := initTestRepo(t)

	deltas, err := diffStats(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, deltas)
}

func TestDiffStatsCountsLines(t *testing.T) {
	repo := initTestRepo(t)
	writeTestFile(t, repo, "README.md", "# test\nmore\nlines\n")

	deltas, err := diffStats(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, deltas, 1)

	assert.Equal(t, "README.md", deltas[0].Path)
	assert.Equal(t, 2, deltas[0].Added)
	assert.Equal(t, 0, deltas[0].Removed)
}

func TestDiffStatsBeforeFirstCommit(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	gitRun(t, dir, "init")
	writeTestFile(t, dir, "a.txt", "one\ntwo\n")
	gitRun(t, dir, "add", ".")

	deltas, err := diffStats(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, "a.txt", deltas[0].Path)
	assert.Equal(t, 2, deltas[0].Added)
}
