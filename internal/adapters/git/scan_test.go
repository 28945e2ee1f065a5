package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralphtown/ralphtown/internal/domain"
)

// fakeRepo creates a directory carrying a .git entry, enough for the
// scanner's cheap detection
func fakeRepo(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0755))
	return path
}

func TestScanFindsReposWithinDepth(t *testing.T) {
	root := t.TempDir()

	alpha := fakeRepo(t, filepath.Join(root, "alpha"))
	gamma := fakeRepo(t, filepath.Join(root, "x", "gamma"))
	fakeRepo(t, filepath.Join(root, "x", "y", "beta")) // depth 3, out of reach

	found, err := scanForRepos(root, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alpha, gamma}, found)
}

func TestScanRootItselfIsRepo(t *testing.T) {
	root := fakeRepo(t, t.TempDir())
	fakeRepo(t, filepath.Join(root, "nested"))

	found, err := scanForRepos(root, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, found)
}

func TestScanDoesNotDescendIntoRepos(t *testing.T) {
	root := t.TempDir()
	outer := fakeRepo(t, filepath.Join(root, "outer"))
	fakeRepo(t, filepath.Join(outer, "vendor", "inner"))

	found, err := scanForRepos(root, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{outer}, found)
}

func TestScanSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	fakeRepo(t, filepath.Join(root, ".cache", "secret"))
	visible := fakeRepo(t, filepath.Join(root, "visible"))

	found, err := scanForRepos(root, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{visible}, found)
}

func TestScanDepthZeroChecksOnlyRoot(t *testing.T) {
	root := t.TempDir()
	fakeRepo(t, filepath.Join(root, "child"))

	found, err := scanForRepos(root, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := scanForRepos(filepath.Join(t.TempDir(), "nope"), 2)
	require.Error(t, err)
}

func TestScanRootIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := scanForRepos(file, 2)
	require.ErrorIs(t, err, domain.ErrInvalid)
}
