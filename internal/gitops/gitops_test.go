package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ledger.csv"), []byte("id\n"), 0o644))

	hash, err := CommitAll(dir, "import: chase-checking", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "import: chase-checking|Test Author <test@example.com>")
}

func TestCommitAll_Clean(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	_, err := CommitAll(dir, "first", testAuthor)
	require.NoError(t, err)

	_, err = CommitAll(dir, "second", testAuthor)
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestGitVerb(t *testing.T) {
	assert.Equal(t, "commit", gitVerb([]string{"-c", "user.name=x", "commit", "-m", "y"}))
	assert.Equal(t, "add", gitVerb([]string{"add", "-A"}))
	assert.Equal(t, "", gitVerb(nil))
}

func TestAuthorString(t *testing.T) {
	assert.Equal(t, "Tally <tally@localhost>", Author{Name: "Tally", Email: "tally@localhost"}.String())
}
