package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepoWithCommit creates a repository in dir with a single commit and
// returns the commit hash.
func initRepoWithCommit(t *testing.T, dir string) string {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return hash.String()
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hash := initRepoWithCommit(t, dir)

	info, ok := Describe(dir)
	require.True(t, ok)

	assert.Equal(t, hash[:7], info.Commit)
	assert.NotEmpty(t, info.Branch)
	assert.NotEmpty(t, info.Root)
}

func TestDescribe_DetectsFromSubdirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hash := initRepoWithCommit(t, dir)

	sub := filepath.Join(dir, "deep", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info, ok := Describe(sub)
	require.True(t, ok)
	assert.Equal(t, hash[:7], info.Commit)
}

func TestDescribe_NotARepository(t *testing.T) {
	t.Parallel()

	_, ok := Describe(t.TempDir())
	assert.False(t, ok)
}

func TestDescribe_EmptyRepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	// HEAD exists but points at an unborn branch.
	_, ok := Describe(dir)
	assert.False(t, ok)
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		info     Info
		expected string
	}{
		"branch and commit": {
			info:     Info{Branch: "main", Commit: "ab12cd3"},
			expected: "main@ab12cd3",
		},
		"detached head": {
			info:     Info{Commit: "ab12cd3"},
			expected: "ab12cd3",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.info.String())
		})
	}
}
