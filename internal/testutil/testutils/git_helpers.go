package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// SetupTestGitRepo initializes a repository in a temp directory and returns
// it with its worktree and path.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "init git repo")
	wt, err := repo.Worktree()
	require.NoError(t, err, "open worktree")
	return repo, wt, dir
}

// CommitFile writes body to rel inside the worktree at root, commits it and
// returns the commit hash.
func CommitFile(t *testing.T, wt *git.Worktree, root, rel, body string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	_, err := wt.Add(rel)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+rel, &git.CommitOptions{
		Author: &object.Signature{Name: "Docs Bot", Email: "docs@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}
