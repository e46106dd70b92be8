// Package helpers holds fixtures shared by tests.
package helpers

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

// TempDir creates a directory that is removed when the test finishes.
func TempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "gz-dashboard-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// WriteFile writes contents to dir/name and returns the file's path.
func WriteFile(t *testing.T, dir, name, contents string) string {
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, ioutil.WriteFile(p, []byte(contents), 0644))
	return p
}

// AssertUnixFile ensures that every line ending is a bare line feed ("\n").
func AssertUnixFile(t *testing.T, file []byte) {
	fixture := string(file)
	for i := range fixture {
		if i == 0 {
			continue
		}
		if fixture[i] == '\n' {
			assert.NotEqual(t, uint8('\r'), fixture[i-1])
		}
	}
}

// GitUpstream creates a repository with one commit on master tagged v1.0.
func GitUpstream(t *testing.T) (dir string, r *git.Repository, first plumbing.Hash) {
	dir = TempDir(t)
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	first = GitCommit(t, dir, r, "first")
	_, err = r.CreateTag("v1.0", first, nil)
	require.NoError(t, err)
	return dir, r, first
}

// GitCommit replaces README.md with content and commits it.
func GitCommit(t *testing.T, dir string, r *git.Repository, content string) plumbing.Hash {
	WriteFile(t, dir, "README.md", content)
	w, err := r.Worktree()
	require.NoError(t, err)
	_, err = w.Add("README.md")
	require.NoError(t, err)
	h, err := w.Commit(content, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h
}
