package vcs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/testing/helpers"
	"github.com/gazebo-tooling/gz-dashboard/vcs"
)

func head(t *testing.T, dir string) vcs.Revision {
	repo, err := vcs.NewGitRepository(dir)
	require.NoError(t, err)
	rev, err := repo.Head()
	require.NoError(t, err)
	return rev
}

func TestGitImportCloneAndUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	origin, r, first := helpers.GitUpstream(t)
	target := filepath.Join(helpers.TempDir(t), "gz-math")

	out, err := vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin, Version: "master"})
	require.NoError(t, err, out)
	assert.Contains(t, out, "HEAD is now at")
	assert.Equal(t, vcs.Revision{Branch: "master", RevisionID: first.String()}, head(t, target))

	second := helpers.GitCommit(t, origin, r, "second")
	out, err = vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin, Version: "master"})
	require.NoError(t, err, out)
	assert.Equal(t, second.String(), head(t, target).RevisionID)

	repo, err := vcs.NewGitRepository(target)
	require.NoError(t, err)
	assert.Equal(t, origin, repo.Project())
}

func TestGitImportTagLeavesDetachedHead(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	origin, r, first := helpers.GitUpstream(t)
	helpers.GitCommit(t, origin, r, "second")
	target := filepath.Join(helpers.TempDir(t), "gz-math")

	out, err := vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin, Version: "v1.0"})
	require.NoError(t, err, out)
	assert.Equal(t, vcs.Revision{RevisionID: first.String()}, head(t, target))

	out, err = vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin, Version: first.String()})
	require.NoError(t, err, out)
	assert.Equal(t, first.String(), head(t, target).RevisionID)
}

func TestGitImportShallowTag(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	origin, r, first := helpers.GitUpstream(t)
	helpers.GitCommit(t, origin, r, "second")
	target := filepath.Join(helpers.TempDir(t), "gz-math")

	out, err := vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin, Version: "v1.0", Shallow: true})
	require.NoError(t, err, out)
	assert.Equal(t, first.String(), head(t, target).RevisionID)
	assert.Contains(t, out, "Cloned "+origin)
}

func TestGitImportUnknownVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	origin, _, _ := helpers.GitUpstream(t)
	target := filepath.Join(helpers.TempDir(t), "gz-math")

	_, err := vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin, Version: "no-such-branch"})
	assert.Error(t, err)
}

func TestGitImportMismatchingRemote(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	origin, _, _ := helpers.GitUpstream(t)
	other, r, _ := helpers.GitUpstream(t)
	otherHead := helpers.GitCommit(t, other, r, "other")
	target := filepath.Join(helpers.TempDir(t), "gz-math")

	_, err := vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: origin})
	require.NoError(t, err)

	_, err = vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: other})
	assert.True(t, errors.IsType(err, errors.User))

	out, err := vcs.GitClient{}.Import(target, vcs.ImportOptions{URL: other, Version: otherHead.String(), Force: true})
	assert.NoError(t, err, out)
	repo, err := vcs.NewGitRepository(target)
	require.NoError(t, err)
	assert.Equal(t, other, repo.Project())
	assert.Equal(t, otherHead.String(), head(t, target).RevisionID)
}
