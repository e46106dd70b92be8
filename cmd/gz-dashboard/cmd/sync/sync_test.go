package sync_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	gosync "sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/cmd/sync"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/display"
	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/jobs"
	"github.com/gazebo-tooling/gz-dashboard/resolve"
	"github.com/gazebo-tooling/gz-dashboard/testing/helpers"
	"github.com/gazebo-tooling/gz-dashboard/vcs"
)

const repositories = `repositories:
  gz-math:
    type: git
    url: https://github.com/gazebosim/gz-math
    version: gz-math7
  gz-math/vendor/eigen:
    type: git
    url: https://gitlab.com/libeigen/eigen
`

type recorder struct {
	mu   gosync.Mutex
	dirs []string
}

func (r *recorder) Type() vcs.Type { return vcs.Git }

func (r *recorder) Import(dir string, opts vcs.ImportOptions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = append(r.dirs, dir)
	return "imported " + opts.URL + "\n", nil
}

func (r *recorder) imported() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	dirs := append([]string(nil), r.dirs...)
	sort.Strings(dirs)
	return dirs
}

type fixture struct {
	dir      string
	client   *recorder
	out, err bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	display.Test()
	color.NoColor = true
	return &fixture{dir: helpers.TempDir(t), client: &recorder{}}
}

func (f *fixture) sync(manifest string) sync.Sync {
	opts := jobs.DefaultOptions()
	opts.Path = filepath.Join(f.dir, "ws")
	opts.RetryDelay = 0
	opts.NewClient = func(vcs.Type) (vcs.Client, error) { return f.client, nil }
	return sync.Sync{
		Resolver:    resolve.New("gz-dashboard/test"),
		Streams:     sync.Streams{Out: &f.out, Err: &f.err},
		ManifestURI: manifest,
		Options:     opts,
	}
}

func (f *fixture) workspace(t *testing.T) {
	require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "ws"), 0755))
}

func TestDoSyncsLocalDistribution(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", repositories)
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf("distributions:\n  core:\n    url: %s\n", list))

	failed, err := f.sync(manifest).Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	core := filepath.Join(f.dir, "ws", "core")
	assert.DirExists(t, core)
	assert.Equal(t, []string{
		filepath.Join(core, "gz-math"),
		filepath.Join(core, "gz-math", "vendor", "eigen"),
	}, f.client.imported())
	assert.Contains(t, f.out.String(), "Syncing distribution: core\n")
	assert.Contains(t, f.out.String(), "=== gz-math (git) ===\nimported https://github.com/gazebosim/gz-math\n")
	assert.Empty(t, f.err.String())
	helpers.AssertUnixFile(t, f.out.Bytes())
}

func TestDoIsolatesFailingDistribution(t *testing.T) {
	var agents []string
	var mu gosync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.UserAgent())
		mu.Unlock()
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", repositories)
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf(`distributions:
  broken:
    url: %s/repos.yaml
  core:
    url: %s
`, server.URL, list))

	failed, err := f.sync(manifest).Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	assert.Len(t, f.client.imported(), 2)
	assert.Contains(t, f.out.String(), "Syncing distribution: core")
	assert.NotContains(t, f.out.String(), "Syncing distribution: broken")
	assert.Contains(t, f.err.String(), "403 Forbidden")
	assert.Contains(t, f.err.String(), "Error importing broken")
	assert.NotContains(t, f.err.String(), "Error importing core")
	assert.Equal(t, []string{"gz-dashboard/test"}, agents)
}

func TestDoMissingDistributionsKeyIsFatal(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", "core:\n  url: ./repos.yaml\n")

	failed, err := f.sync(manifest).Do(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.IsType(err, errors.Format))
	assert.Equal(t, 0, failed)
	assert.Empty(t, f.client.imported())
	assert.Empty(t, f.out.String())
}

func TestDoMissingManifestIsFatal(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)

	_, err := f.sync(filepath.Join(f.dir, "missing.yaml")).Do(context.Background())
	assert.True(t, errors.IsType(err, errors.Resolution))
}

func TestDoReadsManifestFromStdin(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", repositories)

	s := f.sync("-")
	s.Streams.In = strings.NewReader(fmt.Sprintf("distributions:\n  core:\n    url: %s\n", list))
	failed, err := s.Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
	assert.Len(t, f.client.imported(), 2)
}

func TestDoFiltersDistributions(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", repositories)
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf(`distributions:
  garden:
    url: %s
  harmonic:
    url: %s
  fortress:
    url: %s
`, list, list, list))

	s := f.sync(manifest)
	s.Patterns = []string{"gar*", "fortress"}
	failed, err := s.Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	assert.Contains(t, f.out.String(), "Syncing distribution: garden")
	assert.Contains(t, f.out.String(), "Syncing distribution: fortress")
	assert.NotContains(t, f.out.String(), "harmonic")
	assert.NoDirExists(t, filepath.Join(f.dir, "ws", "harmonic"))
}

func TestDoCopiesOptionsPerDistribution(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", "repositories:\n  gz-cmake:\n    type: git\n    url: https://github.com/gazebosim/gz-cmake\n")
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf(`distributions:
  garden:
    url: %s
  harmonic:
    url: %s
`, list, list))

	s := f.sync(manifest)
	failed, err := s.Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	ws := filepath.Join(f.dir, "ws")
	assert.Equal(t, ws, s.Options.Path)
	assert.Equal(t, []string{
		filepath.Join(ws, "garden", "gz-cmake"),
		filepath.Join(ws, "harmonic", "gz-cmake"),
	}, f.client.imported())
}

func TestDoReportsInvalidDistributions(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", "repositories:\n  gz-sim:\n    url: https://github.com/gazebosim/gz-sim\n")
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf(`distributions:
  nourl:
    branch: main
  untyped:
    url: %s
`, list))

	failed, err := f.sync(manifest).Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, failed)
	assert.Empty(t, f.client.imported())
	assert.Contains(t, f.err.String(), "distribution nourl has no url")
	assert.Contains(t, f.err.String(), "Error importing nourl")
	assert.Contains(t, f.err.String(), "Error importing untyped")
	assert.Contains(t, f.out.String(), "1 of 1 repositories failed")
}

func TestCommandExitsNonzeroOnFailure(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", "repositories:\n  gz-sim:\n    url: https://github.com/gazebosim/gz-sim\n")
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf("distributions:\n  core:\n    url: %s\n", list))

	code := -1
	exiter := cli.OsExiter
	cli.OsExiter = func(c int) { code = c }
	defer func() { cli.OsExiter = exiter }()

	app := cli.NewApp()
	app.Writer = &f.out
	app.ErrWriter = &f.err
	app.Commands = []cli.Command{sync.Cmd}
	defer display.Test()

	_ = app.Run([]string{"gz-dashboard", "sync", "--no-ansi", "-c", manifest, "--path", filepath.Join(f.dir, "ws")})
	assert.Equal(t, 1, code)
	assert.Contains(t, f.out.String(), "Syncing distribution: core")
	assert.Contains(t, f.err.String(), "Error importing core")
}

func TestCommandRejectsMissingPath(t *testing.T) {
	f := newFixture(t)

	code := -1
	exiter := cli.OsExiter
	cli.OsExiter = func(c int) { code = c }
	defer func() { cli.OsExiter = exiter }()

	app := cli.NewApp()
	app.Writer = &f.out
	app.ErrWriter = &f.err
	app.Commands = []cli.Command{sync.Cmd}
	defer display.Test()

	_ = app.Run([]string{"gz-dashboard", "sync", "--no-ansi", "--path", filepath.Join(f.dir, "missing")})
	assert.Equal(t, 1, code)
	assert.Contains(t, f.err.String(), "is not an existing directory")
}

func TestDoImportsGitRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	f := newFixture(t)
	f.workspace(t)
	origin, _, first := helpers.GitUpstream(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", fmt.Sprintf("repositories:\n  gz-utils:\n    type: git\n    url: %s\n    version: v1.0\n", origin))
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf("distributions:\n  core:\n    url: %s\n", list))

	s := f.sync(manifest)
	s.Options.NewClient = nil
	failed, err := s.Do(context.Background())
	require.NoError(t, err, f.err.String())
	assert.Equal(t, 0, failed, f.out.String())

	checkout := filepath.Join(f.dir, "ws", "core", "gz-utils")
	repo, err := vcs.NewGitRepository(checkout)
	require.NoError(t, err)
	rev, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, first.String(), rev.RevisionID)
}

func TestDoRejectsDistributionsOutsidePath(t *testing.T) {
	f := newFixture(t)
	f.workspace(t)
	list := helpers.WriteFile(t, f.dir, "repos.yaml", repositories)
	manifest := helpers.WriteFile(t, f.dir, "distributions.yaml", fmt.Sprintf(`distributions:
  ../escaped:
    url: %s
  nested/dir:
    url: %s
  core:
    url: %s
`, list, list, list))

	failed, err := f.sync(manifest).Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, failed)

	assert.NoDirExists(t, filepath.Join(f.dir, "escaped"))
	assert.NoDirExists(t, filepath.Join(f.dir, "ws", "nested"))
	for _, dir := range f.client.imported() {
		assert.True(t, strings.HasPrefix(dir, filepath.Join(f.dir, "ws", "core")+string(filepath.Separator)), dir)
	}
	assert.Len(t, f.client.imported(), 2)
	assert.Contains(t, f.err.String(), "Error importing ../escaped")
	assert.Contains(t, f.err.String(), "Error importing nested/dir")
	assert.NotContains(t, f.err.String(), "Error importing core")
}
