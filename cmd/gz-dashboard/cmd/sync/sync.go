// Package sync implements the `sync` command, which brings every repository of
// a set of distributions to its target version.
package sync

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/display"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/flags"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/setup"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/version"
	"github.com/gazebo-tooling/gz-dashboard/config"
	"github.com/gazebo-tooling/gz-dashboard/distribution"
	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/files"
	"github.com/gazebo-tooling/gz-dashboard/jobs"
	"github.com/gazebo-tooling/gz-dashboard/repos"
	"github.com/gazebo-tooling/gz-dashboard/resolve"
)

var Cmd = cli.Command{
	Name:   "sync",
	Usage:  "Sync a set of distribution repositories to latest",
	Action: Run,
	Flags:  flags.WithGlobalFlags(flags.WithSyncFlags(nil)),
}

var _ cli.ActionFunc = Run

// Streams are where a sync reads the manifest from when it is given as "-",
// and where it writes results and diagnostics.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Sync holds everything one run needs.
type Sync struct {
	Resolver distribution.Resolver
	Streams  Streams

	// ManifestURI is a file, a URL or "-".
	ManifestURI string
	// Patterns select distributions by name. Empty selects all of them.
	Patterns []string
	// Options are copied for every distribution.
	Options jobs.Options
}

func Run(ctx *cli.Context) error {
	streams := Streams{In: os.Stdin, Out: ctx.App.Writer, Err: ctx.App.ErrWriter}
	if streams.Out == nil {
		streams.Out = os.Stdout
	}
	if streams.Err == nil {
		streams.Err = os.Stderr
	}

	err := setup.SetContext(ctx, streams.Err)
	if err != nil {
		return fail(streams.Err, err)
	}

	opts, err := config.JobOptions()
	if err != nil {
		return fail(streams.Err, err)
	}

	s := Sync{
		Resolver:    resolve.New(version.UserAgent()),
		Streams:     streams,
		ManifestURI: config.ManifestURI(),
		Patterns:    config.Distributions(),
		Options:     opts,
	}
	failed, err := s.Do(context.Background())
	if err != nil {
		return fail(streams.Err, err)
	}
	if failed > 0 {
		return cli.NewExitError("", 1)
	}
	return nil
}

func fail(w io.Writer, err error) error {
	fmt.Fprintln(w, color.RedString(errors.Report(err)))
	return cli.NewExitError("", 1)
}

// Do syncs every selected distribution and returns how many failed. An error
// is only returned when the manifest itself cannot be loaded.
func (s Sync) Do(ctx context.Context) (int, error) {
	manifest, err := s.manifest()
	if err != nil {
		return 0, err
	}
	manifest, err = manifest.Filter(s.Patterns)
	if err != nil {
		return 0, err
	}
	if len(manifest) == 0 {
		log.WithField("patterns", s.Patterns).Warn("no distributions selected")
	}

	failed := 0
	for _, d := range manifest {
		if !s.distribution(ctx, d, s.Options) {
			failed++
			fmt.Fprintln(s.Streams.Err, color.RedString("Error importing %s", d.Name))
		}
	}
	return failed, nil
}

func (s Sync) manifest() (distribution.Manifest, error) {
	if s.ManifestURI != config.Stdin {
		return distribution.Load(s.Resolver, s.ManifestURI)
	}
	log.Debug("reading distribution manifest from standard input")
	return distribution.Load(stdin{s.Streams.In}, s.ManifestURI)
}

// distribution syncs a single distribution. opts is this distribution's own
// copy.
func (s Sync) distribution(ctx context.Context, d distribution.Distribution, opts jobs.Options) bool {
	if err := distribution.ValidateName(d.Name); err != nil {
		s.report(err)
		return false
	}
	opts.Path = filepath.Join(opts.Path, d.Name)
	logger := log.WithFields(log.Fields{"distribution": d.Name, "path": opts.Path})

	if err := files.Mkdir(opts.Path); err != nil {
		s.report(errors.Wrapf(err, "could not create %s", opts.Path))
		return false
	}

	if d.Config.URL == "" {
		s.report(errors.Formatf(nil, "distribution %s has no url", d.Name))
		return false
	}

	list, err := s.repositories(d.Config.URL)
	if err != nil {
		s.report(err)
		return false
	}
	logger.WithField("repositories", len(list)).Debug("loaded repository list")

	js := jobs.Generate(list, opts)
	jobs.AddDependencies(js)

	fmt.Fprintf(s.Streams.Out, "Syncing distribution: %s\n", d.Name)
	results := jobs.Execute(ctx, js, opts, func(completed, total int, _ jobs.Result) {
		display.InProgress(fmt.Sprintf("Synced %d/%d repositories of %s", completed, total, d.Name))
	})
	display.ClearProgress()

	jobs.Output(s.Streams.Out, results)
	return jobs.Failed(results) == 0
}

func (s Sync) repositories(uri string) ([]repos.Repository, error) {
	r, err := s.Resolver.Resolve(uri)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return repos.Parse(r)
}

func (s Sync) report(err error) {
	fmt.Fprintln(s.Streams.Err, color.RedString(errors.Report(err)))
}

// stdin resolves the manifest from standard input.
type stdin struct {
	in io.Reader
}

func (r stdin) Resolve(string) (io.ReadCloser, error) {
	if r.in == nil {
		return nil, errors.Resolutionf(nil, "no standard input to read the manifest from")
	}
	return ioutil.NopCloser(r.in), nil
}
