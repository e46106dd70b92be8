package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	isatty "github.com/mattn/go-isatty"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/flags"
	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/files"
	"github.com/gazebo-tooling/gz-dashboard/jobs"
)

// Stdin is the manifest location that reads from standard input.
const Stdin = "-"

/**** Global configuration keys ****/

// Interactive is true if the user desires interactive output (colors and
// spinners) and w, the stream diagnostics are written to, is a terminal.
func Interactive(w io.Writer) bool {
	if BoolFlag(flags.NoAnsi) {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// Debug is true if the user has requested debug-level logging.
func Debug() bool {
	return BoolFlag(flags.Debug)
}

/**** Sync configuration keys ****/

// ManifestURI is the file, URL or "-" to read the distribution manifest from.
func ManifestURI() string {
	return TryStrings(StringFlag(flags.Config), os.Getenv("GZ_DASHBOARD_CONFIG"), Stdin)
}

// Path is the absolute, home-expanded directory that distributions are synced
// into. It must already exist.
func Path() (string, error) {
	raw := TryStrings(StringFlag(flags.Path), ".")
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return "", &errors.Error{
			Type:    errors.User,
			Cause:   err,
			Message: fmt.Sprintf("could not expand path %q", raw),
		}
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, "could not resolve path %q", expanded)
	}
	ok, err := files.ExistsFolder(abs)
	if err != nil {
		return "", errors.Wrapf(err, "could not stat %q", abs)
	}
	if !ok {
		return "", &errors.Error{
			Type:            errors.User,
			Message:         fmt.Sprintf("%s is not an existing directory", abs),
			Troubleshooting: "Create the directory first, or pass an existing one with --path.",
		}
	}
	return abs, nil
}

// Clean is true if repository directories are removed before importing.
func Clean() bool {
	return BoolFlag(flags.Clean)
}

// Force is true if mismatching checkouts are replaced.
func Force() bool {
	return BoolFlag(flags.Force)
}

func SkipExisting() bool {
	return BoolFlag(flags.SkipExisting)
}

func Shallow() bool {
	return BoolFlag(flags.Shallow)
}

func Recursive() bool {
	return BoolFlag(flags.Recursive)
}

func Workers() int {
	n, set := IntFlag(flags.Workers)
	return TryInt(n, set, 1, jobs.DefaultWorkers)
}

func Retry() int {
	n, set := IntFlag(flags.Retry)
	return TryInt(n, set, 0, jobs.DefaultRetry)
}

// Distributions are the glob patterns selecting which distributions to sync.
// An empty list selects all of them.
func Distributions() []string {
	return StringSliceFlag(flags.Distribution)
}

// JobOptions builds the import options shared by every distribution.
func JobOptions() (jobs.Options, error) {
	path, err := Path()
	if err != nil {
		return jobs.Options{}, err
	}
	opts := jobs.DefaultOptions()
	opts.Path = path
	opts.Clean = Clean()
	opts.Force = Force()
	opts.SkipExisting = SkipExisting()
	opts.Shallow = Shallow()
	opts.Recursive = Recursive()
	opts.Workers = Workers()
	opts.Retry = Retry()
	return opts, nil
}
