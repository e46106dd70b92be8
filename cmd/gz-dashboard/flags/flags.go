// Package flags holds the command line flags shared between commands.
package flags

import (
	"fmt"
	"reflect"

	"github.com/urfave/cli"
)

func abbr(short, fullname string) string {
	return fmt.Sprintf("%s, %s", fullname, short)
}

// Combine merges flag lists, dropping exact duplicates. Two different flags
// sharing a name are a programming error.
func Combine(lists ...[]cli.Flag) []cli.Flag {
	var combined []cli.Flag
	seen := make(map[string]cli.Flag)
	for _, list := range lists {
		for _, f := range list {
			prev, ok := seen[f.GetName()]
			if ok {
				if !reflect.DeepEqual(prev, f) {
					panic(fmt.Sprintf("conflicting definitions for flag %q", f.GetName()))
				}
				continue
			}
			seen[f.GetName()] = f
			combined = append(combined, f)
		}
	}
	return combined
}

func WithGlobalFlags(f []cli.Flag) []cli.Flag {
	return append(f, Global...)
}

var (
	Global  = []cli.Flag{NoAnsiF, DebugF}
	NoAnsi  = "no-ansi"
	NoAnsiF = cli.BoolFlag{Name: NoAnsi, Usage: "do not use interactive mode (ANSI codes)"}
	Debug   = "debug"
	DebugF  = cli.BoolFlag{Name: Debug, Usage: "print debug information to stderr"}
)

func WithSyncFlags(f []cli.Flag) []cli.Flag {
	return append(f, Sync...)
}

var (
	Sync          = []cli.Flag{ConfigF, PathF, CleanF, ForceF, SkipExistingF, ShallowF, RecursiveF, WorkersF, RetryF, DistributionF}
	Config        = "config"
	ConfigF       = cli.StringFlag{Name: abbr("c", Config), Value: "-", Usage: "distribution manifest to read (`FILE_OR_URL`, '-' for stdin)", EnvVar: "GZ_DASHBOARD_CONFIG"}
	Path          = "path"
	PathF         = cli.StringFlag{Name: Path, Value: ".", Usage: "existing `DIR` to sync distributions into"}
	Clean         = "clean"
	CleanF        = cli.BoolFlag{Name: Clean, Usage: "remove repository directories before importing them"}
	Force         = "force"
	ForceF        = cli.BoolFlag{Name: Force, Usage: "replace checkouts whose remote does not match and discard local changes"}
	SkipExisting  = "skip-existing"
	SkipExistingF = cli.BoolFlag{Name: SkipExisting, Usage: "leave repository directories that already exist untouched"}
	Shallow       = "shallow"
	ShallowF      = cli.BoolFlag{Name: Shallow, Usage: "clone with minimal history where the VCS supports it"}
	Recursive     = "recursive"
	RecursiveF    = cli.BoolFlag{Name: Recursive, Usage: "also check out submodules"}
	Workers       = "workers"
	WorkersF      = cli.IntFlag{Name: Workers, Value: 4, Usage: "number of repositories to import in parallel"}
	Retry         = "retry"
	RetryF        = cli.IntFlag{Name: Retry, Value: 2, Usage: "times to retry a failed import"}
	Distribution  = "distribution"
	DistributionF = cli.StringSliceFlag{Name: abbr("d", Distribution), Usage: "only sync distributions matching this `GLOB` (repeatable)"}
)
