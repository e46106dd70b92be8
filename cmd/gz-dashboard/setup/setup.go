// Package setup implements initialization for all application packages.
package setup

import (
	"io"

	"github.com/urfave/cli"

	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/display"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/flags"
	"github.com/gazebo-tooling/gz-dashboard/config"
)

// SetContext initializes all application-level packages. Log output goes to
// errWriter.
func SetContext(ctx *cli.Context, errWriter io.Writer) error {
	// Set up logging first, so configuration can log as it is initialized.
	display.SetWriter(errWriter)
	display.SetDebug(ctx.Bool(flags.Debug))

	err := config.SetContext(ctx)
	if err != nil {
		return err
	}

	display.SetInteractive(config.Interactive(errWriter))
	display.SetDebug(config.Debug())
	return nil
}
