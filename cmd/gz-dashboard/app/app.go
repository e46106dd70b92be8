package app

import (
	"github.com/urfave/cli"

	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/cmd/sync"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/flags"
	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/version"
)

func New() *cli.App {
	return &cli.App{
		Name:                 version.Name,
		Usage:                "Keep Gazebo distribution workspaces in sync",
		Version:              version.String(),
		Action:               cli.ShowAppHelp,
		EnableBashCompletion: true,
		Flags:                flags.Combine(flags.WithGlobalFlags(nil)),
		Commands: []cli.Command{
			sync.Cmd,
		},
	}
}
