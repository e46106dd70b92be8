package main

import (
	"os"

	"github.com/apex/log"

	"github.com/gazebo-tooling/gz-dashboard/cmd/gz-dashboard/app"
)

var App = app.New()

func main() {
	err := App.Run(os.Args)
	if err != nil {
		log.Debugf("exiting: %s", err)
		os.Exit(1)
	}
}
