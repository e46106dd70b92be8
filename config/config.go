// Package config implements application-level configuration functionality.
//
// It works by holding the command's CLI context and providing functions which
// compute each configuration value from its sources (flags, environment,
// defaults). Every value can change how it is computed independently of the
// others.
package config

import (
	"github.com/apex/log"
	"github.com/urfave/cli"
)

var ctx *cli.Context

// SetContext initializes application-level configuration from a command's
// context.
func SetContext(c *cli.Context) error {
	ctx = c
	log.WithFields(log.Fields{
		"config":  ManifestURI(),
		"debug":   Debug(),
		"workers": Workers(),
		"retry":   Retry(),
	}).Debug("configuration initialized")
	return nil
}
