package vcs

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/exec"
)

// BazaarClient implements Client with the bzr (or brz) command line client.
type BazaarClient struct {
	cmd string
}

func (*BazaarClient) Type() Type { return Bazaar }

func (b *BazaarClient) binary() (string, error) {
	if b.cmd != "" {
		return b.cmd, nil
	}
	cmd, _, err := exec.Which("version", os.Getenv("BZR_BINARY"), "bzr", "brz")
	if err != nil {
		return "", errors.Wrap(err, "could not find Bazaar binary")
	}
	b.cmd = cmd
	return cmd, nil
}

// Import implements Client.
func (b *BazaarClient) Import(dir string, opts ImportOptions) (string, error) {
	cmd, err := b.binary()
	if err != nil {
		return "", err
	}
	exists, err := prepare(dir, Bazaar, opts.Force)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	run := func(dir string, argv ...string) error {
		stdout, stderr, err := exec.Run(exec.Cmd{Name: cmd, Argv: argv, Dir: dir})
		out.WriteString(stdout)
		out.WriteString(stderr)
		return err
	}

	revision := []string{}
	if opts.Version != "" {
		revision = []string{"-r", opts.Version}
	}
	if exists {
		pull := []string{"pull", opts.URL}
		if opts.Force {
			pull = append(pull, "--overwrite")
		}
		if err := run(dir, pull...); err != nil {
			return out.String(), err
		}
		if err := run(dir, append([]string{"update"}, revision...)...); err != nil {
			return out.String(), err
		}
	} else {
		if err := run("", append(append([]string{"branch"}, revision...), opts.URL, dir)...); err != nil {
			return out.String(), err
		}
	}

	revno, _, err := exec.Run(exec.Cmd{Name: cmd, Argv: []string{"revno"}, Dir: dir})
	if err != nil {
		return out.String(), err
	}
	fmt.Fprintf(&out, "Working tree is now at revision %s\n", strings.TrimSpace(revno))
	return out.String(), nil
}
