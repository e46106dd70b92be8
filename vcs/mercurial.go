package vcs

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/exec"
)

// MercurialClient implements Client with the hg command line client.
type MercurialClient struct {
	cmd string
}

func (*MercurialClient) Type() Type { return Mercurial }

func (m *MercurialClient) binary() (string, error) {
	if m.cmd != "" {
		return m.cmd, nil
	}
	cmd, _, err := exec.Which("--version", os.Getenv("HG_BINARY"), "hg")
	if err != nil {
		return "", errors.Wrap(err, "could not find Mercurial binary")
	}
	m.cmd = cmd
	return cmd, nil
}

// Import implements Client.
func (m *MercurialClient) Import(dir string, opts ImportOptions) (string, error) {
	cmd, err := m.binary()
	if err != nil {
		return "", err
	}
	exists, err := prepare(dir, Mercurial, opts.Force)
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

	if exists {
		current, err := runHgPaths(cmd, dir, "default")
		if err != nil {
			return out.String(), errors.Wrap(err, "could not determine the checkout's default path")
		}
		if current != opts.URL && !opts.Force {
			return out.String(), &errors.Error{
				Type:            errors.User,
				Message:         fmt.Sprintf("checkout at %s pulls from %q, expected %q", dir, current, opts.URL),
				Troubleshooting: "Remove the directory or run sync with --clean to replace the checkout.",
			}
		}
		if err := run(dir, "pull", opts.URL); err != nil {
			return out.String(), err
		}
	} else {
		if err := run("", "clone", "--noupdate", opts.URL, dir); err != nil {
			return out.String(), err
		}
	}

	update := []string{"update"}
	if opts.Force {
		update = append(update, "--clean")
	}
	if opts.Version != "" {
		update = append(update, opts.Version)
	}
	if err := run(dir, update...); err != nil {
		return out.String(), err
	}

	head, err := hgHead(cmd, dir)
	if err != nil {
		return out.String(), err
	}
	fmt.Fprintf(&out, "Working copy is now at %s\n", head)
	return out.String(), nil
}

func hgHead(cmd, dir string) (Revision, error) {
	branch, _, err := exec.Run(exec.Cmd{
		Name: cmd,
		Argv: []string{"branch"},
		Dir:  dir,
	})
	if err != nil {
		return Revision{}, errors.Wrapf(err, "could not run `%s branch`", cmd)
	}

	revisionID, _, err := exec.Run(exec.Cmd{
		Name: cmd,
		Argv: []string{"log", "-l", "1", "-r", ".", "--template", "{node}"},
		Dir:  dir,
	})
	if err != nil {
		return Revision{}, errors.Wrap(err, "could not get latest revision ID")
	}
	return Revision{
		Branch:     strings.TrimSpace(branch),
		RevisionID: strings.TrimSpace(revisionID),
	}, nil
}

func runHgPaths(cmd, dir, pathName string) (string, error) {
	url, _, err := exec.Run(exec.Cmd{
		Name: cmd,
		Argv: []string{"paths", pathName},
		Dir:  dir,
	})
	return strings.TrimSpace(url), err
}
