// Package vcs brings repository checkouts to a target revision.
//
// Git is driven in-process through go-git. Mercurial, Subversion and Bazaar
// shell out to their command line clients, which may be overridden with the
// HG_BINARY, SVN_BINARY and BZR_BINARY environment variables.
package vcs

import (
	"io/ioutil"
	"os"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/files"
)

// ImportOptions describe the desired state of a checkout.
type ImportOptions struct {
	URL     string
	Version string // Branch, tag or revision. Empty keeps the current one.

	Shallow   bool // Clone with minimal history where supported.
	Recursive bool // Also check out submodules where supported.
	Force     bool // Replace mismatching remotes and discard local changes.
}

// A Client creates or updates checkouts of one VCS type.
type Client interface {
	Type() Type
	// Import clones URL into dir when dir has no checkout, otherwise updates
	// it, then checks out Version. The returned output is meant for the user.
	Import(dir string, opts ImportOptions) (output string, err error)
}

// ClientFor returns the client for a VCS type.
func ClientFor(t Type) (Client, error) {
	switch t {
	case Git:
		return GitClient{}, nil
	case Mercurial:
		return &MercurialClient{}, nil
	case Subversion:
		return &SubversionClient{}, nil
	case Bazaar:
		return &BazaarClient{}, nil
	default:
		return nil, errors.Errorf("no client for repository type %s", t)
	}
}

// prepare checks whether dir holds a checkout of type t. A missing or empty
// directory needs a fresh clone. Anything else must be a checkout of type t.
func prepare(dir string, t Type, force bool) (exists bool, err error) {
	ok, err := files.ExistsFolder(dir, MetadataFolder(t))
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if !files.ExistsAny(dir) {
		return false, nil
	}
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}
	if force {
		return false, os.RemoveAll(dir)
	}
	found, err := Detect(dir)
	if err == nil {
		return false, &errors.Error{
			Type:            errors.User,
			Message:         "path " + dir + " already contains a " + found.String() + " checkout, not " + t.String(),
			Troubleshooting: "Remove the directory or run sync with --clean.",
		}
	}
	return false, &errors.Error{
		Type:            errors.User,
		Message:         "path " + dir + " already exists and is not a " + t.String() + " checkout",
		Troubleshooting: "Remove the directory or run sync with --clean.",
	}
}
