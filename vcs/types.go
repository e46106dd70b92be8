package vcs

import (
	"strings"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

// Type represents a type of version control system.
type Type int

const (
	_ Type = iota
	Subversion
	Git
	Mercurial
	Bazaar
)

// Types has the VCS types that are identifiable by their metadata folder.
var Types = [4]Type{
	Git,
	Mercurial,
	Subversion,
	Bazaar,
}

// ParseType parses the `type` field of a repository entry.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "git":
		return Git, nil
	case "hg", "mercurial":
		return Mercurial, nil
	case "svn", "subversion":
		return Subversion, nil
	case "bzr", "bazaar":
		return Bazaar, nil
	default:
		return 0, errors.Errorf("unsupported repository type %q", s)
	}
}

func (t Type) String() string {
	switch t {
	case Subversion:
		return "svn"
	case Git:
		return "git"
	case Mercurial:
		return "hg"
	case Bazaar:
		return "bzr"
	default:
		return "unknown"
	}
}

// MetadataFolder is the folder a checkout of the given type keeps at its root.
func MetadataFolder(vcs Type) string {
	switch vcs {
	case Subversion:
		return ".svn"
	case Git:
		return ".git"
	case Mercurial:
		return ".hg"
	case Bazaar:
		return ".bzr"
	default:
		return ""
	}
}

// Revision identifies the state of a checkout.
type Revision struct {
	Branch     string
	RevisionID string
}

func (r Revision) String() string {
	if r.Branch == "" {
		return r.RevisionID
	}
	return r.RevisionID + " (" + r.Branch + ")"
}
