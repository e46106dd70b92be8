package vcs

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/exec"
)

// SubversionClient implements Client with the svn command line client.
type SubversionClient struct {
	cmd string
}

func (*SubversionClient) Type() Type { return Subversion }

func (s *SubversionClient) binary() (string, error) {
	if s.cmd != "" {
		return s.cmd, nil
	}
	cmd, _, err := exec.Which("--version", os.Getenv("SVN_BINARY"), "svn")
	if err != nil {
		return "", errors.Wrap(err, "could not find svn binary")
	}
	s.cmd = cmd
	return cmd, nil
}

// Import implements Client.
func (s *SubversionClient) Import(dir string, opts ImportOptions) (string, error) {
	cmd, err := s.binary()
	if err != nil {
		return "", err
	}
	exists, err := prepare(dir, Subversion, opts.Force)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	revision := []string{}
	if opts.Version != "" {
		revision = []string{"--revision", opts.Version}
	}

	var argv []string
	workdir := dir
	if exists {
		info, err := readSvnInfo(cmd, dir)
		if err != nil {
			return "", err
		}
		current := (&SubversionRepository{info: info}).Project()
		if current != strings.TrimSuffix(opts.URL, "/") && !opts.Force {
			return "", &errors.Error{
				Type:            errors.User,
				Message:         fmt.Sprintf("checkout at %s tracks %q, expected %q", dir, current, opts.URL),
				Troubleshooting: "Remove the directory or run sync with --clean to replace the checkout.",
			}
		}
		argv = append([]string{"update", "--non-interactive"}, revision...)
	} else {
		argv = append(append([]string{"checkout", "--non-interactive"}, revision...), opts.URL, dir)
		workdir = ""
	}

	stdout, stderr, err := exec.Run(exec.Cmd{Name: cmd, Argv: argv, Dir: workdir})
	out.WriteString(stdout)
	out.WriteString(stderr)
	if err != nil {
		return out.String(), err
	}

	info, err := readSvnInfo(cmd, dir)
	if err != nil {
		return out.String(), err
	}
	repo := SubversionRepository{info: info}
	fmt.Fprintf(&out, "Working copy is now at %s\n", repo.Head())
	return out.String(), nil
}

func readSvnInfo(cmd, dir string) (svnInfo, error) {
	var info svnInfo
	stdout, _, err := exec.Run(exec.Cmd{
		Name: cmd,
		Argv: []string{"info", "--xml"},
		Dir:  dir,
	})
	if err != nil {
		return info, errors.Wrapf(err, "could not run `%s info`", cmd)
	}
	if err := info.unmarshalXML([]byte(stdout)); err != nil {
		return info, errors.Wrap(err, "could not parse svn info")
	}
	return info, nil
}

// SubversionRepository reads metadata from an existing Subversion checkout.
type SubversionRepository struct {
	info svnInfo
}

func (s *SubversionRepository) Project() string { return s.info.Entry.URL }

func (s *SubversionRepository) Head() Revision {
	return Revision{
		Branch:     svnBranchFromInfo(&s.info),
		RevisionID: s.info.Entry.Revision,
	}
}

// svnBranchFromInfo extracts the name of the branch from the info provided.
func svnBranchFromInfo(info *svnInfo) string {
	relativeURL := strings.TrimPrefix(info.Entry.RelativeURL, "^")

	// What follows the repository root and the project's relative path.
	trimmed := strings.TrimPrefix(
		strings.TrimPrefix(info.Entry.URL, info.Entry.Repository.Root),
		relativeURL,
	)

	const branches = "/branches/"
	if strings.HasPrefix(trimmed, branches) {
		trimmed = strings.TrimPrefix(trimmed, branches)
	} else {
		trimmed = strings.TrimPrefix(trimmed, "/")
	}

	if trimmed != "" {
		return trimmed
	}
	return "trunk"
}

// The svnInfo type represents the result of running `svn info --xml`.
type svnInfo struct {
	Entry struct {
		Path     string `xml:"path,attr"`
		Revision string `xml:"revision,attr"`
		Kind     string `xml:"kind,attr"`

		// URL is the remote location the checkout was made from.
		URL         string `xml:"url"`
		RelativeURL string `xml:"relative-url"`
		Repository  struct {
			Root string `xml:"root"`
			UUID string `xml:"uuid"`
		} `xml:"repository"`
	} `xml:"entry"`
}

func (s *svnInfo) unmarshalXML(data []byte) error {
	return xml.Unmarshal(data, s)
}
