// Package resolve opens documents named by either a local path or a URL.
//
// Callers receive an io.ReadCloser and never need to know which kind of source
// backs it. Streams are created per call and are closed by the caller.
package resolve

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/files"
)

const (
	schemeSeparator = "://"
	fileScheme      = "file"
)

// Resolver opens local files and fetches remote URLs.
type Resolver struct {
	// Client is used for remote documents. A nil Client uses NewClient().
	Client *http.Client
	// UserAgent is sent as the User-Agent header of every request.
	UserAgent string
}

// New returns a Resolver identifying itself with userAgent.
func New(userAgent string) *Resolver {
	return &Resolver{
		Client:    NewClient(),
		UserAgent: userAgent,
	}
}

// IsURL reports whether input would be fetched over the network. Anything that
// names an existing local path, has no scheme separator or uses the file://
// scheme is a local file.
func IsURL(input string) bool {
	if files.ExistsAny(input) {
		return false
	}
	return strings.Contains(input, schemeSeparator) && !isFileURL(input)
}

func isFileURL(input string) bool {
	return strings.HasPrefix(strings.ToLower(input), fileScheme+schemeSeparator)
}

// Resolve opens input for reading. Failures are errors.Resolution errors; a
// missing local file wraps an error satisfying os.IsNotExist.
func (r *Resolver) Resolve(input string) (io.ReadCloser, error) {
	if IsURL(input) {
		return r.fetch(input)
	}
	if !files.ExistsAny(input) && isFileURL(input) {
		name, err := fromFileURL(input)
		if err != nil {
			return nil, err
		}
		return open(name)
	}
	return open(input)
}

// fromFileURL returns the local path named by a file:// URL. Only URLs for the
// local host are accepted.
func fromFileURL(input string) (string, error) {
	u, err := url.Parse(input)
	if err != nil {
		return "", errors.Resolutionf(err, "could not parse %s", input)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", &errors.Error{
			Type:    errors.Resolution,
			Message: fmt.Sprintf("%s names a file on another host", input),
		}
	}
	if u.Path == "" {
		return "", &errors.Error{
			Type:    errors.Resolution,
			Message: fmt.Sprintf("%s does not name a file", input),
		}
	}
	return filepath.FromSlash(u.Path), nil
}

func open(name string) (io.ReadCloser, error) {
	log.WithField("file", name).Debug("opening local document")
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Resolutionf(err, "could not open local document")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Resolutionf(err, "could not open local document")
	}
	if info.IsDir() {
		f.Close()
		return nil, &errors.Error{
			Type:    errors.Resolution,
			Message: name + " is a directory",
		}
	}
	return f, nil
}
