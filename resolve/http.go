package resolve

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

// DefaultTimeout bounds a whole HTTP fetch, including reading the body.
const DefaultTimeout = 60 * time.Second

// NewClient returns the HTTP client used for fetching remote documents.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			DisableKeepAlives: true,
		},
	}
}

func isTimeout(err error) bool {
	switch e := err.(type) {
	case net.Error:
		return e.Timeout()
	case *url.Error:
		return e.Err == io.EOF
	}
	return false
}

// fetch issues a GET request for uri and returns the open response body. Any
// status code of 400 or above is an error.
func (r *Resolver) fetch(uri string) (io.ReadCloser, error) {
	log.WithFields(log.Fields{
		"uri":        uri,
		"user-agent": r.UserAgent,
	}).Debug("fetching remote document")

	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Resolutionf(err, "could not construct request for %s", uri)
	}
	req.Close = true
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	client := r.Client
	if client == nil {
		client = NewClient()
	}
	res, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Resolutionf(err, "request for %s timed out", uri)
		}
		return nil, errors.Resolutionf(err, "could not fetch %s", uri)
	}

	log.WithFields(log.Fields{
		"uri":    uri,
		"status": res.Status,
	}).Debug("got response")

	if res.StatusCode >= http.StatusBadRequest {
		res.Body.Close()
		return nil, &errors.Error{
			Type:    errors.Resolution,
			Message: "HTTP Error " + res.Status + " fetching " + uri,
		}
	}
	return res.Body, nil
}
