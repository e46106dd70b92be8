// Package repos parses repository lists: the per-distribution documents that
// name each repository, its VCS type and its target version.
//
//	repositories:
//	  gz-math:
//	    type: git
//	    url: https://github.com/gazebosim/gz-math
//	    version: gz-math7
package repos

import (
	"io"
	"io/ioutil"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	yaml "gopkg.in/yaml.v2"

	"github.com/gazebo-tooling/gz-dashboard/errors"
	"github.com/gazebo-tooling/gz-dashboard/vcs"
)

// Key is the top-level key of a repository list.
const Key = "repositories"

// Repository is one entry of a repository list. Entries that fail validation
// carry the reason in Err instead of failing the whole list.
type Repository struct {
	Path    string
	Type    vcs.Type
	URL     string
	Version string

	Err error
}

// entry is decoded into string fields so that scalars such as `1.10` or `on`
// keep the text they were written with.
type entry struct {
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Version string `yaml:"version"`
}

// lenientEntry keeps a decoding error instead of failing the whole list.
type lenientEntry struct {
	entry
	err error
}

func (l *lenientEntry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var e entry
	if err := unmarshal(&e); err != nil {
		l.err = err
		return nil
	}
	l.entry = e
	return nil
}

// Parse decodes a repository list from r. Repositories are sorted by path, so
// parents always precede the checkouts nested inside them.
func Parse(r io.Reader) ([]Repository, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Resolutionf(err, "could not read repository list")
	}

	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		if _, ok := err.(*yaml.TypeError); ok {
			return nil, errors.Formatf(nil, "repository list is not valid format: document root is not a mapping")
		}
		return nil, errors.Formatf(err, "repository list is not valid yaml format")
	}

	raw, ok := root[Key]
	if !ok {
		return nil, errors.Formatf(nil, "repository list is not valid format: missing key %q", Key)
	}
	if raw == nil {
		return nil, nil
	}
	if _, ok := raw.(map[interface{}]interface{}); !ok {
		return nil, errors.Formatf(nil, "repository list is not valid format: %q is not a mapping", Key)
	}

	var doc struct {
		Repositories map[string]*lenientEntry `yaml:"repositories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Formatf(err, "repository list is not valid format")
	}

	var out []Repository
	for key, value := range doc.Repositories {
		repo := decode(key, value)
		if repo.Err != nil {
			log.WithError(repo.Err).WithField("path", repo.Path).Debug("invalid repository entry")
		}
		out = append(out, repo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func decode(p string, value *lenientEntry) Repository {
	repo := Repository{Path: p}
	if err := validatePath(p); err != nil {
		repo.Err = err
		return repo
	}
	repo.Path = path.Clean(p)

	if value == nil {
		repo.Err = errors.Formatf(nil, "repository %q has no type", p)
		return repo
	}
	if value.err != nil {
		repo.Err = errors.Formatf(value.err, "repository %q is not valid format", p)
		return repo
	}

	e := value.entry
	repo.URL = e.URL
	repo.Version = e.Version
	var err error
	switch {
	case e.Type == "":
		repo.Err = errors.Formatf(nil, "repository %q has no type", p)
	case e.URL == "":
		repo.Err = errors.Formatf(nil, "repository %q has no url", p)
	default:
		repo.Type, err = vcs.ParseType(e.Type)
		if err != nil {
			repo.Err = errors.Formatf(err, "repository %q is not valid format", p)
		}
	}
	return repo
}

func validatePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.Formatf(nil, "repository path is empty")
	}
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return errors.Formatf(nil, "repository path %q is absolute", p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.Formatf(nil, "repository path %q escapes the workspace", p)
	}
	return nil
}
