// Package distribution parses distribution manifests.
//
// A manifest names every distribution and where its repository list lives:
//
//	distributions:
//	  garden:
//	    url: https://example.com/garden.yaml
//
// Only the url field is interpreted. Other fields are preserved in
// Config.Extra for later steps.
package distribution

import (
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/bmatcuk/doublestar"
	"github.com/mitchellh/mapstructure"
	yaml "gopkg.in/yaml.v3"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

// Key is the top-level manifest key holding the distributions mapping.
const Key = "distributions"

// Config is the configuration of a single distribution.
type Config struct {
	// URL is a path or URL to the distribution's repository list.
	URL string `mapstructure:"url"`
	// Extra holds every other field of the entry.
	Extra map[string]interface{} `mapstructure:",remain"`
}

// Distribution is a named Config.
type Distribution struct {
	Name string
	Config
}

// Manifest lists distributions in document order.
type Manifest []Distribution

// Map returns the manifest as a mapping from name to Config.
func (m Manifest) Map() map[string]Config {
	out := make(map[string]Config, len(m))
	for _, d := range m {
		out[d.Name] = d.Config
	}
	return out
}

// Get looks up a distribution by name.
func (m Manifest) Get(name string) (Config, bool) {
	for _, d := range m {
		if d.Name == name {
			return d.Config, true
		}
	}
	return Config{}, false
}

// Names returns distribution names in document order.
func (m Manifest) Names() []string {
	var names []string
	for _, d := range m {
		names = append(names, d.Name)
	}
	return names
}

// Filter keeps the distributions whose name matches at least one glob
// pattern. With no patterns, the manifest is returned unchanged.
func (m Manifest) Filter(patterns []string) (Manifest, error) {
	if len(patterns) == 0 {
		return m, nil
	}
	var out Manifest
	for _, d := range m {
		for _, p := range patterns {
			ok, err := doublestar.Match(p, d.Name)
			if err != nil {
				return nil, &errors.Error{
					Type:            errors.User,
					Cause:           err,
					Message:         fmt.Sprintf("invalid distribution pattern %q", p),
					Troubleshooting: "Distribution patterns use shell glob syntax, e.g. `garden*` or `{fortress,garden}`.",
				}
			}
			if ok {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

// Parse decodes a manifest from r. It consumes r but does not close it.
func Parse(r io.Reader) (Manifest, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Resolutionf(err, "could not read manifest")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Formatf(err, "input data is not valid yaml format")
	}
	if len(doc.Content) == 0 {
		return nil, errors.Formatf(nil, "input data is not valid format: missing key %q", Key)
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, errors.Formatf(nil, "input data is not valid format: document root is not a mapping")
	}

	var distributions *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == Key {
			distributions = resolveAlias(root.Content[i+1])
			break
		}
	}
	if distributions == nil {
		return nil, errors.Formatf(nil, "input data is not valid format: missing key %q", Key)
	}
	if distributions.Kind == yaml.ScalarNode && distributions.Tag == nullTag {
		return Manifest{}, nil
	}
	if distributions.Kind != yaml.MappingNode {
		return nil, errors.Formatf(nil, "input data is not valid format: %q is not a mapping", Key)
	}

	manifest := make(Manifest, 0, len(distributions.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(distributions.Content); i += 2 {
		name := distributions.Content[i].Value
		if seen[name] {
			return nil, errors.Formatf(nil, "input data is not valid format: duplicate distribution %q", name)
		}
		seen[name] = true

		config, err := decodeConfig(resolveAlias(distributions.Content[i+1]))
		if err != nil {
			return nil, errors.Formatf(err, "could not decode distribution %q", name)
		}
		log.WithFields(log.Fields{
			"distribution": name,
			"url":          config.URL,
		}).Debug("parsed distribution")
		manifest = append(manifest, Distribution{Name: name, Config: config})
	}
	return manifest, nil
}

const nullTag = "!!null"

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// decodeConfig is lenient about the shape of an entry: anything that is not a
// mapping decodes to an empty Config, whose missing URL is reported when the
// distribution is synced. A url that is not a string is an error.
func decodeConfig(n *yaml.Node) (Config, error) {
	var config Config
	if n.Kind != yaml.MappingNode {
		return config, nil
	}
	var fields map[string]interface{}
	if err := n.Decode(&fields); err != nil {
		return config, err
	}
	if url, ok := fields["url"]; ok && url != nil {
		if _, ok := url.(string); !ok {
			return config, errors.Errorf("url must be a string, got %v", url)
		}
	}
	if err := mapstructure.Decode(fields, &config); err != nil {
		return config, err
	}
	return config, nil
}

// ValidateName checks that a distribution name can be used as a single
// directory below the sync path.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Formatf(nil, "distribution name is empty")
	case name == "." || name == "..":
		return errors.Formatf(nil, "distribution name %q is not a directory name", name)
	case strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) || filepath.VolumeName(name) != "":
		return errors.Formatf(nil, "distribution name %q must not contain a path separator", name)
	}
	return nil
}

// Resolver opens the document named by a path or URL.
type Resolver interface {
	Resolve(uri string) (io.ReadCloser, error)
}

// Load resolves uri and parses the manifest it names.
func Load(r Resolver, uri string) (Manifest, error) {
	stream, err := r.Resolve(uri)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return Parse(stream)
}
