// Package resource loads normalizer configuration files.
package resource

import (
	"path"
	"strings"

	"github.com/crawl/go-vnnorm/accent"
	"github.com/crawl/go-vnnorm/qyaml"
	"github.com/crawl/go-vnnorm/root"
	"github.com/crawl/go-vnnorm/text"
	"github.com/pkg/errors"
)

// Properties is a key/value configuration in the Java .properties style:
// "key=value" or "key: value" lines, with "#" and "!" starting comments.
type Properties map[string]string

// String gets the value for key.
func (p Properties) String(key string) string {
	return p[key]
}

// ParseProperties parses properties text. Lines without a separator are
// keys with empty values.
func ParseProperties(s string) Properties {
	props := Properties{}
	for _, line := range text.Lines(s) {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		sep := strings.IndexAny(line, "=:")
		if sep == -1 {
			props[line] = ""
			continue
		}
		props[strings.TrimSpace(line[:sep])] = strings.TrimSpace(line[sep+1:])
	}
	return props
}

// Overlay reads each key from the first config that has a non-empty value
// for it.
type Overlay []accent.Config

func (o Overlay) String(key string) string {
	for _, c := range o {
		if c == nil {
			continue
		}
		if v := c.String(key); v != "" {
			return v
		}
	}
	return ""
}

// Load reads the configuration file at filepath under r. Files named *.yml
// or *.yaml are parsed as YAML mappings; anything else as properties.
func Load(r root.Root, filepath string) (accent.Config, error) {
	data, err := r.Bytes(filepath)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(path.Ext(filepath)) {
	case ".yml", ".yaml":
		y, err := qyaml.Parse(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", filepath)
		}
		return y, nil
	default:
		return ParseProperties(string(data)), nil
	}
}
