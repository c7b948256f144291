// Package qyaml provides typed lookups over loosely parsed YAML documents.
package qyaml

import (
	"github.com/crawl/go-vnnorm/text"
	"gopkg.in/yaml.v2"
)

// A YAML wraps a parsed YAML document.
type YAML struct {
	YAML interface{}
}

// Parse parses the YAML document in data.
func Parse(data []byte) (YAML, error) {
	var res interface{}
	err := yaml.Unmarshal(data, &res)
	return YAML{res}, err
}

// Key gets the raw value of key in a top-level mapping, or nil.
func (y YAML) Key(key string) interface{} {
	switch v := y.YAML.(type) {
	case map[interface{}]interface{}:
		return v[key]
	}
	return nil
}

// String gets key as a string; missing keys are "".
func (y YAML) String(key string) string {
	return text.Str(y.Key(key))
}
