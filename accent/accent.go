// Package accent canonicalizes Vietnamese accent placement ("hòa" → "hoà")
// by applying literal substitution rules loaded from a rule source.
package accent

import (
	"github.com/crawl/go-vnnorm/registry"
	"github.com/crawl/go-vnnorm/rules"
	"github.com/crawl/go-vnnorm/stringnorm"
	"github.com/crawl/go-vnnorm/text"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Configuration keys understood by FromConfig.
const (
	RulesOption       = "normalizationRules"
	CompositionOption = "unicodeComposition"
	ResultCacheOption = "resultCacheSize"
)

// A Config is a key/value configuration source, such as resource.Properties
// or a qyaml.YAML document. Missing keys read as "".
type Config interface {
	String(key string) string
}

// A ConfigurationError reports a rule source that could not be loaded. No
// Normalizer is produced alongside one.
type ConfigurationError struct {
	ID  string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.ID == "" {
		return "accent: " + e.Err.Error()
	}
	return "accent: cannot load map file " + e.ID + ": " + e.Err.Error()
}

// Cause returns the underlying load error.
func (e *ConfigurationError) Cause() error { return e.Err }

func (e *ConfigurationError) Unwrap() error { return e.Err }

// A Normalizer applies the rules of one rule source. Normalizers built from
// the same registry and identifier share one table.
type Normalizer struct {
	id      string
	reg     *registry.Registry
	compose bool
	cache   *resultCache
}

// An Option configures a Normalizer.
type Option func(*Normalizer)

// WithComposition converts both the rule tokens and the input to Unicode NFC
// before substitution, so decomposed text on either side still matches.
func WithComposition() Option {
	return func(n *Normalizer) {
		n.compose = true
	}
}

// WithResultCache remembers up to size recent results.
func WithResultCache(size int) Option {
	return func(n *Normalizer) {
		if size > 0 {
			n.cache = newResultCache(size)
		}
	}
}

// New binds a normalizer to the rule source id, loading its table into reg
// unless reg already holds it. Composing normalizers use the NFC form of the
// table, which reg caches apart from the table as written.
func New(reg *registry.Registry, id string, opts ...Option) (*Normalizer, error) {
	if id == "" {
		return nil, &ConfigurationError{Err: errors.New("no rule source configured")}
	}
	n := &Normalizer{id: id, reg: reg}
	for _, opt := range opts {
		opt(n)
	}
	load := reg.Get
	if n.compose {
		load = reg.GetComposed
	}
	if _, err := load(id); err != nil {
		return nil, &ConfigurationError{ID: id, Err: err}
	}
	return n, nil
}

// Default binds a normalizer to the built-in rules.
func Default(reg *registry.Registry, opts ...Option) (*Normalizer, error) {
	return New(reg, rules.DefaultID, opts...)
}

// FromConfig binds a normalizer to the rule source named by the
// normalizationRules option of cfg. The unicodeComposition and
// resultCacheSize options map onto WithComposition and WithResultCache;
// opts are applied after them.
func FromConfig(reg *registry.Registry, cfg Config, opts ...Option) (*Normalizer, error) {
	var cfgOpts []Option
	if text.ParseBool(cfg.String(CompositionOption), false) {
		cfgOpts = append(cfgOpts, WithComposition())
	}
	if size := text.ParseInt(cfg.String(ResultCacheOption), 0); size > 0 {
		cfgOpts = append(cfgOpts, WithResultCache(size))
	}
	return New(reg, cfg.String(RulesOption), append(cfgOpts, opts...)...)
}

// ID gets the rule source identifier n is bound to.
func (n *Normalizer) ID() string { return n.id }

// Normalize rewrites every occurrence of every rule's source token in s with
// its replacement. If n's table is missing from its registry, s is returned
// unchanged.
func (n *Normalizer) Normalize(s string) string {
	peek := n.reg.Peek
	if n.compose {
		peek = n.reg.PeekComposed
	}
	table, ok := peek(n.id)
	if !ok {
		return s
	}
	if n.compose {
		s = norm.NFC.String(s)
	}
	if n.cache == nil {
		return table.Apply(s)
	}
	if res, ok := n.cache.get(s); ok {
		return res
	}
	res := table.Apply(s)
	n.cache.add(s, res)
	return res
}

// Stringnorm adapts n to the stringnorm.Normalizer interface.
func (n *Normalizer) Stringnorm() stringnorm.Normalizer {
	return stringnorm.Func(n.Normalize)
}
