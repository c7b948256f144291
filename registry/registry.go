// Package registry caches rule tables by rule-source identifier, building each
// table at most once for the life of the registry.
package registry

import (
	"sort"
	"sync"

	"github.com/crawl/go-vnnorm/root"
	"github.com/crawl/go-vnnorm/ruletable"
	"github.com/golang/groupcache/singleflight"
	"golang.org/x/text/unicode/norm"
)

// A Registry maps rule-source identifiers to loaded tables. Each id may have
// two tables: the rules as written, and the rules with every token in Unicode
// NFC form. The zero value is not usable; create registries with New.
type Registry struct {
	resolver root.Resolver
	parser   ruletable.Parser

	group  singleflight.Group
	mu     sync.RWMutex
	tables map[tableKey]*ruletable.Table
}

type tableKey struct {
	id       string
	composed bool
}

// groupKey names the load of k in the singleflight group.
func (k tableKey) groupKey() string {
	if k.composed {
		return "nfc\x00" + k.id
	}
	return "raw\x00" + k.id
}

// An Option configures a Registry.
type Option func(*Registry)

// WithLogger sends malformed-line diagnostics to logger.
func WithLogger(logger ruletable.Logger) Option {
	return func(r *Registry) {
		r.parser.Logger = logger
	}
}

// New creates an empty registry that opens rule sources with res.
func New(res root.Resolver, opts ...Option) *Registry {
	r := &Registry{
		resolver: res,
		tables:   map[tableKey]*ruletable.Table{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the table for id, loading it on first request. Concurrent
// first requests for the same id share a single load. Failed loads are not
// cached.
func (r *Registry) Get(id string) (*ruletable.Table, error) {
	return r.get(tableKey{id: id})
}

// GetComposed is Get for the table of id with its tokens in NFC form. It is
// loaded and cached separately from the table Get returns.
func (r *Registry) GetComposed(id string) (*ruletable.Table, error) {
	return r.get(tableKey{id: id, composed: true})
}

func (r *Registry) get(k tableKey) (*ruletable.Table, error) {
	if t, ok := r.peek(k); ok {
		return t, nil
	}
	v, err := r.group.Do(k.groupKey(), func() (interface{}, error) {
		// A load that finished between peek and Do has already stored its table.
		if t, ok := r.peek(k); ok {
			return t, nil
		}
		parser := r.parser
		if k.composed {
			parser.Transform = norm.NFC.String
		}
		t, _, err := parser.Load(r.resolver, k.id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.tables[k] = t
		r.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ruletable.Table), nil
}

// Peek returns the table for id if it has already been loaded.
func (r *Registry) Peek(id string) (*ruletable.Table, bool) {
	return r.peek(tableKey{id: id})
}

// PeekComposed returns the NFC table for id if it has already been loaded.
func (r *Registry) PeekComposed(id string) (*ruletable.Table, bool) {
	return r.peek(tableKey{id: id, composed: true})
}

func (r *Registry) peek(k tableKey) (*ruletable.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[k]
	return t, ok
}

// Preload loads every id, in NFC form if composed is set, stopping at the
// first failure.
func (r *Registry) Preload(composed bool, ids ...string) error {
	for _, id := range ids {
		if _, err := r.get(tableKey{id: id, composed: composed}); err != nil {
			return err
		}
	}
	return nil
}

// IDs lists the identifiers of all loaded tables.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	seen := map[string]bool{}
	ids := make([]string, 0, len(r.tables))
	for k := range r.tables {
		if !seen[k.id] {
			seen[k.id] = true
			ids = append(ids, k.id)
		}
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
