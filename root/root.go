// Package root resolves rule-source identifiers to readable streams.
package root

import (
	"io"
	"io/fs"
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by resolvers that have no source for an id.
var ErrNotFound = errors.New("rule source not found")

// A Resolver opens the rule source named by id. Callers must close the
// returned stream.
type Resolver interface {
	Open(id string) (io.ReadCloser, error)
}

// A ResolverFunc adapts an ordinary function to a Resolver.
type ResolverFunc func(id string) (io.ReadCloser, error)

// Open calls f(id).
func (f ResolverFunc) Open(id string) (io.ReadCloser, error) {
	return f(id)
}

// IsNotFound reports whether err means the source simply does not exist, as
// opposed to existing but being unreadable.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// A Root is a directory tree of rule files. Identifiers are paths relative to
// the root; a leading slash is also taken as relative to the root.
type Root string

// New creates a root defaulting to defroot, overridden by the values of any
// of the given envVars, where the first-non-empty var wins.
func New(defroot string, envVars ...string) Root {
	root := defroot
	for _, env := range envVars {
		if value := os.Getenv(env); value != "" {
			root = value
			break
		}
	}
	if root == "" {
		var err error
		if root, err = os.Getwd(); err != nil {
			panic(err)
		}
	}
	return Root(root)
}

// Root gets the root directory path
func (r Root) Root() string { return string(r) }

// Path converts filepath to a path under r.
func (r Root) Path(filepath string) string {
	return path.Join(string(r), filepath)
}

// validID strips a leading slash from id and checks that it stays inside the
// tree it is resolved against.
func validID(id string) (string, error) {
	name := strings.TrimPrefix(id, "/")
	if !fs.ValidPath(name) {
		return "", errors.Wrapf(ErrNotFound, "invalid path %q", id)
	}
	return name, nil
}

// Bytes reads the file at path in r as a []byte
func (r Root) Bytes(path string) ([]byte, error) {
	name, err := validID(path)
	if err != nil {
		return nil, err
	}
	bytes, err := ioutil.ReadFile(r.Path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return bytes, nil
}

// Open opens the rule file id under r. Identifiers that would leave r, such
// as "../x", are reported as not found.
func (r Root) Open(id string) (io.ReadCloser, error) {
	name, err := validID(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(r.Path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", id)
	}
	return f, nil
}

// FS resolves identifiers as paths in a file system such as an embed.FS.
type FS struct {
	FS fs.FS
}

// Open opens id in f.FS.
func (f FS) Open(id string) (io.ReadCloser, error) {
	name, err := validID(id)
	if err != nil {
		return nil, err
	}
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", id)
	}
	return file, nil
}

// A Chain tries each resolver in turn, moving on only when a resolver reports
// the id as not found.
type Chain []Resolver

// Open returns the first stream any resolver in c opens for id.
func (c Chain) Open(id string) (io.ReadCloser, error) {
	for _, r := range c {
		stream, err := r.Open(id)
		if err == nil {
			return stream, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "%s", id)
}
