// Package rules carries the built-in accent normalization rules.
package rules

import (
	"embed"

	"github.com/crawl/go-vnnorm/root"
)

// DefaultID identifies the built-in rule file.
const DefaultID = "normalization/rules.txt"

// RootEnv names the environment variable that points at a directory of rule
// files overriding the built-in ones.
const RootEnv = "VNNORM_ROOT"

//go:embed normalization
var builtin embed.FS

// Builtin resolves identifiers against the embedded rule files only.
func Builtin() root.Resolver {
	return root.FS{FS: builtin}
}

// Resolver looks identifiers up under dir first, then in the built-in rules.
// An empty dir falls back to $VNNORM_ROOT and then the working directory.
func Resolver(dir string) root.Resolver {
	files := root.Root(dir)
	if dir == "" {
		files = root.New("", RootEnv)
	}
	return root.Chain{files, Builtin()}
}
