// Package ruletable loads literal substitution rules from line-oriented
// rule files of whitespace-separated token pairs.
package ruletable

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/crawl/go-vnnorm/root"
	"github.com/crawl/go-vnnorm/stringnorm"
	"github.com/crawl/go-vnnorm/text"
	"github.com/pkg/errors"
)

// A Logger receives diagnostics about malformed rule lines.
type Logger interface {
	Printf(format string, v ...interface{})
}

// DefaultLogger writes diagnostics to stderr.
var DefaultLogger Logger = log.New(os.Stderr, "", log.LstdFlags)

// A Table maps source tokens to their replacements. Tables are immutable
// once built and safe for concurrent use.
type Table struct {
	id    string
	rules map[string]string
	norm  stringnorm.List
}

// New builds a table identified by id from a copy of rules.
func New(id string, rules map[string]string) *Table {
	t := &Table{id: id, rules: make(map[string]string, len(rules))}
	for from, to := range rules {
		t.rules[from] = to
	}
	t.norm = stringnorm.ParseReplacers(t.Pairs())
	return t
}

// ID gets the identifier of the rule source the table was built from.
func (t *Table) ID() string { return t.id }

// Len is the number of rules in t.
func (t *Table) Len() int { return len(t.rules) }

// Lookup gets the replacement for from.
func (t *Table) Lookup(from string) (string, bool) {
	to, ok := t.rules[from]
	return to, ok
}

// Pairs returns the rules as (from, to) pairs sorted by from.
func (t *Table) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(t.rules))
	for from, to := range t.rules {
		pairs = append(pairs, [2]string{from, to})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}

// Normalizer gets the substitutions of t as a stringnorm.Normalizer.
func (t *Table) Normalizer() stringnorm.Normalizer {
	return t.norm
}

// Apply replaces every occurrence of every source token in s with its
// replacement, one rule at a time in the order of Pairs.
func (t *Table) Apply(s string) string {
	return stringnorm.NormalizeNoErr(t.norm, s)
}

// A MalformedLine is a rule line that did not split into exactly two tokens.
type MalformedLine struct {
	ID   string
	Line int
	Text string
}

func (m MalformedLine) String() string {
	return fmt.Sprintf("wrong syntax in the map file %s at line %d: %q", m.ID, m.Line, m.Text)
}

// A Parser reads rule files.
type Parser struct {
	// Logger receives one diagnostic per malformed line; nil means
	// DefaultLogger.
	Logger Logger

	// Transform, if set, is applied to every token before it is stored.
	Transform func(string) string
}

func (p Parser) logger() Logger {
	if p.Logger == nil {
		return DefaultLogger
	}
	return p.Logger
}

// Load resolves id with res and parses the rule file it names. Any failure
// to open or read the source is an error; malformed lines are not.
func (p Parser) Load(res root.Resolver, id string) (*Table, []MalformedLine, error) {
	stream, err := res.Open(id)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot load map file %s", id)
	}
	defer stream.Close()
	return p.Parse(id, stream)
}

// Parse reads rules for the source id from r. Line numbers in the returned
// malformed lines count from 1. Blank lines are ignored.
func (p Parser) Parse(id string, r io.Reader) (*Table, []MalformedLine, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot read map file %s", id)
	}

	rules := map[string]string{}
	var malformed []MalformedLine
	for i, line := range text.Lines(strings.ToValidUTF8(string(data), "�")) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			bad := MalformedLine{ID: id, Line: i + 1, Text: line}
			p.logger().Printf("%s", bad)
			malformed = append(malformed, bad)
			continue
		}
		from, to := tokens[0], tokens[1]
		if p.Transform != nil {
			from, to = p.Transform(from), p.Transform(to)
		}
		rules[from] = to
	}
	return New(id, rules), malformed, nil
}
