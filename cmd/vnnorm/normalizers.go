package main

import (
	"database/sql"
	"fmt"
	"io/ioutil"
	"log"
	"strconv"

	"github.com/crawl/go-vnnorm/accent"
	"github.com/crawl/go-vnnorm/httpfetch"
	"github.com/crawl/go-vnnorm/pgrules"
	"github.com/crawl/go-vnnorm/registry"
	"github.com/crawl/go-vnnorm/resource"
	"github.com/crawl/go-vnnorm/root"
	"github.com/crawl/go-vnnorm/ruletable"
	"github.com/crawl/go-vnnorm/rules"
	"github.com/crawl/go-vnnorm/stringnorm"
	"github.com/crawl/go-vnnorm/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// appConfig layers command-line flags over the --config file.
func appConfig(c *cobra.Command) (accent.Config, error) {
	flags := resource.Properties{}
	if boolFlag(c, "nfc") {
		flags[accent.CompositionOption] = "true"
	}
	if size := intFlag(c, "cache"); size > 0 {
		flags[accent.ResultCacheOption] = strconv.Itoa(size)
	}
	cfgFile := stringFlag(c, "config")
	if cfgFile == "" {
		return flags, nil
	}
	file, err := resource.Load(root.New(stringFlag(c, "root")), cfgFile)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return resource.Overlay{flags, file}, nil
}

// ruleIDs lists the rule sources to apply: --rules, else the configured
// normalizationRules, else the built-in rules.
func ruleIDs(c *cobra.Command, cfg accent.Config) []string {
	if ids := stringSliceFlag(c, "rules"); len(ids) > 0 {
		return ids
	}
	return []string{text.FirstNotEmpty(cfg.String(accent.RulesOption), rules.DefaultID)}
}

func dbSpec(c *cobra.Command) pgrules.ConnSpec {
	return pgrules.ConnSpec{
		Database: stringFlag(c, "db"),
		User:     stringFlag(c, "user"),
		Password: stringFlag(c, "password"),
		Host:     stringFlag(c, "host"),
		Port:     intFlag(c, "port"),
	}
}

func nopClose() error { return nil }

// resolver fetches URLs, then searches --root and the built-in rules. It
// also queries postgres when any id asks for a pg: table; the returned
// close func releases that connection.
func resolver(c *cobra.Command, ids []string) (root.Resolver, func() error, error) {
	files := root.Chain{httpfetch.New(), rules.Resolver(stringFlag(c, "root"))}
	return withPostgres(files, ids, dbSpec(c).Open)
}

func withPostgres(files root.Resolver, ids []string, open func() (*sql.DB, error)) (root.Resolver, func() error, error) {
	for _, id := range ids {
		if pgrules.IsTableID(id) {
			db, err := open()
			if err != nil {
				return nil, nil, err
			}
			return root.Chain{pgrules.Resolver{DB: db}, files}, db.Close, nil
		}
	}
	return files, nopClose, nil
}

// session is a preloaded registry plus the rule ids it was loaded for.
type session struct {
	reg      *registry.Registry
	ids      []string
	composed bool
	close    func() error
}

func (s *session) table(id string) (*ruletable.Table, error) {
	if s.composed {
		return s.reg.GetComposed(id)
	}
	return s.reg.Get(id)
}

func loadSession(c *cobra.Command, cfg accent.Config) (*session, error) {
	ids := ruleIDs(c, cfg)
	res, closeRes, err := resolver(c, ids)
	if err != nil {
		return nil, err
	}
	s := &session{
		reg:      registry.New(res, registry.WithLogger(log.Default())),
		ids:      ids,
		composed: text.ParseBool(cfg.String(accent.CompositionOption), false),
		close:    closeRes,
	}
	if err := s.reg.Preload(s.composed, ids...); err != nil {
		closeRes()
		return nil, &accent.ConfigurationError{Err: err}
	}
	return s, nil
}

// loadNormalizer builds one accent normalizer per rule source and chains
// them in order. Call the close func once done normalizing.
func loadNormalizer(c *cobra.Command) (stringnorm.Normalizer, func() error, error) {
	cfg, err := appConfig(c)
	if err != nil {
		return nil, nil, err
	}
	s, err := loadSession(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	norms := make([]stringnorm.Normalizer, 0, len(s.ids))
	for _, id := range s.ids {
		n, err := accent.FromConfig(s.reg, resource.Overlay{resource.Properties{accent.RulesOption: id}, cfg})
		if err != nil {
			s.close()
			return nil, nil, err
		}
		norms = append(norms, n.Stringnorm())
	}
	return stringnorm.Combine(norms...), s.close, nil
}

func checkRules(c *cobra.Command, ids []string) error {
	cfg, err := appConfig(c)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ids = ruleIDs(c, cfg)
	}
	res, closeRes, err := resolver(c, ids)
	if err != nil {
		return err
	}
	defer closeRes()
	out := c.OutOrStdout()
	parser := ruletable.Parser{Logger: log.New(ioutil.Discard, "", 0)}
	bad := 0
	for _, id := range ids {
		table, malformed, err := parser.Load(res, id)
		if err != nil {
			return err
		}
		for _, m := range malformed {
			fmt.Fprintln(out, m)
		}
		fmt.Fprintf(out, "%s: %d rules, %d malformed lines\n", id, table.Len(), len(malformed))
		bad += len(malformed)
	}
	if bad > 0 {
		return errors.Errorf("%d malformed rule lines", bad)
	}
	return nil
}
