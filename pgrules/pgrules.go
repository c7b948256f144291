// Package pgrules serves rule sources stored in PostgreSQL tables.
//
// An identifier of the form "pg:<table>" names a table with text columns
// source and target; each row becomes one rule line.
package pgrules

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"io/ioutil"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crawl/go-vnnorm/root"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Prefix marks identifiers served by a Resolver.
const Prefix = "pg:"

// DefaultTimeout bounds the query for one rule table.
const DefaultTimeout = 30 * time.Second

var reTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ConnSpec describes a PostgreSQL connection.
type ConnSpec struct {
	User, Password string
	Database       string
	Host           string
	Port           int
	SSLMode        string
}

func (c ConnSpec) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

// ConnectionString formats c as a lib/pq key=value connection string.
func (c ConnSpec) ConnectionString() string {
	connstr := "sslmode=" + c.sslMode()
	if c.Database != "" {
		connstr += " dbname=" + c.Database
	}
	if c.User != "" {
		connstr += " user=" + c.User
		if c.Password != "" {
			connstr += " password=" + c.Password
		}
	}
	if c.Host != "" {
		connstr += " host=" + c.Host
	}
	if c.Port > 0 {
		connstr += " port=" + strconv.Itoa(c.Port)
	}
	return connstr
}

// Open opens a database handle for c. No connection is made until first use.
func (c ConnSpec) Open() (*sql.DB, error) {
	db, err := sql.Open("postgres", c.ConnectionString())
	if err != nil {
		return nil, errors.Wrapf(err, "connect db=%s", c.Database)
	}
	return db, nil
}

// IsTableID reports whether id names a Postgres rule table.
func IsTableID(id string) bool {
	return strings.HasPrefix(id, Prefix)
}

// A Resolver reads rule tables from DB.
type Resolver struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r Resolver) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Open fetches the rows of the table named by id and renders them as rule
// lines. Identifiers without the pg: prefix are reported as not found.
func (r Resolver) Open(id string) (io.ReadCloser, error) {
	if !IsTableID(id) {
		return nil, errors.Wrapf(root.ErrNotFound, "%s is not a postgres rule table", id)
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()
	data, err := r.fetch(ctx, strings.TrimPrefix(id, Prefix))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", id)
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (r Resolver) fetch(ctx context.Context, table string) ([]byte, error) {
	if !reTableName.MatchString(table) {
		return nil, errors.Errorf("bad table name %q", table)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT source, target FROM "+pq.QuoteIdentifier(table)+" ORDER BY source")
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()

	var buf bytes.Buffer
	for rows.Next() {
		var source, target sql.NullString
		if err := rows.Scan(&source, &target); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		buf.WriteString(source.String)
		buf.WriteByte(' ')
		buf.WriteString(target.String)
		buf.WriteByte('\n')
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows")
	}
	return buf.Bytes(), nil
}
