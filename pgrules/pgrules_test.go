package pgrules

import (
	"io/ioutil"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crawl/go-vnnorm/root"
	"github.com/crawl/go-vnnorm/ruletable"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ruleQuery = `SELECT source, target FROM "accent_rules" ORDER BY source`

func TestConnectionString(t *testing.T) {
	for _, test := range []struct {
		spec     ConnSpec
		expected string
	}{
		{ConnSpec{}, "sslmode=disable"},
		{ConnSpec{Database: "vnnorm", User: "vn", Password: "secret", Host: "db", Port: 5433},
			"sslmode=disable dbname=vnnorm user=vn password=secret host=db port=5433"},
		{ConnSpec{User: "vn", SSLMode: "require"}, "sslmode=require user=vn"},
	} {
		assert.Equal(t, test.expected, test.spec.ConnectionString())
	}
}

func TestOpenRenderRules(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(ruleQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"source", "target"}).
			AddRow("hòa", "hoà").
			AddRow("thủy", "thuỷ").
			AddRow("bad", nil))

	stream, err := Resolver{DB: db}.Open("pg:accent_rules")
	require.NoError(t, err)
	data, err := ioutil.ReadAll(stream)
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	assert.Equal(t, "hòa hoà\nthủy thuỷ\nbad \n", string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

func TestLoadThroughParser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(ruleQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"source", "target"}).
			AddRow("hòa", "hoà").
			AddRow("two words", "x"))

	table, malformed, err := ruletable.Parser{Logger: nopLogger{}}.Load(Resolver{DB: db}, "pg:accent_rules")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"hòa", "hoà"}}, table.Pairs())
	require.Len(t, malformed, 1)
	assert.Equal(t, 2, malformed[0].Line)
}

func TestOpenErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = Resolver{DB: db}.Open("normalization/rules.txt")
	assert.True(t, root.IsNotFound(err), "non-pg ids must fall through a root.Chain")

	_, err = Resolver{DB: db}.Open(`pg:rules"; DROP TABLE x; --`)
	assert.Error(t, err)

	errQuery := errors.New("relation does not exist")
	mock.ExpectQuery(regexp.QuoteMeta(ruleQuery)).WillReturnError(errQuery)
	_, err = Resolver{DB: db}.Open("pg:accent_rules")
	require.Error(t, err)
	assert.Equal(t, errQuery, errors.Cause(err))
	assert.False(t, root.IsNotFound(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
