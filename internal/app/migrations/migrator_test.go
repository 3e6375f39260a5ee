package migrations

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestMigrate_SkipsAppliedAndRunsPending(t *testing.T) {
	mock := newMock(t)
	files := fstest.MapFS{
		"002_widgets.sql": {Data: []byte("CREATE TABLE widgets (id INT)")},
		"001_init.sql":    {Data: []byte("CREATE TABLE users (id INT)")},
		"README.md":       {Data: []byte("not a migration")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")).
		WithArgs("001").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")).
		WithArgs("002").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE widgets (id INT)")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)")).
		WithArgs("002", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := NewMigrator(mock, zerolog.Nop()).Migrate(context.Background(), files)
	require.NoError(t, err)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	mock := newMock(t)
	files := fstest.MapFS{"001_init.sql": {Data: []byte("CREATE TABLE broken (")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("001").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken (")).
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := NewMigrator(mock, zerolog.Nop()).Migrate(context.Background(), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_init.sql")
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(Files(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "001", versionOf(entries[0].Name()))

	schema, err := fs.ReadFile(Files(), "001_init.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "refresh_tokens", "interns", "requests", "documents",
		"evaluations", "notifications", "planning", "templates", "settings"} {
		assert.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}
