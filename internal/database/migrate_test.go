package database

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_OrderAndSkip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := fstest.MapFS{
		"0002_index.up.sql":   {Data: []byte("CREATE INDEX idx_a ON a (ID)")},
		"0001_table.up.sql":   {Data: []byte("CREATE TABLE a (ID NUMBER);\n")},
		"0001_table.down.sql": {Data: []byte("DROP TABLE a")},
		"README.md":           {Data: []byte("notes")},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (ID NUMBER)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx_a ON a (ID)")).
		WillReturnError(errors.New("ORA-00955: name is already used by an existing object"))

	err = RunMigrations(context.Background(), db, migrations)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := fstest.MapFS{
		"0001_table.up.sql": {Data: []byte("CREATE TABLE a (ID NUMBER)")},
		"0002_more.up.sql":  {Data: []byte("CREATE TABLE b (ID NUMBER)")},
	}
	dbErr := errors.New("ORA-01031: insufficient privileges")
	mock.ExpectExec("CREATE TABLE a").WillReturnError(dbErr)

	err = RunMigrations(context.Background(), db, migrations)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "0001_table.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	content, err := fs.ReadFile(Migrations(), "0001_create_quiz_generations.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE quiz_generations")
	assert.NotContains(t, string(content), ";")
}
