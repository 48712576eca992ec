package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	return bun.NewDB(sqldb, pgdialect.New()), mock
}

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when schema exists", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT to_regclass\('public\.examples'\) IS NOT NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := EnsureMigrated(ctx, db, time.UTC, "localhost")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates declared tables with constraints", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT to_regclass\('public\.examples'\) IS NOT NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		// The DDL must come from the struct tags: examples table, NOT NULL
		// name, primary key on id.
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "examples" \(.*"name" VARCHAR NOT NULL.*PRIMARY KEY \("id"\)\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := EnsureMigrated(ctx, db, time.UTC, "localhost")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT to_regclass\('public\.examples'\) IS NOT NULL`).
			WillReturnError(errors.New("connection refused"))

		err := EnsureMigrated(ctx, db, time.UTC, "localhost")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check sentinel table")
	})

	t.Run("create table failure", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT to_regclass\('public\.examples'\) IS NOT NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "examples"`).
			WillReturnError(errors.New("permission denied"))

		err := EnsureMigrated(ctx, db, time.UTC, "localhost")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "create table")
	})
}
