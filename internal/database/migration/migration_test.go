package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentinel = "SELECT to_regclass('public.documents') IS NOT NULL"

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var buf bytes.Buffer
		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = EnsureMigrated(ctx, db, zerolog.New(&buf), "db.local")

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), `"event":"db_migration_skip"`)
		assert.Contains(t, buf.String(), `"db_host":"db.local"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fresh database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, step := range steps {
			mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		err = EnsureMigrated(ctx, db, zerolog.Nop(), "db.local")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure stops", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var buf bytes.Buffer
		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, zerolog.New(&buf), "db.local")

		assert.ErrorContains(t, err, "migration step create_table_documents failed")
		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).WillReturnError(errors.New("conn reset"))

		err = EnsureMigrated(ctx, db, zerolog.Nop(), "db.local")

		assert.ErrorContains(t, err, "failed to check sentinel table: conn reset")
	})
}
