// Package migration creates the documents schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id           TEXT        PRIMARY KEY,
  title        TEXT        NOT NULL CHECK (length(btrim(title)) > 0),
  description  TEXT        NOT NULL DEFAULT '',
  file_type    TEXT        NOT NULL DEFAULT '',
  size         TEXT        NOT NULL DEFAULT '',
  owner        TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  tags         JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status       TEXT        NOT NULL CHECK (status IN ('draft', 'published', 'archived')),
  access_level TEXT        NOT NULL CHECK (access_level IN ('public', 'internal', 'restricted', 'private'))
);`,
	},
	{
		Name: "create_index_documents_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner);`,
	},
	{
		Name: "create_index_documents_access",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_access ON documents (access_level, status);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
}

// EnsureMigrated creates the schema when the documents table is missing.
// An existing table is left untouched.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Msg("checking schema")

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.documents') IS NOT NULL").Scan(&exists); err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Int("steps", len(steps)).Msg("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema ready")
	return nil
}
