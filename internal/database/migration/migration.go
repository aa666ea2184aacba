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
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_labs",
		SQL: `CREATE TABLE IF NOT EXISTS labs (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name          TEXT        NOT NULL,
  storage_used  BIGINT      NOT NULL DEFAULT 0 CHECK (storage_used >= 0),
  storage_limit BIGINT      NOT NULL CHECK (storage_limit > 0),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  filename      TEXT        NOT NULL,
  content_type  TEXT        NOT NULL,
  file_size     BIGINT      NOT NULL CHECK (file_size >= 0),
  is_compressed BOOLEAN     NOT NULL DEFAULT FALSE,
  original_size BIGINT,
  storage_path  TEXT        NOT NULL UNIQUE,
  lab_id        UUID        NOT NULL REFERENCES labs (id),
  entity_type   TEXT        NOT NULL,
  entity_id     TEXT        NOT NULL,
  uploader_id   TEXT        NOT NULL,
  description   TEXT        NOT NULL DEFAULT '',
  tags          JSONB       NOT NULL DEFAULT '[]'::jsonb,
  uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_accessed TIMESTAMPTZ,
  access_count  BIGINT      NOT NULL DEFAULT 0,
  is_deleted    BOOLEAN     NOT NULL DEFAULT FALSE,
  deleted_at    TIMESTAMPTZ,
  CHECK (NOT is_compressed OR original_size IS NOT NULL)
);`,
	},
	{
		Name: "create_index_documents_lab_active",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_lab_active ON documents (lab_id, is_deleted);`,
	},
	{
		Name: "create_index_documents_entity",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_entity ON documents (entity_type, entity_id);`,
	},
	{
		Name: "create_index_documents_deleted_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_deleted_at ON documents (deleted_at) WHERE is_deleted;`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs the
// migration steps if it doesn't. Steps are idempotent, so a partially applied
// schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	start := time.Now()

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Debug().Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Msg("running schema migration")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info().
			Str("step", step.Name).
			Dur("duration", time.Since(stepStart)).
			Msg("migration step applied")
	}

	log.Info().Dur("duration", time.Since(start)).Msg("schema migration complete")
	return nil
}
