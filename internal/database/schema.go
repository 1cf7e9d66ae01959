package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema creates the version store and crawl-run audit tables. The
// partial unique index enforces the single-open invariant at the
// storage layer: at most one row per id_hash may have valid_to NULL.
const schema = `
CREATE TABLE IF NOT EXISTS program_versions (
	id_hash                  TEXT        NOT NULL,
	id_url                   TEXT        NOT NULL,
	url                      TEXT        NOT NULL,
	title                    TEXT        NOT NULL,
	description              TEXT,
	more_info                TEXT,
	legal_basis              TEXT,
	contact_info_institution TEXT,
	contact_info_street      TEXT,
	contact_info_city        TEXT,
	contact_info_fax         TEXT,
	contact_info_phone       TEXT,
	contact_info_email       TEXT,
	contact_info_website     TEXT,
	funding_type             JSONB,
	funding_area             JSONB,
	funding_location         JSONB,
	eligible_applicants      JSONB,
	funding_body             TEXT,
	further_links            JSONB,
	license_info             TEXT        NOT NULL DEFAULT '',
	checksum                 TEXT        NOT NULL,
	valid_from               TIMESTAMPTZ NOT NULL,
	valid_to                 TIMESTAMPTZ,
	PRIMARY KEY (id_hash, valid_from)
);

CREATE UNIQUE INDEX IF NOT EXISTS program_versions_open_idx
	ON program_versions (id_hash)
	WHERE valid_to IS NULL;

CREATE INDEX IF NOT EXISTS program_versions_valid_to_idx
	ON program_versions (valid_to);

CREATE TABLE IF NOT EXISTS crawl_runs (
	id             UUID        PRIMARY KEY,
	started_at     TIMESTAMPTZ NOT NULL,
	completed_at   TIMESTAMPTZ,
	batch_time     TIMESTAMPTZ,
	status         TEXT        NOT NULL,
	error_message  TEXT,
	list_pages     INTEGER     NOT NULL DEFAULT 0,
	detail_pages   INTEGER     NOT NULL DEFAULT 0,
	duplicates     INTEGER     NOT NULL DEFAULT 0,
	rejected       INTEGER     NOT NULL DEFAULT 0,
	degenerate_ids INTEGER     NOT NULL DEFAULT 0,
	fetch_errors   INTEGER     NOT NULL DEFAULT 0,
	new_rows       INTEGER     NOT NULL DEFAULT 0,
	changed_rows   INTEGER     NOT NULL DEFAULT 0,
	unchanged_rows INTEGER     NOT NULL DEFAULT 0,
	removed_rows   INTEGER     NOT NULL DEFAULT 0
);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
