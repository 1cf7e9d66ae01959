package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/temporal"
)

// versionColumns lists the program_versions columns in insert order.
const versionColumns = `id_hash, id_url, url, title,
	description, more_info, legal_basis,
	contact_info_institution, contact_info_street, contact_info_city,
	contact_info_fax, contact_info_phone, contact_info_email, contact_info_website,
	funding_type, funding_area, funding_location, eligible_applicants,
	funding_body, further_links,
	license_info, checksum, valid_from, valid_to`

const insertVersionQuery = `
	INSERT INTO program_versions (` + versionColumns + `)
	VALUES (:id_hash, :id_url, :url, :title,
		:description, :more_info, :legal_basis,
		:contact_info_institution, :contact_info_street, :contact_info_city,
		:contact_info_fax, :contact_info_phone, :contact_info_email, :contact_info_website,
		:funding_type, :funding_area, :funding_location, :eligible_applicants,
		:funding_body, :further_links,
		:license_info, :checksum, :valid_from, :valid_to)
`

// VersionStore is the PostgreSQL implementation of temporal.Store.
type VersionStore struct {
	db *sqlx.DB
}

var _ temporal.Store = (*VersionStore)(nil)

// NewVersionStore creates a version store over the given connection.
func NewVersionStore(db *sqlx.DB) *VersionStore {
	return &VersionStore{db: db}
}

// OpenVersions returns the open row projection per id_hash.
func (s *VersionStore) OpenVersions(ctx context.Context) (map[string]temporal.OpenVersion, error) {
	var versions []temporal.OpenVersion

	query := `
		SELECT id_hash AS idhash, checksum, valid_from AS validfrom
		FROM program_versions
		WHERE valid_to IS NULL
	`
	if err := s.db.SelectContext(ctx, &versions, query); err != nil {
		return nil, fmt.Errorf("failed to load open versions: %w", err)
	}

	open := make(map[string]temporal.OpenVersion, len(versions))
	for _, v := range versions {
		open[v.IDHash] = v
	}

	return open, nil
}

// ApplyChangeSet applies one batch merge in a single serializable
// transaction. Readers see the pre-batch or post-batch state, never a
// partial one; on any error the transaction rolls back entirely.
func (s *VersionStore) ApplyChangeSet(ctx context.Context, cs temporal.ChangeSet) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if closeErr := s.closeRows(ctx, tx, cs); closeErr != nil {
		return closeErr
	}

	for i := range cs.Inserts {
		row := cs.Inserts[i]
		row.ValidFrom = cs.BatchTime
		row.ValidTo = nil

		if _, insertErr := tx.NamedExecContext(ctx, insertVersionQuery, &row); insertErr != nil {
			return fmt.Errorf("failed to insert version for %s: %w", row.IDHash, insertErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit merge transaction: %w", commitErr)
	}

	return nil
}

// closeRows sets valid_to on the open rows named by the change set and
// verifies that every close target actually had an open row.
func (s *VersionStore) closeRows(ctx context.Context, tx *sqlx.Tx, cs temporal.ChangeSet) error {
	if len(cs.Closes) == 0 {
		return nil
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE program_versions
		SET valid_to = $1
		WHERE id_hash = ANY($2) AND valid_to IS NULL
	`, cs.BatchTime, pq.Array(cs.Closes))
	if err != nil {
		return fmt.Errorf("failed to close versions: %w", err)
	}

	closed, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if closed != int64(len(cs.Closes)) {
		return fmt.Errorf("%w: closed %d of %d", temporal.ErrNoOpenRow, closed, len(cs.Closes))
	}

	return nil
}

// LiveRows returns all open rows.
func (s *VersionStore) LiveRows(ctx context.Context) ([]domain.VersionedRow, error) {
	return s.selectRows(ctx, `
		SELECT `+versionColumns+`
		FROM program_versions
		WHERE valid_to IS NULL
		ORDER BY id_hash
	`)
}

// ClosedRows returns all closed rows ordered by id_hash and valid_from,
// which is insertion order within a program.
func (s *VersionStore) ClosedRows(ctx context.Context) ([]domain.VersionedRow, error) {
	return s.selectRows(ctx, `
		SELECT `+versionColumns+`
		FROM program_versions
		WHERE valid_to IS NOT NULL
		ORDER BY id_hash, valid_from
	`)
}

func (s *VersionStore) selectRows(ctx context.Context, query string) ([]domain.VersionedRow, error) {
	var rows []domain.VersionedRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	return rows, nil
}
