// Package temporal implements the identity-versioning core: merging
// crawl batches into validity intervals and reconstructing the current
// catalog plus change history from them. The algorithms are storage
// agnostic; stores implement the small contract below either in memory
// or against a relational database.
package temporal

import (
	"context"
	"errors"
	"time"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// ErrNoOpenRow reports that a change set tried to close a row that is
// not open. This only happens when the store was written outside a
// merge; the batch is not applied.
var ErrNoOpenRow = errors.New("temporal: no open row for id_hash")

// OpenVersion is the merge-relevant projection of an open row.
type OpenVersion struct {
	IDHash    string
	Checksum  string
	ValidFrom time.Time
}

// ChangeSet is the full effect of one batch merge: every listed open
// row is closed at BatchTime and every insert opens at BatchTime. A
// store applies a change set atomically; readers observe the pre-batch
// or post-batch state, never a partial one.
type ChangeSet struct {
	BatchTime time.Time
	// Closes lists the id_hash values whose open row is closed.
	Closes []string
	// Inserts lists the new open rows, with ValidFrom set to BatchTime
	// and ValidTo nil.
	Inserts []domain.VersionedRow
}

// Empty reports whether applying the change set would write nothing.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Closes) == 0 && len(cs.Inserts) == 0
}

// Store persists versioned rows. Rows are append-only: the only
// permitted mutation is closing an open row.
type Store interface {
	// OpenVersions returns the open row projection per id_hash.
	OpenVersions(ctx context.Context) (map[string]OpenVersion, error)
	// ApplyChangeSet applies one batch merge atomically.
	ApplyChangeSet(ctx context.Context, cs ChangeSet) error
	// LiveRows returns all open rows.
	LiveRows(ctx context.Context) ([]domain.VersionedRow, error)
	// ClosedRows returns all closed rows.
	ClosedRows(ctx context.Context) ([]domain.VersionedRow, error)
}
