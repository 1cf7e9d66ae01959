package domain

import "time"

// VersionedRow is one persisted version of a program. Rows are append
// only: content never changes after insert, and the only permitted
// mutation is setting ValidTo on an open row to close it.
type VersionedRow struct {
	Program

	// ValidFrom is the batch timestamp at which this version appeared.
	ValidFrom time.Time `db:"valid_from" json:"valid_from"`
	// ValidTo is the batch timestamp at which this version was closed.
	// Nil marks the currently live version; at most one row per id_hash
	// is open at any time.
	ValidTo *time.Time `db:"valid_to" json:"valid_to"`
}

// Open reports whether this row is the live version of its program.
func (r *VersionedRow) Open() bool {
	return r.ValidTo == nil
}
