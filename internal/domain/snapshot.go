package domain

import "time"

// SnapshotRow is the derived "current + history" view of one program.
// It is recomputed from versioned rows on demand and never persisted.
type SnapshotRow struct {
	Program

	// LastUpdated is the live row's valid_from, or for deleted programs
	// the timestamp of the final closure.
	LastUpdated time.Time `json:"last_updated"`
	// PreviousUpdateDates lists the close timestamps of all retired
	// versions, in ascending order.
	PreviousUpdateDates []time.Time `json:"previous_update_dates"`
	// Deleted reports that the program has no open row: it was absent
	// from the most recent crawl batch.
	Deleted bool `json:"deleted"`
}

// SnapshotState selects which programs a snapshot query returns.
type SnapshotState string

const (
	// SnapshotAll returns every program ever seen.
	SnapshotAll SnapshotState = "all"
	// SnapshotCurrent returns only live programs (the current catalog).
	SnapshotCurrent SnapshotState = "current"
	// SnapshotRetired returns only deleted programs (the retirement log).
	SnapshotRetired SnapshotState = "retired"
)
