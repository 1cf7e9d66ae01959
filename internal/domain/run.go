package domain

import "time"

// Crawl run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// CrawlRun is the audit record of one crawl-and-merge run. A failed run
// leaves the versioned store untouched at its last committed batch; the
// run row records why.
type CrawlRun struct {
	ID          string     `db:"id" json:"id"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	// BatchTime is the merge timestamp T of the applied batch.
	BatchTime    *time.Time `db:"batch_time" json:"batch_time,omitempty"`
	Status       string     `db:"status" json:"status"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`

	ListPages     int `db:"list_pages" json:"list_pages"`
	DetailPages   int `db:"detail_pages" json:"detail_pages"`
	Duplicates    int `db:"duplicates" json:"duplicates"`
	Rejected      int `db:"rejected" json:"rejected"`
	DegenerateIDs int `db:"degenerate_ids" json:"degenerate_ids"`
	FetchErrors   int `db:"fetch_errors" json:"fetch_errors"`

	NewRows       int `db:"new_rows" json:"new_rows"`
	ChangedRows   int `db:"changed_rows" json:"changed_rows"`
	UnchangedRows int `db:"unchanged_rows" json:"unchanged_rows"`
	RemovedRows   int `db:"removed_rows" json:"removed_rows"`
}
