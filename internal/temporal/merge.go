package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/logger"
)

// MergeResult summarizes the effect of one batch merge.
type MergeResult struct {
	// New counts programs that opened their first row, or reappeared
	// after a gap.
	New int `json:"new"`
	// Changed counts programs whose open row was closed and replaced
	// because the checksum differed.
	Changed int `json:"changed"`
	// Unchanged counts programs whose open row matched the incoming
	// checksum; nothing was written for them.
	Unchanged int `json:"unchanged"`
	// Removed counts programs absent from the batch whose open row was
	// closed without replacement.
	Removed int `json:"removed"`
}

// Engine applies full-crawl batches against a versioned store. A batch
// is the complete record set of one crawl run; absence from it is the
// sole deletion signal, so partial batches must never be merged.
type Engine struct {
	store Store
	log   logger.Interface
}

// NewEngine creates a merge engine over the given store.
func NewEngine(store Store, log logger.Interface) *Engine {
	return &Engine{store: store, log: log.WithComponent("merge")}
}

// Merge applies one batch of fingerprinted records at batch timestamp
// batchTime. The change set is computed against the current open rows
// and applied as a single atomic unit; on error nothing is written and
// the merge can be retried from scratch.
func (e *Engine) Merge(ctx context.Context, batch []domain.Program, batchTime time.Time) (MergeResult, error) {
	open, err := e.store.OpenVersions(ctx)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: load open versions: %w", err)
	}

	cs, result := e.plan(batch, open, batchTime)

	if cs.Empty() {
		e.log.Info("batch is a no-op", "unchanged", result.Unchanged)
		return result, nil
	}

	if err := e.store.ApplyChangeSet(ctx, cs); err != nil {
		return MergeResult{}, fmt.Errorf("merge: apply change set: %w", err)
	}

	e.log.Info("batch merged",
		"batch_time", batchTime,
		"new", result.New,
		"changed", result.Changed,
		"unchanged", result.Unchanged,
		"removed", result.Removed,
	)

	return result, nil
}

// plan computes the change set for a batch against the open-row state.
func (e *Engine) plan(batch []domain.Program, open map[string]OpenVersion, batchTime time.Time) (ChangeSet, MergeResult) {
	cs := ChangeSet{BatchTime: batchTime}
	var result MergeResult

	seen := make(map[string]struct{}, len(batch))

	for i := range batch {
		record := &batch[i]

		// Batches are deduplicated upstream; a duplicate slipping
		// through here would violate the single-open invariant.
		if _, dup := seen[record.IDHash]; dup {
			e.log.Warn("duplicate id_hash in batch, skipping", "id_hash", record.IDHash)
			continue
		}
		seen[record.IDHash] = struct{}{}

		current, exists := open[record.IDHash]

		switch {
		case !exists:
			cs.Inserts = append(cs.Inserts, newOpenRow(record, batchTime))
			result.New++

		case current.Checksum == record.Checksum:
			result.Unchanged++

		default:
			cs.Closes = append(cs.Closes, record.IDHash)
			cs.Inserts = append(cs.Inserts, newOpenRow(record, batchTime))
			result.Changed++
		}
	}

	// Every open program absent from the batch is closed without a
	// replacement. Deletion is inferred from this closure later; no
	// flag is written.
	for idHash := range open {
		if _, present := seen[idHash]; !present {
			cs.Closes = append(cs.Closes, idHash)
			result.Removed++
		}
	}

	return cs, result
}

// newOpenRow builds the open row for a record at batch time.
func newOpenRow(record *domain.Program, batchTime time.Time) domain.VersionedRow {
	return domain.VersionedRow{
		Program:   *record,
		ValidFrom: batchTime,
		ValidTo:   nil,
	}
}
