// Package pipeline wires one complete crawl-and-merge run: crawl the
// source into a batch, merge the batch into the version store, record
// the run outcome.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/foerderdata/fundwatch/internal/config"
	"github.com/foerderdata/fundwatch/internal/crawler"
	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/logger"
	"github.com/foerderdata/fundwatch/internal/temporal"
)

// RunRecorder persists crawl-run audit rows. Nil-safe via the runner:
// dry runs pass no recorder.
type RunRecorder interface {
	Create(ctx context.Context, run *domain.CrawlRun) error
	Finish(ctx context.Context, run *domain.CrawlRun) error
}

// Runner executes crawl-and-merge runs against one store.
type Runner struct {
	cfg     config.CrawlerConfig
	log     logger.Interface
	store   temporal.Store
	records RunRecorder
}

// NewRunner creates a pipeline runner. records may be nil; run outcomes
// are then only logged.
func NewRunner(cfg config.CrawlerConfig, log logger.Interface, store temporal.Store, records RunRecorder) *Runner {
	return &Runner{cfg: cfg, log: log.WithComponent("pipeline"), store: store, records: records}
}

// Result is the outcome of one run.
type Result struct {
	RunID string                 `json:"run_id"`
	Merge temporal.MergeResult   `json:"merge"`
	Stats domain.RunStatsSummary `json:"stats"`
}

// Run performs one crawl and merges the batch atomically. A crawl or
// merge failure leaves the store at its last committed batch; the
// recorded run carries the error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	run := &domain.CrawlRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    domain.RunStatusRunning,
	}
	log := r.log.WithRunID(run.ID)

	if r.records != nil {
		if err := r.records.Create(ctx, run); err != nil {
			return Result{}, err
		}
	}

	stats := domain.NewRunStats()

	batch, err := crawler.New(r.cfg, log).Run(ctx, stats)
	if err != nil {
		return Result{RunID: run.ID}, r.fail(ctx, log, run, stats, err)
	}

	batchTime := time.Now().UTC()

	merge, err := temporal.NewEngine(r.store, log).Merge(ctx, batch, batchTime)
	if err != nil {
		return Result{RunID: run.ID}, r.fail(ctx, log, run, stats, err)
	}

	r.finish(ctx, log, run, stats, merge, batchTime)

	return Result{RunID: run.ID, Merge: merge, Stats: stats.Summary()}, nil
}

// fail records a failed run and returns the original error.
func (r *Runner) fail(ctx context.Context, log logger.Interface, run *domain.CrawlRun, stats *domain.RunStats, runErr error) error {
	now := time.Now().UTC()
	message := runErr.Error()

	run.Status = domain.RunStatusFailed
	run.CompletedAt = &now
	run.ErrorMessage = &message
	applyStats(run, stats.Summary())

	if r.records != nil {
		if err := r.records.Finish(ctx, run); err != nil {
			log.Error("failed to record failed run", "error", err)
		}
	}

	log.Error("crawl run failed", "error", runErr)
	return runErr
}

// finish records a completed run.
func (r *Runner) finish(ctx context.Context, log logger.Interface, run *domain.CrawlRun, stats *domain.RunStats, merge temporal.MergeResult, batchTime time.Time) {
	now := time.Now().UTC()

	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &now
	run.BatchTime = &batchTime
	applyStats(run, stats.Summary())
	run.NewRows = merge.New
	run.ChangedRows = merge.Changed
	run.UnchangedRows = merge.Unchanged
	run.RemovedRows = merge.Removed

	if r.records != nil {
		if err := r.records.Finish(ctx, run); err != nil {
			log.Error("failed to record completed run", "error", err)
		}
	}

	log.Info("crawl run completed",
		"new", merge.New,
		"changed", merge.Changed,
		"unchanged", merge.Unchanged,
		"removed", merge.Removed,
		"duration", time.Since(run.StartedAt),
	)
}

// applyStats copies the crawl counters onto the run row.
func applyStats(run *domain.CrawlRun, summary domain.RunStatsSummary) {
	run.ListPages = summary.ListPages
	run.DetailPages = summary.DetailPages
	run.Duplicates = summary.Duplicates
	run.Rejected = summary.Rejected
	run.DegenerateIDs = summary.DegenerateIDs
	run.FetchErrors = summary.FetchErrors
}
