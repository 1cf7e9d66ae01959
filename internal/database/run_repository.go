package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// RunRepository handles database operations for crawl-run audit rows.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new crawl-run repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new crawl run in running state.
func (r *RunRepository) Create(ctx context.Context, run *domain.CrawlRun) error {
	query := `
		INSERT INTO crawl_runs (id, started_at, status)
		VALUES (:id, :started_at, :status)
	`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create crawl run: %w", err)
	}

	return nil
}

// Finish records the outcome of a crawl run: final status, counters and
// an error message for failed runs.
func (r *RunRepository) Finish(ctx context.Context, run *domain.CrawlRun) error {
	query := `
		UPDATE crawl_runs
		SET completed_at = :completed_at, batch_time = :batch_time,
		    status = :status, error_message = :error_message,
		    list_pages = :list_pages, detail_pages = :detail_pages,
		    duplicates = :duplicates, rejected = :rejected,
		    degenerate_ids = :degenerate_ids, fetch_errors = :fetch_errors,
		    new_rows = :new_rows, changed_rows = :changed_rows,
		    unchanged_rows = :unchanged_rows, removed_rows = :removed_rows
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to finish crawl run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("crawl run not found: %s", run.ID)
	}

	return nil
}

// ListRecent returns the most recent crawl runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.CrawlRun, error) {
	var runs []*domain.CrawlRun

	query := `
		SELECT id, started_at, completed_at, batch_time, status, error_message,
		       list_pages, detail_pages, duplicates, rejected, degenerate_ids,
		       fetch_errors, new_rows, changed_rows, unchanged_rows, removed_rows
		FROM crawl_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}

	if runs == nil {
		runs = []*domain.CrawlRun{}
	}

	return runs, nil
}
