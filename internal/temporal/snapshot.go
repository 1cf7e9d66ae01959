package temporal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// Reconstructor derives the "current + history" view from the versioned
// store. The view is always recomputed; nothing here is persisted.
type Reconstructor struct {
	store Store
}

// NewReconstructor creates a snapshot reconstructor over the store.
func NewReconstructor(store Store) *Reconstructor {
	return &Reconstructor{store: store}
}

// retiredGroup aggregates the closed rows of one id_hash.
type retiredGroup struct {
	closeDates []time.Time
	latest     *domain.VersionedRow
}

// Snapshot returns one row per program ever merged, filtered by state.
// Live programs carry the open row's content with last_updated =
// valid_from; programs without an open row are reported deleted with the
// content of their most recently closed row. previous_update_dates lists
// all close timestamps in ascending order.
func (r *Reconstructor) Snapshot(ctx context.Context, state domain.SnapshotState) ([]domain.SnapshotRow, error) {
	live, err := r.store.LiveRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load live rows: %w", err)
	}

	closed, err := r.store.ClosedRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load closed rows: %w", err)
	}

	retired := groupRetired(closed)

	rows := make([]domain.SnapshotRow, 0, len(live)+len(retired))

	liveSeen := make(map[string]struct{}, len(live))
	for i := range live {
		row := &live[i]
		liveSeen[row.IDHash] = struct{}{}

		snap := domain.SnapshotRow{
			Program:     row.Program,
			LastUpdated: row.ValidFrom,
			Deleted:     false,
		}
		if group, ok := retired[row.IDHash]; ok {
			snap.PreviousUpdateDates = group.closeDates
		}
		rows = append(rows, snap)
	}

	for idHash, group := range retired {
		if _, isLive := liveSeen[idHash]; isLive {
			continue
		}

		rows = append(rows, domain.SnapshotRow{
			Program:             group.latest.Program,
			LastUpdated:         *group.latest.ValidTo,
			PreviousUpdateDates: group.closeDates,
			Deleted:             true,
		})
	}

	rows = filterByState(rows, state)

	sort.Slice(rows, func(i, j int) bool { return rows[i].IDHash < rows[j].IDHash })

	return rows, nil
}

// groupRetired aggregates closed rows per id_hash: the ordered close
// dates and the row supplying content when no live row exists. Ties on
// valid_to are broken by the greater valid_from, which is insertion
// order within an id_hash.
func groupRetired(closed []domain.VersionedRow) map[string]*retiredGroup {
	retired := make(map[string]*retiredGroup)

	for i := range closed {
		row := &closed[i]

		group, ok := retired[row.IDHash]
		if !ok {
			group = &retiredGroup{}
			retired[row.IDHash] = group
		}

		group.closeDates = append(group.closeDates, *row.ValidTo)

		if group.latest == nil || laterRow(row, group.latest) {
			group.latest = row
		}
	}

	for _, group := range retired {
		sort.Slice(group.closeDates, func(i, j int) bool {
			return group.closeDates[i].Before(group.closeDates[j])
		})
	}

	return retired
}

// laterRow reports whether a supersedes b as the most recent closed row.
func laterRow(a, b *domain.VersionedRow) bool {
	if !a.ValidTo.Equal(*b.ValidTo) {
		return a.ValidTo.After(*b.ValidTo)
	}
	return a.ValidFrom.After(b.ValidFrom)
}

// filterByState keeps only the rows matching the requested state.
func filterByState(rows []domain.SnapshotRow, state domain.SnapshotState) []domain.SnapshotRow {
	switch state {
	case domain.SnapshotCurrent:
		return filterRows(rows, func(r *domain.SnapshotRow) bool { return !r.Deleted })
	case domain.SnapshotRetired:
		return filterRows(rows, func(r *domain.SnapshotRow) bool { return r.Deleted })
	default:
		return rows
	}
}

func filterRows(rows []domain.SnapshotRow, keep func(*domain.SnapshotRow) bool) []domain.SnapshotRow {
	filtered := rows[:0]
	for i := range rows {
		if keep(&rows[i]) {
			filtered = append(filtered, rows[i])
		}
	}
	return filtered
}
