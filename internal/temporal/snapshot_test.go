package temporal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/temporal"
)

func snapshot(t *testing.T, store temporal.Store, state domain.SnapshotState) []domain.SnapshotRow {
	t.Helper()
	rows, err := temporal.NewReconstructor(store).Snapshot(context.Background(), state)
	require.NoError(t, err)
	return rows
}

func TestSnapshot_EmptyStore(t *testing.T) {
	t.Parallel()

	rows := snapshot(t, temporal.NewMemStore(), domain.SnapshotAll)
	assert.Empty(t, rows)
}

func TestSnapshot_LiveProgram(t *testing.T) {
	t.Parallel()

	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.Merge(ctx, []domain.Program{program("a", "x")}, t1)
	require.NoError(t, err)

	rows := snapshot(t, store, domain.SnapshotAll)
	require.Len(t, rows, 1)

	assert.Equal(t, "a", rows[0].IDHash)
	assert.False(t, rows[0].Deleted)
	assert.True(t, rows[0].LastUpdated.Equal(t1))
	assert.Empty(t, rows[0].PreviousUpdateDates)
}

// TestSnapshot_ChangeThenDisappearance covers a program that is merged
// with one content, changes, and then disappears: after the change the
// snapshot shows the new content with one previous update date, and
// after the disappearance it shows the same content marked deleted with
// both close dates.
func TestSnapshot_ChangeThenDisappearance(t *testing.T) {
	t.Parallel()

	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.Merge(ctx, []domain.Program{program("a", "x")}, t1)
	require.NoError(t, err)

	_, err = engine.Merge(ctx, []domain.Program{program("a", "y")}, t2)
	require.NoError(t, err)

	rows := snapshot(t, store, domain.SnapshotAll)
	require.Len(t, rows, 1)
	assert.Equal(t, "y", rows[0].Checksum)
	assert.False(t, rows[0].Deleted)
	assert.True(t, rows[0].LastUpdated.Equal(t2))
	require.Len(t, rows[0].PreviousUpdateDates, 1)
	assert.True(t, rows[0].PreviousUpdateDates[0].Equal(t2))

	_, err = engine.Merge(ctx, nil, t3)
	require.NoError(t, err)

	rows = snapshot(t, store, domain.SnapshotAll)
	require.Len(t, rows, 1)
	assert.Equal(t, "y", rows[0].Checksum, "deleted row carries the last merged content")
	assert.True(t, rows[0].Deleted)
	assert.True(t, rows[0].LastUpdated.Equal(t3))
	require.Len(t, rows[0].PreviousUpdateDates, 2)
	assert.True(t, rows[0].PreviousUpdateDates[0].Equal(t2))
	assert.True(t, rows[0].PreviousUpdateDates[1].Equal(t3))
}

func TestSnapshot_StateFilters(t *testing.T) {
	t.Parallel()

	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.Merge(ctx, []domain.Program{
		program("a", "x"),
		program("b", "y"),
	}, t1)
	require.NoError(t, err)

	_, err = engine.Merge(ctx, []domain.Program{program("a", "x")}, t2)
	require.NoError(t, err)

	all := snapshot(t, store, domain.SnapshotAll)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].IDHash, "rows are ordered by id_hash")
	assert.Equal(t, "b", all[1].IDHash)

	current := snapshot(t, store, domain.SnapshotCurrent)
	require.Len(t, current, 1)
	assert.Equal(t, "a", current[0].IDHash)
	assert.False(t, current[0].Deleted)

	retired := snapshot(t, store, domain.SnapshotRetired)
	require.Len(t, retired, 1)
	assert.Equal(t, "b", retired[0].IDHash)
	assert.True(t, retired[0].Deleted)
}

func TestSnapshot_ReappearanceKeepsHistory(t *testing.T) {
	t.Parallel()

	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.Merge(ctx, []domain.Program{program("a", "x")}, t1)
	require.NoError(t, err)
	_, err = engine.Merge(ctx, nil, t2)
	require.NoError(t, err)
	_, err = engine.Merge(ctx, []domain.Program{program("a", "z")}, t3)
	require.NoError(t, err)

	rows := snapshot(t, store, domain.SnapshotAll)
	require.Len(t, rows, 1)

	assert.False(t, rows[0].Deleted)
	assert.Equal(t, "z", rows[0].Checksum)
	assert.True(t, rows[0].LastUpdated.Equal(t3))
	require.Len(t, rows[0].PreviousUpdateDates, 1)
	assert.True(t, rows[0].PreviousUpdateDates[0].Equal(t2), "the pre-gap close date survives reappearance")
}

func TestSnapshot_DeletedContentFromLatestClosedRow(t *testing.T) {
	t.Parallel()

	engine, store := newEngine(t)
	ctx := context.Background()

	// Three versions, then gone. The deleted snapshot row must carry the
	// content of the last closed row, not an earlier one.
	for i, checksum := range []string{"v1", "v2", "v3"} {
		batchTime := t1.Add(time.Duration(i) * 24 * time.Hour)
		_, err := engine.Merge(ctx, []domain.Program{program("a", checksum)}, batchTime)
		require.NoError(t, err)
	}
	_, err := engine.Merge(ctx, nil, t4)
	require.NoError(t, err)

	rows := snapshot(t, store, domain.SnapshotRetired)
	require.Len(t, rows, 1)
	assert.Equal(t, "v3", rows[0].Checksum)
	assert.Len(t, rows[0].PreviousUpdateDates, 3)
}
