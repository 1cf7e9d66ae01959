package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foerderdata/fundwatch/internal/api"
	"github.com/foerderdata/fundwatch/internal/config"
	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/logger"
)

type fakeSnapshots struct {
	rows []domain.SnapshotRow
	err  error

	lastState domain.SnapshotState
}

func (f *fakeSnapshots) Snapshot(_ context.Context, state domain.SnapshotState) ([]domain.SnapshotRow, error) {
	f.lastState = state
	return f.rows, f.err
}

type fakeRuns struct {
	runs []*domain.CrawlRun
	err  error

	lastLimit int
}

func (f *fakeRuns) ListRecent(_ context.Context, limit int) ([]*domain.CrawlRun, error) {
	f.lastLimit = limit
	return f.runs, f.err
}

func newTestServer(snapshots api.SnapshotProvider, runs api.RunLister) *api.Server {
	return api.NewServer(config.ServerConfig{Address: ":0"}, logger.NewNoOp(), snapshots, runs)
}

func doRequest(t *testing.T, srv *api.Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&fakeSnapshots{}, nil), "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	snapshots := &fakeSnapshots{rows: []domain.SnapshotRow{
		{Program: domain.Program{IDHash: "a", Title: "Programm A"}},
	}}

	rec := doRequest(t, newTestServer(snapshots, nil), "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SnapshotAll, snapshots.lastState)

	var body struct {
		State string           `json:"state"`
		Count int              `json:"count"`
		Rows  []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "all", body.State)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "a", body.Rows[0]["id_hash"])
}

func TestSnapshot_StateQuery(t *testing.T) {
	t.Parallel()

	snapshots := &fakeSnapshots{}
	rec := doRequest(t, newTestServer(snapshots, nil), "/api/v1/snapshot?state=retired")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SnapshotRetired, snapshots.lastState)
}

func TestSnapshot_InvalidState(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&fakeSnapshots{}, nil), "/api/v1/snapshot?state=bogus")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "state must be one of")
}

func TestSnapshot_StoreError(t *testing.T) {
	t.Parallel()

	snapshots := &fakeSnapshots{err: errors.New("boom")}
	rec := doRequest(t, newTestServer(snapshots, nil), "/api/v1/snapshot")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom", "internal errors are not leaked")
}

func TestRuns(t *testing.T) {
	t.Parallel()

	completed := time.Date(2026, 3, 3, 3, 12, 0, 0, time.UTC)
	runs := &fakeRuns{runs: []*domain.CrawlRun{
		{
			ID:          "run-1",
			StartedAt:   completed.Add(-12 * time.Minute),
			CompletedAt: &completed,
			Status:      domain.RunStatusCompleted,
			NewRows:     3,
		},
	}}

	rec := doRequest(t, newTestServer(&fakeSnapshots{}, runs), "/api/v1/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, runs.lastLimit, "default limit applies")
	assert.Contains(t, rec.Body.String(), "run-1")
}

func TestRuns_LimitQuery(t *testing.T) {
	t.Parallel()

	runs := &fakeRuns{}
	rec := doRequest(t, newTestServer(&fakeSnapshots{}, runs), "/api/v1/runs?limit=5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, runs.lastLimit)
}

func TestRuns_InvalidLimit(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&fakeSnapshots{}, &fakeRuns{}), "/api/v1/runs?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, newTestServer(&fakeSnapshots{}, &fakeRuns{}), "/api/v1/runs?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns_NoStoreConfigured(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(&fakeSnapshots{}, nil), "/api/v1/runs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
