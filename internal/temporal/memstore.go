package temporal

import (
	"context"
	"fmt"
	"sync"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// MemStore is an in-memory Store. It backs tests and dry runs; the
// persistent equivalent lives in the database package. A change set is
// applied under the write lock, so readers see pre- or post-batch state
// only.
type MemStore struct {
	mu   sync.RWMutex
	rows []domain.VersionedRow
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// OpenVersions returns the open row projection per id_hash.
func (m *MemStore) OpenVersions(ctx context.Context) (map[string]OpenVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	open := make(map[string]OpenVersion)
	for i := range m.rows {
		row := &m.rows[i]
		if row.Open() {
			open[row.IDHash] = OpenVersion{
				IDHash:    row.IDHash,
				Checksum:  row.Checksum,
				ValidFrom: row.ValidFrom,
			}
		}
	}

	return open, nil
}

// ApplyChangeSet applies one batch merge. The change set is validated
// before any mutation so a failure leaves the store untouched.
func (m *MemStore) ApplyChangeSet(ctx context.Context, cs ChangeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	closeTargets := make(map[string]int, len(cs.Closes))
	for _, idHash := range cs.Closes {
		index, found := m.openIndex(idHash)
		if !found {
			return fmt.Errorf("%w: %s", ErrNoOpenRow, idHash)
		}
		closeTargets[idHash] = index
	}

	batchTime := cs.BatchTime
	for _, index := range closeTargets {
		m.rows[index].ValidTo = &batchTime
	}

	for i := range cs.Inserts {
		insert := cs.Inserts[i]
		insert.ValidFrom = cs.BatchTime
		insert.ValidTo = nil
		m.rows = append(m.rows, insert)
	}

	return nil
}

// LiveRows returns copies of all open rows in insertion order.
func (m *MemStore) LiveRows(ctx context.Context) ([]domain.VersionedRow, error) {
	return m.filtered(func(r *domain.VersionedRow) bool { return r.Open() })
}

// ClosedRows returns copies of all closed rows in insertion order.
func (m *MemStore) ClosedRows(ctx context.Context) ([]domain.VersionedRow, error) {
	return m.filtered(func(r *domain.VersionedRow) bool { return !r.Open() })
}

// RowCount returns the total number of rows. Used by tests.
func (m *MemStore) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// openIndex locates the open row for an id_hash. Caller holds the lock.
func (m *MemStore) openIndex(idHash string) (int, bool) {
	for i := range m.rows {
		if m.rows[i].IDHash == idHash && m.rows[i].Open() {
			return i, true
		}
	}
	return 0, false
}

func (m *MemStore) filtered(keep func(*domain.VersionedRow) bool) ([]domain.VersionedRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []domain.VersionedRow
	for i := range m.rows {
		if keep(&m.rows[i]) {
			rows = append(rows, m.rows[i])
		}
	}

	return rows, nil
}
