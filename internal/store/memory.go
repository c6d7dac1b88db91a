package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carbontrace/carbontrace/internal/audit"
)

// Runs is what the service layer needs from run storage. RunStore and
// MemoryStore both satisfy it.
type Runs interface {
	SaveRun(ctx context.Context, source string, report *audit.AuditReport) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, runID uuid.UUID) (RunRecord, *audit.AuditReport, error)
}

// MemoryStore keeps runs in process memory. It is the default backend when
// no database URL is configured; runs do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []uuid.UUID
	records map[uuid.UUID]RunRecord
	reports map[uuid.UUID]*audit.AuditReport
	maxRuns int
}

// NewMemoryStore returns a store retaining at most maxRuns recent runs;
// maxRuns <= 0 means unbounded.
func NewMemoryStore(maxRuns int) *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]RunRecord),
		reports: make(map[uuid.UUID]*audit.AuditReport),
		maxRuns: maxRuns,
	}
}

func (m *MemoryStore) SaveRun(_ context.Context, source string, report *audit.AuditReport) (RunRecord, error) {
	rec := RunRecord{
		RunID:        uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Source:       source,
		Factories:    len(report.Summaries),
		RowsIn:       report.Cleaning.RowsIn,
		RowsRepaired: report.Cleaning.RowsRepaired,
		RowsDropped:  report.Cleaning.RowsDropped,
		Breaches:     countBreaches(report),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = append(m.order, rec.RunID)
	m.records[rec.RunID] = rec
	m.reports[rec.RunID] = report

	if m.maxRuns > 0 && len(m.order) > m.maxRuns {
		evict := m.order[0]
		m.order = m.order[1:]
		delete(m.records, evict)
		delete(m.reports, evict)
	}

	return rec, nil
}

func (m *MemoryStore) ListRuns(_ context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]RunRecord, 0, limit)
	// Newest first.
	for i := len(m.order) - 1; i >= 0 && len(recs) < limit; i-- {
		recs = append(recs, m.records[m.order[i]])
	}
	return recs, nil
}

func (m *MemoryStore) GetRun(_ context.Context, runID uuid.UUID) (RunRecord, *audit.AuditReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[runID]
	if !ok {
		return RunRecord{}, nil, ErrRunNotFound
	}
	return rec, m.reports[runID], nil
}
