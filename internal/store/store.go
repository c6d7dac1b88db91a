// Package store persists completed audit runs in PostgreSQL. Persistence is
// optional: when no database is configured the service keeps runs in memory
// only, and nothing in the audit core depends on this package.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carbontrace/carbontrace/internal/audit"
)

// DBTX is the subset of pgx operations the store needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// ErrRunNotFound is returned when a run ID has no stored row.
var ErrRunNotFound = errors.New("audit run not found")

// RunRecord is one persisted audit run. Summary counters are denormalized
// so listings never need to unmarshal the full report.
type RunRecord struct {
	RunID        uuid.UUID `json:"run_id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	Factories    int       `json:"factories"`
	RowsIn       int       `json:"rows_in"`
	RowsRepaired int       `json:"rows_repaired"`
	RowsDropped  int       `json:"rows_dropped"`
	Breaches     int       `json:"breaches"`
}

// RunStore reads and writes audit runs.
type RunStore struct {
	db DBTX
}

// NewRunStore returns a store backed by db.
func NewRunStore(db DBTX) *RunStore {
	return &RunStore{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_runs (
    run_id        UUID PRIMARY KEY,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    source        TEXT NOT NULL,
    factories     INTEGER NOT NULL,
    rows_in       INTEGER NOT NULL,
    rows_repaired INTEGER NOT NULL,
    rows_dropped  INTEGER NOT NULL,
    breaches      INTEGER NOT NULL,
    report        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_runs_created_at_idx ON audit_runs (created_at DESC);
`

// EnsureSchema creates the runs table if it does not exist.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun stores a completed report under a fresh run ID and returns its
// record. source labels where the input came from ("upload", "cli", ...).
func (s *RunStore) SaveRun(ctx context.Context, source string, report *audit.AuditReport) (RunRecord, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal report: %w", err)
	}

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

	const q = `
INSERT INTO audit_runs (run_id, created_at, source, factories, rows_in, rows_repaired, rows_dropped, breaches, report)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.Exec(ctx, q,
		rec.RunID, rec.CreatedAt, rec.Source,
		rec.Factories, rec.RowsIn, rec.RowsRepaired, rec.RowsDropped, rec.Breaches,
		payload,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
SELECT run_id, created_at, source, factories, rows_in, rows_repaired, rows_dropped, breaches
FROM audit_runs
ORDER BY created_at DESC
LIMIT $1`

	rows, err := s.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		err := rows.Scan(&rec.RunID, &rec.CreatedAt, &rec.Source,
			&rec.Factories, &rec.RowsIn, &rec.RowsRepaired, &rec.RowsDropped, &rec.Breaches)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// GetRun loads one run and its full report.
func (s *RunStore) GetRun(ctx context.Context, runID uuid.UUID) (RunRecord, *audit.AuditReport, error) {
	const q = `
SELECT run_id, created_at, source, factories, rows_in, rows_repaired, rows_dropped, breaches, report
FROM audit_runs
WHERE run_id = $1`

	var (
		rec     RunRecord
		payload []byte
	)
	err := s.db.QueryRow(ctx, q, runID).Scan(&rec.RunID, &rec.CreatedAt, &rec.Source,
		&rec.Factories, &rec.RowsIn, &rec.RowsRepaired, &rec.RowsDropped, &rec.Breaches,
		&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, nil, ErrRunNotFound
	}
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get run: %w", err)
	}

	var report audit.AuditReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return RunRecord{}, nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return rec, &report, nil
}

func countBreaches(report *audit.AuditReport) int {
	n := 0
	for _, alert := range report.Alerts {
		if alert.Severity == audit.SeverityBreach {
			n++
		}
	}
	return n
}
