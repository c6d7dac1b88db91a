package audit

// errors.go defines the typed errors surfaced by the pipeline.
//
// Two classes exist:
//   - Run-fatal errors (ConfigError, UnknownSectorError, SectorConflictError,
//     AssemblyError): a partial aggregate would be misleading, so the run
//     aborts before producing a report.
//   - Row-level cleaning issues are never errors; they are recorded in the
//     CleaningReport and the row is repaired or dropped.
//
// InvalidDeltaError indicates a violated accumulator invariant. Engine logic
// never produces a negative delta, so seeing one means a bug, not bad data.

import "fmt"

// ConfigError reports a malformed sector catalog. Fatal before any processing.
type ConfigError struct {
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sector config: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("sector config: %s", e.Detail)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnknownSectorError reports a record whose sector has no catalog entry.
// Callers must treat this as rejecting the run, never as a silent skip.
type UnknownSectorError struct {
	SectorID string
}

func (e *UnknownSectorError) Error() string {
	return fmt.Sprintf("unknown sector: %q", e.SectorID)
}

// SectorConflictError reports a factory re-registered under a different
// sector mid-run. A factory cannot silently switch sectors.
type SectorConflictError struct {
	FactoryID  string
	Registered string
	Requested  string
}

func (e *SectorConflictError) Error() string {
	return fmt.Sprintf("factory %q already registered in sector %q, got %q",
		e.FactoryID, e.Registered, e.Requested)
}

// InvalidDeltaError reports an attempt to append a negative delta to an
// accumulator. Emissions are monotonically non-decreasing within a run.
type InvalidDeltaError struct {
	Delta float64
}

func (e *InvalidDeltaError) Error() string {
	return fmt.Sprintf("invalid emission delta %g: must be >= 0", e.Delta)
}

// AssemblyError reports structurally inconsistent inputs to report assembly
// (e.g. an alert for a factory absent from the registry). This should be
// unreachable when the engine and evaluator are correct.
type AssemblyError struct {
	Detail string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("report assembly: %s", e.Detail)
}
