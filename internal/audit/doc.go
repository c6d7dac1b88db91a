// Package audit implements the emission accounting and validation pipeline.
//
// The pipeline processes raw tabular production records in four stages:
//
//  1. CleaningPipeline validates and repairs raw rows (type coercion,
//     median imputation, negative clipping) and reports every issue.
//  2. EmissionEngine resolves each record's sector, computes an emission
//     delta, and appends it to the owning factory's accumulator.
//  3. AlertEvaluator compares accumulated totals against sector caps.
//  4. AssembleReport composes cleaned rows, the cleaning report, alerts,
//     and per-factory totals into a single result for the caller.
//
// This package has no I/O or UI dependencies: callers supply parsed rows
// and a loaded sector catalog, and receive structured results back. One
// audit run uses its own FactoryRegistry; a loaded SectorCatalog is
// read-only and may be shared between concurrent runs.
package audit
