package audit

// cleaning.go validates and repairs raw rows before they reach accounting.
//
// The pipeline is a single forward pass: a row's values inform only the
// medians used for later rows, never earlier ones, so imputation is
// deterministic for a fixed input order. Policy per field, in order:
//
//  1. Type coercion: numeric-looking strings are parsed; unparsable values
//     mark the row type_error and drop it (nothing safe to impute).
//  2. Missing production_volume / energy_consumed: imputed with the median
//     of prior valid values in this pass; with no prior value the row is
//     dropped as insufficient_data.
//  3. Negative values are clipped to 0 and recorded as negative_clipped.
//  4. Optional columns (energy_source_type, raw_material_weight_tons) pass
//     through unchanged; absent stays unset, never defaulted.
//
// Row-level issues never abort a run; every issue is recorded in the
// CleaningReport. Re-running the pipeline on already-clean rows yields zero
// repairs and zero drops.

import (
	"sort"
	"strconv"
	"strings"
)

// Column names as they appear in the input schema and in issue records.
const (
	FieldFactoryID      = "factory_id"
	FieldSectorID       = "sector_id"
	FieldPeriod         = "period"
	FieldEnergySource   = "energy_source_type"
	FieldMaterialWeight = "raw_material_weight_tons"
	FieldProduction     = "production_volume"
	FieldEnergy         = "energy_consumed"
)

// IssueKind classifies a row-level cleaning issue.
type IssueKind string

const (
	IssueTypeError        IssueKind = "type_error"
	IssueInsufficientData IssueKind = "insufficient_data"
	IssueNegativeClipped  IssueKind = "negative_clipped"
	IssueImputed          IssueKind = "imputed"
)

// RawRow is one untyped input row. Empty strings mean the value is absent.
// Rows come from the CSV adapter (or any tabular source) with cell-level
// artifacts already stripped.
type RawRow struct {
	FactoryID         string
	SectorID          string
	Period            string
	EnergySourceType  string
	RawMaterialWeight string
	ProductionVolume  string
	EnergyConsumed    string
}

// ProductionRecord is a validated monthly record. Only the cleaning pipeline
// produces these; raw rows never reach the engine.
type ProductionRecord struct {
	FactoryID        string   `json:"factory_id"`
	SectorID         string   `json:"sector_id"`
	Period           string   `json:"period"`
	EnergySourceType string   `json:"energy_source_type,omitempty"`
	MaterialWeight   *float64 `json:"raw_material_weight_tons,omitempty"`
	ProductionVolume float64  `json:"production_volume"`
	EnergyConsumed   float64  `json:"energy_consumed"`
}

// CleaningIssue records one detected problem in one row.
type CleaningIssue struct {
	RowIndex int       `json:"row_index"`
	Field    string    `json:"field"`
	Kind     IssueKind `json:"issue_kind"`
}

// CleaningReport summarizes one cleaning pass.
type CleaningReport struct {
	RowsIn       int             `json:"rows_in"`
	RowsRepaired int             `json:"rows_repaired"`
	RowsDropped  int             `json:"rows_dropped"`
	Issues       []CleaningIssue `json:"issues,omitempty"`
}

// CleaningPipeline cleans a raw row stream in a single forward pass.
// Not safe for concurrent use; construct one per pass.
type CleaningPipeline struct {
	seenVolume []float64
	seenEnergy []float64
}

// NewCleaningPipeline returns a pipeline with no observed values.
func NewCleaningPipeline() *CleaningPipeline {
	return &CleaningPipeline{}
}

// Clean processes rows in order and returns the validated records with a
// report of every repair and drop. Prior state from an earlier call is
// discarded: each call is an independent pass.
func (p *CleaningPipeline) Clean(rows []RawRow) ([]ProductionRecord, CleaningReport) {
	p.seenVolume = p.seenVolume[:0]
	p.seenEnergy = p.seenEnergy[:0]

	report := CleaningReport{RowsIn: len(rows)}
	records := make([]ProductionRecord, 0, len(rows))

	for i, row := range rows {
		rec, rowIssues, ok := p.cleanRow(i, row)
		report.Issues = append(report.Issues, rowIssues...)
		if !ok {
			report.RowsDropped++
			continue
		}
		if repaired(rowIssues) {
			report.RowsRepaired++
		}
		// Only observed values feed later medians: dropped rows contribute
		// nothing, and an imputed value never re-enters the pool it was
		// drawn from.
		if !hasIssue(rowIssues, FieldProduction, IssueImputed) {
			p.seenVolume = append(p.seenVolume, rec.ProductionVolume)
		}
		if !hasIssue(rowIssues, FieldEnergy, IssueImputed) {
			p.seenEnergy = append(p.seenEnergy, rec.EnergyConsumed)
		}
		records = append(records, rec)
	}

	return records, report
}

// cleanRow validates one row. ok is false when the row must be dropped.
func (p *CleaningPipeline) cleanRow(idx int, row RawRow) (ProductionRecord, []CleaningIssue, bool) {
	var issues []CleaningIssue

	if strings.TrimSpace(row.FactoryID) == "" {
		issues = append(issues, CleaningIssue{idx, FieldFactoryID, IssueTypeError})
		return ProductionRecord{}, issues, false
	}
	if strings.TrimSpace(row.SectorID) == "" {
		issues = append(issues, CleaningIssue{idx, FieldSectorID, IssueTypeError})
		return ProductionRecord{}, issues, false
	}

	rec := ProductionRecord{
		FactoryID:        strings.TrimSpace(row.FactoryID),
		SectorID:         strings.TrimSpace(row.SectorID),
		Period:           strings.TrimSpace(row.Period),
		EnergySourceType: strings.TrimSpace(row.EnergySourceType),
	}

	volume, volIssues, ok := p.cleanNumeric(idx, FieldProduction, row.ProductionVolume, p.seenVolume)
	issues = append(issues, volIssues...)
	if !ok {
		return ProductionRecord{}, issues, false
	}
	rec.ProductionVolume = volume

	energy, enIssues, ok := p.cleanNumeric(idx, FieldEnergy, row.EnergyConsumed, p.seenEnergy)
	issues = append(issues, enIssues...)
	if !ok {
		return ProductionRecord{}, issues, false
	}
	rec.EnergyConsumed = energy

	// Optional weight: passed through when present, left unset when absent.
	if raw := strings.TrimSpace(row.RawMaterialWeight); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			issues = append(issues, CleaningIssue{idx, FieldMaterialWeight, IssueTypeError})
			return ProductionRecord{}, issues, false
		}
		if w < 0 {
			w = 0
			issues = append(issues, CleaningIssue{idx, FieldMaterialWeight, IssueNegativeClipped})
		}
		rec.MaterialWeight = &w
	}

	return rec, issues, true
}

// cleanNumeric applies the coercion / imputation / clipping policy to one
// required numeric field. seen holds the valid values observed so far.
func (p *CleaningPipeline) cleanNumeric(idx int, field, raw string, seen []float64) (float64, []CleaningIssue, bool) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		if len(seen) == 0 {
			return 0, []CleaningIssue{{idx, field, IssueInsufficientData}}, false
		}
		// Median of prior valid values only; future rows never inform it.
		return median(seen), []CleaningIssue{{idx, field, IssueImputed}}, true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, []CleaningIssue{{idx, field, IssueTypeError}}, false
	}

	if v < 0 {
		return 0, []CleaningIssue{{idx, field, IssueNegativeClipped}}, true
	}

	return v, nil, true
}

// hasIssue reports whether the set contains an issue of kind for field.
func hasIssue(issues []CleaningIssue, field string, kind IssueKind) bool {
	for _, is := range issues {
		if is.Field == field && is.Kind == kind {
			return true
		}
	}
	return false
}

// repaired reports whether any issue in the set was a repair rather than
// part of a drop.
func repaired(issues []CleaningIssue) bool {
	for _, is := range issues {
		if is.Kind == IssueNegativeClipped || is.Kind == IssueImputed {
			return true
		}
	}
	return false
}

// median returns the median of values; for an even count, the mean of the
// two middle values. values is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
