package audit

// auditor.go wires the pipeline stages into one linear run:
// cleaning -> accounting -> alerting -> assembly.

import "log/slog"

// Auditor runs complete audits against a fixed catalog and formula. An
// Auditor holds no per-run state: every Run constructs its own registry and
// cleaning pipeline, so a single Auditor is safe to reuse across
// sequential runs, and separate Auditors may share one catalog read-only.
type Auditor struct {
	catalog *SectorCatalog
	params  FormulaParams
}

// NewAuditor returns an auditor for catalog using params.
func NewAuditor(catalog *SectorCatalog, params FormulaParams) *Auditor {
	return &Auditor{catalog: catalog, params: params}
}

// Catalog returns the auditor's sector catalog.
func (a *Auditor) Catalog() *SectorCatalog {
	return a.catalog
}

// Params returns the auditor's formula parameters.
func (a *Auditor) Params() FormulaParams {
	return a.params
}

// Run executes one audit over raw rows. Row-level issues are repaired or
// dropped and recorded; sector-level problems abort the run with a typed
// error and no report is returned — there are no partial totals.
func (a *Auditor) Run(rows []RawRow) (*AuditReport, error) {
	records, cleaning := NewCleaningPipeline().Clean(rows)

	slog.Debug("cleaning pass complete",
		"rows_in", cleaning.RowsIn,
		"rows_repaired", cleaning.RowsRepaired,
		"rows_dropped", cleaning.RowsDropped,
	)

	registry := NewFactoryRegistry()
	engine := NewEmissionEngine(a.params)
	if err := engine.Run(records, a.catalog, registry); err != nil {
		return nil, err
	}

	alerts, err := NewAlertEvaluator(a.params.WarnRatio).Evaluate(registry, a.catalog)
	if err != nil {
		return nil, err
	}

	report, err := AssembleReport(records, cleaning, alerts, registry)
	if err != nil {
		return nil, err
	}

	slog.Info("audit run complete",
		"factories", registry.Len(),
		"rows_cleaned", len(records),
		"alerts", len(alerts),
	)

	return report, nil
}
