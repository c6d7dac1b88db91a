package audit

// report.go composes the pieces of a completed run into one result object.
// Assembly performs no further computation beyond per-factory summary stats;
// it only composes and cross-checks.

// FactorySummary carries the per-factory roll-up exposed for CSV export:
// cumulative total, largest single delta, and how many appends pushed the
// running total over the cap.
type FactorySummary struct {
	FactoryID      string  `json:"factory_id"`
	SectorID       string  `json:"sector_id"`
	TotalEmissions float64 `json:"total_emissions"`
	MaxDelta       float64 `json:"max_delta"`
	Breaches       int     `json:"breaches"`
}

// AuditReport is the immutable result of one audit run, returned to the
// caller (CLI or web handler) for rendering or export. The core performs no
// serialization itself.
type AuditReport struct {
	Cleaned   []ProductionRecord `json:"cleaned"`
	Cleaning  CleaningReport     `json:"cleaning"`
	Alerts    []Alert            `json:"alerts"`
	Totals    map[string]float64 `json:"totals"`
	Summaries []FactorySummary   `json:"summaries"`
}

// AssembleReport combines the cleaning report, ordered alerts, and a
// snapshot of every factory's total into an AuditReport.
//
// It fails with AssemblyError only when inputs are structurally
// inconsistent: an alert naming a factory absent from the registry, or a
// factory missing an alert. Either indicates a bug upstream, not bad data.
func AssembleReport(cleaned []ProductionRecord, cleaning CleaningReport, alerts []Alert, registry *FactoryRegistry) (*AuditReport, error) {
	if len(alerts) != registry.Len() {
		return nil, &AssemblyError{Detail: "alert count does not match registry"}
	}

	totals := make(map[string]float64, registry.Len())
	summaries := make([]FactorySummary, 0, len(alerts))

	for _, alert := range alerts {
		rec, ok := registry.Get(alert.FactoryID)
		if !ok {
			return nil, &AssemblyError{Detail: "alert references unregistered factory " + alert.FactoryID}
		}

		acc := rec.Accumulator()
		totals[rec.FactoryID] = acc.Snapshot()

		var maxDelta, running float64
		breaches := 0
		for d := range acc.History() {
			if d > maxDelta {
				maxDelta = d
			}
			running += d
			if running > alert.Cap {
				breaches++
			}
		}

		summaries = append(summaries, FactorySummary{
			FactoryID:      rec.FactoryID,
			SectorID:       rec.SectorID,
			TotalEmissions: acc.Snapshot(),
			MaxDelta:       maxDelta,
			Breaches:       breaches,
		})
	}

	return &AuditReport{
		Cleaned:   cleaned,
		Cleaning:  cleaning,
		Alerts:    alerts,
		Totals:    totals,
		Summaries: summaries,
	}, nil
}
