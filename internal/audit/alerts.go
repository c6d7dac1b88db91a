package audit

// alerts.go classifies accumulated totals against sector caps.

// AlertSeverity classifies a factory's total relative to its sector cap.
type AlertSeverity string

const (
	SeverityOK     AlertSeverity = "OK"
	SeverityWarn   AlertSeverity = "WARN"
	SeverityBreach AlertSeverity = "BREACH"
)

// Alert flags one factory's standing against its sector cap. Alerts are
// derived state, recomputed each run and never persisted by the core.
type Alert struct {
	FactoryID      string        `json:"factory_id"`
	SectorID       string        `json:"sector_id"`
	TotalEmissions float64       `json:"total_emissions"`
	Cap            float64       `json:"cap"`
	Margin         float64       `json:"margin"`
	Severity       AlertSeverity `json:"severity"`
}

// AlertEvaluator derives alerts from accumulated state. It is a pure reader:
// evaluation mutates nothing.
type AlertEvaluator struct {
	// WarnRatio is the fraction of the cap above which severity is WARN.
	WarnRatio float64
}

// NewAlertEvaluator returns an evaluator using warnRatio (default 0.8, see
// DefaultFormulaParams).
func NewAlertEvaluator(warnRatio float64) *AlertEvaluator {
	return &AlertEvaluator{WarnRatio: warnRatio}
}

// Evaluate returns one alert per registered factory in ascending factory id
// order. Severity is BREACH when the total exceeds the cap, WARN when it
// exceeds WarnRatio x cap, else OK; margin is cap minus total.
//
// Lookup failures propagate as UnknownSectorError; they cannot occur for
// registries populated by the engine, which validates sectors on append.
func (ev *AlertEvaluator) Evaluate(registry *FactoryRegistry, catalog *SectorCatalog) ([]Alert, error) {
	records := registry.All()
	alerts := make([]Alert, 0, len(records))

	for _, rec := range records {
		def, err := catalog.Lookup(rec.SectorID)
		if err != nil {
			return nil, err
		}

		total := rec.Accumulator().Snapshot()
		severity := SeverityOK
		switch {
		case total > def.EmissionCap:
			severity = SeverityBreach
		case total > ev.WarnRatio*def.EmissionCap:
			severity = SeverityWarn
		}

		alerts = append(alerts, Alert{
			FactoryID:      rec.FactoryID,
			SectorID:       rec.SectorID,
			TotalEmissions: total,
			Cap:            def.EmissionCap,
			Margin:         def.EmissionCap - total,
			Severity:       severity,
		})
	}

	return alerts, nil
}
