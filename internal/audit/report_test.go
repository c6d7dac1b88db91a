package audit

import (
	"errors"
	"testing"
)

func TestAssembleReportCrossChecks(t *testing.T) {
	registry := NewFactoryRegistry()
	rec, err := registry.GetOrCreate("F1", "cement")
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Accumulator().Append(60); err != nil {
		t.Fatal(err)
	}
	if err := rec.Accumulator().Append(50); err != nil {
		t.Fatal(err)
	}

	alerts := []Alert{{FactoryID: "F1", SectorID: "cement", TotalEmissions: 110, Cap: 100, Margin: -10, Severity: SeverityBreach}}

	report, err := AssembleReport(nil, CleaningReport{}, alerts, registry)
	if err != nil {
		t.Fatalf("AssembleReport: %v", err)
	}

	if got := report.Totals["F1"]; got != 110 {
		t.Errorf("Totals[F1] = %g, want 110", got)
	}
	if len(report.Summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(report.Summaries))
	}
	summary := report.Summaries[0]
	if summary.MaxDelta != 60 {
		t.Errorf("MaxDelta = %g, want 60", summary.MaxDelta)
	}
	// Running total crosses the cap of 100 on the second append only.
	if summary.Breaches != 1 {
		t.Errorf("Breaches = %d, want 1", summary.Breaches)
	}
}

func TestAssembleReportRejectsUnknownFactory(t *testing.T) {
	registry := NewFactoryRegistry()
	if _, err := registry.GetOrCreate("F1", "cement"); err != nil {
		t.Fatal(err)
	}

	alerts := []Alert{{FactoryID: "GHOST", Cap: 100}}
	_, err := AssembleReport(nil, CleaningReport{}, alerts, registry)

	var asm *AssemblyError
	if !errors.As(err, &asm) {
		t.Fatalf("AssembleReport error = %T, want *AssemblyError", err)
	}
}

func TestAssembleReportRejectsCountMismatch(t *testing.T) {
	registry := NewFactoryRegistry()
	if _, err := registry.GetOrCreate("F1", "cement"); err != nil {
		t.Fatal(err)
	}
	if _, err := registry.GetOrCreate("F2", "cement"); err != nil {
		t.Fatal(err)
	}

	// One alert for two factories is structurally inconsistent.
	alerts := []Alert{{FactoryID: "F1", Cap: 100}}
	_, err := AssembleReport(nil, CleaningReport{}, alerts, registry)

	var asm *AssemblyError
	if !errors.As(err, &asm) {
		t.Fatalf("AssembleReport error = %T, want *AssemblyError", err)
	}
}

// End-to-end: two cement factories, cap 100, multiplier 2.0.
func TestAuditorEndToEnd(t *testing.T) {
	catalog, err := NewSectorCatalog(map[string]SectorDefinition{
		"cement": {EmissionCap: 100, EnergyMultiplier: 2.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	auditor := NewAuditor(catalog, DefaultFormulaParams())
	rows := []RawRow{
		{FactoryID: "F1", SectorID: "cement", Period: "2026-01", ProductionVolume: "10", EnergyConsumed: "40"},
		{FactoryID: "F2", SectorID: "cement", Period: "2026-01", ProductionVolume: "60", EnergyConsumed: "40"},
	}

	report, err := auditor.Run(rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Cleaned) != 2 {
		t.Errorf("cleaned rows = %d, want 2", len(report.Cleaned))
	}
	if report.Cleaning.RowsDropped != 0 {
		t.Errorf("RowsDropped = %d, want 0", report.Cleaning.RowsDropped)
	}

	if got := report.Totals["F1"]; got != 20 {
		t.Errorf("F1 total = %g, want 20", got)
	}
	if got := report.Totals["F2"]; got != 120 {
		t.Errorf("F2 total = %g, want 120", got)
	}

	if len(report.Alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(report.Alerts))
	}
	f1, f2 := report.Alerts[0], report.Alerts[1]
	if f1.FactoryID != "F1" || f1.Severity != SeverityOK || f1.Margin != 80 {
		t.Errorf("F1 alert = %+v, want OK with margin 80", f1)
	}
	if f2.FactoryID != "F2" || f2.Severity != SeverityBreach || f2.Margin != -20 {
		t.Errorf("F2 alert = %+v, want BREACH with margin -20", f2)
	}
}

func TestAuditorRunFailsWhole(t *testing.T) {
	catalog := testCatalog(t)
	auditor := NewAuditor(catalog, DefaultFormulaParams())

	rows := []RawRow{
		{FactoryID: "F1", SectorID: "cement", ProductionVolume: "10", EnergyConsumed: "40"},
		{FactoryID: "F2", SectorID: "plastics", ProductionVolume: "10", EnergyConsumed: "40"},
	}

	report, err := auditor.Run(rows)
	if err == nil {
		t.Fatal("Run should fail on unknown sector")
	}
	// No partial totals: either the run completes or no report exists.
	if report != nil {
		t.Error("failed run must not return a report")
	}
}
