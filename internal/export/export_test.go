package export

import (
	"strings"
	"testing"

	"github.com/carbontrace/carbontrace/internal/audit"
)

func buildReport(t *testing.T) *audit.AuditReport {
	t.Helper()

	catalog, err := audit.NewSectorCatalog(map[string]audit.SectorDefinition{
		"steel": {EmissionCap: 100, EnergyMultiplier: 2.0},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	auditor := audit.NewAuditor(catalog, audit.DefaultFormulaParams())
	report, err := auditor.Run([]audit.RawRow{
		{FactoryID: "F1", SectorID: "steel", Period: "2026-01", ProductionVolume: "10", EnergyConsumed: "5", RawMaterialWeight: "100"},
		{FactoryID: "F2", SectorID: "steel", Period: "2026-01", ProductionVolume: "60", EnergyConsumed: "5"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return report
}

func TestWriteSummaryCSV(t *testing.T) {
	report := buildReport(t)

	var sb strings.Builder
	if err := WriteSummaryCSV(&sb, report); err != nil {
		t.Fatalf("WriteSummaryCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), sb.String())
	}
	if lines[0] != "factory_id,sector_id,total_emissions,max_delta,breaches,severity,margin" {
		t.Errorf("header = %q", lines[0])
	}
	// F1: 10*2 + 100*0.1 = 30, margin 70, OK.
	if lines[1] != "F1,steel,30,30,0,OK,70" {
		t.Errorf("row 1 = %q", lines[1])
	}
	// F2: 60*2 = 120, over the 100 cap.
	if lines[2] != "F2,steel,120,120,1,BREACH,-20" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteCleanedCSV(t *testing.T) {
	report := buildReport(t)

	var sb strings.Builder
	if err := WriteCleanedCSV(&sb, report); err != nil {
		t.Fatalf("WriteCleanedCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), sb.String())
	}
	if lines[1] != "F1,steel,2026-01,10,5,,100" {
		t.Errorf("row 1 = %q", lines[1])
	}
	// Absent optional weight stays empty rather than zero.
	if lines[2] != "F2,steel,2026-01,60,5,," {
		t.Errorf("row 2 = %q", lines[2])
	}
}
