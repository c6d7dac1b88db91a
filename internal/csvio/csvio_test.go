package csvio

import (
	"strings"
	"testing"
)

func TestCleanCell(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{`="FAC_001"`, "FAC_001"},
		{"=42", "42"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := CleanCell(tc.in); got != tc.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanNumericCell(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1,234.5", "1234.5"},
		{"$42.00", "42.00"},
		{"€9", "9"},
		{"(12.5)", "-12.5"},
		{"  7 ", "7"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := CleanNumericCell(tc.in); got != tc.want {
			t.Errorf("CleanNumericCell(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateHeader(t *testing.T) {
	idx, err := ValidateHeader([]string{"Factory_ID", "sector_id", "period", "production_volume", "energy_consumed"})
	if err != nil {
		t.Fatalf("ValidateHeader: %v", err)
	}
	if idx["factory_id"] != 0 {
		t.Errorf("factory_id index = %d, want 0", idx["factory_id"])
	}

	_, err = ValidateHeader([]string{"factory_id", "period"})
	if err == nil {
		t.Fatal("ValidateHeader should fail with missing columns")
	}
	for _, col := range []string{"sector_id", "production_volume", "energy_consumed"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q should name missing column %s", err, col)
		}
	}
}

func TestReadRows(t *testing.T) {
	src := "factory_id,sector_id,period,production_volume,energy_consumed,energy_source_type,raw_material_weight_tons\n" +
		"FAC_001,steel,2026-01,\"1,000\",4000,coal,12.5\n" +
		"FAC_002,textile,2026-01,800,3500,,\n"

	rows, err := ReadRows(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.FactoryID != "FAC_001" || first.SectorID != "steel" {
		t.Errorf("row identity = %s/%s, want FAC_001/steel", first.FactoryID, first.SectorID)
	}
	if first.ProductionVolume != "1000" {
		t.Errorf("ProductionVolume = %q, want 1000 (separator stripped)", first.ProductionVolume)
	}
	if first.EnergySourceType != "coal" || first.RawMaterialWeight != "12.5" {
		t.Errorf("optional columns = %q/%q, want coal/12.5", first.EnergySourceType, first.RawMaterialWeight)
	}

	second := rows[1]
	if second.EnergySourceType != "" || second.RawMaterialWeight != "" {
		t.Errorf("absent optionals = %q/%q, want empty", second.EnergySourceType, second.RawMaterialWeight)
	}
}

func TestReadRowsShortRecords(t *testing.T) {
	src := "factory_id,sector_id,production_volume,energy_consumed,raw_material_weight_tons\n" +
		"FAC_001,steel,100,4000\n" // trailing optional column omitted

	rows, err := ReadRows(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if rows[0].RawMaterialWeight != "" {
		t.Errorf("RawMaterialWeight = %q, want empty for short record", rows[0].RawMaterialWeight)
	}
}

func TestReadRowsWithBOM(t *testing.T) {
	src := "\xEF\xBB\xBFfactory_id,sector_id,production_volume,energy_consumed\nFAC_001,steel,100,4000\n"

	rows, err := ReadRows(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadRows with BOM: %v", err)
	}
	if rows[0].FactoryID != "FAC_001" {
		t.Errorf("FactoryID = %q, want FAC_001", rows[0].FactoryID)
	}
}

func TestReadRowsErrors(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("")); err == nil {
		t.Error("ReadRows should fail on empty input")
	}
	if _, err := ReadRows(strings.NewReader("factory_id,sector_id\nF1,steel\n")); err == nil {
		t.Error("ReadRows should fail on missing required columns")
	}
}
