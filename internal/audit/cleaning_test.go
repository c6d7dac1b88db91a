package audit

import (
	"strconv"
	"testing"
)

func validRow(factory, volume, energy string) RawRow {
	return RawRow{
		FactoryID:        factory,
		SectorID:         "steel",
		Period:           "2026-01",
		ProductionVolume: volume,
		EnergyConsumed:   energy,
	}
}

func TestCleanValidRows(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "10", "100"),
		validRow("F2", "20.5", "200"),
	}

	records, report := pipeline.Clean(rows)

	if len(records) != 2 {
		t.Fatalf("cleaned %d rows, want 2", len(records))
	}
	if report.RowsIn != 2 || report.RowsRepaired != 0 || report.RowsDropped != 0 {
		t.Errorf("report = %+v, want 2 in / 0 repaired / 0 dropped", report)
	}
	if records[1].ProductionVolume != 20.5 {
		t.Errorf("ProductionVolume = %g, want 20.5", records[1].ProductionVolume)
	}
}

func TestCleanImputedValuesDoNotFeedLaterMedians(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "5", "10"),
		validRow("F2", "5", "30"),
		validRow("F3", "5", ""), // imputed: median of {10, 30} = 20
		validRow("F4", "5", "100"),
		validRow("F5", "5", ""), // imputed: median of {10, 30, 100} = 30
	}

	records, report := pipeline.Clean(rows)

	if len(records) != 5 {
		t.Fatalf("cleaned %d rows, want 5", len(records))
	}
	if got := records[2].EnergyConsumed; got != 20 {
		t.Errorf("first imputation = %g, want 20 (median of 10, 30)", got)
	}
	// The earlier imputed 20 must not be in the pool; with it the median
	// of {10, 30, 20, 100} would be 25.
	if got := records[4].EnergyConsumed; got != 30 {
		t.Errorf("second imputation = %g, want 30 (median of 10, 30, 100)", got)
	}
	if report.RowsRepaired != 2 {
		t.Errorf("RowsRepaired = %d, want 2", report.RowsRepaired)
	}
}

func TestCleanDropsUnparsableRows(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "10", "100"),
		validRow("F2", "not-a-number", "200"),
	}

	records, report := pipeline.Clean(rows)

	if len(records) != 1 {
		t.Fatalf("cleaned %d rows, want 1", len(records))
	}
	if report.RowsDropped != 1 {
		t.Errorf("RowsDropped = %d, want 1", report.RowsDropped)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(report.Issues))
	}
	issue := report.Issues[0]
	if issue.RowIndex != 1 || issue.Field != FieldProduction || issue.Kind != IssueTypeError {
		t.Errorf("issue = %+v, want row 1 / production_volume / type_error", issue)
	}
}

func TestCleanImputesMissingWithPriorMedian(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "5", "10"),
		validRow("F2", "5", "20"),
		validRow("F3", "5", ""), // missing energy after seeing 10 and 20
	}

	records, report := pipeline.Clean(rows)

	if len(records) != 3 {
		t.Fatalf("cleaned %d rows, want 3", len(records))
	}
	if got := records[2].EnergyConsumed; got != 15 {
		t.Errorf("imputed energy = %g, want 15 (median of 10, 20)", got)
	}
	if report.RowsRepaired != 1 {
		t.Errorf("RowsRepaired = %d, want 1", report.RowsRepaired)
	}
	if report.RowsDropped != 0 {
		t.Errorf("RowsDropped = %d, want 0", report.RowsDropped)
	}

	found := false
	for _, is := range report.Issues {
		if is.RowIndex == 2 && is.Field == FieldEnergy && is.Kind == IssueImputed {
			found = true
		}
	}
	if !found {
		t.Errorf("missing imputed issue for row 2, issues = %+v", report.Issues)
	}
}

func TestCleanDropsMissingWithoutPriorValues(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "", "100"), // no prior production_volume to impute from
		validRow("F2", "10", "100"),
	}

	records, report := pipeline.Clean(rows)

	if len(records) != 1 {
		t.Fatalf("cleaned %d rows, want 1", len(records))
	}
	if report.RowsDropped != 1 {
		t.Errorf("RowsDropped = %d, want 1", report.RowsDropped)
	}
	if report.Issues[0].Kind != IssueInsufficientData {
		t.Errorf("issue kind = %s, want insufficient_data", report.Issues[0].Kind)
	}
}

func TestCleanClipsNegativeValues(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "-5", "100"),
	}

	records, report := pipeline.Clean(rows)

	if len(records) != 1 {
		t.Fatalf("cleaned %d rows, want 1", len(records))
	}
	if records[0].ProductionVolume != 0 {
		t.Errorf("clipped volume = %g, want 0", records[0].ProductionVolume)
	}
	if report.RowsRepaired != 1 {
		t.Errorf("RowsRepaired = %d, want 1", report.RowsRepaired)
	}
	if report.Issues[0].Kind != IssueNegativeClipped {
		t.Errorf("issue kind = %s, want negative_clipped", report.Issues[0].Kind)
	}
}

func TestCleanOptionalColumnsPassThrough(t *testing.T) {
	pipeline := NewCleaningPipeline()

	with := validRow("F1", "10", "100")
	with.EnergySourceType = "coal"
	with.RawMaterialWeight = "3.5"
	without := validRow("F2", "10", "100")

	records, report := pipeline.Clean([]RawRow{with, without})
	if report.RowsRepaired != 0 || report.RowsDropped != 0 {
		t.Fatalf("report = %+v, want no repairs or drops", report)
	}

	if records[0].EnergySourceType != "coal" {
		t.Errorf("EnergySourceType = %q, want coal", records[0].EnergySourceType)
	}
	if records[0].MaterialWeight == nil || *records[0].MaterialWeight != 3.5 {
		t.Errorf("MaterialWeight = %v, want 3.5", records[0].MaterialWeight)
	}

	// Absent optional values stay unset, not defaulted.
	if records[1].MaterialWeight != nil {
		t.Errorf("absent MaterialWeight = %v, want nil", records[1].MaterialWeight)
	}
	if records[1].EnergySourceType != "" {
		t.Errorf("absent EnergySourceType = %q, want empty", records[1].EnergySourceType)
	}
}

func TestCleanDropsRowsWithoutIdentity(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		{FactoryID: "", SectorID: "steel", ProductionVolume: "1", EnergyConsumed: "1"},
		{FactoryID: "F1", SectorID: "", ProductionVolume: "1", EnergyConsumed: "1"},
	}

	records, report := pipeline.Clean(rows)
	if len(records) != 0 {
		t.Fatalf("cleaned %d rows, want 0", len(records))
	}
	if report.RowsDropped != 2 {
		t.Errorf("RowsDropped = %d, want 2", report.RowsDropped)
	}
}

// rawFromRecord converts a cleaned record back into the raw row form, as a
// caller exporting and re-importing cleaned data would.
func rawFromRecord(rec ProductionRecord) RawRow {
	row := RawRow{
		FactoryID:        rec.FactoryID,
		SectorID:         rec.SectorID,
		Period:           rec.Period,
		EnergySourceType: rec.EnergySourceType,
		ProductionVolume: strconv.FormatFloat(rec.ProductionVolume, 'g', -1, 64),
		EnergyConsumed:   strconv.FormatFloat(rec.EnergyConsumed, 'g', -1, 64),
	}
	if rec.MaterialWeight != nil {
		row.RawMaterialWeight = strconv.FormatFloat(*rec.MaterialWeight, 'g', -1, 64)
	}
	return row
}

func TestCleanIsIdempotent(t *testing.T) {
	dirty := []RawRow{
		validRow("F1", "10", "100"),
		validRow("F2", "-3", "200"),
		validRow("F3", "", "300"),
		validRow("F4", "bad", "400"),
	}

	records, first := NewCleaningPipeline().Clean(dirty)
	if first.RowsRepaired == 0 || first.RowsDropped == 0 {
		t.Fatalf("dirty pass should repair and drop, report = %+v", first)
	}

	// Re-running on the cleaned output must be a no-op.
	rows := make([]RawRow, len(records))
	for i, rec := range records {
		rows[i] = rawFromRecord(rec)
	}

	again, second := NewCleaningPipeline().Clean(rows)
	if second.RowsRepaired != 0 || second.RowsDropped != 0 {
		t.Errorf("second pass report = %+v, want 0 repaired and 0 dropped", second)
	}
	if len(again) != len(records) {
		t.Errorf("second pass kept %d rows, want %d", len(again), len(records))
	}
}

func TestCleanMedianOddCount(t *testing.T) {
	pipeline := NewCleaningPipeline()
	rows := []RawRow{
		validRow("F1", "5", "10"),
		validRow("F2", "5", "30"),
		validRow("F3", "5", "20"),
		validRow("F4", "5", ""), // median of 10, 30, 20 = 20
	}

	records, _ := pipeline.Clean(rows)
	if got := records[3].EnergyConsumed; got != 20 {
		t.Errorf("imputed energy = %g, want 20", got)
	}
}
