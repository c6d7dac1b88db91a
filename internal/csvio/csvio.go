// Package csvio parses tabular production data into raw rows for the
// cleaning pipeline. It owns the messy edge of ingestion: header matching,
// cell artifacts (BOM, Excel formula prefixes, thousands separators), and
// streaming-safe readers for uploads. Values stay strings here; type
// coercion is the cleaning pipeline's job.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbontrace/carbontrace/internal/audit"
)

// Column headers of the production record schema.
const (
	ColFactoryID      = "factory_id"
	ColSectorID       = "sector_id"
	ColPeriod         = "period"
	ColEnergySource   = "energy_source_type"
	ColMaterialWeight = "raw_material_weight_tons"
	ColProduction     = "production_volume"
	ColEnergy         = "energy_consumed"
)

// requiredColumns must appear in the header; the rest are optional.
var requiredColumns = []string{ColFactoryID, ColSectorID, ColProduction, ColEnergy}

// HeaderIndex maps lowercased column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row. Keys are
// lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// ValidateHeader checks that every required column is present and returns
// the index, or an error naming all missing columns.
func ValidateHeader(header []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// CleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace and quotes, and the Excel formula prefix (="...").
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// CleanNumericCell additionally strips currency symbols and thousands
// separators and converts accounting-style negatives "(12.5)" to "-12.5",
// so downstream parsing sees a plain number.
func CleanNumericCell(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"$", "€", "£", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if negative && s != "" {
		s = "-" + s
	}
	return s
}

// ReadRows reads an entire CSV stream into raw rows. The first record is
// the header; required columns must be present. Short records are padded
// so optional trailing columns may be omitted.
func ReadRows(r io.Reader) ([]audit.RawRow, error) {
	reader := csv.NewReader(WrapForStreaming(r))
	reader.FieldsPerRecord = -1 // rows may omit trailing optional columns

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := ValidateHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []audit.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rowFromRecord(record, idx))
	}
	return rows, nil
}

// rowFromRecord maps one CSV record to a RawRow via the header index.
func rowFromRecord(record []string, idx HeaderIndex) audit.RawRow {
	cell := func(col string) string {
		pos, ok := idx[col]
		if !ok || pos >= len(record) {
			return ""
		}
		return CleanCell(record[pos])
	}
	numeric := func(col string) string {
		pos, ok := idx[col]
		if !ok || pos >= len(record) {
			return ""
		}
		return CleanNumericCell(record[pos])
	}

	return audit.RawRow{
		FactoryID:         cell(ColFactoryID),
		SectorID:          cell(ColSectorID),
		Period:            cell(ColPeriod),
		EnergySourceType:  cell(ColEnergySource),
		RawMaterialWeight: numeric(ColMaterialWeight),
		ProductionVolume:  numeric(ColProduction),
		EnergyConsumed:    numeric(ColEnergy),
	}
}

// Header returns the canonical column order for writing production CSVs.
func Header() []string {
	return []string{
		ColFactoryID, ColSectorID, ColPeriod,
		ColProduction, ColEnergy, ColEnergySource, ColMaterialWeight,
	}
}

// WriteRows writes raw rows in the canonical column order. Cells are
// written as-is, including injected defects from the data generator.
func WriteRows(w io.Writer, rows []audit.RawRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.FactoryID, row.SectorID, row.Period,
			row.ProductionVolume, row.EnergyConsumed,
			row.EnergySourceType, row.RawMaterialWeight,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
