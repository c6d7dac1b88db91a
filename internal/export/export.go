// Package export serializes audit results to CSV on behalf of callers.
// The audit core itself never writes files; the CLI and web handlers hand
// an AuditReport here together with a destination writer.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/carbontrace/carbontrace/internal/audit"
	"github.com/carbontrace/carbontrace/internal/csvio"
)

// WriteSummaryCSV writes the per-factory roll-up: totals, largest single
// delta, breach count, and alert severity.
func WriteSummaryCSV(w io.Writer, report *audit.AuditReport) error {
	writer := csv.NewWriter(w)

	header := []string{"factory_id", "sector_id", "total_emissions", "max_delta", "breaches", "severity", "margin"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Summaries and alerts share ordering: ascending factory id.
	for i, s := range report.Summaries {
		alert := report.Alerts[i]
		row := []string{
			s.FactoryID,
			s.SectorID,
			formatFloat(s.TotalEmissions),
			formatFloat(s.MaxDelta),
			strconv.Itoa(s.Breaches),
			string(alert.Severity),
			formatFloat(alert.Margin),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write summary row %s: %w", s.FactoryID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCleanedCSV writes the cleaned production records in the canonical
// column order, suitable for re-import.
func WriteCleanedCSV(w io.Writer, report *audit.AuditReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvio.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range report.Cleaned {
		weight := ""
		if rec.MaterialWeight != nil {
			weight = formatFloat(*rec.MaterialWeight)
		}
		row := []string{
			rec.FactoryID,
			rec.SectorID,
			rec.Period,
			formatFloat(rec.ProductionVolume),
			formatFloat(rec.EnergyConsumed),
			rec.EnergySourceType,
			weight,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write cleaned row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
