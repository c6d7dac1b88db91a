package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbontrace/carbontrace/internal/audit"
	"github.com/carbontrace/carbontrace/internal/config"
	"github.com/carbontrace/carbontrace/internal/csvio"
	"github.com/carbontrace/carbontrace/internal/export"
)

var (
	auditInput      string
	auditSectors    string
	auditSummaryOut string
	auditCleanedOut string

	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Run an emission audit over a production CSV",
		RunE:  runAudit,
	}
)

func init() {
	auditCmd.Flags().StringVarP(&auditInput, "input", "i", "", "production data CSV (required)")
	auditCmd.Flags().StringVarP(&auditSectors, "sectors", "s", "", "sector catalog file (JSON or YAML; built-in catalog if omitted)")
	auditCmd.Flags().StringVar(&auditSummaryOut, "summary-out", "", "write per-factory summary CSV to this path")
	auditCmd.Flags().StringVar(&auditCleanedOut, "cleaned-out", "", "write cleaned records CSV to this path")
	auditCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	sectorsPath := auditSectors
	if sectorsPath == "" {
		sectorsPath = cfg.Audit.SectorConfig
	}
	catalog, err := config.LoadCatalog(sectorsPath)
	if err != nil {
		return err
	}

	f, err := os.Open(auditInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	rows, err := csvio.ReadRows(f)
	if err != nil {
		return err
	}

	auditor := audit.NewAuditor(catalog, cfg.Audit.FormulaParams())
	report, err := auditor.Run(rows)
	if err != nil {
		return err
	}

	printReport(cmd, report)

	if auditSummaryOut != "" {
		if err := writeFile(auditSummaryOut, report, export.WriteSummaryCSV); err != nil {
			return err
		}
		cmd.Printf("summary written to %s\n", auditSummaryOut)
	}
	if auditCleanedOut != "" {
		if err := writeFile(auditCleanedOut, report, export.WriteCleanedCSV); err != nil {
			return err
		}
		cmd.Printf("cleaned rows written to %s\n", auditCleanedOut)
	}
	return nil
}

func printReport(cmd *cobra.Command, report *audit.AuditReport) {
	c := report.Cleaning
	cmd.Printf("rows: %d in, %d repaired, %d dropped\n", c.RowsIn, c.RowsRepaired, c.RowsDropped)

	warns, breaches := 0, 0
	for _, alert := range report.Alerts {
		switch alert.Severity {
		case audit.SeverityWarn:
			warns++
		case audit.SeverityBreach:
			breaches++
		}
	}
	cmd.Printf("factories: %d (%d WARN, %d BREACH)\n", len(report.Alerts), warns, breaches)

	for _, alert := range report.Alerts {
		if alert.Severity == audit.SeverityOK {
			continue
		}
		cmd.Printf("  %-6s %s [%s] total %.2f cap %.2f margin %.2f\n",
			alert.Severity, alert.FactoryID, alert.SectorID,
			alert.TotalEmissions, alert.Cap, alert.Margin)
	}
}

func writeFile(path string, report *audit.AuditReport, write func(w io.Writer, r *audit.AuditReport) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
