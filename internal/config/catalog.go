package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/carbontrace/carbontrace/internal/audit"
)

// LoadCatalog reads a sector catalog from path. The format follows the file
// extension (.yaml/.yml or .json). An empty path yields the built-in
// default catalog.
func LoadCatalog(path string) (*audit.SectorCatalog, error) {
	if path == "" {
		return audit.DefaultCatalog(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sector config: %w", err)
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return audit.LoadCatalogYAML(f)
	default:
		return audit.LoadCatalogJSON(f)
	}
}

// FormulaParams derives the engine parameters from the audit section.
func (c *AuditConfig) FormulaParams() audit.FormulaParams {
	params := audit.DefaultFormulaParams()
	params.MaterialWeightFactor = c.MaterialWeightFactor
	params.WarnRatio = c.WarnRatio
	return params
}
