package audit

// DefaultCatalog returns the built-in sector catalog used when no catalog
// file is configured. Multipliers follow the published per-ton production
// factors for each sector; caps are annual kg CO2 budgets.
func DefaultCatalog() *SectorCatalog {
	catalog, err := NewSectorCatalog(map[string]SectorDefinition{
		"steel":       {EmissionCap: 40000, EnergyMultiplier: 2.5},
		"textile":     {EmissionCap: 6500, EnergyMultiplier: 1.2},
		"electronics": {EmissionCap: 7000, EnergyMultiplier: 1.8},
	})
	if err != nil {
		// Static input; cannot fail.
		panic(err)
	}
	return catalog
}
