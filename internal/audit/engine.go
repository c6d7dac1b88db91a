package audit

// engine.go turns cleaned records into accumulator appends.
//
// The delta formula follows sector-defined constants, not per-factory ones:
//
//	delta = production_volume * sector.energy_multiplier
//	      + raw_material_weight_tons * MaterialWeightFactor
//
// optionally scaled by a per-energy-source factor when the record carries a
// source type that appears in SourceFactors. Processing order does not
// affect final totals (append is associative), and each record mutates
// exactly one accumulator.

import "strings"

// FormulaParams holds the tunable constants of the emission formula and the
// alert thresholds. The defaults mirror common auditing conventions and are
// deliberately configurable rather than hardcoded.
type FormulaParams struct {
	// MaterialWeightFactor weights raw_material_weight_tons in the delta.
	MaterialWeightFactor float64

	// WarnRatio is the fraction of the sector cap above which a factory is
	// flagged WARN.
	WarnRatio float64

	// SourceFactors scales a record's delta by its energy source type
	// (lowercase key). Sources absent from the map are unscaled. An empty
	// map disables source scaling entirely.
	SourceFactors map[string]float64
}

// DefaultFormulaParams returns the standard parameters: weight factor 0.1,
// warn threshold at 80% of cap, and the conventional source factors
// (coal 1.2, renewable 0.7, grid 1.0). The warn band must flag a factory at
// 85% of its cap, so the default ratio sits below that; stricter regimes
// raise WarnRatio via configuration.
func DefaultFormulaParams() FormulaParams {
	return FormulaParams{
		MaterialWeightFactor: 0.1,
		WarnRatio:            0.8,
		SourceFactors: map[string]float64{
			"coal":      1.2,
			"renewable": 0.7,
			"grid":      1.0,
		},
	}
}

// EmissionEngine computes emission deltas for cleaned records and appends
// them to the owning factory's accumulator.
type EmissionEngine struct {
	params FormulaParams
}

// NewEmissionEngine returns an engine using the given parameters.
func NewEmissionEngine(params FormulaParams) *EmissionEngine {
	return &EmissionEngine{params: params}
}

// Run processes every cleaned record: resolves the sector, computes the
// delta, and appends it to the factory's accumulator via the registry.
//
// A record whose sector is missing from the catalog, or whose factory is
// already registered under a different sector, fails the whole run: partial
// totals would be misleading for aggregate reporting, so nothing is skipped
// silently.
func (e *EmissionEngine) Run(records []ProductionRecord, catalog *SectorCatalog, registry *FactoryRegistry) error {
	for _, rec := range records {
		def, err := catalog.Lookup(rec.SectorID)
		if err != nil {
			return err
		}

		factory, err := registry.GetOrCreate(rec.FactoryID, rec.SectorID)
		if err != nil {
			return err
		}

		if err := factory.Accumulator().Append(e.Delta(rec, def)); err != nil {
			return err
		}
	}
	return nil
}

// Delta computes the emission delta for one record under def.
func (e *EmissionEngine) Delta(rec ProductionRecord, def SectorDefinition) float64 {
	delta := rec.ProductionVolume * def.EnergyMultiplier

	if rec.MaterialWeight != nil {
		delta += *rec.MaterialWeight * e.params.MaterialWeightFactor
	}

	if rec.EnergySourceType != "" {
		if factor, ok := e.params.SourceFactors[strings.ToLower(rec.EnergySourceType)]; ok {
			delta *= factor
		}
	}

	return delta
}
