// Package datagen produces synthetic monthly production datasets for demos
// and tests. Generated rows follow the production record schema consumed by
// the cleaning pipeline; an optional dirty pass injects the kinds of defects
// the pipeline is built to repair.
package datagen

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/carbontrace/carbontrace/internal/audit"
)

// sectorProfile bounds the base production and energy draw per sector.
type sectorProfile struct {
	sector   string
	count    int
	prefix   string
	prodLo   float64
	prodHi   float64
	energyLo float64
	energyHi float64
}

var profiles = []sectorProfile{
	{"steel", 20, "FAC_STEEL_%02d", 1000, 1500, 4500, 6000},
	{"textile", 15, "FAC_TEX_%02d", 300, 500, 700, 1000},
	{"electronics", 15, "FAC_ELEC_%02d", 200, 400, 1000, 1500},
}

var energySources = []string{"coal", "grid", "renewable"}

// Options controls generation.
type Options struct {
	// Months is how many monthly rows to emit per factory (default 12).
	Months int

	// Seed makes output reproducible.
	Seed int64

	// Dirty injects missing values, duplicates, and tripled outliers so
	// the dataset exercises the cleaning pipeline.
	Dirty bool
}

// Generate returns synthetic raw rows for 50 factories across 3 sectors.
func Generate(opts Options) []audit.RawRow {
	months := opts.Months
	if months <= 0 {
		months = 12
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	var rows []audit.RawRow
	for _, p := range profiles {
		for i := 1; i <= p.count; i++ {
			factoryID := fmt.Sprintf(p.prefix, i)
			baseProd := uniform(rng, p.prodLo, p.prodHi)
			baseEnergy := uniform(rng, p.energyLo, p.energyHi)

			for m := 1; m <= months; m++ {
				prod := baseProd * uniform(rng, 0.85, 1.15)
				energy := baseEnergy * uniform(rng, 0.85, 1.15)

				rows = append(rows, audit.RawRow{
					FactoryID:         factoryID,
					SectorID:          p.sector,
					Period:            fmt.Sprintf("2026-%02d", m),
					ProductionVolume:  fmt.Sprintf("%.1f", prod),
					EnergyConsumed:    fmt.Sprintf("%.1f", energy),
					EnergySourceType:  pickSource(rng),
					RawMaterialWeight: fmt.Sprintf("%.1f", prod*uniform(rng, 1.1, 1.3)),
				})
			}
		}
	}

	if opts.Dirty {
		rows = injectDefects(rng, rows)
	}
	return rows
}

// injectDefects blanks ~5% of energy values, appends 15 duplicate rows, and
// triples 5 energy values to create outliers.
func injectDefects(rng *rand.Rand, rows []audit.RawRow) []audit.RawRow {
	for i := range rows {
		if rng.Float64() < 0.05 {
			rows[i].EnergyConsumed = ""
		}
	}

	for i := 0; i < 15 && len(rows) > 0; i++ {
		rows = append(rows, rows[rng.Intn(len(rows))])
	}

	for i := 0; i < 5 && len(rows) > 0; i++ {
		j := rng.Intn(len(rows))
		if raw := rows[j].EnergyConsumed; raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				rows[j].EnergyConsumed = fmt.Sprintf("%.1f", v*3)
			}
		}
	}
	return rows
}

func pickSource(rng *rand.Rand) string {
	// coal 40%, grid 50%, renewable 10%
	r := rng.Float64()
	switch {
	case r < 0.4:
		return energySources[0]
	case r < 0.9:
		return energySources[1]
	default:
		return energySources[2]
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
