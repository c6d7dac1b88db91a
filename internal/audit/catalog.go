package audit

// catalog.go loads and serves sector definitions.
//
// The catalog is a pure lookup table: loaded once per run, immutable after
// load, safe to share read-only across concurrent runs. Sources are a plain
// map (tests, embedded defaults), JSON, or YAML; both serialized forms are a
// mapping keyed by sector_id.

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SectorDefinition describes the emission parameters of one sector.
// Immutable after catalog load.
type SectorDefinition struct {
	SectorID         string  `json:"-" yaml:"-"`
	EmissionCap      float64 `json:"emission_cap" yaml:"emission_cap" validate:"required,gt=0"`
	EnergyMultiplier float64 `json:"energy_multiplier" yaml:"energy_multiplier" validate:"required,gt=0"`
}

// SectorCatalog is a read-only lookup table of sector definitions.
type SectorCatalog struct {
	sectors map[string]SectorDefinition
}

// NewSectorCatalog builds a catalog from a mapping keyed by sector id.
// Returns ConfigError if the mapping is empty, a sector id is blank, or an
// entry has a non-positive cap or multiplier.
func NewSectorCatalog(defs map[string]SectorDefinition) (*SectorCatalog, error) {
	if len(defs) == 0 {
		return nil, &ConfigError{Detail: "no sectors defined"}
	}

	sectors := make(map[string]SectorDefinition, len(defs))
	for id, def := range defs {
		if id == "" {
			return nil, &ConfigError{Detail: "empty sector id"}
		}
		def.SectorID = id
		if err := validate.Struct(def); err != nil {
			return nil, &ConfigError{Detail: "sector " + id, Err: err}
		}
		sectors[id] = def
	}

	return &SectorCatalog{sectors: sectors}, nil
}

// LoadCatalogJSON reads a JSON mapping of sector_id to definition.
func LoadCatalogJSON(r io.Reader) (*SectorCatalog, error) {
	var defs map[string]SectorDefinition
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, &ConfigError{Detail: "decode json", Err: err}
	}
	return NewSectorCatalog(defs)
}

// LoadCatalogYAML reads a YAML mapping of sector_id to definition.
func LoadCatalogYAML(r io.Reader) (*SectorCatalog, error) {
	var defs map[string]SectorDefinition
	if err := yaml.NewDecoder(r).Decode(&defs); err != nil {
		return nil, &ConfigError{Detail: "decode yaml", Err: err}
	}
	return NewSectorCatalog(defs)
}

// Lookup returns the definition for sectorID, or UnknownSectorError if
// absent. Callers must reject the record on error, never default it.
func (c *SectorCatalog) Lookup(sectorID string) (SectorDefinition, error) {
	def, ok := c.sectors[sectorID]
	if !ok {
		return SectorDefinition{}, &UnknownSectorError{SectorID: sectorID}
	}
	return def, nil
}

// Sectors returns all definitions sorted by sector id.
func (c *SectorCatalog) Sectors() []SectorDefinition {
	defs := make([]SectorDefinition, 0, len(c.sectors))
	for _, def := range c.sectors {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].SectorID < defs[j].SectorID
	})
	return defs
}

// Len returns the number of sectors in the catalog.
func (c *SectorCatalog) Len() int {
	return len(c.sectors)
}
