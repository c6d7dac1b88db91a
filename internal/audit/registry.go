package audit

// registry.go tracks the factories seen during one audit run.
//
// One registry instance exists per run and is discarded at run end. Each
// factory id maps to exactly one FactoryRecord, created on first encounter;
// the record exclusively owns its accumulator.

import "sort"

// FactoryRecord identifies a factory and owns its emission accumulator.
type FactoryRecord struct {
	FactoryID string
	SectorID  string

	acc *EmissionAccumulator
}

// Accumulator returns the factory's accumulator. The accumulator itself
// enforces its invariants; callers can only append non-negative deltas or
// read snapshots through it.
func (f *FactoryRecord) Accumulator() *EmissionAccumulator {
	return f.acc
}

// FactoryRegistry holds the FactoryRecords for a single audit run.
// Not safe for concurrent use; each run constructs its own.
type FactoryRegistry struct {
	factories map[string]*FactoryRecord
}

// NewFactoryRegistry returns an empty registry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{factories: make(map[string]*FactoryRecord)}
}

// GetOrCreate returns the record for factoryID, creating it with a fresh
// accumulator on first encounter. A repeat registration under a different
// sector fails with SectorConflictError; the existing record, including all
// previously appended deltas, is left untouched.
func (r *FactoryRegistry) GetOrCreate(factoryID, sectorID string) (*FactoryRecord, error) {
	if rec, ok := r.factories[factoryID]; ok {
		if rec.SectorID != sectorID {
			return nil, &SectorConflictError{
				FactoryID:  factoryID,
				Registered: rec.SectorID,
				Requested:  sectorID,
			}
		}
		return rec, nil
	}

	rec := &FactoryRecord{
		FactoryID: factoryID,
		SectorID:  sectorID,
		acc:       NewEmissionAccumulator(),
	}
	r.factories[factoryID] = rec
	return rec, nil
}

// Get returns the record for factoryID, or false if not registered.
func (r *FactoryRegistry) Get(factoryID string) (*FactoryRecord, bool) {
	rec, ok := r.factories[factoryID]
	return rec, ok
}

// All returns every record sorted by ascending factory id.
func (r *FactoryRegistry) All() []*FactoryRecord {
	recs := make([]*FactoryRecord, 0, len(r.factories))
	for _, rec := range r.factories {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].FactoryID < recs[j].FactoryID
	})
	return recs
}

// Len returns the number of registered factories.
func (r *FactoryRegistry) Len() int {
	return len(r.factories)
}
