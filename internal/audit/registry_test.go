package audit

import (
	"errors"
	"testing"
)

func TestRegistryGetOrCreate(t *testing.T) {
	registry := NewFactoryRegistry()

	first, err := registry.GetOrCreate("F1", "steel")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first.FactoryID != "F1" || first.SectorID != "steel" {
		t.Errorf("record = %s/%s, want F1/steel", first.FactoryID, first.SectorID)
	}

	// Repeat registration under the same sector returns the same record.
	again, err := registry.GetOrCreate("F1", "steel")
	if err != nil {
		t.Fatalf("repeat GetOrCreate: %v", err)
	}
	if again != first {
		t.Error("repeat registration returned a different record")
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want 1", registry.Len())
	}
}

func TestRegistrySectorConflict(t *testing.T) {
	registry := NewFactoryRegistry()

	rec, err := registry.GetOrCreate("F1", "steel")
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Accumulator().Append(10); err != nil {
		t.Fatal(err)
	}
	if err := rec.Accumulator().Append(5); err != nil {
		t.Fatal(err)
	}

	_, err = registry.GetOrCreate("F1", "cement")
	var conflict *SectorConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("GetOrCreate with new sector error = %T, want *SectorConflictError", err)
	}
	if conflict.FactoryID != "F1" || conflict.Registered != "steel" || conflict.Requested != "cement" {
		t.Errorf("conflict = %+v, want F1/steel/cement", conflict)
	}

	// The accumulator keeps only the deltas from before the conflict.
	existing, ok := registry.Get("F1")
	if !ok {
		t.Fatal("F1 missing after conflict")
	}
	if got := existing.Accumulator().Snapshot(); got != 15 {
		t.Errorf("snapshot after conflict = %g, want 15", got)
	}
	if existing.SectorID != "steel" {
		t.Errorf("sector after conflict = %q, want steel", existing.SectorID)
	}
}

func TestRegistryAllSorted(t *testing.T) {
	registry := NewFactoryRegistry()
	for _, id := range []string{"F3", "F1", "F2"} {
		if _, err := registry.GetOrCreate(id, "steel"); err != nil {
			t.Fatal(err)
		}
	}

	recs := registry.All()
	want := []string{"F1", "F2", "F3"}
	if len(recs) != len(want) {
		t.Fatalf("All() returned %d records, want %d", len(recs), len(want))
	}
	for i, id := range want {
		if recs[i].FactoryID != id {
			t.Errorf("All()[%d] = %s, want %s", i, recs[i].FactoryID, id)
		}
	}
}

func TestRegistryAccumulatorsIndependent(t *testing.T) {
	registry := NewFactoryRegistry()

	a, err := registry.GetOrCreate("A", "steel")
	if err != nil {
		t.Fatal(err)
	}
	b, err := registry.GetOrCreate("B", "steel")
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Accumulator().Append(42); err != nil {
		t.Fatal(err)
	}
	if got := b.Accumulator().Snapshot(); got != 0 {
		t.Errorf("B snapshot = %g after appending to A, want 0", got)
	}
}
