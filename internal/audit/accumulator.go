package audit

// accumulator.go holds the security-sensitive core of the pipeline.
//
// An EmissionAccumulator owns a factory's running total. The total is only
// reachable through Append, which also records the delta for audit history.
// No read path hands out a mutable reference to internal state: Snapshot
// returns a copy of the total and History iterates over a copy of the
// deltas. Encapsulation is enforced by the type (unexported fields), not by
// convention.

import "iter"

// EmissionAccumulator accumulates emission deltas for a single factory.
// The zero value is not usable; construct with NewEmissionAccumulator.
// Two independently constructed accumulators never share state.
type EmissionAccumulator struct {
	total  float64
	deltas []float64
}

// NewEmissionAccumulator returns an empty accumulator with a zero total.
func NewEmissionAccumulator() *EmissionAccumulator {
	return &EmissionAccumulator{}
}

// Append adds delta to the running total and records it in history.
// Negative deltas are rejected with InvalidDeltaError and leave the
// accumulator unchanged.
func (a *EmissionAccumulator) Append(delta float64) error {
	if delta < 0 {
		return &InvalidDeltaError{Delta: delta}
	}
	a.total += delta
	a.deltas = append(a.deltas, delta)
	return nil
}

// Snapshot returns the current total. The returned value is a copy; callers
// cannot mutate the accumulator through it.
func (a *EmissionAccumulator) Snapshot() float64 {
	return a.total
}

// History returns the applied deltas in append order. Each call yields a
// fresh, restartable view over a copy taken at call time; iterating never
// mutates the accumulator, and appends after the call do not show up in an
// already-obtained view.
func (a *EmissionAccumulator) History() iter.Seq[float64] {
	view := make([]float64, len(a.deltas))
	copy(view, a.deltas)
	return func(yield func(float64) bool) {
		for _, d := range view {
			if !yield(d) {
				return
			}
		}
	}
}

// Count returns the number of deltas applied so far.
func (a *EmissionAccumulator) Count() int {
	return len(a.deltas)
}
