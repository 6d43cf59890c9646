package param

import (
	"math"
	"sync/atomic"
)

type entry struct {
	def  Definition
	bits atomic.Uint64
}

// Set is an in-memory parameter store. The set of parameters is fixed at
// construction; values are atomic cells, so reads from the audio goroutine
// take no locks.
type Set struct {
	entries map[Handle]*entry
	order   []Handle
}

// NewSet creates a Set holding defs at their defaults. A later definition
// with a duplicate handle replaces the earlier one but keeps its position
// in Handles.
func NewSet(defs ...Definition) *Set {
	s := &Set{entries: make(map[Handle]*entry, len(defs))}
	for _, d := range defs {
		if _, ok := s.entries[d.Handle]; !ok {
			s.order = append(s.order, d.Handle)
		}
		e := &entry{def: d}
		e.bits.Store(math.Float64bits(d.Range.Clamp(d.Default)))
		s.entries[d.Handle] = e
	}
	return s
}

// Value returns the current value of h, or 0 for an unknown handle.
func (s *Set) Value(h Handle) float64 {
	e, ok := s.entries[h]
	if !ok {
		return 0
	}
	return math.Float64frombits(e.bits.Load())
}

// Range returns the declared range of h, or the zero range.
func (s *Set) Range(h Handle) Range {
	e, ok := s.entries[h]
	if !ok {
		return Range{}
	}
	return e.def.Range
}

// Definition returns the declaration of h.
func (s *Set) Definition(h Handle) (Definition, bool) {
	e, ok := s.entries[h]
	if !ok {
		return Definition{}, false
	}
	return e.def, true
}

// Handles lists the parameters in declaration order.
func (s *Set) Handles() []Handle {
	out := make([]Handle, len(s.order))
	copy(out, s.order)
	return out
}

// Apply stores v, clamped to the range of h, and returns the stored value.
// It reports false for an unknown handle.
func (s *Set) Apply(h Handle, v float64) (float64, bool) {
	e, ok := s.entries[h]
	if !ok {
		return 0, false
	}
	v = e.def.Range.Clamp(v)
	e.bits.Store(math.Float64bits(v))
	return v, true
}

// Reset returns every parameter to its default.
func (s *Set) Reset() {
	for _, e := range s.entries {
		e.bits.Store(math.Float64bits(e.def.Range.Clamp(e.def.Default)))
	}
}
