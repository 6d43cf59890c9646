// Package param models host-owned parameters as seen from the control
// surface: a read side (Store) for current values and ranges, a write side
// (Sink) that receives gesture-bracketed edits, and the Editor/Gesture pair
// that is the only way controls talk to a Sink.
package param

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// Handle identifies one host-owned parameter for the life of a session.
type Handle string

// Range is a parameter's declared valid interval, inclusive on both ends.
type Range struct {
	Min float64
	Max float64
}

// Clamp limits v to the range. NaN maps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return core.Clamp(v, r.Min, r.Max)
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Definition declares one parameter.
type Definition struct {
	Handle  Handle
	Name    string
	Unit    string
	Range   Range
	Default float64
}

// BoolRange is the range used for on/off parameters.
var BoolRange = Range{Min: 0, Max: 1}

// Bool interprets a stored value as on/off.
func Bool(v float64) bool {
	return v >= 0.5
}

// FromBool is the stored value for an on/off state.
func FromBool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Store is the read side of the host's parameter state. Implementations
// must be safe for concurrent use; both the audio and UI goroutines read.
type Store interface {
	Value(h Handle) float64
	Range(h Handle) Range
}

// Sink receives edits. Calls arrive from a single UI goroutine, always as
// BeginSet, zero or more Set, EndSet for a given handle.
type Sink interface {
	BeginSet(h Handle)
	Set(h Handle, v float64)
	EndSet(h Handle)
}
