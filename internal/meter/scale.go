package meter

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// Scale maps linear magnitudes onto a bounded decibel range.
type Scale struct {
	FloorDB   float64
	CeilingDB float64
}

// ToDisplay converts a linear magnitude to dB. Silence, negative zero, NaN
// and anything quieter than the floor come out as FloorDB; +Inf comes out
// as CeilingDB. The result is always finite.
func (s Scale) ToDisplay(linear float64) float64 {
	if math.IsNaN(linear) {
		return s.FloorDB
	}
	if math.IsInf(linear, 0) {
		return s.CeilingDB
	}

	db := core.LinearToDB(math.Abs(linear))
	if db <= s.FloorDB {
		return s.FloorDB
	}
	return db
}

// Normalize maps a dB value onto [0,1] across the scale. Values outside the
// scale clamp to the nearest bound.
func (s Scale) Normalize(db float64) float64 {
	if math.IsNaN(db) || db <= s.FloorDB {
		return 0
	}
	if db >= s.CeilingDB {
		return 1
	}
	return core.Clamp((db-s.FloorDB)/(s.CeilingDB-s.FloorDB), 0, 1)
}
