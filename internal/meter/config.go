package meter

import (
	"fmt"
	"math"

	"codeberg.org/mutker/prxgyz/internal/errors"
)

const (
	defaultFloorDB          = -60.0
	defaultCeilingDB        = 0.0
	defaultDecayDBPerSecond = 12.0
)

// Config holds the display range and peak-hold decay. Decay is in dB per
// second of wall time between render ticks.
type Config struct {
	FloorDB          float64
	CeilingDB        float64
	DecayDBPerSecond float64
	ShowLabel        bool
}

func DefaultConfig() Config {
	return Config{
		FloorDB:          defaultFloorDB,
		CeilingDB:        defaultCeilingDB,
		DecayDBPerSecond: defaultDecayDBPerSecond,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !isFinite(c.FloorDB) || !isFinite(c.CeilingDB) || c.FloorDB >= c.CeilingDB {
		return errFactory.WithData(errors.ErrInvalidScale,
			fmt.Sprintf("floor %g dB must be below ceiling %g dB", c.FloorDB, c.CeilingDB))
	}
	if !isFinite(c.DecayDBPerSecond) || c.DecayDBPerSecond < 0 {
		return errFactory.WithData(errors.ErrInvalidScale,
			fmt.Sprintf("decay %g dB/s must be zero or positive", c.DecayDBPerSecond))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
