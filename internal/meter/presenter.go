// Package meter turns published linear levels into a peak-hold bar reading.
package meter

import (
	"fmt"
	"time"
)

// Reading is one tick's output.
type Reading struct {
	CurrentDB float64 // this tick's level in dB, above the ceiling on overs
	HeldDB    float64 // peak-hold value that drives the bar, at most CeilingDB
	Fraction  float64 // HeldDB normalized to [0,1]
	Label     string  // empty unless Config.ShowLabel
}

// Presenter owns the peak-hold state for one meter. It is driven by the
// render goroutine only and never touches the level source itself: callers
// read the level and pass it to Render.
type Presenter struct {
	cfg   Config
	scale Scale
	held  float64
	last  time.Time
}

// NewPresenter creates a presenter resting at the floor. cfg should have
// passed Validate.
func NewPresenter(cfg Config) *Presenter {
	return &Presenter{
		cfg:   cfg,
		scale: Scale{FloorDB: cfg.FloorDB, CeilingDB: cfg.CeilingDB},
		held:  cfg.FloorDB,
	}
}

// Held returns the current peak-hold value in dB.
func (p *Presenter) Held() float64 {
	return p.held
}

// Reset drops the held peak back to the floor.
func (p *Presenter) Reset() {
	p.held = p.cfg.FloorDB
	p.last = time.Time{}
}

// Render advances the peak hold to now and returns the reading for a linear
// level. Attack is instant. Decay is bounded by DecayDBPerSecond times the
// time since the previous Render and never drops below the current level.
// The hold never rises above the ceiling, so the bar starts falling as soon
// as an over ends.
// The first Render, and any Render at or before the previous timestamp,
// applies no decay.
func (p *Presenter) Render(linear float64, now time.Time) Reading {
	current := p.scale.ToDisplay(linear)

	var dt time.Duration
	if !p.last.IsZero() && now.After(p.last) {
		dt = now.Sub(p.last)
	}
	if now.After(p.last) {
		p.last = now
	}

	p.held = hold(p.held, min(current, p.scale.CeilingDB), p.cfg.DecayDBPerSecond*dt.Seconds())

	r := Reading{
		CurrentDB: current,
		HeldDB:    p.held,
		Fraction:  p.scale.Normalize(p.held),
	}
	if p.cfg.ShowLabel {
		r.Label = p.label()
	}
	return r
}

func (p *Presenter) label() string {
	if p.held <= p.cfg.FloorDB {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", p.held)
}

// hold applies one peak-hold step: snap up to current, or fall by at most
// step without passing current.
func hold(held, current, step float64) float64 {
	if current >= held {
		return current
	}
	return max(held-step, current)
}
