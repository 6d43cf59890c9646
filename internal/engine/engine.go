// Package engine simulates the audio side: it renders blocks of a test
// tone, applies the gain and mute parameters and publishes a decaying peak
// level for the editor's meter.
//
// Process runs on the engine's own goroutine and takes no locks: parameters
// are read through the atomic param.Store and the meter is written through
// level.Level.
package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/level"
	"codeberg.org/mutker/prxgyz/internal/param"
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

// Config describes the simulated stream.
type Config struct {
	SampleRate  int
	BlockSize   int
	PeakDecayMs float64
	ToneHz      float64
	ToneLevel   float64 // linear amplitude of the test tone
}

func DefaultConfig() Config {
	return Config{
		SampleRate:  48000,
		BlockSize:   512,
		PeakDecayMs: 150,
		ToneHz:      440,
		ToneLevel:   0.5,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.SampleRate <= 0 || c.BlockSize <= 0 {
		return errFactory.WithData(errors.ErrInvalidRate, struct {
			SampleRate int
			BlockSize  int
		}{c.SampleRate, c.BlockSize})
	}
	if c.PeakDecayMs <= 0 || math.IsNaN(c.PeakDecayMs) {
		return errFactory.WithData(errors.ErrInvalidRate, struct {
			PeakDecayMs float64
		}{c.PeakDecayMs})
	}
	return nil
}

// BlockDuration is the wall time one block covers.
func (c Config) BlockDuration() time.Duration {
	return time.Duration(float64(c.BlockSize) / float64(c.SampleRate) * float64(time.Second))
}

// Bindings names the parameters the engine reads.
type Bindings struct {
	Gain param.Handle // in dB
	Mute param.Handle
}

// Engine is the producer side of the meter.
type Engine struct {
	cfg      Config
	params   param.Store
	bind     Bindings
	out      *level.Level
	weight   float64 // per-block decay weight
	peak     float64
	tone     []float64
	pos      int
	block    []float64
	editor   atomic.Bool
	blocks   atomic.Uint64
	clipping atomic.Bool
}

// New creates an engine. cfg should have passed Validate. The test tone is
// rendered once here; Process does not allocate.
func New(cfg Config, params param.Store, bind Bindings, out *level.Level) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// One second of tone loops seamlessly when ToneHz is a whole number.
	gen := signal.NewGenerator(core.WithSampleRate(float64(cfg.SampleRate)), core.WithBlockSize(cfg.BlockSize))
	tone, err := gen.Sine(cfg.ToneHz, cfg.ToneLevel, cfg.SampleRate)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitFailed, err)
	}

	return &Engine{
		cfg:    cfg,
		params: params,
		bind:   bind,
		out:    out,
		weight: BlockDecayWeight(cfg.SampleRate, cfg.BlockSize, cfg.PeakDecayMs),
		tone:   tone,
		block:  make([]float64, cfg.BlockSize),
	}, nil
}

// SampleDecayWeight is the per-sample weight that makes the meter fall to
// a quarter of its value after decayMs.
func SampleDecayWeight(sampleRate int, decayMs float64) float64 {
	return math.Pow(0.25, 1/(float64(sampleRate)*decayMs/1000))
}

// BlockDecayWeight is SampleDecayWeight applied once per block of n samples.
func BlockDecayWeight(sampleRate, n int, decayMs float64) float64 {
	return math.Pow(SampleDecayWeight(sampleRate, decayMs), float64(n))
}

// SetEditorOpen turns metering on or off. With no editor open there is no
// one to read the level, so Process skips the meter update.
func (e *Engine) SetEditorOpen(open bool) {
	e.editor.Store(open)
}

// Blocks returns how many blocks have been processed.
func (e *Engine) Blocks() uint64 {
	return e.blocks.Load()
}

// Clipping reports whether the last processed block exceeded full scale.
func (e *Engine) Clipping() bool {
	return e.clipping.Load()
}

// Process applies gain and mute to buf in place and updates the meter.
func (e *Engine) Process(buf []float64) {
	g := core.DBToLinear(e.params.Value(e.bind.Gain))
	if param.Bool(e.params.Value(e.bind.Mute)) {
		g = 0
	}
	for i, x := range buf {
		buf[i] = core.FlushDenormals(x * g)
	}

	amplitude := timestats.Peak(buf)
	e.clipping.Store(amplitude > 1)
	e.blocks.Add(1)

	if !e.editor.Load() {
		return
	}

	if amplitude > e.peak {
		e.peak = amplitude
	} else {
		e.peak = core.FlushDenormals(e.peak*e.weight + amplitude*(1-e.weight))
	}
	e.out.Publish(float32(e.peak))
}

// Next fills the internal block with the next slice of test tone, processes
// it and returns it. The returned slice is reused by the next call.
func (e *Engine) Next() []float64 {
	for i := range e.block {
		e.block[i] = e.tone[e.pos]
		e.pos++
		if e.pos == len(e.tone) {
			e.pos = 0
		}
	}
	e.Process(e.block)
	return e.block
}

// Run processes one block per block duration until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.BlockDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Next()
		}
	}
}
