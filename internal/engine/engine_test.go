package engine_test

import (
	"context"
	"os"
	"testing"
	"time"

	"codeberg.org/mutker/prxgyz/internal/engine"
	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/level"
	"codeberg.org/mutker/prxgyz/internal/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

const (
	gain param.Handle = "gain"
	mute param.Handle = "mute"
)

var bindings = engine.Bindings{Gain: gain, Mute: mute}

func newEngine(t *testing.T) (*engine.Engine, *param.Set, *level.Level) {
	t.Helper()

	set := param.NewSet(
		param.Definition{Handle: gain, Range: param.Range{Min: -10, Max: 10}},
		param.Definition{Handle: mute, Range: param.BoolRange},
	)
	lvl := level.New()
	e, err := engine.New(engine.DefaultConfig(), set, bindings, lvl)
	require.NoError(t, err)
	e.SetEditorOpen(true)
	return e, set, lvl
}

func constant(v float64, n int) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, engine.DefaultConfig().Validate())

	cfg := engine.DefaultConfig()
	cfg.BlockSize = 0
	assert.Equal(t, errors.ErrInvalidRate, errors.CodeOf(cfg.Validate()))

	cfg = engine.DefaultConfig()
	cfg.PeakDecayMs = 0
	assert.Error(t, cfg.Validate())

	_, err := engine.New(cfg, param.NewSet(), bindings, level.New())
	assert.Error(t, err)
}

func TestBlockDuration(t *testing.T) {
	cfg := engine.Config{SampleRate: 48000, BlockSize: 480}
	assert.Equal(t, 10*time.Millisecond, cfg.BlockDuration())
}

func TestDecayWeight(t *testing.T) {
	// After decayMs worth of samples the meter has fallen to a quarter.
	w := engine.BlockDecayWeight(48000, 7200, 150)
	assert.InDelta(t, 0.25, w, 1e-9)

	assert.InDelta(t, engine.SampleDecayWeight(48000, 150),
		engine.BlockDecayWeight(48000, 1, 150), 1e-15)
}

func TestProcessPublishesPeak(t *testing.T) {
	e, _, lvl := newEngine(t)

	buf := constant(0.5, 512)
	buf[10] = -0.8
	e.Process(buf)

	assert.InDelta(t, 0.8, lvl.Read(), 1e-6)
	assert.Equal(t, 0.5, buf[0], "unity gain leaves the signal alone")
	assert.EqualValues(t, 1, e.Blocks())
}

func TestProcessAppliesGain(t *testing.T) {
	e, set, lvl := newEngine(t)
	set.Apply(gain, 6)

	buf := constant(0.25, 512)
	e.Process(buf)

	assert.InDelta(t, 0.4988, buf[0], 1e-4)
	assert.InDelta(t, 0.4988, lvl.Read(), 1e-4)
	assert.False(t, e.Clipping())

	set.Apply(gain, 10)
	e.Process(constant(0.5, 512))
	assert.True(t, e.Clipping())
}

func TestMuteDecaysMeter(t *testing.T) {
	e, set, lvl := newEngine(t)

	e.Process(constant(0.5, 512))
	require.InDelta(t, 0.5, lvl.Read(), 1e-6)

	set.Apply(mute, 1)
	buf := constant(0.5, 512)
	e.Process(buf)

	assert.Equal(t, 0.0, buf[0])
	w := engine.BlockDecayWeight(48000, 512, 150)
	assert.InDelta(t, 0.5*w, lvl.Read(), 1e-6, "release follows the decay weight")

	prev := lvl.Read()
	for i := 0; i < 200; i++ {
		e.Process(constant(0.5, 512))
		assert.LessOrEqual(t, lvl.Read(), prev)
		prev = lvl.Read()
	}
	assert.Less(t, prev, float32(1e-6))
}

func TestEditorClosedSkipsMeter(t *testing.T) {
	e, _, lvl := newEngine(t)
	e.SetEditorOpen(false)

	e.Process(constant(0.5, 512))
	assert.Equal(t, level.Silence, lvl.Read())
	assert.EqualValues(t, 1, e.Blocks(), "audio is still processed")
}

func TestNextLoopsTone(t *testing.T) {
	e, _, lvl := newEngine(t)

	for i := 0; i < 200; i++ {
		block := e.Next()
		require.Len(t, block, 512)
	}
	assert.InDelta(t, 0.5, lvl.Read(), 0.01)
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _, lvl := newEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return e.Blocks() > 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Greater(t, lvl.Read(), float32(0))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}
