package param_test

import (
	"math"
	"sync"
	"testing"

	"codeberg.org/mutker/prxgyz/internal/param"
	"codeberg.org/mutker/prxgyz/internal/param/paramtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gain param.Handle = "gain"
	mute param.Handle = "mute"
)

func newSet() *param.Set {
	return param.NewSet(
		param.Definition{Handle: gain, Name: "Gain", Unit: "dB", Range: param.Range{Min: -10, Max: 10}},
		param.Definition{Handle: mute, Name: "Mute", Range: param.BoolRange},
	)
}

func TestRangeClamp(t *testing.T) {
	r := param.Range{Min: -10, Max: 10}

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-10, -10},
		{10, 10},
		{12, 10},
		{-12.5, -10},
		{math.Inf(1), 10},
		{math.Inf(-1), -10},
		{math.NaN(), -10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Clamp(tt.in), "clamp(%v)", tt.in)
	}
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(10.01))
}

func TestBool(t *testing.T) {
	assert.True(t, param.Bool(param.FromBool(true)))
	assert.False(t, param.Bool(param.FromBool(false)))
	assert.True(t, param.Bool(0.5))
}

func TestSet(t *testing.T) {
	set := param.NewSet(
		param.Definition{Handle: gain, Range: param.Range{Min: -10, Max: 10}, Default: 25},
		param.Definition{Handle: mute, Range: param.BoolRange},
	)

	assert.Equal(t, 10.0, set.Value(gain), "default is clamped")
	assert.Equal(t, []param.Handle{gain, mute}, set.Handles())

	v, ok := set.Apply(gain, -3)
	require.True(t, ok)
	assert.Equal(t, -3.0, v)
	assert.Equal(t, -3.0, set.Value(gain))

	v, _ = set.Apply(gain, -30)
	assert.Equal(t, -10.0, v)

	_, ok = set.Apply("missing", 1)
	assert.False(t, ok)
	assert.Equal(t, 0.0, set.Value("missing"))
	assert.Equal(t, param.Range{}, set.Range("missing"))

	set.Reset()
	assert.Equal(t, 10.0, set.Value(gain))
}

func TestSetConcurrentReads(t *testing.T) {
	set := newSet()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v := set.Value(gain)
				if v < -10 || v > 10 {
					t.Errorf("value out of range: %v", v)
					return
				}
			}
		}()
	}
	for j := 0; j < 1000; j++ {
		set.Apply(gain, float64(j%21-10))
	}
	wg.Wait()
}

func TestEditorSet(t *testing.T) {
	set := newSet()
	sink := paramtest.NewSink(set)
	ed := param.NewEditor(set, sink)

	sent := ed.Set(mute, 1)

	assert.Equal(t, 1.0, sent)
	assert.Equal(t, "begin(mute) update(mute, 1) end(mute)", sink.String())
	assert.True(t, sink.Bracketed())
	assert.False(t, ed.IsOpen(mute))
	assert.Equal(t, 1.0, set.Value(mute))
}

func TestGestureClampsBeforeSink(t *testing.T) {
	set := newSet()
	sink := paramtest.NewSink(nil)
	ed := param.NewEditor(set, sink)

	g := ed.Begin(gain)
	assert.True(t, ed.IsOpen(gain))
	for _, v := range []float64{3, 7.5, 12} {
		g.Update(v)
	}
	g.End()

	assert.Equal(t, "begin(gain) update(gain, 3) update(gain, 7.5) update(gain, 10) end(gain)", sink.String())
	assert.Equal(t, 3, g.Updates())
	assert.False(t, ed.IsOpen(gain))
}

func TestGestureMisusePanics(t *testing.T) {
	ed := param.NewEditor(newSet(), paramtest.NewSink(nil))

	g := ed.Begin(gain)
	assert.Panics(t, func() { ed.Begin(gain) }, "nested begin")

	// A different handle may be edited at the same time.
	other := ed.Begin(mute)
	other.End()

	g.End()
	assert.Panics(t, func() { g.Update(1) }, "update after end")
	assert.Panics(t, func() { g.End() }, "double end")

	// The handle is free again after End.
	assert.NotPanics(t, func() { ed.Begin(gain).End() })
}

func TestCloseAll(t *testing.T) {
	sink := paramtest.NewSink(nil)
	ed := param.NewEditor(newSet(), sink)

	ed.Begin(gain).Update(2)
	ed.Begin(mute)
	ed.CloseAll()

	assert.False(t, ed.IsOpen(gain))
	assert.False(t, ed.IsOpen(mute))
	assert.True(t, sink.Bracketed())
}

func TestBracketedDetectsViolations(t *testing.T) {
	s := paramtest.NewSink(nil)
	s.Set(gain, 1)
	assert.False(t, s.Bracketed(), "update outside bracket")

	s.Reset()
	s.BeginSet(gain)
	s.BeginSet(gain)
	assert.False(t, s.Bracketed(), "nested begin")

	s.Reset()
	s.BeginSet(gain)
	assert.False(t, s.Bracketed(), "unclosed")
}
