package panel_test

import (
	"bytes"
	"testing"
	"time"

	"codeberg.org/mutker/prxgyz/internal/level"
	"codeberg.org/mutker/prxgyz/internal/meter"
	"codeberg.org/mutker/prxgyz/internal/panel"
	"codeberg.org/mutker/prxgyz/internal/param"
	"codeberg.org/mutker/prxgyz/internal/param/paramtest"
	"codeberg.org/mutker/prxgyz/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gain param.Handle = "gain"
	mute param.Handle = "mute"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	set   *param.Set
	sink  *paramtest.Sink
	level *level.Level
	panel *panel.Composer
}

func newFixture() fixture {
	set := param.NewSet(
		param.Definition{Handle: gain, Range: param.Range{Min: -10, Max: 10}},
		param.Definition{Handle: mute, Range: param.BoolRange},
	)
	sink := paramtest.NewSink(set)
	ed := param.NewEditor(set, sink)
	lvl := level.New()

	c := panel.New(set, lvl, meter.NewPresenter(meter.DefaultConfig()),
		widget.NewSlider(ed, gain), widget.NewToggle(ed, mute),
		panel.DefaultLayout(), " dB")

	return fixture{set: set, sink: sink, level: lvl, panel: c}
}

func kinds(v panel.View) []panel.ElementKind {
	out := make([]panel.ElementKind, len(v.Elements))
	for i, e := range v.Elements {
		out[i] = e.Kind
	}
	return out
}

func TestRenderOrderAndLayout(t *testing.T) {
	f := newFixture()

	v := f.panel.Render(400, 0, nil, t0)

	assert.Equal(t, []panel.ElementKind{
		panel.KindHeading,
		panel.KindLabel, panel.KindSlider,
		panel.KindLabel, panel.KindMeter,
		panel.KindLabel, panel.KindToggle,
	}, kinds(v))

	heading, ok := v.Find(panel.IDHeading, panel.KindHeading)
	require.True(t, ok)
	assert.Equal(t, panel.Rect{X: 20, Y: 20, W: 360, H: 24}, heading.Rect)
	assert.Equal(t, "prxgyz", heading.Text)

	slider, ok := v.Find(panel.IDGain, panel.KindSlider)
	require.True(t, ok)
	assert.Equal(t, panel.Rect{X: 126, Y: 54, W: 254, H: 24}, slider.Rect)
	assert.Equal(t, "0.00 dB", slider.Text)
	assert.Equal(t, 0.5, slider.Fraction)

	toggle, _ := v.Find(panel.IDMute, panel.KindToggle)
	assert.Equal(t, 122, toggle.Rect.Y)

	assert.Equal(t, 400, v.Width)
	assert.Equal(t, 166, v.Height)
}

func TestRenderRespectsMinimumSize(t *testing.T) {
	f := newFixture()

	v := f.panel.Render(10, 10, nil, t0)
	assert.Equal(t, 128, v.Width)
	assert.GreaterOrEqual(t, v.Height, 128)
}

func TestRenderReadsPublishedLevel(t *testing.T) {
	f := newFixture()

	v := f.panel.Render(400, 0, nil, t0)
	m, _ := v.Find(panel.IDMeter, panel.KindMeter)
	assert.Equal(t, 0.0, m.Fraction, "silence before any publish")

	f.level.Publish(1)
	v = f.panel.Render(400, 0, nil, t0.Add(16*time.Millisecond))
	m, _ = v.Find(panel.IDMeter, panel.KindMeter)
	assert.Equal(t, 1.0, m.Fraction)
	assert.Empty(t, f.sink.Calls, "metering never touches parameters")
}

func TestRenderRoutesInput(t *testing.T) {
	f := newFixture()

	v := f.panel.Render(400, 0, panel.Input{
		panel.IDMute: {{Kind: widget.Click}},
		panel.IDGain: widget.Drag(3, 7.5, 12),
	}, t0)

	assert.Equal(t,
		"begin(gain) update(gain, 3) update(gain, 7.5) update(gain, 10) end(gain) "+
			"begin(mute) update(mute, 1) end(mute)",
		f.sink.String())

	toggle, _ := v.Find(panel.IDMute, panel.KindToggle)
	assert.True(t, toggle.On)
	slider, _ := v.Find(panel.IDGain, panel.KindSlider)
	assert.Equal(t, "10.00 dB", slider.Text)
}

func TestRenderShowsExternalChanges(t *testing.T) {
	f := newFixture()
	f.set.Apply(mute, 1)
	f.set.Apply(gain, -5)

	v := f.panel.Render(400, 0, nil, t0)

	toggle, _ := v.Find(panel.IDMute, panel.KindToggle)
	assert.True(t, toggle.On)
	slider, _ := v.Find(panel.IDGain, panel.KindSlider)
	assert.Equal(t, "-5.00 dB", slider.Text)
}

func TestCloseEndsOpenDrag(t *testing.T) {
	f := newFixture()

	f.panel.Render(400, 0, panel.Input{panel.IDGain: {{Kind: widget.DragStart}}}, t0)
	assert.False(t, f.sink.Bracketed())

	f.panel.Close()
	assert.True(t, f.sink.Bracketed())
}

func TestTextRenderer(t *testing.T) {
	f := newFixture()
	f.set.Apply(mute, 1)
	f.level.Publish(1)
	v := f.panel.Render(400, 0, nil, t0)

	var buf bytes.Buffer
	require.NoError(t, panel.TextRenderer{Columns: 37}.Render(&buf, v))

	want := "prxgyz\n" +
		"Gain Slider   [#####-----] 0.00 dB\n" +
		"Peak Meter    [##########]\n" +
		"Mute          [x]\n"
	assert.Equal(t, want, buf.String())
}

func TestTerminalColumnsFallback(t *testing.T) {
	assert.Equal(t, 80, panel.TerminalColumns(-1, 80))
}
