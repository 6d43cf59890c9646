// Package panel composes the control surface: heading, gain slider, peak
// meter and mute toggle, in that order, once per render tick.
package panel

import (
	"fmt"
	"time"

	"codeberg.org/mutker/prxgyz/internal/level"
	"codeberg.org/mutker/prxgyz/internal/meter"
	"codeberg.org/mutker/prxgyz/internal/param"
	"codeberg.org/mutker/prxgyz/internal/widget"
)

const Title = "prxgyz"

// Element ids, used to route input.
const (
	IDHeading = "heading"
	IDGain    = "gain"
	IDMeter   = "peak_meter"
	IDMute    = "mute"
)

type ElementKind int

const (
	KindHeading ElementKind = iota
	KindLabel
	KindSlider
	KindMeter
	KindToggle
)

// Element is one drawable item of a View.
type Element struct {
	ID       string
	Kind     ElementKind
	Rect     Rect
	Text     string
	Fraction float64
	On       bool
}

// View is everything drawn in one tick.
type View struct {
	Width    int
	Height   int
	Elements []Element
}

// Find returns the element with the given id and kind.
func (v View) Find(id string, kind ElementKind) (Element, bool) {
	for _, e := range v.Elements {
		if e.ID == id && e.Kind == kind {
			return e, true
		}
	}
	return Element{}, false
}

// Input is the events delivered this tick, keyed by element id.
type Input map[string][]widget.Event

// Composer renders the panel.
type Composer struct {
	store  param.Store
	level  *level.Level
	meter  *meter.Presenter
	gain   *widget.Slider
	mute   *widget.Toggle
	layout Layout
	unit   string
}

// New builds a composer. unit is the suffix shown after the gain value.
func New(store param.Store, lvl *level.Level, presenter *meter.Presenter,
	gain *widget.Slider, mute *widget.Toggle, layout Layout, unit string,
) *Composer {
	return &Composer{
		store:  store,
		level:  lvl,
		meter:  presenter,
		gain:   gain,
		mute:   mute,
		layout: layout,
		unit:   unit,
	}
}

// Render runs one tick at the given window size.
func (c *Composer) Render(width, height int, in Input, now time.Time) View {
	width = max(width, c.layout.MinWidth)
	rows := newRows(c.layout, width)
	v := View{Width: width}

	v.Elements = append(v.Elements, Element{ID: IDHeading, Kind: KindHeading, Rect: rows.full(), Text: Title})

	label, ctrl := rows.split()
	gainValue, _ := c.gain.Render(in[IDGain])
	v.Elements = append(v.Elements,
		Element{ID: IDGain, Kind: KindLabel, Rect: label, Text: "Gain Slider"},
		Element{ID: IDGain, Kind: KindSlider, Rect: ctrl, Text: c.formatGain(gainValue), Fraction: c.gain.Fraction()},
	)

	label, ctrl = rows.split()
	reading := c.meter.Render(float64(c.level.Read()), now)
	v.Elements = append(v.Elements,
		Element{ID: IDMeter, Kind: KindLabel, Rect: label, Text: "Peak Meter"},
		Element{ID: IDMeter, Kind: KindMeter, Rect: ctrl, Text: reading.Label, Fraction: reading.Fraction},
	)

	label, ctrl = rows.split()
	muted, _ := c.mute.Render(param.Bool(c.store.Value(c.mute.Handle())), in[IDMute])
	v.Elements = append(v.Elements,
		Element{ID: IDMute, Kind: KindLabel, Rect: label, Text: "Mute"},
		Element{ID: IDMute, Kind: KindToggle, Rect: ctrl, On: muted},
	)

	v.Height = max(height, rows.height(), c.layout.MinHeight)
	return v
}

// Close releases any drag still open, so the host sees its end marker.
func (c *Composer) Close() {
	c.gain.Release()
}

func (c *Composer) formatGain(v float64) string {
	return fmt.Sprintf("%.2f%s", v, c.unit)
}
