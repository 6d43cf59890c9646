package widget

import "codeberg.org/mutker/prxgyz/internal/param"

// Slider is a ranged control bound to one parameter. A drag may span many
// render passes; the gesture stays open from DragStart to DragEnd.
type Slider struct {
	editor  *param.Editor
	handle  param.Handle
	gesture *param.Gesture
	value   float64
}

func NewSlider(editor *param.Editor, handle param.Handle) *Slider {
	return &Slider{editor: editor, handle: handle}
}

// Handle returns the bound parameter.
func (s *Slider) Handle() param.Handle {
	return s.handle
}

// Range returns the bound parameter's declared range.
func (s *Slider) Range() param.Range {
	return s.editor.Store().Range(s.handle)
}

// Dragging reports whether a drag gesture is open.
func (s *Slider) Dragging() bool {
	return s.gesture != nil
}

// Display returns the value to draw. During a drag this is the last value
// sent; otherwise it is read from the store, so automation and other
// controls show through.
func (s *Slider) Display() float64 {
	if s.gesture != nil {
		return s.value
	}
	return s.editor.Store().Value(s.handle)
}

// ValueAt maps a position along the track, 0 at the left edge and 1 at the
// right, to a parameter value.
func (s *Slider) ValueAt(fraction float64) float64 {
	r := s.Range()
	return r.Min + fraction*(r.Max-r.Min)
}

// Fraction maps the display value onto the track.
func (s *Slider) Fraction() float64 {
	r := s.Range()
	if r.Max <= r.Min {
		return 0
	}
	return (s.Display() - r.Min) / (r.Max - r.Min)
}

// Render consumes one pass of input and returns the display value and
// whether any value was sent. Moves outside a drag are dropped rather than
// sent unbracketed, and a second DragStart continues the open drag.
func (s *Slider) Render(events []Event) (float64, bool) {
	changed := false
	for _, ev := range events {
		switch ev.Kind {
		case DragStart:
			if s.gesture == nil {
				s.value = s.editor.Store().Value(s.handle)
				s.gesture = s.editor.Begin(s.handle)
			}
		case DragMove:
			if s.gesture == nil {
				continue
			}
			s.value = s.gesture.Update(ev.Value)
			changed = true
		case DragEnd:
			s.Release()
		case Click:
			if s.gesture != nil {
				s.value = s.gesture.Update(ev.Value)
			} else {
				s.value = s.editor.Set(s.handle, ev.Value)
			}
			changed = true
		}
	}
	return s.Display(), changed
}

// Release ends an open drag, if any. Toolkits call it when a drag is lost
// without a release event, such as on focus loss or shutdown.
func (s *Slider) Release() {
	if s.gesture == nil {
		return
	}
	s.gesture.End()
	s.gesture = nil
}
