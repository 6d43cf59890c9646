// Package widget implements the toggle and slider controls. Controls read
// current values, consume the input events delivered for one render pass
// and turn them into gestures on a param.Editor. They never hold a gesture
// open unless a drag is in progress.
package widget

import "fmt"

// EventKind classifies an input event delivered to a control.
type EventKind int

const (
	// Click is a discrete activation. On a slider it carries the value
	// clicked on.
	Click EventKind = iota
	// DragStart begins a continuous interaction.
	DragStart
	// DragMove is one movement sample, carrying the value under the
	// pointer in parameter units.
	DragMove
	// DragEnd releases the drag.
	DragEnd
)

func (k EventKind) String() string {
	switch k {
	case Click:
		return "click"
	case DragStart:
		return "drag_start"
	case DragMove:
		return "drag_move"
	case DragEnd:
		return "drag_end"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one input event. Value is meaningful for DragMove and for Click
// on a slider.
type Event struct {
	Kind  EventKind
	Value float64
}

// Drag builds the event sequence of one complete drag through samples.
func Drag(samples ...float64) []Event {
	events := make([]Event, 0, len(samples)+2)
	events = append(events, Event{Kind: DragStart})
	for _, v := range samples {
		events = append(events, Event{Kind: DragMove, Value: v})
	}
	return append(events, Event{Kind: DragEnd})
}
