package param

import "fmt"

// Editor is the UI side's only route to a Sink. It hands out Gestures and
// tracks which handles have one open. An Editor belongs to the single UI
// goroutine and is not safe for concurrent use.
type Editor struct {
	store Store
	sink  Sink
	open  map[Handle]*Gesture
}

// NewEditor creates an Editor reading ranges and values from store and
// sending edits to sink.
func NewEditor(store Store, sink Sink) *Editor {
	return &Editor{
		store: store,
		sink:  sink,
		open:  make(map[Handle]*Gesture),
	}
}

// Store returns the store the editor reads from.
func (e *Editor) Store() Store {
	return e.store
}

// IsOpen reports whether a gesture on h is in progress.
func (e *Editor) IsOpen(h Handle) bool {
	_, ok := e.open[h]
	return ok
}

// Begin opens a gesture on h. Gestures on one handle never nest, so Begin
// panics if one is already open.
func (e *Editor) Begin(h Handle) *Gesture {
	if _, ok := e.open[h]; ok {
		panic(fmt.Sprintf("param: gesture on %q already open", h))
	}
	g := &Gesture{editor: e, handle: h, rng: e.store.Range(h)}
	e.open[h] = g
	e.sink.BeginSet(h)
	return g
}

// Set performs one complete gesture setting h to v and returns the value
// sent, after clamping.
func (e *Editor) Set(h Handle, v float64) float64 {
	g := e.Begin(h)
	defer g.End()
	return g.Update(v)
}

// CloseAll ends every open gesture. It is for shutdown paths, where an
// interaction is cut short and the host still needs its end marker.
func (e *Editor) CloseAll() {
	for _, g := range e.open {
		g.End()
	}
}

// Gesture is one open edit. It is created only by Editor.Begin and is
// finished by End; after End it cannot be used again.
type Gesture struct {
	editor  *Editor
	handle  Handle
	rng     Range
	updates int
	closed  bool
}

// Handle returns the parameter being edited.
func (g *Gesture) Handle() Handle {
	return g.handle
}

// Updates returns how many values have been sent so far.
func (g *Gesture) Updates() int {
	return g.updates
}

// Update clamps v to the parameter's range, sends it and returns the sent
// value.
func (g *Gesture) Update(v float64) float64 {
	if g.closed {
		panic(fmt.Sprintf("param: update on closed gesture %q", g.handle))
	}
	v = g.rng.Clamp(v)
	g.updates++
	g.editor.sink.Set(g.handle, v)
	return v
}

// End closes the gesture. Calling End twice panics.
func (g *Gesture) End() {
	if g.closed {
		panic(fmt.Sprintf("param: gesture %q ended twice", g.handle))
	}
	g.closed = true
	delete(g.editor.open, g.handle)
	g.editor.sink.EndSet(g.handle)
}
