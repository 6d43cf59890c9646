package panel

// Layout holds the panel's spacing in pixels.
type Layout struct {
	Padding    int
	Spacing    int
	RowHeight  int
	LabelWidth int
	MinWidth   int
	MinHeight  int
}

func DefaultLayout() Layout {
	return Layout{
		Padding:    20,
		Spacing:    10,
		RowHeight:  24,
		LabelWidth: 96,
		MinWidth:   128,
		MinHeight:  128,
	}
}

// Rect is a pixel rectangle with its origin at the top left.
type Rect struct {
	X, Y, W, H int
}

// rows hands out stacked rows inside the padded area.
type rows struct {
	l     Layout
	width int
	y     int
}

func newRows(l Layout, width int) *rows {
	return &rows{l: l, width: width, y: l.Padding}
}

// full returns a row spanning the content width.
func (r *rows) full() Rect {
	rect := Rect{X: r.l.Padding, Y: r.y, W: r.contentWidth(), H: r.l.RowHeight}
	r.y += r.l.RowHeight + r.l.Spacing
	return rect
}

// split returns a labelled row as label and control rectangles.
func (r *rows) split() (Rect, Rect) {
	row := r.full()
	label := Rect{X: row.X, Y: row.Y, W: min(r.l.LabelWidth, row.W), H: row.H}
	ctrlX := label.X + label.W + r.l.Spacing
	ctrl := Rect{X: ctrlX, Y: row.Y, W: max(row.X+row.W-ctrlX, 0), H: row.H}
	return label, ctrl
}

func (r *rows) contentWidth() int {
	return max(r.width-2*r.l.Padding, 0)
}

// height is the total height used so far, with the bottom padding.
func (r *rows) height() int {
	return r.y - r.l.Spacing + r.l.Padding
}
