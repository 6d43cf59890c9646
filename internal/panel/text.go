package panel

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/term"
)

const (
	defaultColumns = 60
	labelColumns   = 13
)

// TextRenderer draws a View as plain text, one line per row.
type TextRenderer struct {
	Columns int
}

// TerminalColumns returns the width of the terminal on fd, or fallback when
// fd is not a terminal.
func TerminalColumns(fd int, fallback int) int {
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// Render writes v to w.
func (r TextRenderer) Render(w io.Writer, v View) error {
	cols := r.Columns
	if cols <= 0 {
		cols = defaultColumns
	}
	barWidth := max(cols-labelColumns-14, 4)

	var b strings.Builder
	var label string
	for _, e := range v.Elements {
		switch e.Kind {
		case KindHeading:
			b.WriteString(e.Text)
			b.WriteByte('\n')
		case KindLabel:
			label = e.Text
		case KindSlider, KindMeter:
			line := fmt.Sprintf("%-*s [%s] %s", labelColumns, label, bar(e.Fraction, barWidth), e.Text)
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteByte('\n')
		case KindToggle:
			mark := " "
			if e.On {
				mark = "x"
			}
			fmt.Fprintf(&b, "%-*s [%s]\n", labelColumns, label, mark)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func bar(fraction float64, width int) string {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	filled := int(math.Round(min(max(fraction, 0), 1) * float64(width)))
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}
