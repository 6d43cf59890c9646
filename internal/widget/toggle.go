package widget

import "codeberg.org/mutker/prxgyz/internal/param"

// Toggle is an on/off control bound to one parameter.
type Toggle struct {
	editor *param.Editor
	handle param.Handle
}

func NewToggle(editor *param.Editor, handle param.Handle) *Toggle {
	return &Toggle{editor: editor, handle: handle}
}

// Handle returns the bound parameter.
func (t *Toggle) Handle() param.Handle {
	return t.handle
}

// Render handles one pass of input for a toggle currently showing current.
// Each Click flips the value through one complete gesture, so nothing is
// left open when Render returns. It returns the value to display and
// whether any click happened.
func (t *Toggle) Render(current bool, events []Event) (bool, bool) {
	changed := false
	for _, ev := range events {
		if ev.Kind != Click {
			continue
		}
		current = param.Bool(t.editor.Set(t.handle, param.FromBool(!current)))
		changed = true
	}
	return current, changed
}
