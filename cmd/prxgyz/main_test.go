package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"codeberg.org/mutker/prxgyz/internal/config"
	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/logger"
	"codeberg.org/mutker/prxgyz/internal/panel"
	"codeberg.org/mutker/prxgyz/internal/param"
	"codeberg.org/mutker/prxgyz/internal/param/paramtest"
	"codeberg.org/mutker/prxgyz/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, gainValue float64) *app {
	t.Helper()
	params := param.NewSet(
		param.Definition{Handle: gainHandle, Range: param.Range{Min: -10, Max: 10}, Default: gainValue},
		param.Definition{Handle: muteHandle, Range: param.BoolRange},
	)
	editor := param.NewEditor(params, &paramtest.Sink{Apply: params})
	return &app{editor: editor, gain: widget.NewSlider(editor, gainHandle)}
}

func TestInputFromKeys(t *testing.T) {
	a := newTestApp(t, 0)

	in := a.inputFromKeys([]byte("]]m"))
	assert.Equal(t, []widget.Event{{Kind: widget.Click}}, in[panel.IDMute])
	assert.Equal(t, append(widget.Drag(0.5), widget.Drag(1)...), in[panel.IDGain])
}

func TestInputFromKeysClampsNudge(t *testing.T) {
	a := newTestApp(t, 10)

	in := a.inputFromKeys([]byte("]"))
	require.Len(t, in[panel.IDGain], 3)
	assert.Equal(t, 10.0, in[panel.IDGain][1].Value)
}

func TestInputFromKeysIgnoresOtherKeys(t *testing.T) {
	a := newTestApp(t, 0)
	assert.Empty(t, a.inputFromKeys([]byte("xyz")))
}

func TestHeadlessScriptIsBracketed(t *testing.T) {
	a := newTestApp(t, 0)
	open := false
	for _, in := range headlessScript() {
		for _, ev := range in[panel.IDGain] {
			switch ev.Kind {
			case widget.DragStart:
				open = true
			case widget.DragEnd:
				open = false
			case widget.DragMove:
				assert.True(t, open, "move outside a drag")
			}
		}
		a.gain.Render(in[panel.IDGain])
	}
	assert.False(t, a.gain.Dragging())
	assert.False(t, a.editor.IsOpen(gainHandle))
}

func TestStateDir(t *testing.T) {
	assert.Equal(t, os.TempDir(), stateDir(&config.Config{}))
	assert.Equal(t, "/srv/prxgyz", stateDir(&config.Config{Automation: true, AutomationDB: "/srv/prxgyz/a.db"}))
}

func TestNewParams(t *testing.T) {
	params := newParams()
	assert.Equal(t, []param.Handle{gainHandle, muteHandle}, params.Handles())

	gain, ok := params.Definition(gainHandle)
	require.True(t, ok)
	assert.Equal(t, "dB", gain.Unit)
	assert.Equal(t, param.Range{Min: -10, Max: 10}, gain.Range)
	assert.Equal(t, 0.0, params.Value(muteHandle))
}

func TestLogParams(t *testing.T) {
	var buf bytes.Buffer
	logParams(logger.New(&buf, "debug"), newParams())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"param":"gain"`)
	assert.Contains(t, lines[0], `"unit":"dB"`)
	assert.Contains(t, lines[1], `"param":"mute"`)
}

func TestLogErrorIncludesCode(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "debug")

	wrapped := fmt.Errorf("startup: %w", errors.New().New(errors.ErrAlreadyRunning))
	logError(log, wrapped, "failed to initialize")
	assert.Contains(t, buf.String(), `"error_code":"already_running"`)

	buf.Reset()
	logError(log, os.ErrNotExist, "plain")
	assert.NotContains(t, buf.String(), "error_code")
	assert.Contains(t, buf.String(), `"error":"file does not exist"`)
}
