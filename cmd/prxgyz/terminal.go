package main

import (
	"context"
	"os"
	"sync"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"golang.org/x/term"
)

// terminal puts stdin in raw mode and collects key presses for the
// render loop.
type terminal struct {
	fd    int
	state *term.State

	mu   sync.Mutex
	keys []byte
}

func openTerminal(quit context.CancelFunc) (*terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New().New(errors.ErrUnavailable)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrUnavailable, err)
	}

	t := &terminal{fd: fd, state: state}
	go t.read(quit)
	return t, nil
}

func (t *terminal) read(quit context.CancelFunc) {
	buf := make([]byte, 16)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		for _, k := range buf[:n] {
			// q, Ctrl-C
			if k == 'q' || k == 'Q' || k == 0x03 {
				quit()
				return
			}
		}
		t.mu.Lock()
		t.keys = append(t.keys, buf[:n]...)
		t.mu.Unlock()
	}
}

// drain returns and clears the keys pressed since the last call.
func (t *terminal) drain() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := t.keys
	t.keys = nil
	return keys
}

func (t *terminal) restore() {
	_ = term.Restore(t.fd, t.state)
}
