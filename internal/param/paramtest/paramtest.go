// Package paramtest provides a recording param.Sink for tests.
package paramtest

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/prxgyz/internal/param"
)

// Op names a sink call.
type Op string

const (
	OpBegin  Op = "begin"
	OpUpdate Op = "update"
	OpEnd    Op = "end"
)

// Call is one recorded sink call.
type Call struct {
	Op     Op
	Handle param.Handle
	Value  float64
}

func (c Call) String() string {
	if c.Op == OpUpdate {
		return fmt.Sprintf("%s(%s, %g)", c.Op, c.Handle, c.Value)
	}
	return fmt.Sprintf("%s(%s)", c.Op, c.Handle)
}

// Sink records every call. If Apply is set, Set calls are also written
// through to it, the way a host would.
type Sink struct {
	Calls []Call
	Apply *param.Set
}

// NewSink returns a Sink that writes updates through to set, which may be
// nil.
func NewSink(set *param.Set) *Sink {
	return &Sink{Apply: set}
}

func (s *Sink) BeginSet(h param.Handle) {
	s.Calls = append(s.Calls, Call{Op: OpBegin, Handle: h})
}

func (s *Sink) Set(h param.Handle, v float64) {
	s.Calls = append(s.Calls, Call{Op: OpUpdate, Handle: h, Value: v})
	if s.Apply != nil {
		s.Apply.Apply(h, v)
	}
}

func (s *Sink) EndSet(h param.Handle) {
	s.Calls = append(s.Calls, Call{Op: OpEnd, Handle: h})
}

// Reset forgets recorded calls.
func (s *Sink) Reset() {
	s.Calls = nil
}

// String renders the calls as "begin(h) update(h, v) end(h)".
func (s *Sink) String() string {
	parts := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Bracketed reports whether the calls form well-formed gestures: every
// update sits between a begin and an end for its handle, and begins on one
// handle never nest.
func (s *Sink) Bracketed() bool {
	open := make(map[param.Handle]bool)
	for _, c := range s.Calls {
		switch c.Op {
		case OpBegin:
			if open[c.Handle] {
				return false
			}
			open[c.Handle] = true
		case OpUpdate:
			if !open[c.Handle] {
				return false
			}
		case OpEnd:
			if !open[c.Handle] {
				return false
			}
			delete(open, c.Handle)
		}
	}
	return len(open) == 0
}
