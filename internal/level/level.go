// Package level carries one continuously updating measurement from the audio
// goroutine to any number of render goroutines.
//
// A Level is a single hardware-atomic 32-bit cell. Publish and Read never
// block and never allocate, so the producer can call Publish from inside its
// processing deadline. Values are not queued: a reader sees the latest
// published value, and values published between two reads are dropped.
package level

import (
	"math"
	"sync/atomic"
)

// Silence is the value a Level holds before anything is published.
const Silence float32 = 0

// Level is a single-writer, multi-reader published scalar. The zero value
// holds Silence and is ready to use.
type Level struct {
	bits atomic.Uint32
}

// New returns a Level holding Silence.
func New() *Level {
	return &Level{}
}

// Publish overwrites the published value. Only the producer calls it.
func (l *Level) Publish(v float32) {
	l.bits.Store(math.Float32bits(v))
}

// Read returns the most recently published value, or Silence.
func (l *Level) Read() float32 {
	return math.Float32frombits(l.bits.Load())
}
