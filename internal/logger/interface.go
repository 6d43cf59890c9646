package logger

import "codeberg.org/mutker/prxgyz/internal/errors"

// Logger defines the interface for logging operations. Components take a
// Logger so tests can hand them a buffer-backed or no-op instance.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	With(component string) Logger
}
