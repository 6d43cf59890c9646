package logger

import (
	"io"
	"os"
	"syscall"
	"time"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"github.com/rs/zerolog"
)

const DefaultLevel = "warn"

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zlogger struct {
	zl zerolog.Logger
}

var std Logger = &zlogger{zl: zerolog.Nop()}

// Init initializes the process logger. An unknown level falls back to warn;
// config validation rejects those before Init is reached.
func Init(level string, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	std = New(output, level)
}

// New builds a logger writing to w at the given level.
func New(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	return &zlogger{zl: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zlogger{zl: zerolog.Nop()}
}

// Default returns the process logger set up by Init.
func Default() Logger {
	return std
}

// ValidLevel reports whether level names one of debug, info, warn, error.
func ValidLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func (l *zlogger) Debug() *LogEvent { return &LogEvent{l.zl.Debug()} }
func (l *zlogger) Info() *LogEvent  { return &LogEvent{l.zl.Info()} }
func (l *zlogger) Warn() *LogEvent  { return &LogEvent{l.zl.Warn()} }
func (l *zlogger) Error() *LogEvent { return &LogEvent{l.zl.Error()} }

func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.zl.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

func (l *zlogger) With(component string) Logger {
	return &zlogger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debug logs a debug message on the process logger
func Debug() *LogEvent {
	return std.Debug()
}

// Info logs an info message on the process logger
func Info() *LogEvent {
	return std.Info()
}

// Warn logs a warning message on the process logger
func Warn() *LogEvent {
	return std.Warn()
}

// Error logs an error message on the process logger
func Error() *LogEvent {
	return std.Error()
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return std.ErrorWithCode(err)
}

// With returns a component logger derived from the process logger
func With(component string) Logger {
	return std.With(component)
}
