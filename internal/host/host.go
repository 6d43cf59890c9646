// Package host is a reference parameter host. It applies edits to a
// param.Set, brackets them into automation lanes and hands finished lanes
// to an automation.Recorder.
package host

import (
	"context"
	"time"

	"codeberg.org/mutker/prxgyz/internal/automation"
	"codeberg.org/mutker/prxgyz/internal/logger"
	"codeberg.org/mutker/prxgyz/internal/param"
)

const (
	violationStraySet = "set_outside_gesture"
	violationNested   = "nested_begin"
	violationStrayEnd = "end_without_begin"
	recordTimeout     = 2 * time.Second
)

// Host implements param.Sink. Like the sink contract, it expects calls from
// one goroutine.
type Host struct {
	params   *param.Set
	recorder automation.Recorder
	metrics  *Metrics
	log      logger.Logger
	now      func() time.Time
	open     map[param.Handle]*automation.Lane
}

// Option configures a Host.
type Option func(*Host)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Host) { h.now = now }
}

// WithMetrics attaches prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

// New creates a host over params. recorder may be nil.
func New(params *param.Set, recorder automation.Recorder, log logger.Logger, opts ...Option) *Host {
	h := &Host{
		params:   params,
		recorder: recorder,
		log:      log,
		now:      time.Now,
		open:     make(map[param.Handle]*automation.Lane),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Editing reports whether h is inside a gesture window.
func (h *Host) Editing(handle param.Handle) bool {
	_, ok := h.open[handle]
	return ok
}

func (h *Host) BeginSet(handle param.Handle) {
	if _, ok := h.open[handle]; ok {
		h.violation(handle, violationNested)
		return
	}

	h.open[handle] = &automation.Lane{Handle: string(handle), Began: h.now()}
	if h.metrics != nil {
		h.metrics.GesturesBegun.WithLabelValues(string(handle)).Inc()
		h.metrics.OpenGestures.Inc()
	}
	h.log.Debug().Str("param", string(handle)).Msg("Gesture begin")
}

func (h *Host) Set(handle param.Handle, v float64) {
	applied, ok := h.params.Apply(handle, v)
	if !ok {
		h.log.Warn().Str("param", string(handle)).Msg("Set on unknown parameter")
		return
	}
	if !h.params.Range(handle).Contains(v) {
		h.log.Debug().
			Str("param", string(handle)).
			Float64("requested", v).
			Float64("applied", applied).
			Msg("Value clamped to range")
	}

	lane, ok := h.open[handle]
	if !ok {
		// Applied, but not automated: there is no window to record it in.
		h.violation(handle, violationStraySet)
		return
	}

	lane.Points = append(lane.Points, automation.Point{At: h.now(), Value: applied})
	if h.metrics != nil {
		h.metrics.Updates.WithLabelValues(string(handle)).Inc()
	}
	h.log.Debug().Str("param", string(handle)).Float64("value", applied).Msg("Gesture update")
}

func (h *Host) EndSet(handle param.Handle) {
	lane, ok := h.open[handle]
	if !ok {
		h.violation(handle, violationStrayEnd)
		return
	}
	delete(h.open, handle)

	lane.Ended = h.now()
	if lane.Ended.Before(lane.Began) {
		lane.Ended = lane.Began
	}
	if h.metrics != nil {
		h.metrics.GesturesEnded.WithLabelValues(string(handle)).Inc()
		h.metrics.OpenGestures.Dec()
	}
	h.log.Debug().
		Str("param", string(handle)).
		Int("points", len(lane.Points)).
		Dur("duration", lane.Ended.Sub(lane.Began)).
		Msg("Gesture end")

	h.record(lane)
}

func (h *Host) record(lane *automation.Lane) {
	if h.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := h.recorder.Record(ctx, lane); err != nil {
		if h.metrics != nil {
			h.metrics.RecordFailures.Inc()
		}
		h.log.Error().Err(err).Str("param", lane.Handle).Msg("Failed to record automation lane")
	}
}

func (h *Host) violation(handle param.Handle, kind string) {
	if h.metrics != nil {
		h.metrics.Violations.WithLabelValues(string(handle), kind).Inc()
	}
	h.log.Warn().Str("param", string(handle)).Str("kind", kind).Msg("Gesture contract violation")
}
