package host

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gesture traffic per parameter.
type Metrics struct {
	GesturesBegun  *prometheus.CounterVec
	GesturesEnded  *prometheus.CounterVec
	Updates        *prometheus.CounterVec
	Violations     *prometheus.CounterVec
	OpenGestures   prometheus.Gauge
	RecordFailures prometheus.Counter
}

// NewMetrics creates the host metrics and registers them on registry.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		GesturesBegun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prxgyz_gestures_begun_total",
			Help: "Parameter gestures opened, by parameter",
		}, []string{"param"}),
		GesturesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prxgyz_gestures_ended_total",
			Help: "Parameter gestures closed, by parameter",
		}, []string{"param"}),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prxgyz_parameter_updates_total",
			Help: "Parameter values set inside gestures, by parameter",
		}, []string{"param"}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prxgyz_gesture_violations_total",
			Help: "Calls breaking begin/update/end pairing, by parameter and kind",
		}, []string{"param", "kind"}),
		OpenGestures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prxgyz_gestures_open",
			Help: "Parameter gestures currently open",
		}),
		RecordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prxgyz_automation_record_failures_total",
			Help: "Automation lanes that could not be recorded",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.GesturesBegun, m.GesturesEnded, m.Updates, m.Violations, m.OpenGestures, m.RecordFailures,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register host metrics: %w", err)
		}
	}
	return m, nil
}
