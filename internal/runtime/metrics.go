package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EmitMetrics tracks write-path outcomes per provider and event. All
// methods are safe on a nil receiver so the hot path carries no enabled
// checks of its own.
type EmitMetrics struct {
	writtenTotal *prometheus.CounterVec
	skippedTotal *prometheus.CounterVec
	droppedTotal *prometheus.CounterVec
	payloadBytes *prometheus.CounterVec

	registerer prometheus.Registerer
	registered bool
}

func newEmitCounterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "traceprov",
			Subsystem: "emit",
			Name:      name,
			Help:      help,
		},
		[]string{"provider", "event"},
	)
}

// NewEmitMetrics creates unregistered emit collectors.
func NewEmitMetrics() *EmitMetrics {
	return &EmitMetrics{
		writtenTotal: newEmitCounterVec("events_written_total",
			"Events encoded and handed to the sink."),
		skippedTotal: newEmitCounterVec("events_skipped_total",
			"Writes short-circuited by a disabled level/keyword before any encoding."),
		droppedTotal: newEmitCounterVec("events_dropped_total",
			"Writes dropped before the sink due to a value/descriptor mismatch."),
		payloadBytes: newEmitCounterVec("payload_bytes_total",
			"Total encoded payload bytes handed to the sink."),
	}
}

// Register attaches the collectors to the registerer. Calling it twice is a
// no-op.
func (m *EmitMetrics) Register(reg prometheus.Registerer) error {
	if m == nil || m.registered {
		return nil
	}
	for _, c := range []prometheus.Collector{m.writtenTotal, m.skippedTotal, m.droppedTotal, m.payloadBytes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	m.registerer = reg
	m.registered = true
	return nil
}

// Unregister detaches the collectors, for providers torn down mid-process.
func (m *EmitMetrics) Unregister() {
	if m == nil || !m.registered {
		return
	}
	for _, c := range []prometheus.Collector{m.writtenTotal, m.skippedTotal, m.droppedTotal, m.payloadBytes} {
		m.registerer.Unregister(c)
	}
	m.registered = false
}

func (m *EmitMetrics) observeWrite(provider, event string, bytes int) {
	if m == nil {
		return
	}
	m.writtenTotal.WithLabelValues(provider, event).Inc()
	m.payloadBytes.WithLabelValues(provider, event).Add(float64(bytes))
}

func (m *EmitMetrics) observeSkip(provider, event string) {
	if m == nil {
		return
	}
	m.skippedTotal.WithLabelValues(provider, event).Inc()
}

func (m *EmitMetrics) observeDrop(provider, event string) {
	if m == nil {
		return
	}
	m.droppedTotal.WithLabelValues(provider, event).Inc()
}
