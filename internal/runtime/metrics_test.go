package runtime

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	configpkg "github.com/drblury/traceprov/internal/runtime/config"
	"github.com/drblury/traceprov/sink"
	"github.com/drblury/traceprov/sink/memory"
)

func TestEmitMetricsNilReceiver(t *testing.T) {
	var m *EmitMetrics
	m.observeWrite("p", "e", 10)
	m.observeSkip("p", "e")
	m.observeDrop("p", "e")
	if err := m.Register(prometheus.NewRegistry()); err != nil {
		t.Errorf("Register on nil: %v", err)
	}
	m.Unregister()
}

func TestEmitMetricsRegisterIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEmitMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// A second Register must not re-register the collectors.
	if err := m.Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}
	m.Unregister()
	// Collectors are detached; registering again works.
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register after Unregister: %v", err)
	}
}

func TestMetricsFreedWhenRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	snk := memory.New()
	conf := &configpkg.Config{SinkSystem: "memory", MetricsEnabled: true}

	occupant, err := New(conf, testDef(), nil, Dependencies{Sink: snk, MetricsRegisterer: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer occupant.Close()

	// The occupied identity makes the sink refuse. Each attempt must fail
	// with the sink's error and leave the registerer clean for the next.
	for i := 0; i < 2; i++ {
		_, err := New(conf, testDef(), nil, Dependencies{Sink: snk, MetricsRegisterer: reg})
		var regErr *sink.RegistrationError
		if !errors.As(err, &regErr) {
			t.Fatalf("attempt %d: err = %v, want *sink.RegistrationError", i+1, err)
		}
	}

	// The collectors are free once the occupant releases the identity.
	occupant.Close()
	p, err := New(conf, testDef(), nil, Dependencies{Sink: snk, MetricsRegisterer: reg})
	if err != nil {
		t.Fatalf("New after close: %v", err)
	}
	p.Close()
}

func TestEmitMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	snk := memory.New()
	conf := &configpkg.Config{SinkSystem: "memory", MetricsEnabled: true}
	p, err := New(conf, testDef(), nil, Dependencies{Sink: snk, MetricsRegisterer: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	ev := p.MustEvent("RequestProcessed")

	ev.Write(nil, uint64(1), "x")
	ev.Write(nil, "bad", "x")
	snk.Disable()
	ev.Write(nil, uint64(1), "x")

	labels := prometheus.Labels{"provider": "MyCompany.MyService", "event": "RequestProcessed"}
	if got := testutil.ToFloat64(p.stats.writtenTotal.With(labels)); got != 1 {
		t.Errorf("written = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.stats.droppedTotal.With(labels)); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.stats.skippedTotal.With(labels)); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.stats.payloadBytes.With(labels)); got != 8+2+1 {
		t.Errorf("payload bytes = %v, want 11", got)
	}
}

func TestMetricsDisabledByDefault(t *testing.T) {
	p, snk := newTestProvider(t)
	if p.stats != nil {
		t.Error("metrics should be off without MetricsEnabled")
	}

	// The write path tolerates the nil stats.
	p.MustEvent("Heartbeat").Write(nil)
	if len(snk.Records()) != 1 {
		t.Error("write should still deliver")
	}
}

func TestCloseUnregistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	conf := &configpkg.Config{SinkSystem: "memory", MetricsEnabled: true}
	p, err := New(conf, testDef(), nil, Dependencies{Sink: memory.New(), MetricsRegisterer: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The collectors are free for a successor provider on the same
	// registry.
	m := NewEmitMetrics()
	if err := m.Register(reg); err != nil {
		t.Errorf("Register after Close: %v", err)
	}
}
