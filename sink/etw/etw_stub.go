//go:build !windows

package etw

import (
	"github.com/google/uuid"

	"github.com/drblury/traceprov/sink"
)

// stubSink stands in on platforms without the tracing facility. Providers
// register successfully but no session ever enables them, so every write
// short-circuits at the enabled check.
type stubSink struct{}

func build(cfg sink.Config) (sink.Sink, error) {
	return stubSink{}, nil
}

func (stubSink) Register(name string, id uuid.UUID, providerMetadata []byte) (sink.Handle, error) {
	return 0, nil
}

func (stubSink) IsEnabled(h sink.Handle, level sink.Level, keyword sink.Keyword) bool {
	return false
}

func (stubSink) Write(h sink.Handle, rec sink.Record) {}

func (stubSink) Unregister(h sink.Handle) {}
