package runtime

import (
	loggingpkg "github.com/drblury/traceprov/internal/runtime/logging"
	"github.com/drblury/traceprov/sink"
)

// WriteContext describes one write attempt to hooks.
type WriteContext struct {
	// Provider and Event name the attempted write.
	Provider string
	Event    string
	// Level, Keyword, and Opcode are the effective values after per-call
	// overrides.
	Level   sink.Level
	Keyword sink.Keyword
	Opcode  sink.Opcode
	// PayloadSize is the encoded payload length in bytes. Only set in
	// OnWrite; skipped writes never encode.
	PayloadSize int
}

// WriteHooks defines callbacks around the write path. All hooks are
// optional; nil hooks are simply not called. Hooks run synchronously on the
// writing goroutine and must be cheap.
type WriteHooks struct {
	// OnWrite fires after a record has been handed to the sink.
	OnWrite func(ctx WriteContext)

	// OnSkip fires when the enabled check short-circuits a write. No
	// encoding has happened when it runs.
	OnSkip func(ctx WriteContext)

	// OnError fires when a record is dropped before reaching the sink
	// (value mismatch, oversized sequence). Delivery itself has no error
	// channel.
	OnError func(ctx WriteContext, err error)
}

// Merge combines two WriteHooks into one that calls both, h's hooks first.
func (h WriteHooks) Merge(other WriteHooks) WriteHooks {
	return WriteHooks{
		OnWrite: chainHooks(h.OnWrite, other.OnWrite),
		OnSkip:  chainHooks(h.OnSkip, other.OnSkip),
		OnError: chainErrHooks(h.OnError, other.OnError),
	}
}

func chainHooks(a, b func(WriteContext)) func(WriteContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx WriteContext) {
		a(ctx)
		b(ctx)
	}
}

func chainErrHooks(a, b func(WriteContext, error)) func(WriteContext, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx WriteContext, err error) {
		a(ctx, err)
		b(ctx, err)
	}
}

// LoggingHooks returns pre-built hooks that log write outcomes. Useful in
// development; too chatty for a hot production provider.
func LoggingHooks(log loggingpkg.ServiceLogger) WriteHooks {
	return WriteHooks{
		OnWrite: func(ctx WriteContext) {
			log.Debug("event written", loggingpkg.LogFields{
				"provider": ctx.Provider,
				"event":    ctx.Event,
				"level":    ctx.Level.String(),
				"bytes":    ctx.PayloadSize,
			})
		},
		OnSkip: func(ctx WriteContext) {
			log.Debug("event skipped", loggingpkg.LogFields{
				"provider": ctx.Provider,
				"event":    ctx.Event,
				"level":    ctx.Level.String(),
			})
		},
		OnError: func(ctx WriteContext, err error) {
			log.Error("event dropped", err, loggingpkg.LogFields{
				"provider": ctx.Provider,
				"event":    ctx.Event,
			})
		},
	}
}

// CountingHooks returns hooks that increment the supplied counters, handy
// for verifying the short-circuit property in tests and benchmarks.
func CountingHooks(written, skipped, dropped *int) WriteHooks {
	return WriteHooks{
		OnWrite: func(WriteContext) {
			if written != nil {
				*written++
			}
		},
		OnSkip: func(WriteContext) {
			if skipped != nil {
				*skipped++
			}
		},
		OnError: func(WriteContext, error) {
			if dropped != nil {
				*dropped++
			}
		},
	}
}
