package runtime

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/drblury/traceprov/internal/runtime/config"
	errspkg "github.com/drblury/traceprov/internal/runtime/errors"
	loggingpkg "github.com/drblury/traceprov/internal/runtime/logging"
	"github.com/drblury/traceprov/internal/runtime/metadata"
	"github.com/drblury/traceprov/internal/runtime/payload"
	"github.com/drblury/traceprov/internal/runtime/schema"
	"github.com/drblury/traceprov/sink"
)

// Dependencies holds the optional collaborators a Provider can use. Leave
// fields nil to take the defaults.
type Dependencies struct {
	// Sink overrides the sink built from config. Tests inject capture
	// sinks here.
	Sink sink.Sink

	// Hooks observe the write path; merged hooks all fire.
	Hooks WriteHooks

	// MetricsRegisterer receives the emit counters when the config enables
	// metrics. Nil falls back to prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
}

// Provider is one registered event source. All fields are established at
// construction and never mutated afterward, so any number of goroutines may
// share an instance and write concurrently without locking; the only state
// that changes over its lifetime is the closed flag.
type Provider struct {
	name   string
	id     uuid.UUID
	blob   []byte
	events map[string]*Event
	order  []*Event

	snk    sink.Sink
	handle sink.Handle
	logger loggingpkg.ServiceLogger
	hooks  WriteHooks
	stats  *EmitMetrics

	closed    atomic.Bool
	closeOnce sync.Once
}

// Event is one compiled event: its descriptor defaults and the metadata
// blob built exactly once at compile time. The blob is shared read-only by
// every write of this event; it is never regenerated, mutated, or evicted
// while the provider lives, because the sink's decoder caches it by event
// identity.
type Event struct {
	provider *Provider
	name     string
	fields   []metadata.FieldSpec
	blob     []byte

	level   sink.Level
	keyword sink.Keyword
	opcode  sink.Opcode
}

// New compiles the provider definition and registers it with the sink. This
// is the schema-compiler pass: it runs once, ahead of any event being
// written, and every schema error (unsupported type, duplicate name,
// malformed identity) is surfaced here, never at write time. On a sink
// registration failure a typed *sink.RegistrationError is returned and no
// instance exists.
func New(conf *configpkg.Config, def schema.ProviderDef, log loggingpkg.ServiceLogger, deps Dependencies) (*Provider, error) {
	if log == nil {
		log = loggingpkg.Nop()
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	id, err := def.Identity()
	if err != nil {
		return nil, err
	}

	blob, err := metadata.EncodeProvider(def.Name)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		name:   def.Name,
		id:     id,
		blob:   blob,
		events: make(map[string]*Event, len(def.Events)),
		logger: log.With(loggingpkg.LogFields{"provider": def.Name}),
		hooks:  deps.Hooks,
	}

	for _, evDef := range def.Events {
		specs := make([]metadata.FieldSpec, len(evDef.Fields))
		for i, f := range evDef.Fields {
			specs[i] = metadata.FieldSpec{Name: f.Name, Type: f.Type}
		}
		evBlob, err := metadata.EncodeEvent(evDef.Name, specs)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", evDef.Name, err)
		}
		ev := &Event{
			provider: p,
			name:     evDef.Name,
			fields:   specs,
			blob:     evBlob,
			level:    evDef.Level,
			keyword:  evDef.Keyword,
			opcode:   evDef.Opcode,
		}
		p.events[evDef.Name] = ev
		p.order = append(p.order, ev)
	}

	snk := deps.Sink
	if snk == nil {
		if conf == nil {
			conf = configpkg.Default()
		}
		if err := configpkg.ValidateConfig(conf); err != nil {
			return nil, err
		}
		snk, err = sink.Build(conf)
		if err != nil {
			return nil, err
		}
	}
	p.snk = snk

	if conf != nil && conf.MetricsEnabled {
		p.stats = NewEmitMetrics()
		reg := deps.MetricsRegisterer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if err := p.stats.Register(reg); err != nil {
			return nil, err
		}
	}

	handle, err := snk.Register(def.Name, id, blob)
	if err != nil {
		// Registration is the caller's to retry; leave no collectors
		// behind on the registerer.
		p.stats.Unregister()
		var regErr *sink.RegistrationError
		if !errors.As(err, &regErr) {
			err = &sink.RegistrationError{Provider: def.Name, Err: err}
		}
		return nil, err
	}
	p.handle = handle

	p.logger.Debug("provider registered", loggingpkg.LogFields{"id": id.String(), "events": len(p.events)})
	return p, nil
}

// Name returns the provider's human-readable name.
func (p *Provider) Name() string { return p.name }

// ID returns the provider's 128-bit identity.
func (p *Provider) ID() uuid.UUID { return p.id }

// Metadata returns the provider metadata blob sent at registration. Callers
// must treat it as read-only.
func (p *Provider) Metadata() []byte { return p.blob }

// Event returns the compiled event with the given declared name.
func (p *Provider) Event(name string) (*Event, error) {
	ev, ok := p.events[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errspkg.ErrUnknownEvent, name)
	}
	return ev, nil
}

// MustEvent is Event for compile-once initialization paths where a missing
// event is a programming error.
func (p *Provider) MustEvent(name string) *Event {
	ev, err := p.Event(name)
	if err != nil {
		panic(err)
	}
	return ev
}

// Events returns the compiled events in declaration order.
func (p *Provider) Events() []*Event { return p.order }

// Enabled reports whether any session currently records at the given level
// and keyword. It returns false after Close.
func (p *Provider) Enabled(level sink.Level, keyword sink.Keyword) bool {
	if p.closed.Load() {
		return false
	}
	return p.snk.IsEnabled(p.handle, level, keyword)
}

// Close unregisters the provider. It runs exactly once; later calls and
// any write or enabled check after it are safe no-ops, never faults.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.snk.Unregister(p.handle)
		p.stats.Unregister()
		p.logger.Debug("provider unregistered", nil)
	})
	return nil
}

// Name returns the event's declared name.
func (e *Event) Name() string { return e.name }

// Metadata returns the event's metadata blob. Callers must treat it as
// read-only.
func (e *Event) Metadata() []byte { return e.blob }

// Enabled reports whether a write with the given options would currently be
// recorded, using the event's compiled defaults for anything the options do
// not override.
func (e *Event) Enabled(opts *EventOptions) bool {
	level, keyword := e.level, e.keyword
	if opts != nil {
		if opts.hasLevel {
			level = opts.level
		}
		if opts.hasKeyword {
			keyword = opts.keyword
		}
	}
	return e.provider.Enabled(level, keyword)
}

// Write encodes the call's field values and forwards the record to the
// sink. The enabled check runs first and short-circuits: a disabled event
// pays no encoding cost. Write never reports delivery failure; the sink is
// best-effort and a dropped record is indistinguishable from a delivered
// one. A value/descriptor mismatch is a call-site programming bug; the
// typed writers make it unrepresentable, and the dynamic path logs and
// drops the record rather than faulting.
func (e *Event) Write(opts *EventOptions, values ...any) {
	p := e.provider
	if p.closed.Load() {
		return
	}

	level, keyword, opcode := e.level, e.keyword, e.opcode
	var activity, related *uuid.UUID
	if opts != nil {
		if opts.hasLevel {
			level = opts.level
		}
		if opts.hasKeyword {
			keyword = opts.keyword
		}
		if opts.hasOpcode {
			opcode = opts.opcode
		}
		activity = opts.activityID
		related = opts.relatedActivityID
	}

	ctx := WriteContext{
		Provider: p.name,
		Event:    e.name,
		Level:    level,
		Keyword:  keyword,
		Opcode:   opcode,
	}

	if !p.snk.IsEnabled(p.handle, level, keyword) {
		p.stats.observeSkip(p.name, e.name)
		if p.hooks.OnSkip != nil {
			p.hooks.OnSkip(ctx)
		}
		return
	}

	buf, err := payload.Encode(e.fields, values)
	if err != nil {
		p.stats.observeDrop(p.name, e.name)
		p.logger.Error("event dropped", err, loggingpkg.LogFields{"event": e.name})
		if p.hooks.OnError != nil {
			p.hooks.OnError(ctx, err)
		}
		return
	}
	ctx.PayloadSize = len(buf)

	p.snk.Write(p.handle, sink.Record{
		Provider:          p.name,
		Event:             e.name,
		Metadata:          e.blob,
		Payload:           buf,
		Level:             level,
		Keyword:           keyword,
		Opcode:            opcode,
		ActivityID:        activity,
		RelatedActivityID: related,
	})

	p.stats.observeWrite(p.name, e.name, len(buf))
	if p.hooks.OnWrite != nil {
		p.hooks.OnWrite(ctx)
	}
}
