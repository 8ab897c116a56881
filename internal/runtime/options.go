package runtime

import (
	"github.com/google/uuid"

	"github.com/drblury/traceprov/sink"
)

// EventOptions carries per-call overrides for a single write: level,
// keyword, opcode, and the correlation pair. Every field is individually
// optional; anything not set falls back to the event's compiled-in default.
// Options never mutate the event descriptor and apply only to the one call
// they are passed to.
type EventOptions struct {
	level      sink.Level
	hasLevel   bool
	keyword    sink.Keyword
	hasKeyword bool
	opcode     sink.Opcode
	hasOpcode  bool

	activityID        *uuid.UUID
	relatedActivityID *uuid.UUID
}

// EventOption mutates an EventOptions under construction.
type EventOption func(*EventOptions)

// Options builds an EventOptions from the given overrides. A nil
// *EventOptions at a write call site means "all defaults".
func Options(opts ...EventOption) *EventOptions {
	eo := &EventOptions{}
	for _, opt := range opts {
		opt(eo)
	}
	return eo
}

// WithLevel overrides the event's default severity for this call.
// LevelAlways is a valid override that bypasses level filtering.
func WithLevel(l sink.Level) EventOption {
	return func(eo *EventOptions) {
		eo.level = l
		eo.hasLevel = true
	}
}

// WithKeyword overrides the event's default keyword bitmask for this call.
func WithKeyword(k sink.Keyword) EventOption {
	return func(eo *EventOptions) {
		eo.keyword = k
		eo.hasKeyword = true
	}
}

// WithOpcode overrides the event's default opcode for this call.
func WithOpcode(o sink.Opcode) EventOption {
	return func(eo *EventOptions) {
		eo.opcode = o
		eo.hasOpcode = true
	}
}

// WithActivity attaches an activity identifier linking this event into a
// correlation chain. The identifier is opaque to the pipeline.
func WithActivity(id uuid.UUID) EventOption {
	return func(eo *EventOptions) {
		eo.activityID = &id
	}
}

// WithRelatedActivity attaches the parent activity for transfer events.
func WithRelatedActivity(id uuid.UUID) EventOption {
	return func(eo *EventOptions) {
		eo.relatedActivityID = &id
	}
}
