// Package schema holds the declarative input of the event pipeline: plain
// data structures describing a provider and its events. The declaration is
// data, not an interface hierarchy; the compile step that turns it into
// bound write entry points lives in the runtime package.
package schema

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/internal/runtime/errors"
	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	"github.com/drblury/traceprov/sink"
)

// Field is one declared event field. Order within the event is load-bearing:
// it defines both the metadata layout and the payload layout, and reordering
// after compilation would corrupt decoding.
type Field struct {
	Name string
	Type fieldtype.Type
}

// EventDef declares one event: a name, its ordered field list, and the
// default level/keyword/opcode applied when a write call supplies no
// override.
type EventDef struct {
	Name    string
	Fields  []Field
	Level   sink.Level
	Keyword sink.Keyword
	Opcode  sink.Opcode
}

// ProviderDef declares a provider: a human-readable name, a 128-bit identity
// in the standard hyphenated hexadecimal grouping, and the ordered event
// list. Identity uniqueness across providers on a host is a caller
// obligation; constructing more than one provider instance per identity
// within a process is likewise documented, not enforced.
type ProviderDef struct {
	Name   string
	ID     string
	Events []EventDef
}

// Identity parses the declared provider identity.
func (d ProviderDef) Identity() (uuid.UUID, error) {
	if d.ID == "" {
		return uuid.UUID{}, errors.ErrProviderIDRequired
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %q", errors.ErrMalformedProviderID, d.ID)
	}
	return id, nil
}

// Validate rejects the whole provider definition on the first schema error:
// empty or duplicate event/field names, unsupported field types, malformed
// identity. Nothing here is recoverable at run time; a rejected definition
// never produces an instance.
func (d ProviderDef) Validate() error {
	if d.Name == "" {
		return errors.ErrProviderNameRequired
	}
	if _, err := d.Identity(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(d.Events))
	for _, ev := range d.Events {
		if ev.Name == "" {
			return errors.ErrEventNameRequired
		}
		if _, dup := seen[ev.Name]; dup {
			return fmt.Errorf("%w: %q", errors.ErrDuplicateEventName, ev.Name)
		}
		seen[ev.Name] = struct{}{}
		if err := ev.validate(); err != nil {
			return fmt.Errorf("event %q: %w", ev.Name, err)
		}
	}
	return nil
}

func (ev EventDef) validate() error {
	names := make(map[string]struct{}, len(ev.Fields))
	for _, f := range ev.Fields {
		if f.Name == "" {
			return errors.ErrFieldNameRequired
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("%w: %q", errors.ErrDuplicateFieldName, f.Name)
		}
		names[f.Name] = struct{}{}
		if err := f.Type.Validate(); err != nil {
			return fmt.Errorf("%w: field %q: %v", errors.ErrUnsupportedFieldType, f.Name, err)
		}
	}
	return nil
}

// Event returns the definition of the named event, if declared.
func (d ProviderDef) Event(name string) (EventDef, bool) {
	for _, ev := range d.Events {
		if ev.Name == name {
			return ev, true
		}
	}
	return EventDef{}, false
}
