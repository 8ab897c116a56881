package runtime

import (
	"fmt"

	errspkg "github.com/drblury/traceprov/internal/runtime/errors"
	"github.com/drblury/traceprov/internal/runtime/payload"
)

// The WriterN binders are the generated write entry points: each returns a
// closure over the compiled event whose parameter list is exactly the
// event's declared fields plus the leading optional EventOptions. The Go
// types are checked against the declared field kinds once, at bind time, so
// a call-site type mismatch cannot reach the data encoder at all. Binders
// are meant to run right after New, alongside the rest of schema
// compilation.

// Writer0 binds a zero-field event. Every call produces a zero-length
// payload.
func Writer0(e *Event) (func(opts *EventOptions), error) {
	if err := checkArity(e, 0); err != nil {
		return nil, err
	}
	return func(opts *EventOptions) {
		e.Write(opts)
	}, nil
}

// Writer1 binds a one-field event.
func Writer1[A any](e *Event) (func(opts *EventOptions, a A), error) {
	if err := checkArity(e, 1); err != nil {
		return nil, err
	}
	if err := checkField[A](e, 0); err != nil {
		return nil, err
	}
	return func(opts *EventOptions, a A) {
		e.Write(opts, a)
	}, nil
}

// Writer2 binds a two-field event.
func Writer2[A, B any](e *Event) (func(opts *EventOptions, a A, b B), error) {
	if err := checkArity(e, 2); err != nil {
		return nil, err
	}
	if err := checkField[A](e, 0); err != nil {
		return nil, err
	}
	if err := checkField[B](e, 1); err != nil {
		return nil, err
	}
	return func(opts *EventOptions, a A, b B) {
		e.Write(opts, a, b)
	}, nil
}

// Writer3 binds a three-field event.
func Writer3[A, B, C any](e *Event) (func(opts *EventOptions, a A, b B, c C), error) {
	if err := checkArity(e, 3); err != nil {
		return nil, err
	}
	if err := checkField[A](e, 0); err != nil {
		return nil, err
	}
	if err := checkField[B](e, 1); err != nil {
		return nil, err
	}
	if err := checkField[C](e, 2); err != nil {
		return nil, err
	}
	return func(opts *EventOptions, a A, b B, c C) {
		e.Write(opts, a, b, c)
	}, nil
}

// Writer4 binds a four-field event.
func Writer4[A, B, C, D any](e *Event) (func(opts *EventOptions, a A, b B, c C, d D), error) {
	if err := checkArity(e, 4); err != nil {
		return nil, err
	}
	if err := checkField[A](e, 0); err != nil {
		return nil, err
	}
	if err := checkField[B](e, 1); err != nil {
		return nil, err
	}
	if err := checkField[C](e, 2); err != nil {
		return nil, err
	}
	if err := checkField[D](e, 3); err != nil {
		return nil, err
	}
	return func(opts *EventOptions, a A, b B, c C, d D) {
		e.Write(opts, a, b, c, d)
	}, nil
}

func checkArity(e *Event, n int) error {
	if len(e.fields) != n {
		return fmt.Errorf("%w: event %q declares %d fields, binder takes %d",
			errspkg.ErrValueMismatch, e.name, len(e.fields), n)
	}
	return nil
}

func checkField[T any](e *Event, i int) error {
	var zero T
	f := e.fields[i]
	if !payload.Conforms(f.Type, zero) {
		return fmt.Errorf("%w: event %q field %q declared %s, binder supplies %T",
			errspkg.ErrValueMismatch, e.name, f.Name, f.Type, zero)
	}
	return nil
}
