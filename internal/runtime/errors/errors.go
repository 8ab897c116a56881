package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrProviderNameRequired = sterrors.New("traceprov: provider name is required")
	ErrProviderIDRequired   = sterrors.New("traceprov: provider identity is required")
	ErrMalformedProviderID  = sterrors.New("traceprov: provider identity is not a valid GUID")
	ErrEventNameRequired    = sterrors.New("traceprov: event name is required")
	ErrDuplicateEventName   = sterrors.New("traceprov: duplicate event name")
	ErrFieldNameRequired    = sterrors.New("traceprov: field name is required")
	ErrDuplicateFieldName   = sterrors.New("traceprov: duplicate field name")
	ErrUnsupportedFieldType = sterrors.New("traceprov: unsupported field type")
	ErrUnknownEvent         = sterrors.New("traceprov: unknown event")
	ErrSinkRequired         = sterrors.New("traceprov: sink is required")
	ErrLoggerRequired       = sterrors.New("traceprov: logger is required")
	ErrProviderClosed       = sterrors.New("traceprov: provider is closed")
	ErrValueMismatch        = sterrors.New("traceprov: value does not match declared field type")
	ErrSequenceTooLong      = sterrors.New("traceprov: sequence exceeds 65535 elements")
)

// ConfigValidationError reports a rejected configuration field.
type ConfigValidationError struct {
	Field  string
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("traceprov: invalid config field %s: %s", e.Field, e.Reason)
}
