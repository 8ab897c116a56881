package errors

import "testing"

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrProviderNameRequired", ErrProviderNameRequired, "traceprov: provider name is required"},
		{"ErrProviderIDRequired", ErrProviderIDRequired, "traceprov: provider identity is required"},
		{"ErrMalformedProviderID", ErrMalformedProviderID, "traceprov: provider identity is not a valid GUID"},
		{"ErrEventNameRequired", ErrEventNameRequired, "traceprov: event name is required"},
		{"ErrDuplicateEventName", ErrDuplicateEventName, "traceprov: duplicate event name"},
		{"ErrFieldNameRequired", ErrFieldNameRequired, "traceprov: field name is required"},
		{"ErrDuplicateFieldName", ErrDuplicateFieldName, "traceprov: duplicate field name"},
		{"ErrUnsupportedFieldType", ErrUnsupportedFieldType, "traceprov: unsupported field type"},
		{"ErrUnknownEvent", ErrUnknownEvent, "traceprov: unknown event"},
		{"ErrSinkRequired", ErrSinkRequired, "traceprov: sink is required"},
		{"ErrLoggerRequired", ErrLoggerRequired, "traceprov: logger is required"},
		{"ErrProviderClosed", ErrProviderClosed, "traceprov: provider is closed"},
		{"ErrValueMismatch", ErrValueMismatch, "traceprov: value does not match declared field type"},
		{"ErrSequenceTooLong", ErrSequenceTooLong, "traceprov: sequence exceeds 65535 elements"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigValidationError(t *testing.T) {
	err := &ConfigValidationError{Field: "BusTopic", Reason: "must be set for the bus sink"}
	want := "traceprov: invalid config field BusTopic: must be set for the bus sink"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
