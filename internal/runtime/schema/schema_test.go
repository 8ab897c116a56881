package schema

import (
	"errors"
	"testing"

	errspkg "github.com/drblury/traceprov/internal/runtime/errors"
	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	"github.com/drblury/traceprov/sink"
)

func validDef() ProviderDef {
	return ProviderDef{
		Name: "MyCompany.MyService",
		ID:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Events: []EventDef{
			{
				Name:  "RequestProcessed",
				Level: sink.LevelInfo,
				Fields: []Field{
					{Name: "requestCount", Type: fieldtype.Uint64()},
					{Name: "serverName", Type: fieldtype.String()},
				},
			},
			{Name: "Heartbeat", Level: sink.LevelVerbose},
		},
	}
}

func TestValidateAcceptsWellFormedDef(t *testing.T) {
	if err := validDef().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProviderDef)
		want   error
	}{
		{"empty provider name", func(d *ProviderDef) { d.Name = "" }, errspkg.ErrProviderNameRequired},
		{"empty identity", func(d *ProviderDef) { d.ID = "" }, errspkg.ErrProviderIDRequired},
		{"malformed identity", func(d *ProviderDef) { d.ID = "not-a-guid" }, errspkg.ErrMalformedProviderID},
		{"empty event name", func(d *ProviderDef) { d.Events[0].Name = "" }, errspkg.ErrEventNameRequired},
		{"duplicate event name", func(d *ProviderDef) { d.Events[1].Name = d.Events[0].Name }, errspkg.ErrDuplicateEventName},
		{"empty field name", func(d *ProviderDef) { d.Events[0].Fields[0].Name = "" }, errspkg.ErrFieldNameRequired},
		{"duplicate field name", func(d *ProviderDef) { d.Events[0].Fields[1].Name = "requestCount" }, errspkg.ErrDuplicateFieldName},
		{"unsupported field type", func(d *ProviderDef) { d.Events[0].Fields[0].Type = fieldtype.Type{} }, errspkg.ErrUnsupportedFieldType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDef()
			tt.mutate(&def)
			if err := def.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	def := validDef()
	id, err := def.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id.String() != def.ID {
		t.Errorf("Identity() = %s, want %s", id, def.ID)
	}
}

func TestEventLookup(t *testing.T) {
	def := validDef()
	ev, ok := def.Event("Heartbeat")
	if !ok || ev.Name != "Heartbeat" {
		t.Errorf("Event(Heartbeat) = (%+v, %v)", ev, ok)
	}
	if _, ok := def.Event("Missing"); ok {
		t.Error("Event(Missing) should not be found")
	}
}
