package metadata

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/drblury/traceprov/internal/runtime/fieldtype"
)

func TestEncodeProvider(t *testing.T) {
	blob, err := EncodeProvider("MyCompany.MyService")
	if err != nil {
		t.Fatalf("EncodeProvider: %v", err)
	}

	wantLen := 2 + len("MyCompany.MyService") + 1
	if got := binary.LittleEndian.Uint16(blob[:2]); int(got) != wantLen {
		t.Errorf("length prefix = %d, want %d", got, wantLen)
	}
	if len(blob) != wantLen {
		t.Errorf("blob length = %d, want %d", len(blob), wantLen)
	}
	if !bytes.Equal(blob[2:], append([]byte("MyCompany.MyService"), 0)) {
		t.Errorf("body = %q, want name with NUL terminator", blob[2:])
	}
}

func TestEncodeProviderRejectsBadNames(t *testing.T) {
	if _, err := EncodeProvider(""); err == nil {
		t.Error("empty name should fail")
	}
	if _, err := EncodeProvider("a\x00b"); err == nil {
		t.Error("embedded NUL should fail")
	}
}

func TestEncodeEvent(t *testing.T) {
	fields := []FieldSpec{
		{Name: "requestCount", Type: fieldtype.Uint64()},
		{Name: "serverName", Type: fieldtype.String()},
	}
	blob, err := EncodeEvent("RequestProcessed", fields)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	var want []byte
	want = binary.LittleEndian.AppendUint16(want, uint16(len(blob)))
	want = append(want, "RequestProcessed\x00"...)
	want = append(want, "requestCount\x00"...)
	want = append(want, 0x8A, 0x00)
	want = append(want, "serverName\x00"...)
	want = append(want, 0x97, 0x23)
	if !bytes.Equal(blob, want) {
		t.Errorf("blob = % X\nwant   % X", blob, want)
	}
}

func TestEncodeEventNoFields(t *testing.T) {
	blob, err := EncodeEvent("Heartbeat", nil)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	wantLen := 2 + len("Heartbeat") + 1
	if len(blob) != wantLen {
		t.Errorf("blob length = %d, want %d", len(blob), wantLen)
	}
	if got := binary.LittleEndian.Uint16(blob[:2]); int(got) != wantLen {
		t.Errorf("length prefix = %d, want %d", got, wantLen)
	}
}

func TestEncodeEventDeterministic(t *testing.T) {
	fields := []FieldSpec{
		{Name: "a", Type: fieldtype.Int32()},
		{Name: "b", Type: fieldtype.Binary()},
	}
	first, err := EncodeEvent("Ev", fields)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	second, err := EncodeEvent("Ev", fields)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("equal input must produce byte-identical blobs")
	}
}

func TestEncodeEventValidation(t *testing.T) {
	tests := []struct {
		name   string
		event  string
		fields []FieldSpec
	}{
		{"empty event name", "", nil},
		{"NUL in event name", "bad\x00name", nil},
		{"empty field name", "Ev", []FieldSpec{{Name: "", Type: fieldtype.Int32()}}},
		{"NUL in field name", "Ev", []FieldSpec{{Name: "x\x00y", Type: fieldtype.Int32()}}},
		{"invalid field type", "Ev", []FieldSpec{{Name: "x", Type: fieldtype.Type{}}}},
		{"sequence of counted type", "Ev", []FieldSpec{{Name: "x", Type: fieldtype.Type{Kind: fieldtype.KindString, Seq: true}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeEvent(tt.event, tt.fields); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeProviderOversized(t *testing.T) {
	// A name this long would wrap the uint16 length prefix and yield a
	// blob no decoder can read.
	if _, err := EncodeProvider(strings.Repeat("a", 70000)); err == nil {
		t.Error("metadata above 65535 bytes should fail")
	}
}

func TestEncodeEventOversized(t *testing.T) {
	long := strings.Repeat("x", 300)
	var fields []FieldSpec
	for i := 0; i < 250; i++ {
		fields = append(fields, FieldSpec{Name: long + strings.Repeat("y", i+1), Type: fieldtype.Uint8()})
	}
	if _, err := EncodeEvent("Big", fields); err == nil {
		t.Error("metadata above 65535 bytes should fail")
	}
}
