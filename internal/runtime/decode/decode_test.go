package decode

import (
	"errors"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	"github.com/drblury/traceprov/internal/runtime/metadata"
	"github.com/drblury/traceprov/internal/runtime/payload"
)

func mustEncodeEvent(t *testing.T, name string, fields []metadata.FieldSpec) []byte {
	t.Helper()
	blob, err := metadata.EncodeEvent(name, fields)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	return blob
}

func TestProvider(t *testing.T) {
	blob, err := metadata.EncodeProvider("MyCompany.MyService")
	if err != nil {
		t.Fatalf("EncodeProvider: %v", err)
	}
	name, err := Provider(blob)
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if name != "MyCompany.MyService" {
		t.Errorf("name = %q", name)
	}
}

func TestProviderMalformed(t *testing.T) {
	t.Run("short buffer", func(t *testing.T) {
		if _, err := Provider([]byte{5}); !errors.Is(err, ErrShortBuffer) {
			t.Errorf("err = %v, want ErrShortBuffer", err)
		}
	})
	t.Run("length prefix too large", func(t *testing.T) {
		if _, err := Provider([]byte{0xFF, 0xFF, 'a', 0}); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("missing terminator", func(t *testing.T) {
		if _, err := Provider([]byte{4, 0, 'a', 'b'}); !errors.Is(err, ErrShortBuffer) {
			t.Errorf("err = %v, want ErrShortBuffer", err)
		}
	})
}

func TestEventMetadata(t *testing.T) {
	fields := []metadata.FieldSpec{
		{Name: "requestCount", Type: fieldtype.Uint64()},
		{Name: "serverName", Type: fieldtype.String()},
		{Name: "flags", Type: fieldtype.Hex(fieldtype.Uint32())},
	}
	blob := mustEncodeEvent(t, "RequestProcessed", fields)

	name, descs, err := EventMetadata(blob)
	if err != nil {
		t.Fatalf("EventMetadata: %v", err)
	}
	if name != "RequestProcessed" {
		t.Errorf("name = %q", name)
	}
	if len(descs) != len(fields) {
		t.Fatalf("got %d fields, want %d", len(descs), len(fields))
	}
	for i, d := range descs {
		if d.Name != fields[i].Name {
			t.Errorf("field %d name = %q, want %q", i, d.Name, fields[i].Name)
		}
		if d.Type.InTag() != fields[i].Type.InTag() || d.Type.OutTag() != fields[i].Type.OutTag() {
			t.Errorf("field %d type = %+v, want %+v", i, d.Type, fields[i].Type)
		}
	}
}

func TestEventMetadataUnknownTag(t *testing.T) {
	blob := []byte{
		9, 0,
		'E', 'v', 0,
		'x', 0,
		0x80 | 31, 0, // unused in-type value
	}
	if _, _, err := EventMetadata(blob); !errors.Is(err, ErrBadTag) {
		t.Errorf("err = %v, want ErrBadTag", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	seqU32, _ := fieldtype.SequenceOf(fieldtype.KindUint32)
	when := time.Date(2026, 3, 14, 9, 26, 53, 500, time.UTC).Round(100 * time.Nanosecond)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	peer := netip.AddrPortFrom(netip.AddrFrom4([4]byte{10, 1, 2, 3}), 9000)

	fields := []metadata.FieldSpec{
		{Name: "count", Type: fieldtype.Uint64()},
		{Name: "name", Type: fieldtype.String()},
		{Name: "ok", Type: fieldtype.Bool()},
		{Name: "ratio", Type: fieldtype.Float64()},
		{Name: "blob", Type: fieldtype.Binary()},
		{Name: "when", Type: fieldtype.FileTime()},
		{Name: "session", Type: fieldtype.GUID()},
		{Name: "peer", Type: fieldtype.SockAddr4()},
		{Name: "codes", Type: seqU32},
	}
	values := []any{
		uint64(42), "db.local", true, 0.25, []byte{1, 2, 3},
		when, id, peer, []uint32{7, 8},
	}

	blob := mustEncodeEvent(t, "Snapshot", fields)
	data, err := payload.Encode(fields, values)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	ev, err := Record(blob, data)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ev.Name != "Snapshot" {
		t.Errorf("event name = %q", ev.Name)
	}
	if len(ev.Fields) != len(fields) {
		t.Fatalf("got %d fields, want %d", len(ev.Fields), len(fields))
	}
	for i, f := range ev.Fields {
		if f.Name != fields[i].Name {
			t.Errorf("field %d name = %q, want %q", i, f.Name, fields[i].Name)
		}
		if !reflect.DeepEqual(f.Value, values[i]) {
			t.Errorf("field %q = %#v (%T), want %#v (%T)", f.Name, f.Value, f.Value, values[i], values[i])
		}
	}
}

func TestRecordZeroFields(t *testing.T) {
	blob := mustEncodeEvent(t, "Heartbeat", nil)
	ev, err := Record(blob, nil)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ev.Name != "Heartbeat" || len(ev.Fields) != 0 {
		t.Errorf("ev = %+v", ev)
	}
}

func TestRecordSockAddr6(t *testing.T) {
	fields := []metadata.FieldSpec{{Name: "peer", Type: fieldtype.SockAddr6()}}
	ap := netip.AddrPortFrom(netip.MustParseAddr("2001:db8::42"), 8443)
	blob := mustEncodeEvent(t, "Connected", fields)
	data, err := payload.Encode(fields, []any{ap})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	ev, err := Record(blob, data)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := ev.Fields[0].Value; got != ap {
		t.Errorf("peer = %v, want %v", got, ap)
	}
}

func TestRecordTruncatedPayload(t *testing.T) {
	fields := []metadata.FieldSpec{{Name: "count", Type: fieldtype.Uint64()}}
	blob := mustEncodeEvent(t, "Ev", fields)
	if _, err := Record(blob, []byte{1, 2, 3}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("err = %v, want ErrShortBuffer", err)
	}
}

func TestRecordTrailingBytes(t *testing.T) {
	fields := []metadata.FieldSpec{{Name: "b", Type: fieldtype.Uint8()}}
	blob := mustEncodeEvent(t, "Ev", fields)
	if _, err := Record(blob, []byte{1, 2}); err == nil {
		t.Error("trailing payload bytes should fail")
	}
}

func TestRecordTruncatedCounted(t *testing.T) {
	fields := []metadata.FieldSpec{{Name: "s", Type: fieldtype.String()}}
	blob := mustEncodeEvent(t, "Ev", fields)
	// Count says 10 bytes, only 2 present.
	if _, err := Record(blob, []byte{10, 0, 'h', 'i'}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("err = %v, want ErrShortBuffer", err)
	}
}

func TestPointerWidthDecodesAsFixed64(t *testing.T) {
	fields := []metadata.FieldSpec{
		{Name: "sp", Type: fieldtype.IntPtr()},
		{Name: "bp", Type: fieldtype.UintPtr()},
	}
	blob := mustEncodeEvent(t, "Ptrs", fields)
	data, err := payload.Encode(fields, []any{-1, uintptr(7)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	ev, err := Record(blob, data)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	// The wire tags are the 64-bit ones, so the decoded Go types follow.
	if got, ok := ev.Fields[0].Value.(int64); !ok || got != -1 {
		t.Errorf("sp = %#v, want int64(-1)", ev.Fields[0].Value)
	}
	if got, ok := ev.Fields[1].Value.(uint64); !ok || got != 7 {
		t.Errorf("bp = %#v, want uint64(7)", ev.Fields[1].Value)
	}
}
