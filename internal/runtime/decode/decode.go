// Package decode is the reference decoder for the self-describing record
// format: it walks a payload using nothing but the paired metadata blob.
// Unlike the encoders, decoding is a tool surface rather than a hot path,
// so it reports malformed input as errors.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	"github.com/drblury/traceprov/internal/runtime/payload"
)

var (
	ErrShortBuffer = errors.New("decode: buffer too short")
	ErrBadTag      = errors.New("decode: unknown type tag")
)

// FieldValue is one decoded (name, value) pair in declaration order.
type FieldValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Event is a fully decoded record.
type Event struct {
	Name   string       `json:"name"`
	Fields []FieldValue `json:"fields"`
}

// FieldDesc is one field entry recovered from an event metadata blob.
type FieldDesc struct {
	Name string
	Type fieldtype.Type
}

// Provider recovers the provider name from a provider metadata blob.
func Provider(blob []byte) (string, error) {
	body, err := blobBody(blob)
	if err != nil {
		return "", err
	}
	name, rest, err := cstring(body)
	if err != nil {
		return "", err
	}
	if len(rest) != 0 {
		return "", fmt.Errorf("decode: %d trailing bytes after provider name", len(rest))
	}
	return name, nil
}

// EventMetadata recovers the event name and field descriptors from an event
// metadata blob.
func EventMetadata(blob []byte) (string, []FieldDesc, error) {
	body, err := blobBody(blob)
	if err != nil {
		return "", nil, err
	}
	name, rest, err := cstring(body)
	if err != nil {
		return "", nil, err
	}
	var fields []FieldDesc
	for len(rest) > 0 {
		var fname string
		fname, rest, err = cstring(rest)
		if err != nil {
			return "", nil, err
		}
		if len(rest) < 2 {
			return "", nil, ErrShortBuffer
		}
		ft, err := typeFromTags(rest[0], rest[1])
		if err != nil {
			return "", nil, fmt.Errorf("field %q: %w", fname, err)
		}
		rest = rest[2:]
		fields = append(fields, FieldDesc{Name: fname, Type: ft})
	}
	return name, fields, nil
}

// Record decodes a payload against its event metadata blob, yielding the
// event name and the original field values.
func Record(metadataBlob, data []byte) (Event, error) {
	name, fields, err := EventMetadata(metadataBlob)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Name: name}
	for _, f := range fields {
		v, rest, err := value(f.Type, data)
		if err != nil {
			return Event{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		data = rest
		ev.Fields = append(ev.Fields, FieldValue{Name: f.Name, Value: v})
	}
	if len(data) != 0 {
		return Event{}, fmt.Errorf("decode: %d trailing payload bytes", len(data))
	}
	return ev, nil
}

func blobBody(blob []byte) ([]byte, error) {
	if len(blob) < 2 {
		return nil, ErrShortBuffer
	}
	total := int(binary.LittleEndian.Uint16(blob))
	if total < 2 || total > len(blob) {
		return nil, fmt.Errorf("decode: blob length prefix %d out of range", total)
	}
	// The length prefix lets a decoder skip blobs it does not understand;
	// here we decode exactly one.
	return blob[2:total], nil
}

func cstring(b []byte) (string, []byte, error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), b[i+1:], nil
		}
	}
	return "", nil, fmt.Errorf("%w: missing NUL terminator", ErrShortBuffer)
}

func typeFromTags(in, out byte) (fieldtype.Type, error) {
	seq := in&0x20 != 0
	raw := in &^ byte(0xA0)
	o := fieldtype.Out(out)
	var k fieldtype.Kind
	switch raw {
	case 3:
		k = fieldtype.KindInt8
	case 4:
		k = fieldtype.KindUint8
	case 5:
		k = fieldtype.KindInt16
	case 6:
		k = fieldtype.KindUint16
	case 7:
		k = fieldtype.KindInt32
	case 8:
		k = fieldtype.KindUint32
	case 9:
		k = fieldtype.KindInt64
	case 10:
		k = fieldtype.KindUint64
	case 11:
		k = fieldtype.KindFloat32
	case 12:
		k = fieldtype.KindFloat64
	case 13:
		k = fieldtype.KindBool
	case 15:
		k = fieldtype.KindGUID
	case 17:
		k = fieldtype.KindFileTime
	case 23:
		k = fieldtype.KindString
	case 25:
		// Counted binary doubles as the socket address carrier; the out
		// tag disambiguates, the length disambiguates v4 from v6.
		if o == fieldtype.OutSocketAddress {
			k = fieldtype.KindSockAddr4
		} else {
			k = fieldtype.KindBinary
		}
	default:
		return fieldtype.Type{}, fmt.Errorf("%w: in=0x%02x", ErrBadTag, in)
	}
	t := fieldtype.Type{Kind: k, Seq: seq, Out: o}
	if err := t.Validate(); err != nil {
		return fieldtype.Type{}, err
	}
	return t, nil
}

func value(t fieldtype.Type, b []byte) (any, []byte, error) {
	if t.Seq {
		return sequenceValue(t.Kind, b)
	}
	switch t.Kind {
	case fieldtype.KindString:
		body, rest, err := counted(b)
		if err != nil {
			return nil, nil, err
		}
		return string(body), rest, nil
	case fieldtype.KindBinary:
		body, rest, err := counted(b)
		if err != nil {
			return nil, nil, err
		}
		out := make([]byte, len(body))
		copy(out, body)
		return out, rest, nil
	case fieldtype.KindSockAddr4, fieldtype.KindSockAddr6:
		body, rest, err := counted(b)
		if err != nil {
			return nil, nil, err
		}
		ap, err := sockAddr(body)
		if err != nil {
			return nil, nil, err
		}
		return ap, rest, nil
	}
	return scalarValue(t.Kind, b)
}

func scalarValue(k fieldtype.Kind, b []byte) (any, []byte, error) {
	width := scalarKindWidth(k)
	if width == 0 {
		return nil, nil, fmt.Errorf("%w: kind %d", ErrBadTag, k)
	}
	if len(b) < width {
		return nil, nil, ErrShortBuffer
	}
	raw, rest := b[:width], b[width:]
	switch k {
	case fieldtype.KindInt8:
		return int8(raw[0]), rest, nil
	case fieldtype.KindUint8:
		return raw[0], rest, nil
	case fieldtype.KindInt16:
		return int16(binary.LittleEndian.Uint16(raw)), rest, nil
	case fieldtype.KindUint16:
		return binary.LittleEndian.Uint16(raw), rest, nil
	case fieldtype.KindInt32:
		return int32(binary.LittleEndian.Uint32(raw)), rest, nil
	case fieldtype.KindUint32:
		return binary.LittleEndian.Uint32(raw), rest, nil
	case fieldtype.KindInt64, fieldtype.KindIntPtr:
		return int64(binary.LittleEndian.Uint64(raw)), rest, nil
	case fieldtype.KindUint64, fieldtype.KindUintPtr:
		return binary.LittleEndian.Uint64(raw), rest, nil
	case fieldtype.KindFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(raw)), rest, nil
	case fieldtype.KindFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), rest, nil
	case fieldtype.KindBool:
		return binary.LittleEndian.Uint32(raw) != 0, rest, nil
	case fieldtype.KindFileTime:
		return payload.FileTimeToTime(binary.LittleEndian.Uint64(raw)), rest, nil
	case fieldtype.KindGUID:
		var g [16]byte
		copy(g[:], raw)
		return payload.GUIDFromWire(g), rest, nil
	}
	return nil, nil, fmt.Errorf("%w: kind %d", ErrBadTag, k)
}

func scalarKindWidth(k fieldtype.Kind) int {
	t := fieldtype.Type{Kind: k}
	if w, ok := t.FixedWidth(); ok {
		return w
	}
	return 0
}

func sequenceValue(k fieldtype.Kind, b []byte) (any, []byte, error) {
	if len(b) < 2 {
		return nil, nil, ErrShortBuffer
	}
	n := int(binary.LittleEndian.Uint16(b))
	rest := b[2:]
	elems := make([]any, 0, n)
	for i := 0; i < n; i++ {
		var (
			v   any
			err error
		)
		v, rest, err = scalarValue(k, rest)
		if err != nil {
			return nil, nil, err
		}
		elems = append(elems, v)
	}
	return typedSlice(k, elems), rest, nil
}

// typedSlice converts []any back to the slice type the encoder accepted, so
// round-trip comparisons are exact.
func typedSlice(k fieldtype.Kind, elems []any) any {
	switch k {
	case fieldtype.KindInt8:
		return collect[int8](elems)
	case fieldtype.KindUint8:
		return collect[uint8](elems)
	case fieldtype.KindInt16:
		return collect[int16](elems)
	case fieldtype.KindUint16:
		return collect[uint16](elems)
	case fieldtype.KindInt32:
		return collect[int32](elems)
	case fieldtype.KindUint32:
		return collect[uint32](elems)
	case fieldtype.KindInt64:
		return collect[int64](elems)
	case fieldtype.KindUint64:
		return collect[uint64](elems)
	case fieldtype.KindFloat32:
		return collect[float32](elems)
	case fieldtype.KindFloat64:
		return collect[float64](elems)
	case fieldtype.KindBool:
		return collect[bool](elems)
	case fieldtype.KindFileTime:
		return collect[time.Time](elems)
	case fieldtype.KindGUID:
		return collect[uuid.UUID](elems)
	}
	return elems
}

func collect[T any](elems []any) []T {
	out := make([]T, len(elems))
	for i, e := range elems {
		out[i] = e.(T)
	}
	return out
}

func counted(b []byte) ([]byte, []byte, error) {
	if len(b) < 2 {
		return nil, nil, ErrShortBuffer
	}
	n := int(binary.LittleEndian.Uint16(b))
	if len(b) < 2+n {
		return nil, nil, ErrShortBuffer
	}
	return b[2 : 2+n], b[2+n:], nil
}

func sockAddr(body []byte) (netip.AddrPort, error) {
	if len(body) < 2 {
		return netip.AddrPort{}, ErrShortBuffer
	}
	family := binary.LittleEndian.Uint16(body)
	switch {
	case family == 2 && len(body) == 16:
		port := binary.BigEndian.Uint16(body[2:4])
		var a4 [4]byte
		copy(a4[:], body[4:8])
		return netip.AddrPortFrom(netip.AddrFrom4(a4), port), nil
	case family == 23 && len(body) == 28:
		port := binary.BigEndian.Uint16(body[2:4])
		var a16 [16]byte
		copy(a16[:], body[8:24])
		return netip.AddrPortFrom(netip.AddrFrom16(a16), port), nil
	}
	return netip.AddrPort{}, fmt.Errorf("decode: bad socket address (family=%d len=%d)", family, len(body))
}
