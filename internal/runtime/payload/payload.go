// Package payload encodes one event invocation's field values into the
// binary payload matching the event's metadata layout. Field bytes are
// concatenated in declaration order with no padding or alignment between
// them; the downstream decoder walks the stream using the metadata blob, not
// natural alignment. All multi-byte integers are little-endian; this is a
// portability contract with the sink's decoding convention, not an
// incidental choice.
package payload

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/internal/runtime/errors"
	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	"github.com/drblury/traceprov/internal/runtime/metadata"
)

// MaxSequenceLen is the largest element count a counted sequence can carry.
const MaxSequenceLen = 0xFFFF

// Windows sockaddr address families, used so records decode identically
// regardless of the emitting host.
const (
	afInet  = 2
	afInet6 = 23
)

// filetimeEpochDelta is the offset between the Unix epoch and 1601-01-01 UTC
// in 100ns ticks.
const filetimeEpochDelta = 116444736000000000

// Encode produces the payload buffer for the given field list and the
// call's actual values. The value count and each value's type must match the
// field list by position; generated write entry points derive their
// parameter lists from the same descriptor, so a mismatch indicates a
// programming error at the call site and is reported rather than partially
// encoded. Encode performs no I/O and allocates exactly the buffer it
// returns.
func Encode(fields []metadata.FieldSpec, values []any) ([]byte, error) {
	if len(values) != len(fields) {
		return nil, fmt.Errorf("%w: got %d values for %d fields", errors.ErrValueMismatch, len(values), len(fields))
	}
	var b Builder
	for i, f := range fields {
		if err := b.Append(f.Type, values[i]); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return b.Bytes(), nil
}

// Conforms reports whether v's Go type is the one Append accepts for field
// type t, ignoring the value itself. Typed writer binders use it to verify
// declared kinds once at bind time.
func Conforms(t fieldtype.Type, v any) bool {
	if t.Seq {
		_, _, err := sequenceElems(t.Kind, v)
		return err == nil
	}
	switch t.Kind {
	case fieldtype.KindInt8:
		_, ok := v.(int8)
		return ok
	case fieldtype.KindUint8:
		_, ok := v.(uint8)
		return ok
	case fieldtype.KindInt16:
		_, ok := v.(int16)
		return ok
	case fieldtype.KindUint16:
		_, ok := v.(uint16)
		return ok
	case fieldtype.KindInt32:
		_, ok := v.(int32)
		return ok
	case fieldtype.KindUint32:
		_, ok := v.(uint32)
		return ok
	case fieldtype.KindInt64:
		_, ok := v.(int64)
		return ok
	case fieldtype.KindUint64:
		_, ok := v.(uint64)
		return ok
	case fieldtype.KindIntPtr:
		_, ok := v.(int)
		return ok
	case fieldtype.KindUintPtr:
		switch v.(type) {
		case uint, uintptr:
			return true
		}
		return false
	case fieldtype.KindFloat32:
		_, ok := v.(float32)
		return ok
	case fieldtype.KindFloat64:
		_, ok := v.(float64)
		return ok
	case fieldtype.KindBool:
		_, ok := v.(bool)
		return ok
	case fieldtype.KindString:
		_, ok := v.(string)
		return ok
	case fieldtype.KindBinary:
		_, ok := v.([]byte)
		return ok
	case fieldtype.KindFileTime:
		_, ok := v.(time.Time)
		return ok
	case fieldtype.KindGUID:
		_, ok := v.(uuid.UUID)
		return ok
	case fieldtype.KindSockAddr4, fieldtype.KindSockAddr6:
		_, ok := v.(netip.AddrPort)
		return ok
	}
	return false
}

// Builder accumulates encoded field values. The zero value is ready to use.
type Builder struct {
	buf []byte
}

// Bytes returns the accumulated payload.
func (b *Builder) Bytes() []byte {
	if b.buf == nil {
		return []byte{}
	}
	return b.buf
}

// Append encodes one value according to its declared type.
func (b *Builder) Append(t fieldtype.Type, v any) error {
	if t.Seq {
		return b.appendSequence(t, v)
	}
	switch t.Kind {
	case fieldtype.KindInt8:
		if x, ok := v.(int8); ok {
			b.buf = append(b.buf, byte(x))
			return nil
		}
	case fieldtype.KindUint8:
		if x, ok := v.(uint8); ok {
			b.buf = append(b.buf, x)
			return nil
		}
	case fieldtype.KindInt16:
		if x, ok := v.(int16); ok {
			b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(x))
			return nil
		}
	case fieldtype.KindUint16:
		if x, ok := v.(uint16); ok {
			b.buf = binary.LittleEndian.AppendUint16(b.buf, x)
			return nil
		}
	case fieldtype.KindInt32:
		if x, ok := v.(int32); ok {
			b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(x))
			return nil
		}
	case fieldtype.KindUint32:
		if x, ok := v.(uint32); ok {
			b.buf = binary.LittleEndian.AppendUint32(b.buf, x)
			return nil
		}
	case fieldtype.KindInt64:
		if x, ok := v.(int64); ok {
			b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(x))
			return nil
		}
	case fieldtype.KindUint64:
		if x, ok := v.(uint64); ok {
			b.buf = binary.LittleEndian.AppendUint64(b.buf, x)
			return nil
		}
	case fieldtype.KindIntPtr:
		// Platform-width at the call site, always 8 bytes on the wire.
		if x, ok := v.(int); ok {
			b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(int64(x)))
			return nil
		}
	case fieldtype.KindUintPtr:
		switch x := v.(type) {
		case uint:
			b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(x))
			return nil
		case uintptr:
			b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(x))
			return nil
		}
	case fieldtype.KindFloat32:
		if x, ok := v.(float32); ok {
			b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(x))
			return nil
		}
	case fieldtype.KindFloat64:
		if x, ok := v.(float64); ok {
			b.buf = binary.LittleEndian.AppendUint64(b.buf, math.Float64bits(x))
			return nil
		}
	case fieldtype.KindBool:
		if x, ok := v.(bool); ok {
			var n uint32
			if x {
				n = 1
			}
			b.buf = binary.LittleEndian.AppendUint32(b.buf, n)
			return nil
		}
	case fieldtype.KindString:
		if x, ok := v.(string); ok {
			return b.appendCounted([]byte(x))
		}
	case fieldtype.KindBinary:
		if x, ok := v.([]byte); ok {
			return b.appendCounted(x)
		}
	case fieldtype.KindFileTime:
		if x, ok := v.(time.Time); ok {
			b.buf = binary.LittleEndian.AppendUint64(b.buf, filetimeTicks(x))
			return nil
		}
	case fieldtype.KindGUID:
		if x, ok := v.(uuid.UUID); ok {
			b.buf = appendGUID(b.buf, x)
			return nil
		}
	case fieldtype.KindSockAddr4:
		if x, ok := v.(netip.AddrPort); ok {
			return b.appendSockAddr4(x)
		}
	case fieldtype.KindSockAddr6:
		if x, ok := v.(netip.AddrPort); ok {
			return b.appendSockAddr6(x)
		}
	}
	return fmt.Errorf("%w: %T is not assignable to %s", errors.ErrValueMismatch, v, t)
}

func (b *Builder) appendCounted(data []byte) error {
	if len(data) > MaxSequenceLen {
		return fmt.Errorf("%w: %d bytes", errors.ErrSequenceTooLong, len(data))
	}
	b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(len(data)))
	b.buf = append(b.buf, data...)
	return nil
}

func (b *Builder) appendSequence(t fieldtype.Type, v any) error {
	elem := fieldtype.Type{Kind: t.Kind}
	n, each, err := sequenceElems(t.Kind, v)
	if err != nil {
		return err
	}
	if n > MaxSequenceLen {
		return fmt.Errorf("%w: %d elements", errors.ErrSequenceTooLong, n)
	}
	b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(n))
	for i := 0; i < n; i++ {
		if err := b.Append(elem, each(i)); err != nil {
			return err
		}
	}
	return nil
}

// sequenceElems matches v against the slice type for the element kind and
// returns the length plus a positional accessor. Keeping this a type switch
// avoids reflection on the write path.
func sequenceElems(k fieldtype.Kind, v any) (int, func(int) any, error) {
	switch k {
	case fieldtype.KindInt8:
		if s, ok := v.([]int8); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindUint8:
		if s, ok := v.([]uint8); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindInt16:
		if s, ok := v.([]int16); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindUint16:
		if s, ok := v.([]uint16); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindInt32:
		if s, ok := v.([]int32); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindUint32:
		if s, ok := v.([]uint32); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindInt64:
		if s, ok := v.([]int64); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindUint64:
		if s, ok := v.([]uint64); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindFloat32:
		if s, ok := v.([]float32); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindFloat64:
		if s, ok := v.([]float64); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindBool:
		if s, ok := v.([]bool); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindFileTime:
		if s, ok := v.([]time.Time); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	case fieldtype.KindGUID:
		if s, ok := v.([]uuid.UUID); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: %T is not a sequence of the declared element type", errors.ErrValueMismatch, v)
}

func (b *Builder) appendSockAddr4(ap netip.AddrPort) error {
	addr := ap.Addr()
	if !addr.Is4() && !addr.Is4In6() {
		return fmt.Errorf("%w: %s is not an IPv4 address", errors.ErrValueMismatch, addr)
	}
	a4 := addr.Unmap().As4()
	body := make([]byte, 0, 16)
	body = binary.LittleEndian.AppendUint16(body, afInet)
	body = binary.BigEndian.AppendUint16(body, ap.Port()) // network order
	body = append(body, a4[:]...)
	body = append(body, make([]byte, 8)...) // sin_zero
	return b.appendCounted(body)
}

func (b *Builder) appendSockAddr6(ap netip.AddrPort) error {
	addr := ap.Addr()
	if !addr.Is6() {
		return fmt.Errorf("%w: %s is not an IPv6 address", errors.ErrValueMismatch, addr)
	}
	a16 := addr.As16()
	body := make([]byte, 0, 28)
	body = binary.LittleEndian.AppendUint16(body, afInet6)
	body = binary.BigEndian.AppendUint16(body, ap.Port()) // network order
	body = binary.LittleEndian.AppendUint32(body, 0)      // flow info
	body = append(body, a16[:]...)
	body = binary.LittleEndian.AppendUint32(body, 0) // scope id
	return b.appendCounted(body)
}

// filetimeTicks converts t to 100ns ticks since 1601-01-01 UTC.
func filetimeTicks(t time.Time) uint64 {
	return uint64(t.UnixNano()/100 + filetimeEpochDelta)
}

// FileTimeToTime is the inverse of the filetime encoding, shared with the
// reference decoder.
func FileTimeToTime(ticks uint64) time.Time {
	return time.Unix(0, (int64(ticks)-filetimeEpochDelta)*100).UTC()
}

// appendGUID writes the registry (mixed-endian) GUID layout: the first three
// groups little-endian, the final eight bytes as-is.
func appendGUID(buf []byte, id uuid.UUID) []byte {
	buf = append(buf, id[3], id[2], id[1], id[0])
	buf = append(buf, id[5], id[4])
	buf = append(buf, id[7], id[6])
	return append(buf, id[8:]...)
}

// GUIDFromWire reverses appendGUID.
func GUIDFromWire(b [16]byte) uuid.UUID {
	return uuid.UUID{
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15],
	}
}
