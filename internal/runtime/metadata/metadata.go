// Package metadata builds the self-describing binary blobs that identify a
// provider and describe each event's shape. Both encoders are pure functions
// of their input: equal input yields byte-identical output, so blobs are
// built once at schema-compile time and shared read-only for the provider's
// lifetime.
package metadata

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/drblury/traceprov/internal/runtime/fieldtype"
)

// FieldSpec is one (name, type) entry of an event's field list in
// declaration order. The order is load-bearing: it fixes both the metadata
// layout and the payload layout.
type FieldSpec struct {
	Name string
	Type fieldtype.Type
}

// EncodeProvider serializes the provider identification blob: a uint16
// little-endian total length (including the prefix itself) followed by the
// provider name as a null-terminated byte string.
func EncodeProvider(name string) ([]byte, error) {
	if err := checkName("provider", name); err != nil {
		return nil, err
	}
	total := 2 + len(name) + 1
	if total > 0xFFFF {
		return nil, fmt.Errorf("metadata: provider %q metadata exceeds 65535 bytes", name)
	}
	buf := make([]byte, 0, total)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(total))
	buf = append(buf, name...)
	buf = append(buf, 0)
	return buf, nil
}

// EncodeEvent serializes one event's metadata blob: uint16 little-endian
// total length, event name null-terminated, then one entry per field in
// declaration order: field name null-terminated, in-type tag byte, out-type
// tag byte. An event with no fields carries only the length and name.
func EncodeEvent(name string, fields []FieldSpec) ([]byte, error) {
	if err := checkName("event", name); err != nil {
		return nil, err
	}
	total := 2 + len(name) + 1
	for _, f := range fields {
		if err := checkName("field", f.Name); err != nil {
			return nil, err
		}
		if err := f.Type.Validate(); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		total += len(f.Name) + 1 + 2
	}
	if total > 0xFFFF {
		return nil, fmt.Errorf("metadata: event %q metadata exceeds 65535 bytes", name)
	}
	buf := make([]byte, 0, total)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(total))
	buf = append(buf, name...)
	buf = append(buf, 0)
	for _, f := range fields {
		buf = append(buf, f.Name...)
		buf = append(buf, 0)
		buf = append(buf, f.Type.InTag(), f.Type.OutTag())
	}
	return buf, nil
}

func checkName(what, name string) error {
	if name == "" {
		return fmt.Errorf("metadata: %s name is empty", what)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("metadata: %s name %q contains a NUL byte", what, name)
	}
	return nil
}
