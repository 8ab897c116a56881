// Package fieldtype enumerates the value types an event field may carry and
// the encoding rules for each: fixed-width scalars, uint16-counted sequences,
// and fixed-size compound values. The tag values match the TraceLogging
// self-describing metadata format consumed by downstream decoders.
package fieldtype

import (
	"fmt"
	"strings"
)

// Kind is the logical type of a single field value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	// KindIntPtr and KindUintPtr are platform-width integers at the call
	// site but always encode as 8 bytes so recorded events decode
	// identically on 32- and 64-bit hosts.
	KindIntPtr
	KindUintPtr
	// KindBool encodes as a 32-bit integer, 0 or 1.
	KindBool
	// KindString is a uint16-counted UTF-8 byte sequence (no terminator).
	KindString
	// KindBinary is a uint16-counted opaque byte sequence.
	KindBinary
	// KindFileTime is a 64-bit timestamp in 100ns ticks since 1601-01-01 UTC.
	KindFileTime
	// KindGUID is a 16-byte identifier in registry byte order.
	KindGUID
	// KindSockAddr4 is a 16-byte sockaddr_in: family, big-endian port,
	// 4 address bytes, 8 zero bytes.
	KindSockAddr4
	// KindSockAddr6 is a 28-byte sockaddr_in6: family, big-endian port,
	// flow info, 16 address bytes, scope id.
	KindSockAddr6
)

// Out is the display formatting hint carried next to the physical in-type in
// event metadata. It never changes the payload byte layout.
type Out uint8

const (
	OutDefault       Out = 0
	OutString        Out = 2
	OutBoolean       Out = 3
	OutHex           Out = 4
	OutPort          Out = 7
	OutIPv4          Out = 8
	OutIPv6          Out = 9
	OutSocketAddress Out = 10
	OutUTF8          Out = 35
)

// In-type tag values per the TraceLogging convention.
const (
	inInt8        = 3
	inUint8       = 4
	inInt16       = 5
	inUint16      = 6
	inInt32       = 7
	inUint32      = 8
	inInt64       = 9
	inUint64      = 10
	inFloat       = 11
	inDouble      = 12
	inBool32      = 13
	inGUID        = 15
	inFileTime    = 17
	inCountedANSI = 23
	inCountedBin  = 25

	// flagSequence marks a uint16-counted sequence of the scalar in-type
	// held in the low bits.
	flagSequence = 0x20
	// flagChain marks that an out-type byte follows. Every field entry we
	// emit carries one, so the flag is always set.
	flagChain = 0x80
)

// Type is one field's declared type: a kind, an optional sequence wrapper,
// and an output formatting hint. Immutable once constructed.
type Type struct {
	Kind Kind
	// Seq marks a uint16-counted sequence of Kind. Only fixed-width scalar
	// kinds may be wrapped.
	Seq bool
	Out Out
}

// Scalar constructors. The zero Out means "decoder default" for the kind.
func Int8() Type      { return Type{Kind: KindInt8} }
func Uint8() Type     { return Type{Kind: KindUint8} }
func Int16() Type     { return Type{Kind: KindInt16} }
func Uint16() Type    { return Type{Kind: KindUint16} }
func Int32() Type     { return Type{Kind: KindInt32} }
func Uint32() Type    { return Type{Kind: KindUint32} }
func Int64() Type     { return Type{Kind: KindInt64} }
func Uint64() Type    { return Type{Kind: KindUint64} }
func Float32() Type   { return Type{Kind: KindFloat32} }
func Float64() Type   { return Type{Kind: KindFloat64} }
func IntPtr() Type    { return Type{Kind: KindIntPtr} }
func UintPtr() Type   { return Type{Kind: KindUintPtr} }
func Bool() Type      { return Type{Kind: KindBool, Out: OutBoolean} }
func String() Type    { return Type{Kind: KindString, Out: OutUTF8} }
func Binary() Type    { return Type{Kind: KindBinary} }
func FileTime() Type  { return Type{Kind: KindFileTime} }
func GUID() Type      { return Type{Kind: KindGUID} }
func SockAddr4() Type { return Type{Kind: KindSockAddr4, Out: OutSocketAddress} }
func SockAddr6() Type { return Type{Kind: KindSockAddr6, Out: OutSocketAddress} }

// Hex returns a copy of t with hexadecimal display formatting.
func Hex(t Type) Type {
	t.Out = OutHex
	return t
}

// SequenceOf wraps a fixed-width scalar kind in a uint16-counted sequence.
func SequenceOf(k Kind) (Type, error) {
	t := Type{Kind: k, Seq: true}
	if _, ok := scalarWidth(k); !ok {
		return Type{}, fmt.Errorf("fieldtype: %s is not a fixed-width scalar, cannot form a sequence", kindName(k))
	}
	return t, nil
}

// Validate reports whether t is a supported type combination. Rejection here
// is a schema-compile error; no unsupported type ever reaches the encoders.
func (t Type) Validate() error {
	if t.Kind == KindInvalid || t.Kind > KindSockAddr6 {
		return fmt.Errorf("fieldtype: unsupported kind %d", t.Kind)
	}
	if t.Seq {
		if _, ok := scalarWidth(t.Kind); !ok {
			return fmt.Errorf("fieldtype: sequence of %s is not supported", kindName(t.Kind))
		}
	}
	return nil
}

// FixedWidth returns the payload width in bytes for fixed-width types, or
// false for counted (variable-length) types.
func (t Type) FixedWidth() (int, bool) {
	if t.Seq {
		return 0, false
	}
	switch t.Kind {
	case KindString, KindBinary, KindSockAddr4, KindSockAddr6:
		return 0, false
	}
	return scalarWidth(t.Kind)
}

// Counted reports whether the payload carries a uint16 element-count prefix.
func (t Type) Counted() bool {
	_, fixed := t.FixedWidth()
	return !fixed
}

// ElemWidth returns the packed element width for sequence types.
func (t Type) ElemWidth() int {
	if t.Seq {
		w, _ := scalarWidth(t.Kind)
		return w
	}
	return 1
}

// InTag returns the in-type metadata byte, including the sequence flag and
// the chain flag (an out-type byte always follows).
func (t Type) InTag() byte {
	tag := rawIn(t.Kind)
	if t.Seq {
		tag |= flagSequence
	}
	return tag | flagChain
}

// OutTag returns the out-type metadata byte.
func (t Type) OutTag() byte { return byte(t.Out) }

func rawIn(k Kind) byte {
	switch k {
	case KindInt8:
		return inInt8
	case KindUint8:
		return inUint8
	case KindInt16:
		return inInt16
	case KindUint16:
		return inUint16
	case KindInt32:
		return inInt32
	case KindUint32:
		return inUint32
	case KindInt64, KindIntPtr:
		return inInt64
	case KindUint64, KindUintPtr:
		return inUint64
	case KindFloat32:
		return inFloat
	case KindFloat64:
		return inDouble
	case KindBool:
		return inBool32
	case KindString:
		return inCountedANSI
	case KindBinary, KindSockAddr4, KindSockAddr6:
		return inCountedBin
	case KindFileTime:
		return inFileTime
	case KindGUID:
		return inGUID
	}
	return 0
}

func scalarWidth(k Kind) (int, bool) {
	switch k {
	case KindInt8, KindUint8:
		return 1, true
	case KindInt16, KindUint16:
		return 2, true
	case KindInt32, KindUint32, KindBool:
		return 4, true
	case KindInt64, KindUint64, KindIntPtr, KindUintPtr, KindFloat64, KindFileTime:
		return 8, true
	case KindFloat32:
		return 4, true
	case KindGUID:
		return 16, true
	}
	return 0, false
}

func kindName(k Kind) string {
	switch k {
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindInt16:
		return "int16"
	case KindUint16:
		return "uint16"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindIntPtr:
		return "intptr"
	case KindUintPtr:
		return "uintptr"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindFileTime:
		return "filetime"
	case KindGUID:
		return "guid"
	case KindSockAddr4:
		return "sockaddr4"
	case KindSockAddr6:
		return "sockaddr6"
	}
	return fmt.Sprintf("kind(%d)", k)
}

func (t Type) String() string {
	name := kindName(t.Kind)
	if t.Seq {
		name = "[]" + name
	}
	if t.Out == OutHex {
		name += ":hex"
	}
	return name
}

// Parse converts the textual form used by declaration files back into a Type.
// Accepted forms: a kind name ("uint64", "string", "sockaddr6"), a sequence
// ("[]uint32"), and a ":hex" display suffix on integer kinds.
func Parse(s string) (Type, error) {
	orig := s
	hex := false
	if rest, ok := strings.CutSuffix(s, ":hex"); ok {
		hex = true
		s = rest
	}
	seq := false
	if rest, ok := strings.CutPrefix(s, "[]"); ok {
		seq = true
		s = rest
	}
	k, ok := kindByName[s]
	if !ok {
		return Type{}, fmt.Errorf("fieldtype: unknown type %q", orig)
	}
	var t Type
	if seq {
		var err error
		t, err = SequenceOf(k)
		if err != nil {
			return Type{}, err
		}
	} else {
		t = Type{Kind: k, Out: defaultOut(k)}
	}
	if hex {
		if _, fixed := scalarWidth(k); !fixed || k == KindGUID || k == KindFloat32 || k == KindFloat64 {
			return Type{}, fmt.Errorf("fieldtype: %q does not support hex display", orig)
		}
		t.Out = OutHex
	}
	return t, nil
}

func defaultOut(k Kind) Out {
	switch k {
	case KindBool:
		return OutBoolean
	case KindString:
		return OutUTF8
	case KindSockAddr4, KindSockAddr6:
		return OutSocketAddress
	}
	return OutDefault
}

var kindByName = map[string]Kind{
	"int8":      KindInt8,
	"uint8":     KindUint8,
	"int16":     KindInt16,
	"uint16":    KindUint16,
	"int32":     KindInt32,
	"uint32":    KindUint32,
	"int64":     KindInt64,
	"uint64":    KindUint64,
	"float32":   KindFloat32,
	"float64":   KindFloat64,
	"intptr":    KindIntPtr,
	"uintptr":   KindUintPtr,
	"bool":      KindBool,
	"string":    KindString,
	"binary":    KindBinary,
	"filetime":  KindFileTime,
	"guid":      KindGUID,
	"sockaddr4": KindSockAddr4,
	"sockaddr6": KindSockAddr6,
}
