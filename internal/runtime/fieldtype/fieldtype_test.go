package fieldtype

import "testing"

func TestInTag(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want byte
	}{
		{"int8", Int8(), 0x83},
		{"uint8", Uint8(), 0x84},
		{"int16", Int16(), 0x85},
		{"uint16", Uint16(), 0x86},
		{"int32", Int32(), 0x87},
		{"uint32", Uint32(), 0x88},
		{"int64", Int64(), 0x89},
		{"uint64", Uint64(), 0x8A},
		{"float32", Float32(), 0x8B},
		{"float64", Float64(), 0x8C},
		{"bool", Bool(), 0x8D},
		{"guid", GUID(), 0x8F},
		{"filetime", FileTime(), 0x91},
		{"string", String(), 0x97},
		{"binary", Binary(), 0x99},
		{"sockaddr4", SockAddr4(), 0x99},
		{"sockaddr6", SockAddr6(), 0x99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.InTag(); got != tt.want {
				t.Errorf("InTag() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestPointerWidthKindsShareWireTags(t *testing.T) {
	// Pointer-width integers always record as 8-byte values, so their wire
	// tags are the 64-bit ones.
	if got := IntPtr().InTag(); got != Int64().InTag() {
		t.Errorf("IntPtr InTag = 0x%02X, want same as Int64 0x%02X", got, Int64().InTag())
	}
	if got := UintPtr().InTag(); got != Uint64().InTag() {
		t.Errorf("UintPtr InTag = 0x%02X, want same as Uint64 0x%02X", got, Uint64().InTag())
	}
}

func TestSequenceTag(t *testing.T) {
	seq, err := SequenceOf(KindUint32)
	if err != nil {
		t.Fatalf("SequenceOf(KindUint32): %v", err)
	}
	// Scalar tag 0x88 plus the sequence flag.
	if got := seq.InTag(); got != 0xA8 {
		t.Errorf("InTag() = 0x%02X, want 0xA8", got)
	}
}

func TestSequenceOfRejectsCountedKinds(t *testing.T) {
	for _, k := range []Kind{KindString, KindBinary, KindSockAddr4, KindSockAddr6} {
		if _, err := SequenceOf(k); err == nil {
			t.Errorf("SequenceOf(%s) should fail", kindName(k))
		}
	}
}

func TestOutTagDefaults(t *testing.T) {
	if got := Bool().OutTag(); got != byte(OutBoolean) {
		t.Errorf("Bool out tag = %d, want %d", got, OutBoolean)
	}
	if got := String().OutTag(); got != byte(OutUTF8) {
		t.Errorf("String out tag = %d, want %d", got, OutUTF8)
	}
	if got := SockAddr4().OutTag(); got != byte(OutSocketAddress) {
		t.Errorf("SockAddr4 out tag = %d, want %d", got, OutSocketAddress)
	}
	if got := Uint64().OutTag(); got != byte(OutDefault) {
		t.Errorf("Uint64 out tag = %d, want %d", got, OutDefault)
	}
}

func TestHex(t *testing.T) {
	typ := Hex(Uint32())
	if typ.Out != OutHex {
		t.Errorf("Out = %d, want OutHex", typ.Out)
	}
	// The physical type stays put.
	if typ.InTag() != Uint32().InTag() {
		t.Error("Hex() must not change the in-type")
	}
}

func TestFixedWidth(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		width int
		fixed bool
	}{
		{"int8", Int8(), 1, true},
		{"uint16", Uint16(), 2, true},
		{"int32", Int32(), 4, true},
		{"bool", Bool(), 4, true},
		{"float32", Float32(), 4, true},
		{"uint64", Uint64(), 8, true},
		{"float64", Float64(), 8, true},
		{"intptr", IntPtr(), 8, true},
		{"filetime", FileTime(), 8, true},
		{"guid", GUID(), 16, true},
		{"string", String(), 0, false},
		{"binary", Binary(), 0, false},
		{"sockaddr4", SockAddr4(), 0, false},
		{"sockaddr6", SockAddr6(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, fixed := tt.typ.FixedWidth()
			if fixed != tt.fixed || w != tt.width {
				t.Errorf("FixedWidth() = (%d, %v), want (%d, %v)", w, fixed, tt.width, tt.fixed)
			}
			if tt.typ.Counted() == tt.fixed {
				t.Errorf("Counted() = %v inconsistent with FixedWidth", tt.typ.Counted())
			}
		})
	}

	seq, _ := SequenceOf(KindUint64)
	if _, fixed := seq.FixedWidth(); fixed {
		t.Error("sequences are never fixed width")
	}
	if !seq.Counted() {
		t.Error("sequences are counted")
	}
	if seq.ElemWidth() != 8 {
		t.Errorf("ElemWidth() = %d, want 8", seq.ElemWidth())
	}
}

func TestValidate(t *testing.T) {
	if err := (Type{}).Validate(); err == nil {
		t.Error("zero Type should not validate")
	}
	if err := (Type{Kind: KindSockAddr6 + 1}).Validate(); err == nil {
		t.Error("out of range kind should not validate")
	}
	if err := (Type{Kind: KindString, Seq: true}).Validate(); err == nil {
		t.Error("sequence of string should not validate")
	}
	if err := Uint64().Validate(); err != nil {
		t.Errorf("Uint64().Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"uint64", Uint64()},
		{"bool", Bool()},
		{"string", String()},
		{"sockaddr6", SockAddr6()},
		{"uint32:hex", Hex(Uint32())},
		{"intptr:hex", Hex(IntPtr())},
		{"[]uint32", Type{Kind: KindUint32, Seq: true}},
		{"[]int8:hex", Type{Kind: KindInt8, Seq: true, Out: OutHex}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "int128", "[]string", "string:hex", "guid:hex", "float64:hex"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	seq, _ := SequenceOf(KindInt16)
	for _, typ := range []Type{Uint64(), Bool(), String(), Hex(Uint32()), seq, SockAddr4()} {
		got, err := Parse(typ.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", typ.String(), err)
		}
		// String drops non-hex display hints, so compare the wire tags.
		if got.InTag() != typ.InTag() {
			t.Errorf("round trip of %q changed in-tag 0x%02X -> 0x%02X", typ.String(), typ.InTag(), got.InTag())
		}
	}
}
