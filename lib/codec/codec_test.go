// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/fogpack/fogpack/lib/types"
)

func mustStr(t *testing.T, s string) types.Value {
	t.Helper()
	v, err := types.NewStr(s)
	if err != nil {
		t.Fatalf("NewStr(%q) error: %v", s, err)
	}
	return v
}

func mustEncode(t *testing.T, v types.Value) []byte {
	t.Helper()
	out, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	return out
}

func mustTime(t *testing.T, sec int64, nano uint32) types.Value {
	t.Helper()
	tm, err := types.NewTime(sec, nano)
	if err != nil {
		t.Fatalf("NewTime(%d, %d) error: %v", sec, nano, err)
	}
	return types.NewTimeValue(tm)
}

func TestEncodeScalars(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		want []byte
	}{
		{"null", types.NewNull(), []byte{0xc0}},
		{"false", types.NewBool(false), []byte{0xc2}},
		{"true", types.NewBool(true), []byte{0xc3}},
		{"int 0", types.NewI64(0), []byte{0x00}},
		{"int 127", types.NewI64(127), []byte{0x7f}},
		{"int 128", types.NewI64(128), []byte{0xcc, 0x80}},
		{"int -1", types.NewI64(-1), []byte{0xff}},
		{"int -32", types.NewI64(-32), []byte{0xe0}},
		{"int -33", types.NewI64(-33), []byte{0xd0, 0xdf}},
		{"f64 1.5", types.NewF64(1.5), []byte{0xcb, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0}},
		{"f32 1.5", types.NewF32(1.5), []byte{0xca, 0x3f, 0xc0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEncode(t, tt.v)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestIntegerBoundaries(t *testing.T) {
	tests := []struct {
		v      types.Value
		marker byte
		size   int
	}{
		{types.NewU64(127), 0x7f, 1},
		{types.NewU64(128), 0xcc, 2},
		{types.NewU64(255), 0xcc, 2},
		{types.NewU64(256), 0xcd, 3},
		{types.NewU64(65535), 0xcd, 3},
		{types.NewU64(65536), 0xce, 5},
		{types.NewU64(1<<32 - 1), 0xce, 5},
		{types.NewU64(1 << 32), 0xcf, 9},
		{types.NewU64(1<<63 - 1), 0xcf, 9},
		{types.NewU64(1 << 63), 0xcf, 9},
		{types.NewU64(math.MaxUint64), 0xcf, 9},
		{types.NewI64(-32), 0xe0, 1},
		{types.NewI64(-33), 0xd0, 2},
		{types.NewI64(-128), 0xd0, 2},
		{types.NewI64(-129), 0xd1, 3},
		{types.NewI64(-32768), 0xd1, 3},
		{types.NewI64(-32769), 0xd2, 5},
		{types.NewI64(math.MinInt32), 0xd2, 5},
		{types.NewI64(math.MinInt32 - 1), 0xd3, 9},
		{types.NewI64(math.MinInt64), 0xd3, 9},
	}
	for _, tt := range tests {
		got := mustEncode(t, tt.v)
		if got[0] != tt.marker || len(got) != tt.size {
			i, _ := tt.v.AsInt()
			t.Errorf("Encode(%s) = % x, want marker 0x%02x size %d", i, got, tt.marker, tt.size)
		}
		decoded, err := Decode(got)
		if err != nil {
			t.Errorf("Decode(% x) error: %v", got, err)
			continue
		}
		if !decoded.Equal(tt.v) {
			t.Errorf("round trip of %v changed the value", tt.v)
		}
	}
}

func TestSignedUnsignedSameBytes(t *testing.T) {
	a := mustEncode(t, types.NewI64(1000))
	b := mustEncode(t, types.NewU64(1000))
	if !bytes.Equal(a, b) {
		t.Errorf("signed encoding % x differs from unsigned % x", a, b)
	}
}

func TestStrLengthBoundaries(t *testing.T) {
	tests := []struct {
		length int
		marker byte
		header int
	}{
		{0, 0xa0, 1},
		{31, 0xbf, 1},
		{32, 0xd9, 2},
		{255, 0xd9, 2},
		{256, 0xda, 3},
		{65535, 0xda, 3},
		{65536, 0xdb, 5},
	}
	for _, tt := range tests {
		s := strings.Repeat("a", tt.length)
		got, err := Append(nil, mustStr(t, s))
		if err != nil {
			t.Fatalf("Append() error: %v", err)
		}
		if got[0] != tt.marker {
			t.Errorf("str len %d: marker = 0x%02x, want 0x%02x", tt.length, got[0], tt.marker)
		}
		if len(got) != tt.header+tt.length {
			t.Errorf("str len %d: encoded %d bytes, want %d", tt.length, len(got), tt.header+tt.length)
		}
		decoded, err := DecodeWithLimits(got, Limits{MaxSize: 1 << 20, MaxDepth: 64})
		if err != nil {
			t.Errorf("str len %d: decode error: %v", tt.length, err)
			continue
		}
		if ds, _ := decoded.AsStr(); ds != s {
			t.Errorf("str len %d: round trip changed the value", tt.length)
		}
	}
}

func TestBinLengthBoundaries(t *testing.T) {
	tests := []struct {
		length int
		marker byte
	}{
		{0, 0xc4},
		{255, 0xc4},
		{256, 0xc5},
		{65535, 0xc5},
		{65536, 0xc6},
	}
	for _, tt := range tests {
		got := mustEncode(t, types.NewBin(make([]byte, tt.length)))
		if got[0] != tt.marker {
			t.Errorf("bin len %d: marker = 0x%02x, want 0x%02x", tt.length, got[0], tt.marker)
		}
	}
}

func TestContainerBoundaries(t *testing.T) {
	arr15 := mustEncode(t, types.NewArray(make([]types.Value, 15)))
	if arr15[0] != 0x9f {
		t.Errorf("15-element array marker = 0x%02x, want 0x9f", arr15[0])
	}
	arr16 := mustEncode(t, types.NewArray(make([]types.Value, 16)))
	if arr16[0] != 0xdc {
		t.Errorf("16-element array marker = 0x%02x, want 0xdc", arr16[0])
	}
}

func TestMapKeyOrderCanonical(t *testing.T) {
	// Insertion order b,a must produce the same bytes as a,b: the map
	// sorts on construction.
	first := types.NewMap()
	if err := first.Set("b", types.NewI64(2)); err != nil {
		t.Fatalf("Set(b) error: %v", err)
	}
	if err := first.Set("a", types.NewI64(1)); err != nil {
		t.Fatalf("Set(a) error: %v", err)
	}
	second := types.NewMap()
	if err := second.Set("a", types.NewI64(1)); err != nil {
		t.Fatalf("Set(a) error: %v", err)
	}
	if err := second.Set("b", types.NewI64(2)); err != nil {
		t.Fatalf("Set(b) error: %v", err)
	}

	gotFirst := mustEncode(t, types.NewMapValue(first))
	gotSecond := mustEncode(t, types.NewMapValue(second))
	if !bytes.Equal(gotFirst, gotSecond) {
		t.Errorf("insertion order changed the encoding: % x vs % x", gotFirst, gotSecond)
	}

	// The "a" pair must precede the "b" pair.
	want := []byte{0x82, 0xa1, 'a', 0x01, 0xa1, 'b', 0x02}
	if !bytes.Equal(gotFirst, want) {
		t.Errorf("Encode() = % x, want % x", gotFirst, want)
	}
}

func TestTimestampBoundaries(t *testing.T) {
	const sec = int64(1700000000) // fits 32 bits
	tests := []struct {
		name   string
		v      types.Value
		prefix []byte
		size   int
	}{
		{"nanos 0", mustTime(t, sec, 0), []byte{0xd6, 0xff}, 6},
		{"nanos 1", mustTime(t, sec, 1), []byte{0xd7, 0xff}, 10},
		{"nanos 2^30-1", mustTime(t, sec, 1<<30-1), []byte{0xd7, 0xff}, 10},
		{"nanos 2^30", mustTime(t, sec, 1<<30), []byte{0xc7, 12, 0xff}, 15},
		{"nanos 1e9", mustTime(t, sec, 1_000_000_000), []byte{0xd7, 0xff}, 10},
		{"nanos 1e9+5", mustTime(t, sec, 1_000_000_005), []byte{0xd7, 0xff}, 10},
		{"nanos 2e9-1", mustTime(t, sec, 1_999_999_999), []byte{0xc7, 12, 0xff}, 15},
		{"negative sec", mustTime(t, -1, 0), []byte{0xc7, 12, 0xff}, 15},
		{"sec 2^34", mustTime(t, 1<<34, 0), []byte{0xc7, 12, 0xff}, 15},
		{"sec 2^33 nanos 0", mustTime(t, 1<<33, 0), []byte{0xd7, 0xff}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEncode(t, tt.v)
			if !bytes.HasPrefix(got, tt.prefix) || len(got) != tt.size {
				t.Fatalf("Encode() = % x, want prefix % x size %d", got, tt.prefix, tt.size)
			}
			decoded, err := Decode(got)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if !decoded.Equal(tt.v) {
				t.Errorf("round trip changed the value")
			}
		})
	}
}

func TestTimeNanosRejected(t *testing.T) {
	if _, err := types.NewTime(0, 2_000_000_000); err == nil {
		t.Error("NewTime accepted nanoseconds of two billion")
	}
}

func TestHashIdentityEncoding(t *testing.T) {
	null := mustEncode(t, types.NewHashValue(types.NullHash()))
	want := []byte{0xd4, 0x01, 0x00}
	if !bytes.Equal(null, want) {
		t.Errorf("null hash = % x, want % x", null, want)
	}

	var digest [types.HashDigestSize]byte
	for i := range digest {
		digest[i] = byte(i)
	}
	h := mustEncode(t, types.NewHashValue(types.NewHash(digest)))
	if h[0] != 0xc7 || h[1] != 65 || h[2] != 0x01 || h[3] != 0x01 {
		t.Errorf("hash framing = % x..., want ext8(65) type 1 algo 1", h[:4])
	}
	if len(h) != 3+65 {
		t.Errorf("hash encoding is %d bytes, want %d", len(h), 3+65)
	}

	var key [types.IdentityKeySize]byte
	id := mustEncode(t, types.NewIdentityValue(types.NewIdentity(key)))
	if id[0] != 0xc7 || id[1] != 33 || id[2] != 0x02 || id[3] != 0x01 {
		t.Errorf("identity framing = % x..., want ext8(33) type 2 algo 1", id[:4])
	}

	for _, raw := range [][]byte{null, h, id} {
		decoded, err := Decode(raw)
		if err != nil {
			t.Errorf("Decode(% x...) error: %v", raw[:3], err)
			continue
		}
		again := mustEncode(t, decoded)
		if !bytes.Equal(again, raw) {
			t.Errorf("re-encode changed bytes: % x vs % x", again, raw)
		}
	}
}

func TestDecodeRejectsNonCanonical(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"uint8 holding 1", []byte{0xcc, 0x01}},
		{"uint16 holding 200", []byte{0xcd, 0x00, 0xc8}},
		{"uint32 holding 300", []byte{0xce, 0x00, 0x00, 0x01, 0x2c}},
		{"int8 holding -1", []byte{0xd0, 0xff}},
		{"int8 holding 5", []byte{0xd0, 0x05}},
		{"int16 holding -5", []byte{0xd1, 0xff, 0xfb}},
		{"str8 of 3 bytes", []byte{0xd9, 0x03, 'a', 'b', 'c'}},
		{"bin16 of 1 byte", []byte{0xc5, 0x00, 0x01, 0xaa}},
		{"map keys out of order", []byte{0x82, 0xa1, 'b', 0x01, 0xa1, 'a', 0x02}},
		{"duplicate map keys", []byte{0x82, 0xa1, 'a', 0x01, 0xa1, 'a', 0x02}},
		{"ext8 body of 1 byte", []byte{0xc7, 0x01, 0x01, 0x00}},
		{"invalid utf-8 string", []byte{0xa2, 0xff, 0xfe}},
		{"timestamp96 fits ts64", append([]byte{0xc7, 12, 0xff, 0, 0, 0, 1}, []byte{0, 0, 0, 0, 0, 0, 0, 1}...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, ErrNonCanonical) {
				t.Errorf("Decode(% x) error = %v, want ErrNonCanonical", tt.data, err)
			}
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"reserved opcode", []byte{0xc1}},
		{"truncated uint16", []byte{0xcd, 0x01}},
		{"truncated string", []byte{0xa5, 'a', 'b'}},
		{"reserved ext type", []byte{0xd4, 0x07, 0x00}},
		{"negative ext type", []byte{0xd4, 0xfe, 0x00}},
		{"unknown hash algorithm", []byte{0xd4, 0x01, 0x02}},
		{"timestamp nanos too big", append([]byte{0xc7, 12, 0xff, 0x77, 0x35, 0x94, 0x00}, make([]byte, 8)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(% x) error = %v, want ErrMalformed", tt.data, err)
			}
		})
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode with trailing bytes error = %v, want ErrMalformed", err)
	}
	v, n, err := DecodeFirst([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("DecodeFirst() error: %v", err)
	}
	if n != 1 {
		t.Errorf("DecodeFirst() consumed %d bytes, want 1", n)
	}
	if i, _ := v.AsInt(); i.String() != "1" {
		t.Errorf("DecodeFirst() = %v, want 1", v)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	// 70 nested single-element arrays around a null.
	data := bytes.Repeat([]byte{0x91}, 70)
	data = append(data, 0xc0)
	_, err := Decode(data)
	if !errors.Is(err, ErrLimit) {
		t.Errorf("deeply nested decode error = %v, want ErrLimit", err)
	}
}

func TestDecodeSizeLimit(t *testing.T) {
	big := make([]byte, 100)
	_, err := DecodeWithLimits(big, Limits{MaxSize: 10, MaxDepth: 64})
	if !errors.Is(err, ErrLimit) {
		t.Errorf("oversize decode error = %v, want ErrLimit", err)
	}
}

func TestRoundTripComplexValue(t *testing.T) {
	inner := types.NewMap()
	if err := inner.Set("title", mustStr(t, "Example Document")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := inner.Set("count", types.NewI64(42)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := inner.Set("ratio", types.NewF64(0.25)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	root := types.NewMap()
	if err := root.Set("data", types.NewMapValue(inner)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := root.Set("tags", types.NewArray([]types.Value{
		mustStr(t, "a"), mustStr(t, "b"), types.NewBool(true), types.NewNull(),
	})); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := root.Set("blob", types.NewBin([]byte{0, 1, 2, 255})); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	v := types.NewMapValue(root)
	encoded := mustEncode(t, v)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !decoded.Equal(v) {
		t.Error("round trip changed the value")
	}
	again := mustEncode(t, decoded)
	if !bytes.Equal(again, encoded) {
		t.Error("re-encode changed the bytes")
	}
}

func TestDiagnose(t *testing.T) {
	m := types.NewMap()
	if err := m.Set("n", types.NewI64(5)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	out, err := Diagnose(mustEncode(t, types.NewMapValue(m)))
	if err != nil {
		t.Fatalf("Diagnose() error: %v", err)
	}
	if out != `{"n": 5}` {
		t.Errorf("Diagnose() = %q, want %q", out, `{"n": 5}`)
	}
}
