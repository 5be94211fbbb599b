// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/fogpack/fogpack/lib/types"
)

// Default decode bounds. MaxSize matches the document size cap;
// MaxDepth bounds container nesting.
const (
	DefaultMaxSize  = 1 << 20
	DefaultMaxDepth = 64
)

// Limits bounds a decode operation. Both fields must be positive.
type Limits struct {
	// MaxSize is the largest input the decoder will look at.
	MaxSize int
	// MaxDepth is the deepest container nesting the decoder will
	// enter.
	MaxDepth int
}

// DefaultLimits returns the standard bounds.
func DefaultLimits() Limits {
	return Limits{MaxSize: DefaultMaxSize, MaxDepth: DefaultMaxDepth}
}

// Decode strictly decodes a single value occupying the whole buffer.
// Trailing bytes are an error.
func Decode(data []byte) (types.Value, error) {
	return DecodeWithLimits(data, DefaultLimits())
}

// DecodeWithLimits is Decode with explicit bounds.
func DecodeWithLimits(data []byte, limits Limits) (types.Value, error) {
	v, n, err := decodeFirst(data, limits)
	if err != nil {
		return types.Value{}, err
	}
	if n != len(data) {
		return types.Value{}, malformedf(n, "%d trailing bytes after value", len(data)-n)
	}
	return v, nil
}

// DecodeFirst strictly decodes the first value in the buffer and
// returns the number of bytes consumed. Use this to process a sequence
// of concatenated values.
func DecodeFirst(data []byte) (types.Value, int, error) {
	return decodeFirst(data, DefaultLimits())
}

func decodeFirst(data []byte, limits Limits) (types.Value, int, error) {
	if len(data) > limits.MaxSize {
		return types.Value{}, 0, limitf("input is %d bytes, maximum is %d", len(data), limits.MaxSize)
	}
	d := &decoder{data: data, limits: limits}
	v, err := d.readValue(0)
	if err != nil {
		return types.Value{}, 0, err
	}
	return v, d.pos, nil
}

type decoder struct {
	data   []byte
	pos    int
	limits Limits
}

func (d *decoder) take(n int) ([]byte, error) {
	if len(d.data)-d.pos < n {
		return nil, malformedf(d.pos, "need %d bytes, have %d", n, len(d.data)-d.pos)
	}
	out := d.data[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *decoder) takeByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) takeU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) takeU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) takeU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) readValue(depth int) (types.Value, error) {
	if depth > d.limits.MaxDepth {
		return types.Value{}, limitf("nesting depth exceeds %d", d.limits.MaxDepth)
	}
	start := d.pos
	c, err := d.takeByte()
	if err != nil {
		return types.Value{}, err
	}

	switch {
	case c <= msgpcode.PosFixedNumHigh:
		return types.NewU64(uint64(c)), nil
	case c >= msgpcode.NegFixedNumLow:
		return types.NewI64(int64(int8(c))), nil
	case msgpcode.IsFixedString(c):
		return d.readStr(start, int(c&msgpcode.FixedStrMask))
	case msgpcode.IsFixedMap(c):
		return d.readMap(depth, int(c&msgpcode.FixedMapMask))
	case msgpcode.IsFixedArray(c):
		return d.readArray(depth, int(c&msgpcode.FixedArrayMask))
	}

	switch c {
	case msgpcode.Nil:
		return types.NewNull(), nil
	case msgpcode.False:
		return types.NewBool(false), nil
	case msgpcode.True:
		return types.NewBool(true), nil

	case msgpcode.Uint8:
		v, err := d.takeByte()
		if err != nil {
			return types.Value{}, err
		}
		if v <= 0x7f {
			return types.Value{}, nonCanonicalf(start, "uint8 holding %d fits positive fixint", v)
		}
		return types.NewU64(uint64(v)), nil
	case msgpcode.Uint16:
		v, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		if v <= math.MaxUint8 {
			return types.Value{}, nonCanonicalf(start, "uint16 holding %d fits uint8", v)
		}
		return types.NewU64(uint64(v)), nil
	case msgpcode.Uint32:
		v, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		if v <= math.MaxUint16 {
			return types.Value{}, nonCanonicalf(start, "uint32 holding %d fits uint16", v)
		}
		return types.NewU64(uint64(v)), nil
	case msgpcode.Uint64:
		v, err := d.takeU64()
		if err != nil {
			return types.Value{}, err
		}
		if v <= math.MaxUint32 {
			return types.Value{}, nonCanonicalf(start, "uint64 holding %d fits uint32", v)
		}
		return types.NewU64(v), nil

	case msgpcode.Int8:
		v, err := d.takeByte()
		if err != nil {
			return types.Value{}, err
		}
		i := int8(v)
		if i >= 0 {
			return types.Value{}, nonCanonicalf(start, "non-negative %d in signed container", i)
		}
		if i >= -32 {
			return types.Value{}, nonCanonicalf(start, "int8 holding %d fits negative fixint", i)
		}
		return types.NewI64(int64(i)), nil
	case msgpcode.Int16:
		v, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		i := int16(v)
		if i >= 0 {
			return types.Value{}, nonCanonicalf(start, "non-negative %d in signed container", i)
		}
		if i >= math.MinInt8 {
			return types.Value{}, nonCanonicalf(start, "int16 holding %d fits int8", i)
		}
		return types.NewI64(int64(i)), nil
	case msgpcode.Int32:
		v, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		i := int32(v)
		if i >= 0 {
			return types.Value{}, nonCanonicalf(start, "non-negative %d in signed container", i)
		}
		if i >= math.MinInt16 {
			return types.Value{}, nonCanonicalf(start, "int32 holding %d fits int16", i)
		}
		return types.NewI64(int64(i)), nil
	case msgpcode.Int64:
		v, err := d.takeU64()
		if err != nil {
			return types.Value{}, err
		}
		i := int64(v)
		if i >= 0 {
			return types.Value{}, nonCanonicalf(start, "non-negative %d in signed container", i)
		}
		if i >= math.MinInt32 {
			return types.Value{}, nonCanonicalf(start, "int64 holding %d fits int32", i)
		}
		return types.NewI64(i), nil

	case msgpcode.Float:
		v, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		return types.NewF32(math.Float32frombits(v)), nil
	case msgpcode.Double:
		v, err := d.takeU64()
		if err != nil {
			return types.Value{}, err
		}
		return types.NewF64(math.Float64frombits(v)), nil

	case msgpcode.Str8:
		n, err := d.takeByte()
		if err != nil {
			return types.Value{}, err
		}
		if n <= 31 {
			return types.Value{}, nonCanonicalf(start, "str8 of %d bytes fits fixstr", n)
		}
		return d.readStr(start, int(n))
	case msgpcode.Str16:
		n, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint8 {
			return types.Value{}, nonCanonicalf(start, "str16 of %d bytes fits str8", n)
		}
		return d.readStr(start, int(n))
	case msgpcode.Str32:
		n, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint16 {
			return types.Value{}, nonCanonicalf(start, "str32 of %d bytes fits str16", n)
		}
		return d.readStr(start, int(n))

	case msgpcode.Bin8:
		n, err := d.takeByte()
		if err != nil {
			return types.Value{}, err
		}
		return d.readBin(int(n))
	case msgpcode.Bin16:
		n, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint8 {
			return types.Value{}, nonCanonicalf(start, "bin16 of %d bytes fits bin8", n)
		}
		return d.readBin(int(n))
	case msgpcode.Bin32:
		n, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint16 {
			return types.Value{}, nonCanonicalf(start, "bin32 of %d bytes fits bin16", n)
		}
		return d.readBin(int(n))

	case msgpcode.Array16:
		n, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		if n <= 15 {
			return types.Value{}, nonCanonicalf(start, "array16 of %d elements fits fixarray", n)
		}
		return d.readArray(depth, int(n))
	case msgpcode.Array32:
		n, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint16 {
			return types.Value{}, nonCanonicalf(start, "array32 of %d elements fits array16", n)
		}
		return d.readArray(depth, int(n))

	case msgpcode.Map16:
		n, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		if n <= 15 {
			return types.Value{}, nonCanonicalf(start, "map16 of %d fields fits fixmap", n)
		}
		return d.readMap(depth, int(n))
	case msgpcode.Map32:
		n, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint16 {
			return types.Value{}, nonCanonicalf(start, "map32 of %d fields fits map16", n)
		}
		return d.readMap(depth, int(n))

	case msgpcode.FixExt1:
		return d.readExt(start, 1)
	case msgpcode.FixExt2:
		return d.readExt(start, 2)
	case msgpcode.FixExt4:
		return d.readExt(start, 4)
	case msgpcode.FixExt8:
		return d.readExt(start, 8)
	case msgpcode.FixExt16:
		return d.readExt(start, 16)
	case msgpcode.Ext8:
		n, err := d.takeByte()
		if err != nil {
			return types.Value{}, err
		}
		switch n {
		case 1, 2, 4, 8, 16:
			return types.Value{}, nonCanonicalf(start, "ext8 body of %d bytes fits fixext", n)
		}
		return d.readExt(start, int(n))
	case msgpcode.Ext16:
		n, err := d.takeU16()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint8 {
			return types.Value{}, nonCanonicalf(start, "ext16 body of %d bytes fits ext8", n)
		}
		return d.readExt(start, int(n))
	case msgpcode.Ext32:
		n, err := d.takeU32()
		if err != nil {
			return types.Value{}, err
		}
		if n <= math.MaxUint16 {
			return types.Value{}, nonCanonicalf(start, "ext32 body of %d bytes fits ext16", n)
		}
		return d.readExt(start, int(n))
	}

	return types.Value{}, malformedf(start, "reserved opcode 0x%02x", c)
}

func (d *decoder) readStr(start, n int) (types.Value, error) {
	raw, err := d.take(n)
	if err != nil {
		return types.Value{}, err
	}
	if !utf8.Valid(raw) {
		return types.Value{}, nonCanonicalf(start, "string is not valid UTF-8")
	}
	v, err := types.NewStr(string(raw))
	if err != nil {
		return types.Value{}, nonCanonicalf(start, "%v", err)
	}
	return v, nil
}

func (d *decoder) readBin(n int) (types.Value, error) {
	raw, err := d.take(n)
	if err != nil {
		return types.Value{}, err
	}
	out := make([]byte, n)
	copy(out, raw)
	return types.NewBin(out), nil
}

func (d *decoder) readArray(depth, n int) (types.Value, error) {
	// Each element takes at least one byte; bail before allocating for
	// a length no input of this size could satisfy.
	if n > len(d.data)-d.pos {
		return types.Value{}, malformedf(d.pos, "array of %d elements exceeds remaining input", n)
	}
	elems := make([]types.Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.readValue(depth + 1)
		if err != nil {
			return types.Value{}, err
		}
		elems = append(elems, v)
	}
	return types.NewArray(elems), nil
}

func (d *decoder) readMap(depth, n int) (types.Value, error) {
	if n > (len(d.data)-d.pos+1)/2 {
		return types.Value{}, malformedf(d.pos, "map of %d fields exceeds remaining input", n)
	}
	m := types.NewMap()
	prev := ""
	for i := 0; i < n; i++ {
		keyStart := d.pos
		key, err := d.readKey()
		if err != nil {
			return types.Value{}, err
		}
		if i > 0 {
			if key == prev {
				return types.Value{}, nonCanonicalf(keyStart, "duplicate map key %q", key)
			}
			if key < prev {
				return types.Value{}, nonCanonicalf(keyStart, "map keys out of order: %q after %q", key, prev)
			}
		}
		prev = key
		v, err := d.readValue(depth + 1)
		if err != nil {
			return types.Value{}, err
		}
		if err := m.Set(key, v); err != nil {
			return types.Value{}, nonCanonicalf(keyStart, "%v", err)
		}
	}
	return types.NewMapValue(m), nil
}

// readKey reads a map key, which must be a string.
func (d *decoder) readKey() (string, error) {
	start := d.pos
	c, err := d.takeByte()
	if err != nil {
		return "", err
	}
	var n int
	switch {
	case msgpcode.IsFixedString(c):
		n = int(c & msgpcode.FixedStrMask)
	case c == msgpcode.Str8:
		b, err := d.takeByte()
		if err != nil {
			return "", err
		}
		if b <= 31 {
			return "", nonCanonicalf(start, "str8 of %d bytes fits fixstr", b)
		}
		n = int(b)
	case c == msgpcode.Str16:
		v, err := d.takeU16()
		if err != nil {
			return "", err
		}
		if v <= math.MaxUint8 {
			return "", nonCanonicalf(start, "str16 of %d bytes fits str8", v)
		}
		n = int(v)
	case c == msgpcode.Str32:
		v, err := d.takeU32()
		if err != nil {
			return "", err
		}
		if v <= math.MaxUint16 {
			return "", nonCanonicalf(start, "str32 of %d bytes fits str16", v)
		}
		n = int(v)
	default:
		return "", nonCanonicalf(start, "map key is not a string (opcode 0x%02x)", c)
	}
	raw, err := d.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", nonCanonicalf(start, "map key is not valid UTF-8")
	}
	return string(raw), nil
}

func (d *decoder) readExt(start, n int) (types.Value, error) {
	typByte, err := d.takeByte()
	if err != nil {
		return types.Value{}, err
	}
	typ := int8(typByte)
	body, err := d.take(n)
	if err != nil {
		return types.Value{}, err
	}

	switch typ {
	case ExtTimestamp:
		return d.readTimestamp(start, body)
	case ExtHash:
		h, err := types.ParseHashBody(body)
		if err != nil {
			return types.Value{}, malformedf(start, "%v", err)
		}
		return types.NewHashValue(h), nil
	case ExtIdentity:
		id, err := types.ParseIdentityBody(body)
		if err != nil {
			return types.Value{}, malformedf(start, "%v", err)
		}
		return types.NewIdentityValue(id), nil
	case ExtLockbox:
		l, err := types.ParseLockboxBody(body)
		if err != nil {
			return types.Value{}, malformedf(start, "%v", err)
		}
		return types.NewLockboxValue(l), nil
	}
	return types.Value{}, malformedf(start, "reserved ext type %d", typ)
}

func (d *decoder) readTimestamp(start int, body []byte) (types.Value, error) {
	switch len(body) {
	case 4:
		sec := binary.BigEndian.Uint32(body)
		t, _ := types.NewTime(int64(sec), 0)
		return types.NewTimeValue(t), nil
	case 8:
		raw := binary.BigEndian.Uint64(body)
		nano := uint32(raw >> 34)
		sec := int64(raw & (1<<34 - 1))
		if nano == 0 && sec < 1<<32 {
			return types.Value{}, nonCanonicalf(start, "timestamp fits the 4-byte form")
		}
		t, err := types.NewTime(sec, nano)
		if err != nil {
			return types.Value{}, malformedf(start, "%v", err)
		}
		return types.NewTimeValue(t), nil
	case 12:
		nano := binary.BigEndian.Uint32(body[:4])
		sec := int64(binary.BigEndian.Uint64(body[4:]))
		if nano > types.MaxTimeNanos {
			return types.Value{}, malformedf(start, "timestamp nanoseconds %d exceeds maximum %d", nano, types.MaxTimeNanos)
		}
		if nano < 1<<30 && sec >= 0 && sec < 1<<34 {
			return types.Value{}, nonCanonicalf(start, "timestamp fits the 8-byte form")
		}
		t, err := types.NewTime(sec, nano)
		if err != nil {
			return types.Value{}, malformedf(start, "%v", err)
		}
		return types.NewTimeValue(t), nil
	}
	return types.Value{}, malformedf(start, "timestamp body is %d bytes, want 4, 8, or 12", len(body))
}
