// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/fogpack/fogpack/lib/types"
)

// Ext type assignments. Timestamp follows the MessagePack convention;
// the positive types are fogpack's. All other types are reserved.
const (
	ExtTimestamp int8 = -1
	ExtHash      int8 = 1
	ExtIdentity  int8 = 2
	ExtLockbox   int8 = 3
)

const maxLen32 = 1<<32 - 1

// Encode returns the canonical encoding of v.
func Encode(v types.Value) ([]byte, error) {
	return Append(nil, v)
}

// Append appends the canonical encoding of v to dst and returns the
// extended slice. The only failure mode is a value whose payload
// exceeds the 32-bit length limit of its wire form.
func Append(dst []byte, v types.Value) ([]byte, error) {
	switch v.Kind() {
	case types.KindNull:
		return append(dst, msgpcode.Nil), nil

	case types.KindBool:
		b, _ := v.AsBool()
		if b {
			return append(dst, msgpcode.True), nil
		}
		return append(dst, msgpcode.False), nil

	case types.KindInt:
		i, _ := v.AsInt()
		return appendInt(dst, i), nil

	case types.KindF32:
		f, _ := v.AsF32()
		dst = append(dst, msgpcode.Float)
		return binary.BigEndian.AppendUint32(dst, math.Float32bits(f)), nil

	case types.KindF64:
		f, _ := v.AsF64()
		dst = append(dst, msgpcode.Double)
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(f)), nil

	case types.KindStr:
		s, _ := v.AsStr()
		return appendStr(dst, s)

	case types.KindBin:
		b, _ := v.AsBin()
		return appendBin(dst, b)

	case types.KindArray:
		arr, _ := v.AsArray()
		dst, err := appendArrayHeader(dst, len(arr))
		if err != nil {
			return nil, err
		}
		for _, elem := range arr {
			dst, err = Append(dst, elem)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case types.KindMap:
		m, _ := v.AsMap()
		dst, err := appendMapHeader(dst, m.Len())
		if err != nil {
			return nil, err
		}
		for i := 0; i < m.Len(); i++ {
			key, val := m.At(i)
			dst, err = appendStr(dst, key)
			if err != nil {
				return nil, err
			}
			dst, err = Append(dst, val)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case types.KindHash:
		h, _ := v.AsHash()
		return appendExt(dst, ExtHash, h.Body())

	case types.KindIdentity:
		id, _ := v.AsIdentity()
		return appendExt(dst, ExtIdentity, id.Body())

	case types.KindLockbox:
		l, _ := v.AsLockbox()
		return appendExt(dst, ExtLockbox, l.Body())

	case types.KindTime:
		t, _ := v.AsTime()
		return appendTime(dst, t), nil
	}
	return nil, fmt.Errorf("%w: unknown kind %v", ErrRange, v.Kind())
}

// appendInt emits the narrowest container that holds the value.
// Non-negative values always use an unsigned container.
func appendInt(dst []byte, i types.Int) []byte {
	if u, ok := i.AsU64(); ok {
		switch {
		case u <= 0x7f:
			return append(dst, byte(u))
		case u <= math.MaxUint8:
			return append(dst, msgpcode.Uint8, byte(u))
		case u <= math.MaxUint16:
			return binary.BigEndian.AppendUint16(append(dst, msgpcode.Uint16), uint16(u))
		case u <= math.MaxUint32:
			return binary.BigEndian.AppendUint32(append(dst, msgpcode.Uint32), uint32(u))
		default:
			return binary.BigEndian.AppendUint64(append(dst, msgpcode.Uint64), u)
		}
	}
	v, _ := i.AsI64()
	switch {
	case v >= -32:
		return append(dst, byte(v))
	case v >= math.MinInt8:
		return append(dst, msgpcode.Int8, byte(v))
	case v >= math.MinInt16:
		return binary.BigEndian.AppendUint16(append(dst, msgpcode.Int16), uint16(v))
	case v >= math.MinInt32:
		return binary.BigEndian.AppendUint32(append(dst, msgpcode.Int32), uint32(v))
	default:
		return binary.BigEndian.AppendUint64(append(dst, msgpcode.Int64), uint64(v))
	}
}

func appendStr(dst []byte, s string) ([]byte, error) {
	n := len(s)
	switch {
	case n <= 31:
		dst = append(dst, msgpcode.FixedStrLow|byte(n))
	case n <= math.MaxUint8:
		dst = append(dst, msgpcode.Str8, byte(n))
	case n <= math.MaxUint16:
		dst = binary.BigEndian.AppendUint16(append(dst, msgpcode.Str16), uint16(n))
	case n <= maxLen32:
		dst = binary.BigEndian.AppendUint32(append(dst, msgpcode.Str32), uint32(n))
	default:
		return nil, fmt.Errorf("%w: string of %d bytes", ErrRange, n)
	}
	return append(dst, s...), nil
}

func appendBin(dst []byte, b []byte) ([]byte, error) {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		dst = append(dst, msgpcode.Bin8, byte(n))
	case n <= math.MaxUint16:
		dst = binary.BigEndian.AppendUint16(append(dst, msgpcode.Bin16), uint16(n))
	case n <= maxLen32:
		dst = binary.BigEndian.AppendUint32(append(dst, msgpcode.Bin32), uint32(n))
	default:
		return nil, fmt.Errorf("%w: binary of %d bytes", ErrRange, n)
	}
	return append(dst, b...), nil
}

func appendArrayHeader(dst []byte, n int) ([]byte, error) {
	switch {
	case n <= 15:
		return append(dst, msgpcode.FixedArrayLow|byte(n)), nil
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, msgpcode.Array16), uint16(n)), nil
	case n <= maxLen32:
		return binary.BigEndian.AppendUint32(append(dst, msgpcode.Array32), uint32(n)), nil
	default:
		return nil, fmt.Errorf("%w: array of %d elements", ErrRange, n)
	}
}

func appendMapHeader(dst []byte, n int) ([]byte, error) {
	switch {
	case n <= 15:
		return append(dst, msgpcode.FixedMapLow|byte(n)), nil
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, msgpcode.Map16), uint16(n)), nil
	case n <= maxLen32:
		return binary.BigEndian.AppendUint32(append(dst, msgpcode.Map32), uint32(n)), nil
	default:
		return nil, fmt.Errorf("%w: map of %d fields", ErrRange, n)
	}
}

// appendExt frames an ext body. Bodies of exactly 1, 2, 4, 8, or 16
// bytes must use the fixext form; anything else uses the narrowest
// ext8/16/32.
func appendExt(dst []byte, typ int8, body []byte) ([]byte, error) {
	n := len(body)
	switch n {
	case 1:
		dst = append(dst, msgpcode.FixExt1)
	case 2:
		dst = append(dst, msgpcode.FixExt2)
	case 4:
		dst = append(dst, msgpcode.FixExt4)
	case 8:
		dst = append(dst, msgpcode.FixExt8)
	case 16:
		dst = append(dst, msgpcode.FixExt16)
	default:
		switch {
		case n <= math.MaxUint8:
			dst = append(dst, msgpcode.Ext8, byte(n))
		case n <= math.MaxUint16:
			dst = binary.BigEndian.AppendUint16(append(dst, msgpcode.Ext16), uint16(n))
		case n <= maxLen32:
			dst = binary.BigEndian.AppendUint32(append(dst, msgpcode.Ext32), uint32(n))
		default:
			return nil, fmt.Errorf("%w: ext body of %d bytes", ErrRange, n)
		}
	}
	dst = append(dst, byte(typ))
	return append(dst, body...), nil
}

// appendTime emits the shortest of the three timestamp forms. The
// 4-byte form requires a zero nanosecond component; the 8-byte form
// packs 30 bits of nanoseconds over 34 bits of seconds, so any
// nanosecond value of 2^30 or more forces the 12-byte form.
func appendTime(dst []byte, t types.Time) []byte {
	sec, nano := t.Sec(), t.Nano()
	extTimestamp := ExtTimestamp
	switch {
	case nano == 0 && sec >= 0 && sec < 1<<32:
		dst = append(dst, msgpcode.FixExt4, byte(extTimestamp))
		return binary.BigEndian.AppendUint32(dst, uint32(sec))
	case nano < 1<<30 && sec >= 0 && sec < 1<<34:
		dst = append(dst, msgpcode.FixExt8, byte(extTimestamp))
		return binary.BigEndian.AppendUint64(dst, uint64(nano)<<34|uint64(sec))
	default:
		dst = append(dst, msgpcode.Ext8, 12, byte(extTimestamp))
		dst = binary.BigEndian.AppendUint32(dst, nano)
		return binary.BigEndian.AppendUint64(dst, uint64(sec))
	}
}
