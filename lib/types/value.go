// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"
)

// Kind identifies one of the closed set of value kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindF32
	KindF64
	KindStr
	KindBin
	KindArray
	KindMap
	KindHash
	KindIdentity
	KindLockbox
	KindTime
)

var kindNames = [...]string{
	"Null", "Bool", "Int", "F32", "F64", "Str", "Bin",
	"Array", "Obj", "Hash", "Ident", "Lock", "Time",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a tagged union over the fogpack kind set. The zero Value is
// null. Values are immutable once constructed; the accessors return
// internal slices which the caller must not modify.
type Value struct {
	kind Kind
	b    bool
	i    Int
	f32  float32
	f64  float64
	str  string
	bin  []byte
	arr  []Value
	obj  *Map
	hash Hash
	id   Identity
	lock *Lockbox
	t    Time
}

// NewNull returns the null value.
func NewNull() Value { return Value{} }

// NewBool wraps a boolean.
func NewBool(v bool) Value { return Value{kind: KindBool, b: v} }

// NewInt wraps an integer.
func NewInt(v Int) Value { return Value{kind: KindInt, i: v} }

// NewI64 wraps a signed host integer.
func NewI64(v int64) Value { return NewInt(IntFromI64(v)) }

// NewU64 wraps an unsigned host integer.
func NewU64(v uint64) Value { return NewInt(IntFromU64(v)) }

// NewF32 wraps a 32-bit float. F32 and F64 are distinct kinds; there is
// no implicit widening.
func NewF32(v float32) Value { return Value{kind: KindF32, f32: v} }

// NewF64 wraps a 64-bit float.
func NewF64(v float64) Value { return Value{kind: KindF64, f64: v} }

// NewStr wraps a string. Fails if the string is not valid UTF-8.
func NewStr(s string) (Value, error) {
	if !utf8.ValidString(s) {
		return Value{}, fmt.Errorf("string is not valid UTF-8")
	}
	return Value{kind: KindStr, str: s}, nil
}

// NewBin wraps a byte string. The slice is not copied; the caller must
// not modify it afterwards.
func NewBin(b []byte) Value { return Value{kind: KindBin, bin: b} }

// NewArray wraps a sequence of values. The slice is not copied.
func NewArray(vals []Value) Value { return Value{kind: KindArray, arr: vals} }

// NewMapValue wraps a map.
func NewMapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, obj: m}
}

// NewHashValue wraps a hash.
func NewHashValue(h Hash) Value { return Value{kind: KindHash, hash: h} }

// NewIdentityValue wraps an identity.
func NewIdentityValue(id Identity) Value { return Value{kind: KindIdentity, id: id} }

// NewLockboxValue wraps a lockbox.
func NewLockboxValue(l *Lockbox) Value { return Value{kind: KindLockbox, lock: l} }

// NewTimeValue wraps a timestamp.
func NewTimeValue(t Time) Value { return Value{kind: KindTime, t: t} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload. The second return is false when
// the value is not a Bool; the same convention applies to every
// accessor below.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsInt() (Int, bool) { return v.i, v.kind == KindInt }

func (v Value) AsF32() (float32, bool) { return v.f32, v.kind == KindF32 }

func (v Value) AsF64() (float64, bool) { return v.f64, v.kind == KindF64 }

func (v Value) AsStr() (string, bool) { return v.str, v.kind == KindStr }

func (v Value) AsBin() ([]byte, bool) { return v.bin, v.kind == KindBin }

func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

func (v Value) AsMap() (*Map, bool) { return v.obj, v.kind == KindMap }

func (v Value) AsHash() (Hash, bool) { return v.hash, v.kind == KindHash }

func (v Value) AsIdentity() (Identity, bool) { return v.id, v.kind == KindIdentity }

func (v Value) AsLockbox() (*Lockbox, bool) { return v.lock, v.kind == KindLockbox }

func (v Value) AsTime() (Time, bool) { return v.t, v.kind == KindTime }

// Equal reports deep structural equality. Float equality is bitwise
// (two NaNs with the same payload are equal, -0 and +0 are not), which
// matches the canonical-bytes identity of the codec.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i.Equal(o.i)
	case KindF32:
		return math.Float32bits(v.f32) == math.Float32bits(o.f32)
	case KindF64:
		return math.Float64bits(v.f64) == math.Float64bits(o.f64)
	case KindStr:
		return v.str == o.str
	case KindBin:
		return bytes.Equal(v.bin, o.bin)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.obj.Equal(o.obj)
	case KindHash:
		return v.hash.Equal(o.hash)
	case KindIdentity:
		return v.id.Equal(o.id)
	case KindLockbox:
		return v.lock.Equal(o.lock)
	case KindTime:
		return v.t.Equal(o.t)
	}
	return false
}
