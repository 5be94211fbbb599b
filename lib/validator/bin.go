// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"bytes"

	"github.com/fogpack/fogpack/lib/types"
)

// binOpts is the option set for Bin validators. Ordering predicates
// treat the bytes as a little-endian arbitrary-precision unsigned
// integer; bit predicates apply per byte position.
type binOpts struct {
	in, nin    [][]byte
	min, max   []byte
	hasMin     bool
	hasMax     bool
	exMin      bool
	exMax      bool
	bitsSet    []byte
	bitsClr    []byte
	minLen     int
	maxLen     int
	hasMaxLen  bool

	query, ord, bit, size bool
}

func newBinOpts(isQuery bool, in [][]byte) *binOpts {
	return &binOpts{in: in, query: isQuery, ord: isQuery, bit: isQuery, size: isQuery}
}

func parseBin(m *types.Map, isQuery bool) (*Validator, error) {
	o := newBinOpts(isQuery, nil)
	v := &Validator{kind: Bin, binv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindBin)
		case "in":
			o.in, err = binSet(fv, key)
		case "nin":
			o.nin, err = binSet(fv, key)
		case "min":
			o.min, err = fieldBin(fv, key)
			o.hasMin = true
		case "max":
			o.max, err = fieldBin(fv, key)
			o.hasMax = true
		case "ex_min":
			o.exMin, err = fieldBool(fv, key)
		case "ex_max":
			o.exMax, err = fieldBool(fv, key)
		case "bits_set":
			o.bitsSet, err = fieldBin(fv, key)
		case "bits_clr":
			o.bitsClr, err = fieldBin(fv, key)
		case "min_len":
			o.minLen, err = fieldLen(fv, key)
		case "max_len":
			o.maxLen, err = fieldLen(fv, key)
			o.hasMaxLen = true
		case "query":
			o.query, err = fieldBool(fv, key)
		case "ord":
			o.ord, err = fieldBool(fv, key)
		case "bit":
			o.bit, err = fieldBool(fv, key)
		case "size":
			o.size, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Bin validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func fieldBin(fv types.Value, name string) ([]byte, error) {
	b, ok := fv.AsBin()
	if !ok {
		return nil, buildf("`%s` must be a Bin", name)
	}
	return b, nil
}

func binSet(fv types.Value, name string) ([][]byte, error) {
	vals, err := constSet(fv, types.KindBin, name)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		b, _ := v.AsBin()
		out = append(out, b)
	}
	return out, nil
}

func (o *binOpts) validate(val types.Value, path []string) error {
	b, ok := val.AsBin()
	if !ok {
		return failf(path, "type", "expected Bin, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if bytes.Equal(c, b) {
				return nil
			}
		}
		return failf(path, "in", "binary is not in the `in` set")
	}
	for _, c := range o.nin {
		if bytes.Equal(c, b) {
			return failf(path, "nin", "binary is in the `nin` set")
		}
	}
	if len(b) < o.minLen {
		return failf(path, "min_len", "binary is %d bytes, minimum is %d", len(b), o.minLen)
	}
	if o.hasMaxLen && len(b) > o.maxLen {
		return failf(path, "max_len", "binary is %d bytes, maximum is %d", len(b), o.maxLen)
	}
	if o.hasMin {
		cmp := types.CmpBin(b, o.min)
		if cmp < 0 || (o.exMin && cmp == 0) {
			return failf(path, "min", "binary value below minimum")
		}
	}
	if o.hasMax {
		cmp := types.CmpBin(b, o.max)
		if cmp > 0 || (o.exMax && cmp == 0) {
			return failf(path, "max", "binary value above maximum")
		}
	}
	if err := checkBits(b, o.bitsSet, true); err != nil {
		return failf(path, "bits_set", "%v", err)
	}
	if err := checkBits(b, o.bitsClr, false); err != nil {
		return failf(path, "bits_clr", "%v", err)
	}
	return nil
}

// checkBits verifies that every bit set in mask is set (wantSet) or
// clear (!wantSet) in b. Bytes of b beyond the mask are unconstrained;
// mask bytes beyond b demand zero there, which for wantSet means the
// check fails and for wantSet==false passes vacuously.
func checkBits(b, mask []byte, wantSet bool) error {
	for i, m := range mask {
		if m == 0 {
			continue
		}
		var have byte
		if i < len(b) {
			have = b[i]
		}
		if wantSet {
			if have&m != m {
				return errBitMissing
			}
		} else {
			if have&m != 0 {
				return errBitPresent
			}
		}
	}
	return nil
}

var (
	errBitMissing = bitErr("required bit is clear")
	errBitPresent = bitErr("forbidden bit is set")
)

type bitErr string

func (e bitErr) Error() string { return string(e) }

func (o *binOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.hasMin || o.hasMax ||
		len(o.bitsSet) > 0 || len(o.bitsClr) > 0 || o.minLen > 0 || o.hasMaxLen
}

func (o *binOpts) permits(q *binOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on a Bin position without `query`")
	}
	if (q.hasMin || q.hasMax) && !o.ord {
		return incompatiblef("ordering predicate on a Bin position without `ord`")
	}
	if (len(q.bitsSet) > 0 || len(q.bitsClr) > 0) && !o.bit {
		return incompatiblef("bit predicate on a Bin position without `bit`")
	}
	if (q.minLen > 0 || q.hasMaxLen) && !o.size {
		return incompatiblef("size predicate on a Bin position without `size`")
	}
	return nil
}
