// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/fogpack/fogpack/lib/types"
)

// intOpts is the option set for Int validators.
type intOpts struct {
	in, nin    []types.Int
	min, max   types.Int
	hasMin     bool
	hasMax     bool
	exMin      bool
	exMax      bool
	bitsSet    uint64
	bitsClr    uint64
	hasBitsSet bool
	hasBitsClr bool

	query, ord, bit bool
}

func newIntOpts(isQuery bool, in []types.Int) *intOpts {
	return &intOpts{in: in, query: isQuery, ord: isQuery, bit: isQuery}
}

func parseInt(m *types.Map, isQuery bool) (*Validator, error) {
	o := newIntOpts(isQuery, nil)
	v := &Validator{kind: Int, intv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindInt)
		case "in":
			o.in, err = intSet(fv, key)
		case "nin":
			o.nin, err = intSet(fv, key)
		case "min":
			o.min, err = fieldInt(fv, key)
			o.hasMin = true
		case "max":
			o.max, err = fieldInt(fv, key)
			o.hasMax = true
		case "ex_min":
			o.exMin, err = fieldBool(fv, key)
		case "ex_max":
			o.exMax, err = fieldBool(fv, key)
		case "bits_set":
			var i types.Int
			i, err = fieldInt(fv, key)
			o.bitsSet = i.Bits()
			o.hasBitsSet = true
		case "bits_clr":
			var i types.Int
			i, err = fieldInt(fv, key)
			o.bitsClr = i.Bits()
			o.hasBitsClr = true
		case "query":
			o.query, err = fieldBool(fv, key)
		case "ord":
			o.ord, err = fieldBool(fv, key)
		case "bit":
			o.bit, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Int validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func intSet(fv types.Value, name string) ([]types.Int, error) {
	vals, err := constSet(fv, types.KindInt, name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Int, 0, len(vals))
	for _, v := range vals {
		i, _ := v.AsInt()
		out = append(out, i)
	}
	return out, nil
}

func (o *intOpts) validate(val types.Value, path []string) error {
	i, ok := val.AsInt()
	if !ok {
		return failf(path, "type", "expected Int, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if c.Equal(i) {
				return nil
			}
		}
		return failf(path, "in", "integer %s is not in the `in` set", i)
	}
	for _, c := range o.nin {
		if c.Equal(i) {
			return failf(path, "nin", "integer %s is in the `nin` set", i)
		}
	}
	if o.hasMin {
		cmp := i.Cmp(o.min)
		if cmp < 0 || (o.exMin && cmp == 0) {
			return failf(path, "min", "integer %s below minimum %s", i, o.min)
		}
	}
	if o.hasMax {
		cmp := i.Cmp(o.max)
		if cmp > 0 || (o.exMax && cmp == 0) {
			return failf(path, "max", "integer %s above maximum %s", i, o.max)
		}
	}
	if o.hasBitsSet && i.Bits()&o.bitsSet != o.bitsSet {
		return failf(path, "bits_set", "integer %s is missing required bits", i)
	}
	if o.hasBitsClr && i.Bits()&o.bitsClr != 0 {
		return failf(path, "bits_clr", "integer %s has forbidden bits set", i)
	}
	return nil
}

// restricts reports whether the options constrain values at all; a
// non-restricting query needs no permissions from the schema.
func (o *intOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.hasMin || o.hasMax || o.hasBitsSet || o.hasBitsClr
}

func (o *intOpts) permits(q *intOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on an Int position without `query`")
	}
	if (q.hasMin || q.hasMax) && !o.ord {
		return incompatiblef("ordering predicate on an Int position without `ord`")
	}
	if (q.hasBitsSet || q.hasBitsClr) && !o.bit {
		return incompatiblef("bit predicate on an Int position without `bit`")
	}
	return nil
}

// f32Opts is the option set for F32 validators. Ordering uses the
// IEEE-754 total-order predicate.
type f32Opts struct {
	in, nin  []float32
	min, max float32
	hasMin   bool
	hasMax   bool
	exMin    bool
	exMax    bool

	query, ord bool
}

func newF32Opts(isQuery bool, in []float32) *f32Opts {
	return &f32Opts{in: in, query: isQuery, ord: isQuery}
}

func parseF32(m *types.Map, isQuery bool) (*Validator, error) {
	o := newF32Opts(isQuery, nil)
	v := &Validator{kind: F32, f32v: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindF32)
		case "in":
			o.in, err = f32Set(fv, key)
		case "nin":
			o.nin, err = f32Set(fv, key)
		case "min":
			o.min, err = fieldF32(fv, key)
			o.hasMin = true
		case "max":
			o.max, err = fieldF32(fv, key)
			o.hasMax = true
		case "ex_min":
			o.exMin, err = fieldBool(fv, key)
		case "ex_max":
			o.exMax, err = fieldBool(fv, key)
		case "query":
			o.query, err = fieldBool(fv, key)
		case "ord":
			o.ord, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in F32 validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func fieldF32(fv types.Value, name string) (float32, error) {
	f, ok := fv.AsF32()
	if !ok {
		return 0, buildf("`%s` must be an F32", name)
	}
	return f, nil
}

func f32Set(fv types.Value, name string) ([]float32, error) {
	vals, err := constSet(fv, types.KindF32, name)
	if err != nil {
		return nil, err
	}
	out := make([]float32, 0, len(vals))
	for _, v := range vals {
		f, _ := v.AsF32()
		out = append(out, f)
	}
	return out, nil
}

func (o *f32Opts) validate(val types.Value, path []string) error {
	f, ok := val.AsF32()
	if !ok {
		return failf(path, "type", "expected F32, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if types.CmpF32(c, f) == 0 {
				return nil
			}
		}
		return failf(path, "in", "value is not in the `in` set")
	}
	for _, c := range o.nin {
		if types.CmpF32(c, f) == 0 {
			return failf(path, "nin", "value is in the `nin` set")
		}
	}
	if o.hasMin {
		cmp := types.CmpF32(f, o.min)
		if cmp < 0 || (o.exMin && cmp == 0) {
			return failf(path, "min", "value below minimum")
		}
	}
	if o.hasMax {
		cmp := types.CmpF32(f, o.max)
		if cmp > 0 || (o.exMax && cmp == 0) {
			return failf(path, "max", "value above maximum")
		}
	}
	return nil
}

func (o *f32Opts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.hasMin || o.hasMax
}

func (o *f32Opts) permits(q *f32Opts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on an F32 position without `query`")
	}
	if (q.hasMin || q.hasMax) && !o.ord {
		return incompatiblef("ordering predicate on an F32 position without `ord`")
	}
	return nil
}

// f64Opts is the option set for F64 validators.
type f64Opts struct {
	in, nin  []float64
	min, max float64
	hasMin   bool
	hasMax   bool
	exMin    bool
	exMax    bool

	query, ord bool
}

func newF64Opts(isQuery bool, in []float64) *f64Opts {
	return &f64Opts{in: in, query: isQuery, ord: isQuery}
}

func parseF64(m *types.Map, isQuery bool) (*Validator, error) {
	o := newF64Opts(isQuery, nil)
	v := &Validator{kind: F64, f64v: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindF64)
		case "in":
			o.in, err = f64Set(fv, key)
		case "nin":
			o.nin, err = f64Set(fv, key)
		case "min":
			o.min, err = fieldF64(fv, key)
			o.hasMin = true
		case "max":
			o.max, err = fieldF64(fv, key)
			o.hasMax = true
		case "ex_min":
			o.exMin, err = fieldBool(fv, key)
		case "ex_max":
			o.exMax, err = fieldBool(fv, key)
		case "query":
			o.query, err = fieldBool(fv, key)
		case "ord":
			o.ord, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in F64 validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func fieldF64(fv types.Value, name string) (float64, error) {
	f, ok := fv.AsF64()
	if !ok {
		return 0, buildf("`%s` must be an F64", name)
	}
	return f, nil
}

func f64Set(fv types.Value, name string) ([]float64, error) {
	vals, err := constSet(fv, types.KindF64, name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, _ := v.AsF64()
		out = append(out, f)
	}
	return out, nil
}

func (o *f64Opts) validate(val types.Value, path []string) error {
	f, ok := val.AsF64()
	if !ok {
		return failf(path, "type", "expected F64, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if types.CmpF64(c, f) == 0 {
				return nil
			}
		}
		return failf(path, "in", "value is not in the `in` set")
	}
	for _, c := range o.nin {
		if types.CmpF64(c, f) == 0 {
			return failf(path, "nin", "value is in the `nin` set")
		}
	}
	if o.hasMin {
		cmp := types.CmpF64(f, o.min)
		if cmp < 0 || (o.exMin && cmp == 0) {
			return failf(path, "min", "value below minimum")
		}
	}
	if o.hasMax {
		cmp := types.CmpF64(f, o.max)
		if cmp > 0 || (o.exMax && cmp == 0) {
			return failf(path, "max", "value above maximum")
		}
	}
	return nil
}

func (o *f64Opts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.hasMin || o.hasMax
}

func (o *f64Opts) permits(q *f64Opts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on an F64 position without `query`")
	}
	if (q.hasMin || q.hasMax) && !o.ord {
		return incompatiblef("ordering predicate on an F64 position without `ord`")
	}
	return nil
}

// timeOpts is the option set for Time validators.
type timeOpts struct {
	in, nin  []types.Time
	min, max types.Time
	hasMin   bool
	hasMax   bool
	exMin    bool
	exMax    bool

	query, ord bool
}

func newTimeOpts(isQuery bool, in []types.Time) *timeOpts {
	return &timeOpts{in: in, query: isQuery, ord: isQuery}
}

func parseTime(m *types.Map, isQuery bool) (*Validator, error) {
	o := newTimeOpts(isQuery, nil)
	v := &Validator{kind: Time, timev: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindTime)
		case "in":
			o.in, err = timeSet(fv, key)
		case "nin":
			o.nin, err = timeSet(fv, key)
		case "min":
			o.min, err = fieldTime(fv, key)
			o.hasMin = true
		case "max":
			o.max, err = fieldTime(fv, key)
			o.hasMax = true
		case "ex_min":
			o.exMin, err = fieldBool(fv, key)
		case "ex_max":
			o.exMax, err = fieldBool(fv, key)
		case "query":
			o.query, err = fieldBool(fv, key)
		case "ord":
			o.ord, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Time validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func fieldTime(fv types.Value, name string) (types.Time, error) {
	t, ok := fv.AsTime()
	if !ok {
		return types.Time{}, buildf("`%s` must be a Time", name)
	}
	return t, nil
}

func timeSet(fv types.Value, name string) ([]types.Time, error) {
	vals, err := constSet(fv, types.KindTime, name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Time, 0, len(vals))
	for _, v := range vals {
		t, _ := v.AsTime()
		out = append(out, t)
	}
	return out, nil
}

func (o *timeOpts) validate(val types.Value, path []string) error {
	t, ok := val.AsTime()
	if !ok {
		return failf(path, "type", "expected Time, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if c.Equal(t) {
				return nil
			}
		}
		return failf(path, "in", "timestamp is not in the `in` set")
	}
	for _, c := range o.nin {
		if c.Equal(t) {
			return failf(path, "nin", "timestamp is in the `nin` set")
		}
	}
	if o.hasMin {
		cmp := t.Cmp(o.min)
		if cmp < 0 || (o.exMin && cmp == 0) {
			return failf(path, "min", "timestamp before minimum")
		}
	}
	if o.hasMax {
		cmp := t.Cmp(o.max)
		if cmp > 0 || (o.exMax && cmp == 0) {
			return failf(path, "max", "timestamp after maximum")
		}
	}
	return nil
}

func (o *timeOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.hasMin || o.hasMax
}

func (o *timeOpts) permits(q *timeOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on a Time position without `query`")
	}
	if (q.hasMin || q.hasMax) && !o.ord {
		return incompatiblef("ordering predicate on a Time position without `ord`")
	}
	return nil
}
