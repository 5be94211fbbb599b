// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/fogpack/fogpack/lib/types"
)

// boolOpts is the option set for Bool validators.
type boolOpts struct {
	in, nin []bool
	query   bool
}

func parseBool(m *types.Map, isQuery bool) (*Validator, error) {
	o := &boolOpts{query: isQuery}
	v := &Validator{kind: Bool, boolv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindBool)
		case "in":
			o.in, err = boolSet(fv, key)
		case "nin":
			o.nin, err = boolSet(fv, key)
		case "query":
			o.query, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Bool validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func boolSet(fv types.Value, name string) ([]bool, error) {
	vals, err := constSet(fv, types.KindBool, name)
	if err != nil {
		return nil, err
	}
	out := make([]bool, 0, len(vals))
	for _, v := range vals {
		b, _ := v.AsBool()
		out = append(out, b)
	}
	return out, nil
}

func (o *boolOpts) validate(val types.Value, path []string) error {
	b, ok := val.AsBool()
	if !ok {
		return failf(path, "type", "expected Bool, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if c == b {
				return nil
			}
		}
		return failf(path, "in", "boolean %v is not in the `in` set", b)
	}
	for _, c := range o.nin {
		if c == b {
			return failf(path, "nin", "boolean %v is in the `nin` set", b)
		}
	}
	return nil
}

func (o *boolOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0
}

func (o *boolOpts) permits(q *boolOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on a Bool position without `query`")
	}
	return nil
}

// identOpts is the option set for Ident validators.
type identOpts struct {
	in, nin []types.Identity
	query   bool
}

func parseIdent(m *types.Map, isQuery bool) (*Validator, error) {
	o := &identOpts{query: isQuery}
	v := &Validator{kind: Ident, identv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindIdentity)
		case "in":
			o.in, err = identSet(fv, key)
		case "nin":
			o.nin, err = identSet(fv, key)
		case "query":
			o.query, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Ident validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func identSet(fv types.Value, name string) ([]types.Identity, error) {
	vals, err := constSet(fv, types.KindIdentity, name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Identity, 0, len(vals))
	for _, v := range vals {
		id, _ := v.AsIdentity()
		out = append(out, id)
	}
	return out, nil
}

func (o *identOpts) validate(val types.Value, path []string) error {
	id, ok := val.AsIdentity()
	if !ok {
		return failf(path, "type", "expected Ident, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if c.Equal(id) {
				return nil
			}
		}
		return failf(path, "in", "identity is not in the `in` set")
	}
	for _, c := range o.nin {
		if c.Equal(id) {
			return failf(path, "nin", "identity is in the `nin` set")
		}
	}
	return nil
}

func (o *identOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0
}

func (o *identOpts) permits(q *identOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on an Ident position without `query`")
	}
	return nil
}

// lockOpts is the option set for Lock validators. Lockboxes are
// opaque; the only predicate is an encoded-size bound.
type lockOpts struct {
	maxLen    int
	hasMaxLen bool
	size      bool
}

func parseLock(m *types.Map, isQuery bool) (*Validator, error) {
	o := &lockOpts{size: isQuery}
	v := &Validator{kind: Lock, lockv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "max_len":
			o.maxLen, err = fieldLen(fv, key)
			o.hasMaxLen = true
		case "size":
			o.size, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Lock validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (o *lockOpts) validate(val types.Value, path []string) error {
	box, ok := val.AsLockbox()
	if !ok {
		return failf(path, "type", "expected Lock, got %v", val.Kind())
	}
	if o.hasMaxLen && box.Size() > o.maxLen {
		return failf(path, "max_len", "lockbox is %d bytes, maximum is %d", box.Size(), o.maxLen)
	}
	return nil
}

func (o *lockOpts) restricts() bool {
	return o.hasMaxLen
}

func (o *lockOpts) permits(q *lockOpts) error {
	if q.hasMaxLen && !o.size {
		return incompatiblef("size predicate on a Lock position without `size`")
	}
	return nil
}
