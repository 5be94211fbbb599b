// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/fogpack/fogpack/lib/types"
)

// hashOpts is the option set for Hash validators. link constrains the
// document a hash points at; schema constrains which schemas that
// document may use. Neither can be resolved against the value in
// hand, so validation records them in the Checklist.
type hashOpts struct {
	in, nin   []types.Hash
	link      *Validator
	schemas   []types.Hash
	hasSchema bool

	query, linkOk, schemaOk bool
}

func newHashOpts(isQuery bool, in []types.Hash) *hashOpts {
	return &hashOpts{in: in, query: isQuery, linkOk: isQuery, schemaOk: isQuery}
}

func parseHash(m *types.Map, isQuery bool, budget *Budget) (*Validator, error) {
	o := newHashOpts(isQuery, nil)
	v := &Validator{kind: Hash, hashv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindHash)
		case "in":
			o.in, err = hashSet(fv, key)
		case "nin":
			o.nin, err = hashSet(fv, key)
		case "link":
			o.link, err = parseValue(fv, isQuery, budget)
		case "schema":
			o.schemas, err = hashSet(fv, key)
			o.hasSchema = true
		case "query":
			o.query, err = fieldBool(fv, key)
		case "link_ok":
			o.linkOk, err = fieldBool(fv, key)
		case "schema_ok":
			o.schemaOk, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Hash validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func hashSet(fv types.Value, name string) ([]types.Hash, error) {
	vals, err := constSet(fv, types.KindHash, name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Hash, 0, len(vals))
	for _, v := range vals {
		h, _ := v.AsHash()
		out = append(out, h)
	}
	return out, nil
}

func (o *hashOpts) validate(w *walker, val types.Value, path []string) error {
	h, ok := val.AsHash()
	if !ok {
		return failf(path, "type", "expected Hash, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		found := false
		for _, c := range o.in {
			if c.Equal(h) {
				found = true
				break
			}
		}
		if !found {
			return failf(path, "in", "hash is not in the `in` set")
		}
	}
	for _, c := range o.nin {
		if c.Equal(h) {
			return failf(path, "nin", "hash is in the `nin` set")
		}
	}
	if (o.link != nil || o.hasSchema) && w.list != nil {
		w.list.add(h, o.schemas, o.link)
	}
	return nil
}

func (o *hashOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.link != nil || o.hasSchema
}

func (o *hashOpts) permits(c *checker, q *hashOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on a Hash position without `query`")
	}
	if q.link != nil {
		if !o.linkOk {
			return incompatiblef("link on a Hash position without `link_ok`")
		}
		schemaLink := o.link
		if schemaLink == nil {
			schemaLink = anyValidator
		}
		if err := c.check(schemaLink, q.link); err != nil {
			return err
		}
	}
	if q.hasSchema && !o.schemaOk {
		return incompatiblef("schema constraint on a Hash position without `schema_ok`")
	}
	return nil
}
