// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/fogpack/fogpack/lib/types"
)

// objOpts is the option set for Obj validators. Fields dispatch to
// req first, then opt, then — when unknown_ok is set — field_type;
// unknown fields without unknown_ok and fields listed in ban reject.
// unknown_ok defaults to false in schema validators and to true in
// query validators, so a query only constrains the fields it names.
type objOpts struct {
	in, nin      []*types.Map
	req          map[string]*Validator
	opt          map[string]*Validator
	ban          []string
	fieldType    *Validator
	unknownOk    bool
	minFields    int
	maxFields    int
	hasMaxFields bool

	query, objOk, size bool
}

func parseObj(m *types.Map, isQuery bool, budget *Budget) (*Validator, error) {
	o := &objOpts{unknownOk: isQuery, query: isQuery, objOk: isQuery, size: isQuery}
	v := &Validator{kind: Obj, objv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindMap)
		case "in":
			o.in, err = mapSet(fv, key)
		case "nin":
			o.nin, err = mapSet(fv, key)
		case "req":
			o.req, err = validatorMap(fv, key, isQuery, budget)
		case "opt":
			o.opt, err = validatorMap(fv, key, isQuery, budget)
		case "ban":
			o.ban, err = strSet(fv, key)
		case "field_type":
			o.fieldType, err = parseValue(fv, isQuery, budget)
		case "unknown_ok":
			o.unknownOk, err = fieldBool(fv, key)
		case "min_fields":
			o.minFields, err = fieldLen(fv, key)
		case "max_fields":
			o.maxFields, err = fieldLen(fv, key)
			o.hasMaxFields = true
		case "query":
			o.query, err = fieldBool(fv, key)
		case "obj_ok":
			o.objOk, err = fieldBool(fv, key)
		case "size":
			o.size, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Obj validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, banned := range o.ban {
		if _, ok := o.req[banned]; ok {
			return nil, buildf("field %q is both required and banned", banned)
		}
	}
	return v, nil
}

func mapSet(fv types.Value, name string) ([]*types.Map, error) {
	arr, ok := fv.AsArray()
	if !ok {
		return nil, buildf("`%s` must be an array of map constants", name)
	}
	out := make([]*types.Map, 0, len(arr))
	for _, elem := range arr {
		m, ok := elem.AsMap()
		if !ok {
			return nil, buildf("`%s` entries must be maps, got %v", name, elem.Kind())
		}
		out = append(out, m)
	}
	return out, nil
}

// validatorMap reads a field-name -> validator map option (req, opt).
func validatorMap(fv types.Value, name string, isQuery bool, budget *Budget) (map[string]*Validator, error) {
	m, ok := fv.AsMap()
	if !ok {
		return nil, buildf("`%s` must be a map of validators", name)
	}
	out := make(map[string]*Validator, m.Len())
	for i := 0; i < m.Len(); i++ {
		key, val := m.At(i)
		sub, err := parseValue(val, isQuery, budget)
		if err != nil {
			return nil, err
		}
		out[key] = sub
	}
	return out, nil
}

func (o *objOpts) validate(w *walker, val types.Value, path []string, depth int) error {
	m, ok := val.AsMap()
	if !ok {
		return failf(path, "type", "expected Obj, got %v", val.Kind())
	}
	if m.Len() < o.minFields {
		return failf(path, "min_fields", "map has %d fields, minimum is %d", m.Len(), o.minFields)
	}
	if o.hasMaxFields && m.Len() > o.maxFields {
		return failf(path, "max_fields", "map has %d fields, maximum is %d", m.Len(), o.maxFields)
	}

	reqSeen := 0
	for i := 0; i < m.Len(); i++ {
		key, fv := m.At(i)
		fieldPath := append(path, key)
		for _, banned := range o.ban {
			if key == banned {
				return failf(fieldPath, "ban", "field is banned")
			}
		}
		if sub, ok := o.req[key]; ok {
			reqSeen++
			if err := w.validate(sub, fv, fieldPath, depth+1); err != nil {
				return err
			}
			continue
		}
		if sub, ok := o.opt[key]; ok {
			if err := w.validate(sub, fv, fieldPath, depth+1); err != nil {
				return err
			}
			continue
		}
		if !o.unknownOk {
			return failf(fieldPath, "unknown_ok", "unknown field")
		}
		if o.fieldType != nil {
			if err := w.validate(o.fieldType, fv, fieldPath, depth+1); err != nil {
				return err
			}
		}
	}

	if reqSeen < len(o.req) {
		for key := range o.req {
			if !m.Has(key) {
				return failf(append(path, key), "req", "required field is missing")
			}
		}
	}

	if len(o.in) > 0 {
		for _, c := range o.in {
			if c.Equal(m) {
				return nil
			}
		}
		return failf(path, "in", "map is not in the `in` set")
	}
	for _, c := range o.nin {
		if c.Equal(m) {
			return failf(path, "nin", "map is in the `nin` set")
		}
	}
	return nil
}

func (o *objOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || len(o.req) > 0 || len(o.opt) > 0 ||
		len(o.ban) > 0 || o.fieldType != nil || o.minFields > 0 || o.hasMaxFields
}

func (o *objOpts) permits(c *checker, q *objOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on an Obj position without `query`")
	}
	structural := len(q.req) > 0 || len(q.opt) > 0 || len(q.ban) > 0 || q.fieldType != nil
	if structural && !o.objOk {
		return incompatiblef("structural refinement on an Obj position without `obj_ok`")
	}
	if (q.minFields > 0 || q.hasMaxFields) && !o.size {
		return incompatiblef("size predicate on an Obj position without `size`")
	}

	// Each query field validator is checked against the schema
	// validator governing that field: req first, then opt, then
	// field_type.
	checkField := func(name string, qv *Validator) error {
		if err := c.check(o.fieldValidator(name), qv); err != nil {
			return err
		}
		return nil
	}
	for name, qv := range q.req {
		if err := checkField(name, qv); err != nil {
			return err
		}
	}
	for name, qv := range q.opt {
		if err := checkField(name, qv); err != nil {
			return err
		}
	}
	if q.fieldType != nil {
		schemaField := o.fieldType
		if schemaField == nil {
			schemaField = anyValidator
		}
		if err := c.check(schemaField, q.fieldType); err != nil {
			return err
		}
	}
	return nil
}

// fieldValidator returns the schema validator governing the named
// field.
func (o *objOpts) fieldValidator(name string) *Validator {
	if sub, ok := o.req[name]; ok {
		return sub
	}
	if sub, ok := o.opt[name]; ok {
		return sub
	}
	if o.fieldType != nil {
		return o.fieldType
	}
	return anyValidator
}
