// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"strconv"

	"github.com/fogpack/fogpack/lib/types"
)

// arrayOpts is the option set for Array validators. items matches
// positionally against the head of the array; elements beyond the
// items list are matched against extra_items when present and are
// otherwise unconstrained. Each contains entry must match at least one
// element. unique demands pairwise-distinct elements.
type arrayOpts struct {
	in, nin   [][]types.Value
	items     []*Validator
	extra     *Validator
	contains  []*Validator
	unique    bool
	minLen    int
	maxLen    int
	hasMaxLen bool

	query, array, containsOk, uniqueOk, size bool
}

func newArrayOpts(isQuery bool, in [][]types.Value) *arrayOpts {
	return &arrayOpts{
		in: in, query: isQuery, array: isQuery,
		containsOk: isQuery, uniqueOk: isQuery, size: isQuery,
	}
}

func parseArray(m *types.Map, isQuery bool, budget *Budget) (*Validator, error) {
	o := newArrayOpts(isQuery, nil)
	v := &Validator{kind: Array, arrayv: o}
	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindArray)
		case "in":
			o.in, err = arraySet(fv, key)
		case "nin":
			o.nin, err = arraySet(fv, key)
		case "items", "prefix":
			// `prefix` is the legacy spelling of the positional list.
			if o.items != nil {
				err = buildf("`items` and `prefix` are aliases; give only one")
				break
			}
			o.items, err = validatorList(fv, key, isQuery, budget)
		case "extra_items":
			o.extra, err = parseValue(fv, isQuery, budget)
		case "contains":
			o.contains, err = validatorList(fv, key, isQuery, budget)
		case "unique":
			o.unique, err = fieldBool(fv, key)
		case "min_len":
			o.minLen, err = fieldLen(fv, key)
		case "max_len":
			o.maxLen, err = fieldLen(fv, key)
			o.hasMaxLen = true
		case "query":
			o.query, err = fieldBool(fv, key)
		case "array":
			o.array, err = fieldBool(fv, key)
		case "contains_ok":
			o.containsOk, err = fieldBool(fv, key)
		case "unique_ok":
			o.uniqueOk, err = fieldBool(fv, key)
		case "size":
			o.size, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Array validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func arraySet(fv types.Value, name string) ([][]types.Value, error) {
	// The option is always an array of array constants; there is no
	// single-constant shorthand for arrays.
	outer, ok := fv.AsArray()
	if !ok {
		return nil, buildf("`%s` must be an array of array constants", name)
	}
	out := make([][]types.Value, 0, len(outer))
	for _, elem := range outer {
		inner, ok := elem.AsArray()
		if !ok {
			return nil, buildf("`%s` entries must be arrays, got %v", name, elem.Kind())
		}
		out = append(out, inner)
	}
	return out, nil
}

func validatorList(fv types.Value, name string, isQuery bool, budget *Budget) ([]*Validator, error) {
	arr, ok := fv.AsArray()
	if !ok {
		return nil, buildf("`%s` must be an array of validators", name)
	}
	out := make([]*Validator, 0, len(arr))
	for _, elem := range arr {
		sub, err := parseValue(elem, isQuery, budget)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (o *arrayOpts) validate(w *walker, val types.Value, path []string, depth int) error {
	arr, ok := val.AsArray()
	if !ok {
		return failf(path, "type", "expected Array, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if arrayEqual(c, arr) {
				return nil
			}
		}
		return failf(path, "in", "array is not in the `in` set")
	}
	for _, c := range o.nin {
		if arrayEqual(c, arr) {
			return failf(path, "nin", "array is in the `nin` set")
		}
	}
	if len(arr) < o.minLen {
		return failf(path, "min_len", "array has %d elements, minimum is %d", len(arr), o.minLen)
	}
	if o.hasMaxLen && len(arr) > o.maxLen {
		return failf(path, "max_len", "array has %d elements, maximum is %d", len(arr), o.maxLen)
	}

	for i, elem := range arr {
		elemPath := append(path, strconv.Itoa(i))
		if i < len(o.items) {
			if err := w.validate(o.items[i], elem, elemPath, depth+1); err != nil {
				return err
			}
		} else if o.extra != nil {
			if err := w.validate(o.extra, elem, elemPath, depth+1); err != nil {
				return err
			}
		}
	}

	for ci, c := range o.contains {
		found := false
		for _, elem := range arr {
			if w.matches(c, elem, depth+1) {
				found = true
				break
			}
		}
		if !found {
			return failf(path, "contains", "no element matches `contains` entry %d", ci)
		}
	}

	if o.unique {
		for i := 0; i < len(arr); i++ {
			for j := i + 1; j < len(arr); j++ {
				if arr[i].Equal(arr[j]) {
					return failf(path, "unique", "elements %d and %d are equal", i, j)
				}
			}
		}
	}
	return nil
}

func arrayEqual(a, b []types.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (o *arrayOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.items != nil || o.extra != nil ||
		len(o.contains) > 0 || o.unique || o.minLen > 0 || o.hasMaxLen
}

func (o *arrayOpts) permits(c *checker, q *arrayOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on an Array position without `query`")
	}
	if (q.items != nil || q.extra != nil) && !o.array {
		return incompatiblef("items/extra_items on an Array position without `array`")
	}
	if len(q.contains) > 0 && !o.containsOk {
		return incompatiblef("contains on an Array position without `contains_ok`")
	}
	if q.unique && !o.uniqueOk {
		return incompatiblef("unique on an Array position without `unique_ok`")
	}
	if (q.minLen > 0 || q.hasMaxLen) && !o.size {
		return incompatiblef("size predicate on an Array position without `size`")
	}

	// Recurse positionally: each query position is checked against the
	// schema validator governing that position.
	for i, qi := range q.items {
		if err := c.check(o.positional(i), qi); err != nil {
			return err
		}
	}
	if q.extra != nil {
		schemaExtra := o.extra
		if schemaExtra == nil {
			schemaExtra = anyValidator
		}
		if err := c.check(schemaExtra, q.extra); err != nil {
			return err
		}
	}
	for _, qc := range q.contains {
		schemaElem := o.extra
		if schemaElem == nil {
			schemaElem = anyValidator
		}
		if err := c.check(schemaElem, qc); err != nil {
			return err
		}
	}
	return nil
}

// positional returns the schema validator governing array position i.
func (o *arrayOpts) positional(i int) *Validator {
	if i < len(o.items) {
		return o.items[i]
	}
	if o.extra != nil {
		return o.extra
	}
	return anyValidator
}

// anyValidator is the shared empty validator used when a schema leaves
// a position unconstrained.
var anyValidator = &Validator{kind: Any}
