// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/fogpack/fogpack/lib/types"
)

// Validate checks value against the validator, resolving alias
// references through aliases (may be nil). Hash-link obligations are
// appended to list when it is non-nil. Recursion depth — including
// recursion through aliases — is bounded by DefaultMaxDepth.
func Validate(v *Validator, value types.Value, aliases map[string]*Validator, list *Checklist) error {
	w := &walker{aliases: aliases, list: list, maxDepth: DefaultMaxDepth}
	return w.validate(v, value, nil, 0)
}

type walker struct {
	aliases  map[string]*Validator
	list     *Checklist
	maxDepth int
}

func (w *walker) validate(v *Validator, value types.Value, path []string, depth int) error {
	if depth > w.maxDepth {
		return failf(path, "depth", "validation depth exceeds %d", w.maxDepth)
	}
	switch v.kind {
	case Any:
		return nil
	case Ref:
		target, ok := w.aliases[v.ref]
		if !ok {
			return failf(path, "type", "unresolved alias %q", v.ref)
		}
		return w.validate(target, value, path, depth+1)
	case Multi:
		for _, alt := range v.anyOf {
			if err := w.validate(alt, value, path, depth+1); err == nil {
				return nil
			}
		}
		return failf(path, "any_of", "no alternative matched")
	case Null:
		if !value.IsNull() {
			return failf(path, "type", "expected Null, got %v", value.Kind())
		}
		return nil
	case Bool:
		return v.boolv.validate(value, path)
	case Int:
		return v.intv.validate(value, path)
	case F32:
		return v.f32v.validate(value, path)
	case F64:
		return v.f64v.validate(value, path)
	case Str:
		return v.strv.validate(value, path)
	case Bin:
		return v.binv.validate(value, path)
	case Time:
		return v.timev.validate(value, path)
	case Ident:
		return v.identv.validate(value, path)
	case Lock:
		return v.lockv.validate(value, path)
	case Array:
		return v.arrayv.validate(w, value, path, depth)
	case Obj:
		return v.objv.validate(w, value, path, depth)
	case Hash:
		return v.hashv.validate(w, value, path)
	}
	return failf(path, "type", "unknown validator kind")
}

// matches reports whether value passes v, discarding the failure
// detail. Used for `contains` searches, where per-element failures
// are expected.
func (w *walker) matches(v *Validator, value types.Value, depth int) bool {
	return w.validate(v, value, nil, depth) == nil
}
