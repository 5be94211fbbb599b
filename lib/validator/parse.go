// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"math"

	"github.com/fogpack/fogpack/lib/types"
)

// Option-field readers. Each takes the raw field value and the field
// name (for error messages) and returns the typed payload.

func fieldBool(fv types.Value, name string) (bool, error) {
	b, ok := fv.AsBool()
	if !ok {
		return false, buildf("`%s` must be a boolean", name)
	}
	return b, nil
}

func fieldStr(fv types.Value, name string) (string, error) {
	s, ok := fv.AsStr()
	if !ok {
		return "", buildf("`%s` must be a string", name)
	}
	return s, nil
}

func fieldInt(fv types.Value, name string) (types.Int, error) {
	i, ok := fv.AsInt()
	if !ok {
		return types.Int{}, buildf("`%s` must be an integer", name)
	}
	return i, nil
}

// fieldLen reads a non-negative integer that fits in an int, for
// length and count options.
func fieldLen(fv types.Value, name string) (int, error) {
	i, err := fieldInt(fv, name)
	if err != nil {
		return 0, err
	}
	u, ok := i.AsU64()
	if !ok || u > math.MaxInt32 {
		return 0, buildf("`%s` must be a non-negative integer below 2^31", name)
	}
	return int(u), nil
}

// constSet reads an `in`/`nin` option: a single constant of the given
// kind, or an array of them.
func constSet(fv types.Value, kind types.Kind, name string) ([]types.Value, error) {
	if fv.Kind() == kind && kind != types.KindArray {
		return []types.Value{fv}, nil
	}
	arr, ok := fv.AsArray()
	if !ok {
		return nil, buildf("`%s` must be a %v or an array of them", name, kind)
	}
	// For Array validators the option is always an array of array
	// constants; a flat array is ambiguous and rejected.
	out := make([]types.Value, 0, len(arr))
	for _, elem := range arr {
		if elem.Kind() != kind {
			return nil, buildf("`%s` entries must be %v, got %v", name, kind, elem.Kind())
		}
		out = append(out, elem)
	}
	return out, nil
}

// checkDefault verifies a `default` option is of the validator's own
// kind. The default is documentation for consumers; it takes no part
// in validation.
func checkDefault(fv types.Value, kind types.Kind) error {
	if fv.Kind() != kind {
		return buildf("`default` must be a %v, got %v", kind, fv.Kind())
	}
	return nil
}
