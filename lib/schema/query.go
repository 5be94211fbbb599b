// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/types"
	"github.com/fogpack/fogpack/lib/validator"
)

// Query is a validator aimed at the entries under one key of a
// document. On the wire it is the canonical encoding of the map
// {"key": <entry key>, "query": <validator value>}. A query carries
// no schema context of its own; a Schema decides whether it is
// admissible before it is ever matched.
type Query struct {
	key       string
	validator *validator.Validator
	value     types.Value
}

// NewQuery builds a query from an entry key and a validator value.
// The validator is parsed in query mode (its own permission flags are
// irrelevant; only the schema's matter).
func NewQuery(key string, validatorValue types.Value) (*Query, error) {
	v, err := validator.Parse(validatorValue, true, nil)
	if err != nil {
		return nil, err
	}
	return &Query{key: key, validator: v, value: validatorValue}, nil
}

// Key returns the entry key the query targets.
func (q *Query) Key() string { return q.key }

// Validator returns the parsed query validator.
func (q *Query) Validator() *validator.Validator { return q.validator }

// Match reports whether an entry passes the query. A validation
// rejection is a non-match, not an error; errors are reserved for a
// key mismatch. Hash-link constraints in queries cannot be resolved
// here and are ignored by Match.
func (q *Query) Match(e *Entry) (bool, error) {
	if e.Key() != q.key {
		return false, fmt.Errorf("entry key %q does not match query key %q", e.Key(), q.key)
	}
	err := validator.Validate(q.validator, e.Value(), nil, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, validator.ErrValidation) {
		return false, nil
	}
	return false, err
}

// encode serializes the query to its wire form.
func (q *Query) encode() ([]byte, error) {
	m := types.NewMap()
	keyVal, err := types.NewStr(q.key)
	if err != nil {
		return nil, err
	}
	if err := m.Set("key", keyVal); err != nil {
		return nil, err
	}
	if err := m.Set("query", q.value); err != nil {
		return nil, err
	}
	out, err := codec.Encode(types.NewMapValue(m))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxQuerySize {
		return nil, fmt.Errorf("%w: encoded query is %d bytes, maximum is %d",
			codec.ErrLimit, len(out), MaxQuerySize)
	}
	return out, nil
}

// decodeQueryBytes parses the wire form back into a Query. The regex
// budget caps how many patterns a hostile query may force us to
// compile.
func decodeQueryBytes(buf []byte, maxRegex int) (*Query, error) {
	if len(buf) > MaxQuerySize {
		return nil, fmt.Errorf("%w: query is %d bytes, maximum is %d",
			codec.ErrLimit, len(buf), MaxQuerySize)
	}
	value, err := codec.Decode(buf)
	if err != nil {
		return nil, err
	}
	m, ok := value.AsMap()
	if !ok || m.Len() != 2 {
		return nil, fmt.Errorf("%w: query must be a two-field map", codec.ErrMalformed)
	}
	keyVal, ok := m.Get("key")
	if !ok {
		return nil, fmt.Errorf("%w: query is missing the `key` field", codec.ErrMalformed)
	}
	key, ok := keyVal.AsStr()
	if !ok {
		return nil, fmt.Errorf("%w: query `key` must be a string", codec.ErrMalformed)
	}
	queryVal, ok := m.Get("query")
	if !ok {
		return nil, fmt.Errorf("%w: query is missing the `query` field", codec.ErrMalformed)
	}
	v, err := validator.Parse(queryVal, true, validator.NewBudget(maxRegex))
	if err != nil {
		return nil, err
	}
	return &Query{key: key, validator: v, value: queryVal}, nil
}
