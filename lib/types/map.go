// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Map is an ordered map from strings to values. Keys are unique and
// kept sorted by raw UTF-8 byte order at all times, so iteration order
// is the canonical field order. A duplicate key is a construction-time
// error, never a silent overwrite.
type Map struct {
	keys []string
	vals []Value
}

// NewMap returns an empty map.
func NewMap() *Map { return &Map{} }

// Set inserts a field. Fails on a duplicate key or a key that is not
// valid UTF-8.
func (m *Map) Set(key string, v Value) error {
	if !utf8.ValidString(key) {
		return fmt.Errorf("map key is not valid UTF-8")
	}
	// Fast path: appending in sorted order, the common case when a map
	// is built from already-sorted input (e.g. the strict decoder).
	if n := len(m.keys); n == 0 || m.keys[n-1] < key {
		m.keys = append(m.keys, key)
		m.vals = append(m.vals, v)
		return nil
	}
	i := sort.SearchStrings(m.keys, key)
	if i < len(m.keys) && m.keys[i] == key {
		return fmt.Errorf("duplicate map key %q", key)
	}
	m.keys = append(m.keys, "")
	copy(m.keys[i+1:], m.keys[i:])
	m.keys[i] = key
	m.vals = append(m.vals, Value{})
	copy(m.vals[i+1:], m.vals[i:])
	m.vals[i] = v
	return nil
}

// Get looks up a field by key.
func (m *Map) Get(key string) (Value, bool) {
	i := sort.SearchStrings(m.keys, key)
	if i < len(m.keys) && m.keys[i] == key {
		return m.vals[i], true
	}
	return Value{}, false
}

// Has reports whether the key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of fields.
func (m *Map) Len() int { return len(m.keys) }

// At returns the i-th field in canonical (sorted) order.
func (m *Map) At(i int) (string, Value) {
	return m.keys[i], m.vals[i]
}

// Keys returns the keys in canonical order. The caller must not modify
// the returned slice.
func (m *Map) Keys() []string { return m.keys }

// Without returns a shallow copy of the map with the named key removed.
// If the key is absent the receiver itself is returned.
func (m *Map) Without(key string) *Map {
	i := sort.SearchStrings(m.keys, key)
	if i >= len(m.keys) || m.keys[i] != key {
		return m
	}
	out := &Map{
		keys: make([]string, 0, len(m.keys)-1),
		vals: make([]Value, 0, len(m.vals)-1),
	}
	out.keys = append(append(out.keys, m.keys[:i]...), m.keys[i+1:]...)
	out.vals = append(append(out.vals, m.vals[:i]...), m.vals[i+1:]...)
	return out
}

// Equal reports deep structural equality, including field order (which
// is canonical on both sides by construction).
func (m *Map) Equal(o *Map) bool {
	if m == nil {
		return o == nil || len(o.keys) == 0
	}
	if o == nil {
		return len(m.keys) == 0
	}
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i := range m.keys {
		if m.keys[i] != o.keys[i] || !m.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}
