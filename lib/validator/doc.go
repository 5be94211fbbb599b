// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package validator implements the fogpack validation language: a
// recursive predicate over values that is itself expressed as a
// fogpack value. A validator is either the empty validator (a bare
// null, accepting anything), a constant (any non-map value, accepting
// exactly that value), a typed validator (a map whose "type" field
// names a base kind and whose remaining fields are kind-specific
// options), an alias reference (a map whose "type" names an entry in
// the schema's types table), or a Multi (a list of alternatives).
//
// Typed validators carry two classes of options: predicates that
// constrain values (ranges, lengths, patterns, membership sets,
// structural rules) and permission flags (query, ord, bit, size,
// regex, array, obj_ok, contains_ok, unique_ok, link_ok, schema_ok)
// that declare which predicates a query may use at this position.
// Check enforces those permissions before a query is ever run; this
// two-phase design is what lets a database index exactly the fields a
// schema declares queryable.
//
// Hash validators with link or schema constraints cannot be resolved
// against a value in hand — the referenced document lives elsewhere.
// Validation records them in a Checklist for the caller to resolve.
package validator
