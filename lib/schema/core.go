// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"sync"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/crypt"
	"github.com/fogpack/fogpack/lib/types"
	"github.com/fogpack/fogpack/lib/validator"
)

// The core schema is the bootstrap: the validator every schema
// document must pass before it can become a Schema. It is built in
// code rather than loaded, and it validates its own document form
// (self-hosting). Structural strictness beyond the shape below comes
// from the validator parser itself, which rejects unknown options and
// malformed sub-validators.

// mv, sv, iv, bv are construction helpers for the hard-coded core
// schema value. They panic on misuse, which would be a bug in this
// file, not a runtime condition.
func mv(pairs ...any) types.Value {
	if len(pairs)%2 != 0 {
		panic("schema: mv needs key/value pairs")
	}
	m := types.NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("schema: mv keys must be strings")
		}
		var val types.Value
		switch x := pairs[i+1].(type) {
		case types.Value:
			val = x
		case string:
			val = sv(x)
		case int:
			val = types.NewI64(int64(x))
		case bool:
			val = types.NewBool(x)
		default:
			panic("schema: mv value type not supported")
		}
		if err := m.Set(key, val); err != nil {
			panic("schema: " + err.Error())
		}
	}
	return types.NewMapValue(m)
}

func sv(s string) types.Value {
	v, err := types.NewStr(s)
	if err != nil {
		panic("schema: " + err.Error())
	}
	return v
}

func av(vals ...types.Value) types.Value {
	return types.NewArray(vals)
}

var coreOnce = sync.OnceValue(buildCore)

type coreParts struct {
	value     types.Value
	hash      types.Hash
	validator *validator.Validator
}

func buildCore() coreParts {
	compressSetting := mv(
		"type", "Obj",
		"req", mv(
			"setting", mv("type", "Multi", "any_of", av(
				mv("type", "Bool"),
				mv("type", "Bin"),
			)),
		),
		"opt", mv(
			"format", mv("type", "Int", "min", 0, "max", 0),
			"level", mv("type", "Int", "min", 0, "max", 22),
		),
	)

	anyObj := func() types.Value { return mv("type", "Obj", "unknown_ok", true) }

	root := mv(
		"name", "fogpack core schema",
		"opt", mv(
			"name", mv("type", "Str", "max_len", 255),
			"description", mv("type", "Str"),
			"version", mv("type", "Int"),
			"req", anyObj(),
			"opt", anyObj(),
			"ban", mv("type", "Multi", "any_of", av(
				mv("type", "Str"),
				mv("type", "Array", "extra_items", mv("type", "Str")),
			)),
			"field_type", types.NewNull(),
			"unknown_ok", mv("type", "Bool"),
			"min_fields", mv("type", "Int", "min", 0),
			"max_fields", mv("type", "Int", "min", 0),
			"entries", anyObj(),
			"types", anyObj(),
			"max_regex", mv("type", "Int", "min", 0, "max", 255),
			"doc_compress", compressSetting,
			"entries_compress", mv(
				"type", "Obj",
				"unknown_ok", true,
				"field_type", compressSetting,
			),
		),
	)

	rootMap, _ := root.AsMap()
	body, err := codec.Encode(root)
	if err != nil {
		panic("schema: encoding core schema: " + err.Error())
	}

	// The core validator is the Obj validator described by the core
	// schema document's own root fields.
	v, err := objValidatorFromSchemaRoot(rootMap, validator.NewBudget(-1))
	if err != nil {
		panic("schema: building core validator: " + err.Error())
	}

	return coreParts{
		value:     root,
		hash:      crypt.Sum(body),
		validator: v,
	}
}

// CoreSchemaValue returns the core schema's document value.
func CoreSchemaValue() types.Value { return coreOnce().value }

// CoreSchemaHash returns the hash of the core schema document. Schema
// documents may bind to it under the empty-string key.
func CoreSchemaHash() types.Hash { return coreOnce().hash }

// CoreValidator returns the validator that every schema document must
// pass.
func CoreValidator() *validator.Validator { return coreOnce().validator }

// objValidatorFromSchemaRoot synthesizes the Obj validator described
// by a schema document's root-level object options. Schema documents
// state req/opt/ban and friends at their top level; the validator
// language states them inside a {"type": "Obj"} map. This bridges the
// two.
func objValidatorFromSchemaRoot(root *types.Map, budget *validator.Budget) (*validator.Validator, error) {
	synth := types.NewMap()
	if err := synth.Set("type", sv("Obj")); err != nil {
		return nil, err
	}
	for _, field := range []string{"req", "opt", "ban", "field_type", "unknown_ok", "min_fields", "max_fields"} {
		if fv, ok := root.Get(field); ok {
			if err := synth.Set(field, fv); err != nil {
				return nil, err
			}
		}
	}
	return validator.Parse(types.NewMapValue(synth), false, budget)
}
