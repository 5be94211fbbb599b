// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/fogpack/fogpack/lib/types"
)

// Kind identifies the shape of a validator.
type Kind uint8

const (
	// Any accepts every value and permits no query refinement.
	Any Kind = iota
	// Ref names an alias in the schema's types table.
	Ref
	// Multi accepts a value that any of its alternatives accepts.
	Multi
	// Null accepts exactly the null value.
	Null
	Bool
	Int
	F32
	F64
	Str
	Bin
	Array
	Obj
	Hash
	Ident
	Lock
	Time
)

// DefaultMaxDepth bounds validation-time recursion, including
// recursion through aliased validators.
const DefaultMaxDepth = 64

// DefaultMaxRegex is the default budget of compiled regexes per
// schema or query.
const DefaultMaxRegex = 255

// baseKindNames maps "type" field strings to validator kinds. An
// alias may not shadow any of these.
var baseKindNames = map[string]Kind{
	"Null": Null, "Bool": Bool, "Int": Int, "F32": F32, "F64": F64,
	"Str": Str, "Bin": Bin, "Array": Array, "Obj": Obj, "Hash": Hash,
	"Ident": Ident, "Lock": Lock, "Time": Time, "Multi": Multi,
}

// Budget tracks build-time resource limits shared across every
// validator parsed for one schema or query.
type Budget struct {
	// Regexes is the number of regex compilations still allowed.
	Regexes int
}

// NewBudget returns a budget with the given regex allowance, or the
// default if n is negative.
func NewBudget(n int) *Budget {
	if n < 0 {
		n = DefaultMaxRegex
	}
	return &Budget{Regexes: n}
}

// Validator is a parsed, immutable validator tree. Alias references
// are left symbolic; ResolveAliases checks them against a types table
// before use.
type Validator struct {
	kind    Kind
	comment string
	ref     string
	anyOf   []*Validator

	boolv  *boolOpts
	intv   *intOpts
	f32v   *f32Opts
	f64v   *f64Opts
	strv   *strOpts
	binv   *binOpts
	arrayv *arrayOpts
	objv   *objOpts
	hashv  *hashOpts
	identv *identOpts
	lockv  *lockOpts
	timev  *timeOpts
}

// Kind returns the validator's shape.
func (v *Validator) Kind() Kind { return v.kind }

// RefName returns the alias name for Ref validators.
func (v *Validator) RefName() string { return v.ref }

// Parse reads a validator from its fogpack value form. isQuery
// selects the flag defaults: permission flags on schema validators
// default to false, on query validators to true (a query's own flags
// are never consulted, only the schema's). The budget bounds regex
// compilation across the whole parse.
func Parse(val types.Value, isQuery bool, budget *Budget) (*Validator, error) {
	if budget == nil {
		budget = NewBudget(-1)
	}
	return parseValue(val, isQuery, budget)
}

func parseValue(val types.Value, isQuery bool, budget *Budget) (*Validator, error) {
	switch val.Kind() {
	case types.KindNull:
		return &Validator{kind: Any}, nil
	case types.KindMap:
		m, _ := val.AsMap()
		return parseMapForm(m, isQuery, budget)
	default:
		return constValidator(val, isQuery)
	}
}

// constValidator turns a bare constant into an exact-match validator
// of the constant's kind.
func constValidator(val types.Value, isQuery bool) (*Validator, error) {
	switch val.Kind() {
	case types.KindBool:
		b, _ := val.AsBool()
		return &Validator{kind: Bool, boolv: &boolOpts{in: []bool{b}, query: isQuery}}, nil
	case types.KindInt:
		i, _ := val.AsInt()
		return &Validator{kind: Int, intv: newIntOpts(isQuery, []types.Int{i})}, nil
	case types.KindF32:
		f, _ := val.AsF32()
		return &Validator{kind: F32, f32v: newF32Opts(isQuery, []float32{f})}, nil
	case types.KindF64:
		f, _ := val.AsF64()
		return &Validator{kind: F64, f64v: newF64Opts(isQuery, []float64{f})}, nil
	case types.KindStr:
		s, _ := val.AsStr()
		return &Validator{kind: Str, strv: newStrOpts(isQuery, []string{s})}, nil
	case types.KindBin:
		b, _ := val.AsBin()
		return &Validator{kind: Bin, binv: newBinOpts(isQuery, [][]byte{b})}, nil
	case types.KindArray:
		arr, _ := val.AsArray()
		return &Validator{kind: Array, arrayv: newArrayOpts(isQuery, [][]types.Value{arr})}, nil
	case types.KindHash:
		h, _ := val.AsHash()
		return &Validator{kind: Hash, hashv: newHashOpts(isQuery, []types.Hash{h})}, nil
	case types.KindIdentity:
		id, _ := val.AsIdentity()
		return &Validator{kind: Ident, identv: &identOpts{in: []types.Identity{id}, query: isQuery}}, nil
	case types.KindTime:
		t, _ := val.AsTime()
		return &Validator{kind: Time, timev: newTimeOpts(isQuery, []types.Time{t})}, nil
	case types.KindLockbox:
		return nil, buildf("a lockbox cannot be used as a validator constant")
	}
	return nil, buildf("unsupported constant kind %v", val.Kind())
}

// parseMapForm parses the map form: the "type" field selects the kind
// or names an alias; the remaining fields are options.
func parseMapForm(m *types.Map, isQuery bool, budget *Budget) (*Validator, error) {
	typVal, ok := m.Get("type")
	if !ok {
		return nil, buildf("validator map needs a `type` field")
	}
	typ, ok := typVal.AsStr()
	if !ok {
		return nil, buildf("validator `type` field must be a string")
	}

	kind, isBase := baseKindNames[typ]
	if !isBase {
		// Alias reference: nothing but type and comment allowed.
		v := &Validator{kind: Ref, ref: typ}
		for i := 0; i < m.Len(); i++ {
			key, fv := m.At(i)
			switch key {
			case "type":
			case "comment":
				s, ok := fv.AsStr()
				if !ok {
					return nil, buildf("`comment` must be a string")
				}
				v.comment = s
			default:
				return nil, buildf("field %q not allowed in alias reference %q", key, typ)
			}
		}
		return v, nil
	}

	switch kind {
	case Null:
		return parseNull(m)
	case Multi:
		return parseMulti(m, isQuery, budget)
	case Bool:
		return parseBool(m, isQuery)
	case Int:
		return parseInt(m, isQuery)
	case F32:
		return parseF32(m, isQuery)
	case F64:
		return parseF64(m, isQuery)
	case Str:
		return parseStr(m, isQuery, budget)
	case Bin:
		return parseBin(m, isQuery)
	case Array:
		return parseArray(m, isQuery, budget)
	case Obj:
		return parseObj(m, isQuery, budget)
	case Hash:
		return parseHash(m, isQuery, budget)
	case Ident:
		return parseIdent(m, isQuery)
	case Lock:
		return parseLock(m, isQuery)
	case Time:
		return parseTime(m, isQuery)
	}
	return nil, buildf("unsupported validator type %q", typ)
}

func parseNull(m *types.Map) (*Validator, error) {
	v := &Validator{kind: Null}
	for i := 0; i < m.Len(); i++ {
		key, fv := m.At(i)
		switch key {
		case "type":
		case "comment":
			s, ok := fv.AsStr()
			if !ok {
				return nil, buildf("`comment` must be a string")
			}
			v.comment = s
		default:
			return nil, buildf("field %q not allowed in Null validator", key)
		}
	}
	return v, nil
}

func parseMulti(m *types.Map, isQuery bool, budget *Budget) (*Validator, error) {
	v := &Validator{kind: Multi}
	for i := 0; i < m.Len(); i++ {
		key, fv := m.At(i)
		switch key {
		case "type":
		case "comment":
			s, ok := fv.AsStr()
			if !ok {
				return nil, buildf("`comment` must be a string")
			}
			v.comment = s
		case "any_of":
			arr, ok := fv.AsArray()
			if !ok {
				return nil, buildf("`any_of` must be an array of validators")
			}
			for _, elem := range arr {
				sub, err := parseValue(elem, isQuery, budget)
				if err != nil {
					return nil, err
				}
				v.anyOf = append(v.anyOf, sub)
			}
		default:
			return nil, buildf("field %q not allowed in Multi validator", key)
		}
	}
	if len(v.anyOf) == 0 {
		return nil, buildf("Multi validator needs a non-empty `any_of` list")
	}
	return v, nil
}
