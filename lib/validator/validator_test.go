// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"errors"
	"testing"

	"github.com/fogpack/fogpack/lib/types"
)

// mv builds a map value from key/value pairs; test shorthand.
func mv(t *testing.T, pairs ...any) types.Value {
	t.Helper()
	m := types.NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i].(string)
		var val types.Value
		switch x := pairs[i+1].(type) {
		case types.Value:
			val = x
		case string:
			val = sv(t, x)
		case int:
			val = types.NewI64(int64(x))
		case bool:
			val = types.NewBool(x)
		default:
			t.Fatalf("mv: unsupported value %T", x)
		}
		if err := m.Set(key, val); err != nil {
			t.Fatalf("mv: %v", err)
		}
	}
	return types.NewMapValue(m)
}

func sv(t *testing.T, s string) types.Value {
	t.Helper()
	v, err := types.NewStr(s)
	if err != nil {
		t.Fatalf("NewStr(%q) error: %v", s, err)
	}
	return v
}

func av(vals ...types.Value) types.Value {
	return types.NewArray(vals)
}

func mustParse(t *testing.T, val types.Value, isQuery bool) *Validator {
	t.Helper()
	v, err := Parse(val, isQuery, nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return v
}

func TestEmptyValidatorAcceptsAnything(t *testing.T) {
	v := mustParse(t, types.NewNull(), false)
	for _, val := range []types.Value{
		types.NewNull(), types.NewBool(true), types.NewI64(5), sv(t, "x"),
	} {
		if err := Validate(v, val, nil, nil); err != nil {
			t.Errorf("empty validator rejected %v: %v", val.Kind(), err)
		}
	}
}

func TestConstantValidator(t *testing.T) {
	v := mustParse(t, sv(t, "fixed"), false)
	if err := Validate(v, sv(t, "fixed"), nil, nil); err != nil {
		t.Errorf("constant validator rejected its constant: %v", err)
	}
	if err := Validate(v, sv(t, "other"), nil, nil); err == nil {
		t.Error("constant validator accepted a different string")
	}
	if err := Validate(v, types.NewI64(1), nil, nil); err == nil {
		t.Error("constant validator accepted a different kind")
	}
}

func TestStrValidatorOptions(t *testing.T) {
	v := mustParse(t, mv(t, "type", "Str", "min_len", 3, "max_len", 6), false)
	cases := []struct {
		s  string
		ok bool
	}{
		{"", false}, {"Te", false}, {"Tes", true}, {"TestSt", true}, {"TestStr", false},
	}
	for _, c := range cases {
		err := Validate(v, sv(t, c.s), nil, nil)
		if (err == nil) != c.ok {
			t.Errorf("min/max_len validate(%q) error = %v, want ok=%v", c.s, err, c.ok)
		}
	}

	// Character counts are rune counts, not byte counts.
	v = mustParse(t, mv(t, "type", "Str", "min_char", 3, "max_char", 6), false)
	if err := Validate(v, sv(t, "メカジキ"), nil, nil); err != nil {
		t.Errorf("max_char rejected a 4-rune string: %v", err)
	}

	v = mustParse(t, mv(t, "type", "Str", "matches", sv(t, "^test")), false)
	if err := Validate(v, sv(t, "testing"), nil, nil); err != nil {
		t.Errorf("matches rejected a matching string: %v", err)
	}
	if err := Validate(v, sv(t, "noTest"), nil, nil); err == nil {
		t.Error("matches accepted a non-matching string")
	}

	if _, err := Parse(mv(t, "type", "Str", "matches", sv(t, "(unclosed")), false, nil); !errors.Is(err, ErrBuild) {
		t.Errorf("Parse with a bad regex error = %v, want ErrBuild", err)
	}
	if _, err := Parse(mv(t, "type", "Str", "bogus_option", true), false, nil); !errors.Is(err, ErrBuild) {
		t.Errorf("Parse with an unknown option error = %v, want ErrBuild", err)
	}
}

func TestRegexBudget(t *testing.T) {
	budget := NewBudget(1)
	if _, err := Parse(mv(t, "type", "Str", "matches", av(sv(t, "a"), sv(t, "b"))), false, budget); !errors.Is(err, ErrBuild) {
		t.Errorf("Parse past the regex budget error = %v, want ErrBuild", err)
	}
}

func TestIntValidatorOptions(t *testing.T) {
	v := mustParse(t, mv(t, "type", "Int", "min", 0, "max", 10, "ex_max", true), false)
	if err := Validate(v, types.NewI64(0), nil, nil); err != nil {
		t.Errorf("inclusive min rejected 0: %v", err)
	}
	if err := Validate(v, types.NewI64(10), nil, nil); err == nil {
		t.Error("exclusive max accepted 10")
	}
	if err := Validate(v, types.NewI64(-1), nil, nil); err == nil {
		t.Error("min accepted -1")
	}

	v = mustParse(t, mv(t, "type", "Int", "bits_set", 0x03), false)
	if err := Validate(v, types.NewI64(7), nil, nil); err != nil {
		t.Errorf("bits_set rejected 7: %v", err)
	}
	if err := Validate(v, types.NewI64(5), nil, nil); err == nil {
		t.Error("bits_set accepted 5 (bit 1 clear)")
	}

	v = mustParse(t, mv(t, "type", "Int", "in", av(types.NewI64(1), types.NewI64(2))), false)
	if err := Validate(v, types.NewI64(3), nil, nil); err == nil {
		t.Error("in accepted a non-member")
	}
}

func TestBinValidatorOptions(t *testing.T) {
	// Ordering treats bytes as a little-endian unsigned integer:
	// {0x00, 0x01} is 256.
	v := mustParse(t, mv(t, "type", "Bin",
		"min", types.NewBin([]byte{0x10}),
		"max", types.NewBin([]byte{0x00, 0x01}),
	), false)
	if err := Validate(v, types.NewBin([]byte{0xff}), nil, nil); err != nil {
		t.Errorf("bin range rejected 0xff: %v", err)
	}
	if err := Validate(v, types.NewBin([]byte{0x01}), nil, nil); err == nil {
		t.Error("bin range accepted a value below min")
	}
	if err := Validate(v, types.NewBin([]byte{0x01, 0x01}), nil, nil); err == nil {
		t.Error("bin range accepted a value above max")
	}

	v = mustParse(t, mv(t, "type", "Bin", "bits_set", types.NewBin([]byte{0x01})), false)
	if err := Validate(v, types.NewBin([]byte{0x03}), nil, nil); err != nil {
		t.Errorf("bin bits_set rejected 0x03: %v", err)
	}
	if err := Validate(v, types.NewBin(nil), nil, nil); err == nil {
		t.Error("bin bits_set accepted an empty value")
	}
}

func TestTimeValidatorOptions(t *testing.T) {
	early, err := types.NewTime(100, 0)
	if err != nil {
		t.Fatalf("NewTime() error: %v", err)
	}
	late, err := types.NewTime(200, 500)
	if err != nil {
		t.Fatalf("NewTime() error: %v", err)
	}
	mid, err := types.NewTime(150, 0)
	if err != nil {
		t.Fatalf("NewTime() error: %v", err)
	}
	v := mustParse(t, mv(t, "type", "Time",
		"min", types.NewTimeValue(early),
		"max", types.NewTimeValue(late),
		"ex_max", true,
	), false)
	if err := Validate(v, types.NewTimeValue(mid), nil, nil); err != nil {
		t.Errorf("time range rejected a value inside the range: %v", err)
	}
	if err := Validate(v, types.NewTimeValue(late), nil, nil); err == nil {
		t.Error("exclusive max accepted the boundary")
	}
}

func TestObjValidator(t *testing.T) {
	v := mustParse(t, mv(t,
		"type", "Obj",
		"req", mv(t, "title", mv(t, "type", "Str")),
		"opt", mv(t, "count", mv(t, "type", "Int")),
		"ban", sv(t, "secret"),
	), false)

	good := mv(t, "title", "hello", "count", 3)
	if err := Validate(v, good, nil, nil); err != nil {
		t.Errorf("valid map rejected: %v", err)
	}
	missing := mv(t, "count", 3)
	if err := Validate(v, missing, nil, nil); err == nil {
		t.Error("map missing a required field accepted")
	}
	wrongKind := mv(t, "title", 42)
	err := Validate(v, wrongKind, nil, nil)
	if err == nil {
		t.Fatal("map with a mistyped field accepted")
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error %T is not a *Failure", err)
	}
	if failure.Path != "/title" {
		t.Errorf("failure path = %q, want %q", failure.Path, "/title")
	}
	unknown := mv(t, "title", "hello", "extra", 1)
	if err := Validate(v, unknown, nil, nil); err == nil {
		t.Error("map with an unknown field accepted without unknown_ok")
	}
	banned := mv(t, "secret", 1, "title", "hello")
	if err := Validate(v, banned, nil, nil); err == nil {
		t.Error("map with a banned field accepted")
	}

	v = mustParse(t, mv(t, "type", "Obj", "unknown_ok", true, "field_type", mv(t, "type", "Int")), false)
	if err := Validate(v, mv(t, "anything", 5), nil, nil); err != nil {
		t.Errorf("unknown_ok rejected a conforming field: %v", err)
	}
	if err := Validate(v, mv(t, "anything", "str"), nil, nil); err == nil {
		t.Error("field_type accepted a mistyped unknown field")
	}
}

func TestArrayValidator(t *testing.T) {
	v := mustParse(t, mv(t,
		"type", "Array",
		"items", av(mv(t, "type", "Str"), mv(t, "type", "Int")),
		"extra_items", mv(t, "type", "Bool"),
		"max_len", 4,
	), false)

	good := av(sv(t, "a"), types.NewI64(1), types.NewBool(true))
	if err := Validate(v, good, nil, nil); err != nil {
		t.Errorf("valid array rejected: %v", err)
	}
	badPositional := av(types.NewI64(1), types.NewI64(1))
	if err := Validate(v, badPositional, nil, nil); err == nil {
		t.Error("array with a mistyped positional element accepted")
	}
	badTail := av(sv(t, "a"), types.NewI64(1), sv(t, "no"))
	if err := Validate(v, badTail, nil, nil); err == nil {
		t.Error("array with a mistyped tail element accepted")
	}
	tooLong := av(sv(t, "a"), types.NewI64(1), types.NewBool(true), types.NewBool(true), types.NewBool(true))
	if err := Validate(v, tooLong, nil, nil); err == nil {
		t.Error("over-long array accepted")
	}

	v = mustParse(t, mv(t, "type", "Array", "contains", av(mv(t, "type", "Int", "min", 10))), false)
	if err := Validate(v, av(types.NewI64(1), types.NewI64(12)), nil, nil); err != nil {
		t.Errorf("contains rejected an array with a match: %v", err)
	}
	if err := Validate(v, av(types.NewI64(1), types.NewI64(2)), nil, nil); err == nil {
		t.Error("contains accepted an array without a match")
	}

	v = mustParse(t, mv(t, "type", "Array", "unique", true), false)
	if err := Validate(v, av(types.NewI64(1), types.NewI64(1)), nil, nil); err == nil {
		t.Error("unique accepted duplicate elements")
	}
}

func TestMultiValidator(t *testing.T) {
	v := mustParse(t, mv(t, "type", "Multi", "any_of", av(
		mv(t, "type", "Str"),
		mv(t, "type", "Int"),
	)), false)
	if err := Validate(v, sv(t, "x"), nil, nil); err != nil {
		t.Errorf("Multi rejected a Str: %v", err)
	}
	if err := Validate(v, types.NewI64(1), nil, nil); err != nil {
		t.Errorf("Multi rejected an Int: %v", err)
	}
	if err := Validate(v, types.NewBool(true), nil, nil); err == nil {
		t.Error("Multi accepted a Bool")
	}
}

func TestAliasResolution(t *testing.T) {
	aliases := map[string]*Validator{
		"name": mustParse(t, mv(t, "type", "Str", "min_len", 1), false),
	}
	root := mustParse(t, mv(t, "type", "Obj", "req", mv(t, "who", mv(t, "type", "name"))), false)
	if err := ResolveAliases(aliases, root); err != nil {
		t.Fatalf("ResolveAliases() error: %v", err)
	}
	if err := Validate(root, mv(t, "who", "ada"), aliases, nil); err != nil {
		t.Errorf("aliased validation rejected a valid value: %v", err)
	}
	if err := Validate(root, mv(t, "who", ""), aliases, nil); err == nil {
		t.Error("aliased validation accepted an invalid value")
	}

	// Missing alias.
	missing := mustParse(t, mv(t, "type", "nowhere"), false)
	if err := ResolveAliases(aliases, missing); !errors.Is(err, ErrBuild) {
		t.Errorf("ResolveAliases with a missing alias error = %v, want ErrBuild", err)
	}

	// Alias shadowing a base kind.
	shadow := map[string]*Validator{"Str": aliases["name"]}
	if err := ResolveAliases(shadow); !errors.Is(err, ErrBuild) {
		t.Errorf("ResolveAliases with a shadowing alias error = %v, want ErrBuild", err)
	}
}

func TestAliasCycles(t *testing.T) {
	// A cycle through Multi only (no boxing) must fail.
	bad := map[string]*Validator{
		"a": mustParse(t, mv(t, "type", "Multi", "any_of", av(mv(t, "type", "b"))), false),
		"b": mustParse(t, mv(t, "type", "Multi", "any_of", av(mv(t, "type", "a"))), false),
	}
	if err := ResolveAliases(bad); !errors.Is(err, ErrBuild) {
		t.Errorf("non-boxed alias cycle error = %v, want ErrBuild", err)
	}

	// A cycle through an Obj field (a box) is a legal recursive
	// structure.
	good := map[string]*Validator{
		"tree": mustParse(t, mv(t,
			"type", "Obj",
			"opt", mv(t, "child", mv(t, "type", "tree")),
		), false),
	}
	if err := ResolveAliases(good); err != nil {
		t.Errorf("boxed alias cycle error: %v, want nil", err)
	}

	// Recursion at validation time stays bounded by the depth cap.
	deep := mv(t, "child", mv(t, "child", mv(t, "child", types.NewNull())))
	// The innermost "child" is null, which fails the Obj kind check;
	// that is fine — the point is that it terminates.
	_ = Validate(good["tree"], deep, good, nil)
}

func TestChecklistFromHashLinks(t *testing.T) {
	target := mustParse(t, mv(t,
		"type", "Hash",
		"link", mv(t, "type", "Obj", "unknown_ok", true),
	), false)
	list := NewChecklist()
	h := types.NewHash([types.HashDigestSize]byte{1})
	if err := Validate(target, types.NewHashValue(h), nil, list); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if list.Empty() {
		t.Fatal("hash link produced no checklist item")
	}
	if !list.Items()[0].Hash.Equal(h) {
		t.Error("checklist item carries the wrong hash")
	}
	if list.Items()[0].Link == nil {
		t.Error("checklist item is missing the link validator")
	}
}

func TestQueryCheckFlags(t *testing.T) {
	// Schema: title not queryable, score queryable and ordered.
	schema := mustParse(t, mv(t,
		"type", "Obj",
		"obj_ok", true,
		"req", mv(t,
			"title", mv(t, "type", "Str"),
			"score", mv(t, "type", "Int", "query", true, "ord", true),
		),
	), false)

	// Refining score with in/ord is fine.
	okQuery := mustParse(t, mv(t,
		"type", "Obj",
		"req", mv(t, "score", mv(t, "type", "Int", "min", 10)),
	), true)
	if err := Check(schema, okQuery, nil); err != nil {
		t.Errorf("Check() of a permitted query error: %v", err)
	}

	// Refining title needs query:true on the schema side.
	badQuery := mustParse(t, mv(t,
		"type", "Obj",
		"req", mv(t, "title", mv(t, "type", "Str", "in", sv(t, "x"))),
	), true)
	if err := Check(schema, badQuery, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("Check() of a forbidden query error = %v, want ErrIncompatible", err)
	}

	// A kind-only query against an unqueryable position is fine.
	kindOnly := mustParse(t, mv(t,
		"type", "Obj",
		"req", mv(t, "title", mv(t, "type", "Str")),
	), true)
	if err := Check(schema, kindOnly, nil); err != nil {
		t.Errorf("Check() of a kind-only query error: %v", err)
	}

	// Kind mismatch.
	mismatch := mustParse(t, mv(t,
		"type", "Obj",
		"req", mv(t, "score", mv(t, "type", "Str")),
	), true)
	if err := Check(schema, mismatch, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("Check() with a kind mismatch error = %v, want ErrIncompatible", err)
	}

	// Structural refinement needs obj_ok at the map position.
	noObjOk := mustParse(t, mv(t, "type", "Obj"), false)
	structural := mustParse(t, mv(t,
		"type", "Obj",
		"req", mv(t, "x", mv(t, "type", "Int")),
	), true)
	if err := Check(noObjOk, structural, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("Check() of structural refinement without obj_ok error = %v, want ErrIncompatible", err)
	}
}

func TestQueryCheckOrderedAndBits(t *testing.T) {
	schema := mustParse(t, mv(t, "type", "Int", "query", true), false)
	ordered := mustParse(t, mv(t, "type", "Int", "min", 3), true)
	if err := Check(schema, ordered, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("ordered query without ord error = %v, want ErrIncompatible", err)
	}
	bits := mustParse(t, mv(t, "type", "Int", "bits_set", 1), true)
	if err := Check(schema, bits, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("bit query without bit error = %v, want ErrIncompatible", err)
	}
	membership := mustParse(t, mv(t, "type", "Int", "in", types.NewI64(5)), true)
	if err := Check(schema, membership, nil); err != nil {
		t.Errorf("membership query with query:true error: %v", err)
	}
}

func TestQueryCheckRegexFlag(t *testing.T) {
	schema := mustParse(t, mv(t, "type", "Str", "query", true), false)
	regex := mustParse(t, mv(t, "type", "Str", "matches", sv(t, "^a")), true)
	if err := Check(schema, regex, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("regex query without regex flag error = %v, want ErrIncompatible", err)
	}
	allowed := mustParse(t, mv(t, "type", "Str", "query", true, "regex", true), false)
	if err := Check(allowed, regex, nil); err != nil {
		t.Errorf("regex query with regex flag error: %v", err)
	}
}

func TestQueryCheckMultiSchema(t *testing.T) {
	schema := mustParse(t, mv(t, "type", "Multi", "any_of", av(
		mv(t, "type", "Str", "query", true),
		mv(t, "type", "Int"),
	)), false)
	strQuery := mustParse(t, mv(t, "type", "Str", "in", sv(t, "x")), true)
	if err := Check(schema, strQuery, nil); err != nil {
		t.Errorf("query against a covering Multi member error: %v", err)
	}
	intQuery := mustParse(t, mv(t, "type", "Int", "in", types.NewI64(3)), true)
	if err := Check(schema, intQuery, nil); !errors.Is(err, ErrIncompatible) {
		t.Errorf("query against a non-queryable Multi member error = %v, want ErrIncompatible", err)
	}
}

func TestValidationDepthBounded(t *testing.T) {
	// Build a value nested beyond the depth cap and validate it with
	// a recursive alias; it must fail, not hang or overflow.
	aliases := map[string]*Validator{
		"nest": mustParse(t, mv(t, "type", "Obj", "opt", mv(t, "n", mv(t, "type", "nest"))), false),
	}
	value := types.NewNull()
	for i := 0; i < 80; i++ {
		value = mv(t, "n", value)
	}
	err := Validate(aliases["nest"], value, aliases, nil)
	if err == nil {
		t.Error("deeply recursive validation did not fail")
	}
}
