// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/crypt"
	"github.com/fogpack/fogpack/lib/types"
	"github.com/fogpack/fogpack/lib/validator"
)

// tm builds a map (not a map value); test shorthand.
func tm(t *testing.T, pairs ...any) *types.Map {
	t.Helper()
	v := tmv(t, pairs...)
	m, _ := v.AsMap()
	return m
}

func tmv(t *testing.T, pairs ...any) types.Value {
	t.Helper()
	m := types.NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i].(string)
		var val types.Value
		switch x := pairs[i+1].(type) {
		case types.Value:
			val = x
		case string:
			s, err := types.NewStr(x)
			if err != nil {
				t.Fatalf("NewStr(%q) error: %v", x, err)
			}
			val = s
		case int:
			val = types.NewI64(int64(x))
		case bool:
			val = types.NewBool(x)
		default:
			t.Fatalf("tmv: unsupported value %T", x)
		}
		if err := m.Set(key, val); err != nil {
			t.Fatalf("tmv: %v", err)
		}
	}
	return types.NewMapValue(m)
}

func ts(t *testing.T, s string) types.Value {
	t.Helper()
	v, err := types.NewStr(s)
	if err != nil {
		t.Fatalf("NewStr(%q) error: %v", s, err)
	}
	return v
}

// postSchema builds the running example: documents with a required
// text and optional title, and "comments" entries with a queryable
// author and score.
func postSchema(t *testing.T) *Schema {
	t.Helper()
	root := tm(t,
		"name", "post",
		"req", tmv(t, "text", tmv(t, "type", "Str")),
		"opt", tmv(t, "title", tmv(t, "type", "Str", "max_len", 255)),
		"entries", tmv(t,
			"comments", tmv(t,
				"type", "Obj",
				"obj_ok", true,
				"req", tmv(t,
					"author", tmv(t, "type", "Str", "query", true),
					"score", tmv(t, "type", "Int", "query", true, "ord", true),
				),
			),
		),
	)
	doc, err := NewDocument(root, nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	s, err := New(doc)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestCoreSchemaSelfHosting(t *testing.T) {
	if err := validator.Validate(CoreValidator(), CoreSchemaValue(), nil, nil); err != nil {
		t.Errorf("core schema does not validate itself: %v", err)
	}
	if CoreSchemaHash().IsNull() {
		t.Error("core schema hash is null")
	}
}

func TestSchemaAcceptsCoreBinding(t *testing.T) {
	core := CoreSchemaHash()
	root := tm(t, "req", tmv(t, "text", tmv(t, "type", "Str")))
	doc, err := NewDocument(root, &core)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := New(doc); err != nil {
		t.Errorf("New() with a core binding error: %v", err)
	}

	other := crypt.Sum([]byte("not the core schema"))
	root2 := tm(t, "req", tmv(t, "text", tmv(t, "type", "Str")))
	doc2, err := NewDocument(root2, &other)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := New(doc2); !errors.Is(err, ErrSchemaBuild) {
		t.Errorf("New() with a foreign binding error = %v, want ErrSchemaBuild", err)
	}
}

func TestSchemaRejectsBadShape(t *testing.T) {
	root := tm(t, "req", tmv(t, "text", tmv(t, "type", "Str")), "version", "not an int")
	doc, err := NewDocument(root, nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := New(doc); !errors.Is(err, ErrSchemaBuild) {
		t.Errorf("New() with a bad shape error = %v, want ErrSchemaBuild", err)
	}
}

func TestDocEncodeDecodeRoundTrip(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()
	doc, err := NewDocument(tm(t, "text", "hello", "title", "greeting"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}

	docHash, encoded, list, err := s.EncodeDoc(doc)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	if !list.Empty() {
		t.Error("checklist is not empty for a link-free document")
	}
	if !docHash.Equal(doc.Hash()) {
		t.Error("EncodeDoc() hash differs from Document.Hash()")
	}

	decoded, _, err := s.DecodeDoc(encoded)
	if err != nil {
		t.Fatalf("DecodeDoc() error: %v", err)
	}
	if !decoded.Hash().Equal(docHash) {
		t.Error("decode changed the document hash")
	}
	if !decoded.Value().Equal(doc.Value()) {
		t.Error("decode changed the document value")
	}
}

func TestDocValidationScenarios(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()

	// title is optional: {"text": "hi"} is accepted.
	doc, err := NewDocument(tm(t, "text", "hi"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := s.ValidateDoc(doc); err != nil {
		t.Errorf("ValidateDoc() of a title-less document error: %v", err)
	}

	// A mistyped title is rejected at path /title.
	bad, err := NewDocument(tm(t, "text", "hi", "title", 42), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	_, err = s.ValidateDoc(bad)
	var failure *validator.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("ValidateDoc() error = %v, want a *Failure", err)
	}
	if failure.Path != "/title" {
		t.Errorf("failure path = %q, want /title", failure.Path)
	}

	// A document without the binding is rejected.
	unbound, err := NewDocument(tm(t, "text", "hi"), nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := s.ValidateDoc(unbound); err == nil {
		t.Error("ValidateDoc() accepted an unbound document")
	}

	// Required text missing.
	missing, err := NewDocument(tm(t, "title", "no text"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := s.ValidateDoc(missing); err == nil {
		t.Error("ValidateDoc() accepted a document missing a required field")
	}
}

func TestDocSignatures(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()
	doc, err := NewDocument(tm(t, "text", "signed"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	unsignedHash := doc.Hash()

	key, err := crypt.NewIdentityKey()
	if err != nil {
		t.Fatalf("NewIdentityKey() error: %v", err)
	}
	if err := doc.Sign(key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !doc.Hash().Equal(unsignedHash) {
		t.Error("signing changed the document hash")
	}

	_, encoded, _, err := s.EncodeDoc(doc)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	decoded, _, err := s.DecodeDoc(encoded)
	if err != nil {
		t.Fatalf("DecodeDoc() error: %v", err)
	}
	sigs := decoded.Signatures()
	if len(sigs) != 1 {
		t.Fatalf("decoded %d signatures, want 1", len(sigs))
	}
	if !sigs[0].Signer().Equal(key.Identity()) {
		t.Error("decoded signature has the wrong signer")
	}

	// Corrupt the signature region; decode must fail.
	corrupted := bytes.Clone(encoded)
	corrupted[len(corrupted)-1] ^= 0x01
	if _, _, err := s.DecodeDoc(corrupted); !errors.Is(err, crypt.ErrCrypto) {
		t.Errorf("DecodeDoc() of a corrupted signature error = %v, want ErrCrypto", err)
	}
}

func TestEntryPipeline(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()
	doc, err := NewDocument(tm(t, "text", "parent"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}

	entry, err := NewEntry(doc.Hash(), "comments", tmv(t, "author", "ada", "score", 5))
	if err != nil {
		t.Fatalf("NewEntry() error: %v", err)
	}
	entryHash, encoded, _, err := s.EncodeEntry(entry)
	if err != nil {
		t.Fatalf("EncodeEntry() error: %v", err)
	}
	decoded, _, err := s.DecodeEntry(encoded, doc.Hash(), "comments")
	if err != nil {
		t.Fatalf("DecodeEntry() error: %v", err)
	}
	if !decoded.Hash().Equal(entryHash) {
		t.Error("decode changed the entry hash")
	}

	// A different parent changes the entry hash and breaks signatures.
	otherParent := crypt.Sum([]byte("other"))
	other, err := NewEntry(otherParent, "comments", tmv(t, "author", "ada", "score", 5))
	if err != nil {
		t.Fatalf("NewEntry() error: %v", err)
	}
	if other.Hash().Equal(entryHash) {
		t.Error("entry hash ignores the parent hash")
	}

	// Unknown entry keys reject.
	bad, err := NewEntry(doc.Hash(), "nope", tmv(t, "author", "ada", "score", 5))
	if err != nil {
		t.Fatalf("NewEntry() error: %v", err)
	}
	if _, _, _, err := s.EncodeEntry(bad); err == nil {
		t.Error("EncodeEntry() accepted an unknown entry key")
	}

	// Invalid entry values reject.
	invalid, err := NewEntry(doc.Hash(), "comments", tmv(t, "author", "ada"))
	if err != nil {
		t.Fatalf("NewEntry() error: %v", err)
	}
	if _, _, _, err := s.EncodeEntry(invalid); err == nil {
		t.Error("EncodeEntry() accepted an entry missing a required field")
	}
}

func TestQueryAdmissibilityAndMatch(t *testing.T) {
	s := postSchema(t)

	// Filtering by score (queryable, ordered) is admissible.
	q, err := NewQuery("comments", tmv(t,
		"type", "Obj",
		"req", tmv(t, "score", tmv(t, "type", "Int", "min", 4)),
	))
	if err != nil {
		t.Fatalf("NewQuery() error: %v", err)
	}
	encoded, err := s.EncodeQuery(q)
	if err != nil {
		t.Fatalf("EncodeQuery() error: %v", err)
	}
	decoded, err := s.DecodeQuery(encoded)
	if err != nil {
		t.Fatalf("DecodeQuery() error: %v", err)
	}

	parent := crypt.Sum([]byte("parent"))
	high, err := NewEntry(parent, "comments", tmv(t, "author", "ada", "score", 5))
	if err != nil {
		t.Fatalf("NewEntry() error: %v", err)
	}
	low, err := NewEntry(parent, "comments", tmv(t, "author", "bob", "score", 1))
	if err != nil {
		t.Fatalf("NewEntry() error: %v", err)
	}
	if ok, err := decoded.Match(high); err != nil || !ok {
		t.Errorf("Match(high) = %v, %v, want true", ok, err)
	}
	if ok, err := decoded.Match(low); err != nil || ok {
		t.Errorf("Match(low) = %v, %v, want false", ok, err)
	}

	// Filtering by a non-queryable position is rejected before any
	// matching.
	banned, err := NewQuery("comments", tmv(t,
		"type", "Obj",
		"req", tmv(t, "author", tmv(t, "type", "Str", "matches", ts(t, "^a"))),
	))
	if err != nil {
		t.Fatalf("NewQuery() error: %v", err)
	}
	if _, err := s.EncodeQuery(banned); !errors.Is(err, validator.ErrIncompatible) {
		t.Errorf("EncodeQuery() of a regex query error = %v, want ErrIncompatible", err)
	}

	// Unknown entry key.
	wrongKey, err := NewQuery("nope", tmv(t, "type", "Obj"))
	if err != nil {
		t.Fatalf("NewQuery() error: %v", err)
	}
	if err := s.CheckQuery(wrongKey); !errors.Is(err, validator.ErrIncompatible) {
		t.Errorf("CheckQuery() with an unknown key error = %v, want ErrIncompatible", err)
	}
}

func TestDictCompression(t *testing.T) {
	// The dictionary is the repetitive content the bodies share.
	dict := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 8))
	root := tm(t,
		"name", "dict schema",
		"req", tmv(t, "text", tmv(t, "type", "Str")),
		"doc_compress", tmv(t,
			"format", 0,
			"level", 19,
			"setting", types.NewBin(dict),
		),
	)
	doc, err := NewDocument(root, nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	s, err := New(doc)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	hash := s.Hash()
	payload, err := NewDocument(tm(t, "text", strings.Repeat("the quick brown fox jumps over the lazy dog ", 4)), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	_, encoded, _, err := s.EncodeDoc(payload)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	if CompressType(encoded[0]&headerCompressMask) != CompressTypeDict {
		t.Fatalf("header compress type = %d, want dict", encoded[0]&headerCompressMask)
	}

	decoded, _, err := s.DecodeDoc(encoded)
	if err != nil {
		t.Fatalf("DecodeDoc() error: %v", err)
	}
	if !decoded.Value().Equal(payload.Value()) {
		t.Error("dictionary round trip changed the value")
	}

	// A decoder without the dictionary must refuse the frame.
	if _, err := NewNoSchema().DecodeDoc(encoded); err == nil {
		t.Error("a schema-less decoder accepted a dictionary-compressed frame")
	}
}

func TestCompressionFallsBackWhenBigger(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()
	// A tiny document compresses badly; the frame must fall back to
	// the uncompressed form rather than grow.
	doc, err := NewDocument(tm(t, "text", "x"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	_, encoded, _, err := s.EncodeDoc(doc)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	if CompressType(encoded[0]&headerCompressMask) != CompressTypeNone {
		t.Errorf("tiny document was not stored uncompressed")
	}
	if _, _, err := s.DecodeDoc(encoded); err != nil {
		t.Errorf("DecodeDoc() error: %v", err)
	}
}

func TestNoSchemaRoundTrip(t *testing.T) {
	n := NewNoSchema()
	doc, err := NewDocument(tm(t, "free", "form"), nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	hash, encoded, err := n.EncodeDoc(doc)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	decoded, err := n.DecodeDoc(encoded)
	if err != nil {
		t.Fatalf("DecodeDoc() error: %v", err)
	}
	if !decoded.Hash().Equal(hash) {
		t.Error("round trip changed the hash")
	}

	// Schema-bound documents are refused.
	s := postSchema(t)
	sHash := s.Hash()
	bound, err := NewDocument(tm(t, "text", "hi"), &sHash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, _, err := n.EncodeDoc(bound); err == nil {
		t.Error("NoSchema encoded a schema-bound document")
	}
}

func TestGetDocSchema(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()
	doc, err := NewDocument(tm(t, "text", "hello"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	_, encoded, _, err := s.EncodeDoc(doc)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	got, err := GetDocSchema(encoded)
	if err != nil {
		t.Fatalf("GetDocSchema() error: %v", err)
	}
	if got == nil || !got.Equal(hash) {
		t.Errorf("GetDocSchema() = %v, want %s", got, hash)
	}

	n := NewNoSchema()
	free, err := NewDocument(tm(t, "free", "form"), nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	_, freeBytes, err := n.EncodeDoc(free)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}
	got, err = GetDocSchema(freeBytes)
	if err != nil {
		t.Fatalf("GetDocSchema() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetDocSchema() of a schema-less document = %s, want nil", got)
	}
}

func TestFrameRejectsReservedBits(t *testing.T) {
	s := postSchema(t)
	hash := s.Hash()
	doc, err := NewDocument(tm(t, "text", "hello"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	_, encoded, _, err := s.EncodeDoc(doc)
	if err != nil {
		t.Fatalf("EncodeDoc() error: %v", err)
	}

	reserved := bytes.Clone(encoded)
	reserved[0] |= 0x80
	if _, _, err := s.DecodeDoc(reserved); !errors.Is(err, codec.ErrMalformed) {
		t.Errorf("DecodeDoc() with reserved header bits error = %v, want ErrMalformed", err)
	}

	// Signature region not a multiple of the signature size.
	ragged := append(bytes.Clone(encoded), 0x01)
	if _, _, err := s.DecodeDoc(ragged); err == nil {
		t.Error("DecodeDoc() accepted a ragged signature region")
	}

	truncated := encoded[:2]
	if _, _, err := s.DecodeDoc(truncated); !errors.Is(err, codec.ErrMalformed) {
		t.Errorf("DecodeDoc() of a truncated frame error = %v, want ErrMalformed", err)
	}
}

func TestValidateAgainstReencodedValue(t *testing.T) {
	// validate(S, v) == validate(S, decode(encode(v))).
	s := postSchema(t)
	hash := s.Hash()
	doc, err := NewDocument(tm(t, "text", "hello", "title", "x"), &hash)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := s.ValidateDoc(doc); err != nil {
		t.Fatalf("ValidateDoc() error: %v", err)
	}
	encoded, err := codec.Encode(doc.Value())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	m, _ := decoded.AsMap()
	again, err := NewDocument(m, nil)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}
	if _, err := s.ValidateDoc(again); err != nil {
		t.Errorf("ValidateDoc() of the re-decoded value error: %v", err)
	}
	if !again.Hash().Equal(doc.Hash()) {
		t.Error("re-decoded document has a different hash")
	}
}
