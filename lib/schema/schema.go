// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"

	"github.com/fogpack/fogpack/lib/types"
	"github.com/fogpack/fogpack/lib/validator"
)

// ErrSchemaBuild reports a candidate schema document that cannot
// become a Schema: wrong shape, a bad validator, a missing or cyclic
// alias, a bad regex, or bad compression settings.
var ErrSchemaBuild = errors.New("schema build failed")

func schemaBuildf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaBuild, fmt.Sprintf(format, args...))
}

// Schema is a validated, pre-parsed schema: the root validator for
// documents, per-entry-key validators, the alias table, and
// compression settings. Immutable and safe for concurrent use once
// built.
type Schema struct {
	hash          types.Hash
	doc           *Document
	root          *validator.Validator
	entries       map[string]*validator.Validator
	aliases       map[string]*validator.Validator
	maxRegex      int
	docCompress   *Compress
	entryCompress map[string]*Compress
}

// New builds a Schema from a candidate document. The document must
// validate against the core schema; its validators are parsed,
// aliases resolved, regexes compiled, and compression contexts built
// before the first use.
func New(doc *Document) (*Schema, error) {
	if doc.SchemaHash() != nil && !doc.SchemaHash().Equal(CoreSchemaHash()) {
		return nil, schemaBuildf("schema document is bound to %s, not the core schema", doc.SchemaHash())
	}
	root := doc.Root()
	if root == nil {
		return nil, schemaBuildf("schema document root must be a map")
	}
	checkRoot := root.Without("")
	if err := validator.Validate(CoreValidator(), types.NewMapValue(checkRoot), nil, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaBuild, err)
	}

	s := &Schema{
		hash:          doc.Hash(),
		doc:           doc,
		entries:       make(map[string]*validator.Validator),
		aliases:       make(map[string]*validator.Validator),
		maxRegex:      validator.DefaultMaxRegex,
		entryCompress: make(map[string]*Compress),
	}

	if mr, ok := root.Get("max_regex"); ok {
		i, _ := mr.AsInt()
		u, ok := i.AsU64()
		if !ok || u > validator.DefaultMaxRegex {
			return nil, schemaBuildf("max_regex out of range 0-%d", validator.DefaultMaxRegex)
		}
		s.maxRegex = int(u)
	}
	budget := validator.NewBudget(s.maxRegex)

	var err error
	s.root, err = objValidatorFromSchemaRoot(root, budget)
	if err != nil {
		return nil, fmt.Errorf("%w: root validator: %v", ErrSchemaBuild, err)
	}

	if ev, ok := root.Get("entries"); ok {
		em, _ := ev.AsMap()
		for i := 0; i < em.Len(); i++ {
			key, val := em.At(i)
			sub, err := validator.Parse(val, false, budget)
			if err != nil {
				return nil, fmt.Errorf("%w: entry validator %q: %v", ErrSchemaBuild, key, err)
			}
			s.entries[key] = sub
		}
	}

	if tv, ok := root.Get("types"); ok {
		tm, _ := tv.AsMap()
		for i := 0; i < tm.Len(); i++ {
			name, val := tm.At(i)
			sub, err := validator.Parse(val, false, budget)
			if err != nil {
				return nil, fmt.Errorf("%w: type alias %q: %v", ErrSchemaBuild, name, err)
			}
			s.aliases[name] = sub
		}
	}

	roots := make([]*validator.Validator, 0, 1+len(s.entries))
	roots = append(roots, s.root)
	for _, sub := range s.entries {
		roots = append(roots, sub)
	}
	if err := validator.ResolveAliases(s.aliases, roots...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaBuild, err)
	}

	s.docCompress = DefaultCompress()
	if cv, ok := root.Get("doc_compress"); ok {
		s.docCompress, err = parseCompress(cv)
		if err != nil {
			return nil, fmt.Errorf("%w: doc_compress: %v", ErrSchemaBuild, err)
		}
	}
	if cv, ok := root.Get("entries_compress"); ok {
		cm, _ := cv.AsMap()
		for i := 0; i < cm.Len(); i++ {
			key, val := cm.At(i)
			if _, ok := s.entries[key]; !ok {
				return nil, schemaBuildf("entries_compress names unknown entry key %q", key)
			}
			policy, err := parseCompress(val)
			if err != nil {
				return nil, fmt.Errorf("%w: entries_compress[%q]: %v", ErrSchemaBuild, key, err)
			}
			s.entryCompress[key] = policy
		}
	}

	return s, nil
}

// Hash returns the schema hash — the hash of the schema's own
// document.
func (s *Schema) Hash() types.Hash { return s.hash }

// Document returns the schema's own document.
func (s *Schema) Document() *Document { return s.doc }

// HasEntryKey reports whether the schema defines entries under the
// given key.
func (s *Schema) HasEntryKey(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// ValidateDoc checks a document against the schema: the binding must
// match this schema's hash and the root map (binding aside) must pass
// the root validator. Hash-link obligations come back in the
// checklist.
func (s *Schema) ValidateDoc(doc *Document) (*validator.Checklist, error) {
	if doc.SchemaHash() == nil || !doc.SchemaHash().Equal(s.hash) {
		return nil, fmt.Errorf("%w: document is not bound to this schema", validator.ErrValidation)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: document root must be a map", validator.ErrValidation)
	}
	list := validator.NewChecklist()
	if err := validator.Validate(s.root, types.NewMapValue(root.Without("")), s.aliases, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ValidateEntry checks an entry value against the validator the
// schema declares for its key.
func (s *Schema) ValidateEntry(key string, value types.Value) (*validator.Checklist, error) {
	sub, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: schema defines no entries under key %q", validator.ErrValidation, key)
	}
	list := validator.NewChecklist()
	if err := validator.Validate(sub, value, s.aliases, list); err != nil {
		return nil, err
	}
	return list, nil
}

// EncodeDoc validates, compresses, and frames a document. Returns the
// document hash, the encoded bytes, and the link checklist from
// validation.
func (s *Schema) EncodeDoc(doc *Document) (types.Hash, []byte, *validator.Checklist, error) {
	list, err := s.ValidateDoc(doc)
	if err != nil {
		return types.Hash{}, nil, nil, err
	}
	out, err := doc.encode(s.docCompress)
	if err != nil {
		return types.Hash{}, nil, nil, err
	}
	return doc.Hash(), out, list, nil
}

// DecodeDoc reverses EncodeDoc: decompress, strictly decode, check
// the binding, verify signatures, and validate.
func (s *Schema) DecodeDoc(buf []byte) (*Document, *validator.Checklist, error) {
	doc, err := decodeDocBytes(buf, s.docCompress)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.ValidateDoc(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, list, nil
}

// EncodeEntry validates, compresses, and frames an entry.
func (s *Schema) EncodeEntry(e *Entry) (types.Hash, []byte, *validator.Checklist, error) {
	list, err := s.ValidateEntry(e.Key(), e.Value())
	if err != nil {
		return types.Hash{}, nil, nil, err
	}
	out, err := e.encode(s.entryPolicy(e.Key()))
	if err != nil {
		return types.Hash{}, nil, nil, err
	}
	return e.Hash(), out, list, nil
}

// DecodeEntry reverses EncodeEntry. The parent hash and key come from
// context.
func (s *Schema) DecodeEntry(buf []byte, parent types.Hash, key string) (*Entry, *validator.Checklist, error) {
	entry, err := decodeEntryBytes(buf, parent, key, s.entryPolicy(key))
	if err != nil {
		return nil, nil, err
	}
	list, err := s.ValidateEntry(key, entry.Value())
	if err != nil {
		return nil, nil, err
	}
	return entry, list, nil
}

func (s *Schema) entryPolicy(key string) *Compress {
	if policy, ok := s.entryCompress[key]; ok {
		return policy
	}
	return DefaultCompress()
}

// CheckQuery decides whether a query is admissible: the schema must
// define entries under the query's key, and the query validator may
// only use features the entry validator's permission flags enable.
func (s *Schema) CheckQuery(q *Query) error {
	sub, ok := s.entries[q.Key()]
	if !ok {
		return fmt.Errorf("%w: schema defines no entries under key %q", validator.ErrIncompatible, q.Key())
	}
	return validator.Check(sub, q.Validator(), s.aliases)
}

// EncodeQuery checks admissibility and serializes a query.
func (s *Schema) EncodeQuery(q *Query) ([]byte, error) {
	if err := s.CheckQuery(q); err != nil {
		return nil, err
	}
	return q.encode()
}

// DecodeQuery parses an encoded query and checks its admissibility.
func (s *Schema) DecodeQuery(buf []byte) (*Query, error) {
	q, err := decodeQueryBytes(buf, s.maxRegex)
	if err != nil {
		return nil, err
	}
	if err := s.CheckQuery(q); err != nil {
		return nil, err
	}
	return q, nil
}
