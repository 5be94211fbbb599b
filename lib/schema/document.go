// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/crypt"
	"github.com/fogpack/fogpack/lib/types"
)

// Document is an immutable top-level map value, optionally bound to a
// schema through the empty-string key, optionally signed, and
// identified by the hash of its canonical encoding. Signing is the
// one permitted mutation before encoding, and it only appends — the
// document hash never changes.
type Document struct {
	value      types.Value
	body       []byte
	schemaHash *types.Hash
	hash       types.Hash
	sigs       []crypt.Signature
	compress   *Compress
}

// NewDocument builds a document from a root map. When schemaHash is
// non-nil it is embedded under the empty-string key, binding the
// document to that schema; the map must not already carry the key.
// When schemaHash is nil and the map carries the key, the binding is
// read from the map.
func NewDocument(root *types.Map, schemaHash *types.Hash) (*Document, error) {
	if root == nil {
		root = types.NewMap()
	}
	if schemaHash != nil {
		if root.Has("") {
			return nil, fmt.Errorf("root map already carries a schema binding")
		}
		if err := root.Set("", types.NewHashValue(*schemaHash)); err != nil {
			return nil, err
		}
	} else if bound, ok := root.Get(""); ok {
		h, ok := bound.AsHash()
		if !ok {
			return nil, fmt.Errorf("empty-string key must hold the schema hash, got %v", bound.Kind())
		}
		schemaHash = &h
	}

	value := types.NewMapValue(root)
	body, err := codec.Encode(value)
	if err != nil {
		return nil, err
	}
	if docPrefixLen+len(body) > MaxDocSize {
		return nil, fmt.Errorf("%w: document body is %d bytes, maximum is %d",
			codec.ErrLimit, len(body), MaxDocSize-docPrefixLen)
	}
	return &Document{
		value:      value,
		body:       body,
		schemaHash: schemaHash,
		hash:       crypt.Sum(body),
	}, nil
}

// Hash returns the document hash: the hash of the canonical body,
// unaffected by compression and signatures.
func (d *Document) Hash() types.Hash { return d.hash }

// Value returns the root value.
func (d *Document) Value() types.Value { return d.value }

// Root returns the root map.
func (d *Document) Root() *types.Map {
	m, _ := d.value.AsMap()
	return m
}

// SchemaHash returns the schema binding, or nil for schema-less
// documents.
func (d *Document) SchemaHash() *types.Hash { return d.schemaHash }

// Signatures returns the attached signatures.
func (d *Document) Signatures() []crypt.Signature { return d.sigs }

// Sign appends a signature over the document hash. Fails if the
// signature would push the encoded document past the size limit.
func (d *Document) Sign(key *crypt.IdentityKey) error {
	newSize := docPrefixLen + len(d.body) + (len(d.sigs)+1)*crypt.SignatureSize
	if newSize > MaxDocSize {
		return fmt.Errorf("%w: signed document would be %d bytes, maximum is %d",
			codec.ErrLimit, newSize, MaxDocSize)
	}
	d.sigs = append(d.sigs, key.Sign(d.hash))
	return nil
}

// SetCompression overrides the schema's compression policy for this
// document. Pass nil to restore the schema default.
func (d *Document) SetCompression(c *Compress) { d.compress = c }

// encode frames the document with the given default compression
// policy (the override, when set, wins).
func (d *Document) encode(defaultCompress *Compress) ([]byte, error) {
	policy := defaultCompress
	if d.compress != nil {
		policy = d.compress
	}
	if policy == nil {
		policy = NewCompressNone()
	}
	data, marker := policy.compress(d.body)
	header := byte(marker)
	if d.schemaHash != nil {
		header |= headerSchemaFlag
	}
	out := appendDocFrame(nil, header, data, d.sigs)
	if len(out) > MaxDocSize {
		return nil, fmt.Errorf("%w: encoded document is %d bytes, maximum is %d",
			codec.ErrLimit, len(out), MaxDocSize)
	}
	return out, nil
}

// decodeDocBytes reverses encode: split the frame, decompress with
// the given policy, strictly decode the body, recompute the hash, and
// verify every signature. Schema-level validation is the caller's
// job.
func decodeDocBytes(buf []byte, policy *Compress) (*Document, error) {
	frame, err := splitDocFrame(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	body, err := frame.decompressBody(policy, MaxDocSize-docPrefixLen)
	if err != nil {
		return nil, err
	}
	value, err := codec.Decode(body)
	if err != nil {
		return nil, err
	}
	root, ok := value.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: document root is %v, must be a map", codec.ErrMalformed, value.Kind())
	}

	var schemaHash *types.Hash
	if bound, ok := root.Get(""); ok {
		h, ok := bound.AsHash()
		if !ok {
			return nil, fmt.Errorf("%w: empty-string key holds %v, must be a hash", codec.ErrMalformed, bound.Kind())
		}
		schemaHash = &h
	}
	if frame.hasSchema() != (schemaHash != nil) {
		return nil, fmt.Errorf("%w: header schema flag does not match the body", codec.ErrMalformed)
	}

	doc := &Document{
		value:      value,
		body:       body,
		schemaHash: schemaHash,
		hash:       crypt.Sum(body),
	}
	doc.sigs, err = parseSignatures(frame.sigs)
	if err != nil {
		return nil, err
	}
	for _, sig := range doc.sigs {
		if err := sig.Verify(doc.hash); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// decompressBody dispatches on the frame's compression marker.
func (f splitFrame) decompressBody(policy *Compress, maxSize int) ([]byte, error) {
	body, err := policy.decompress(f.compressType(), f.data, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	return body, nil
}

// GetDocSchema extracts the schema binding from an encoded document
// without verifying it. Returns nil for schema-less documents.
// Dictionary-compressed documents cannot be peeked — the schema must
// already be known from context — and return an error saying so.
func GetDocSchema(buf []byte) (*types.Hash, error) {
	frame, err := splitDocFrame(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	if !frame.hasSchema() {
		return nil, nil
	}
	if frame.compressType() == CompressTypeDict {
		return nil, fmt.Errorf("%w: document uses dictionary compression; its schema must be known from context", codec.ErrMalformed)
	}
	body, err := frame.decompressBody(NewCompressNone(), MaxDocSize-docPrefixLen)
	if err != nil {
		return nil, err
	}
	value, err := codec.Decode(body)
	if err != nil {
		return nil, err
	}
	root, ok := value.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: document root is %v, must be a map", codec.ErrMalformed, value.Kind())
	}
	bound, ok := root.Get("")
	if !ok {
		return nil, fmt.Errorf("%w: header schema flag set but the body has no binding", codec.ErrMalformed)
	}
	h, ok := bound.AsHash()
	if !ok {
		return nil, fmt.Errorf("%w: empty-string key holds %v, must be a hash", codec.ErrMalformed, bound.Kind())
	}
	return &h, nil
}
