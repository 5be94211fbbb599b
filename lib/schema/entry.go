// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/crypt"
	"github.com/fogpack/fogpack/lib/types"
)

// Entry is an immutable value attached to a parent document under a
// key string. Entries are how mutable-feeling streams hang off an
// immutable document: the parent hash and key identify the stream,
// the entry hash identifies the item.
type Entry struct {
	parent   types.Hash
	key      string
	value    types.Value
	body     []byte
	hash     types.Hash
	sigs     []crypt.Signature
	compress *Compress
}

// NewEntry builds an entry. The entry hash is the hash of the
// canonical encoding of the three-element array
// [parent hash, key, value].
func NewEntry(parent types.Hash, key string, value types.Value) (*Entry, error) {
	keyVal, err := types.NewStr(key)
	if err != nil {
		return nil, fmt.Errorf("entry key: %w", err)
	}
	body, err := codec.Encode(value)
	if err != nil {
		return nil, err
	}
	if entryPrefixLen+len(body) > MaxEntrySize {
		return nil, fmt.Errorf("%w: entry body is %d bytes, maximum is %d",
			codec.ErrLimit, len(body), MaxEntrySize-entryPrefixLen)
	}
	triple, err := codec.Encode(types.NewArray([]types.Value{
		types.NewHashValue(parent), keyVal, value,
	}))
	if err != nil {
		return nil, err
	}
	return &Entry{
		parent: parent,
		key:    key,
		value:  value,
		body:   body,
		hash:   crypt.Sum(triple),
	}, nil
}

// Hash returns the entry hash.
func (e *Entry) Hash() types.Hash { return e.hash }

// Parent returns the parent document hash.
func (e *Entry) Parent() types.Hash { return e.parent }

// Key returns the entry key.
func (e *Entry) Key() string { return e.key }

// Value returns the entry value.
func (e *Entry) Value() types.Value { return e.value }

// Signatures returns the attached signatures.
func (e *Entry) Signatures() []crypt.Signature { return e.sigs }

// Sign appends a signature over the entry hash.
func (e *Entry) Sign(key *crypt.IdentityKey) error {
	newSize := entryPrefixLen + len(e.body) + (len(e.sigs)+1)*crypt.SignatureSize
	if newSize > MaxEntrySize {
		return fmt.Errorf("%w: signed entry would be %d bytes, maximum is %d",
			codec.ErrLimit, newSize, MaxEntrySize)
	}
	e.sigs = append(e.sigs, key.Sign(e.hash))
	return nil
}

// SetCompression overrides the schema's compression policy for this
// entry. Pass nil to restore the schema default.
func (e *Entry) SetCompression(c *Compress) { e.compress = c }

func (e *Entry) encode(defaultCompress *Compress) ([]byte, error) {
	policy := defaultCompress
	if e.compress != nil {
		policy = e.compress
	}
	if policy == nil {
		policy = NewCompressNone()
	}
	data, marker := policy.compress(e.body)
	out := appendEntryFrame(nil, byte(marker), data, e.sigs)
	if len(out) > MaxEntrySize {
		return nil, fmt.Errorf("%w: encoded entry is %d bytes, maximum is %d",
			codec.ErrLimit, len(out), MaxEntrySize)
	}
	return out, nil
}

// decodeEntryBytes reverses encode. The parent hash and key come from
// context — they are never stored in the frame — and participate in
// the recomputed entry hash that signatures verify against.
func decodeEntryBytes(buf []byte, parent types.Hash, key string, policy *Compress) (*Entry, error) {
	frame, err := splitEntryFrame(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	body, err := policy.decompress(frame.compressType(), frame.data, MaxEntrySize-entryPrefixLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	value, err := codec.Decode(body)
	if err != nil {
		return nil, err
	}
	entry, err := NewEntry(parent, key, value)
	if err != nil {
		return nil, err
	}
	entry.sigs, err = parseSignatures(frame.sigs)
	if err != nil {
		return nil, err
	}
	for _, sig := range entry.sigs {
		if err := sig.Verify(entry.hash); err != nil {
			return nil, err
		}
	}
	return entry, nil
}
