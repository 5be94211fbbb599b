// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import (
	"fmt"
	"sync"

	"github.com/fogpack/fogpack/lib/types"
)

// Contents is what a lockbox held, after opening. Exactly one of the
// payload fields is set, according to Type.
type Contents struct {
	// Type is the inner content type byte: ContentIdentityKey,
	// ContentStreamKey, or ContentData.
	Type byte

	// Data is the payload for ContentData lockboxes.
	Data []byte

	// IdentityKey is the recovered signing key for
	// ContentIdentityKey lockboxes.
	IdentityKey *IdentityKey

	// StreamKey is the recovered stream key for ContentStreamKey
	// lockboxes.
	StreamKey *StreamKey
}

// Vault holds identity and stream keys and opens lockboxes addressed
// to them. Keys live in one of two stores: generated and explicitly
// added keys are permanent; keys recovered from lockboxes are
// temporary until promoted with Promote*. Dropping a key removes it
// from both stores.
//
// A Vault is safe for concurrent use.
type Vault struct {
	mu sync.Mutex

	// permIdentities and tempIdentities are keyed by the X25519 form
	// of the public key, which is what a lockbox recipient field
	// carries.
	permIdentities map[[types.LockboxKeySize]byte]*IdentityKey
	tempIdentities map[[types.LockboxKeySize]byte]*IdentityKey

	permStreams map[[types.LockboxKeySize]byte]*StreamKey
	tempStreams map[[types.LockboxKeySize]byte]*StreamKey
}

// NewVault returns an empty vault.
func NewVault() *Vault {
	return &Vault{
		permIdentities: make(map[[types.LockboxKeySize]byte]*IdentityKey),
		tempIdentities: make(map[[types.LockboxKeySize]byte]*IdentityKey),
		permStreams:    make(map[[types.LockboxKeySize]byte]*StreamKey),
		tempStreams:    make(map[[types.LockboxKeySize]byte]*StreamKey),
	}
}

// NewIdentity generates a signing key, stores it permanently, and
// returns its public identity.
func (v *Vault) NewIdentity() (types.Identity, error) {
	key, err := NewIdentityKey()
	if err != nil {
		return types.Identity{}, err
	}
	if err := v.AddIdentityKey(key); err != nil {
		return types.Identity{}, err
	}
	return key.Identity(), nil
}

// AddIdentityKey stores a signing key in the permanent store.
func (v *Vault) AddIdentityKey(key *IdentityKey) error {
	x, err := x25519Public(key)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tempIdentities, x)
	v.permIdentities[x] = key
	return nil
}

// NewStream generates a stream key, stores it permanently, and
// returns its public identifier.
func (v *Vault) NewStream() ([types.LockboxKeySize]byte, error) {
	key, err := NewStreamKey()
	if err != nil {
		return [types.LockboxKeySize]byte{}, err
	}
	v.AddStreamKey(key)
	return key.ID(), nil
}

// AddStreamKey stores a stream key in the permanent store.
func (v *Vault) AddStreamKey(key *StreamKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tempStreams, key.ID())
	v.permStreams[key.ID()] = key
}

// IdentityKey looks up a held signing key by its public identity.
func (v *Vault) IdentityKey(id types.Identity) (*IdentityKey, error) {
	x, err := identityToX25519(id)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if key, ok := v.permIdentities[x]; ok {
		return key, nil
	}
	if key, ok := v.tempIdentities[x]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: identity key %s not in vault", ErrCrypto, id)
}

// StreamKeyByID looks up a held stream key by its identifier.
func (v *Vault) StreamKeyByID(id [types.LockboxKeySize]byte) (*StreamKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if key, ok := v.permStreams[id]; ok {
		return key, nil
	}
	if key, ok := v.tempStreams[id]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: stream key not in vault", ErrCrypto)
}

// PromoteIdentity moves a temporarily held identity key to the
// permanent store. Reports whether the key is now permanent.
func (v *Vault) PromoteIdentity(id types.Identity) bool {
	x, err := identityToX25519(id)
	if err != nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if key, ok := v.tempIdentities[x]; ok {
		delete(v.tempIdentities, x)
		v.permIdentities[x] = key
		return true
	}
	_, ok := v.permIdentities[x]
	return ok
}

// PromoteStream moves a temporarily held stream key to the permanent
// store. Reports whether the key is now permanent.
func (v *Vault) PromoteStream(id [types.LockboxKeySize]byte) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if key, ok := v.tempStreams[id]; ok {
		delete(v.tempStreams, id)
		v.permStreams[id] = key
		return true
	}
	_, ok := v.permStreams[id]
	return ok
}

// DropIdentity removes a signing key from both stores.
func (v *Vault) DropIdentity(id types.Identity) {
	x, err := identityToX25519(id)
	if err != nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.permIdentities, x)
	delete(v.tempIdentities, x)
}

// DropStream removes a stream key from both stores.
func (v *Vault) DropStream(id [types.LockboxKeySize]byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.permStreams, id)
	delete(v.tempStreams, id)
}

// Open decrypts a lockbox using whichever held key its recipient field
// names. Recovered identity and stream keys are placed in the
// temporary store.
func (v *Vault) Open(box *types.Lockbox) (*Contents, error) {
	var plaintext []byte
	switch box.RecipientTag() {
	case types.LockboxRecipientIdentity:
		recipient := box.Recipient()
		v.mu.Lock()
		key, ok := v.permIdentities[recipient]
		if !ok {
			key, ok = v.tempIdentities[recipient]
		}
		v.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("%w: no identity key for lockbox recipient", ErrCrypto)
		}
		var err error
		plaintext, err = openIdentity(box, key)
		if err != nil {
			return nil, err
		}
	case types.LockboxRecipientStream:
		stream, err := v.StreamKeyByID(box.Recipient())
		if err != nil {
			return nil, err
		}
		plaintext, err = openStream(box, stream)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown lockbox recipient tag %d", ErrCrypto, box.RecipientTag())
	}

	content, payload := plaintext[0], plaintext[1:]
	switch content {
	case ContentData:
		return &Contents{Type: ContentData, Data: payload}, nil
	case ContentIdentityKey:
		key, err := IdentityKeyFromSeed(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: lockbox identity key: %v", ErrCrypto, err)
		}
		x, err := x25519Public(key)
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		if _, ok := v.permIdentities[x]; !ok {
			v.tempIdentities[x] = key
		}
		v.mu.Unlock()
		return &Contents{Type: ContentIdentityKey, IdentityKey: key}, nil
	case ContentStreamKey:
		if len(payload) != types.LockboxKeySize {
			return nil, fmt.Errorf("%w: lockbox stream key is %d bytes, want %d", ErrCrypto, len(payload), types.LockboxKeySize)
		}
		var raw [types.LockboxKeySize]byte
		copy(raw[:], payload)
		key := StreamKeyFromBytes(raw)
		v.mu.Lock()
		if _, ok := v.permStreams[key.ID()]; !ok {
			v.tempStreams[key.ID()] = key
		}
		v.mu.Unlock()
		return &Contents{Type: ContentStreamKey, StreamKey: key}, nil
	default:
		return nil, fmt.Errorf("%w: unknown lockbox content type %d", ErrCrypto, content)
	}
}
