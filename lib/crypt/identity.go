// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/fogpack/fogpack/lib/types"
)

// SignatureSize is the wire size of an encoded signature: the
// algorithm byte, the 32-byte public key, and the 64-byte Ed25519
// signature.
const SignatureSize = 1 + types.IdentityKeySize + ed25519.SignatureSize

// IdentityKey is an Ed25519 signing key together with its public
// Identity.
type IdentityKey struct {
	priv ed25519.PrivateKey
	id   types.Identity
}

// NewIdentityKey generates a fresh signing key.
func NewIdentityKey() (*IdentityKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating identity key: %w", err)
	}
	return identityKeyFromPrivate(priv), nil
}

// IdentityKeyFromSeed reconstructs a signing key from its 32-byte
// seed, e.g. one recovered from a lockbox.
func IdentityKeyFromSeed(seed []byte) (*IdentityKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity key seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
	}
	return identityKeyFromPrivate(ed25519.NewKeyFromSeed(seed)), nil
}

func identityKeyFromPrivate(priv ed25519.PrivateKey) *IdentityKey {
	var pub [types.IdentityKeySize]byte
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return &IdentityKey{priv: priv, id: types.NewIdentity(pub)}
}

// Identity returns the public identity.
func (k *IdentityKey) Identity() types.Identity { return k.id }

// Seed returns the 32-byte private seed. Handle with care; this is
// what a lockbox carries when an identity key is shared.
func (k *IdentityKey) Seed() []byte { return k.priv.Seed() }

// Sign signs a content hash. The message is the hash's encoded body
// (algorithm byte plus digest), so the signature commits to the
// algorithm as well as the digest.
func (k *IdentityKey) Sign(h types.Hash) Signature {
	var sig Signature
	sig.signer = k.id
	copy(sig.sig[:], ed25519.Sign(k.priv, h.Body()))
	return sig
}

// Signature is a detached Ed25519 signature over a content hash,
// carrying the signer's identity.
type Signature struct {
	signer types.Identity
	sig    [ed25519.SignatureSize]byte
}

// Signer returns the identity that produced the signature.
func (s Signature) Signer() types.Identity { return s.signer }

// Verify checks the signature against a content hash.
func (s Signature) Verify(h types.Hash) error {
	pub := ed25519.PublicKey(s.signer.Key())
	if !ed25519.Verify(pub, h.Body(), s.sig[:]) {
		return fmt.Errorf("%w: signature by %s does not verify", ErrCrypto, s.signer)
	}
	return nil
}

// Encode appends the wire form: algorithm byte, public key, signature.
func (s Signature) Encode(dst []byte) []byte {
	dst = append(dst, types.IdentityAlgoEd25519)
	dst = append(dst, s.signer.Key()...)
	return append(dst, s.sig[:]...)
}

// ParseSignature reads one encoded signature from the front of buf and
// returns it along with the number of bytes consumed.
func ParseSignature(buf []byte) (Signature, int, error) {
	if len(buf) < SignatureSize {
		return Signature{}, 0, fmt.Errorf("%w: signature region is %d bytes, want %d", ErrCrypto, len(buf), SignatureSize)
	}
	if buf[0] != types.IdentityAlgoEd25519 {
		return Signature{}, 0, fmt.Errorf("%w: unknown signature algorithm %d", ErrCrypto, buf[0])
	}
	var pub [types.IdentityKeySize]byte
	copy(pub[:], buf[1:1+types.IdentityKeySize])
	var sig Signature
	sig.signer = types.NewIdentity(pub)
	copy(sig.sig[:], buf[1+types.IdentityKeySize:SignatureSize])
	return sig, SignatureSize, nil
}
