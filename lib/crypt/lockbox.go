// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/fogpack/fogpack/lib/types"
)

// Lockbox content type bytes: the first plaintext byte identifies
// what the lockbox carries.
const (
	ContentIdentityKey byte = 0x01
	ContentStreamKey   byte = 0x02
	ContentData        byte = 0x03
)

// hkdfInfoLockbox is the domain-separation info string for lockbox key
// derivation. Changing it invalidates every existing lockbox.
var hkdfInfoLockbox = []byte("fogpack.lockbox.v1")

// SealDataForIdentity seals arbitrary data to an identity's public
// key.
func SealDataForIdentity(data []byte, recipient types.Identity) (*types.Lockbox, error) {
	return sealForIdentity(ContentData, data, recipient)
}

// SealDataForStream seals arbitrary data with a stream key.
func SealDataForStream(data []byte, stream *StreamKey) (*types.Lockbox, error) {
	return sealForStream(ContentData, data, stream)
}

// SealIdentityKeyForIdentity seals a signing key to an identity's
// public key, transferring it to the holder of that identity.
func SealIdentityKeyForIdentity(key *IdentityKey, recipient types.Identity) (*types.Lockbox, error) {
	return sealForIdentity(ContentIdentityKey, key.Seed(), recipient)
}

// SealIdentityKeyForStream seals a signing key with a stream key.
func SealIdentityKeyForStream(key *IdentityKey, stream *StreamKey) (*types.Lockbox, error) {
	return sealForStream(ContentIdentityKey, key.Seed(), stream)
}

// SealStreamKeyForIdentity seals a stream key to an identity's public
// key.
func SealStreamKeyForIdentity(key *StreamKey, recipient types.Identity) (*types.Lockbox, error) {
	return sealForIdentity(ContentStreamKey, key.Bytes(), recipient)
}

// SealStreamKeyForStream seals a stream key with another stream key.
func SealStreamKeyForStream(key *StreamKey, stream *StreamKey) (*types.Lockbox, error) {
	return sealForStream(ContentStreamKey, key.Bytes(), stream)
}

func sealForIdentity(content byte, payload []byte, recipient types.Identity) (*types.Lockbox, error) {
	recipX, err := identityToX25519(recipient)
	if err != nil {
		return nil, err
	}

	var ephPriv [types.LockboxKeySize]byte
	if _, err := io.ReadFull(rand.Reader, ephPriv[:]); err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	ephPubSlice, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("deriving ephemeral public key: %w", err)
	}
	var ephPub [types.LockboxKeySize]byte
	copy(ephPub[:], ephPubSlice)

	shared, err := curve25519.X25519(ephPriv[:], recipX[:])
	if err != nil {
		return nil, fmt.Errorf("X25519 key agreement: %w", err)
	}

	key, err := deriveLockboxKey(shared, recipX, ephPub)
	if err != nil {
		return nil, err
	}

	nonce, ciphertext, err := sealAEAD(key, content, payload,
		lockboxAAD(types.LockboxRecipientIdentity, recipX, &ephPub))
	if err != nil {
		return nil, err
	}
	return types.NewLockbox(types.LockboxRecipientIdentity, recipX, &ephPub, nonce, ciphertext)
}

func sealForStream(content byte, payload []byte, stream *StreamKey) (*types.Lockbox, error) {
	id := stream.ID()
	nonce, ciphertext, err := sealAEAD(stream.Bytes(), content, payload,
		lockboxAAD(types.LockboxRecipientStream, id, nil))
	if err != nil {
		return nil, err
	}
	return types.NewLockbox(types.LockboxRecipientStream, id, nil, nonce, ciphertext)
}

func sealAEAD(key []byte, content byte, payload, aad []byte) ([types.LockboxNonceSize]byte, []byte, error) {
	var nonce [types.LockboxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, nil, fmt.Errorf("generating nonce: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nonce, nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	plaintext := make([]byte, 0, 1+len(payload))
	plaintext = append(plaintext, content)
	plaintext = append(plaintext, payload...)
	ciphertext := aead.Seal(nil, nonce[:], plaintext, aad)
	return nonce, ciphertext, nil
}

// openIdentity opens an identity-recipient lockbox with the given
// signing key. The caller has already matched the recipient field to
// this key.
func openIdentity(box *types.Lockbox, key *IdentityKey) ([]byte, error) {
	recipX := box.Recipient()
	eph := box.Ephemeral()

	xPriv := ed25519ToX25519Private(key.priv)
	shared, err := curve25519.X25519(xPriv, eph[:])
	if err != nil {
		return nil, fmt.Errorf("%w: X25519 key agreement: %v", ErrCrypto, err)
	}
	aeadKey, err := deriveLockboxKey(shared, recipX, eph)
	if err != nil {
		return nil, err
	}
	return openAEAD(aeadKey, box, lockboxAAD(types.LockboxRecipientIdentity, recipX, &eph))
}

// openStream opens a stream-recipient lockbox.
func openStream(box *types.Lockbox, stream *StreamKey) ([]byte, error) {
	id := box.Recipient()
	return openAEAD(stream.Bytes(), box, lockboxAAD(types.LockboxRecipientStream, id, nil))
}

func openAEAD(key []byte, box *types.Lockbox, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	nonce := box.Nonce()
	plaintext, err := aead.Open(nil, nonce[:], box.Ciphertext(), aad)
	if err != nil {
		return nil, fmt.Errorf("%w: lockbox authentication failed", ErrCrypto)
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("%w: lockbox plaintext is empty", ErrCrypto)
	}
	return plaintext, nil
}

// lockboxAAD binds the framing to the ciphertext: version, recipient
// tag, recipient field, and (for identity recipients) the ephemeral
// public key. Tampering with any of them fails authentication.
func lockboxAAD(tag byte, recipient [types.LockboxKeySize]byte, ephemeral *[types.LockboxKeySize]byte) []byte {
	aad := make([]byte, 0, 2+2*types.LockboxKeySize)
	aad = append(aad, types.LockboxVersion, tag)
	aad = append(aad, recipient[:]...)
	if ephemeral != nil {
		aad = append(aad, ephemeral[:]...)
	}
	return aad
}

// deriveLockboxKey derives the AEAD key from the X25519 shared secret.
// The recipient and ephemeral public keys are folded into the info
// parameter so the key is bound to this exact exchange.
func deriveLockboxKey(shared []byte, recipient, ephemeral [types.LockboxKeySize]byte) ([]byte, error) {
	info := make([]byte, 0, len(hkdfInfoLockbox)+2*types.LockboxKeySize)
	info = append(info, hkdfInfoLockbox...)
	info = append(info, recipient[:]...)
	info = append(info, ephemeral[:]...)
	reader := hkdf.New(sha256.New, shared, nil, info)
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	return key, nil
}

// identityToX25519 converts an Ed25519 public identity to its X25519
// (Montgomery) form for key agreement.
func identityToX25519(id types.Identity) ([types.LockboxKeySize]byte, error) {
	var out [types.LockboxKeySize]byte
	point, err := new(edwards25519.Point).SetBytes(id.Key())
	if err != nil {
		return out, fmt.Errorf("%w: identity is not a valid Ed25519 point: %v", ErrCrypto, err)
	}
	copy(out[:], point.BytesMontgomery())
	return out, nil
}

// ed25519ToX25519Private derives the X25519 private scalar from an
// Ed25519 private key (the standard hash-and-clamp construction; the
// clamp itself happens inside curve25519.X25519).
func ed25519ToX25519Private(priv ed25519.PrivateKey) []byte {
	digest := sha512.Sum512(priv.Seed())
	return digest[:curve25519.ScalarSize]
}

// x25519Public returns the X25519 public key for an identity key,
// used to match lockbox recipient fields against held keys.
func x25519Public(key *IdentityKey) ([types.LockboxKeySize]byte, error) {
	return identityToX25519(key.id)
}
