// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"fmt"
)

// Lockbox framing constants. The body layout is:
//
//	version(1) || tag(1) || recipient(32) || [ephemeral(32)] || nonce(24) || ciphertext
//
// where the ephemeral public key is present only for identity
// recipients, and the ciphertext includes the 16-byte authentication
// tag. The ciphertext plaintext begins with an inner content-type byte.
const (
	// LockboxVersion is the only defined lockbox version.
	LockboxVersion byte = 1

	// LockboxRecipientIdentity tags a lockbox sealed to a public key.
	// The recipient field holds the recipient's X25519 public key and
	// the ephemeral field is present.
	LockboxRecipientIdentity byte = 1

	// LockboxRecipientStream tags a lockbox sealed with a symmetric
	// stream key. The recipient field holds the stream ID and there is
	// no ephemeral field.
	LockboxRecipientStream byte = 2

	// LockboxKeySize is the size of the recipient and ephemeral
	// fields.
	LockboxKeySize = 32

	// LockboxNonceSize is the XChaCha20-Poly1305 nonce size.
	LockboxNonceSize = 24

	// LockboxTagSize is the Poly1305 authentication tag size.
	LockboxTagSize = 16
)

// Lockbox is an authenticated encrypted payload. This package only
// enforces the framing; sealing and opening live in the crypt package.
type Lockbox struct {
	tag        byte
	recipient  [LockboxKeySize]byte
	ephemeral  [LockboxKeySize]byte
	nonce      [LockboxNonceSize]byte
	ciphertext []byte
}

// NewLockbox assembles a lockbox from its parts. The ephemeral key is
// required for identity recipients and must be nil for stream
// recipients. The ciphertext must include the authentication tag and
// cover at least the inner content-type byte.
func NewLockbox(tag byte, recipient [LockboxKeySize]byte, ephemeral *[LockboxKeySize]byte, nonce [LockboxNonceSize]byte, ciphertext []byte) (*Lockbox, error) {
	switch tag {
	case LockboxRecipientIdentity:
		if ephemeral == nil {
			return nil, fmt.Errorf("identity lockbox requires an ephemeral key")
		}
	case LockboxRecipientStream:
		if ephemeral != nil {
			return nil, fmt.Errorf("stream lockbox must not carry an ephemeral key")
		}
	default:
		return nil, fmt.Errorf("unknown lockbox recipient tag %d", tag)
	}
	if len(ciphertext) < 1+LockboxTagSize {
		return nil, fmt.Errorf("lockbox ciphertext is %d bytes, minimum is %d", len(ciphertext), 1+LockboxTagSize)
	}
	box := &Lockbox{tag: tag, recipient: recipient, nonce: nonce}
	if ephemeral != nil {
		box.ephemeral = *ephemeral
	}
	box.ciphertext = bytes.Clone(ciphertext)
	return box, nil
}

// ParseLockboxBody parses an ext body into a Lockbox, enforcing the
// version byte, recipient tag, and minimum lengths.
func ParseLockboxBody(body []byte) (*Lockbox, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("lockbox body is %d bytes, minimum is 2", len(body))
	}
	if body[0] != LockboxVersion {
		return nil, fmt.Errorf("unknown lockbox version %d", body[0])
	}
	tag := body[1]
	rest := body[2:]

	var box Lockbox
	box.tag = tag
	switch tag {
	case LockboxRecipientIdentity:
		minimum := 2*LockboxKeySize + LockboxNonceSize + 1 + LockboxTagSize
		if len(rest) < minimum {
			return nil, fmt.Errorf("identity lockbox body is %d bytes, minimum is %d", len(rest)+2, minimum+2)
		}
		copy(box.recipient[:], rest[:LockboxKeySize])
		copy(box.ephemeral[:], rest[LockboxKeySize:2*LockboxKeySize])
		copy(box.nonce[:], rest[2*LockboxKeySize:2*LockboxKeySize+LockboxNonceSize])
		box.ciphertext = bytes.Clone(rest[2*LockboxKeySize+LockboxNonceSize:])
	case LockboxRecipientStream:
		minimum := LockboxKeySize + LockboxNonceSize + 1 + LockboxTagSize
		if len(rest) < minimum {
			return nil, fmt.Errorf("stream lockbox body is %d bytes, minimum is %d", len(rest)+2, minimum+2)
		}
		copy(box.recipient[:], rest[:LockboxKeySize])
		copy(box.nonce[:], rest[LockboxKeySize:LockboxKeySize+LockboxNonceSize])
		box.ciphertext = bytes.Clone(rest[LockboxKeySize+LockboxNonceSize:])
	default:
		return nil, fmt.Errorf("unknown lockbox recipient tag %d", tag)
	}
	return &box, nil
}

// RecipientTag returns the recipient tag byte.
func (l *Lockbox) RecipientTag() byte { return l.tag }

// Recipient returns the recipient field: an X25519 public key for
// identity recipients, a stream ID for stream recipients.
func (l *Lockbox) Recipient() [LockboxKeySize]byte { return l.recipient }

// Ephemeral returns the ephemeral public key. Only meaningful for
// identity recipients.
func (l *Lockbox) Ephemeral() [LockboxKeySize]byte { return l.ephemeral }

// Nonce returns the AEAD nonce.
func (l *Lockbox) Nonce() [LockboxNonceSize]byte { return l.nonce }

// Ciphertext returns the ciphertext including the authentication tag.
func (l *Lockbox) Ciphertext() []byte { return l.ciphertext }

// Size returns the encoded body length.
func (l *Lockbox) Size() int {
	size := 2 + LockboxKeySize + LockboxNonceSize + len(l.ciphertext)
	if l.tag == LockboxRecipientIdentity {
		size += LockboxKeySize
	}
	return size
}

// Body serializes the lockbox to its wire body.
func (l *Lockbox) Body() []byte {
	body := make([]byte, 0, l.Size())
	body = append(body, LockboxVersion, l.tag)
	body = append(body, l.recipient[:]...)
	if l.tag == LockboxRecipientIdentity {
		body = append(body, l.ephemeral[:]...)
	}
	body = append(body, l.nonce[:]...)
	body = append(body, l.ciphertext...)
	return body
}

// Equal reports whether both lockboxes serialize to the same body.
func (l *Lockbox) Equal(o *Lockbox) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.tag == o.tag &&
		l.recipient == o.recipient &&
		l.ephemeral == o.ephemeral &&
		l.nonce == o.nonce &&
		bytes.Equal(l.ciphertext, o.ciphertext)
}
