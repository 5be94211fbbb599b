// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/fogpack/fogpack/lib/types"
)

// StreamKey is a 32-byte symmetric key for sealing lockboxes to a
// shared stream. Its public identifier is the BLAKE2b-256 hash of the
// key, which a lockbox carries so the holder can find the right key
// without trial decryption.
type StreamKey struct {
	key [types.LockboxKeySize]byte
	id  [types.LockboxKeySize]byte
}

// NewStreamKey generates a fresh stream key.
func NewStreamKey() (*StreamKey, error) {
	var key [types.LockboxKeySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("generating stream key: %w", err)
	}
	return StreamKeyFromBytes(key), nil
}

// StreamKeyFromBytes reconstructs a stream key from its raw bytes,
// e.g. recovered from a lockbox.
func StreamKeyFromBytes(key [types.LockboxKeySize]byte) *StreamKey {
	return &StreamKey{key: key, id: blake2b.Sum256(key[:])}
}

// ID returns the public stream identifier.
func (s *StreamKey) ID() [types.LockboxKeySize]byte { return s.id }

// Bytes returns the raw key. Handle with care; this is what a lockbox
// carries when a stream key is shared.
func (s *StreamKey) Bytes() []byte { return s.key[:] }
