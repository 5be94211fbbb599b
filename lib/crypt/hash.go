// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import (
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/fogpack/fogpack/lib/types"
)

// Sum computes the BLAKE2b-512 hash of data as an algorithm-1 Hash.
func Sum(data []byte) types.Hash {
	return types.NewHash(blake2b.Sum512(data))
}

// HashState is a streaming hasher producing an algorithm-1 Hash. The
// zero value is not usable; construct with NewHashState.
type HashState struct {
	inner hash.Hash
}

// NewHashState returns a fresh streaming hasher.
func NewHashState() *HashState {
	inner, err := blake2b.New512(nil)
	if err != nil {
		// New512 fails only for an over-long key; we pass none.
		panic("crypt: BLAKE2b initialization failed: " + err.Error())
	}
	return &HashState{inner: inner}
}

// Write absorbs more input. It never fails.
func (s *HashState) Write(data []byte) (int, error) {
	return s.inner.Write(data)
}

// Hash returns the hash of everything written so far. The state
// remains usable for further writes.
func (s *HashState) Hash() types.Hash {
	var digest [types.HashDigestSize]byte
	copy(digest[:], s.inner.Sum(nil))
	return types.NewHash(digest)
}
