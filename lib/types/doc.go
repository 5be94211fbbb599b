// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the fogpack value model: a closed set of value
// kinds (null, bool, integer, two float widths, string, binary, array,
// map, hash, identity, lockbox, timestamp) with the construction-time
// invariants the canonical codec depends on.
//
// Values are immutable once constructed. Map keys are unique UTF-8
// strings kept sorted by raw byte order, so a map has exactly one
// canonical field order regardless of insertion order. Integers are a
// single wide type covering [-2^63, 2^64-1]; a non-negative integer
// compares and encodes identically whether it was built from a signed
// or unsigned host integer.
//
// The cryptographic value kinds (Hash, Identity, Lockbox) are typed
// views over byte strings produced by the crypt package; this package
// only enforces their framing, never computes digests or ciphertext.
package types
