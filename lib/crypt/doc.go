// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package crypt is the cryptographic collaborator for fogpack: content
// hashing (BLAKE2b-512), identity signing (Ed25519), and lockbox
// sealing (X25519 key agreement + XChaCha20-Poly1305), plus a Vault
// that holds identity and stream keys and opens lockboxes addressed to
// them.
//
// The value-level framing of hashes, identities, and lockboxes lives
// in the types package; this package produces and consumes those
// values.
package crypt
