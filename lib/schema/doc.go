// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema implements the fogpack document pipeline: Documents,
// Entries, and Queries, the Schema object that validates and encodes
// them, and the zstd compression layer driven by schema settings.
//
// A Schema is built from a Document that validates against the
// hard-coded core schema. Once built it is immutable and safe to
// share across any number of concurrent encoders and decoders; the
// compiled validators, regexes, and zstd contexts it owns are
// read-only after construction.
//
// On the wire a document is a one-byte header (compression type plus
// a schema-presence flag), a little-endian 24-bit body length, the
// canonically encoded (and possibly compressed) body, and zero or
// more fixed-size signatures. Entries use the same shape with a
// 16-bit length and no schema flag; their parent hash and key are
// context, never stored. The document hash covers the canonical body
// only, so compressing or signing never changes a document's
// identity.
package schema
