// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the fogpack canonical binary encoding: a
// MessagePack-derived wire format where every value has exactly one
// legal byte sequence. The encoder always emits the shortest legal
// form with map keys in raw-byte order; the decoder rejects anything
// else, so two distinct byte strings never decode to the same value.
// That property is what makes content addressing sound — the hash of a
// value is the hash of its bytes.
//
// Marker byte constants come from the msgpack ecosystem package
// (msgpcode); the ext type assignments are fogpack's own: timestamp
// (-1), hash (1), identity (2), lockbox (3). All other ext types are
// reserved and rejected.
//
// Decoding is bounded: input size and nesting depth are capped via
// Limits, and the whole-buffer entry point rejects trailing bytes.
package codec
