// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package crypt

import "errors"

// ErrCrypto is the kind for every cryptographic failure surfaced by
// this package: signature verification, lockbox authentication, and
// missing-key lookups all wrap it. Matched with errors.Is.
var ErrCrypto = errors.New("cryptographic failure")
