// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is. Every decode failure wraps
// exactly one of these; malformed and non-canonical failures also
// carry the byte offset they occurred at, limit failures do not.
var (
	// ErrRange reports an encode-time range violation: a string,
	// binary, or container too large for any wire form.
	ErrRange = errors.New("value out of encodable range")

	// ErrMalformed reports truncated input, a reserved opcode, a
	// reserved ext type, or an otherwise unreadable byte sequence.
	ErrMalformed = errors.New("malformed data")

	// ErrNonCanonical reports input that decodes under a lax reader
	// but is not the shortest legal form: oversized integer or length
	// containers, out-of-order or duplicate map keys, invalid UTF-8,
	// or a fixext-eligible body framed as ext.
	ErrNonCanonical = errors.New("non-canonical encoding")

	// ErrLimit reports that decoding exceeded a configured resource
	// bound (input size or nesting depth).
	ErrLimit = errors.New("limit exceeded")
)

func malformedf(offset int, format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformed, offset, fmt.Sprintf(format, args...))
}

func nonCanonicalf(offset int, format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrNonCanonical, offset, fmt.Sprintf(format, args...))
}

func limitf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLimit, fmt.Sprintf(format, args...))
}
