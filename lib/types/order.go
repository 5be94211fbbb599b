// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "math"

// CmpF64 orders two float64 values with the IEEE-754 totalOrder
// predicate: -NaN < -Inf < negative < -0 < +0 < positive < +Inf < +NaN,
// with NaNs ordered by sign and payload.
func CmpF64(a, b float64) int {
	ka := totalOrderKey64(math.Float64bits(a))
	kb := totalOrderKey64(math.Float64bits(b))
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

// CmpF32 orders two float32 values with the IEEE-754 totalOrder
// predicate.
func CmpF32(a, b float32) int {
	ka := totalOrderKey32(math.Float32bits(a))
	kb := totalOrderKey32(math.Float32bits(b))
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

// totalOrderKey64 maps float bits to a key whose unsigned comparison
// matches totalOrder: negative floats (sign bit set) are bit-inverted,
// non-negative floats get the sign bit set.
func totalOrderKey64(bits uint64) uint64 {
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | 1<<63
}

func totalOrderKey32(bits uint32) uint32 {
	if bits&(1<<31) != 0 {
		return ^bits
	}
	return bits | 1<<31
}

// CmpBin orders two byte strings as little-endian arbitrary-precision
// unsigned integers: trailing zero bytes are insignificant, a longer
// significant length is a larger number, and equal lengths compare
// from the most significant (last) byte down.
func CmpBin(a, b []byte) int {
	la := len(a)
	for la > 0 && a[la-1] == 0 {
		la--
	}
	lb := len(b)
	for lb > 0 && b[lb-1] == 0 {
		lb--
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	}
	for i := la - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}
