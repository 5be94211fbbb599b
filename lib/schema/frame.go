// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/binary"
	"fmt"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/crypt"
)

// Size limits. All are hard bounds enforced on both encode and
// decode.
const (
	// MaxDocSize bounds an encoded document: header, body (before
	// and after compression), and signatures.
	MaxDocSize = 1 << 20

	// MaxEntrySize bounds an encoded entry.
	MaxEntrySize = 1 << 16

	// MaxQuerySize bounds an encoded query.
	MaxQuerySize = 1 << 16
)

// Frame header layout: bits 0-1 are the compression type, bit 2 flags
// a schema-bound body (documents only), bits 3-7 are reserved and
// must be zero.
const (
	headerCompressMask byte = 0x03
	headerSchemaFlag   byte = 0x04
	headerReservedMask byte = 0xf8
)

const (
	docPrefixLen   = 4 // header byte + 24-bit length
	entryPrefixLen = 3 // header byte + 16-bit length
)

// splitFrame is a document or entry frame taken apart, before any
// decompression or signature parsing.
type splitFrame struct {
	header byte
	data   []byte
	sigs   []byte
}

func (f splitFrame) compressType() CompressType {
	return CompressType(f.header & headerCompressMask)
}

func (f splitFrame) hasSchema() bool {
	return f.header&headerSchemaFlag != 0
}

func splitDocFrame(buf []byte) (splitFrame, error) {
	if len(buf) > MaxDocSize {
		return splitFrame{}, fmt.Errorf("document is %d bytes, maximum is %d", len(buf), MaxDocSize)
	}
	if len(buf) < docPrefixLen {
		return splitFrame{}, fmt.Errorf("document frame is %d bytes, minimum is %d", len(buf), docPrefixLen)
	}
	header := buf[0]
	if header&headerReservedMask != 0 {
		return splitFrame{}, fmt.Errorf("reserved header bits set: 0x%02x", header)
	}
	dataLen := int(buf[1]) | int(buf[2])<<8 | int(buf[3])<<16
	rest := buf[docPrefixLen:]
	if dataLen > len(rest) {
		return splitFrame{}, fmt.Errorf("frame claims %d body bytes, only %d present", dataLen, len(rest))
	}
	return splitFrame{header: header, data: rest[:dataLen], sigs: rest[dataLen:]}, nil
}

func splitEntryFrame(buf []byte) (splitFrame, error) {
	if len(buf) > MaxEntrySize {
		return splitFrame{}, fmt.Errorf("entry is %d bytes, maximum is %d", len(buf), MaxEntrySize)
	}
	if len(buf) < entryPrefixLen {
		return splitFrame{}, fmt.Errorf("entry frame is %d bytes, minimum is %d", len(buf), entryPrefixLen)
	}
	header := buf[0]
	if header&(headerReservedMask|headerSchemaFlag) != 0 {
		return splitFrame{}, fmt.Errorf("reserved header bits set: 0x%02x", header)
	}
	dataLen := int(binary.LittleEndian.Uint16(buf[1:3]))
	rest := buf[entryPrefixLen:]
	if dataLen > len(rest) {
		return splitFrame{}, fmt.Errorf("frame claims %d body bytes, only %d present", dataLen, len(rest))
	}
	return splitFrame{header: header, data: rest[:dataLen], sigs: rest[dataLen:]}, nil
}

func appendDocFrame(dst []byte, header byte, data []byte, sigs []crypt.Signature) []byte {
	n := len(data)
	dst = append(dst, header, byte(n), byte(n>>8), byte(n>>16))
	dst = append(dst, data...)
	for _, sig := range sigs {
		dst = sig.Encode(dst)
	}
	return dst
}

func appendEntryFrame(dst []byte, header byte, data []byte, sigs []crypt.Signature) []byte {
	n := len(data)
	dst = append(dst, header, byte(n), byte(n>>8))
	dst = append(dst, data...)
	for _, sig := range sigs {
		dst = sig.Encode(dst)
	}
	return dst
}

// parseSignatures reads the trailing signature region: zero or more
// fixed-size signatures, nothing else.
func parseSignatures(region []byte) ([]crypt.Signature, error) {
	if len(region)%crypt.SignatureSize != 0 {
		return nil, fmt.Errorf("%w: signature region is %d bytes, not a multiple of %d",
			codec.ErrMalformed, len(region), crypt.SignatureSize)
	}
	var sigs []crypt.Signature
	for len(region) > 0 {
		sig, n, err := crypt.ParseSignature(region)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
		region = region[n:]
	}
	return sigs, nil
}
