// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"

	"github.com/fogpack/fogpack/lib/codec"
	"github.com/fogpack/fogpack/lib/types"
)

// NoSchema encodes and decodes documents that are not bound to any
// schema. There is no validation beyond strict decoding and signature
// verification, and no dictionary compression — a dictionary can only
// come from a schema.
type NoSchema struct {
	compress *Compress
}

// NewNoSchema returns a schema-less codec with the default general
// compression.
func NewNoSchema() *NoSchema {
	return &NoSchema{compress: DefaultCompress()}
}

// NewNoSchemaWithCompression returns a schema-less codec with the
// given compression policy. Dictionary policies are rejected.
func NewNoSchemaWithCompression(c *Compress) (*NoSchema, error) {
	if c == nil {
		c = NewCompressNone()
	}
	if c.Type() == CompressTypeDict {
		return nil, fmt.Errorf("schema-less documents cannot use dictionary compression")
	}
	return &NoSchema{compress: c}, nil
}

// EncodeDoc frames a schema-less document. Fails if the document is
// bound to a schema.
func (n *NoSchema) EncodeDoc(doc *Document) (types.Hash, []byte, error) {
	if doc.SchemaHash() != nil {
		return types.Hash{}, nil, fmt.Errorf("document is bound to schema %s; use that schema to encode it", doc.SchemaHash())
	}
	out, err := doc.encode(n.compress)
	if err != nil {
		return types.Hash{}, nil, err
	}
	return doc.Hash(), out, nil
}

// DecodeDoc reverses EncodeDoc: strict decode plus signature
// verification. Fails if the frame claims a schema binding or
// dictionary compression.
func (n *NoSchema) DecodeDoc(buf []byte) (*Document, error) {
	doc, err := decodeDocBytes(buf, n.compress)
	if err != nil {
		return nil, err
	}
	if doc.SchemaHash() != nil {
		return nil, fmt.Errorf("%w: document is bound to schema %s; use that schema to decode it",
			codec.ErrMalformed, doc.SchemaHash())
	}
	return doc, nil
}
