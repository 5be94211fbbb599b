// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/fogpack/fogpack/lib/crypt"
	"github.com/fogpack/fogpack/lib/types"
)

// CompressType identifies how a document or entry body is compressed
// on the wire. Stored in the low two bits of the frame header byte.
// These values are protocol constants — changing them breaks format
// compatibility.
type CompressType byte

const (
	// CompressTypeNone indicates an uncompressed body.
	CompressTypeNone CompressType = 0

	// CompressTypeGeneral indicates zstd compression without a
	// dictionary. Any decoder can reverse it.
	CompressTypeGeneral CompressType = 1

	// CompressTypeDict indicates zstd compression with the schema's
	// dictionary. Only a decoder holding the same schema can reverse
	// it.
	CompressTypeDict CompressType = 2
)

// AlgorithmZstd is the only defined compression algorithm identifier.
const AlgorithmZstd = 0

// DefaultCompressLevel is the zstd level used when a schema does not
// specify one.
const DefaultCompressLevel = 3

func (t CompressType) String() string {
	switch t {
	case CompressTypeNone:
		return "none"
	case CompressTypeGeneral:
		return "zstd"
	case CompressTypeDict:
		return "zstd-dict"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// generalDecoder reverses CompressTypeGeneral bodies. Shared by every
// schema; safe for concurrent use. Decoder memory is capped at the
// document size limit, so a hostile frame cannot balloon.
var generalDecoder *zstd.Decoder

func init() {
	var err error
	generalDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(MaxDocSize),
	)
	if err != nil {
		panic("schema: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress is a compression policy for documents or one entry key:
// none, general zstd, or dictionary zstd. A policy owns its zstd
// contexts; they are built once and read-only afterwards.
type Compress struct {
	typ      CompressType
	level    int
	dict     []byte
	dictHash types.Hash
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// NewCompressNone returns the no-compression policy.
func NewCompressNone() *Compress {
	return &Compress{typ: CompressTypeNone}
}

// NewCompressGeneral returns a general zstd policy at the given
// level (1-22).
func NewCompressGeneral(level int) (*Compress, error) {
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("zstd level %d out of range 1-22", level)
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &Compress{typ: CompressTypeGeneral, level: level, enc: enc}, nil
}

// NewCompressDict returns a dictionary zstd policy. The dictionary is
// identified by its hash; decoders refuse dictionary-compressed
// frames unless their schema declares the identical dictionary.
func NewCompressDict(level int, dict []byte) (*Compress, error) {
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("zstd level %d out of range 1-22", level)
	}
	if len(dict) == 0 {
		return nil, fmt.Errorf("empty zstd dictionary")
	}
	// Schema dictionaries are raw content, not trained zstd
	// dictionaries, so they load through the raw-dictionary options.
	// The ID only needs to be stable between encoder and decoder.
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderDictRaw(1, dict),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zstd dictionary encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(MaxDocSize),
		zstd.WithDecoderDictRaw(1, dict),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zstd dictionary decoder: %w", err)
	}
	c := &Compress{typ: CompressTypeDict, level: level, dict: dict, enc: enc, dec: dec}
	c.dictHash = crypt.Sum(dict)
	return c, nil
}

// DefaultCompress is the policy used when a schema specifies nothing:
// general zstd at the default level.
func DefaultCompress() *Compress {
	c, err := NewCompressGeneral(DefaultCompressLevel)
	if err != nil {
		panic("schema: default compression initialization failed: " + err.Error())
	}
	return c
}

// Type returns the policy's compression type.
func (c *Compress) Type() CompressType { return c.typ }

// DictHash returns the hash of the policy's dictionary, or the null
// hash for non-dictionary policies.
func (c *Compress) DictHash() types.Hash { return c.dictHash }

// compress applies the policy to a canonical body. When compression
// does not shrink the body — or the policy is none — the original
// body is returned with CompressTypeNone: an incompressible body is
// never a failure, just not worth compressing.
func (c *Compress) compress(src []byte) ([]byte, CompressType) {
	if c.typ == CompressTypeNone {
		return src, CompressTypeNone
	}
	compressed := c.enc.EncodeAll(src, nil)
	if len(compressed) >= len(src) {
		return src, CompressTypeNone
	}
	return compressed, c.typ
}

// decompress reverses a frame body according to the frame's marker.
// maxSize bounds the decompressed size; exceeding it is an error, not
// a truncation.
func (c *Compress) decompress(marker CompressType, src []byte, maxSize int) ([]byte, error) {
	switch marker {
	case CompressTypeNone:
		if len(src) > maxSize {
			return nil, fmt.Errorf("body is %d bytes, maximum is %d", len(src), maxSize)
		}
		return src, nil
	case CompressTypeGeneral:
		out, err := generalDecoder.DecodeAll(src, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) > maxSize {
			return nil, fmt.Errorf("decompressed body is %d bytes, maximum is %d", len(out), maxSize)
		}
		return out, nil
	case CompressTypeDict:
		if c == nil || c.typ != CompressTypeDict {
			return nil, fmt.Errorf("frame uses dictionary compression but the schema declares no dictionary")
		}
		out, err := c.dec.DecodeAll(src, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd dictionary decompress: %w", err)
		}
		if len(out) > maxSize {
			return nil, fmt.Errorf("decompressed body is %d bytes, maximum is %d", len(out), maxSize)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", byte(marker))
	}
}

// parseCompress reads a compression setting value from a schema
// document. Three forms: {"setting": false} for none,
// {"setting": true, "format": 0, "level": n} for general, and
// {"setting": <dictionary bin>, "format": 0, "level": n} for
// dictionary compression.
func parseCompress(v types.Value) (*Compress, error) {
	m, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("compression setting must be a map")
	}
	level := DefaultCompressLevel
	if lv, ok := m.Get("level"); ok {
		i, ok := lv.AsInt()
		if !ok {
			return nil, fmt.Errorf("compression `level` must be an integer")
		}
		u, ok := i.AsU64()
		if !ok || u > 22 {
			return nil, fmt.Errorf("compression `level` out of range 0-22")
		}
		level = int(u)
		if level == 0 {
			level = DefaultCompressLevel
		}
	}
	if fv, ok := m.Get("format"); ok {
		i, ok := fv.AsInt()
		if !ok {
			return nil, fmt.Errorf("compression `format` must be an integer")
		}
		if u, ok := i.AsU64(); !ok || u != AlgorithmZstd {
			return nil, fmt.Errorf("unknown compression format %s", i)
		}
	}
	setting, ok := m.Get("setting")
	if !ok {
		return nil, fmt.Errorf("compression setting needs a `setting` field")
	}
	switch setting.Kind() {
	case types.KindBool:
		on, _ := setting.AsBool()
		if !on {
			return NewCompressNone(), nil
		}
		return NewCompressGeneral(level)
	case types.KindBin:
		dict, _ := setting.AsBin()
		return NewCompressDict(level, dict)
	default:
		return nil, fmt.Errorf("compression `setting` must be a boolean or a binary dictionary")
	}
}
