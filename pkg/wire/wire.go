// Package wire encodes bytecode chunks for storage and transport.
//
// Chunks are serialized with canonical CBOR so that the same chunk always
// produces the same bytes, which makes the blake3 content hash stable. The
// base58-encoded hash doubles as the spell's identifier.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"

	"github.com/grimoire-vm/grimoire/pkg/bytecode"
)

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalChunk serializes a Chunk to CBOR bytes.
func MarshalChunk(c *bytecode.Chunk) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalChunk deserializes a Chunk from CBOR bytes and validates it.
func UnmarshalChunk(data []byte) (*bytecode.Chunk, error) {
	var c bytecode.Chunk
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("wire: unmarshal chunk: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("wire: invalid chunk: %w", err)
	}
	return &c, nil
}

// Hash returns the blake3 content hash of the chunk's canonical encoding.
func Hash(c *bytecode.Chunk) ([32]byte, error) {
	data, err := MarshalChunk(c)
	if err != nil {
		return [32]byte{}, fmt.Errorf("wire: hash chunk: %w", err)
	}
	return blake3.Sum256(data), nil
}

// ID returns the chunk's spell id: the base58 encoding of its content hash.
// Identical chunks always produce identical ids.
func ID(c *bytecode.Chunk) (string, error) {
	h, err := Hash(c)
	if err != nil {
		return "", err
	}
	return base58.Encode(h[:]), nil
}
