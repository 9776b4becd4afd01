package bytecode

import (
	"encoding/binary"
	"fmt"
)

// BytecodeVersion is the current bytecode format version.
// Increment when making incompatible changes to the format.
const BytecodeVersion uint16 = 1

// Chunk represents a compiled spell: a flat instruction stream plus the
// constant pool its literals are drawn from. A chunk is immutable once
// execution starts and is owned exclusively by the interpreter invocation.
type Chunk struct {
	// Version is the bytecode format version the chunk was built with.
	Version uint16

	// Code is the instruction stream.
	Code []byte

	// Constants is the literal pool referenced by OpLiteral.
	Constants []int64
}

// NewChunk creates a new empty chunk with the current version.
func NewChunk() *Chunk {
	return &Chunk{
		Version:   BytecodeVersion,
		Code:      make([]byte, 0, 64),
		Constants: make([]int64, 0, 8),
	}
}

// AddConstant adds a value to the constant pool and returns its index.
// If the value already exists, returns the existing index.
func (c *Chunk) AddConstant(value int64) uint16 {
	for i, v := range c.Constants {
		if v == value {
			return uint16(i)
		}
	}
	idx := uint16(len(c.Constants))
	c.Constants = append(c.Constants, value)
	return idx
}

// Emit appends a single-byte opcode to the code section.
// Returns the offset the instruction was written at.
func (c *Chunk) Emit(op Opcode) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op))
	return offset
}

// EmitLiteral emits an OpLiteral instruction for the given value,
// adding it to the constant pool if not already present.
func (c *Chunk) EmitLiteral(value int64) int {
	idx := c.AddConstant(value)
	offset := len(c.Code)
	c.Code = append(c.Code, byte(OpLiteral), byte(idx>>8), byte(idx))
	return offset
}

// EmitJump emits a jump instruction with a placeholder offset.
// Returns the offset of the placeholder for later patching.
func (c *Chunk) EmitJump(op Opcode) int {
	c.Code = append(c.Code, byte(op), 0xFF, 0xFF)
	return len(c.Code) - 2
}

// PatchJump patches a jump placeholder to target the current position.
func (c *Chunk) PatchJump(placeholderOffset int) {
	c.PatchJumpTo(placeholderOffset, len(c.Code))
}

// PatchJumpTo patches a jump placeholder to target a specific offset.
// The encoded offset is relative to the position after the operand bytes.
func (c *Chunk) PatchJumpTo(placeholderOffset int, target int) {
	delta := target - (placeholderOffset + 2)
	c.Code[placeholderOffset] = byte(delta >> 8)
	c.Code[placeholderOffset+1] = byte(delta)
}

// EmitLoop emits a backward jump to the given loop start.
func (c *Chunk) EmitLoop(loopStart int) {
	delta := loopStart - (len(c.Code) + 3)
	c.Code = append(c.Code, byte(OpJump), byte(delta>>8), byte(delta))
}

// CurrentOffset returns the current offset in the code section.
func (c *Chunk) CurrentOffset() int {
	return len(c.Code)
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return len(c.Constants)
}

// Validate checks that the chunk is structurally sound: every opcode is
// known, operand bytes are not truncated, literal indices resolve into the
// constant pool and jump targets land on instruction boundaries or the end
// of the code section.
func (c *Chunk) Validate() error {
	if c.Version > BytecodeVersion {
		return fmt.Errorf("bytecode version %d is newer than supported version %d",
			c.Version, BytecodeVersion)
	}

	// First pass: collect instruction boundaries.
	boundaries := make(map[int]bool, len(c.Code)/2)
	for pos := 0; pos < len(c.Code); {
		boundaries[pos] = true
		op := Opcode(c.Code[pos])
		info, ok := GetOpcodeInfo(op)
		if !ok {
			return fmt.Errorf("%w: 0x%02X at offset %d", ErrBadOpcode, byte(op), pos)
		}
		if pos+1+info.OperandLen > len(c.Code) {
			return fmt.Errorf("%w: %s at offset %d needs %d operand bytes",
				ErrTruncated, op, pos, info.OperandLen)
		}
		pos += 1 + info.OperandLen
	}
	boundaries[len(c.Code)] = true

	// Second pass: check operands.
	for pos := 0; pos < len(c.Code); {
		op := Opcode(c.Code[pos])
		info, _ := GetOpcodeInfo(op)

		switch {
		case op == OpLiteral:
			idx := binary.BigEndian.Uint16(c.Code[pos+1:])
			if int(idx) >= len(c.Constants) {
				return fmt.Errorf("%w: index %d at offset %d (pool has %d)",
					ErrBadLiteral, idx, pos, len(c.Constants))
			}
		case op.IsJump():
			delta := int(int16(binary.BigEndian.Uint16(c.Code[pos+1:])))
			target := pos + 3 + delta
			if target < 0 || !boundaries[target] {
				return fmt.Errorf("%w: %s at offset %d targets %d",
					ErrBadJump, op, pos, target)
			}
		}
		pos += 1 + info.OperandLen
	}

	return nil
}
