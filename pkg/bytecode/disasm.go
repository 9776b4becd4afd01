package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble returns a human-readable bytecode listing for the chunk.
func (c *Chunk) Disassemble() string {
	return c.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable bytecode listing with a
// name header.
func (c *Chunk) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; Grimoire Bytecode v%d\n", c.Version))

	if len(c.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, v := range c.Constants {
			sb.WriteString(fmt.Sprintf(";   [%3d] %d\n", i, v))
		}
	}
	sb.WriteString("\n")

	for pos := 0; pos < len(c.Code); {
		op := Opcode(c.Code[pos])
		info, ok := GetOpcodeInfo(op)
		if !ok {
			sb.WriteString(fmt.Sprintf("0x%04X  .byte 0x%02X\n", pos, byte(op)))
			pos++
			continue
		}
		if pos+1+info.OperandLen > len(c.Code) {
			sb.WriteString(fmt.Sprintf("0x%04X  %s <truncated>\n", pos, info.Name))
			break
		}

		switch {
		case op == OpLiteral:
			idx := binary.BigEndian.Uint16(c.Code[pos+1:])
			if int(idx) < len(c.Constants) {
				sb.WriteString(fmt.Sprintf("0x%04X  %-16s %d\n", pos, info.Name, c.Constants[idx]))
			} else {
				sb.WriteString(fmt.Sprintf("0x%04X  %-16s [%d] <bad index>\n", pos, info.Name, idx))
			}
		case op.IsJump():
			delta := int(int16(binary.BigEndian.Uint16(c.Code[pos+1:])))
			target := pos + 3 + delta
			sb.WriteString(fmt.Sprintf("0x%04X  %-16s 0x%04X\n", pos, info.Name, target))
		default:
			sb.WriteString(fmt.Sprintf("0x%04X  %s\n", pos, info.Name))
		}

		pos += 1 + info.OperandLen
	}

	return sb.String()
}
