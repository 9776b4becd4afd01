package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Assemble compiles line-oriented assembly text to a chunk.
//
// One instruction per line, mnemonic first, operand second:
//
//	; heal actor 0 to 3
//	LITERAL 3       ; value
//	LITERAL 0       ; actor id
//	SET_HEALTH
//
// LITERAL takes a decimal integer operand. JUMP and JUMP_IF_ZERO take a
// label; labels are declared on their own line as "name:". Comments start
// with ';' and run to end of line. Blank lines are ignored.
func Assemble(source string) (*Chunk, error) {
	lines := strings.Split(source, "\n")

	type stmt struct {
		line    int    // 1-based source line
		op      Opcode
		operand string // raw operand text, "" if none
		offset  int    // code offset, filled in the layout pass
	}

	var stmts []stmt
	labels := make(map[string]int) // label -> statement index

	// Parse pass: strip comments, split labels from instructions.
	for i, raw := range lines {
		line := raw
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if name == "" {
				return nil, fmt.Errorf("line %d: empty label", i+1)
			}
			if _, exists := labels[name]; exists {
				return nil, fmt.Errorf("line %d: duplicate label %q", i+1, name)
			}
			labels[name] = len(stmts)
			continue
		}

		fields := strings.Fields(line)
		op, ok := OpcodeByName(fields[0])
		if !ok {
			return nil, fmt.Errorf("line %d: unknown instruction %q", i+1, fields[0])
		}

		operand := ""
		switch {
		case op == OpLiteral || op.IsJump():
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %s takes exactly one operand", i+1, op)
			}
			operand = fields[1]
		default:
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: %s takes no operand", i+1, op)
			}
		}

		stmts = append(stmts, stmt{line: i + 1, op: op, operand: operand})
	}

	// Layout pass: assign code offsets.
	offset := 0
	for i := range stmts {
		stmts[i].offset = offset
		offset += stmts[i].op.InstructionLen()
	}
	codeLen := offset

	// labelOffset resolves a label to its code offset. A label after the
	// last instruction targets the end of the code section.
	labelOffset := func(idx int) int {
		if idx < len(stmts) {
			return stmts[idx].offset
		}
		return codeLen
	}

	// Emit pass.
	chunk := NewChunk()
	for _, s := range stmts {
		switch {
		case s.op == OpLiteral:
			value, err := strconv.ParseInt(s.operand, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad literal %q", s.line, s.operand)
			}
			chunk.EmitLiteral(value)

		case s.op.IsJump():
			idx, ok := labels[s.operand]
			if !ok {
				return nil, fmt.Errorf("line %d: undefined label %q", s.line, s.operand)
			}
			delta := labelOffset(idx) - (s.offset + 3)
			if delta < -32768 || delta > 32767 {
				return nil, fmt.Errorf("line %d: jump to %q out of range", s.line, s.operand)
			}
			chunk.Code = append(chunk.Code, byte(s.op), byte(delta>>8), byte(delta))

		default:
			chunk.Emit(s.op)
		}
	}

	return chunk, nil
}
