package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop  Opcode = 0x00 // No operation
	OpPop  Opcode = 0x01 // Pop top of stack
	OpDup  Opcode = 0x02 // Duplicate top of stack
	OpSwap Opcode = 0x03 // Swap top two stack elements

	// ========================================================================
	// Literals (0x10-0x1F)
	// ========================================================================

	OpLiteral Opcode = 0x10 // Push constant from pool: OpLiteral <index:u16>

	// ========================================================================
	// Actor attribute reads (0x20-0x2F)
	// Pop actor id, push attribute value.
	// ========================================================================

	OpGetHealth  Opcode = 0x20
	OpGetWisdom  Opcode = 0x21
	OpGetAgility Opcode = 0x22

	// ========================================================================
	// Actor attribute writes (0x30-0x3F)
	// Pop actor id (top of stack), then value; invoke the setter.
	// Programs push the value first and the actor id second.
	// ========================================================================

	OpSetHealth  Opcode = 0x30
	OpSetWisdom  Opcode = 0x31
	OpSetAgility Opcode = 0x32

	// ========================================================================
	// Effects (0x40-0x4F)
	// Pop an effect id and hand it to the dispatcher.
	// ========================================================================

	OpPlaySound      Opcode = 0x40
	OpSpawnParticles Opcode = 0x41

	// ========================================================================
	// Arithmetic (0x50-0x5F)
	// ========================================================================

	OpAdd Opcode = 0x50 // Pop two, push sum
	OpSub Opcode = 0x51 // Pop two, push difference (a - b where b is TOS)
	OpMul Opcode = 0x52 // Pop two, push product
	OpDiv Opcode = 0x53 // Pop two, push quotient (0 if divisor is 0)
	OpMod Opcode = 0x54 // Pop two, push remainder (0 if divisor is 0)
	OpNeg Opcode = 0x55 // Negate top of stack

	// ========================================================================
	// Control flow (0x80-0x8F)
	// ========================================================================

	OpJump       Opcode = 0x80 // Unconditional jump: OpJump <offset:i16>
	OpJumpIfZero Opcode = 0x81 // Pop; jump if the value is zero

	// ========================================================================
	// Termination (0xF0-0xFF)
	// ========================================================================

	OpHalt Opcode = 0xF0 // Stop execution immediately
)

// Fuel costs per opcode category, modeled on compute metering in
// register-machine interpreters. Simple stack operations cost one unit;
// multiplication, division and external calls cost more.
const (
	CostDefault = uint64(1)  // Stack ops, literals, jumps, add/sub
	CostMul     = uint64(4)  // Multiplication
	CostDiv     = uint64(12) // Division/modulo
	CostActor   = uint64(5)  // Actor attribute reads/writes
	CostEffect  = uint64(5)  // Effect dispatch
)

// OpcodeInfo provides metadata about each opcode for execution,
// assembly, disassembly and validation.
type OpcodeInfo struct {
	Name       string // Assembler mnemonic
	StackPop   int    // How many values popped from stack
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
	Cost       uint64 // Fuel charged per execution
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack manipulation
	OpNop:  {"NOP", 0, 0, 0, CostDefault},
	OpPop:  {"POP", 1, 0, 0, CostDefault},
	OpDup:  {"DUP", 1, 2, 0, CostDefault},
	OpSwap: {"SWAP", 2, 2, 0, CostDefault},

	// Literals
	OpLiteral: {"LITERAL", 0, 1, 2, CostDefault},

	// Actor attribute reads
	OpGetHealth:  {"GET_HEALTH", 1, 1, 0, CostActor},
	OpGetWisdom:  {"GET_WISDOM", 1, 1, 0, CostActor},
	OpGetAgility: {"GET_AGILITY", 1, 1, 0, CostActor},

	// Actor attribute writes
	OpSetHealth:  {"SET_HEALTH", 2, 0, 0, CostActor},
	OpSetWisdom:  {"SET_WISDOM", 2, 0, 0, CostActor},
	OpSetAgility: {"SET_AGILITY", 2, 0, 0, CostActor},

	// Effects
	OpPlaySound:      {"PLAY_SOUND", 1, 0, 0, CostEffect},
	OpSpawnParticles: {"SPAWN_PARTICLES", 1, 0, 0, CostEffect},

	// Arithmetic
	OpAdd: {"ADD", 2, 1, 0, CostDefault},
	OpSub: {"SUB", 2, 1, 0, CostDefault},
	OpMul: {"MUL", 2, 1, 0, CostMul},
	OpDiv: {"DIV", 2, 1, 0, CostDiv},
	OpMod: {"MOD", 2, 1, 0, CostDiv},
	OpNeg: {"NEG", 1, 1, 0, CostDefault},

	// Control flow
	OpJump:       {"JUMP", 0, 0, 2, CostDefault},
	OpJumpIfZero: {"JUMP_IF_ZERO", 1, 0, 2, CostDefault},

	// Termination
	OpHalt: {"HALT", 0, 0, 0, CostDefault},
}

// opcodeByName maps assembler mnemonics back to opcodes.
var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// The second return value is false if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeInfoTable[op]
	return info, ok
}

// OpcodeByName resolves an assembler mnemonic to its opcode.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

// String returns the assembler mnemonic of an opcode.
func (op Opcode) String() string {
	if info, ok := opcodeInfoTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return opcodeInfoTable[op].OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsJump returns true if this opcode is a jump instruction.
func (op Opcode) IsJump() bool {
	return op >= OpJump && op <= OpJumpIfZero
}

// IsActorOp returns true if this opcode reads or writes an actor attribute.
func (op Opcode) IsActorOp() bool {
	return op >= OpGetHealth && op <= OpSetAgility
}

// IsEffectOp returns true if this opcode dispatches an external effect.
func (op Opcode) IsEffectOp() bool {
	return op == OpPlaySound || op == OpSpawnParticles
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
