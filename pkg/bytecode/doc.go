// Package bytecode provides a stack-based virtual machine for executing
// game behavior scripts ("spells") against external game entities.
//
// The bytecode format is designed for:
//   - Compact representation (typically 1-3 bytes per instruction)
//   - Fast decoding (fixed-width opcodes, simple operand formats)
//   - Easy serialization (chunks can be stored in a spellbook or passed
//     between processes, see pkg/wire)
//
// # Architecture Overview
//
// The system consists of several components:
//
//   - Opcodes: a small closed instruction set covering stack manipulation,
//     literals, arithmetic, actor attribute access, effect dispatch and
//     conditional jumps
//
//   - Chunk: a compiled bytecode unit containing code and an int64
//     constant pool. Chunks are immutable for the duration of an execution.
//
//   - Assembler: converts line-oriented assembly text to chunks, with
//     label support for jump targets
//
//   - VM: stack-based interpreter that executes chunks. The operand stack
//     and instruction cursor are created fresh per execution; no state
//     persists across Execute calls.
//
// # Collaborators
//
// The VM itself holds no game state. Actors (entities addressable by small
// integer id) and the effect dispatcher are passed explicitly into Execute,
// so the interpreter can be tested in isolation with mock collaborators.
//
// # Failure Semantics
//
// Execution is fail-fast and non-transactional: the first error aborts the
// run, and effects applied by earlier instructions remain applied. An
// instruction that fails performs no actor or effect call of its own.
//
// # Termination
//
// Without jump instructions a program terminates after at most one step per
// instruction. Because the instruction set includes jumps, every execution
// is additionally metered against a fuel limit; runs that exceed it fail
// with ErrFuelExhausted.
package bytecode
