package bytecode

import "errors"

// Execution errors. Every error is fatal to the run: the VM performs no
// retry and no rollback of effects already applied by earlier instructions.
var (
	// ErrStackUnderflow is returned when an instruction requires more
	// operands than are present on the stack. The failing instruction
	// performs no actor or effect call.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrUnknownActor is returned when an instruction addresses an actor
	// id that is not present in the actor table.
	ErrUnknownActor = errors.New("unknown actor")

	// ErrFuelExhausted is returned when the fuel limit is reached before
	// the program terminates.
	ErrFuelExhausted = errors.New("fuel exhausted")

	// ErrNoDispatcher is returned when an effect instruction executes
	// without an effect dispatcher configured.
	ErrNoDispatcher = errors.New("no effect dispatcher configured")

	// ErrBadOpcode is returned for an opcode outside the instruction set.
	ErrBadOpcode = errors.New("unknown opcode")

	// ErrBadLiteral is returned when a literal index does not resolve
	// into the constant pool.
	ErrBadLiteral = errors.New("bad literal index")

	// ErrBadJump is returned for a jump that does not land on an
	// instruction boundary.
	ErrBadJump = errors.New("bad jump target")

	// ErrTruncated is returned when the code section ends in the middle
	// of an instruction's operand bytes.
	ErrTruncated = errors.New("truncated instruction")
)
