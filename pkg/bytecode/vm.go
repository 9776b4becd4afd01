package bytecode

import (
	"encoding/binary"
	"fmt"
)

// DefaultFuelLimit bounds how much fuel one Execute call may burn when the
// caller does not set a limit. Generous for behavior scripts, which are
// typically a handful of instructions.
const DefaultFuelLimit = uint64(100_000)

// initialStackSize is the starting operand stack capacity.
const initialStackSize = 64

// Result describes a completed execution.
type Result struct {
	// Stack is a snapshot of the operand stack at termination,
	// bottom first.
	Stack []int64

	// Steps is the number of instructions executed.
	Steps int

	// FuelUsed is the total fuel charged.
	FuelUsed uint64
}

// VM executes bytecode chunks. A VM is not safe for concurrent use;
// create one per goroutine.
type VM struct {
	// Current execution state
	chunk *Chunk  // Current bytecode chunk
	ip    int     // Instruction pointer
	stack []int64 // Operand stack
	sp    int     // Stack pointer

	// Collaborators for the current execution
	actors  Table
	effects EffectDispatcher

	// FuelLimit bounds fuel per Execute call. Zero means DefaultFuelLimit.
	FuelLimit uint64

	// Trace, when non-nil, is called before each instruction executes.
	Trace func(offset int, op Opcode, stackDepth int)

	fuel  uint64
	steps int
}

// NewVM creates a new VM instance.
func NewVM() *VM {
	return &VM{
		stack: make([]int64, initialStackSize),
	}
}

// Execute runs a chunk from its first instruction to its end, in order,
// applying each instruction's effect to the operand stack, the addressed
// actor, or the effect dispatcher. The stack and cursor are created fresh
// for the call and discarded when it returns.
//
// Any operand-count or addressing violation aborts the execution
// immediately; mutations applied by earlier instructions remain applied.
func (vm *VM) Execute(chunk *Chunk, actors Table, effects EffectDispatcher) (Result, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.sp = 0
	vm.actors = actors
	vm.effects = effects
	vm.fuel = 0
	vm.steps = 0

	err := vm.run()
	res := Result{
		Stack:    append([]int64(nil), vm.stack[:vm.sp]...),
		Steps:    vm.steps,
		FuelUsed: vm.fuel,
	}
	return res, err
}

// run is the main execution loop.
func (vm *VM) run() error {
	limit := vm.FuelLimit
	if limit == 0 {
		limit = DefaultFuelLimit
	}

	for vm.ip < len(vm.chunk.Code) {
		offset := vm.ip
		op := Opcode(vm.chunk.Code[vm.ip])
		vm.ip++

		info, ok := GetOpcodeInfo(op)
		if !ok {
			return fmt.Errorf("%w: 0x%02X at offset %d", ErrBadOpcode, byte(op), offset)
		}
		if vm.ip+info.OperandLen > len(vm.chunk.Code) {
			return fmt.Errorf("%w: %s at offset %d needs %d operand bytes",
				ErrTruncated, op, offset, info.OperandLen)
		}

		vm.fuel += info.Cost
		if vm.fuel > limit {
			return fmt.Errorf("%w: limit %d reached at offset %d", ErrFuelExhausted, limit, offset)
		}
		vm.steps++

		if vm.Trace != nil {
			vm.Trace(offset, op, vm.sp)
		}

		// Operand-count check before any side effect. A failing
		// instruction must not touch actors or the dispatcher.
		if vm.sp < info.StackPop {
			return fmt.Errorf("%w: %s at offset %d needs %d operands, have %d",
				ErrStackUnderflow, op, offset, info.StackPop, vm.sp)
		}

		switch op {
		// ============ Stack Operations ============
		case OpNop:
			// Do nothing

		case OpPop:
			vm.sp--

		case OpDup:
			vm.push(vm.stack[vm.sp-1])

		case OpSwap:
			vm.stack[vm.sp-1], vm.stack[vm.sp-2] = vm.stack[vm.sp-2], vm.stack[vm.sp-1]

		// ============ Literals ============
		case OpLiteral:
			idx := vm.readUint16()
			if int(idx) >= len(vm.chunk.Constants) {
				return fmt.Errorf("%w: index %d at offset %d (pool has %d)",
					ErrBadLiteral, idx, offset, len(vm.chunk.Constants))
			}
			vm.push(vm.chunk.Constants[idx])

		// ============ Actor Attribute Reads ============
		case OpGetHealth, OpGetWisdom, OpGetAgility:
			id := vm.pop()
			actor, ok := vm.actors.Lookup(id)
			if !ok {
				return fmt.Errorf("%w: id %d in %s at offset %d", ErrUnknownActor, id, op, offset)
			}
			switch op {
			case OpGetHealth:
				vm.push(actor.Health())
			case OpGetWisdom:
				vm.push(actor.Wisdom())
			case OpGetAgility:
				vm.push(actor.Agility())
			}

		// ============ Actor Attribute Writes ============
		// The actor id is on top of the stack, the value underneath.
		case OpSetHealth, OpSetWisdom, OpSetAgility:
			id := vm.pop()
			value := vm.pop()
			actor, ok := vm.actors.Lookup(id)
			if !ok {
				return fmt.Errorf("%w: id %d in %s at offset %d", ErrUnknownActor, id, op, offset)
			}
			switch op {
			case OpSetHealth:
				actor.SetHealth(value)
			case OpSetWisdom:
				actor.SetWisdom(value)
			case OpSetAgility:
				actor.SetAgility(value)
			}

		// ============ Effects ============
		case OpPlaySound, OpSpawnParticles:
			if vm.effects == nil {
				return fmt.Errorf("%w: %s at offset %d", ErrNoDispatcher, op, offset)
			}
			id := vm.pop()
			if op == OpPlaySound {
				vm.effects.PlaySound(id)
			} else {
				vm.effects.SpawnParticles(id)
			}

		// ============ Arithmetic ============
		case OpAdd:
			b := vm.pop()
			a := vm.pop()
			vm.push(a + b)

		case OpSub:
			b := vm.pop()
			a := vm.pop()
			vm.push(a - b)

		case OpMul:
			b := vm.pop()
			a := vm.pop()
			vm.push(a * b)

		case OpDiv:
			b := vm.pop()
			a := vm.pop()
			if b == 0 {
				vm.push(0)
			} else {
				vm.push(a / b)
			}

		case OpMod:
			b := vm.pop()
			a := vm.pop()
			if b == 0 {
				vm.push(0)
			} else {
				vm.push(a % b)
			}

		case OpNeg:
			vm.stack[vm.sp-1] = -vm.stack[vm.sp-1]

		// ============ Control Flow ============
		case OpJump:
			delta := vm.readInt16()
			if err := vm.jump(op, offset, int(delta)); err != nil {
				return err
			}

		case OpJumpIfZero:
			delta := vm.readInt16()
			if vm.pop() == 0 {
				if err := vm.jump(op, offset, int(delta)); err != nil {
					return err
				}
			}

		// ============ Termination ============
		case OpHalt:
			return nil
		}
	}

	return nil
}

// Stack helpers

func (vm *VM) push(val int64) {
	if vm.sp == len(vm.stack) {
		grown := make([]int64, len(vm.stack)*2)
		copy(grown, vm.stack)
		vm.stack = grown
	}
	vm.stack[vm.sp] = val
	vm.sp++
}

func (vm *VM) pop() int64 {
	vm.sp--
	return vm.stack[vm.sp]
}

// Bytecode reading helpers

func (vm *VM) readUint16() uint16 {
	val := binary.BigEndian.Uint16(vm.chunk.Code[vm.ip:])
	vm.ip += 2
	return val
}

func (vm *VM) readInt16() int16 {
	return int16(vm.readUint16())
}

// jump moves the instruction pointer by delta relative to the position
// after the jump's operand bytes. Jumping past the end of the code section
// terminates execution on the next loop iteration.
func (vm *VM) jump(op Opcode, offset, delta int) error {
	target := vm.ip + delta
	if target < 0 {
		return fmt.Errorf("%w: %s at offset %d targets %d", ErrBadJump, op, offset, target)
	}
	vm.ip = target
	return nil
}
