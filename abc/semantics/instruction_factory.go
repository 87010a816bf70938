package semantics

import (
	"fmt"

	"github.com/chazu/abcasm/abc"
)

// ---------------------------------------------------------------------------
// Shared zero-operand instructions
// ---------------------------------------------------------------------------

// noOperandInstructions holds one immutable instance per zero-operand opcode.
// It is built at init and never written again, so it is safe to share.
var noOperandInstructions = func() [256]*Instruction {
	var table [256]*Instruction
	for _, op := range abc.Opcodes() {
		if abc.OperandLayout(op) == abc.OperandsNone {
			table[op] = &Instruction{opcode: op, shape: NoOperands}
		}
	}
	return table
}()

func sharedInstruction(op int) *Instruction {
	if op >= 0 && op < len(noOperandInstructions) {
		return noOperandInstructions[op]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Factory
// ---------------------------------------------------------------------------

// GetInstruction returns the shared instance of a zero-operand opcode, or a
// fresh instruction with an empty operand slice for any other opcode.
func GetInstruction(op int) *Instruction {
	if insn := sharedInstruction(op); insn != nil {
		return insn
	}
	return &Instruction{opcode: op, shape: ArbitraryOperands}
}

// GetImmediateInstruction creates an instruction with an integer operand.
// getlocal and setlocal of registers 0-3 return the shared dedicated
// instruction instead.
func GetImmediateInstruction(op int, immediate int) *Instruction {
	if short, ok := shortLocalOpcode(op, immediate); ok {
		return GetInstruction(short)
	}
	return &Instruction{opcode: op, shape: Immediate, immediate: immediate}
}

// shortLocalOpcode maps getlocal/setlocal of registers 0-3 to getlocal0-3
// and setlocal0-3.
func shortLocalOpcode(op, reg int) (int, bool) {
	if reg < 0 || reg > 3 {
		return 0, false
	}
	switch op {
	case abc.OpGetLocal:
		return abc.OpGetLocal0 + reg, true
	case abc.OpSetLocal:
		return abc.OpSetLocal0 + reg, true
	}
	return 0, false
}

// GetOperandInstruction creates an instruction with a single operand. A
// *Label operand makes it a branch.
func GetOperandInstruction(op int, operand any) *Instruction {
	return &Instruction{opcode: op, shape: OneOperand, operand: operand}
}

// GetOperandsInstruction creates an instruction with an operand slice.
func GetOperandsInstruction(op int, operands ...any) *Instruction {
	ops := make([]any, len(operands))
	copy(ops, operands)
	return &Instruction{opcode: op, shape: ArbitraryOperands, operands: ops}
}

// GetTargetableInstruction creates a branch whose target is supplied later.
func GetTargetableInstruction(op int) *PendingInstruction {
	if abc.OperandLayout(op) != abc.OperandsLabel {
		panic(fmt.Sprintf("GetTargetableInstruction: %s is not a single-target branch", abc.OpcodeName(op)))
	}
	return &PendingInstruction{insn: &Instruction{opcode: op, shape: OneOperand}}
}

// GetDeferredImmediateInstruction creates a register-access instruction whose
// register is supplied later.
func GetDeferredImmediateInstruction(op int) *PendingInstruction {
	if !hasMutableImmediate(op) {
		panic(fmt.Sprintf("GetDeferredImmediateInstruction: %s cannot defer its immediate", abc.OpcodeName(op)))
	}
	return &PendingInstruction{insn: &Instruction{opcode: op, shape: Immediate, immediate: unsetImmediate}}
}

// GetDeferredRegistersInstruction creates a hasnext2 whose temporary
// registers are allocated later.
func GetDeferredRegistersInstruction() *PendingInstruction {
	return &PendingInstruction{insn: &Instruction{opcode: abc.OpHasNext2, shape: ArbitraryOperands}}
}

// CreateModifiedInstruction copies original's operands onto a new opcode,
// for example to flip the sense of a conditional branch.
func CreateModifiedInstruction(op int, original *Instruction) *Instruction {
	switch original.shape {
	case NoOperands:
		return GetInstruction(op)
	case OneOperand:
		return GetOperandInstruction(op, original.operand)
	case Immediate:
		return GetImmediateInstruction(op, original.immediate)
	}
	return GetOperandsInstruction(op, original.operands...)
}

// ---------------------------------------------------------------------------
// PendingInstruction: an instruction waiting for its operand
// ---------------------------------------------------------------------------

// PendingInstruction is an instruction emitted before its target label or
// register is known. It resolves exactly once.
type PendingInstruction struct {
	insn     *Instruction
	resolved bool
}

// Instruction returns the underlying instruction, which may already be
// appended to an instruction list before resolution.
func (p *PendingInstruction) Instruction() *Instruction { return p.insn }

// IsResolved reports whether the operand has been supplied.
func (p *PendingInstruction) IsResolved() bool { return p.resolved }

// ResolveTarget supplies the branch target.
func (p *PendingInstruction) ResolveTarget(l *Label) *Instruction {
	p.markResolved()
	if p.insn.shape != OneOperand {
		panic(fmt.Sprintf("PendingInstruction.ResolveTarget: %s is not a branch", abc.OpcodeName(p.insn.opcode)))
	}
	if l == nil {
		panic("PendingInstruction.ResolveTarget: nil label")
	}
	p.insn.operand = l
	return p.insn
}

// ResolveImmediate supplies the register index.
func (p *PendingInstruction) ResolveImmediate(v int) *Instruction {
	p.markResolved()
	if p.insn.shape != Immediate {
		panic(fmt.Sprintf("PendingInstruction.ResolveImmediate: %s has no immediate", abc.OpcodeName(p.insn.opcode)))
	}
	p.insn.immediate = v
	return p.insn
}

// ResolveRegisters supplies the hasnext2 temporary registers.
func (p *PendingInstruction) ResolveRegisters(object, index int) *Instruction {
	p.markResolved()
	p.insn.SetTempRegisters(object, index)
	return p.insn
}

func (p *PendingInstruction) markResolved() {
	if p.resolved {
		panic(fmt.Sprintf("PendingInstruction: %s already resolved", p.insn))
	}
	p.resolved = true
}
