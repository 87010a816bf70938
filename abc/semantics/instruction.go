package semantics

import (
	"fmt"
	"strings"

	"github.com/chazu/abcasm/abc"
)

// ---------------------------------------------------------------------------
// Instruction: opcode plus one of four operand shapes
// ---------------------------------------------------------------------------

// Shape identifies how an instruction stores its operands.
type Shape uint8

const (
	// NoOperands instructions are shared singletons.
	NoOperands Shape = iota
	// OneOperand instructions hold a single operand; a *Label operand makes
	// the instruction a branch.
	OneOperand
	// Immediate instructions hold one integer.
	Immediate
	// ArbitraryOperands instructions hold an operand slice.
	ArbitraryOperands
)

func (s Shape) String() string {
	switch s {
	case NoOperands:
		return "none"
	case OneOperand:
		return "operand"
	case Immediate:
		return "immediate"
	case ArbitraryOperands:
		return "operands"
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// unsetImmediate marks an immediate not yet supplied.
const unsetImmediate = -1 << 31

// Instruction is an opcode and its operands.
//
// Only branch targets, the immediates of register-access opcodes and the
// temporary registers of hasnext2 change after construction; every other
// operand is fixed when the instruction is created.
type Instruction struct {
	opcode    int
	shape     Shape
	operand   any
	immediate int
	operands  []any
}

// Opcode returns the opcode.
func (insn *Instruction) Opcode() int { return insn.opcode }

// Shape returns the operand shape.
func (insn *Instruction) Shape() Shape { return insn.shape }

// OperandCount returns the number of operands.
func (insn *Instruction) OperandCount() int {
	switch insn.shape {
	case OneOperand, Immediate:
		return 1
	case ArbitraryOperands:
		return len(insn.operands)
	}
	return 0
}

// Operand returns the i'th operand. Immediates are reported as int.
func (insn *Instruction) Operand(i int) any {
	switch insn.shape {
	case OneOperand:
		if i == 0 {
			return insn.operand
		}
	case Immediate:
		if i == 0 {
			return insn.immediate
		}
	case ArbitraryOperands:
		return insn.operands[i]
	}
	panic(fmt.Sprintf("Instruction.Operand: %s has no operand %d", abc.OpcodeName(insn.opcode), i))
}

// Operands returns a copy of all operands.
func (insn *Instruction) Operands() []any {
	switch insn.shape {
	case OneOperand:
		return []any{insn.operand}
	case Immediate:
		return []any{insn.immediate}
	case ArbitraryOperands:
		out := make([]any, len(insn.operands))
		copy(out, insn.operands)
		return out
	}
	return nil
}

// Immediate returns the immediate operand.
func (insn *Instruction) Immediate() int {
	if insn.shape != Immediate {
		panic(fmt.Sprintf("Instruction.Immediate: %s has no immediate operand", abc.OpcodeName(insn.opcode)))
	}
	if insn.immediate == unsetImmediate {
		panic(fmt.Sprintf("Instruction.Immediate: %s immediate not yet resolved", abc.OpcodeName(insn.opcode)))
	}
	return insn.immediate
}

// IntOperand returns operand i as an int.
func (insn *Instruction) IntOperand(i int) int {
	v, ok := insn.Operand(i).(int)
	if !ok {
		panic(fmt.Sprintf("Instruction.IntOperand: %s operand %d is %T", abc.OpcodeName(insn.opcode), i, insn.Operand(i)))
	}
	return v
}

// NameOperand returns the multiname operand of a property-access
// instruction, or nil if it has none.
func (insn *Instruction) NameOperand() *Name {
	switch insn.shape {
	case OneOperand:
		n, _ := insn.operand.(*Name)
		return n
	case ArbitraryOperands:
		if len(insn.operands) > 0 {
			n, _ := insn.operands[0].(*Name)
			return n
		}
	}
	return nil
}

// Target returns the branch target of a single-target branch.
func (insn *Instruction) Target() *Label {
	if insn.shape == OneOperand {
		if l, ok := insn.operand.(*Label); ok {
			return l
		}
	}
	return nil
}

// Targets returns every label the instruction may transfer control to.
// For lookupswitch the default target comes first.
func (insn *Instruction) Targets() []*Label {
	if insn.opcode == abc.OpLookupSwitch {
		var out []*Label
		for _, op := range insn.operandView() {
			if l, ok := op.(*Label); ok {
				out = append(out, l)
			}
		}
		return out
	}
	if l := insn.Target(); l != nil {
		return []*Label{l}
	}
	return nil
}

func (insn *Instruction) operandView() []any {
	switch insn.shape {
	case OneOperand:
		return []any{insn.operand}
	case ArbitraryOperands:
		return insn.operands
	}
	return nil
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// IsBranch reports whether the instruction targets labels.
func (insn *Instruction) IsBranch() bool {
	if insn.opcode == abc.OpLookupSwitch {
		return true
	}
	if insn.shape != OneOperand {
		return false
	}
	if _, ok := insn.operand.(*Label); ok {
		return true
	}
	return insn.operand == nil && abc.OperandLayout(insn.opcode) == abc.OperandsLabel
}

// IsReturn reports whether the instruction returns from the method.
func (insn *Instruction) IsReturn() bool {
	return insn.opcode == abc.OpReturnVoid || insn.opcode == abc.OpReturnValue
}

// IsTransferOfControl reports whether the instruction ends a basic block.
func (insn *Instruction) IsTransferOfControl() bool {
	return insn.IsBranch() || insn.IsReturn() || insn.opcode == abc.OpThrow
}

// IsUnconditionalTransfer reports whether control never continues with the
// following instruction.
func (insn *Instruction) IsUnconditionalTransfer() bool {
	switch insn.opcode {
	case abc.OpJump, abc.OpLookupSwitch, abc.OpThrow, abc.OpReturnVoid, abc.OpReturnValue:
		return true
	}
	return false
}

// IsExecutable reports whether the instruction does anything at runtime.
// Debug line and file markers are not executable.
func (insn *Instruction) IsExecutable() bool {
	return insn.opcode != abc.OpDebugLine && insn.opcode != abc.OpDebugFile
}

// ---------------------------------------------------------------------------
// In-place fixups
// ---------------------------------------------------------------------------

// SetTarget retargets a single-target branch. It exists for relocation; the
// first target of an instruction created without one is supplied through
// PendingInstruction.
func (insn *Instruction) SetTarget(l *Label) {
	if insn.shape != OneOperand || abc.OperandLayout(insn.opcode) != abc.OperandsLabel {
		panic(fmt.Sprintf("Instruction.SetTarget: %s is not a single-target branch", abc.OpcodeName(insn.opcode)))
	}
	if l == nil {
		panic("Instruction.SetTarget: nil label")
	}
	insn.operand = l
}

// SetImmediate changes the register index of a register-access instruction.
func (insn *Instruction) SetImmediate(v int) {
	if insn.shape != Immediate || !hasMutableImmediate(insn.opcode) {
		panic(fmt.Sprintf("Instruction.SetImmediate: %s does not allow immediate mutation", abc.OpcodeName(insn.opcode)))
	}
	insn.immediate = v
}

// SetTempRegisters sets the two temporary registers of hasnext2.
func (insn *Instruction) SetTempRegisters(object, index int) {
	if insn.opcode != abc.OpHasNext2 || insn.shape != ArbitraryOperands {
		panic(fmt.Sprintf("Instruction.SetTempRegisters: %s has no temporary registers", abc.OpcodeName(insn.opcode)))
	}
	insn.operands = []any{object, index}
}

// hasMutableImmediate reports whether op is one of the opcodes whose
// immediate may be deferred or rewritten.
func hasMutableImmediate(op int) bool {
	switch op {
	case abc.OpGetLocal, abc.OpSetLocal, abc.OpKill,
		abc.OpIncLocal, abc.OpDecLocal, abc.OpIncLocalI, abc.OpDecLocalI:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Display
// ---------------------------------------------------------------------------

func (insn *Instruction) String() string {
	name := abc.OpcodeName(insn.opcode)
	switch insn.shape {
	case OneOperand:
		if insn.operand == nil {
			return name + " ?"
		}
		return name + " " + formatOperand(insn.operand)
	case Immediate:
		if insn.immediate == unsetImmediate {
			return name + " ?"
		}
		return fmt.Sprintf("%s %d", name, insn.immediate)
	case ArbitraryOperands:
		if len(insn.operands) == 0 {
			return name
		}
		parts := make([]string, len(insn.operands))
		for i, op := range insn.operands {
			parts[i] = formatOperand(op)
		}
		return name + " " + strings.Join(parts, ", ")
	}
	return name
}

func formatOperand(op any) string {
	switch v := op.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case *MethodInfo:
		return "method(" + v.Name() + ")"
	case *ClassInfo:
		return "class(" + v.Name().String() + ")"
	case nil:
		return "?"
	}
	return fmt.Sprint(op)
}
