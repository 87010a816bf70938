package semantics

import (
	"fmt"
	"sort"
)

// InstructionList is the linear instruction sequence of a method body and
// the labels declared against it.
type InstructionList struct {
	insns   []*Instruction
	labels  []*Label
	version int
}

// NewInstructionList creates an empty list.
func NewInstructionList() *InstructionList {
	return &InstructionList{}
}

// Add appends an instruction and returns it.
func (il *InstructionList) Add(insn *Instruction) *Instruction {
	if insn == nil {
		panic("InstructionList.Add: nil instruction")
	}
	il.insns = append(il.insns, insn)
	il.version++
	return insn
}

// AddAll moves every instruction and label of other to the end of il.
// Branches copied from other keep addressing the same Label values, so the
// labels are relocated rather than copied. other is left empty.
func (il *InstructionList) AddAll(other *InstructionList) {
	if other == il {
		panic("InstructionList.AddAll: list appended to itself")
	}
	base := len(il.insns)
	il.insns = append(il.insns, other.insns...)
	for _, l := range other.labels {
		l.relocate(base)
		il.labels = append(il.labels, l)
	}
	il.version++
	other.insns, other.labels = nil, nil
	other.version++
}

// LabelCurrent places l on the most recently added instruction.
func (il *InstructionList) LabelCurrent(l *Label) {
	if len(il.insns) == 0 {
		panic(fmt.Sprintf("InstructionList.LabelCurrent: %s on an empty list", l))
	}
	l.SetPosition(len(il.insns) - 1)
	il.labels = append(il.labels, l)
	il.version++
}

// LabelNext places l on the next instruction to be added.
func (il *InstructionList) LabelNext(l *Label) {
	l.SetPosition(len(il.insns))
	il.labels = append(il.labels, l)
	il.version++
}

// Len returns the number of instructions.
func (il *InstructionList) Len() int { return len(il.insns) }

// At returns the instruction at pos.
func (il *InstructionList) At(pos int) *Instruction { return il.insns[pos] }

// Instructions returns the instruction sequence. The slice is shared with
// the list and with the blocks of a graph built from it.
func (il *InstructionList) Instructions() []*Instruction { return il.insns }

// Labels returns the declared labels sorted by position. Labels at the same
// position keep their declaration order.
func (il *InstructionList) Labels() []*Label {
	out := make([]*Label, len(il.labels))
	copy(out, il.labels)
	sort.SliceStable(out, func(i, j int) bool { return out[i].position < out[j].position })
	return out
}

// Version increments on every change to the list.
func (il *InstructionList) Version() int { return il.version }
