package semantics

import (
	"fmt"
	"strings"
)

// Block is a basic block: a run of instructions with its successor edges.
type Block struct {
	number   int
	position int
	insns    []*Instruction
	succs    []*Block
}

// Number returns the creation-order number of the block.
func (b *Block) Number() int { return b.number }

// Position returns the instruction position of the block's first
// instruction.
func (b *Block) Position() int { return b.position }

// Len returns the number of instructions in the block.
func (b *Block) Len() int { return len(b.insns) }

// At returns the i'th instruction of the block.
func (b *Block) At(i int) *Instruction { return b.insns[i] }

// Instructions returns the block's instructions.
func (b *Block) Instructions() []*Instruction { return b.insns }

// Successors returns the blocks control may pass to after this one.
func (b *Block) Successors() []*Block { return b.succs }

// IsEmpty reports whether the block holds no instructions.
func (b *Block) IsEmpty() bool { return len(b.insns) == 0 }

// HasExecutable reports whether any instruction in the block is executable.
func (b *Block) HasExecutable() bool {
	for _, insn := range b.insns {
		if insn.IsExecutable() {
			return true
		}
	}
	return false
}

// LastExecutable returns the last executable instruction, or nil.
func (b *Block) LastExecutable() *Instruction {
	for i := len(b.insns) - 1; i >= 0; i-- {
		if b.insns[i].IsExecutable() {
			return b.insns[i]
		}
	}
	return nil
}

// CanFallThrough reports whether control can continue into the next block.
// A block with no executable instruction falls through.
func (b *Block) CanFallThrough() bool {
	last := b.LastExecutable()
	return last == nil || !last.IsUnconditionalTransfer()
}

func (b *Block) addSuccessor(s *Block) {
	for _, existing := range b.succs {
		if existing == s {
			return
		}
	}
	b.succs = append(b.succs, s)
}

func (b *Block) removeSuccessor(s *Block) {
	out := b.succs[:0]
	for _, existing := range b.succs {
		if existing != s {
			out = append(out, existing)
		}
	}
	b.succs = out
}

// contains reports whether the instruction position pos falls in the block.
func (b *Block) contains(pos int) bool {
	return pos >= b.position && pos < b.position+len(b.insns)
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "B%d@%d", b.number, b.position)
	if len(b.succs) > 0 {
		nums := make([]string, len(b.succs))
		for i, s := range b.succs {
			nums[i] = fmt.Sprintf("B%d", s.number)
		}
		sb.WriteString(" -> ")
		sb.WriteString(strings.Join(nums, ","))
	}
	return sb.String()
}
