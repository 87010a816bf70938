package semantics

import (
	"strings"

	"github.com/chazu/abcasm/abc"
)

// FindPrecedingDebugLine returns the debugline instruction that governs the
// start of b: the last one in b, or failing that the last one in the blocks
// before b in entry order. In initial mode the first debugline in b wins over
// the preceding blocks.
func (g *ControlFlowGraph) FindPrecedingDebugLine(b *Block, initial bool) *Instruction {
	return g.findPreceding(abc.OpDebugLine, b, initial)
}

// FindPrecedingDebugFile is FindPrecedingDebugLine for debugfile.
func (g *ControlFlowGraph) FindPrecedingDebugFile(b *Block, initial bool) *Instruction {
	return g.findPreceding(abc.OpDebugFile, b, initial)
}

func (g *ControlFlowGraph) findPreceding(op int, b *Block, initial bool) *Instruction {
	if initial {
		for _, insn := range b.insns {
			if insn.Opcode() == op {
				return insn
			}
		}
	} else if insn := lastMatching(op, b.insns); insn != nil {
		return insn
	}
	return g.scanBefore(op, b)
}

// scanBefore walks the blocks before b in entry order, last first.
func (g *ControlFlowGraph) scanBefore(op int, b *Block) *Instruction {
	idx := g.blockIndex(b)
	for i := idx - 1; i >= 0; i-- {
		if insn := lastMatching(op, g.blocks[i].insns); insn != nil {
			return insn
		}
	}
	return nil
}

func lastMatching(op int, insns []*Instruction) *Instruction {
	for i := len(insns) - 1; i >= 0; i-- {
		if insns[i].Opcode() == op {
			return insns[i]
		}
	}
	return nil
}

func (g *ControlFlowGraph) blockIndex(b *Block) int {
	for i, existing := range g.blocks {
		if existing == b {
			return i
		}
	}
	return -1
}

// DebugLineAt returns the source line in effect at instruction index of b.
func (g *ControlFlowGraph) DebugLineAt(b *Block, index int) (int, bool) {
	insn := lastMatching(abc.OpDebugLine, b.insns[:index+1])
	if insn == nil {
		insn = g.scanBefore(abc.OpDebugLine, b)
	}
	if insn == nil {
		return 0, false
	}
	return insn.IntOperand(0), true
}

// DebugFileAt returns the normalized source file in effect at instruction
// index of b.
func (g *ControlFlowGraph) DebugFileAt(b *Block, index int) (string, bool) {
	insn := lastMatching(abc.OpDebugFile, b.insns[:index+1])
	if insn == nil {
		insn = g.scanBefore(abc.OpDebugFile, b)
	}
	if insn == nil {
		return "", false
	}
	s, _ := insn.Operand(0).(string)
	return NormalizeDebugFile(s), true
}

// NormalizeDebugFile turns a composite "sourcepath;package;file" debugfile
// value into a slash-separated path. Empty components are dropped.
func NormalizeDebugFile(s string) string {
	var parts []string
	for _, p := range strings.Split(s, ";") {
		if p != "" {
			parts = append(parts, strings.ReplaceAll(p, "\\", "/"))
		}
	}
	return strings.Join(parts, "/")
}
