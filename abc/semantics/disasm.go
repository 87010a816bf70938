package semantics

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// Disassemble returns a numbered listing of list, one instruction per line,
// with each label on its own line before the instruction it marks.
func Disassemble(list *InstructionList) string {
	var sb strings.Builder
	labels := list.Labels()
	next := 0
	for pos, insn := range list.Instructions() {
		for next < len(labels) && labels[next].Position() == pos {
			fmt.Fprintf(&sb, "%s:\n", labels[next])
			next++
		}
		fmt.Fprintf(&sb, "%04d  %s\n", pos, insn)
	}
	for ; next < len(labels); next++ {
		fmt.Fprintf(&sb, "%s:\n", labels[next])
	}
	return sb.String()
}

// Dump renders the graph: each block with its successors and catch-target
// marker, then its instructions numbered by method position.
func (g *ControlFlowGraph) Dump() string {
	var sb strings.Builder
	for _, b := range g.blocks {
		sb.WriteString(b.String())
		switch {
		case b == g.start:
			sb.WriteString(" [start]")
		case g.IsCatchTarget(b):
			sb.WriteString(" [catch]")
		}
		sb.WriteByte('\n')
		for i, insn := range b.insns {
			fmt.Fprintf(&sb, "  %04d  %s\n", b.position+i, insn)
		}
	}
	return sb.String()
}
