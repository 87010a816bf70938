package semantics

import (
	"testing"

	"github.com/chazu/abcasm/abc"
)

// mustPanic fails the test unless f panics.
func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

// blockOpcodes lists each block's instructions by mnemonic.
func blockOpcodes(g *ControlFlowGraph) [][]string {
	var out [][]string
	for _, b := range g.Blocks() {
		var names []string
		for _, insn := range b.Instructions() {
			names = append(names, abc.OpcodeName(insn.Opcode()))
		}
		out = append(out, names)
	}
	return out
}

// successorNumbers lists each block's successors by block number.
func successorNumbers(g *ControlFlowGraph) [][]int {
	var out [][]int
	for _, b := range g.Blocks() {
		nums := []int{}
		for _, s := range b.Successors() {
			nums = append(nums, s.Number())
		}
		out = append(out, nums)
	}
	return out
}

// branchScenario builds
//
//	pushbyte 1; pushbyte 2; add; ifne L1; pushstring "a"; jump L2
//	L1: pushstring "b"
//	L2: returnvalue
func branchScenario() *MethodBodyInfo {
	mbi := NewMethodBodyInfo()
	l1 := NewNamedLabel("L1")
	l2 := NewNamedLabel("L2")
	mbi.InsnImm(abc.OpPushByte, 1)
	mbi.InsnImm(abc.OpPushByte, 2)
	mbi.Insn(abc.OpAdd)
	mbi.InsnTarget(abc.OpIfNe, l1)
	mbi.InsnOperand(abc.OpPushString, "a")
	mbi.InsnTarget(abc.OpJump, l2)
	mbi.LabelNext(l1)
	mbi.InsnOperand(abc.OpPushString, "b")
	mbi.LabelNext(l2)
	mbi.Insn(abc.OpReturnValue)
	return mbi
}
