package semantics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisassemble(t *testing.T) {
	want := `0000  pushbyte 1
0001  pushbyte 2
0002  add
0003  ifne L1
0004  pushstring "a"
0005  jump L2
L1:
0006  pushstring "b"
L2:
0007  returnvalue
`
	got := Disassemble(branchScenario().Instructions())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestDump(t *testing.T) {
	want := `B0@0 -> B1,B2 [start]
  0000  pushbyte 1
  0001  pushbyte 2
  0002  add
  0003  ifne L1
B1@4 -> B3
  0004  pushstring "a"
  0005  jump L2
B2@6 -> B3
  0006  pushstring "b"
B3@7
  0007  returnvalue
`
	got := branchScenario().CFG().Dump()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalizedBodyRejectsGraphUse(t *testing.T) {
	mbi := branchScenario()
	mbi.ComputeFrameCounts(&DiagnosticList{})
	mbi.SetBytecode([]byte{0x24, 0x01})

	if !mbi.IsFinalized() || len(mbi.Bytecode()) != 2 {
		t.Error("expected finalized body to keep its bytecode")
	}
	if mbi.MaxStack() != 2 {
		t.Errorf("expected counts to survive finalization, got max stack %d", mbi.MaxStack())
	}
	mustPanic(t, "CFG after SetBytecode", func() { mbi.CFG() })
	mustPanic(t, "Insn after SetBytecode", func() { mbi.Insn(0x02) })
}
