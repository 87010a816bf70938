package semantics

import (
	"testing"

	"github.com/chazu/abcasm/abc"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestBranchScenarioFrameCounts(t *testing.T) {
	mbi := branchScenario()
	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)

	if mbi.MaxStack() != 2 {
		t.Errorf("expected max stack 2, got %d", mbi.MaxStack())
	}
	// ifne compares two values and only one is left after add.
	want := []Diagnostic{{Kind: StackUnderflow, Block: 0, Index: 3, Position: 3, Opcode: abc.OpIfNe}}
	if diff := cmp.Diff(want, diags.Items); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestUnderflowIsReportedNotRaised(t *testing.T) {
	mbi := NewMethodBodyInfo()
	mbi.SetMethodInfo(NewMethodInfo("broken"))
	mbi.Insn(abc.OpAdd)
	mbi.Insn(abc.OpReturnValue)

	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)

	if diags.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", diags.Len(), diags.Items)
	}
	d := diags.Items[0]
	if d.Kind != StackUnderflow || d.Index != 0 || d.Method != "broken" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if mbi.MaxStack() != 1 {
		t.Errorf("expected max stack 1 after clamping, got %d", mbi.MaxStack())
	}
}

func TestScopeUnderflow(t *testing.T) {
	mbi := NewMethodBodyInfo()
	mbi.Insn(abc.OpPopScope)
	mbi.Insn(abc.OpReturnVoid)

	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)
	if diags.Len() != 1 || diags.Items[0].Kind != ScopeUnderflow {
		t.Errorf("expected one scope underflow, got %v", diags.Items)
	}
}

func TestRuntimeNameStackAllowance(t *testing.T) {
	ns := NewNsset(NewPackageNamespace(""))
	maxStackFor := func(n *Name) int {
		mbi := NewMethodBodyInfo()
		for i := 0; i < 1+n.RuntimeNameAllowance(); i++ {
			mbi.Insn(abc.OpPushNull)
		}
		mbi.InsnOperand(abc.OpGetProperty, n)
		mbi.Insn(abc.OpReturnValue)
		var diags DiagnosticList
		mbi.ComputeFrameCounts(&diags)
		if diags.Len() != 0 {
			t.Errorf("%s: unexpected diagnostics %v", n, diags.Items)
		}
		return mbi.MaxStack()
	}

	base := maxStackFor(NewName(abc.ConstantQName, ns, "x"))
	for _, kind := range []int{abc.ConstantRTQName, abc.ConstantRTQNameA, abc.ConstantRTQNameL,
		abc.ConstantRTQNameLA, abc.ConstantMultinameL, abc.ConstantMultinameLA} {
		n := NewName(kind, ns, "x")
		if got := maxStackFor(n) - base; got != n.RuntimeNameAllowance() {
			t.Errorf("kind 0x%02x: max stack grew by %d, want %d", kind, got, n.RuntimeNameAllowance())
		}
	}
}

func TestLocalRewriteAndCount(t *testing.T) {
	mbi := NewMethodBodyInfo()
	mbi.InsnImm(abc.OpGetLocal, 0)
	mbi.InsnImm(abc.OpSetLocal, 3)
	mbi.InsnImm(abc.OpGetLocal, 5)
	mbi.Insn(abc.OpPop)
	mbi.Insn(abc.OpReturnVoid)
	mbi.ComputeFrameCounts(&DiagnosticList{})

	var got []string
	for _, insn := range mbi.Instructions().Instructions() {
		got = append(got, insn.String())
	}
	want := []string{"getlocal0", "setlocal3", "getlocal 5", "pop", "returnvoid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rewritten instructions mismatch (-want +got):\n%s", diff)
	}
	if mbi.LocalCount() != 6 {
		t.Errorf("expected 6 locals, got %d", mbi.LocalCount())
	}
	if mbi.Instructions().At(0) != GetInstruction(abc.OpGetLocal0) {
		t.Error("expected shared getlocal0 instance")
	}
}

func TestLocalCountFloor(t *testing.T) {
	m := NewMethodInfo("f")
	m.SetParamCount(2)
	m.AddFlags(abc.NeedRest)
	mbi := NewMethodBodyInfo()
	mbi.SetMethodInfo(m)
	mbi.Insn(abc.OpReturnVoid)
	mbi.ComputeFrameCounts(&DiagnosticList{})

	// this, two parameters and the rest array.
	if mbi.LocalCount() != 4 {
		t.Errorf("expected 4 locals, got %d", mbi.LocalCount())
	}
}

func TestSlotsAndNewClass(t *testing.T) {
	mbi := NewMethodBodyInfo()
	mbi.Insn(abc.OpGetGlobalScope)
	mbi.InsnImm(abc.OpGetSlot, 4)
	mbi.InsnImm(abc.OpGetGlobalSlot, 2)
	mbi.InsnOperand(abc.OpNewClass, NewClassInfo(NewInstanceInfo(NewPublicName("C"), nil)))
	mbi.Insn(abc.OpPop)
	mbi.Insn(abc.OpReturnValue)
	mbi.ComputeFrameCounts(&DiagnosticList{})

	if mbi.MaxSlotCount() != 4 {
		t.Errorf("expected max slot 4, got %d", mbi.MaxSlotCount())
	}
	if !mbi.HasNewClass() {
		t.Error("expected newclass to be recorded")
	}

	mbi.Traits().Add(NewSlotTrait(abc.TraitSlot, NewPublicName("a"), 0, nil))
	for i := 0; i < 5; i++ {
		mbi.Traits().Add(NewSlotTrait(abc.TraitSlot, NewPublicName("b"), 0, nil))
	}
	if mbi.MaxSlotCount() != 6 {
		t.Errorf("expected slot count floored at 6 traits, got %d", mbi.MaxSlotCount())
	}
}

func TestScopeDepthAddsInitialScope(t *testing.T) {
	mbi := NewMethodBodyInfo()
	mbi.SetInitScopeDepth(3)
	mbi.Insn(abc.OpGetLocal0)
	mbi.Insn(abc.OpPushScope)
	mbi.Insn(abc.OpGetLocal0)
	mbi.Insn(abc.OpPushWith)
	mbi.Insn(abc.OpPopScope)
	mbi.Insn(abc.OpReturnVoid)
	mbi.ComputeFrameCounts(&DiagnosticList{})

	if mbi.MaxScopeDepth() != 5 {
		t.Errorf("expected max scope depth 5, got %d", mbi.MaxScopeDepth())
	}
	if mbi.InitScopeDepth() != 3 {
		t.Errorf("expected init scope 3, got %d", mbi.InitScopeDepth())
	}
}

func TestCatchTargetStartsWithException(t *testing.T) {
	mbi, _ := handlerScenario()
	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)

	// The handler pops the exception it was entered with.
	for _, d := range diags.Items {
		if d.Position >= 5 {
			t.Errorf("unexpected diagnostic in handler: %v", d)
		}
	}
	if mbi.MaxStack() != 1 {
		t.Errorf("expected max stack 1, got %d", mbi.MaxStack())
	}
}

func TestFirstPropagatedStateWins(t *testing.T) {
	// Two paths reach join with different depths; the first one visited
	// (the fall-through path, depth 2) is used.
	mbi := NewMethodBodyInfo()
	other, join := NewLabel(), NewLabel()
	mbi.Insn(abc.OpPushTrue)
	mbi.InsnTarget(abc.OpIfTrue, other)
	mbi.Insn(abc.OpPushNull)
	mbi.Insn(abc.OpPushNull)
	mbi.InsnTarget(abc.OpJump, join)
	mbi.LabelNext(other)
	mbi.InsnTarget(abc.OpJump, join)
	mbi.LabelNext(join)
	mbi.Insn(abc.OpAdd)
	mbi.Insn(abc.OpReturnValue)

	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)
	if diags.Len() != 0 {
		t.Errorf("expected no diagnostics, got %v", diags.Items)
	}
	if mbi.MaxStack() != 2 {
		t.Errorf("expected max stack 2, got %d", mbi.MaxStack())
	}
}

func TestFrameCountsOnlyWiden(t *testing.T) {
	mbi := NewMethodBodyInfo()
	for i := 0; i < 4; i++ {
		mbi.Insn(abc.OpPushNull)
	}
	mbi.Insn(abc.OpReturnVoid)
	mbi.ComputeFrameCounts(&DiagnosticList{})
	first := []int{mbi.MaxStack(), mbi.MaxScopeDepth(), mbi.LocalCount(), mbi.MaxSlotCount()}

	mbi.ComputeFrameCounts(&DiagnosticList{})
	second := []int{mbi.MaxStack(), mbi.MaxScopeDepth(), mbi.LocalCount(), mbi.MaxSlotCount()}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("recomputation changed counts (-first +second):\n%s", diff)
	}

	smaller := NewInstructionList()
	smaller.Add(GetInstruction(abc.OpReturnVoid))
	mbi.SetInstructions(smaller)
	mbi.ComputeFrameCounts(&DiagnosticList{})
	if mbi.MaxStack() != 4 {
		t.Errorf("expected max stack to stay 4, got %d", mbi.MaxStack())
	}
}

func TestExplicitCountsWin(t *testing.T) {
	mbi := branchScenario()
	mbi.SetMaxStack(10)
	mbi.ComputeFrameCounts(&DiagnosticList{})
	if mbi.MaxStack() != 10 {
		t.Errorf("expected explicit max stack 10, got %d", mbi.MaxStack())
	}

	// With every count supplied the pass does not run.
	all := branchScenario()
	all.SetMaxStack(1)
	all.SetMaxScopeDepth(1)
	all.SetLocalCount(1)
	all.SetMaxSlotCount(0)
	var diags DiagnosticList
	all.ComputeFrameCounts(&diags)
	if diags.Len() != 0 {
		t.Errorf("expected pass to be skipped, got %v", diags.Items)
	}
}

func TestEveryKnownOpcodeIsCounted(t *testing.T) {
	name := NewPublicName("x")
	for _, op := range abc.Opcodes() {
		var insn *Instruction
		switch abc.OperandLayout(op) {
		case abc.OperandsNone:
			insn = GetInstruction(op)
		case abc.OperandsImmediate:
			insn = GetImmediateInstruction(op, 1)
		case abc.OperandsLabel:
			insn = GetOperandInstruction(op, NewLabel())
		case abc.OperandsSwitch:
			insn = GetOperandsInstruction(op, NewLabel())
		case abc.OperandsName:
			insn = GetOperandInstruction(op, name)
		case abc.OperandsNameArgc:
			insn = GetOperandsInstruction(op, name, 1)
		case abc.OperandsString:
			insn = GetOperandInstruction(op, "s")
		case abc.OperandsInt:
			insn = GetOperandInstruction(op, int32(1))
		case abc.OperandsUint:
			insn = GetOperandInstruction(op, uint32(1))
		case abc.OperandsDouble:
			insn = GetOperandInstruction(op, 1.5)
		case abc.OperandsNamespace:
			insn = GetOperandInstruction(op, NewPackageNamespace(""))
		case abc.OperandsMethod:
			insn = GetOperandInstruction(op, NewMethodInfo("m"))
		case abc.OperandsMethodArgc:
			insn = GetOperandsInstruction(op, NewMethodInfo("m"), 1)
		case abc.OperandsDispArgc:
			insn = GetOperandsInstruction(op, 0, 1)
		case abc.OperandsClass:
			insn = GetOperandInstruction(op, NewClassInfo(NewInstanceInfo(name, nil)))
		case abc.OperandsRegisters:
			insn = GetOperandsInstruction(op, 1, 2)
		case abc.OperandsDebug:
			insn = GetOperandsInstruction(op, 1, "v", 0, 0)
		}
		g := &ControlFlowGraph{}
		b := &Block{insns: []*Instruction{insn}}
		v := NewFrameCountVisitor(nil, &DiagnosticList{})
		v.g = g
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("%s: panicked: %v", abc.OpcodeName(op), r)
				}
			}()
			v.visitInstruction(b, 0)
		}()
	}
}

func TestUnknownOpcodePanics(t *testing.T) {
	b := &Block{insns: []*Instruction{{opcode: 0xFE, shape: NoOperands}}}
	v := NewFrameCountVisitor(nil, &DiagnosticList{})
	v.g = &ControlFlowGraph{}
	mustPanic(t, "unknown opcode", func() { v.visitInstruction(b, 0) })
}

func TestDiagnosticLine(t *testing.T) {
	mbi := NewMethodBodyInfo()
	mbi.InsnImm(abc.OpDebugLine, 12)
	mbi.Insn(abc.OpPop)
	mbi.Insn(abc.OpReturnVoid)
	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)

	want := []Diagnostic{{Kind: StackUnderflow, Index: 1, Position: 1, Opcode: abc.OpPop, Line: 12}}
	if diff := cmp.Diff(want, diags.Items, cmpopts.IgnoreFields(Diagnostic{}, "Block")); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	if got := diags.Items[0].String(); got != "line 12: operand stack underflow at pop (block 0, instruction 1)" {
		t.Errorf("unexpected String(): %q", got)
	}
}
