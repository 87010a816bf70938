package semantics

import (
	"testing"

	"github.com/chazu/abcasm/abc"
	"github.com/google/go-cmp/cmp"
)

func TestBranchScenarioBlocks(t *testing.T) {
	g := branchScenario().CFG()

	wantBlocks := [][]string{
		{"pushbyte", "pushbyte", "add", "ifne"},
		{"pushstring", "jump"},
		{"pushstring"},
		{"returnvalue"},
	}
	if diff := cmp.Diff(wantBlocks, blockOpcodes(g)); diff != "" {
		t.Errorf("block partition mismatch (-want +got):\n%s", diff)
	}

	wantSuccs := [][]int{{1, 2}, {3}, {3}, {}}
	if diff := cmp.Diff(wantSuccs, successorNumbers(g)); diff != "" {
		t.Errorf("successors mismatch (-want +got):\n%s", diff)
	}

	if g.StartBlock() != g.Blocks()[0] {
		t.Error("expected first block to be the start block")
	}
	for i, b := range g.Blocks() {
		if b.Number() != i {
			t.Errorf("block %d numbered %d", i, b.Number())
		}
	}
}

func TestBlocksInControlFlowOrder(t *testing.T) {
	g := branchScenario().CFG()
	var got []int
	for _, b := range g.BlocksInControlFlowOrder() {
		got = append(got, b.Number())
	}
	if diff := cmp.Diff([]int{0, 1, 3, 2}, got); diff != "" {
		t.Errorf("control flow order mismatch (-want +got):\n%s", diff)
	}
}

func TestCanFallThrough(t *testing.T) {
	tests := []struct {
		name  string
		insns []*Instruction
		want  bool
	}{
		{"jump", []*Instruction{GetOperandInstruction(abc.OpJump, NewLabel())}, false},
		{"throw", []*Instruction{GetInstruction(abc.OpThrow)}, false},
		{"returnvoid", []*Instruction{GetInstruction(abc.OpReturnVoid)}, false},
		{"returnvalue then debug", []*Instruction{
			GetInstruction(abc.OpReturnValue), GetImmediateInstruction(abc.OpDebugLine, 9),
		}, false},
		{"conditional", []*Instruction{GetOperandInstruction(abc.OpIfFalse, NewLabel())}, true},
		{"plain", []*Instruction{GetInstruction(abc.OpNop)}, true},
		{"debug only", []*Instruction{GetImmediateInstruction(abc.OpDebugLine, 1)}, true},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		b := &Block{insns: tt.insns}
		if got := b.CanFallThrough(); got != tt.want {
			t.Errorf("%s: CanFallThrough() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLookupSwitchEdges(t *testing.T) {
	mbi := NewMethodBodyInfo()
	def, c0, c1 := NewLabel(), NewLabel(), NewLabel()
	mbi.InsnImm(abc.OpPushByte, 0)
	mbi.InsnOperands(abc.OpLookupSwitch, def, c0, c1, c0)
	mbi.LabelNext(c0)
	mbi.Insn(abc.OpReturnVoid)
	mbi.LabelNext(c1)
	mbi.Insn(abc.OpReturnVoid)
	mbi.LabelNext(def)
	mbi.Insn(abc.OpReturnVoid)

	g := mbi.CFG()
	if len(g.Blocks()) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(g.Blocks()))
	}
	// No fall-through from lookupswitch; one edge per distinct target,
	// default first.
	if diff := cmp.Diff([]int{3, 1, 2}, successorNumbers(g)[0]); diff != "" {
		t.Errorf("switch successors mismatch (-want +got):\n%s", diff)
	}
}

func TestDebugOnlyBlockIsNotSplit(t *testing.T) {
	build := func(l *Label) *ControlFlowGraph {
		mbi := NewMethodBodyInfo()
		mbi.InsnImm(abc.OpDebugLine, 10)
		mbi.LabelNext(l)
		mbi.InsnImm(abc.OpPushByte, 1)
		mbi.Insn(abc.OpReturnValue)
		return mbi.CFG()
	}

	exec := NewLabel()
	g := build(exec)
	if len(g.Blocks()) != 1 {
		t.Fatalf("expected executable-only label to share the debug block, got %d blocks", len(g.Blocks()))
	}
	if g.GetBlock(exec) != g.StartBlock() {
		t.Error("expected label to map onto the debug block")
	}

	anyLabel := NewAnyInstructionLabel("here")
	g = build(anyLabel)
	if len(g.Blocks()) != 2 {
		t.Fatalf("expected any-instruction label to split, got %d blocks", len(g.Blocks()))
	}
	if diff := cmp.Diff([][]int{{1}, {}}, successorNumbers(g)); diff != "" {
		t.Errorf("successors mismatch (-want +got):\n%s", diff)
	}
}

func TestGetBlockUndeclaredLabel(t *testing.T) {
	g := branchScenario().CFG()
	stray := NewNamedLabel("stray")
	if _, ok := g.LookupBlock(stray); ok {
		t.Error("expected LookupBlock to miss an undeclared label")
	}
	mustPanic(t, "GetBlock undeclared", func() { g.GetBlock(stray) })

	// A distinct label at a mapped position resolves by position.
	alias := NewLabel()
	alias.SetPosition(6)
	if b, ok := g.LookupBlock(alias); !ok || b.Number() != 2 {
		t.Errorf("expected alias to resolve to block 2, got %v %v", b, ok)
	}
}

func TestEmptyMethodHasStartBlock(t *testing.T) {
	g := NewMethodBodyInfo().CFG()
	if g.StartBlock() == nil || !g.StartBlock().IsEmpty() {
		t.Error("expected one empty start block")
	}
}

func TestCFGRebuiltAfterChange(t *testing.T) {
	mbi := branchScenario()
	g := mbi.CFG()
	if mbi.CFG() != g {
		t.Error("expected cached graph")
	}
	mbi.Insn(abc.OpReturnVoid)
	if mbi.CFG() == g {
		t.Error("expected graph rebuilt after the instruction list changed")
	}
}

func TestDominators(t *testing.T) {
	g := branchScenario().CFG()
	b := g.Blocks()

	tests := []struct {
		a, b int
		want bool
	}{
		{0, 0, true},
		{0, 1, true},
		{0, 2, true},
		{0, 3, true},
		{1, 3, false},
		{2, 3, false},
		{3, 0, false},
	}
	for _, tt := range tests {
		if got := g.Dominates(b[tt.a], b[tt.b]); got != tt.want {
			t.Errorf("Dominates(B%d, B%d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if g.ImmediateDominator(b[3]) != b[0] {
		t.Errorf("expected idom(B3) = B0, got %v", g.ImmediateDominator(b[3]))
	}
	if g.ImmediateDominator(b[0]) != nil {
		t.Error("expected root to have no immediate dominator")
	}
}

// handlerScenario builds
//
//	0 pushbyte 1; 1 returnvalue
//	from: 2 pushbyte 2; 3 pop
//	to:   4 returnvoid
//	catch: 5 pop; 6 returnvoid
//
// with one handler covering [from, to) entering at catch.
func handlerScenario() (*MethodBodyInfo, *ExceptionInfo) {
	mbi := NewMethodBodyInfo()
	from, to, catch := NewNamedLabel("from"), NewNamedLabel("to"), NewNamedLabel("catch")
	mbi.InsnImm(abc.OpPushByte, 1)
	mbi.Insn(abc.OpReturnValue)
	mbi.LabelNext(from)
	mbi.InsnImm(abc.OpPushByte, 2)
	mbi.Insn(abc.OpPop)
	mbi.LabelNext(to)
	mbi.Insn(abc.OpReturnVoid)
	mbi.LabelNext(catch)
	mbi.Insn(abc.OpPop)
	mbi.Insn(abc.OpReturnVoid)
	h := NewExceptionInfo(from, to, catch, nil, nil)
	mbi.AddExceptionInfo(h)
	return mbi, h
}

func TestCatchTargetsAreRoots(t *testing.T) {
	mbi, _ := handlerScenario()
	g := mbi.CFG()
	if len(g.CatchTargets()) != 1 || g.CatchTargets()[0].Position() != 5 {
		t.Fatalf("expected one catch target at 5, got %v", g.CatchTargets())
	}
	catch := g.CatchTargets()[0]
	if !g.IsReachable(catch) {
		t.Error("expected catch target to be reachable")
	}
	if g.IsReachable(g.Blocks()[1]) || g.IsReachable(g.Blocks()[2]) {
		t.Error("expected code after returnvalue to be unreachable")
	}
	mustPanic(t, "remove reachable block", func() { g.RemoveUnreachableBlock(g.StartBlock()) })
}

func TestHandlerDiesWithItsRegion(t *testing.T) {
	mbi, h := handlerScenario()
	g := mbi.CFG()

	removed := g.RemoveUnreachableBlocks()
	if removed != 3 {
		t.Errorf("expected 3 blocks removed, got %d", removed)
	}
	if h.IsLive() {
		t.Error("expected handler with an empty region to be dead")
	}
	if len(g.CatchTargets()) != 0 {
		t.Errorf("expected no catch targets, got %v", g.CatchTargets())
	}
	if diff := cmp.Diff([][]string{{"pushbyte", "returnvalue"}}, blockOpcodes(g)); diff != "" {
		t.Errorf("remaining blocks mismatch (-want +got):\n%s", diff)
	}
	if len(mbi.LiveExceptionInfos()) != 0 {
		t.Error("expected no live handlers")
	}
}

func TestHandlerRetargetedPastRemovedBlock(t *testing.T) {
	mbi := NewMethodBodyInfo()
	from, body, catch := NewNamedLabel("from"), NewNamedLabel("body"), NewNamedLabel("catch")
	mbi.InsnTarget(abc.OpJump, body)
	mbi.LabelNext(from)
	mbi.Insn(abc.OpNop)
	mbi.LabelNext(body)
	mbi.Insn(abc.OpReturnVoid)
	mbi.LabelNext(catch)
	mbi.Insn(abc.OpPop)
	mbi.Insn(abc.OpReturnVoid)
	h := NewExceptionInfo(from, catch, catch, nil, nil)
	mbi.AddExceptionInfo(h)

	g := mbi.CFG()
	dead := g.Blocks()[1]
	if g.IsReachable(dead) {
		t.Fatal("expected nop block to be unreachable")
	}
	dom := g.dom
	g.RemoveUnreachableBlock(dead)

	if !h.IsLive() {
		t.Fatal("expected handler to stay live")
	}
	if !SameLabel(h.From(), body) {
		t.Errorf("expected region to start at body, got %s", h.From())
	}
	if g.dom != dom {
		t.Error("expected dominator tree to survive a removal that kept every root")
	}
	if !g.IsReachable(g.GetBlock(catch)) {
		t.Error("expected catch target to stay reachable")
	}
	if !mbi.IsCatchTarget(catch) {
		t.Error("expected catch label to be a catch target")
	}
}

func TestIsCatchTargetByPosition(t *testing.T) {
	mbi, h := handlerScenario()
	alias := NewLabel()
	alias.SetPosition(h.Target().Position())
	if !mbi.IsCatchTarget(alias) {
		t.Error("expected label at the handler position to be a catch target")
	}
	other := NewLabel()
	other.SetPosition(0)
	if mbi.IsCatchTarget(other) {
		t.Error("label at 0 reported as catch target")
	}
}

func TestDebugInfoLookup(t *testing.T) {
	mbi := NewMethodBodyInfo()
	next := NewLabel()
	mbi.InsnOperand(abc.OpDebugFile, `C:\src;com\example;Main.as`)
	mbi.InsnImm(abc.OpDebugLine, 5)
	mbi.InsnImm(abc.OpPushByte, 1)
	mbi.InsnTarget(abc.OpIfTrue, next)
	mbi.LabelNext(next)
	mbi.Insn(abc.OpNop)
	mbi.InsnImm(abc.OpDebugLine, 8)
	mbi.Insn(abc.OpReturnVoid)

	g := mbi.CFG()
	b1 := g.Blocks()[1]

	if line, ok := g.DebugLineAt(b1, 0); !ok || line != 5 {
		t.Errorf("expected line 5 at block start, got %d %v", line, ok)
	}
	if line, ok := g.DebugLineAt(b1, 2); !ok || line != 8 {
		t.Errorf("expected line 8 after second debugline, got %d %v", line, ok)
	}
	if insn := g.FindPrecedingDebugLine(b1, false); insn == nil || insn.IntOperand(0) != 8 {
		t.Errorf("expected last debugline of block, got %v", insn)
	}
	if insn := g.FindPrecedingDebugLine(b1, true); insn == nil || insn.IntOperand(0) != 8 {
		t.Errorf("expected first debugline of block in initial mode, got %v", insn)
	}
	if insn := g.FindPrecedingDebugFile(b1, false); insn == nil {
		t.Error("expected debugfile from the preceding block")
	}
	if file, ok := g.DebugFileAt(b1, 0); !ok || file != "C:/src/com/example/Main.as" {
		t.Errorf("expected normalized path, got %q", file)
	}
	if _, ok := g.DebugLineAt(g.StartBlock(), 0); ok {
		t.Error("expected no line before the first debugline")
	}
}

func TestNormalizeDebugFile(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Main.as", "Main.as"},
		{"src;;Main.as", "src/Main.as"},
		{`C:\a\b;pkg;F.as`, "C:/a/b/pkg/F.as"},
	}
	for _, tt := range tests {
		if got := NormalizeDebugFile(tt.in); got != tt.want {
			t.Errorf("NormalizeDebugFile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddAllKeepsBranchTargets(t *testing.T) {
	head := NewInstructionList()
	head.Add(GetImmediateInstruction(abc.OpPushByte, 1))
	head.Add(GetInstruction(abc.OpPop))
	head.Add(GetInstruction(abc.OpNop))

	l := NewNamedLabel("L")
	tail := NewInstructionList()
	tail.Add(GetOperandInstruction(abc.OpJump, l))
	tail.Add(GetInstruction(abc.OpNop))
	tail.LabelNext(l)
	tail.Add(GetInstruction(abc.OpReturnVoid))

	head.AddAll(tail)
	if l.Position() != 5 {
		t.Errorf("label L at %d after AddAll, want 5", l.Position())
	}
	if tail.Len() != 0 || len(tail.Labels()) != 0 {
		t.Errorf("appended list keeps %d instructions and %d labels", tail.Len(), len(tail.Labels()))
	}

	g := NewControlFlowGraph(head, nil)
	wantBlocks := [][]string{{"pushbyte", "pop", "nop", "jump"}, {"nop"}, {"returnvoid"}}
	if diff := cmp.Diff(wantBlocks, blockOpcodes(g)); diff != "" {
		t.Errorf("block partition mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{2}, {2}, {}}, successorNumbers(g)); diff != "" {
		t.Errorf("successors mismatch (-want +got):\n%s", diff)
	}
	if g.GetBlock(l) != g.Blocks()[2] {
		t.Errorf("label L maps to %v, want the returnvoid block", g.GetBlock(l))
	}
	mustPanic(t, "AddAll to itself", func() { head.AddAll(head) })
}

func TestCatchTargetMatchedByPosition(t *testing.T) {
	mbi := NewMethodBodyInfo()
	from, to := NewNamedLabel("from"), NewNamedLabel("to")
	mbi.LabelNext(from)
	mbi.InsnImm(abc.OpPushByte, 1)
	mbi.Insn(abc.OpReturnValue)
	mbi.LabelNext(to)
	mbi.Insn(abc.OpPop)
	mbi.Insn(abc.OpReturnVoid)

	// The handler names a label that was never declared on the list but
	// sits where "to" does.
	target := NewLabel()
	target.SetPosition(to.Position())
	mbi.AddExceptionInfo(NewExceptionInfo(from, to, target, nil, nil))

	g := mbi.CFG()
	if len(g.CatchTargets()) != 1 || g.CatchTargets()[0] != g.Blocks()[1] {
		t.Fatalf("catch targets = %v, want the pop block", g.CatchTargets())
	}
	if !g.IsReachable(g.Blocks()[1]) {
		t.Error("expected handler block to be reachable")
	}

	var diags DiagnosticList
	mbi.ComputeFrameCounts(&diags)
	if diags.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.Items)
	}
}
