package semantics

// MethodBodyInfo is a method body under construction: its instructions and
// labels, exception table, activation traits and frame counts.
//
// Frame counts may be supplied explicitly or computed by ComputeFrameCounts.
// A computed value only applies where no explicit value was given, and never
// lowers a value already recorded.
type MethodBodyInfo struct {
	methodInfo *MethodInfo
	insns      *InstructionList
	exceptions []*ExceptionInfo
	traits     *Traits

	cfg           *ControlFlowGraph
	cfgVersion    int
	cfgExceptions int

	bytecode  []byte
	finalized bool

	maxStack      frameCount
	maxScopeDepth frameCount
	localCount    frameCount
	maxSlotCount  frameCount
	initScope     int
	hasNewClass   bool
}

// frameCount is a recorded maximum and whether it was supplied explicitly.
type frameCount struct {
	value    int
	explicit bool
}

func (c *frameCount) set(v int) {
	c.value = v
	c.explicit = true
}

func (c *frameCount) widen(v int) {
	if !c.explicit && v > c.value {
		c.value = v
	}
}

// NewMethodBodyInfo creates an empty method body.
func NewMethodBodyInfo() *MethodBodyInfo {
	return &MethodBodyInfo{insns: NewInstructionList(), traits: NewTraits()}
}

// MethodInfo returns the signature the body belongs to, or nil.
func (mbi *MethodBodyInfo) MethodInfo() *MethodInfo { return mbi.methodInfo }

// SetMethodInfo links the body to its signature.
func (mbi *MethodBodyInfo) SetMethodInfo(m *MethodInfo) { mbi.methodInfo = m }

// Traits returns the activation traits.
func (mbi *MethodBodyInfo) Traits() *Traits { return mbi.traits }

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// Instructions returns the instruction list.
func (mbi *MethodBodyInfo) Instructions() *InstructionList {
	mbi.checkLive("Instructions")
	return mbi.insns
}

// SetInstructions replaces the instruction list. The graph is rebuilt on
// next use.
func (mbi *MethodBodyInfo) SetInstructions(list *InstructionList) {
	mbi.checkLive("SetInstructions")
	mbi.insns = list
	mbi.cfg = nil
}

// Insn appends the instruction for a zero-operand opcode.
func (mbi *MethodBodyInfo) Insn(op int) *Instruction {
	return mbi.Instructions().Add(GetInstruction(op))
}

// InsnImm appends an instruction with an immediate operand.
func (mbi *MethodBodyInfo) InsnImm(op, immediate int) *Instruction {
	return mbi.Instructions().Add(GetImmediateInstruction(op, immediate))
}

// InsnOperand appends an instruction with a single operand.
func (mbi *MethodBodyInfo) InsnOperand(op int, operand any) *Instruction {
	return mbi.Instructions().Add(GetOperandInstruction(op, operand))
}

// InsnOperands appends an instruction with an operand list.
func (mbi *MethodBodyInfo) InsnOperands(op int, operands ...any) *Instruction {
	return mbi.Instructions().Add(GetOperandsInstruction(op, operands...))
}

// InsnTarget appends a branch to target.
func (mbi *MethodBodyInfo) InsnTarget(op int, target *Label) *Instruction {
	return mbi.Instructions().Add(GetOperandInstruction(op, target))
}

// InsnPending appends an instruction whose operand is resolved later.
func (mbi *MethodBodyInfo) InsnPending(p *PendingInstruction) *PendingInstruction {
	mbi.Instructions().Add(p.Instruction())
	return p
}

// LabelCurrent places l on the last instruction appended.
func (mbi *MethodBodyInfo) LabelCurrent(l *Label) { mbi.Instructions().LabelCurrent(l) }

// LabelNext places l on the next instruction appended.
func (mbi *MethodBodyInfo) LabelNext(l *Label) { mbi.Instructions().LabelNext(l) }

// ---------------------------------------------------------------------------
// Exceptions
// ---------------------------------------------------------------------------

// AddExceptionInfo appends a handler and returns its index in the
// exception table.
func (mbi *MethodBodyInfo) AddExceptionInfo(e *ExceptionInfo) int {
	mbi.exceptions = append(mbi.exceptions, e)
	return len(mbi.exceptions) - 1
}

// ExceptionInfos returns the exception table, dead handlers included.
func (mbi *MethodBodyInfo) ExceptionInfos() []*ExceptionInfo { return mbi.exceptions }

// LiveExceptionInfos returns the handlers still covering code.
func (mbi *MethodBodyInfo) LiveExceptionInfos() []*ExceptionInfo {
	var out []*ExceptionInfo
	for _, e := range mbi.exceptions {
		if e.IsLive() {
			out = append(out, e)
		}
	}
	return out
}

// IsCatchTarget reports whether l is a handler target, either the same
// label or one placed at the same position.
func (mbi *MethodBodyInfo) IsCatchTarget(l *Label) bool {
	for _, e := range mbi.exceptions {
		if SameLabel(e.Target(), l) || SamePosition(e.Target(), l) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Graph and frame counts
// ---------------------------------------------------------------------------

// CFG returns the control flow graph, building it if the instruction list or
// exception table changed since the last build. It panics once the body has
// been finalized with SetBytecode.
func (mbi *MethodBodyInfo) CFG() *ControlFlowGraph {
	mbi.checkLive("CFG")
	if mbi.cfg == nil || mbi.cfgVersion != mbi.insns.Version() || mbi.cfgExceptions != len(mbi.exceptions) {
		mbi.cfg = NewControlFlowGraph(mbi.insns, mbi.exceptions)
		mbi.cfgVersion = mbi.insns.Version()
		mbi.cfgExceptions = len(mbi.exceptions)
	}
	return mbi.cfg
}

// ComputeFrameCounts runs the frame-count pass and records the results. It
// does nothing when every count was supplied explicitly. A nil diags logs
// underflows.
func (mbi *MethodBodyInfo) ComputeFrameCounts(diags Diagnostics) {
	if mbi.maxStack.explicit && mbi.maxScopeDepth.explicit &&
		mbi.localCount.explicit && mbi.maxSlotCount.explicit {
		return
	}
	if diags == nil {
		diags = LogDiagnostics{}
	}
	v := NewFrameCountVisitor(mbi, diags)
	v.Visit(mbi.CFG())

	mbi.maxStack.widen(v.MaxStack())
	mbi.maxScopeDepth.widen(mbi.initScope + v.MaxScope())
	mbi.localCount.widen(v.MaxLocal())
	mbi.maxSlotCount.widen(v.MaxSlot())
	mbi.hasNewClass = mbi.hasNewClass || v.HasNewClass()
}

// MaxStack returns the operand stack size.
func (mbi *MethodBodyInfo) MaxStack() int { return mbi.maxStack.value }

// SetMaxStack supplies the operand stack size.
func (mbi *MethodBodyInfo) SetMaxStack(n int) { mbi.maxStack.set(n) }

// MaxScopeDepth returns the scope stack depth, including the initial scope.
func (mbi *MethodBodyInfo) MaxScopeDepth() int {
	if mbi.maxScopeDepth.value < mbi.initScope {
		return mbi.initScope
	}
	return mbi.maxScopeDepth.value
}

// SetMaxScopeDepth supplies the scope stack depth.
func (mbi *MethodBodyInfo) SetMaxScopeDepth(n int) { mbi.maxScopeDepth.set(n) }

// InitScopeDepth returns the scope depth on entry.
func (mbi *MethodBodyInfo) InitScopeDepth() int { return mbi.initScope }

// SetInitScopeDepth sets the scope depth on entry, derived from the lexical
// nesting of the method.
func (mbi *MethodBodyInfo) SetInitScopeDepth(n int) { mbi.initScope = n }

// LocalCount returns the number of local registers. It is never lower than
// the registers the VM fills on entry: this, the parameters, and the rest
// array or arguments object.
func (mbi *MethodBodyInfo) LocalCount() int {
	n := mbi.localCount.value
	if floor := mbi.entryRegisters(); floor > n {
		return floor
	}
	return n
}

func (mbi *MethodBodyInfo) entryRegisters() int {
	m := mbi.methodInfo
	if m == nil {
		return 1
	}
	n := 1 + m.ParamCount()
	if m.NeedsRest() || m.NeedsArguments() {
		n++
	}
	return n
}

// SetLocalCount supplies the number of local registers.
func (mbi *MethodBodyInfo) SetLocalCount(n int) { mbi.localCount.set(n) }

// MaxSlotCount returns the slot count, never lower than the number of
// activation traits.
func (mbi *MethodBodyInfo) MaxSlotCount() int {
	n := mbi.maxSlotCount.value
	if t := mbi.traits.Len(); t > n {
		return t
	}
	return n
}

// SetMaxSlotCount supplies the slot count.
func (mbi *MethodBodyInfo) SetMaxSlotCount(n int) { mbi.maxSlotCount.set(n) }

// HasNewClass reports whether the body creates classes.
func (mbi *MethodBodyInfo) HasNewClass() bool { return mbi.hasNewClass }

// ---------------------------------------------------------------------------
// Finalization
// ---------------------------------------------------------------------------

// SetBytecode finalizes the body with its encoded instruction stream and
// releases the instruction list and graph.
func (mbi *MethodBodyInfo) SetBytecode(b []byte) {
	mbi.bytecode = b
	mbi.finalized = true
	mbi.insns = nil
	mbi.cfg = nil
}

// Bytecode returns the encoded instruction stream of a finalized body.
func (mbi *MethodBodyInfo) Bytecode() []byte { return mbi.bytecode }

// IsFinalized reports whether SetBytecode has been called.
func (mbi *MethodBodyInfo) IsFinalized() bool { return mbi.finalized }

func (mbi *MethodBodyInfo) checkLive(op string) {
	if mbi.finalized {
		panic("MethodBodyInfo." + op + ": method body is finalized")
	}
}
