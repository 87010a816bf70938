// Package semantics models the structure of ABC method bodies as a back end
// builds them: instructions and their operand shapes, labels, basic blocks and
// the control flow graph, exception regions, multinames and namespaces, and
// the aggregate records (methods, traits, classes, scripts) that own them.
//
// # Building a method body
//
// A back end creates a MethodBodyInfo, appends instructions through its
// InstructionList and declares Labels against the current or next position:
//
//	mbi := semantics.NewMethodBodyInfo()
//	done := semantics.NewLabel()
//	mbi.Insn(abc.OpGetLocal0)
//	mbi.Insn(abc.OpPushScope)
//	mbi.InsnTarget(abc.OpJump, done)
//	mbi.LabelNext(done)
//	mbi.Insn(abc.OpReturnVoid)
//	mbi.ComputeFrameCounts(semantics.LogDiagnostics{})
//
// # Frame counts
//
// ComputeFrameCounts builds the ControlFlowGraph on demand and runs the
// FrameCountVisitor over it. The visitor mirrors the virtual machine's
// operand-stack and scope-stack accounting exactly; underflows are reported to
// a Diagnostics sink and never abort the pass. Recorded maxima only widen:
// recomputing never shrinks a value a caller has already read.
//
// # Ownership
//
// A MethodBodyInfo and everything it owns are mutated by a single goroutine.
// Once SetBytecode finalizes it, the instruction view is released and the
// remaining state is read-only.
package semantics
