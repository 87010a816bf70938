package semantics

import (
	"fmt"

	"github.com/chazu/abcasm/abc"
)

// FrameCountVisitor computes the frame sizes of a method body by walking its
// control flow graph once in depth-first preorder from the roots.
//
// A block is simulated with the stack and scope depths of the first
// predecessor that reaches it; states arriving later along other paths are
// not merged. Catch targets start with one value (the exception) on the
// stack and an empty scope stack.
type FrameCountVisitor struct {
	mbi   *MethodBodyInfo
	g     *ControlFlowGraph
	diags Diagnostics

	maxStack    int
	maxScope    int
	maxLocal    int
	maxSlot     int
	hasNewClass bool

	stack int
	scope int
}

// NewFrameCountVisitor creates a visitor reporting to diags. mbi identifies
// the method body in reports and may be nil.
func NewFrameCountVisitor(mbi *MethodBodyInfo, diags Diagnostics) *FrameCountVisitor {
	return &FrameCountVisitor{mbi: mbi, diags: diags}
}

type blockEntry struct {
	b            *Block
	stack, scope int
}

// Visit runs the pass over g. getlocal and setlocal with registers 0-3 are
// rewritten in place to their single-byte forms.
func (v *FrameCountVisitor) Visit(g *ControlFlowGraph) {
	v.g = g
	visited := make(map[*Block]bool, len(g.Blocks()))
	var work []blockEntry

	for _, root := range g.Roots() {
		if visited[root] {
			continue
		}
		entry := blockEntry{b: root}
		if g.IsCatchTarget(root) {
			entry.stack = 1
		}
		work = append(work[:0], entry)
		for len(work) > 0 {
			e := work[len(work)-1]
			work = work[:len(work)-1]
			if visited[e.b] {
				continue
			}
			visited[e.b] = true

			v.stack, v.scope = e.stack, e.scope
			if g.IsCatchTarget(e.b) {
				v.stack, v.scope = 1, 0
			}
			v.noteStack()
			v.visitBlock(e.b)

			succs := e.b.Successors()
			for i := len(succs) - 1; i >= 0; i-- {
				if !visited[succs[i]] {
					work = append(work, blockEntry{b: succs[i], stack: v.stack, scope: v.scope})
				}
			}
		}
	}
	log.Debugf("frame counts: stack=%d scope=%d locals=%d slots=%d",
		v.maxStack, v.maxScope, v.maxLocal, v.maxSlot)
}

// MaxStack returns the deepest operand stack seen.
func (v *FrameCountVisitor) MaxStack() int { return v.maxStack }

// MaxScope returns the deepest scope stack seen, relative to the method's
// initial scope depth.
func (v *FrameCountVisitor) MaxScope() int { return v.maxScope }

// MaxLocal returns one more than the highest register index touched.
func (v *FrameCountVisitor) MaxLocal() int { return v.maxLocal }

// MaxSlot returns the highest slot id referenced by a slot-access opcode.
func (v *FrameCountVisitor) MaxSlot() int { return v.maxSlot }

// HasNewClass reports whether a newclass instruction was seen.
func (v *FrameCountVisitor) HasNewClass() bool { return v.hasNewClass }

func (v *FrameCountVisitor) visitBlock(b *Block) {
	for i := 0; i < len(b.insns); i++ {
		v.visitInstruction(b, i)
	}
}

// ---------------------------------------------------------------------------
// Per-opcode accounting
// ---------------------------------------------------------------------------

func (v *FrameCountVisitor) visitInstruction(b *Block, i int) {
	insn := b.insns[i]
	op := insn.Opcode()

	switch op {
	case abc.OpBkpt, abc.OpNop, abc.OpLabel, abc.OpTimestamp, abc.OpJump,
		abc.OpReturnVoid, abc.OpDxns,
		abc.OpDebug, abc.OpDebugLine, abc.OpDebugFile, abc.OpBkptLine:
		// no stack effect

	case abc.OpThrow, abc.OpPop, abc.OpReturnValue, abc.OpDxnsLate,
		abc.OpIfTrue, abc.OpIfFalse, abc.OpLookupSwitch:
		v.pop(b, i, 1)

	case abc.OpIfNlt, abc.OpIfNle, abc.OpIfNgt, abc.OpIfNge,
		abc.OpIfEq, abc.OpIfNe, abc.OpIfLt, abc.OpIfLe, abc.OpIfGt, abc.OpIfGe,
		abc.OpIfStrictEq, abc.OpIfStrictNe:
		v.pop(b, i, 2)

	case abc.OpPushNull, abc.OpPushUndefined, abc.OpPushTrue, abc.OpPushFalse,
		abc.OpPushNaN, abc.OpPushByte, abc.OpPushShort, abc.OpPushString,
		abc.OpPushInt, abc.OpPushUint, abc.OpPushDouble, abc.OpPushNamespace,
		abc.OpNewFunction, abc.OpNewActivation, abc.OpNewCatch,
		abc.OpGetGlobalScope, abc.OpGetScopeObject, abc.OpGetOuterScope,
		abc.OpFindDef, abc.OpGetLex:
		v.push(1)

	case abc.OpDup:
		v.pop(b, i, 1)
		v.push(2)

	case abc.OpSwap:
		v.pop(b, i, 2)
		v.push(2)

	case abc.OpNextName, abc.OpNextValue, abc.OpHasNext:
		v.pop(b, i, 2)
		v.push(1)

	case abc.OpHasNext2:
		if insn.OperandCount() == 2 {
			v.touchLocal(insn.IntOperand(0))
			v.touchLocal(insn.IntOperand(1))
		}
		v.push(1)

	case abc.OpPushScope, abc.OpPushWith:
		v.pop(b, i, 1)
		v.pushScope()

	case abc.OpPopScope:
		v.popScope(b, i)

	// Unary operators, conversions and coercions.
	case abc.OpLi8, abc.OpLi16, abc.OpLi32, abc.OpLf32, abc.OpLf64,
		abc.OpSxi1, abc.OpSxi8, abc.OpSxi16,
		abc.OpConvertS, abc.OpEscXElem, abc.OpEscXAttr, abc.OpConvertI,
		abc.OpConvertU, abc.OpConvertD, abc.OpConvertB, abc.OpConvertO,
		abc.OpCheckFilter, abc.OpCoerce, abc.OpCoerceB, abc.OpCoerceA,
		abc.OpCoerceI, abc.OpCoerceD, abc.OpCoerceS, abc.OpCoerceU, abc.OpCoerceO,
		abc.OpAsType, abc.OpIsType,
		abc.OpNegate, abc.OpIncrement, abc.OpDecrement, abc.OpTypeof,
		abc.OpNot, abc.OpBitNot, abc.OpIncrementI, abc.OpDecrementI, abc.OpNegateI,
		abc.OpGetSlot, abc.OpNewClass:
		v.pop(b, i, 1)
		v.push(1)

	// Binary operators.
	case abc.OpAdd, abc.OpSubtract, abc.OpMultiply, abc.OpDivide, abc.OpModulo,
		abc.OpLShift, abc.OpRShift, abc.OpURShift,
		abc.OpBitAnd, abc.OpBitOr, abc.OpBitXor,
		abc.OpEquals, abc.OpStrictEquals, abc.OpLessThan, abc.OpLessEquals,
		abc.OpGreaterThan, abc.OpGreaterEquals,
		abc.OpInstanceOf, abc.OpIsTypeLate, abc.OpAsTypeLate, abc.OpIn,
		abc.OpAddI, abc.OpSubtractI, abc.OpMultiplyI:
		v.pop(b, i, 2)
		v.push(1)

	case abc.OpSi8, abc.OpSi16, abc.OpSi32, abc.OpSf32, abc.OpSf64, abc.OpSetSlot:
		v.pop(b, i, 2)

	case abc.OpGetGlobalSlot:
		v.push(1)

	case abc.OpSetGlobalSlot:
		v.pop(b, i, 1)

	case abc.OpGetLocal:
		v.touchLocal(insn.Immediate())
		v.push(1)
	case abc.OpGetLocal0, abc.OpGetLocal1, abc.OpGetLocal2, abc.OpGetLocal3:
		v.touchLocal(op - abc.OpGetLocal0)
		v.push(1)
	case abc.OpSetLocal:
		v.touchLocal(insn.Immediate())
		v.pop(b, i, 1)
	case abc.OpSetLocal0, abc.OpSetLocal1, abc.OpSetLocal2, abc.OpSetLocal3:
		v.touchLocal(op - abc.OpSetLocal0)
		v.pop(b, i, 1)
	case abc.OpKill, abc.OpIncLocal, abc.OpDecLocal, abc.OpIncLocalI, abc.OpDecLocalI:
		v.touchLocal(insn.Immediate())

	// Property access: the name may need runtime components on the stack.
	case abc.OpFindPropStrict, abc.OpFindProperty:
		v.pop(b, i, runtimeAllowance(insn))
		v.push(1)
	case abc.OpGetProperty, abc.OpDeleteProperty, abc.OpGetDescendants, abc.OpGetSuper:
		v.pop(b, i, 1+runtimeAllowance(insn))
		v.push(1)
	case abc.OpSetProperty, abc.OpInitProperty, abc.OpSetSuper:
		v.pop(b, i, 2+runtimeAllowance(insn))

	// Calls and construction.
	case abc.OpCall:
		v.pop(b, i, argCount(insn)+2)
		v.push(1)
	case abc.OpConstruct, abc.OpCallMethod, abc.OpCallStatic, abc.OpApplyType:
		v.pop(b, i, argCount(insn)+1)
		v.push(1)
	case abc.OpConstructSuper:
		v.pop(b, i, argCount(insn)+1)
	case abc.OpCallSuper, abc.OpCallProperty, abc.OpCallPropLex, abc.OpConstructProp:
		v.pop(b, i, argCount(insn)+1+runtimeAllowance(insn))
		v.push(1)
	case abc.OpCallSuperVoid, abc.OpCallPropVoid:
		v.pop(b, i, argCount(insn)+1+runtimeAllowance(insn))
	case abc.OpNewObject:
		v.pop(b, i, 2*argCount(insn))
		v.push(1)
	case abc.OpNewArray:
		v.pop(b, i, argCount(insn))
		v.push(1)

	default:
		panic(fmt.Sprintf("FrameCountVisitor: unknown opcode %s (0x%02x)", abc.OpcodeName(op), op))
	}

	switch op {
	case abc.OpGetSlot, abc.OpSetSlot, abc.OpGetGlobalSlot, abc.OpSetGlobalSlot:
		if slot := insn.Immediate(); slot > v.maxSlot {
			v.maxSlot = slot
		}
	case abc.OpNewClass:
		v.hasNewClass = true
	case abc.OpGetLocal, abc.OpSetLocal:
		v.shortenLocalAccess(b, i)
	}
}

// shortenLocalAccess rewrites getlocal/setlocal of registers 0-3 that were
// resolved after construction.
func (v *FrameCountVisitor) shortenLocalAccess(b *Block, i int) {
	insn := b.insns[i]
	if short, ok := shortLocalOpcode(insn.Opcode(), insn.Immediate()); ok {
		b.insns[i] = GetInstruction(short)
	}
}

func (v *FrameCountVisitor) pop(b *Block, i, n int) {
	v.stack -= n
	if v.stack < 0 {
		v.diags.OperandStackUnderflow(v.mbi, v.g, b, i)
		v.stack = 0
	}
}

func (v *FrameCountVisitor) push(n int) {
	v.stack += n
	v.noteStack()
}

func (v *FrameCountVisitor) noteStack() {
	if v.stack > v.maxStack {
		v.maxStack = v.stack
	}
}

func (v *FrameCountVisitor) pushScope() {
	v.scope++
	if v.scope > v.maxScope {
		v.maxScope = v.scope
	}
}

func (v *FrameCountVisitor) popScope(b *Block, i int) {
	v.scope--
	if v.scope < 0 {
		v.diags.ScopeStackUnderflow(v.mbi, v.g, b, i)
		v.scope = 0
	}
}

func (v *FrameCountVisitor) touchLocal(reg int) {
	if reg+1 > v.maxLocal {
		v.maxLocal = reg + 1
	}
}

// runtimeAllowance returns the number of extra stack values the
// instruction's name operand needs.
func runtimeAllowance(insn *Instruction) int {
	if n := insn.NameOperand(); n != nil {
		return n.RuntimeNameAllowance()
	}
	return 0
}

// argCount returns the argument count of a call-like instruction: the
// immediate, or the last operand.
func argCount(insn *Instruction) int {
	if insn.Shape() == Immediate {
		return insn.Immediate()
	}
	return insn.IntOperand(insn.OperandCount() - 1)
}
