package semantics

import (
	"fmt"
	"sort"
)

// ControlFlowGraph partitions an instruction list into basic blocks.
//
// Blocks are kept in entry (construction) order. The start block and the
// exception handler entry blocks (catch targets) are the roots of the graph.
type ControlFlowGraph struct {
	blocks       []*Block
	start        *Block
	catchTargets []*Block
	labelBlocks  map[*Label]*Block
	handlers     []*ExceptionInfo

	// dom is built on first use and dropped only when a block removal
	// changes the set of roots.
	dom *dominatorTree
}

type pendingEdge struct {
	from    *Block
	targets []*Label
}

// NewControlFlowGraph builds the graph for list. The handlers supply the
// catch targets and are repaired in place when blocks are removed.
func NewControlFlowGraph(list *InstructionList, handlers []*ExceptionInfo) *ControlFlowGraph {
	g := &ControlFlowGraph{
		labelBlocks: make(map[*Label]*Block),
		handlers:    handlers,
	}
	g.build(list)
	log.Debugf("built control flow graph: %d instructions, %d blocks, %d catch targets",
		list.Len(), len(g.blocks), len(g.catchTargets))
	return g
}

func (g *ControlFlowGraph) build(list *InstructionList) {
	insns := list.Instructions()
	labels := list.Labels()

	// A handler target matches a declared label by identity or by position.
	catchLabels := make(map[*Label]bool)
	catchAt := make(map[int]bool)
	for _, h := range g.handlers {
		if !h.IsLive() {
			continue
		}
		catchLabels[h.Target()] = true
		if h.Target().IsPositioned() {
			catchAt[h.Target().Position()] = true
		}
	}

	var (
		cur          *Block
		curStart     int
		pending      []pendingEdge
		prevTransfer bool
		next         int
	)

	closeBlock := func(end int) {
		if cur != nil {
			cur.insns = insns[curStart:end:end]
		}
	}
	openBlock := func(pos int) {
		prev := cur
		closeBlock(pos)
		cur = &Block{number: len(g.blocks), position: pos}
		curStart = pos
		g.blocks = append(g.blocks, cur)
		if prev != nil && !prev.IsEmpty() && prev.CanFallThrough() {
			prev.addSuccessor(cur)
		}
	}
	attach := func(here []*Label) {
		for _, l := range here {
			g.labelBlocks[l] = cur
			if catchLabels[l] || catchAt[l.position] {
				g.addCatchTarget(cur)
			}
		}
	}

	for pos, insn := range insns {
		var here []*Label
		for next < len(labels) && labels[next].position <= pos {
			here = append(here, labels[next])
			next++
		}

		split := cur == nil || prevTransfer
		if !split && len(here) > 0 && pos > curStart {
			// A label that only addresses executable code can share a block
			// that so far holds nothing but debug markers.
			split = hasExecutableBetween(insns, curStart, pos)
			for _, l := range here {
				if !l.TargetsExecutableOnly() {
					split = true
				}
			}
		}
		if split {
			openBlock(pos)
		}
		attach(here)

		if insn.IsBranch() {
			pending = append(pending, pendingEdge{from: cur, targets: insn.Targets()})
		}
		prevTransfer = insn.IsTransferOfControl()
	}

	// Labels at or past the end land on an empty trailing block.
	if cur == nil || next < len(labels) {
		openBlock(len(insns))
		attach(labels[next:])
	}
	closeBlock(len(insns))
	g.start = g.blocks[0]

	sort.SliceStable(pending, func(i, j int) bool { return pending[i].from.number < pending[j].from.number })
	for _, p := range pending {
		for _, l := range p.targets {
			if target, ok := g.LookupBlock(l); ok {
				p.from.addSuccessor(target)
			} else {
				log.Warningf("branch in block %d targets undeclared label %s", p.from.number, l)
			}
		}
	}
}

func hasExecutableBetween(insns []*Instruction, from, to int) bool {
	for _, insn := range insns[from:to] {
		if insn.IsExecutable() {
			return true
		}
	}
	return false
}

func (g *ControlFlowGraph) addCatchTarget(b *Block) {
	for _, existing := range g.catchTargets {
		if existing == b {
			return
		}
	}
	g.catchTargets = append(g.catchTargets, b)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Blocks returns the blocks in entry order.
func (g *ControlFlowGraph) Blocks() []*Block { return g.blocks }

// StartBlock returns the method entry block.
func (g *ControlFlowGraph) StartBlock() *Block { return g.start }

// CatchTargets returns the exception handler entry blocks.
func (g *ControlFlowGraph) CatchTargets() []*Block { return g.catchTargets }

// IsCatchTarget reports whether b is an exception handler entry.
func (g *ControlFlowGraph) IsCatchTarget(b *Block) bool {
	for _, ct := range g.catchTargets {
		if ct == b {
			return true
		}
	}
	return false
}

// Roots returns the start block followed by the catch targets.
func (g *ControlFlowGraph) Roots() []*Block {
	roots := make([]*Block, 0, 1+len(g.catchTargets))
	roots = append(roots, g.start)
	for _, ct := range g.catchTargets {
		if ct != g.start {
			roots = append(roots, ct)
		}
	}
	return roots
}

// GetBlock returns the block that l marks. It panics if l is not mapped.
func (g *ControlFlowGraph) GetBlock(l *Label) *Block {
	b, ok := g.LookupBlock(l)
	if !ok {
		panic(fmt.Sprintf("ControlFlowGraph.GetBlock: label %s not found", l))
	}
	return b
}

// LookupBlock returns the block that l marks. A label not mapped by identity
// matches a mapped label at the same position.
func (g *ControlFlowGraph) LookupBlock(l *Label) (*Block, bool) {
	if l == nil {
		return nil, false
	}
	if b, ok := g.labelBlocks[l]; ok {
		return b, true
	}
	if !l.IsPositioned() {
		return nil, false
	}
	for mapped, b := range g.labelBlocks {
		if SamePosition(mapped, l) {
			return b, true
		}
	}
	return nil, false
}

// BlocksInControlFlowOrder returns the blocks reachable from the roots in
// depth-first preorder, starting from the entry block and then each catch
// target.
func (g *ControlFlowGraph) BlocksInControlFlowOrder() []*Block {
	var order []*Block
	g.walkPreorder(func(b *Block) { order = append(order, b) })
	return order
}

func (g *ControlFlowGraph) walkPreorder(visit func(*Block)) {
	seen := make(map[*Block]bool, len(g.blocks))
	var stack []*Block
	for _, root := range g.Roots() {
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[b] {
				continue
			}
			seen[b] = true
			visit(b)
			for i := len(b.succs) - 1; i >= 0; i-- {
				if !seen[b.succs[i]] {
					stack = append(stack, b.succs[i])
				}
			}
		}
	}
}

// IsReachable reports whether b is reachable from a root.
func (g *ControlFlowGraph) IsReachable(b *Block) bool {
	return g.dominators().contains(b)
}

// Dominates reports whether every path from a root to b passes through a.
func (g *ControlFlowGraph) Dominates(a, b *Block) bool {
	return g.dominators().dominates(a, b)
}

// ImmediateDominator returns b's immediate dominator, or nil for roots and
// unreachable blocks.
func (g *ControlFlowGraph) ImmediateDominator(b *Block) *Block {
	return g.dominators().idom[b]
}

func (g *ControlFlowGraph) dominators() *dominatorTree {
	if g.dom == nil {
		g.dom = newDominatorTree(g.Roots())
	}
	return g.dom
}

// invalidateDominators drops the cached dominator tree. Block removal that
// changes the roots is the only caller.
func (g *ControlFlowGraph) invalidateDominators() { g.dom = nil }

// ---------------------------------------------------------------------------
// Block removal
// ---------------------------------------------------------------------------

// RemoveUnreachableBlocks removes every unreachable block and returns how
// many were removed. Removal may kill exception handlers, whose catch
// targets then become unreachable in turn.
func (g *ControlFlowGraph) RemoveUnreachableBlocks() int {
	removed := 0
	for {
		var dead []*Block
		for _, b := range g.blocks {
			if !g.IsReachable(b) {
				dead = append(dead, b)
			}
		}
		if len(dead) == 0 {
			return removed
		}
		for _, b := range dead {
			g.RemoveUnreachableBlock(b)
			removed++
		}
	}
}

// RemoveUnreachableBlock removes b from the graph and repairs exception
// regions that start or end at it. It panics if b is reachable.
func (g *ControlFlowGraph) RemoveUnreachableBlock(b *Block) {
	if g.IsReachable(b) {
		panic(fmt.Sprintf("ControlFlowGraph.RemoveUnreachableBlock: block %d is reachable", b.number))
	}
	idx := -1
	for i, existing := range g.blocks {
		if existing == b {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("ControlFlowGraph.RemoveUnreachableBlock: block %d is not in the graph", b.number))
	}
	var following *Block
	if idx+1 < len(g.blocks) {
		following = g.blocks[idx+1]
	}

	g.blocks = append(g.blocks[:idx:idx], g.blocks[idx+1:]...)
	for _, other := range g.blocks {
		other.removeSuccessor(b)
	}
	for l, mapped := range g.labelBlocks {
		if mapped == b {
			delete(g.labelBlocks, l)
		}
	}

	rootsChanged := false
	for _, h := range g.handlers {
		if !h.IsLive() {
			continue
		}
		if g.labelOn(h.From(), b) {
			if following != nil {
				h.setFrom(g.labelAt(following))
			}
		}
		if g.labelOn(h.To(), b) {
			if following != nil {
				h.setTo(g.labelAt(following))
			}
		}
		if !g.coversCode(h) {
			h.SetLive(false)
			if g.dropCatchTarget(h.Target()) {
				rootsChanged = true
			}
		}
	}
	if rootsChanged {
		g.invalidateDominators()
	}
}

// labelOn reports whether l was positioned inside the removed block b.
func (g *ControlFlowGraph) labelOn(l *Label, b *Block) bool {
	if !l.IsPositioned() {
		return false
	}
	if b.IsEmpty() {
		return l.position == b.position
	}
	return b.contains(l.position)
}

// labelAt returns a label mapped to b's first position, creating one if b
// has none.
func (g *ControlFlowGraph) labelAt(b *Block) *Label {
	for l, mapped := range g.labelBlocks {
		if mapped == b && l.position == b.position {
			return l
		}
	}
	l := NewLabel()
	l.SetPosition(b.position)
	g.labelBlocks[l] = b
	return l
}

// coversCode reports whether any remaining block starts inside h's region.
func (g *ControlFlowGraph) coversCode(h *ExceptionInfo) bool {
	from, to := h.From().position, h.To().position
	for _, b := range g.blocks {
		if !b.IsEmpty() && b.position >= from && b.position < to {
			return true
		}
	}
	return false
}

// dropCatchTarget removes the block of target from the catch targets when no
// other live handler enters it.
func (g *ControlFlowGraph) dropCatchTarget(target *Label) bool {
	tb, ok := g.LookupBlock(target)
	if !ok {
		return false
	}
	for _, h := range g.handlers {
		if h.IsLive() {
			if other, ok := g.LookupBlock(h.Target()); ok && other == tb {
				return false
			}
		}
	}
	for i, ct := range g.catchTargets {
		if ct == tb {
			g.catchTargets = append(g.catchTargets[:i:i], g.catchTargets[i+1:]...)
			return true
		}
	}
	return false
}
