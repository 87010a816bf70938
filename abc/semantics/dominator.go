package semantics

// dominatorTree holds immediate dominators for the blocks reachable from a
// set of roots. The roots hang off a virtual entry node, so a root's
// immediate dominator is nil.
//
// Built with the iterative algorithm of Cooper, Harvey and Kennedy over
// reverse postorder.
type dominatorTree struct {
	idom  map[*Block]*Block
	order map[*Block]int // postorder number; the virtual root is highest
}

func newDominatorTree(roots []*Block) *dominatorTree {
	// Node 0..n-1 are blocks in postorder; node n is the virtual root.
	var post []*Block
	order := make(map[*Block]int)
	visited := make(map[*Block]bool)

	type frame struct {
		b    *Block
		next int
	}
	for _, root := range roots {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack := []frame{{b: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.b.succs) {
				s := top.b.succs[top.next]
				top.next++
				if !visited[s] {
					visited[s] = true
					stack = append(stack, frame{b: s})
				}
				continue
			}
			order[top.b] = len(post)
			post = append(post, top.b)
			stack = stack[:len(stack)-1]
		}
	}

	n := len(post)
	virtual := n
	preds := make([][]int, n)
	for _, b := range post {
		for _, s := range b.succs {
			preds[order[s]] = append(preds[order[s]], order[b])
		}
	}
	for _, r := range roots {
		preds[order[r]] = append(preds[order[r]], virtual)
	}

	const undefined = -1
	idom := make([]int, n+1)
	for i := range idom {
		idom[i] = undefined
	}
	idom[virtual] = virtual

	intersect := func(a, b int) int {
		for a != b {
			for a < b {
				a = idom[a]
			}
			for b < a {
				b = idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		// Reverse postorder, skipping the virtual root.
		for i := n - 1; i >= 0; i-- {
			newIdom := undefined
			for _, p := range preds[i] {
				if idom[p] == undefined {
					continue
				}
				if newIdom == undefined {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != undefined && idom[i] != newIdom {
				idom[i] = newIdom
				changed = true
			}
		}
	}

	t := &dominatorTree{idom: make(map[*Block]*Block, n), order: order}
	for i, b := range post {
		if idom[i] == virtual {
			t.idom[b] = nil
		} else {
			t.idom[b] = post[idom[i]]
		}
	}
	return t
}

func (t *dominatorTree) contains(b *Block) bool {
	_, ok := t.idom[b]
	return ok
}

// dominates reports whether a dominates b. Every reachable block dominates
// itself; unreachable blocks dominate nothing and are dominated by nothing.
func (t *dominatorTree) dominates(a, b *Block) bool {
	if !t.contains(a) || !t.contains(b) {
		return false
	}
	for cur := b; cur != nil; cur = t.idom[cur] {
		if cur == a {
			return true
		}
	}
	return false
}
