package semantics

import "github.com/chazu/abcasm/abc"

// ---------------------------------------------------------------------------
// Pool: interning by structural hash and equality
// ---------------------------------------------------------------------------

// Poolable values intern by Hash and Equal.
type Poolable[T any] interface {
	Hash() uint64
	Equal(T) bool
}

// Pool interns values and hands out stable zero-based indices in insertion
// order.
type Pool[T Poolable[T]] struct {
	values  []T
	buckets map[uint64][]int
}

// NewPool creates an empty pool.
func NewPool[T Poolable[T]]() *Pool[T] {
	return &Pool[T]{buckets: make(map[uint64][]int)}
}

// Add interns v and returns its index. An equal value already in the pool
// keeps its original index.
func (p *Pool[T]) Add(v T) int {
	h := v.Hash()
	for _, idx := range p.buckets[h] {
		if p.values[idx].Equal(v) {
			return idx
		}
	}
	idx := len(p.values)
	p.values = append(p.values, v)
	p.buckets[h] = append(p.buckets[h], idx)
	return idx
}

// Index returns the index of a value equal to v.
func (p *Pool[T]) Index(v T) (int, bool) {
	for _, idx := range p.buckets[v.Hash()] {
		if p.values[idx].Equal(v) {
			return idx, true
		}
	}
	return -1, false
}

// At returns the value at idx.
func (p *Pool[T]) At(idx int) T { return p.values[idx] }

// Len returns the number of interned values.
func (p *Pool[T]) Len() int { return len(p.values) }

// Values returns the interned values in index order.
func (p *Pool[T]) Values() []T {
	out := make([]T, len(p.values))
	copy(out, p.values)
	return out
}

// ---------------------------------------------------------------------------
// ConstantPools
// ---------------------------------------------------------------------------

// ConstantPools collects the pooled operands of a compilation session.
//
// MergePrivateNamespaces is a session-wide policy: when set, every private
// namespace interned through the pools is marked mergeable so that textually
// identical private namespaces share one entry.
type ConstantPools struct {
	MergePrivateNamespaces bool

	Strings    *Pool[PooledValue]
	Ints       *Pool[PooledValue]
	UInts      *Pool[PooledValue]
	Doubles    *Pool[PooledValue]
	Namespaces *Pool[*Namespace]
	Nssets     *Pool[*Nsset]
	Names      *Pool[*Name]
}

// NewConstantPools creates empty pools with the given private-namespace
// policy.
func NewConstantPools(mergePrivate bool) *ConstantPools {
	return &ConstantPools{
		MergePrivateNamespaces: mergePrivate,
		Strings:                NewPool[PooledValue](),
		Ints:                   NewPool[PooledValue](),
		UInts:                  NewPool[PooledValue](),
		Doubles:                NewPool[PooledValue](),
		Namespaces:             NewPool[*Namespace](),
		Nssets:                 NewPool[*Nsset](),
		Names:                  NewPool[*Name](),
	}
}

// AddString interns a string.
func (cp *ConstantPools) AddString(s string) int {
	return cp.Strings.Add(NewStringValue(s))
}

// AddNamespace interns a namespace, applying the private-namespace policy.
func (cp *ConstantPools) AddNamespace(ns *Namespace) int {
	if ns.IsPrivate() && cp.MergePrivateNamespaces {
		ns.SetMergePrivateNamespaces(true)
	}
	cp.AddString(ns.Name())
	return cp.Namespaces.Add(ns)
}

// AddNsset interns a namespace set and its members.
func (cp *ConstantPools) AddNsset(s *Nsset) int {
	for _, ns := range s.namespaces {
		cp.AddNamespace(ns)
	}
	return cp.Nssets.Add(s)
}

// AddName interns a name and its components.
func (cp *ConstantPools) AddName(n *Name) int {
	if n.IsTypeName() {
		if n.typeBase != nil {
			cp.AddName(n.typeBase)
		}
		if n.typeParam != nil {
			cp.AddName(n.typeParam)
		}
		return cp.Names.Add(n)
	}
	if n.hasBase {
		cp.AddString(n.baseName)
	}
	if n.qualifiers != nil {
		if ns := n.SingleQualifier(); ns != nil && !isMultinameKind(n.kind) {
			cp.AddNamespace(ns)
		} else {
			cp.AddNsset(n.qualifiers)
		}
	}
	return cp.Names.Add(n)
}

// AddValue interns a pool value into the pool for its kind and returns the
// index in that pool. Singleton kinds (true, false, null, undefined) have no
// pool and return -1.
func (cp *ConstantPools) AddValue(v PooledValue) int {
	switch p := v.value.(type) {
	case int32:
		return cp.Ints.Add(v)
	case uint32:
		return cp.UInts.Add(v)
	case float64:
		return cp.Doubles.Add(v)
	case string:
		return cp.Strings.Add(v)
	case *Namespace:
		return cp.AddNamespace(p)
	}
	return -1
}

// CollectInstructions interns every pooled operand referenced by insns.
func (cp *ConstantPools) CollectInstructions(insns []*Instruction) {
	for _, insn := range insns {
		for _, op := range insn.Operands() {
			switch v := op.(type) {
			case *Name:
				cp.AddName(v)
			case *Namespace:
				cp.AddNamespace(v)
			case string:
				cp.AddString(v)
			case int32:
				cp.AddValue(NewIntValue(v))
			case uint32:
				cp.AddValue(NewUIntValue(v))
			case float64:
				cp.AddValue(NewDoubleValue(v))
			}
		}
	}
}

func isMultinameKind(kind int) bool {
	return kind == abc.ConstantMultiname || kind == abc.ConstantMultinameA
}
