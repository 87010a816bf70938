package semantics

import (
	"fmt"

	"github.com/chazu/abcasm/abc"
)

// AnyName is the wildcard base name.
const AnyName = "*"

// Name is an ABC multiname.
//
// Most kinds carry a base name and a namespace set; either may be absent for
// the runtime-qualified and late-bound kinds. Parameterized type names carry a
// base Name and a parameter Name instead.
//
// A Name is immutable after construction, except that a type name created
// with missing components may have them filled in once by InitTypeName.
type Name struct {
	kind       int
	qualifiers *Nsset
	baseName   string
	hasBase    bool

	typeBase  *Name
	typeParam *Name
}

// NewName creates a multiname of any kind except ConstantTypeName.
// Late-bound kinds (RTQNameL, MultinameL and their attribute forms) ignore
// baseName; runtime-qualified kinds ignore qualifiers.
func NewName(kind int, qualifiers *Nsset, baseName string) *Name {
	n := newName(kind, qualifiers)
	if !isLateBoundName(kind) {
		n.baseName = baseName
		n.hasBase = true
	}
	return n
}

// NewAnyName creates a multiname with no base name, which matches any name
// when used as a type.
func NewAnyName(kind int, qualifiers *Nsset) *Name {
	return newName(kind, qualifiers)
}

func newName(kind int, qualifiers *Nsset) *Name {
	if kind == abc.ConstantTypeName {
		panic("NewName: type names must be created with NewTypeName")
	}
	if !abc.IsNameKind(kind) {
		panic(fmt.Sprintf("NewName: invalid name kind 0x%02x", kind))
	}
	n := &Name{kind: kind}
	if !isRuntimeQualified(kind) {
		n.qualifiers = qualifiers
	}
	return n
}

// NewQName creates a qualified name in a single namespace.
func NewQName(ns *Namespace, baseName string) *Name {
	return NewName(abc.ConstantQName, NewNsset(ns), baseName)
}

// NewPublicName creates a qualified name in the public namespace.
func NewPublicName(baseName string) *Name {
	return NewQName(NewPackageNamespace(""), baseName)
}

// NewTypeName creates a parameterized type name such as Vector.<int>.
// A nil param means any type parameter. Either component may be nil and
// supplied later with InitTypeName.
func NewTypeName(base, param *Name) *Name {
	if base != nil && base.kind == abc.ConstantTypeName {
		panic("NewTypeName: base of a type name cannot itself be a type name")
	}
	return &Name{kind: abc.ConstantTypeName, typeBase: base, typeParam: param}
}

// InitTypeName fills in the components of a type name that were nil at
// construction. Calling it again with the same values is a no-op; supplying a
// value that contradicts one already set panics.
func (n *Name) InitTypeName(base, param *Name) {
	if n.kind != abc.ConstantTypeName {
		panic("Name.InitTypeName: not a type name")
	}
	if base != nil {
		switch {
		case n.typeBase == nil:
			n.typeBase = base
		case !n.typeBase.Equal(base):
			panic(fmt.Sprintf("Name.InitTypeName: base already set to %s, got %s", n.typeBase, base))
		}
	}
	if param != nil {
		switch {
		case n.typeParam == nil:
			n.typeParam = param
		case !n.typeParam.Equal(param):
			panic(fmt.Sprintf("Name.InitTypeName: parameter already set to %s, got %s", n.typeParam, param))
		}
	}
}

// Kind returns the multiname kind.
func (n *Name) Kind() int { return n.kind }

// Qualifiers returns the namespace set, or nil.
func (n *Name) Qualifiers() *Nsset { return n.qualifiers }

// BaseName returns the base name; it is empty when HasBaseName is false.
func (n *Name) BaseName() string { return n.baseName }

// HasBaseName reports whether the name carries a base name.
func (n *Name) HasBaseName() bool { return n.hasBase }

// SingleQualifier returns the namespace of a name qualified by exactly one
// namespace, or nil.
func (n *Name) SingleQualifier() *Namespace {
	if n.qualifiers == nil || n.qualifiers.Len() != 1 {
		return nil
	}
	return n.qualifiers.At(0)
}

// TypeNameBase returns the base of a type name.
func (n *Name) TypeNameBase() *Name { return n.typeBase }

// TypeNameParameter returns the parameter of a type name; nil means any.
func (n *Name) TypeNameParameter() *Name { return n.typeParam }

// IsTypeName reports whether n is a parameterized type name.
func (n *Name) IsTypeName() bool { return n.kind == abc.ConstantTypeName }

// IsAttributeName reports whether n names an XML attribute.
func (n *Name) IsAttributeName() bool {
	switch n.kind {
	case abc.ConstantQNameA, abc.ConstantRTQNameA, abc.ConstantRTQNameLA,
		abc.ConstantMultinameA, abc.ConstantMultinameLA:
		return true
	}
	return false
}

// IsRuntimeName reports whether evaluating n needs operand-stack values.
func (n *Name) IsRuntimeName() bool { return n.RuntimeNameAllowance() > 0 }

// RuntimeNameAllowance returns the number of operand-stack values an
// instruction consumes to evaluate this name at runtime.
func (n *Name) RuntimeNameAllowance() int {
	switch n.kind {
	case abc.ConstantRTQName, abc.ConstantRTQNameA,
		abc.ConstantMultinameL, abc.ConstantMultinameLA:
		return 1
	case abc.ConstantRTQNameL, abc.ConstantRTQNameLA:
		return 2
	}
	return 0
}

// CouldBeAnyType reports whether n, used as a type, matches any type.
func (n *Name) CouldBeAnyType() bool {
	switch n.kind {
	case abc.ConstantQName, abc.ConstantMultiname:
		return !n.hasBase || n.baseName == AnyName
	}
	return false
}

// Equal reports whether two names are structurally identical.
func (n *Name) Equal(o *Name) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil || n.kind != o.kind {
		return false
	}
	if n.kind == abc.ConstantTypeName {
		return n.typeBase.Equal(o.typeBase) && n.typeParam.Equal(o.typeParam)
	}
	return n.hasBase == o.hasBase && n.baseName == o.baseName && n.qualifiers.Equal(o.qualifiers)
}

// Hash returns a hash consistent with Equal. It is recomputed on each call
// because a type name may still be completed by InitTypeName.
func (n *Name) Hash() uint64 {
	if n == nil {
		return 0
	}
	h := uint64(n.kind)
	if n.kind == abc.ConstantTypeName {
		h = combineHash(h, n.typeBase.Hash())
		return combineHash(h, n.typeParam.Hash())
	}
	if n.hasBase {
		h = combineHash(h, hashString(n.baseName))
	}
	if n.qualifiers != nil {
		h = combineHash(h, n.qualifiers.Hash())
	}
	return h
}

func (n *Name) String() string {
	if n == nil {
		return "*"
	}
	base := AnyName
	if n.hasBase {
		base = fmt.Sprintf("%q", n.baseName)
	}
	attr := ""
	if n.IsAttributeName() {
		attr = "@"
	}
	switch n.kind {
	case abc.ConstantQName, abc.ConstantQNameA:
		if ns := n.SingleQualifier(); ns != nil {
			return fmt.Sprintf("qname%s(%s, %s)", attr, ns, base)
		}
		return fmt.Sprintf("qname%s(%s)", attr, base)
	case abc.ConstantRTQName, abc.ConstantRTQNameA:
		return fmt.Sprintf("rtqname%s(%s)", attr, base)
	case abc.ConstantRTQNameL, abc.ConstantRTQNameLA:
		return "rtqnamel" + attr
	case abc.ConstantMultiname, abc.ConstantMultinameA:
		return fmt.Sprintf("multiname%s(%s, %s)", attr, base, n.qualifiers)
	case abc.ConstantMultinameL, abc.ConstantMultinameLA:
		return fmt.Sprintf("multinamel%s(%s)", attr, n.qualifiers)
	case abc.ConstantTypeName:
		return fmt.Sprintf("%s.<%s>", n.typeBase, n.typeParam)
	}
	return fmt.Sprintf("name(0x%02x)", n.kind)
}

func isLateBoundName(kind int) bool {
	switch kind {
	case abc.ConstantRTQNameL, abc.ConstantRTQNameLA,
		abc.ConstantMultinameL, abc.ConstantMultinameLA:
		return true
	}
	return false
}

func isRuntimeQualified(kind int) bool {
	switch kind {
	case abc.ConstantRTQName, abc.ConstantRTQNameA,
		abc.ConstantRTQNameL, abc.ConstantRTQNameLA:
		return true
	}
	return false
}
