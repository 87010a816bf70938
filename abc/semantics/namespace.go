package semantics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chazu/abcasm/abc"
)

// API version markers are private-use code points appended to a namespace
// name. They are stripped into Namespace.APIVersion.
const (
	apiMarkMin = 0xE000
	apiMarkMax = 0xF8FF

	// NoAPIVersion is reported by namespaces without a version marker.
	NoAPIVersion = -1
)

// ---------------------------------------------------------------------------
// Namespace
// ---------------------------------------------------------------------------

// Namespace is an ABC namespace: a kind and a name.
//
// Namespaces compare structurally by kind, name and API version, except that
// private namespaces compare by identity: two private namespaces with the
// same name are distinct unless both have had SetMergePrivateNamespaces(true).
type Namespace struct {
	kind         int
	name         string
	apiVersion   int
	mergePrivate bool

	hash   uint64
	hashed bool
}

// NewNamespace creates a namespace of the given kind. A trailing API version
// marker in name is removed and recorded separately.
func NewNamespace(kind int, name string) *Namespace {
	if !abc.IsNamespaceKind(kind) {
		panic(fmt.Sprintf("NewNamespace: invalid namespace kind 0x%02x", kind))
	}
	ns := &Namespace{kind: kind, name: name, apiVersion: NoAPIVersion}
	if r, size := utf8.DecodeLastRuneInString(name); size > 0 && r >= apiMarkMin && r <= apiMarkMax {
		ns.name = name[:len(name)-size]
		ns.apiVersion = int(r - apiMarkMin)
	}
	return ns
}

// NewPackageNamespace creates a package namespace; the empty name is the
// public namespace.
func NewPackageNamespace(name string) *Namespace {
	return NewNamespace(abc.ConstantPackageNs, name)
}

// NewPrivateNamespace creates a private namespace.
func NewPrivateNamespace(name string) *Namespace {
	return NewNamespace(abc.ConstantPrivateNs, name)
}

// Kind returns the namespace kind.
func (ns *Namespace) Kind() int { return ns.kind }

// Name returns the namespace name without any API version marker.
func (ns *Namespace) Name() string { return ns.name }

// APIVersion returns the embedded API version, or NoAPIVersion.
func (ns *Namespace) APIVersion() int { return ns.apiVersion }

// VersionedName returns the name with its API version marker reattached.
func (ns *Namespace) VersionedName() string {
	if ns.apiVersion == NoAPIVersion {
		return ns.name
	}
	return ns.name + string(rune(apiMarkMin+ns.apiVersion))
}

// IsPrivate reports whether this is a private namespace.
func (ns *Namespace) IsPrivate() bool { return ns.kind == abc.ConstantPrivateNs }

// SetMergePrivateNamespaces lets this private namespace compare equal by name
// to other private namespaces that have the same setting. Inlining across
// classes relies on this; it changes the language's private semantics.
func (ns *Namespace) SetMergePrivateNamespaces(merge bool) {
	ns.mergePrivate = merge
}

// MergePrivateNamespaces reports the merge setting.
func (ns *Namespace) MergePrivateNamespaces() bool { return ns.mergePrivate }

// Equal reports whether two namespaces are interchangeable.
func (ns *Namespace) Equal(o *Namespace) bool {
	if ns == o {
		return true
	}
	if ns == nil || o == nil {
		return false
	}
	if ns.kind != o.kind {
		return false
	}
	if ns.kind == abc.ConstantPrivateNs && !(ns.mergePrivate && o.mergePrivate) {
		return false
	}
	return ns.name == o.name && ns.apiVersion == o.apiVersion
}

// Hash returns a hash consistent with Equal in both private modes.
func (ns *Namespace) Hash() uint64 {
	if !ns.hashed {
		h := hashString(ns.name)
		h = combineHash(h, uint64(ns.kind))
		h = combineHash(h, uint64(ns.apiVersion+1))
		ns.hash = h
		ns.hashed = true
	}
	return ns.hash
}

func (ns *Namespace) String() string {
	switch ns.kind {
	case abc.ConstantPackageNs:
		if ns.name == "" {
			return "public"
		}
		return "package:" + ns.name
	case abc.ConstantPackageInternalNs:
		return "internal:" + ns.name
	case abc.ConstantProtectedNs:
		return "protected:" + ns.name
	case abc.ConstantStaticProtectedNs:
		return "staticprotected:" + ns.name
	case abc.ConstantExplicitNamespace:
		return "explicit:" + ns.name
	case abc.ConstantPrivateNs:
		return "private:" + ns.name
	default:
		return "namespace:" + ns.name
	}
}

// ---------------------------------------------------------------------------
// Nsset
// ---------------------------------------------------------------------------

// Nsset is an ordered set of namespaces a multiname is resolved against.
type Nsset struct {
	namespaces []*Namespace

	hash   uint64
	hashed bool
}

// NewNsset creates a namespace set. Duplicates (by Equal) are dropped.
func NewNsset(namespaces ...*Namespace) *Nsset {
	s := &Nsset{namespaces: make([]*Namespace, 0, len(namespaces))}
	for _, ns := range namespaces {
		if !s.Contains(ns) {
			s.namespaces = append(s.namespaces, ns)
		}
	}
	return s
}

// Len returns the number of namespaces.
func (s *Nsset) Len() int { return len(s.namespaces) }

// At returns the i'th namespace.
func (s *Nsset) At(i int) *Namespace { return s.namespaces[i] }

// Namespaces returns a copy of the namespaces in order.
func (s *Nsset) Namespaces() []*Namespace {
	out := make([]*Namespace, len(s.namespaces))
	copy(out, s.namespaces)
	return out
}

// Contains reports whether the set holds a namespace equal to ns.
func (s *Nsset) Contains(ns *Namespace) bool {
	for _, n := range s.namespaces {
		if n.Equal(ns) {
			return true
		}
	}
	return false
}

// Equal compares namespace sets element-wise, in order.
func (s *Nsset) Equal(o *Nsset) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.namespaces) != len(o.namespaces) {
		return false
	}
	for i := range s.namespaces {
		if !s.namespaces[i].Equal(o.namespaces[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (s *Nsset) Hash() uint64 {
	if !s.hashed {
		h := uint64(abc.ConstantNamespaceSet)
		for _, ns := range s.namespaces {
			h = combineHash(h, ns.Hash())
		}
		s.hash = h
		s.hashed = true
	}
	return s.hash
}

func (s *Nsset) String() string {
	parts := make([]string, len(s.namespaces))
	for i, ns := range s.namespaces {
		parts[i] = ns.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
