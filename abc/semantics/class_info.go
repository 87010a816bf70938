package semantics

import "github.com/chazu/abcasm/abc"

// InstanceInfo describes the instance side of a class.
type InstanceInfo struct {
	Name        *Name
	SuperName   *Name // nil for Object
	Flags       int   // abc.ClassSealed | abc.ClassFinal | ...
	ProtectedNs *Namespace
	Interfaces  []*Name
	Init        *MethodInfo
	Traits      *Traits
}

// NewInstanceInfo creates an instance record with an empty trait list.
func NewInstanceInfo(name, superName *Name) *InstanceInfo {
	return &InstanceInfo{Name: name, SuperName: superName, Traits: NewTraits()}
}

// IsInterface reports whether the class is an interface.
func (ii *InstanceInfo) IsInterface() bool { return ii.Flags&abc.ClassInterface != 0 }

// IsSealed reports whether instances are sealed.
func (ii *InstanceInfo) IsSealed() bool { return ii.Flags&abc.ClassSealed != 0 }

// IsFinal reports whether the class is final.
func (ii *InstanceInfo) IsFinal() bool { return ii.Flags&abc.ClassFinal != 0 }

// SetProtectedNamespace records the protected namespace and sets
// ClassProtectedNs.
func (ii *InstanceInfo) SetProtectedNamespace(ns *Namespace) {
	ii.ProtectedNs = ns
	ii.Flags |= abc.ClassProtectedNs
}

// ClassInfo describes the static side of a class and links its instance
// side.
type ClassInfo struct {
	Instance *InstanceInfo
	Init     *MethodInfo // static initializer
	Traits   *Traits     // static traits
}

// NewClassInfo creates a class for instance with an empty static trait list.
func NewClassInfo(instance *InstanceInfo) *ClassInfo {
	return &ClassInfo{Instance: instance, Traits: NewTraits()}
}

// Name returns the class name.
func (ci *ClassInfo) Name() *Name {
	if ci.Instance == nil {
		return nil
	}
	return ci.Instance.Name
}

// ScriptInfo is a script entry: its initializer and top-level traits.
type ScriptInfo struct {
	Init   *MethodInfo
	Traits *Traits
}

// NewScriptInfo creates a script with an empty trait list.
func NewScriptInfo(init *MethodInfo) *ScriptInfo {
	return &ScriptInfo{Init: init, Traits: NewTraits()}
}

// Classes returns the classes defined by the script's class traits.
func (si *ScriptInfo) Classes() []*ClassInfo {
	var out []*ClassInfo
	for _, t := range si.Traits.All() {
		if t.Kind == abc.TraitClass && t.Class != nil {
			out = append(out, t.Class)
		}
	}
	return out
}
