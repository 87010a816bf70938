package semantics

import (
	"fmt"

	"github.com/chazu/abcasm/abc"
)

// ---------------------------------------------------------------------------
// Metadata
// ---------------------------------------------------------------------------

// Metadata is a metadata record such as [Event(name="change")]. Keys may be
// empty for positional values.
type Metadata struct {
	Name   string
	Keys   []string
	Values []string
}

// NewMetadata creates an empty metadata record.
func NewMetadata(name string) *Metadata {
	return &Metadata{Name: name}
}

// Add appends a key/value pair.
func (m *Metadata) Add(key, value string) {
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, value)
}

// Lookup returns the value of the first entry with key.
func (m *Metadata) Lookup(key string) (string, bool) {
	for i, k := range m.Keys {
		if k == key {
			return m.Values[i], true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Trait
// ---------------------------------------------------------------------------

// Trait is a member record of a class, instance, script or activation:
// a slot, const, method, getter, setter, function or class.
type Trait struct {
	Kind       int         // abc.TraitSlot .. abc.TraitConst
	Name       *Name       // trait name, a QName
	Attributes int         // abc.TraitFinal | abc.TraitOverride
	SlotID     int         // slot or disp id, 0 lets the VM assign one
	TypeName   *Name       // slot and const type, nil for any
	Value      PooledValue // slot and const default
	HasValue   bool        // Value was supplied
	Method     *MethodInfo // method, getter, setter and function traits
	Class      *ClassInfo  // class traits
	Metadata   []*Metadata
}

// NewSlotTrait creates a slot (or const) trait.
func NewSlotTrait(kind int, name *Name, slotID int, typeName *Name) *Trait {
	if kind != abc.TraitSlot && kind != abc.TraitConst {
		panic(fmt.Sprintf("NewSlotTrait: kind %d is not a slot kind", kind))
	}
	return &Trait{Kind: kind, Name: name, SlotID: slotID, TypeName: typeName}
}

// NewMethodTrait creates a method, getter, setter or function trait.
func NewMethodTrait(kind int, name *Name, m *MethodInfo) *Trait {
	switch kind {
	case abc.TraitMethod, abc.TraitGetter, abc.TraitSetter, abc.TraitFunction:
	default:
		panic(fmt.Sprintf("NewMethodTrait: kind %d is not a method kind", kind))
	}
	return &Trait{Kind: kind, Name: name, Method: m}
}

// NewClassTrait creates a class trait.
func NewClassTrait(name *Name, slotID int, c *ClassInfo) *Trait {
	return &Trait{Kind: abc.TraitClass, Name: name, SlotID: slotID, Class: c}
}

// SetValue records the default value of a slot or const trait.
func (t *Trait) SetValue(v PooledValue) {
	t.Value = v
	t.HasValue = true
}

// IsSlot reports whether the trait occupies a slot.
func (t *Trait) IsSlot() bool {
	return t.Kind == abc.TraitSlot || t.Kind == abc.TraitConst || t.Kind == abc.TraitClass
}

// KindByte returns the encoded kind byte: kind in the low nibble and
// attributes in the high nibble.
func (t *Trait) KindByte() int {
	attrs := t.Attributes
	if len(t.Metadata) > 0 {
		attrs |= abc.TraitMetadata
	}
	return t.Kind | attrs<<4
}

func (t *Trait) String() string {
	return fmt.Sprintf("%s %s", traitKindName(t.Kind), t.Name)
}

func traitKindName(kind int) string {
	switch kind {
	case abc.TraitSlot:
		return "slot"
	case abc.TraitMethod:
		return "method"
	case abc.TraitGetter:
		return "getter"
	case abc.TraitSetter:
		return "setter"
	case abc.TraitClass:
		return "class"
	case abc.TraitFunction:
		return "function"
	case abc.TraitConst:
		return "const"
	}
	return fmt.Sprintf("trait(%d)", kind)
}

// ---------------------------------------------------------------------------
// Traits: an ordered trait list
// ---------------------------------------------------------------------------

// Traits is an ordered list of traits.
type Traits struct {
	traits []*Trait
}

// NewTraits creates an empty list.
func NewTraits() *Traits {
	return &Traits{}
}

// Add appends t and returns it.
func (ts *Traits) Add(t *Trait) *Trait {
	ts.traits = append(ts.traits, t)
	return t
}

// Len returns the number of traits. A nil list is empty.
func (ts *Traits) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.traits)
}

// At returns the i'th trait.
func (ts *Traits) At(i int) *Trait { return ts.traits[i] }

// All returns the traits in declaration order.
func (ts *Traits) All() []*Trait {
	if ts == nil {
		return nil
	}
	return ts.traits
}

// Find returns the first trait named name, or nil.
func (ts *Traits) Find(name *Name) *Trait {
	for _, t := range ts.All() {
		if t.Name.Equal(name) {
			return t
		}
	}
	return nil
}

// MaxSlotID returns the highest explicit slot id among slot traits.
func (ts *Traits) MaxSlotID() int {
	max := 0
	for _, t := range ts.All() {
		if t.IsSlot() && t.SlotID > max {
			max = t.SlotID
		}
	}
	return max
}
