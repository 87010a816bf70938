package semantics

import (
	"testing"

	"github.com/chazu/abcasm/abc"
)

func TestTraitsFind(t *testing.T) {
	ts := NewTraits()
	x := ts.Add(NewSlotTrait(abc.TraitSlot, NewPublicName("x"), 1, NewPublicName("int")))
	ts.Add(NewSlotTrait(abc.TraitConst, NewPublicName("y"), 3, nil))
	ts.Add(NewMethodTrait(abc.TraitMethod, NewPublicName("run"), NewMethodInfo("run")))

	if ts.Len() != 3 {
		t.Errorf("expected 3 traits, got %d", ts.Len())
	}
	if ts.Find(NewPublicName("x")) != x {
		t.Error("expected to find x")
	}
	if ts.Find(NewPublicName("z")) != nil {
		t.Error("expected z to be absent")
	}
	if ts.MaxSlotID() != 3 {
		t.Errorf("expected max slot id 3, got %d", ts.MaxSlotID())
	}

	var nilTraits *Traits
	if nilTraits.Len() != 0 || nilTraits.All() != nil {
		t.Error("expected nil trait list to be empty")
	}

	mustPanic(t, "slot trait with method kind", func() {
		NewSlotTrait(abc.TraitMethod, NewPublicName("m"), 0, nil)
	})
	mustPanic(t, "method trait with slot kind", func() {
		NewMethodTrait(abc.TraitSlot, NewPublicName("m"), nil)
	})
}

func TestTraitKindByte(t *testing.T) {
	tr := NewMethodTrait(abc.TraitGetter, NewPublicName("g"), NewMethodInfo("g"))
	tr.Attributes = abc.TraitOverride
	tr.Metadata = append(tr.Metadata, NewMetadata("Inline"))

	want := abc.TraitGetter | (abc.TraitOverride|abc.TraitMetadata)<<4
	if tr.KindByte() != want {
		t.Errorf("expected kind byte 0x%02x, got 0x%02x", want, tr.KindByte())
	}
}

func TestMetadataLookup(t *testing.T) {
	md := NewMetadata("Event")
	md.Add("name", "change")
	md.Add("", "positional")

	if v, ok := md.Lookup("name"); !ok || v != "change" {
		t.Errorf("expected name=change, got %q %v", v, ok)
	}
	if v, ok := md.Lookup(""); !ok || v != "positional" {
		t.Errorf("expected positional value, got %q %v", v, ok)
	}
}

func TestMethodInfoFlags(t *testing.T) {
	m := NewMethodInfo("f")
	m.AddParam(NewPublicName("int"))
	m.AddParam(nil)
	m.AddDefaultValue(NewIntValue(0))
	m.SetParamNames([]string{"a", "b"})
	m.AddFlags(abc.NeedRest)

	if !m.NeedsRest() || m.NeedsArguments() {
		t.Error("unexpected rest/arguments flags")
	}
	if !m.HasFlag(abc.HasOptional) || !m.HasFlag(abc.HasParamNames) {
		t.Error("expected optional and param-name flags to be set")
	}
	if got := m.String(); got != `f(qname(public, "int"), *):*` {
		t.Errorf("unexpected String(): %s", got)
	}
	if flag, ok := MethodFlagByName("need_activation"); !ok || flag != abc.NeedActivation {
		t.Error("expected need_activation flag")
	}
}

func TestClassInfo(t *testing.T) {
	ii := NewInstanceInfo(NewPublicName("Widget"), NewPublicName("Object"))
	ii.Flags = abc.ClassSealed
	ii.SetProtectedNamespace(NewNamespace(abc.ConstantProtectedNs, "Widget"))
	ci := NewClassInfo(ii)

	if !ci.Name().Equal(NewPublicName("Widget")) {
		t.Errorf("expected class name Widget, got %s", ci.Name())
	}
	if !ii.IsSealed() || ii.IsFinal() || ii.IsInterface() {
		t.Error("unexpected instance flags")
	}
	if ii.Flags&abc.ClassProtectedNs == 0 {
		t.Error("expected protected namespace flag")
	}

	si := NewScriptInfo(NewMethodInfo("script0"))
	si.Traits.Add(NewClassTrait(ci.Name(), 1, ci))
	if got := si.Classes(); len(got) != 1 || got[0] != ci {
		t.Errorf("expected script to define Widget, got %v", got)
	}
}
