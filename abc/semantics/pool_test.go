package semantics

import (
	"math"
	"testing"

	"github.com/chazu/abcasm/abc"
)

func TestPoolInterning(t *testing.T) {
	p := NewPool[*Name]()
	a := p.Add(NewPublicName("a"))
	b := p.Add(NewPublicName("b"))
	again := p.Add(NewPublicName("a"))

	if a != 0 || b != 1 || again != 0 {
		t.Errorf("expected indices 0, 1, 0, got %d, %d, %d", a, b, again)
	}
	if p.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", p.Len())
	}
	if idx, ok := p.Index(NewPublicName("b")); !ok || idx != 1 {
		t.Errorf("expected b at 1, got %d %v", idx, ok)
	}
	if _, ok := p.Index(NewPublicName("c")); ok {
		t.Error("expected c to be absent")
	}
}

func TestConstantPoolsPrivatePolicy(t *testing.T) {
	tests := []struct {
		merge bool
		want  int
	}{
		{false, 2},
		{true, 1},
	}
	for _, tt := range tests {
		cp := NewConstantPools(tt.merge)
		cp.AddNamespace(NewPrivateNamespace("Foo"))
		cp.AddNamespace(NewPrivateNamespace("Foo"))
		if got := cp.Namespaces.Len(); got != tt.want {
			t.Errorf("merge=%v: expected %d namespaces, got %d", tt.merge, tt.want, got)
		}
	}
}

func TestCollectInstructions(t *testing.T) {
	cp := NewConstantPools(false)
	cp.CollectInstructions([]*Instruction{
		GetOperandInstruction(abc.OpPushString, "hello"),
		GetOperandInstruction(abc.OpPushInt, int32(-5)),
		GetOperandInstruction(abc.OpPushUint, uint32(5)),
		GetOperandInstruction(abc.OpPushDouble, 2.5),
		GetOperandsInstruction(abc.OpCallPropVoid, NewPublicName("trace"), 1),
		GetOperandInstruction(abc.OpGetLex, NewName(abc.ConstantMultiname,
			NewNsset(NewPackageNamespace(""), NewPackageNamespace("flash.utils")), "Dictionary")),
		GetInstruction(abc.OpReturnVoid),
	})

	checks := []struct {
		name string
		got  int
		want int
	}{
		// hello, trace, Dictionary, flash.utils; the public name "" too.
		{"strings", cp.Strings.Len(), 5},
		{"ints", cp.Ints.Len(), 1},
		{"uints", cp.UInts.Len(), 1},
		{"doubles", cp.Doubles.Len(), 1},
		{"namespaces", cp.Namespaces.Len(), 2},
		{"nssets", cp.Nssets.Len(), 1},
		{"names", cp.Names.Len(), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
}

func TestPooledValueEquality(t *testing.T) {
	nan := NewDoubleValue(math.NaN())
	if !nan.Equal(NewDoubleValue(math.NaN())) {
		t.Error("expected NaN to pool to one entry")
	}
	if NewIntValue(1).Equal(NewUIntValue(1)) {
		t.Error("int and uint values compared equal")
	}
	if !TrueValue.Equal(TrueValue) || TrueValue.Equal(FalseValue) {
		t.Error("singleton values compare incorrectly")
	}
	if NewStringValue("a").Hash() != NewStringValue("a").Hash() {
		t.Error("equal strings hash differently")
	}

	cp := NewConstantPools(false)
	if idx := cp.AddValue(NullValue); idx != -1 {
		t.Errorf("expected null to have no pool index, got %d", idx)
	}
	if idx := cp.AddValue(NewIntValue(3)); idx != 0 {
		t.Errorf("expected first int at 0, got %d", idx)
	}
}
