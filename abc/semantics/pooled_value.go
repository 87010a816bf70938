package semantics

import (
	"fmt"
	"math"

	"github.com/chazu/abcasm/abc"
)

// PooledValue is a constant-pool value used for slot defaults and optional
// parameter values: a value kind and its payload.
type PooledValue struct {
	kind  int
	value any // int32, uint32, float64, string, *Namespace, or nil
}

// NewIntValue creates an int pool value.
func NewIntValue(v int32) PooledValue { return PooledValue{abc.ConstantInt, v} }

// NewUIntValue creates a uint pool value.
func NewUIntValue(v uint32) PooledValue { return PooledValue{abc.ConstantUInt, v} }

// NewDoubleValue creates a double pool value.
func NewDoubleValue(v float64) PooledValue { return PooledValue{abc.ConstantDouble, v} }

// NewStringValue creates a string pool value.
func NewStringValue(v string) PooledValue { return PooledValue{abc.ConstantUtf8, v} }

// NewNamespaceValue creates a namespace pool value.
func NewNamespaceValue(ns *Namespace) PooledValue { return PooledValue{ns.Kind(), ns} }

// Singleton pool values.
var (
	TrueValue      = PooledValue{kind: abc.ConstantTrue}
	FalseValue     = PooledValue{kind: abc.ConstantFalse}
	NullValue      = PooledValue{kind: abc.ConstantNull}
	UndefinedValue = PooledValue{kind: abc.ConstantUndefined}
)

// Kind returns the value kind.
func (v PooledValue) Kind() int { return v.kind }

// Value returns the payload.
func (v PooledValue) Value() any { return v.value }

// IntValue returns the payload of an int value.
func (v PooledValue) IntValue() int32 { return v.value.(int32) }

// UIntValue returns the payload of a uint value.
func (v PooledValue) UIntValue() uint32 { return v.value.(uint32) }

// DoubleValue returns the payload of a double value.
func (v PooledValue) DoubleValue() float64 { return v.value.(float64) }

// StringValue returns the payload of a string value.
func (v PooledValue) StringValue() string { return v.value.(string) }

// NamespaceValue returns the payload of a namespace value.
func (v PooledValue) NamespaceValue() *Namespace { return v.value.(*Namespace) }

// Equal compares kind and payload. Doubles compare by bit pattern so that NaN
// pools to a single entry.
func (v PooledValue) Equal(o PooledValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch p := v.value.(type) {
	case float64:
		return math.Float64bits(p) == math.Float64bits(o.value.(float64))
	case *Namespace:
		return p.Equal(o.value.(*Namespace))
	}
	return v.value == o.value
}

// Hash returns a hash consistent with Equal.
func (v PooledValue) Hash() uint64 {
	h := uint64(v.kind)
	switch p := v.value.(type) {
	case int32:
		h = combineHash(h, uint64(uint32(p)))
	case uint32:
		h = combineHash(h, uint64(p))
	case float64:
		h = combineHash(h, math.Float64bits(p))
	case string:
		h = combineHash(h, hashString(p))
	case *Namespace:
		h = combineHash(h, p.Hash())
	}
	return h
}

func (v PooledValue) String() string {
	switch v.kind {
	case abc.ConstantTrue:
		return "true"
	case abc.ConstantFalse:
		return "false"
	case abc.ConstantNull:
		return "null"
	case abc.ConstantUndefined:
		return "undefined"
	case abc.ConstantUtf8:
		return fmt.Sprintf("%q", v.value)
	}
	return fmt.Sprint(v.value)
}
