// Package abc defines the constants of the ActionScript Byte Code (ABC)
// container format: opcodes, multiname kinds, namespace kinds, constant pool
// value kinds, trait kinds and method flags.
//
// The opcode table in this package is shared by the instruction factory,
// the frame-count pass, the textual assembler and the disassembler, so every
// opcode a front end can emit must have an entry here.
package abc

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Control flow and debugging
const (
	OpBkpt          = 0x01
	OpNop           = 0x02
	OpThrow         = 0x03
	OpGetSuper      = 0x04
	OpSetSuper      = 0x05
	OpDxns          = 0x06
	OpDxnsLate      = 0x07
	OpKill          = 0x08
	OpLabel         = 0x09
	OpIfNlt         = 0x0C
	OpIfNle         = 0x0D
	OpIfNgt         = 0x0E
	OpIfNge         = 0x0F
	OpJump          = 0x10
	OpIfTrue        = 0x11
	OpIfFalse       = 0x12
	OpIfEq          = 0x13
	OpIfNe          = 0x14
	OpIfLt          = 0x15
	OpIfLe          = 0x16
	OpIfGt          = 0x17
	OpIfGe          = 0x18
	OpIfStrictEq    = 0x19
	OpIfStrictNe    = 0x1A
	OpLookupSwitch  = 0x1B
	OpPushWith      = 0x1C
	OpPopScope      = 0x1D
	OpNextName      = 0x1E
	OpHasNext       = 0x1F
	OpPushNull      = 0x20
	OpPushUndefined = 0x21
	OpNextValue     = 0x23
	OpPushByte      = 0x24
	OpPushShort     = 0x25
	OpPushTrue      = 0x26
	OpPushFalse     = 0x27
	OpPushNaN       = 0x28
	OpPop           = 0x29
	OpDup           = 0x2A
	OpSwap          = 0x2B
	OpPushString    = 0x2C
	OpPushInt       = 0x2D
	OpPushUint      = 0x2E
	OpPushDouble    = 0x2F
	OpPushScope     = 0x30
	OpPushNamespace = 0x31
	OpHasNext2      = 0x32
)

// Domain memory access
const (
	OpLi8  = 0x35
	OpLi16 = 0x36
	OpLi32 = 0x37
	OpLf32 = 0x38
	OpLf64 = 0x39
	OpSi8  = 0x3A
	OpSi16 = 0x3B
	OpSi32 = 0x3C
	OpSf32 = 0x3D
	OpSf64 = 0x3E
)

// Calls and object construction
const (
	OpNewFunction    = 0x40
	OpCall           = 0x41
	OpConstruct      = 0x42
	OpCallMethod     = 0x43
	OpCallStatic     = 0x44
	OpCallSuper      = 0x45
	OpCallProperty   = 0x46
	OpReturnVoid     = 0x47
	OpReturnValue    = 0x48
	OpConstructSuper = 0x49
	OpConstructProp  = 0x4A
	OpCallPropLex    = 0x4C
	OpCallSuperVoid  = 0x4E
	OpCallPropVoid   = 0x4F
	OpSxi1           = 0x50
	OpSxi8           = 0x51
	OpSxi16          = 0x52
	OpApplyType      = 0x53
	OpNewObject      = 0x55
	OpNewArray       = 0x56
	OpNewActivation  = 0x57
	OpNewClass       = 0x58
	OpGetDescendants = 0x59
	OpNewCatch       = 0x5A
)

// Property and scope access
const (
	OpFindPropStrict  = 0x5D
	OpFindProperty    = 0x5E
	OpFindDef         = 0x5F
	OpGetLex          = 0x60
	OpSetProperty     = 0x61
	OpGetLocal        = 0x62
	OpSetLocal        = 0x63
	OpGetGlobalScope  = 0x64
	OpGetScopeObject  = 0x65
	OpGetProperty     = 0x66
	OpGetOuterScope   = 0x67
	OpInitProperty    = 0x68
	OpDeleteProperty  = 0x6A
	OpGetSlot         = 0x6C
	OpSetSlot         = 0x6D
	OpGetGlobalSlot   = 0x6E
	OpSetGlobalSlot   = 0x6F
)

// Conversions and coercions
const (
	OpConvertS    = 0x70
	OpEscXElem    = 0x71
	OpEscXAttr    = 0x72
	OpConvertI    = 0x73
	OpConvertU    = 0x74
	OpConvertD    = 0x75
	OpConvertB    = 0x76
	OpConvertO    = 0x77
	OpCheckFilter = 0x78
	OpCoerce      = 0x80
	OpCoerceB     = 0x81
	OpCoerceA     = 0x82
	OpCoerceI     = 0x83
	OpCoerceD     = 0x84
	OpCoerceS     = 0x85
	OpAsType      = 0x86
	OpAsTypeLate  = 0x87
	OpCoerceU     = 0x88
	OpCoerceO     = 0x89
)

// Arithmetic, logic and comparison
const (
	OpNegate        = 0x90
	OpIncrement     = 0x91
	OpIncLocal      = 0x92
	OpDecrement     = 0x93
	OpDecLocal      = 0x94
	OpTypeof        = 0x95
	OpNot           = 0x96
	OpBitNot        = 0x97
	OpAdd           = 0xA0
	OpSubtract      = 0xA1
	OpMultiply      = 0xA2
	OpDivide        = 0xA3
	OpModulo        = 0xA4
	OpLShift        = 0xA5
	OpRShift        = 0xA6
	OpURShift       = 0xA7
	OpBitAnd        = 0xA8
	OpBitOr         = 0xA9
	OpBitXor        = 0xAA
	OpEquals        = 0xAB
	OpStrictEquals  = 0xAC
	OpLessThan      = 0xAD
	OpLessEquals    = 0xAE
	OpGreaterThan   = 0xAF
	OpGreaterEquals = 0xB0
	OpInstanceOf    = 0xB1
	OpIsType        = 0xB2
	OpIsTypeLate    = 0xB3
	OpIn            = 0xB4
	OpIncrementI    = 0xC0
	OpDecrementI    = 0xC1
	OpIncLocalI     = 0xC2
	OpDecLocalI     = 0xC3
	OpNegateI       = 0xC4
	OpAddI          = 0xC5
	OpSubtractI     = 0xC6
	OpMultiplyI     = 0xC7
)

// Register shortcuts and debug pseudo-instructions
const (
	OpGetLocal0 = 0xD0
	OpGetLocal1 = 0xD1
	OpGetLocal2 = 0xD2
	OpGetLocal3 = 0xD3
	OpSetLocal0 = 0xD4
	OpSetLocal1 = 0xD5
	OpSetLocal2 = 0xD6
	OpSetLocal3 = 0xD7
	OpDebug     = 0xEF
	OpDebugLine = 0xF0
	OpDebugFile = 0xF1
	OpBkptLine  = 0xF2
	OpTimestamp = 0xF3
)

// ---------------------------------------------------------------------------
// Operand layouts
// ---------------------------------------------------------------------------

// Operands describes the operand layout of an opcode as it appears in the
// instruction stream and in assembler listings.
type Operands uint8

const (
	// OperandsNone opcodes take no operands and are shared singletons.
	OperandsNone Operands = iota
	// OperandsImmediate opcodes take one integer (register, slot, count, byte).
	OperandsImmediate
	// OperandsLabel opcodes take a single branch target.
	OperandsLabel
	// OperandsSwitch is lookupswitch: a default target plus case targets.
	OperandsSwitch
	// OperandsName opcodes take a multiname.
	OperandsName
	// OperandsNameArgc opcodes take a multiname and an argument count.
	OperandsNameArgc
	// OperandsString opcodes take a string pool value.
	OperandsString
	// OperandsInt is pushint.
	OperandsInt
	// OperandsUint is pushuint.
	OperandsUint
	// OperandsDouble is pushdouble.
	OperandsDouble
	// OperandsNamespace is pushnamespace.
	OperandsNamespace
	// OperandsMethod is newfunction.
	OperandsMethod
	// OperandsMethodArgc is callstatic.
	OperandsMethodArgc
	// OperandsDispArgc is callmethod: a dispatch id and an argument count.
	OperandsDispArgc
	// OperandsClass is newclass.
	OperandsClass
	// OperandsRegisters is hasnext2: two temporary registers.
	OperandsRegisters
	// OperandsDebug is the debug opcode: kind, name, register, extra.
	OperandsDebug
)

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name     string   // assembler mnemonic
	Operands Operands // operand layout
}

var opcodeTable = map[int]OpcodeInfo{
	OpBkpt:          {"bkpt", OperandsNone},
	OpNop:           {"nop", OperandsNone},
	OpThrow:         {"throw", OperandsNone},
	OpGetSuper:      {"getsuper", OperandsName},
	OpSetSuper:      {"setsuper", OperandsName},
	OpDxns:          {"dxns", OperandsString},
	OpDxnsLate:      {"dxnslate", OperandsNone},
	OpKill:          {"kill", OperandsImmediate},
	OpLabel:         {"label", OperandsNone},
	OpIfNlt:         {"ifnlt", OperandsLabel},
	OpIfNle:         {"ifnle", OperandsLabel},
	OpIfNgt:         {"ifngt", OperandsLabel},
	OpIfNge:         {"ifnge", OperandsLabel},
	OpJump:          {"jump", OperandsLabel},
	OpIfTrue:        {"iftrue", OperandsLabel},
	OpIfFalse:       {"iffalse", OperandsLabel},
	OpIfEq:          {"ifeq", OperandsLabel},
	OpIfNe:          {"ifne", OperandsLabel},
	OpIfLt:          {"iflt", OperandsLabel},
	OpIfLe:          {"ifle", OperandsLabel},
	OpIfGt:          {"ifgt", OperandsLabel},
	OpIfGe:          {"ifge", OperandsLabel},
	OpIfStrictEq:    {"ifstricteq", OperandsLabel},
	OpIfStrictNe:    {"ifstrictne", OperandsLabel},
	OpLookupSwitch:  {"lookupswitch", OperandsSwitch},
	OpPushWith:      {"pushwith", OperandsNone},
	OpPopScope:      {"popscope", OperandsNone},
	OpNextName:      {"nextname", OperandsNone},
	OpHasNext:       {"hasnext", OperandsNone},
	OpPushNull:      {"pushnull", OperandsNone},
	OpPushUndefined: {"pushundefined", OperandsNone},
	OpNextValue:     {"nextvalue", OperandsNone},
	OpPushByte:      {"pushbyte", OperandsImmediate},
	OpPushShort:     {"pushshort", OperandsImmediate},
	OpPushTrue:      {"pushtrue", OperandsNone},
	OpPushFalse:     {"pushfalse", OperandsNone},
	OpPushNaN:       {"pushnan", OperandsNone},
	OpPop:           {"pop", OperandsNone},
	OpDup:           {"dup", OperandsNone},
	OpSwap:          {"swap", OperandsNone},
	OpPushString:    {"pushstring", OperandsString},
	OpPushInt:       {"pushint", OperandsInt},
	OpPushUint:      {"pushuint", OperandsUint},
	OpPushDouble:    {"pushdouble", OperandsDouble},
	OpPushScope:     {"pushscope", OperandsNone},
	OpPushNamespace: {"pushnamespace", OperandsNamespace},
	OpHasNext2:      {"hasnext2", OperandsRegisters},

	OpLi8:  {"li8", OperandsNone},
	OpLi16: {"li16", OperandsNone},
	OpLi32: {"li32", OperandsNone},
	OpLf32: {"lf32", OperandsNone},
	OpLf64: {"lf64", OperandsNone},
	OpSi8:  {"si8", OperandsNone},
	OpSi16: {"si16", OperandsNone},
	OpSi32: {"si32", OperandsNone},
	OpSf32: {"sf32", OperandsNone},
	OpSf64: {"sf64", OperandsNone},

	OpNewFunction:    {"newfunction", OperandsMethod},
	OpCall:           {"call", OperandsImmediate},
	OpConstruct:      {"construct", OperandsImmediate},
	OpCallMethod:     {"callmethod", OperandsDispArgc},
	OpCallStatic:     {"callstatic", OperandsMethodArgc},
	OpCallSuper:      {"callsuper", OperandsNameArgc},
	OpCallProperty:   {"callproperty", OperandsNameArgc},
	OpReturnVoid:     {"returnvoid", OperandsNone},
	OpReturnValue:    {"returnvalue", OperandsNone},
	OpConstructSuper: {"constructsuper", OperandsImmediate},
	OpConstructProp:  {"constructprop", OperandsNameArgc},
	OpCallPropLex:    {"callproplex", OperandsNameArgc},
	OpCallSuperVoid:  {"callsupervoid", OperandsNameArgc},
	OpCallPropVoid:   {"callpropvoid", OperandsNameArgc},
	OpSxi1:           {"sxi1", OperandsNone},
	OpSxi8:           {"sxi8", OperandsNone},
	OpSxi16:          {"sxi16", OperandsNone},
	OpApplyType:      {"applytype", OperandsImmediate},
	OpNewObject:      {"newobject", OperandsImmediate},
	OpNewArray:       {"newarray", OperandsImmediate},
	OpNewActivation:  {"newactivation", OperandsNone},
	OpNewClass:       {"newclass", OperandsClass},
	OpGetDescendants: {"getdescendants", OperandsName},
	OpNewCatch:       {"newcatch", OperandsImmediate},

	OpFindPropStrict: {"findpropstrict", OperandsName},
	OpFindProperty:   {"findproperty", OperandsName},
	OpFindDef:        {"finddef", OperandsName},
	OpGetLex:         {"getlex", OperandsName},
	OpSetProperty:    {"setproperty", OperandsName},
	OpGetLocal:       {"getlocal", OperandsImmediate},
	OpSetLocal:       {"setlocal", OperandsImmediate},
	OpGetGlobalScope: {"getglobalscope", OperandsNone},
	OpGetScopeObject: {"getscopeobject", OperandsImmediate},
	OpGetProperty:    {"getproperty", OperandsName},
	OpGetOuterScope:  {"getouterscope", OperandsImmediate},
	OpInitProperty:   {"initproperty", OperandsName},
	OpDeleteProperty: {"deleteproperty", OperandsName},
	OpGetSlot:        {"getslot", OperandsImmediate},
	OpSetSlot:        {"setslot", OperandsImmediate},
	OpGetGlobalSlot:  {"getglobalslot", OperandsImmediate},
	OpSetGlobalSlot:  {"setglobalslot", OperandsImmediate},

	OpConvertS:    {"convert_s", OperandsNone},
	OpEscXElem:    {"esc_xelem", OperandsNone},
	OpEscXAttr:    {"esc_xattr", OperandsNone},
	OpConvertI:    {"convert_i", OperandsNone},
	OpConvertU:    {"convert_u", OperandsNone},
	OpConvertD:    {"convert_d", OperandsNone},
	OpConvertB:    {"convert_b", OperandsNone},
	OpConvertO:    {"convert_o", OperandsNone},
	OpCheckFilter: {"checkfilter", OperandsNone},
	OpCoerce:      {"coerce", OperandsName},
	OpCoerceB:     {"coerce_b", OperandsNone},
	OpCoerceA:     {"coerce_a", OperandsNone},
	OpCoerceI:     {"coerce_i", OperandsNone},
	OpCoerceD:     {"coerce_d", OperandsNone},
	OpCoerceS:     {"coerce_s", OperandsNone},
	OpAsType:      {"astype", OperandsName},
	OpAsTypeLate:  {"astypelate", OperandsNone},
	OpCoerceU:     {"coerce_u", OperandsNone},
	OpCoerceO:     {"coerce_o", OperandsNone},

	OpNegate:        {"negate", OperandsNone},
	OpIncrement:     {"increment", OperandsNone},
	OpIncLocal:      {"inclocal", OperandsImmediate},
	OpDecrement:     {"decrement", OperandsNone},
	OpDecLocal:      {"declocal", OperandsImmediate},
	OpTypeof:        {"typeof", OperandsNone},
	OpNot:           {"not", OperandsNone},
	OpBitNot:        {"bitnot", OperandsNone},
	OpAdd:           {"add", OperandsNone},
	OpSubtract:      {"subtract", OperandsNone},
	OpMultiply:      {"multiply", OperandsNone},
	OpDivide:        {"divide", OperandsNone},
	OpModulo:        {"modulo", OperandsNone},
	OpLShift:        {"lshift", OperandsNone},
	OpRShift:        {"rshift", OperandsNone},
	OpURShift:       {"urshift", OperandsNone},
	OpBitAnd:        {"bitand", OperandsNone},
	OpBitOr:         {"bitor", OperandsNone},
	OpBitXor:        {"bitxor", OperandsNone},
	OpEquals:        {"equals", OperandsNone},
	OpStrictEquals:  {"strictequals", OperandsNone},
	OpLessThan:      {"lessthan", OperandsNone},
	OpLessEquals:    {"lessequals", OperandsNone},
	OpGreaterThan:   {"greaterthan", OperandsNone},
	OpGreaterEquals: {"greaterequals", OperandsNone},
	OpInstanceOf:    {"instanceof", OperandsNone},
	OpIsType:        {"istype", OperandsName},
	OpIsTypeLate:    {"istypelate", OperandsNone},
	OpIn:            {"in", OperandsNone},
	OpIncrementI:    {"increment_i", OperandsNone},
	OpDecrementI:    {"decrement_i", OperandsNone},
	OpIncLocalI:     {"inclocal_i", OperandsImmediate},
	OpDecLocalI:     {"declocal_i", OperandsImmediate},
	OpNegateI:       {"negate_i", OperandsNone},
	OpAddI:          {"add_i", OperandsNone},
	OpSubtractI:     {"subtract_i", OperandsNone},
	OpMultiplyI:     {"multiply_i", OperandsNone},

	OpGetLocal0: {"getlocal0", OperandsNone},
	OpGetLocal1: {"getlocal1", OperandsNone},
	OpGetLocal2: {"getlocal2", OperandsNone},
	OpGetLocal3: {"getlocal3", OperandsNone},
	OpSetLocal0: {"setlocal0", OperandsNone},
	OpSetLocal1: {"setlocal1", OperandsNone},
	OpSetLocal2: {"setlocal2", OperandsNone},
	OpSetLocal3: {"setlocal3", OperandsNone},
	OpDebug:     {"debug", OperandsDebug},
	OpDebugLine: {"debugline", OperandsImmediate},
	OpDebugFile: {"debugfile", OperandsString},
	OpBkptLine:  {"bkptline", OperandsImmediate},
	OpTimestamp: {"timestamp", OperandsNone},
}

var opcodesByName = func() map[string]int {
	m := make(map[string]int, len(opcodeTable))
	for op, info := range opcodeTable {
		m[info.Name] = op
	}
	return m
}()

// Info returns the metadata for an opcode and whether the opcode is known.
func Info(op int) (OpcodeInfo, bool) {
	info, ok := opcodeTable[op]
	return info, ok
}

// IsKnown reports whether op is part of the instruction set.
func IsKnown(op int) bool {
	_, ok := opcodeTable[op]
	return ok
}

// OpcodeName returns the mnemonic for an opcode.
func OpcodeName(op int) string {
	if info, ok := opcodeTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("op_%02x", op)
}

// OpcodeByName returns the opcode for an assembler mnemonic.
func OpcodeByName(name string) (int, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

// OperandLayout returns the operand layout for an opcode.
// Unknown opcodes report OperandsNone.
func OperandLayout(op int) Operands {
	return opcodeTable[op].Operands
}

// Opcodes returns every known opcode in ascending order.
func Opcodes() []int {
	ops := make([]int, 0, len(opcodeTable))
	for op := 0; op < 256; op++ {
		if _, ok := opcodeTable[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// ---------------------------------------------------------------------------
// Multiname, namespace and value kinds
// ---------------------------------------------------------------------------

// Multiname kinds.
const (
	ConstantQName       = 0x07
	ConstantQNameA      = 0x0D
	ConstantRTQName     = 0x0F
	ConstantRTQNameA    = 0x10
	ConstantRTQNameL    = 0x11
	ConstantRTQNameLA   = 0x12
	ConstantMultiname   = 0x09
	ConstantMultinameA  = 0x0E
	ConstantMultinameL  = 0x1B
	ConstantMultinameLA = 0x1C
	ConstantTypeName    = 0x1D
)

// Namespace kinds.
const (
	ConstantNamespace         = 0x08
	ConstantPackageNs         = 0x16
	ConstantPackageInternalNs = 0x17
	ConstantProtectedNs       = 0x18
	ConstantExplicitNamespace = 0x19
	ConstantStaticProtectedNs = 0x1A
	ConstantPrivateNs         = 0x05
)

// Namespace set kind.
const ConstantNamespaceSet = 0x15

// Constant pool value kinds.
const (
	ConstantUndefined = 0x00
	ConstantUtf8      = 0x01
	ConstantInt       = 0x03
	ConstantUInt      = 0x04
	ConstantDouble    = 0x06
	ConstantFalse     = 0x0A
	ConstantTrue      = 0x0B
	ConstantNull      = 0x0C
)

// IsNamespaceKind reports whether kind is one of the namespace kinds.
func IsNamespaceKind(kind int) bool {
	switch kind {
	case ConstantNamespace, ConstantPackageNs, ConstantPackageInternalNs,
		ConstantProtectedNs, ConstantExplicitNamespace, ConstantStaticProtectedNs,
		ConstantPrivateNs:
		return true
	}
	return false
}

// IsNameKind reports whether kind is one of the multiname kinds.
func IsNameKind(kind int) bool {
	switch kind {
	case ConstantQName, ConstantQNameA, ConstantRTQName, ConstantRTQNameA,
		ConstantRTQNameL, ConstantRTQNameLA, ConstantMultiname, ConstantMultinameA,
		ConstantMultinameL, ConstantMultinameLA, ConstantTypeName:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Traits and methods
// ---------------------------------------------------------------------------

// Trait kinds.
const (
	TraitSlot     = 0
	TraitMethod   = 1
	TraitGetter   = 2
	TraitSetter   = 3
	TraitClass    = 4
	TraitFunction = 5
	TraitConst    = 6
)

// Trait attributes, stored in the upper nibble of the kind byte.
const (
	TraitFinal    = 0x01
	TraitOverride = 0x02
	TraitMetadata = 0x04
)

// Method flags.
const (
	NeedArguments  = 0x01
	NeedActivation = 0x02
	NeedRest       = 0x04
	HasOptional    = 0x08
	IgnoreRest     = 0x10
	Native         = 0x20
	SetsDxns       = 0x40
	HasParamNames  = 0x80
)

// Instance flags.
const (
	ClassSealed      = 0x01
	ClassFinal       = 0x02
	ClassInterface   = 0x04
	ClassProtectedNs = 0x08
)
