package semantics

import (
	"fmt"
	"strings"

	"github.com/chazu/abcasm/abc"
)

// MethodInfo is a method signature record: parameter and return types,
// flags, optional parameter defaults and parameter names.
type MethodInfo struct {
	name       string
	paramTypes []*Name // nil entries are the any type
	returnType *Name
	flags      int
	defaults   []PooledValue
	paramNames []string
}

// NewMethodInfo creates a method with no parameters.
func NewMethodInfo(name string) *MethodInfo {
	return &MethodInfo{name: name}
}

// Name returns the method's debug name.
func (m *MethodInfo) Name() string { return m.name }

// SetName sets the method's debug name.
func (m *MethodInfo) SetName(name string) { m.name = name }

// AddParam appends a parameter with the given type (nil for any).
func (m *MethodInfo) AddParam(typ *Name) {
	m.paramTypes = append(m.paramTypes, typ)
}

// SetParamCount resizes the parameter list, filling new entries with the
// any type.
func (m *MethodInfo) SetParamCount(n int) {
	for len(m.paramTypes) < n {
		m.paramTypes = append(m.paramTypes, nil)
	}
	m.paramTypes = m.paramTypes[:n]
}

// ParamTypes returns the parameter types.
func (m *MethodInfo) ParamTypes() []*Name { return m.paramTypes }

// ParamCount returns the number of declared parameters.
func (m *MethodInfo) ParamCount() int { return len(m.paramTypes) }

// ReturnType returns the return type, nil for any.
func (m *MethodInfo) ReturnType() *Name { return m.returnType }

// SetReturnType sets the return type.
func (m *MethodInfo) SetReturnType(n *Name) { m.returnType = n }

// Flags returns the method flags.
func (m *MethodInfo) Flags() int { return m.flags }

// SetFlags replaces the method flags.
func (m *MethodInfo) SetFlags(flags int) { m.flags = flags }

// AddFlags sets the given flag bits.
func (m *MethodInfo) AddFlags(flags int) { m.flags |= flags }

// HasFlag reports whether every bit of flag is set.
func (m *MethodInfo) HasFlag(flag int) bool { return m.flags&flag == flag }

// NeedsRest reports whether the method takes a rest parameter.
func (m *MethodInfo) NeedsRest() bool { return m.HasFlag(abc.NeedRest) }

// NeedsArguments reports whether the method uses the arguments object.
func (m *MethodInfo) NeedsArguments() bool { return m.HasFlag(abc.NeedArguments) }

// NeedsActivation reports whether the method creates an activation object.
func (m *MethodInfo) NeedsActivation() bool { return m.HasFlag(abc.NeedActivation) }

// AddDefaultValue appends a default for the trailing optional parameters
// and sets HasOptional.
func (m *MethodInfo) AddDefaultValue(v PooledValue) {
	m.defaults = append(m.defaults, v)
	m.flags |= abc.HasOptional
}

// DefaultValues returns the optional parameter defaults.
func (m *MethodInfo) DefaultValues() []PooledValue { return m.defaults }

// SetParamNames records parameter names and sets HasParamNames.
func (m *MethodInfo) SetParamNames(names []string) {
	m.paramNames = names
	if len(names) > 0 {
		m.flags |= abc.HasParamNames
	}
}

// ParamNames returns the parameter names.
func (m *MethodInfo) ParamNames() []string { return m.paramNames }

// FlagNames lists the set flags by assembler name.
func (m *MethodInfo) FlagNames() []string {
	var out []string
	for _, f := range methodFlagNames {
		if m.flags&f.flag != 0 {
			out = append(out, f.name)
		}
	}
	return out
}

// MethodFlagByName returns the flag bit for an assembler flag name.
func MethodFlagByName(name string) (int, bool) {
	for _, f := range methodFlagNames {
		if f.name == name {
			return f.flag, true
		}
	}
	return 0, false
}

var methodFlagNames = []struct {
	name string
	flag int
}{
	{"need_arguments", abc.NeedArguments},
	{"need_activation", abc.NeedActivation},
	{"need_rest", abc.NeedRest},
	{"has_optional", abc.HasOptional},
	{"ignore_rest", abc.IgnoreRest},
	{"native", abc.Native},
	{"sets_dxns", abc.SetsDxns},
	{"has_param_names", abc.HasParamNames},
}

func (m *MethodInfo) String() string {
	params := make([]string, len(m.paramTypes))
	for i, p := range m.paramTypes {
		if p == nil {
			params[i] = "*"
		} else {
			params[i] = p.String()
		}
	}
	ret := "*"
	if m.returnType != nil {
		ret = m.returnType.String()
	}
	return fmt.Sprintf("%s(%s):%s", m.name, strings.Join(params, ", "), ret)
}
