package semantics

import (
	"fmt"

	"github.com/chazu/abcasm/abc"
)

// Diagnostics receives malformed-input reports from the frame-count pass.
// Reports never stop the pass.
type Diagnostics interface {
	OperandStackUnderflow(mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int)
	ScopeStackUnderflow(mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int)
}

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind int

const (
	StackUnderflow DiagnosticKind = iota
	ScopeUnderflow
)

func (k DiagnosticKind) String() string {
	switch k {
	case StackUnderflow:
		return "operand stack underflow"
	case ScopeUnderflow:
		return "scope stack underflow"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic is one recorded report.
type Diagnostic struct {
	Kind     DiagnosticKind
	Method   string
	Block    int // block number
	Index    int // instruction index within the block
	Position int // instruction position within the method
	Opcode   int
	Line     int // nearest preceding debugline, 0 if none
}

// NewDiagnostic describes the instruction at index in b.
func NewDiagnostic(kind DiagnosticKind, mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int) Diagnostic {
	d := Diagnostic{
		Kind:     kind,
		Block:    b.Number(),
		Index:    index,
		Position: b.Position() + index,
		Opcode:   b.At(index).Opcode(),
	}
	if mbi != nil && mbi.MethodInfo() != nil {
		d.Method = mbi.MethodInfo().Name()
	}
	if line, ok := g.DebugLineAt(b, index); ok {
		d.Line = line
	}
	return d
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s at %s (block %d, instruction %d)", d.Kind, abc.OpcodeName(d.Opcode), d.Block, d.Index)
	if d.Method != "" {
		s = d.Method + ": " + s
	}
	if d.Line > 0 {
		s = fmt.Sprintf("line %d: %s", d.Line, s)
	}
	return s
}

// DiagnosticList collects reports in the order they are made.
type DiagnosticList struct {
	Items []Diagnostic
}

func (dl *DiagnosticList) OperandStackUnderflow(mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int) {
	dl.Items = append(dl.Items, NewDiagnostic(StackUnderflow, mbi, g, b, index))
}

func (dl *DiagnosticList) ScopeStackUnderflow(mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int) {
	dl.Items = append(dl.Items, NewDiagnostic(ScopeUnderflow, mbi, g, b, index))
}

// Len returns the number of reports.
func (dl *DiagnosticList) Len() int { return len(dl.Items) }

// LogDiagnostics reports underflows as log warnings.
type LogDiagnostics struct{}

func (LogDiagnostics) OperandStackUnderflow(mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int) {
	log.Warning(NewDiagnostic(StackUnderflow, mbi, g, b, index).String())
}

func (LogDiagnostics) ScopeStackUnderflow(mbi *MethodBodyInfo, g *ControlFlowGraph, b *Block, index int) {
	log.Warning(NewDiagnostic(ScopeUnderflow, mbi, g, b, index).String())
}
