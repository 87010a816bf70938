// Package wire encodes finished method bodies as canonical CBOR snapshots.
// Snapshots feed golden files and the compilation cache.
package wire

import "github.com/chazu/abcasm/abc/semantics"

// MethodSnapshot is the serializable result of compiling one method body.
type MethodSnapshot struct {
	Name         string            `cbor:"1,keyasint"`
	MaxStack     int               `cbor:"2,keyasint"`
	MaxScope     int               `cbor:"3,keyasint"`
	InitScope    int               `cbor:"4,keyasint"`
	LocalCount   int               `cbor:"5,keyasint"`
	MaxSlots     int               `cbor:"6,keyasint"`
	HasNewClass  bool              `cbor:"7,keyasint,omitempty"`
	Instructions []string          `cbor:"8,keyasint"`            // listing after local rewrites
	Handlers     []HandlerSnapshot `cbor:"9,keyasint,omitempty"`  // exception table
	EntryOrder   []int             `cbor:"10,keyasint"`           // block start positions
	FlowOrder    []int             `cbor:"11,keyasint"`           // block start positions, depth-first
	Diagnostics  []string          `cbor:"12,keyasint,omitempty"` // frame-count reports
}

// HandlerSnapshot is one exception-table entry by instruction position.
type HandlerSnapshot struct {
	From   int    `cbor:"1,keyasint"`
	To     int    `cbor:"2,keyasint"`
	Target int    `cbor:"3,keyasint"`
	Type   string `cbor:"4,keyasint,omitempty"` // empty catches anything
	Var    string `cbor:"5,keyasint,omitempty"`
	Live   bool   `cbor:"6,keyasint"`
}

// Snapshot captures mbi after ComputeFrameCounts. The body must not be
// finalized.
func Snapshot(mbi *semantics.MethodBodyInfo) *MethodSnapshot {
	s := &MethodSnapshot{
		MaxStack:    mbi.MaxStack(),
		MaxScope:    mbi.MaxScopeDepth(),
		InitScope:   mbi.InitScopeDepth(),
		LocalCount:  mbi.LocalCount(),
		MaxSlots:    mbi.MaxSlotCount(),
		HasNewClass: mbi.HasNewClass(),
	}
	if m := mbi.MethodInfo(); m != nil {
		s.Name = m.Name()
	}

	g := mbi.CFG()
	for _, b := range g.Blocks() {
		s.EntryOrder = append(s.EntryOrder, b.Position())
		for _, insn := range b.Instructions() {
			s.Instructions = append(s.Instructions, insn.String())
		}
	}
	for _, b := range g.BlocksInControlFlowOrder() {
		s.FlowOrder = append(s.FlowOrder, b.Position())
	}

	for _, e := range mbi.ExceptionInfos() {
		h := HandlerSnapshot{
			From:   e.From().Position(),
			To:     e.To().Position(),
			Target: e.Target().Position(),
			Live:   e.IsLive(),
		}
		if !e.IsCatchAll() {
			h.Type = e.ExceptionType().String()
		}
		if e.CatchVar() != nil {
			h.Var = e.CatchVar().String()
		}
		s.Handlers = append(s.Handlers, h)
	}
	return s
}

// AddDiagnostics records frame-count reports on the snapshot.
func (s *MethodSnapshot) AddDiagnostics(diags []semantics.Diagnostic) {
	for _, d := range diags {
		s.Diagnostics = append(s.Diagnostics, d.String())
	}
}
