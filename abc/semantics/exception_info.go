package semantics

import "fmt"

// ExceptionInfo is one exception-table entry: the region [From, To), the
// handler target, the caught type and the catch variable name.
type ExceptionInfo struct {
	from, to, target *Label
	excType          *Name
	catchVar         *Name
	live             bool
}

// NewExceptionInfo creates a live handler. A nil excType catches anything.
func NewExceptionInfo(from, to, target *Label, excType, catchVar *Name) *ExceptionInfo {
	if from == nil || to == nil || target == nil {
		panic("NewExceptionInfo: nil label")
	}
	return &ExceptionInfo{from: from, to: to, target: target, excType: excType, catchVar: catchVar, live: true}
}

// From returns the label at the start of the covered region.
func (e *ExceptionInfo) From() *Label { return e.from }

// To returns the label just past the end of the covered region.
func (e *ExceptionInfo) To() *Label { return e.to }

// Target returns the handler entry label.
func (e *ExceptionInfo) Target() *Label { return e.target }

// ExceptionType returns the caught type name, or nil.
func (e *ExceptionInfo) ExceptionType() *Name { return e.excType }

// CatchVar returns the catch variable name, or nil.
func (e *ExceptionInfo) CatchVar() *Name { return e.catchVar }

// IsCatchAll reports whether the handler catches every value.
func (e *ExceptionInfo) IsCatchAll() bool {
	return e.excType == nil || e.excType.CouldBeAnyType()
}

// IsLive reports whether the handler still covers code.
func (e *ExceptionInfo) IsLive() bool { return e.live }

// SetLive marks the handler live or dead.
func (e *ExceptionInfo) SetLive(live bool) { e.live = live }

// setFrom and setTo retarget the region after block removal.
func (e *ExceptionInfo) setFrom(l *Label) { e.from = l }
func (e *ExceptionInfo) setTo(l *Label)   { e.to = l }

func (e *ExceptionInfo) String() string {
	typ := "*"
	if e.excType != nil {
		typ = e.excType.String()
	}
	s := fmt.Sprintf("try %s..%s -> %s type=%s", e.from, e.to, e.target, typ)
	if e.catchVar != nil {
		s += " var=" + e.catchVar.String()
	}
	if !e.live {
		s += " (dead)"
	}
	return s
}
