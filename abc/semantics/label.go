package semantics

import "fmt"

// unpositioned marks a Label that has not been placed yet.
const unpositioned = -1

// Label is a branch target and the join key between instructions and blocks.
// It acquires an instruction position exactly once.
type Label struct {
	name     string
	position int

	// anyInstruction labels may land on debug pseudo-instructions. Labels
	// without it only ever address executable code, so a run of debug
	// instructions in front of them can share their block.
	anyInstruction bool
}

// NewLabel creates an unpositioned label that must land on an executable
// instruction.
func NewLabel() *Label {
	return &Label{position: unpositioned}
}

// NewNamedLabel creates an unpositioned label with a name for listings.
func NewNamedLabel(name string) *Label {
	return &Label{name: name, position: unpositioned}
}

// NewAnyInstructionLabel creates a label that may land on any instruction,
// including debug pseudo-instructions.
func NewAnyInstructionLabel(name string) *Label {
	return &Label{name: name, position: unpositioned, anyInstruction: true}
}

// Name returns the label's listing name, which may be empty.
func (l *Label) Name() string { return l.name }

// Position returns the instruction position, or -1 if unpositioned.
func (l *Label) Position() int { return l.position }

// IsPositioned reports whether the label has been placed.
func (l *Label) IsPositioned() bool { return l.position != unpositioned }

// TargetsExecutableOnly reports whether the label must land on an executable
// instruction.
func (l *Label) TargetsExecutableOnly() bool { return !l.anyInstruction }

// SetPosition places the label. A label can only be placed once.
func (l *Label) SetPosition(pos int) {
	if l.position != unpositioned {
		panic(fmt.Sprintf("Label.SetPosition: %s already positioned at %d", l, l.position))
	}
	if pos < 0 {
		panic(fmt.Sprintf("Label.SetPosition: negative position %d", pos))
	}
	l.position = pos
}

// relocate shifts a placed label by delta when its instruction sequence is
// spliced into another list.
func (l *Label) relocate(delta int) {
	if l.position == unpositioned {
		panic(fmt.Sprintf("Label.relocate: %s is not positioned", l))
	}
	l.position += delta
}

// Compare orders labels by position. It is only meaningful for labels of
// the same instruction sequence.
func (l *Label) Compare(o *Label) int {
	switch {
	case l.position < o.position:
		return -1
	case l.position > o.position:
		return 1
	}
	return 0
}

func (l *Label) String() string {
	if l.name != "" {
		return l.name
	}
	if l.position == unpositioned {
		return "L?"
	}
	return fmt.Sprintf("L%d", l.position)
}

// SameLabel reports whether a and b are the same Label.
func SameLabel(a, b *Label) bool { return a == b }

// SamePosition reports whether a and b are placed at the same position.
// Distinct labels may alias one position after graph edits.
func SamePosition(a, b *Label) bool {
	return a != nil && b != nil && a.IsPositioned() && a.position == b.position
}
