package asm

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every *Error the assembler returns.
var ErrSyntax = errors.New("syntax error")

// Error is an assembly error at a source line.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// Unwrap returns ErrSyntax.
func (e *Error) Unwrap() error { return ErrSyntax }
