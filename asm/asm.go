// Package asm parses textual ABC method listings into method bodies.
//
// A listing holds one or more methods:
//
//	# comment
//	.method main params=1 flags=need_rest init_scope=1
//	start:
//	    getlocal0
//	    pushscope
//	    pushbyte 1
//	    iftrue done
//	    findpropstrict qname(package:"flash.utils", "trace")
//	    pushstring "not taken"
//	    callpropvoid qname(package:"flash.utils", "trace"), 1
//	done:
//	    returnvoid
//	handler:
//	    pop
//	    returnvoid
//	.try start done handler type=Error var=e
//	.end
//
// Operands follow the opcode's layout: integers for immediates, label names
// for branches, multinames for property access, and "default, [cases...]"
// for lookupswitch. Branches may refer to labels defined later in the
// method.
package asm

import (
	"strings"

	"github.com/chazu/abcasm/abc/semantics"
)

// Unit is one parsed listing file.
type Unit struct {
	File    string
	Methods []*Method
	Classes []*semantics.ClassInfo // classes referenced by newclass
}

// Method is a method parsed from a listing.
type Method struct {
	Name   string
	Line   int // line of the .method directive
	Info   *semantics.MethodInfo
	Body   *semantics.MethodBodyInfo
	Source string // the listing text from .method to .end
}

// Method returns the method named name, or nil.
func (u *Unit) Method(name string) *Method {
	for _, m := range u.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Parse assembles src, read from filename, into a Unit. Errors are *Error
// values carrying the offending line.
func Parse(filename, src string) (*Unit, error) {
	p := newParser(filename)
	for i, line := range strings.Split(src, "\n") {
		p.line = i + 1
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.unit, nil
}
