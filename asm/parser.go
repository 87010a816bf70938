package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/abcasm/abc"
	"github.com/chazu/abcasm/abc/semantics"
)

// ---------------------------------------------------------------------------
// Parser state
// ---------------------------------------------------------------------------

type parser struct {
	file string
	line int
	text string
	toks []token
	pos  int

	unit       *Unit
	methods    map[string]*semantics.MethodInfo
	defined    map[string]int // method name -> .method line
	methodRefs []methodRef
	classes    map[string]*semantics.ClassInfo
	privates   map[string]*semantics.Namespace

	cur *methodState
}

type methodRef struct {
	name string
	line int
}

// methodState tracks the method between .method and .end.
type methodState struct {
	method  *Method
	labels  map[string]*labelRef
	order   []*labelRef
	pending []pendingBranch
	src     strings.Builder
}

type labelRef struct {
	label   *semantics.Label
	defined int // line of the definition, 0 while undefined
	used    int // line of the first reference
}

type pendingBranch struct {
	insn *semantics.PendingInstruction
	ref  *labelRef
}

func newParser(file string) *parser {
	return &parser{
		file:     file,
		unit:     &Unit{File: file},
		methods:  make(map[string]*semantics.MethodInfo),
		defined:  make(map[string]int),
		classes:  make(map[string]*semantics.ClassInfo),
		privates: make(map[string]*semantics.Namespace),
	}
}

func (p *parser) errorf(format string, args ...any) *Error {
	return &Error{File: p.file, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) errorAt(line int, format string, args ...any) *Error {
	return &Error{File: p.file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// ---------------------------------------------------------------------------
// Token access
// ---------------------------------------------------------------------------

func (p *parser) peek() token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token{kind: tokenEOL}
}

func (p *parser) next() token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) accept(punct string) bool {
	if p.peek().is(punct) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(punct string) error {
	if t := p.next(); !t.is(punct) {
		return p.errorf("expected '%s', found %s", punct, t)
	}
	return nil
}

// expectIdent accepts an identifier or a quoted string.
func (p *parser) expectIdent(what string) (string, error) {
	t := p.next()
	if t.kind != tokenIdent && t.kind != tokenString {
		return "", p.errorf("expected %s, found %s", what, t)
	}
	return t.text, nil
}

func (p *parser) expectString() (string, error) {
	t := p.next()
	if t.kind != tokenString {
		return "", p.errorf("expected string, found %s", t)
	}
	return t.text, nil
}

func (p *parser) expectNumber(what string) (string, error) {
	t := p.next()
	if t.kind != tokenNumber {
		return "", p.errorf("expected %s, found %s", what, t)
	}
	return t.text, nil
}

func (p *parser) parseInt() (int, error) {
	text, err := p.expectNumber("integer")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return 0, p.errorf("malformed integer %s", text)
	}
	return int(v), nil
}

// parseInts reads n comma-separated integers.
func (p *parser) parseInts(n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		v, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Lines
// ---------------------------------------------------------------------------

func (p *parser) parseLine(line string) error {
	toks, err := scanLine(line)
	if err != nil {
		return p.errorf("%v", err)
	}
	p.text, p.toks, p.pos = line, toks, 0

	if len(toks) > 0 && toks[0].kind == tokenIdent && strings.HasPrefix(toks[0].text, ".") {
		return p.parseDirective()
	}
	if p.cur == nil {
		if len(toks) == 0 {
			return nil
		}
		return p.errorf("%s outside .method", toks[0])
	}
	p.cur.src.WriteString(line)
	p.cur.src.WriteByte('\n')
	if len(toks) == 0 {
		return nil
	}

	if toks[0].kind == tokenIdent && len(toks) > 1 && toks[1].is(":") {
		p.pos = 2
		if err := p.defineLabel(toks[0].text); err != nil {
			return err
		}
		if p.atEnd() {
			return nil
		}
	}
	return p.parseInstruction()
}

// ---------------------------------------------------------------------------
// Directives
// ---------------------------------------------------------------------------

func (p *parser) parseDirective() error {
	d := p.next().text
	if d != ".method" {
		if p.cur == nil {
			return p.errorf("%s outside .method", d)
		}
		p.cur.src.WriteString(p.text)
		p.cur.src.WriteByte('\n')
	}
	switch d {
	case ".method":
		return p.parseMethod()
	case ".end":
		if !p.atEnd() {
			return p.errorf("unexpected %s after .end", p.peek())
		}
		return p.endMethod()
	case ".try":
		return p.parseTry()
	case ".slot":
		return p.parseSlot()
	}
	return p.errorf("unknown directive %s", d)
}

// parseMethod handles
//
//	.method NAME [params=N] [flags=f,...] [init_scope=N] [returns=NAME]
//	        [max_stack=N] [max_scope=N] [locals=N] [slots=N]
func (p *parser) parseMethod() error {
	if p.cur != nil {
		return p.errorf(".method inside method %s", p.cur.method.Name)
	}
	name, err := p.expectIdent("method name")
	if err != nil {
		return err
	}
	if line, dup := p.defined[name]; dup {
		return p.errorf("duplicate method %s (first defined at line %d)", name, line)
	}
	p.defined[name] = p.line

	info := p.methodInfo(name)
	body := semantics.NewMethodBodyInfo()
	body.SetMethodInfo(info)
	m := &Method{Name: name, Line: p.line, Info: info, Body: body}

	for !p.atEnd() {
		key, err := p.expectIdent("method attribute")
		if err != nil {
			return err
		}
		if err := p.expect("="); err != nil {
			return err
		}
		if err := p.methodAttribute(m, key); err != nil {
			return err
		}
	}

	p.cur = &methodState{method: m, labels: make(map[string]*labelRef)}
	p.cur.src.WriteString(p.text)
	p.cur.src.WriteByte('\n')
	return nil
}

func (p *parser) methodAttribute(m *Method, key string) error {
	if key == "flags" {
		for {
			f, err := p.expectIdent("method flag")
			if err != nil {
				return err
			}
			flag, ok := semantics.MethodFlagByName(f)
			if !ok {
				return p.errorf("unknown method flag %s", f)
			}
			m.Info.AddFlags(flag)
			if !p.accept(",") {
				return nil
			}
		}
	}
	if key == "returns" {
		n, err := p.parseName()
		if err != nil {
			return err
		}
		m.Info.SetReturnType(n)
		return nil
	}

	v, err := p.parseInt()
	if err != nil {
		return err
	}
	if v < 0 {
		return p.errorf("%s must not be negative", key)
	}
	switch key {
	case "params":
		m.Info.SetParamCount(v)
	case "init_scope":
		m.Body.SetInitScopeDepth(v)
	case "max_stack":
		m.Body.SetMaxStack(v)
	case "max_scope":
		m.Body.SetMaxScopeDepth(v)
	case "locals":
		m.Body.SetLocalCount(v)
	case "slots":
		m.Body.SetMaxSlotCount(v)
	default:
		return p.errorf("unknown method attribute %s", key)
	}
	return nil
}

func (p *parser) endMethod() error {
	st := p.cur
	for _, ref := range st.order {
		if ref.defined == 0 {
			return p.errorAt(ref.used, "undefined label %s", ref.label.Name())
		}
	}
	for _, pb := range st.pending {
		pb.insn.ResolveTarget(pb.ref.label)
	}
	st.method.Source = st.src.String()
	p.unit.Methods = append(p.unit.Methods, st.method)
	p.cur = nil
	return nil
}

// parseTry handles .try FROM TO TARGET [type=NAME] [var=NAME].
func (p *parser) parseTry() error {
	var labels [3]*semantics.Label
	for i, what := range []string{"region start label", "region end label", "handler label"} {
		name, err := p.expectIdent(what)
		if err != nil {
			return err
		}
		labels[i] = p.cur.reference(name, p.line).label
	}

	var excType, catchVar *semantics.Name
	for !p.atEnd() {
		key, err := p.expectIdent("handler attribute")
		if err != nil {
			return err
		}
		if err := p.expect("="); err != nil {
			return err
		}
		n, err := p.parseName()
		if err != nil {
			return err
		}
		switch key {
		case "type":
			excType = n
		case "var":
			catchVar = n
		default:
			return p.errorf("unknown handler attribute %s", key)
		}
	}
	p.cur.method.Body.AddExceptionInfo(semantics.NewExceptionInfo(labels[0], labels[1], labels[2], excType, catchVar))
	return nil
}

// parseSlot handles .slot NAME [id=N] [type=NAME], an activation slot.
func (p *parser) parseSlot() error {
	name, err := p.parseName()
	if err != nil {
		return err
	}
	id := 0
	var typ *semantics.Name
	for !p.atEnd() {
		key, err := p.expectIdent("slot attribute")
		if err != nil {
			return err
		}
		if err := p.expect("="); err != nil {
			return err
		}
		switch key {
		case "id":
			if id, err = p.parseInt(); err != nil {
				return err
			}
		case "type":
			if typ, err = p.parseName(); err != nil {
				return err
			}
		default:
			return p.errorf("unknown slot attribute %s", key)
		}
	}
	p.cur.method.Body.Traits().Add(semantics.NewSlotTrait(abc.TraitSlot, name, id, typ))
	return nil
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// reference returns the label named name, creating it on first use.
func (st *methodState) reference(name string, line int) *labelRef {
	if ref, ok := st.labels[name]; ok {
		return ref
	}
	ref := &labelRef{label: semantics.NewNamedLabel(name), used: line}
	st.labels[name] = ref
	st.order = append(st.order, ref)
	return ref
}

func (p *parser) defineLabel(name string) error {
	ref := p.cur.reference(name, p.line)
	if ref.defined != 0 {
		return p.errorf("duplicate label %s (first defined at line %d)", name, ref.defined)
	}
	ref.defined = p.line
	p.cur.method.Body.LabelNext(ref.label)
	return nil
}

// ---------------------------------------------------------------------------
// Unit-wide references
// ---------------------------------------------------------------------------

func (p *parser) methodInfo(name string) *semantics.MethodInfo {
	if m, ok := p.methods[name]; ok {
		return m
	}
	m := semantics.NewMethodInfo(name)
	p.methods[name] = m
	return m
}

func (p *parser) referenceMethod(name string) *semantics.MethodInfo {
	if _, ok := p.defined[name]; !ok {
		p.methodRefs = append(p.methodRefs, methodRef{name, p.line})
	}
	return p.methodInfo(name)
}

func (p *parser) referenceClass(name string) *semantics.ClassInfo {
	if c, ok := p.classes[name]; ok {
		return c
	}
	c := semantics.NewClassInfo(semantics.NewInstanceInfo(semantics.NewPublicName(name), nil))
	p.classes[name] = c
	p.unit.Classes = append(p.unit.Classes, c)
	return c
}

// private returns the unit's private namespace called name. Within a unit
// every mention of a private namespace name denotes the same namespace.
func (p *parser) private(name string) *semantics.Namespace {
	if ns, ok := p.privates[name]; ok {
		return ns
	}
	ns := semantics.NewPrivateNamespace(name)
	p.privates[name] = ns
	return ns
}

func (p *parser) finish() error {
	if p.cur != nil {
		return p.errorAt(p.cur.method.Line, "method %s: missing .end", p.cur.method.Name)
	}
	for _, ref := range p.methodRefs {
		if _, ok := p.defined[ref.name]; !ok {
			return p.errorAt(ref.line, "undefined method %s", ref.name)
		}
	}
	return nil
}
