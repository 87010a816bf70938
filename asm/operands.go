package asm

import (
	"strconv"

	"github.com/chazu/abcasm/abc"
	"github.com/chazu/abcasm/abc/semantics"
)

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

func (p *parser) parseInstruction() error {
	t := p.next()
	if t.kind != tokenIdent {
		return p.errorf("expected opcode, found %s", t)
	}
	op, ok := abc.OpcodeByName(t.text)
	if !ok {
		return p.errorf("unknown opcode %s", t.text)
	}
	if err := p.parseOperands(op); err != nil {
		return err
	}
	if !p.atEnd() {
		return p.errorf("unexpected %s after %s", p.peek(), t.text)
	}
	return nil
}

// parseOperands reads the operands of op according to its layout and
// appends the instruction to the current method.
func (p *parser) parseOperands(op int) error {
	mbi := p.cur.method.Body

	switch abc.OperandLayout(op) {
	case abc.OperandsNone:
		mbi.Insn(op)

	case abc.OperandsImmediate:
		v, err := p.parseInt()
		if err != nil {
			return err
		}
		mbi.InsnImm(op, v)

	case abc.OperandsLabel:
		name, err := p.expectIdent("label")
		if err != nil {
			return err
		}
		ref := p.cur.reference(name, p.line)
		if ref.defined != 0 {
			mbi.InsnTarget(op, ref.label)
			break
		}
		pending := mbi.InsnPending(semantics.GetTargetableInstruction(op))
		p.cur.pending = append(p.cur.pending, pendingBranch{pending, ref})

	case abc.OperandsSwitch:
		targets, err := p.parseSwitchTargets()
		if err != nil {
			return err
		}
		mbi.InsnOperands(op, targets...)

	case abc.OperandsName:
		n, err := p.parseName()
		if err != nil {
			return err
		}
		mbi.InsnOperand(op, n)

	case abc.OperandsNameArgc:
		n, err := p.parseName()
		if err != nil {
			return err
		}
		if err := p.expect(","); err != nil {
			return err
		}
		argc, err := p.parseInt()
		if err != nil {
			return err
		}
		mbi.InsnOperands(op, n, argc)

	case abc.OperandsString:
		s, err := p.expectString()
		if err != nil {
			return err
		}
		mbi.InsnOperand(op, s)

	case abc.OperandsInt:
		text, err := p.expectNumber("integer")
		if err != nil {
			return err
		}
		v, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return p.errorf("malformed int %s", text)
		}
		mbi.InsnOperand(op, int32(v))

	case abc.OperandsUint:
		text, err := p.expectNumber("unsigned integer")
		if err != nil {
			return err
		}
		v, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return p.errorf("malformed uint %s", text)
		}
		mbi.InsnOperand(op, uint32(v))

	case abc.OperandsDouble:
		text, err := p.expectNumber("number")
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return p.errorf("malformed double %s", text)
		}
		mbi.InsnOperand(op, v)

	case abc.OperandsNamespace:
		ns, err := p.parseNamespace()
		if err != nil {
			return err
		}
		mbi.InsnOperand(op, ns)

	case abc.OperandsMethod:
		name, err := p.expectIdent("method name")
		if err != nil {
			return err
		}
		mbi.InsnOperand(op, p.referenceMethod(name))

	case abc.OperandsMethodArgc:
		name, err := p.expectIdent("method name")
		if err != nil {
			return err
		}
		m := p.referenceMethod(name)
		if err := p.expect(","); err != nil {
			return err
		}
		argc, err := p.parseInt()
		if err != nil {
			return err
		}
		mbi.InsnOperands(op, m, argc)

	case abc.OperandsDispArgc:
		v, err := p.parseInts(2)
		if err != nil {
			return err
		}
		mbi.InsnOperands(op, v[0], v[1])

	case abc.OperandsClass:
		name, err := p.expectIdent("class name")
		if err != nil {
			return err
		}
		mbi.InsnOperand(op, p.referenceClass(name))

	case abc.OperandsRegisters:
		v, err := p.parseInts(2)
		if err != nil {
			return err
		}
		mbi.InsnPending(semantics.GetDeferredRegistersInstruction()).ResolveRegisters(v[0], v[1])

	case abc.OperandsDebug:
		// debug KIND, "NAME", REGISTER, EXTRA
		kind, err := p.parseInt()
		if err != nil {
			return err
		}
		if err := p.expect(","); err != nil {
			return err
		}
		name, err := p.expectString()
		if err != nil {
			return err
		}
		if err := p.expect(","); err != nil {
			return err
		}
		v, err := p.parseInts(2)
		if err != nil {
			return err
		}
		mbi.InsnOperands(op, kind, name, v[0], v[1])

	default:
		return p.errorf("%s: unsupported operand layout", abc.OpcodeName(op))
	}
	return nil
}

// parseSwitchTargets reads "DEFAULT, [CASE, ...]" and returns the labels,
// default first.
func (p *parser) parseSwitchTargets() ([]any, error) {
	name, err := p.expectIdent("default label")
	if err != nil {
		return nil, err
	}
	targets := []any{p.cur.reference(name, p.line).label}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	if err := p.expect("["); err != nil {
		return nil, err
	}
	for !p.accept("]") {
		if len(targets) > 1 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		name, err := p.expectIdent("case label")
		if err != nil {
			return nil, err
		}
		targets = append(targets, p.cur.reference(name, p.line).label)
	}
	return targets, nil
}

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

// parseName reads a multiname:
//
//	qname(NS, "x")          multiname("x", NS|NS)    rtqname("x")
//	rtqnamel                multinamel(NS|NS)        typename(BASE, PARAM)
//	x   "x"   *             public names
//
// A '@' after the constructor keyword selects the attribute form.
func (p *parser) parseName() (*semantics.Name, error) {
	t := p.next()
	switch {
	case t.kind == tokenString:
		return semantics.NewPublicName(t.text), nil
	case t.is("*"):
		return semantics.NewPublicName(semantics.AnyName), nil
	case t.kind != tokenIdent:
		return nil, p.errorf("expected name, found %s", t)
	}

	kinds, ok := nameConstructors[t.text]
	if !ok || !p.peek().is("(") && !p.peek().is("@") && t.text != "rtqnamel" {
		return semantics.NewPublicName(t.text), nil
	}
	kind := kinds[0]
	if p.accept("@") {
		if kinds[1] == 0 {
			return nil, p.errorf("%s has no attribute form", t.text)
		}
		kind = kinds[1]
	}

	switch t.text {
	case "rtqnamel":
		return semantics.NewName(kind, nil, ""), nil

	case "qname":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		ns, err := p.parseNamespace()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		base, wild, err := p.parseBaseName()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if wild {
			return semantics.NewAnyName(kind, semantics.NewNsset(ns)), nil
		}
		return semantics.NewName(kind, semantics.NewNsset(ns), base), nil

	case "multiname":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		base, wild, err := p.parseBaseName()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		set, err := p.parseNsset()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if wild {
			return semantics.NewAnyName(kind, set), nil
		}
		return semantics.NewName(kind, set, base), nil

	case "rtqname":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		base, wild, err := p.parseBaseName()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if wild {
			return semantics.NewAnyName(kind, nil), nil
		}
		return semantics.NewName(kind, nil, base), nil

	case "multinamel":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		set, err := p.parseNsset()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return semantics.NewName(kind, set, ""), nil
	}

	// typename(BASE, PARAM), PARAM '*' for any
	if err := p.expect("("); err != nil {
		return nil, err
	}
	base, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if base.IsTypeName() {
		return nil, p.errorf("typename base cannot be a typename")
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	var param *semantics.Name
	if !p.accept("*") {
		if param, err = p.parseName(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return semantics.NewTypeName(base, param), nil
}

// nameConstructors maps each constructor keyword to its plain and
// attribute kinds. A zero attribute kind has no attribute form.
var nameConstructors = map[string][2]int{
	"qname":      {abc.ConstantQName, abc.ConstantQNameA},
	"multiname":  {abc.ConstantMultiname, abc.ConstantMultinameA},
	"rtqname":    {abc.ConstantRTQName, abc.ConstantRTQNameA},
	"rtqnamel":   {abc.ConstantRTQNameL, abc.ConstantRTQNameLA},
	"multinamel": {abc.ConstantMultinameL, abc.ConstantMultinameLA},
	"typename":   {abc.ConstantTypeName, 0},
}

// parseBaseName reads a quoted or bare base name, or '*' for any.
func (p *parser) parseBaseName() (base string, wild bool, err error) {
	if p.accept("*") {
		return "", true, nil
	}
	base, err = p.expectIdent("base name")
	return base, false, err
}

// ---------------------------------------------------------------------------
// Namespaces
// ---------------------------------------------------------------------------

// parseNamespace reads a namespace:
//
//	public                 package:"a.b"       private[:"N"]
//	internal[:"a.b"]       protected[:"C"]     staticprotected[:"C"]
//	explicit:"N"           namespace:"uri"
func (p *parser) parseNamespace() (*semantics.Namespace, error) {
	t := p.next()
	if t.kind != tokenIdent {
		return nil, p.errorf("expected namespace, found %s", t)
	}
	if t.text == "public" {
		return semantics.NewPackageNamespace(""), nil
	}
	kind, ok := namespaceKinds[t.text]
	if !ok {
		return nil, p.errorf("unknown namespace kind %s", t.text)
	}

	name := ""
	if p.accept(":") {
		n, err := p.expectIdent("namespace name")
		if err != nil {
			return nil, err
		}
		name = n
	} else if kind == abc.ConstantPackageNs || kind == abc.ConstantNamespace || kind == abc.ConstantExplicitNamespace {
		return nil, p.errorf("%s namespace needs a name", t.text)
	}

	if kind == abc.ConstantPrivateNs {
		return p.private(name), nil
	}
	return semantics.NewNamespace(kind, name), nil
}

var namespaceKinds = map[string]int{
	"package":         abc.ConstantPackageNs,
	"private":         abc.ConstantPrivateNs,
	"internal":        abc.ConstantPackageInternalNs,
	"protected":       abc.ConstantProtectedNs,
	"staticprotected": abc.ConstantStaticProtectedNs,
	"explicit":        abc.ConstantExplicitNamespace,
	"namespace":       abc.ConstantNamespace,
}

// parseNsset reads NS ('|' NS)*.
func (p *parser) parseNsset() (*semantics.Nsset, error) {
	var list []*semantics.Namespace
	for {
		ns, err := p.parseNamespace()
		if err != nil {
			return nil, err
		}
		list = append(list, ns)
		if !p.accept("|") {
			return semantics.NewNsset(list...), nil
		}
	}
}
