package decl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TypeExprError reports a malformed or unresolvable type expression.
type TypeExprError struct {
	Text   string
	Offset int
	Msg    string
}

func (e *TypeExprError) Error() string {
	return fmt.Sprintf("%s (in %q at offset %d)", e.Msg, e.Text, e.Offset)
}

type texprTok struct {
	text string
	off  int
}

func tokenizeTypeExpr(s string) ([]texprTok, error) {
	var toks []texprTok
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '_' || unicode.IsLetter(r):
			j := i + w
			for j < len(s) {
				r2, w2 := utf8.DecodeRuneInString(s[j:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				j += w2
			}
			toks = append(toks, texprTok{s[i:j], i})
			i = j
		case r >= '0' && r <= '9':
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			toks = append(toks, texprTok{s[i:j], i})
			i = j
		case strings.HasPrefix(s[i:], "::"), strings.HasPrefix(s[i:], "&&"):
			toks = append(toks, texprTok{s[i : i+2], i})
			i += 2
		case strings.ContainsRune("*&[]<>(),", r):
			toks = append(toks, texprTok{s[i : i+1], i})
			i++
		default:
			return nil, &TypeExprError{Text: s, Offset: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return toks, nil
}

type typeParser struct {
	u     *Unit
	scope DeclID
	text  string
	toks  []texprTok
	pos   int
}

// ParseType parses a type expression such as "const ns::foo*[4]",
// "unsigned long&&", "decltype(x)" or "subst<T, int>" and resolves its
// names from scope.
func (u *Unit) ParseType(scope DeclID, text string) (TypeID, error) {
	toks, err := tokenizeTypeExpr(text)
	if err != nil {
		return NoTypeID, err
	}
	p := &typeParser{u: u, scope: scope, text: text, toks: toks}
	t, err := p.parseType()
	if err != nil {
		return NoTypeID, err
	}
	if !p.eof() {
		return NoTypeID, p.errorf("unexpected %q after type", p.peek())
	}
	return t, nil
}

func (p *typeParser) eof() bool { return p.pos >= len(p.toks) }

func (p *typeParser) peek() string {
	if p.eof() {
		return ""
	}
	return p.toks[p.pos].text
}

func (p *typeParser) next() string {
	s := p.peek()
	p.pos++
	return s
}

func (p *typeParser) accept(s string) bool {
	if p.peek() == s && !p.eof() {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(s string) error {
	if !p.accept(s) {
		return p.errorf("expected %q, found %q", s, p.peek())
	}
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	off := len(p.text)
	if !p.eof() {
		off = p.toks[p.pos].off
	}
	return &TypeExprError{Text: p.text, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) acceptCV() bool {
	isConst := false
	for {
		switch {
		case p.accept("const"):
			isConst = true
		case p.accept("volatile"):
		default:
			return isConst
		}
	}
}

func (p *typeParser) parseType() (TypeID, error) {
	isConst := p.acceptCV()
	t, err := p.parseBase()
	if err != nil {
		return NoTypeID, err
	}
	if p.acceptCV() || isConst {
		t = p.u.WithConst(t)
	}
	for !p.eof() {
		switch p.peek() {
		case "*":
			p.next()
			t = p.u.PointerTo(t)
			if p.acceptCV() {
				t = p.u.WithConst(t)
			}
		case "&":
			p.next()
			t = p.u.LValueRefTo(t)
		case "&&":
			p.next()
			t = p.u.RValueRefTo(t)
		case "[":
			p.next()
			n, err := strconv.ParseUint(p.next(), 10, 64)
			if err != nil {
				return NoTypeID, p.errorf("array bound must be an integer")
			}
			if err := p.expect("]"); err != nil {
				return NoTypeID, err
			}
			t = p.u.ArrayOf(t, n)
		default:
			return t, nil
		}
	}
	return t, nil
}

func (p *typeParser) parseBase() (TypeID, error) {
	if IsBuiltinWord(p.peek()) {
		var words []string
		for IsBuiltinWord(p.peek()) {
			words = append(words, p.next())
		}
		name, ok := CanonicalBuiltin(words)
		if !ok {
			return NoTypeID, p.errorf("invalid builtin type %q", strings.Join(words, " "))
		}
		return p.u.Builtin(name)
	}
	switch kw := p.peek(); kw {
	case "decltype":
		p.next()
		if err := p.expect("("); err != nil {
			return NoTypeID, err
		}
		inner, err := p.parseDecltypeOperand()
		if err != nil {
			return NoTypeID, err
		}
		if err := p.expect(")"); err != nil {
			return NoTypeID, err
		}
		return p.u.Decltype(inner), nil
	case "subst":
		p.next()
		if err := p.expect("<"); err != nil {
			return NoTypeID, err
		}
		param, err := p.parseName()
		if err != nil {
			return NoTypeID, err
		}
		if d := p.u.Decl(param); d.Kind != KindTplTypeParam {
			return NoTypeID, p.errorf("%q is not a template type parameter", p.u.QualifiedNameOf(param))
		}
		if err := p.expect(","); err != nil {
			return NoTypeID, err
		}
		repl, err := p.parseType()
		if err != nil {
			return NoTypeID, err
		}
		if err := p.expect(">"); err != nil {
			return NoTypeID, err
		}
		return p.u.Subst(param, repl), nil
	case "struct", "class", "union", "enum":
		p.next()
		id, err := p.parseName()
		if err != nil {
			return NoTypeID, err
		}
		d := p.u.Decl(id)
		if (kw == "enum") != (d.Kind == KindEnum) || (d.Kind != KindEnum && d.Kind != KindRecord) {
			return NoTypeID, p.errorf("%q does not name a %s type", p.u.QualifiedNameOf(id), kw)
		}
		return p.u.Elaborated(d.Self), nil
	}
	id, err := p.parseName()
	if err != nil {
		return NoTypeID, err
	}
	d := p.u.Decl(id)
	if !d.Kind.IsTypeDecl() {
		return NoTypeID, p.errorf("%q does not name a type", p.u.QualifiedNameOf(id))
	}
	return d.Self, nil
}

// parseDecltypeOperand accepts either a variable, field or enumerator name,
// whose declared type is used, or a type.
func (p *typeParser) parseDecltypeOperand() (TypeID, error) {
	save := p.pos
	if id, err := p.parseName(); err == nil && (p.peek() == ")") {
		d := p.u.Decl(id)
		switch d.Kind {
		case KindVar, KindField:
			return d.Type, nil
		case KindEnumerator:
			return p.u.decls[d.Parent].Self, nil
		}
	}
	p.pos = save
	return p.parseType()
}

func (p *typeParser) parseName() (DeclID, error) {
	var sb strings.Builder
	if p.accept("::") {
		sb.WriteString("::")
	}
	for {
		tok := p.next()
		if tok == "" || !isIdent(tok) {
			p.pos--
			return NoDeclID, p.errorf("expected identifier, found %q", tok)
		}
		sb.WriteString(tok)
		if !p.accept("::") {
			break
		}
		sb.WriteString("::")
	}
	id, err := p.u.Lookup(p.scope, sb.String())
	if err != nil {
		return NoDeclID, &TypeExprError{Text: p.text, Offset: p.toks[max(p.pos-1, 0)].off, Msg: err.Error()}
	}
	return id, nil
}

func isIdent(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}
