package query

import (
	"strconv"
	"strings"

	"mirror/internal/diag"
	"mirror/internal/lexer"
	"mirror/internal/meta"
	"mirror/internal/source"
	"mirror/internal/token"
)

type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint // 0: без ограничения
}

// Parser: состояние разбора одного query-файла.
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	errors   uint
	lastSpan source.Span // span последнего съеденного токена
}

// Parse разбирает файл id. Операторы с синтаксическими ошибками
// пропускаются до ближайшей ';'.
func Parse(fs *source.FileSet, id source.FileID, opts Options) *File {
	f := fs.Get(id)
	p := &Parser{
		lx:   lexer.New(f, lexer.Options{Reporter: opts.Reporter}),
		file: f,
		opts: opts,
	}
	out := &File{ID: id, Path: f.Path}
	for !p.at(token.EOF) {
		if p.enough() {
			break
		}
		st, ok := p.parseStmt()
		if !ok {
			p.resync()
			continue
		}
		if st != nil {
			out.Stmts = append(out.Stmts, st)
		}
	}
	return out
}

// ParseSource is a convenience wrapper for inline query text.
func ParseSource(fs *source.FileSet, name, src string, opts Options) *File {
	return Parse(fs, fs.AddVirtual(name, []byte(src)), opts)
}

func (p *Parser) at(k token.Kind) bool { return p.lx.Peek().Kind == k }

func (p *Parser) enough() bool {
	return p.opts.MaxErrors != 0 && p.errors >= p.opts.MaxErrors
}

func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagSpan: у EOF пустой span в конце файла; привязываем ошибку к
// позиции сразу после последнего токена.
func (p *Parser) diagSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	p.errors++
	if p.opts.Reporter == nil || p.enough() && p.errors > p.opts.MaxErrors {
		return nil
	}
	return diag.ReportError(p.opts.Reporter, code, sp, msg)
}

func (p *Parser) err(code diag.Code, msg string) {
	if b := p.report(code, p.diagSpan(), msg); b != nil {
		b.Emit()
	}
}

// expect съедает токен k или сообщает об ошибке. Invalid-токены уже
// отрапортованы лексером, повторно не шумим.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	if !p.at(token.Invalid) {
		p.err(code, msg+", found "+p.lx.Peek().Kind.String())
	}
	return token.Token{Kind: token.Invalid, Span: p.diagSpan()}, false
}

func isStmtStart(k token.Kind) bool {
	return k == token.KwLet || k == token.KwPrint || k == token.KwAssert
}

// resync пропускает токены до ';' включительно или до начала следующего
// оператора.
func (p *Parser) resync() {
	for {
		switch k := p.lx.Peek().Kind; {
		case k == token.EOF || isStmtStart(k):
			return
		case k == token.Semicolon:
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) parseStmt() (*Stmt, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwPrint:
		return p.parseList(StmtPrint)
	case token.KwAssert:
		return p.parseList(StmtAssert)
	case token.Semicolon:
		p.advance()
		return nil, true
	case token.Invalid:
		p.advance()
		return nil, false
	}
	p.err(diag.SynUnexpectedToken, "expected 'let', 'print' or 'assert', found "+tok.Kind.String())
	return nil, false
}

func (p *Parser) parseLet() (*Stmt, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a name after 'let'")
	if !ok {
		return nil, false
	}
	if _, ok = p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after the bound name"); !ok {
		return nil, false
	}
	e, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after let")
	if !ok {
		return nil, false
	}
	return &Stmt{
		Kind:     StmtLet,
		Span:     kw.Span.Cover(semi.Span),
		Name:     name.Text,
		NameSpan: name.Span,
		Exprs:    []*Expr{e},
	}, true
}

// parseList разбирает print (список через запятую) и assert (одно
// выражение).
func (p *Parser) parseList(kind StmtKind) (*Stmt, bool) {
	kw := p.advance()
	st := &Stmt{Kind: kind}
	for {
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		st.Exprs = append(st.Exprs, e)
		if kind != StmtPrint || !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+kind.String())
	if !ok {
		return nil, false
	}
	st.Span = kw.Span.Cover(semi.Span)
	return st, true
}

// parseExpr: unary (('==' | '!=') unary)*
func (p *Parser) parseExpr() (*Expr, bool) {
	lhs, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for p.at(token.EqEq) || p.at(token.BangEq) {
		kind := ExprEq
		if p.advance().Kind == token.BangEq {
			kind = ExprNe
		}
		rhs, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		lhs = &Expr{Kind: kind, Span: lhs.Span.Cover(rhs.Span), Args: []*Expr{lhs, rhs}}
	}
	return lhs, true
}

func (p *Parser) parseUnary() (*Expr, bool) {
	if p.at(token.Bang) {
		bang := p.advance()
		x, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return &Expr{Kind: ExprNot, Span: bang.Span.Cover(x.Span), Args: []*Expr{x}}, true
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		v, err := parseInt(tok.Text)
		if err != nil {
			if b := p.report(diag.SynBadNumber, tok.Span, "integer literal "+tok.Text+" does not fit in 64 bits"); b != nil {
				b.Emit()
			}
			return nil, false
		}
		return &Expr{Kind: ExprInt, Span: tok.Span, Int: v}, true
	case token.StringLit:
		p.advance()
		return &Expr{Kind: ExprString, Span: tok.Span, Str: lexer.Unquote(tok.Text)}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &Expr{Kind: ExprBool, Span: tok.Span, Bool: tok.Kind == token.KwTrue}, true
	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			return p.parseCall(tok)
		}
		return &Expr{Kind: ExprName, Span: tok.Span, Name: tok.Text}, true
	case token.KwReflexpr:
		return p.parseReflexpr()
	case token.LParen:
		open := p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if !p.at(token.RParen) {
			p.unclosed(open)
			return nil, false
		}
		x.Span = open.Span.Cover(p.advance().Span)
		return x, true
	case token.Invalid:
		p.advance()
		return nil, false
	}
	p.err(diag.SynExpectExpression, "expected expression, found "+tok.Kind.String())
	return nil, false
}

func (p *Parser) unclosed(open token.Token) {
	if p.at(token.Invalid) {
		return
	}
	if b := p.report(diag.SynUnclosedParen, p.diagSpan(), "expected ')', found "+p.lx.Peek().Kind.String()); b != nil {
		b.WithNote(open.Span, "to match this '('").Emit()
	}
}

// parseCall: NAME '(' [expr (',' expr)*] ')'
func (p *Parser) parseCall(name token.Token) (*Expr, bool) {
	open := p.advance()
	call := &Expr{Kind: ExprCall, Name: name.Text, NameSpan: name.Span}
	if !p.at(token.RParen) {
		for {
			arg, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			call.Args = append(call.Args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if !p.at(token.RParen) {
		p.unclosed(open)
		return nil, false
	}
	call.Span = name.Span.Cover(p.advance().Span)
	return call, true
}

// parseReflexpr собирает токены операнда до парной ')' и классифицирует
// их по форме. Текст операнда берётся из исходника как есть и
// разрешается позже (Resolver).
func (p *Parser) parseReflexpr() (*Expr, bool) {
	kw := p.advance()
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after reflexpr")
	if !ok {
		return nil, false
	}
	var toks []token.Token
	colon, depth := -1, 0
	for {
		t := p.lx.Peek()
		switch t.Kind {
		case token.EOF, token.Semicolon:
			p.unclosed(open)
			return nil, false
		case token.Invalid:
			p.advance()
			return nil, false
		case token.LParen:
			depth++
		case token.RParen:
			if depth == 0 {
				closeTok := p.advance()
				arg, ok := p.classifyReflexpr(toks, colon)
				if !ok {
					return nil, false
				}
				arg.Span = open.Span.Cover(closeTok.Span)
				return &Expr{Kind: ExprReflect, Span: kw.Span.Cover(closeTok.Span), Reflect: arg}, true
			}
			depth--
		case token.Colon:
			if depth == 0 && colon < 0 {
				colon = len(toks)
			}
		}
		toks = append(toks, p.advance())
	}
}

func (p *Parser) classifyReflexpr(toks []token.Token, colon int) (*ReflectArg, bool) {
	switch {
	case len(toks) == 0, len(toks) == 1 && toks[0].Kind == token.ColonColon:
		return &ReflectArg{Form: ReflectGlobal}, true

	case toks[0].Kind == token.KwTypename:
		if len(toks) == 1 {
			p.badOperand(toks[0].Span, "expected a type after 'typename'")
			return nil, false
		}
		sp, text := p.spelling(toks[1:])
		return &ReflectArg{Form: ReflectTypeID, Text: text, TextSpan: sp}, true

	case colon >= 0:
		if colon == 0 || colon == len(toks)-1 {
			p.badOperand(toks[colon].Span, "base-specifier operand must be written as CLASS : BASE")
			return nil, false
		}
		csp, class := p.spelling(toks[:colon])
		bsp, base := p.spelling(toks[colon+1:])
		return &ReflectArg{Form: ReflectBase, Text: class, TextSpan: csp, Base: base, BaseSpan: bsp}, true

	case len(toks) == 1 && toks[0].Kind == token.Ident:
		if s, ok := meta.ParseSpecifier(toks[0].Text); ok {
			return &ReflectArg{Form: ReflectSpecifier, Spec: s, Text: toks[0].Text, TextSpan: toks[0].Span}, true
		}
	}
	sp, text := p.spelling(toks)
	return &ReflectArg{Form: ReflectEntity, Text: text, TextSpan: sp}, true
}

func (p *Parser) badOperand(sp source.Span, msg string) {
	if b := p.report(diag.SynBadReflexprArg, sp, msg); b != nil {
		b.Emit()
	}
}

// spelling возвращает исходный текст от первого до последнего токена.
func (p *Parser) spelling(toks []token.Token) (source.Span, string) {
	sp := toks[0].Span.Cover(toks[len(toks)-1].Span)
	return sp, string(p.file.Content[sp.Start:sp.End])
}

// parseInt понимает префиксы 0b/0o/0x и разделители '_'. Ведущий ноль
// без префикса не делает литерал восьмеричным.
func parseInt(text string) (uint64, error) {
	s := strings.ReplaceAll(text, "_", "")
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'b', 'B':
			base, s = 2, s[2:]
		case 'o', 'O':
			base, s = 8, s[2:]
		case 'x', 'X':
			base, s = 16, s[2:]
		}
	}
	return strconv.ParseUint(s, base, 64)
}
