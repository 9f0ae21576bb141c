package query

import (
	"fmt"
	"strings"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/metaobj"
	"mirror/internal/source"
)

// ResolveError is a reflexpr operand that names nothing in the unit.
type ResolveError struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *ResolveError) Error() string { return e.Msg }

// Resolver maps reflexpr operands onto declarations, types and
// base-specifiers of one unit. Names are looked up from the translation
// unit scope.
type Resolver struct {
	u *decl.Unit
}

func NewResolver(u *decl.Unit) *Resolver { return &Resolver{u: u} }

// Resolve returns the operand of the reflect-expression for arg.
func (r *Resolver) Resolve(arg *ReflectArg) (metaobj.Operand, error) {
	switch arg.Form {
	case ReflectGlobal:
		return metaobj.Operand{Arg: metaobj.ArgNothing}, nil
	case ReflectSpecifier:
		return metaobj.Operand{Arg: metaobj.ArgSpecifier, Spec: arg.Spec}, nil
	case ReflectTypeID:
		t, err := r.u.ParseType(r.u.TranslationUnit(), arg.Text)
		if err != nil {
			return metaobj.Operand{}, r.unresolved(arg.TextSpan, arg.Text, err)
		}
		return metaobj.Operand{Arg: metaobj.ArgType, Type: t}, nil
	case ReflectEntity:
		return r.entity(arg)
	case ReflectBase:
		return r.base(arg)
	}
	panic(fmt.Sprintf("query: bad reflexpr form %d", arg.Form))
}

// entity: объявление, если текст: имя объявления, иначе type-id.
func (r *Resolver) entity(arg *ReflectArg) (metaobj.Operand, error) {
	tu := r.u.TranslationUnit()
	id, lookupErr := r.u.Lookup(tu, arg.Text)
	if lookupErr == nil {
		return metaobj.Operand{Arg: metaobj.ArgDecl, Decl: id}, nil
	}
	t, typeErr := r.u.ParseType(tu, arg.Text)
	if typeErr == nil {
		return metaobj.Operand{Arg: metaobj.ArgType, Type: t}, nil
	}
	if isPlainName(arg.Text) {
		return metaobj.Operand{}, r.unresolved(arg.TextSpan, arg.Text, lookupErr)
	}
	return metaobj.Operand{}, r.unresolved(arg.TextSpan, arg.Text, typeErr)
}

// base finds the base-specifier of CLASS whose type denotes BASE.
func (r *Resolver) base(arg *ReflectArg) (metaobj.Operand, error) {
	id, err := r.u.Lookup(r.u.TranslationUnit(), arg.Text)
	if err != nil {
		return metaobj.Operand{}, r.unresolved(arg.TextSpan, arg.Text, err)
	}
	class := r.recordOf(r.u.TypeForDecl(id))
	if d := r.u.Decl(id); d.Kind == decl.KindRecord {
		class = id
	}
	if !class.IsValid() {
		return metaobj.Operand{}, &ResolveError{
			Code: diag.RefNoBaseSpecifier,
			Span: arg.TextSpan,
			Msg:  fmt.Sprintf("%q is not a class", arg.Text),
		}
	}
	bt, err := r.u.ParseType(r.u.DeclContextOf(class), arg.Base)
	if err != nil {
		return metaobj.Operand{}, r.unresolved(arg.BaseSpan, arg.Base, err)
	}
	want := r.u.Desugar(bt)
	wantDecl := r.recordOf(bt)
	for _, b := range r.u.BasesOf(class) {
		bs := r.u.Base(b)
		if r.u.Desugar(bs.Type) == want || wantDecl.IsValid() && r.recordOf(bs.Type) == wantDecl {
			return metaobj.Operand{Arg: metaobj.ArgBase, Base: b}, nil
		}
	}
	return metaobj.Operand{}, &ResolveError{
		Code: diag.RefNoBaseSpecifier,
		Span: arg.BaseSpan,
		Msg:  fmt.Sprintf("%s has no base-specifier naming %q", r.u.QualifiedNameOf(class), arg.Base),
	}
}

// recordOf returns the record a type denotes after desugaring.
func (r *Resolver) recordOf(t decl.TypeID) decl.DeclID {
	if !t.IsValid() {
		return decl.NoDeclID
	}
	tt := r.u.Type(r.u.Desugar(t))
	if tt == nil || tt.Kind != decl.TypeRecord {
		return decl.NoDeclID
	}
	return tt.Decl
}

func (r *Resolver) unresolved(sp source.Span, text string, err error) *ResolveError {
	return &ResolveError{
		Code: diag.RefUnresolvedEntity,
		Span: sp,
		Msg:  fmt.Sprintf("cannot reflect %q: %v", text, err),
	}
}

// isPlainName reports whether s is a possibly qualified identifier.
func isPlainName(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "::")
	for seg := range strings.SplitSeq(s, "::") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return false
		}
		for i, c := range seg {
			if c != '_' && !isLetter(c) && (i == 0 || c < '0' || c > '9') {
				return false
			}
		}
	}
	return true
}

func isLetter(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
