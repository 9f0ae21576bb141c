package query

import (
	"mirror/internal/meta"
	"mirror/internal/source"
)

// StmtKind различает операторы query-файла.
type StmtKind uint8

const (
	StmtLet StmtKind = iota + 1
	StmtPrint
	StmtAssert
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "let"
	case StmtPrint:
		return "print"
	case StmtAssert:
		return "assert"
	}
	return "stmt?"
}

// Stmt: один оператор. Для let Name/NameSpan заданы и Exprs содержит
// ровно одно выражение.
type Stmt struct {
	Kind     StmtKind
	Span     source.Span
	Name     string
	NameSpan source.Span
	Exprs    []*Expr
}

// ExprKind: вид узла выражения.
type ExprKind uint8

const (
	ExprInt ExprKind = iota + 1
	ExprString
	ExprBool
	ExprName
	ExprNot
	ExprEq
	ExprNe
	ExprCall
	ExprReflect
)

// Expr is one expression node. Only the fields of its Kind are set:
//
//	ExprInt      Int
//	ExprString   Str (unquoted)
//	ExprBool     Bool
//	ExprName     Name
//	ExprNot      Args[0]
//	ExprEq/Ne    Args[0], Args[1]
//	ExprCall     Name (operation spelling), NameSpan, Args
//	ExprReflect  Reflect
type Expr struct {
	Kind     ExprKind
	Span     source.Span
	Int      uint64
	Str      string
	Bool     bool
	Name     string
	NameSpan source.Span
	Args     []*Expr
	Reflect  *ReflectArg
}

// ReflectForm: форма операнда reflexpr.
type ReflectForm uint8

const (
	ReflectGlobal    ReflectForm = iota + 1 // reflexpr() или reflexpr(::)
	ReflectSpecifier                        // reflexpr(struct)
	ReflectTypeID                           // reflexpr(typename T)
	ReflectEntity                           // reflexpr(X): объявление, если X его называет, иначе тип
	ReflectBase                             // reflexpr(CLASS : BASE)
)

func (f ReflectForm) String() string {
	switch f {
	case ReflectGlobal:
		return "global scope"
	case ReflectSpecifier:
		return "specifier"
	case ReflectTypeID:
		return "type-id"
	case ReflectEntity:
		return "entity"
	case ReflectBase:
		return "base-specifier"
	}
	return "?"
}

// ReflectArg is the unresolved operand of reflexpr. Text is the source
// spelling; for ReflectBase Text names the class and Base the base type.
type ReflectArg struct {
	Form     ReflectForm
	Span     source.Span
	Spec     meta.SpecToken
	Text     string
	TextSpan source.Span
	Base     string
	BaseSpan source.Span
}

// File is a parsed query file.
type File struct {
	ID    source.FileID
	Path  string
	Stmts []*Stmt
}
