package decl

import (
	"fmt"
	"strconv"

	"mirror/internal/source"
)

type (
	// DeclID indexes Unit declarations; NoDeclID is the sentinel.
	DeclID uint32
	// TypeID indexes interned types; NoTypeID is the sentinel.
	TypeID uint32
	// BaseID indexes base-specifiers.
	BaseID uint32
)

const (
	NoDeclID DeclID = 0
	NoTypeID TypeID = 0
	NoBaseID BaseID = 0
)

func (id DeclID) IsValid() bool { return id != NoDeclID }
func (id TypeID) IsValid() bool { return id != NoTypeID }
func (id BaseID) IsValid() bool { return id != NoBaseID }

// Kind is the syntactic category of a declaration.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTranslationUnit
	KindNamespace
	KindNamespaceAlias
	KindEnum
	KindRecord
	KindTypedef
	KindTplTypeParam
	KindType // any other type declaration
	KindField
	KindVar
	KindEnumerator
	KindFunction
)

var kindNames = [...]string{
	KindInvalid:         "invalid",
	KindTranslationUnit: "translation unit",
	KindNamespace:       "namespace",
	KindNamespaceAlias:  "namespace alias",
	KindEnum:            "enum",
	KindRecord:          "record",
	KindTypedef:         "typedef",
	KindTplTypeParam:    "template type parameter",
	KindType:            "type",
	KindField:           "field",
	KindVar:             "variable",
	KindEnumerator:      "enumerator",
	KindFunction:        "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsTypeDecl reports whether declarations of kind k introduce a type name.
func (k Kind) IsTypeDecl() bool {
	switch k {
	case KindEnum, KindRecord, KindTypedef, KindTplTypeParam, KindType:
		return true
	}
	return false
}

// IsContext reports whether declarations of kind k own members.
func (k Kind) IsContext() bool {
	switch k {
	case KindTranslationUnit, KindNamespace, KindEnum, KindRecord, KindFunction:
		return true
	}
	return false
}

// TagKind is the class-key or enum-key of a tag declaration.
type TagKind uint8

const (
	TagNone TagKind = iota
	TagStruct
	TagClass
	TagUnion
	TagEnum
	TagInterface
)

// Keyword returns the spelling of the tag keyword.
func (t TagKind) Keyword() string {
	switch t {
	case TagStruct:
		return "struct"
	case TagClass:
		return "class"
	case TagUnion:
		return "union"
	case TagEnum:
		return "enum"
	case TagInterface:
		return "__interface"
	}
	return ""
}

// Access is a C++ access specifier; AccessNone applies outside records.
type Access uint8

const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "none"
}

// ParseAccess accepts the keyword spelling or "" for AccessNone.
func ParseAccess(s string) (Access, error) {
	switch s {
	case "":
		return AccessNone, nil
	case "public":
		return AccessPublic, nil
	case "protected":
		return AccessProtected, nil
	case "private":
		return AccessPrivate, nil
	}
	return AccessNone, fmt.Errorf("invalid access specifier %q", s)
}

// Location is the spelling location of a declaration.
type Location struct {
	File   string
	Line   uint32
	Column uint32
}

// Constant is an integral value with its natural width and signedness.
type Constant struct {
	Bits   uint64
	Width  uint8
	Signed bool
}

// Int64 sign-extends Bits from Width.
func (c Constant) Int64() int64 {
	if c.Width == 0 || c.Width >= 64 {
		return int64(c.Bits) // #nosec G115 -- two's complement reinterpretation
	}
	shift := 64 - uint(c.Width)
	return int64(c.Bits<<shift) >> shift // #nosec G115 -- two's complement reinterpretation
}

func (c Constant) String() string {
	if c.Signed {
		return strconv.FormatInt(c.Int64(), 10)
	}
	return strconv.FormatUint(c.Bits, 10)
}

// MakeConstant truncates v to width bits.
func MakeConstant(v int64, width uint8, signed bool) Constant {
	bits := uint64(v) // #nosec G115 -- two's complement reinterpretation
	if width > 0 && width < 64 {
		bits &= (uint64(1) << width) - 1
	}
	return Constant{Bits: bits, Width: width, Signed: signed}
}

// Decl is one declaration node.
type Decl struct {
	Kind    Kind
	Name    source.StringID
	Parent  DeclID
	Members []DeclID // declaration order
	Access  Access
	Loc     Location

	Tag    TagKind // records and enums
	Scoped bool    // enum class
	// Type is the declared type of fields, variables and functions, the
	// aliased type of a typedef and the underlying type of an enum.
	Type   TypeID
	Static bool // static data member or static local
	Value  Constant
	Target DeclID   // namespace alias target
	Bases  []BaseID // written order
	Self   TypeID   // type introduced by a type declaration
}

// TypeKind is the node class of a type.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeBuiltin
	TypeRecord
	TypeEnum
	TypeTypedef
	TypeSubstParam // template parameter replaced by Elem
	TypeTplParam
	TypeOpaque // named by a KindType declaration
	TypePointer
	TypeLValueRef
	TypeRValueRef
	TypeArray
	TypeElaborated // "struct X": sugar over Elem
	TypeDecltype   // decltype(E): sugar over Elem
)

// IsSugar reports whether t only renames another type.
func (k TypeKind) IsSugar() bool {
	switch k {
	case TypeTypedef, TypeSubstParam, TypeElaborated, TypeDecltype:
		return true
	}
	return false
}

// Type is an interned type node. Two types are the same type node iff their
// TypeIDs are equal.
type Type struct {
	Kind    TypeKind
	Builtin string // canonical builtin spelling
	Decl    DeclID // declaring entity; for TypeSubstParam the replaced parameter
	Elem    TypeID // pointee, element, replacement or named type
	Len     uint64 // array bound
	Const   bool
}

// BaseSpec is one entry of a class's base-specifier list.
type BaseSpec struct {
	Owner   DeclID
	Type    TypeID
	Access  Access
	Virtual bool
}

// Model is the read-only view of a translation unit consumed by reflection.
type Model interface {
	TranslationUnit() DeclID
	Decl(id DeclID) *Decl
	Type(id TypeID) *Type
	Base(id BaseID) *BaseSpec

	DeclContextOf(id DeclID) DeclID
	MembersOf(id DeclID) []DeclID
	BasesOf(id DeclID) []BaseID
	AccessOf(id DeclID) Access
	SourceLocationOf(id DeclID) Location

	Desugar(t TypeID) TypeID
	UnderlyingTypeOf(id DeclID) TypeID
	TypeForDecl(id DeclID) TypeID

	NameOf(id DeclID) string
	QualifiedNameOf(id DeclID) string
	IntegralValueOf(id DeclID) Constant
}
