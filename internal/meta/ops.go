package meta

import (
	"strings"
	"unicode"
)

// Op identifies one metaobject operation.
type Op uint8

const (
	OpInvalid Op = iota
	OpGetIdValue

	// trait predicates, one per concept in bit order
	OpIsMetaObjectSequence
	OpIsMetaReversible
	OpIsMetaNamed
	OpIsMetaTyped
	OpIsMetaScope
	OpIsMetaScopeMember
	OpIsMetaInheritance
	OpIsMetaTemplate
	OpIsMetaParameter
	OpIsMetaEnumMember
	OpIsMetaRecordMember
	OpIsMetaAlias
	OpIsMetaConstant
	OpIsMetaVariable
	OpIsMetaNamespace
	OpIsMetaGlobalScope
	OpIsMetaType
	OpIsMetaTagType
	OpIsMetaEnum
	OpIsMetaRecord
	OpIsMetaClass
	OpIsMetaSpecifier

	OpGetSourceFileLen
	OpGetSourceFile
	OpGetSourceLine
	OpGetSourceColumn
	OpIsAnonymous
	OpGetBaseNameLen
	OpGetBaseName
	OpGetDisplayNameLen
	OpGetDisplayName
	OpIsScopedEnum
	OpGetScope
	OpHasScope
	OpGetType
	OpGetAliased
	OpGetTagSpecifier
	OpIsEnum
	OpIsClass
	OpIsStruct
	OpIsUnion
	OpGetBaseClasses
	OpGetMemberTypes
	OpGetMemberVariables
	OpGetMemberConstants
	OpGetBaseClass
	OpGetAccessSpecifier
	OpIsPublic
	OpIsProtected
	OpIsPrivate
	OpIsStatic
	OpIsVirtual
	OpUnreflectVariable
	OpGetConstant
	OpExposeProtected
	OpExposePrivate
	OpGetSize
	OpGetUnderlyingObject
	OpUnpackSequence

	// n-ary
	OpReflectsSame
	OpGetElement

	opCount
)

const (
	opTraitFirst = OpIsMetaObjectSequence
	opTraitLast  = OpIsMetaSpecifier
)

// ResultKind is the type of value an operation produces.
type ResultKind uint8

const (
	ResultBool ResultKind = iota
	ResultUnsigned
	ResultUnsignedLong
	ResultString
	ResultMetaobject
	ResultReference
	ResultConstant
	ResultSequence
)

var resultNames = [...]string{
	ResultBool:         "bool",
	ResultUnsigned:     "unsigned",
	ResultUnsignedLong: "unsigned long",
	ResultString:       "string",
	ResultMetaobject:   "metaobject",
	ResultReference:    "reference",
	ResultConstant:     "constant",
	ResultSequence:     "metaobject list",
}

func (r ResultKind) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "?"
}

// ParamKind is the type of an operation argument.
type ParamKind uint8

const (
	ParamMetaobject ParamKind = iota
	ParamIndex
)

func (p ParamKind) String() string {
	if p == ParamIndex {
		return "index"
	}
	return "metaobject"
}

// OpInfo describes one row of the operation table. The first parameter is
// always the subject metaobject; the operation applies to it iff its kind
// satisfies one of Requires (or Requires is empty).
type OpInfo struct {
	Op       Op
	Name     string
	Alias    string // second spelling, "" if none
	Params   []ParamKind
	Result   ResultKind
	Requires []Concept
	Trait    Concept // concept tested by a trait predicate
}

var (
	unary  = []ParamKind{ParamMetaobject}
	binary = []ParamKind{ParamMetaobject, ParamMetaobject}
)

func req(cs ...Concept) []Concept { return cs }

var accessHolders = req(RecordMember, Inheritance)

var opTable = buildOpTable()

func buildOpTable() [opCount]OpInfo {
	var t [opCount]OpInfo
	set := func(op Op, name string, res ResultKind, requires []Concept) {
		t[op] = OpInfo{Op: op, Name: name, Params: unary, Result: res, Requires: requires}
	}

	set(OpGetIdValue, "GetIdValue", ResultUnsignedLong, nil)
	for i, e := range concepts {
		op := opTraitFirst + Op(i)
		set(op, "IsMeta"+e.name, ResultBool, nil)
		t[op].Trait = e.c
	}

	set(OpGetSourceFileLen, "GetSourceFileLen", ResultUnsigned, nil)
	set(OpGetSourceFile, "GetSourceFile", ResultString, nil)
	set(OpGetSourceLine, "GetSourceLine", ResultUnsigned, nil)
	set(OpGetSourceColumn, "GetSourceColumn", ResultUnsigned, nil)
	set(OpIsAnonymous, "IsAnonymous", ResultBool, req(Named))
	set(OpGetBaseNameLen, "GetBaseNameLen", ResultUnsigned, req(Named))
	set(OpGetBaseName, "GetBaseName", ResultString, req(Named))
	set(OpGetDisplayNameLen, "GetDisplayNameLen", ResultUnsigned, req(Named))
	set(OpGetDisplayName, "GetDisplayName", ResultString, req(Named))
	set(OpIsScopedEnum, "IsScopedEnum", ResultBool, req(Enum))
	set(OpGetScope, "GetScope", ResultMetaobject, req(ScopeMember))
	set(OpHasScope, "HasScope", ResultBool, nil)
	set(OpGetType, "GetType", ResultMetaobject, req(Typed))
	set(OpGetAliased, "GetAliased", ResultMetaobject, req(Alias))
	set(OpGetTagSpecifier, "GetTagSpecifier", ResultMetaobject, req(TagType))
	set(OpIsEnum, "IsEnum", ResultBool, req(TagType))
	set(OpIsClass, "IsClass", ResultBool, req(TagType))
	set(OpIsStruct, "IsStruct", ResultBool, req(TagType))
	set(OpIsUnion, "IsUnion", ResultBool, req(TagType))
	set(OpGetBaseClasses, "GetBaseClasses", ResultMetaobject, req(Class))
	set(OpGetMemberTypes, "GetMemberTypes", ResultMetaobject, req(Scope))
	set(OpGetMemberVariables, "GetMemberVariables", ResultMetaobject, req(Scope))
	t[OpGetMemberVariables].Alias = "GetDataMembers"
	set(OpGetMemberConstants, "GetMemberConstants", ResultMetaobject, req(Scope))
	set(OpGetBaseClass, "GetBaseClass", ResultMetaobject, req(Inheritance))
	set(OpGetAccessSpecifier, "GetAccessSpecifier", ResultMetaobject, accessHolders)
	set(OpIsPublic, "IsPublic", ResultBool, accessHolders)
	set(OpIsProtected, "IsProtected", ResultBool, accessHolders)
	set(OpIsPrivate, "IsPrivate", ResultBool, accessHolders)
	set(OpIsStatic, "IsStatic", ResultBool, req(Variable))
	set(OpIsVirtual, "IsVirtual", ResultBool, req(Inheritance))
	set(OpUnreflectVariable, "UnreflectVariable", ResultReference, req(Variable))
	set(OpGetConstant, "GetConstant", ResultConstant, req(Constant))
	set(OpExposeProtected, "ExposeProtected", ResultMetaobject, req(ObjectSequence))
	set(OpExposePrivate, "ExposePrivate", ResultMetaobject, req(ObjectSequence))
	set(OpGetSize, "GetSize", ResultUnsigned, req(ObjectSequence))
	set(OpGetUnderlyingObject, "GetUnderlyingObject", ResultMetaobject, nil)
	set(OpUnpackSequence, "UnpackSequence", ResultSequence, req(ObjectSequence))

	t[OpReflectsSame] = OpInfo{Op: OpReflectsSame, Name: "ReflectsSame", Params: binary, Result: ResultBool}
	t[OpGetElement] = OpInfo{
		Op: OpGetElement, Name: "GetElement",
		Params:   []ParamKind{ParamMetaobject, ParamIndex},
		Result:   ResultMetaobject,
		Requires: req(ObjectSequence),
	}
	return t
}

// Info returns the table row for op; ok is false for unknown ops.
func Info(op Op) (OpInfo, bool) {
	if op == OpInvalid || op >= opCount {
		return OpInfo{}, false
	}
	return opTable[op], true
}

// Ops lists every valid operation in table order.
func Ops() []Op {
	out := make([]Op, 0, opCount-1)
	for op := OpInvalid + 1; op < opCount; op++ {
		out = append(out, op)
	}
	return out
}

// OpCount is one past the largest Op, for tables indexed by Op.
const OpCount = int(opCount)

func (op Op) String() string {
	if info, ok := Info(op); ok {
		return info.Name
	}
	return "invalid"
}

// Arity is the number of arguments op takes.
func (op Op) Arity() int {
	info, _ := Info(op)
	return len(info.Params)
}

// IsTrait reports whether op is a concept predicate.
func (op Op) IsTrait() bool { return op >= opTraitFirst && op <= opTraitLast }

// IsUnary reports whether op takes exactly the subject metaobject.
func (op Op) IsUnary() bool { return op.Arity() == 1 }

// Applicable reports whether op may be applied to a subject of kind k.
func (op Op) Applicable(k Kind) bool {
	info, ok := Info(op)
	if !ok {
		return false
	}
	if len(info.Requires) == 0 {
		return true
	}
	cs := k.Concepts()
	for _, c := range info.Requires {
		if cs.Is(c) {
			return true
		}
	}
	return false
}

// OperationPrefix is accepted in front of every operation spelling.
const OperationPrefix = "__metaobject_"

var opByName = buildOpIndex()

func buildOpIndex() map[string]Op {
	idx := make(map[string]Op, 4*int(opCount))
	for _, op := range Ops() {
		info := opTable[op]
		for _, n := range []string{info.Name, info.Alias} {
			if n == "" {
				continue
			}
			idx[n] = op
			idx[SnakeCase(n)] = op
		}
	}
	return idx
}

// LookupOp resolves an operation spelling: CamelCase ("GetBaseName"),
// snake_case ("get_base_name"), either optionally prefixed with
// OperationPrefix.
func LookupOp(name string) (Op, bool) {
	op, ok := opByName[strings.TrimPrefix(name, OperationPrefix)]
	return op, ok
}

// SnakeCase converts an operation name to its snake_case spelling.
func SnakeCase(name string) string {
	rs := []rune(name)
	var sb strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]) && unicode.IsUpper(rs[i-1]))) {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
