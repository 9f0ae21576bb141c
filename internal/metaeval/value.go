package metaeval

import (
	"slices"
	"strconv"
	"strings"

	"mirror/internal/decl"
	"mirror/internal/meta"
	"mirror/internal/metaobj"
)

// Value is a typed operation result or argument.
type Value struct {
	Kind  meta.ResultKind
	Bool  bool
	Uint  uint64
	Str   string
	Meta  metaobj.ID
	Ref   Reference
	Const decl.Constant
	Seq   []metaobj.ID
}

// Reference is an unreflected variable: an ordinary lvalue naming Decl
// with the variable's type stripped of references.
type Reference struct {
	Decl decl.DeclID
	Type decl.TypeID
	Name string // qualified name
}

func BoolValue(b bool) Value           { return Value{Kind: meta.ResultBool, Bool: b} }
func UnsignedValue(n uint64) Value     { return Value{Kind: meta.ResultUnsigned, Uint: n} }
func UnsignedLongValue(n uint64) Value { return Value{Kind: meta.ResultUnsignedLong, Uint: n} }
func StringValue(s string) Value       { return Value{Kind: meta.ResultString, Str: s} }
func MetaValue(id metaobj.ID) Value    { return Value{Kind: meta.ResultMetaobject, Meta: id} }

// IsInteger reports whether v carries an integer usable as an index.
func (v Value) IsInteger() bool {
	switch v.Kind {
	case meta.ResultUnsigned, meta.ResultUnsignedLong:
		return true
	case meta.ResultConstant:
		return !v.Const.Signed || v.Const.Int64() >= 0
	}
	return false
}

// Integer returns the integer payload of v.
func (v Value) Integer() uint64 {
	if v.Kind == meta.ResultConstant {
		return v.Const.Bits
	}
	return v.Uint
}

// Equal compares values of the same kind; metaobjects compare by ID.
func (v Value) Equal(o Value) bool {
	if v.IsInteger() && o.IsInteger() {
		if v.Kind == meta.ResultConstant && o.Kind == meta.ResultConstant {
			return v.Const.Int64() == o.Const.Int64()
		}
		return v.Integer() == o.Integer()
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case meta.ResultBool:
		return v.Bool == o.Bool
	case meta.ResultString:
		return v.Str == o.Str
	case meta.ResultMetaobject:
		return v.Meta == o.Meta
	case meta.ResultReference:
		return v.Ref == o.Ref
	case meta.ResultConstant:
		return v.Const.Int64() == o.Const.Int64()
	case meta.ResultSequence:
		return slices.Equal(v.Seq, o.Seq)
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case meta.ResultBool:
		return strconv.FormatBool(v.Bool)
	case meta.ResultUnsigned, meta.ResultUnsignedLong:
		return strconv.FormatUint(v.Uint, 10)
	case meta.ResultString:
		return v.Str
	case meta.ResultMetaobject:
		return "metaobject#" + strconv.FormatUint(uint64(v.Meta), 10)
	case meta.ResultReference:
		return "&" + v.Ref.Name
	case meta.ResultConstant:
		return v.Const.String()
	case meta.ResultSequence:
		parts := make([]string, len(v.Seq))
		for i, id := range v.Seq {
			parts[i] = "metaobject#" + strconv.FormatUint(uint64(id), 10)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}
