package metaobj

import (
	"mirror/internal/decl"
)

// BaseArgumentType returns the type a type handle names once sugar (when
// requested by the handle or by force, always for decltype), the
// elaborated keyword and pointer, reference and array declarators are
// stripped. Non-type handles yield NoTypeID.
func (c *Context) BaseArgumentType(h Handle, force bool) decl.TypeID {
	if h.Arg != ArgType {
		return decl.NoTypeID
	}
	m := c.model
	t := h.Type
	if tt := m.Type(t); h.RemoveSugar || force || (tt != nil && tt.Kind == decl.TypeDecltype) {
		t = m.Desugar(t)
	}
	if tt := m.Type(t); tt != nil && tt.Kind == decl.TypeElaborated {
		t = tt.Elem
	}
	for {
		tt := m.Type(t)
		if tt == nil {
			return t
		}
		switch tt.Kind {
		case decl.TypePointer, decl.TypeLValueRef, decl.TypeRValueRef, decl.TypeArray:
			t = tt.Elem
		default:
			return t
		}
	}
}

// FindTypeDecl returns the declaration naming t: the typedef, tag,
// template parameter or opaque type declaration, or for a substituted
// parameter the parameter it replaced.
func (c *Context) FindTypeDecl(t decl.TypeID) decl.DeclID {
	m := c.model
	for range 2 {
		tt := m.Type(t)
		if tt == nil {
			return decl.NoDeclID
		}
		switch tt.Kind {
		case decl.TypeTypedef, decl.TypeRecord, decl.TypeEnum,
			decl.TypeSubstParam, decl.TypeTplParam, decl.TypeOpaque:
			return tt.Decl
		case decl.TypeElaborated:
			t = tt.Elem
		default:
			return decl.NoDeclID
		}
	}
	return decl.NoDeclID
}

// FindNamedDecl returns the declaration behind h: its own declaration, or
// the declaration naming the base argument type of a type handle.
func (c *Context) FindNamedDecl(h Handle, removeSugar bool) decl.DeclID {
	switch h.Arg {
	case ArgDecl:
		return h.Decl
	case ArgType:
		return c.FindTypeDecl(c.BaseArgumentType(h, removeSugar))
	}
	return decl.NoDeclID
}

// ArgumentAccess returns the access of a base-specifier or of the
// declaration behind h.
func (c *Context) ArgumentAccess(h Handle) decl.Access {
	if h.Arg == ArgBase {
		if b := c.model.Base(h.Base); b != nil {
			return b.Access
		}
		return decl.AccessNone
	}
	if d := c.FindNamedDecl(h, true); d.IsValid() {
		return c.model.AccessOf(d)
	}
	return decl.AccessNone
}

// ReflectedType returns the type a handle stands for: its argument type,
// a typedef's aliased type or a type declaration's own type.
func (c *Context) ReflectedType(h Handle) decl.TypeID {
	switch h.Arg {
	case ArgType:
		return h.Type
	case ArgDecl:
		d := c.model.Decl(h.Decl)
		if d == nil {
			return decl.NoTypeID
		}
		if d.Kind == decl.KindTypedef {
			return d.Type
		}
		if d.Kind.IsTypeDecl() {
			return c.model.TypeForDecl(h.Decl)
		}
	}
	return decl.NoTypeID
}
