package metaobj

import (
	"fmt"

	"mirror/internal/decl"
	"mirror/internal/meta"
)

// Operand is a resolved reflect-operator argument.
type Operand struct {
	Arg         ArgKind
	Spec        meta.SpecToken
	Decl        decl.DeclID
	Type        decl.TypeID
	RemoveSugar bool
	Base        decl.BaseID
}

// Reflect evaluates a reflect-expression. The model is never modified.
func (c *Context) Reflect(op Operand) ID {
	switch op.Arg {
	case ArgNothing:
		return c.ReflectGlobalScope()
	case ArgSpecifier:
		return c.ReflectSpecifier(op.Spec)
	case ArgDecl:
		return c.ReflectDecl(op.Decl)
	case ArgType:
		return c.ReflectType(op.Type, op.RemoveSugar)
	case ArgBase:
		return c.ReflectBase(op.Base)
	}
	panic(fmt.Sprintf("metaobj: bad operand kind %d", op.Arg))
}

// ReflectGlobalScope returns the global-scope singleton.
func (c *Context) ReflectGlobalScope() ID {
	if c.global.IsValid() {
		c.stats.Hits++
		return c.global
	}
	c.global = c.alloc(Handle{Kind: meta.KindGlobalScope, Arg: ArgNothing})
	return c.global
}

// ReflectSpecifier returns the interned handle of a specifier token;
// SpecNone yields the "no specifier" singleton.
func (c *Context) ReflectSpecifier(s meta.SpecToken) ID {
	if s == meta.SpecNone {
		if c.noSpec.IsValid() {
			c.stats.Hits++
			return c.noSpec
		}
		c.noSpec = c.alloc(Handle{Kind: meta.KindSpecifier, Arg: ArgSpecifier})
		return c.noSpec
	}
	if id, ok := c.specs[s]; ok {
		c.stats.Hits++
		return id
	}
	id := c.alloc(Handle{Kind: meta.KindSpecifier, Arg: ArgSpecifier, Spec: s})
	c.specs[s] = id
	return id
}

// ReflectDecl returns the interned handle of a declaration. The
// translation unit reflects as the global scope.
func (c *Context) ReflectDecl(d decl.DeclID) ID {
	if d == c.model.TranslationUnit() {
		return c.ReflectGlobalScope()
	}
	if id, ok := c.decls[d]; ok {
		c.stats.Hits++
		return id
	}
	id := c.alloc(Handle{Kind: c.classifyDecl(d), Arg: ArgDecl, Decl: d})
	c.decls[d] = id
	return id
}

// ReflectType allocates a type reflection. With removeSugar the handle
// is alias-transparent: it classifies and names the desugared type.
func (c *Context) ReflectType(t decl.TypeID, removeSugar bool) ID {
	return c.alloc(Handle{Kind: c.classifyType(t, removeSugar), Arg: ArgType, Type: t, RemoveSugar: removeSugar})
}

// ReflectBase allocates a base-specifier reflection.
func (c *Context) ReflectBase(b decl.BaseID) ID {
	return c.alloc(Handle{Kind: meta.KindInheritance, Arg: ArgBase, Base: b})
}

// Sequence re-tags the argument of of into a fresh ObjectSequence of kind k.
func (c *Context) Sequence(of ID, k meta.SequenceKind) ID {
	h := c.MustGet(of)
	h.Kind = meta.KindObjectSequence
	h.SeqKind = k
	return c.alloc(h)
}

// Expose copies of with widened visibility; private implies protected.
func (c *Context) Expose(of ID, private bool) ID {
	h := c.MustGet(of)
	h.ExposeProtected = true
	if private {
		h.ExposePrivate = true
	}
	return c.alloc(h)
}

func (c *Context) classifyDecl(id decl.DeclID) meta.Kind {
	m := c.model
	d := m.Decl(id)
	if d == nil {
		return meta.KindUnknown
	}
	inRecord := false
	if p := m.Decl(d.Parent); p != nil && p.Kind == decl.KindRecord {
		inRecord = true
	}
	member := func(k meta.Kind) meta.Kind {
		if inRecord {
			return k.MemberKind()
		}
		return k
	}

	switch d.Kind {
	case decl.KindNamespaceAlias:
		return meta.KindNamespaceAlias
	case decl.KindNamespace:
		return meta.KindNamespace
	case decl.KindTranslationUnit:
		return meta.KindGlobalScope
	case decl.KindEnum:
		return member(meta.KindEnum)
	case decl.KindRecord:
		return member(meta.KindClass)
	case decl.KindTypedef:
		ut := m.Type(m.Desugar(d.Type))
		switch {
		case ut != nil && ut.Kind == decl.TypeRecord:
			return member(meta.KindClassAlias)
		case ut != nil && ut.Kind == decl.TypeEnum:
			return member(meta.KindEnumAlias)
		}
		return member(meta.KindTypeAlias)
	case decl.KindTplTypeParam:
		return meta.KindTplTypeParam
	case decl.KindType:
		return member(meta.KindType)
	case decl.KindField:
		return meta.KindDataMember
	case decl.KindVar:
		if inRecord {
			return meta.KindDataMember
		}
		return meta.KindVariable
	case decl.KindEnumerator:
		return meta.KindEnumerator
	}
	return meta.KindUnknown
}

func (c *Context) classifyType(id decl.TypeID, removeSugar bool) meta.Kind {
	m := c.model
	t := m.Type(id)
	if t == nil {
		return meta.KindUnknown
	}
	alias := false
	if !removeSugar {
		switch t.Kind {
		case decl.TypeSubstParam:
			alias = true
		case decl.TypeTypedef:
			alias = true
		}
	}
	rt := m.Type(m.Desugar(id))
	switch {
	case rt == nil:
		return meta.KindUnknown
	case rt.Kind == decl.TypeTplParam:
		return meta.KindTplTypeParam
	case rt.Kind == decl.TypeRecord:
		if alias {
			return meta.KindClassAlias
		}
		return meta.KindClass
	case rt.Kind == decl.TypeEnum:
		if alias {
			return meta.KindEnumAlias
		}
		return meta.KindEnum
	}
	if alias {
		return meta.KindTypeAlias
	}
	return meta.KindType
}
