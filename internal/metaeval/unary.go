package metaeval

import (
	"fmt"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/meta"
	"mirror/internal/metaobj"
)

func init() { registerHandlers() }

func registerHandlers() {
	h := &unaryHandlers
	h[meta.OpGetIdValue] = func(_ *Evaluator, mo metaobj.Handle) (Value, error) {
		return UnsignedLongValue(uint64(mo.ID)), nil
	}
	for _, op := range meta.Ops() {
		if !op.IsTrait() {
			continue
		}
		info, _ := meta.Info(op)
		trait := info.Trait
		h[op] = func(_ *Evaluator, mo metaobj.Handle) (Value, error) {
			return BoolValue(mo.Concepts().Is(trait)), nil
		}
	}

	h[meta.OpGetSourceFile] = str((*Evaluator).sourceFile)
	h[meta.OpGetSourceFileLen] = strLen((*Evaluator).sourceFile)
	h[meta.OpGetSourceLine] = func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return UnsignedValue(uint64(e.location(mo).Line)), nil
	}
	h[meta.OpGetSourceColumn] = func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return UnsignedValue(uint64(e.location(mo).Column)), nil
	}
	h[meta.OpIsAnonymous] = boolOp((*Evaluator).isAnonymous)
	h[meta.OpGetBaseName] = str((*Evaluator).baseName)
	h[meta.OpGetBaseNameLen] = strLen((*Evaluator).baseName)
	h[meta.OpGetDisplayName] = str((*Evaluator).displayName)
	h[meta.OpGetDisplayNameLen] = strLen((*Evaluator).displayName)
	h[meta.OpIsScopedEnum] = boolOp(func(e *Evaluator, mo metaobj.Handle) bool {
		d := e.m.Decl(e.tagDecl(mo))
		return d != nil && d.Kind == decl.KindEnum && d.Scoped
	})
	h[meta.OpGetScope] = metaOp((*Evaluator).scope)
	h[meta.OpHasScope] = boolOp(func(_ *Evaluator, mo metaobj.Handle) bool {
		cs := mo.Concepts()
		return cs.Is(meta.ScopeMember) && !cs.Is(meta.GlobalScope)
	})
	h[meta.OpGetType] = metaOp((*Evaluator).typeOf)
	h[meta.OpGetAliased] = metaOp((*Evaluator).aliased)
	h[meta.OpGetTagSpecifier] = metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		return e.ctx.ReflectSpecifier(tagSpecifier(e.tagOf(mo)))
	})
	h[meta.OpIsEnum] = tagIs(decl.TagEnum)
	h[meta.OpIsClass] = tagIs(decl.TagClass)
	h[meta.OpIsStruct] = tagIs(decl.TagStruct)
	h[meta.OpIsUnion] = tagIs(decl.TagUnion)

	h[meta.OpGetBaseClasses] = sequenceOf(meta.SeqBaseClasses)
	h[meta.OpGetMemberTypes] = sequenceOf(meta.SeqMemberTypes)
	h[meta.OpGetMemberVariables] = sequenceOf(meta.SeqMemberVariables)
	h[meta.OpGetMemberConstants] = sequenceOf(meta.SeqMemberConstants)
	h[meta.OpGetBaseClass] = metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		b := e.m.Base(mo.Base)
		if b == nil {
			invariantf("inheritance metaobject %d has no base-specifier", mo.ID)
		}
		return e.ctx.ReflectType(b.Type, true)
	})

	h[meta.OpGetAccessSpecifier] = metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		return e.ctx.ReflectSpecifier(accessSpecifier(e.ctx.ArgumentAccess(mo)))
	})
	h[meta.OpIsPublic] = accessIs(decl.AccessPublic)
	h[meta.OpIsProtected] = accessIs(decl.AccessProtected)
	h[meta.OpIsPrivate] = accessIs(decl.AccessPrivate)
	h[meta.OpIsStatic] = boolOp(func(e *Evaluator, mo metaobj.Handle) bool {
		d := e.m.Decl(e.ctx.FindNamedDecl(mo, true))
		return d != nil && d.Kind == decl.KindVar && d.Static
	})
	h[meta.OpIsVirtual] = boolOp(func(e *Evaluator, mo metaobj.Handle) bool {
		b := e.m.Base(mo.Base)
		return mo.Arg == metaobj.ArgBase && b != nil && b.Virtual
	})
	h[meta.OpUnreflectVariable] = (*Evaluator).unreflect
	h[meta.OpGetConstant] = func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		d := e.m.Decl(mo.Decl)
		if mo.Arg != metaobj.ArgDecl || d == nil || d.Kind != decl.KindEnumerator {
			invariantf("constant metaobject %d is not an enumerator", mo.ID)
		}
		return Value{Kind: meta.ResultConstant, Const: e.m.IntegralValueOf(mo.Decl)}, nil
	}
	h[meta.OpExposeProtected] = metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		return e.ctx.Expose(mo.ID, false)
	})
	h[meta.OpExposePrivate] = metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		return e.ctx.Expose(mo.ID, true)
	})
	h[meta.OpGetSize] = func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return UnsignedValue(uint64(len(e.elements(mo)))), nil
	}
	h[meta.OpGetUnderlyingObject] = metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		if mo.Arg == metaobj.ArgType {
			if bt := e.ctx.BaseArgumentType(mo, false); bt != mo.Type {
				return e.ctx.ReflectType(bt, false)
			}
		}
		return mo.ID
	})
	h[meta.OpUnpackSequence] = func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		els := e.elements(mo)
		ids := make([]metaobj.ID, len(els))
		for i, el := range els {
			ids[i] = e.reflectElement(el)
		}
		return Value{Kind: meta.ResultSequence, Seq: ids}, nil
	}

	for _, op := range meta.Ops() {
		if op.IsUnary() && h[op] == nil {
			panic(fmt.Sprintf("metaeval: no handler for %s", op))
		}
	}
}

func str(f func(*Evaluator, metaobj.Handle) string) unaryHandler {
	return func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return StringValue(f(e, mo)), nil
	}
}

func strLen(f func(*Evaluator, metaobj.Handle) string) unaryHandler {
	return func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return UnsignedValue(uint64(len(f(e, mo)))), nil
	}
}

func boolOp(f func(*Evaluator, metaobj.Handle) bool) unaryHandler {
	return func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return BoolValue(f(e, mo)), nil
	}
}

func metaOp(f func(*Evaluator, metaobj.Handle) metaobj.ID) unaryHandler {
	return func(e *Evaluator, mo metaobj.Handle) (Value, error) {
		return MetaValue(f(e, mo)), nil
	}
}

func sequenceOf(k meta.SequenceKind) unaryHandler {
	return metaOp(func(e *Evaluator, mo metaobj.Handle) metaobj.ID {
		return e.ctx.Sequence(mo.ID, k)
	})
}

func tagIs(tag decl.TagKind) unaryHandler {
	return boolOp(func(e *Evaluator, mo metaobj.Handle) bool {
		return e.tagOf(mo) == tag
	})
}

func accessIs(a decl.Access) unaryHandler {
	return boolOp(func(e *Evaluator, mo metaobj.Handle) bool {
		return e.ctx.ArgumentAccess(mo) == a
	})
}

func (e *Evaluator) location(mo metaobj.Handle) decl.Location {
	if d := e.ctx.FindNamedDecl(mo, false); d.IsValid() {
		return e.m.SourceLocationOf(d)
	}
	return decl.Location{}
}

func (e *Evaluator) sourceFile(mo metaobj.Handle) string { return e.location(mo).File }

// typeNameDecl finds the declaration naming a stripped type, looking
// through sugar left under declarators.
func (e *Evaluator) typeNameDecl(t decl.TypeID) (decl.DeclID, *decl.Type) {
	if d := e.ctx.FindTypeDecl(t); d.IsValid() {
		return d, e.m.Type(t)
	}
	dt := e.m.Desugar(t)
	if d := e.ctx.FindTypeDecl(dt); d.IsValid() {
		return d, e.m.Type(dt)
	}
	return decl.NoDeclID, e.m.Type(dt)
}

func (e *Evaluator) isAnonymous(mo metaobj.Handle) bool {
	switch mo.Arg {
	case metaobj.ArgNothing, metaobj.ArgSpecifier:
		return false
	case metaobj.ArgDecl:
		return e.m.NameOf(mo.Decl) == ""
	case metaobj.ArgType:
		d, t := e.typeNameDecl(e.ctx.BaseArgumentType(mo, false))
		if d.IsValid() {
			return e.m.NameOf(d) == ""
		}
		return t == nil || t.Kind != decl.TypeBuiltin
	}
	return true
}

func (e *Evaluator) baseName(mo metaobj.Handle) string {
	switch mo.Arg {
	case metaobj.ArgNothing:
		return ""
	case metaobj.ArgSpecifier:
		return mo.Spec.Keyword()
	case metaobj.ArgDecl:
		return e.m.NameOf(mo.Decl)
	case metaobj.ArgType:
		d, t := e.typeNameDecl(e.ctx.BaseArgumentType(mo, false))
		switch {
		case d.IsValid():
			return e.m.NameOf(d)
		case t != nil && t.Kind == decl.TypeBuiltin:
			return t.Builtin
		}
		return ""
	}
	invariantf("unable to get the name of metaobject %s", mo)
	return ""
}

func (e *Evaluator) displayName(mo metaobj.Handle) string {
	switch mo.Arg {
	case metaobj.ArgNothing:
		return "::"
	case metaobj.ArgDecl:
		return e.m.QualifiedNameOf(mo.Decl)
	case metaobj.ArgType:
		t := mo.Type
		if mo.RemoveSugar {
			t = e.m.Desugar(t)
		}
		if d := e.ctx.FindTypeDecl(t); d.IsValid() {
			return e.m.QualifiedNameOf(d)
		}
	}
	return e.baseName(mo)
}

func (e *Evaluator) scope(mo metaobj.Handle) metaobj.ID {
	if d := e.ctx.FindNamedDecl(mo, false); d.IsValid() {
		if p := e.m.DeclContextOf(d); p.IsValid() {
			return e.ctx.ReflectDecl(p)
		}
	}
	return e.ctx.ReflectGlobalScope()
}

func (e *Evaluator) typeOf(mo metaobj.Handle) metaobj.ID {
	id := e.ctx.FindNamedDecl(mo, false)
	d := e.m.Decl(id)
	if d != nil {
		switch d.Kind {
		case decl.KindField, decl.KindVar:
			return e.ctx.ReflectType(d.Type, true)
		case decl.KindEnumerator:
			return e.ctx.ReflectDecl(d.Parent)
		}
	}
	invariantf("failed to get the type of metaobject %s", mo)
	return metaobj.NoID
}

func (e *Evaluator) aliased(mo metaobj.Handle) metaobj.ID {
	if mo.Arg == metaobj.ArgType {
		if t := e.m.Type(mo.Type); t != nil && t.Kind == decl.TypeSubstParam {
			return e.ctx.ReflectType(t.Elem, true)
		}
	}
	if d := e.m.Decl(e.ctx.FindNamedDecl(mo, false)); d != nil {
		switch {
		case d.Kind == decl.KindTypedef:
			return e.ctx.ReflectType(d.Type, true)
		case d.Kind.IsTypeDecl():
			return e.ctx.ReflectType(d.Self, true)
		case d.Kind == decl.KindNamespaceAlias:
			return e.ctx.ReflectDecl(d.Target)
		}
	}
	invariantf("failed to get the aliased entity of metaobject %s", mo)
	return metaobj.NoID
}

// tagDecl returns the record or enum behind mo; typedef declarations are
// looked through.
func (e *Evaluator) tagDecl(mo metaobj.Handle) decl.DeclID {
	id := e.ctx.FindNamedDecl(mo, true)
	if d := e.m.Decl(id); d != nil && d.Kind == decl.KindTypedef {
		id = e.ctx.FindTypeDecl(e.m.Desugar(d.Type))
	}
	if d := e.m.Decl(id); d != nil && (d.Kind == decl.KindRecord || d.Kind == decl.KindEnum) {
		return id
	}
	return decl.NoDeclID
}

func (e *Evaluator) tagOf(mo metaobj.Handle) decl.TagKind {
	if d := e.m.Decl(e.tagDecl(mo)); d != nil {
		return d.Tag
	}
	return decl.TagNone
}

func (e *Evaluator) unreflect(mo metaobj.Handle) (Value, error) {
	d := e.m.Decl(mo.Decl)
	if mo.Arg != metaobj.ArgDecl || d == nil {
		invariantf("variable metaobject %s has no declaration", mo)
	}
	if d.Kind != decl.KindVar {
		err := errorf(diag.RefNotUnreflectable, meta.OpUnreflectVariable,
			"%s %q cannot be unreflected: only variables and static data members name an object", d.Kind, e.m.QualifiedNameOf(mo.Decl))
		err.Kind = mo.Kind
		return Value{}, err
	}
	t := d.Type
	if tt := e.m.Type(e.m.Desugar(t)); tt != nil && (tt.Kind == decl.TypeLValueRef || tt.Kind == decl.TypeRValueRef) {
		t = tt.Elem
	}
	return Value{Kind: meta.ResultReference, Ref: Reference{
		Decl: mo.Decl,
		Type: t,
		Name: e.m.QualifiedNameOf(mo.Decl),
	}}, nil
}

func tagSpecifier(t decl.TagKind) meta.SpecToken {
	switch t {
	case decl.TagEnum:
		return meta.SpecEnum
	case decl.TagUnion:
		return meta.SpecUnion
	case decl.TagClass:
		return meta.SpecClass
	case decl.TagStruct:
		return meta.SpecStruct
	case decl.TagInterface:
		return meta.SpecInterface
	}
	return meta.SpecNone
}

func accessSpecifier(a decl.Access) meta.SpecToken {
	switch a {
	case decl.AccessPublic:
		return meta.SpecPublic
	case decl.AccessProtected:
		return meta.SpecProtected
	case decl.AccessPrivate:
		return meta.SpecPrivate
	}
	return meta.SpecNone
}
