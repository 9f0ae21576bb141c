package unitfile

import (
	"strings"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/source"
)

type kindSpec struct {
	kind   decl.Kind
	tag    decl.TagKind
	scoped bool
}

var kindByName = map[string]kindSpec{
	"namespace":       {kind: decl.KindNamespace},
	"namespace_alias": {kind: decl.KindNamespaceAlias},
	"struct":          {kind: decl.KindRecord, tag: decl.TagStruct},
	"class":           {kind: decl.KindRecord, tag: decl.TagClass},
	"union":           {kind: decl.KindRecord, tag: decl.TagUnion},
	"__interface":     {kind: decl.KindRecord, tag: decl.TagInterface},
	"enum":            {kind: decl.KindEnum, tag: decl.TagEnum},
	"enum_class":      {kind: decl.KindEnum, tag: decl.TagEnum, scoped: true},
	"typedef":         {kind: decl.KindTypedef},
	"using":           {kind: decl.KindTypedef},
	"template_param":  {kind: decl.KindTplTypeParam},
	"type":            {kind: decl.KindType},
	"field":           {kind: decl.KindField},
	"var":             {kind: decl.KindVar},
	"enumerator":      {kind: decl.KindEnumerator},
	"function":        {kind: decl.KindFunction},
}

func (b *builder) declare(i int, e *declEntry) {
	sp := b.declSpan(i)
	u := b.unit

	spec, ok := kindByName[e.Kind]
	if !ok {
		b.errorf(sp, diag.UntBadKind, "unknown declaration kind %q", e.Kind)
		return
	}
	parent, err := u.ResolveContext(e.In)
	if err != nil {
		b.errorf(sp, diag.UntUnresolvedName, "cannot resolve enclosing context %q: %v", e.In, err)
		return
	}
	pd := *u.Decl(parent)
	if !b.allowedIn(sp, spec.kind, pd.Kind) {
		return
	}
	if e.Name == "" && !allowsAnonymous(spec.kind) {
		b.errorf(sp, diag.UntBadKind, "%s declaration requires a name", spec.kind)
		return
	}
	if b.redeclares(parent, e.Name, spec.kind) {
		b.errorf(sp, diag.UntDuplicateDecl, "redefinition of %q", e.Name)
		return
	}

	access, ok := b.memberAccess(sp, e.Access, &pd)
	if !ok {
		return
	}

	id := u.Declare(spec.kind, e.Name, parent)
	d := u.Decl(id)
	d.Access = access
	d.Scoped = spec.scoped
	if spec.tag != decl.TagNone {
		u.SetTag(id, spec.tag)
	}
	if e.File != "" {
		d.Loc.File = e.File
	}
	d.Loc.Line, d.Loc.Column = e.Line, e.Column
	// static members and static locals only
	d.Static = e.Static && spec.kind == decl.KindVar && (pd.Kind == decl.KindRecord || pd.Kind == decl.KindFunction)

	switch spec.kind {
	case decl.KindField, decl.KindVar, decl.KindTypedef:
		if e.Type == "" {
			b.errorf(sp, diag.UntBadType, "%s %q requires a type", spec.kind, e.Name)
			return
		}
		d.Type = b.parseType(sp, parent, e.Type)
	case decl.KindFunction:
		if e.Type != "" {
			d.Type = b.parseType(sp, parent, e.Type)
		}
	case decl.KindEnum:
		underlying := e.Type
		if underlying == "" {
			underlying = "int"
		}
		d.Type = b.parseType(sp, parent, underlying)
	case decl.KindEnumerator:
		b.assignValue(sp, id, parent, e.Value)
	case decl.KindNamespaceAlias:
		b.bindAlias(sp, id, e.Target)
	}
	if len(e.Bases) > 0 {
		if spec.kind != decl.KindRecord {
			b.errorf(sp, diag.UntBadBase, "only classes may have base-specifiers")
			return
		}
		for _, text := range e.Bases {
			b.addBase(sp, id, text)
		}
	}
	if e.Value != nil && spec.kind != decl.KindEnumerator {
		b.errorf(sp, diag.UntBadValue, "only enumerators take a value")
	}
}

func allowsAnonymous(k decl.Kind) bool {
	switch k {
	case decl.KindNamespace, decl.KindRecord, decl.KindEnum:
		return true
	}
	return false
}

func (b *builder) allowedIn(sp source.Span, k, parent decl.Kind) bool {
	ok := true
	switch k {
	case decl.KindNamespace, decl.KindNamespaceAlias:
		ok = parent == decl.KindTranslationUnit || parent == decl.KindNamespace
	case decl.KindField:
		ok = parent == decl.KindRecord
	case decl.KindEnumerator:
		ok = parent == decl.KindEnum
	default:
		ok = parent != decl.KindEnum
	}
	if !ok {
		b.errorf(sp, diag.UntBadContext, "%s declaration is not allowed in a %s", k, parent)
	}
	return ok
}

func (b *builder) redeclares(parent decl.DeclID, name string, k decl.Kind) bool {
	if name == "" || k == decl.KindFunction {
		return false
	}
	u := b.unit
	for _, m := range u.MembersOf(parent) {
		if u.NameOf(m) == name && u.Decl(m).Kind != decl.KindFunction {
			return true
		}
	}
	return false
}

func (b *builder) memberAccess(sp source.Span, spelled string, parent *decl.Decl) (decl.Access, bool) {
	access, err := decl.ParseAccess(spelled)
	if err != nil {
		b.errorf(sp, diag.UntBadAccess, "%v", err)
		return decl.AccessNone, false
	}
	if parent.Kind != decl.KindRecord {
		if access != decl.AccessNone {
			b.errorf(sp, diag.UntBadAccess, "access specifier %q outside of a class", spelled)
			return decl.AccessNone, false
		}
		return decl.AccessNone, true
	}
	if access == decl.AccessNone {
		access = defaultAccess(parent.Tag)
	}
	return access, true
}

// defaultAccess is the implicit member and base access of a class-key.
func defaultAccess(tag decl.TagKind) decl.Access {
	if tag == decl.TagClass {
		return decl.AccessPrivate
	}
	return decl.AccessPublic
}

func (b *builder) parseType(sp source.Span, scope decl.DeclID, text string) decl.TypeID {
	t, err := b.unit.ParseType(scope, text)
	if err != nil {
		b.errorf(sp, diag.UntBadType, "%v", err)
		return decl.NoTypeID
	}
	return t
}

func (b *builder) assignValue(sp source.Span, id, enum decl.DeclID, explicit *int64) {
	u := b.unit
	width, signed := uint8(32), true
	if bt := u.Type(u.Desugar(u.Decl(enum).Type)); bt != nil && bt.Kind == decl.TypeBuiltin {
		w, s, integral := decl.BuiltinProps(bt.Builtin)
		if !integral {
			b.errorf(sp, diag.UntBadValue, "enumeration underlying type %q is not integral", bt.Builtin)
			return
		}
		width, signed = w, s
	}
	v := b.counters[enum]
	if explicit != nil {
		v = *explicit
	}
	if !fits(v, width, signed) {
		b.errorf(sp, diag.UntBadValue, "enumerator value %d does not fit the underlying type", v)
		return
	}
	u.Decl(id).Value = decl.MakeConstant(v, width, signed)
	b.counters[enum] = v + 1
}

func fits(v int64, width uint8, signed bool) bool {
	if width >= 64 {
		return signed || v >= 0
	}
	if signed {
		lim := int64(1) << (width - 1)
		return v >= -lim && v < lim
	}
	return v >= 0 && v < int64(1)<<width
}

func (b *builder) bindAlias(sp source.Span, id decl.DeclID, target string) {
	u := b.unit
	if target == "" {
		b.errorf(sp, diag.UntUnresolvedName, "namespace alias requires a target")
		return
	}
	ns, err := u.ResolveContext(target)
	if err != nil || u.Decl(ns).Kind != decl.KindNamespace {
		b.errorf(sp, diag.UntUnresolvedName, "%q does not name a namespace", target)
		return
	}
	u.Decl(id).Target = ns
}

// addBase parses "virtual public ns::A" style base-specifiers.
func (b *builder) addBase(sp source.Span, owner decl.DeclID, text string) {
	u := b.unit
	words := strings.Fields(text)
	virtual := false
	access := decl.AccessNone
words:
	for len(words) > 0 {
		switch words[0] {
		case "virtual":
			virtual = true
		case "public", "protected", "private":
			if access != decl.AccessNone {
				b.errorf(sp, diag.UntBadBase, "duplicate access specifier in base %q", text)
				return
			}
			access, _ = decl.ParseAccess(words[0])
		default:
			break words
		}
		words = words[1:]
	}
	if len(words) == 0 {
		b.errorf(sp, diag.UntBadBase, "base-specifier %q names no class", text)
		return
	}
	if access == decl.AccessNone {
		access = defaultAccess(u.Decl(owner).Tag)
	}
	t, err := u.ParseType(u.DeclContextOf(owner), strings.Join(words, " "))
	if err != nil {
		b.errorf(sp, diag.UntBadBase, "%v", err)
		return
	}
	if bt := u.Type(u.Desugar(t)); bt == nil || bt.Kind != decl.TypeRecord || bt.Decl == owner {
		b.errorf(sp, diag.UntBadBase, "base-specifier %q does not name another class", text)
		return
	}
	u.AddBase(owner, t, access, virtual)
}
