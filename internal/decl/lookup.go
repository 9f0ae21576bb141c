package decl

import (
	"fmt"
	"strings"

	"mirror/internal/source"
)

// Lookup resolves a possibly qualified name ("a", "a::b", "::a::b") starting
// from scope. The first component is looked up outward through enclosing
// contexts, the rest as members of the previous component. Namespace
// aliases and typedefs of tag types are followed when used as qualifiers.
func (u *Unit) Lookup(scope DeclID, name string) (DeclID, error) {
	name = strings.TrimSpace(name)
	segs := strings.Split(name, "::")
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}
	if !scope.IsValid() {
		scope = u.tu
	}
	qualified := false
	if segs[0] == "" && len(segs) > 1 {
		segs = segs[1:]
		qualified = true
	}
	for _, s := range segs {
		if s == "" {
			return NoDeclID, fmt.Errorf("malformed name %q", name)
		}
	}

	var found DeclID
	if qualified {
		found = u.findMember(u.tu, segs[0], 0)
	} else {
		for s := scope; s.IsValid() && !found.IsValid(); s = u.decls[s].Parent {
			found = u.findMember(s, segs[0], 0)
		}
	}
	if !found.IsValid() {
		return NoDeclID, fmt.Errorf("use of undeclared identifier %q", segs[0])
	}
	for _, s := range segs[1:] {
		ctx := u.qualifierContext(found)
		if !ctx.IsValid() {
			return NoDeclID, fmt.Errorf("%q is not a namespace, class or enumeration", u.QualifiedNameOf(found))
		}
		next := u.findMember(ctx, s, 0)
		if !next.IsValid() {
			return NoDeclID, fmt.Errorf("no member named %q in %q", s, u.QualifiedNameOf(ctx))
		}
		found = next
	}
	return found, nil
}

// qualifierContext maps a declaration used before "::" to the context whose
// members it names.
func (u *Unit) qualifierContext(id DeclID) DeclID {
	for range u.decls {
		d := &u.decls[id]
		switch d.Kind {
		case KindNamespace, KindRecord, KindEnum, KindTranslationUnit:
			return id
		case KindNamespaceAlias:
			id = d.Target
		case KindTypedef:
			t := u.Type(u.Desugar(d.Self))
			if t == nil || (t.Kind != TypeRecord && t.Kind != TypeEnum) {
				return NoDeclID
			}
			id = t.Decl
		default:
			return NoDeclID
		}
		if !id.IsValid() {
			return NoDeclID
		}
	}
	return NoDeclID
}

const maxLookupDepth = 32

// findMember searches ctx's members, members of transparent children
// (anonymous namespaces, anonymous records, unscoped enumerations) and, for
// classes, the members of base classes.
func (u *Unit) findMember(ctx DeclID, name string, depth int) DeclID {
	if depth > maxLookupDepth {
		return NoDeclID
	}
	sid, ok := u.Strings.Find(name)
	if !ok || sid == source.NoStringID {
		return NoDeclID
	}
	d := &u.decls[ctx]
	for _, m := range d.Members {
		if u.decls[m].Name == sid {
			return m
		}
	}
	for _, m := range d.Members {
		md := &u.decls[m]
		transparent := (md.Name == source.NoStringID && (md.Kind == KindNamespace || md.Kind == KindRecord)) ||
			(md.Kind == KindEnum && !md.Scoped)
		if !transparent {
			continue
		}
		if found := u.findMember(m, name, depth+1); found.IsValid() {
			return found
		}
	}
	for _, b := range d.Bases {
		bt := u.Type(u.Desugar(u.bases[b].Type))
		if bt == nil || bt.Kind != TypeRecord {
			continue
		}
		if found := u.findMember(bt.Decl, name, depth+1); found.IsValid() {
			return found
		}
	}
	return NoDeclID
}

// ResolveContext resolves name to a declaration context, following
// namespace aliases and typedefs of tag types. "" and "::" name the
// translation unit.
func (u *Unit) ResolveContext(name string) (DeclID, error) {
	if n := strings.TrimSpace(name); n == "" || n == "::" {
		return u.tu, nil
	}
	id, err := u.Lookup(u.tu, name)
	if err != nil {
		return NoDeclID, err
	}
	if d := u.Decl(id); d.Kind == KindFunction {
		return id, nil
	}
	ctx := u.qualifierContext(id)
	if !ctx.IsValid() {
		return NoDeclID, fmt.Errorf("%q is not a namespace, class, enumeration or function", u.QualifiedNameOf(id))
	}
	return ctx, nil
}
