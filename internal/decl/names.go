package decl

import (
	"slices"
	"strings"
)

// NameOf returns the unqualified name; anonymous entities have "".
func (u *Unit) NameOf(id DeclID) string {
	d := u.Decl(id)
	if d == nil {
		return ""
	}
	return u.Strings.MustLookup(d.Name)
}

// QualifiedNameOf joins the names of the enclosing contexts with "::".
// The translation unit contributes nothing and unscoped enumerations are
// skipped, since their enumerators belong to the enclosing scope.
func (u *Unit) QualifiedNameOf(id DeclID) string {
	d := u.Decl(id)
	if d == nil || d.Kind == KindTranslationUnit {
		return ""
	}
	parts := []string{u.displaySegment(id)}
	for p := d.Parent; p.IsValid(); p = u.decls[p].Parent {
		pd := &u.decls[p]
		if pd.Kind == KindTranslationUnit {
			break
		}
		if pd.Kind == KindEnum && !pd.Scoped {
			continue
		}
		parts = append(parts, u.displaySegment(p))
	}
	slices.Reverse(parts)
	return strings.Join(parts, "::")
}

func (u *Unit) displaySegment(id DeclID) string {
	d := &u.decls[id]
	if name := u.Strings.MustLookup(d.Name); name != "" {
		return name
	}
	switch d.Kind {
	case KindNamespace:
		return "(anonymous namespace)"
	case KindRecord, KindEnum:
		return "(anonymous " + d.Tag.Keyword() + ")"
	}
	return "(anonymous)"
}
