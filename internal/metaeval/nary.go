package metaeval

import (
	"mirror/internal/decl"
	"mirror/internal/meta"
	"mirror/internal/metaobj"
)

// ReflectsSame reports whether a and b reflect the same entity: the same
// handle, both the global scope, the same specifier (or both "no
// specifier"), the same declaration, the same type node or the same
// base-specifier. Sequences compare equal when they enumerate the same
// relation of the same entity with the same visibility. Types are not
// compared structurally beyond that.
func (e *Evaluator) ReflectsSame(a, b metaobj.ID) (bool, error) {
	ha, err := e.subject(meta.OpReflectsSame, a)
	if err != nil {
		return false, err
	}
	hb, err := e.subject(meta.OpReflectsSame, b)
	if err != nil {
		return false, err
	}
	if a == b {
		return true, nil
	}
	if ha.IsSequence() != hb.IsSequence() {
		return false, nil
	}
	if ha.IsSequence() && (ha.SeqKind != hb.SeqKind ||
		ha.ExposeProtected != hb.ExposeProtected || ha.ExposePrivate != hb.ExposePrivate) {
		return false, nil
	}
	switch {
	case ha.IsGlobalScope() || hb.IsGlobalScope():
		return ha.IsGlobalScope() == hb.IsGlobalScope(), nil
	case ha.Arg == metaobj.ArgSpecifier || hb.Arg == metaobj.ArgSpecifier:
		return ha.Arg == hb.Arg && ha.Spec == hb.Spec, nil
	case ha.Arg == metaobj.ArgBase || hb.Arg == metaobj.ArgBase:
		return ha.Arg == hb.Arg && ha.Base == hb.Base, nil
	case ha.Arg == metaobj.ArgType && hb.Arg == metaobj.ArgType && e.sameType(ha, hb):
		return true, nil
	}
	da, db := e.entityDecl(ha), e.entityDecl(hb)
	return da.IsValid() && da == db, nil
}

func (e *Evaluator) sameType(a, b metaobj.Handle) bool {
	ta, tb := a.Type, b.Type
	if a.RemoveSugar {
		ta = e.m.Desugar(ta)
	}
	if b.RemoveSugar {
		tb = e.m.Desugar(tb)
	}
	return ta == tb
}

// entityDecl returns the declaration h stands for. A type counts only
// when it directly names a declaration (after dropping the elaborated
// keyword and, for alias-transparent handles, sugar).
func (e *Evaluator) entityDecl(h metaobj.Handle) decl.DeclID {
	switch h.Arg {
	case metaobj.ArgDecl:
		if d := e.m.Decl(h.Decl); d != nil && d.Kind == decl.KindTranslationUnit {
			return decl.NoDeclID
		}
		return h.Decl
	case metaobj.ArgType:
		t := h.Type
		if h.RemoveSugar {
			t = e.m.Desugar(t)
		}
		if tt := e.m.Type(t); tt != nil && tt.Kind == decl.TypeElaborated {
			t = tt.Elem
		}
		tt := e.m.Type(t)
		if tt == nil {
			return decl.NoDeclID
		}
		switch tt.Kind {
		case decl.TypeRecord, decl.TypeEnum, decl.TypeTypedef, decl.TypeTplParam, decl.TypeOpaque:
			if tt.Const {
				return decl.NoDeclID
			}
			return tt.Decl
		}
	}
	return decl.NoDeclID
}
