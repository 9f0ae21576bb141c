package metaeval

import (
	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/meta"
	"mirror/internal/metaobj"
)

// element is one sequence entry: a member declaration or a base-specifier.
type element struct {
	decl decl.DeclID
	base decl.BaseID
}

// sequenceContext returns the declaration whose members (or bases) a
// sequence over h enumerates. Namespace aliases and typedefs of tag types
// are looked through; the global scope enumerates the translation unit.
func (e *Evaluator) sequenceContext(h metaobj.Handle) decl.DeclID {
	if h.Arg == metaobj.ArgNothing {
		return e.m.TranslationUnit()
	}
	id := e.ctx.FindNamedDecl(h, true)
	for range 8 {
		d := e.m.Decl(id)
		if d == nil {
			return decl.NoDeclID
		}
		switch d.Kind {
		case decl.KindNamespaceAlias:
			id = d.Target
		case decl.KindTypedef:
			t := e.m.Type(e.m.Desugar(d.Type))
			if t == nil || (t.Kind != decl.TypeRecord && t.Kind != decl.TypeEnum) {
				return decl.NoDeclID
			}
			id = t.Decl
		default:
			if !d.Kind.IsContext() {
				return decl.NoDeclID
			}
			return id
		}
	}
	return decl.NoDeclID
}

func memberMatches(k meta.SequenceKind, d *decl.Decl) bool {
	switch k {
	case meta.SeqMemberTypes:
		return d.Kind.IsTypeDecl()
	case meta.SeqMemberVariables:
		return d.Kind == decl.KindField || d.Kind == decl.KindVar
	case meta.SeqMemberConstants:
		return d.Kind == decl.KindEnumerator
	case meta.SeqAll:
		return d.Kind.IsTypeDecl() || d.Kind == decl.KindField || d.Kind == decl.KindVar || d.Kind == decl.KindEnumerator
	}
	return false
}

func visible(a decl.Access, h metaobj.Handle) bool {
	switch a {
	case decl.AccessPrivate:
		return h.ExposePrivate
	case decl.AccessProtected:
		return h.ExposeProtected
	}
	return true
}

// elements computes the filtered sequence of h in declaration (or written)
// order. It has no side effects.
func (e *Evaluator) elements(h metaobj.Handle) []element {
	if !h.IsSequence() {
		invariantf("metaobject %s is not a sequence", h)
	}
	ctx := e.sequenceContext(h)
	if !ctx.IsValid() {
		return nil
	}
	var out []element
	if h.SeqKind.OverBases() {
		for _, b := range e.m.BasesOf(ctx) {
			if visible(e.m.Base(b).Access, h) {
				out = append(out, element{base: b})
			}
		}
		return out
	}
	for _, m := range e.m.MembersOf(ctx) {
		d := e.m.Decl(m)
		if memberMatches(h.SeqKind, d) && visible(d.Access, h) {
			out = append(out, element{decl: m})
		}
	}
	return out
}

func (e *Evaluator) reflectElement(el element) metaobj.ID {
	if el.base.IsValid() {
		return e.ctx.ReflectBase(el.base)
	}
	return e.ctx.ReflectDecl(el.decl)
}

// Size returns the length of the filtered sequence seq.
func (e *Evaluator) Size(seq metaobj.ID) (int, error) {
	h, err := e.subject(meta.OpGetSize, seq)
	if err != nil {
		return 0, err
	}
	return len(e.elements(h)), nil
}

// GetElement returns the index-th (0-based) element of seq.
func (e *Evaluator) GetElement(seq metaobj.ID, index uint64) (metaobj.ID, error) {
	h, err := e.subject(meta.OpGetElement, seq)
	if err != nil {
		return metaobj.NoID, err
	}
	els := e.elements(h)
	if index >= uint64(len(els)) {
		return metaobj.NoID, errorf(diag.RefIndexOutOfRange, meta.OpGetElement,
			"sequence index %d is out of range; the sequence has %d element(s)", index, len(els))
	}
	return e.reflectElement(els[index]), nil
}

// Elements returns every element of seq in order.
func (e *Evaluator) Elements(seq metaobj.ID) ([]metaobj.ID, error) {
	v, err := e.Unary(meta.OpUnpackSequence, seq)
	if err != nil {
		return nil, err
	}
	return v.Seq, nil
}
