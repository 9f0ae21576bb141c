package metaobj_test

import (
	"fmt"
	"strings"
	"testing"

	"mirror/internal/decl"
	"mirror/internal/meta"
	"mirror/internal/metaobj"
	"mirror/internal/testkit"
)

func newContext(t *testing.T) (*metaobj.Context, *decl.Unit) {
	t.Helper()
	u := testkit.MustUnit(t, testkit.ReflectionUnit)
	return metaobj.NewContext(u.Fork()), u
}

func TestInterning(t *testing.T) {
	c, u := newContext(t)

	g1, g2 := c.ReflectGlobalScope(), c.ReflectGlobalScope()
	if g1 != g2 {
		t.Errorf("global scope is not a singleton: %d vs %d", g1, g2)
	}
	if c.ReflectDecl(u.TranslationUnit()) != g1 {
		t.Errorf("the translation unit must reflect as the global scope")
	}
	if c.ReflectSpecifier(meta.SpecNone) != c.ReflectSpecifier(meta.SpecNone) {
		t.Errorf("no-specifier is not a singleton")
	}
	if c.ReflectSpecifier(meta.SpecStatic) != c.ReflectSpecifier(meta.SpecStatic) {
		t.Errorf("specifiers must be interned")
	}
	point := testkit.MustLookup(t, u, "geo::point")
	if c.ReflectDecl(point) != c.ReflectDecl(point) {
		t.Errorf("declarations must be interned")
	}
	self := u.Decl(point).Self
	if c.ReflectType(self, false) == c.ReflectType(self, false) {
		t.Errorf("type reflections are allocated fresh")
	}
	if st := c.Stats(); st.Hits < 4 {
		t.Errorf("expected cache hits, got %+v", st)
	}
}

func TestClassifyDecl(t *testing.T) {
	c, u := newContext(t)
	tests := []struct {
		name string
		want meta.Kind
	}{
		{"geo", meta.KindNamespace},
		{"g", meta.KindNamespaceAlias},
		{"geo::point", meta.KindClass},
		{"geo::pt", meta.KindClassAlias},
		{"geo::dir", meta.KindEnum},
		{"geo::dir::north", meta.KindEnumerator},
		{"geo::point::x", meta.KindDataMember},
		{"bar::f", meta.KindDataMember},
		{"ptr", meta.KindVariable},
		{"T", meta.KindTplTypeParam},
		{"secret::nested", meta.KindMemberClass},
		{"secret::number", meta.KindMemberTypeAlias},
		{"fn", meta.KindUnknown},
	}
	for _, tt := range tests {
		id := c.ReflectDecl(testkit.MustLookup(t, u, tt.name))
		if got := c.MustGet(id).Kind; got != tt.want {
			t.Errorf("reflexpr(%s) kind = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyType(t *testing.T) {
	c, u := newContext(t)
	tests := []struct {
		text        string
		removeSugar bool
		want        meta.Kind
	}{
		{"geo::point", false, meta.KindClass},
		{"struct geo::point", false, meta.KindClass},
		{"geo::pt", false, meta.KindClassAlias},
		{"geo::pt", true, meta.KindClass},
		{"geo::dir", false, meta.KindEnum},
		{"int", false, meta.KindType},
		{"secret::number", false, meta.KindTypeAlias},
		{"int*", false, meta.KindType},
		{"T", false, meta.KindTplTypeParam},
		{"subst<T, geo::point>", false, meta.KindClassAlias},
		{"subst<T, int>", false, meta.KindTypeAlias},
		{"decltype(geo::point::x)", false, meta.KindType},
	}
	f := c.Model().(*decl.Unit)
	for _, tt := range tests {
		ty, err := f.ParseType(u.TranslationUnit(), tt.text)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", tt.text, err)
		}
		h := c.MustGet(c.ReflectType(ty, tt.removeSugar))
		if h.Kind != tt.want {
			t.Errorf("reflexpr(typename %s) sugar-free=%v kind = %s, want %s", tt.text, tt.removeSugar, h.Kind, tt.want)
		}
	}
}

func TestSequenceAndExpose(t *testing.T) {
	c, u := newContext(t)
	cls := c.ReflectDecl(testkit.MustLookup(t, u, "secret"))
	s := c.Sequence(cls, meta.SeqMemberVariables)
	h := c.MustGet(s)
	if !h.IsSequence() || h.SeqKind != meta.SeqMemberVariables || h.Decl != c.MustGet(cls).Decl {
		t.Fatalf("sequence = %s", h)
	}
	if c.MustGet(cls).Kind != meta.KindClass {
		t.Errorf("re-tagging must not modify the source handle")
	}
	p := c.MustGet(c.Expose(s, true))
	if !p.ExposePrivate || !p.ExposeProtected {
		t.Errorf("private exposure must imply protected: %s", p)
	}
	q := c.MustGet(c.Expose(s, false))
	if q.ExposePrivate || !q.ExposeProtected {
		t.Errorf("protected exposure: %s", q)
	}
}

func TestFindNamedDecl(t *testing.T) {
	c, u := newContext(t)
	f := c.Model().(*decl.Unit)
	point := testkit.MustLookup(t, u, "geo::point")
	pt := testkit.MustLookup(t, u, "geo::pt")

	ty, _ := f.ParseType(u.TranslationUnit(), "geo::pt")
	h := c.MustGet(c.ReflectType(ty, false))
	if got := c.FindNamedDecl(h, false); got != pt {
		t.Errorf("FindNamedDecl without desugaring = %d, want typedef %d", got, pt)
	}
	if got := c.FindNamedDecl(h, true); got != point {
		t.Errorf("FindNamedDecl with desugaring = %d, want record %d", got, point)
	}

	// declarators are stripped, sugar below them stays
	ptr, _ := f.ParseType(u.TranslationUnit(), "const geo::pt* const*")
	if got := c.FindNamedDecl(c.MustGet(c.ReflectType(ptr, false)), true); got != pt {
		t.Errorf("FindNamedDecl through pointers = %d, want typedef %d", got, pt)
	}

	sub, _ := f.ParseType(u.TranslationUnit(), "subst<T, geo::point>")
	if got := c.FindTypeDecl(sub); got != testkit.MustLookup(t, u, "T") {
		t.Errorf("a substitution is named by its parameter, got %d", got)
	}
	if c.FindNamedDecl(c.MustGet(c.ReflectGlobalScope()), true).IsValid() {
		t.Errorf("the global scope has no declaration")
	}
}

func TestArgumentAccess(t *testing.T) {
	c, u := newContext(t)
	d := testkit.MustLookup(t, u, "D")
	bases := u.BasesOf(d)
	want := []decl.Access{decl.AccessPublic, decl.AccessPublic, decl.AccessProtected}
	for i, b := range bases {
		if got := c.ArgumentAccess(c.MustGet(c.ReflectBase(b))); got != want[i] {
			t.Errorf("base %d access = %s, want %s", i, got, want[i])
		}
	}
	hidden := c.MustGet(c.ReflectDecl(testkit.MustLookup(t, u, "secret::hidden")))
	if c.ArgumentAccess(hidden) != decl.AccessPrivate {
		t.Errorf("class members default to private")
	}
}

func TestResetAndForeignIDs(t *testing.T) {
	c, _ := newContext(t)
	id := c.ReflectGlobalScope()
	if _, ok := c.Get(id + 100); ok {
		t.Errorf("unknown id resolved")
	}
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("Reset left %d handles", c.Len())
	}
	if _, ok := c.Get(id); ok {
		t.Errorf("ids must not survive Reset")
	}
	if c.ReflectGlobalScope() != id {
		t.Errorf("fresh context must allocate from the start")
	}
}

func TestHandleValueMethods(t *testing.T) {
	c, _ := newContext(t)

	g := c.ReflectGlobalScope()
	if !c.MustGet(g).IsGlobalScope() || c.MustGet(g).IsSequence() {
		t.Fatalf("global scope handle: %s", c.MustGet(g))
	}
	spec := c.ReflectSpecifier(meta.SpecProtected)
	if got := c.MustGet(spec).String(); got != fmt.Sprintf("#%d Specifier spec=protected", spec) {
		t.Errorf("String() = %q", got)
	}
	seq := c.Expose(c.Sequence(g, meta.SeqMemberVariables), false)
	h := c.MustGet(seq)
	if !h.IsSequence() || !h.Concepts().Is(meta.ObjectSequence) || !strings.HasSuffix(h.String(), " +protected") {
		t.Errorf("sequence handle: %s", h)
	}
}
