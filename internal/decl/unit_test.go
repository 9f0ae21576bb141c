package decl

import "testing"

// buildShapes declares:
//
//	namespace geo { struct point { int x; int y; }; using pt = point; }
//	namespace g = geo;
//	enum color : unsigned char { red, green };
//	enum class mode { on };
//	class shape : public geo::point { static int count; };
func buildShapes(t *testing.T) *Unit {
	t.Helper()
	u := NewUnit("shapes", "shapes.cpp")
	geo := u.Declare(KindNamespace, "geo", NoDeclID)
	point := u.Declare(KindRecord, "point", geo)
	u.SetTag(point, TagStruct)
	for _, n := range []string{"x", "y"} {
		f := u.Declare(KindField, n, point)
		u.Decl(f).Type = u.MustBuiltin("int")
		u.Decl(f).Access = AccessPublic
	}
	pt := u.Declare(KindTypedef, "pt", geo)
	u.Decl(pt).Type = u.Decl(point).Self

	g := u.Declare(KindNamespaceAlias, "g", NoDeclID)
	u.Decl(g).Target = geo

	color := u.Declare(KindEnum, "color", NoDeclID)
	u.Decl(color).Type = u.MustBuiltin("unsigned char")
	for i, n := range []string{"red", "green"} {
		e := u.Declare(KindEnumerator, n, color)
		u.Decl(e).Value = MakeConstant(int64(i), 8, false)
	}
	mode := u.Declare(KindEnum, "mode", NoDeclID)
	u.Decl(mode).Scoped = true
	u.Declare(KindEnumerator, "on", mode)

	shape := u.Declare(KindRecord, "shape", NoDeclID)
	u.SetTag(shape, TagClass)
	u.AddBase(shape, u.Decl(point).Self, AccessPublic, false)
	count := u.Declare(KindVar, "count", shape)
	u.Decl(count).Type = u.MustBuiltin("int")
	u.Decl(count).Static = true
	u.Decl(count).Access = AccessPrivate
	return u
}

func mustLookup(t *testing.T, u *Unit, name string) DeclID {
	t.Helper()
	id, err := u.Lookup(u.TranslationUnit(), name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return id
}

func TestLookup(t *testing.T) {
	u := buildShapes(t)

	tests := []struct {
		name string
		want string
	}{
		{"geo::point", "geo::point"},
		{"::geo::point::x", "geo::point::x"},
		{"g::point", "geo::point"},     // namespace alias as qualifier
		{"geo::pt::y", "geo::point::y"}, // typedef of a class as qualifier
		{"red", "red"},                  // unscoped enumerator leaks out
		{"mode::on", "mode::on"},
		{"shape::x", "geo::point::x"}, // found in the base class
	}
	for _, tt := range tests {
		id := mustLookup(t, u, tt.name)
		if got := u.QualifiedNameOf(id); got != tt.want {
			t.Errorf("Lookup(%q) resolved to %q, want %q", tt.name, got, tt.want)
		}
	}

	for _, bad := range []string{"on", "geo::missing", "red::x", "a::::b", "nope"} {
		if _, err := u.Lookup(u.TranslationUnit(), bad); err == nil {
			t.Errorf("Lookup(%q) must fail", bad)
		}
	}
}

func TestLookupFromInnerScope(t *testing.T) {
	u := buildShapes(t)
	point := mustLookup(t, u, "geo::point")
	id, err := u.Lookup(point, "pt")
	if err != nil {
		t.Fatalf("outward lookup: %v", err)
	}
	if u.Decl(id).Kind != KindTypedef {
		t.Fatalf("got %s, want typedef", u.Decl(id).Kind)
	}
}

func TestResolveContext(t *testing.T) {
	u := buildShapes(t)
	for _, name := range []string{"", "::", "  "} {
		if id, err := u.ResolveContext(name); err != nil || id != u.TranslationUnit() {
			t.Errorf("ResolveContext(%q) = %d, %v", name, id, err)
		}
	}
	geo := mustLookup(t, u, "geo")
	if id, err := u.ResolveContext("g"); err != nil || id != geo {
		t.Errorf("alias context = %d, %v; want %d", id, err, geo)
	}
	if _, err := u.ResolveContext("geo::point::x"); err == nil {
		t.Errorf("a field is not a context")
	}
}

func TestQualifiedNames(t *testing.T) {
	u := NewUnit("anon", "anon.cpp")
	ns := u.Declare(KindNamespace, "", NoDeclID)
	rec := u.Declare(KindRecord, "", ns)
	u.SetTag(rec, TagUnion)
	f := u.Declare(KindField, "v", rec)

	if got, want := u.QualifiedNameOf(f), "(anonymous namespace)::(anonymous union)::v"; got != want {
		t.Errorf("QualifiedNameOf = %q, want %q", got, want)
	}
	if got := u.NameOf(rec); got != "" {
		t.Errorf("NameOf(anonymous) = %q", got)
	}
	if got := u.QualifiedNameOf(u.TranslationUnit()); got != "" {
		t.Errorf("translation unit has name %q", got)
	}
	// members of anonymous contexts are visible from the enclosing one
	if id, err := u.Lookup(NoDeclID, "v"); err != nil || id != f {
		t.Errorf("transparent lookup = %d, %v", id, err)
	}
}

func TestMembersAndBases(t *testing.T) {
	u := buildShapes(t)
	point := mustLookup(t, u, "geo::point")
	shape := mustLookup(t, u, "shape")

	if n := len(u.MembersOf(point)); n != 2 {
		t.Fatalf("point has %d members, want 2", n)
	}
	bases := u.BasesOf(shape)
	if len(bases) != 1 {
		t.Fatalf("shape has %d bases", len(bases))
	}
	b := u.Base(bases[0])
	if b.Owner != shape || b.Access != AccessPublic || b.Virtual {
		t.Errorf("unexpected base %+v", *b)
	}
	if u.BasesOf(mustLookup(t, u, "geo")) != nil {
		t.Errorf("namespaces have no bases")
	}
	if u.Decl(NoDeclID) != nil || u.Type(NoTypeID) != nil || u.Base(NoBaseID) != nil {
		t.Errorf("sentinels must not resolve")
	}
}

func TestConstant(t *testing.T) {
	c := MakeConstant(-1, 8, true)
	if c.Bits != 0xff || c.Int64() != -1 || c.String() != "-1" {
		t.Errorf("signed char -1 = %+v (%d)", c, c.Int64())
	}
	u := MakeConstant(-1, 8, false)
	if u.String() != "255" {
		t.Errorf("unsigned char -1 = %s", u)
	}
	w := MakeConstant(-5, 64, true)
	if w.Int64() != -5 {
		t.Errorf("64-bit = %d", w.Int64())
	}
}

func TestForkIsolatesTypes(t *testing.T) {
	u := buildShapes(t)
	before := len(u.types)
	f := u.Fork()

	p := f.PointerTo(f.MustBuiltin("double"))
	if len(u.types) != before {
		t.Fatalf("fork leaked types into the parent unit")
	}
	if f.Type(p) == nil || f.Type(p).Kind != TypePointer {
		t.Fatalf("fork cannot see its own type")
	}
	if f.Decl(mustLookup(t, u, "shape")) != u.Decl(mustLookup(t, u, "shape")) {
		t.Errorf("declarations must be shared")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Declare on a fork must panic")
		}
	}()
	f.Declare(KindVar, "late", NoDeclID)
}

func TestAccessParse(t *testing.T) {
	for _, a := range []Access{AccessNone, AccessPublic, AccessProtected, AccessPrivate} {
		s := a.String()
		if a == AccessNone {
			s = ""
		}
		got, err := ParseAccess(s)
		if err != nil || got != a {
			t.Errorf("ParseAccess(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseAccess("friend"); err == nil {
		t.Errorf("friend is not an access specifier")
	}
}

func TestDesugarCycle(t *testing.T) {
	u := NewUnit("cyc", "cyc.cpp")
	a := u.Declare(KindTypedef, "a", NoDeclID)
	u.Decl(a).Type = u.Decl(a).Self

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic on cyclic sugar")
		} else if _, ok := r.(error); !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
	}()
	u.Desugar(u.Decl(a).Self)
}
