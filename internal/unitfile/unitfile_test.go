package unitfile

import (
	"strings"
	"testing"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/source"
)

const shapesUnit = `
[unit]
name = "shapes"

[[decl]]
kind = "namespace"
name = "geo"

[[decl]]
kind = "class"
name = "point"
in   = "geo"
line = 4
column = 7

[[decl]]
kind = "field"
name = "x"
in   = "geo::point"
type = "int"

[[decl]]
kind = "var"
name = "count"
in   = "geo::point"
type = "const int"
static = true
access = "public"

[[decl]]
kind = "enum_class"
name = "mode"
type = "unsigned char"

[[decl]]
kind = "enumerator"
name = "off"
in   = "mode"

[[decl]]
kind = "enumerator"
name = "on"
in   = "mode"
value = 7

[[decl]]
kind = "enumerator"
name = "auto"
in   = "mode"

[[decl]]
kind = "struct"
name = "label"
bases = ["virtual geo::point", "protected geo::point"]
`

func build(t *testing.T, text string) (*decl.Unit, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("shapes.toml", []byte(text))
	bag := diag.NewBag(50)
	u := Build(fs, id, diag.BagReporter{Bag: bag})
	return u, bag
}

func lookup(t *testing.T, u *decl.Unit, name string) *decl.Decl {
	t.Helper()
	id, err := u.Lookup(u.TranslationUnit(), name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return u.Decl(id)
}

func TestBuildShapes(t *testing.T) {
	u, bag := build(t, shapesUnit)
	if u == nil {
		t.Fatalf("build failed: %s", diag.FormatShort(bag.Items(), nil, true))
	}
	if u.Name != "shapes" || u.File != "shapes.toml" {
		t.Errorf("unit = %q/%q", u.Name, u.File)
	}

	point := lookup(t, u, "geo::point")
	if point.Tag != decl.TagClass || point.Loc.Line != 4 || point.Loc.Column != 7 {
		t.Errorf("point = %+v", *point)
	}
	x := lookup(t, u, "geo::point::x")
	if x.Access != decl.AccessPrivate {
		t.Errorf("class members default to private, got %s", x.Access)
	}
	if count := lookup(t, u, "geo::point::count"); !count.Static || count.Access != decl.AccessPublic {
		t.Errorf("count = %+v", *count)
	}

	want := map[string]string{"off": "0", "on": "7", "auto": "8"}
	for name, v := range want {
		e := lookup(t, u, "mode::"+name)
		if e.Value.String() != v || e.Value.Width != 8 || e.Value.Signed {
			t.Errorf("mode::%s = %+v, want %s", name, e.Value, v)
		}
	}

	label := lookup(t, u, "label")
	if len(label.Bases) != 2 {
		t.Fatalf("label has %d bases", len(label.Bases))
	}
	b0, b1 := u.Base(label.Bases[0]), u.Base(label.Bases[1])
	if !b0.Virtual || b0.Access != decl.AccessPublic {
		t.Errorf("first base = %+v, want virtual public", *b0)
	}
	if b1.Virtual || b1.Access != decl.AccessProtected {
		t.Errorf("second base = %+v, want protected", *b1)
	}
}

func TestStaticOnlyForMembersAndLocals(t *testing.T) {
	u, bag := build(t, `
[[decl]]
kind = "var"
name = "g"
type = "int"
static = true
`)
	if u == nil {
		t.Fatalf("build failed: %d diagnostics", bag.Len())
	}
	if lookup(t, u, "g").Static {
		t.Errorf("namespace-scope variables are never static members")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code diag.Code
	}{
		{"syntax", "[[decl]\nkind=", diag.UntDecodeError},
		{"unknown key", "[[decl]]\nkind = \"namespace\"\nname = \"a\"\ncolour = 1\n", diag.UntUnknownKey},
		{"bad kind", "[[decl]]\nkind = \"module\"\nname = \"m\"\n", diag.UntBadKind},
		{"missing parent", "[[decl]]\nkind = \"var\"\nname = \"v\"\nin = \"nowhere\"\ntype = \"int\"\n", diag.UntUnresolvedName},
		{"field outside class", "[[decl]]\nkind = \"field\"\nname = \"f\"\ntype = \"int\"\n", diag.UntBadContext},
		{"bad type", "[[decl]]\nkind = \"var\"\nname = \"v\"\ntype = \"widget\"\n", diag.UntBadType},
		{"duplicate", "[[decl]]\nkind = \"namespace\"\nname = \"a\"\n[[decl]]\nkind = \"var\"\nname = \"a\"\ntype = \"int\"\n", diag.UntDuplicateDecl},
		{"access outside class", "[[decl]]\nkind = \"var\"\nname = \"v\"\ntype = \"int\"\naccess = \"private\"\n", diag.UntBadAccess},
		{"base not a class", "[[decl]]\nkind = \"struct\"\nname = \"s\"\nbases = [\"int\"]\n", diag.UntBadBase},
		{"value on var", "[[decl]]\nkind = \"var\"\nname = \"v\"\ntype = \"int\"\nvalue = 3\n", diag.UntBadValue},
		{"enumerator overflow", "[[decl]]\nkind = \"enum\"\nname = \"e\"\ntype = \"unsigned char\"\n[[decl]]\nkind = \"enumerator\"\nname = \"big\"\nin = \"e\"\nvalue = 256\n", diag.UntBadValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, bag := build(t, tt.text)
			if u != nil {
				t.Fatalf("expected failure")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Fatalf("missing %s in:\n%s", tt.code.ID(), diag.FormatShort(bag.Items(), nil, false))
			}
		})
	}
}

func TestErrorSpanPointsAtDecl(t *testing.T) {
	text := "[[decl]]\nkind = \"namespace\"\nname = \"a\"\n\n[[decl]]\nkind = \"bogus\"\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("u.toml", []byte(text))
	bag := diag.NewBag(10)
	if Build(fs, id, diag.BagReporter{Bag: bag}) != nil {
		t.Fatalf("expected failure")
	}
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("got %d diagnostics", len(items))
	}
	lc, _ := fs.Resolve(items[0].Primary)
	if lc.Line != 5 {
		t.Errorf("diagnostic at line %d, want 5", lc.Line)
	}
	if !strings.Contains(items[0].Message, "bogus") {
		t.Errorf("message %q does not name the kind", items[0].Message)
	}
}
