// Package testkit holds helpers shared by package tests.
package testkit

import (
	"testing"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/source"
	"mirror/internal/unitfile"
)

// MustUnit builds a unit from TOML text and fails the test on any
// diagnostic.
func MustUnit(tb testing.TB, text string) *decl.Unit {
	tb.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("fixture.toml", []byte(text))
	bag := diag.NewBag(100)
	u := unitfile.Build(fs, id, diag.BagReporter{Bag: bag})
	if u == nil || bag.HasErrors() {
		tb.Fatalf("fixture unit does not build:\n%s", diag.FormatShort(bag.Items(), fs, true))
	}
	return u
}

// MustLookup resolves a qualified name in u.
func MustLookup(tb testing.TB, u *decl.Unit, name string) decl.DeclID {
	tb.Helper()
	id, err := u.Lookup(u.TranslationUnit(), name)
	if err != nil {
		tb.Fatalf("lookup %q: %v", name, err)
	}
	return id
}

// ReflectionUnit is a small translation unit covering every declaration
// kind:
//
//	namespace geo {
//	  struct point { int x; int y; };
//	  using pt = point;
//	  enum class dir : unsigned char { north, south = 4 };
//	}
//	namespace g = geo;
//	struct bar { int i; static float f; };
//	struct A {}; struct B {}; struct C {};
//	struct D : A, virtual B, protected C {};
//	class secret : public geo::point {
//	  int hidden;
//	  protected: int guarded;
//	  public: int shown; struct nested {}; typedef int number;
//	};
//	enum color { red, green };
//	template <typename T> ...  // parameter T
//	int* ptr; const geo::pt& ref = ...;
//	void fn() { static int counter; }
const ReflectionUnit = `
[unit]
name = "reflection"
file = "reflection.cpp"

[[decl]]
kind = "namespace"
name = "geo"
line = 1

[[decl]]
kind = "struct"
name = "point"
in = "geo"
line = 2
column = 10

[[decl]]
kind = "field"
name = "x"
in = "geo::point"
type = "int"

[[decl]]
kind = "field"
name = "y"
in = "geo::point"
type = "int"

[[decl]]
kind = "using"
name = "pt"
in = "geo"
type = "point"

[[decl]]
kind = "enum_class"
name = "dir"
in = "geo"
type = "unsigned char"

[[decl]]
kind = "enumerator"
name = "north"
in = "geo::dir"

[[decl]]
kind = "enumerator"
name = "south"
in = "geo::dir"
value = 4

[[decl]]
kind = "namespace_alias"
name = "g"
target = "geo"

[[decl]]
kind = "struct"
name = "bar"

[[decl]]
kind = "field"
name = "i"
in = "bar"
type = "int"

[[decl]]
kind = "var"
name = "f"
in = "bar"
type = "float"
static = true

[[decl]]
kind = "struct"
name = "A"

[[decl]]
kind = "struct"
name = "B"

[[decl]]
kind = "struct"
name = "C"

[[decl]]
kind = "struct"
name = "D"
bases = ["A", "virtual B", "protected C"]

[[decl]]
kind = "class"
name = "secret"
bases = ["public geo::point"]

[[decl]]
kind = "field"
name = "hidden"
in = "secret"
type = "int"

[[decl]]
kind = "field"
name = "guarded"
in = "secret"
type = "int"
access = "protected"

[[decl]]
kind = "field"
name = "shown"
in = "secret"
type = "int"
access = "public"

[[decl]]
kind = "struct"
name = "nested"
in = "secret"
access = "public"

[[decl]]
kind = "typedef"
name = "number"
in = "secret"
type = "int"
access = "public"

[[decl]]
kind = "enum"
name = "color"

[[decl]]
kind = "enumerator"
name = "red"
in = "color"

[[decl]]
kind = "enumerator"
name = "green"
in = "color"

[[decl]]
kind = "template_param"
name = "T"

[[decl]]
kind = "var"
name = "ptr"
type = "int*"

[[decl]]
kind = "var"
name = "ref"
type = "const geo::pt&"

[[decl]]
kind = "function"
name = "fn"

[[decl]]
kind = "var"
name = "counter"
in = "fn"
type = "int"
static = true
`
