package source

import "testing"

func TestInternerDedup(t *testing.T) {
	in := NewInterner()
	a := in.Intern("foo")
	b := in.Intern("foo")
	if a != b {
		t.Fatalf("same string interned twice: %d != %d", a, b)
	}
	if in.Intern("") != NoStringID {
		t.Errorf("empty string must map to NoStringID")
	}
	if s := in.MustLookup(a); s != "foo" {
		t.Errorf("MustLookup = %q", s)
	}
}

func TestInternerNFC(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("caf\u00e9")
	decomposed := in.Intern("café")
	if composed != decomposed {
		t.Errorf("NFC variants interned separately: %d vs %d", composed, decomposed)
	}
	if _, ok := in.Find("café"); !ok {
		t.Errorf("Find should normalize its argument")
	}
	if _, ok := in.Find("tea"); ok {
		t.Errorf("Find must not insert")
	}
}
