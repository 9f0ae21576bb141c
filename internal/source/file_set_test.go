package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("q.mq", []byte("print 1;"), 0)
	id2 := fs.Add("q.mq", []byte("print 2;"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.Lookup("q.mq")
	if !ok || latest != id2 {
		t.Fatalf("Lookup = %d,%v; want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "print 1;" {
		t.Errorf("old version content = %q", got)
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.mq", []byte("ab\ncd\n\nx"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // the newline itself
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Errorf("Resolve(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.mq", []byte("first\nsecond\nthird")))

	for n, want := range map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""} {
		if got := f.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.toml")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
}

func TestSpanText(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.mq", []byte("let x = 1;"))
	if got := fs.Text(Span{File: id, Start: 4, End: 5}); got != "x" {
		t.Errorf("Text = %q", got)
	}
	sp := Span{File: id, Start: 4, End: 5}.Cover(Span{File: id, Start: 8, End: 9})
	if sp.Start != 4 || sp.End != 9 {
		t.Errorf("Cover = %v", sp)
	}
}
