package lexer

import (
	"testing"

	"mirror/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.mq", []byte(content))
	return fs.Get(id)
}

// TestSequentialReading проверяет последовательное чтение: "a\nb" → a, \n, b, EOF
func TestSequentialReading(t *testing.T) {
	c := NewCursor(createFile("a\nb"))
	for _, want := range []byte("a\nb") {
		if c.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := c.Bump(); got != want {
			t.Fatalf("Bump = %q, want %q", got, want)
		}
	}
	if !c.EOF() || c.Peek() != 0 || c.Bump() != 0 {
		t.Fatalf("cursor must stay at EOF")
	}
}

func TestMarkResetAndSpan(t *testing.T) {
	c := NewCursor(createFile("reflexpr"))
	m := c.Mark()
	for range 4 {
		c.Bump()
	}
	sp := c.SpanFrom(m)
	if sp.Start != 0 || sp.End != 4 {
		t.Fatalf("span = %v", sp)
	}
	c.Reset(m)
	if c.Peek() != 'r' {
		t.Fatalf("Reset did not rewind")
	}
	if !c.Eat('r') || c.Eat('r') {
		t.Fatalf("Eat must consume only a matching byte")
	}
}

func TestPeek2AtEnd(t *testing.T) {
	c := NewCursor(createFile("::"))
	if b0, b1, ok := c.Peek2(); !ok || b0 != ':' || b1 != ':' {
		t.Fatalf("Peek2 = %q %q %v", b0, b1, ok)
	}
	c.Bump()
	if _, _, ok := c.Peek2(); ok {
		t.Fatalf("Peek2 with one byte left must fail")
	}
	c.SkipToEOF()
	if !c.EOF() {
		t.Fatalf("SkipToEOF")
	}
}
