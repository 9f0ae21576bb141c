package lexer

import (
	"strings"
	"testing"

	"mirror/internal/diag"
	"mirror/internal/source"
	"mirror/internal/token"
)

func TestTokenTooLongTriggersDiagnosticAndStops(t *testing.T) {
	content := strings.Repeat("a", maxTokenLength+1) + " b"
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("long.mq", []byte(content)))

	bag := diag.NewBag(4)
	lx := New(file, Options{Reporter: diag.BagReporter{Bag: bag}})

	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected invalid token, got %v", tok.Kind)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynTokenTooLong {
		t.Fatalf("expected SynTokenTooLong, got %v", items)
	}
	// остаток файла пропускается
	if next := lx.Next(); next.Kind != token.EOF {
		t.Fatalf("expected EOF after long token, got %v", next.Kind)
	}
}

func TestTokenAtLimitAllowed(t *testing.T) {
	content := strings.Repeat("b", maxTokenLength)
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("limit.mq", []byte(content)))

	bag := diag.NewBag(1)
	lx := New(file, Options{Reporter: diag.BagReporter{Bag: bag}})

	if tok := lx.Next(); tok.Kind != token.Ident {
		t.Fatalf("expected ident token, got %v", tok.Kind)
	}
	if bag.HasErrors() {
		t.Fatalf("did not expect diagnostics, got %v", bag.Items())
	}
}
