package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"let":      KwLet,
		"print":    KwPrint,
		"assert":   KwAssert,
		"reflexpr": KwReflexpr,
		"typename": KwTypename,
		"true":     KwTrue,
		"false":    KwFalse,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	// спецификаторы и имена типов: Ident
	notKw := []string{
		"Let", "PRINT", "Reflexpr",
		"class", "struct", "virtual", "const", "int", "unsigned",
		"GetBaseName", "get_base_name",
	}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}
