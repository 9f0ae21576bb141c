package lexer

import (
	"mirror/internal/diag"
	"mirror/internal/token"

	"golang.org/x/text/unicode/norm"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword сканирует идентификатор и проверяет через LookupKeyword.
// Text идентификатора нормализуется в NFC, чтобы совпадать с именами юнита.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.SynUnknownChar, sp, "unknown character "+quoteRune(r))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	lx.bumpRune()
	for {
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			break
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: norm.NFC.String(text)}
}
