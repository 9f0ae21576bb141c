package lexer

import (
	"mirror/internal/diag"
	"mirror/internal/token"
)

// "..." с escape \" \\ \n \t \r \xNN. Text: исходный срез с кавычками;
// значение строит парсер через Unquote.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	valid := true
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); b {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			if !valid {
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
			}
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		case '\\':
			esc := lx.cursor.Mark()
			lx.cursor.Bump()
			if !lx.scanEscape() {
				valid = false
				lx.errLex(diag.SynBadEscape, lx.cursor.SpanFrom(esc), "invalid escape sequence")
			}
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.SynUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		default:
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.SynUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanEscape() bool {
	switch lx.cursor.Peek() {
	case '"', '\\', 'n', 't', 'r', '0':
		lx.cursor.Bump()
		return true
	case 'x':
		lx.cursor.Bump()
		for range 2 {
			if !isHex(lx.cursor.Peek()) {
				return false
			}
			lx.cursor.Bump()
		}
		return true
	}
	return false
}

// Unquote decodes a StringLit spelling produced by the lexer.
func Unquote(text string) string {
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 >= len(text) {
			out = append(out, c)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		case 'x':
			if i+2 < len(text) {
				out = append(out, hexVal(text[i+1])<<4|hexVal(text[i+2]))
				i += 2
			}
		default:
			out = append(out, text[i])
		}
	}
	return string(out)
}
