package lexer

import (
	"mirror/internal/diag"
	"mirror/internal/token"
)

// Поддержка: 0, 123, 1_000, 0b1010, 0o17, 0x1F. Дробных чисел в запросах нет:
// индексы и значения констант: целые.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	digit := isDec
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' {
		prefixed := true
		switch b1 {
		case 'b', 'B':
			digit = isBin
		case 'o', 'O':
			digit = isOct
		case 'x', 'X':
			digit = isHex
		default:
			prefixed = false
		}
		if prefixed {
			lx.cursor.Bump()
			lx.cursor.Bump()
		}
	}

	ndigits := 0
	for {
		b := lx.cursor.Peek()
		if b == '_' {
			lx.cursor.Bump()
			continue
		}
		if !digit(b) {
			break
		}
		lx.cursor.Bump()
		ndigits++
	}

	// хвост вроде "12abc" или "1.5": одна ошибка на весь хвост
	bad := ndigits == 0
	for isIdentContinueByte(lx.cursor.Peek()) || lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		bad = true
	}
	sp := lx.cursor.SpanFrom(start)
	if bad {
		lx.errLex(diag.SynBadNumber, sp, "malformed integer literal "+quote(lx.text(sp)))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp)}
}
