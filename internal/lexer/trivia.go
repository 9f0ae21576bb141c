package lexer

import "mirror/internal/diag"

// skipTrivia пропускает пробелы, переводы строк и комментарии:
// "//" и "#" до конца строки, "/* ... */" с вложенностью.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.cursor.Bump()
		case b == '#':
			lx.skipLine()
		case b == '/':
			if !lx.skipComment() {
				return
			}
		default:
			return
		}
	}
}

func (lx *Lexer) skipLine() {
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
}

// skipComment reports false, without consuming anything, when '/' does
// not open a comment.
func (lx *Lexer) skipComment() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' {
		return false
	}
	switch b1 {
	case '/':
		lx.skipLine()
		return true
	case '*':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		depth := 1
		for !lx.cursor.EOF() && depth > 0 {
			if c0, c1, ok := lx.cursor.Peek2(); ok {
				if c0 == '/' && c1 == '*' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					depth++
					continue
				}
				if c0 == '*' && c1 == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					depth--
					continue
				}
			}
			lx.cursor.Bump()
		}
		if depth > 0 {
			lx.errLex(diag.SynUnterminatedComment, lx.cursor.SpanFrom(start), "unterminated block comment")
		}
		return true
	}
	return false
}
