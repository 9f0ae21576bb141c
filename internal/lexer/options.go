package lexer

import (
	"mirror/internal/diag"
	"mirror/internal/source"
)

// maxTokenLength bounds a single token; longer input is reported and the
// rest of the file is skipped.
const maxTokenLength = 4096

type Options struct {
	Reporter diag.Reporter // может быть nil: тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
