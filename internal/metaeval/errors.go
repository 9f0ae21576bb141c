package metaeval

import (
	"fmt"

	"mirror/internal/diag"
	"mirror/internal/meta"
)

// Error is a user-facing evaluation failure. Callers attach a source span
// and report it with Code.
type Error struct {
	Code diag.Code
	Op   meta.Op
	Kind meta.Kind // subject kind, KindUnknown when not applicable
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func errorf(code diag.Code, op meta.Op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// invariantf reports an internal inconsistency between the classification
// and the operation handlers.
func invariantf(format string, args ...any) {
	panic(fmt.Sprintf("metaeval: invariant violated: "+format, args...))
}
