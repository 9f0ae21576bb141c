package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/meta"
	"mirror/internal/metaeval"
	"mirror/internal/metaobj"
	"mirror/internal/source"
	"mirror/internal/trace"
)

// Line is the output of one print statement.
type Line struct {
	Span   source.Span
	Values []metaeval.Value
	Text   string // rendered values separated by spaces
}

// Outcome summarises one run.
type Outcome struct {
	Lines   []Line
	Stmts   int // statements evaluated
	Asserts int // assertions that held
	Failed  int // statements that reported an error
}

type binding struct {
	val      metaeval.Value
	span     source.Span
	poisoned bool // let с ошибкой: использование имени молча проваливается
}

// Interp evaluates query files against one unit. It owns a metaobject
// Context and is not safe for concurrent use; workers checking in
// parallel each create their own over a forked unit.
type Interp struct {
	u   *decl.Unit
	fs  *source.FileSet
	ctx *metaobj.Context
	ev  *metaeval.Evaluator
	res *Resolver
	rep diag.Reporter
	env map[string]binding
}

// NewInterp creates an interpreter with a fresh metaobject Context.
func NewInterp(u *decl.Unit, fs *source.FileSet, rep diag.Reporter) *Interp {
	ctx := metaobj.NewContext(u)
	return &Interp{
		u:   u,
		fs:  fs,
		ctx: ctx,
		ev:  metaeval.New(ctx),
		res: NewResolver(u),
		rep: rep,
		env: make(map[string]binding),
	}
}

// Context returns the metaobject context of the interpreter.
func (in *Interp) Context() *metaobj.Context { return in.ctx }

// Evaluator returns the operation evaluator of the interpreter.
func (in *Interp) Evaluator() *metaeval.Evaluator { return in.ev }

// Lookup returns the value bound to name by a previous let.
func (in *Interp) Lookup(name string) (metaeval.Value, bool) {
	b, ok := in.env[name]
	if !ok || b.poisoned {
		return metaeval.Value{}, false
	}
	return b.val, true
}

// Run evaluates the statements of f in order. Bindings persist across
// calls, so several files can share one environment.
func (in *Interp) Run(ctx context.Context, f *File) Outcome {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "query:"+f.Path)
	var out Outcome
	defer func() {
		span.WithExtra("stmts", strconv.Itoa(out.Stmts)).
			WithExtra("failed", strconv.Itoa(out.Failed)).
			End("")
	}()

	for _, st := range f.Stmts {
		if ctx.Err() != nil {
			break
		}
		out.Stmts++
		if !in.stmt(ctx, st, &out) {
			out.Failed++
		}
	}
	return out
}

func (in *Interp) stmt(ctx context.Context, st *Stmt, out *Outcome) bool {
	name := st.Kind.String()
	if st.Kind == StmtLet {
		name += " " + st.Name
	}
	ctx, span := trace.Start(ctx, trace.ScopeStmt, name)
	ok := false
	defer func() {
		if ok {
			span.End("")
		} else {
			span.End("failed")
		}
	}()

	switch st.Kind {
	case StmtLet:
		if prev, dup := in.env[st.Name]; dup {
			in.report(diag.RefRedefinedName, st.NameSpan, fmt.Sprintf("%q is already bound", st.Name)).
				WithNote(prev.span, "previous binding is here").
				Emit()
			return false
		}
		v, good := in.eval(ctx, st.Exprs[0])
		in.env[st.Name] = binding{val: v, span: st.NameSpan, poisoned: !good}
		ok = good

	case StmtPrint:
		line := Line{Span: st.Span}
		parts := make([]string, 0, len(st.Exprs))
		for _, e := range st.Exprs {
			v, good := in.eval(ctx, e)
			if !good {
				return false
			}
			line.Values = append(line.Values, v)
			parts = append(parts, in.Render(v))
		}
		line.Text = strings.Join(parts, " ")
		out.Lines = append(out.Lines, line)
		ok = true

	case StmtAssert:
		ok = in.assert(ctx, st.Exprs[0])
		if ok {
			out.Asserts++
		}
	}
	return ok
}

func (in *Interp) assert(ctx context.Context, e *Expr) bool {
	if e.Kind == ExprEq || e.Kind == ExprNe {
		l, ok := in.eval(ctx, e.Args[0])
		if !ok {
			return false
		}
		r, ok := in.eval(ctx, e.Args[1])
		if !ok {
			return false
		}
		same, ok := in.equal(e, l, r)
		if !ok {
			return false
		}
		if same == (e.Kind == ExprEq) {
			return true
		}
		in.report(diag.RefAssertFailed, e.Span, "assertion failed: "+in.fs.Text(e.Span)).
			WithNote(e.Args[0].Span, "left is "+in.Render(l)).
			WithNote(e.Args[1].Span, "right is "+in.Render(r)).
			Emit()
		return false
	}

	v, ok := in.eval(ctx, e)
	if !ok {
		return false
	}
	if v.Kind != meta.ResultBool {
		in.report(diag.RefArgumentType, e.Span, "assertion must be bool, got "+v.Kind.String()).Emit()
		return false
	}
	if !v.Bool {
		in.report(diag.RefAssertFailed, e.Span, "assertion failed: "+in.fs.Text(e.Span)).Emit()
	}
	return v.Bool
}

func (in *Interp) eval(ctx context.Context, e *Expr) (metaeval.Value, bool) {
	switch e.Kind {
	case ExprInt:
		return metaeval.UnsignedLongValue(e.Int), true
	case ExprString:
		return metaeval.StringValue(e.Str), true
	case ExprBool:
		return metaeval.BoolValue(e.Bool), true

	case ExprName:
		b, ok := in.env[e.Name]
		if !ok {
			in.report(diag.RefUnboundName, e.Span, fmt.Sprintf("use of unbound name %q", e.Name)).Emit()
			return metaeval.Value{}, false
		}
		return b.val, !b.poisoned

	case ExprNot:
		v, ok := in.eval(ctx, e.Args[0])
		if !ok {
			return v, false
		}
		if v.Kind != meta.ResultBool {
			in.report(diag.RefArgumentType, e.Args[0].Span, "operand of '!' must be bool, got "+v.Kind.String()).Emit()
			return metaeval.Value{}, false
		}
		return metaeval.BoolValue(!v.Bool), true

	case ExprEq, ExprNe:
		l, ok := in.eval(ctx, e.Args[0])
		if !ok {
			return l, false
		}
		r, ok := in.eval(ctx, e.Args[1])
		if !ok {
			return r, false
		}
		same, ok := in.equal(e, l, r)
		if !ok {
			return metaeval.Value{}, false
		}
		return metaeval.BoolValue(same == (e.Kind == ExprEq)), true

	case ExprCall:
		return in.call(ctx, e)

	case ExprReflect:
		op, err := in.res.Resolve(e.Reflect)
		if err != nil {
			var re *ResolveError
			if errors.As(err, &re) {
				in.report(re.Code, re.Span, re.Msg).Emit()
				return metaeval.Value{}, false
			}
			panic(err)
		}
		return metaeval.MetaValue(in.ctx.Reflect(op)), true
	}
	panic(fmt.Sprintf("query: bad expression kind %d", e.Kind))
}

func isNumeric(k meta.ResultKind) bool {
	return k == meta.ResultUnsigned || k == meta.ResultUnsignedLong || k == meta.ResultConstant
}

// equal compares two values; metaobjects compare with ReflectsSame.
func (in *Interp) equal(e *Expr, l, r metaeval.Value) (bool, bool) {
	if l.Kind == meta.ResultMetaobject && r.Kind == meta.ResultMetaobject {
		same, err := in.ev.ReflectsSame(l.Meta, r.Meta)
		if err != nil {
			in.evalError(e, err)
			return false, false
		}
		return same, true
	}
	if l.Kind != r.Kind && !(isNumeric(l.Kind) && isNumeric(r.Kind)) {
		in.report(diag.RefArgumentType, e.Span, fmt.Sprintf("cannot compare %s with %s", l.Kind, r.Kind)).Emit()
		return false, false
	}
	return l.Equal(r), true
}

func (in *Interp) call(ctx context.Context, e *Expr) (metaeval.Value, bool) {
	op, known := meta.LookupOp(e.Name)
	if !known {
		in.report(diag.RefUnknownOperation, e.NameSpan, fmt.Sprintf("unknown operation %q", e.Name)).Emit()
		return metaeval.Value{}, false
	}
	args := make([]metaeval.Value, len(e.Args))
	for i, a := range e.Args {
		v, ok := in.eval(ctx, a)
		if !ok {
			return v, false
		}
		args[i] = v
	}

	_, span := trace.Start(ctx, trace.ScopeOp, op.String())
	v, err := in.ev.Apply(op, args...)
	if err != nil {
		span.End(err.Error())
		in.evalError(e, err)
		return metaeval.Value{}, false
	}
	span.End(v.Kind.String())
	return v, true
}

// evalError reports an evaluator failure at the call site.
func (in *Interp) evalError(e *Expr, err error) {
	var me *metaeval.Error
	if !errors.As(err, &me) {
		panic(fmt.Errorf("query: unexpected evaluator error: %w", err))
	}
	b := in.report(me.Code, e.Span, me.Msg)
	switch me.Code {
	case diag.RefInapplicableOperation, diag.RefForeignMetaobject:
		if len(e.Args) > 0 {
			b.WithNote(e.Args[0].Span, "metaobject comes from here")
		}
	case diag.RefIndexOutOfRange:
		if len(e.Args) > 1 {
			b.WithNote(e.Args[1].Span, "index computed here; check GetSize first")
		}
	}
	b.Emit()
}

func (in *Interp) report(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(in.rep, code, sp, msg)
}

// Render formats v for print output. Metaobjects render as their kind
// followed by the display name.
func (in *Interp) Render(v metaeval.Value) string {
	switch v.Kind {
	case meta.ResultMetaobject:
		return in.Describe(v.Meta)
	case meta.ResultString:
		return strconv.Quote(v.Str)
	case meta.ResultSequence:
		parts := make([]string, len(v.Seq))
		for i, id := range v.Seq {
			parts[i] = in.Describe(id)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.String()
}

// Describe renders a metaobject without allocating new handles.
func (in *Interp) Describe(id metaobj.ID) string {
	h, ok := in.ctx.Get(id)
	if !ok {
		return metaeval.MetaValue(id).String()
	}
	if h.IsSequence() {
		var flags string
		switch {
		case h.ExposePrivate:
			flags = ",private"
		case h.ExposeProtected:
			flags = ",protected"
		}
		n, _ := in.ev.Size(id)
		return fmt.Sprintf("%s<%s%s>[%d]", h.Kind, h.SeqKind, flags, n)
	}
	if h.IsNoSpecifier() {
		return h.Kind.String() + " none"
	}
	if !meta.OpGetDisplayName.Applicable(h.Kind) {
		return h.Kind.String()
	}
	name, err := in.ev.Unary(meta.OpGetDisplayName, id)
	if err != nil || name.Str == "" {
		return h.Kind.String()
	}
	return h.Kind.String() + " " + name.Str
}

// errorCounter считает ошибки, проходящие через Reporter.
type errorCounter struct {
	next diag.Reporter
	n    int
}

func (c *errorCounter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev == diag.SevError {
		c.n++
	}
	if c.next != nil {
		c.next.Report(code, sev, primary, msg, notes)
	}
}

// Evaluate parses file id and runs it on a fresh interpreter unless the
// file has syntax errors.
func Evaluate(ctx context.Context, u *decl.Unit, fs *source.FileSet, id source.FileID, rep diag.Reporter) (*File, Outcome) {
	counter := &errorCounter{next: rep}
	f := Parse(fs, id, Options{Reporter: counter})
	if counter.n > 0 {
		return f, Outcome{Failed: counter.n}
	}
	return f, NewInterp(u, fs, rep).Run(ctx, f)
}
