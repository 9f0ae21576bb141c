package driver

import (
	"context"
	"fmt"

	"mirror/internal/diag"
	"mirror/internal/meta"
	"mirror/internal/query"
	"mirror/internal/source"
	"mirror/internal/trace"
)

// inspectBinding is the name the subject is bound to in the generated query.
const inspectBinding = "subject"

// InspectRow is the result of one unary operation on the subject.
type InspectRow struct {
	Op     string `json:"op" msgpack:"op"`
	Result string `json:"result" msgpack:"result"` // вид результата: bool, string, ...
	Value  string `json:"value,omitempty" msgpack:"value,omitempty"`
	Err    string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// InspectResult describes a reflected entity. Subject is empty when the
// entity could not be reflected; the reason is in Bag.
type InspectResult struct {
	Entity   string       `json:"entity" msgpack:"entity"`
	Subject  string       `json:"subject,omitempty" msgpack:"subject,omitempty"`
	Kind     string       `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Concepts []string     `json:"concepts,omitempty" msgpack:"concepts,omitempty"`
	Type     string       `json:"reflected_type,omitempty" msgpack:"reflected_type,omitempty"`
	Rows     []InspectRow `json:"ops,omitempty" msgpack:"ops,omitempty"`

	FileSet *source.FileSet `json:"-" msgpack:"-"`
	Bag     *diag.Bag       `json:"-" msgpack:"-"`
}

// Inspect reflects entity (any reflexpr operand) in the unit at unitPath
// and applies every unary operation applicable to its kind.
func Inspect(ctx context.Context, unitPath, entity string, maxDiagnostics int) (*InspectResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "inspect")
	defer span.End("")

	fs := source.NewFileSet()
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	res := &InspectResult{Entity: entity, FileSet: fs, Bag: bag}

	u, _, err := LoadUnit(ctx, fs, unitPath, rep)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return res, nil
	}

	src := fmt.Sprintf("let %s = reflexpr(%s);\n", inspectBinding, entity)
	id := fs.AddVirtual("<inspect>", []byte(src))
	f := query.Parse(fs, id, query.Options{Reporter: rep, MaxErrors: maxErrors(maxDiagnostics)})
	if bag.HasErrors() {
		return res, nil
	}
	in := query.NewInterp(u, fs, rep)
	if out := in.Run(ctx, f); out.Failed > 0 {
		return res, nil
	}
	v, ok := in.Lookup(inspectBinding)
	if !ok || v.Kind != meta.ResultMetaobject {
		return res, nil
	}

	mctx := in.Context()
	h := mctx.MustGet(v.Meta)
	res.Subject = in.Render(v)
	res.Kind = h.Kind.String()
	res.Concepts = h.Kind.Concepts().Names()
	if t := mctx.ReflectedType(h); t.IsValid() {
		res.Type = in.Describe(mctx.ReflectType(t, true))
	}

	ev := in.Evaluator()
	for _, op := range meta.Ops() {
		if !op.IsUnary() || !op.Applicable(h.Kind) {
			continue
		}
		row := InspectRow{Op: op.String()}
		if info, ok := meta.Info(op); ok {
			row.Result = info.Result.String()
		}
		val, err := ev.Unary(op, v.Meta)
		if err != nil {
			row.Err = err.Error()
		} else {
			row.Value = in.Render(val)
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
