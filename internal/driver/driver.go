// Package driver runs the reflection pipeline for the CLI: it loads a
// translation unit, evaluates one query (Eval), a batch of query files
// in parallel (CheckAll) or reflects a single entity (Inspect).
package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"fortio.org/safecast"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/observ"
	"mirror/internal/query"
	"mirror/internal/source"
	"mirror/internal/trace"
	"mirror/internal/unitfile"
)

// InlineName is the file name given to query text passed with -e.
const InlineName = "<inline>"

type EvalOptions struct {
	UnitPath       string
	QueryPath      string // пусто: берём Source
	Source         string
	MaxDiagnostics int
	Timings        bool
	PhaseObserver  PhaseObserver
}

// EvalResult holds everything the CLI needs to render one evaluation.
// Unit, File and Interp are nil when an earlier phase failed.
type EvalResult struct {
	FileSet *source.FileSet
	Unit    *decl.Unit
	File    *query.File
	Interp  *query.Interp
	Outcome query.Outcome
	Bag     *diag.Bag
	Timing  *observ.Report
}

// phases связывает таймер и наблюдателя: оба опциональны.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

func (p phases) begin(name string) func(note string) {
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	idx := p.timer.Begin(name)
	started := time.Now()
	return func(note string) {
		p.timer.End(idx, note)
		if p.observer != nil {
			p.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(started)})
		}
	}
}

// LoadUnit reads and builds the unit file at path. A nil unit with a nil
// error means the file had errors, which are in r.
func LoadUnit(ctx context.Context, fs *source.FileSet, path string, r diag.Reporter) (*decl.Unit, source.FileID, error) {
	_, span := trace.Start(ctx, trace.ScopeFile, "unit:"+filepath.Base(path))
	u, id, err := unitfile.Load(fs, path, r)
	switch {
	case err != nil:
		span.End(err.Error())
	case u == nil:
		span.End("errors")
	default:
		span.WithExtra("decls", strconv.Itoa(u.Len())).End("")
	}
	return u, id, err
}

func maxErrors(n int) uint {
	v, err := safecast.Conv[uint](n)
	if err != nil {
		return 0
	}
	return v
}

// Eval loads the unit and evaluates one query file or inline source.
// The returned error covers I/O failures only; everything else is a
// diagnostic in the result's Bag.
func Eval(ctx context.Context, opts EvalOptions) (*EvalResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "eval")
	defer span.End("")

	fs := source.NewFileSet()
	bag := diag.NewBag(opts.MaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	res := &EvalResult{FileSet: fs, Bag: bag}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	ph := phases{timer: timer, observer: opts.PhaseObserver}

	end := ph.begin("load unit")
	u, _, err := LoadUnit(ctx, fs, opts.UnitPath, rep)
	if err != nil {
		end("failed")
		return nil, err
	}
	if u == nil {
		end("errors")
		return res, nil
	}
	end(fmt.Sprintf("%d decls", u.Len()))
	res.Unit = u

	end = ph.begin("load query")
	var id source.FileID
	if opts.QueryPath != "" {
		id, err = fs.Load(opts.QueryPath)
		if err != nil {
			end("failed")
			return nil, fmt.Errorf("failed to load query file: %w", err)
		}
	} else {
		id = fs.AddVirtual(InlineName, []byte(opts.Source))
	}
	end("")

	// лексер после восстановления может повторить ту же ошибку
	qrep := diag.NewDedupReporter(rep)

	end = ph.begin("parse")
	res.File = query.Parse(fs, id, query.Options{Reporter: qrep, MaxErrors: maxErrors(opts.MaxDiagnostics)})
	end(fmt.Sprintf("%d statements", len(res.File.Stmts)))
	if bag.HasErrors() {
		return res, nil
	}

	end = ph.begin("eval")
	res.Interp = query.NewInterp(u, fs, qrep)
	res.Outcome = res.Interp.Run(ctx, res.File)
	end(fmt.Sprintf("%d ok, %d failed", res.Outcome.Stmts-res.Outcome.Failed, res.Outcome.Failed))

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "eval",
			Path:    fs.Get(id).Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res, nil
}
