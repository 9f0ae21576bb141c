package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/observ"
	"mirror/internal/project"
	"mirror/internal/query"
	"mirror/internal/source"
	"mirror/internal/trace"
)

type CheckOptions struct {
	UnitPath       string
	Files          []string
	Jobs           int // <= 0: GOMAXPROCS
	MaxDiagnostics int
	Cache          *DiskCache // nil: без кеша
	Progress       ProgressSink
	Timings        bool
	PhaseObserver  PhaseObserver
}

// FileResult is the outcome of checking one query file.
type FileResult struct {
	Path    string
	FileID  source.FileID // 0, если файл не загрузился
	Bag     *diag.Bag
	Outcome query.Outcome
	Cached  bool
	Elapsed time.Duration
}

// CheckResult holds the shared unit and one result per query file, in
// the order the files were given.
type CheckResult struct {
	FileSet *source.FileSet
	Unit    *decl.Unit // nil, если unit-файл с ошибками
	UnitBag *diag.Bag
	Files   []FileResult
	Timing  *observ.Report
}

// HasErrors reports whether the unit or any query file produced errors.
func (r *CheckResult) HasErrors() bool {
	if r.UnitBag.HasErrors() {
		return true
	}
	for i := range r.Files {
		if r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Failed sums failed statements across all files.
func (r *CheckResult) Failed() int {
	n := 0
	for i := range r.Files {
		n += r.Files[i].Outcome.Failed
	}
	return n
}

// CheckAll loads the unit once and evaluates every query file against it
// in parallel. Each worker evaluates on its own fork of the unit.
func CheckAll(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check")
	defer span.End("")

	fs := source.NewFileSet()
	res := &CheckResult{FileSet: fs, UnitBag: diag.NewBag(opts.MaxDiagnostics)}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	ph := phases{timer: timer, observer: opts.PhaseObserver}

	end := ph.begin("load unit")
	emit(opts.Progress, Event{File: opts.UnitPath, Stage: StageLoad, Status: StatusWorking})
	u, unitID, err := LoadUnit(ctx, fs, opts.UnitPath, diag.BagReporter{Bag: res.UnitBag})
	if err != nil {
		end("failed")
		emit(opts.Progress, Event{File: opts.UnitPath, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, err
	}
	if u == nil {
		end("errors")
		emit(opts.Progress, Event{File: opts.UnitPath, Stage: StageLoad, Status: StatusError})
		return res, nil
	}
	end(fmt.Sprintf("%d decls", u.Len()))
	emit(opts.Progress, Event{File: opts.UnitPath, Stage: StageLoad, Status: StatusDone})
	res.Unit = u
	unitHash := project.Digest(fs.Get(unitID).Hash)

	// Предзагрузка: после неё FileSet только читается.
	end = ph.begin("load queries")
	ids := make([]source.FileID, len(opts.Files))
	loadErrs := make([]error, len(opts.Files))
	for i, path := range opts.Files {
		ids[i], loadErrs[i] = fs.Load(path)
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}
	end(fmt.Sprintf("%d files", len(opts.Files)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	res.Files = make([]FileResult, len(opts.Files))

	end = ph.begin("check")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(opts.Files))))
	for i, path := range opts.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			fr := &res.Files[i]
			fr.Path = path
			fr.Bag = diag.NewBag(opts.MaxDiagnostics)

			if loadErrs[i] != nil {
				fr.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErrs[i].Error()))
				fr.Elapsed = time.Since(started)
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErrs[i], Elapsed: fr.Elapsed})
				return nil
			}
			fr.FileID = ids[i]
			checkFile(gctx, u, fs, unitHash, fr, opts)
			return nil
		})
	}
	err = g.Wait()
	end("")
	if err != nil {
		return nil, err
	}

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(res.UnitBag, timingPayload{
			Kind:    "check",
			Path:    opts.UnitPath,
			Files:   len(opts.Files),
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res, nil
}

func checkFile(ctx context.Context, u *decl.Unit, fs *source.FileSet, unitHash project.Digest, fr *FileResult, opts CheckOptions) {
	started := time.Now()
	file := fs.Get(fr.FileID)
	queryHash := project.Digest(file.Hash)
	key := project.Combine(cacheSalt, unitHash, queryHash)

	var payload DiskPayload
	// битая запись: просто промах
	if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
		fr.Bag, fr.Outcome = payload.restore(fr.FileID, opts.MaxDiagnostics)
		fr.Cached = true
		fr.Elapsed = time.Since(started)
		emit(opts.Progress, Event{File: fr.Path, Stage: StageEval, Status: StatusCached, Elapsed: fr.Elapsed})
		return
	}

	emit(opts.Progress, Event{File: fr.Path, Stage: StageParse, Status: StatusWorking})
	_, fr.Outcome = query.Evaluate(ctx, u.Fork(), fs, fr.FileID, diag.NewDedupReporter(diag.BagReporter{Bag: fr.Bag}))
	fr.Elapsed = time.Since(started)

	if ctx.Err() != nil {
		return
	}
	status := StatusDone
	if fr.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: fr.Path, Stage: StageEval, Status: status, Elapsed: fr.Elapsed})

	if opts.Cache != nil {
		p := newDiskPayload(fr.Path, [2]project.Digest{unitHash, queryHash}, fr.Bag, &fr.Outcome)
		if err := opts.Cache.Put(key, p); err != nil {
			trace.Point(ctx, trace.ScopeFile, "cache put failed", err.Error())
		}
	}
}
