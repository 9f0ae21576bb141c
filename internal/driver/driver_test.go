package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"mirror/internal/diag"
	"mirror/internal/driver"
	"mirror/internal/testkit"
)

// writeFiles creates files under a fresh temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(ev driver.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) count(st driver.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Status == st {
			n++
		}
	}
	return n
}

func TestEvalInline(t *testing.T) {
	dir := writeFiles(t, map[string]string{"unit.toml": testkit.ReflectionUnit})

	res, err := driver.Eval(context.Background(), driver.EvalOptions{
		UnitPath:       filepath.Join(dir, "unit.toml"),
		Source:         `let p = reflexpr(geo::point); print get_base_name(p); assert get_size(get_data_members(p)) == 2;`,
		MaxDiagnostics: 10,
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShort(res.Bag.Items(), res.FileSet, true))
	}
	if res.Outcome.Stmts != 3 || res.Outcome.Failed != 0 {
		t.Fatalf("outcome = %+v", res.Outcome)
	}
	if len(res.Outcome.Lines) != 1 || res.Outcome.Lines[0].Text != `"point"` {
		t.Fatalf("lines = %+v", res.Outcome.Lines)
	}
	if res.Timing != nil {
		t.Fatal("timing collected without Timings")
	}
}

func TestEvalTimings(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"unit.toml": testkit.ReflectionUnit,
		"a.mq":      "print reflexpr(int);\n",
	})
	var phases []string
	res, err := driver.Eval(context.Background(), driver.EvalOptions{
		UnitPath:       filepath.Join(dir, "unit.toml"),
		QueryPath:      filepath.Join(dir, "a.mq"),
		MaxDiagnostics: 10,
		Timings:        true,
		PhaseObserver: func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseEnd {
				phases = append(phases, ev.Name)
			}
		},
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	want := []string{"load unit", "load query", "parse", "eval"}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phases = %v, want %v", phases, want)
		}
	}
	if res.Timing == nil || len(res.Timing.Phases) != len(want) {
		t.Fatalf("timing report = %+v", res.Timing)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || len(items[0].Notes) != 1 {
		t.Fatalf("expected one timing diagnostic, got %+v", items)
	}
}

func TestEvalErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"unit.toml": testkit.ReflectionUnit,
		"bad.toml":  "[unit]\nname = 1\n",
	})

	if _, err := driver.Eval(context.Background(), driver.EvalOptions{
		UnitPath:  filepath.Join(dir, "unit.toml"),
		QueryPath: filepath.Join(dir, "missing.mq"),
	}); err == nil {
		t.Fatal("expected I/O error for missing query file")
	}
	if _, err := driver.Eval(context.Background(), driver.EvalOptions{
		UnitPath: filepath.Join(dir, "missing.toml"),
	}); err == nil {
		t.Fatal("expected I/O error for missing unit file")
	}

	res, err := driver.Eval(context.Background(), driver.EvalOptions{
		UnitPath:       filepath.Join(dir, "bad.toml"),
		Source:         "print 1;",
		MaxDiagnostics: 10,
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Unit != nil || !res.Bag.HasErrors() {
		t.Fatalf("expected unit errors, got unit=%v bag=%d", res.Unit, res.Bag.Len())
	}

	res, err = driver.Eval(context.Background(), driver.EvalOptions{
		UnitPath:       filepath.Join(dir, "unit.toml"),
		Source:         "print reflexpr(int)",
		MaxDiagnostics: 10,
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Interp != nil || !res.Bag.HasErrors() {
		t.Fatal("syntax errors must stop before evaluation")
	}
	if got := res.Bag.Items()[0].Code; got != diag.SynExpectSemicolon {
		t.Fatalf("code = %v, want %v", got, diag.SynExpectSemicolon)
	}
}

func TestCheckAllWithCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"unit.toml": testkit.ReflectionUnit,
		"a.mq":      "let p = reflexpr(geo::point);\nprint get_base_name(p);\nassert is_struct(p);\n",
		"b.mq":      "assert get_size(get_data_members(reflexpr(bar))) == 3;\n",
		"c.mq":      "print reflexpr(color);\n",
	})
	files := []string{
		filepath.Join(dir, "a.mq"),
		filepath.Join(dir, "b.mq"),
		filepath.Join(dir, "c.mq"),
		filepath.Join(dir, "missing.mq"),
	}
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	run := func(sink *recordingSink) *driver.CheckResult {
		t.Helper()
		res, err := driver.CheckAll(context.Background(), driver.CheckOptions{
			UnitPath:       filepath.Join(dir, "unit.toml"),
			Files:          files,
			Jobs:           2,
			MaxDiagnostics: 20,
			Cache:          cache,
			Progress:       sink,
		})
		if err != nil {
			t.Fatalf("CheckAll: %v", err)
		}
		if len(res.Files) != len(files) {
			t.Fatalf("got %d results", len(res.Files))
		}
		return res
	}

	first := &recordingSink{}
	res := run(first)
	if !res.HasErrors() {
		t.Fatal("expected errors")
	}
	for i, fr := range res.Files {
		if fr.Path != files[i] {
			t.Fatalf("result %d is for %s", i, fr.Path)
		}
		if fr.Cached {
			t.Fatalf("%s cached on first run", fr.Path)
		}
	}
	a, b, c, missing := res.Files[0], res.Files[1], res.Files[2], res.Files[3]
	if a.Bag.Len() != 0 || a.Outcome.Stmts != 3 || a.Outcome.Lines[0].Text != `"point"` {
		t.Fatalf("a.mq: %+v", a.Outcome)
	}
	if !b.Bag.HasErrors() || b.Bag.Items()[0].Code != diag.RefAssertFailed {
		t.Fatalf("b.mq: expected failed assertion")
	}
	if c.Outcome.Lines[0].Text != "Enum color" {
		t.Fatalf("c.mq: %+v", c.Outcome.Lines)
	}
	if missing.FileID != 0 || missing.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatal("missing.mq: expected load error")
	}
	if first.count(driver.StatusCached) != 0 {
		t.Fatal("unexpected cached events")
	}

	second := &recordingSink{}
	again := run(second)
	if second.count(driver.StatusCached) != 3 {
		t.Fatalf("cached events = %d, want 3", second.count(driver.StatusCached))
	}
	for i := range 3 {
		got, want := again.Files[i], res.Files[i]
		if !got.Cached {
			t.Fatalf("%s not served from cache", got.Path)
		}
		if got.Outcome.Stmts != want.Outcome.Stmts || got.Outcome.Failed != want.Outcome.Failed {
			t.Fatalf("%s: outcome %+v, want %+v", got.Path, got.Outcome, want.Outcome)
		}
		if len(got.Outcome.Lines) != len(want.Outcome.Lines) {
			t.Fatalf("%s: lines differ", got.Path)
		}
		if got.Bag.Len() != want.Bag.Len() {
			t.Fatalf("%s: %d diagnostics, want %d", got.Path, got.Bag.Len(), want.Bag.Len())
		}
	}
	gd, wd := again.Files[1].Bag.Items()[0], res.Files[1].Bag.Items()[0]
	if gd.Primary != wd.Primary || gd.Message != wd.Message || len(gd.Notes) != len(wd.Notes) {
		t.Fatalf("restored diagnostic %+v, want %+v", gd, wd)
	}
	if again.Files[3].Cached {
		t.Fatal("load errors must not be cached")
	}
}

func TestCheckAllUnitErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"unit.toml": "[[decl]]\nkind = \"bogus\"\nname = \"x\"\n",
		"a.mq":      "print 1;\n",
	})
	res, err := driver.CheckAll(context.Background(), driver.CheckOptions{
		UnitPath:       filepath.Join(dir, "unit.toml"),
		Files:          []string{filepath.Join(dir, "a.mq")},
		MaxDiagnostics: 10,
	})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if res.Unit != nil || !res.UnitBag.HasErrors() || len(res.Files) != 0 {
		t.Fatal("expected the check to stop at the unit")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	var key [32]byte
	key[0] = 7
	if err := cache.Put(key, &driver.DiskPayload{Schema: 1, Lines: []string{"x"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var p driver.DiskPayload
	if ok, err := cache.Get(key, &p); err != nil || !ok || p.Lines[0] != "x" {
		t.Fatalf("Get = %v, %v, %+v", ok, err, p)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if ok, err := cache.Get(key, &p); err != nil || ok {
		t.Fatalf("Get after DropAll = %v, %v", ok, err)
	}
}

func TestInspect(t *testing.T) {
	dir := writeFiles(t, map[string]string{"unit.toml": testkit.ReflectionUnit})
	unit := filepath.Join(dir, "unit.toml")

	res, err := driver.Inspect(context.Background(), unit, "geo::pt", 10)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if res.Kind != "ClassAlias" || res.Subject != "ClassAlias geo::pt" {
		t.Fatalf("subject = %q (%s)", res.Subject, res.Kind)
	}
	if res.Type != "Class geo::point" {
		t.Fatalf("reflected type = %q", res.Type)
	}
	rows := make(map[string]driver.InspectRow, len(res.Rows))
	for _, r := range res.Rows {
		rows[r.Op] = r
	}
	if r := rows["GetBaseName"]; r.Value != `"pt"` || r.Result != "string" {
		t.Fatalf("GetBaseName row = %+v", r)
	}
	if r := rows["IsMetaAlias"]; r.Value != "true" {
		t.Fatalf("IsMetaAlias row = %+v", r)
	}
	if _, ok := rows["GetBaseClass"]; ok {
		t.Fatal("inapplicable operation listed")
	}

	res, err = driver.Inspect(context.Background(), unit, "nope", 10)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if res.Subject != "" || !res.Bag.HasErrors() || res.Bag.Items()[0].Code != diag.RefUnresolvedEntity {
		t.Fatal("expected an unresolved entity diagnostic")
	}
}
