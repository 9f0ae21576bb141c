package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeFile, true},
		{LevelError, ScopeStmt, false},
		{LevelPhase, ScopeFile, true},
		{LevelPhase, ScopeStmt, false},
		{LevelDetail, ScopeStmt, true},
		{LevelDetail, ScopeOp, false},
		{LevelDebug, ScopeOp, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("ParseLevel(verbose) must fail")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(both) = %v, %v", m, err)
	}
	if f := FormatForPath("out.json"); f != FormatChrome {
		t.Errorf("FormatForPath(out.json) = %s", f)
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for i := range 5 {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeOp, Name: string(rune('a' + i))})
	}
	var names []string
	for _, ev := range r.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ""); got != "cde" {
		t.Errorf("snapshot = %q, want cde", got)
	}
}

func TestStartNestsSpans(t *testing.T) {
	r := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), r)

	fctx, file := Start(ctx, ScopeFile, "query:a.mq")
	_, stmt := Start(fctx, ScopeStmt, "let x")
	_, op := Start(fctx, ScopeOp, "GetBaseName") // filtered at detail
	op.End("")
	stmt.End("")
	file.End("ok")

	evs := r.Snapshot()
	if len(evs) != 4 {
		t.Fatalf("events = %d, want 4", len(evs))
	}
	if evs[1].ParentID != file.ID() || evs[1].Name != "let x" {
		t.Errorf("statement span parent = %d, want %d", evs[1].ParentID, file.ID())
	}
	if evs[3].Kind != KindSpanEnd || evs[3].Detail != "ok" {
		t.Errorf("last event = %+v", evs[3])
	}
}

func TestChromeStreamIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatChrome)
	ctx := WithTracer(context.Background(), st)
	_, s := Start(ctx, ScopeDriver, "check")
	Point(ctx, ScopeFile, "cache", "hit")
	s.WithExtra("files", "2").End("")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Errorf("events = %d, want 3", len(doc.TraceEvents))
	}
	if ph := doc.TraceEvents[0]["ph"]; ph != "B" {
		t.Errorf("first phase = %v", ph)
	}
}

func TestNopIsInert(t *testing.T) {
	ctx, s := Start(context.Background(), ScopeDriver, "x")
	if s.ID() != 0 || CurrentSpan(ctx).SpanID != 0 {
		t.Errorf("a span without a tracer must be inert")
	}
	if d := s.End(""); d != 0 {
		t.Errorf("inert span duration = %v", d)
	}
	var nilHB *Heartbeat
	nilHB.Stop()
}
