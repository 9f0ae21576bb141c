package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"mirror/internal/driver"
)

func TestProgressEvents(t *testing.T) {
	files := []string{"a.mq", "b.mq", "c.mq"}
	m := NewProgressModel("check", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "unit.toml", Stage: driver.StageLoad, Status: driver.StatusDone})
	if m.stageLabel != "load done" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}

	m.applyEvent(driver.Event{File: "a.mq", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.mq", Stage: driver.StageEval, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "c.mq", Stage: driver.StageEval, Status: driver.StatusError})

	want := []string{"parsing", "cached", "error"}
	for i, w := range want {
		if m.items[i].status != w {
			t.Errorf("%s: status %q, want %q", files[i], m.items[i].status, w)
		}
	}
	if got := m.percent(); got < 0.76 || got > 0.77 {
		t.Errorf("percent = %v, want 2.3/3", got)
	}

	view := m.View()
	for _, f := range files {
		if !strings.Contains(view, f) {
			t.Errorf("view lacks %s:\n%s", f, view)
		}
	}
}

func TestProgressDoneOnClose(t *testing.T) {
	ch := make(chan driver.Event)
	close(ch)
	m := NewProgressModel("check", []string{"a.mq"}, ch).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}
	_, cmd := m.Update(msg)
	if !m.done || cmd == nil {
		t.Fatal("expected the model to finish")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
	if !strings.Contains(m.View(), "done: check") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("queries/very/long/path.mq", 10); got != "queries..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short.mq", 10); got != "short.mq" {
		t.Fatalf("truncate = %q", got)
	}
	// хвост "..." входит в ширину колонки
	for _, tc := range []struct {
		in    string
		width int
		want  string
	}{
		{"queries/a.mq", 11, "queries/..."},
		{"日本語のパス.mq", 7, "日本..."},
		{"queries/a.mq", 3, "que"},
	} {
		got := truncate(tc.in, tc.width)
		if got != tc.want || runewidth.StringWidth(got) > tc.width {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
