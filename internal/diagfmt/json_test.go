package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"mirror/internal/diag"
	"mirror/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let x = reflexpr(int);\nprint \"unterminated\n")
	fileID := fs.AddVirtual("test.mq", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.SynUnterminatedString,
		source.Span{File: fileID, Start: 29, End: 42},
		"unterminated string literal",
	).WithNote(source.Span{File: fileID, Start: 0, End: 3}, "statement starts here"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %+v", output)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2003" || d.Title != "Unterminated string literal" {
		t.Errorf("unexpected header: %+v", d)
	}
	if d.Location == nil || d.Location.File != "test.mq" {
		t.Fatalf("unexpected location: %+v", d.Location)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 7 {
		t.Errorf("Expected 2:7, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location == nil || d.Notes[0].Location.StartLine != 1 {
		t.Errorf("unexpected notes: %+v", d.Notes)
	}
}

// TestJSONWithoutPositions проверяет JSON без позиций строк/колонок
func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.mq", []byte("print x;"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.RefUnboundName, source.Span{File: fileID, Start: 6, End: 7}, "unbound"))

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
	d := output.Diagnostics[0]
	if d.Location.StartLine != 0 {
		t.Errorf("Expected start_line to be omitted (0), got %d", d.Location.StartLine)
	}
	if d.Location.StartByte != 6 {
		t.Errorf("Expected start_byte=6, got %d", d.Location.StartByte)
	}
}

// TestJSONMaxLimit проверяет ограничение количества диагностик
func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.mq", []byte("test content"))

	bag := diag.NewBag(10)
	for i := range 5 {
		bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: fileID, Start: uint32(i), End: uint32(i + 1)}, "unexpected"))
	}

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if output.Count != 3 || output.Dropped != 2 {
		t.Fatalf("count=%d dropped=%d, want 3 and 2", output.Count, output.Dropped)
	}
}

func TestJSONSpanlessAndTimings(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").
		WithNote(source.Span{}, `{"kind":"check"}`))

	// заметки timings выводятся даже без IncludeNotes
	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if output.Diagnostics[0].Location != nil {
		t.Fatalf("expected no location, got %+v", output.Diagnostics[0].Location)
	}
	if notes := output.Diagnostics[1].Notes; len(notes) != 1 || notes[0].Message != `{"kind":"check"}` || notes[0].Location != nil {
		t.Fatalf("unexpected timing notes: %+v", notes)
	}
}
