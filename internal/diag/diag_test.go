package diag

import (
	"strings"
	"testing"

	"mirror/internal/source"
)

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{SynUnexpectedToken, "SYN2001"},
		{RefInapplicableOperation, "REF3001"},
		{IOLoadFileError, "IO4001"},
		{UntBadKind, "UNT4503"},
		{Code(5001), "E0000"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if Code(3999).Title() != UnknownCode.Title() {
		t.Errorf("undescribed code must fall back to the unknown title")
	}
}

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	b.Add(NewError(RefArity, source.Span{Start: 10, End: 12}, "late"))
	b.Add(New(SevWarning, RefInfo, source.Span{Start: 1, End: 2}, "early"))
	if b.Add(NewError(RefArity, source.Span{}, "over")) {
		t.Fatalf("Add beyond limit must fail")
	}
	if b.Dropped() != 1 || !b.HasErrors() {
		t.Fatalf("dropped=%d hasErrors=%v", b.Dropped(), b.HasErrors())
	}
	b.Sort()
	if b.Items()[0].Message != "early" {
		t.Errorf("Sort did not order by span: %+v", b.Items())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 3, End: 4}
	for range 3 {
		ReportError(r, RefIndexOutOfRange, sp, "index 5 out of range").Emit()
	}
	ReportError(r, RefIndexOutOfRange, sp, "index 6 out of range").
		WithNote(sp, "sequence has 2 elements").
		Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if len(bag.Items()[1].Notes) != 1 {
		t.Errorf("note lost")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("dir/q.mq", []byte("let a = 1;\nprint b;\n"))
	d := NewError(RefUnboundName, source.Span{File: id, Start: 17, End: 18}, "name 'b' is not bound").
		WithNote(source.Span{File: id, Start: 4, End: 5}, "did you mean 'a'?")

	got := FormatShort([]Diagnostic{d}, fs, true)
	want := "q.mq:2:7: ERROR REF3009: name 'b' is not bound\n  note q.mq:1:5: did you mean 'a'?\n"
	if got != want {
		t.Errorf("FormatShort =\n%q\nwant\n%q", got, want)
	}
	if !strings.HasPrefix(FormatShort([]Diagnostic{d}, fs, false), "q.mq:2:7") {
		t.Errorf("without notes output changed prefix")
	}
}

func TestSeverityString(t *testing.T) {
	for sev, want := range map[Severity]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR", Severity(9): "UNKNOWN"} {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d) = %q, want %q", sev, got, want)
		}
	}
}
