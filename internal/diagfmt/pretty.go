package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mirror/internal/diag"
	"mirror/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note *color.Color
	code, path, gutter    *color.Color
	caret                 *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Диагностики без файла печатаются без позиции и контекста.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		var sb strings.Builder
		if hasFile(fs, d.Primary) {
			sb.WriteString(pal.path.Sprint(location(fs, d.Primary, opts.PathMode, opts.BaseDir)))
			sb.WriteString(": ")
		}
		fmt.Fprintf(&sb, "%s %s: %s\n",
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			d.Message)
		if hasFile(fs, d.Primary) {
			writeSnippet(&sb, fs, d.Primary, int(opts.Context), pal, pal.caret)
		}

		// timings всегда несут полезную нагрузку в заметке
		if opts.ShowNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				sb.WriteString("  ")
				sb.WriteString(pal.note.Sprint("note"))
				if hasFile(fs, n.Span) {
					fmt.Fprintf(&sb, ": %s", location(fs, n.Span, opts.PathMode, opts.BaseDir))
				}
				fmt.Fprintf(&sb, ": %s\n", n.Msg)
				if hasFile(fs, n.Span) && !sameLine(fs, n.Span, d.Primary) {
					writeSnippet(&sb, fs, n.Span, 0, pal, pal.note)
				}
			}
		}
		_, _ = io.WriteString(w, sb.String())
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode, base string) string {
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(sp.File), mode, base), start.Line, start.Col)
}

func sameLine(fs *source.FileSet, a, b source.Span) bool {
	if !hasFile(fs, a) || !hasFile(fs, b) || a.File != b.File {
		return false
	}
	sa, _ := fs.Resolve(a)
	sb, _ := fs.Resolve(b)
	return sa.Line == sb.Line
}

// writeSnippet prints up to ctx lines before the span's first line, the
// line itself and a caret line under the span.
func writeSnippet(sb *strings.Builder, fs *source.FileSet, sp source.Span, ctx int, pal palette, caret *color.Color) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	width := len(strconv.Itoa(int(start.Line)))
	gutter := func(label string) string {
		return pal.gutter.Sprint(fmt.Sprintf("%*s |", width, label))
	}

	first := max(1, int(start.Line)-ctx)
	for ln := first; ln <= int(start.Line); ln++ {
		line := f.GetLine(uint32(ln)) // #nosec G115 -- ln <= start.Line
		fmt.Fprintf(sb, "%s %s\n", gutter(strconv.Itoa(ln)), expandTabs(line))
	}

	line := f.GetLine(start.Line)
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col)-1, len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:from]))
	mark := max(1, runewidth.StringWidth(expandTabs(line[from:max(from, to)])))
	fmt.Fprintf(sb, "%s %s%s\n", gutter(""), strings.Repeat(" ", pad),
		caret.Sprint("^"+strings.Repeat("~", mark-1)))
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
