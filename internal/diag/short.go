package diag

import (
	"fmt"
	"path/filepath"
	"strings"

	"mirror/internal/source"
)

// FormatShort renders one diagnostic per line as
// "file:line:col: SEVERITY CODE: message", in Bag order.
func FormatShort(items []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := range items {
		d := &items[i]
		sb.WriteString(position(fs, d.Primary))
		fmt.Fprintf(&sb, ": %s %s: %s\n", d.Severity, d.Code.ID(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  note %s: %s\n", position(fs, n.Span), n.Msg)
		}
	}
	return sb.String()
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil || sp.File == source.NoFileID || int(sp.File) >= fs.Len() {
		return "?"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", filepath.Base(fs.Get(sp.File).Path), start.Line, start.Col)
}
