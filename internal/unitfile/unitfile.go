// Package unitfile loads translation-unit descriptions written in TOML into
// a decl.Unit.
//
// A unit file has a [unit] table and an ordered [[decl]] array:
//
//	[unit]
//	name = "shapes"
//	file = "shapes.cpp"
//
//	[[decl]]
//	kind = "struct"
//	name = "point"
//	line = 3
//
//	[[decl]]
//	kind = "field"
//	name = "x"
//	in   = "point"
//	type = "int"
//
// Declarations are processed in file order and may only refer to names
// declared before them.
package unitfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"mirror/internal/decl"
	"mirror/internal/diag"
	"mirror/internal/source"
)

type fileConfig struct {
	Unit  unitConfig  `toml:"unit"`
	Decls []declEntry `toml:"decl"`
}

type unitConfig struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

type declEntry struct {
	Kind   string   `toml:"kind"`
	Name   string   `toml:"name"`
	In     string   `toml:"in"`
	File   string   `toml:"file"`
	Line   uint32   `toml:"line"`
	Column uint32   `toml:"column"`
	Access string   `toml:"access"`
	Type   string   `toml:"type"`
	Static bool     `toml:"static"`
	Value  *int64   `toml:"value"`
	Target string   `toml:"target"`
	Bases  []string `toml:"bases"`
}

// Load reads path into fs and builds its unit. Diagnostics go to r; the
// returned unit is nil when any error was reported.
func Load(fs *source.FileSet, path string, r diag.Reporter) (*decl.Unit, source.FileID, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load unit file: %w", err)
	}
	return Build(fs, id, r), id, nil
}

// Build decodes an already loaded unit file.
func Build(fs *source.FileSet, id source.FileID, r diag.Reporter) *decl.Unit {
	f := fs.Get(id)
	b := &builder{fs: fs, file: f, r: r, counters: make(map[decl.DeclID]int64)}

	var cfg fileConfig
	md, err := toml.Decode(string(f.Content), &cfg)
	if err != nil {
		b.decodeError(err)
		return nil
	}
	for _, key := range md.Undecoded() {
		b.errorf(b.keySpan(key), diag.UntUnknownKey, "unknown key %q", key.String())
	}
	if b.failed {
		return nil
	}

	name := cfg.Unit.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	}
	file := cfg.Unit.File
	if file == "" {
		file = f.Path
	}
	b.unit = decl.NewUnit(name, file)
	b.headers = declHeaderSpans(f)

	for i := range cfg.Decls {
		b.declare(i, &cfg.Decls[i])
	}
	if b.failed {
		return nil
	}
	return b.unit
}

type builder struct {
	fs       *source.FileSet
	file     *source.File
	r        diag.Reporter
	unit     *decl.Unit
	headers  []source.Span
	counters map[decl.DeclID]int64 // next implicit enumerator value
	failed   bool
}

func (b *builder) errorf(sp source.Span, code diag.Code, format string, args ...any) {
	b.failed = true
	diag.ReportError(b.r, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (b *builder) decodeError(err error) {
	sp := source.Span{File: b.file.ID}
	var perr toml.ParseError
	if errors.As(err, &perr) {
		start := clampOffset(perr.Position.Start, len(b.file.Content))
		end := clampOffset(perr.Position.Start+max(perr.Position.Len, 1), len(b.file.Content))
		sp.Start, sp.End = start, end
		b.errorf(sp, diag.UntDecodeError, "%s", perr.Message)
		return
	}
	b.errorf(sp, diag.UntDecodeError, "%v", err)
}

func clampOffset(off, limit int) uint32 {
	off = min(max(off, 0), limit)
	return uint32(off) // #nosec G115 -- bounded by file length
}

var declHeader = regexp.MustCompile(`(?m)^[ \t]*\[\[[ \t]*decl[ \t]*\]\]`)

func declHeaderSpans(f *source.File) []source.Span {
	locs := declHeader.FindAllIndex(f.Content, -1)
	out := make([]source.Span, len(locs))
	for i, loc := range locs {
		out[i] = source.Span{File: f.ID, Start: uint32(loc[0]), End: uint32(loc[1])} // #nosec G115 -- bounded by file length
	}
	return out
}

func (b *builder) declSpan(i int) source.Span {
	if i < len(b.headers) {
		return b.headers[i]
	}
	return source.Span{File: b.file.ID}
}

// keySpan points at the first line assigning the last component of key.
func (b *builder) keySpan(key toml.Key) source.Span {
	sp := source.Span{File: b.file.ID}
	if len(key) == 0 {
		return sp
	}
	re, err := regexp.Compile(`(?m)^[ \t]*"?` + regexp.QuoteMeta(key[len(key)-1]) + `"?[ \t]*=`)
	if err != nil {
		return sp
	}
	if loc := re.FindIndex(b.file.Content); loc != nil {
		sp.Start, sp.End = uint32(loc[0]), uint32(loc[1]) // #nosec G115 -- bounded by file length
	}
	return sp
}
