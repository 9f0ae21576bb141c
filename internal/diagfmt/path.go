package diagfmt

import (
	"os"
	"path/filepath"
	"strings"

	"mirror/internal/source"
)

func formatPath(f *source.File, mode PathMode, base string) string {
	if f.Flags&source.FileVirtual != 0 && !filepath.IsAbs(f.Path) {
		return f.Path
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		if rel, ok := relativeTo(f.Path, base); ok {
			return rel
		}
		return f.Path
	}

	// auto
	if !filepath.IsAbs(f.Path) {
		return f.Path
	}
	if rel, ok := relativeTo(f.Path, base); ok && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return filepath.Base(f.Path)
}

func relativeTo(path, base string) (string, bool) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		base = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// hasFile reports whether sp points into a file of fs.
func hasFile(fs *source.FileSet, sp source.Span) bool {
	return fs != nil && sp.File != source.NoFileID && int(sp.File) < fs.Len()
}
