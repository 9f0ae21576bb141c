package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

// FileSet owns every file read during one run. Slot 0 is reserved for
// NoFileID.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

func NewFileSet() *FileSet {
	return &FileSet{files: make([]File, 1, 8), index: make(map[string]FileID)}
}

// Add stores already-normalized content and returns a fresh FileID.
// Re-adding a path creates a new version; Lookup returns the newest.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	path = filepath.ToSlash(filepath.Clean(path))
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[path] = id
	return id
}

// Load reads path from disk, strips a UTF-8 BOM and folds CRLF to LF.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the command line
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
		flags |= FileHadBOM
	}
	if slices.Contains(content, '\r') {
		content = normalizeCRLF(content)
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

func (fs *FileSet) Len() int { return len(fs.files) }

// Resolve converts span offsets into line/column pairs.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Text returns the bytes covered by span.
func (fs *FileSet) Text(span Span) string {
	f := &fs.files[span.File]
	end := min(int(span.End), len(f.Content))
	start := min(int(span.Start), end)
	return string(f.Content[start:end])
}

// GetLine returns line lineNum (1-based) without its newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || int(lineNum) > len(f.LineIdx)+1 {
		return ""
	}
	start := 0
	if lineNum > 1 {
		start = int(f.LineIdx[lineNum-2]) + 1
	}
	end := len(f.Content)
	if int(lineNum) <= len(f.LineIdx) {
		end = int(f.LineIdx[lineNum-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func normalizeCRLF(content []byte) []byte {
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			continue
		}
		out = append(out, content[i])
	}
	return out
}

func buildLineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- file size checked by Add callers
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// число переводов строк строго до off
	line, _ := slices.BinarySearch(lineIdx, off)
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	ln, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line overflow: %w", err))
	}
	return LineCol{Line: ln, Col: off - lineStart + 1}
}
