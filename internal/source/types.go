package source

import "fmt"

type (
	// FileID identifies a file within a FileSet.
	FileID uint32
	// FileFlags records how a file's bytes were obtained.
	FileFlags uint8
)

// NoFileID marks spans that do not point into any file (I/O failures,
// timings).
const NoFileID FileID = 0

const (
	// FileVirtual marks content that did not come from disk (-e input, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded query or unit file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Col)
}

// Span is a half-open byte range [Start, End) in File.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Len() uint32 { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
