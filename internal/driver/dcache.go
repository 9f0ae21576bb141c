package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mirror/internal/diag"
	"mirror/internal/project"
	"mirror/internal/query"
	"mirror/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки query-файлов на диске, по ключу
// из хешей unit-файла и query-файла. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedNote: заметка диагностики; спан относится к query-файлу.
type CachedNote struct {
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
	Msg   string `msgpack:"m"`
}

// CachedDiagnostic хранит диагностику без FileID: при чтении она
// привязывается к текущему FileID того же query-файла.
type CachedDiagnostic struct {
	Code     uint16       `msgpack:"code"`
	Severity uint8        `msgpack:"sev"`
	Start    uint32       `msgpack:"s"`
	End      uint32       `msgpack:"e"`
	Message  string       `msgpack:"msg"`
	Notes    []CachedNote `msgpack:"notes,omitempty"`
}

// DiskPayload is the cached result of checking one query file.
type DiskPayload struct {
	Schema    uint16         `msgpack:"schema"`
	Path      string         `msgpack:"path"`
	UnitHash  project.Digest `msgpack:"unit_hash"`
	QueryHash project.Digest `msgpack:"query_hash"`

	Lines   []string `msgpack:"lines"`
	Stmts   int      `msgpack:"stmts"`
	Asserts int      `msgpack:"asserts"`
	Failed  int      `msgpack:"failed"`

	Diagnostics []CachedDiagnostic `msgpack:"diags"`
	Dropped     int                `msgpack:"dropped,omitempty"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

var cacheSalt = fmt.Sprintf("mirror/check/v%d", diskCacheSchemaVersion)

// CacheKey identifies the result of checking query against unit.
func CacheKey(unit, query *source.File) project.Digest {
	return project.Combine(cacheSalt, project.Digest(unit.Hash), project.Digest(query.Hash))
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// подкаталог "results": для удобства очистки
	return filepath.Join(c.dir, "results", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (ok bool, err error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// newDiskPayload captures a fresh check result for caching.
func newDiskPayload(path string, key [2]project.Digest, bag *diag.Bag, out *query.Outcome) *DiskPayload {
	p := &DiskPayload{
		Schema:    diskCacheSchemaVersion,
		Path:      path,
		UnitHash:  key[0],
		QueryHash: key[1],
		Stmts:     out.Stmts,
		Asserts:   out.Asserts,
		Failed:    out.Failed,
		Dropped:   bag.Dropped(),
	}
	p.Lines = make([]string, len(out.Lines))
	for i, l := range out.Lines {
		p.Lines[i] = l.Text
	}
	items := bag.Items()
	p.Diagnostics = make([]CachedDiagnostic, len(items))
	for i, d := range items {
		cd := CachedDiagnostic{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		p.Diagnostics[i] = cd
	}
	return p
}

// restore rebuilds the diagnostics and outcome of a cached payload for
// the query file loaded as file.
func (p *DiskPayload) restore(file source.FileID, maxDiagnostics int) (*diag.Bag, query.Outcome) {
	bag := diag.NewBag(maxDiagnostics)
	for _, cd := range p.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code),
			source.Span{File: file, Start: cd.Start, End: cd.End}, cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(source.Span{File: file, Start: n.Start, End: n.End}, n.Msg)
		}
		bag.Add(d)
	}
	out := query.Outcome{Stmts: p.Stmts, Asserts: p.Asserts, Failed: p.Failed}
	for _, text := range p.Lines {
		out.Lines = append(out.Lines, query.Line{Text: text})
	}
	return bag, out
}
