package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoManifest is returned by LoadFrom when no mirror.toml is found.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

// QueryExt is the extension of query files.
const QueryExt = ".mq"

// Manifest: разобранный mirror.toml. Пути в Config относительны Root.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Project ProjectConfig `toml:"project"`
	Check   CheckConfig   `toml:"check"`
}

type ProjectConfig struct {
	Name    string   `toml:"name"`
	Unit    string   `toml:"unit"`
	Queries []string `toml:"queries"` // файлы или каталоги; по умолчанию корень проекта
}

// CheckConfig задаёт умолчания для `mirror check`; флаги CLI их
// перекрывают.
type CheckConfig struct {
	Jobs           int  `toml:"jobs"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Cache          bool `toml:"cache"`
}

// LoadFrom finds the manifest above startDir and decodes it.
func LoadFrom(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	return Load(path)
}

// Load decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "unit") || strings.TrimSpace(cfg.Project.Unit) == "" {
		return nil, fmt.Errorf("%s: missing [project].unit", path)
	}
	if cfg.Check.Jobs < 0 || cfg.Check.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [check] values must not be negative", path)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// UnitPath returns the translation-unit file named by the manifest.
func (m *Manifest) UnitPath() string {
	return m.resolve(m.Config.Project.Unit)
}

// Name returns the project name, defaulting to the root directory name.
func (m *Manifest) Name() string {
	if n := strings.TrimSpace(m.Config.Project.Name); n != "" {
		return n
	}
	return filepath.Base(m.Root)
}

// QueryFiles expands [project].queries into a sorted list of query files.
func (m *Manifest) QueryFiles() ([]string, error) {
	roots := m.Config.Project.Queries
	if len(roots) == 0 {
		roots = []string{"."}
	}
	var out []string
	for _, r := range roots {
		files, err := ListQueryFiles(m.resolve(r))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		out = append(out, files...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// ListQueryFiles returns path itself when it is a file, or every *.mq
// file below it, sorted.
func ListQueryFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(p, QueryExt) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
