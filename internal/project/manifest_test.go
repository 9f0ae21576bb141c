package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[project]
name = "demo"
unit = "units/demo.toml"
queries = ["queries"]

[check]
jobs = 2
cache = true
`)
	writeFile(t, filepath.Join(root, "queries", "b.mq"), "print 1;")
	writeFile(t, filepath.Join(root, "queries", "a.mq"), "print 2;")
	writeFile(t, filepath.Join(root, "queries", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "queries", ".hidden", "c.mq"), "")
	deep := filepath.Join(root, "queries", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := LoadFrom(deep)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if m.Name() != "demo" || m.Config.Check.Jobs != 2 || !m.Config.Check.Cache {
		t.Errorf("config = %+v", m.Config)
	}
	if want := filepath.Join(root, "units", "demo.toml"); m.UnitPath() != want {
		t.Errorf("UnitPath = %q, want %q", m.UnitPath(), want)
	}
	files, err := m.QueryFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.mq" || filepath.Base(files[1]) != "b.mq" {
		t.Errorf("QueryFiles = %v", files)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no project", "[check]\njobs = 1\n", "missing [project]"},
		{"no unit", "[project]\nname = \"x\"\n", "missing [project].unit"},
		{"unknown key", "[project]\nunit = \"u.toml\"\nmain = \"x\"\n", "unknown key"},
		{"negative", "[project]\nunit = \"u.toml\"\n[check]\njobs = -1\n", "must not be negative"},
		{"syntax", "[project\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestNoManifest(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	// каталог теста может лежать под чужим mirror.toml только в очень
	// странном окружении
	if !errors.Is(err, ErrNoManifest) {
		t.Skipf("manifest above temp dir: %v", err)
	}
}

func TestDefaultNameAndQueries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[project]\nunit = \"u.toml\"\n")
	writeFile(t, filepath.Join(root, "x.mq"), "")
	m, err := Load(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != filepath.Base(root) {
		t.Errorf("Name = %q", m.Name())
	}
	files, err := m.QueryFiles()
	if err != nil || len(files) != 1 {
		t.Errorf("QueryFiles = %v, %v", files, err)
	}
}

func TestCombineOrderMatters(t *testing.T) {
	a, b := Digest{1}, Digest{2}
	if Combine("s", a, b) == Combine("s", b, a) {
		t.Errorf("Combine ignores order")
	}
	if Combine("v1", a) == Combine("v2", a) {
		t.Errorf("Combine ignores salt")
	}
	if !(Digest{}).IsZero() || Combine("", a).IsZero() {
		t.Errorf("IsZero")
	}
}
