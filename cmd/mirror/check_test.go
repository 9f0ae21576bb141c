package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "check", RunE: runCheck}
	addCheckFlags(cmd)
	return cmd
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

const planManifest = `[project]
name = "demo"
unit = "unit.toml"
queries = ["q"]

[check]
jobs = 3
max_diagnostics = 20
cache = true
`

func TestResolveCheckPlanManifest(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mirror.toml": planManifest,
		"unit.toml":   "name = \"demo\"\n",
		"q/b.mq":      "1;\n",
		"q/a.mq":      "1;\n",
		"q/notes.txt": "not a query",
		"other/c.mq":  "1;\n",
	})

	cmd := newCheckCmd()
	t.Chdir(root)
	plan, err := resolveCheckPlan(cmd, nil, globalFlags{maxDiagnostics: 100})
	if err != nil {
		t.Fatalf("resolveCheckPlan: %v", err)
	}
	if plan.name != "demo" {
		t.Fatalf("name = %q, want demo", plan.name)
	}
	if filepath.Base(plan.unit) != "unit.toml" {
		t.Fatalf("unit = %q", plan.unit)
	}
	if plan.jobs != 3 || plan.maxDiagnostics != 20 || !plan.cache {
		t.Fatalf("manifest defaults not applied: %+v", plan)
	}
	want := []string{
		filepath.Join(root, "q", "a.mq"),
		filepath.Join(root, "q", "b.mq"),
	}
	if !slices.Equal(plan.files, want) {
		t.Fatalf("files = %v, want %v", plan.files, want)
	}
}

func TestResolveCheckPlanFlagsOverride(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mirror.toml": planManifest,
		"q/a.mq":      "1;\n",
		"other/c.mq":  "1;\n",
	})

	cmd := newCheckCmd()
	for name, value := range map[string]string{"jobs": "8", "cache": "false", "unit": "elsewhere.toml"} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	plan, err := resolveCheckPlan(cmd, []string{filepath.Join(root, "other")}, globalFlags{maxDiagnostics: 100})
	if err != nil {
		t.Fatalf("resolveCheckPlan: %v", err)
	}
	if plan.jobs != 8 || plan.cache || plan.unit != "elsewhere.toml" {
		t.Fatalf("flags must win over manifest: %+v", plan)
	}
	if len(plan.files) != 1 || filepath.Base(plan.files[0]) != "c.mq" {
		t.Fatalf("files = %v, want other/c.mq only", plan.files)
	}
}

func TestResolveCheckPlanErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"q/a.mq": "1;\n", "empty/readme.txt": ""})

	_, err := resolveCheckPlan(newCheckCmd(), []string{filepath.Join(root, "q")}, globalFlags{})
	if err == nil || !strings.Contains(err.Error(), "mirror.toml") {
		t.Fatalf("expected missing manifest error, got %v", err)
	}

	cmd := newCheckCmd()
	if err := cmd.Flags().Set("unit", "unit.toml"); err != nil {
		t.Fatal(err)
	}
	_, err = resolveCheckPlan(cmd, []string{filepath.Join(root, "empty")}, globalFlags{})
	if err == nil || !strings.Contains(err.Error(), ".mq") {
		t.Fatalf("expected no query files error, got %v", err)
	}

	plan, err := resolveCheckPlan(cmd, []string{filepath.Join(root, "q", "a.mq")}, globalFlags{})
	if err != nil {
		t.Fatalf("single file: %v", err)
	}
	if len(plan.files) != 1 || plan.name != "unit.toml" {
		t.Fatalf("single file plan = %+v", plan)
	}
}
