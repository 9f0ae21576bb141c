package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := Version
	Version = v
	t.Cleanup(func() { Version = orig })
}

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = !enabled
	t.Cleanup(func() { color.NoColor = orig })
}

func TestColored_Plain(t *testing.T) {
	withColor(t, false)
	for _, v := range []string{"0.1.0", "1.2.3-rc.1+build.123", "0.1.0-dev", "dev", "1.2"} {
		withVersion(t, v)
		if got := Colored(); got != v {
			t.Errorf("Colored() with %q = %q", v, got)
		}
	}
}

func TestColored_Escapes(t *testing.T) {
	withColor(t, true)
	withVersion(t, "1.2.3-beta.1")

	got := Colored()
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape codes, got %q", got)
	}
	if !strings.HasSuffix(got, "-beta.1") {
		t.Fatalf("suffix lost: %q", got)
	}

	withVersion(t, "snapshot")
	if got := Colored(); got != "snapshot" {
		t.Fatalf("non-semver version = %q", got)
	}
}
