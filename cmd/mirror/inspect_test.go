package main

import (
	"bytes"
	"strings"
	"testing"

	"mirror/internal/driver"
)

func TestRenderInspect(t *testing.T) {
	res := &driver.InspectResult{
		Subject:  "ClassAlias geo::pt",
		Concepts: []string{"Named", "Alias"},
		Type:     "Class geo::point",
		Rows: []driver.InspectRow{
			{Op: "GetBaseName", Result: "string", Value: `"pt"`},
			{Op: "IsMetaAlias", Result: "bool", Value: "true"},
			{Op: "GetConstant", Result: "constant", Err: "not a constant"},
		},
	}
	var buf bytes.Buffer
	renderInspect(&buf, res)
	want := strings.Join([]string{
		"ClassAlias geo::pt",
		"  concepts: Named, Alias",
		"  type:     Class geo::point",
		"",
		`  GetBaseName  string    "pt"`,
		"  IsMetaAlias  bool      true",
		"  GetConstant  constant  error: not a constant",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("render mismatch:\n%s\nwant\n%s", buf.String(), want)
	}
}
