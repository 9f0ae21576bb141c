package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mirror/internal/diag"
	"mirror/internal/diagfmt"
	"mirror/internal/query"
	"mirror/internal/source"
)

// errDiagnostics is returned after error diagnostics were printed; main
// only turns it into exit status 1.
var errDiagnostics = errors.New("")

type outputFlags struct {
	format    string
	withNotes bool
	fullPath  bool
}

func addOutputFlags(cmd *cobra.Command, formats string) {
	cmd.Flags().String("format", "pretty", "output format ("+formats+")")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func readOutputFlags(cmd *cobra.Command, formats ...string) (outputFlags, error) {
	var of outputFlags
	var err error
	if of.format, err = cmd.Flags().GetString("format"); err != nil {
		return of, fmt.Errorf("failed to get format flag: %w", err)
	}
	of.format = strings.ToLower(of.format)
	known := false
	for _, f := range formats {
		known = known || f == of.format
	}
	if !known {
		return of, fmt.Errorf("unknown format %q (expected %s)", of.format, strings.Join(formats, "|"))
	}
	if of.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return of, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if of.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return of, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	return of, nil
}

func (of outputFlags) pathMode() diagfmt.PathMode {
	if of.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeAuto
}

func (of outputFlags) prettyOpts(useColor bool) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     useColor,
		Context:   1,
		PathMode:  of.pathMode(),
		ShowNotes: of.withNotes,
	}
}

func (of outputFlags) jsonOpts() diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         of.pathMode(),
		IncludeNotes:     of.withNotes,
	}
}

// useColor resolves --color against the terminal state of f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}

type globalFlags struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var g globalFlags
	var err error
	if g.quiet, err = pf.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = pf.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return g, nil
}

// queryOutput is the JSON form of one evaluated query file.
type queryOutput struct {
	Path        string                    `json:"path"`
	Lines       []string                  `json:"lines"`
	Statements  int                       `json:"statements"`
	Asserts     int                       `json:"asserts"`
	Failed      int                       `json:"failed"`
	Cached      bool                      `json:"cached,omitempty"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func newQueryOutput(path string, out query.Outcome, bag *diag.Bag, fs *source.FileSet, opts diagfmt.JSONOpts) queryOutput {
	lines := make([]string, len(out.Lines))
	for i, l := range out.Lines {
		lines[i] = l.Text
	}
	return queryOutput{
		Path:        path,
		Lines:       lines,
		Statements:  out.Stmts,
		Asserts:     out.Asserts,
		Failed:      out.Failed,
		Diagnostics: diagfmt.BuildDiagnosticsOutput(bag, fs, opts),
	}
}

func diagfmtPretty(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, opts diagfmt.PrettyOpts) {
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, opts)
}

func writeLines(w io.Writer, out query.Outcome) {
	for _, l := range out.Lines {
		fmt.Fprintln(w, l.Text)
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
