package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"mirror/internal/driver"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <unit.toml> <entity>",
	Short: "Reflect one entity and apply every applicable operation",
	Long: `Reflect an entity (a qualified name, type, or ::) in the translation unit
and print the result of every unary operation applicable to its kind`,
	Example: `  mirror inspect unit.toml geo::point
  mirror inspect unit.toml 'const int*' --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	addOutputFlags(inspectCmd, "pretty|json|msgpack")
}

func runInspect(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd.Context())

	of, err := readOutputFlags(cmd, "pretty", "json", "msgpack")
	if err != nil {
		return err
	}
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}

	res, err := driver.Inspect(cmd.Context(), args[0], args[1], g.maxDiagnostics)
	if err != nil {
		return err
	}
	res.Bag.Sort()

	switch of.format {
	case "json":
		if err := encodeJSON(cmd.OutOrStdout(), res); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	case "msgpack":
		if err := msgpack.NewEncoder(cmd.OutOrStdout()).Encode(res); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	default:
		if res.Subject != "" {
			renderInspect(cmd.OutOrStdout(), res)
		}
	}

	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	diagfmtPretty(cmd, res.Bag, res.FileSet, of.prettyOpts(color))
	if res.Bag.HasErrors() || res.Subject == "" {
		return errDiagnostics
	}
	return nil
}

const inspectErrPrefix = "error: "

func renderInspect(w io.Writer, res *driver.InspectResult) {
	fmt.Fprintln(w, res.Subject)
	fmt.Fprintf(w, "  concepts: %s\n", strings.Join(res.Concepts, ", "))
	if res.Type != "" {
		fmt.Fprintf(w, "  type:     %s\n", res.Type)
	}
	if len(res.Rows) == 0 {
		return
	}
	opWidth, resWidth := 0, 0
	for _, r := range res.Rows {
		opWidth = max(opWidth, runewidth.StringWidth(r.Op))
		resWidth = max(resWidth, runewidth.StringWidth(r.Result))
	}
	fmt.Fprintln(w)
	for _, r := range res.Rows {
		value := r.Value
		if r.Err != "" {
			value = inspectErrPrefix + r.Err
		}
		fmt.Fprintf(w, "  %s  %s  %s\n",
			runewidth.FillRight(r.Op, opWidth),
			runewidth.FillRight(r.Result, resWidth),
			value)
	}
}
