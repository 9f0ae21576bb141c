package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mirror/internal/driver"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] <unit.toml> [query.mq]",
	Short: "Evaluate one query file against a translation unit",
	Long: `Evaluate a query file (or inline source given with -e) against a translation
unit and print the results of its print statements`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringP("expr", "e", "", "evaluate inline query source instead of a file")
	addOutputFlags(evalCmd, "pretty|json")
}

func runEval(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd.Context())

	of, err := readOutputFlags(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	expr, err := cmd.Flags().GetString("expr")
	if err != nil {
		return fmt.Errorf("failed to get expr flag: %w", err)
	}

	opts := driver.EvalOptions{
		UnitPath:       args[0],
		MaxDiagnostics: g.maxDiagnostics,
		Timings:        g.timings,
	}
	switch {
	case len(args) == 2 && cmd.Flags().Changed("expr"):
		return fmt.Errorf("give either a query file or -e, not both")
	case len(args) == 2:
		opts.QueryPath = args[1]
	case cmd.Flags().Changed("expr"):
		opts.Source = expr
	default:
		return fmt.Errorf("nothing to evaluate: give a query file or -e")
	}

	res, err := driver.Eval(cmd.Context(), opts)
	if err != nil {
		return err
	}
	res.Bag.Sort()

	out := cmd.OutOrStdout()
	switch of.format {
	case "json":
		path := driver.InlineName
		if opts.QueryPath != "" {
			path = opts.QueryPath
		}
		if err := encodeJSON(out, newQueryOutput(path, res.Outcome, res.Bag, res.FileSet, of.jsonOpts())); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	default:
		writeLines(out, res.Outcome)
		color, err := useColor(cmd, os.Stderr)
		if err != nil {
			return err
		}
		diagfmtPretty(cmd, res.Bag, res.FileSet, of.prettyOpts(color))
		if !g.quiet && res.Interp != nil && res.Outcome.Asserts > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d statements, %d assertions, %d failed\n",
				res.Outcome.Stmts, res.Outcome.Asserts, res.Outcome.Failed)
		}
	}

	if res.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}
