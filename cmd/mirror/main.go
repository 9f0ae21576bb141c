package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mirror/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Static reflection over C++ translation units",
	Long: `mirror evaluates reflexpr queries against a described translation unit:
metaobjects, their concepts and the operations defined on them`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
}

// cleanups run after the command finishes, successful or not.
var cleanups []func()

// main initializes the CLI, registers subcommands and persistent flags, and
// executes the root command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Colored()

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "error", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "auto", "trace storage (auto|stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")

	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file on exit")
	pf.String("runtime-trace", "", "write Go runtime trace to file")

	err := rootCmd.Execute()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// setupRun enables tracing and profiling before every subcommand.
func setupRun(cmd *cobra.Command, _ []string) error {
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopTrace)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopProf)
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
