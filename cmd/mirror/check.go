package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mirror/internal/diagfmt"
	"mirror/internal/driver"
	"mirror/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path]",
	Short: "Evaluate every query file of a project",
	Long: `Evaluate every *.mq file under path (or the queries listed in mirror.toml)
against the project's translation unit, in parallel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("unit", "", "translation unit file (default: [project].unit from mirror.toml)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("cache", false, "reuse results cached on disk for unchanged files")
	cmd.Flags().Bool("clear-cache", false, "drop the disk cache before checking")
	addOutputFlags(cmd, "pretty|json")
}

// checkPlan is the resolved input of a check: flags merged over the
// manifest.
type checkPlan struct {
	name           string
	unit           string
	files          []string
	jobs           int
	maxDiagnostics int
	cache          bool
}

func resolveCheckPlan(cmd *cobra.Command, args []string, g globalFlags) (checkPlan, error) {
	plan := checkPlan{maxDiagnostics: g.maxDiagnostics}
	var err error
	if plan.unit, err = cmd.Flags().GetString("unit"); err != nil {
		return plan, fmt.Errorf("failed to get unit flag: %w", err)
	}
	if plan.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return plan, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if plan.cache, err = cmd.Flags().GetBool("cache"); err != nil {
		return plan, fmt.Errorf("failed to get cache flag: %w", err)
	}

	start := "."
	if len(args) == 1 {
		start = args[0]
		if st, statErr := os.Stat(start); statErr == nil && !st.IsDir() {
			start = filepath.Dir(start)
		}
	}
	manifest, err := project.LoadFrom(start)
	switch {
	case errors.Is(err, project.ErrNoManifest):
		manifest = nil
	case err != nil:
		return plan, err
	}

	if manifest != nil {
		plan.name = manifest.Name()
		cfg := manifest.Config.Check
		if plan.unit == "" {
			plan.unit = manifest.UnitPath()
		}
		if !cmd.Flags().Changed("jobs") && cfg.Jobs > 0 {
			plan.jobs = cfg.Jobs
		}
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && cfg.MaxDiagnostics > 0 {
			plan.maxDiagnostics = cfg.MaxDiagnostics
		}
		if !cmd.Flags().Changed("cache") {
			plan.cache = cfg.Cache
		}
	}
	if plan.unit == "" {
		return plan, fmt.Errorf("no %s found\nplease name the translation unit explicitly, e.g.:\n  mirror check --unit unit.toml queries/", project.ManifestName)
	}

	switch {
	case len(args) == 1:
		plan.files, err = project.ListQueryFiles(args[0])
	case manifest != nil:
		plan.files, err = manifest.QueryFiles()
	default:
		plan.files, err = project.ListQueryFiles(".")
	}
	if err != nil {
		return plan, fmt.Errorf("failed to list query files: %w", err)
	}
	if len(plan.files) == 0 {
		return plan, fmt.Errorf("no %s files found", project.QueryExt)
	}
	if plan.name == "" {
		plan.name = filepath.Base(plan.unit)
	}
	return plan, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd.Context())

	of, err := readOutputFlags(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}

	plan, err := resolveCheckPlan(cmd, args, g)
	if err != nil {
		return err
	}

	opts := driver.CheckOptions{
		UnitPath:       plan.unit,
		Files:          plan.files,
		Jobs:           plan.jobs,
		MaxDiagnostics: plan.maxDiagnostics,
		Timings:        g.timings,
	}
	if plan.cache || clearCache {
		cache, err := driver.OpenDiskCache("mirror")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		if plan.cache {
			opts.Cache = cache
		}
	}

	var res *driver.CheckResult
	if of.format == "pretty" && !g.quiet && shouldUseTUI(mode) {
		res, err = runCheckWithUI(cmd.Context(), "checking "+plan.name, opts)
	} else {
		res, err = driver.CheckAll(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}

	if of.format == "json" {
		if err := writeCheckJSON(cmd, res, of); err != nil {
			return err
		}
	} else if err := writeCheckPretty(cmd, res, of, g); err != nil {
		return err
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}

type checkOutput struct {
	Unit        string                    `json:"unit"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"unit_diagnostics"`
	Files       []queryOutput             `json:"files"`
	Passed      int                       `json:"passed"`
	Failed      int                       `json:"failed"`
}

func writeCheckJSON(cmd *cobra.Command, res *driver.CheckResult, of outputFlags) error {
	jopts := of.jsonOpts()
	out := checkOutput{
		Diagnostics: diagfmt.BuildDiagnosticsOutput(res.UnitBag, res.FileSet, jopts),
		Files:       make([]queryOutput, 0, len(res.Files)),
	}
	if res.Unit != nil {
		out.Unit = res.Unit.Name
	}
	for _, fr := range res.Files {
		fr.Bag.Sort()
		qo := newQueryOutput(fr.Path, fr.Outcome, fr.Bag, res.FileSet, jopts)
		qo.Cached = fr.Cached
		out.Files = append(out.Files, qo)
		if fr.Bag.HasErrors() {
			out.Failed++
		} else {
			out.Passed++
		}
	}
	if err := encodeJSON(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeCheckPretty(cmd *cobra.Command, res *driver.CheckResult, of outputFlags, g globalFlags) error {
	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	popts := of.prettyOpts(color)
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	res.UnitBag.Sort()
	diagfmtPretty(cmd, res.UnitBag, res.FileSet, popts)

	passed, failed, cached := 0, 0, 0
	for _, fr := range res.Files {
		if fr.Cached {
			cached++
		}
		if fr.Bag.HasErrors() {
			failed++
		} else {
			passed++
		}
		if len(fr.Outcome.Lines) == 0 && fr.Bag.Len() == 0 {
			continue
		}
		fmt.Fprintf(out, "== %s ==\n", fr.Path)
		writeLines(out, fr.Outcome)
		fr.Bag.Sort()
		diagfmtPretty(cmd, fr.Bag, res.FileSet, popts)
	}

	if !g.quiet && res.Unit != nil {
		fmt.Fprintf(errOut, "checked %d files: %d passed, %d failed", len(res.Files), passed, failed)
		if cached > 0 {
			fmt.Fprintf(errOut, " (%d cached)", cached)
		}
		fmt.Fprintln(errOut)
	}
	return nil
}
