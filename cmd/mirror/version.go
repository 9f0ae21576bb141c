package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mirror/internal/version"
)

const versionTagline = "every entity casts a reflection"

type versionOptions struct {
	format      string
	showHash    bool
	showMessage bool
	showDate    bool
}

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show mirror build fingerprints",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	addVersionFlags(versionCmd)
}

func addVersionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("hash", false, "include git commit hash")
	cmd.Flags().Bool("message", false, "include git commit message")
	cmd.Flags().Bool("date", false, "include build timestamp")
	cmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func readVersionOptions(cmd *cobra.Command) (versionOptions, error) {
	var opts versionOptions
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	full, _ := cmd.Flags().GetBool("full")
	opts.showHash, _ = cmd.Flags().GetBool("hash")
	opts.showMessage, _ = cmd.Flags().GetBool("message")
	opts.showDate, _ = cmd.Flags().GetBool("date")
	opts.showHash = opts.showHash || full
	opts.showMessage = opts.showMessage || full
	opts.showDate = opts.showDate || full
	return opts, nil
}

func runVersion(cmd *cobra.Command, _ []string) error {
	opts, err := readVersionOptions(cmd)
	if err != nil {
		return err
	}
	payload := buildVersionPayload(opts)
	if opts.format == "json" {
		return encodeJSON(cmd.OutOrStdout(), payload)
	}
	renderVersionPretty(cmd.OutOrStdout(), payload, opts)
	return nil
}

func buildVersionPayload(opts versionOptions) versionPayload {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	p := versionPayload{Tool: "mirror", Version: v, Tagline: versionTagline}
	if opts.showHash {
		p.GitCommit = valueOrUnknown(version.GitCommit)
	}
	if opts.showMessage {
		p.GitMessage = valueOrUnknown(version.GitMessage)
	}
	if opts.showDate {
		p.BuildDate = valueOrUnknown(version.BuildDate)
	}
	return p
}

func renderVersionPretty(out io.Writer, p versionPayload, opts versionOptions) {
	fmt.Fprintf(out, "mirror %s: %s\n", p.Version, p.Tagline)
	if opts.showHash {
		fmt.Fprintf(out, "commit:  %s\n", p.GitCommit)
	}
	if opts.showMessage {
		fmt.Fprintf(out, "message: %s\n", p.GitMessage)
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:   %s\n", p.BuildDate)
	}
	if !opts.showHash && !opts.showMessage && !opts.showDate {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build trivia")
	}
}

func valueOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
