package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mirror/internal/meta"
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts [kind...]",
	Short: "List metaobject kinds with their concepts and operations",
	RunE:  runConcepts,
}

func init() {
	conceptsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	conceptsCmd.Flags().Bool("ops", false, "list the unary operations applicable to each kind")
}

type kindRow struct {
	Kind     string   `json:"kind"`
	Most     []string `json:"most_specific"`
	Concepts []string `json:"concepts"`
	Ops      []string `json:"ops,omitempty"`
}

func runConcepts(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withOps, err := cmd.Flags().GetBool("ops")
	if err != nil {
		return fmt.Errorf("failed to get ops flag: %w", err)
	}
	kinds, err := selectKinds(args)
	if err != nil {
		return err
	}
	rows := buildKindRows(kinds, withOps)
	switch strings.ToLower(format) {
	case "json":
		return encodeJSON(cmd.OutOrStdout(), rows)
	case "pretty":
		renderKindRows(cmd.OutOrStdout(), rows)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

// selectKinds resolves kind names; no names means every kind except Unknown.
func selectKinds(names []string) ([]meta.Kind, error) {
	if len(names) == 0 {
		all := meta.Kinds()
		return all[1:], nil
	}
	out := make([]meta.Kind, 0, len(names))
	for _, n := range names {
		k, ok := meta.ParseKind(n)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func buildKindRows(kinds []meta.Kind, withOps bool) []kindRow {
	rows := make([]kindRow, 0, len(kinds))
	for _, k := range kinds {
		cs := k.Concepts()
		row := kindRow{Kind: k.String(), Most: cs.Most(), Concepts: cs.Names()}
		if withOps {
			for _, op := range meta.Ops() {
				if op.IsUnary() && op.Applicable(k) {
					row.Ops = append(row.Ops, op.String())
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func renderKindRows(w io.Writer, rows []kindRow) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Kind))
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %s\n", width, r.Kind, strings.Join(r.Most, ", "))
		if len(r.Ops) > 0 {
			fmt.Fprintf(w, "%-*s    ops: %s\n", width, "", strings.Join(r.Ops, ", "))
		}
	}
}
