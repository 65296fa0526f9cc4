package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/pkg/publicip"
)

// CheckCmd runs every source and reports each outcome
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run every source and show what each one answered",
	Long: `Run every configured source once, ignoring the strategy and the cache,
and print a table of results. Useful to find out which echo services are
reachable from this network.

Exits 1 if no source answered.

Examples:
  pubip check
  pubip check --timeout 2s`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.FgCyan).Fprintf(out, "=== Checking %d sources (strategy: %s) ===\n", len(r.Sources()), r.Strategy())
	fmt.Fprintln(out)

	attempts := r.Check(cmd.Context())
	printCheckTable(out, attempts)

	okCount := 0
	for _, a := range attempts {
		if a.OK() {
			okCount++
		}
	}

	fmt.Fprintln(out)
	if okCount == 0 {
		color.New(color.FgRed).Fprintln(out, "❌ No source answered")
		return errNoAddress
	}
	if distinct := distinctValues(attempts); distinct > 1 {
		color.New(color.FgYellow).Fprintf(out, "⚠️  %d/%d sources answered with %d different values\n", okCount, len(attempts), distinct)
		return nil
	}
	color.New(color.FgGreen).Fprintf(out, "✅ %d/%d sources answered\n", okCount, len(attempts))
	return nil
}

// printCheckTable prints one row per attempt
func printCheckTable(w io.Writer, attempts []publicip.Attempt) {
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(w, "%-16s %-8s %-18s %-10s %s\n", "Source", "Status", "Value", "Time", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 84))

	for _, a := range attempts {
		printCheckRow(w, a)
	}
}

// printCheckRow prints a single result row
func printCheckRow(w io.Writer, a publicip.Attempt) {
	status, statusColor := "✓ OK", color.FgGreen
	if !a.OK() {
		status, statusColor = "✗ FAIL", color.FgRed
	}

	color.New(color.FgWhite).Fprintf(w, "%-16s ", a.Source)
	color.New(statusColor).Fprintf(w, "%-8s ", status)
	fmt.Fprintf(w, "%-18s %-10s ", dashIfEmpty(a.Value), a.Duration.Round(time.Millisecond))

	if a.Err != nil {
		color.New(color.FgRed).Fprintln(w, a.ErrorString())
	} else {
		fmt.Fprintln(w, "-")
	}
}

func distinctValues(attempts []publicip.Attempt) int {
	seen := make(map[string]bool)
	for _, a := range attempts {
		if a.OK() {
			seen[a.Value] = true
		}
	}
	return len(seen)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
