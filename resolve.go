package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/resolver"
	"media-resolver/internal/startup"
)

const (
	defaultTerminalWidth = 100
	minTitleColumnWidth  = 12
	maxTitleColumnWidth  = 40
	minFileColumnWidth   = 16
	maxFileColumnWidth   = 48
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve PATH...",
		Short: "Resolve paths into items",
		Long: "Resolve each path with the plugins of the manifest and print the items.\n" +
			"A table is printed on a terminal, JSON otherwise. Diagnostics go to stderr.",
		Args: cobra.MinimumNArgs(1),
		RunE: runResolve,
	}
	cmd.Flags().Bool("json", false, "Print JSON even on a terminal")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any path reports a failure")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := applyGlobalFlags(cmd, true); err != nil {
		return err
	}
	config, err := startup.LoadQuietConfig()
	if err != nil {
		return err
	}
	configureVolumes(config)

	r, l := newLoader(config)
	defer l.Close()
	if _, err := l.Load(); err != nil {
		// Registration failures leave the other plugins usable.
		if l.Manifest() == nil {
			return err
		}
		logging.Warn("%v", err)
	}

	results, err := r.LoadMany(cmd.Context(), args)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	if asJSON || !isTerminal(out) {
		if err := writeResultsJSON(out, results); err != nil {
			return err
		}
	} else {
		writeResultsTable(out, results, terminalWidth(out))
	}

	failures := writeDiagnostics(cmd.ErrOrStderr(), results)
	if strict, _ := cmd.Flags().GetBool("strict"); strict && failures > 0 {
		return fmt.Errorf("%d failure(s) while resolving", failures)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTerminalWidth
}

func writeResultsJSON(w io.Writer, results []resolver.Result) error {
	for i := range results {
		if results[i].Items == nil {
			results[i].Items = []*mediaitem.Item{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// writeResultsTable prints one row per item, grouped by requested path.
func writeResultsTable(w io.Writer, results []resolver.Result, width int) {
	// Fixed columns: "#", RANGE, DURATION, YEAR, TRACK and separators.
	available := width - 4 - 23 - 9 - 5 - 5 - 6
	fileWidth := clamp(available/3, minFileColumnWidth, maxFileColumnWidth)
	titleWidth := clamp(available/3, minTitleColumnWidth, maxTitleColumnWidth)
	artistWidth := clamp(available-fileWidth-titleWidth, minTitleColumnWidth, maxTitleColumnWidth)

	for _, res := range results {
		fmt.Fprintf(w, "%s (%d item(s))\n", res.Path, len(res.Items))
		if len(res.Items) == 0 {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "%-4s %-*s %-23s %-*s %-*s %-9s %-5s %-5s\n",
			"#", fileWidth, "FILE", "RANGE", titleWidth, "TITLE", artistWidth, "ARTIST", "DURATION", "YEAR", "TRACK")
		fmt.Fprintln(w, strings.Repeat("-", 4+fileWidth+23+titleWidth+artistWidth+9+5+5+7))
		for i, item := range res.Items {
			fmt.Fprintf(w, "%-4d %-*s %-23s %-*s %-*s %-9s %-5s %-5s\n",
				i+1,
				fileWidth, truncate(filepath.Base(item.URL), fileWidth),
				formatRange(item),
				titleWidth, truncate(orDash(item.Title), titleWidth),
				artistWidth, truncate(orDash(item.Artist), artistWidth),
				formatMillis(item.Duration),
				formatNumber(item.Year),
				formatNumber(item.Track),
			)
		}
		fmt.Fprintln(w)
	}
}

// writeDiagnostics prints diagnostics, failures first, and returns the
// number of failures.
func writeDiagnostics(w io.Writer, results []resolver.Result) int {
	failures := 0
	for _, res := range results {
		for _, d := range res.Diagnostics.Failures() {
			fmt.Fprintf(w, "error: %v\n", d)
			failures++
		}
		for _, d := range res.Diagnostics {
			if !d.Code.IsFailure() {
				fmt.Fprintf(w, "note: %v\n", d)
			}
		}
	}
	return failures
}

func formatRange(item *mediaitem.Item) string {
	if !item.HasRange {
		return "whole file"
	}
	end := "end"
	if item.RangeEnd != mediaitem.RangeToEnd {
		end = formatMillis(item.RangeEnd)
	}
	return formatMillis(item.RangeBegin) + "-" + end
}

// formatMillis renders milliseconds as m:ss.mmm, or "-" when unknown.
func formatMillis(ms int64) string {
	if ms < 0 {
		return "-"
	}
	minutes := ms / 60000
	seconds := (ms / 1000) % 60
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, ms%1000)
}

func formatNumber(n int) string {
	if n < 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
