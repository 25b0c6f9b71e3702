package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// Constants for output formatting.
const (
	NameMaxLen    = 40 // Name column width in list tables
	PathMaxLen    = 60 // Path and command column width in list tables
	NeverAddedStr = "-"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// printTable writes rows under a header with aligned columns, followed by a total.
func printTable(header []string, rows [][]string, noun string) {
	if len(rows) == 0 {
		fmt.Printf("No %s found.\n", noun)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	rules := make([]string, len(header))
	for i, h := range header {
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(rules, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()

	fmt.Printf("\nTotal: %s %s\n", humanize.Comma(int64(len(rows))), noun)
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// relativeTime renders a timestamp as "3 days ago".
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return NeverAddedStr
	}
	return humanize.Time(t)
}

// orDash returns "-" for empty table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// mustParseID parses a positive row ID argument, exits on error.
func mustParseID(arg, what string) int64 {
	id, err := parseID(arg)
	if err != nil {
		exitWithError(ExitError, "invalid %s id %q: %v", what, arg, err)
	}
	return id
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if id <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return id, nil
}

// parseIDList parses a comma-separated list of row IDs. Blank entries are skipped.
func parseIDList(s string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
