// Package report renders match results as text.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/vibe-snp/internal/match"
)

// DefaultSummaryFile is the file name offered for the downloadable summary.
const DefaultSummaryFile = "dna_summary.txt"

// secondarySeparator joins the primary and secondary annotation of a line.
const secondarySeparator = " — "

// BuildSummary renders the plain-text summary: for each category with at
// least one match, a "### <label>" header followed by one line per match in
// join order. Missing gene or labels render as empty strings.
func BuildSummary(results []match.CategoryResult) string {
	var sb strings.Builder
	for _, r := range results {
		if r.Count() == 0 {
			continue
		}
		sb.WriteString("\n### ")
		sb.WriteString(r.Label())
		sb.WriteString("\n")
		for _, m := range r.Matches {
			sb.WriteString(SummaryLine(m))
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

// SummaryLine formats one match as "- <rsid> (<gene>): <primary>[ — <secondary>]".
func SummaryLine(m match.Match) string {
	line := fmt.Sprintf("- %s (%s): %s", m.RSID(), m.Gene(), m.Primary())
	if secondary := m.Secondary(); secondary != "" {
		line += secondarySeparator + secondary
	}
	return line
}

// WriteSummary writes the summary followed by a newline.
func WriteSummary(w io.Writer, results []match.CategoryResult) error {
	summary := BuildSummary(results)
	if summary == "" {
		return nil
	}
	_, err := io.WriteString(w, summary+"\n")
	return err
}

// WriteSummaryFile writes the summary to path, replacing any existing file.
func WriteSummaryFile(path string, results []match.CategoryResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	if err := WriteSummary(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	return f.Close()
}
