package report

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-snp/internal/match"
)

// MatchWriter writes match rows in tab-delimited format.
type MatchWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewMatchWriter creates a new tab-delimited match writer.
func NewMatchWriter(w io.Writer) *MatchWriter {
	return &MatchWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Category",
			"RSID",
			"Chromosome",
			"Position",
			"Genotype",
			"Gene",
			"Annotation",
			"Detail",
		},
	}
}

// WriteHeader writes the header line.
func (mw *MatchWriter) WriteHeader() error {
	_, err := mw.w.WriteString(strings.Join(mw.columns, "\t") + "\n")
	return err
}

// Write writes a single match.
func (mw *MatchWriter) Write(category string, m match.Match) error {
	values := []string{
		category,
		orDash(m.RSID()),
		orDash(m.Variant.Chromosome),
		orDash(m.Variant.Position),
		orDash(m.Genotype()),
		orDash(m.Gene()),
		orDash(m.Primary()),
		orDash(m.Secondary()),
	}

	_, err := mw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteResults writes every match of every result, in order.
func (mw *MatchWriter) WriteResults(results []match.CategoryResult) error {
	for _, r := range results {
		for _, m := range r.Matches {
			if err := mw.Write(r.Label(), m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (mw *MatchWriter) Flush() error {
	return mw.w.Flush()
}

// orDash renders empty values as "-" and keeps tabs out of cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "\t", " ")
}
