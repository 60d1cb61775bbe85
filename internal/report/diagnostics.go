package report

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-snp/internal/match"
)

// WriteDiagnostics writes per-category counts in result order and lists
// up to limit unmatched variants (all of them when limit <= 0).
func WriteDiagnostics(w io.Writer, results []match.CategoryResult, d match.Diagnostics, limit int) error {
	if _, err := fmt.Fprintf(w, "Uploaded variants: %d\n", d.TotalUploaded); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "  %-20s %d matched\n", r.Label()+":", d.PerCategory[r.Label()]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Matched variants: %d\nUnmatched variants: %d\n", d.MatchedCount(), len(d.Unmatched)); err != nil {
		return err
	}
	for i, v := range d.Unmatched {
		if limit > 0 && i == limit {
			_, err := fmt.Fprintf(w, "  ... %d more\n", len(d.Unmatched)-limit)
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", v.RSID, v.Chromosome, v.Position, v.Genotype); err != nil {
			return err
		}
	}
	return nil
}
