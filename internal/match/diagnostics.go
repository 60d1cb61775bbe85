package match

import (
	"github.com/ahmetb/go-linq"

	"github.com/inodb/vibe-snp/internal/genotype"
)

// Diagnostics summarizes how an upload was accounted for.
type Diagnostics struct {
	TotalUploaded int
	PerCategory   map[string]int // category label -> match count
	Unmatched     []genotype.Variant
}

// MatchedCount returns how many uploaded variants matched at least one table.
func (d Diagnostics) MatchedCount() int {
	return d.TotalUploaded - len(d.Unmatched)
}

// Diagnose computes per-category counts and the variants whose identifier
// appears in none of the results.
func Diagnose(variants []genotype.Variant, results []CategoryResult) Diagnostics {
	d := Diagnostics{
		TotalUploaded: len(variants),
		PerCategory:   make(map[string]int, len(results)),
		Unmatched:     []genotype.Variant{},
	}

	matched := make(map[string]struct{})
	for _, r := range results {
		d.PerCategory[r.Label()] = r.Count()
		for _, m := range r.Matches {
			matched[genotype.NormalizeID(m.RSID())] = struct{}{}
		}
	}

	linq.From(variants).WhereT(func(v genotype.Variant) bool {
		_, ok := matched[genotype.NormalizeID(v.RSID)]
		return !ok
	}).ToSlice(&d.Unmatched)

	return d
}

// MatchedIDs returns the distinct identifiers matched across results, in
// first-seen order.
func MatchedIDs(results []CategoryResult) []string {
	var ids []string
	linq.From(results).
		SelectManyT(func(r CategoryResult) linq.Query { return linq.From(r.Matches) }).
		SelectT(func(m Match) string { return m.RSID() }).
		Distinct().
		ToSlice(&ids)
	return ids
}
