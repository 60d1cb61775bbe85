// Package match joins uploaded genotypes against reference tables.
package match

import (
	"github.com/ahmetb/go-linq"

	"github.com/inodb/vibe-snp/internal/genotype"
	"github.com/inodb/vibe-snp/internal/reference"
)

// Descriptive field priority lists. The first non-empty field wins.
var (
	PrimaryFields   = []string{"trait", "condition", "drug", "nutrient", "phenotype", "region"}
	SecondaryFields = []string{"impact", "effect", "clinical_annotation", "notes"}
)

// Match is the join of one uploaded variant with one reference record.
type Match struct {
	Variant genotype.Variant
	// Fields holds the merged row: variant columns overlaid by reference
	// columns, with rsid always the normalized identifier.
	Fields map[string]string
}

func newMatch(v genotype.Variant, r reference.Record) Match {
	fields := v.Fields()
	for k, val := range r.Fields() {
		if k == reference.ColumnRSID {
			continue
		}
		fields[k] = val
	}
	return Match{Variant: v, Fields: fields}
}

// Get returns a merged column value, or "" if absent.
func (m Match) Get(field string) string {
	return m.Fields[field]
}

// RSID returns the normalized identifier shared by both sides.
func (m Match) RSID() string { return m.Variant.RSID }

// Gene returns the reference gene label.
func (m Match) Gene() string { return m.Get(reference.ColumnGene) }

// Genotype returns the uploaded genotype, even when the reference table
// carries its own genotype column.
func (m Match) Genotype() string { return m.Variant.Genotype }

// FirstNonEmpty returns the first non-empty value among fields.
func (m Match) FirstNonEmpty(fields []string) string {
	for _, f := range fields {
		if v := m.Get(f); v != "" {
			return v
		}
	}
	return ""
}

// Primary returns the best available descriptive label.
func (m Match) Primary() string { return m.FirstNonEmpty(PrimaryFields) }

// Secondary returns the best available secondary annotation.
func (m Match) Secondary() string { return m.FirstNonEmpty(SecondaryFields) }

// CategoryResult holds the matches found in one reference table.
type CategoryResult struct {
	Category reference.Category
	Matches  []Match
}

// Label returns the category label.
func (r CategoryResult) Label() string { return r.Category.Label() }

// Count returns the number of matches, zero included.
func (r CategoryResult) Count() int { return len(r.Matches) }

// MatchCategory inner-joins variants with a reference table on normalized
// identifier. Rows come out in variant order, then reference row order, one
// per duplicate reference row. The table is not modified.
func MatchCategory(variants []genotype.Variant, table *reference.Table) CategoryResult {
	if table == nil {
		return CategoryResult{Matches: []Match{}}
	}

	matches := []Match{}
	linq.From(variants).JoinT(
		linq.From(table.Records),
		func(v genotype.Variant) string { return genotype.NormalizeID(v.RSID) },
		func(r reference.Record) string { return genotype.NormalizeID(r.RSID()) },
		func(v genotype.Variant, r reference.Record) Match { return newMatch(v, r) },
	).ToSlice(&matches)

	return CategoryResult{Category: table.Category, Matches: matches}
}

// MatchAll matches variants against every table, in the order given.
// Empty results are kept so counts are reported for each category.
func MatchAll(variants []genotype.Variant, tables []*reference.Table) []CategoryResult {
	results := make([]CategoryResult, 0, len(tables))
	for _, t := range tables {
		results = append(results, MatchCategory(variants, t))
	}
	return results
}
