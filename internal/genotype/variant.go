package genotype

import "strings"

// Column names of a raw genotype export, in file order.
const (
	ColumnRSID       = "rsid"
	ColumnChromosome = "chromosome"
	ColumnPosition   = "position"
	ColumnGenotype   = "genotype"
)

// Columns lists the export columns in positional order.
var Columns = []string{ColumnRSID, ColumnChromosome, ColumnPosition, ColumnGenotype}

// Variant is a single genotype call from an uploaded export.
type Variant struct {
	RSID       string // normalized identifier (lowercase, trimmed)
	Chromosome string // passed through as written, e.g. "1", "X", "MT"
	Position   string // passed through as written
	Genotype   string // observed alleles, e.g. "AG", "--"
}

// Fields returns the variant as a column -> value map.
func (v Variant) Fields() map[string]string {
	return map[string]string{
		ColumnRSID:       v.RSID,
		ColumnChromosome: v.Chromosome,
		ColumnPosition:   v.Position,
		ColumnGenotype:   v.Genotype,
	}
}

// NormalizeID lowercases an identifier and strips surrounding whitespace.
// Both sides of every join go through it.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
