// Package reference loads the static SNP annotation tables that uploaded
// genotypes are matched against.
package reference

import (
	"fmt"
	"strings"
)

// Category identifies one reference table. Categories are always iterated
// in declaration order.
type Category int

const (
	Traits Category = iota
	Pharmacogenomics
	Nutrigenomics
	Ancestry
	ClinVar
	DrugSensitivities
	Immune
)

// Categories lists every category in report order.
var Categories = []Category{
	Traits,
	Pharmacogenomics,
	Nutrigenomics,
	Ancestry,
	ClinVar,
	DrugSensitivities,
	Immune,
}

type categoryInfo struct {
	label string // report header label
	key   string // config key under references.*
	file  string // default file name in the data directory
}

var categoryInfos = [...]categoryInfo{
	Traits:            {"Traits", "traits", "snp_traits.csv"},
	Pharmacogenomics:  {"Pharmacogenomics", "pharma", "pharma_snps.csv"},
	Nutrigenomics:     {"Nutrigenomics", "nutri", "nutrigenomics_snps.csv"},
	Ancestry:          {"Ancestry", "ancestry", "ancestry_snps.csv"},
	ClinVar:           {"ClinVar", "clinvar", "clinvar_filtered.csv"},
	DrugSensitivities: {"Drug Sensitivities", "pharmgkb", "pharmgkb_filtered.csv"},
	Immune:            {"Immune", "immune", "innatedb_gene_matches.csv"},
}

func (c Category) valid() bool {
	return c >= 0 && int(c) < len(categoryInfos)
}

// Label returns the human-readable category label.
func (c Category) Label() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryInfos[c].label
}

// Key returns the configuration key for the category.
func (c Category) Key() string {
	if !c.valid() {
		return ""
	}
	return categoryInfos[c].key
}

// FileName returns the default reference file name for the category.
func (c Category) FileName() string {
	if !c.valid() {
		return ""
	}
	return categoryInfos[c].file
}

func (c Category) String() string { return c.Label() }

// ParseCategory resolves a category from its key or label, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, c.Key()) || strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}
