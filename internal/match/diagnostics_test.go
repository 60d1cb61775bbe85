package match

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-snp/internal/genotype"
	"github.com/inodb/vibe-snp/internal/reference"
)

func TestDiagnose(t *testing.T) {
	variants := []genotype.Variant{
		{RSID: "rs1"}, {RSID: "rs2"}, {RSID: "rs3"}, {RSID: "rs4"}, {RSID: "rs1"},
	}
	catalog := reference.NewStaticCatalog(
		reference.NewTable(reference.Traits,
			rec(map[string]string{"rsid": "rs1", "gene": "A"}),
			rec(map[string]string{"rsid": "rs1", "gene": "A2"})),
		reference.NewTable(reference.ClinVar, rec(map[string]string{"rsid": "RS3 ", "gene": "C"})),
	)
	results := MatchAll(variants, catalog.Tables())

	d := Diagnose(variants, results)

	assert.Equal(t, 5, d.TotalUploaded)
	assert.Equal(t, 4, d.PerCategory["Traits"])
	assert.Equal(t, 1, d.PerCategory["ClinVar"])
	assert.Equal(t, 0, d.PerCategory["Immune"])
	assert.Len(t, d.PerCategory, len(reference.Categories))

	require.Len(t, d.Unmatched, 2)
	assert.Equal(t, "rs2", d.Unmatched[0].RSID)
	assert.Equal(t, "rs4", d.Unmatched[1].RSID)
	assert.Equal(t, 3, d.MatchedCount())
}

func TestDiagnose_EveryVariantAccountedFor(t *testing.T) {
	variants := genotype.Parse([][]byte{
		[]byte("rs10\t1\t1\tAA"),
		[]byte("RS11\t1\t2\tAC"),
		[]byte("rs12\t1\t3\tGG"),
		[]byte("rs10\t1\t1\tAA"),
	})
	catalog := reference.NewStaticCatalog(
		reference.NewTable(reference.Nutrigenomics, rec(map[string]string{"rsid": "rs11", "gene": "N"})),
		reference.NewTable(reference.Ancestry, rec(map[string]string{"rsid": "rs10", "gene": "R"})),
	)
	results := MatchAll(variants, catalog.Tables())
	d := Diagnose(variants, results)

	matched := make(map[string]bool)
	for _, id := range MatchedIDs(results) {
		matched[id] = true
	}

	var accounted []string
	for _, v := range variants {
		if matched[v.RSID] {
			accounted = append(accounted, v.RSID)
		}
	}
	for _, v := range d.Unmatched {
		assert.False(t, matched[v.RSID], "unmatched variant %s also matched", v.RSID)
		accounted = append(accounted, v.RSID)
	}

	var uploaded []string
	for _, v := range variants {
		uploaded = append(uploaded, v.RSID)
	}
	sort.Strings(accounted)
	sort.Strings(uploaded)
	assert.Equal(t, uploaded, accounted)
}

func TestDiagnose_NoVariants(t *testing.T) {
	d := Diagnose(nil, nil)
	assert.Equal(t, 0, d.TotalUploaded)
	assert.Empty(t, d.Unmatched)
	assert.Empty(t, d.PerCategory)
}

func TestMatchedIDs(t *testing.T) {
	results := []CategoryResult{
		{Matches: []Match{{Variant: genotype.Variant{RSID: "rs2"}}, {Variant: genotype.Variant{RSID: "rs1"}}}},
		{Matches: []Match{{Variant: genotype.Variant{RSID: "rs2"}}}},
	}
	assert.Equal(t, []string{"rs2", "rs1"}, MatchedIDs(results))
	assert.Empty(t, MatchedIDs(nil))
}
