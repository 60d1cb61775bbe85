package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-snp/internal/genotype"
	"github.com/inodb/vibe-snp/internal/match"
	"github.com/inodb/vibe-snp/internal/reference"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResults() []match.CategoryResult {
	comt := genotype.Variant{RSID: "rs4680", Chromosome: "22", Position: "19951271", Genotype: "AG"}
	mthfr := genotype.Variant{RSID: "rs1801133", Chromosome: "1", Position: "11856378", Genotype: "CT"}
	return []match.CategoryResult{
		{
			Category: reference.Traits,
			Matches: []match.Match{
				{Variant: comt, Fields: map[string]string{"rsid": "rs4680", "gene": "COMT", "trait": "Warrior vs Worrier"}},
			},
		},
		{Category: reference.Pharmacogenomics},
		{
			Category: reference.ClinVar,
			Matches: []match.Match{
				{Variant: mthfr, Fields: map[string]string{"rsid": "rs1801133", "gene": "MTHFR", "condition": "Homocystinuria", "clinical_annotation": "Pathogenic"}},
				{Variant: mthfr, Fields: map[string]string{"rsid": "rs1801133", "gene": "MTHFR", "condition": "Neural tube defects"}},
			},
		},
		{
			Category: reference.Nutrigenomics,
			Matches: []match.Match{
				{Variant: mthfr, Fields: map[string]string{"rsid": "rs1801133", "gene": "MTHFR", "nutrient": "Folate", "effect": "Reduced conversion"}},
			},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Empty(t, s.Path())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteMatches(sampleResults()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	rows, err := s.LookupRSID("rs4680")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteAndLookupRSID(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(sampleResults()))

	rows, err := s.LookupRSID("  RS1801133 ")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ClinVar", rows[0].Category)
	assert.Equal(t, "Homocystinuria", rows[0].Annotation.Condition)
	assert.Equal(t, "Pathogenic", rows[0].Annotation.ClinicalAnnotation)
	assert.Equal(t, "Neural tube defects", rows[1].Annotation.Condition)
	assert.Equal(t, "Nutrigenomics", rows[2].Category)
	assert.Equal(t, "Folate", rows[2].Annotation.Nutrient)

	assert.Equal(t, "CT", rows[0].Variant.Genotype)
	assert.Equal(t, "11856378", rows[0].Variant.Position)
	assert.Equal(t, "rs1801133", rows[0].Annotation.RSID)
	assert.Less(t, rows[0].Seq, rows[1].Seq)

	rows, err = s.LookupRSID("rs0")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteMatchesEmpty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(nil))
	require.NoError(t, s.WriteMatches([]match.CategoryResult{{Category: reference.Immune}}))

	counts, err := s.CategoryCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestWriteMatchesAppendsSequence(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(sampleResults()))
	require.NoError(t, s.WriteMatches(sampleResults()))

	rows, err := s.LookupRSID("rs4680")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Seq)
	assert.Equal(t, int64(5), rows[1].Seq)
}

func TestSearchByGene(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(sampleResults()))

	rows, err := s.SearchByGene("mthfr")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = s.SearchByGene("COMT")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Warrior vs Worrier", rows[0].Annotation.Trait)

	rows, err = s.SearchByGene("NOTEXIST")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCategoryCounts(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(sampleResults()))

	counts, err := s.CategoryCounts()
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Category: "Traits", Count: 1},
		{Category: "ClinVar", Count: 2},
		{Category: "Nutrigenomics", Count: 1},
	}, counts)
}

func TestClear(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(sampleResults()))
	require.NoError(t, s.Clear())

	rows, err := s.LookupRSID("rs4680")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMatchRow_Match(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMatches(sampleResults()))

	rows, err := s.LookupRSID("rs1801133")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	m := rows[0].Match()
	assert.Equal(t, "rs1801133", m.RSID())
	assert.Equal(t, "MTHFR", m.Gene())
	assert.Equal(t, "CT", m.Genotype())
	assert.Equal(t, "Homocystinuria", m.Primary())
	assert.Equal(t, "Pathogenic", m.Secondary())
	assert.Equal(t, "1", m.Get("chromosome"))
}
