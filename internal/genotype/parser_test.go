package genotype

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_SampleGenome(t *testing.T) {
	testFile := findTestFile(t, "genome_small.txt")

	parser, err := NewParser(testFile)
	require.NoError(t, err)
	defer parser.Close()

	variants, err := Collect(parser)
	require.NoError(t, err)
	require.Len(t, variants, 6)

	assert.Equal(t, Variant{RSID: "rs4680", Chromosome: "22", Position: "19951271", Genotype: "AG"}, variants[0])
	// Uppercase identifier with trailing whitespace is normalized.
	assert.Equal(t, "rs1801133", variants[1].RSID)
	assert.Equal(t, "i713426", variants[4].RSID)
	assert.Equal(t, "--", variants[4].Genotype)

	assert.Equal(t, 1, parser.Skipped(), "three-field line should be dropped")
	assert.Equal(t, 11, parser.LineNumber())
}

func TestParser_Gzipped(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("# header\nrs1\t1\t10\tAA\nrs2\t2\t20\tCT\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "genome.txt.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	variants, err := Collect(parser)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "rs2", variants[1].RSID)
}

func TestParser_FileNotFound(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParser_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	variants, err := Collect(parser)
	require.NoError(t, err)
	assert.Empty(t, variants)
	assert.NotNil(t, variants)
}

func TestParseAll_NoTrailingNewline(t *testing.T) {
	variants, err := ParseAll(strings.NewReader("rs1\t1\t10\tAA\nrs2\t2\t20\tGG"))
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "GG", variants[1].Genotype)
}

func TestParseAll_CRLF(t *testing.T) {
	variants, err := ParseAll(strings.NewReader("# comment\r\nRS10\t3\t30\tTT\r\n"))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, Variant{RSID: "rs10", Chromosome: "3", Position: "30", Genotype: "TT"}, variants[0])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []Variant
	}{
		{
			name:  "well formed line",
			lines: []string{"rs123\t1\t100\tAA"},
			want:  []Variant{{RSID: "rs123", Chromosome: "1", Position: "100", Genotype: "AA"}},
		},
		{
			name:  "identifier lowercased and trimmed",
			lines: []string{" RS123 \t1\t100\tAA"},
			want:  []Variant{{RSID: "rs123", Chromosome: "1", Position: "100", Genotype: "AA"}},
		},
		{
			name:  "comment dropped",
			lines: []string{"#rs123\t1\t100\tAA"},
			want:  []Variant{},
		},
		{
			name:  "too few fields dropped",
			lines: []string{"rs123\t1\t100"},
			want:  []Variant{},
		},
		{
			name:  "too many fields dropped",
			lines: []string{"rs123\t1\t100\tAA\textra"},
			want:  []Variant{},
		},
		{
			name:  "space separated dropped",
			lines: []string{"rs123 1 100 AA"},
			want:  []Variant{},
		},
		{
			name:  "duplicates pass through",
			lines: []string{"rs1\t1\t1\tAA", "RS1\t1\t1\tAA"},
			want: []Variant{
				{RSID: "rs1", Chromosome: "1", Position: "1", Genotype: "AA"},
				{RSID: "rs1", Chromosome: "1", Position: "1", Genotype: "AA"},
			},
		},
		{
			name:  "no input",
			lines: nil,
			want:  []Variant{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([][]byte, len(tt.lines))
			for i, l := range tt.lines {
				raw[i] = []byte(l)
			}
			assert.Equal(t, tt.want, Parse(raw))
		})
	}
}

func TestParse_NeverExceedsWellFormedCount(t *testing.T) {
	lines := [][]byte{
		[]byte("# comment"),
		[]byte("rs1\t1\t1\tAA"),
		[]byte("bad line"),
		[]byte("rs2\t1\t2"),
		[]byte("rs3\t1\t3\tCC"),
		[]byte(""),
	}
	assert.LessOrEqual(t, len(Parse(lines)), 2)
	assert.Len(t, Parse(lines), 2)
}

func TestParse_InvalidUTF8(t *testing.T) {
	variants := Parse([][]byte{{'r', 's', '1', '\t', '1', '\t', '1', '\t', 0xff}})
	require.Len(t, variants, 1)
	assert.Equal(t, "rs1", variants[0].RSID)
	assert.Equal(t, "�", variants[0].Genotype)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "rs123", NormalizeID("RS123 "))
	assert.Equal(t, "rs123", NormalizeID("\trs123\n"))
	assert.Equal(t, "", NormalizeID("   "))
}

func TestVariant_Fields(t *testing.T) {
	v := Variant{RSID: "rs1", Chromosome: "2", Position: "3", Genotype: "AG"}
	assert.Equal(t, map[string]string{
		"rsid": "rs1", "chromosome": "2", "position": "3", "genotype": "AG",
	}, v.Fields())
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
