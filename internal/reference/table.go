package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/inodb/vibe-snp/internal/genotype"
)

// Required reference columns.
const (
	ColumnRSID = "rsid"
	ColumnGene = "gene"
)

// Record is one annotation row of a reference table. Missing columns read
// as the empty string.
type Record struct {
	fields map[string]string
}

// NewRecord builds a record from column values, normalizing the identifier.
func NewRecord(fields map[string]string) Record {
	r := Record{fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		r.fields[k] = v
	}
	r.fields[ColumnRSID] = genotype.NormalizeID(r.fields[ColumnRSID])
	return r
}

// Get returns the value of a column, or "" if absent.
func (r Record) Get(column string) string {
	return r.fields[column]
}

// RSID returns the normalized variant identifier.
func (r Record) RSID() string { return r.fields[ColumnRSID] }

// Gene returns the gene label.
func (r Record) Gene() string { return r.fields[ColumnGene] }

// Fields returns a copy of the record's column values.
func (r Record) Fields() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Annotation is the typed view of a record's known descriptive columns.
type Annotation struct {
	RSID               string `mapstructure:"rsid"`
	Gene               string `mapstructure:"gene"`
	Trait              string `mapstructure:"trait"`
	Condition          string `mapstructure:"condition"`
	Drug               string `mapstructure:"drug"`
	Nutrient           string `mapstructure:"nutrient"`
	Phenotype          string `mapstructure:"phenotype"`
	Region             string `mapstructure:"region"`
	Impact             string `mapstructure:"impact"`
	Effect             string `mapstructure:"effect"`
	ClinicalAnnotation string `mapstructure:"clinical_annotation"`
	Notes              string `mapstructure:"notes"`
}

// DecodeAnnotation decodes a column map into an Annotation, ignoring
// columns it does not know.
func DecodeAnnotation(fields map[string]string) (Annotation, error) {
	var a Annotation
	if err := mapstructure.Decode(fields, &a); err != nil {
		return Annotation{}, fmt.Errorf("decode annotation: %w", err)
	}
	return a, nil
}

// Fields returns the non-empty annotation columns keyed by column name.
func (a Annotation) Fields() map[string]string {
	raw := map[string]interface{}{}
	if err := mapstructure.Decode(a, &raw); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out[k] = s
		}
	}
	return out
}

// Annotation returns the typed view of the record.
func (r Record) Annotation() (Annotation, error) {
	return DecodeAnnotation(r.fields)
}

// Table is a read-only reference table for one category.
type Table struct {
	Category Category
	Source   string   // file path, URL or "inline"
	Columns  []string // normalized header names in file order
	Records  []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// NewTable builds a table from records, e.g. for tables assembled in code.
func NewTable(cat Category, records ...Record) *Table {
	return &Table{Category: cat, Source: "memory", Columns: []string{ColumnRSID, ColumnGene}, Records: records}
}

// TableError reports a reference table that could not be loaded.
type TableError struct {
	Category Category
	Source   string
	Err      error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("reference table %s (%s): %v", e.Category.Key(), e.Source, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// ErrMissingRSID is returned for tables without an rsid column.
var ErrMissingRSID = errors.New("missing 'rsid' column")

// LoadTable loads a comma-separated reference table from disk.
func LoadTable(cat Category, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TableError{Category: cat, Source: path, Err: err}
	}
	defer f.Close()

	return ParseTable(cat, f, path)
}

// ParseTable parses a comma-separated reference table with a header row.
// Header names are lowercased and trimmed; short rows are padded with "".
func ParseTable(cat Category, r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &TableError{Category: cat, Source: source, Err: errors.New("empty table")}
	}
	if err != nil {
		return nil, &TableError{Category: cat, Source: source, Err: fmt.Errorf("read header: %w", err)}
	}

	columns := make([]string, len(header))
	rsidIdx := -1
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		columns[i] = strings.ToLower(strings.TrimSpace(col))
		if columns[i] == ColumnRSID {
			rsidIdx = i
		}
	}
	if rsidIdx < 0 {
		return nil, &TableError{Category: cat, Source: source, Err: ErrMissingRSID}
	}

	t := &Table{Category: cat, Source: source, Columns: columns}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &TableError{Category: cat, Source: source, Err: fmt.Errorf("read row: %w", err)}
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				fields[col] = row[i]
			} else {
				fields[col] = ""
			}
		}
		t.Records = append(t.Records, NewRecord(fields))
	}

	return t, nil
}
