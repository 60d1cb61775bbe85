package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-snp/internal/genotype"
	"github.com/inodb/vibe-snp/internal/match"
	"github.com/inodb/vibe-snp/internal/reference"
)

// MatchRow is one stored match.
type MatchRow struct {
	Seq        int64
	Category   string
	Variant    genotype.Variant
	Annotation reference.Annotation
}

// Match rebuilds the match the row was written from.
func (r MatchRow) Match() match.Match {
	fields := r.Annotation.Fields()
	for k, v := range r.Variant.Fields() {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return match.Match{Variant: r.Variant, Fields: fields}
}

const matchColumns = `seq, category, rsid, chromosome, pos, genotype,
		gene, trait, condition, drug, nutrient, phenotype, region,
		impact, effect, clinical_annotation, notes`

// WriteMatches batch-inserts category results using the Appender API.
// Rows keep the report order through a monotonically increasing seq.
func (s *Store) WriteMatches(results []match.CategoryResult) error {
	total := 0
	for _, r := range results {
		total += r.Count()
	}
	if total == 0 {
		return nil
	}

	var next int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM session_matches").Scan(&next); err != nil {
		return fmt.Errorf("read sequence: %w", err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "session_matches")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range results {
		for _, m := range r.Matches {
			a, err := reference.DecodeAnnotation(m.Fields)
			if err != nil {
				return err
			}
			next++
			v := m.Variant
			if err := appender.AppendRow(
				next, r.Label(), v.RSID, v.Chromosome, v.Position, v.Genotype,
				a.Gene, a.Trait, a.Condition, a.Drug, a.Nutrient, a.Phenotype, a.Region,
				a.Impact, a.Effect, a.ClinicalAnnotation, a.Notes,
			); err != nil {
				return fmt.Errorf("append match: %w", err)
			}
		}
	}

	return appender.Flush()
}

// Clear removes all stored matches.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM session_matches")
	return err
}

// LookupRSID returns the stored matches for an identifier, compared
// case- and whitespace-insensitively.
func (s *Store) LookupRSID(rsid string) ([]MatchRow, error) {
	rows, err := s.db.Query(`SELECT `+matchColumns+`
		FROM session_matches
		WHERE lower(trim(rsid)) = ?
		ORDER BY seq`, genotype.NormalizeID(rsid))
	if err != nil {
		return nil, fmt.Errorf("query rsid: %w", err)
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

// SearchByGene returns the stored matches for a gene, ignoring case.
func (s *Store) SearchByGene(gene string) ([]MatchRow, error) {
	rows, err := s.db.Query(`SELECT `+matchColumns+`
		FROM session_matches
		WHERE upper(gene) = upper(?)
		ORDER BY seq`, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

// CategoryCount is the number of stored matches for one category.
type CategoryCount struct {
	Category string
	Count    int64
}

// CategoryCounts returns match counts per category in first-seen order.
func (s *Store) CategoryCounts() ([]CategoryCount, error) {
	rows, err := s.db.Query(`SELECT category, COUNT(*)
		FROM session_matches
		GROUP BY category
		ORDER BY MIN(seq)`)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// scanMatchRows scans rows into MatchRow slices.
func scanMatchRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]MatchRow, error) {
	var out []MatchRow
	for rows.Next() {
		var r MatchRow
		a := &r.Annotation
		if err := rows.Scan(
			&r.Seq, &r.Category, &r.Variant.RSID, &r.Variant.Chromosome, &r.Variant.Position, &r.Variant.Genotype,
			&a.Gene, &a.Trait, &a.Condition, &a.Drug, &a.Nutrient, &a.Phenotype, &a.Region,
			&a.Impact, &a.Effect, &a.ClinicalAnnotation, &a.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		a.RSID = r.Variant.RSID
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}
