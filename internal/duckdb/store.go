// Package duckdb keeps the matches of an analysis in a queryable DuckDB table.
// The store is in-memory by default; a path persists it for later sessions.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding session matches.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS session_matches (
		seq BIGINT,
		category VARCHAR,
		rsid VARCHAR,
		chromosome VARCHAR,
		pos VARCHAR,
		genotype VARCHAR,
		gene VARCHAR,
		trait VARCHAR,
		condition VARCHAR,
		drug VARCHAR,
		nutrient VARCHAR,
		phenotype VARCHAR,
		region VARCHAR,
		impact VARCHAR,
		effect VARCHAR,
		clinical_annotation VARCHAR,
		notes VARCHAR
	)`)
	return err
}
