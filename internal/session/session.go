// Package session runs one analysis of an uploaded genotype file: parse,
// match against every reference category, and build the report inputs.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-snp/internal/duckdb"
	"github.com/inodb/vibe-snp/internal/genotype"
	"github.com/inodb/vibe-snp/internal/match"
	"github.com/inodb/vibe-snp/internal/reference"
	"github.com/inodb/vibe-snp/internal/report"
)

// Session analyzes genotype uploads against a reference catalog.
type Session struct {
	id      string
	catalog *reference.Catalog
	store   *duckdb.Store
	logger  *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithStore writes every analysis result into store.
func WithStore(store *duckdb.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.SetLogger(l) }
}

// New creates a session over catalog.
func New(catalog *reference.Catalog, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier used in log fields.
func (s *Session) ID() string {
	return s.id
}

// SetLogger sets the logger for analysis messages.
func (s *Session) SetLogger(l *zap.Logger) {
	s.logger = l.With(zap.String("session", s.id))
}

// Result is the outcome of one analysis.
type Result struct {
	Variants    []genotype.Variant
	Results     []match.CategoryResult
	Diagnostics match.Diagnostics
	// Skipped counts malformed input lines that were dropped.
	Skipped int
}

// Summary renders the plain-text summary report.
func (r *Result) Summary() string {
	return report.BuildSummary(r.Results)
}

// Category returns the result for cat.
func (r *Result) Category(cat reference.Category) match.CategoryResult {
	for _, cr := range r.Results {
		if cr.Category == cat {
			return cr
		}
	}
	return match.CategoryResult{Category: cat, Matches: []match.Match{}}
}

// Find returns the first match for rsid in each category that has one,
// in category order.
func (r *Result) Find(rsid string) []CategoryMatch {
	id := genotype.NormalizeID(rsid)
	var found []CategoryMatch
	for _, cr := range r.Results {
		for _, m := range cr.Matches {
			if genotype.NormalizeID(m.RSID()) == id {
				found = append(found, CategoryMatch{Category: cr.Category, Match: m})
				break
			}
		}
	}
	return found
}

// CategoryMatch pairs a match with the category it was found in.
type CategoryMatch struct {
	Category reference.Category
	Match    match.Match
}

// Analyze reads a genotype file from r and matches it against the catalog.
func (s *Session) Analyze(ctx context.Context, r io.Reader) (*Result, error) {
	return s.AnalyzeParser(ctx, genotype.NewParserFromReader(r))
}

// AnalyzeParser matches every variant produced by p. The catalog is loaded
// first if needed.
func (s *Session) AnalyzeParser(ctx context.Context, p genotype.VariantParser) (*Result, error) {
	start := time.Now()

	if !s.catalog.Loaded() {
		if err := s.catalog.Load(ctx); err != nil {
			return nil, fmt.Errorf("load reference tables: %w", err)
		}
	}

	variants, err := genotype.Collect(p)
	if err != nil {
		return nil, fmt.Errorf("read genotype file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := match.MatchAll(variants, s.catalog.Tables())
	res := &Result{
		Variants:    variants,
		Results:     results,
		Diagnostics: match.Diagnose(variants, results),
		Skipped:     p.Skipped(),
	}

	if res.Skipped > 0 {
		s.logger.Warn("skipped malformed genotype lines", zap.Int("count", res.Skipped))
	}

	if s.store != nil {
		if err := s.store.WriteMatches(results); err != nil {
			return nil, fmt.Errorf("store matches: %w", err)
		}
	}

	s.logger.Info("analysis complete",
		zap.Int("variants", len(variants)),
		zap.Int("matched", res.Diagnostics.MatchedCount()),
		zap.Strings("matched_ids", match.MatchedIDs(results)),
		zap.Duration("elapsed", time.Since(start)))

	return res, nil
}
