// Package genotype parses consumer genotyping exports (23andMe-style raw data).
package genotype

// VariantParser is the interface for parsers that read genotype calls.
type VariantParser interface {
	// Next reads the next well-formed variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int

	// Skipped returns the number of malformed lines dropped so far.
	Skipped() int
}
