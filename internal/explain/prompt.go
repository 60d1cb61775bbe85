package explain

import (
	"fmt"

	"github.com/inodb/vibe-snp/internal/match"
)

// fallbackLabel is used when a match has no descriptive field.
const fallbackLabel = "a known variant"

// BuildPrompt asks for a plain-language explanation of the uploaded genotype
// at a matched variant.
func BuildPrompt(m match.Match) string {
	label := m.Primary()
	if label == "" {
		label = fallbackLabel
	}
	return fmt.Sprintf(
		"What does it mean if someone has the genotype %s at %s (%s) which is associated with %s? Explain clearly and comprehensively.",
		m.Genotype(), m.RSID(), m.Gene(), label)
}
