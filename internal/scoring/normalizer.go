// Package scoring implements answer matching and score computation for
// completed tests. Both scoring paths (AI-adjudicated and answer-key based)
// go through the same Normalizer and Policy so the matching rules cannot
// drift apart.
package scoring

import (
	"strings"
)

// Normalizer defines the single equality semantics used to compare a user's
// selected option against a canonical correct answer. Option text arrives
// from three independent sources (AI output, user selection, uploaded keys),
// so surrounding whitespace is stripped before comparison; beyond that the
// match is exact and case-sensitive, since options are presented to the user
// verbatim as the AI produced them.
type Normalizer struct{}

// Equals reports whether candidate matches reference. A nil candidate means
// the question was never attempted and is never correct.
func (Normalizer) Equals(candidate *string, reference string) bool {
	if candidate == nil {
		return false
	}
	return strings.TrimSpace(*candidate) == strings.TrimSpace(reference)
}
