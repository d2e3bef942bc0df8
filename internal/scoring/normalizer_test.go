package scoring_test

import (
	"testing"

	"github.com/testgenius/backend/internal/scoring"
)

func TestEquals_NilCandidate(t *testing.T) {
	var n scoring.Normalizer
	if n.Equals(nil, "A") {
		t.Error("nil candidate must never match")
	}
}

func TestEquals_TrimmedMatch(t *testing.T) {
	var n scoring.Normalizer
	cases := []struct {
		candidate string
		reference string
		want      bool
	}{
		{"Paris", "Paris", true},
		{" Paris ", "Paris", true},
		{"Paris", "  Paris", true},
		{"paris", "Paris", false},
		{"Pari", "Paris", false},
		{"", "", true},
	}

	for _, c := range cases {
		candidate := c.candidate
		if got := n.Equals(&candidate, c.reference); got != c.want {
			t.Errorf("Equals(%q, %q) = %v, want %v", c.candidate, c.reference, got, c.want)
		}
	}
}
