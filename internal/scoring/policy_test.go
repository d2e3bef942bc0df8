package scoring_test

import (
	"strings"
	"testing"

	"github.com/testgenius/backend/internal/model"
	"github.com/testgenius/backend/internal/scoring"
)

func ptr(s string) *string { return &s }

func TestScore_AllCorrectNoNegativeMarking(t *testing.T) {
	policy := scoring.NewPolicy()
	items := []scoring.Item{
		{UserAnswer: ptr("A"), CorrectAnswer: "A"},
		{UserAnswer: ptr("B"), CorrectAnswer: "B"},
		{UserAnswer: ptr("C"), CorrectAnswer: "C"},
	}

	result := policy.Score(items, model.TestConfiguration{})

	if result.Total != 3 {
		t.Errorf("expected total 3, got %v", result.Total)
	}
	for i, correct := range result.PerItem {
		if !correct {
			t.Errorf("expected item %d to be correct", i)
		}
	}
}

func TestScore_NegativeMarking(t *testing.T) {
	policy := scoring.NewPolicy()
	cfg := model.TestConfiguration{
		NegativeMarkingEnabled: true,
		NegativeMarkPerWrong:   0.25,
	}

	// 2 correct, 1 wrong, 1 unattempted: 2 - 0.25 = 1.75
	items := []scoring.Item{
		{UserAnswer: ptr("A"), CorrectAnswer: "A"},
		{UserAnswer: ptr("B"), CorrectAnswer: "B"},
		{UserAnswer: ptr("X"), CorrectAnswer: "C"},
		{UserAnswer: nil, CorrectAnswer: "D"},
	}

	result := policy.Score(items, cfg)

	if result.Total != 1.75 {
		t.Errorf("expected total 1.75, got %v", result.Total)
	}
	want := []bool{true, true, false, false}
	for i := range want {
		if result.PerItem[i] != want[i] {
			t.Errorf("item %d: expected correct=%v, got %v", i, want[i], result.PerItem[i])
		}
	}
}

func TestScore_UnattemptedNeverPenalized(t *testing.T) {
	policy := scoring.NewPolicy()
	cfg := model.TestConfiguration{
		NegativeMarkingEnabled: true,
		NegativeMarkPerWrong:   1,
	}

	items := []scoring.Item{
		{UserAnswer: ptr("A"), CorrectAnswer: "A"},
		{UserAnswer: nil, CorrectAnswer: "B"},
		{UserAnswer: nil, CorrectAnswer: "C"},
	}

	result := policy.Score(items, cfg)

	if result.Total != 1 {
		t.Errorf("expected total 1, got %v", result.Total)
	}
}

func TestScore_ClampedAtZero(t *testing.T) {
	policy := scoring.NewPolicy()
	cfg := model.TestConfiguration{
		NegativeMarkingEnabled: true,
		NegativeMarkPerWrong:   1,
	}

	// 1 correct, 3 wrong: 1 - 3 = -2, clamped to 0.
	items := []scoring.Item{
		{UserAnswer: ptr("A"), CorrectAnswer: "A"},
		{UserAnswer: ptr("X"), CorrectAnswer: "B"},
		{UserAnswer: ptr("X"), CorrectAnswer: "C"},
		{UserAnswer: ptr("X"), CorrectAnswer: "D"},
	}

	result := policy.Score(items, cfg)

	if result.Total != 0 {
		t.Errorf("expected total clamped at 0, got %v", result.Total)
	}
}

func TestScore_NegativeMarkingDisabledIgnoresWrong(t *testing.T) {
	policy := scoring.NewPolicy()

	items := []scoring.Item{
		{UserAnswer: ptr("X"), CorrectAnswer: "A"},
		{UserAnswer: ptr("B"), CorrectAnswer: "B"},
	}

	result := policy.Score(items, model.TestConfiguration{})

	if result.Total != 1 {
		t.Errorf("expected total 1, got %v", result.Total)
	}
}

func TestScore_WhitespaceTrimmedBeforeComparison(t *testing.T) {
	policy := scoring.NewPolicy()

	items := []scoring.Item{
		{UserAnswer: ptr("  Paris "), CorrectAnswer: "Paris"},
	}

	result := policy.Score(items, model.TestConfiguration{})

	if result.Total != 1 {
		t.Errorf("expected trimmed answers to match, got total %v", result.Total)
	}
}

func TestValidateKey_LengthMismatch(t *testing.T) {
	err := scoring.ValidateKey([]string{"A", "B", "C"}, 5)
	if err == nil {
		t.Fatal("expected an error for key length mismatch")
	}

	msg := err.Error()
	if !strings.Contains(msg, "3") || !strings.Contains(msg, "5") {
		t.Errorf("expected message to name both counts, got %q", msg)
	}
}

func TestValidateKey_Match(t *testing.T) {
	if err := scoring.ValidateKey([]string{"A", "B"}, 2); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
