package scoring

import (
	"fmt"

	"github.com/testgenius/backend/internal/model"
)

// Item is one (userAnswer, correctAnswer) pair presented to the policy.
type Item struct {
	UserAnswer    *string
	CorrectAnswer string
}

// Result is the outcome of scoring a full item list.
type Result struct {
	Total   float64
	PerItem []bool
}

// KeyLengthError reports an answer key whose length does not match the
// question count. Scoring is refused outright rather than partially applied.
type KeyLengthError struct {
	KeyLen       int
	QuestionsLen int
}

func (e *KeyLengthError) Error() string {
	return fmt.Sprintf("answer key has %d answers, but the test has %d questions", e.KeyLen, e.QuestionsLen)
}

// Policy computes a test score from scored items under a TestConfiguration.
type Policy struct {
	norm Normalizer
}

// NewPolicy creates a Policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Score computes the total and per-item correctness:
//   - a correct answer contributes +1
//   - an attempted wrong answer contributes -NegativeMarkPerWrong when
//     negative marking is enabled
//   - an unattempted question contributes 0 regardless of marking settings
//
// The total is clamped at zero. The input is not mutated.
func (p *Policy) Score(items []Item, cfg model.TestConfiguration) Result {
	perItem := make([]bool, len(items))
	var total float64

	for i, it := range items {
		correct := p.norm.Equals(it.UserAnswer, it.CorrectAnswer)
		perItem[i] = correct

		switch {
		case correct:
			total += 1
		case cfg.NegativeMarkingEnabled && it.UserAnswer != nil:
			total -= cfg.NegativeMarkPerWrong
		}
	}

	if total < 0 {
		total = 0
	}

	return Result{Total: total, PerItem: perItem}
}

// ValidateKey refuses a key whose length does not match the question count.
func ValidateKey(key []string, questionCount int) error {
	if len(key) != questionCount {
		return &KeyLengthError{KeyLen: len(key), QuestionsLen: questionCount}
	}
	return nil
}
