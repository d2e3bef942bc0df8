package model

import (
	"github.com/google/uuid"
)

// ResultItem is the per-question outcome in a score summary. Results are
// attributed by the stable question ID, never by question text, so duplicate
// question texts cannot be misattributed.
type ResultItem struct {
	QuestionID          uuid.UUID `json:"question_id"`
	QuestionText        string    `json:"question_text"`
	UserSelectedAnswer  *string   `json:"user_selected_answer"`
	ActualCorrectAnswer string    `json:"actual_correct_answer"`
	IsCorrect           bool      `json:"is_correct"`
	Options             []string  `json:"options"`
}

// ScoreSummary is created exactly once at submission time and read-only
// afterwards. Score may be fractional under negative marking and is always
// clamped at zero. len(Results) == TotalQuestions, in original question order.
type ScoreSummary struct {
	Score          float64      `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Results        []ResultItem `json:"results"`
}
