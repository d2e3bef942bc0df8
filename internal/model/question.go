package model

import (
	"github.com/google/uuid"
)

// OptionCount is the fixed number of options per multiple-choice question.
const OptionCount = 4

// Question is a multiple-choice question as held by a test session. The ID is
// assigned locally when the gateway result is normalized and is never reused.
// The annotation fields stay nil until scoring completes.
type Question struct {
	ID               uuid.UUID `json:"id"`
	QuestionText     string    `json:"question_text"`
	Options          []string  `json:"options"`
	AIAssignedAnswer *string   `json:"ai_assigned_answer,omitempty"`

	// Set exactly once at scoring time.
	UserSelectedAnswer  *string `json:"user_selected_answer,omitempty"`
	ActualCorrectAnswer *string `json:"actual_correct_answer,omitempty"`
	IsCorrect           *bool   `json:"is_correct,omitempty"`
}

// Difficulty enumerates generation difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// GenerationOptionsRequest is the payload for syllabus/topic generation options.
type GenerationOptionsRequest struct {
	NumQuestions      int    `json:"num_questions" binding:"required,min=5,max=50"`
	Difficulty        string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	PreferredLanguage string `json:"preferred_language" binding:"omitempty,oneof=en hi"`
}

// TopicRequest is the payload for entering a topic.
type TopicRequest struct {
	Topic string `json:"topic" binding:"required,min=2,max=500"`
}

// SelectMethodRequest is the payload for choosing a generation mode.
type SelectMethodRequest struct {
	Mode string `json:"mode" binding:"required,oneof=extract_from_document generate_from_syllabus generate_from_topic"`
}

// LanguageRequest is the payload for resolving a language-choice round trip.
type LanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=en hi"`
}

// AnswerRequest is the payload for selecting an answer during the test.
type AnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required,max=2000"`
}
