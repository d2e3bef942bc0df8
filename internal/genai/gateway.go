// Package genai is the boundary to the external generative-AI service that
// extracts, generates and adjudicates multiple-choice questions. Nothing
// outside this package sees unvalidated AI output: every response is parsed
// against a strict shape and repaired or rejected before it is returned.
package genai

import (
	"context"
	"fmt"
)

// Language enumerates the languages the gateway can resolve content to.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageMixed   Language = "mixed"
	LanguageUnknown Language = "unknown"
)

// RawQuestion is the gateway's question shape before local normalization.
// Answer may legitimately be nil: the model declined to commit to one.
type RawQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   *string  `json:"answer"`
}

// GenerationResult is the common output of all three acquisition operations.
// A zero-length Questions slice is a valid, non-error outcome.
type GenerationResult struct {
	Questions              []RawQuestion `json:"questions"`
	RequiresLanguageChoice bool          `json:"requiresLanguageChoice"`
	ResolvedLanguage       Language      `json:"resolvedLanguage"`
}

// ExtractInput asks for questions to be lifted out of document text.
type ExtractInput struct {
	Text              string
	PreferredLanguage Language // empty means no preference
}

// GenerateInput asks for fresh questions from a syllabus or topic.
type GenerateInput struct {
	// Exactly one of SyllabusText / Topic is set, per operation.
	SyllabusText      string
	Topic             string
	NumQuestions      int
	Difficulty        string
	PreferredLanguage Language
}

// ScoreItem is one question presented for AI adjudication. StoredAnswer is
// the answer the model committed to at generation time, nil if it declined —
// in that case the scorer must decide the correct answer from scratch.
type ScoreItem struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	StoredAnswer *string  `json:"answer"`
	UserAnswer   *string  `json:"userAnswer"`
}

// ScoreVerdict is the adjudicated correct answer for one question, in the
// same order as the submitted items.
type ScoreVerdict struct {
	CorrectAnswer string `json:"correctAnswer"`
}

// Gateway abstracts the generative-AI service. Implementations must be safe
// for use from a single session at a time; the HTTP layer guarantees one
// in-flight request per session.
type Gateway interface {
	ExtractQuestions(ctx context.Context, in ExtractInput) (*GenerationResult, error)
	GenerateFromSyllabus(ctx context.Context, in GenerateInput) (*GenerationResult, error)
	GenerateFromTopic(ctx context.Context, in GenerateInput) (*GenerationResult, error)
	// ScoreTest returns one verdict per item, order-aligned.
	ScoreTest(ctx context.Context, items []ScoreItem) ([]ScoreVerdict, error)
}

// GatewayError wraps a service failure so callers can distinguish "the AI
// returned something unusable" from local errors. It always surfaces to the
// user with a retry path and is never silently retried by the core.
type GatewayError struct {
	Reason  string
	Wrapped error
}

func (e *GatewayError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("genai gateway: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("genai gateway: %s", e.Reason)
}

func (e *GatewayError) Unwrap() error {
	return e.Wrapped
}
