package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/genai"
	"github.com/testgenius/backend/internal/model"
	"github.com/testgenius/backend/internal/session"
)

// GenerationService runs the gateway operations for a session and normalizes
// their raw output into the canonical Question type.
type GenerationService struct {
	gateway genai.Gateway
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(gateway genai.Gateway) *GenerationService {
	return &GenerationService{gateway: gateway}
}

// Acquire invokes the gateway operation matching the session's mode, using
// whatever source text, options and language preference the session has
// collected so far. Gateway failures are returned as-is; the session is not
// advanced on failure.
func (g *GenerationService) Acquire(ctx context.Context, sess *session.Session) (*genai.GenerationResult, error) {
	lang := genai.Language(sess.PreferredLanguage)

	switch sess.Mode {
	case session.ModeDocument:
		return g.gateway.ExtractQuestions(ctx, genai.ExtractInput{
			Text:              sess.SourceText,
			PreferredLanguage: lang,
		})
	case session.ModeSyllabus:
		return g.gateway.GenerateFromSyllabus(ctx, genai.GenerateInput{
			SyllabusText:      sess.SourceText,
			NumQuestions:      sess.NumQuestions,
			Difficulty:        sess.Difficulty,
			PreferredLanguage: lang,
		})
	case session.ModeTopic:
		return g.gateway.GenerateFromTopic(ctx, genai.GenerateInput{
			Topic:             sess.SourceText,
			NumQuestions:      sess.NumQuestions,
			Difficulty:        sess.Difficulty,
			PreferredLanguage: lang,
		})
	default:
		return nil, fmt.Errorf("session has no generation mode")
	}
}

// Normalize turns gateway questions into canonical Questions with locally
// assigned IDs. For the generate modes the model is asked to always commit
// to an answer, so questions it still left answerless are dropped; extraction
// tolerates a missing answer through to scoring time.
func (g *GenerationService) Normalize(mode session.GenerationMode, raw []genai.RawQuestion) []model.Question {
	questions := make([]model.Question, 0, len(raw))
	for _, rq := range raw {
		if mode != session.ModeDocument && rq.Answer == nil {
			continue
		}
		q := model.Question{
			ID:           uuid.New(),
			QuestionText: rq.Question,
			Options:      rq.Options,
		}
		if rq.Answer != nil {
			a := *rq.Answer
			q.AIAssignedAnswer = &a
		}
		questions = append(questions, q)
	}
	return questions
}
