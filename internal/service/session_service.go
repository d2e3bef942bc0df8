package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/testgenius/backend/internal/config"
	"github.com/testgenius/backend/internal/genai"
	"github.com/testgenius/backend/internal/model"
	"github.com/testgenius/backend/internal/repository"
	"github.com/testgenius/backend/internal/scoring"
	"github.com/testgenius/backend/internal/session"
)

// SubmitOutcome reports what happened after a scoring attempt completed.
type SubmitOutcome struct {
	Session      *session.Session
	Summary      *model.ScoreSummary
	HistorySaved bool
}

// SessionService orchestrates the wizard: it loads the session, applies one
// guarded transition, and persists the whole document back. All gateway and
// storage failures surface as errors without advancing the session.
type SessionService struct {
	store   SessionStore
	history HistoryStore
	gen     *GenerationService
	gateway genai.Gateway
	policy  *scoring.Policy
	cfg     *config.Config
	log     zerolog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(
	store SessionStore,
	history HistoryStore,
	gen *GenerationService,
	gateway genai.Gateway,
	policy *scoring.Policy,
	cfg *config.Config,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		store:   store,
		history: history,
		gen:     gen,
		gateway: gateway,
		policy:  policy,
		cfg:     cfg,
		log:     log.With().Str("component", "session_service").Logger(),
	}
}

// Create starts a fresh session at method selection.
func (s *SessionService) Create(ctx context.Context, clientID uuid.UUID) (*session.Session, error) {
	sess := session.New(clientID)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session owned by the client. Sessions of other clients report
// as not found rather than forbidden.
func (s *SessionService) Get(ctx context.Context, clientID uuid.UUID, sessionID string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.ClientID != clientID {
		return nil, repository.ErrSessionNotFound
	}
	return sess, nil
}

// SelectMethod picks the generation mode.
func (s *SessionService) SelectMethod(ctx context.Context, clientID uuid.UUID, sessionID string, mode session.GenerationMode) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.SelectMethod(mode)
	})
}

// AttachDocument stores extracted document text and runs the extraction
// gateway call. A gateway failure leaves the session at document_upload.
func (s *SessionService) AttachDocument(ctx context.Context, clientID uuid.UUID, sessionID, text, identifier string) (*session.Session, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.AttachDocument(text, identifier); err != nil {
		return nil, err
	}
	// Persist the source before the gateway call so a retry after failure
	// does not need the file again.
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.acquire(ctx, sess)
}

// AttachSyllabus stores syllabus text; generation runs at the options step.
func (s *SessionService) AttachSyllabus(ctx context.Context, clientID uuid.UUID, sessionID, text, identifier string) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.AttachSyllabus(text, identifier)
	})
}

// SetTopic stores the topic; generation runs at the options step.
func (s *SessionService) SetTopic(ctx context.Context, clientID uuid.UUID, sessionID, topic string) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.SetTopic(topic)
	})
}

// SetOptions records generation options and runs the generation gateway call.
func (s *SessionService) SetOptions(ctx context.Context, clientID uuid.UUID, sessionID string, numQuestions int, difficulty, preferredLanguage string) (*session.Session, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetGenerationOptions(numQuestions, difficulty, preferredLanguage); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.acquire(ctx, sess)
}

// ChooseLanguage resolves the pending language round trip and re-invokes the
// same gateway operation with the preference set. The gateway contract
// guarantees the second call cannot ask again.
func (s *SessionService) ChooseLanguage(ctx context.Context, clientID uuid.UUID, sessionID, language string) (*session.Session, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.ChooseLanguage(language); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.acquire(ctx, sess)
}

// acquire runs the mode's gateway operation and applies the result.
func (s *SessionService) acquire(ctx context.Context, sess *session.Session) (*session.Session, error) {
	result, err := s.gen.Acquire(ctx, sess)
	if err != nil {
		return nil, err
	}

	questions := s.gen.Normalize(sess.Mode, result.Questions)
	if err := sess.ApplyGenerationResult(questions, result.RequiresLanguageChoice, string(result.ResolvedLanguage)); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// BackToInput returns an empty preview or unconfigured session to its input
// step.
func (s *SessionService) BackToInput(ctx context.Context, clientID uuid.UUID, sessionID string) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.BackToInput()
	})
}

// Configure installs the test configuration.
func (s *SessionService) Configure(ctx context.Context, clientID uuid.UUID, sessionID string, cfg model.TestConfiguration) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.Configure(cfg)
	})
}

// Start begins test-taking.
func (s *SessionService) Start(ctx context.Context, clientID uuid.UUID, sessionID string) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.Start(time.Now())
	})
}

// MarkViewed records a question view for the progress indicator.
func (s *SessionService) MarkViewed(ctx context.Context, clientID uuid.UUID, sessionID string, questionID uuid.UUID) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.MarkViewed(questionID)
	})
}

// SelectAnswer records the user's answer for a question.
func (s *SessionService) SelectAnswer(ctx context.Context, clientID uuid.UUID, sessionID string, questionID uuid.UUID, answer string) (*session.Session, error) {
	return s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.SelectAnswer(questionID, answer)
	})
}

// Submit finalizes the answers on the user's request. For syllabus and topic
// modes the session is scored immediately; document mode moves to the
// scoring choice.
func (s *SessionService) Submit(ctx context.Context, clientID uuid.UUID, sessionID string) (*SubmitOutcome, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, sess, false)
}

// SubmitExpired force-submits a timed session whose deadline passed. Called
// by the expiry worker; it shares the submit path (and its at-most-once
// guard) with the manual route.
func (s *SessionService) SubmitExpired(ctx context.Context, sessionID string) (*SubmitOutcome, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Expired(time.Now()) {
		// Tick raced a manual submit, nothing to do.
		return &SubmitOutcome{Session: sess}, nil
	}
	out, err := s.submit(ctx, sess, true)
	if errors.Is(err, session.ErrAlreadySubmitted) {
		// A manual submit won the claim after this worker pass loaded the
		// session; its save already dropped the deadline index entry.
		return &SubmitOutcome{Session: sess}, nil
	}
	return out, err
}

func (s *SessionService) submit(ctx context.Context, sess *session.Session, auto bool) (*SubmitOutcome, error) {
	if err := sess.Submit(time.Now(), auto); err != nil {
		return nil, err
	}
	// The in-memory flag was read from a possibly stale document; the store
	// claim is what makes submission at-most-once across racing callers.
	if err := s.store.ClaimSubmission(ctx, sess.ID.String()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	// Generation modes already know the intended answers; score without a
	// choice step. Document mode waits for AI-vs-key selection.
	if sess.Mode == session.ModeDocument {
		return &SubmitOutcome{Session: sess}, nil
	}

	correct := make([]string, len(sess.Questions))
	for i, q := range sess.Questions {
		if q.AIAssignedAnswer != nil {
			correct[i] = *q.AIAssignedAnswer
		}
	}
	return s.finalize(ctx, sess, correct)
}

// ScoreWithAI adjudicates correct answers through the gateway and scores the
// test. Only reachable from the scoring choice (document mode). A gateway
// failure leaves the session at scoring_choice for retry.
func (s *SessionService) ScoreWithAI(ctx context.Context, clientID uuid.UUID, sessionID string) (*SubmitOutcome, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != session.StepScoringChoice {
		return nil, &session.InvalidTransitionError{From: sess.Step, Action: "score the test"}
	}

	items := make([]genai.ScoreItem, len(sess.Questions))
	for i, q := range sess.Questions {
		items[i] = genai.ScoreItem{
			Question:     q.QuestionText,
			Options:      q.Options,
			StoredAnswer: q.AIAssignedAnswer,
			UserAnswer:   sess.AnswerFor(q.ID),
		}
	}

	verdicts, err := s.gateway.ScoreTest(ctx, items)
	if err != nil {
		return nil, err
	}

	correct := make([]string, len(verdicts))
	for i, v := range verdicts {
		correct[i] = v.CorrectAnswer
	}
	return s.finalize(ctx, sess, correct)
}

// ScoreWithKey scores the test against an uploaded answer key. The key must
// exactly match the question count or scoring is refused without any state
// change.
func (s *SessionService) ScoreWithKey(ctx context.Context, clientID uuid.UUID, sessionID string, key []string) (*SubmitOutcome, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != session.StepScoringChoice {
		return nil, &session.InvalidTransitionError{From: sess.Step, Action: "score the test"}
	}
	if err := scoring.ValidateKey(key, len(sess.Questions)); err != nil {
		return nil, err
	}
	return s.finalize(ctx, sess, key)
}

// Retake keeps the questions and restarts at configuration. The submission
// claim is released so the retaken test can be submitted once more.
func (s *SessionService) Retake(ctx context.Context, clientID uuid.UUID, sessionID string) (*session.Session, error) {
	sess, err := s.transition(ctx, clientID, sessionID, func(sess *session.Session) error {
		return sess.Retake()
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.ReleaseSubmission(ctx, sessionID); err != nil {
		return nil, err
	}
	return sess, nil
}

// DueSessions exposes the deadline index to the expiry worker.
func (s *SessionService) DueSessions(ctx context.Context, now time.Time) ([]string, error) {
	return s.store.DueSessions(ctx, now)
}

// ClearDeadline drops an orphaned deadline index entry.
func (s *SessionService) ClearDeadline(ctx context.Context, sessionID string) error {
	return s.store.ClearDeadline(ctx, sessionID)
}

// finalize computes the score summary from order-aligned correct answers,
// installs it, and persists the history entry. A history write failure is
// reported but never blocks the results.
func (s *SessionService) finalize(ctx context.Context, sess *session.Session, correct []string) (*SubmitOutcome, error) {
	if len(correct) != len(sess.Questions) {
		return nil, fmt.Errorf("internal: %d correct answers for %d questions", len(correct), len(sess.Questions))
	}

	items := make([]scoring.Item, len(sess.Questions))
	for i, q := range sess.Questions {
		items[i] = scoring.Item{
			UserAnswer:    sess.AnswerFor(q.ID),
			CorrectAnswer: correct[i],
		}
	}
	scored := s.policy.Score(items, *sess.Config)

	results := make([]model.ResultItem, len(sess.Questions))
	for i, q := range sess.Questions {
		results[i] = model.ResultItem{
			QuestionID:          q.ID,
			QuestionText:        q.QuestionText,
			UserSelectedAnswer:  sess.AnswerFor(q.ID),
			ActualCorrectAnswer: correct[i],
			IsCorrect:           scored.PerItem[i],
			Options:             q.Options,
		}
	}
	summary := model.ScoreSummary{
		Score:          scored.Total,
		TotalQuestions: len(sess.Questions),
		Results:        results,
	}

	// Snapshot questions before annotation for the history record.
	snapshot := make([]model.Question, len(sess.Questions))
	for i, q := range sess.Questions {
		snapshot[i] = model.Question{
			ID:               q.ID,
			QuestionText:     q.QuestionText,
			Options:          append([]string(nil), q.Options...),
			AIAssignedAnswer: q.AIAssignedAnswer,
		}
	}

	if err := sess.CompleteScoring(summary); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	entry := &model.HistoryEntry{
		ID:                uuid.New(),
		ClientID:          sess.ClientID,
		Timestamp:         time.Now().UTC(),
		GenerationMode:    string(sess.Mode),
		SourceIdentifier:  sess.SourceIdentifier,
		Questions:         snapshot,
		TestConfiguration: *sess.Config,
		ScoreSummary:      summary,
	}

	historySaved := true
	if err := s.history.Append(ctx, entry, s.cfg.HistoryCapacity); err != nil {
		historySaved = false
		s.log.Error().Err(err).
			Str("session_id", sess.ID.String()).
			Msg("History append failed, results still served")
	}

	return &SubmitOutcome{Session: sess, Summary: &summary, HistorySaved: historySaved}, nil
}

// transition loads, applies one guarded mutation, and saves.
func (s *SessionService) transition(ctx context.Context, clientID uuid.UUID, sessionID string, fn func(*session.Session) error) (*session.Session, error) {
	sess, err := s.Get(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
