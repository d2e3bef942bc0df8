package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/model"
	"github.com/testgenius/backend/internal/session"
)

func ptr(s string) *string { return &s }

func makeQuestions(n int) []model.Question {
	questions := make([]model.Question, n)
	for i := range questions {
		questions[i] = model.Question{
			ID:               uuid.New(),
			QuestionText:     "Question",
			Options:          []string{"A", "B", "C", "D"},
			AIAssignedAnswer: ptr("A"),
		}
	}
	return questions
}

// readySession builds a session at the preview step with questions installed.
func readySession(t *testing.T, cfg model.TestConfiguration) *session.Session {
	t.Helper()

	sess := session.New(uuid.New())
	if err := sess.SelectMethod(session.ModeTopic); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := sess.SetTopic("world capitals"); err != nil {
		t.Fatalf("SetTopic: %v", err)
	}
	if err := sess.SetGenerationOptions(5, "medium", ""); err != nil {
		t.Fatalf("SetGenerationOptions: %v", err)
	}
	if err := sess.ApplyGenerationResult(makeQuestions(5), false, "en"); err != nil {
		t.Fatalf("ApplyGenerationResult: %v", err)
	}
	if err := sess.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return sess
}

func TestNew_StartsAtMethodSelection(t *testing.T) {
	sess := session.New(uuid.New())
	if sess.Step != session.StepMethodSelection {
		t.Errorf("expected method_selection, got %s", sess.Step)
	}
}

func TestSelectMethod_RoutesToInputStep(t *testing.T) {
	cases := []struct {
		mode session.GenerationMode
		want session.Step
	}{
		{session.ModeDocument, session.StepDocumentUpload},
		{session.ModeSyllabus, session.StepSyllabusUpload},
		{session.ModeTopic, session.StepTopicInput},
	}

	for _, c := range cases {
		sess := session.New(uuid.New())
		if err := sess.SelectMethod(c.mode); err != nil {
			t.Fatalf("SelectMethod(%s): %v", c.mode, err)
		}
		if sess.Step != c.want {
			t.Errorf("mode %s: expected step %s, got %s", c.mode, c.want, sess.Step)
		}
	}
}

func TestSelectMethod_RejectedOutsideMethodSelection(t *testing.T) {
	sess := session.New(uuid.New())
	if err := sess.SelectMethod(session.ModeTopic); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}

	err := sess.SelectMethod(session.ModeDocument)
	var transition *session.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestApplyGenerationResult_LanguageDetourAtMostOnce(t *testing.T) {
	sess := session.New(uuid.New())
	sess.SelectMethod(session.ModeDocument)
	sess.AttachDocument("text", "paper.pdf")

	if err := sess.ApplyGenerationResult(nil, true, ""); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if sess.Step != session.StepLanguageChoice {
		t.Fatalf("expected language_choice, got %s", sess.Step)
	}

	if err := sess.ChooseLanguage("hi"); err != nil {
		t.Fatalf("ChooseLanguage: %v", err)
	}

	// Even a misbehaving gateway asking again cannot bounce the session back.
	if err := sess.ApplyGenerationResult(makeQuestions(5), true, "hi"); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if sess.Step != session.StepConfiguration {
		t.Errorf("expected configuration, got %s", sess.Step)
	}
}

func TestApplyGenerationResult_NoDetourWhenPreferenceSet(t *testing.T) {
	sess := session.New(uuid.New())
	sess.SelectMethod(session.ModeTopic)
	sess.SetTopic("history")
	sess.SetGenerationOptions(5, "easy", "en")

	if err := sess.ApplyGenerationResult(makeQuestions(5), true, "en"); err != nil {
		t.Fatalf("ApplyGenerationResult: %v", err)
	}
	if sess.Step != session.StepConfiguration {
		t.Errorf("expected configuration, got %s", sess.Step)
	}
}

func TestApplyGenerationResult_EmptyIsSoftPreviewState(t *testing.T) {
	sess := session.New(uuid.New())
	sess.SelectMethod(session.ModeDocument)
	sess.AttachDocument("text", "paper.pdf")

	if err := sess.ApplyGenerationResult(nil, false, "en"); err != nil {
		t.Fatalf("expected no error for empty result, got %v", err)
	}
	if sess.Step != session.StepPreview {
		t.Fatalf("expected preview, got %s", sess.Step)
	}

	// Starting an empty test is refused; going back to the input works.
	if err := sess.Start(time.Now()); !errors.Is(err, session.ErrNoQuestions) {
		t.Errorf("expected ErrNoQuestions, got %v", err)
	}
	if err := sess.BackToInput(); err != nil {
		t.Fatalf("BackToInput: %v", err)
	}
	if sess.Step != session.StepDocumentUpload {
		t.Errorf("expected document_upload, got %s", sess.Step)
	}
}

func TestChooseLanguage_RejectedWhenNotPending(t *testing.T) {
	sess := session.New(uuid.New())
	if err := sess.ChooseLanguage("en"); !errors.Is(err, session.ErrLanguageNotPending) {
		t.Errorf("expected ErrLanguageNotPending, got %v", err)
	}
}

func TestStart_RequiresConfiguration(t *testing.T) {
	sess := session.New(uuid.New())
	sess.SelectMethod(session.ModeTopic)
	sess.SetTopic("math")
	sess.SetGenerationOptions(5, "hard", "en")
	sess.ApplyGenerationResult(makeQuestions(5), false, "en")

	// Still at configuration; Start is a wrong-step action here.
	err := sess.Start(time.Now())
	var transition *session.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Errorf("expected InvalidTransitionError, got %v", err)
	}
}

func TestStart_TimedTestSetsDeadline(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{IsTimedTest: true, DurationSeconds: 600})

	now := time.Now()
	if err := sess.Start(now); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sess.Deadline == nil {
		t.Fatal("expected a deadline for a timed test")
	}
	remaining := sess.RemainingSeconds(now)
	if remaining != 600 {
		t.Errorf("expected 600 seconds remaining, got %d", remaining)
	}
}

func TestStart_UntimedTestHasNoDeadline(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	if err := sess.Start(time.Now()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sess.Deadline != nil {
		t.Error("expected no deadline for an untimed test")
	}
	if sess.RemainingSeconds(time.Now()) != -1 {
		t.Error("expected remaining seconds -1 for an untimed test")
	}
}

func TestSelectAnswer_OverwritesUntilSubmission(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	sess.Start(time.Now())
	qID := sess.Questions[0].ID

	if err := sess.SelectAnswer(qID, "A"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := sess.SelectAnswer(qID, "B"); err != nil {
		t.Fatalf("SelectAnswer overwrite: %v", err)
	}

	if got := sess.AnswerFor(qID); got == nil || *got != "B" {
		t.Errorf("expected answer B, got %v", got)
	}
}

func TestSelectAnswer_UnknownQuestion(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	sess.Start(time.Now())

	if err := sess.SelectAnswer(uuid.New(), "A"); !errors.Is(err, session.ErrUnknownQuestion) {
		t.Errorf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestQuestionStates_TracksProgress(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	sess.Start(time.Now())

	sess.MarkViewed(sess.Questions[0].ID)
	sess.SelectAnswer(sess.Questions[1].ID, "C")

	states := sess.QuestionStates()
	if states[0].Status != session.StatusViewed {
		t.Errorf("question 0: expected viewed, got %s", states[0].Status)
	}
	if states[1].Status != session.StatusAnswered {
		t.Errorf("question 1: expected answered, got %s", states[1].Status)
	}
	if states[2].Status != session.StatusUnviewed {
		t.Errorf("question 2: expected unviewed, got %s", states[2].Status)
	}
}

func TestSubmit_AtMostOnce(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	sess.Start(time.Now())

	if err := sess.Submit(time.Now(), false); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sess.Step != session.StepScoringChoice {
		t.Errorf("expected scoring_choice, got %s", sess.Step)
	}

	// Timer expiry racing the manual submit is a no-op.
	if err := sess.Submit(time.Now(), true); !errors.Is(err, session.ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted, got %v", err)
	}
	if sess.AutoSubmitted {
		t.Error("losing auto-submit must not overwrite the manual submission")
	}
}

func TestSubmit_AnswersFrozenAfterward(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	sess.Start(time.Now())
	qID := sess.Questions[0].ID
	sess.SelectAnswer(qID, "A")
	sess.Submit(time.Now(), false)

	if err := sess.SelectAnswer(qID, "B"); err == nil {
		t.Fatal("expected answering after submission to fail")
	}
	if got := sess.AnswerFor(qID); got == nil || *got != "A" {
		t.Errorf("expected answer unchanged, got %v", got)
	}
}

func TestExpired(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{IsTimedTest: true, DurationSeconds: 60})
	start := time.Now()
	sess.Start(start)

	if sess.Expired(start.Add(30 * time.Second)) {
		t.Error("test must not be expired before the deadline")
	}
	if !sess.Expired(start.Add(61 * time.Second)) {
		t.Error("test must be expired after the deadline")
	}

	sess.Submit(start.Add(40*time.Second), false)
	if sess.Expired(start.Add(2 * time.Hour)) {
		t.Error("a submitted test never expires")
	}
}

func TestCompleteScoring_AnnotatesByQuestionID(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{})
	sess.Start(time.Now())
	sess.SelectAnswer(sess.Questions[0].ID, "A")
	sess.Submit(time.Now(), false)

	results := make([]model.ResultItem, len(sess.Questions))
	for i, q := range sess.Questions {
		results[i] = model.ResultItem{
			QuestionID:          q.ID,
			QuestionText:        q.QuestionText,
			UserSelectedAnswer:  sess.AnswerFor(q.ID),
			ActualCorrectAnswer: "A",
			IsCorrect:           i == 0,
			Options:             q.Options,
		}
	}
	summary := model.ScoreSummary{Score: 1, TotalQuestions: len(results), Results: results}

	if err := sess.CompleteScoring(summary); err != nil {
		t.Fatalf("CompleteScoring: %v", err)
	}
	if sess.Step != session.StepResults {
		t.Fatalf("expected results, got %s", sess.Step)
	}

	q := sess.Questions[0]
	if q.IsCorrect == nil || !*q.IsCorrect {
		t.Error("expected first question annotated correct")
	}
	if q.ActualCorrectAnswer == nil || *q.ActualCorrectAnswer != "A" {
		t.Error("expected first question annotated with the correct answer")
	}
}

func TestRetake_ResetsToConfiguration(t *testing.T) {
	sess := readySession(t, model.TestConfiguration{IsTimedTest: true, DurationSeconds: 60})
	sess.Start(time.Now())
	sess.SelectAnswer(sess.Questions[0].ID, "A")
	sess.Submit(time.Now(), false)

	results := []model.ResultItem{}
	for _, q := range sess.Questions {
		results = append(results, model.ResultItem{
			QuestionID:          q.ID,
			ActualCorrectAnswer: "A",
		})
	}
	sess.CompleteScoring(model.ScoreSummary{TotalQuestions: len(results), Results: results})

	questionCount := len(sess.Questions)
	if err := sess.Retake(); err != nil {
		t.Fatalf("Retake: %v", err)
	}

	if sess.Step != session.StepConfiguration {
		t.Errorf("expected configuration, got %s", sess.Step)
	}
	if len(sess.Questions) != questionCount {
		t.Errorf("expected questions kept, got %d of %d", len(sess.Questions), questionCount)
	}
	if sess.Submitted || sess.Summary != nil || sess.Config != nil || sess.Deadline != nil {
		t.Error("expected attempt state cleared")
	}
	if got := sess.AnswerFor(sess.Questions[0].ID); got != nil {
		t.Errorf("expected answers cleared, got %v", got)
	}
	for _, q := range sess.Questions {
		if q.IsCorrect != nil || q.ActualCorrectAnswer != nil || q.UserSelectedAnswer != nil {
			t.Error("expected question annotations cleared")
			break
		}
	}
}
