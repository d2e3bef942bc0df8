// Package session holds the test-taking wizard state machine. A Session is a
// pure in-memory value: every transition is a guarded method that either
// mutates the session or returns a typed error, with no I/O. The service
// layer persists the whole document after each successful transition, so
// storage never observes a half-applied step.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/model"
)

// Step enumerates the wizard steps.
type Step string

const (
	StepMethodSelection Step = "method_selection"
	StepDocumentUpload  Step = "document_upload"
	StepSyllabusUpload  Step = "syllabus_upload"
	StepSyllabusOptions Step = "syllabus_options"
	StepTopicInput      Step = "topic_input"
	StepTopicOptions    Step = "topic_options"
	StepLanguageChoice  Step = "language_choice"
	StepConfiguration   Step = "configuration"
	StepPreview         Step = "preview"
	StepTakingTest      Step = "taking_test"
	StepScoringChoice   Step = "scoring_choice"
	StepResults         Step = "results"
)

// GenerationMode enumerates the three question-acquisition modes.
type GenerationMode string

const (
	ModeDocument GenerationMode = "extract_from_document"
	ModeSyllabus GenerationMode = "generate_from_syllabus"
	ModeTopic    GenerationMode = "generate_from_topic"
)

// QuestionStatus is the per-question progress marker used by the navigation
// indicator. It never affects scoring.
type QuestionStatus string

const (
	StatusUnviewed QuestionStatus = "unviewed"
	StatusViewed   QuestionStatus = "viewed"
	StatusAnswered QuestionStatus = "answered"
)

// Transition errors.
var (
	ErrNoQuestions        = fmt.Errorf("session has no questions")
	ErrAlreadySubmitted   = fmt.Errorf("test already submitted")
	ErrNotConfigured      = fmt.Errorf("test configuration is missing")
	ErrUnknownQuestion    = fmt.Errorf("question does not belong to this session")
	ErrLanguageNotPending = fmt.Errorf("no language choice is pending")
)

// InvalidTransitionError reports an action attempted at the wrong step.
type InvalidTransitionError struct {
	From   Step
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s at step %s", e.Action, e.From)
}

func invalid(from Step, action string) error {
	return &InvalidTransitionError{From: from, Action: action}
}

// Session is one client's trip through the wizard. It exclusively owns its
// question list, answers and configuration until the score summary is copied
// out into history.
type Session struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`
	Step     Step      `json:"step"`

	Mode             GenerationMode `json:"mode,omitempty"`
	SourceText       string         `json:"source_text,omitempty"`
	SourceIdentifier string         `json:"source_identifier,omitempty"`

	NumQuestions      int    `json:"num_questions,omitempty"`
	Difficulty        string `json:"difficulty,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	ResolvedLanguage  string `json:"resolved_language,omitempty"`

	// LanguageAsked guards the one-shot language round trip: the choice step
	// is entered at most once per generation attempt.
	LanguageAsked bool `json:"language_asked,omitempty"`

	Questions []model.Question  `json:"questions,omitempty"`
	Answers   map[string]string `json:"answers,omitempty"`
	Viewed    map[string]bool   `json:"viewed,omitempty"`

	Config *model.TestConfiguration `json:"config,omitempty"`

	StartedAt     *time.Time `json:"started_at,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Submitted     bool       `json:"submitted,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	AutoSubmitted bool       `json:"auto_submitted,omitempty"`

	Summary *model.ScoreSummary `json:"summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a session at the method-selection step.
func New(clientID uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		ClientID:  clientID,
		Step:      StepMethodSelection,
		Answers:   map[string]string{},
		Viewed:    map[string]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectMethod chooses the generation mode and moves to that mode's input step.
func (s *Session) SelectMethod(mode GenerationMode) error {
	if s.Step != StepMethodSelection {
		return invalid(s.Step, "select a generation method")
	}
	s.Mode = mode
	switch mode {
	case ModeDocument:
		s.Step = StepDocumentUpload
	case ModeSyllabus:
		s.Step = StepSyllabusUpload
	case ModeTopic:
		s.Step = StepTopicInput
	default:
		return fmt.Errorf("unknown generation mode %q", mode)
	}
	s.touch()
	return nil
}

// AttachDocument stores the extracted document text. The session stays at
// document_upload until the gateway call succeeds.
func (s *Session) AttachDocument(text, identifier string) error {
	if s.Step != StepDocumentUpload {
		return invalid(s.Step, "upload a document")
	}
	s.SourceText = text
	s.SourceIdentifier = identifier
	s.touch()
	return nil
}

// AttachSyllabus stores the syllabus text and advances to the options step.
func (s *Session) AttachSyllabus(text, identifier string) error {
	if s.Step != StepSyllabusUpload {
		return invalid(s.Step, "upload a syllabus")
	}
	s.SourceText = text
	s.SourceIdentifier = identifier
	s.Step = StepSyllabusOptions
	s.touch()
	return nil
}

// SetTopic stores the topic and advances to the options step.
func (s *Session) SetTopic(topic string) error {
	if s.Step != StepTopicInput {
		return invalid(s.Step, "enter a topic")
	}
	s.SourceText = topic
	s.SourceIdentifier = topic
	s.Step = StepTopicOptions
	s.touch()
	return nil
}

// SetGenerationOptions records count/difficulty/language for generation modes.
// The session stays on the options step until the gateway call succeeds.
func (s *Session) SetGenerationOptions(numQuestions int, difficulty, preferredLanguage string) error {
	if s.Step != StepSyllabusOptions && s.Step != StepTopicOptions {
		return invalid(s.Step, "set generation options")
	}
	s.NumQuestions = numQuestions
	s.Difficulty = difficulty
	s.PreferredLanguage = preferredLanguage
	s.touch()
	return nil
}

// ApplyGenerationResult consumes a successful gateway result. Three outcomes:
//   - the gateway wants a language choice and none was asked yet: detour to
//     language_choice (at most once per attempt)
//   - zero questions: soft empty state at preview, never an error
//   - otherwise: questions installed, on to configuration
func (s *Session) ApplyGenerationResult(questions []model.Question, requiresLanguageChoice bool, resolvedLanguage string) error {
	switch s.Step {
	case StepDocumentUpload, StepSyllabusOptions, StepTopicOptions, StepLanguageChoice:
	default:
		return invalid(s.Step, "apply a generation result")
	}

	if requiresLanguageChoice && !s.LanguageAsked && s.PreferredLanguage == "" {
		s.LanguageAsked = true
		s.Step = StepLanguageChoice
		s.touch()
		return nil
	}

	s.Questions = questions
	s.ResolvedLanguage = resolvedLanguage
	s.Answers = map[string]string{}
	s.Viewed = map[string]bool{}

	if len(questions) == 0 {
		s.Step = StepPreview
	} else {
		s.Step = StepConfiguration
	}
	s.touch()
	return nil
}

// ChooseLanguage resolves the pending language round trip. The caller then
// re-invokes the gateway with the preference set; the next
// ApplyGenerationResult can never bounce back here.
func (s *Session) ChooseLanguage(language string) error {
	if s.Step != StepLanguageChoice {
		return ErrLanguageNotPending
	}
	s.PreferredLanguage = language
	s.touch()
	return nil
}

// BackToInput returns from an empty preview or the configuration step to the
// mode's input step so the user can change their inputs.
func (s *Session) BackToInput() error {
	if s.Step != StepPreview && s.Step != StepConfiguration {
		return invalid(s.Step, "go back to input")
	}
	s.Questions = nil
	s.Answers = map[string]string{}
	s.Viewed = map[string]bool{}
	s.LanguageAsked = false
	s.PreferredLanguage = ""
	switch s.Mode {
	case ModeDocument:
		s.Step = StepDocumentUpload
	case ModeSyllabus:
		s.Step = StepSyllabusOptions
	case ModeTopic:
		s.Step = StepTopicOptions
	default:
		s.Step = StepMethodSelection
	}
	s.touch()
	return nil
}

// Configure installs the test configuration and advances to preview.
func (s *Session) Configure(cfg model.TestConfiguration) error {
	if s.Step != StepConfiguration {
		return invalid(s.Step, "configure the test")
	}
	s.Config = &cfg
	s.Step = StepPreview
	s.touch()
	return nil
}

// Start begins test-taking. Requires a non-empty question list and a
// configuration; timed tests get an absolute deadline.
func (s *Session) Start(now time.Time) error {
	if s.Step != StepPreview {
		return invalid(s.Step, "start the test")
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	if s.Config == nil {
		return ErrNotConfigured
	}

	s.Step = StepTakingTest
	t := now.UTC()
	s.StartedAt = &t
	if s.Config.IsTimedTest && s.Config.DurationSeconds > 0 {
		d := t.Add(time.Duration(s.Config.DurationSeconds) * time.Second)
		s.Deadline = &d
	}
	s.touch()
	return nil
}

// MarkViewed records that a question was shown. Progress bookkeeping only.
func (s *Session) MarkViewed(questionID uuid.UUID) error {
	if s.Step != StepTakingTest {
		return invalid(s.Step, "view a question")
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	s.Viewed[questionID.String()] = true
	s.touch()
	return nil
}

// SelectAnswer records the user's choice for one question. Selecting again
// overwrites; answers are final only at submission.
func (s *Session) SelectAnswer(questionID uuid.UUID, answer string) error {
	if s.Step != StepTakingTest {
		return invalid(s.Step, "answer a question")
	}
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	s.Answers[questionID.String()] = answer
	s.Viewed[questionID.String()] = true
	s.touch()
	return nil
}

// Submit finalizes the answer set. Manual submission and timer expiry both
// come through here; this flag rejects repeat calls on a loaded copy, while
// racing callers holding separate copies are decided by the store's
// submission claim. The session lands on scoring_choice; for syllabus/topic
// modes the service scores immediately and the choice step is never shown.
func (s *Session) Submit(now time.Time, auto bool) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if s.Step != StepTakingTest {
		return invalid(s.Step, "submit the test")
	}

	s.Submitted = true
	s.AutoSubmitted = auto
	t := now.UTC()
	s.SubmittedAt = &t
	s.Step = StepScoringChoice
	s.touch()
	return nil
}

// Expired reports whether a timed, unsubmitted test has passed its deadline.
func (s *Session) Expired(now time.Time) bool {
	return s.Step == StepTakingTest &&
		!s.Submitted &&
		s.Deadline != nil &&
		!now.Before(*s.Deadline)
}

// RemainingSeconds returns the countdown value, or -1 for untimed tests.
func (s *Session) RemainingSeconds(now time.Time) int {
	if s.Deadline == nil {
		return -1
	}
	remaining := int(s.Deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompleteScoring installs the score summary, annotates the questions by
// stable ID, and moves to results. A scoring failure leaves the session at
// scoring_choice so the user can retry.
func (s *Session) CompleteScoring(summary model.ScoreSummary) error {
	if s.Step != StepScoringChoice || !s.Submitted {
		return invalid(s.Step, "complete scoring")
	}

	byID := make(map[string]model.ResultItem, len(summary.Results))
	for _, r := range summary.Results {
		byID[r.QuestionID.String()] = r
	}
	for i := range s.Questions {
		r, ok := byID[s.Questions[i].ID.String()]
		if !ok {
			continue
		}
		correct := r.ActualCorrectAnswer
		isCorrect := r.IsCorrect
		s.Questions[i].UserSelectedAnswer = r.UserSelectedAnswer
		s.Questions[i].ActualCorrectAnswer = &correct
		s.Questions[i].IsCorrect = &isCorrect
	}

	s.Summary = &summary
	s.Step = StepResults
	s.touch()
	return nil
}

// Retake keeps the same questions and returns to configuration with a clean
// slate, as if the test had never been taken.
func (s *Session) Retake() error {
	if s.Step != StepResults {
		return invalid(s.Step, "retake the test")
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}

	for i := range s.Questions {
		s.Questions[i].UserSelectedAnswer = nil
		s.Questions[i].ActualCorrectAnswer = nil
		s.Questions[i].IsCorrect = nil
	}
	s.Answers = map[string]string{}
	s.Viewed = map[string]bool{}
	s.Config = nil
	s.StartedAt = nil
	s.Deadline = nil
	s.Submitted = false
	s.SubmittedAt = nil
	s.AutoSubmitted = false
	s.Summary = nil
	s.Step = StepConfiguration
	s.touch()
	return nil
}

// AnswerFor returns the recorded answer for a question, nil if unattempted.
func (s *Session) AnswerFor(questionID uuid.UUID) *string {
	if a, ok := s.Answers[questionID.String()]; ok {
		return &a
	}
	return nil
}

// QuestionState is one entry of the navigation progress indicator.
type QuestionState struct {
	QuestionID uuid.UUID      `json:"question_id"`
	Status     QuestionStatus `json:"status"`
}

// QuestionStates returns per-question progress in question order.
func (s *Session) QuestionStates() []QuestionState {
	states := make([]QuestionState, len(s.Questions))
	for i, q := range s.Questions {
		status := StatusUnviewed
		key := q.ID.String()
		if _, answered := s.Answers[key]; answered {
			status = StatusAnswered
		} else if s.Viewed[key] {
			status = StatusViewed
		}
		states[i] = QuestionState{QuestionID: q.ID, Status: status}
	}
	return states
}

func (s *Session) hasQuestion(questionID uuid.UUID) bool {
	for _, q := range s.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
