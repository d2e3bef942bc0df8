package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/genai"
	"github.com/testgenius/backend/internal/repository"
	"github.com/testgenius/backend/internal/response"
	"github.com/testgenius/backend/internal/scoring"
	"github.com/testgenius/backend/internal/session"
)

// questionView is the question shape served while the test is in progress.
// Intended answers never leave the server before the results step.
type questionView struct {
	ID             uuid.UUID `json:"id"`
	QuestionText   string    `json:"question_text"`
	Options        []string  `json:"options"`
	SelectedAnswer *string   `json:"selected_answer,omitempty"`
}

// sessionView renders a session for the client. Before results the questions
// are stripped of every answer field; at results the fully annotated
// questions and the score summary are included.
func sessionView(sess *session.Session) gin.H {
	view := gin.H{
		"id":              sess.ID,
		"step":            sess.Step,
		"mode":            sess.Mode,
		"question_states": sess.QuestionStates(),
	}

	if sess.Step == session.StepResults {
		view["questions"] = sess.Questions
		view["summary"] = sess.Summary
	} else {
		questions := make([]questionView, len(sess.Questions))
		for i, q := range sess.Questions {
			questions[i] = questionView{
				ID:             q.ID,
				QuestionText:   q.QuestionText,
				Options:        q.Options,
				SelectedAnswer: sess.AnswerFor(q.ID),
			}
		}
		view["questions"] = questions
	}

	if sess.Config != nil {
		view["configuration"] = sess.Config
	}
	if sess.ResolvedLanguage != "" {
		view["resolved_language"] = sess.ResolvedLanguage
	}
	if sess.Step == session.StepLanguageChoice {
		view["language_options"] = []string{string(genai.LanguageEnglish), string(genai.LanguageHindi)}
	}
	if sess.Step == session.StepTakingTest && sess.Deadline != nil {
		view["remaining_seconds"] = sess.RemainingSeconds(time.Now())
	}
	if sess.Submitted {
		view["submitted"] = true
		view["auto_submitted"] = sess.AutoSubmitted
	}
	// An empty preview means generation produced nothing usable; the client
	// shows the guidance message and offers the way back to the input step.
	if sess.Step == session.StepPreview && len(sess.Questions) == 0 {
		view["message"] = response.GetMessage(response.ErrNoQuestions)
	}

	return view
}

// failSession maps service and domain errors to API error responses.
func failSession(c *gin.Context, err error) {
	var transition *session.InvalidTransitionError
	var keyLength *scoring.KeyLengthError
	var gateway *genai.GatewayError

	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, session.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, session.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, session.ErrNotConfigured):
		response.Fail(c, http.StatusConflict, response.ErrStepInvalid)
	case errors.Is(err, session.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, session.ErrLanguageNotPending):
		response.Fail(c, http.StatusConflict, response.ErrLanguageNotNeeded)
	case errors.As(err, &transition):
		response.Fail(c, http.StatusConflict, response.ErrStepInvalid)
	case errors.As(err, &keyLength):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrAnswerKeyMismatch, keyLength.Error())
	case errors.As(err, &gateway):
		response.Fail(c, http.StatusBadGateway, response.ErrGateway)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
