package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/config"
	"github.com/testgenius/backend/internal/ingest"
	"github.com/testgenius/backend/internal/middleware"
	"github.com/testgenius/backend/internal/model"
	"github.com/testgenius/backend/internal/response"
	"github.com/testgenius/backend/internal/scoring"
	"github.com/testgenius/backend/internal/service"
	"github.com/testgenius/backend/internal/session"
	"github.com/testgenius/backend/internal/validator"
)

// SessionHandler handles the test wizard endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	cfg            *config.Config
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		cfg:            cfg,
	}
}

// CreateSession godoc
// POST /api/v1/sessions
// Starts a new wizard session at method selection.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sess, err := h.sessionService.Create(c.Request.Context(), claims.ClientID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sessionView(sess)})
}

// GetSession godoc
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.Get(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SelectMethod godoc
// POST /api/v1/sessions/:id/method
// Chooses how questions are produced: document, syllabus or topic.
func (h *SessionHandler) SelectMethod(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.SelectMethodRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.SelectMethod(c.Request.Context(), claims.ClientID, sessionID, session.GenerationMode(req.Mode))
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// UploadDocument godoc
// POST /api/v1/sessions/:id/document
// Ingests a PDF or text file and extracts existing questions from it.
func (h *SessionHandler) UploadDocument(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	text, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.AttachDocument(c.Request.Context(), claims.ClientID, sessionID, text, filename)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// UploadSyllabus godoc
// POST /api/v1/sessions/:id/syllabus
// Ingests a syllabus file; generation runs once options are set.
func (h *SessionHandler) UploadSyllabus(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	text, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.AttachSyllabus(c.Request.Context(), claims.ClientID, sessionID, text, filename)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SetTopic godoc
// POST /api/v1/sessions/:id/topic
func (h *SessionHandler) SetTopic(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.TopicRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.SetTopic(c.Request.Context(), claims.ClientID, sessionID, req.Topic)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SetOptions godoc
// POST /api/v1/sessions/:id/options
// Records count, difficulty and language preference, then generates.
func (h *SessionHandler) SetOptions(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.GenerationOptionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.SetOptions(c.Request.Context(), claims.ClientID, sessionID, req.NumQuestions, req.Difficulty, req.PreferredLanguage)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// ChooseLanguage godoc
// POST /api/v1/sessions/:id/language
// Resolves the language round trip and re-runs generation.
func (h *SessionHandler) ChooseLanguage(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.LanguageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.ChooseLanguage(c.Request.Context(), claims.ClientID, sessionID, req.Language)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// BackToInput godoc
// POST /api/v1/sessions/:id/back
// Returns from an empty preview or the configuration step to the input step.
func (h *SessionHandler) BackToInput(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.BackToInput(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// Configure godoc
// POST /api/v1/sessions/:id/configuration
// Sets timing and negative-marking options for the upcoming attempt.
func (h *SessionHandler) Configure(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.ConfigureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if req.IsTimedTest && req.DurationSeconds == 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"duration_seconds": "duration_seconds is required for a timed test"})
		return
	}

	cfg := model.TestConfiguration{
		IsTimedTest:            req.IsTimedTest,
		DurationSeconds:        req.DurationSeconds,
		NegativeMarkingEnabled: req.NegativeMarkingEnabled,
	}
	if req.NegativeMarkingEnabled {
		cfg.NegativeMarkPerWrong = model.DefaultNegativeMark
		if req.NegativeMarkPerWrong != nil {
			cfg.NegativeMarkPerWrong = *req.NegativeMarkPerWrong
		}
	}

	sess, err := h.sessionService.Configure(c.Request.Context(), claims.ClientID, sessionID, cfg)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// StartTest godoc
// POST /api/v1/sessions/:id/start
func (h *SessionHandler) StartTest(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.Start(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SelectAnswer godoc
// PUT /api/v1/sessions/:id/answers
// Records one answer; selecting again overwrites until submission.
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.SelectAnswer(c.Request.Context(), claims.ClientID, sessionID, req.QuestionID, req.Answer)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// MarkViewed godoc
// POST /api/v1/sessions/:id/questions/:question_id/view
// Progress-indicator bookkeeping only; never affects scoring.
func (h *SessionHandler) MarkViewed(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sess, err := h.sessionService.MarkViewed(c.Request.Context(), claims.ClientID, sessionID, questionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SubmitTest godoc
// POST /api/v1/sessions/:id/submit
// Finalizes the answers. Syllabus and topic tests are scored immediately;
// document tests move to the AI-vs-key scoring choice.
func (h *SessionHandler) SubmitTest(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	outcome, err := h.sessionService.Submit(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcomeView(outcome))
}

// ScoreWithAI godoc
// POST /api/v1/sessions/:id/score/ai
// Asks the AI to adjudicate correct answers, then scores.
func (h *SessionHandler) ScoreWithAI(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	outcome, err := h.sessionService.ScoreWithAI(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcomeView(outcome))
}

// ScoreWithKey godoc
// POST /api/v1/sessions/:id/score/key
// Scores against an uploaded answer key. The key length must match the
// question count exactly or scoring is refused.
func (h *SessionHandler) ScoreWithKey(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileUnreadable)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, scoring.MaxKeyFileBytes+1))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileUnreadable)
		return
	}

	key, err := scoring.ParseKeyFile(data)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrKeyFileTooBig):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerKeyInvalid)
		}
		return
	}

	outcome, err := h.sessionService.ScoreWithKey(c.Request.Context(), claims.ClientID, sessionID, key)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcomeView(outcome))
}

// RetakeTest godoc
// POST /api/v1/sessions/:id/retake
// Restarts the same questions from the configuration step.
func (h *SessionHandler) RetakeTest(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.Retake(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sessionView(sess)})
}

// outcomeView renders a submit or scoring outcome.
func outcomeView(outcome *service.SubmitOutcome) gin.H {
	view := gin.H{"session": sessionView(outcome.Session)}
	if outcome.Summary != nil {
		view["summary"] = outcome.Summary
		view["history_saved"] = outcome.HistorySaved
	}
	return view
}

// sessionParams extracts the claims and validates the session ID param.
func (h *SessionHandler) sessionParams(c *gin.Context) (*service.Claims, string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, "", false
	}

	sessionID := c.Param("id")
	if _, err := uuid.Parse(sessionID); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, "", false
	}

	return claims, sessionID, true
}

// readUpload reads a multipart document upload and extracts its plain text.
func (h *SessionHandler) readUpload(c *gin.Context) (text, filename string, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return "", "", false
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileUnreadable)
		return "", "", false
	}
	defer f.Close()

	text, err = ingest.ExtractText(fileHeader.Filename, f, h.cfg.MaxUploadBytes)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrUnsupportedType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, ingest.ErrTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		case errors.Is(err, ingest.ErrEmptyDocument), errors.Is(err, ingest.ErrCorruptFile):
			response.Fail(c, http.StatusBadRequest, response.ErrFileUnreadable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return "", "", false
	}

	return text, fileHeader.Filename, true
}
