package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/middleware"
	"github.com/testgenius/backend/internal/repository"
	"github.com/testgenius/backend/internal/response"
	"github.com/testgenius/backend/internal/service"
)

// HistoryHandler serves the client's completed-test archive.
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ListHistory godoc
// GET /api/v1/history
// Returns the client's entries, most recent first.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	entries, err := h.historyService.List(c.Request.Context(), claims.ClientID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": entries})
}

// GetHistoryEntry godoc
// GET /api/v1/history/:id
func (h *HistoryHandler) GetHistoryEntry(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	entry, err := h.historyService.Get(c.Request.Context(), claims.ClientID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrHistoryNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entry": entry})
}
