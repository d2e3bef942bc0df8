package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testgenius/backend/internal/response"
	"github.com/testgenius/backend/internal/service"
)

// AuthHandler handles guest authentication.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GuestToken godoc
// POST /api/v1/auth/guest
// Mints an anonymous client token. There are no accounts: the browser keeps
// the token and all sessions and history are scoped to it.
func (h *AuthHandler) GuestToken(c *gin.Context) {
	token, clientID, err := h.authService.IssueGuestToken()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token":     token,
		"client_id": clientID,
	})
}
