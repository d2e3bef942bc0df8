package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/response"
)

func requestIDFor(t *testing.T, inbound string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header().Get("X-Request-ID")
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	got := requestIDFor(t, "")
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("expected a generated UUID, got %q", got)
	}
}

func TestRequestID_HonorsWellFormedHeader(t *testing.T) {
	id := uuid.New().String()
	if got := requestIDFor(t, id); got != id {
		t.Errorf("expected inbound ID %q to be kept, got %q", id, got)
	}
}

func TestRequestID_ReplacesMalformedHeader(t *testing.T) {
	got := requestIDFor(t, "trace-me-123")
	if got == "trace-me-123" {
		t.Error("malformed inbound ID must not be echoed")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("expected a replacement UUID, got %q", got)
	}
}
