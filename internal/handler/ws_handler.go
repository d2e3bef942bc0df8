package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/testgenius/backend/internal/middleware"
	"github.com/testgenius/backend/internal/service"
	"github.com/testgenius/backend/internal/session"
	ws "github.com/testgenius/backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the test countdown over WebSocket.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream
// Pushes one tick per second while the test runs. When the session leaves
// taking_test (manual submit or timer expiry), a submitted event is sent and
// the stream closes.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID := c.Param("id")
	if _, err := uuid.Parse(sessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("client_id", claims.ClientID.String()).
		Str("session_id", sessionID).
		Logger()

	sess, err := h.sessionService.Get(c.Request.Context(), claims.ClientID, sessionID)
	if err != nil {
		ws.WriteError(conn, "session not found")
		return
	}
	if sess.Step != session.StepTakingTest {
		ws.WriteError(conn, "test is not running")
		return
	}

	wsLog.Info().Msg("Client connected")

	// Read pump: detect the peer closing and forward pings to the write
	// loop. The connection allows one writer, so the pump never writes
	// itself; all frames go out from the select below.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Connection closed")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			sess, err := h.sessionService.Get(c.Request.Context(), claims.ClientID, sessionID)
			if err != nil {
				ws.WriteError(conn, "session not found")
				return
			}

			// The expiry worker owns auto-submission; the stream only
			// observes the step change.
			if sess.Step != session.StepTakingTest {
				ws.WriteTyped(conn, ws.SubmittedResponse{
					Event:         ws.EventSubmitted,
					AutoSubmitted: sess.AutoSubmitted,
					Step:          string(sess.Step),
				})
				wsLog.Info().Bool("auto_submitted", sess.AutoSubmitted).Msg("Test finished, closing stream")
				return
			}

			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:            ws.EventTick,
				RemainingSeconds: sess.RemainingSeconds(time.Now()),
			}); err != nil {
				return
			}
		}
	}
}
