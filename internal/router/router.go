package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/testgenius/backend/internal/config"
	"github.com/testgenius/backend/internal/handler"
	"github.com/testgenius/backend/internal/middleware"
	"github.com/testgenius/backend/internal/response"
	"github.com/testgenius/backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Session *handler.SessionHandler
	History *handler.HistoryHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/guest", handlers.Auth.GuestToken)
	}

	// ─── 2. Client Group (Guest JWT) ───────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireClientJWT(authService))
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", handlers.Session.CreateSession)
			sessions.GET("/:id", handlers.Session.GetSession)
			sessions.POST("/:id/method", handlers.Session.SelectMethod)
			sessions.POST("/:id/document", handlers.Session.UploadDocument)
			sessions.POST("/:id/syllabus", handlers.Session.UploadSyllabus)
			sessions.POST("/:id/topic", handlers.Session.SetTopic)
			sessions.POST("/:id/options", handlers.Session.SetOptions)
			sessions.POST("/:id/language", handlers.Session.ChooseLanguage)
			sessions.POST("/:id/back", handlers.Session.BackToInput)
			sessions.POST("/:id/configuration", handlers.Session.Configure)
			sessions.POST("/:id/start", handlers.Session.StartTest)
			sessions.PUT("/:id/answers", handlers.Session.SelectAnswer)
			sessions.POST("/:id/questions/:question_id/view", handlers.Session.MarkViewed)
			sessions.POST("/:id/submit", handlers.Session.SubmitTest)
			sessions.POST("/:id/score/ai", handlers.Session.ScoreWithAI)
			sessions.POST("/:id/score/key", handlers.Session.ScoreWithKey)
			sessions.POST("/:id/retake", handlers.Session.RetakeTest)
		}

		api.GET("/history", handlers.History.ListHistory)
		api.GET("/history/:id", handlers.History.GetHistoryEntry)
	}

	// ─── 3. WebSocket Group (Client WS Auth) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireClientWSAuth(authService))
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	return router
}
