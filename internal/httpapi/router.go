package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rethinkmedia/backend/internal/common"
	"github.com/rethinkmedia/backend/internal/config"
	"github.com/rethinkmedia/backend/internal/httpapi/handlers"
	"github.com/rethinkmedia/backend/internal/httpapi/middleware"
	"github.com/rethinkmedia/backend/internal/logging"
)

func NewRouter(h *handlers.Handler, cfg config.Config, log *logging.Logger) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(requestLogger(log))
	r.Use(middleware.Recovery(log))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found", c.Request.URL.Path)
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed", c.Request.Method)
	})

	r.GET("/ping", h.Ping)

	// generation endpoints, optionally behind bearer auth
	gen := r.Group("/")
	if cfg.AuthSecret != "" {
		gen.Use(middleware.AuthRequired(cfg.AuthSecret))
	}
	gen.POST("/generate-content", h.GenerateContent)
	gen.POST("/regenerate-content/audio", h.RegenerateAudio)
	gen.POST("/regenerate-content/media", h.RegenerateMedia)
	gen.POST("/regenerate-content/text", h.RegenerateText)

	// read endpoints stay open: clients poll them while rows are pending
	r.GET("/chats/:chat_id", h.GetChat)
	r.GET("/chats/:chat_id/media/:type", h.ListMedia)
	r.GET("/chats/:chat_id/media/:type/latest", h.LatestMedia)

	return r
}

func requestLogger(log *logging.Logger) gin.HandlerFunc {
	l := log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"cost", time.Since(start),
			"request_id", c.GetString(middleware.RequestIDKey))
	}
}
