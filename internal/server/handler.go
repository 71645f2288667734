// Package server wires the HTTP routes to the stores and the LLM
// gateway. Dependencies are injected once at construction; handlers
// hold no package-level state.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/config"
	"github.com/perzonai/persona-engine/internal/llm"
	"github.com/perzonai/persona-engine/internal/store"
)

type Handler struct {
	cfg           config.Config
	log           *zap.Logger
	gateway       *llm.Gateway
	personas      *store.PersonaStore
	shares        *store.ShareRegistry
	conversations *store.ConversationStore
}

func NewHandler(cfg config.Config, log *zap.Logger, gateway *llm.Gateway,
	personas *store.PersonaStore, shares *store.ShareRegistry, conversations *store.ConversationStore) *Handler {
	return &Handler{
		cfg:           cfg,
		log:           log,
		gateway:       gateway,
		personas:      personas,
		shares:        shares,
		conversations: conversations,
	}
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(h *Handler) *gin.Engine {
	if !h.cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log), cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	{
		api.POST("/personas/generate", h.Generate)
		api.POST("/personas/refine", h.Refine)
		api.POST("/personas/chat", h.Chat)
		api.GET("/personas", h.ListPersonas)
		api.GET("/personas/search", h.SearchPersonas)
		api.GET("/personas/stats", h.PersonaStats)
		api.DELETE("/personas/:id", h.DeletePersona)
		api.GET("/personas/export/:format", h.ExportByQuery)

		api.POST("/export/personas", h.ExportByBody)

		api.POST("/share", h.CreateShare)
		api.GET("/share", h.ResolveShare)

		api.POST("/upload", h.Upload)

		api.GET("/trends", h.Trends)
	}

	return r
}

// RequestLogger logs every request with method, path, status, and
// latency.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}
