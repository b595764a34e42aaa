// Package server exposes the news hooks and reader sessions over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/damdeez/newsie/internal/dates"
	"github.com/damdeez/newsie/internal/hooks"
	"github.com/damdeez/newsie/internal/logger"
	"github.com/damdeez/newsie/internal/session"
)

// Server wires HTTP routes to hooks and sessions.
type Server struct {
	source         hooks.NewsSource
	sessions       *session.Manager
	defaultCountry string
	log            logger.Logger
}

func New(source hooks.NewsSource, sessions *session.Manager, defaultCountry string, log logger.Logger) *Server {
	return &Server{
		source:         source,
		sessions:       sessions,
		defaultCountry: defaultCountry,
		log:            logger.Ensure(log),
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.GET("/everything", s.handleEverything)
	api.GET("/top-headlines", s.handleTopHeadlines)

	sessions := api.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.PUT("/:id/search", s.handleSearch)
	sessions.PUT("/:id/headlines", s.handleHeadlines)
	sessions.DELETE("/:id", s.handleDeleteSession)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "greeting": dates.Greeting(time.Now())})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.InfoObj("http request", "request", map[string]any{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
