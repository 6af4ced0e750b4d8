// Package server exposes the catalog and narration pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/advsearch/internal/pipeline"
)

// Server holds the state for the REST API server.
type Server struct {
	pipeline *pipeline.Pipeline
	router   *gin.Engine
}

// New creates a Server over p. p.Source is required.
func New(p *pipeline.Pipeline) (*Server, error) {
	if p == nil || p.Source == nil {
		return nil, errors.New("server: a catalog source is required")
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{pipeline: p, router: r}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		slog.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/v1")
	v1.GET("/graphs", s.handleGraphs)
	v1.GET("/graphs/:slug/nodes", s.handleGraphNodes)
	v1.GET("/facets", s.handleFacets)
	v1.GET("/datatypes/:datatype/facets", s.handleDatatypeFacets)
	v1.POST("/node-metadata", s.handleNodeMetadata)
	v1.POST("/narrate", s.handleNarrate)
	v1.POST("/validate", s.handleValidate)
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		slog.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
