// Package api exposes the question-answering pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"amc-news-assistant/internal/app"
	"amc-news-assistant/internal/observability"
	"amc-news-assistant/internal/storage"
)

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, req app.Request) (app.Response, error)
}

// Options configures a Server. Store may be nil.
type Options struct {
	Addr            string
	Version         string
	ShutdownTimeout time.Duration
	Store           storage.Repository
	ScraperReady    bool
	Metrics         *observability.Metrics
}

type Server struct {
	router          *gin.Engine
	server          *http.Server
	asker           Asker
	store           storage.Repository
	scraperReady    bool
	version         string
	shutdownTimeout time.Duration
	logger          *observability.Logger
}

func NewServer(asker Asker, logger *observability.Logger, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger, opts.Metrics))
	router.Use(CORSMiddleware())

	s := &Server{
		router:          router,
		asker:           asker,
		store:           opts.Store,
		scraperReady:    opts.ScraperReady,
		version:         opts.Version,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger,
	}

	router.POST("/api/ask", s.handleAsk)
	router.GET("/api/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "address", s.server.Addr, "version", s.version)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", "timeout", s.shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}
