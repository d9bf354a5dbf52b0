package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/config"
	"github.com/alkime/practicum/internal/feedback"
	"github.com/alkime/practicum/internal/registry"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// RecorderFactory creates a fresh capture session for a practice visit.
type RecorderFactory func() (workflow.Recorder, error)

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Catalog     *catalog.Catalog
	Registry    *registry.Registry
	Feedback    feedback.Generator
	NewRecorder RecorderFactory
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("catalog is required")
	case d.Registry == nil:
		return errors.New("registry is required")
	case d.Feedback == nil:
		return errors.New("feedback generator is required")
	case d.NewRecorder == nil:
		return errors.New("recorder factory is required")
	}

	return nil
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	deps   Deps
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid server dependencies: %w", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Configure proxy trust for production (Fly.io)
	if cfg.IsProduction() {
		router.TrustedPlatform = gin.PlatformFlyIO
		logger.Debug("Configured trusted platform", "platform", "fly.io")
	}

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		deps:   deps,
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server, nil
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// discards every live phase instance.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "port", s.config.Port)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		s.deps.Registry.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.deps.Registry.Close()

	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.GET("/variants", s.handleVariants)

		learn := api.Group("/learn")
		learn.POST("", s.handleLearnCreate)
		learn.GET("/:id", s.withLearn(s.respondLearn))
		learn.POST("/:id/tab", s.withLearn(s.handleLearnTab))
		learn.POST("/:id/video/progress", s.withLearn(s.handleVideoProgress))
		learn.POST("/:id/reading/complete", s.withLearn(s.handleReadingComplete))
		learn.PUT("/:id/answers/:question", s.withLearn(s.handleSelectAnswer))
		learn.POST("/:id/quiz/check", s.withLearn(s.handleCheckAnswers))
		learn.POST("/:id/proceed", s.withLearn(s.handleLearnProceed))

		practice := api.Group("/practice")
		practice.POST("", s.handlePracticeCreate)
		practice.GET("/:id", s.withPractice(s.respondPractice))
		practice.POST("/:id/tab", s.withPractice(s.handlePracticeTab))
		practice.POST("/:id/recording/start", s.withPractice(s.handleRecordingStart))
		practice.POST("/:id/recording/stop", s.withPractice(s.handleRecordingStop))
		practice.POST("/:id/recording/acknowledge", s.withPractice(s.handleRecordingAcknowledge))
		practice.POST("/:id/recording/reset", s.withPractice(s.handleRecordingReset))
		practice.GET("/:id/recording", s.withPractice(s.handleRecordingDownload))
		practice.PUT("/:id/prompt", s.withPractice(s.handlePromptText))
		practice.POST("/:id/feedback", s.withPractice(s.handleRequestFeedback))
		practice.PUT("/:id/goal", s.withPractice(s.handleGoalText))
		practice.POST("/:id/goal", s.withPractice(s.handleSubmitGoal))
		practice.POST("/:id/proceed", s.withPractice(s.handlePracticeProceed))
	}

	setupStaticFiles(s.router, s.config, s.logger)
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "practicum",
	})
}

func (s *Server) handleVariants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":  s.deps.Catalog.DefaultVariant,
		"variants": s.deps.Catalog.Variants,
	})
}
