package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spendlens/receipt-review-backend/internal/api/handlers"
	"github.com/spendlens/receipt-review-backend/internal/api/middleware"
	"github.com/spendlens/receipt-review-backend/internal/application/service"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	reviews    *service.ReviewService
}

// NewServer creates a new API server.
func NewServer(cfg Config, repo storage.Repository, reviews *service.ReviewService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		repo:    repo,
		reviews: reviews,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		// Review sessions
		reviewsHandler := handlers.NewReviewsHandler(s.reviews)
		r.Post("/reviews", reviewsHandler.Start)
		r.Get("/reviews/{id}", reviewsHandler.Get)
		r.Delete("/reviews/{id}", reviewsHandler.Discard)
		r.Post("/reviews/{id}/items", reviewsHandler.AddItem)
		r.Patch("/reviews/{id}/items/{itemID}", reviewsHandler.UpdateItem)
		r.Delete("/reviews/{id}/items/{itemID}", reviewsHandler.RemoveItem)
		r.Put("/reviews/{id}/tax", reviewsHandler.UpdateTax)
		r.Post("/reviews/{id}/submit", reviewsHandler.Submit)

		// Non-itemized receipts skip the session flow
		r.Post("/expenses/utility", reviewsHandler.SubmitUtility)

		// Submission history
		submissionsHandler := handlers.NewSubmissionsHandler(s.repo)
		r.Get("/submissions", submissionsHandler.List)
		r.Get("/submissions/{id}", submissionsHandler.Get)

		// Stats
		statsHandler := handlers.NewStatsHandler(s.repo)
		r.Get("/stats", statsHandler.Get)

		// Category vocabulary
		categoriesHandler := handlers.NewCategoriesHandler()
		r.Get("/categories", categoriesHandler.List)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout: 15 * time.Second,
		// Review creation may proxy a slow OCR extraction
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
