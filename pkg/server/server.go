package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/elonfeng/demandscope/internal/config"
	"github.com/elonfeng/demandscope/internal/store"
	"github.com/elonfeng/demandscope/pkg/source"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Server provides the HTTP API.
type Server struct {
	store   store.Store
	sources []source.Source
	logger  *zap.Logger
	cfg     *config.Config
}

// New creates a new HTTP server.
func New(s store.Store, sources []source.Source, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		store:   s,
		sources: sources,
		logger:  logger,
		cfg:     cfg,
	}
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search/suggest", s.handleSuggest)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", s.handleOverview)
			r.Get("/platforms", s.handlePlatformDistribution)
			r.Get("/sentiment", s.handleSentimentDistribution)
			r.Get("/categories", s.handleCategoryDistribution)
			r.Get("/trends", s.handleTrends)
			r.Get("/charts", s.handleCharts)
			r.Get("/platforms-comparison", s.handlePlatformComparison)
			r.Get("/products", s.handleTopProducts)
			r.Get("/tags", s.handleTopTags)
			r.Get("/trending", s.handleTrendingTopics)
		})

		r.Get("/export", s.handleExport)
		r.Post("/collect", s.handleCollect)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(requireUser(s.cfg.Auth.JWTSecret))
			r.Post("/", s.handleCreateBookmark)
			r.Get("/", s.handleListBookmarks)
			r.Get("/export", s.handleExportBookmarks)
			r.Get("/check/{demandID}", s.handleCheckBookmarked)
			r.Get("/{bookmarkID}", s.handleGetBookmark)
			r.Put("/{bookmarkID}", s.handleUpdateBookmark)
			r.Delete("/{bookmarkID}", s.handleDeleteBookmark)
		})
	})

	return r
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	s.logger.Info("server listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
