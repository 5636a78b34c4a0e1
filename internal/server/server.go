package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/search/searcher"
	"github.com/rx3lixir/book-search-service/internal/search/suggest"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// Server - HTTP API поискового сервиса
type Server struct {
	config    config.HTTPParams
	engine    engine.Engine
	federator *suggest.Federator
	searcher  *searcher.Searcher
	server    *http.Server
	log       logger.Logger
}

func NewServer(cfg config.HTTPParams, eng engine.Engine, federator *suggest.Federator, s *searcher.Searcher, log logger.Logger) *Server {
	srv := &Server{
		config:    cfg,
		engine:    eng,
		federator: federator,
		searcher:  s,
		log:       log,
	}

	srv.setupRoutes()

	return srv
}

func (s *Server) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.withMetrics("health", s.healthHandler))
	mux.HandleFunc("GET /api/suggest", s.withMetrics("suggest", s.suggestHandler))
	mux.HandleFunc("GET /api/search", s.withMetrics("search", s.searchHandler))

	s.server = &http.Server{
		Addr:         s.config.Addr,
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Start запускает API сервер
func (s *Server) Start() error {
	s.log.Info("Starting API server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server error: %w", err)
	}
	return nil
}

// Shutdown грациозно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
