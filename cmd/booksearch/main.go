package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/internal/db"
	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/internal/search/searcher"
	"github.com/rx3lixir/book-search-service/internal/search/suggest"
	"github.com/rx3lixir/book-search-service/internal/server"
	"github.com/rx3lixir/book-search-service/pkg/consistency"
	"github.com/rx3lixir/book-search-service/pkg/health"
	"github.com/rx3lixir/book-search-service/pkg/logger"
	"github.com/rx3lixir/book-search-service/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подключение к поисковому движку
	eng, err := engine.New(cfg, log)
	if err != nil {
		log.Error("Failed to create search engine", "error", err)
		os.Exit(1)
	}

	if err := eng.Ping(ctx); err != nil {
		log.Error("Search engine is unreachable", "backend", eng.Backend(), "error", err)
		os.Exit(1)
	}

	// Определяем возможности кластера и готовим индекс под них
	caps := mapping.DetectCapabilities(ctx, eng, log)

	mappingManager := mapping.NewManager(eng, caps, log)
	if err := mappingManager.EnsureIndex(ctx); err != nil {
		log.Error("Failed to ensure index", "index", eng.Index(), "error", err)
		os.Exit(1)
	}

	// Подключение к каталогу книг, если он настроен
	var healthServer *health.Server

	if cfg.Postgres.URL != "" {
		pool, err := db.CreatePostgresPool(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("Failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		storer := db.NewPostgresStore(pool)
		consManager := consistency.New(storer, eng, log)

		healthServer = health.NewServer(pool, eng, consManager, log,
			health.WithServiceName(cfg.Service.Name),
			health.WithVersion(cfg.Service.Version),
			health.WithPort(cfg.Health.Addr),
			health.WithCheckTimeout(cfg.Health.Timeout),
		)
	}

	federator := suggest.NewFederator(eng, caps, log)
	bookSearcher := searcher.NewSearcher(eng, caps, log)

	apiServer := server.NewServer(cfg.HTTP, eng, federator, bookSearcher, log)
	metricsServer := metrics.NewMetricsServer(cfg.Metrics.Addr, log)

	// Запускаем все серверы
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error("API server failed", "error", err)
			cancel()
		}
	}()

	go func() {
		if err := metricsServer.Start(); err != nil {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	if healthServer != nil {
		go func() {
			if err := healthServer.Start(); err != nil {
				log.Error("Health server failed", "error", err)
			}
		}()
	}

	metricsServer.StartUptimeUpdater(ctx, cfg.Service.Name)

	log.Info("Service started",
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
		"backend", eng.Backend(),
		"index", eng.Index(),
		"phonetic", caps.Phonetic,
		"api_addr", cfg.HTTP.Addr,
	)

	// Ждем сигнал остановки
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		log.Info("Context canceled, shutting down")
	}

	// Останавливаем фоновые горутины, привязанные к основному контексту
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown API server", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown metrics server", "error", err)
	}
	if healthServer != nil {
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown health server", "error", err)
		}
	}

	// Даем фоновым горутинам время завершиться
	time.Sleep(100 * time.Millisecond)
	log.Info("Service stopped")
}
