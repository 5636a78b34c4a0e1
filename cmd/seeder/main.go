package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ianschenck/envflag"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/internal/dataloader"
	"github.com/rx3lixir/book-search-service/internal/db"
	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/enrich"
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/pkg/consistency"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// Сидер переливает каталог книг из PostgreSQL в поисковый индекс.
// Запускается отдельно от сервиса: при первичном наполнении,
// после миграций или при пересоздании индекса.
func main() {
	var (
		configPath     = envflag.String("CONFIG_PATH", "", "path to yaml config file")
		dbURL          = envflag.String("DB_URL", "", "overrides postgres url from config")
		forceRecreate  = envflag.Bool("FORCE_RECREATE", false, "drop and recreate the index before loading")
		verifyAfterRun = envflag.Bool("VERIFY", true, "run consistency check after loading")
	)
	envflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *dbURL != "" {
		cfg.Postgres.URL = *dbURL
	}
	if cfg.Postgres.URL == "" {
		slog.Error("Postgres URL is required, set postgres.url or DB_URL")
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

	pool, err := db.CreatePostgresPool(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Error("Failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eng, err := engine.New(cfg, log)
	if err != nil {
		log.Error("Failed to create search engine", "error", err)
		os.Exit(1)
	}

	if err := eng.Ping(ctx); err != nil {
		log.Error("Search engine is unreachable", "backend", eng.Backend(), "error", err)
		os.Exit(1)
	}

	caps := mapping.DetectCapabilities(ctx, eng, log)
	mappingManager := mapping.NewManager(eng, caps, log)

	if *forceRecreate {
		if err := mappingManager.RecreateIndex(ctx); err != nil {
			log.Error("Failed to recreate index", "index", eng.Index(), "error", err)
			os.Exit(1)
		}
	} else {
		if err := mappingManager.EnsureIndex(ctx); err != nil {
			log.Error("Failed to ensure index", "index", eng.Index(), "error", err)
			os.Exit(1)
		}
	}

	// Обогащение вариантами имен: кэш с предзагруженными семьями,
	// внешний источник подключается только если включен в конфиге
	cache := enrich.NewCache()
	enrich.PreloadFallback(cache)

	var source enrich.VariantSource
	if cfg.Enrichment.Enabled {
		source = enrich.NewWikidataClient(enrich.WikidataConfig{
			Endpoint:      cfg.Enrichment.SparqlEndpoint,
			Timeout:       cfg.Enrichment.Timeout,
			MaxCandidates: cfg.Enrichment.MaxCandidates,
		}, log)
	}

	resolver := enrich.NewResolver(cache, source, cfg.Enrichment.InterCallDelay, log)
	enricher := enrich.NewEnricher(resolver, log)

	storer := db.NewPostgresStore(pool)
	loader := dataloader.NewLoader(storer, eng, enricher, log)

	if *forceRecreate {
		err = loader.ForceSyncData(ctx)
	} else {
		err = loader.InitializeIndexData(ctx)
	}
	if err != nil {
		log.Error("Failed to load books into index", "error", err)
		os.Exit(1)
	}

	if *verifyAfterRun {
		manager := consistency.New(storer, eng, log)
		result, err := manager.CheckConsistency(ctx)
		if err != nil {
			log.Error("Consistency check failed", "error", err)
			os.Exit(1)
		}

		if !result.IsConsistent {
			log.Warn("Catalog and index are not consistent",
				"total_db", result.TotalBooksDB,
				"total_index", result.TotalBooksIndex,
				"missing_in_index", len(result.MissingInIndex),
				"missing_in_db", len(result.MissingInDB),
			)
			os.Exit(1)
		}

		log.Info("Catalog and index are consistent",
			"total_books", result.TotalBooksDB)
	}

	log.Info("Seeding completed")
}
