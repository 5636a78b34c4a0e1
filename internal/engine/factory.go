package engine

import (
	"fmt"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// New создает движок по значению engine.backend из конфигурации
func New(cfg *config.AppConfig, log logger.Logger) (Engine, error) {
	switch cfg.Engine.Backend {
	case config.BackendOpenSearch:
		return NewOpenSearch(cfg.OpenSearch, cfg.Engine.Index, log)
	case config.BackendElasticsearch:
		return NewElasticsearch(cfg.Elasticsearch, cfg.Engine.Index, log)
	default:
		return nil, fmt.Errorf("unknown search backend: %q", cfg.Engine.Backend)
	}
}
