package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// Backend определяет используемый поисковый движок
const (
	BackendOpenSearch    = "opensearch"
	BackendElasticsearch = "elasticsearch"
)

// AppConfig - полная конфигурация сервиса
type AppConfig struct {
	Service       ServiceParams       `mapstructure:"service"`
	HTTP          HTTPParams          `mapstructure:"http"`
	Engine        EngineParams        `mapstructure:"engine"`
	OpenSearch    OpenSearchParams    `mapstructure:"opensearch"`
	Elasticsearch ElasticsearchParams `mapstructure:"elasticsearch"`
	Postgres      PostgresParams      `mapstructure:"postgres"`
	Enrichment    EnrichmentParams    `mapstructure:"enrichment"`
	Metrics       MetricsParams       `mapstructure:"metrics"`
	Health        HealthParams        `mapstructure:"health"`
	Logger        logger.Config       `mapstructure:"logger"`
}

// ServiceParams - общие параметры сервиса
type ServiceParams struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
}

// HTTPParams - параметры API сервера
type HTTPParams struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DefaultPageSize int           `mapstructure:"default_page_size" validate:"min=1,max=100"`
}

// EngineParams - выбор поискового движка и имя индекса
type EngineParams struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=opensearch elasticsearch"`
	Index   string `mapstructure:"index" validate:"required"`
}

// OpenSearchParams - параметры подключения к OpenSearch
type OpenSearchParams struct {
	URL                string        `mapstructure:"url" validate:"required"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"required,min=1s"`
	MaxRetries         int           `mapstructure:"max_retries" validate:"min=0,max=5"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	RetryOnStatus      []int         `mapstructure:"retry_on_status"`
}

// ElasticsearchParams - параметры подключения к Elasticsearch
type ElasticsearchParams struct {
	URL        string        `mapstructure:"url" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"required,min=1s"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min=0,max=5"`
}

// PostgresParams - подключение к каталогу книг
type PostgresParams struct {
	URL string `mapstructure:"url"`
}

// EnrichmentParams - параметры обогащения вариантами имен
type EnrichmentParams struct {
	Enabled        bool          `mapstructure:"enabled"`
	SparqlEndpoint string        `mapstructure:"sparql_endpoint"`
	Timeout        time.Duration `mapstructure:"timeout"`
	InterCallDelay time.Duration `mapstructure:"inter_call_delay"`
	MaxCandidates  int           `mapstructure:"max_candidates"`
}

// MetricsParams - параметры сервера метрик
type MetricsParams struct {
	Addr string `mapstructure:"addr"`
}

// HealthParams - параметры healthcheck сервера
type HealthParams struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load читает конфигурацию из yaml файла и переменных окружения.
// Переменные окружения имеют префикс BOOKSEARCH и перекрывают файл,
// например BOOKSEARCH_OPENSEARCH_URL.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("BOOKSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "book-search-service")
	v.SetDefault("service.version", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.default_page_size", 12)

	v.SetDefault("engine.backend", BackendOpenSearch)
	v.SetDefault("engine.index", "books")

	v.SetDefault("opensearch.url", "http://localhost:9200")
	v.SetDefault("opensearch.timeout", 5*time.Second)
	v.SetDefault("opensearch.max_retries", 3)
	v.SetDefault("opensearch.max_idle_conns", 10)
	v.SetDefault("opensearch.insecure_skip_verify", true) // Только в дев режиме
	v.SetDefault("opensearch.retry_on_status", []int{502, 503, 504, 429})

	v.SetDefault("elasticsearch.url", "http://localhost:9200")
	v.SetDefault("elasticsearch.timeout", 5*time.Second)
	v.SetDefault("elasticsearch.max_retries", 3)

	v.SetDefault("enrichment.enabled", true)
	v.SetDefault("enrichment.sparql_endpoint", "https://query.wikidata.org/sparql")
	v.SetDefault("enrichment.timeout", 5*time.Second)
	v.SetDefault("enrichment.inter_call_delay", 500*time.Millisecond)
	v.SetDefault("enrichment.max_candidates", 25)

	v.SetDefault("metrics.addr", ":8091")

	v.SetDefault("health.addr", ":8090")
	v.SetDefault("health.timeout", 5*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
}
