package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// ElasticsearchEngine - реализация Engine поверх go-elasticsearch.
// Протокол совместим с OpenSearch, отличается только клиентская библиотека.
type ElasticsearchEngine struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

// NewElasticsearch создает клиент Elasticsearch
func NewElasticsearch(cfg config.ElasticsearchParams, index string, log logger.Logger) (*ElasticsearchEngine, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: cfg.Timeout,
		},
		MaxRetries: cfg.MaxRetries,
	}

	esClient, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchEngine{
		es:    esClient,
		index: index,
		log:   log,
	}, nil
}

func (e *ElasticsearchEngine) Backend() string {
	return config.BackendElasticsearch
}

func (e *ElasticsearchEngine) Index() string {
	return e.index
}

// Ping проверяет подключение к Elasticsearch
func (e *ElasticsearchEngine) Ping(ctx context.Context) error {
	res, err := e.es.Ping(
		e.es.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return newError(e.Backend(), res.Status(), res.Body)
	}

	return nil
}

// ClusterHealth возвращает состояние кластера
func (e *ElasticsearchEngine) ClusterHealth(ctx context.Context) (*ClusterHealth, error) {
	res, err := e.es.Cluster.Health(
		e.es.Cluster.Health.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster health: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, newError(e.Backend(), res.Status(), res.Body)
	}

	var health ClusterHealth
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode cluster health response: %w", err)
	}

	return &health, nil
}

// Plugins возвращает список установленных плагинов
func (e *ElasticsearchEngine) Plugins(ctx context.Context) ([]Plugin, error) {
	res, err := e.es.Cat.Plugins(
		e.es.Cat.Plugins.WithContext(ctx),
		e.es.Cat.Plugins.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, newError(e.Backend(), res.Status(), res.Body)
	}

	var plugins []Plugin
	if err := json.NewDecoder(res.Body).Decode(&plugins); err != nil {
		return nil, fmt.Errorf("failed to decode plugins response: %w", err)
	}

	return plugins, nil
}

// IndexExists проверяет существование индекса
func (e *ElasticsearchEngine) IndexExists(ctx context.Context) (bool, error) {
	res, err := e.es.Indices.Exists(
		[]string{e.index},
		e.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check if index exists: %w", err)
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// CreateIndex создает индекс с переданным маппингом
func (e *ElasticsearchEngine) CreateIndex(ctx context.Context, mapping []byte) error {
	res, err := e.es.Indices.Create(
		e.index,
		e.es.Indices.Create.WithContext(ctx),
		e.es.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return newError(e.Backend(), res.Status(), res.Body)
	}

	e.log.Info("Elasticsearch index created successfully", "index", e.index)
	return nil
}

// DeleteIndex удаляет индекс. 404 не считается ошибкой.
func (e *ElasticsearchEngine) DeleteIndex(ctx context.Context) error {
	res, err := e.es.Indices.Delete(
		[]string{e.index},
		e.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return newError(e.Backend(), res.Status(), res.Body)
	}

	e.log.Info("Elasticsearch index deleted", "index", e.index, "status", res.Status())
	return nil
}

// Search выполняет поисковый запрос и нормализует ответ
func (e *ElasticsearchEngine) Search(ctx context.Context, body []byte) (*SearchResponse, error) {
	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(bytes.NewReader(body)),
		e.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		engineErr := newError(e.Backend(), res.Status(), res.Body)
		e.log.Error("Elasticsearch query failed",
			"status", res.Status(),
			"reason", engineErr.Reason,
			"query", string(body),
		)
		return nil, engineErr
	}

	return decodeSearchResponse(res.Body)
}

// Count возвращает количество документов в индексе
func (e *ElasticsearchEngine) Count(ctx context.Context) (int64, error) {
	res, err := e.es.Count(
		e.es.Count.WithContext(ctx),
		e.es.Count.WithIndex(e.index),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, newError(e.Backend(), res.Status(), res.Body)
	}

	var countResponse struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return countResponse.Count, nil
}

// Bulk выполняет bulk запрос с немедленным refresh
func (e *ElasticsearchEngine) Bulk(ctx context.Context, body io.Reader) (*BulkResponse, error) {
	res, err := e.es.Bulk(
		body,
		e.es.Bulk.WithContext(ctx),
		e.es.Bulk.WithIndex(e.index),
		e.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, newError(e.Backend(), res.Status(), res.Body)
	}

	return decodeBulkResponse(res.Body)
}
