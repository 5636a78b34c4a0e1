package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// OpenSearchEngine - реализация Engine поверх opensearch-go
type OpenSearchEngine struct {
	os    *opensearch.Client
	index string
	log   logger.Logger
}

// NewOpenSearch создает клиент OpenSearch
func NewOpenSearch(cfg config.OpenSearchParams, index string, log logger.Logger) (*OpenSearchEngine, error) {
	osConfig := opensearch.Config{
		Addresses: []string{cfg.URL},
		Transport: &http.Transport{
			MaxIdleConnsPerHost: cfg.MaxIdleConns,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		},
		RetryOnStatus: cfg.RetryOnStatus,
		MaxRetries:    cfg.MaxRetries,
	}

	osClient, err := opensearch.NewClient(osConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &OpenSearchEngine{
		os:    osClient,
		index: index,
		log:   log,
	}, nil
}

func (e *OpenSearchEngine) Backend() string {
	return config.BackendOpenSearch
}

func (e *OpenSearchEngine) Index() string {
	return e.index
}

// Ping проверяет подключение к OpenSearch
func (e *OpenSearchEngine) Ping(ctx context.Context) error {
	res, err := e.os.Ping(
		e.os.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return newError(e.Backend(), res.Status(), res.Body)
	}

	return nil
}

// ClusterHealth возвращает состояние кластера
func (e *OpenSearchEngine) ClusterHealth(ctx context.Context) (*ClusterHealth, error) {
	res, err := e.os.Cluster.Health(
		e.os.Cluster.Health.WithContext(ctx),
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
func (e *OpenSearchEngine) Plugins(ctx context.Context) ([]Plugin, error) {
	res, err := e.os.Cat.Plugins(
		e.os.Cat.Plugins.WithContext(ctx),
		e.os.Cat.Plugins.WithFormat("json"),
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
func (e *OpenSearchEngine) IndexExists(ctx context.Context) (bool, error) {
	res, err := e.os.Indices.Exists(
		[]string{e.index},
		e.os.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check if index exists: %w", err)
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// CreateIndex создает индекс с переданным маппингом
func (e *OpenSearchEngine) CreateIndex(ctx context.Context, mapping []byte) error {
	res, err := e.os.Indices.Create(
		e.index,
		e.os.Indices.Create.WithContext(ctx),
		e.os.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return newError(e.Backend(), res.Status(), res.Body)
	}

	e.log.Info("OpenSearch index created successfully", "index", e.index)
	return nil
}

// DeleteIndex удаляет индекс. 404 не считается ошибкой.
func (e *OpenSearchEngine) DeleteIndex(ctx context.Context) error {
	res, err := e.os.Indices.Delete(
		[]string{e.index},
		e.os.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return newError(e.Backend(), res.Status(), res.Body)
	}

	e.log.Info("OpenSearch index deleted", "index", e.index, "status", res.Status())
	return nil
}

// Search выполняет поисковый запрос и нормализует ответ
func (e *OpenSearchEngine) Search(ctx context.Context, body []byte) (*SearchResponse, error) {
	res, err := e.os.Search(
		e.os.Search.WithContext(ctx),
		e.os.Search.WithIndex(e.index),
		e.os.Search.WithBody(bytes.NewReader(body)),
		e.os.Search.WithTrackTotalHits(true), // Важно для точного подсчета
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		engineErr := newError(e.Backend(), res.Status(), res.Body)
		e.log.Error("OpenSearch query failed",
			"status", res.Status(),
			"reason", engineErr.Reason,
			"query", string(body),
		)
		return nil, engineErr
	}

	return decodeSearchResponse(res.Body)
}

// Count возвращает количество документов в индексе
func (e *OpenSearchEngine) Count(ctx context.Context) (int64, error) {
	res, err := e.os.Count(
		e.os.Count.WithContext(ctx),
		e.os.Count.WithIndex(e.index),
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
func (e *OpenSearchEngine) Bulk(ctx context.Context, body io.Reader) (*BulkResponse, error) {
	res, err := e.os.Bulk(
		body,
		e.os.Bulk.WithContext(ctx),
		e.os.Bulk.WithIndex(e.index),
		e.os.Bulk.WithRefresh("true"),
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
