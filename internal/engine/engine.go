package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Engine - адаптер поискового движка. Две реализации (OpenSearch и
// Elasticsearch) совместимы на уровне протокола, но их клиентские библиотеки
// оборачивают ответы по-разному. Весь остальной код зависит только от этого
// интерфейса и нормализованного SearchResponse.
type Engine interface {
	// Backend возвращает имя движка ("opensearch" или "elasticsearch")
	Backend() string
	// Index возвращает имя индекса каталога
	Index() string

	Ping(ctx context.Context) error
	ClusterHealth(ctx context.Context) (*ClusterHealth, error)
	Plugins(ctx context.Context) ([]Plugin, error)

	IndexExists(ctx context.Context) (bool, error)
	CreateIndex(ctx context.Context, mapping []byte) error
	DeleteIndex(ctx context.Context) error

	Search(ctx context.Context, body []byte) (*SearchResponse, error)
	Count(ctx context.Context) (int64, error)
	Bulk(ctx context.Context, body io.Reader) (*BulkResponse, error)
}

// Plugin - установленный плагин движка (строка из _cat/plugins)
type Plugin struct {
	Name      string `json:"name"`
	Component string `json:"component"`
	Version   string `json:"version"`
}

// ClusterHealth - состояние кластера
type ClusterHealth struct {
	ClusterName       string `json:"cluster_name"`
	Status            string `json:"status"`
	NumberOfNodes     int    `json:"number_of_nodes"`
	NumberOfDataNodes int    `json:"number_of_data_nodes"`
	ActiveShards      int    `json:"active_shards"`
	TimedOut          bool   `json:"timed_out"`
}

// IsHealthy возвращает true для green и yellow статусов
func (ch *ClusterHealth) IsHealthy() bool {
	return ch.Status == "green" || ch.Status == "yellow"
}

// SearchResponse - нормализованный ответ поиска, общий для обоих движков
type SearchResponse struct {
	Took         int                    `json:"took"`
	TimedOut     bool                   `json:"timed_out"`
	Hits         Hits                   `json:"hits"`
	Aggregations map[string]Aggregation `json:"aggregations"`
}

// Hits - блок результатов-документов
type Hits struct {
	Total    TotalHits `json:"total"`
	MaxScore *float64  `json:"max_score"`
	Hits     []Hit     `json:"hits"`
}

// Hit - один найденный документ
type Hit struct {
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// TotalHits нормализует оба проволочных представления total:
// объект {"value": N, "relation": "eq"} и простое число N
// (rest_total_hits_as_int в старых версиях движка).
type TotalHits struct {
	Value    int64
	Relation string
}

func (t *TotalHits) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '{' {
		t.Relation = "eq"
		return json.Unmarshal(data, &t.Value)
	}

	var obj struct {
		Value    int64  `json:"value"`
		Relation string `json:"relation"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Value = obj.Value
	t.Relation = obj.Relation
	return nil
}

// Aggregation - результат terms-агрегации
type Aggregation struct {
	DocCountErrorUpperBound int64    `json:"doc_count_error_upper_bound"`
	SumOtherDocCount        int64    `json:"sum_other_doc_count"`
	Buckets                 []Bucket `json:"buckets"`
}

// Bucket - одна корзина агрегации. Ключ может быть строкой (author, genre)
// или числом (release_year), поэтому хранится как any.
type Bucket struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}

// KeyString возвращает ключ корзины как строку
func (b Bucket) KeyString() string {
	switch k := b.Key.(type) {
	case string:
		return k
	case float64:
		return strconv.FormatInt(int64(k), 10)
	default:
		return fmt.Sprintf("%v", k)
	}
}

// KeyInt возвращает числовой ключ корзины
func (b Bucket) KeyInt() (int, bool) {
	switch k := b.Key.(type) {
	case float64:
		return int(k), true
	case string:
		n, err := strconv.Atoi(k)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// BulkResponse - результат bulk запроса
type BulkResponse struct {
	Took   int        `json:"took"`
	Errors bool       `json:"errors"`
	Items  []BulkItem `json:"items"`
}

// BulkItem - результат одной операции внутри bulk запроса
type BulkItem struct {
	Index struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"index"`
}

// Error - ошибка движка с деталями из тела ответа
type Error struct {
	Backend string
	Status  string
	Type    string
	Reason  string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s request failed: %s: %s (%s)", e.Backend, e.Status, e.Reason, e.Type)
	}
	return fmt.Sprintf("%s request failed: %s", e.Backend, e.Status)
}

// newError разбирает тело ответа с ошибкой в формате
// {"error": {"type": ..., "reason": ...}}
func newError(backend, status string, body io.Reader) *Error {
	e := &Error{Backend: backend, Status: status}

	var wire struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&wire); err == nil {
		e.Type = wire.Error.Type
		e.Reason = wire.Error.Reason
	}

	return e
}

// decodeSearchResponse разбирает тело ответа поиска в нормализованную форму
func decodeSearchResponse(body io.Reader) (*SearchResponse, error) {
	var resp SearchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &resp, nil
}

// decodeBulkResponse разбирает тело ответа bulk запроса
func decodeBulkResponse(body io.Reader) (*BulkResponse, error) {
	var resp BulkResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response: %w", err)
	}
	return &resp, nil
}
