package mapping

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// Manager отвечает за создание индекса каталога
type Manager struct {
	engine engine.Engine
	caps   Capabilities
	logger logger.Logger
}

func NewManager(eng engine.Engine, caps Capabilities, log logger.Logger) *Manager {
	return &Manager{
		engine: eng,
		caps:   caps,
		logger: log,
	}
}

// EnsureIndex создает индекс, если его еще нет. Используется сервером.
func (m *Manager) EnsureIndex(ctx context.Context) error {
	exists, err := m.engine.IndexExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	if exists {
		m.logger.Info("Search index already exists", "index", m.engine.Index())
		return nil
	}

	return m.createIndex(ctx)
}

// RecreateIndex удаляет существующий индекс и создает его заново.
// Деструктивно - допустимо только для утилиты пересева, не для
// переиндексации в продакшене.
func (m *Manager) RecreateIndex(ctx context.Context) error {
	exists, err := m.engine.IndexExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}

	if exists {
		m.logger.Warn("Dropping existing search index", "index", m.engine.Index())
		if err := m.engine.DeleteIndex(ctx); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
	}

	return m.createIndex(ctx)
}

func (m *Manager) createIndex(ctx context.Context) error {
	body, err := BuildMapping(m.caps)
	if err != nil {
		return fmt.Errorf("failed to build mapping: %w", err)
	}

	if err := m.engine.CreateIndex(ctx, body); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	m.logger.Info("Search index created",
		"index", m.engine.Index(),
		"phonetic", m.caps.Phonetic,
	)

	return nil
}

// BuildMapping собирает маппинг индекса. Маппинг строится программно,
// а не из статичного json файла, потому что фонетический анализатор
// включается только при наличии плагина.
func BuildMapping(caps Capabilities) ([]byte, error) {
	analyzers := map[string]any{
		// Стемминговый анализатор для полнотекстового поиска
		"book_text": map[string]any{
			"type":      "custom",
			"tokenizer": "standard",
			"filter":    []string{"lowercase", "english_stemmer"},
		},
		// Edge n-gram только на стороне индексации: индекс раскладывает
		// префиксы, поиск - нет, иначе запрос взрывается по совпавшим n-граммам
		"autocomplete_index": map[string]any{
			"type":      "custom",
			"tokenizer": "autocomplete_tokenizer",
			"filter":    []string{"lowercase"},
		},
		"autocomplete_search": map[string]any{
			"type":      "custom",
			"tokenizer": "standard",
			"filter":    []string{"lowercase"},
		},
	}

	filters := map[string]any{
		"english_stemmer": map[string]any{
			"type":     "stemmer",
			"language": "english",
		},
	}

	if caps.Phonetic {
		analyzers["book_phonetic"] = map[string]any{
			"type":      "custom",
			"tokenizer": "standard",
			"filter":    []string{"lowercase", "phonetic_filter"},
		}
		filters["phonetic_filter"] = map[string]any{
			"type":      "phonetic",
			"encoder":   "beider_morse",
			"rule_type": "approx",
			"replace":   false,
		}
	}

	autocompleteField := map[string]any{
		"type":            "text",
		"analyzer":        "autocomplete_index",
		"search_analyzer": "autocomplete_search",
	}

	titleFields := map[string]any{
		"keyword":      map[string]any{"type": "keyword", "ignore_above": 256},
		"autocomplete": autocompleteField,
	}
	authorFields := map[string]any{
		"keyword":      map[string]any{"type": "keyword", "ignore_above": 256},
		"autocomplete": autocompleteField,
	}

	if caps.Phonetic {
		phoneticField := map[string]any{
			"type":     "text",
			"analyzer": "book_phonetic",
		}
		titleFields["phonetic"] = phoneticField
		authorFields["phonetic"] = phoneticField
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": analyzers,
				"filter":   filters,
				"tokenizer": map[string]any{
					"autocomplete_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    15,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id": map[string]any{"type": "long"},
				"title": map[string]any{
					"type":     "text",
					"analyzer": "book_text",
					"fields":   titleFields,
				},
				"author": map[string]any{
					"type":     "text",
					"analyzer": "book_text",
					"fields":   authorFields,
				},
				"genre":    map[string]any{"type": "keyword"},
				"language": map[string]any{"type": "keyword"},
				"formats":  map[string]any{"type": "keyword"},
				// Числовое поле с текстовым автокомплит подполем, чтобы
				// ввод "202" подсказывал 2020-2029
				"release_year": map[string]any{
					"type": "integer",
					"fields": map[string]any{
						"autocomplete": autocompleteField,
					},
				},
				"rating":            map[string]any{"type": "float"},
				"rating_count":      map[string]any{"type": "integer"},
				"trending":          map[string]any{"type": "integer"},
				"author_first_name": map[string]any{"type": "keyword"},
				// Вариант написания имени должен префиксно матчиться так же,
				// как title и author
				"name_variants": map[string]any{
					"type":            "text",
					"analyzer":        "autocomplete_index",
					"search_analyzer": "autocomplete_search",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword"},
					},
				},
				"created_at": map[string]any{"type": "date"},
				"updated_at": map[string]any{"type": "date"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mapping: %w", err)
	}

	return body, nil
}
