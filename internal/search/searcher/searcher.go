package searcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/internal/search/models"
	"github.com/rx3lixir/book-search-service/pkg/logger"
	"github.com/rx3lixir/book-search-service/pkg/metrics"
)

// Searcher выполняет полные поисковые запросы с фасетами
type Searcher struct {
	engine  engine.Engine
	builder *QueryBuilder
	logger  logger.Logger
}

func NewSearcher(eng engine.Engine, caps mapping.Capabilities, log logger.Logger) *Searcher {
	return &Searcher{
		engine:  eng,
		builder: NewQueryBuilder(caps),
		logger:  log,
	}
}

// Search выполняет один запрос и возвращает страницу результатов с фасетами
func (s *Searcher) Search(ctx context.Context, req Request) (*Result, error) {
	req.Normalize()

	body, err := json.Marshal(s.builder.Build(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	start := time.Now()
	res, err := s.engine.Search(ctx, body)
	metrics.RecordEngineRequest(s.engine.Backend(), "search", err, time.Since(start))

	if err != nil {
		s.logger.Error("Search failed", "query", req.Query, "error", err)
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	result, err := s.parseResult(res, req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Search completed",
		"query", req.Query,
		"total", result.Total,
		"page", req.Page,
		"took_ms", result.TookMs,
	)

	return result, nil
}

func (s *Searcher) parseResult(res *engine.SearchResponse, req Request) (*Result, error) {
	result := &Result{
		Books:  make([]models.BookDocument, 0, len(res.Hits.Hits)),
		Total:  res.Hits.Total.Value,
		Page:   req.Page,
		Size:   req.Size,
		TookMs: int64(res.Took),
	}
	if res.Hits.MaxScore != nil {
		result.MaxScore = *res.Hits.MaxScore
	}

	for _, hit := range res.Hits.Hits {
		var doc models.BookDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode book hit %s: %w", hit.ID, err)
		}
		result.Books = append(result.Books, doc)
	}

	facets, err := parseFacets(res)
	if err != nil {
		return nil, err
	}
	result.Facets = facets

	return result, nil
}

func parseFacets(res *engine.SearchResponse) (Facets, error) {
	facets := Facets{
		Authors: []FacetBucket{},
		Genres:  []FacetBucket{},
		Years:   []YearFacet{},
	}

	if agg, ok := res.Aggregations["authors"]; ok {
		for _, bucket := range agg.Buckets {
			facets.Authors = append(facets.Authors, FacetBucket{
				Value: bucket.KeyString(),
				Count: bucket.DocCount,
			})
		}
	}

	if agg, ok := res.Aggregations["genres"]; ok {
		for _, bucket := range agg.Buckets {
			facets.Genres = append(facets.Genres, FacetBucket{
				Value: bucket.KeyString(),
				Count: bucket.DocCount,
			})
		}
	}

	if agg, ok := res.Aggregations["years"]; ok {
		for _, bucket := range agg.Buckets {
			year, ok := bucket.KeyInt()
			if !ok {
				return facets, fmt.Errorf("unexpected year facet key %v", bucket.Key)
			}
			facets.Years = append(facets.Years, YearFacet{
				Year:  year,
				Count: bucket.DocCount,
			})
		}
	}

	return facets, nil
}
