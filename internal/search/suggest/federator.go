package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/pkg/logger"
	"github.com/rx3lixir/book-search-service/pkg/metrics"
)

// Federator выполняет до четырех категорийных запросов параллельно
// и собирает их результаты в один ответ подсказок
type Federator struct {
	engine  engine.Engine
	builder *QueryBuilder
	logger  logger.Logger
}

func NewFederator(eng engine.Engine, caps mapping.Capabilities, log logger.Logger) *Federator {
	return &Federator{
		engine:  eng,
		builder: NewQueryBuilder(caps),
		logger:  log,
	}
}

// Suggest - точка входа федерации подсказок. Запрос короче двух рун
// возвращает пустой ответ без единого обращения к движку.
// Категории, которым нечего искать, пропускаются: чисто годовой запрос
// не трогает текстовые категории, чисто текстовый - категорию лет.
// Ошибка любой категории отменяет остальные и проваливает весь запрос
func (f *Federator) Suggest(ctx context.Context, req Request) (*Response, error) {
	resp := NewResponse(req.Query)

	if utf8.RuneCountInString(req.Query) < MinQueryLength {
		return resp, nil
	}

	residual, yearTokens := ExtractYears(req.Query)
	terms := SplitTerms(residual)
	runText := utf8.RuneCountInString(residual) >= MinQueryLength

	g, gctx := errgroup.WithContext(ctx)

	if runText {
		g.Go(func() error {
			res, err := f.runQuery(gctx, "suggest_authors", f.builder.BuildAuthorsQuery(residual, req.Filters))
			if err != nil {
				return err
			}
			resp.Authors, err = parseAuthors(res, terms)
			return err
		})

		g.Go(func() error {
			res, err := f.runQuery(gctx, "suggest_titles", f.builder.BuildTitlesQuery(residual, req.Filters))
			if err != nil {
				return err
			}
			resp.Titles, err = parseTitles(res, terms)
			return err
		})

		g.Go(func() error {
			res, err := f.runQuery(gctx, "suggest_genres", f.builder.BuildGenresQuery(terms, req.Filters))
			if err != nil {
				return err
			}
			resp.Genres, err = parseGenres(res, terms)
			return err
		})
	}

	if len(yearTokens) > 0 {
		g.Go(func() error {
			res, err := f.runQuery(gctx, "suggest_years", f.builder.BuildYearsQuery(yearTokens, req.Filters))
			if err != nil {
				return err
			}
			resp.Years, err = parseYears(res, yearTokens)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		f.logger.Error("Suggestion federation failed", "query", req.Query, "error", err)
		return nil, err
	}

	f.logger.Debug("Suggestions federated",
		"query", req.Query,
		"authors", len(resp.Authors),
		"titles", len(resp.Titles),
		"genres", len(resp.Genres),
		"years", len(resp.Years),
	)

	return resp, nil
}

// runQuery сериализует тело запроса, выполняет его и записывает метрики
func (f *Federator) runQuery(ctx context.Context, operation string, body map[string]any) (*engine.SearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s query: %w", operation, err)
	}

	start := time.Now()
	res, err := f.engine.Search(ctx, data)
	metrics.RecordEngineRequest(f.engine.Backend(), operation, err, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", operation, err)
	}

	return res, nil
}
