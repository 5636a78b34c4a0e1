package searcher

import (
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/internal/search/models"
)

// QueryBuilder строит тело полного поискового запроса: текст, фильтры,
// сортировка, пагинация и фасетные агрегации в одном теле
type QueryBuilder struct {
	caps mapping.Capabilities
}

func NewQueryBuilder(caps mapping.Capabilities) *QueryBuilder {
	return &QueryBuilder{caps: caps}
}

func (qb *QueryBuilder) Build(req Request) map[string]any {
	body := map[string]any{
		"from":  (req.Page - 1) * req.Size,
		"size":  req.Size,
		"query": qb.buildQuery(req),
		"aggs":  qb.buildFacetAggs(),
	}

	if sort := qb.buildSort(req.Sort); sort != nil {
		body["sort"] = sort
	}

	return body
}

func (qb *QueryBuilder) buildQuery(req Request) map[string]any {
	boolQuery := map[string]any{}

	if req.Query != "" {
		boolQuery["must"] = []any{qb.buildTextClause(req.Query)}
	} else {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}

	// Полный поиск фильтрует по всем измерениям сразу, без асимметрии
	if clauses := buildFilterClauses(req.Filters); len(clauses) > 0 {
		boolQuery["filter"] = clauses
	}

	return map[string]any{"bool": boolQuery}
}

// buildTextClause - взвешенный мультиполевой матч: название важнее автора,
// автор важнее вариантов имени, фонетика - слабый страховочный сигнал
func (qb *QueryBuilder) buildTextClause(text string) map[string]any {
	should := []any{
		matchClause("title.autocomplete", text, 3.0),
		matchClause("author.autocomplete", text, 2.0),
		matchClause("name_variants", text, 1.0),
	}
	if qb.caps.Phonetic {
		should = append(should,
			matchClause("title.phonetic", text, 0.5),
			matchClause("author.phonetic", text, 0.5),
		)
	}

	return map[string]any{
		"bool": map[string]any{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

func buildFilterClauses(filters models.FilterState) []any {
	clauses := []any{}

	if len(filters.Authors) > 0 {
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"author.keyword": filters.Authors},
		})
	}
	if len(filters.Genres) > 0 {
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"genre": filters.Genres},
		})
	}
	if len(filters.Years) > 0 {
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"release_year": filters.Years},
		})
	}

	return clauses
}

// buildSort переводит режим сортировки в предложение sort.
// Для релевантности возвращает nil - движок сортирует по _score сам
func (qb *QueryBuilder) buildSort(sort string) []any {
	switch sort {
	case SortRating:
		return []any{map[string]any{"rating": map[string]any{"order": "desc"}}}
	case SortTitle:
		return []any{map[string]any{"title.keyword": map[string]any{"order": "asc"}}}
	case SortYear:
		return []any{map[string]any{"release_year": map[string]any{"order": "desc"}}}
	case SortTrending:
		return []any{map[string]any{"trending": map[string]any{"order": "desc"}}}
	default:
		return nil
	}
}

// buildFacetAggs - агрегации фасетов. Считаются на уже отфильтрованном
// наборе, поэтому счетчики отражают текущие результаты
func (qb *QueryBuilder) buildFacetAggs() map[string]any {
	return map[string]any{
		"authors": map[string]any{
			"terms": map[string]any{
				"field": "author.keyword",
				"size":  FacetSize,
				"order": map[string]any{"_count": "desc"},
			},
		},
		"genres": map[string]any{
			"terms": map[string]any{
				"field": "genre",
				"size":  FacetSize,
				"order": map[string]any{"_count": "desc"},
			},
		},
		"years": map[string]any{
			"terms": map[string]any{
				"field": "release_year",
				"size":  FacetSize,
				"order": map[string]any{"_key": "desc"},
			},
		},
	}
}

func matchClause(field, text string, boost float64) map[string]any {
	return map[string]any{
		"match": map[string]any{
			field: map[string]any{
				"query": text,
				"boost": boost,
			},
		},
	}
}
