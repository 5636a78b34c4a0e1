package suggest

import (
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/internal/search/models"
)

// QueryBuilder строит четыре категорийных запроса. Фонетические клаузы
// включаются только когда движок поддерживает фонетический анализ -
// иначе запрос к несуществующему полю вернул бы ошибку.
type QueryBuilder struct {
	caps mapping.Capabilities
}

func NewQueryBuilder(caps mapping.Capabilities) *QueryBuilder {
	return &QueryBuilder{caps: caps}
}

// BuildAuthorsQuery - запрос категории авторов: агрегация top-5 значений
// автора по количеству документов. Применяет фильтры жанров и лет,
// но НЕ фильтр авторов - иначе выбранный автор задавил бы собственные
// подсказки своей категории.
func (qb *QueryBuilder) BuildAuthorsQuery(text string, filters models.FilterState) map[string]any {
	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"must":   []any{qb.buildAuthorTextClause(text)},
				"filter": qb.buildFilterClauses(filters, dimensionAuthors),
			},
		},
		"aggs": map[string]any{
			"authors": map[string]any{
				"terms": map[string]any{
					"field": "author.keyword",
					"size":  MaxPerCategory,
					"order": map[string]any{"_count": "desc"},
				},
			},
		},
	}
}

// BuildTitlesQuery - запрос категории названий: top-5 реальных документов.
// Совпадение по автору тоже поднимает книгу в названия, но с меньшим весом.
// Названия - не фильтруемое измерение, поэтому применяются все три фильтра.
func (qb *QueryBuilder) BuildTitlesQuery(text string, filters models.FilterState) map[string]any {
	should := []any{
		matchClause("title.autocomplete", text, 2.0),
		matchClause("author.autocomplete", text, 1.0),
		matchClause("name_variants", text, 0.8),
	}
	if qb.caps.Phonetic {
		should = append(should,
			matchClause("title.phonetic", text, 0.5),
			matchClause("author.phonetic", text, 0.5),
		)
	}

	return map[string]any{
		"size": MaxPerCategory,
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               qb.buildFilterClauses(filters, dimensionNone),
			},
		},
	}
}

// BuildGenresQuery - запрос категории жанров: каждый терм остаточного
// запроса префиксно матчится на тег жанра без учета регистра.
// Применяет фильтры авторов и лет, но не жанров.
func (qb *QueryBuilder) BuildGenresQuery(terms []string, filters models.FilterState) map[string]any {
	should := make([]any, 0, len(terms))
	for _, term := range terms {
		should = append(should, map[string]any{
			"prefix": map[string]any{
				"genre": map[string]any{
					"value":            term,
					"case_insensitive": true,
				},
			},
		})
	}

	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               qb.buildFilterClauses(filters, dimensionGenres),
			},
		},
		"aggs": map[string]any{
			"genres": map[string]any{
				"terms": map[string]any{
					"field": "genre",
					"size":  MaxPerCategory,
					"order": map[string]any{"_count": "desc"},
				},
			},
		},
	}
}

// BuildYearsQuery - запрос категории лет: префиксный матч каждой годовой
// подстроки на автокомплит поле года, агрегация до 10 лет по убыванию.
// Применяет фильтры авторов и жанров, но не лет.
func (qb *QueryBuilder) BuildYearsQuery(yearTokens []string, filters models.FilterState) map[string]any {
	should := make([]any, 0, len(yearTokens))
	for _, token := range yearTokens {
		should = append(should, matchClause("release_year.autocomplete", token, 1.0))
	}

	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               qb.buildFilterClauses(filters, dimensionYears),
			},
		},
		"aggs": map[string]any{
			"years": map[string]any{
				"terms": map[string]any{
					"field": "release_year",
					"size":  MaxYearBuckets,
					"order": map[string]any{"_key": "desc"},
				},
			},
		},
	}
}

// buildAuthorTextClause - текстовая клауза запроса авторов: префиксное поле
// автора, варианты имен с весом 0.8 и фонетическое поле с весом 0.5
func (qb *QueryBuilder) buildAuthorTextClause(text string) map[string]any {
	should := []any{
		matchClause("author.autocomplete", text, 1.0),
		matchClause("name_variants", text, 0.8),
	}
	if qb.caps.Phonetic {
		should = append(should, matchClause("author.phonetic", text, 0.5))
	}

	return map[string]any{
		"bool": map[string]any{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

// Измерение, чей собственный фильтр исключается из запроса категории.
// Асимметричная фильтрация: выпадающий список категории показывает все
// значения, подходящие под фильтры остальных измерений.
type dimension int

const (
	dimensionNone dimension = iota
	dimensionAuthors
	dimensionGenres
	dimensionYears
)

// buildFilterClauses строит жесткие фильтры из активного состояния,
// исключая собственное измерение категории
func (qb *QueryBuilder) buildFilterClauses(filters models.FilterState, exclude dimension) []any {
	clauses := []any{}

	if exclude != dimensionAuthors && len(filters.Authors) > 0 {
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"author.keyword": filters.Authors},
		})
	}
	if exclude != dimensionGenres && len(filters.Genres) > 0 {
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"genre": filters.Genres},
		})
	}
	if exclude != dimensionYears && len(filters.Years) > 0 {
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"release_year": filters.Years},
		})
	}

	return clauses
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
