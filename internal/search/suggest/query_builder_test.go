package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/internal/search/models"
)

func filterFields(clauses []any) []string {
	fields := []string{}
	for _, clause := range clauses {
		terms := clause.(map[string]any)["terms"].(map[string]any)
		for field := range terms {
			fields = append(fields, field)
		}
	}
	return fields
}

func allFilters() models.FilterState {
	return models.FilterState{
		Authors: []string{"Daniel Hurst"},
		Genres:  []string{"thriller"},
		Years:   []int{1994},
	}
}

func TestAuthorsQueryExcludesOwnFilter(t *testing.T) {
	qb := NewQueryBuilder(mapping.Capabilities{})

	body := qb.BuildAuthorsQuery("dan", allFilters())

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	fields := filterFields(boolQuery["filter"].([]any))

	assert.NotContains(t, fields, "author.keyword")
	assert.Contains(t, fields, "genre")
	assert.Contains(t, fields, "release_year")
}

func TestTitlesQueryAppliesAllFilters(t *testing.T) {
	qb := NewQueryBuilder(mapping.Capabilities{})

	body := qb.BuildTitlesQuery("dan", allFilters())

	assert.Equal(t, MaxPerCategory, body["size"])

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	fields := filterFields(boolQuery["filter"].([]any))

	assert.ElementsMatch(t, []string{"author.keyword", "genre", "release_year"}, fields)
}

func TestGenresQueryExcludesOwnFilter(t *testing.T) {
	qb := NewQueryBuilder(mapping.Capabilities{})

	body := qb.BuildGenresQuery([]string{"thr"}, allFilters())

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	fields := filterFields(boolQuery["filter"].([]any))

	assert.NotContains(t, fields, "genre")
	assert.Contains(t, fields, "author.keyword")
	assert.Contains(t, fields, "release_year")

	// Префиксные клаузы без учета регистра, по одной на терм
	should := boolQuery["should"].([]any)
	require.Len(t, should, 1)
	prefix := should[0].(map[string]any)["prefix"].(map[string]any)["genre"].(map[string]any)
	assert.Equal(t, "thr", prefix["value"])
	assert.Equal(t, true, prefix["case_insensitive"])
}

func TestYearsQueryExcludesOwnFilter(t *testing.T) {
	qb := NewQueryBuilder(mapping.Capabilities{})

	body := qb.BuildYearsQuery([]string{"199"}, allFilters())

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	fields := filterFields(boolQuery["filter"].([]any))

	assert.NotContains(t, fields, "release_year")
	assert.Contains(t, fields, "author.keyword")
	assert.Contains(t, fields, "genre")

	aggs := body["aggs"].(map[string]any)["years"].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, MaxYearBuckets, aggs["size"])
	assert.Equal(t, map[string]any{"_key": "desc"}, aggs["order"])
}

func TestEmptyFiltersProduceNoClauses(t *testing.T) {
	qb := NewQueryBuilder(mapping.Capabilities{})

	body := qb.BuildAuthorsQuery("dan", models.FilterState{})
	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)

	assert.Empty(t, boolQuery["filter"].([]any))
}

func TestPhoneticClausesToggle(t *testing.T) {
	shouldFields := func(body map[string]any) []string {
		boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
		fields := []string{}
		for _, clause := range boolQuery["should"].([]any) {
			match := clause.(map[string]any)["match"].(map[string]any)
			for field := range match {
				fields = append(fields, field)
			}
		}
		return fields
	}

	t.Run("WithPhonetic", func(t *testing.T) {
		qb := NewQueryBuilder(mapping.Capabilities{Phonetic: true})
		fields := shouldFields(qb.BuildTitlesQuery("dan", models.FilterState{}))

		assert.Contains(t, fields, "title.phonetic")
		assert.Contains(t, fields, "author.phonetic")
	})

	t.Run("WithoutPhonetic", func(t *testing.T) {
		qb := NewQueryBuilder(mapping.Capabilities{})
		fields := shouldFields(qb.BuildTitlesQuery("dan", models.FilterState{}))

		assert.NotContains(t, fields, "title.phonetic")
		assert.NotContains(t, fields, "author.phonetic")
	})
}
