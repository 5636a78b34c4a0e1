package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rx3lixir/book-search-service/internal/search/models"
)

func TestParseFilters(t *testing.T) {
	t.Run("AllDimensions", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/search?authors=Daniel+Hurst,Dan+Brown&genres=thriller&years=1994,2001", nil)

		filters := parseFilters(r)

		assert.Equal(t, []string{"Daniel Hurst", "Dan Brown"}, filters.Authors)
		assert.Equal(t, []string{"thriller"}, filters.Genres)
		assert.Equal(t, []int{1994, 2001}, filters.Years)
	})

	t.Run("Empty", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/search", nil)

		filters := parseFilters(r)

		assert.True(t, filters.IsEmpty())
	})

	t.Run("NonNumericYearsDropped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/search?years=1994,abc,2001", nil)

		filters := parseFilters(r)

		assert.Equal(t, []int{1994, 2001}, filters.Years)
	})

	t.Run("OnlyGarbageYearsMeansNoFilter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/search?years=abc,,", nil)

		filters := parseFilters(r)

		assert.Nil(t, filters.Years)
	})

	t.Run("WhitespaceTrimmed", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/search?genres=thriller,+mystery+,", nil)

		filters := parseFilters(r)

		assert.Equal(t, []string{"thriller", "mystery"}, filters.Genres)
	})
}

func TestParseIntParam(t *testing.T) {
	assert.Equal(t, 1, parseIntParam("", 1))
	assert.Equal(t, 5, parseIntParam("5", 1))
	assert.Equal(t, 12, parseIntParam("abc", 12))
	assert.Equal(t, 12, parseIntParam("0", 12))
	assert.Equal(t, 12, parseIntParam("-4", 12))
}

func TestFilterStateIsEmpty(t *testing.T) {
	assert.True(t, models.FilterState{}.IsEmpty())
	assert.False(t, models.FilterState{Genres: []string{"thriller"}}.IsEmpty())
}
