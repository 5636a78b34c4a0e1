package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/book-search-service/internal/config"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

func newTestOpenSearch(t *testing.T, handler http.Handler) (*OpenSearchEngine, *httptest.Server) {
	t.Helper()

	// Клиент перед первым вызовом API запрашивает GET / для проверки
	// кластера, отвечаем на него сами и не пускаем в тестовый обработчик
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"version": {"number": "2.11.0", "distribution": "opensearch"}}`)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	eng, err := NewOpenSearch(config.OpenSearchParams{URL: server.URL}, "books", logger.NewNop())
	require.NoError(t, err)

	return eng, server
}

func TestOpenSearchSearch(t *testing.T) {
	eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/_search", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("track_total_hits"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"took": 3,
			"hits": {
				"total": {"value": 1, "relation": "eq"},
				"hits": [{"_id": "42", "_source": {"title": "The Guest"}}]
			}
		}`)
	}))

	res, err := eng.Search(context.Background(), []byte(`{"query":{"match_all":{}}}`))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "42", res.Hits.Hits[0].ID)
}

func TestOpenSearchSearchError(t *testing.T) {
	eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"type": "parsing_exception", "reason": "unknown field"}}`)
	}))

	_, err := eng.Search(context.Background(), []byte(`{"bogus":{}}`))
	require.Error(t, err)

	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "parsing_exception", engineErr.Type)
	assert.Equal(t, "opensearch", engineErr.Backend)
}

func TestOpenSearchCount(t *testing.T) {
	eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/_count", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 128}`)
	}))

	count, err := eng.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(128), count)
}

func TestOpenSearchPlugins(t *testing.T) {
	eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_cat/plugins", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "node-1", "component": "analysis-phonetic", "version": "2.11.0"}
		]`)
	}))

	plugins, err := eng.Plugins(context.Background())
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	assert.Equal(t, "analysis-phonetic", plugins[0].Component)
}

func TestOpenSearchIndexExists(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/books", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))

		exists, err := eng.IndexExists(context.Background())
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Missing", func(t *testing.T) {
		eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		exists, err := eng.IndexExists(context.Background())
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestOpenSearchDeleteIndexTolerates404(t *testing.T) {
	eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"type": "index_not_found_exception", "reason": "no such index"}}`)
	}))

	assert.NoError(t, eng.DeleteIndex(context.Background()))
}

func TestOpenSearchBulk(t *testing.T) {
	eng, _ := newTestOpenSearch(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/_bulk", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("refresh"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"took": 5, "errors": false, "items": [{"index": {"_id": "1", "status": 201}}]}`)
	}))

	body := strings.NewReader(`{"index":{"_id":"1"}}` + "\n" + `{"title":"The Guest"}` + "\n")

	res, err := eng.Bulk(context.Background(), body)
	require.NoError(t, err)
	assert.False(t, res.Errors)
	require.Len(t, res.Items, 1)
}
