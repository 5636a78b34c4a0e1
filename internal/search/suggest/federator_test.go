package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/search/mapping"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// fakeEngine отдает канированные ответы по имени агрегации в теле запроса
type fakeEngine struct {
	mu        sync.Mutex
	queries   []map[string]any
	responses map[string]*engine.SearchResponse
	failOn    string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{responses: map[string]*engine.SearchResponse{}}
}

func (f *fakeEngine) Backend() string { return "fake" }
func (f *fakeEngine) Index() string   { return "books" }

func (f *fakeEngine) Ping(ctx context.Context) error { return nil }
func (f *fakeEngine) ClusterHealth(ctx context.Context) (*engine.ClusterHealth, error) {
	return &engine.ClusterHealth{Status: "green"}, nil
}
func (f *fakeEngine) Plugins(ctx context.Context) ([]engine.Plugin, error) { return nil, nil }
func (f *fakeEngine) IndexExists(ctx context.Context) (bool, error)        { return true, nil }
func (f *fakeEngine) CreateIndex(ctx context.Context, mapping []byte) error {
	return nil
}
func (f *fakeEngine) DeleteIndex(ctx context.Context) error { return nil }
func (f *fakeEngine) Count(ctx context.Context) (int64, error) {
	return 0, nil
}
func (f *fakeEngine) Bulk(ctx context.Context, body io.Reader) (*engine.BulkResponse, error) {
	return &engine.BulkResponse{}, nil
}

func (f *fakeEngine) Search(ctx context.Context, body []byte) (*engine.SearchResponse, error) {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.queries = append(f.queries, parsed)
	f.mu.Unlock()

	category := categoryOf(parsed)
	if f.failOn == category {
		return nil, errors.New("engine unavailable")
	}

	if res, ok := f.responses[category]; ok {
		return res, nil
	}
	return &engine.SearchResponse{Aggregations: map[string]engine.Aggregation{}}, nil
}

func (f *fakeEngine) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func categoryOf(body map[string]any) string {
	if aggs, ok := body["aggs"].(map[string]any); ok {
		for name := range aggs {
			return name
		}
	}
	return "titles"
}

func aggResponse(name string, buckets []engine.Bucket) *engine.SearchResponse {
	return &engine.SearchResponse{
		Aggregations: map[string]engine.Aggregation{
			name: {Buckets: buckets},
		},
	}
}

func hitsResponse(sources ...string) *engine.SearchResponse {
	res := &engine.SearchResponse{}
	for i, src := range sources {
		res.Hits.Hits = append(res.Hits.Hits, engine.Hit{
			ID:     string(rune('1' + i)),
			Source: json.RawMessage(src),
		})
	}
	return res
}

func TestSuggestShortQuerySkipsEngine(t *testing.T) {
	eng := newFakeEngine()
	federator := NewFederator(eng, mapping.Capabilities{}, logger.NewNop())

	resp, err := federator.Suggest(context.Background(), Request{Query: "d"})

	require.NoError(t, err)
	assert.Equal(t, 0, eng.queryCount())
	assert.Empty(t, resp.Authors)
	assert.Empty(t, resp.Titles)
	assert.Empty(t, resp.Genres)
	assert.Empty(t, resp.Years)
}

func TestSuggestTextQuery(t *testing.T) {
	eng := newFakeEngine()
	eng.responses["authors"] = aggResponse("authors", []engine.Bucket{
		{Key: "Daniel Hurst", DocCount: 7},
		{Key: "Dan Brown", DocCount: 3},
	})
	eng.responses["genres"] = aggResponse("genres", []engine.Bucket{
		{Key: "dark fantasy", DocCount: 12},
	})
	eng.responses["titles"] = hitsResponse(
		`{"id":42,"title":"The Guest","author":"Daniel Hurst","release_year":2021,"rating":4.1,"genre":["thriller"]}`,
	)

	federator := NewFederator(eng, mapping.Capabilities{}, logger.NewNop())

	resp, err := federator.Suggest(context.Background(), Request{Query: "dan"})
	require.NoError(t, err)

	// Годовая категория не запускалась: в запросе нет годовых подстрок
	assert.Equal(t, 3, eng.queryCount())
	assert.Empty(t, resp.Years)

	require.Len(t, resp.Authors, 2)
	assert.Equal(t, "Daniel Hurst", resp.Authors[0].Name)
	assert.Equal(t, int64(7), resp.Authors[0].Count)
	assert.Equal(t, []string{"dan"}, resp.Authors[0].MatchedTerms)

	require.Len(t, resp.Titles, 1)
	assert.Equal(t, int64(42), resp.Titles[0].ID)
	assert.Equal(t, "The Guest", resp.Titles[0].Title)
	assert.Equal(t, []string{"dan"}, resp.Titles[0].MatchedTerms)

	require.Len(t, resp.Genres, 1)
	assert.Equal(t, "dark fantasy", resp.Genres[0].Name)
}

func TestSuggestYearOnlyQuery(t *testing.T) {
	eng := newFakeEngine()
	eng.responses["years"] = aggResponse("years", []engine.Bucket{
		{Key: float64(1999), DocCount: 4},
		{Key: float64(1994), DocCount: 2},
		{Key: float64(2005), DocCount: 9},
	})

	federator := NewFederator(eng, mapping.Capabilities{}, logger.NewNop())

	resp, err := federator.Suggest(context.Background(), Request{Query: "199"})
	require.NoError(t, err)

	// Только годовая категория: остаточный текст пуст
	assert.Equal(t, 1, eng.queryCount())
	assert.Empty(t, resp.Authors)
	assert.Empty(t, resp.Titles)
	assert.Empty(t, resp.Genres)

	// 2005 отфильтрован: не начинается с "199"
	require.Len(t, resp.Years, 2)
	assert.Equal(t, 1999, resp.Years[0].Year)
	assert.Equal(t, 1994, resp.Years[1].Year)
}

func TestSuggestMixedQuery(t *testing.T) {
	eng := newFakeEngine()
	eng.responses["years"] = aggResponse("years", []engine.Bucket{
		{Key: float64(1994), DocCount: 2},
	})

	federator := NewFederator(eng, mapping.Capabilities{}, logger.NewNop())

	resp, err := federator.Suggest(context.Background(), Request{Query: "king 1994"})
	require.NoError(t, err)

	// Три текстовых категории плюс годовая
	assert.Equal(t, 4, eng.queryCount())
	require.Len(t, resp.Years, 1)
	assert.Equal(t, 1994, resp.Years[0].Year)
}

func TestSuggestErrorFailsWholeRequest(t *testing.T) {
	eng := newFakeEngine()
	eng.failOn = "authors"

	federator := NewFederator(eng, mapping.Capabilities{}, logger.NewNop())

	resp, err := federator.Suggest(context.Background(), Request{Query: "dan"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}
