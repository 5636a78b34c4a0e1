package dataloader

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/book-search-service/internal/db"
	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/enrich"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

type fakeStore struct {
	books []*db.Book
}

func (f *fakeStore) CreateBook(ctx context.Context, book *db.Book) (*db.Book, error) {
	return book, nil
}
func (f *fakeStore) GetBooks(ctx context.Context) ([]*db.Book, error) { return f.books, nil }
func (f *fakeStore) GetBookByID(ctx context.Context, id int64) (*db.Book, error) {
	return nil, nil
}
func (f *fakeStore) DeleteBook(ctx context.Context, id int64) error { return nil }
func (f *fakeStore) CountBooks(ctx context.Context) (int64, error) {
	return int64(len(f.books)), nil
}

// bulkEngine записывает тела bulk запросов для проверки NDJSON
type bulkEngine struct {
	count      int64
	bulkBodies []string
	bulkRes    *engine.BulkResponse
}

func (e *bulkEngine) Backend() string                { return "fake" }
func (e *bulkEngine) Index() string                  { return "books" }
func (e *bulkEngine) Ping(ctx context.Context) error { return nil }
func (e *bulkEngine) ClusterHealth(ctx context.Context) (*engine.ClusterHealth, error) {
	return &engine.ClusterHealth{Status: "green"}, nil
}
func (e *bulkEngine) Plugins(ctx context.Context) ([]engine.Plugin, error)  { return nil, nil }
func (e *bulkEngine) IndexExists(ctx context.Context) (bool, error)         { return true, nil }
func (e *bulkEngine) CreateIndex(ctx context.Context, mapping []byte) error { return nil }
func (e *bulkEngine) DeleteIndex(ctx context.Context) error                 { return nil }
func (e *bulkEngine) Count(ctx context.Context) (int64, error)              { return e.count, nil }
func (e *bulkEngine) Search(ctx context.Context, body []byte) (*engine.SearchResponse, error) {
	return &engine.SearchResponse{}, nil
}

func (e *bulkEngine) Bulk(ctx context.Context, body io.Reader) (*engine.BulkResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	e.bulkBodies = append(e.bulkBodies, string(data))

	if e.bulkRes != nil {
		return e.bulkRes, nil
	}
	return &engine.BulkResponse{}, nil
}

func newTestLoader(store db.BookStore, eng engine.Engine) *Loader {
	cache := enrich.NewCache()
	cache.PutFamily([]string{"daniel", "dan"})

	resolver := enrich.NewResolver(cache, nil, 0, logger.NewNop())
	enricher := enrich.NewEnricher(resolver, logger.NewNop())

	return NewLoader(store, eng, enricher, logger.NewNop())
}

func testBook(id int64, author string) *db.Book {
	return &db.Book{
		Id:        id,
		Title:     "Book",
		Author:    author,
		CreatedAt: time.Now(),
	}
}

func TestInitializeIndexDataBuildsEnrichedBulk(t *testing.T) {
	store := &fakeStore{books: []*db.Book{testBook(1, "Daniel Hurst")}}
	eng := &bulkEngine{}

	loader := newTestLoader(store, eng)

	require.NoError(t, loader.InitializeIndexData(context.Background()))
	require.Len(t, eng.bulkBodies, 1)

	scanner := bufio.NewScanner(strings.NewReader(eng.bulkBodies[0]))

	// Первая строка - действие с _id
	require.True(t, scanner.Scan())
	var action map[string]map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &action))
	assert.Equal(t, "1", action["index"]["_id"])

	// Вторая строка - обогащенный документ
	require.True(t, scanner.Scan())
	var doc map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc))
	assert.Equal(t, "daniel", doc["author_first_name"])
	assert.Equal(t, []any{"dan"}, doc["name_variants"])
}

func TestInitializeIndexDataSkipsPopulatedIndex(t *testing.T) {
	store := &fakeStore{books: []*db.Book{testBook(1, "Daniel Hurst")}}
	eng := &bulkEngine{count: 5}

	loader := newTestLoader(store, eng)

	require.NoError(t, loader.InitializeIndexData(context.Background()))
	assert.Empty(t, eng.bulkBodies)
}

func TestInitializeIndexDataEmptyCatalog(t *testing.T) {
	store := &fakeStore{}
	eng := &bulkEngine{}

	loader := newTestLoader(store, eng)

	require.NoError(t, loader.InitializeIndexData(context.Background()))
	assert.Empty(t, eng.bulkBodies)
}

func TestForceSyncDataLoadsEvenWhenPopulated(t *testing.T) {
	store := &fakeStore{books: []*db.Book{testBook(1, "Daniel Hurst"), testBook(2, "Anna Smith")}}
	eng := &bulkEngine{count: 5}

	loader := newTestLoader(store, eng)

	require.NoError(t, loader.ForceSyncData(context.Background()))
	require.Len(t, eng.bulkBodies, 1)
}

func TestPartialBulkFailureDoesNotAbort(t *testing.T) {
	store := &fakeStore{books: []*db.Book{testBook(1, "A B"), testBook(2, "C D")}}

	res := &engine.BulkResponse{Errors: true}
	res.Items = make([]engine.BulkItem, 2)
	res.Items[0].Index.ID = "1"
	res.Items[0].Index.Status = 201
	res.Items[1].Index.ID = "2"
	res.Items[1].Index.Status = 400
	res.Items[1].Index.Error = &struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}{Type: "mapper_parsing_exception", Reason: "bad field"}

	eng := &bulkEngine{bulkRes: res}
	loader := newTestLoader(store, eng)

	// Частичный успех не считается ошибкой загрузки
	require.NoError(t, loader.InitializeIndexData(context.Background()))
}

func TestCheckSyncStatus(t *testing.T) {
	store := &fakeStore{books: []*db.Book{testBook(1, "A B"), testBook(2, "C D")}}
	eng := &bulkEngine{count: 1}

	loader := newTestLoader(store, eng)

	status, err := loader.CheckSyncStatus(context.Background())
	require.NoError(t, err)

	assert.False(t, status.InSync)
	assert.Equal(t, 2, status.PostgreSQLCount)
	assert.Equal(t, 1, status.IndexCount)
	assert.Equal(t, 1, status.Difference)
}
