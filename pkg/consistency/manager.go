package consistency

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rx3lixir/book-search-service/internal/db"
	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// maxScanSize - предел выборки идентификаторов из индекса за один запрос
const maxScanSize = 10000

// Manager отвечает за проверку консистентности данных
// между каталогом PostgreSQL и поисковым индексом
type Manager struct {
	store         db.BookStore
	engine        engine.Engine
	log           logger.Logger
	mu            sync.RWMutex
	lastCheck     *CheckResult
	lastCheckTime time.Time
	checkCacheTTL time.Duration
}

// CheckResult результат проверки консистентности
type CheckResult struct {
	IsConsistent    bool          `json:"is_consistent"`
	TotalBooksDB    int           `json:"total_books_db"`
	TotalBooksIndex int           `json:"total_books_index"`
	MissingInIndex  []int64       `json:"missing_in_index,omitempty"`
	MissingInDB     []int64       `json:"missing_in_db,omitempty"`
	CheckDuration   time.Duration `json:"check_duration"`
	Timestamp       time.Time     `json:"timestamp"`
}

// New создает новый менеджер консистентности
func New(store db.BookStore, eng engine.Engine, log logger.Logger) *Manager {
	return &Manager{
		store:         store,
		engine:        eng,
		log:           log,
		checkCacheTTL: 1 * time.Minute,
	}
}

// CheckConsistency сверяет множества идентификаторов книг в каталоге
// и в индексе. Результат кэшируется, чтобы health-проверки не гоняли
// полное сканирование на каждый запрос
func (m *Manager) CheckConsistency(ctx context.Context) (*CheckResult, error) {
	if result := m.getCachedResult(); result != nil {
		m.log.Debug("returning cached consistency check result")
		return result, nil
	}

	m.log.Info("starting consistency check")
	start := time.Now()

	result := &CheckResult{
		Timestamp:    start,
		IsConsistent: true,
	}

	// Получаем все книги из PostgreSQL
	books, err := m.store.GetBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get books from database: %w", err)
	}
	result.TotalBooksDB = len(books)

	// Получаем идентификаторы документов из индекса
	indexIDs, err := m.scanIndexIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan index ids: %w", err)
	}
	result.TotalBooksIndex = len(indexIDs)

	dbIDs := make(map[int64]bool, len(books))
	for _, book := range books {
		dbIDs[book.Id] = true
	}

	for id := range dbIDs {
		if !indexIDs[id] {
			result.MissingInIndex = append(result.MissingInIndex, id)
			result.IsConsistent = false
		}
	}

	for id := range indexIDs {
		if !dbIDs[id] {
			result.MissingInDB = append(result.MissingInDB, id)
			result.IsConsistent = false
		}
	}

	result.CheckDuration = time.Since(start)

	m.setCachedResult(result)

	m.log.Info("consistency check completed",
		"is_consistent", result.IsConsistent,
		"total_db", result.TotalBooksDB,
		"total_index", result.TotalBooksIndex,
		"missing_in_index", len(result.MissingInIndex),
		"missing_in_db", len(result.MissingInDB),
		"duration", result.CheckDuration,
	)

	return result, nil
}

// scanIndexIDs выбирает идентификаторы всех документов индекса
func (m *Manager) scanIndexIDs(ctx context.Context) (map[int64]bool, error) {
	body, err := json.Marshal(map[string]any{
		"size":    maxScanSize,
		"_source": false,
		"query":   map[string]any{"match_all": map[string]any{}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan query: %w", err)
	}

	res, err := m.engine.Search(ctx, body)
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]bool, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected document id %q: %w", hit.ID, err)
		}
		ids[id] = true
	}

	return ids, nil
}

// getCachedResult возвращает закэшированный результат, если он еще актуален
func (m *Manager) getCachedResult() *CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastCheck == nil {
		return nil
	}

	if time.Since(m.lastCheckTime) > m.checkCacheTTL {
		return nil
	}

	return m.lastCheck
}

// setCachedResult сохраняет результат в кэш
func (m *Manager) setCachedResult(result *CheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCheck = result
	m.lastCheckTime = time.Now()
}

// SetCacheTTL устанавливает время жизни кэша результатов
func (m *Manager) SetCacheTTL(ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkCacheTTL = ttl
}
