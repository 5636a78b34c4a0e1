package dataloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rx3lixir/book-search-service/internal/db"
	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/internal/enrich"
	"github.com/rx3lixir/book-search-service/internal/search/models"
	"github.com/rx3lixir/book-search-service/pkg/logger"
	"github.com/rx3lixir/book-search-service/pkg/metrics"
)

const (
	batchSize  = 100
	maxRetries = 3
)

// Loader переносит каталог книг из PostgreSQL в поисковый индекс:
// читает, обогащает вариантами имен и грузит батчами через bulk API
type Loader struct {
	storer   db.BookStore
	engine   engine.Engine
	enricher *enrich.Enricher
	logger   logger.Logger
}

func NewLoader(storer db.BookStore, eng engine.Engine, enricher *enrich.Enricher, logger logger.Logger) *Loader {
	return &Loader{
		storer:   storer,
		engine:   eng,
		enricher: enricher,
		logger:   logger,
	}
}

// InitializeIndexData синхронизирует данные между PostgreSQL и индексом.
// Если индекс уже содержит документы, загрузка пропускается
func (l *Loader) InitializeIndexData(ctx context.Context) error {
	l.logger.Info("Initializing search index from PostgreSQL...")

	books, err := l.storer.GetBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get books from PostgreSQL: %w", err)
	}

	if len(books) == 0 {
		l.logger.Info("No books found in PostgreSQL, skipping index initialization")
		return nil
	}

	// Проверяем, есть ли уже данные в индексе
	existing, err := l.engine.Count(ctx)
	if err != nil {
		l.logger.Warn("Failed to check existing index data, proceeding with initialization", "error", err)
	} else if existing > 0 {
		l.logger.Info("Index already contains data, skipping bulk initialization",
			"existing_count", existing)
		return nil
	}

	return l.loadBooks(ctx, books)
}

// ForceSyncData принудительно синхронизирует данные, предварительно
// очистив индекс пересозданием. Пересоздание делает вызывающий код,
// здесь только загрузка
func (l *Loader) ForceSyncData(ctx context.Context) error {
	l.logger.Info("Starting forced data synchronization...")

	books, err := l.storer.GetBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get books from PostgreSQL: %w", err)
	}

	l.logger.Info("Retrieved books from PostgreSQL", "count", len(books))

	if len(books) == 0 {
		l.logger.Info("No books to sync")
		return nil
	}

	return l.loadBooks(ctx, books)
}

// CheckSyncStatus проверяет состояние синхронизации данных
func (l *Loader) CheckSyncStatus(ctx context.Context) (*SyncStatus, error) {
	pgCount, err := l.storer.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL books count: %w", err)
	}

	indexCount, err := l.engine.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get index books count: %w", err)
	}

	status := &SyncStatus{
		PostgreSQLCount: int(pgCount),
		IndexCount:      int(indexCount),
		InSync:          pgCount == indexCount,
		Difference:      int(pgCount - indexCount),
	}

	return status, nil
}

// loadBooks обогащает документы и грузит их батчами с retry логикой.
// Провал одного батча не останавливает остальные
func (l *Loader) loadBooks(ctx context.Context, books []*db.Book) error {
	docs := models.FromDBBooks(books)
	l.enricher.EnrichBooks(ctx, docs)

	totalBooks := len(docs)
	successCount := 0
	errorCount := 0

	for i := 0; i < totalBooks; i += batchSize {
		end := i + batchSize
		if end > totalBooks {
			end = totalBooks
		}

		batch := docs[i:end]
		batchNum := (i / batchSize) + 1
		totalBatches := (totalBooks + batchSize - 1) / batchSize

		l.logger.Info("Processing batch",
			"batch", batchNum,
			"total_batches", totalBatches,
			"batch_size", len(batch))

		indexed, err := l.indexBatchWithRetry(ctx, batch, maxRetries)
		if err != nil {
			l.logger.Error("Failed to index batch after retries",
				"batch", batchNum,
				"batch_size", len(batch),
				"error", err)
			errorCount += len(batch)
			continue
		}

		successCount += indexed
		errorCount += len(batch) - indexed
		l.logger.Debug("Batch indexed successfully",
			"batch", batchNum,
			"books_in_batch", len(batch))
	}

	metrics.IndexedDocumentsTotal.WithLabelValues("success").Add(float64(successCount))
	metrics.IndexedDocumentsTotal.WithLabelValues("error").Add(float64(errorCount))

	if errorCount > 0 {
		l.logger.Warn("Index initialization completed with errors",
			"total_books", totalBooks,
			"successfully_indexed", successCount,
			"failed_to_index", errorCount,
			"success_rate", fmt.Sprintf("%.1f%%", float64(successCount)/float64(totalBooks)*100))

		// Считаем провалом только полный ноль
		if successCount == 0 {
			return fmt.Errorf("failed to index any books: %d total failures", errorCount)
		}

		return nil
	}

	l.logger.Info("Index initialization completed successfully",
		"books_indexed", successCount,
		"total_batches", (totalBooks+batchSize-1)/batchSize)

	return nil
}

// indexBatchWithRetry пытается загрузить батч с повторными попытками
// и экспоненциальной задержкой. Возвращает число успешных документов
func (l *Loader) indexBatchWithRetry(ctx context.Context, batch []*models.BookDocument, maxAttempts int) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

		indexed, err := l.bulkIndex(retryCtx, batch)
		cancel()

		if err == nil {
			if attempt > 1 {
				l.logger.Info("Batch indexed successfully after retry",
					"attempt", attempt,
					"books_count", len(batch))
			}
			return indexed, nil
		}

		lastErr = err
		l.logger.Warn("Failed to index batch",
			"attempt", attempt,
			"max_retries", maxAttempts,
			"books_count", len(batch),
			"error", err)

		if attempt < maxAttempts {
			backoffDuration := backoffDelay(attempt)
			l.logger.Debug("Retrying after backoff",
				"backoff_duration", backoffDuration,
				"next_attempt", attempt+1)

			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoffDuration):
			}
		}
	}

	return 0, fmt.Errorf("failed after %d attempts, last error: %w", maxAttempts, lastErr)
}

// backoffDelay считает экспоненциальную задержку со случайным джиттером ±25%
func backoffDelay(attempt int) time.Duration {
	delay := float64(attempt*attempt) * float64(time.Second)

	jitterRange := delay * 0.25
	jittered := delay + (2*jitterRange*math.Mod(float64(time.Now().UnixNano())/1e9, 1.0) - jitterRange)

	return time.Duration(jittered)
}

// bulkIndex собирает NDJSON тело и выполняет один bulk запрос.
// Ошибки отдельных документов логируются, но не валят весь батч
func (l *Loader) bulkIndex(ctx context.Context, batch []*models.BookDocument) (int, error) {
	body, err := buildBulkBody(batch)
	if err != nil {
		return 0, err
	}

	res, err := l.engine.Bulk(ctx, body)
	if err != nil {
		return 0, fmt.Errorf("bulk request failed: %w", err)
	}

	if !res.Errors {
		return len(batch), nil
	}

	indexed := 0
	for _, item := range res.Items {
		if item.Index.Error != nil {
			l.logger.Error("Failed to index document",
				"id", item.Index.ID,
				"status", item.Index.Status,
				"type", item.Index.Error.Type,
				"reason", item.Index.Error.Reason)
			continue
		}
		indexed++
	}

	return indexed, nil
}

// buildBulkBody сериализует батч в NDJSON: строка действия с _id,
// затем строка документа
func buildBulkBody(batch []*models.BookDocument) (*bytes.Buffer, error) {
	var buf bytes.Buffer

	for _, doc := range batch {
		action := map[string]any{
			"index": map[string]any{
				"_id": strconv.FormatInt(doc.ID, 10),
			},
		}

		actionLine, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal bulk action for book %d: %w", doc.ID, err)
		}

		docLine, err := json.Marshal(doc.PrepareForIndex())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal book %d: %w", doc.ID, err)
		}

		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	return &buf, nil
}
