package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/pkg/consistency"
)

// PostgresChecker проверка PostgreSQL через pgxpool
func PostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		start := time.Now()

		// Пингуем базу
		err := pool.Ping(ctx)
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		// Получаем статистику пула
		stats := pool.Stat()

		return CheckResult{
			Status: StatusUp,
			Details: map[string]any{
				"duration_ms":    duration.Milliseconds(),
				"total_conns":    stats.TotalConns(),
				"idle_conns":     stats.IdleConns(),
				"acquired_conns": stats.AcquiredConns(),
			},
		}
	})
}

// EngineChecker проверка поискового движка: пинг плюс статус кластера.
// Красный кластер роняет проверку, желтый допустим для single-node
func EngineChecker(eng engine.Engine) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		start := time.Now()

		if err := eng.Ping(ctx); err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"backend":     eng.Backend(),
					"duration_ms": time.Since(start).Milliseconds(),
				},
			}
		}

		cluster, err := eng.ClusterHealth(ctx)
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"backend":     eng.Backend(),
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		status := StatusUp
		if !cluster.IsHealthy() {
			status = StatusDown
		}

		return CheckResult{
			Status: status,
			Details: map[string]any{
				"backend":        eng.Backend(),
				"cluster_status": cluster.Status,
				"cluster_name":   cluster.ClusterName,
				"duration_ms":    duration.Milliseconds(),
			},
		}
	})
}

// ConsistencyChecker проверка расхождений между каталогом и индексом.
// Допускает до maxMissing отсутствующих документов
func ConsistencyChecker(manager *consistency.Manager, maxMissing int, timeout time.Duration) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		result, err := manager.CheckConsistency(checkCtx)
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		missing := len(result.MissingInIndex) + len(result.MissingInDB)
		status := StatusUp
		if !result.IsConsistent && missing > maxMissing {
			status = StatusDown
		}

		return CheckResult{
			Status: status,
			Details: map[string]any{
				"is_consistent":    result.IsConsistent,
				"total_books_db":   result.TotalBooksDB,
				"total_books_idx":  result.TotalBooksIndex,
				"missing_in_index": len(result.MissingInIndex),
				"missing_in_db":    len(result.MissingInDB),
				"duration_ms":      duration.Milliseconds(),
			},
		}
	})
}
