package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// MetricsServer HTTP сервер для метрик Prometheus
type MetricsServer struct {
	server    *http.Server
	logger    logger.Logger
	startTime time.Time
}

// NewMetricsServer создает новый сервер метрик
func NewMetricsServer(addr string, log logger.Logger) *MetricsServer {
	if addr == "" {
		addr = ":8091"
	}

	mux := http.NewServeMux()

	// Основной эндпоинт для метрик
	mux.Handle("/metrics", promhttp.Handler())

	// Дополнительные эндпоинты для отладки
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &MetricsServer{
		server:    server,
		logger:    log,
		startTime: time.Now(),
	}
}

// Start запускает сервер метрик
func (ms *MetricsServer) Start() error {
	ms.logger.Info("Starting metrics server",
		"address", ms.server.Addr,
		"endpoints", []string{"/metrics", "/health"},
	)

	if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server failed: %w", err)
	}

	return nil
}

// Shutdown грациозно останавливает сервер
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	ms.logger.Info("Shutting down metrics server")
	return ms.server.Shutdown(ctx)
}

// StartUptimeUpdater запускает горутину для обновления метрики uptime.
// Горутина живет до отмены контекста
func (ms *MetricsServer) StartUptimeUpdater(ctx context.Context, serviceName string) {
	go ms.runUptimeUpdater(ctx, serviceName, 30*time.Second)
}

func (ms *MetricsServer) runUptimeUpdater(ctx context.Context, serviceName string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateServiceUptime(serviceName, ms.startTime)
		}
	}
}
