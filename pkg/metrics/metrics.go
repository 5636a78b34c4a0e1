package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики HTTP API
var (
	// Счетчик всех HTTP запросов
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status"},
	)

	// Гистограмма времени выполнения HTTP запросов
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
)

// Метрики поискового движка
var (
	// Счетчик запросов к движку по типу операции
	EngineRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_requests_total",
			Help: "Total number of search engine requests",
		},
		[]string{"backend", "operation", "status"},
	)

	// Время выполнения поисковых операций
	EngineRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_request_duration_seconds",
			Help:    "Duration of search engine requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "operation"},
	)

	// Количество проиндексированных документов
	IndexedDocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexed_documents_total",
			Help: "Total number of documents indexed",
		},
		[]string{"status"},
	)
)

// Метрики обогащения вариантами имен
var (
	// Счетчик разрешений имен по источнику (cache|wikidata) и результату.
	// Предзагруженная таблица устанавливается в кэш, поэтому попадания
	// по ней учитываются как source=cache
	EnrichmentLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_lookups_total",
			Help: "Total number of name variant lookups",
		},
		[]string{"source", "status"},
	)

	// Размер кэша семейств имен
	NameCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "name_cache_entries",
			Help: "Number of entries in the name variant cache",
		},
	)
)

// Общесервисные метрики
var (
	ServiceUptime = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		[]string{"service"},
	)
)

// RecordHTTPRequest записывает метрики одного HTTP запроса
func RecordHTTPRequest(handler, method, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(handler, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(handler, method).Observe(duration.Seconds())
}

// RecordEngineRequest записывает метрики одного запроса к движку
func RecordEngineRequest(backend, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EngineRequestsTotal.WithLabelValues(backend, operation, status).Inc()
	EngineRequestDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// UpdateServiceUptime обновляет метрику времени работы сервиса
func UpdateServiceUptime(serviceName string, startTime time.Time) {
	ServiceUptime.WithLabelValues(serviceName).Set(time.Since(startTime).Seconds())
}
