package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/rx3lixir/book-search-service/pkg/logger"
	"github.com/rx3lixir/book-search-service/pkg/metrics"
)

// VariantSource - откуда клиент берет варианты имен
type VariantSource interface {
	QueryVariants(ctx context.Context, name string) ([]string, error)
}

// Resolver разрешает имя в его семейство альтернативных написаний.
// Никогда не возвращает ошибку - любой сбой внешнего эндпоинта деградирует
// в пустой результат с негативной записью в кэше.
type Resolver struct {
	cache  *Cache
	client VariantSource
	delay  time.Duration
	logger logger.Logger

	// Сериализует внешние запросы: параллельные промахи по одному имени
	// схлопываются в один сетевой вызов (второй найдет запись в кэше).
	lookupMu sync.Mutex
	lastCall time.Time
}

// NewResolver создает резолвер. client может быть nil - тогда работает
// только предзагруженная таблица и негативное кэширование.
func NewResolver(cache *Cache, client VariantSource, interCallDelay time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		cache:  cache,
		client: client,
		delay:  interCallDelay,
		logger: log,
	}
}

// Resolve возвращает варианты написания имени. Вход нормализуется;
// пустое имя не требует обращений ни к кэшу, ни к сети.
func (r *Resolver) Resolve(ctx context.Context, firstName string) []string {
	name := normalizeName(firstName)
	if name == "" {
		return nil
	}

	if variants, ok := r.cache.Lookup(name); ok {
		metrics.EnrichmentLookupsTotal.WithLabelValues("cache", "hit").Inc()
		return variants
	}

	r.lookupMu.Lock()
	defer r.lookupMu.Unlock()

	// Перепроверяем после захвата: параллельный вызов мог уже разрешить имя
	if variants, ok := r.cache.Lookup(name); ok {
		metrics.EnrichmentLookupsTotal.WithLabelValues("cache", "hit").Inc()
		return variants
	}

	if r.client == nil {
		// Эндпоинт отключен - кэшируем пустой результат, чтобы не
		// проверять повторно
		r.cache.Put(name, nil)
		metrics.EnrichmentLookupsTotal.WithLabelValues("cache", "miss").Inc()
		return nil
	}

	r.throttle()

	variants, err := r.client.QueryVariants(ctx, name)
	if err != nil {
		// Негативный кэш: повторные медленные запросы по тому же имени
		// исключены в пределах жизни процесса
		r.logger.Warn("Name variant lookup failed, caching empty result",
			"name", name,
			"error", err,
		)
		r.cache.Put(name, nil)
		metrics.EnrichmentLookupsTotal.WithLabelValues("wikidata", "error").Inc()
		return nil
	}

	// Замыкание семейства: одно разрешение наполняет записи для всех
	// членов. Имена образуют симметричные классы эквивалентности.
	family := append([]string{name}, variants...)
	r.cache.PutFamily(family)

	metrics.EnrichmentLookupsTotal.WithLabelValues("wikidata", "hit").Inc()
	metrics.NameCacheSize.Set(float64(r.cache.Len()))

	r.logger.Debug("Name variants resolved",
		"name", name,
		"variants", variants,
	)

	// PutFamily не перезаписывает предзагруженную запись для самого имени,
	// поэтому отдаем то, что реально лежит в кэше
	cached, _ := r.cache.Lookup(name)
	return cached
}

// throttle выдерживает фиксированную паузу между внешними вызовами
func (r *Resolver) throttle() {
	if r.delay <= 0 {
		return
	}

	if elapsed := time.Since(r.lastCall); elapsed < r.delay {
		time.Sleep(r.delay - elapsed)
	}
	r.lastCall = time.Now()
}
