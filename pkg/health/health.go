package health

import (
	"context"
	"sync"
	"time"
)

// Статусы проверок здоровья
const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Checker - одна проверка здоровья
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckerFunc адаптер функции к интерфейсу Checker
type CheckerFunc func(ctx context.Context) CheckResult

func (f CheckerFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// CheckResult результат одной проверки
type CheckResult struct {
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Response агрегированный результат всех проверок
type Response struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Health агрегирует именованные проверки здоровья сервиса
type Health struct {
	serviceName string
	version     string
	timeout     time.Duration
	mu          sync.RWMutex
	checks      map[string]Checker
}

// HealthOption настраивает Health
type HealthOption func(*Health)

func WithTimeout(timeout time.Duration) HealthOption {
	return func(h *Health) {
		h.timeout = timeout
	}
}

// New создает новый агрегатор проверок здоровья
func New(serviceName, version string, opts ...HealthOption) *Health {
	h := &Health{
		serviceName: serviceName,
		version:     version,
		timeout:     5 * time.Second,
		checks:      make(map[string]Checker),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// AddCheck регистрирует именованную проверку
func (h *Health) AddCheck(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = checker
}

// Check выполняет все проверки параллельно. Общий статус DOWN,
// если хотя бы одна проверка провалилась
func (h *Health) Check(ctx context.Context) Response {
	h.mu.RLock()
	checks := make(map[string]Checker, len(h.checks))
	for name, checker := range h.checks {
		checks[name] = checker
	}
	h.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	response := Response{
		Status:    StatusUp,
		Service:   h.serviceName,
		Version:   h.version,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(checks)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checks {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := checker.Check(checkCtx)

			mu.Lock()
			defer mu.Unlock()
			response.Checks[name] = result
			if result.Status == StatusDown {
				response.Status = StatusDown
			}
		}(name, checker)
	}

	wg.Wait()

	return response
}
