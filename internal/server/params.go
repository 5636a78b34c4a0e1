package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rx3lixir/book-search-service/internal/search/models"
	"github.com/rx3lixir/book-search-service/pkg/metrics"
)

// parseFilters разбирает фильтры из query параметров.
// Списки передаются через запятую: ?authors=a,b&genres=x&years=1990,2001
func parseFilters(r *http.Request) models.FilterState {
	query := r.URL.Query()

	return models.FilterState{
		Authors: parseListParam(query.Get("authors")),
		Genres:  parseListParam(query.Get("genres")),
		Years:   parseYearsParam(query.Get("years")),
	}
}

func parseListParam(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	if len(values) == 0 {
		return nil
	}
	return values
}

// parseYearsParam разбирает список лет, молча отбрасывая нечисловые значения
func parseYearsParam(raw string) []int {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		years = append(years, year)
	}

	if len(years) == 0 {
		return nil
	}
	return years
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// statusRecorder запоминает код ответа для метрик
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics оборачивает обработчик записью HTTP метрик
func (s *Server) withMetrics(handler string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(recorder, r)

		metrics.RecordHTTPRequest(handler, r.Method, strconv.Itoa(recorder.status), time.Since(start))
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
