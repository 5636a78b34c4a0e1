package server

import (
	"fmt"
	"net/http"

	"github.com/rx3lixir/book-search-service/internal/search/searcher"
	"github.com/rx3lixir/book-search-service/internal/search/suggest"
)

// healthHandler - упрощенная проверка для API потребителей.
// Полные проверки живут на отдельном health сервере
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	cluster, err := s.engine.ClusterHealth(r.Context())
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "down",
			"error":  err.Error(),
		})
		return
	}

	status := "up"
	code := http.StatusOK
	if !cluster.IsHealthy() {
		status = "down"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]any{
		"status":         status,
		"backend":        s.engine.Backend(),
		"index":          s.engine.Index(),
		"cluster_status": cluster.Status,
	})
}

// suggestHandler - федерация подсказок по четырем категориям.
// Короткий запрос возвращает пустые категории со статусом 200
func (s *Server) suggestHandler(w http.ResponseWriter, r *http.Request) {
	req := suggest.Request{
		Query:   r.URL.Query().Get("q"),
		Filters: parseFilters(r),
	}

	resp, err := s.federator.Suggest(r.Context(), req)
	if err != nil {
		s.log.Error("Suggest request failed", "query", req.Query, "error", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("suggestion lookup failed: %s", err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// searchHandler - полный поиск со страницей результатов и фасетами
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := searcher.Request{
		Query:   query.Get("q"),
		Filters: parseFilters(r),
		Sort:    query.Get("sort"),
		Page:    parseIntParam(query.Get("page"), 1),
		Size:    parseIntParam(query.Get("size"), s.config.DefaultPageSize),
	}

	result, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		s.log.Error("Search request failed", "query", req.Query, "error", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("search failed: %s", err))
		return
	}

	respondJSON(w, http.StatusOK, result)
}
