package suggest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rx3lixir/book-search-service/internal/engine"
)

// parseAuthors извлекает бакеты агрегации авторов и аннотирует каждую
// подсказку списком совпавших термов
func parseAuthors(res *engine.SearchResponse, terms []string) ([]AuthorSuggestion, error) {
	agg, ok := res.Aggregations["authors"]
	if !ok {
		return []AuthorSuggestion{}, nil
	}

	suggestions := make([]AuthorSuggestion, 0, len(agg.Buckets))
	for _, bucket := range agg.Buckets {
		name := bucket.KeyString()
		suggestions = append(suggestions, AuthorSuggestion{
			Name:         name,
			Count:        bucket.DocCount,
			MatchedTerms: MatchedTerms(name, terms),
		})
	}

	return suggestions, nil
}

// parseTitles декодирует хиты запроса названий. Термы матчатся и по
// названию и по автору - книга может попасть в подсказки через любое поле
func parseTitles(res *engine.SearchResponse, terms []string) ([]TitleSuggestion, error) {
	suggestions := make([]TitleSuggestion, 0, len(res.Hits.Hits))

	for _, hit := range res.Hits.Hits {
		var doc struct {
			ID          int64    `json:"id"`
			Title       string   `json:"title"`
			Author      string   `json:"author"`
			ReleaseYear int      `json:"release_year"`
			Rating      float32  `json:"rating"`
			Genre       []string `json:"genre"`
		}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode title hit %s: %w", hit.ID, err)
		}

		suggestions = append(suggestions, TitleSuggestion{
			ID:           doc.ID,
			Title:        doc.Title,
			Author:       doc.Author,
			ReleaseYear:  doc.ReleaseYear,
			Rating:       doc.Rating,
			Genre:        doc.Genre,
			MatchedTerms: MatchedTerms(doc.Title+" "+doc.Author, terms),
		})
	}

	return suggestions, nil
}

func parseGenres(res *engine.SearchResponse, terms []string) ([]GenreSuggestion, error) {
	agg, ok := res.Aggregations["genres"]
	if !ok {
		return []GenreSuggestion{}, nil
	}

	suggestions := make([]GenreSuggestion, 0, len(agg.Buckets))
	for _, bucket := range agg.Buckets {
		name := bucket.KeyString()
		suggestions = append(suggestions, GenreSuggestion{
			Name:         name,
			Count:        bucket.DocCount,
			MatchedTerms: MatchedTerms(name, terms),
		})
	}

	return suggestions, nil
}

// parseYears извлекает бакеты лет и оставляет только годы, десятичная
// запись которых начинается с одной из годовых подстрок запроса.
// Агрегация может вернуть годы, совпавшие лишь по ngram-хвосту
func parseYears(res *engine.SearchResponse, yearTokens []string) ([]YearSuggestion, error) {
	agg, ok := res.Aggregations["years"]
	if !ok {
		return []YearSuggestion{}, nil
	}

	suggestions := make([]YearSuggestion, 0, len(agg.Buckets))
	for _, bucket := range agg.Buckets {
		year, ok := bucket.KeyInt()
		if !ok {
			return nil, fmt.Errorf("unexpected year bucket key %v", bucket.Key)
		}

		if !yearMatchesTokens(year, yearTokens) {
			continue
		}

		suggestions = append(suggestions, YearSuggestion{
			Year:  year,
			Count: bucket.DocCount,
		})
	}

	return suggestions, nil
}

func yearMatchesTokens(year int, tokens []string) bool {
	s := strconv.Itoa(year)
	for _, token := range tokens {
		if strings.HasPrefix(s, token) {
			return true
		}
	}
	return false
}
