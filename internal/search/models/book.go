package models

import (
	"time"
)

// BookDocument представляет документ книги в поисковом индексе.
// Поля AuthorFirstName и NameVariants заполняются только на этапе
// обогащения перед индексацией и никогда не задаются вручную.
type BookDocument struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Genre           []string   `json:"genre"`
	ReleaseYear     int        `json:"release_year"`
	Rating          float32    `json:"rating"`
	RatingCount     int        `json:"rating_count"`
	Language        string     `json:"language"`
	Formats         []string   `json:"formats"`
	Trending        int        `json:"trending"`
	AuthorFirstName string     `json:"author_first_name,omitempty"`
	NameVariants    []string   `json:"name_variants,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// PrepareForIndex подготавливает документ для индексации
func (b *BookDocument) PrepareForIndex() map[string]any {
	doc := map[string]any{
		"id":           b.ID,
		"title":        b.Title,
		"author":       b.Author,
		"genre":        b.Genre,
		"release_year": b.ReleaseYear,
		"rating":       b.Rating,
		"rating_count": b.RatingCount,
		"language":     b.Language,
		"formats":      b.Formats,
		"trending":     b.Trending,
		"created_at":   b.CreatedAt,
	}

	if b.UpdatedAt != nil {
		doc["updated_at"] = b.UpdatedAt
	}

	// Производные поля попадают в индекс только когда обогащение их заполнило
	if b.AuthorFirstName != "" {
		doc["author_first_name"] = b.AuthorFirstName
	}
	if len(b.NameVariants) > 0 {
		doc["name_variants"] = b.NameVariants
	}

	return doc
}
