package db

import "time"

// Book представляет книгу в каталоге. PostgreSQL - источник истины,
// поисковый индекс наполняется из этой таблицы при засеве.
type Book struct {
	Id          int64
	Title       string
	Author      string
	Genre       []string
	ReleaseYear int
	Rating      float32
	RatingCount int
	Language    string
	Formats     []string
	Trending    int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CreateBookParams содержит параметры для создания новой книги
type CreateBookParams struct {
	Title       string
	Author      string
	Genre       []string
	ReleaseYear int
	Rating      float32
	RatingCount int
	Language    string
	Formats     []string
	Trending    int
}

// NewBookFromCreateRequest создает новый экземпляр Book на основе параметров.
// CreatedAt устанавливается базой, UpdatedAt остается nil.
func NewBookFromCreateRequest(params CreateBookParams) *Book {
	return &Book{
		Title:       params.Title,
		Author:      params.Author,
		Genre:       params.Genre,
		ReleaseYear: params.ReleaseYear,
		Rating:      params.Rating,
		RatingCount: params.RatingCount,
		Language:    params.Language,
		Formats:     params.Formats,
		Trending:    params.Trending,
	}
}
