package models

import (
	"github.com/rx3lixir/book-search-service/internal/db"
)

// FromDBBook конвертирует db.Book в BookDocument для индексации.
// Производные поля (author_first_name, name_variants) заполняет
// обогащение, не конвертер.
func FromDBBook(book *db.Book) *BookDocument {
	if book == nil {
		return nil
	}

	return &BookDocument{
		ID:          book.Id,
		Title:       book.Title,
		Author:      book.Author,
		Genre:       book.Genre,
		ReleaseYear: book.ReleaseYear,
		Rating:      book.Rating,
		RatingCount: book.RatingCount,
		Language:    book.Language,
		Formats:     book.Formats,
		Trending:    book.Trending,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
}

// FromDBBooks конвертирует слайс db.Book в слайс BookDocument
func FromDBBooks(books []*db.Book) []*BookDocument {
	if books == nil {
		return nil
	}

	docs := make([]*BookDocument, 0, len(books))
	for _, book := range books {
		if doc := FromDBBook(book); doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}
