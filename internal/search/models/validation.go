package models

import (
	"fmt"
	"strings"
)

// Validate проверяет корректность BookDocument
func (b *BookDocument) Validate() error {
	var errors []string

	if b.ID <= 0 {
		errors = append(errors, "id must be positive")
	}

	if strings.TrimSpace(b.Title) == "" {
		errors = append(errors, "title is required")
	}

	if strings.TrimSpace(b.Author) == "" {
		errors = append(errors, "author is required")
	}

	if b.Rating < 0 || b.Rating > 5 {
		errors = append(errors, "rating must be in [0, 5]")
	}

	if b.RatingCount < 0 {
		errors = append(errors, "rating_count cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, ", "))
	}

	return nil
}

// ValidateForIndexing проверяет готовность документа к индексации
func (b *BookDocument) ValidateForIndexing() error {
	if err := b.Validate(); err != nil {
		return err
	}

	if b.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required for indexing")
	}

	// name_variants не должен содержать само имя автора
	for _, v := range b.NameVariants {
		if v == b.AuthorFirstName {
			return fmt.Errorf("name_variants must not contain author_first_name %q", b.AuthorFirstName)
		}
	}

	return nil
}
