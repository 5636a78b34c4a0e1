package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/book-search-service/internal/db"
)

func validBook() *BookDocument {
	return &BookDocument{
		ID:          1,
		Title:       "The Guest",
		Author:      "Daniel Hurst",
		Genre:       []string{"thriller"},
		ReleaseYear: 2021,
		Rating:      4.1,
		RatingCount: 220,
		Language:    "en",
		Formats:     []string{"ebook"},
		CreatedAt:   time.Now(),
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validBook().Validate())
	})

	t.Run("MissingID", func(t *testing.T) {
		b := validBook()
		b.ID = 0
		assert.ErrorContains(t, b.Validate(), "id must be positive")
	})

	t.Run("BlankTitle", func(t *testing.T) {
		b := validBook()
		b.Title = "   "
		assert.ErrorContains(t, b.Validate(), "title is required")
	})

	t.Run("RatingOutOfRange", func(t *testing.T) {
		b := validBook()
		b.Rating = 5.5
		assert.ErrorContains(t, b.Validate(), "rating must be in [0, 5]")
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		b := &BookDocument{}
		err := b.Validate()
		require.Error(t, err)
		assert.ErrorContains(t, err, "id must be positive")
		assert.ErrorContains(t, err, "author is required")
	})
}

func TestValidateForIndexing(t *testing.T) {
	t.Run("ZeroCreatedAt", func(t *testing.T) {
		b := validBook()
		b.CreatedAt = time.Time{}
		assert.ErrorContains(t, b.ValidateForIndexing(), "created_at is required")
	})

	t.Run("VariantsContainOwnName", func(t *testing.T) {
		b := validBook()
		b.AuthorFirstName = "daniel"
		b.NameVariants = []string{"dan", "daniel"}
		assert.ErrorContains(t, b.ValidateForIndexing(), "name_variants must not contain")
	})

	t.Run("ValidWithVariants", func(t *testing.T) {
		b := validBook()
		b.AuthorFirstName = "daniel"
		b.NameVariants = []string{"dan", "daniil"}
		assert.NoError(t, b.ValidateForIndexing())
	})
}

func TestPrepareForIndex(t *testing.T) {
	t.Run("DerivedFieldsOmittedWhenEmpty", func(t *testing.T) {
		doc := validBook().PrepareForIndex()

		assert.NotContains(t, doc, "author_first_name")
		assert.NotContains(t, doc, "name_variants")
		assert.NotContains(t, doc, "updated_at")
	})

	t.Run("DerivedFieldsIncludedWhenSet", func(t *testing.T) {
		b := validBook()
		b.AuthorFirstName = "daniel"
		b.NameVariants = []string{"dan"}
		now := time.Now()
		b.UpdatedAt = &now

		doc := b.PrepareForIndex()

		assert.Equal(t, "daniel", doc["author_first_name"])
		assert.Equal(t, []string{"dan"}, doc["name_variants"])
		assert.Contains(t, doc, "updated_at")
	})
}

func TestFromDBBook(t *testing.T) {
	now := time.Now()
	book := &db.Book{
		Id:          7,
		Title:       "The Guest",
		Author:      "Daniel Hurst",
		Genre:       []string{"thriller"},
		ReleaseYear: 2021,
		Rating:      4.1,
		RatingCount: 220,
		Language:    "en",
		Formats:     []string{"ebook", "audio"},
		Trending:    3,
		CreatedAt:   now,
	}

	doc := FromDBBook(book)
	require.NotNil(t, doc)

	assert.Equal(t, int64(7), doc.ID)
	assert.Equal(t, "Daniel Hurst", doc.Author)
	assert.Equal(t, []string{"ebook", "audio"}, doc.Formats)

	// Производные поля конвертер не трогает
	assert.Empty(t, doc.AuthorFirstName)
	assert.Empty(t, doc.NameVariants)

	assert.Nil(t, FromDBBook(nil))
}
