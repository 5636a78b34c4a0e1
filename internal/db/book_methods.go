package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	// genre и formats хранятся как text[] - pgx сканирует их в []string напрямую
	createBookQuery = `INSERT INTO books (title, author, genre, release_year, rating, rating_count, language, formats, trending)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
						RETURNING id, created_at, updated_at`

	getBooksQueryBaseFields = `SELECT id, title, author, genre, release_year, rating, rating_count, language, formats, trending, created_at, updated_at FROM books`
	getBooksQuery           = getBooksQueryBaseFields + ` ORDER BY id`
	getBookByIdQuery        = getBooksQueryBaseFields + ` WHERE id = $1`
	deleteBookQuery         = `DELETE FROM books WHERE id = $1`
	countBooksQuery         = `SELECT COUNT(*) FROM books`
)

// CreateBook создает новую книгу.
func (s *PostgresStore) CreateBook(parentCtx context.Context, book *Book) (*Book, error) {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	err := s.db.QueryRow(
		ctx,
		createBookQuery,
		book.Title,
		book.Author,
		book.Genre,
		book.ReleaseYear,
		book.Rating,
		book.RatingCount,
		book.Language,
		book.Formats,
		book.Trending,
	).Scan(&book.Id, &book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

// GetBooks извлекает все книги каталога.
func (s *PostgresStore) GetBooks(parentCtx context.Context) ([]*Book, error) {
	ctx, cancel := context.WithTimeout(parentCtx, 10*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, getBooksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return books, nil
}

// GetBookByID извлекает книгу по идентификатору.
func (s *PostgresStore) GetBookByID(parentCtx context.Context, id int64) (*Book, error) {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	row := s.db.QueryRow(ctx, getBookByIdQuery, id)

	book, err := scanBookRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}

	return book, nil
}

// DeleteBook удаляет книгу из каталога.
func (s *PostgresStore) DeleteBook(parentCtx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, deleteBookQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book with ID %d not found for deletion", id)
	}

	return nil
}

// CountBooks возвращает количество книг в каталоге.
func (s *PostgresStore) CountBooks(parentCtx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	var count int64
	if err := s.db.QueryRow(ctx, countBooksQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}

	return count, nil
}

// scanBook сканирует строку результата в Book
func scanBook(rows pgx.Rows) (*Book, error) {
	book := &Book{}
	err := rows.Scan(
		&book.Id,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.ReleaseYear,
		&book.Rating,
		&book.RatingCount,
		&book.Language,
		&book.Formats,
		&book.Trending,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	return book, err
}

func scanBookRow(row pgx.Row) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.Id,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.ReleaseYear,
		&book.Rating,
		&book.RatingCount,
		&book.Language,
		&book.Formats,
		&book.Trending,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	return book, err
}
