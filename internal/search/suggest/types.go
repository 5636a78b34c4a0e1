package suggest

import (
	"github.com/rx3lixir/book-search-service/internal/search/models"
)

const (
	// MinQueryLength - минимальная длина запроса. Более короткие запросы
	// не доходят до движка: префиксный поиск по одному символу слишком
	// дорогой и бесполезный.
	MinQueryLength = 2

	// MaxPerCategory - сколько подсказок возвращается в каждой категории
	MaxPerCategory = 5

	// MaxYearBuckets - сколько корзин лет запрашивается у движка
	// до клиентской фильтрации по префиксу
	MaxYearBuckets = 10
)

// Request - запрос подсказок: сырой ввод пользователя плюс активные фильтры
type Request struct {
	Query   string
	Filters models.FilterState
}

// Response - конверт подсказок: четыре независимых списка.
// Структура живет только в пределах одного ответа.
type Response struct {
	Query   string             `json:"query"`
	Authors []AuthorSuggestion `json:"authors"`
	Titles  []TitleSuggestion  `json:"titles"`
	Genres  []GenreSuggestion  `json:"genres"`
	Years   []YearSuggestion   `json:"years"`
}

// NewResponse создает ответ с инициализированными пустыми списками,
// чтобы клиент всегда получал массивы, а не null
func NewResponse(query string) *Response {
	return &Response{
		Query:   query,
		Authors: []AuthorSuggestion{},
		Titles:  []TitleSuggestion{},
		Genres:  []GenreSuggestion{},
		Years:   []YearSuggestion{},
	}
}

// AuthorSuggestion - подсказка автора с количеством его книг.
// MatchedTerms - термы ввода, которые эта подсказка покрывает: клиент
// убирает их из строки поиска, когда подсказка становится фильтром.
type AuthorSuggestion struct {
	Name         string   `json:"name"`
	Count        int64    `json:"count"`
	MatchedTerms []string `json:"matched_terms"`
}

// TitleSuggestion - подсказка-документ. Единственная категория,
// возвращающая реальные книги, а не агрегированные значения.
type TitleSuggestion struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	ReleaseYear  int      `json:"release_year"`
	Rating       float32  `json:"rating"`
	Genre        []string `json:"genre"`
	MatchedTerms []string `json:"matched_terms"`
}

// GenreSuggestion - подсказка жанра с количеством книг
type GenreSuggestion struct {
	Name         string   `json:"name"`
	Count        int64    `json:"count"`
	MatchedTerms []string `json:"matched_terms"`
}

// YearSuggestion - подсказка года выпуска
type YearSuggestion struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}
