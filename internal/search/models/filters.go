package models

// FilterState - активные фильтры клиента: три независимых множества.
// Создается пустым, живет только в пределах запроса, на сервере
// не сохраняется.
type FilterState struct {
	Authors []string `json:"authors,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Years   []int    `json:"years,omitempty"`
}

// IsEmpty проверяет, есть ли активные фильтры
func (f FilterState) IsEmpty() bool {
	return len(f.Authors) == 0 && len(f.Genres) == 0 && len(f.Years) == 0
}

// WithAuthors задает фильтр по авторам
func (f FilterState) WithAuthors(authors ...string) FilterState {
	f.Authors = authors
	return f
}

// WithGenres задает фильтр по жанрам
func (f FilterState) WithGenres(genres ...string) FilterState {
	f.Genres = genres
	return f
}

// WithYears задает фильтр по годам выпуска
func (f FilterState) WithYears(years ...int) FilterState {
	f.Years = years
	return f
}
