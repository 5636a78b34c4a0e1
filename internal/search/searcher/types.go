package searcher

import (
	"github.com/rx3lixir/book-search-service/internal/search/models"
)

// Поддерживаемые режимы сортировки результатов
const (
	SortRelevance = "relevance"
	SortRating    = "rating"
	SortTitle     = "title"
	SortYear      = "year"
	SortTrending  = "trending"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	FacetSize       = 20
)

// Request - параметры одного поискового запроса
type Request struct {
	Query   string             `json:"query"`
	Filters models.FilterState `json:"filters"`
	Sort    string             `json:"sort"`
	Page    int                `json:"page"`
	Size    int                `json:"size"`
}

// Normalize приводит параметры пагинации и сортировки к допустимым значениям
func (r *Request) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Size < 1 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	switch r.Sort {
	case SortRelevance, SortRating, SortTitle, SortYear, SortTrending:
	default:
		r.Sort = SortRelevance
	}
}

// FacetBucket - одно значение фасета со счетчиком документов
type FacetBucket struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// YearFacet - годовой бакет фасетов
type YearFacet struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// Facets - агрегации по фильтруемым измерениям, посчитанные на том же
// отфильтрованном наборе, что и сами результаты
type Facets struct {
	Authors []FacetBucket `json:"authors"`
	Genres  []FacetBucket `json:"genres"`
	Years   []YearFacet   `json:"years"`
}

// Result - страница результатов поиска вместе с фасетами
type Result struct {
	Books    []models.BookDocument `json:"books"`
	Total    int64                 `json:"total"`
	MaxScore float64               `json:"max_score"`
	Page     int                   `json:"page"`
	Size     int                   `json:"size"`
	TookMs   int64                 `json:"took_ms"`
	Facets   Facets                `json:"facets"`
}
