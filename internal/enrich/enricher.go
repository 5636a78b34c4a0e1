package enrich

import (
	"context"
	"strings"
	"unicode"

	"github.com/rx3lixir/book-search-service/internal/search/models"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// Enricher заполняет производные поля документов перед индексацией:
// author_first_name и name_variants. Выполняется на этапе засева,
// строго до начала обслуживания поискового трафика.
type Enricher struct {
	resolver *Resolver
	logger   logger.Logger
}

func NewEnricher(resolver *Resolver, log logger.Logger) *Enricher {
	return &Enricher{
		resolver: resolver,
		logger:   log,
	}
}

// EnrichBooks обогащает документы на месте. Не возвращает ошибку:
// резолвер деградирует в пустые варианты, документ без вариантов валиден.
func (e *Enricher) EnrichBooks(ctx context.Context, docs []*models.BookDocument) {
	enriched := 0
	for _, doc := range docs {
		if e.EnrichBook(ctx, doc) {
			enriched++
		}
	}

	e.logger.Info("Book enrichment completed",
		"total", len(docs),
		"with_variants", enriched,
	)
}

// EnrichBook заполняет производные поля одного документа.
// Возвращает true, если для автора нашлись варианты имени.
func (e *Enricher) EnrichBook(ctx context.Context, doc *models.BookDocument) bool {
	firstName := FirstName(doc.Author)
	if firstName == "" {
		return false
	}

	doc.AuthorFirstName = firstName
	doc.NameVariants = e.resolver.Resolve(ctx, firstName)

	return len(doc.NameVariants) > 0
}

// FirstName извлекает первое имя автора: первый токен в нижнем регистре,
// очищенный от неалфавитных символов по краям ("Daniel Hurst" -> "daniel",
// "J.K. Rowling" -> "j.k"). Токены вроде "j.k" уходят в резолвер как есть:
// один внешний запрос вернет пусто и имя осядет в негативном кэше.
func FirstName(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}

	first := strings.ToLower(fields[0])
	first = strings.TrimFunc(first, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	return first
}
