package suggest

import (
	"regexp"
	"strings"
)

// Последовательность из 3-4 цифр, начинающаяся с 19 или 20.
// Границы слова отсекают совпадения внутри более длинных
// буквенно-цифровых последовательностей.
var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{1,2}\b`)

// ExtractYears выделяет годоподобные подстроки из запроса и возвращает
// остаточный текстовый запрос без них. Если годовых подстрок нет,
// категория лет пропускается целиком.
func ExtractYears(query string) (residual string, years []string) {
	years = yearPattern.FindAllString(query, -1)
	if len(years) == 0 {
		return strings.TrimSpace(query), nil
	}

	residual = yearPattern.ReplaceAllString(query, " ")
	residual = strings.Join(strings.Fields(residual), " ")
	return residual, years
}

// SplitTerms разбивает остаточный запрос на термы в нижнем регистре.
// Термы используются для аннотации совпадений в подсказках.
func SplitTerms(residual string) []string {
	fields := strings.Fields(residual)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, strings.ToLower(f))
	}
	return terms
}

// MatchedTerms возвращает подмножество термов, являющихся подстрокой
// значения без учета регистра. Клиент убирает именно эти термы из
// строки поиска при добавлении фильтра.
func MatchedTerms(value string, terms []string) []string {
	matched := []string{}
	lowered := strings.ToLower(value)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			matched = append(matched, term)
		}
	}
	return matched
}
