package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rx3lixir/book-search-service/pkg/logger"
)

const (
	minVariantLen = 2
	maxVariantLen = 20
)

// Латинские буквы, пробелы, дефисы и апострофы. Транслитерации
// в других письменностях отбрасываются.
var latinNameRe = regexp.MustCompile(`^[\p{Latin}][\p{Latin} '\-]*$`)

// WikidataClient запрашивает альтернативные написания имени из графа знаний.
// Контракт: матч капитализированной метки на сущности типа "имя",
// обход отношения "said to be the same as" (P460) в обе стороны,
// сбор меток на английском и шведском, ограничение количества.
type WikidataClient struct {
	endpoint      string
	httpClient    *http.Client
	maxCandidates int
	logger        logger.Logger
}

// WikidataConfig - настройки клиента графа знаний
type WikidataConfig struct {
	Endpoint      string
	Timeout       time.Duration
	MaxCandidates int
}

func NewWikidataClient(cfg WikidataConfig, log logger.Logger) *WikidataClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 25
	}

	return &WikidataClient{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxCandidates: cfg.MaxCandidates,
		logger:        log,
	}
}

// QueryVariants возвращает отфильтрованные кандидаты вариантов написания
// имени. Любая ошибка (таймаут, не-2xx, битое тело) возвращается вызывающему,
// который превратит ее в негативную запись кэша.
func (c *WikidataClient) QueryVariants(ctx context.Context, name string) ([]string, error) {
	query := c.buildQuery(name)

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sparql request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", "book-search-service/1.0")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		// Тело не интересует, но дочитываем для переиспользования соединения
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("sparql endpoint returned status %d", res.StatusCode)
	}

	labels, err := parseSparqlLabels(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sparql response: %w", err)
	}

	return filterVariants(name, labels), nil
}

// buildQuery собирает SPARQL запрос. Точная форма запроса - деталь
// реализации: сущность типа "given name" (Q202444) с меткой,
// равной капитализированной форме имени, P460 в обе стороны.
func (c *WikidataClient) buildQuery(name string) string {
	capitalized := capitalize(name)

	return fmt.Sprintf(`SELECT DISTINCT ?variantLabel WHERE {
  ?name wdt:P31/wdt:P279* wd:Q202444 ;
        rdfs:label "%s"@en .
  { ?name wdt:P460 ?variant . } UNION { ?variant wdt:P460 ?name . }
  ?variant rdfs:label ?variantLabel .
  FILTER(LANG(?variantLabel) IN ("en", "sv"))
} LIMIT %d`, capitalized, c.maxCandidates)
}

// parseSparqlLabels разбирает стандартный SPARQL JSON:
// results.bindings[].variantLabel.value
func parseSparqlLabels(body io.Reader) ([]string, error) {
	var wire struct {
		Results struct {
			Bindings []map[string]struct {
				Value string `json:"value"`
			} `json:"bindings"`
		} `json:"results"`
	}

	if err := json.NewDecoder(body).Decode(&wire); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(wire.Results.Bindings))
	for _, binding := range wire.Results.Bindings {
		for _, cell := range binding {
			if cell.Value != "" {
				labels = append(labels, cell.Value)
			}
		}
	}

	return labels, nil
}

// filterVariants применяет фильтры кандидатов: непустые, латиница,
// длина в [2,20], без самого запрошенного имени, без дублей.
func filterVariants(queried string, labels []string) []string {
	queriedLower := normalizeName(queried)

	variants := make([]string, 0, len(labels))
	seen := make(map[string]bool)

	for _, label := range labels {
		candidate := normalizeName(label)
		if candidate == "" || candidate == queriedLower {
			continue
		}
		if len(candidate) < minVariantLen || len(candidate) > maxVariantLen {
			continue
		}
		if !latinNameRe.MatchString(candidate) {
			continue
		}
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		variants = append(variants, candidate)
	}

	return variants
}

func capitalize(name string) string {
	name = normalizeName(name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
