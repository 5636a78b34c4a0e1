package enrich

import (
	"strings"
	"sync"
)

// Cache - процессный кэш семейств имен. Ключ - имя в нижнем регистре,
// значение - остальные члены его семейства написаний.
//
// Кэш трехсостоянный: "не смотрели" (Lookup вернет ok=false), "смотрели,
// вариантов нет" (пустой слайс - негативный кэш) и "варианты известны".
// Записи не устаревают в течение жизни процесса: пространство ключей -
// человеческие имена, неограниченный рост приемлем.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string][]string),
	}
}

// Lookup возвращает варианты имени. ok=false означает, что имя еще
// не разрешалось; пустой слайс с ok=true - валидный результат
// "смотрели, вариантов нет".
func (c *Cache) Lookup(name string) ([]string, bool) {
	key := normalizeName(name)
	if key == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	variants, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	// Копия, чтобы вызывающий не мог изменить содержимое кэша
	out := make([]string, len(variants))
	copy(out, variants)
	return out, true
}

// Put записывает варианты для одного имени, перезаписывая существующую запись
func (c *Cache) Put(name string, variants []string) {
	key := normalizeName(name)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]string(nil), variants...)
}

// PutFamily записывает замкнутое семейство написаний: каждый член семейства
// получает список = семейство минус он сам. Уже существующие записи
// не перезаписываются - предзагруженная таблица имеет приоритет.
func (c *Cache) PutFamily(family []string) {
	members := make([]string, 0, len(family))
	seen := make(map[string]bool)
	for _, m := range family {
		key := normalizeName(m)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		members = append(members, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, member := range members {
		if _, exists := c.entries[member]; exists {
			continue
		}

		others := make([]string, 0, len(members)-1)
		for _, m := range members {
			if m != member {
				others = append(others, m)
			}
		}
		c.entries[member] = others
	}
}

// Len возвращает количество записей в кэше
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
