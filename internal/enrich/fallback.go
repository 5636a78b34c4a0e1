package enrich

// fallbackFamilies - статичная таблица семейств имен, предзагружаемая в кэш
// при старте. Гарантирует полезные варианты даже когда внешний эндпоинт
// отключен или недоступен. Подобрана под скандинавско-английский каталог.
var fallbackFamilies = [][]string{
	{"christopher", "kristoffer", "christoffer", "kristofer", "christoph"},
	{"catherine", "katherine", "kathrine", "katarina", "karin"},
	{"michael", "mikael", "mikkel", "michel"},
	{"john", "jon", "johan", "johannes", "jan"},
	{"eric", "erik", "erick"},
	{"carl", "karl"},
	{"christina", "kristina", "kerstin", "stina"},
	{"margaret", "margareta", "greta", "margit"},
	{"william", "vilhelm", "wilhelm"},
	{"henry", "henrik", "heinrich"},
	{"peter", "petter", "per", "peder"},
	{"nicholas", "niklas", "nicklas", "nils", "niels"},
	{"andrew", "anders", "andreas"},
	{"stephen", "steven", "stefan", "staffan"},
	{"lawrence", "lars", "laurits"},
	{"george", "georg", "jorgen"},
	{"anne", "anna", "ann", "annika"},
	{"elizabeth", "elisabeth", "elisabet", "lisbeth", "elsa"},
	{"helen", "helena", "helene", "elin"},
	{"frederick", "fredrik", "frederik"},
	{"matthew", "matthias", "mattias", "mats"},
	{"daniel", "dan", "daniil"},
}

// PreloadFallback загружает статичную таблицу в кэш. Записи плоские
// (не результат замыкания) и не будут перезаписаны последующими
// разрешениями тех же имен.
func PreloadFallback(cache *Cache) {
	for _, family := range fallbackFamilies {
		cache.PutFamily(family)
	}
}
