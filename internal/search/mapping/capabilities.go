package mapping

import (
	"context"

	"github.com/rx3lixir/book-search-service/internal/engine"
	"github.com/rx3lixir/book-search-service/pkg/logger"
)

// PhoneticPlugin - компонент плагина фонетического анализа,
// одинаково называется в OpenSearch и Elasticsearch
const PhoneticPlugin = "analysis-phonetic"

// Capabilities - опциональные возможности движка, определяются один раз
// при старте процесса и передаются компонентам построения запросов.
// Без этого запрос к несуществующему phonetic полю уронил бы поиск.
type Capabilities struct {
	Phonetic bool
}

// DetectCapabilities опрашивает движок на предмет установленных плагинов.
// Ошибка пробы трактуется как отсутствие возможности - проба никогда
// не фатальна для процесса.
func DetectCapabilities(ctx context.Context, eng engine.Engine, log logger.Logger) Capabilities {
	caps := Capabilities{}

	plugins, err := eng.Plugins(ctx)
	if err != nil {
		log.Warn("Failed to probe engine plugins, assuming phonetic analysis unavailable",
			"backend", eng.Backend(),
			"error", err,
		)
		return caps
	}

	for _, p := range plugins {
		if p.Component == PhoneticPlugin {
			caps.Phonetic = true
			break
		}
	}

	log.Info("Engine capabilities detected",
		"backend", eng.Backend(),
		"phonetic", caps.Phonetic,
	)

	return caps
}
