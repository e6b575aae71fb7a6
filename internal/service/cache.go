package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sa_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш скриншотов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sa_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша скриншотов.",
	})
)

// ScreenshotCache — LRU-кэш записей скриншотов с TTL.
// Записи неизменяемы после создания, поэтому инвалидация не требуется.
// Агрегаты (stats, tags) не кэшируются.
type ScreenshotCache struct {
	cache *expirable.LRU[string, *model.Screenshot]
}

// NewScreenshotCache создаёт кэш на maxSize записей с временем жизни ttl.
func NewScreenshotCache(maxSize int, ttl time.Duration) *ScreenshotCache {
	return &ScreenshotCache{
		cache: expirable.NewLRU[string, *model.Screenshot](maxSize, nil, ttl),
	}
}

// Get возвращает запись по id и обновляет метрики hit/miss.
func (c *ScreenshotCache) Get(id string) (*model.Screenshot, bool) {
	if s, ok := c.cache.Get(id); ok {
		cacheHitsTotal.Inc()
		return s, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет запись.
func (c *ScreenshotCache) Set(s *model.Screenshot) {
	c.cache.Add(s.ID, s)
}

// Len возвращает текущее количество записей.
func (c *ScreenshotCache) Len() int {
	return c.cache.Len()
}
