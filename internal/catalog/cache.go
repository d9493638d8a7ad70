package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/UkralStul/apexmed-interactions/internal/domain"
)

// DefaultTTL - через сколько список видео считается устаревшим.
const DefaultTTL = 60 * time.Second

// CachingCatalog держит последний успешный ответ каталога в памяти в течение TTL.
type CachingCatalog struct {
	base Catalog
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	videos  []domain.Video
	expires time.Time
}

func NewCachingCatalog(base Catalog, ttl time.Duration) *CachingCatalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachingCatalog{base: base, ttl: ttl, now: time.Now}
}

// Videos отдает закешированный список, пока он свежий, иначе обращается к каталогу.
// Ошибка каталога не сбрасывает кеш, но и не подменяется им.
func (c *CachingCatalog) Videos(ctx context.Context) ([]domain.Video, error) {
	if c == nil || c.base == nil {
		return nil, ErrNotConfigured
	}

	now := c.now()

	c.mu.RLock()
	cached, expires := c.videos, c.expires
	c.mu.RUnlock()
	if cached != nil && now.Before(expires) {
		return append([]domain.Video(nil), cached...), nil
	}

	videos, err := c.base.Videos(ctx)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	c.mu.Lock()
	c.videos = videos
	c.expires = now.Add(c.ttl)
	c.mu.Unlock()

	return append([]domain.Video(nil), videos...), nil
}
