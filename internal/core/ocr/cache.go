package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// CachedEngine memoizes recognition results by the SHA-256 of the image bytes,
// so the same scan under a different name is recognized once.
type CachedEngine struct {
	next   Engine
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCachedEngine wraps next with a TTL cache.
func NewCachedEngine(next Engine, ttl time.Duration, logger *slog.Logger) *CachedEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedEngine{next: next, cache: cache.New(ttl, 2*ttl), logger: logger}
}

func (c *CachedEngine) Recognize(ctx context.Context, page entity.Page) ([]entity.Word, error) {
	data := page.Image
	if len(data) == 0 {
		b, err := os.ReadFile(page.Path)
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
		data = b
	}
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	if v, ok := c.cache.Get(key); ok {
		c.logger.Debug("ocr cache hit", "page_id", page.ID, "content_hash", key)
		return append([]entity.Word(nil), v.([]entity.Word)...), nil
	}

	words, err := c.next.Recognize(ctx, page)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]entity.Word(nil), words...), cache.DefaultExpiration)
	return words, nil
}

// Len reports the number of cached pages.
func (c *CachedEngine) Len() int { return c.cache.ItemCount() }
