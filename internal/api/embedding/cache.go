package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/somya-cb/ai-travel-assistant/app/observability/metrics"
)

var (
	_ Embedder         = (*CachedEmbedder)(nil)
	_ DocumentEmbedder = (*CachedEmbedder)(nil)
)

// CachedEmbedder memoises another Embedder by exact input text. Returned
// slices are shared between callers and must not be modified.
type CachedEmbedder struct {
	next   Embedder
	cache  *cache.Cache
	logger *slog.Logger
}

func NewCachedEmbedder(next Embedder, ttl time.Duration, logger *slog.Logger) *CachedEmbedder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedEmbedder{
		next:   next,
		cache:  cache.New(ttl, time.Hour),
		logger: logger,
	}
}

func embeddingCacheKey(dimension int, text string) string {
	return fmt.Sprintf("embedding:%d:%s", dimension, text)
}

func (c *CachedEmbedder) Dimension() int { return c.next.Dimension() }

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingCacheKey(c.next.Dimension(), text)
	if cached, found := c.cache.Get(key); found {
		if v, ok := cached.([]float32); ok {
			metrics.Get().EmbeddingCacheHitsTotal.Add(ctx, 1)
			c.logger.DebugContext(ctx, "Embedding cache hit", slog.Int("text_length", len(text)))
			return v, nil
		}
	}

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, v, cache.DefaultExpiration)
	return v, nil
}

// EmbedDocument is not memoised; corpus text is embedded once per backfill.
func (c *CachedEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return EmbedDocument(ctx, c.next, text)
}
