package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// CachingProvider wraps a Provider with an in-memory LRU cache keyed by
// model and text. Batch calls only hit the inner provider for cache misses;
// results are re-associated with their original positions by explicit
// index pairing, never by insertion order.
type CachingProvider struct {
	inner  Provider
	model  string
	cache  *lru.Cache[string, []float32]
	logger *zap.Logger
}

// WithCache wraps a provider with an LRU embedding cache of the given
// capacity.
func WithCache(inner Provider, model string, size int, logger *zap.Logger) (*CachingProvider, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: cache size must be positive, got %d", ErrInvalidConfig, size)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}

	return &CachingProvider{
		inner:  inner,
		model:  model,
		cache:  cache,
		logger: logger,
	}, nil
}

// cacheKey hashes model and text into a cache key.
func (c *CachingProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + ":" + text))
	return hex.EncodeToString(sum[:])
}

// indexedVector pairs an embedding with its position in the original batch.
type indexedVector struct {
	index  int
	vector []float32
}

// EmbedDocuments returns embeddings in input order, serving cached texts
// locally and fetching only the misses from the inner provider.
func (c *CachingProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	results := make([]indexedVector, 0, len(texts))

	var (
		missIndices []int
		missTexts   []string
	)
	for i, text := range texts {
		if vector, ok := c.cache.Get(c.cacheKey(text)); ok {
			results = append(results, indexedVector{index: i, vector: vector})
			continue
		}
		missIndices = append(missIndices, i)
		missTexts = append(missTexts, text)
	}

	c.logger.Debug("embedding cache lookup",
		zap.Int("hits", len(texts)-len(missTexts)),
		zap.Int("misses", len(missTexts)),
	)

	if len(missTexts) > 0 {
		vectors, err := c.inner.EmbedDocuments(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for i, vector := range vectors {
			results = append(results, indexedVector{index: missIndices[i], vector: vector})
			c.cache.Add(c.cacheKey(missTexts[i]), vector)
		}
	}

	// Hits and misses interleave; a stable sort on the original index
	// restores input order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].index < results[j].index
	})

	out := make([][]float32, len(results))
	for i, r := range results {
		out[i] = r.vector
	}
	return out, nil
}

// EmbedQuery returns the cached vector for text or fetches and caches it.
func (c *CachingProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}

	key := c.cacheKey(text)
	if vector, ok := c.cache.Get(key); ok {
		return vector, nil
	}

	vector, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vector)

	return vector, nil
}

// Dimension returns the inner provider's dimension.
func (c *CachingProvider) Dimension() int { return c.inner.Dimension() }

// Close closes the inner provider.
func (c *CachingProvider) Close() error { return c.inner.Close() }

// Purge drops all cached embeddings.
func (c *CachingProvider) Purge() {
	c.cache.Purge()
}

var _ Provider = (*CachingProvider)(nil)
