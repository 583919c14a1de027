package llm

import (
	"context"

	"places-insight/internal/cache"
)

// CachingClient reuses completions for identical requests. Prompts are
// deterministic per business, so re-running a pipeline against the same
// data skips paid model calls.
type CachingClient struct {
	inner Client
	cache *cache.CompletionCache
}

func NewCachingClient(inner Client, completions *cache.CompletionCache) *CachingClient {
	return &CachingClient{inner: inner, cache: completions}
}

func (c *CachingClient) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int64) (string, error) {
	key := cache.CompletionKey(prompt, temperature, maxTokens)
	return c.cache.GetOrCompute(ctx, key, func() (string, error) {
		return c.inner.Complete(ctx, prompt, temperature, maxTokens)
	})
}
