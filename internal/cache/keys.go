package cache

import (
	"crypto/sha1"
	"fmt"
)

// CompletionKey builds the cache key for one completion request. The
// prompt is hashed so keys stay bounded; temperature and token budget
// are part of the identity because they change the reply.
func CompletionKey(prompt string, temperature float64, maxTokens int64) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("%s|%.2f|%d", prompt, temperature, maxTokens)))
	return fmt.Sprintf("llm:completion:%x", hash)
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}
