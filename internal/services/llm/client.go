package llm

import (
	"context"
)

// Client is the completion interface for different LLM providers.
// Temperature and max tokens are supplied per call: the pipeline uses a
// low temperature for sentiment extraction and a higher one for the
// narrative business analysis. Retries, auth and rate limiting belong to
// the implementation, not to callers.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int64) (string, error)
}
