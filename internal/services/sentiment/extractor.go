package sentiment

import (
	"context"
	"fmt"
	"strings"

	"places-insight/internal/services/llm"

	"github.com/rs/zerolog/log"
)

const (
	// Review caps keep the prompt inside the model's token budget.
	maxBatchReviews   = 15
	maxKeywordReviews = 10
	keywordConfidence = 0.6
	batchTemperature  = 0.2
	batchMaxTokens    = 1200
)

// Keyword sets for the deterministic fallback classifier. Matching is
// case-insensitive substring containment.
var (
	positiveKeywords = []string{
		"good", "great", "excellent", "amazing", "love", "best",
		"friendly", "delicious", "perfect", "recommend",
	}
	negativeKeywords = []string{
		"bad", "terrible", "awful", "worst", "rude", "dirty",
		"slow", "disappointed", "overpriced", "cold",
	}
)

// Extractor classifies a batch of review texts into per-review
// sentiments plus an aggregate distribution. The model path is
// preferred; when its reply yields no recoverable JSON the extractor
// degrades to keyword counting so the pipeline always produces a
// sentiment signal.
type Extractor struct {
	llm llm.Client
}

func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{llm: client}
}

// Analyze never fails: model or parse errors degrade to the keyword
// fallback, and an empty input yields the default neutral distribution.
func (e *Extractor) Analyze(ctx context.Context, reviews []string) BatchResult {
	if len(reviews) == 0 {
		return BatchResult{
			Reviews:      []ReviewSentiment{},
			Distribution: DefaultDistribution(),
			Summary:      "No reviews available for sentiment analysis",
		}
	}

	batch := reviews
	if len(batch) > maxBatchReviews {
		batch = batch[:maxBatchReviews]
	}

	text, err := e.llm.Complete(ctx, buildSentimentPrompt(batch), batchTemperature, batchMaxTokens)
	if err != nil {
		log.Warn().Err(err).Int("reviews", len(batch)).Msg("Sentiment completion failed, using keyword fallback")
		return KeywordFallback(batch)
	}

	fields, ok := llm.ExtractJSON(text)
	if !ok {
		log.Warn().Int("reviews", len(batch)).Msg("Sentiment reply had no recoverable JSON, using keyword fallback")
		return KeywordFallback(batch)
	}

	return batchFromFields(fields, len(batch))
}

func buildSentimentPrompt(reviews []string) string {
	var sb strings.Builder
	sb.WriteString("Classify the sentiment of each customer review below.\n\nReviews:\n")
	for i, review := range reviews {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, review)
	}
	sb.WriteString(`
Respond with JSON only, in exactly this shape:
{
    "reviews": [
        {"text": "review text", "sentiment": "positive/negative/neutral", "confidence": 0.0-1.0, "emotions": ["emotion1", "emotion2"]}
    ],
    "overall_sentiment_distribution": {"positive": 0.0-1.0, "negative": 0.0-1.0, "neutral": 0.0-1.0},
    "dominant_emotions": ["emotion1", "emotion2", "emotion3"],
    "sentiment_summary": "one sentence describing the overall customer sentiment"
}`)
	return sb.String()
}

// batchFromFields builds a BatchResult from a decoded model reply,
// tolerating missing or oddly typed keys. Models sometimes return more
// review entries than they were given; anything past limit is dropped
// so the result never exceeds the reviews fed.
func batchFromFields(fields map[string]interface{}, limit int) BatchResult {
	var result BatchResult

	if raw, ok := fields["reviews"].([]interface{}); ok {
		for _, item := range raw {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			rs := ReviewSentiment{
				Text:       stringField(entry, "text"),
				Sentiment:  normalizeLabel(stringField(entry, "sentiment")),
				Confidence: floatField(entry, "confidence"),
			}
			if emotions, ok := entry["emotions"].([]interface{}); ok {
				for _, e := range emotions {
					if s, ok := e.(string); ok && s != "" {
						rs.Emotions = append(rs.Emotions, s)
					}
				}
			}
			result.Reviews = append(result.Reviews, rs)
		}
		if limit > 0 && len(result.Reviews) > limit {
			result.Reviews = result.Reviews[:limit]
		}
	}

	if dist, ok := fields["overall_sentiment_distribution"].(map[string]interface{}); ok {
		result.Distribution = Distribution{
			Positive: floatField(dist, "positive"),
			Negative: floatField(dist, "negative"),
			Neutral:  floatField(dist, "neutral"),
		}
	} else {
		result.Distribution = distributionFromReviews(result.Reviews)
	}

	if emotions, ok := fields["dominant_emotions"].([]interface{}); ok {
		for _, e := range emotions {
			if s, ok := e.(string); ok && s != "" {
				result.DominantEmotions = append(result.DominantEmotions, s)
			}
		}
	}

	result.Summary = stringField(fields, "sentiment_summary")
	return result
}

// KeywordFallback classifies reviews by counting occurrences from fixed
// positive and negative keyword sets. Every classification carries the
// same fixed confidence: availability over precision.
func KeywordFallback(reviews []string) BatchResult {
	batch := reviews
	if len(batch) > maxKeywordReviews {
		batch = batch[:maxKeywordReviews]
	}

	classified := make([]ReviewSentiment, 0, len(batch))
	for _, review := range batch {
		lower := strings.ToLower(review)
		var pos, neg int
		for _, kw := range positiveKeywords {
			pos += strings.Count(lower, kw)
		}
		for _, kw := range negativeKeywords {
			neg += strings.Count(lower, kw)
		}

		label := Neutral
		if pos > neg {
			label = Positive
		} else if neg > pos {
			label = Negative
		}

		classified = append(classified, ReviewSentiment{
			Text:       review,
			Sentiment:  label,
			Confidence: keywordConfidence,
		})
	}

	return BatchResult{
		Reviews:      classified,
		Distribution: distributionFromReviews(classified),
		Summary:      fmt.Sprintf("Keyword-based fallback analysis of %d reviews", len(classified)),
	}
}

func distributionFromReviews(reviews []ReviewSentiment) Distribution {
	if len(reviews) == 0 {
		return DefaultDistribution()
	}

	var dist Distribution
	for _, r := range reviews {
		switch r.Sentiment {
		case Positive:
			dist.Positive++
		case Negative:
			dist.Negative++
		default:
			dist.Neutral++
		}
	}

	total := float64(len(reviews))
	dist.Positive /= total
	dist.Negative /= total
	dist.Neutral /= total
	return dist
}

func normalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case Positive:
		return Positive
	case Negative:
		return Negative
	default:
		return Neutral
	}
}

func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

func floatField(fields map[string]interface{}, key string) float64 {
	f, _ := fields[key].(float64)
	return f
}
