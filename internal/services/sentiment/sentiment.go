package sentiment

// Sentiment labels used throughout the pipeline.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// ReviewSentiment is the per-review classification. Records are never
// mutated after creation.
type ReviewSentiment struct {
	Text       string   `json:"text"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Emotions   []string `json:"emotions,omitempty"`
}

// Distribution is a three-way fractional breakdown of review tone. The
// fractions should sum to roughly 1.0 but that is not enforced.
type Distribution struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// DefaultDistribution is used when no sentiment data exists.
func DefaultDistribution() Distribution {
	return Distribution{Positive: 0, Negative: 0, Neutral: 1}
}

// Overall collapses the distribution to a single label. Ties favor
// positive, then negative, then neutral: the first condition satisfied
// wins.
func (d Distribution) Overall() string {
	switch {
	case d.Positive > d.Negative && d.Positive > d.Neutral:
		return Positive
	case d.Negative > d.Neutral:
		return Negative
	default:
		return Neutral
	}
}

// Score maps the distribution onto [-1, 1] as positive minus negative.
func (d Distribution) Score() float64 {
	score := d.Positive - d.Negative
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// BatchResult is the outcome of classifying one business's reviews.
type BatchResult struct {
	Reviews          []ReviewSentiment `json:"reviews"`
	Distribution     Distribution      `json:"overall_sentiment_distribution"`
	DominantEmotions []string          `json:"dominant_emotions,omitempty"`
	Summary          string            `json:"sentiment_summary,omitempty"`
}

// ToMap renders the batch result as the opaque sentiment_summary blob
// embedded in a business analysis when the model did not provide one.
func (r BatchResult) ToMap() map[string]interface{} {
	reviews := make([]interface{}, 0, len(r.Reviews))
	for _, rv := range r.Reviews {
		review := map[string]interface{}{
			"text":       rv.Text,
			"sentiment":  rv.Sentiment,
			"confidence": rv.Confidence,
		}
		if len(rv.Emotions) > 0 {
			emotions := make([]interface{}, 0, len(rv.Emotions))
			for _, e := range rv.Emotions {
				emotions = append(emotions, e)
			}
			review["emotions"] = emotions
		}
		reviews = append(reviews, review)
	}

	emotions := make([]interface{}, 0, len(r.DominantEmotions))
	for _, e := range r.DominantEmotions {
		emotions = append(emotions, e)
	}

	return map[string]interface{}{
		"reviews": reviews,
		"overall_sentiment_distribution": map[string]interface{}{
			"positive": r.Distribution.Positive,
			"negative": r.Distribution.Negative,
			"neutral":  r.Distribution.Neutral,
		},
		"overall_sentiment": r.Distribution.Overall(),
		"dominant_emotions": emotions,
		"sentiment_summary": r.Summary,
	}
}
