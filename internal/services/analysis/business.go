package analysis

import (
	"encoding/json"
	"strings"

	"places-insight/internal/services/sentiment"
)

// Business is one place record as exported by the places source.
// Immutable once loaded.
type Business struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Types            TypeList `json:"types"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	// Reviews is the raw review blob, individual texts joined with
	// the triple-pipe delimiter.
	Reviews string `json:"reviews"`
}

// TypeList holds the ordered business category tags. Place exports
// carry them either as a JSON array or as one comma-separated string.
type TypeList []string

func (t *TypeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}

	*t = nil
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

func (t TypeList) String() string {
	return strings.Join(t, ", ")
}

// Analysis is the structured result for one business. Created once by
// the analyzer and read-only afterward; the sentiment accessors are
// derived on demand and never cache.
type Analysis struct {
	Name                  string                      `json:"name"`
	Summary               string                      `json:"summary"`
	Recommendations       []string                    `json:"recommendations"`
	Strengths             []string                    `json:"strengths,omitempty"`
	Weaknesses            []string                    `json:"weaknesses,omitempty"`
	ServiceQualityScore   *float64                    `json:"service_quality_score,omitempty"`
	StaffBehaviorScore    *float64                    `json:"staff_behavior_score,omitempty"`
	PricingPerception     string                      `json:"pricing_perception,omitempty"`
	UserSatisfactionLevel string                      `json:"user_satisfaction_level,omitempty"`
	SentimentSummary      map[string]interface{}      `json:"sentiment_summary,omitempty"`
	ReviewSentiments      []sentiment.ReviewSentiment `json:"review_sentiments,omitempty"`
	DominantEmotions      []string                    `json:"dominant_emotions,omitempty"`
	// Extras holds model-provided keys the schema does not know about.
	Extras map[string]interface{} `json:"-"`
}

// SentimentDistribution reads the distribution out of the sentiment
// summary blob. Missing or malformed data yields the neutral default.
func (a *Analysis) SentimentDistribution() sentiment.Distribution {
	raw, ok := a.SentimentSummary["overall_sentiment_distribution"].(map[string]interface{})
	if !ok {
		return sentiment.DefaultDistribution()
	}

	return sentiment.Distribution{
		Positive: nonNegative(toFloat(raw["positive"])),
		Negative: nonNegative(toFloat(raw["negative"])),
		Neutral:  nonNegative(toFloat(raw["neutral"])),
	}
}

// OverallSentiment prefers the label from the summary blob and falls
// back to collapsing the distribution.
func (a *Analysis) OverallSentiment() string {
	if label, ok := a.SentimentSummary["overall_sentiment"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case sentiment.Positive:
			return sentiment.Positive
		case sentiment.Negative:
			return sentiment.Negative
		case sentiment.Neutral:
			return sentiment.Neutral
		}
	}
	return a.SentimentDistribution().Overall()
}

// SentimentScore is positive minus negative, in [-1, 1].
func (a *Analysis) SentimentScore() float64 {
	return a.SentimentDistribution().Score()
}

// HasSentimentData reports whether any sentiment signal was attached.
func (a *Analysis) HasSentimentData() bool {
	if len(a.ReviewSentiments) > 0 {
		return true
	}
	_, ok := a.SentimentSummary["overall_sentiment_distribution"]
	return ok
}

// PositiveReviews returns the per-review records labeled positive, in
// their original order.
func (a *Analysis) PositiveReviews() []sentiment.ReviewSentiment {
	return a.reviewsWithLabel(sentiment.Positive)
}

// NegativeReviews returns the per-review records labeled negative.
func (a *Analysis) NegativeReviews() []sentiment.ReviewSentiment {
	return a.reviewsWithLabel(sentiment.Negative)
}

func (a *Analysis) reviewsWithLabel(label string) []sentiment.ReviewSentiment {
	var matched []sentiment.ReviewSentiment
	for _, r := range a.ReviewSentiments {
		if r.Sentiment == label {
			matched = append(matched, r)
		}
	}
	return matched
}

// Emotions returns the dominant emotion tags, reading the summary blob
// when the merged field is empty.
func (a *Analysis) Emotions() []string {
	if len(a.DominantEmotions) > 0 {
		return a.DominantEmotions
	}

	raw, ok := a.SentimentSummary["dominant_emotions"].([]interface{})
	if !ok {
		return nil
	}
	var emotions []string
	for _, e := range raw {
		if s, ok := e.(string); ok && s != "" {
			emotions = append(emotions, s)
		}
	}
	return emotions
}

// SentimentView projects the analysis onto the shape the fleet
// aggregation consumes.
func (a *Analysis) SentimentView() sentiment.BusinessSentiment {
	return sentiment.BusinessSentiment{
		Name:         a.Name,
		Distribution: a.SentimentDistribution(),
		Emotions:     a.Emotions(),
		ReviewCount:  len(a.ReviewSentiments),
		Summary:      a.Summary,
	}
}

// FleetView converts a run's analyses for the fleet aggregator.
func FleetView(analyses []Analysis) []sentiment.BusinessSentiment {
	views := make([]sentiment.BusinessSentiment, 0, len(analyses))
	for i := range analyses {
		views = append(views, analyses[i].SentimentView())
	}
	return views
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
