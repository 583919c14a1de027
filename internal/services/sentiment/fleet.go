package sentiment

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// BusinessSentiment is the per-business view the fleet aggregation
// operates on. Callers derive it from their analysis records.
type BusinessSentiment struct {
	Name         string       `json:"name"`
	Distribution Distribution `json:"distribution"`
	Emotions     []string     `json:"emotions,omitempty"`
	ReviewCount  int          `json:"review_count"`
	Summary      string       `json:"summary,omitempty"`
}

// Score is the business's scalar sentiment, positive minus negative.
func (b BusinessSentiment) Score() float64 {
	return b.Distribution.Score()
}

// EmotionCount is one entry of the ranked emotion frequency list.
type EmotionCount struct {
	Emotion   string `json:"emotion"`
	Frequency int    `json:"frequency"`
}

// FleetReport aggregates sentiment across the full set of businesses
// processed in one run. It is recomputed from scratch, never persisted
// incrementally.
type FleetReport struct {
	TotalBusinesses       int                 `json:"total_businesses"`
	OverallDistribution   Distribution        `json:"overall_sentiment_distribution"`
	TopEmotions           []EmotionCount      `json:"top_emotions"`
	BusinessesBySentiment map[string][]string `json:"businesses_by_sentiment"`
}

// PerformerScore names a business together with its sentiment score.
type PerformerScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Trends carries fleet-level sentiment statistics.
type Trends struct {
	AverageDistribution    Distribution   `json:"average_sentiment_distribution"`
	MostPositive           PerformerScore `json:"most_positive_business"`
	MostNegative           PerformerScore `json:"most_negative_business"`
	Volatility             float64        `json:"sentiment_volatility"`
	OverallMarketSentiment string         `json:"overall_market_sentiment"`
}

// Sentiment pattern buckets, mutually exclusive, evaluated in this
// fixed priority order.
const (
	PatternHighlyPositive  = "highly_positive"
	PatternHighlyNegative  = "highly_negative"
	PatternNeutralDominant = "neutral_dominant"
	PatternPolarized       = "polarized"
	PatternMixed           = "mixed_sentiment"
)

const (
	topEmotionCount = 5

	// Only the most common emotions are loud enough to call a theme.
	insightEmotionWindow = 3
)

// AggregateFleet computes the fleet report. Empty input yields a
// zero-valued report, not an error.
func AggregateFleet(items []BusinessSentiment) FleetReport {
	report := FleetReport{
		TopEmotions: []EmotionCount{},
		BusinessesBySentiment: map[string][]string{
			Positive: {},
			Negative: {},
			Neutral:  {},
		},
	}
	if len(items) == 0 {
		return report
	}

	report.TotalBusinesses = len(items)

	emotionCounts := make(map[string]int)
	var emotionOrder []string

	for _, item := range items {
		report.OverallDistribution.Positive += item.Distribution.Positive
		report.OverallDistribution.Negative += item.Distribution.Negative
		report.OverallDistribution.Neutral += item.Distribution.Neutral

		overall := item.Distribution.Overall()
		report.BusinessesBySentiment[overall] = append(report.BusinessesBySentiment[overall], item.Name)

		for _, emotion := range item.Emotions {
			if _, seen := emotionCounts[emotion]; !seen {
				emotionOrder = append(emotionOrder, emotion)
			}
			emotionCounts[emotion]++
		}
	}

	total := float64(len(items))
	report.OverallDistribution.Positive /= total
	report.OverallDistribution.Negative /= total
	report.OverallDistribution.Neutral /= total

	// Rank by frequency; ties keep first-encountered order.
	ranked := make([]EmotionCount, 0, len(emotionOrder))
	for _, emotion := range emotionOrder {
		ranked = append(ranked, EmotionCount{Emotion: emotion, Frequency: emotionCounts[emotion]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Frequency > ranked[j].Frequency
	})
	if len(ranked) > topEmotionCount {
		ranked = ranked[:topEmotionCount]
	}
	report.TopEmotions = ranked

	return report
}

// CalculateTrends computes average distribution, extreme performers and
// volatility (population standard deviation of per-business scores).
// Empty input yields zero values.
func CalculateTrends(items []BusinessSentiment) Trends {
	if len(items) == 0 {
		return Trends{OverallMarketSentiment: Neutral}
	}

	var trends Trends
	best, worst := items[0], items[0]
	scores := make([]float64, 0, len(items))

	for _, item := range items {
		trends.AverageDistribution.Positive += item.Distribution.Positive
		trends.AverageDistribution.Negative += item.Distribution.Negative
		trends.AverageDistribution.Neutral += item.Distribution.Neutral
		scores = append(scores, item.Score())

		// Strict comparison keeps the first occurrence on ties.
		if item.Score() > best.Score() {
			best = item
		}
		if item.Score() < worst.Score() {
			worst = item
		}
	}

	total := float64(len(items))
	trends.AverageDistribution.Positive /= total
	trends.AverageDistribution.Negative /= total
	trends.AverageDistribution.Neutral /= total

	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= total

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	trends.Volatility = math.Sqrt(variance / total)

	trends.MostPositive = PerformerScore{Name: best.Name, Score: best.Score()}
	trends.MostNegative = PerformerScore{Name: worst.Name, Score: worst.Score()}
	trends.OverallMarketSentiment = trends.AverageDistribution.Overall()

	return trends
}

// IdentifyPatterns buckets each business into exactly one sentiment
// pattern. The branch order is the contract: a business matching an
// earlier condition never reaches a later bucket.
func IdentifyPatterns(items []BusinessSentiment) map[string][]string {
	patterns := map[string][]string{
		PatternHighlyPositive:  {},
		PatternHighlyNegative:  {},
		PatternNeutralDominant: {},
		PatternPolarized:       {},
		PatternMixed:           {},
	}

	for _, item := range items {
		d := item.Distribution
		switch {
		case d.Positive > 0.7:
			patterns[PatternHighlyPositive] = append(patterns[PatternHighlyPositive], item.Name)
		case d.Negative > 0.5:
			patterns[PatternHighlyNegative] = append(patterns[PatternHighlyNegative], item.Name)
		case d.Neutral > 0.6:
			patterns[PatternNeutralDominant] = append(patterns[PatternNeutralDominant], item.Name)
		case d.Positive > 0.3 && d.Negative > 0.3 && d.Neutral < 0.3:
			patterns[PatternPolarized] = append(patterns[PatternPolarized], item.Name)
		default:
			patterns[PatternMixed] = append(patterns[PatternMixed], item.Name)
		}
	}

	return patterns
}

// GenerateInsights produces fleet-level insight strings for the text
// report.
func GenerateInsights(items []BusinessSentiment) []string {
	var insights []string
	if len(items) == 0 {
		return insights
	}

	report := AggregateFleet(items)
	posPct := report.OverallDistribution.Positive * 100
	negPct := report.OverallDistribution.Negative * 100

	if posPct > 60 {
		insights = append(insights, fmt.Sprintf("Market shows strong positive sentiment (%.1f%% positive)", posPct))
	} else if negPct > 40 {
		insights = append(insights, fmt.Sprintf("Market shows concerning negative sentiment (%.1f%% negative)", negPct))
	}

	trends := CalculateTrends(items)
	if trends.MostNegative.Score < -0.3 {
		insights = append(insights, fmt.Sprintf("'%s' shows critically low sentiment (score: %.2f)",
			trends.MostNegative.Name, trends.MostNegative.Score))
	}
	if trends.MostPositive.Score > 0.5 {
		insights = append(insights, fmt.Sprintf("'%s' demonstrates excellent customer sentiment (score: %.2f)",
			trends.MostPositive.Name, trends.MostPositive.Score))
	}

	topEmotions := report.TopEmotions
	if len(topEmotions) > insightEmotionWindow {
		topEmotions = topEmotions[:insightEmotionWindow]
	}
	for _, emotion := range topEmotions {
		switch strings.ToLower(emotion.Emotion) {
		case "frustrated", "frustration":
			insights = append(insights, "Customer frustration is a recurring theme across businesses")
		case "satisfied", "satisfaction":
			insights = append(insights, "Customer satisfaction levels are generally high")
		}
	}

	return insights
}
