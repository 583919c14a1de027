package report

import (
	"fmt"
	"strings"

	"places-insight/internal/services/analysis"
	"places-insight/internal/services/sentiment"
)

const sectionRule = "================================================================"

// RenderText produces the human-readable sentiment report.
func RenderText(analyses []analysis.Analysis, fleet sentiment.FleetReport, trends sentiment.Trends, patterns map[string][]string, insights []string) string {
	var b strings.Builder

	b.WriteString(sectionRule + "\n")
	b.WriteString("BUSINESS SENTIMENT ANALYSIS REPORT\n")
	b.WriteString(sectionRule + "\n\n")

	writeFleetSection(&b, fleet, trends)
	writePatternSection(&b, patterns)
	writeInsightSection(&b, insights)
	writeBusinessSection(&b, analyses)

	b.WriteString(sectionRule + "\n")
	b.WriteString("END OF REPORT\n")
	b.WriteString(sectionRule + "\n")

	return b.String()
}

func writeFleetSection(b *strings.Builder, fleet sentiment.FleetReport, trends sentiment.Trends) {
	b.WriteString("FLEET OVERVIEW\n")
	b.WriteString("--------------\n")
	fmt.Fprintf(b, "Total businesses analyzed: %d\n", fleet.TotalBusinesses)
	fmt.Fprintf(b, "Overall sentiment distribution: %.1f%% positive, %.1f%% negative, %.1f%% neutral\n",
		fleet.OverallDistribution.Positive*100,
		fleet.OverallDistribution.Negative*100,
		fleet.OverallDistribution.Neutral*100)
	fmt.Fprintf(b, "Overall market sentiment: %s\n", trends.OverallMarketSentiment)
	fmt.Fprintf(b, "Sentiment volatility: %.3f\n", trends.Volatility)

	if trends.MostPositive.Name != "" {
		fmt.Fprintf(b, "Most positive business: %s (score: %.2f)\n",
			trends.MostPositive.Name, trends.MostPositive.Score)
	}
	if trends.MostNegative.Name != "" {
		fmt.Fprintf(b, "Most negative business: %s (score: %.2f)\n",
			trends.MostNegative.Name, trends.MostNegative.Score)
	}

	if len(fleet.TopEmotions) > 0 {
		b.WriteString("Top customer emotions:\n")
		for _, e := range fleet.TopEmotions {
			fmt.Fprintf(b, "  - %s (%d mentions)\n", e.Emotion, e.Frequency)
		}
	}
	b.WriteString("\n")
}

// patternOrder fixes the section ordering; map iteration would shuffle
// it between runs.
var patternOrder = []string{
	sentiment.PatternHighlyPositive,
	sentiment.PatternHighlyNegative,
	sentiment.PatternNeutralDominant,
	sentiment.PatternPolarized,
	sentiment.PatternMixed,
}

func writePatternSection(b *strings.Builder, patterns map[string][]string) {
	b.WriteString("SENTIMENT PATTERNS\n")
	b.WriteString("------------------\n")
	for _, name := range patternOrder {
		businesses := patterns[name]
		if len(businesses) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s: %s\n", strings.ReplaceAll(name, "_", " "), strings.Join(businesses, ", "))
	}
	b.WriteString("\n")
}

func writeInsightSection(b *strings.Builder, insights []string) {
	if len(insights) == 0 {
		return
	}
	b.WriteString("KEY INSIGHTS\n")
	b.WriteString("------------\n")
	for _, insight := range insights {
		fmt.Fprintf(b, "  - %s\n", insight)
	}
	b.WriteString("\n")
}

func writeBusinessSection(b *strings.Builder, analyses []analysis.Analysis) {
	b.WriteString("BUSINESS DETAILS\n")
	b.WriteString("----------------\n\n")

	for i := range analyses {
		a := &analyses[i]
		d := a.SentimentDistribution()

		fmt.Fprintf(b, "%s\n", a.Name)
		fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(a.Name)))
		fmt.Fprintf(b, "Overall sentiment: %s (score: %.2f)\n", a.OverallSentiment(), a.SentimentScore())
		fmt.Fprintf(b, "Distribution: %.1f%% positive, %.1f%% negative, %.1f%% neutral\n",
			d.Positive*100, d.Negative*100, d.Neutral*100)
		fmt.Fprintf(b, "Reviews analyzed: %d\n", len(a.ReviewSentiments))

		if emotions := a.Emotions(); len(emotions) > 0 {
			fmt.Fprintf(b, "Dominant emotions: %s\n", strings.Join(emotions, ", "))
		}
		if a.Summary != "" {
			fmt.Fprintf(b, "Summary: %s\n", a.Summary)
		}
		if len(a.Recommendations) > 0 {
			b.WriteString("Recommendations:\n")
			for _, rec := range a.Recommendations {
				fmt.Fprintf(b, "  - %s\n", rec)
			}
		}
		b.WriteString("\n")
	}
}
