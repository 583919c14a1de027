package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"places-insight/internal/services/llm"
	"places-insight/internal/services/sentiment"

	"github.com/rs/zerolog/log"
)

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 1000
	maxPromptReviews    = 10

	// Inter-business delay to respect external rate limits. A throttle,
	// not a correctness mechanism; tests run with zero.
	defaultThrottle = 1200 * time.Millisecond
)

// Analyzer runs the per-business pipeline: normalize reviews, extract
// sentiment, build the analysis prompt, invoke the model, parse and
// merge. One business in, one Analysis out; it never returns an error.
type Analyzer struct {
	llm       llm.Client
	extractor *sentiment.Extractor
	template  *PromptTemplate
	throttle  time.Duration
}

type Option func(*Analyzer)

// WithThrottle overrides the inter-business delay. Zero disables it.
func WithThrottle(d time.Duration) Option {
	return func(a *Analyzer) { a.throttle = d }
}

func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		llm:       client,
		extractor: sentiment.NewExtractor(client),
		template:  NewAnalysisPrompt(),
		throttle:  defaultThrottle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeBusiness produces the analysis record for a single business.
// Failures from sentiment extraction onward short-circuit into a
// degraded record that keeps the business name and describes the error,
// so downstream aggregation stays total.
func (a *Analyzer) AnalyzeBusiness(ctx context.Context, b Business) Analysis {
	reviews := SplitReviews(b.Reviews)
	batch := a.extractor.Analyze(ctx, reviews)

	prompt, err := a.template.Render(a.promptFields(b, reviews, batch))
	if err != nil {
		return failedAnalysis(b.Name, err)
	}

	text, err := a.llm.Complete(ctx, prompt, analysisTemperature, analysisMaxTokens)
	if err != nil {
		log.Error().Err(err).Str("business", b.Name).Msg("Analysis completion failed")
		return failedAnalysis(b.Name, err)
	}

	result := fromPayload(b.Name, ParseResponse(text))
	mergeSentiment(&result, batch)
	return result
}

// AnalyzeBusinesses processes businesses strictly sequentially, in
// input order. The result always has the same length and name order as
// the input, regardless of individual failures.
func (a *Analyzer) AnalyzeBusinesses(ctx context.Context, businesses []Business) []Analysis {
	total := len(businesses)
	log.Info().Int("total", total).Msg("Starting business analysis")

	analyses := make([]Analysis, 0, total)
	for i, b := range businesses {
		log.Info().
			Int("index", i+1).
			Int("total", total).
			Str("business", b.Name).
			Msg("Analyzing business")

		analyses = append(analyses, a.AnalyzeBusiness(ctx, b))

		if a.throttle > 0 {
			time.Sleep(a.throttle)
		}
	}

	log.Info().Int("completed", len(analyses)).Msg("Completed business analysis")
	return analyses
}

func (a *Analyzer) promptFields(b Business, reviews []string, batch sentiment.BatchResult) map[string]string {
	return map[string]string{
		"name":              b.Name,
		"address":           b.Address,
		"rating":            strconv.FormatFloat(b.Rating, 'f', 1, 64),
		"total_ratings":     strconv.Itoa(b.UserRatingsTotal),
		"price_level":       FormatPriceLevel(b.PriceLevel),
		"business_types":    b.Types.String(),
		"reviews":           FormatReviews(reviews, maxPromptReviews),
		"location":          fmt.Sprintf("%v, %v", b.Lat, b.Lng),
		"sentiment_context": sentimentContext(batch),
	}
}

func sentimentContext(batch sentiment.BatchResult) string {
	if len(batch.Reviews) == 0 {
		return "Not available"
	}

	d := batch.Distribution
	context := fmt.Sprintf("Overall %s (%.0f%% positive, %.0f%% negative, %.0f%% neutral)",
		d.Overall(), d.Positive*100, d.Negative*100, d.Neutral*100)
	if len(batch.DominantEmotions) > 0 {
		context += fmt.Sprintf("; dominant emotions: %s", strings.Join(batch.DominantEmotions, ", "))
	}
	if batch.Summary != "" {
		context += ". " + batch.Summary
	}
	return context
}

func fromPayload(name string, payload Payload) Analysis {
	return Analysis{
		Name:                  name,
		Summary:               payload.Summary,
		Recommendations:       payload.Recommendations,
		Strengths:             payload.Strengths,
		Weaknesses:            payload.Weaknesses,
		ServiceQualityScore:   payload.ServiceQualityScore,
		StaffBehaviorScore:    payload.StaffBehaviorScore,
		PricingPerception:     payload.PricingPerception,
		UserSatisfactionLevel: payload.UserSatisfactionLevel,
		SentimentSummary:      payload.SentimentSummary,
		Extras:                payload.Extras,
	}
}

// mergeSentiment attaches the batch result: its reviews become the
// record's review sentiments verbatim, and the batch substitutes for a
// sentiment summary the model did not provide.
func mergeSentiment(result *Analysis, batch sentiment.BatchResult) {
	result.ReviewSentiments = batch.Reviews
	if result.SentimentSummary == nil {
		result.SentimentSummary = batch.ToMap()
	}
	if len(result.DominantEmotions) == 0 {
		result.DominantEmotions = batch.DominantEmotions
	}
}

func failedAnalysis(name string, err error) Analysis {
	return Analysis{
		Name:            name,
		Summary:         fmt.Sprintf("Analysis failed for %s. Error: %v", name, err),
		Recommendations: []string{"Unable to generate recommendations due to analysis error"},
	}
}
