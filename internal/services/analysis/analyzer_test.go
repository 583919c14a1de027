package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"places-insight/internal/services/sentiment"
)

// routingClient answers sentiment and analysis prompts separately so a
// test can fail one path while keeping the other healthy.
type routingClient struct {
	sentimentReply string
	sentimentErr   error
	analysisReply  string
	analysisErr    error
	calls          []string
}

func (c *routingClient) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int64) (string, error) {
	switch {
	case strings.HasPrefix(prompt, "Classify the sentiment"):
		c.calls = append(c.calls, "sentiment")
		return c.sentimentReply, c.sentimentErr
	default:
		c.calls = append(c.calls, "analysis")
		return c.analysisReply, c.analysisErr
	}
}

func testBusiness() Business {
	price := 2
	return Business{
		Name:             "Amazing Coffee Shop",
		Address:          "123 Main St",
		Rating:           4.5,
		UserRatingsTotal: 150,
		PriceLevel:       &price,
		Types:            TypeList{"cafe"},
		Lat:              40.7,
		Lng:              -74.0,
		Reviews:          "Great coffee!|||Friendly staff|||A bit crowded",
	}
}

func TestAnalyzeBusiness(t *testing.T) {
	client := &routingClient{
		sentimentReply: `{
			"reviews": [{"text": "Great coffee!", "sentiment": "positive", "confidence": 0.9}],
			"overall_sentiment_distribution": {"positive": 0.8, "negative": 0.1, "neutral": 0.1},
			"dominant_emotions": ["satisfied"],
			"sentiment_summary": "Customers are happy"
		}`,
		analysisReply: "```json\n" + `{
			"summary": "Popular cafe with loyal regulars.",
			"recommendations": ["Add more seating"],
			"strengths": ["Coffee quality"],
			"weaknesses": ["Crowding"],
			"service_quality_score": 8.0,
			"user_satisfaction_level": "high"
		}` + "\n```",
	}

	analyzer := NewAnalyzer(client, WithThrottle(0))
	result := analyzer.AnalyzeBusiness(context.Background(), testBusiness())

	if result.Name != "Amazing Coffee Shop" {
		t.Fatalf("name = %q", result.Name)
	}
	if result.Summary != "Popular cafe with loyal regulars." {
		t.Fatalf("summary = %q", result.Summary)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "Add more seating" {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
	if len(result.ReviewSentiments) != 1 || result.ReviewSentiments[0].Sentiment != sentiment.Positive {
		t.Fatalf("review sentiments = %v", result.ReviewSentiments)
	}
	if result.OverallSentiment() != sentiment.Positive {
		t.Fatalf("overall = %q", result.OverallSentiment())
	}
	if len(result.DominantEmotions) != 1 || result.DominantEmotions[0] != "satisfied" {
		t.Fatalf("emotions = %v", result.DominantEmotions)
	}

	// Sentiment pass runs before the main analysis.
	if len(client.calls) != 2 || client.calls[0] != "sentiment" || client.calls[1] != "analysis" {
		t.Fatalf("call order = %v", client.calls)
	}
}

func TestAnalyzeBusiness_ModelFailure(t *testing.T) {
	client := &routingClient{
		sentimentErr: fmt.Errorf("unavailable"),
		analysisErr:  fmt.Errorf("unavailable"),
	}

	analyzer := NewAnalyzer(client, WithThrottle(0))
	result := analyzer.AnalyzeBusiness(context.Background(), testBusiness())

	if result.Name != "Amazing Coffee Shop" {
		t.Fatalf("degraded record must keep the name, got %q", result.Name)
	}
	if !strings.HasPrefix(result.Summary, "Analysis failed for Amazing Coffee Shop.") {
		t.Fatalf("summary = %q", result.Summary)
	}
	if len(result.Recommendations) != 1 ||
		result.Recommendations[0] != "Unable to generate recommendations due to analysis error" {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
}

func TestAnalyzeBusiness_UnstructuredReply(t *testing.T) {
	client := &routingClient{
		sentimentErr:  fmt.Errorf("unavailable"),
		analysisReply: "This cafe seems nice but I cannot format the result.",
	}

	analyzer := NewAnalyzer(client, WithThrottle(0))
	result := analyzer.AnalyzeBusiness(context.Background(), testBusiness())

	if result.Summary != "This cafe seems nice but I cannot format the result." {
		t.Fatalf("summary = %q", result.Summary)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != fallbackRecommendation {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
	// Keyword fallback sentiment still attaches.
	if result.SentimentSummary == nil {
		t.Fatalf("expected fallback sentiment summary")
	}
}

func TestAnalyzeBusinesses_Totality(t *testing.T) {
	client := &routingClient{
		sentimentErr: fmt.Errorf("down"),
		analysisErr:  fmt.Errorf("down"),
	}

	businesses := []Business{
		testBusiness(),
		{Name: "Second Spot"},
		{Name: "Third Spot", Reviews: "ok"},
	}

	analyzer := NewAnalyzer(client, WithThrottle(0))
	analyses := analyzer.AnalyzeBusinesses(context.Background(), businesses)

	if len(analyses) != len(businesses) {
		t.Fatalf("got %d analyses, want %d", len(analyses), len(businesses))
	}
	for i, a := range analyses {
		if a.Name != businesses[i].Name {
			t.Fatalf("order broken: %q at %d", a.Name, i)
		}
	}
}

func TestQueryBusinesses(t *testing.T) {
	client := &routingClient{
		analysisReply: "Amazing Coffee Shop is the best rated option in the area.",
	}

	analyzer := NewAnalyzer(client, WithThrottle(0))
	businesses := []Business{testBusiness(), {Name: "Quiet Diner"}}

	result := analyzer.QueryBusinesses(context.Background(), "Which cafe is best?", businesses)

	if result.Question != "Which cafe is best?" {
		t.Fatalf("question = %q", result.Question)
	}
	if result.Answer == "" {
		t.Fatalf("empty answer")
	}
	if len(result.SupportingBusinesses) != 1 || result.SupportingBusinesses[0] != "Amazing Coffee Shop" {
		t.Fatalf("supporting = %v", result.SupportingBusinesses)
	}
}

func TestQueryBusinesses_Failure(t *testing.T) {
	client := &routingClient{analysisErr: fmt.Errorf("timeout")}

	analyzer := NewAnalyzer(client, WithThrottle(0))
	result := analyzer.QueryBusinesses(context.Background(), "Anything open late?", nil)

	if !strings.HasPrefix(result.Answer, "Sorry, I couldn't process your question") {
		t.Fatalf("answer = %q", result.Answer)
	}
	if len(result.SupportingBusinesses) != 0 {
		t.Fatalf("supporting = %v", result.SupportingBusinesses)
	}
}
