package sentiment

import (
	"context"
	"fmt"
	"math"
	"testing"
)

type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestAnalyze_EmptyReviews(t *testing.T) {
	client := &stubClient{}
	batch := NewExtractor(client).Analyze(context.Background(), nil)

	if client.calls != 0 {
		t.Fatalf("model called %d times for empty input, want 0", client.calls)
	}
	if len(batch.Reviews) != 0 {
		t.Fatalf("reviews = %d, want 0", len(batch.Reviews))
	}
	if batch.Distribution != DefaultDistribution() {
		t.Fatalf("distribution = %+v, want default neutral", batch.Distribution)
	}
	if batch.Summary != "No reviews available for sentiment analysis" {
		t.Fatalf("summary = %q", batch.Summary)
	}
}

func TestAnalyze_ModelReply(t *testing.T) {
	client := &stubClient{reply: `{
		"reviews": [
			{"text": "Great food", "sentiment": "Positive", "confidence": 0.95, "emotions": ["satisfied"]},
			{"text": "Too slow", "sentiment": "negative", "confidence": 0.8}
		],
		"overall_sentiment_distribution": {"positive": 0.5, "negative": 0.5, "neutral": 0.0},
		"dominant_emotions": ["satisfied", "impatient"],
		"sentiment_summary": "Split opinions"
	}`}

	batch := NewExtractor(client).Analyze(context.Background(), []string{"Great food", "Too slow"})

	if len(batch.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(batch.Reviews))
	}
	if batch.Reviews[0].Sentiment != Positive {
		t.Fatalf("label not normalized: %q", batch.Reviews[0].Sentiment)
	}
	if batch.Reviews[1].Sentiment != Negative {
		t.Fatalf("second label = %q, want negative", batch.Reviews[1].Sentiment)
	}
	if batch.Distribution.Positive != 0.5 || batch.Distribution.Negative != 0.5 {
		t.Fatalf("distribution = %+v", batch.Distribution)
	}
	if len(batch.DominantEmotions) != 2 || batch.DominantEmotions[0] != "satisfied" {
		t.Fatalf("dominant emotions = %v", batch.DominantEmotions)
	}
	if batch.Summary != "Split opinions" {
		t.Fatalf("summary = %q", batch.Summary)
	}
}

func TestAnalyze_ModelErrorFallsBackToKeywords(t *testing.T) {
	client := &stubClient{err: fmt.Errorf("rate limited")}
	batch := NewExtractor(client).Analyze(context.Background(), []string{
		"Terrible service, rude staff",
	})

	if len(batch.Reviews) != 1 {
		t.Fatalf("reviews = %d, want 1", len(batch.Reviews))
	}
	if batch.Reviews[0].Sentiment != Negative {
		t.Fatalf("sentiment = %q, want negative", batch.Reviews[0].Sentiment)
	}
	if batch.Reviews[0].Confidence != 0.6 {
		t.Fatalf("confidence = %v, want 0.6", batch.Reviews[0].Confidence)
	}
}

func TestAnalyze_UnparseableReplyFallsBackToKeywords(t *testing.T) {
	client := &stubClient{reply: "I cannot classify these reviews."}
	batch := NewExtractor(client).Analyze(context.Background(), []string{"Amazing, the best!"})

	if batch.Reviews[0].Sentiment != Positive {
		t.Fatalf("sentiment = %q, want positive", batch.Reviews[0].Sentiment)
	}
	if batch.Summary != "Keyword-based fallback analysis of 1 reviews" {
		t.Fatalf("summary = %q", batch.Summary)
	}
}

func TestAnalyze_DistributionDerivedWhenMissing(t *testing.T) {
	client := &stubClient{reply: `{
		"reviews": [
			{"text": "a", "sentiment": "positive", "confidence": 0.9},
			{"text": "b", "sentiment": "positive", "confidence": 0.9},
			{"text": "c", "sentiment": "neutral", "confidence": 0.5}
		]
	}`}

	batch := NewExtractor(client).Analyze(context.Background(), []string{"a", "b", "c"})

	if math.Abs(batch.Distribution.Positive-2.0/3.0) > 1e-9 {
		t.Fatalf("positive = %v, want 2/3", batch.Distribution.Positive)
	}
	if math.Abs(batch.Distribution.Neutral-1.0/3.0) > 1e-9 {
		t.Fatalf("neutral = %v, want 1/3", batch.Distribution.Neutral)
	}
}

func TestAnalyze_ReplyCappedToReviewsFed(t *testing.T) {
	client := &stubClient{reply: `{
		"reviews": [
			{"text": "a", "sentiment": "positive", "confidence": 0.9},
			{"text": "b", "sentiment": "negative", "confidence": 0.9},
			{"text": "c", "sentiment": "negative", "confidence": 0.9}
		]
	}`}

	batch := NewExtractor(client).Analyze(context.Background(), []string{"only one review"})

	if len(batch.Reviews) != 1 {
		t.Fatalf("reviews = %d, want at most the 1 fed", len(batch.Reviews))
	}
	// The derived distribution reflects the capped list, not the
	// hallucinated entries.
	if batch.Distribution.Positive != 1 {
		t.Fatalf("distribution = %+v, want all positive", batch.Distribution)
	}
}

func TestKeywordFallback(t *testing.T) {
	batch := KeywordFallback([]string{
		"Great coffee, friendly staff, love it",
		"Worst experience, rude and dirty",
		"It was fine",
	})

	want := []string{Positive, Negative, Neutral}
	for i, label := range want {
		if batch.Reviews[i].Sentiment != label {
			t.Fatalf("review %d = %q, want %q", i, batch.Reviews[i].Sentiment, label)
		}
	}

	third := 1.0 / 3.0
	if math.Abs(batch.Distribution.Positive-third) > 1e-9 ||
		math.Abs(batch.Distribution.Negative-third) > 1e-9 ||
		math.Abs(batch.Distribution.Neutral-third) > 1e-9 {
		t.Fatalf("distribution = %+v, want even thirds", batch.Distribution)
	}
}

func TestKeywordFallback_CapsReviewCount(t *testing.T) {
	reviews := make([]string, 25)
	for i := range reviews {
		reviews[i] = "good"
	}

	batch := KeywordFallback(reviews)
	if len(batch.Reviews) != maxKeywordReviews {
		t.Fatalf("reviews = %d, want %d", len(batch.Reviews), maxKeywordReviews)
	}
}
