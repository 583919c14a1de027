package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	queryTemperature = 0.5
	queryMaxTokens   = 800
)

// QueryResult is the answer to a free-text question about the fleet.
type QueryResult struct {
	Question             string   `json:"question"`
	Answer               string   `json:"answer"`
	SupportingBusinesses []string `json:"supporting_businesses"`
}

const queryTemplate = `Based on the following business data, answer this question: {question}

Business Data:
{businesses_data}

Provide a comprehensive answer that references specific businesses when relevant.
Include business names in your response when they support your answer.`

// QueryBusinesses answers a question against the fleet metadata.
// Supporting businesses are those whose names appear in the answer,
// matched case-insensitively. A model failure yields an apologetic
// answer rather than an error.
func (a *Analyzer) QueryBusinesses(ctx context.Context, question string, businesses []Business) QueryResult {
	summaries := make([]string, 0, len(businesses))
	for _, b := range businesses {
		summaries = append(summaries, fmt.Sprintf(
			"Name: %s, Rating: %.1f/5.0 (%d reviews), Types: %s, Price: %s",
			b.Name, b.Rating, b.UserRatingsTotal, b.Types.String(), FormatPriceLevel(b.PriceLevel)))
	}

	template := NewPromptTemplate([]string{"question", "businesses_data"}, queryTemplate)
	prompt, err := template.Render(map[string]string{
		"question":        question,
		"businesses_data": strings.Join(summaries, "\n"),
	})
	if err != nil {
		return queryFailure(question, err)
	}

	answer, err := a.llm.Complete(ctx, prompt, queryTemperature, queryMaxTokens)
	if err != nil {
		log.Error().Err(err).Str("question", question).Msg("Query completion failed")
		return queryFailure(question, err)
	}

	lowerAnswer := strings.ToLower(answer)
	var supporting []string
	for _, b := range businesses {
		if strings.Contains(lowerAnswer, strings.ToLower(b.Name)) {
			supporting = append(supporting, b.Name)
		}
	}

	return QueryResult{
		Question:             question,
		Answer:               answer,
		SupportingBusinesses: supporting,
	}
}

func queryFailure(question string, err error) QueryResult {
	return QueryResult{
		Question: question,
		Answer:   fmt.Sprintf("Sorry, I couldn't process your question due to an error: %v", err),
	}
}
