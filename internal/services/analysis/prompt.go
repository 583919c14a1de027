package analysis

import (
	"fmt"
	"strings"
)

// TemplateFieldError reports a required template field that was not
// supplied. Fatal to the single render; the analyzer converts it into a
// degraded record.
type TemplateFieldError struct {
	Field string
}

func (e *TemplateFieldError) Error() string {
	return fmt.Sprintf("missing required template field %q", e.Field)
}

// PromptTemplate renders a fixed-shape prompt from named fields.
// Placeholders use {field} syntax.
type PromptTemplate struct {
	required []string
	text     string
}

func NewPromptTemplate(required []string, text string) *PromptTemplate {
	return &PromptTemplate{required: required, text: text}
}

// Render is deterministic: the same fields always produce the same
// prompt string.
func (t *PromptTemplate) Render(fields map[string]string) (string, error) {
	for _, name := range t.required {
		if _, ok := fields[name]; !ok {
			return "", &TemplateFieldError{Field: name}
		}
	}

	out := t.text
	for name, value := range fields {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out, nil
}

var analysisFieldNames = []string{
	"name", "address", "rating", "total_ratings", "price_level",
	"business_types", "reviews", "location", "sentiment_context",
}

const analysisTemplate = `Analyze the following business comprehensively:

Business Name: {name}
Address: {address}
Rating: {rating}/5.0 ({total_ratings} total ratings)
Price Level: {price_level}
Business Types: {business_types}
Location: {location}

Customer Reviews:
{reviews}

Customer Sentiment Context:
{sentiment_context}

Please provide a detailed analysis in the following JSON format:
{
    "summary": "A comprehensive 2-3 sentence summary of the business",
    "recommendations": ["specific actionable recommendation 1", "recommendation 2", "recommendation 3"],
    "strengths": ["strength 1", "strength 2", "strength 3"],
    "weaknesses": ["weakness 1", "weakness 2"],
    "service_quality_score": 0.0-10.0,
    "staff_behavior_score": 0.0-10.0,
    "pricing_perception": "expensive/moderate/affordable/unknown",
    "user_satisfaction_level": "high/medium/low"
}

Base your analysis on the reviews, ratings, and metadata provided.`

// NewAnalysisPrompt returns the template for the main business
// analysis request.
func NewAnalysisPrompt() *PromptTemplate {
	return NewPromptTemplate(analysisFieldNames, analysisTemplate)
}
