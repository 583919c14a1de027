package analysis

import (
	"strings"

	"places-insight/internal/services/llm"
)

const (
	fallbackSummaryLimit   = 200
	fallbackRecommendation = "Unable to parse detailed recommendations"
)

// Payload is the structured form of a model analysis reply. Unknown
// keys survive in Extras; Fields retains the full decoded mapping when
// the JSON stage succeeded.
type Payload struct {
	Summary               string
	Recommendations       []string
	Strengths             []string
	Weaknesses            []string
	ServiceQualityScore   *float64
	StaffBehaviorScore    *float64
	PricingPerception     string
	UserSatisfactionLevel string
	SentimentSummary      map[string]interface{}
	Fields                map[string]interface{}
	Extras                map[string]interface{}
}

// ParseResponse turns raw completion text into a Payload. Stages, each
// attempted only when the previous fails: fenced/bare JSON decoding,
// line-oriented section extraction, then a minimal safe default. Model
// output is not contractually structured, so this never fails; every
// branch degrades to the next stage.
func ParseResponse(text string) Payload {
	if fields, ok := llm.ExtractJSON(text); ok {
		return payloadFromFields(fields)
	}

	if payload, ok := parseSections(text); ok {
		return payload
	}

	return fallbackPayload(text)
}

func payloadFromFields(fields map[string]interface{}) Payload {
	payload := Payload{
		Fields: fields,
		Extras: make(map[string]interface{}),
	}

	for key, value := range fields {
		switch key {
		case "summary":
			payload.Summary, _ = value.(string)
		case "recommendations":
			payload.Recommendations = stringList(value)
		case "strengths":
			payload.Strengths = stringList(value)
		case "weaknesses":
			payload.Weaknesses = stringList(value)
		case "service_quality_score":
			payload.ServiceQualityScore = optionalFloat(value)
		case "staff_behavior_score":
			payload.StaffBehaviorScore = optionalFloat(value)
		case "pricing_perception":
			payload.PricingPerception, _ = value.(string)
		case "user_satisfaction_level":
			payload.UserSatisfactionLevel, _ = value.(string)
		case "sentiment_summary":
			if blob, ok := value.(map[string]interface{}); ok {
				payload.SentimentSummary = blob
			} else {
				payload.Extras[key] = value
			}
		default:
			payload.Extras[key] = value
		}
	}

	return payload
}

// parseSections scans lines for "summary:" and the three list section
// headers; dash lines append to the open section. Returns false when
// nothing usable was extracted.
func parseSections(text string) (Payload, bool) {
	var payload Payload
	var section *[]string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "summary:"):
			section = nil
			payload.Summary = strings.TrimSpace(line[len("summary:"):])
		case strings.HasPrefix(lower, "recommendations:"):
			section = &payload.Recommendations
		case strings.HasPrefix(lower, "strengths:"):
			section = &payload.Strengths
		case strings.HasPrefix(lower, "weaknesses:"):
			section = &payload.Weaknesses
		case section != nil && strings.HasPrefix(line, "-"):
			*section = append(*section, strings.TrimSpace(line[1:]))
		}
	}

	usable := payload.Summary != "" ||
		len(payload.Recommendations) > 0 ||
		len(payload.Strengths) > 0 ||
		len(payload.Weaknesses) > 0
	return payload, usable
}

func fallbackPayload(text string) Payload {
	summary := text
	if runes := []rune(summary); len(runes) > fallbackSummaryLimit {
		summary = string(runes[:fallbackSummaryLimit]) + "..."
	}
	return Payload{
		Summary:         summary,
		Recommendations: []string{fallbackRecommendation},
	}
}

func stringList(value interface{}) []string {
	raw, ok := value.([]interface{})
	if !ok {
		return nil
	}
	var list []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list
}

func optionalFloat(value interface{}) *float64 {
	f, ok := value.(float64)
	if !ok {
		return nil
	}
	return &f
}
