package analysis

import (
	"fmt"
	"strings"
)

// ReviewDelimiter separates individual review texts inside the raw
// review blob produced by the places export.
const ReviewDelimiter = "|||"

// SplitReviews splits the raw blob into discrete review strings,
// trimming whitespace and dropping empty segments. Order is preserved.
func SplitReviews(raw string) []string {
	if raw == "" {
		return nil
	}

	var reviews []string
	for _, part := range strings.Split(raw, ReviewDelimiter) {
		if part = strings.TrimSpace(part); part != "" {
			reviews = append(reviews, part)
		}
	}
	return reviews
}

// FormatReviews renders at most limit reviews as a dashed list with a
// trailing marker for anything truncated. The bound keeps prompts
// inside the model's context budget.
func FormatReviews(reviews []string, limit int) string {
	shown := reviews
	remaining := 0
	if limit > 0 && len(shown) > limit {
		remaining = len(shown) - limit
		shown = shown[:limit]
	}

	var sb strings.Builder
	for _, review := range shown {
		sb.WriteString("- ")
		sb.WriteString(review)
		sb.WriteString("\n")
	}
	if remaining > 0 {
		fmt.Fprintf(&sb, "... and %d more reviews\n", remaining)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatPriceLevel converts the places price enum to a readable label.
func FormatPriceLevel(priceLevel *int) string {
	if priceLevel == nil {
		return "Unknown"
	}
	switch *priceLevel {
	case 0:
		return "Free"
	case 1:
		return "Inexpensive"
	case 2:
		return "Moderate"
	case 3:
		return "Expensive"
	case 4:
		return "Very Expensive"
	default:
		return "Unknown"
	}
}
