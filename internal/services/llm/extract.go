package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Models are asked for bare JSON but frequently wrap it in a fenced
// code block, optionally tagged "json".
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON recovers a JSON object from raw completion text. It first
// looks for a fenced block and, failing that, treats text that starts
// with "{" as a bare object. Returns false when no object is decodable;
// callers fall back to their own heuristics.
func ExtractJSON(text string) (map[string]interface{}, bool) {
	working := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		working = m[1]
	}

	working = strings.TrimSpace(working)
	if !strings.HasPrefix(working, "{") {
		return nil, false
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(working), &out); err != nil {
		return nil, false
	}
	return out, true
}
