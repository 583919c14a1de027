package llm

import "testing"

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"summary\": \"good place\"}\n```\nHope that helps."

	fields, ok := ExtractJSON(text)
	if !ok {
		t.Fatalf("expected fenced JSON to be extracted")
	}
	if fields["summary"] != "good place" {
		t.Fatalf("summary = %v, want %q", fields["summary"], "good place")
	}
}

func TestExtractJSON_FencedWithoutTag(t *testing.T) {
	text := "```\n{\"score\": 7.5}\n```"

	fields, ok := ExtractJSON(text)
	if !ok {
		t.Fatalf("expected fenced JSON to be extracted")
	}
	if fields["score"] != 7.5 {
		t.Fatalf("score = %v, want 7.5", fields["score"])
	}
}

func TestExtractJSON_BareObject(t *testing.T) {
	fields, ok := ExtractJSON(`  {"a": 1, "b": ["x"]}  `)
	if !ok {
		t.Fatalf("expected bare JSON to be extracted")
	}
	if fields["a"] != float64(1) {
		t.Fatalf("a = %v, want 1", fields["a"])
	}
}

func TestExtractJSON_Prose(t *testing.T) {
	if _, ok := ExtractJSON("Sorry, I can't help with that."); ok {
		t.Fatalf("expected no JSON from prose")
	}
}

func TestExtractJSON_MalformedObject(t *testing.T) {
	if _, ok := ExtractJSON(`{"summary": "unterminated`); ok {
		t.Fatalf("expected malformed JSON to fail")
	}
}
