package genai

import (
	"testing"
)

func strp(s string) *string { return &s }

func fourOptions() []string {
	return []string{"A", "B", "C", "D"}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"wrapped in prose", "Sure! Here it is:\n```json\n{\"a\":1}\n```\nHope it helps.", `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`},
		{"escaped quote inside string", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"no object", "nothing here", ""},
		{"unbalanced", `{"a":1`, ""},
	}

	for _, c := range cases {
		if got := extractJSON(c.in); got != c.want {
			t.Errorf("%s: extractJSON(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestParseGenerationResponse(t *testing.T) {
	raw := `Here you go: {"questions":[{"question":"Capital of France?","options":["Paris","Berlin","Rome","Madrid"],"answer":"Paris"}],"requiresLanguageChoice":false,"resolvedLanguage":"en"}`

	result, err := parseGenerationResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(result.Questions))
	}
	if result.ResolvedLanguage != LanguageEnglish {
		t.Errorf("expected language en, got %s", result.ResolvedLanguage)
	}
	if result.Questions[0].Answer == nil || *result.Questions[0].Answer != "Paris" {
		t.Errorf("expected answer Paris, got %v", result.Questions[0].Answer)
	}
}

func TestParseGenerationResponse_NoJSON(t *testing.T) {
	if _, err := parseGenerationResponse("I cannot help with that."); err == nil {
		t.Fatal("expected an error for a response with no JSON")
	}
}

func TestSanitizeResult_DropsMalformedQuestions(t *testing.T) {
	result := &GenerationResult{
		Questions: []RawQuestion{
			{Question: "Keep me", Options: fourOptions(), Answer: strp("A")},
			{Question: "   ", Options: fourOptions()},
			{Question: "Two options only", Options: []string{"A", "B"}},
			{Question: "Blank option", Options: []string{"A", "B", "", "D"}},
			{Question: "Blank answer", Options: fourOptions(), Answer: strp("  ")},
		},
	}

	sanitizeResult(result, "")

	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions kept, got %d", len(result.Questions))
	}
	if result.Questions[0].Question != "Keep me" {
		t.Errorf("unexpected first question %q", result.Questions[0].Question)
	}
	if result.Questions[1].Answer != nil {
		t.Error("expected blank answer nilled out")
	}
}

func TestSanitizeResult_PreferenceEndsLanguageRoundTrip(t *testing.T) {
	result := &GenerationResult{
		RequiresLanguageChoice: true,
		ResolvedLanguage:       LanguageMixed,
	}

	sanitizeResult(result, LanguageHindi)

	if result.RequiresLanguageChoice {
		t.Error("a set preference must terminate the language round trip")
	}
	if result.ResolvedLanguage != LanguageHindi {
		t.Errorf("expected resolved language hi, got %s", result.ResolvedLanguage)
	}
}

func TestParseScoreResponse_OrderAligned(t *testing.T) {
	items := []ScoreItem{
		{Question: "Q1", StoredAnswer: strp("A")},
		{Question: "Q2", StoredAnswer: strp("B")},
	}
	raw := `{"results":[{"correctAnswer":"C"},{"correctAnswer":""}]}`

	verdicts, err := parseScoreResponse(raw, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdicts[0].CorrectAnswer != "C" {
		t.Errorf("expected corrected answer C, got %q", verdicts[0].CorrectAnswer)
	}
	// Empty verdict falls back to the stored answer.
	if verdicts[1].CorrectAnswer != "B" {
		t.Errorf("expected fallback to stored answer B, got %q", verdicts[1].CorrectAnswer)
	}
}

func TestParseScoreResponse_CountMismatch(t *testing.T) {
	items := []ScoreItem{{Question: "Q1"}, {Question: "Q2"}}
	raw := `{"results":[{"correctAnswer":"A"}]}`

	if _, err := parseScoreResponse(raw, items); err == nil {
		t.Fatal("expected an error for a verdict count mismatch")
	}
}

func TestParseScoreResponse_EmptyVerdictWithoutStoredAnswer(t *testing.T) {
	items := []ScoreItem{{Question: "Q1"}}
	raw := `{"results":[{"correctAnswer":" "}]}`

	if _, err := parseScoreResponse(raw, items); err == nil {
		t.Fatal("expected an error when no fallback answer exists")
	}
}

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{
		"en":      LanguageEnglish,
		" EN ":    LanguageEnglish,
		"hi":      LanguageHindi,
		"mixed":   LanguageMixed,
		"french":  LanguageUnknown,
		"":        LanguageUnknown,
		"unknown": LanguageUnknown,
	}
	for in, want := range cases {
		if got := parseLanguage(in); got != want {
			t.Errorf("parseLanguage(%q) = %s, want %s", in, got, want)
		}
	}
}
