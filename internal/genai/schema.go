package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/testgenius/backend/internal/model"
)

// generationPayload mirrors the JSON shape the prompts demand.
type generationPayload struct {
	Questions              []RawQuestion `json:"questions"`
	RequiresLanguageChoice bool          `json:"requiresLanguageChoice"`
	ResolvedLanguage       string        `json:"resolvedLanguage"`
}

type scorePayload struct {
	Results []struct {
		CorrectAnswer string `json:"correctAnswer"`
	} `json:"results"`
}

// parseGenerationResponse extracts and decodes the JSON object embedded in a
// model reply.
func parseGenerationResponse(raw string) (*GenerationResult, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, &GatewayError{Reason: "no JSON object found in model response"}
	}

	var p generationPayload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, &GatewayError{Reason: "invalid JSON from model", Wrapped: err}
	}

	return &GenerationResult{
		Questions:              p.Questions,
		RequiresLanguageChoice: p.RequiresLanguageChoice,
		ResolvedLanguage:       parseLanguage(p.ResolvedLanguage),
	}, nil
}

// parseScoreResponse decodes adjudication verdicts and enforces order
// alignment with the submitted items.
func parseScoreResponse(raw string, items []ScoreItem) ([]ScoreVerdict, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, &GatewayError{Reason: "no JSON object found in model response"}
	}

	var p scorePayload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, &GatewayError{Reason: "invalid JSON from model", Wrapped: err}
	}

	if len(p.Results) != len(items) {
		return nil, &GatewayError{Reason: fmt.Sprintf("expected %d verdicts, got %d", len(items), len(p.Results))}
	}

	verdicts := make([]ScoreVerdict, len(p.Results))
	for i, r := range p.Results {
		answer := strings.TrimSpace(r.CorrectAnswer)
		if answer == "" {
			// Fall back to the stored answer rather than inventing one.
			if items[i].StoredAnswer != nil {
				answer = *items[i].StoredAnswer
			} else {
				return nil, &GatewayError{Reason: fmt.Sprintf("empty verdict for question %d", i+1)}
			}
		}
		verdicts[i] = ScoreVerdict{CorrectAnswer: answer}
	}
	return verdicts, nil
}

// sanitizeResult enforces the boundary contract on a decoded result: drop
// malformed questions (empty text, wrong option count), clear nonsense
// whitespace, and terminate the language round trip when a preference was
// already supplied — the second call must never ask again.
func sanitizeResult(r *GenerationResult, preferred Language) {
	kept := r.Questions[:0]
	for _, q := range r.Questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) != model.OptionCount {
			continue
		}
		valid := true
		for i, opt := range q.Options {
			q.Options[i] = strings.TrimSpace(opt)
			if q.Options[i] == "" {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		if q.Answer != nil {
			a := strings.TrimSpace(*q.Answer)
			if a == "" {
				q.Answer = nil
			} else {
				q.Answer = &a
			}
		}
		kept = append(kept, q)
	}
	r.Questions = kept

	if preferred != "" {
		r.RequiresLanguageChoice = false
		if r.ResolvedLanguage == LanguageMixed || r.ResolvedLanguage == LanguageUnknown {
			r.ResolvedLanguage = preferred
		}
	}
}

func parseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish
	case LanguageHindi:
		return LanguageHindi
	case LanguageMixed:
		return LanguageMixed
	default:
		return LanguageUnknown
	}
}

// extractJSON finds the outermost JSON object in a string. It handles nested
// braces correctly and skips braces inside quoted strings.
func extractJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
