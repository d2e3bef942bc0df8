package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// maxAttempts bounds parse retries. Models occasionally wrap the JSON in
// prose on the first try; a second identical call usually resolves it.
const maxAttempts = 2

// Client talks to an OpenAI-compatible chat completions endpoint
// (Gemini-compat proxy, Ollama, vLLM, ...).
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     zerolog.Logger
}

// Compile-time check: *Client satisfies the Gateway interface.
var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client for the given endpoint.
func NewClient(baseURL, apiKey, model string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log.With().Str("component", "genai_client").Logger(),
	}
}

// ─── Gateway operations ─────────────────────────────────────────────

// ExtractQuestions lifts multiple-choice questions out of document text,
// running the language-disambiguation sub-protocol when no preference is set.
func (c *Client) ExtractQuestions(ctx context.Context, in ExtractInput) (*GenerationResult, error) {
	return c.generation(ctx, buildExtractPrompt(in.Text, in.PreferredLanguage), in.PreferredLanguage)
}

// GenerateFromSyllabus generates fresh questions covering a syllabus.
func (c *Client) GenerateFromSyllabus(ctx context.Context, in GenerateInput) (*GenerationResult, error) {
	in.NumQuestions = clampCount(in.NumQuestions)
	return c.generation(ctx, buildSyllabusPrompt(in), in.PreferredLanguage)
}

// GenerateFromTopic generates fresh questions about a free-text topic.
func (c *Client) GenerateFromTopic(ctx context.Context, in GenerateInput) (*GenerationResult, error) {
	in.NumQuestions = clampCount(in.NumQuestions)
	return c.generation(ctx, buildTopicPrompt(in), in.PreferredLanguage)
}

// ScoreTest adjudicates the correct answer for every item. Items whose
// stored answer is nil are decided from scratch; the rest are confirmed or
// corrected. Verdicts come back order-aligned with the input.
func (c *Client) ScoreTest(ctx context.Context, items []ScoreItem) ([]ScoreVerdict, error) {
	prompt, err := buildScorePrompt(items)
	if err != nil {
		return nil, &GatewayError{Reason: "build scoring prompt", Wrapped: err}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := c.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		verdicts, err := parseScoreResponse(raw, items)
		if err != nil {
			lastErr = err
			continue
		}
		return verdicts, nil
	}

	return nil, &GatewayError{Reason: fmt.Sprintf("scoring failed after %d attempts", maxAttempts), Wrapped: lastErr}
}

// generation runs one acquisition prompt and normalizes the result.
func (c *Client) generation(ctx context.Context, prompt string, preferred Language) (*GenerationResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := c.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		result, err := parseGenerationResponse(raw)
		if err != nil {
			lastErr = err
			continue
		}

		sanitizeResult(result, preferred)
		c.log.Debug().
			Int("questions", len(result.Questions)).
			Bool("requires_language_choice", result.RequiresLanguageChoice).
			Str("language", string(result.ResolvedLanguage)).
			Msg("Generation result")
		return result, nil
	}

	return nil, &GatewayError{Reason: fmt.Sprintf("generation failed after %d attempts", maxAttempts), Wrapped: lastErr}
}

// ─── LLM communication ──────────────────────────────────────────────

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends a single chat completion request and returns the raw text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &GatewayError{Reason: "request failed", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &GatewayError{Reason: fmt.Sprintf("service returned status %d", resp.StatusCode)}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", &GatewayError{Reason: "decode response", Wrapped: err}
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", &GatewayError{Reason: "service returned empty content"}
	}

	return cr.Choices[0].Message.Content, nil
}

func clampCount(n int) int {
	if n < 5 {
		return 5
	}
	if n > 50 {
		return 50
	}
	return n
}
