package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeneratedItem is one education recommendation parsed from the model's
// structured JSON output.
type GeneratedItem struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Rationale string `json:"rationale"`
}

// GeminiGenerator produces recommendation content through the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGenerator creates a Gemini-backed content generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
		// API version v1 is what docs use for current Gemini models.
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiGenerator{client: client, model: model, timeout: timeout}, nil
}

type generatedResponse struct {
	Recommendations []GeneratedItem `json:"recommendations"`
}

// Generate sends the prompt and returns the parsed items. The prompt must
// instruct the model to answer with strict JSON of the form
// {"recommendations": [{"title", "content", "rationale"}, ...]}.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) ([]GeneratedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed generatedResponse
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	if len(parsed.Recommendations) == 0 {
		return nil, fmt.Errorf("model returned no recommendations")
	}
	for i, item := range parsed.Recommendations {
		if item.Title == "" || item.Content == "" {
			return nil, fmt.Errorf("recommendation %d missing title or content", i)
		}
	}

	return parsed.Recommendations, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose the model
// may wrap around its JSON object despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON object, keep only from the
	// first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
