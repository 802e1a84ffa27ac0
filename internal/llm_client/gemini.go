package llm_client

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

type geminiProvider struct {
	client *genai.Client
	model  string
}

const geminiDefault = "gemini-2.0-flash"

func (p *geminiProvider) Init(cfg Config) error {
	apiKey := cfg.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	c, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("gemini client init: %w", err)
	}
	p.client = c
	p.model = modelOrDefault(cfg.Model, geminiDefault)
	return nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) DefaultModel() string { return geminiDefault }

// AllowedModelOrDefault refuses non-Gemini model names, which the API
// would reject anyway.
func (p *geminiProvider) AllowedModelOrDefault(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return p.model
	}
	if !strings.HasPrefix(strings.ToLower(m), "gemini-") {
		return geminiDefault
	}
	return m
}

func (p *geminiProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if p.client == nil {
		return "", ErrNotInitialized
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.AllowedModelOrDefault(opts.Model), genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			out.WriteString(part.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return out.String(), nil
}
