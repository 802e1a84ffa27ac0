package llm_client

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type openaiProvider struct {
	client *openai.Client
	model  string
}

const openaiDefault = openai.GPT4oMini

func (p *openaiProvider) Init(cfg Config) error {
	apiKey := cfg.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	p.client = openai.NewClientWithConfig(clientCfg)
	p.model = modelOrDefault(cfg.Model, openaiDefault)
	return nil
}

func (p *openaiProvider) Name() string { return "openai" }

func (p *openaiProvider) DefaultModel() string { return openaiDefault }

func (p *openaiProvider) AllowedModelOrDefault(model string) string {
	return modelOrDefault(model, p.model)
}

func (p *openaiProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if p.client == nil {
		return "", ErrNotInitialized
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.AllowedModelOrDefault(opts.Model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
