package llm_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
)

type ollamaProvider struct {
	client *api.Client
	model  string
}

const ollamaDefault = "phi4:latest"

func (p *ollamaProvider) Init(cfg Config) error {
	host := cfg.OllamaHost
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return fmt.Errorf("ollama client init: %w", err)
		}
		p.client = c
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return fmt.Errorf("ollama: bad host %q: %w", host, err)
		}
		p.client = api.NewClient(u, http.DefaultClient)
	}
	p.model = modelOrDefault(cfg.Model, ollamaDefault)
	return nil
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) DefaultModel() string { return ollamaDefault }

func (p *ollamaProvider) AllowedModelOrDefault(model string) string {
	return modelOrDefault(model, p.model)
}

func (p *ollamaProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if p.client == nil {
		return "", ErrNotInitialized
	}
	stream := false
	req := &api.GenerateRequest{
		Model:   p.AllowedModelOrDefault(opts.Model),
		Prompt:  prompt,
		Stream:  &stream,
		Options: map[string]any{"temperature": opts.Temperature},
	}
	var out strings.Builder
	if err := p.client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		out.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return out.String(), nil
}
