package llm_client

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotInitialized = errors.New("llm client not initialized")
	ErrEmptyResponse  = errors.New("llm returned an empty response")
)

// DefaultTemperature matches the sampling the plans were tuned with.
const DefaultTemperature float32 = 0.7

type Config struct {
	Backend       string
	Model         string
	OllamaHost    string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// Options are per-call sampling parameters. A zero Model selects the
// provider's configured model.
type Options struct {
	Model       string
	Temperature float32
}

// Provider is a single-shot text completion backend. Generate makes one
// attempt and returns the backend's error as-is apart from a prefix naming
// the backend; there is no retry and no timeout beyond ctx.
type Provider interface {
	Init(cfg Config) error
	Name() string
	DefaultModel() string
	AllowedModelOrDefault(model string) string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Backends lists the accepted Config.Backend values.
var Backends = []string{"gemini", "ollama", "openai"}

// New builds and initializes the provider named by cfg.Backend (gemini by
// default).
func New(cfg Config) (Provider, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "gemini"
	}
	var p Provider
	switch backend {
	case "gemini":
		p = &geminiProvider{}
	case "ollama":
		p = &ollamaProvider{}
	case "openai":
		p = &openaiProvider{}
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s (want one of %s)", backend, strings.Join(Backends, ", "))
	}
	if err := p.Init(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

func modelOrDefault(configured, fallback string) string {
	if m := strings.TrimSpace(configured); m != "" {
		return m
	}
	return fallback
}
