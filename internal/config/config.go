// Package config resolves runtime settings: environment defaults first, then
// an optional YAML file. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"itinera/internal/llm_client"
	"itinera/internal/prompt"
)

var ErrInvalidConfig = errors.New("invalid config")

type LLMConfig struct {
	Backend       string  `yaml:"backend"`
	Model         string  `yaml:"model"`
	Temperature   float32 `yaml:"temperature"`
	OllamaHost    string  `yaml:"ollama_host"`
	GeminiAPIKey  string  `yaml:"gemini_api_key"`
	OpenAIAPIKey  string  `yaml:"openai_api_key"`
	OpenAIBaseURL string  `yaml:"openai_base_url"`
}

type PromptConfig struct {
	IncludeExtras     bool `yaml:"include_extras"`
	FollowUpQuestions bool `yaml:"follow_up_questions"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Path    string `yaml:"path"`
	Verbose bool   `yaml:"verbose"`
}

type Config struct {
	LLM         LLMConfig    `yaml:"llm"`
	Prompt      PromptConfig `yaml:"prompt"`
	RulesPath   string       `yaml:"rules_path"`
	HTTP        HTTPConfig   `yaml:"http"`
	Concurrency int          `yaml:"concurrency"`
	MaxHistory  int          `yaml:"max_history"`
	Log         LogConfig    `yaml:"log"`
}

// FromEnv returns the configuration described by the environment, with
// built-in defaults for anything unset.
func FromEnv() *Config {
	return &Config{
		LLM: LLMConfig{
			Backend:       envOrDefault("ITINERA_BACKEND", "gemini"),
			Model:         envOrDefault("ITINERA_MODEL", ""),
			Temperature:   envOrDefaultFloat32("ITINERA_TEMPERATURE", llm_client.DefaultTemperature),
			OllamaHost:    envOrDefault("OLLAMA_HOST", ""),
			GeminiAPIKey:  envOrDefault("GEMINI_API_KEY", ""),
			OpenAIAPIKey:  envOrDefault("OPENAI_API_KEY", ""),
			OpenAIBaseURL: envOrDefault("OPENAI_BASE_URL", ""),
		},
		Prompt: PromptConfig{
			IncludeExtras:     envOrDefaultBool("ITINERA_PROMPT_EXTRAS", true),
			FollowUpQuestions: envOrDefaultBool("ITINERA_PROMPT_FOLLOW_UPS", true),
		},
		RulesPath: envOrDefault("ITINERA_RULES", ""),
		HTTP: HTTPConfig{
			Addr:           envOrDefault("ITINERA_HTTP_ADDR", ":8080"),
			RequestTimeout: envOrDefaultDuration("ITINERA_HTTP_TIMEOUT", 2*time.Minute),
		},
		Concurrency: envOrDefaultInt("ITINERA_CONCURRENCY", 4),
		MaxHistory:  envOrDefaultInt("ITINERA_MAX_HISTORY", 20),
		Log: LogConfig{
			Path:    envOrDefault("ITINERA_LOG", "itinera.log"),
			Verbose: envOrDefaultBool("ITINERA_VERBOSE", false),
		},
	}
}

// Load reads the environment and overlays the YAML file at path, if any.
// Keys absent from the file keep their environment value.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	backend := strings.ToLower(strings.TrimSpace(c.LLM.Backend))
	if backend != "" && !slices.Contains(llm_client.Backends, backend) {
		problems = append(problems, fmt.Sprintf("llm.backend must be one of %s", strings.Join(llm_client.Backends, ", ")))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, "llm.temperature must be between 0 and 2")
	}
	if c.Concurrency < 1 {
		problems = append(problems, "concurrency must be at least 1")
	}
	if c.MaxHistory < 1 {
		problems = append(problems, "max_history must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) ClientConfig() llm_client.Config {
	return llm_client.Config{
		Backend:       c.LLM.Backend,
		Model:         c.LLM.Model,
		OllamaHost:    c.LLM.OllamaHost,
		GeminiAPIKey:  c.LLM.GeminiAPIKey,
		OpenAIAPIKey:  c.LLM.OpenAIAPIKey,
		OpenAIBaseURL: c.LLM.OpenAIBaseURL,
	}
}

func (c *Config) PromptOptions() prompt.Options {
	return prompt.Options{
		IncludeExtras:     c.Prompt.IncludeExtras,
		FollowUpQuestions: c.Prompt.FollowUpQuestions,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat32(key string, def float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
