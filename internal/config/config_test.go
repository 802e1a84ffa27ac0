package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"ITINERA_BACKEND", "ITINERA_MODEL", "ITINERA_TEMPERATURE", "OLLAMA_HOST",
	"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "ITINERA_PROMPT_EXTRAS",
	"ITINERA_PROMPT_FOLLOW_UPS", "ITINERA_RULES", "ITINERA_HTTP_ADDR",
	"ITINERA_HTTP_TIMEOUT", "ITINERA_CONCURRENCY", "ITINERA_MAX_HISTORY",
	"ITINERA_LOG", "ITINERA_VERBOSE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	want := &Config{
		LLM:         LLMConfig{Backend: "gemini", Temperature: 0.7},
		Prompt:      PromptConfig{IncludeExtras: true, FollowUpQuestions: true},
		HTTP:        HTTPConfig{Addr: ":8080", RequestTimeout: 2 * time.Minute},
		Concurrency: 4,
		MaxHistory:  20,
		Log:         LogConfig{Path: "itinera.log"},
	}
	if diff := cmp.Diff(want, FromEnv()); diff != "" {
		t.Errorf("FromEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ITINERA_BACKEND", "ollama")
	t.Setenv("ITINERA_TEMPERATURE", "0.2")
	t.Setenv("ITINERA_PROMPT_EXTRAS", "false")
	t.Setenv("ITINERA_CONCURRENCY", "not-a-number")
	t.Setenv("ITINERA_HTTP_TIMEOUT", "45s")

	cfg := FromEnv()
	if cfg.LLM.Backend != "ollama" {
		t.Errorf("Backend = %q, want ollama", cfg.LLM.Backend)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.LLM.Temperature)
	}
	if cfg.Prompt.IncludeExtras {
		t.Error("IncludeExtras should be false")
	}
	if cfg.Concurrency != 4 {
		t.Errorf("unparsable concurrency should keep the default, got %d", cfg.Concurrency)
	}
	if cfg.HTTP.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.HTTP.RequestTimeout)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "itinera.yaml")
	body := `llm:
  backend: openai
  model: gpt-4o
prompt:
  follow_up_questions: false
http:
  request_timeout: 30s
concurrency: 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Backend != "openai" || cfg.LLM.Model != "gpt-4o" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.OpenAIAPIKey != "from-env" {
		t.Errorf("key absent from the file should keep the env value, got %q", cfg.LLM.OpenAIAPIKey)
	}
	if cfg.Prompt.FollowUpQuestions || !cfg.Prompt.IncludeExtras {
		t.Errorf("prompt = %+v", cfg.Prompt)
	}
	if cfg.HTTP.RequestTimeout != 30*time.Second || cfg.HTTP.Addr != ":8080" {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if got := cfg.ClientConfig(); got.Backend != "openai" || got.OpenAIAPIKey != "from-env" {
		t.Errorf("ClientConfig() = %+v", got)
	}
	if got := cfg.PromptOptions(); got.FollowUpQuestions || !got.IncludeExtras {
		t.Errorf("PromptOptions() = %+v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	testCases := []struct {
		name    string
		path    string
		invalid bool
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml")},
		{name: "bad yaml", path: write("bad.yaml", "llm: [unclosed")},
		{name: "unknown backend", path: write("backend.yaml", "llm:\n  backend: claude\n"), invalid: true},
		{name: "temperature out of range", path: write("temp.yaml", "llm:\n  temperature: 3.5\n"), invalid: true},
		{name: "zero concurrency", path: write("conc.yaml", "concurrency: 0\n"), invalid: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.path)
			if err == nil {
				t.Fatal("Expected an error, but got nil")
			}
			if tc.invalid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
