package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"itinera/internal/llm_client"
	"itinera/internal/planner"
	"itinera/internal/trip"
)

type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	opts    []llm_client.Options
}

func (s *stubGenerator) Generate(_ context.Context, p string, opts llm_client.Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	s.opts = append(s.opts, opts)
	return s.reply, s.err
}

const sampleReply = `Trip Overview: A relaxed long weekend.
Day 1: Arrival
Check in and stroll the waterfront.
Where to Stay:
Casa Azul guesthouse.
Budget: About 300 EUR.
`

func withStub(t *testing.T, gen *stubGenerator) *llm_client.Config {
	t.Helper()
	t.Setenv("ITINERA_LOG", filepath.Join(t.TempDir(), "itinera.log"))
	t.Setenv("ITINERA_BACKEND", "")
	var seen llm_client.Config
	prev := newProvider
	newProvider = func(cfg llm_client.Config) (planner.Generator, error) {
		seen = cfg
		return gen, nil
	}
	t.Cleanup(func() { newProvider = prev })
	return &seen
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	gen := &stubGenerator{reply: sampleReply}
	seen := withStub(t, gen)
	htmlPath := filepath.Join(t.TempDir(), "plan.html")

	out, err := run(t, "", "plan", "-d", "Lisbon", "-n", "3", "--budget", "low", "--backend", "ollama",
		"--model", "llama3", "--temperature", "0.3", "--html", htmlPath, "--metrics")
	if err != nil {
		t.Fatalf("plan returned an unexpected error: %v\n%s", err, out)
	}
	if seen.Backend != "ollama" || seen.Model != "llama3" {
		t.Errorf("flags not applied to the client config: %+v", *seen)
	}
	if len(gen.opts) != 1 || gen.opts[0].Temperature < 0.29 || gen.opts[0].Temperature > 0.31 {
		t.Errorf("temperature not forwarded: %+v", gen.opts)
	}
	for _, want := range []string{"Planning 3 days in Lisbon", "WHERE TO STAY", "Casa Azul guesthouse.", "Generation metrics:", "written to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
	page, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("html not written: %v", err)
	}
	if !strings.Contains(string(page), "Lisbon in 3 days") || !strings.Contains(string(page), `class="timeline-item"`) {
		t.Errorf("unexpected html page:\n%s", page)
	}
}

func TestPlanCommand_Raw(t *testing.T) {
	withStub(t, &stubGenerator{reply: sampleReply})
	out, err := run(t, "", "plan", "-d", "Lisbon", "-n", "3", "--raw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Trip Overview: A relaxed long weekend.") {
		t.Errorf("raw output should contain the untouched reply:\n%s", out)
	}
}

func TestPlanCommand_MissingFieldsSkipModel(t *testing.T) {
	gen := &stubGenerator{reply: sampleReply}
	withStub(t, gen)

	_, err := run(t, "", "plan", "--days", "3")
	if !errors.Is(err, trip.ErrInvalidPreferences) {
		t.Fatalf("expected ErrInvalidPreferences, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model should not be called, got %d calls", len(gen.prompts))
	}
}

func TestPlanCommand_ModelError(t *testing.T) {
	boom := errors.New("quota exceeded")
	withStub(t, &stubGenerator{err: boom})

	if _, err := run(t, "", "plan", "-d", "Lisbon", "-n", "2"); !errors.Is(err, boom) {
		t.Errorf("expected the model error, got %v", err)
	}
}

func TestSectionsCommand(t *testing.T) {
	gen := &stubGenerator{}
	withStub(t, gen)

	out, err := run(t, sampleReply, "sections")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "BUDGET") || !strings.Contains(out, "About 300 EUR.") {
		t.Errorf("unexpected output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "plan.txt")
	if err := os.WriteFile(path, []byte(sampleReply), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "", "sections", path, "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"stay": [`) || !strings.Contains(out, `"Casa Azul guesthouse."`) {
		t.Errorf("unexpected json:\n%s", out)
	}

	out, err = run(t, "Day 1: Markets\nFood stalls everywhere\n", "sections", "-", "--trace")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(guarded)") {
		t.Errorf("trace should flag the guarded food line:\n%s", out)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("sections must not call the model, got %d calls", len(gen.prompts))
	}
}

func TestSectionsCommand_CustomRules(t *testing.T) {
	withStub(t, &stubGenerator{})
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	body := `rules:
  - section: food
    priority: 1
    patterns: ['\bsnacks?\b']
`
	if err := os.WriteFile(rules, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "Intro line\nSnacks: samosa\n", "--rules", rules, "sections", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"food": [`+"\n"+`    "samosa"`) {
		t.Errorf("custom rule not applied:\n%s", out)
	}
}

func TestBatchCommand(t *testing.T) {
	gen := &stubGenerator{reply: sampleReply}
	withStub(t, gen)
	dir := t.TempDir()
	tripsPath := filepath.Join(dir, "trips.yaml")
	body := "- {destination: Lisbon, days: 3}\n- {destination: \"São Paulo\", days: 2, budget: luxury}\n"
	if err := os.WriteFile(tripsPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	htmlDir := filepath.Join(dir, "out")

	out, err := run(t, "", "batch", tripsPath, "-c", "2", "--html-dir", htmlDir)
	if err != nil {
		t.Fatalf("batch returned an unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Generated 2 plan(s), 0 failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"01-lisbon.html", "02-s-o-paulo.html"} {
		if _, err := os.Stat(filepath.Join(htmlDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestBatchCommand_ReportsFailures(t *testing.T) {
	withStub(t, &stubGenerator{err: errors.New("down")})
	tripsPath := filepath.Join(t.TempDir(), "trips.json")
	if err := os.WriteFile(tripsPath, []byte(`[{"destination":"Lisbon","days":3}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "", "batch", tripsPath)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 plans failed") {
		t.Errorf("expected a failure summary error, got %v", err)
	}
	if !strings.Contains(out, "error: down") {
		t.Errorf("per-trip error missing:\n%s", out)
	}
}

func TestBadBackendFlag(t *testing.T) {
	withStub(t, &stubGenerator{})
	if _, err := run(t, "", "--backend", "toaster", "sections"); err == nil {
		t.Fatal("Expected an error, but got nil")
	}
}

func TestSlug(t *testing.T) {
	testCases := map[string]string{
		"Lucknow, India": "lucknow-india",
		"  ":             "trip",
		"New York!":      "new-york",
	}
	for in, want := range testCases {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
