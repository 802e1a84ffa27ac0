package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"itinera/internal/llm_client"
	"itinera/internal/prompt"
	"itinera/internal/sections"
	"itinera/internal/trip"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
	opts    []llm_client.Options
}

func (f *fakeGenerator) Generate(_ context.Context, p string, opts llm_client.Options) (string, error) {
	f.prompts = append(f.prompts, p)
	f.opts = append(f.opts, opts)
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }

const reply = `Trip Overview: Four days of forts and markets.

Day 1: Arrive in Jaipur
Visit Hawa Mahal.

Where to Stay:
Hotel Pearl Palace, central and friendly.

Budget: Around 12,000 INR per person.
`

func samplePrefs() trip.Preferences {
	return trip.New("Jaipur", 4, "Medium", "history, food", "Relaxed")
}

func TestGenerate(t *testing.T) {
	gen := &fakeGenerator{reply: reply}
	p := New(gen, nil, llm_client.Options{Model: "m1", Temperature: 0.7}, prompt.Options{IncludeExtras: true})

	plan, err := p.Generate(context.Background(), samplePrefs())
	if err != nil {
		t.Fatalf("Generate returned an unexpected error: %v", err)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(gen.prompts))
	}
	if gen.prompts[0] != plan.Prompt || !strings.Contains(plan.Prompt, "- Destination: Jaipur") {
		t.Errorf("prompt was not the built plan prompt:\n%s", gen.prompts[0])
	}
	if gen.opts[0].Temperature != 0.7 || gen.opts[0].Model != "m1" {
		t.Errorf("options not forwarded: %+v", gen.opts[0])
	}
	if len(plan.ID) != 8 || plan.ParentID != "" {
		t.Errorf("unexpected ids: id=%q parent=%q", plan.ID, plan.ParentID)
	}
	if plan.Raw != reply {
		t.Errorf("Raw should be the untouched model reply")
	}
	if got := plan.Sections.Lines(sections.Stay); len(got) != 1 || got[0] != "Hotel Pearl Palace, central and friendly." {
		t.Errorf("stay lines = %q", got)
	}
	if got := plan.Sections.Lines(sections.Budget); len(got) != 1 || got[0] != "Around 12,000 INR per person." {
		t.Errorf("budget lines = %q", got)
	}

	m := plan.Metrics
	if m == nil || !m.Succeeded || m.PlanID != plan.ID || m.Backend != "fake" {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if m.LinesPerSection[sections.Day] != 2 || m.ResponseChars != len(reply) {
		t.Errorf("unexpected metric counts: %+v", m)
	}
	if plan.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestGenerate_InvalidPreferencesSkipModel(t *testing.T) {
	gen := &fakeGenerator{reply: reply}
	p := New(gen, nil, llm_client.Options{}, prompt.Options{})

	_, err := p.Generate(context.Background(), trip.New("", 0, "", "", ""))
	if !errors.Is(err, trip.ErrInvalidPreferences) {
		t.Fatalf("expected ErrInvalidPreferences, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model should not be called, got %d calls", len(gen.prompts))
	}
}

func TestGenerate_ModelErrorReturnedUntouched(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &fakeGenerator{err: boom}
	p := New(gen, nil, llm_client.Options{}, prompt.Options{})

	plan, err := p.Generate(context.Background(), samplePrefs())
	if err != boom {
		t.Errorf("expected the generator's error value, got %v", err)
	}
	if plan != nil {
		t.Errorf("expected no plan on failure, got %+v", plan)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("expected a single attempt, got %d", len(gen.prompts))
	}
}

func TestRefine(t *testing.T) {
	gen := &fakeGenerator{reply: reply}
	p := New(gen, nil, llm_client.Options{}, prompt.Options{})

	first, err := p.Generate(context.Background(), samplePrefs())
	if err != nil {
		t.Fatal(err)
	}
	gen.reply = "Overview: Now with a cooking class.\nWhat changed: added a class on day 2."
	second, err := p.Refine(context.Background(), first, "Add a cooking class")
	if err != nil {
		t.Fatalf("Refine returned an unexpected error: %v", err)
	}
	if second.ParentID != first.ID || second.ID == first.ID {
		t.Errorf("lineage wrong: first=%s second=%s parent=%s", first.ID, second.ID, second.ParentID)
	}
	if second.Preferences.Destination != "Jaipur" {
		t.Errorf("preferences not carried over: %+v", second.Preferences)
	}
	want := prompt.BuildRefinePrompt(reply, "Add a cooking class")
	if gen.prompts[1] != want {
		t.Errorf("refine prompt mismatch:\n%s", gen.prompts[1])
	}
}

func TestRefineErrors(t *testing.T) {
	gen := &fakeGenerator{reply: reply}
	p := New(gen, nil, llm_client.Options{}, prompt.Options{})
	ctx := context.Background()

	if _, err := p.Refine(ctx, nil, "more food"); !errors.Is(err, ErrNoPlan) {
		t.Errorf("nil plan: expected ErrNoPlan, got %v", err)
	}
	if _, err := p.Refine(ctx, &Plan{Raw: reply}, "   "); !errors.Is(err, ErrEmptyRequest) {
		t.Errorf("blank request: expected ErrEmptyRequest, got %v", err)
	}
	if _, err := p.RefineText(ctx, "", "more food"); !errors.Is(err, ErrNoPlan) {
		t.Errorf("blank plan text: expected ErrNoPlan, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model should not be called, got %d calls", len(gen.prompts))
	}
}

func TestCustomClassifier(t *testing.T) {
	rs := sections.DefaultRules()
	rs.SubHeadingPrefix = "## "
	c, err := sections.NewClassifier(rs)
	if err != nil {
		t.Fatal(err)
	}
	p := New(&fakeGenerator{}, c, llm_client.Options{}, prompt.Options{})
	got := p.Classify("Day 2: Amber Fort\nElephant-free visit.")
	if lines := got.Lines(sections.Day); len(lines) != 2 || lines[0] != "## Day 2: Amber Fort" {
		t.Errorf("day lines = %q", lines)
	}
}
