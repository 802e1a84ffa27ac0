// Package planner runs one itinerary request end to end: it builds the
// prompt, makes a single model call and splits the reply into sections.
package planner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"itinera/internal/llm_client"
	"itinera/internal/logger"
	"itinera/internal/metrics"
	"itinera/internal/prompt"
	"itinera/internal/sections"
	"itinera/internal/trip"
)

var (
	ErrNoPlan       = errors.New("no plan to refine yet")
	ErrEmptyRequest = errors.New("refinement request is empty")
)

// Generator is the model call. llm_client.Provider satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts llm_client.Options) (string, error)
}

type Plan struct {
	ID          string              `json:"id"`
	ParentID    string              `json:"parent_id,omitempty"`
	Preferences trip.Preferences    `json:"preferences"`
	Request     string              `json:"request,omitempty"`
	Prompt      string              `json:"prompt"`
	Raw         string              `json:"raw"`
	Sections    sections.SectionMap `json:"sections"`
	Metrics     *metrics.Generation `json:"metrics,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type Planner struct {
	gen        Generator
	classifier *sections.Classifier
	opts       llm_client.Options
	promptOpts prompt.Options
}

// New returns a Planner. A nil classifier selects sections.Default().
func New(gen Generator, classifier *sections.Classifier, opts llm_client.Options, promptOpts prompt.Options) *Planner {
	if classifier == nil {
		classifier = sections.Default()
	}
	return &Planner{gen: gen, classifier: classifier, opts: opts, promptOpts: promptOpts}
}

// Generate validates prefs and asks the model for a fresh plan. Missing
// destination or days are reported before any model call. A model failure
// is returned exactly as the Generator produced it.
func (p *Planner) Generate(ctx context.Context, prefs trip.Preferences) (*Plan, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	plan := &Plan{
		Preferences: prefs,
		Prompt:      prompt.BuildPlanPrompt(prefs, p.promptOpts),
	}
	if err := p.run(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Refine asks the model to revise prev according to request. The new plan
// keeps prev's preferences and records prev as its parent.
func (p *Planner) Refine(ctx context.Context, prev *Plan, request string) (*Plan, error) {
	if prev == nil {
		return nil, ErrNoPlan
	}
	if strings.TrimSpace(request) == "" {
		return nil, ErrEmptyRequest
	}
	plan := &Plan{
		ParentID:    prev.ID,
		Preferences: prev.Preferences,
		Request:     request,
		Prompt:      prompt.BuildRefinePrompt(prev.Raw, request),
	}
	if err := p.run(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// RefineText revises a plan known only by its text.
func (p *Planner) RefineText(ctx context.Context, planText, request string) (*Plan, error) {
	if strings.TrimSpace(planText) == "" {
		return nil, ErrNoPlan
	}
	return p.Refine(ctx, &Plan{Raw: planText}, request)
}

// Classify splits text with the planner's rules without calling the model.
func (p *Planner) Classify(text string) sections.SectionMap {
	return p.classifier.Classify(text)
}

func (p *Planner) run(ctx context.Context, plan *Plan) error {
	plan.ID = uuid.New().String()[:8]
	m := &metrics.Generation{
		PlanID:      plan.ID,
		Model:       p.opts.Model,
		Start:       time.Now(),
		PromptChars: len(plan.Prompt),
	}
	if named, ok := p.gen.(interface{ Name() string }); ok {
		m.Backend = named.Name()
	}
	plan.Metrics = m

	logger.Log.Debugw("Calling model", "plan_id", plan.ID, "parent_id", plan.ParentID, "backend", m.Backend, "prompt_chars", m.PromptChars)
	raw, err := p.gen.Generate(ctx, plan.Prompt, p.opts)
	modelDone := time.Now()
	m.ModelMs = modelDone.Sub(m.Start).Milliseconds()
	if err != nil {
		m.End = modelDone
		m.Err = err.Error()
		m.Finalize()
		logger.Log.Errorw("Model call failed", "plan_id", plan.ID, "error", err, "model_ms", m.ModelMs)
		return err
	}

	plan.Raw = raw
	plan.Sections = p.classifier.Classify(raw)
	m.End = time.Now()
	m.ClassifyMs = m.End.Sub(modelDone).Milliseconds()
	m.ResponseChars = len(raw)
	m.CountLines(plan.Sections)
	m.Succeeded = true
	m.Finalize()
	plan.CreatedAt = m.End

	logger.Log.Infow("Plan generated", "plan_id", plan.ID, "parent_id", plan.ParentID, "model_ms", m.ModelMs, "lines", m.TotalLines())
	return nil
}
