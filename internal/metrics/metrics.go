package metrics

import (
	"time"

	"itinera/internal/sections"
)

// Generation records one prompt → model → classifier round trip.
type Generation struct {
	PlanID          string               `json:"plan_id"`
	Backend         string               `json:"backend,omitempty"`
	Model           string               `json:"model,omitempty"`
	Start           time.Time            `json:"start"`
	End             time.Time            `json:"end"`
	PromptChars     int                  `json:"prompt_chars"`
	ResponseChars   int                  `json:"response_chars"`
	ModelMs         int64                `json:"model_ms"`
	ClassifyMs      int64                `json:"classify_ms"`
	DurationMs      int64                `json:"duration_ms"`
	LinesPerSection map[sections.Key]int `json:"lines_per_section"`
	Succeeded       bool                 `json:"succeeded"`
	Err             string               `json:"err,omitempty"`
}

// Compute derived fields.
func (g *Generation) Finalize() {
	g.DurationMs = g.End.Sub(g.Start).Milliseconds()
}

// CountLines fills LinesPerSection from a classified response.
func (g *Generation) CountLines(m sections.SectionMap) {
	g.LinesPerSection = make(map[sections.Key]int, len(sections.Keys))
	for _, k := range sections.Keys {
		g.LinesPerSection[k] = len(m.Lines(k))
	}
}

// TotalLines is the number of lines kept across all sections.
func (g *Generation) TotalLines() int {
	n := 0
	for _, c := range g.LinesPerSection {
		n += c
	}
	return n
}
