package display

import (
	"fmt"
	"strings"

	"itinera/internal/metrics"
	"itinera/internal/sections"
)

func FormatMetrics(g *metrics.Generation) string {
	if g == nil {
		return "No metrics available."
	}
	var sb strings.Builder
	sb.WriteString("Generation metrics:\n")
	sb.WriteString(fmt.Sprintf("- Plan %s: %d ms  (success=%v)\n", g.PlanID, g.DurationMs, g.Succeeded))
	if g.Backend != "" || g.Model != "" {
		sb.WriteString(fmt.Sprintf("  Backend: %s %s\n", g.Backend, g.Model))
	}
	sb.WriteString(fmt.Sprintf("  Model call: %5d ms  (prompt %d chars, reply %d chars)\n", g.ModelMs, g.PromptChars, g.ResponseChars))
	sb.WriteString(fmt.Sprintf("  Classify:   %5d ms\n", g.ClassifyMs))
	if g.Err != "" {
		sb.WriteString(fmt.Sprintf("  Error: %s\n", g.Err))
	}
	if g.LinesPerSection != nil {
		for _, k := range sections.Keys {
			sb.WriteString(fmt.Sprintf("    • %-10s %3d lines\n", k, g.LinesPerSection[k]))
		}
	}
	return sb.String()
}
