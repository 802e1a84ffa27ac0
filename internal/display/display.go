package display

import (
	"fmt"
	"strings"

	"itinera/internal/batch"
	"itinera/internal/planner"
	"itinera/internal/sections"
)

const maxSummaryLength = 60

// Titles are the headings shown above each section.
var Titles = map[sections.Key]string{
	sections.Overview:  "Overview",
	sections.Day:       "Day-by-day itinerary",
	sections.Stay:      "Where to stay",
	sections.Food:      "Food guide",
	sections.Transport: "Getting around",
	sections.Budget:    "Budget",
}

// isTimelineItem reports whether a section line is a day sub-heading
// produced by the classifier.
func isTimelineItem(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "### ")
	return strings.TrimSpace(rest), ok
}

// FormatSections renders the non-empty sections as plain text, in display
// order, with markup reduced to text.
func FormatSections(m sections.SectionMap) string {
	var sb strings.Builder
	first := true
	for _, k := range sections.Keys {
		body := sectionBody(m, k)
		if body == "" {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(strings.ToUpper(Titles[k]) + "\n")
		sb.WriteString("--------------------------------------------------\n")
		for _, line := range strings.Split(body, "\n") {
			if item, ok := isTimelineItem(line); ok {
				sb.WriteString("> " + item + "\n")
				continue
			}
			sb.WriteString(line + "\n")
		}
	}
	if first {
		return "The model returned no usable itinerary text.\n"
	}
	return sb.String()
}

func sectionBody(m sections.SectionMap, k sections.Key) string {
	return sections.Clean(StripMarkup(m.Text(k)))
}

// FormatBatch lists batch results one line each.
func FormatBatch(results []batch.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d plan(s), %d failed:\n", len(results)-batch.Failed(results), batch.Failed(results)))
	for _, r := range results {
		dest := fmt.Sprintf("%s (%d days)", r.Preferences.Destination, r.Preferences.Days)
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("  %2d. %-28s  error: %s\n", r.Index+1, dest, truncate(r.Err.Error(), maxSummaryLength)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %2d. %-28s  plan=%s  %s\n", r.Index+1, dest, r.Plan.ID, summary(r.Plan)))
	}
	return sb.String()
}

func summary(p *planner.Plan) string {
	overview := sections.Clean(p.Sections.Text(sections.Overview))
	first, _, _ := strings.Cut(overview, "\n")
	return truncate(first, maxSummaryLength)
}

// truncate shortens s to limit runes (limit < 0 means no limit).
func truncate(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	r := []rune(s)
	if limit >= 0 && len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}
