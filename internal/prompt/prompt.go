package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"itinera/internal/trip"
)

// NotSpecified stands in for any preference the user left blank.
const NotSpecified = "Not specified"

type Options struct {
	// IncludeExtras adds the packing checklist and safety tips parts.
	IncludeExtras bool
	// FollowUpQuestions asks the model to close with questions that would
	// help refine the plan.
	FollowUpQuestions bool
}

// Parts the plan must contain, in order. The labels double as the headings
// the section classifier looks for.
var planParts = []string{
	"Overview",
	"Day-by-day itinerary (start each day with \"Day N:\")",
	"Where to stay",
	"Food guide",
	"Getting around (transport tips)",
	"Budget guidance",
}

var extraParts = []string{
	"Packing checklist",
	"Safety tips",
}

// BuildPlanPrompt renders the request for a new trip plan. It never fails;
// blank fields are written as NotSpecified.
func BuildPlanPrompt(p trip.Preferences, opts Options) string {
	var sb strings.Builder

	sb.WriteString("You are an expert travel planner. Write a complete, personalized trip plan.\n\n")

	sb.WriteString("TRAVELLER PREFERENCES:\n")
	sb.WriteString(fmt.Sprintf("- Destination: %s\n", orPlaceholder(p.Destination)))
	sb.WriteString(fmt.Sprintf("- Days: %s\n", days(p.Days)))
	sb.WriteString(fmt.Sprintf("- Budget: %s\n", orPlaceholder(string(p.Budget))))
	sb.WriteString(fmt.Sprintf("- Interests: %s\n", orPlaceholder(strings.Join(p.Interests, ", "))))
	sb.WriteString(fmt.Sprintf("- Travel style: %s\n\n", orPlaceholder(string(p.Pace))))

	parts := planParts
	if opts.IncludeExtras {
		parts = append(append([]string{}, planParts...), extraParts...)
	}
	sb.WriteString("The plan MUST contain these parts, in this order, each under its own heading:\n")
	for i, part := range parts {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, part))
	}
	sb.WriteString("\n")

	sb.WriteString("FORMAT RULES:\n")
	sb.WriteString("- Put every heading on its own line.\n")
	sb.WriteString("- Keep each day's activities under that day's heading; mention meals there freely.\n")
	sb.WriteString("- Use short bullet points. Do not use tables or HTML.\n")

	if opts.FollowUpQuestions {
		sb.WriteString("\nEnd by asking 2-3 smart follow-up questions that would help refine the plan.\n")
	}

	return sb.String()
}

// BuildRefinePrompt asks the model to revise an existing plan.
func BuildRefinePrompt(existingPlan, request string) string {
	var sb strings.Builder

	sb.WriteString("You are refining an existing travel plan.\n\n")
	sb.WriteString("CURRENT PLAN:\n")
	sb.WriteString(orPlaceholder(strings.TrimSpace(existingPlan)))
	sb.WriteString("\n\n")
	sb.WriteString("REFINEMENT REQUEST:\n")
	sb.WriteString(orPlaceholder(strings.TrimSpace(request)))
	sb.WriteString("\n\n")
	sb.WriteString("Return the full updated plan with the same headings, then clearly explain what changed.\n")

	return sb.String()
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

func days(n int) string {
	if n <= 0 {
		return NotSpecified
	}
	return strconv.Itoa(n)
}
