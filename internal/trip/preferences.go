package trip

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type BudgetTier string

const (
	BudgetLow    BudgetTier = "Low"
	BudgetMedium BudgetTier = "Medium"
	BudgetLuxury BudgetTier = "Luxury"
)

type Pace string

const (
	PaceRelaxed  Pace = "Relaxed"
	PaceBalanced Pace = "Balanced"
	PacePacked   Pace = "Packed"
)

var ErrInvalidPreferences = errors.New("invalid trip preferences")

// Preferences is one request's worth of user input. It is passed by value
// and never modified once built.
type Preferences struct {
	Destination string     `json:"destination" yaml:"destination" validate:"required"`
	Days        int        `json:"days" yaml:"days" validate:"gt=0"`
	Budget      BudgetTier `json:"budget,omitempty" yaml:"budget" validate:"omitempty,oneof=Low Medium Luxury"`
	Interests   []string   `json:"interests,omitempty" yaml:"interests"`
	Pace        Pace       `json:"pace,omitempty" yaml:"pace" validate:"omitempty,oneof=Relaxed Balanced Packed"`
}

var validate = validator.New()

// New normalizes the free-form fields the way the input forms produce them:
// trimmed destination, tier and pace names matched case-insensitively, and
// interests split on commas.
func New(destination string, days int, budget, interests, pace string) Preferences {
	return Preferences{
		Destination: strings.TrimSpace(destination),
		Days:        days,
		Budget:      ParseBudgetTier(budget),
		Interests:   SplitInterests(interests),
		Pace:        ParsePace(pace),
	}
}

// Normalized applies the same clean-up as New to a record decoded from
// JSON or YAML.
func (p Preferences) Normalized() Preferences {
	var interests []string
	for _, tag := range p.Interests {
		interests = append(interests, SplitInterests(tag)...)
	}
	return Preferences{
		Destination: strings.TrimSpace(p.Destination),
		Days:        p.Days,
		Budget:      ParseBudgetTier(string(p.Budget)),
		Interests:   interests,
		Pace:        ParsePace(string(p.Pace)),
	}
}

// Validate reports missing or out-of-range fields. Callers run it before
// building a prompt; the prompt builder itself never fails.
func (p Preferences) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidPreferences, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "gt":
		return strings.ToLower(fe.Field()) + " must be a positive number"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", strings.ToLower(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
}

// ParseBudgetTier accepts labels such as "low", "Medium 💲💲" or "LUXURY".
// Unknown labels are kept as typed so validation can report them.
func ParseBudgetTier(s string) BudgetTier {
	switch letters(s) {
	case "":
		return ""
	case "low":
		return BudgetLow
	case "medium":
		return BudgetMedium
	case "luxury":
		return BudgetLuxury
	}
	return BudgetTier(strings.TrimSpace(s))
}

func ParsePace(s string) Pace {
	switch letters(s) {
	case "":
		return ""
	case "relaxed":
		return PaceRelaxed
	case "balanced":
		return PaceBalanced
	case "packed":
		return PacePacked
	}
	return Pace(strings.TrimSpace(s))
}

// SplitInterests turns "food, culture,history" into trimmed, non-empty tags.
func SplitInterests(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func letters(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}
