package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Kind int

const (
	// Skipped lines are blank or separator-only; they change nothing.
	Skipped Kind = iota
	// Content lines are appended verbatim to the current section.
	Content
	// Header lines switch the current section and are consumed.
	Header
)

func (k Kind) String() string {
	switch k {
	case Skipped:
		return "skipped"
	case Content:
		return "content"
	case Header:
		return "header"
	}
	return "unknown"
}

// LineResult records what the classifier did with one input line.
type LineResult struct {
	Number int
	Raw    string
	Kind   Kind
	// Section is the current section after the line was scanned.
	Section Key
	// Suppressed is set on a content line whose trigger was overridden by a guard.
	Suppressed bool
	// Emitted is the text appended to Section, or "" when nothing was.
	Emitted string
}

var separatorRe = regexp.MustCompile(`^(?:[-=_*~.·•—–]\s*){2,}$`)

func isSeparator(trimmed string) bool {
	return separatorRe.MatchString(trimmed)
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules  []compiledRule
	guards []compiledGuard
	prefix string
}

func NewClassifier(rs RuleSet) (*Classifier, error) {
	rules, guards, err := rs.compile()
	if err != nil {
		return nil, err
	}
	prefix := rs.SubHeadingPrefix
	if prefix == "" {
		prefix = defaultSubHeadingPrefix
	}
	return &Classifier{rules: rules, guards: guards, prefix: prefix}, nil
}

var defaultClassifier = mustNewClassifier(DefaultRules())

func mustNewClassifier(rs RuleSet) *Classifier {
	c, err := NewClassifier(rs)
	if err != nil {
		panic("sections: default rules do not compile: " + err.Error())
	}
	return c
}

// Default returns the classifier built from DefaultRules.
func Default() *Classifier {
	return defaultClassifier
}

// Classify splits text with the default rules.
func Classify(text string) SectionMap {
	return defaultClassifier.Classify(text)
}

// Classify never fails: unrecognised text stays in whatever section is
// current, which is Overview until the first header.
func (c *Classifier) Classify(text string) SectionMap {
	m := NewSectionMap()
	for _, r := range c.Scan(text) {
		if r.Emitted != "" {
			m[r.Section] = append(m[r.Section], r.Emitted)
		}
	}
	return m
}

// Scan runs the single-pass classification and reports every line.
func (c *Classifier) Scan(text string) []LineResult {
	lines := strings.Split(text, "\n")
	results := make([]LineResult, 0, len(lines))
	current := Overview

	for i, raw := range lines {
		raw = strings.TrimSuffix(raw, "\r")
		res := LineResult{Number: i + 1, Raw: raw, Section: current}

		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || isSeparator(trimmed) {
			res.Kind = Skipped
			results = append(results, res)
			continue
		}

		lower := strings.ToLower(trimmed)
		rule, ok := c.match(lower)
		if ok && c.suppressed(current, rule.section, lower) {
			ok = false
			res.Suppressed = true
		}
		if ok && rule.section == current && !restatesHeading(rule, trimmed, lower) {
			ok = false
		}

		if !ok {
			res.Kind = Content
			res.Emitted = raw
			results = append(results, res)
			continue
		}

		current = rule.section
		res.Kind = Header
		res.Section = current
		switch {
		case anyMatch(rule.subHeading, lower):
			res.Emitted = c.prefix + headingText(trimmed)
		default:
			res.Emitted = inlineRemainder(trimmed)
		}
		results = append(results, res)
	}
	return results
}

func (c *Classifier) match(lower string) (compiledRule, bool) {
	for _, r := range c.rules {
		if r.matches(lower) {
			return r, true
		}
	}
	return compiledRule{}, false
}

func (c *Classifier) suppressed(current, candidate Key, lower string) bool {
	for _, g := range c.guards {
		if g.suppresses(current, candidate, lower) {
			return true
		}
	}
	return false
}

// restatesHeading reports whether a line that triggers the section already
// current is a real heading rather than ordinary content that happens to
// use the section's vocabulary ("Hotel Clarks is central" inside stay).
func restatesHeading(rule compiledRule, trimmed, lower string) bool {
	if anyMatch(rule.subHeading, lower) {
		return true
	}
	if strings.HasPrefix(trimmed, "#") || strings.HasSuffix(trimmed, ":") ||
		(len(trimmed) > 4 && strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**")) {
		return true
	}
	if idx := strings.IndexAny(lower, ":："); idx > 0 {
		return rule.matches(lower[:idx])
	}
	return false
}

// inlineRemainder returns whatever follows a heading's label, so that
// "Food Guide: Try kebabs" keeps "Try kebabs". Bare headings yield "".
func inlineRemainder(trimmed string) string {
	idx := strings.IndexAny(trimmed, ":：")
	if idx < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(trimmed[idx:])
	rest := strings.TrimLeft(trimmed[idx+size:], "*_ \t")
	return strings.TrimSpace(rest)
}

// headingText drops markdown heading and emphasis markers around a line.
func headingText(trimmed string) string {
	t := strings.TrimLeft(trimmed, "#> \t")
	return strings.TrimSpace(strings.Trim(t, "*_ \t"))
}
