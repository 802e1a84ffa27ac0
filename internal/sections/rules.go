package sections

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

const defaultSubHeadingPrefix = "### "

// Rule maps heading vocabulary to the section it opens. Rules are tried in
// ascending Priority; the first one with a matching pattern wins.
type Rule struct {
	Section  Key      `yaml:"section"`
	Priority int      `yaml:"priority"`
	Patterns []string `yaml:"patterns"`
	// SubHeading patterns select header lines that are echoed into the new
	// section as a sub-heading instead of being dropped.
	SubHeading []string `yaml:"sub_heading,omitempty"`
}

// Guard suppresses a From -> To transition unless one of the Unless
// patterns also matches the line.
type Guard struct {
	From   Key      `yaml:"from"`
	To     Key      `yaml:"to"`
	Unless []string `yaml:"unless"`
}

type RuleSet struct {
	Rules            []Rule  `yaml:"rules"`
	Guards           []Guard `yaml:"guards"`
	SubHeadingPrefix string  `yaml:"sub_heading_prefix"`
}

// DefaultRules is the built-in trigger table. The only guard keeps a day
// plan line that mentions a meal inside the day section; other transitions
// out of a day are not guarded.
func DefaultRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{
				Section:  Day,
				Priority: 10,
				Patterns: []string{
					`\bday\s*\d+\b`,
					`\bday[- ]by[- ]day\b`,
					`\bitinerary\b`,
					`\bdaily plan\b`,
				},
				SubHeading: []string{`\bday\s*\d+\b`},
			},
			{
				Section:  Stay,
				Priority: 20,
				Patterns: []string{
					`\bwhere to stay\b`,
					`\baccommodations?\b`,
					`\blodging\b`,
					`\bhotels?\b`,
					`\bhostels?\b`,
					`\bstay\b`,
				},
			},
			{
				Section:  Food,
				Priority: 30,
				Patterns: []string{
					`\bfood\b`,
					`\bcuisine\b`,
					`\brestaurants?\b`,
					`\bdining\b`,
					`\bwhat to eat\b`,
					`\bmust[- ]try\b`,
				},
			},
			{
				Section:  Transport,
				Priority: 40,
				Patterns: []string{
					`\btransport(ation)?\b`,
					`\bgetting around\b`,
					`\bhow to get around\b`,
					`\blocal travel\b`,
					`\btaxis?\b`,
					`\bcabs?\b`,
				},
			},
			{
				Section:  Budget,
				Priority: 50,
				Patterns: []string{
					`\bbudget\b`,
					`\bcost breakdown\b`,
					`\bestimated costs?\b`,
					`\bexpenses?\b`,
				},
			},
			{
				Section:  Overview,
				Priority: 60,
				Patterns: []string{`^[#*>\s\d.)]*(trip\s+)?overview\b`},
			},
		},
		Guards: []Guard{
			{From: Day, To: Food, Unless: []string{`\bguide\b`}},
		},
		SubHeadingPrefix: defaultSubHeadingPrefix,
	}
}

// LoadRules reads a RuleSet from a YAML file.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("could not read rules file: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("could not parse rules file %s: %w", path, err)
	}
	if len(rs.Rules) == 0 {
		return RuleSet{}, fmt.Errorf("rules file %s defines no rules", path)
	}
	return rs, nil
}

type compiledRule struct {
	section    Key
	patterns   []*regexp.Regexp
	subHeading []*regexp.Regexp
}

type compiledGuard struct {
	from, to Key
	unless   []*regexp.Regexp
}

func (r compiledRule) matches(line string) bool {
	return anyMatch(r.patterns, line)
}

func (g compiledGuard) suppresses(current, candidate Key, line string) bool {
	return current == g.from && candidate == g.to && !anyMatch(g.unless, line)
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func compilePatterns(what string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%s: bad pattern %q: %w", what, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (rs RuleSet) compile() ([]compiledRule, []compiledGuard, error) {
	ordered := make([]Rule, len(rs.Rules))
	copy(ordered, rs.Rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	rules := make([]compiledRule, 0, len(ordered))
	for _, r := range ordered {
		if !r.Section.Valid() {
			return nil, nil, fmt.Errorf("rule has unknown section %q", r.Section)
		}
		if len(r.Patterns) == 0 {
			return nil, nil, fmt.Errorf("rule for section %q has no patterns", r.Section)
		}
		patterns, err := compilePatterns("rule "+string(r.Section), r.Patterns)
		if err != nil {
			return nil, nil, err
		}
		sub, err := compilePatterns("rule "+string(r.Section)+" sub_heading", r.SubHeading)
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, compiledRule{section: r.Section, patterns: patterns, subHeading: sub})
	}

	guards := make([]compiledGuard, 0, len(rs.Guards))
	for _, g := range rs.Guards {
		if !g.From.Valid() || !g.To.Valid() {
			return nil, nil, fmt.Errorf("guard %q -> %q names an unknown section", g.From, g.To)
		}
		unless, err := compilePatterns("guard "+string(g.From)+"->"+string(g.To), g.Unless)
		if err != nil {
			return nil, nil, err
		}
		guards = append(guards, compiledGuard{from: g.From, to: g.To, unless: unless})
	}
	return rules, guards, nil
}
