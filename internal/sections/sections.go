// Package sections splits free-form itinerary text returned by a language
// model into a fixed set of named sections.
package sections

import "strings"

// Key names one of the fixed content categories.
type Key string

const (
	Overview  Key = "overview"
	Day       Key = "day"
	Stay      Key = "stay"
	Food      Key = "food"
	Transport Key = "transport"
	Budget    Key = "budget"
)

// Keys lists every section in display order.
var Keys = []Key{Overview, Day, Stay, Food, Transport, Budget}

func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// SectionMap holds the lines assigned to each section, in source order.
// Lines are stored without their terminator.
type SectionMap map[Key][]string

// NewSectionMap returns a map with every key present and empty.
func NewSectionMap() SectionMap {
	m := make(SectionMap, len(Keys))
	for _, k := range Keys {
		m[k] = []string{}
	}
	return m
}

func (m SectionMap) Lines(k Key) []string {
	return m[k]
}

// Text joins a section's lines, each followed by a newline.
func (m SectionMap) Text(k Key) string {
	var sb strings.Builder
	for _, line := range m[k] {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m SectionMap) Empty(k Key) bool {
	return len(m[k]) == 0
}

// Cleaned returns the display-ready text of every section. See Clean.
func (m SectionMap) Cleaned() map[Key]string {
	out := make(map[Key]string, len(Keys))
	for _, k := range Keys {
		out[k] = Clean(m.Text(k))
	}
	return out
}
