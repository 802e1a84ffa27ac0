package sections

import (
	"regexp"
	"strings"
)

var enumeratorRe = regexp.MustCompile(`^\s*\d+[.)](?:\s+|$)`)

// Clean prepares section text for display: separator-only lines are
// dropped, "3)" and "7." enumerators are stripped from line starts, and
// surrounding whitespace is trimmed. Markdown emphasis and headings are
// left for the renderer.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if isSeparator(strings.TrimSpace(line)) {
			continue
		}
		out = append(out, enumeratorRe.ReplaceAllString(line, ""))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
