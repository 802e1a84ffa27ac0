package display

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"itinera/internal/logger"
	"itinera/internal/sections"
)

const defaultCardWidth = 80

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1).
			MarginBottom(1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#60a5fa"))
	timelineStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3b82f6")).
			PaddingLeft(1)
)

type CardOptions struct {
	// Width is the outer card width; zero selects 80 columns.
	Width int
	// Markdown renders section bodies with glamour.
	Markdown bool
	// Style is a glamour standard style name; empty selects auto detection.
	Style string
}

// RenderCards draws one bordered card per non-empty section.
func RenderCards(m sections.SectionMap, opts CardOptions) string {
	width := opts.Width
	if width <= 0 {
		width = defaultCardWidth
	}
	inner := width - cardStyle.GetHorizontalBorderSize() - cardStyle.GetHorizontalMargins()
	content := inner - cardStyle.GetHorizontalPadding()

	var md *glamour.TermRenderer
	if opts.Markdown {
		var err error
		md, err = newMarkdownRenderer(opts.Style, content)
		if err != nil {
			logger.Log.Warnw("Markdown renderer unavailable, using plain text", "error", err)
		}
	}

	var cards []string
	for _, k := range sections.Keys {
		body := sectionBody(m, k)
		if body == "" {
			continue
		}
		card := titleStyle.Render(strings.ToUpper(Titles[k])) + "\n" + renderBody(body, md, content)
		cards = append(cards, cardStyle.Width(inner).Render(card))
	}
	if len(cards) == 0 {
		return "The model returned no usable itinerary text.\n"
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func newMarkdownRenderer(style string, wrap int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
}

func renderBody(body string, md *glamour.TermRenderer, width int) string {
	if md != nil {
		out, err := md.Render(body)
		if err == nil {
			lines := strings.Split(strings.Trim(out, "\n"), "\n")
			for i, line := range lines {
				lines[i] = strings.TrimRight(line, " ")
			}
			return strings.Join(lines, "\n")
		}
		logger.Log.Warnw("Markdown render failed, using plain text", "error", err)
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if item, ok := isTimelineItem(line); ok {
			lines[i] = timelineStyle.Width(width - timelineStyle.GetHorizontalBorderSize()).Render(item)
		}
	}
	return strings.Join(lines, "\n")
}
