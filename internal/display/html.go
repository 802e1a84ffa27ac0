package display

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"itinera/internal/sections"
)

const pageCSS = `body { background: #0f172a; font-family: sans-serif; margin: 2rem auto; max-width: 860px; }
h1 { color: #f1f5f9; }
.card { background: #1e293b; color: #f1f5f9; padding: 24px; border-radius: 16px; margin-bottom: 20px; border: 1px solid #334155; }
.section-title { color: #60a5fa; font-weight: 800; font-size: 1.2rem; margin-bottom: 12px; text-transform: uppercase; letter-spacing: 0.05em; }
.timeline-item { padding: 12px 16px; border-left: 4px solid #3b82f6; background: #0f172a; border-radius: 0 12px 12px 0; margin: 12px 0; font-family: monospace; }
.card ul { margin-left: 20px; }
`

// FormatHTML renders the sections as a standalone page: a card per
// non-empty section, day sub-headings as timeline items. All model text is
// escaped.
func FormatHTML(title string, m sections.SectionMap) (string, error) {
	body := element(atom.Body, "")
	body.AppendChild(textElement(atom.H1, "", title))

	for _, k := range sections.Keys {
		text := sectionBody(m, k)
		if text == "" {
			continue
		}
		card := element(atom.Div, "card")
		card.Attr = append(card.Attr, html.Attribute{Key: "id", Val: string(k)})
		card.AppendChild(textElement(atom.Div, "section-title", Titles[k]))

		var list *html.Node
		for _, line := range strings.Split(text, "\n") {
			if item, ok := isTimelineItem(line); ok {
				list = nil
				card.AppendChild(textElement(atom.Div, "timeline-item", item))
				continue
			}
			if bullet, ok := bulletText(line); ok {
				if list == nil {
					list = element(atom.Ul, "")
					card.AppendChild(list)
				}
				list.AppendChild(textElement(atom.Li, "", bullet))
				continue
			}
			list = nil
			card.AppendChild(textElement(atom.P, "", line))
		}
		body.AppendChild(card)
	}

	head := element(atom.Head, "")
	meta := element(atom.Meta, "")
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	head.AppendChild(textElement(atom.Title, "", title))
	head.AppendChild(textElement(atom.Style, "", pageCSS))

	root := element(atom.Html, "")
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}

func textElement(a atom.Atom, class, text string) *html.Node {
	n := element(a, class)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
