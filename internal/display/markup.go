package display

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup reduces stray HTML in model output to its text. Text without
// tags is returned unchanged.
func StripMarkup(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, tr, h1, h2, h3, h4, h5, h6").AfterHtml("\n")
	doc.Find("script, style").Remove()
	return doc.Text()
}
