package auditor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractTitle returns the text of the document's first <title>, or "".
func extractTitle(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// resolveTitle prefers the engine's title and falls back to parsing the rendered content.
func resolveTitle(engineTitle, content string) string {
	if title := strings.TrimSpace(engineTitle); title != "" {
		return title
	}
	return extractTitle(content)
}
