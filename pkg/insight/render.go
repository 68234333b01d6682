package insight

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

// Section is one "### " block of an insight reply
type Section struct {
	Heading string   `json:"heading"`
	Items   []string `json:"items"`
	Text    []string `json:"text,omitempty"`
}

// RenderHTML converts insight markdown to an HTML fragment
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render insight markdown: %w", err)
	}
	return buf.String(), nil
}

// Sections splits an insight reply into its headed blocks. Content before the
// first heading is returned as a section with an empty heading.
func Sections(markdown string) ([]Section, error) {
	html, err := RenderHTML(markdown)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse insight HTML: %w", err)
	}

	var sections []Section
	current := func() *Section {
		if len(sections) == 0 {
			sections = append(sections, Section{})
		}
		return &sections[len(sections)-1]
	}

	doc.Find("body").Children().Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3", "h4":
			sections = append(sections, Section{Heading: strings.TrimSpace(s.Text())})
		case "ul", "ol":
			sec := current()
			s.Find("li").Each(func(j int, li *goquery.Selection) {
				if item := strings.TrimSpace(li.Text()); item != "" {
					sec.Items = append(sec.Items, item)
				}
			})
		default:
			if text := strings.TrimSpace(s.Text()); text != "" {
				sec := current()
				sec.Text = append(sec.Text, text)
			}
		}
	})
	return sections, nil
}
