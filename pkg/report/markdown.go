package report

import (
	"bytes"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// RenderMarkdown produces the HTML report and converts it to markdown, so
// both formats always carry the same content
func RenderMarkdown(a *Analysis) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, a); err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert report to markdown: %w", err)
	}
	return md + "\n", nil
}
