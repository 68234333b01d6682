package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/stats"
)

type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	HTML     Format = "html"
	Markdown Format = "markdown"
)

// Formats lists every format accepted by Write
var Formats = []Format{Text, JSON, HTML, Markdown}

// ParseFormat accepts the names in Formats plus "md"
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, JSON, HTML, Markdown:
		return f, nil
	case "", "txt":
		return Text, nil
	case "md":
		return Markdown, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Analysis is everything a report can show about one match file
type Analysis struct {
	Source    string          `json:"source"`
	Generated time.Time       `json:"generated"`
	Summary   stats.Summary   `json:"summary"`
	Results   []stats.Stats   `json:"results"`
	Details   []stats.Details `json:"details,omitempty"`
	Reverses  []stats.Reverse `json:"reverses,omitempty"`
	Skipped   []int           `json:"skippedRows,omitempty"`
	Insight   string          `json:"insight,omitempty"`
	// InsightSections is Insight split into its headed blocks
	InsightSections []insight.Section `json:"insightSections,omitempty"`
}

// Analyse runs the engine over records and collects the result. Names
// selects the strategies that get a drill-down; unknown names are ignored
// and repeated names are analysed once.
func Analyse(engine *stats.Engine, source string, records []match.Record, names ...string) *Analysis {
	ranked := engine.ComputeAll(records)
	a := &Analysis{
		Source:    source,
		Generated: time.Now().UTC(),
		Summary:   stats.Summarize(records, ranked),
		Results:   ranked,
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if d, ok := engine.ComputeOne(records, name); ok {
			a.Details = append(a.Details, *d)
		}
		if r, ok := engine.ComputeReverse(records, name); ok {
			a.Reverses = append(a.Reverses, *r)
		}
	}
	return a
}

// SetInsight stores the narrative and its parsed sections
func (a *Analysis) SetInsight(text string) error {
	sections, err := insight.Sections(text)
	if err != nil {
		return err
	}
	a.Insight, a.InsightSections = text, sections
	return nil
}

// Write renders a in the requested format
func Write(w io.Writer, format Format, a *Analysis) error {
	switch format {
	case Text:
		return WriteText(w, a)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case HTML:
		return WriteHTML(w, a)
	case Markdown:
		md, err := RenderMarkdown(a)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}
