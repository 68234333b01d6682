package resources

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/protocol"
	"github.com/richard-senior/htft/pkg/strategy"
)

var ErrResourceNotFound = errors.New("resource not found")

// Reader produces the current body of a resource
type Reader func() (string, error)

// Registry holds the resources advertised through resources/list
type Registry struct {
	mu        sync.RWMutex
	resources []protocol.Resource
	readers   map[string]Reader
}

func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

func (r *Registry) Register(res protocol.Resource, read Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources = append(r.resources, res)
	r.readers[res.URI] = read
	logger.Info("Registered resource:", res.Name)
}

func (r *Registry) List() []protocol.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// Read returns the body of the resource at uri
func (r *Registry) Read(uri string) (*protocol.ResourceReadResult, error) {
	r.mu.RLock()
	read, ok := r.readers[uri]
	var mime string
	for _, res := range r.resources {
		if res.URI == uri {
			mime = res.MimeType
		}
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
	}
	text, err := read()
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %s: %w", uri, err)
	}
	return &protocol.ResourceReadResult{
		Contents: []protocol.Content{{URI: uri, MimeType: mime, Text: text}},
	}, nil
}

// StrategyCatalogue documents every definition in cat as a markdown table
func StrategyCatalogue(cat *strategy.Catalogue) (protocol.Resource, Reader) {
	res := protocol.Resource{
		URI:         "htft://strategies",
		Name:        "strategy_catalogue",
		Description: "The half-time/full-time strategies evaluated by analyze_strategies",
		MimeType:    "text/markdown",
	}
	read := func() (string, error) {
		var b strings.Builder
		b.WriteString("# Strategy catalogue\n\n")
		b.WriteString("Conditional strategies only count matches that meet their half-time condition.\n\n")
		b.WriteString("| # | Name | Category | Conditional | Description |\n|---|---|---|---|---|\n")
		for i, d := range cat.Definitions() {
			fmt.Fprintf(&b, "| %d | %s | %s | %t | %s |\n", i+1, d.Name, d.Category, d.Conditional, d.Description)
		}
		return b.String(), nil
	}
	return res, read
}

// CSVFormat documents the header layouts the parser accepts
func CSVFormat() (protocol.Resource, Reader) {
	res := protocol.Resource{
		URI:         "htft://csv-format",
		Name:        "csv_format",
		Description: "Accepted CSV header layouts and row rules for load_matches",
		MimeType:    "text/markdown",
	}
	read := func() (string, error) {
		var b strings.Builder
		b.WriteString("# Match CSV format\n\n")
		b.WriteString("Comma separated, first non-blank line is the header. Column order is free; ")
		b.WriteString("extra columns are ignored. Rows whose goal columns are not integers are skipped.\n")
		b.WriteString("An empty league becomes " + match.UnknownLeague + ".\n")
		for _, d := range match.Dialects {
			fmt.Fprintf(&b, "\n## %s\n\n", d.Name)
			for _, c := range d.Columns() {
				fmt.Fprintf(&b, "- `%s`\n", c)
			}
		}
		return b.String(), nil
	}
	return res, read
}
