package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/loader"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/protocol"
	"github.com/richard-senior/htft/pkg/report"
	"github.com/richard-senior/htft/pkg/stats"
	"github.com/richard-senior/htft/pkg/transport"
)

// ErrUnknownSession is returned when a session id has expired or never existed
var ErrUnknownSession = errors.New("unknown session")

// ErrUnknownStrategy is returned for names missing from the catalogue
var ErrUnknownStrategy = errors.New("strategy not found")

// Handler runs one tool call. A returned error is reported to the client
// as a failed tool result.
type Handler func(ctx context.Context, args json.RawMessage) (*protocol.ToolResult, error)

// Tool pairs a tools/list entry with its handler
type Tool struct {
	Definition protocol.Tool
	Handle     Handler
}

// Options wires a Toolbox; zero values fall back to defaults
type Options struct {
	Engine    *stats.Engine
	Loader    *loader.Loader
	Formatter insight.Formatter
	Parse     match.Options
	Sessions  *Sessions
}

// Toolbox implements the strategy analysis tools over loaded datasets
type Toolbox struct {
	engine    *stats.Engine
	loader    *loader.Loader
	formatter insight.Formatter
	parse     match.Options
	sessions  *Sessions
}

func NewToolbox(o Options) *Toolbox {
	tb := &Toolbox{
		engine:    o.Engine,
		loader:    o.Loader,
		formatter: o.Formatter,
		parse:     o.Parse,
		sessions:  o.Sessions,
	}
	if tb.engine == nil {
		tb.engine = stats.Default()
	}
	if tb.loader == nil {
		tb.loader = loader.New(transport.ClientOptions{})
	}
	if tb.formatter == nil {
		tb.formatter = insight.Disabled{}
	}
	if tb.sessions == nil {
		tb.sessions = NewSessions(MaxSessions)
	}
	return tb
}

// Tools lists every tool in the order they are advertised
func (tb *Toolbox) Tools() []Tool {
	session := protocol.ToolProperty{Type: "string", Description: "Session id returned by load_matches"}
	strategyName := protocol.ToolProperty{Type: "string", Description: "Exact strategy name as listed by list_strategies"}

	return []Tool{
		{
			Definition: protocol.Tool{
				Name:        "load_matches",
				Description: "Load a CSV of matches with half-time and full-time scores from a path, URL or inline text, returning a session id for the other tools",
				InputSchema: protocol.InputSchema{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"source": {Type: "string", Description: "File path, file:// or http(s) URL of the CSV, or an HTML page linking to one"},
						"csv":    {Type: "string", Description: "The CSV text itself, used instead of source"},
					},
					Required: []string{},
				},
			},
			Handle: tb.handleLoadMatches,
		},
		{
			Definition: protocol.Tool{
				Name:        "analyze_strategies",
				Description: "Evaluate every catalogue strategy over a loaded dataset, ranked by success rate",
				InputSchema: protocol.InputSchema{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"session": session,
						"top":     {Type: "integer", Description: "Only return the best N strategies"},
					},
					Required: []string{"session"},
				},
			},
			Handle: tb.handleAnalyze,
		},
		{
			Definition: protocol.Tool{
				Name:        "strategy_detail",
				Description: "Per-league performance and per-match outcomes for one strategy",
				InputSchema: protocol.InputSchema{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"session":  session,
						"strategy": strategyName,
					},
					Required: []string{"session", "strategy"},
				},
			},
			Handle: tb.handleDetail,
		},
		{
			Definition: protocol.Tool{
				Name:        "reverse_strategy",
				Description: "Statistics for betting against a strategy, over the matches it applies to",
				InputSchema: protocol.InputSchema{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"session":  session,
						"strategy": strategyName,
					},
					Required: []string{"session", "strategy"},
				},
			},
			Handle: tb.handleReverse,
		},
		{
			Definition: protocol.Tool{
				Name:        "list_strategies",
				Description: "List the strategy catalogue with descriptions and categories",
				InputSchema: protocol.InputSchema{Type: "object", Required: []string{}},
			},
			Handle: tb.handleList,
		},
		{
			Definition: protocol.Tool{
				Name:        "strategy_insights",
				Description: "Ask the configured language model for a narrative analysis of the ranked strategies",
				InputSchema: protocol.InputSchema{
					Type:       "object",
					Properties: map[string]protocol.ToolProperty{"session": session},
					Required:   []string{"session"},
				},
			},
			Handle: tb.handleInsights,
		},
		{
			Definition: protocol.Tool{
				Name:        "render_report",
				Description: "Render the full analysis of a dataset as text, JSON, HTML or markdown",
				InputSchema: protocol.InputSchema{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"session":  session,
						"format":   {Type: "string", Description: "Output format", Enum: []string{"text", "json", "html", "markdown"}},
						"strategy": {Type: "string", Description: "Optional strategy to include a drill-down for"},
					},
					Required: []string{"session"},
				},
			},
			Handle: tb.handleReport,
		},
	}
}

type loadArgs struct {
	Source string `json:"source"`
	CSV    string `json:"csv"`
}

type sessionArgs struct {
	Session  string `json:"session"`
	Strategy string `json:"strategy"`
	Top      int    `json:"top"`
	Format   string `json:"format"`
}

func decode(args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v any) (*protocol.ToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &protocol.ToolResult{Content: []protocol.Content{{Type: "text", Text: string(b), MimeType: "application/json"}}}, nil
}

func (tb *Toolbox) dataset(args json.RawMessage) (*Dataset, sessionArgs, error) {
	var a sessionArgs
	if err := decode(args, &a); err != nil {
		return nil, a, err
	}
	if a.Session == "" {
		return nil, a, fmt.Errorf("session is required")
	}
	ds, ok := tb.sessions.Get(a.Session)
	if !ok {
		return nil, a, fmt.Errorf("%w: %s", ErrUnknownSession, a.Session)
	}
	return ds, a, nil
}

func (tb *Toolbox) handleLoadMatches(ctx context.Context, args json.RawMessage) (*protocol.ToolResult, error) {
	var a loadArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	var (
		source = a.Source
		res    *match.Result
		err    error
	)
	switch {
	case a.CSV != "" && a.Source != "":
		return nil, fmt.Errorf("give either source or csv, not both")
	case a.CSV != "":
		source = "inline"
		res, err = match.ParseDetailed(a.CSV, tb.parse)
	case a.Source != "":
		var doc *loader.Document
		doc, res, err = tb.loader.LoadRecords(ctx, a.Source, tb.parse)
		if doc != nil {
			source = doc.Name
		}
	default:
		return nil, fmt.Errorf("source or csv is required")
	}
	if err == nil {
		err = res.RequireRecords()
	}
	if err != nil {
		return nil, err
	}

	ds := tb.sessions.Put(source, res)
	logger.Info("Loaded dataset", source, len(ds.Records), "matches into session", ds.ID)

	return jsonResult(map[string]any{
		"session":     ds.ID,
		"source":      ds.Source,
		"dialect":     ds.Dialect,
		"matches":     len(ds.Records),
		"skippedRows": ds.Skipped,
		"leagues":     match.Leagues(ds.Records),
	})
}

func (tb *Toolbox) handleAnalyze(_ context.Context, args json.RawMessage) (*protocol.ToolResult, error) {
	ds, a, err := tb.dataset(args)
	if err != nil {
		return nil, err
	}

	ranked := tb.engine.ComputeAll(ds.Records)
	summary := stats.Summarize(ds.Records, ranked)
	if a.Top > 0 {
		ranked = stats.Top(ranked, a.Top)
	}
	return jsonResult(map[string]any{
		"summary": summary,
		"results": ranked,
	})
}

func (tb *Toolbox) handleDetail(_ context.Context, args json.RawMessage) (*protocol.ToolResult, error) {
	ds, a, err := tb.dataset(args)
	if err != nil {
		return nil, err
	}
	d, ok := tb.engine.ComputeOne(ds.Records, a.Strategy)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, a.Strategy)
	}
	return jsonResult(d)
}

func (tb *Toolbox) handleReverse(_ context.Context, args json.RawMessage) (*protocol.ToolResult, error) {
	ds, a, err := tb.dataset(args)
	if err != nil {
		return nil, err
	}
	r, ok := tb.engine.ComputeReverse(ds.Records, a.Strategy)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, a.Strategy)
	}
	return jsonResult(r)
}

type CatalogueEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Conditional bool   `json:"conditional"`
}

// CatalogueEntries describes the engine's catalogue for listing
func CatalogueEntries(engine *stats.Engine) []CatalogueEntry {
	defs := engine.Catalogue().Definitions()
	out := make([]CatalogueEntry, 0, len(defs))
	for _, d := range defs {
		out = append(out, CatalogueEntry{
			Name:        d.Name,
			Description: d.Description,
			Category:    string(d.Category),
			Conditional: d.Conditional,
		})
	}
	return out
}

func (tb *Toolbox) handleList(context.Context, json.RawMessage) (*protocol.ToolResult, error) {
	return jsonResult(CatalogueEntries(tb.engine))
}

func (tb *Toolbox) handleInsights(ctx context.Context, args json.RawMessage) (*protocol.ToolResult, error) {
	ds, _, err := tb.dataset(args)
	if err != nil {
		return nil, err
	}
	text, err := tb.formatter.Generate(ctx, tb.engine.ComputeAll(ds.Records))
	if err != nil {
		return nil, err
	}
	sections, err := insight.Sections(text)
	if err != nil {
		return nil, err
	}
	structured, err := jsonResult(map[string]any{"sections": sections})
	if err != nil {
		return nil, err
	}
	res := protocol.TextResult(text)
	res.Content = append(res.Content, structured.Content...)
	return res, nil
}

func (tb *Toolbox) handleReport(_ context.Context, args json.RawMessage) (*protocol.ToolResult, error) {
	ds, a, err := tb.dataset(args)
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	var names []string
	if s := strings.TrimSpace(a.Strategy); s != "" {
		if _, ok := tb.engine.Catalogue().Lookup(s); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
		}
		names = append(names, s)
	}
	an := report.Analyse(tb.engine, ds.Source, ds.Records, names...)
	an.Skipped = ds.Skipped

	var buf bytes.Buffer
	if err := report.Write(&buf, format, an); err != nil {
		return nil, err
	}
	return protocol.TextResult(buf.String()), nil
}

// Ranked returns ComputeAll over the dataset held by session
func (tb *Toolbox) Ranked(session string) ([]stats.Stats, error) {
	ds, ok := tb.sessions.Get(session)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, session)
	}
	return tb.engine.ComputeAll(ds.Records), nil
}

// Engine exposes the engine the tools evaluate with
func (tb *Toolbox) Engine() *stats.Engine {
	return tb.engine
}
