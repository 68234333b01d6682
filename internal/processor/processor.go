package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/loader"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/report"
	"github.com/richard-senior/htft/pkg/stats"
	"github.com/richard-senior/htft/pkg/transport"
)

// Request is a one-shot analysis request
type Request struct {
	RequestID string `json:"requestId"`
	// Source is a path, URL or "-" for stdin; CSV carries the text inline
	Source string `json:"source"`
	CSV    string `json:"csv"`
	// Strategies get a per-league drill-down and an inverse analysis
	Strategies []string `json:"strategies"`
	Format     string   `json:"format"`
	Top        int      `json:"top"`
	Insights   bool     `json:"insights"`
	// Export is an optional SQLite database path the analysis is appended to
	Export string `json:"export"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error codes reported in ErrorResponse
const (
	CodeInvalidRequest = "invalid_request"
	CodeLoadFailed     = "load_failed"
	CodeInvalidInput   = "invalid_input"
	CodeExportFailed   = "export_failed"
	CodeInternal       = "internal_error"
)

// Options wires a Processor; zero values fall back to defaults
type Options struct {
	Loader    *loader.Loader
	Engine    *stats.Engine
	Formatter insight.Formatter
	Parse     match.Options
	Format    report.Format
	Top       int
}

// Processor turns a Request into a rendered report
type Processor struct {
	loader    *loader.Loader
	engine    *stats.Engine
	formatter insight.Formatter
	parse     match.Options
	format    report.Format
	top       int
}

func New(o Options) *Processor {
	p := &Processor{
		loader:    o.Loader,
		engine:    o.Engine,
		formatter: o.Formatter,
		parse:     o.Parse,
		format:    o.Format,
		top:       o.Top,
	}
	if p.loader == nil {
		p.loader = loader.New(transport.ClientOptions{})
	}
	if p.engine == nil {
		p.engine = stats.Default()
	}
	if p.formatter == nil {
		p.formatter = insight.Disabled{}
	}
	if p.format == "" {
		p.format = report.Text
	}
	return p
}

// RequestError is returned alongside an ErrorResponse
type RequestError struct {
	Code string
	Err  error
}

func (e *RequestError) Error() string { return e.Code + ": " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

func createErrorResponse(code string, err error, requestID string) ([]byte, error) {
	var response ErrorResponse
	response.RequestID = requestID
	response.Error.Code = code
	response.Error.Message = err.Error()

	out, merr := json.MarshalIndent(response, "", "  ")
	if merr != nil {
		return nil, merr
	}
	return append(out, '\n'), &RequestError{Code: code, Err: err}
}

// ProcessRequest decodes input as a Request and runs it. On failure the
// returned bytes hold an ErrorResponse and the error is a *RequestError.
func (p *Processor) ProcessRequest(ctx context.Context, input []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(input, &req); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse(CodeInvalidRequest, fmt.Errorf("invalid JSON: %w", err), "")
	}
	return p.Process(ctx, req)
}

// Process runs req and renders the report in the requested format
func (p *Processor) Process(ctx context.Context, req Request) ([]byte, error) {
	logger.Info("Processing request", req.RequestID, req.Source)

	format := p.format
	if req.Format != "" {
		f, err := report.ParseFormat(req.Format)
		if err != nil {
			return createErrorResponse(CodeInvalidRequest, err, req.RequestID)
		}
		format = f
	}

	source, res, err := p.load(ctx, req)
	if err != nil {
		code := CodeLoadFailed
		if errors.Is(err, match.ErrEmptyInput) || errors.Is(err, match.ErrTooFewLines) ||
			errors.Is(err, match.ErrMissingColumns) || errors.Is(err, match.ErrNoValidRows) {
			code = CodeInvalidInput
		}
		if errors.Is(err, errNoSource) {
			code = CodeInvalidRequest
		}
		return createErrorResponse(code, err, req.RequestID)
	}

	a := report.Analyse(p.engine, source, res.Records, req.Strategies...)
	a.Skipped = res.Skipped
	for _, name := range req.Strategies {
		if _, ok := p.engine.Catalogue().Lookup(name); !ok {
			logger.Warn("Unknown strategy requested:", name)
		}
	}

	if req.Insights {
		text, err := p.formatter.Generate(ctx, a.Results)
		if err != nil {
			logger.Warn("Insights unavailable:", err)
		} else if err := a.SetInsight(text); err != nil {
			logger.Warn("Failed to read insight sections:", err)
			a.Insight = text
		}
	}

	if req.Export != "" {
		if _, err := report.ExportSQLite(ctx, req.Export, a); err != nil {
			return createErrorResponse(CodeExportFailed, err, req.RequestID)
		}
	}

	top := p.top
	if req.Top > 0 {
		top = req.Top
	}
	if top > 0 {
		a.Results = stats.Top(a.Results, top)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, a); err != nil {
		return createErrorResponse(CodeInternal, err, req.RequestID)
	}
	return buf.Bytes(), nil
}

var errNoSource = errors.New("source or csv is required")

func (p *Processor) load(ctx context.Context, req Request) (string, *match.Result, error) {
	var (
		source string
		res    *match.Result
		err    error
	)
	switch {
	case req.CSV != "":
		source = "inline"
		res, err = match.ParseDetailed(req.CSV, p.parse)
	case req.Source != "":
		var doc *loader.Document
		doc, res, err = p.loader.LoadRecords(ctx, req.Source, p.parse)
		source = req.Source
		if doc != nil {
			source = doc.Name
		}
	default:
		return "", nil, errNoSource
	}
	if err != nil {
		return source, nil, err
	}
	return source, res, res.RequireRecords()
}
