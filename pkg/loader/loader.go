package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/transport"
)

var ErrUnsupportedSource = errors.New("unsupported match file source")

// Document is the raw CSV text of a match file and where it came from
type Document struct {
	Name string
	Text string
}

// Loader reads match files from disk, stdin or http(s)
type Loader struct {
	fetcher *transport.Fetcher
	stdin   io.Reader
}

func New(opts transport.ClientOptions) *Loader {
	return &Loader{fetcher: transport.NewFetcher(opts), stdin: os.Stdin}
}

// Load returns the CSV text behind source. Source is "-" for stdin, an
// http(s) URL or a file path. A URL that serves an HTML page is followed to
// the first CSV link on it.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	case source == "-":
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return &Document{Name: "stdin", Text: string(data)}, nil
	}

	u, err := url.Parse(source)
	if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l.loadURL(ctx, u)
		case "file":
			return loadFile(u.Path)
		default:
			return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
		}
	}
	return loadFile(source)
}

// LoadRecords loads source and parses it
func (l *Loader) LoadRecords(ctx context.Context, source string, opts match.Options) (*Document, *match.Result, error) {
	doc, err := l.Load(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	res, err := match.ParseDetailed(doc.Text, opts)
	if err != nil {
		return doc, nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	logger.Info("Loaded matches", doc.Name, len(res.Records), "skipped", len(res.Skipped))
	return doc, res, nil
}

func loadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}
	return &Document{Name: filepath.Base(path), Text: string(data)}, nil
}

func (l *Loader) loadURL(ctx context.Context, u *url.URL) (*Document, error) {
	resp, err := l.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if !isHTML(resp) {
		return &Document{Name: resp.URL, Text: string(resp.Body)}, nil
	}

	link, err := findCSVLink(resp)
	if err != nil {
		return nil, err
	}
	logger.Info("Following CSV link", link)

	csv, err := l.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	if isHTML(csv) {
		return nil, fmt.Errorf("%w: %s is an HTML page, not a CSV file", ErrUnsupportedSource, link)
	}
	return &Document{Name: csv.URL, Text: string(csv.Body)}, nil
}

func isHTML(resp *transport.Response) bool {
	if strings.Contains(strings.ToLower(resp.ContentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(resp.Body))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// findCSVLink returns the absolute URL of the first anchor pointing at a .csv file
func findCSVLink(resp *transport.Response) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML index: %w", err)
	}
	base, err := url.Parse(resp.URL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %s: %w", resp.URL, err)
	}

	var link string
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || !strings.HasSuffix(strings.ToLower(ref.Path), ".csv") {
			return true
		}
		link = base.ResolveReference(ref).String()
		return false
	})
	if link == "" {
		return "", fmt.Errorf("%w: no CSV link found on %s", ErrUnsupportedSource, resp.URL)
	}
	return link, nil
}
