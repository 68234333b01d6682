package transport

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/richard-senior/htft/internal/logger"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "htft/1.0 (+https://github.com/richard-senior/htft)"
	maxRedirects     = 10
)

// ClientOptions configure the HTTP client used for remote match files
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// CABundle is an optional PEM file appended to the system roots,
	// for networks that intercept TLS
	CABundle string
}

// Response is a fully read and decoded HTTP response body
type Response struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher downloads documents over HTTP, decoding compressed bodies
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher builds a Fetcher. A CA bundle that cannot be read is logged and ignored.
func NewFetcher(opts ClientOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client:    newHTTPClient(opts),
		userAgent: opts.UserAgent,
	}
}

func newHTTPClient(opts ClientOptions) *http.Client {
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}

	if opts.CABundle != "" {
		pem, err := os.ReadFile(opts.CABundle)
		if err != nil {
			logger.Warn("Proceeding without CA bundle", err)
		} else if !rootCAs.AppendCertsFromPEM(pem) {
			logger.Warn("No certificates found in CA bundle", opts.CABundle)
		} else {
			logger.Info("Added CA bundle to root CAs", opts.CABundle)
		}
	}

	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: rootCAs},
			Proxy:           http.ProxyFromEnvironment,
		},
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// Fetch GETs url and returns the decoded body. Any status other than 200 is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv,text/plain,text/html;q=0.9,*/*;q=0.8")
	// setting Accept-Encoding ourselves turns off net/http's transparent gzip
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	logger.Info("Fetching", url)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned error status %d", url, resp.StatusCode)
	}

	reader, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return &Response{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// decodeBody wraps body in the reader matching the Content-Encoding header
func decodeBody(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "":
		return io.NopCloser(body), nil
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		r, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create deflate reader: %w", err)
		}
		return r, nil
	case "br":
		logger.Debug("Handling brotli compressed content")
		return io.NopCloser(brotli.NewReader(body)), nil
	default:
		logger.Warn("Unknown content encoding:", encoding)
		return io.NopCloser(body), nil
	}
}
