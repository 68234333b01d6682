package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richard-senior/htft/pkg/stats"
)

// ErrUnavailable is returned for every insight failure: missing credentials,
// network errors, refused requests and empty replies alike
var ErrUnavailable = errors.New("strategy insights are unavailable")

// Formatter turns ranked strategy statistics into narrative markdown
type Formatter interface {
	Generate(ctx context.Context, results []stats.Stats) (string, error)
}

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderNone   = "none"
)

// Config selects and tunes the text generation provider
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	Language    string
}

// New returns the Formatter for cfg.Provider
func New(ctx context.Context, cfg Config) (Formatter, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiFormatter(ctx, cfg)
	case ProviderClaude:
		return NewClaudeFormatter(cfg)
	case "", ProviderNone:
		return Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown insight provider %q", cfg.Provider)
}

// Disabled is the Formatter used when no provider is configured
type Disabled struct{}

func (Disabled) Generate(context.Context, []stats.Stats) (string, error) {
	return "", fmt.Errorf("%w: no provider configured", ErrUnavailable)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
