package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/stats"
)

const (
	DefaultClaudeModel     = "claude-sonnet-4-5"
	defaultClaudeMaxTokens = 4096
)

// ClaudeFormatter asks an Anthropic model for the strategy narrative
type ClaudeFormatter struct {
	client anthropic.Client
	cfg    Config
}

// NewClaudeFormatter returns ErrUnavailable when no API key is configured.
// The client never retries: a failed request is reported straight away.
func NewClaudeFormatter(cfg Config) (*ClaudeFormatter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is not set", ErrUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultClaudeModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultClaudeMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ClaudeFormatter{client: anthropic.NewClient(opts...), cfg: cfg}, nil
}

func (c *ClaudeFormatter) Generate(ctx context.Context, results []stats.Stats) (string, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(results, c.cfg.Language))),
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.cfg.Temperature))
	}

	logger.Debug("Requesting Claude insights", c.cfg.Model, len(results))
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Claude request failed", err)
		return "", unavailable(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", unavailable(errors.New("Claude returned no text"))
	}
	return text.String(), nil
}
