package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/stats"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiFormatter asks a Gemini model for the strategy narrative
type GeminiFormatter struct {
	client *genai.Client
	cfg    Config
}

// NewGeminiFormatter creates the client eagerly so a bad key or base URL is
// reported at startup. A missing key yields ErrUnavailable.
func NewGeminiFormatter(ctx context.Context, cfg Config) (*GeminiFormatter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is not set", ErrUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, unavailable(fmt.Errorf("failed to create Gemini client: %w", err))
	}
	return &GeminiFormatter{client: client, cfg: cfg}, nil
}

func (g *GeminiFormatter) Generate(ctx context.Context, results []stats.Stats) (string, error) {
	ctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if g.cfg.Temperature > 0 {
		config.Temperature = genai.Ptr(g.cfg.Temperature)
	}
	if g.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}

	prompt := BuildPrompt(results, g.cfg.Language)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	logger.Debug("Requesting Gemini insights", g.cfg.Model, len(results))
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		logger.Error("Gemini request failed", err)
		return "", unavailable(err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
		}
	}
	if text.Len() == 0 {
		return "", unavailable(errors.New("Gemini returned no text"))
	}
	return text.String(), nil
}
