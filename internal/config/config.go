package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/transport"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Parser  ParserConfig  `yaml:"parser"`
	Insight InsightConfig `yaml:"insight"`
	Loader  LoaderConfig  `yaml:"loader"`
	Report  ReportConfig  `yaml:"report"`
	Server  ServerConfig  `yaml:"server"`
}

type LogConfig struct {
	Level        string `yaml:"level" validate:"oneof=debug info inform highlight warn warning error fatal"`
	Output       string `yaml:"output" validate:"oneof=console file both"`
	File         string `yaml:"file"`
	ShowDateTime bool   `yaml:"show_date_time"`
}

type ParserConfig struct {
	// StrictGoals skips rows with negative goals or fewer FT goals than HT
	StrictGoals bool `yaml:"strict_goals"`
}

type InsightConfig struct {
	Provider    string        `yaml:"provider" validate:"oneof=gemini claude none"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Language    string        `yaml:"language" validate:"oneof=pt-BR en"`
}

type LoaderConfig struct {
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent"`
	CABundle  string        `yaml:"ca_bundle"`
}

type ReportConfig struct {
	Format string `yaml:"format" validate:"oneof=text txt json html markdown md"`
	// Top limits the ranked table; 0 shows every strategy
	Top int `yaml:"top" validate:"gte=0"`
}

type ServerConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version" validate:"required"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Output: "console",
			File:   logger.DefaultLogFile,
		},
		Insight: InsightConfig{
			Provider:    insight.ProviderNone,
			Timeout:     60 * time.Second,
			Temperature: 0.7,
			MaxTokens:   4096,
			Language:    insight.LanguagePortuguese,
		},
		Loader: LoaderConfig{
			Timeout:   transport.DefaultTimeout,
			UserAgent: transport.DefaultUserAgent,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Name:    "htft",
			Version: "1.0.0",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("HTFT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("HTFT_INSIGHT_PROVIDER"); v != "" {
		c.Insight.Provider = strings.ToLower(v)
	}
	if c.Insight.APIKey != "" {
		return
	}
	switch c.Insight.Provider {
	case insight.ProviderGemini:
		c.Insight.APIKey = getenv("GEMINI_API_KEY")
		if c.Insight.APIKey == "" {
			c.Insight.APIKey = getenv("GOOGLE_API_KEY")
		}
	case insight.ProviderClaude:
		c.Insight.APIKey = getenv("ANTHROPIC_API_KEY")
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section against its constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// ApplyLogging configures the package logger from the log section
func (c *Config) ApplyLogging() error {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetShowDateTime(c.Log.ShowDateTime)
	return logger.SetLogOutput(logger.OutputRune(c.Log.Output), c.Log.File)
}

func (c *Config) InsightOptions() insight.Config {
	return insight.Config{
		Provider:    c.Insight.Provider,
		Model:       c.Insight.Model,
		APIKey:      c.Insight.APIKey,
		BaseURL:     c.Insight.BaseURL,
		Timeout:     c.Insight.Timeout,
		Temperature: c.Insight.Temperature,
		MaxTokens:   c.Insight.MaxTokens,
		Language:    c.Insight.Language,
	}
}

func (c *Config) ClientOptions() transport.ClientOptions {
	return transport.ClientOptions{
		Timeout:   c.Loader.Timeout,
		UserAgent: c.Loader.UserAgent,
		CABundle:  c.Loader.CABundle,
	}
}

func (c *Config) ParseOptions() match.Options {
	return match.Options{StrictGoals: c.Parser.StrictGoals}
}

// Formatter builds the configured insight formatter. A provider that cannot
// be set up, usually for lack of an API key, yields insight.Disabled.
func (c *Config) Formatter(ctx context.Context) insight.Formatter {
	f, err := insight.New(ctx, c.InsightOptions())
	if err != nil {
		logger.Warn("Insights disabled:", err)
		return insight.Disabled{}
	}
	return f
}
