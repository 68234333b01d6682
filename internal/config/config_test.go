package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/htft/pkg/insight"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "htft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "none", cfg.Insight.Provider)
	assert.Equal(t, "pt-BR", cfg.Insight.Language)
	assert.False(t, cfg.Parser.StrictGoals)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("HTFT_LOG_LEVEL", "")
	t.Setenv("HTFT_INSIGHT_PROVIDER", "")
	path := writeConfig(t, `
log:
  level: debug
parser:
  strict_goals: true
insight:
  provider: claude
  api_key: from-file
  timeout: 15s
  language: en
loader:
  timeout: 5s
report:
  format: markdown
  top: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.ParseOptions().StrictGoals)
	assert.Equal(t, 15*time.Second, cfg.InsightOptions().Timeout)
	assert.Equal(t, "from-file", cfg.InsightOptions().APIKey)
	assert.Equal(t, 5*time.Second, cfg.ClientOptions().Timeout)
	assert.Equal(t, 5, cfg.Report.Top)
	// untouched sections keep their defaults
	assert.Equal(t, "htft", cfg.Server.Name)
	assert.Equal(t, "console", cfg.Log.Output)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "log: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("HTFT_INSIGHT_PROVIDER", "")
	_, err := Load(writeConfig(t, "insight:\n  provider: openai\nreport:\n  top: -1\n"))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "Provider")
	assert.Contains(t, err.Error(), "Top")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HTFT_LOG_LEVEL":        "WARN",
		"HTFT_INSIGHT_PROVIDER": "gemini",
		"GOOGLE_API_KEY":        "google-key",
		"ANTHROPIC_API_KEY":     "anthropic-key",
	}
	getenv := func(k string) string { return env[k] }

	cfg := Default()
	cfg.applyEnv(getenv)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "gemini", cfg.Insight.Provider)
	assert.Equal(t, "google-key", cfg.Insight.APIKey)

	env["GEMINI_API_KEY"] = "gemini-key"
	cfg = Default()
	cfg.applyEnv(getenv)
	assert.Equal(t, "gemini-key", cfg.Insight.APIKey)

	env["HTFT_INSIGHT_PROVIDER"] = "claude"
	cfg = Default()
	cfg.applyEnv(getenv)
	assert.Equal(t, "anthropic-key", cfg.Insight.APIKey)

	cfg = Default()
	cfg.Insight.APIKey = "explicit"
	cfg.applyEnv(getenv)
	assert.Equal(t, "explicit", cfg.Insight.APIKey)
}

func TestFormatterFallsBackToDisabled(t *testing.T) {
	cfg := Default()
	cfg.Insight.Provider = "gemini"
	cfg.Insight.APIKey = ""
	_, ok := cfg.Formatter(context.Background()).(insight.Disabled)
	assert.True(t, ok)

	cfg.Insight.Provider = "none"
	_, ok = cfg.Formatter(context.Background()).(insight.Disabled)
	assert.True(t, ok)
}
