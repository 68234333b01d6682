package insight

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/htft/pkg/stats"
)

func results() []stats.Stats {
	return []stats.Stats{
		{Name: "Over 1.5 FT", Occurrences: 10, Successes: 8, SuccessRate: 80},
		{Name: "Back Home (FT)", Occurrences: 10, Successes: 5, SuccessRate: 50},
		{Name: "Back Draw (FT)", Occurrences: 3, Successes: 0, SuccessRate: 0, BreakEvenOdd: stats.BreakEven(0)},
	}
}

const reply = "### Resumo dos Resultados\n- Over 1.5 FT lidera\n- Back Draw (FT) é o pior\n\n### Insights e Recomendações\nTexto livre.\n\n- Focar em jogos abertos\n"

func TestBuildPromptPortuguese(t *testing.T) {
	p := BuildPrompt(results(), LanguagePortuguese)
	assert.Contains(t, p, `- Estratégia: "Over 1.5 FT", Taxa de Sucesso: 80%, Ocorrências: 10`)
	assert.Contains(t, p, `- Estratégia: "Back Draw (FT)", Taxa de Sucesso: 0%, Ocorrências: 3`)
	assert.Contains(t, p, "### Resumo dos Resultados")
	assert.Contains(t, p, "português do Brasil")

	assert.Equal(t, p, BuildPrompt(results(), "klingon"))
}

func TestBuildPromptEnglish(t *testing.T) {
	p := BuildPrompt([]stats.Stats{{Name: "X", SuccessRate: 66.67, Occurrences: 3}}, LanguageEnglish)
	assert.Contains(t, p, `- Strategy: "X", Success rate: 66.67%, Occurrences: 3`)
	assert.Contains(t, p, "### Insights and Recommendations")
}

func TestNewProviders(t *testing.T) {
	f, err := New(context.Background(), Config{Provider: "none"})
	require.NoError(t, err)
	_, err = f.Generate(context.Background(), results())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = New(context.Background(), Config{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = New(context.Background(), Config{Provider: "claude"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = New(context.Background(), Config{Provider: "oracle"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestGeminiFormatter(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		body, _ := io.ReadAll(r.Body)
		prompt = string(body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": reply}},
				}},
			},
		})
	}))
	defer srv.Close()

	f, err := NewGeminiFormatter(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, Temperature: 0.2})
	require.NoError(t, err)

	out, err := f.Generate(context.Background(), results())
	require.NoError(t, err)
	assert.Equal(t, reply, out)
	assert.Contains(t, prompt, "Over 1.5 FT")
}

func TestGeminiFormatterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"code":401,"message":"bad key","status":"UNAUTHENTICATED"}}`)
	}))
	defer srv.Close()

	f, err := NewGeminiFormatter(context.Background(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := f.Generate(context.Background(), results())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, out)
}

func TestClaudeFormatter(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       DefaultClaudeModel,
			"content":     []any{map[string]any{"type": "text", "text": reply}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	f, err := NewClaudeFormatter(Config{APIKey: "k", BaseURL: srv.URL, Language: LanguageEnglish})
	require.NoError(t, err)

	out, err := f.Generate(context.Background(), results())
	require.NoError(t, err)
	assert.Equal(t, reply, out)
	assert.Equal(t, DefaultClaudeModel, got["model"])
	assert.EqualValues(t, defaultClaudeMaxTokens, got["max_tokens"])
}

func TestClaudeFormatterFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	f, err := NewClaudeFormatter(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), results())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(reply)
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>Resumo dos Resultados</h3>")
	assert.Contains(t, html, "<li>Over 1.5 FT lidera</li>")
}

func TestSections(t *testing.T) {
	secs, err := Sections("Intro line\n\n" + reply)
	require.NoError(t, err)
	require.Len(t, secs, 3)

	assert.Equal(t, "", secs[0].Heading)
	assert.Equal(t, []string{"Intro line"}, secs[0].Text)

	assert.Equal(t, "Resumo dos Resultados", secs[1].Heading)
	assert.Equal(t, []string{"Over 1.5 FT lidera", "Back Draw (FT) é o pior"}, secs[1].Items)

	assert.Equal(t, "Insights e Recomendações", secs[2].Heading)
	assert.Equal(t, []string{"Texto livre."}, secs[2].Text)
	assert.Equal(t, []string{"Focar em jogos abertos"}, secs[2].Items)
}
