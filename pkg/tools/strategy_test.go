package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/protocol"
	"github.com/richard-senior/htft/pkg/stats"
)

const matchesCSV = "LIGA,EQUIPA CASA,EQUIPA VISITANTE,RESULTADO HT CASA,RESULTADO HT FORA,RESULTADO FT CASA,RESULTADO FT FORA\n" +
	"X,A,B,1,0,2,1\n" +
	"Y,C,D,0,0,0,0\n" +
	"X,E,F,x,0,1,1\n"

type fakeFormatter struct {
	got []stats.Stats
	err error
}

func (f *fakeFormatter) Generate(_ context.Context, results []stats.Stats) (string, error) {
	f.got = results
	if f.err != nil {
		return "", f.err
	}
	return "### Resumo\n- ok\n", nil
}

func call(t *testing.T, tb *Toolbox, name string, args any) (*protocol.ToolResult, error) {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	for _, tool := range tb.Tools() {
		if tool.Definition.Name == name {
			return tool.Handle(context.Background(), raw)
		}
	}
	t.Fatalf("no tool named %s", name)
	return nil, nil
}

func load(t *testing.T, tb *Toolbox) string {
	t.Helper()
	res, err := call(t, tb, "load_matches", map[string]string{"csv": matchesCSV})
	require.NoError(t, err)

	var out struct {
		Session string   `json:"session"`
		Matches int      `json:"matches"`
		Skipped []int    `json:"skippedRows"`
		Leagues []string `json:"leagues"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &out))
	assert.Equal(t, 2, out.Matches)
	assert.Equal(t, []int{3}, out.Skipped)
	assert.Equal(t, []string{"X", "Y"}, out.Leagues)
	require.NotEmpty(t, out.Session)
	return out.Session
}

func TestToolsAdvertised(t *testing.T) {
	var names []string
	for _, tool := range NewToolbox(Options{}).Tools() {
		names = append(names, tool.Definition.Name)
		assert.NotNil(t, tool.Handle)
	}
	assert.Equal(t, []string{
		"load_matches", "analyze_strategies", "strategy_detail", "reverse_strategy",
		"list_strategies", "strategy_insights", "render_report",
	}, names)
}

func TestLoadMatchesInline(t *testing.T) {
	tb := NewToolbox(Options{})
	id := load(t, tb)

	ds, ok := tb.sessions.Get(id)
	require.True(t, ok)
	assert.Equal(t, "inline", ds.Source)
	assert.Equal(t, "primary", ds.Dialect)
}

func TestLoadMatchesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, os.WriteFile(path, []byte(matchesCSV), 0644))

	res, err := call(t, NewToolbox(Options{}), "load_matches", map[string]string{"source": path})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"matches": 2`)
}

func TestLoadMatchesArguments(t *testing.T) {
	tb := NewToolbox(Options{})
	_, err := call(t, tb, "load_matches", map[string]string{})
	assert.ErrorContains(t, err, "source or csv is required")

	_, err = call(t, tb, "load_matches", map[string]string{"csv": "a", "source": "b"})
	assert.Error(t, err)

	_, err = call(t, tb, "load_matches", map[string]string{"csv": ""})
	assert.Error(t, err)

	_, err = call(t, tb, "load_matches", map[string]string{"csv": "LIGA\nX"})
	assert.ErrorIs(t, err, match.ErrMissingColumns)
}

func TestLoadMatchesRejectsFileWithoutValidRows(t *testing.T) {
	tb := NewToolbox(Options{})
	csv := "LIGA,EQUIPA CASA,EQUIPA VISITANTE,RESULTADO HT CASA,RESULTADO HT FORA,RESULTADO FT CASA,RESULTADO FT FORA\n" +
		"PremierLeague,A,B,x,0,2,1\n"

	_, err := call(t, tb, "load_matches", map[string]string{"csv": csv})
	require.ErrorIs(t, err, match.ErrNoValidRows)
	assert.ErrorContains(t, err, "1 rows skipped")
	assert.Equal(t, 0, tb.sessions.Len())
}

func TestAnalyzeStrategies(t *testing.T) {
	tb := NewToolbox(Options{})
	id := load(t, tb)

	res, err := call(t, tb, "analyze_strategies", map[string]any{"session": id, "top": 3})
	require.NoError(t, err)

	var out struct {
		Summary stats.Summary `json:"summary"`
		Results []stats.Stats `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &out))
	assert.Len(t, out.Results, 3)
	assert.Equal(t, 2, out.Summary.TotalMatches)
	assert.Equal(t, 23, out.Summary.Strategies)
	assert.GreaterOrEqual(t, out.Results[0].SuccessRate, out.Results[1].SuccessRate)
}

func TestUnknownSession(t *testing.T) {
	tb := NewToolbox(Options{})
	_, err := call(t, tb, "analyze_strategies", map[string]string{"session": "nope"})
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = call(t, tb, "analyze_strategies", map[string]string{})
	assert.ErrorContains(t, err, "session is required")
}

func TestStrategyDetailAndReverse(t *testing.T) {
	tb := NewToolbox(Options{})
	id := load(t, tb)

	res, err := call(t, tb, "strategy_detail", map[string]string{"session": id, "strategy": "Back Home (FT)"})
	require.NoError(t, err)
	var d stats.Details
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &d))
	assert.Equal(t, 2, d.Stats.Occurrences)
	assert.Equal(t, 1, d.Stats.Successes)
	assert.Len(t, d.Instances, 2)

	res, err = call(t, tb, "reverse_strategy", map[string]string{"session": id, "strategy": "Back Home (FT)"})
	require.NoError(t, err)
	var r stats.Reverse
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &r))
	assert.Equal(t, "Inverse of: Back Home (FT)", r.Name)
	assert.Equal(t, 1, r.Stats.Successes)

	for _, name := range []string{"strategy_detail", "reverse_strategy"} {
		_, err = call(t, tb, name, map[string]string{"session": id, "strategy": "Nope"})
		assert.ErrorIs(t, err, ErrUnknownStrategy, name)
	}
}

func TestListStrategies(t *testing.T) {
	res, err := call(t, NewToolbox(Options{}), "list_strategies", nil)
	require.NoError(t, err)

	var entries []CatalogueEntry
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &entries))
	require.Len(t, entries, 23)
	assert.Equal(t, "Back Home (FT)", entries[0].Name)
	assert.Equal(t, "ft-result", entries[0].Category)
}

func TestStrategyInsights(t *testing.T) {
	f := &fakeFormatter{}
	tb := NewToolbox(Options{Formatter: f})
	id := load(t, tb)

	res, err := call(t, tb, "strategy_insights", map[string]string{"session": id})
	require.NoError(t, err)
	assert.Equal(t, "### Resumo\n- ok\n", res.Content[0].Text)
	assert.Len(t, f.got, 23)

	require.Len(t, res.Content, 2)
	assert.Equal(t, "application/json", res.Content[1].MimeType)
	var structured struct {
		Sections []insight.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[1].Text), &structured))
	require.Len(t, structured.Sections, 1)
	assert.Equal(t, "Resumo", structured.Sections[0].Heading)
	assert.Equal(t, []string{"ok"}, structured.Sections[0].Items)

	f.err = fmt.Errorf("%w: boom", insight.ErrUnavailable)
	_, err = call(t, tb, "strategy_insights", map[string]string{"session": id})
	assert.ErrorIs(t, err, insight.ErrUnavailable)
}

func TestStrategyInsightsDisabled(t *testing.T) {
	tb := NewToolbox(Options{})
	id := load(t, tb)
	_, err := call(t, tb, "strategy_insights", map[string]string{"session": id})
	assert.ErrorIs(t, err, insight.ErrUnavailable)
}

func TestRenderReport(t *testing.T) {
	tb := NewToolbox(Options{})
	id := load(t, tb)

	res, err := call(t, tb, "render_report", map[string]string{"session": id, "format": "text", "strategy": "Back Home (FT)"})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "Inverse of: Back Home (FT)")
	assert.Contains(t, res.Content[0].Text, "Skipped rows:")

	_, err = call(t, tb, "render_report", map[string]string{"session": id, "format": "pdf"})
	assert.Error(t, err)

	_, err = call(t, tb, "render_report", map[string]string{"session": id, "strategy": "Nope"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSessionsEvictOldest(t *testing.T) {
	s := NewSessions(2)
	res := &match.Result{}
	first := s.Put("a", res)
	second := s.Put("b", res)
	third := s.Put("c", res)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(first.ID)
	assert.False(t, ok)
	_, ok = s.Get(second.ID)
	assert.True(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)
	assert.NotEqual(t, second.ID, third.ID)
}
