package prompts

import (
	"context"

	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/protocol"
	"github.com/richard-senior/htft/pkg/stats"
)

// SessionResults resolves a session id into ranked statistics
type SessionResults func(session string) ([]stats.Stats, error)

// StrategyInsights is the prompt the insight formatters send, offered to
// clients that want to run it through their own model
func StrategyInsights(results SessionResults, defaultLanguage string) (protocol.Prompt, Renderer) {
	p := protocol.Prompt{
		Name:        "strategy-insights",
		Description: "Ask for a summary, recommendations and new strategy ideas from a loaded dataset's ranking",
		Arguments: []protocol.PromptArgument{
			{Name: "session", Description: "Session id returned by load_matches", Required: true},
			{Name: "language", Description: "pt-BR (default) or en"},
		},
	}
	render := func(_ context.Context, args map[string]string) (string, error) {
		ranked, err := results(args["session"])
		if err != nil {
			return "", err
		}
		lang := args["language"]
		if lang == "" {
			lang = defaultLanguage
		}
		return insight.BuildPrompt(ranked, lang), nil
	}
	return p, render
}

// ExplainStrategy is a plain template prompt
func ExplainStrategy() protocol.Prompt {
	return protocol.Prompt{
		Name:        "explain-strategy",
		Description: "Explain how a half-time/full-time strategy works and when it tends to pay",
		Arguments: []protocol.PromptArgument{
			{Name: "strategy", Description: "Strategy name as listed by list_strategies", Required: true},
		},
		Content: "Explain the football betting strategy \"{{strategy}}\". Describe which matches it applies to, " +
			"what counts as a success, the break-even odd needed for it to be profitable, and the kinds of " +
			"leagues or game states where it is likely to work or fail.",
	}
}
