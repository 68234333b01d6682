package insight

import (
	"fmt"
	"strings"

	"github.com/richard-senior/htft/pkg/stats"
)

const (
	LanguagePortuguese = "pt-BR"
	LanguageEnglish    = "en"
)

type promptText struct {
	title, intro, goal, dataHeading string
	line                            string
	answer                          string
	summaryHeading, summaryBody     string
	insightHeading                  string
	insightBullets                  []string
	closing                         string
}

var prompts = map[string]promptText{
	LanguagePortuguese: {
		title:       "Análise de Estratégias de Apostas Esportivas",
		intro:       "Com base nos seguintes dados de sucesso de várias estratégias de apostas, atue como um especialista em análise de dados esportivos. Forneça insights acionáveis para um usuário que deseja criar bots de apostas.",
		goal:        "O objetivo é encontrar os melhores \"ranges\" e condições para apostar.",
		dataHeading: "Dados Analisados:",
		line:        "- Estratégia: \"%s\", Taxa de Sucesso: %s%%, Ocorrências: %d",
		answer:      "Por favor, responda em português do Brasil com a seguinte estrutura em Markdown:",

		summaryHeading: "### Resumo dos Resultados",
		summaryBody:    "- Destaque as 3 estratégias mais bem-sucedidas e as 3 menos bem-sucedidas da lista.",
		insightHeading: "### Insights e Recomendações",
		insightBullets: []string{
			"- Interprete por que as estratégias de topo podem estar funcionando bem.",
			"- Analise as estratégias com baixo desempenho e sugira possíveis motivos.",
			"- Sugira combinações de estratégias ou \"ranges\" que podem ser promissores.",
			"- Proponha uma ou duas novas estratégias ou condições a serem testadas com base nos dados fornecidos.",
		},
		closing: "Seja claro, conciso e focado em fornecer valor prático para a criação de bots.",
	},
	LanguageEnglish: {
		title:       "Sports Betting Strategy Analysis",
		intro:       "Using the following success data for several betting strategies, act as a sports data analyst. Give actionable insights to someone who wants to build betting bots.",
		goal:        "The aim is to find the best ranges and conditions to bet on.",
		dataHeading: "Analysed data:",
		line:        "- Strategy: \"%s\", Success rate: %s%%, Occurrences: %d",
		answer:      "Please answer in English using the following Markdown structure:",

		summaryHeading: "### Results Summary",
		summaryBody:    "- Highlight the 3 most successful and the 3 least successful strategies in the list.",
		insightHeading: "### Insights and Recommendations",
		insightBullets: []string{
			"- Explain why the top strategies may be working well.",
			"- Analyse the weak strategies and suggest likely reasons.",
			"- Suggest combinations of strategies or ranges that look promising.",
			"- Propose one or two new strategies or conditions to test based on the data.",
		},
		closing: "Be clear, concise and focused on practical value for bot building.",
	},
}

// BuildPrompt renders the analysis request sent to the text generation
// service. Unknown languages fall back to pt-BR.
func BuildPrompt(results []stats.Stats, language string) string {
	p, ok := prompts[language]
	if !ok {
		p = prompts[LanguagePortuguese]
	}

	var b strings.Builder
	b.WriteString(p.title + "\n\n")
	b.WriteString(p.intro + "\n\n")
	b.WriteString(p.goal + "\n\n")
	b.WriteString(p.dataHeading + "\n")
	for _, r := range results {
		fmt.Fprintf(&b, p.line+"\n", r.Name, formatRate(r.SuccessRate), r.Occurrences)
	}
	b.WriteString("\n" + p.answer + "\n\n")
	b.WriteString(p.summaryHeading + "\n" + p.summaryBody + "\n\n")
	b.WriteString(p.insightHeading + "\n")
	for _, bullet := range p.insightBullets {
		b.WriteString(bullet + "\n")
	}
	b.WriteString("\n" + p.closing + "\n")
	return b.String()
}

// formatRate prints a rate the way a JSON number would, so 50 stays "50" and 66.67 stays "66.67"
func formatRate(rate float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", rate), "0"), ".")
}
