package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/stats"
)

var funcs = template.FuncMap{
	"rating": func(rate float64) string { return string(stats.RateOf(rate)) },
	"pct":    func(rate float64) string { return fmt.Sprintf("%.2f%%", rate) },
	"inc":    func(i int) int { return i + 1 },
}

var page = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>HT/FT strategy report</title>
<style>
.strong { color: #16a34a; } .moderate { color: #ca8a04; } .weak { color: #dc2626; }
table { border-collapse: collapse; } td, th { padding: 2px 8px; text-align: left; }
</style>
</head>
<body>
<h1>HT/FT strategy report</h1>
<p>Source: {{.Source}}</p>
<ul>
<li>Matches: {{.Summary.TotalMatches}}</li>
<li>Leagues: {{len .Summary.Leagues}}</li>
{{- with .Summary.Best}}
<li>Best strategy: {{.Name}} ({{pct .SuccessRate}})</li>
{{- end}}
{{- with .Summary.Weakest}}
<li>Weakest:{{range $i, $s := .}}{{if $i}},{{end}} {{$s.Name}} ({{pct $s.SuccessRate}}){{end}}</li>
{{- end}}
<li>Strategies above 50%: {{.Summary.AboveHalf}} of {{.Summary.Strategies}}</li>
</ul>
<h2>Strategies</h2>
<table>
<thead><tr><th>#</th><th>Strategy</th><th>Occurrences</th><th>Successes</th><th>Rate</th><th>Break-even</th></tr></thead>
<tbody>
{{- range $i, $s := .Results}}
<tr class="{{rating $s.SuccessRate}}"><td>{{inc $i}}</td><td>{{$s.Name}}</td><td>{{$s.Occurrences}}</td><td>{{$s.Successes}}</td><td>{{pct $s.SuccessRate}}</td><td>{{$s.BreakEvenOdd}}</td></tr>
{{- end}}
</tbody>
</table>
{{- range .Details}}
<h2>{{.Stats.Name}}</h2>
<p>{{.Stats.Description}}</p>
<table>
<thead><tr><th>League</th><th>Occurrences</th><th>Successes</th><th>Rate</th><th>Break-even</th></tr></thead>
<tbody>
{{- range .Leagues}}
<tr class="{{rating .SuccessRate}}"><td>{{.League}}</td><td>{{.Occurrences}}</td><td>{{.Successes}}</td><td>{{pct .SuccessRate}}</td><td>{{.BreakEvenOdd}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- range .Reverses}}
<h2>{{.Name}}</h2>
<p>{{.Description}}</p>
<p>{{.Stats.Successes}} of {{.Stats.Occurrences}}: {{pct .Stats.SuccessRate}}, break-even {{.BreakEvenOdd}}</p>
{{- end}}
{{- with .Insight}}
<h2>Insights</h2>
{{.}}
{{- end}}
</body>
</html>
`))

type htmlView struct {
	*Analysis
	Insight template.HTML
}

// WriteHTML renders a standalone HTML page. The insight markdown is
// converted to HTML; everything else is escaped.
func WriteHTML(w io.Writer, a *Analysis) error {
	view := htmlView{Analysis: a}
	if a.Insight != "" {
		rendered, err := insight.RenderHTML(a.Insight)
		if err != nil {
			return err
		}
		view.Insight = template.HTML(rendered)
	}
	if err := page.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
