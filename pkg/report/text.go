package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/richard-senior/htft/pkg/stats"
)

// WriteText prints aligned plain-text tables
func WriteText(w io.Writer, a *Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Source:\t%s\n", a.Source)
	fmt.Fprintf(tw, "Matches:\t%d\n", a.Summary.TotalMatches)
	fmt.Fprintf(tw, "Leagues:\t%d\n", len(a.Summary.Leagues))
	if len(a.Skipped) > 0 {
		fmt.Fprintf(tw, "Skipped rows:\t%d\n", len(a.Skipped))
	}
	if a.Summary.Best != nil {
		fmt.Fprintf(tw, "Best strategy:\t%s (%.2f%%)\n", a.Summary.Best.Name, a.Summary.Best.SuccessRate)
	}
	if len(a.Summary.Weakest) > 0 {
		fmt.Fprintf(tw, "Weakest:\t%s\n", rateList(a.Summary.Weakest))
	}
	fmt.Fprintf(tw, "Above 50%%:\t%d of %d\n\n", a.Summary.AboveHalf, a.Summary.Strategies)

	fmt.Fprintln(tw, "#\tSTRATEGY\tOCCURRENCES\tSUCCESSES\tRATE\tBREAK-EVEN\tRATING")
	for i, s := range a.Results {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.2f%%\t%s\t%s\n",
			i+1, s.Name, s.Occurrences, s.Successes, s.SuccessRate, s.BreakEvenOdd, stats.RateOf(s.SuccessRate))
	}

	for _, d := range a.Details {
		fmt.Fprintf(tw, "\n%s\n", d.Stats.Name)
		fmt.Fprintf(tw, "%s\n", d.Stats.Description)
		fmt.Fprintln(tw, "LEAGUE\tOCCURRENCES\tSUCCESSES\tRATE\tBREAK-EVEN")
		for _, l := range d.Leagues {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f%%\t%s\n", l.League, l.Occurrences, l.Successes, l.SuccessRate, l.BreakEvenOdd)
		}
	}

	for _, r := range a.Reverses {
		fmt.Fprintf(tw, "\n%s\t%d/%d\t%.2f%%\t%s\n", r.Name, r.Stats.Successes, r.Stats.Occurrences, r.Stats.SuccessRate, r.BreakEvenOdd)
	}

	if a.Insight != "" {
		fmt.Fprintf(tw, "\n%s\n", a.Insight)
	}
	return tw.Flush()
}

func rateList(list []stats.Stats) string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = fmt.Sprintf("%s (%.2f%%)", s.Name, s.SuccessRate)
	}
	return strings.Join(out, ", ")
}
