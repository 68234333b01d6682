package stats

import "github.com/richard-senior/htft/pkg/match"

// Rating buckets a success rate for display
type Rating string

const (
	Strong   Rating = "strong"
	Moderate Rating = "moderate"
	Weak     Rating = "weak"
)

// RateOf maps a success percentage onto a Rating: 60 and above is strong,
// 40 and above is moderate
func RateOf(rate float64) Rating {
	switch {
	case rate >= 60:
		return Strong
	case rate >= 40:
		return Moderate
	default:
		return Weak
	}
}

// Summary is the headline view of an analysis
type Summary struct {
	TotalMatches int      `json:"totalMatches"`
	Leagues      []string `json:"leagues"`
	Strategies   int      `json:"strategies"`
	// AboveHalf counts strategies with a success rate over 50%
	AboveHalf int    `json:"aboveHalf"`
	Best      *Stats `json:"best,omitempty"`
	Worst     *Stats `json:"worst,omitempty"`
	// Strongest and Weakest hold the three best and worst strategies,
	// Weakest lowest rate first
	Strongest []Stats `json:"strongest,omitempty"`
	Weakest   []Stats `json:"weakest,omitempty"`
}

// SummaryDepth is the number of strategies kept in Strongest and Weakest
const SummaryDepth = 3

// Summarize builds a Summary from the records and the ranked output of ComputeAll
func Summarize(records []match.Record, ranked []Stats) Summary {
	s := Summary{
		TotalMatches: len(records),
		Leagues:      match.Leagues(records),
		Strategies:   len(ranked),
	}
	for _, st := range ranked {
		if st.SuccessRate > 50 {
			s.AboveHalf++
		}
	}
	if len(ranked) > 0 {
		best, worst := ranked[0], ranked[len(ranked)-1]
		s.Best, s.Worst = &best, &worst
		s.Strongest = append([]Stats(nil), Top(ranked, SummaryDepth)...)
		s.Weakest = Bottom(ranked, SummaryDepth)
	}
	return s
}

// Top returns at most n entries from the head of ranked
func Top(ranked []Stats, n int) []Stats {
	if n < 0 || n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Bottom returns at most n entries from the tail of ranked, lowest rate first
func Bottom(ranked []Stats, n int) []Stats {
	if n < 0 || n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Stats, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		out = append(out, ranked[i])
	}
	return out
}
