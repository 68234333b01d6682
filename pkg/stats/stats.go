package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/richard-senior/htft/pkg/match"
)

// Odd is a decimal betting odd. +Inf means no finite odd breaks even and is
// encoded as JSON null.
type Odd float64

func (o Odd) IsInf() bool {
	return math.IsInf(float64(o), 1)
}

func (o Odd) Float64() float64 {
	return float64(o)
}

func (o Odd) String() string {
	if o.IsInf() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(o))
}

func (o Odd) MarshalJSON() ([]byte, error) {
	if o.IsInf() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(o))
}

func (o *Odd) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Odd(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid odd %s: %w", data, err)
	}
	*o = Odd(f)
	return nil
}

// Stats is the aggregate outcome of one strategy over a record set
type Stats struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Occurrences  int     `json:"occurrences"`
	Successes    int     `json:"successes"`
	SuccessRate  float64 `json:"successRate"`
	BreakEvenOdd Odd     `json:"breakEvenOdd"`
}

// LeaguePerformance is Stats restricted to the applicable matches of one league
type LeaguePerformance struct {
	League       string  `json:"league"`
	Occurrences  int     `json:"occurrences"`
	Successes    int     `json:"successes"`
	SuccessRate  float64 `json:"successRate"`
	BreakEvenOdd Odd     `json:"breakEvenOdd"`
}

// MatchInstance pairs an applicable match with the strategy outcome on it
type MatchInstance struct {
	Match   match.Record `json:"match"`
	Success bool         `json:"isSuccess"`
}

// Details is the drill-down view of a single strategy
type Details struct {
	Stats        Stats               `json:"stats"`
	BreakEvenOdd Odd                 `json:"breakEvenOdd"`
	Leagues      []LeaguePerformance `json:"leaguePerformances"`
	Instances    []MatchInstance     `json:"matchInstances"`
}

// Reverse is a strategy evaluated with its success condition negated
type Reverse struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Stats        Stats  `json:"stats"`
	BreakEvenOdd Odd    `json:"breakEvenOdd"`
}

// Round2 rounds half away from zero to two decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Rate is the success percentage, 0 when there were no occurrences
func Rate(successes, occurrences int) float64 {
	if occurrences <= 0 {
		return 0
	}
	return Round2(100 * float64(successes) / float64(occurrences))
}

// BreakEven is the minimum decimal odd at which a unit stake on a strategy
// with the given success rate returns zero profit
func BreakEven(rate float64) Odd {
	if rate <= 0 {
		return Odd(math.Inf(1))
	}
	return Odd(100 / rate)
}
