package match

import "fmt"

// UnknownLeague is stored when the league column of a row is blank
const UnknownLeague = "N/A"

// Record is one observed match. Goals are stored exactly as read; the parser
// does not require full-time goals to be at least the halftime goals.
type Record struct {
	ID       int    `json:"id"`
	League   string `json:"league"`
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
	HTHome   int    `json:"htHomeGoals"`
	HTAway   int    `json:"htAwayGoals"`
	FTHome   int    `json:"ftHomeGoals"`
	FTAway   int    `json:"ftAwayGoals"`
}

// HTTotal is the number of goals scored in the first half
func (r Record) HTTotal() int {
	return r.HTHome + r.HTAway
}

// FTTotal is the number of goals scored in the whole match
func (r Record) FTTotal() int {
	return r.FTHome + r.FTAway
}

// SecondHalfGoals is the number of goals scored after the break
func (r Record) SecondHalfGoals() int {
	return r.FTTotal() - r.HTTotal()
}

func (r Record) HTScore() string {
	return fmt.Sprintf("%d-%d", r.HTHome, r.HTAway)
}

func (r Record) FTScore() string {
	return fmt.Sprintf("%d-%d", r.FTHome, r.FTAway)
}

// Consistent reports whether the goal counts are non-negative and full-time
// goals are never below the halftime goals for either side
func (r Record) Consistent() bool {
	if r.HTHome < 0 || r.HTAway < 0 || r.FTHome < 0 || r.FTAway < 0 {
		return false
	}
	return r.FTHome >= r.HTHome && r.FTAway >= r.HTAway
}

func (r Record) String() string {
	return fmt.Sprintf("#%d %s: %s %s %s (HT %s)", r.ID, r.League, r.HomeTeam, r.FTScore(), r.AwayTeam, r.HTScore())
}
