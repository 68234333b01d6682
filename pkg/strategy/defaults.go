package strategy

import "github.com/richard-senior/htft/pkg/match"

func always(match.Record) bool { return true }

func homeWinsFT(m match.Record) bool { return m.FTHome > m.FTAway }
func drawFT(m match.Record) bool { return m.FTHome == m.FTAway }
func awayWinsFT(m match.Record) bool { return m.FTHome < m.FTAway }
func homeLeadsHT(m match.Record) bool { return m.HTHome > m.HTAway }
func drawHT(m match.Record) bool { return m.HTHome == m.HTAway }
func awayLeadsHT(m match.Record) bool { return m.HTHome < m.HTAway }

func htScore(home, away int) Predicate {
	return func(m match.Record) bool { return m.HTHome == home && m.HTAway == away }
}

func unconditional(name, desc string, cat Category, ok Predicate) Definition {
	return Definition{Name: name, Description: desc, Category: cat, Applies: always, Succeeds: ok}
}

func conditional(name, desc string, cat Category, applies, ok Predicate) Definition {
	return Definition{Name: name, Description: desc, Category: cat, Applies: applies, Succeeds: ok, Conditional: true}
}

// defaultDefinitions is the fixed rule table. Order matters: it breaks ties when ranking.
var defaultDefinitions = []Definition{
	unconditional("Back Home (FT)", "Back the home side to win the match.", FullTimeResult, homeWinsFT),
	unconditional("Back Draw (FT)", "Back the match to end in a draw.", FullTimeResult, drawFT),
	unconditional("Back Away (FT)", "Back the away side to win the match.", FullTimeResult, awayWinsFT),

	unconditional("Back Home (HT)", "Back the home side to lead at halftime.", HalfTimeResult, homeLeadsHT),
	unconditional("Back Draw (HT)", "Back the score to be level at halftime.", HalfTimeResult, drawHT),
	unconditional("Back Away (HT)", "Back the away side to lead at halftime.", HalfTimeResult, awayLeadsHT),

	unconditional("Over 0.5 HT", "At least one goal in the first half.", Goals,
		func(m match.Record) bool { return m.HTTotal() > 0 }),
	unconditional("Over 1.5 FT", "At least two goals in the match.", Goals,
		func(m match.Record) bool { return m.FTTotal() > 1 }),
	unconditional("Over 2.5 FT", "At least three goals in the match.", Goals,
		func(m match.Record) bool { return m.FTTotal() > 2 }),
	unconditional("Under 2.5 FT", "Fewer than three goals in the match.", Goals,
		func(m match.Record) bool { return m.FTTotal() < 3 }),
	unconditional("Both Teams Score", "Both sides score at least once.", Goals,
		func(m match.Record) bool { return m.FTHome > 0 && m.FTAway > 0 }),
	unconditional("Over 0.5 2nd-half", "At least one goal in the second half.", Goals,
		func(m match.Record) bool { return m.FTTotal() > m.HTTotal() }),

	conditional("Home leads HT → wins FT", "Home side leads at halftime and wins the match.", HalfTimeFull,
		homeLeadsHT, homeWinsFT),
	conditional("Away leads HT → wins FT", "Away side leads at halftime and wins the match.", HalfTimeFull,
		awayLeadsHT, awayWinsFT),
	conditional("Draw HT → Home wins FT", "Level at halftime and the home side wins.", HalfTimeFull,
		drawHT, homeWinsFT),
	conditional("Draw HT → Away wins FT", "Level at halftime and the away side wins.", HalfTimeFull,
		drawHT, awayWinsFT),
	conditional("Draw HT → Draw FT", "Level at halftime and level at full time.", HalfTimeFull,
		drawHT, drawFT),
	unconditional("HT score unchanged at FT", "The final score is exactly the halftime score.", HalfTimeFull,
		func(m match.Record) bool { return m.FTHome == m.HTHome && m.FTAway == m.HTAway }),

	conditional("Home wins FT after 1-0 HT", "Home side leads 1-0 at halftime and wins the match.", HalfTimeScore,
		htScore(1, 0), homeWinsFT),
	conditional("Away wins FT after 0-1 HT", "Away side leads 0-1 at halftime and wins the match.", HalfTimeScore,
		htScore(0, 1), awayWinsFT),
	conditional("Home wins FT after 2-0 HT", "Home side leads 2-0 at halftime and wins the match.", HalfTimeScore,
		htScore(2, 0), homeWinsFT),
	conditional("Away wins FT after 0-2 HT", "Away side leads 0-2 at halftime and wins the match.", HalfTimeScore,
		htScore(0, 2), awayWinsFT),
	conditional("Away leads HT by 1 → wins FT", "Away side leads by exactly one goal at halftime and wins the match.", HalfTimeScore,
		func(m match.Record) bool { return m.HTAway-m.HTHome == 1 }, awayWinsFT),
}

// Default returns a fresh catalogue holding the built-in strategies
func Default() *Catalogue {
	c, err := New(defaultDefinitions...)
	if err != nil {
		panic(err)
	}
	return c
}
