package match

// Dialect names the header columns that carry each Record field
type Dialect struct {
	Name     string
	League   string
	HomeTeam string
	AwayTeam string
	HTHome   string
	HTAway   string
	FTHome   string
	FTAway   string
}

// Primary is the header layout exported by the results spreadsheet
var Primary = Dialect{
	Name:     "primary",
	League:   "LIGA",
	HomeTeam: "EQUIPA CASA",
	AwayTeam: "EQUIPA VISITANTE",
	HTHome:   "RESULTADO HT CASA",
	HTAway:   "RESULTADO HT FORA",
	FTHome:   "RESULTADO FT CASA",
	FTAway:   "RESULTADO FT FORA",
}

// FootballData is the layout of the football-data.co.uk season files
var FootballData = Dialect{
	Name:     "football-data",
	League:   "Div",
	HomeTeam: "HomeTeam",
	AwayTeam: "AwayTeam",
	HTHome:   "HTHG",
	HTAway:   "HTAG",
	FTHome:   "FTHG",
	FTAway:   "FTAG",
}

// Dialects are tried in order; the first one whose columns are all present wins
var Dialects = []Dialect{Primary, FootballData}

// Columns returns the required column names in their canonical order
func (d Dialect) Columns() []string {
	return []string{d.League, d.HomeTeam, d.AwayTeam, d.HTHome, d.HTAway, d.FTHome, d.FTAway}
}

// layout holds the resolved position of each column in a header
type layout struct {
	league, home, away int
	htHome, htAway     int
	ftHome, ftAway     int
	max                int
}

// resolve locates the dialect's columns in header, returning the names that are missing
func (d Dialect) resolve(header []string) (layout, []string) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		// first occurrence wins on duplicated headers
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	var missing []string
	find := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	l := layout{
		league: find(d.League),
		home:   find(d.HomeTeam),
		away:   find(d.AwayTeam),
		htHome: find(d.HTHome),
		htAway: find(d.HTAway),
		ftHome: find(d.FTHome),
		ftAway: find(d.FTAway),
	}
	for _, i := range []int{l.league, l.home, l.away, l.htHome, l.htAway, l.ftHome, l.ftAway} {
		if i > l.max {
			l.max = i
		}
	}
	return l, missing
}
