package stats

import (
	"sort"
	"sync"

	"github.com/richard-senior/htft/pkg/match"
	"github.com/richard-senior/htft/pkg/strategy"
)

// Engine evaluates catalogue entries against record sets. It keeps no state
// between calls, so one Engine can serve concurrent callers.
type Engine struct {
	catalogue *strategy.Catalogue
}

// NewEngine returns an engine over cat, or over the built-in catalogue when cat is nil
func NewEngine(cat *strategy.Catalogue) *Engine {
	if cat == nil {
		cat = strategy.Default()
	}
	return &Engine{catalogue: cat}
}

func (e *Engine) Catalogue() *strategy.Catalogue {
	return e.catalogue
}

// Evaluate computes the aggregate stats of a single definition
func (e *Engine) Evaluate(records []match.Record, def strategy.Definition) Stats {
	occurrences, successes := 0, 0
	for _, m := range records {
		if !def.AppliesTo(m) {
			continue
		}
		occurrences++
		if def.SucceedsOn(m) {
			successes++
		}
	}
	if !def.Conditional {
		occurrences = len(records)
	}

	rate := Rate(successes, occurrences)
	return Stats{
		Name:         def.Name,
		Description:  def.Description,
		Occurrences:  occurrences,
		Successes:    successes,
		SuccessRate:  rate,
		BreakEvenOdd: BreakEven(rate),
	}
}

// ComputeAll evaluates every definition and ranks the results by success
// rate, highest first. Ties keep catalogue order.
func (e *Engine) ComputeAll(records []match.Record) []Stats {
	if len(records) == 0 {
		return []Stats{}
	}

	defs := e.catalogue.Definitions()
	out := make([]Stats, 0, len(defs))
	for _, def := range defs {
		out = append(out, e.Evaluate(records, def))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SuccessRate > out[j].SuccessRate
	})
	return out
}

// ComputeOne returns the drill-down for the named strategy, or false when
// the name is not in the catalogue
func (e *Engine) ComputeOne(records []match.Record, name string) (*Details, bool) {
	def, ok := e.catalogue.Lookup(name)
	if !ok {
		return nil, false
	}

	s := e.Evaluate(records, def)

	instances := make([]MatchInstance, 0)
	groups := make(map[string]*LeaguePerformance)
	var order []string

	for _, m := range records {
		if !def.AppliesTo(m) {
			continue
		}
		success := def.SucceedsOn(m)
		instances = append(instances, MatchInstance{Match: m, Success: success})

		g, seen := groups[m.League]
		if !seen {
			g = &LeaguePerformance{League: m.League}
			groups[m.League] = g
			order = append(order, m.League)
		}
		g.Occurrences++
		if success {
			g.Successes++
		}
	}

	leagues := make([]LeaguePerformance, 0, len(order))
	for _, league := range order {
		g := groups[league]
		g.SuccessRate = Rate(g.Successes, g.Occurrences)
		g.BreakEvenOdd = BreakEven(g.SuccessRate)
		leagues = append(leagues, *g)
	}
	sort.SliceStable(leagues, func(i, j int) bool {
		return leagues[i].SuccessRate > leagues[j].SuccessRate
	})

	return &Details{
		Stats:        s,
		BreakEvenOdd: s.BreakEvenOdd,
		Leagues:      leagues,
		Instances:    instances,
	}, true
}

// ComputeReverse evaluates the named strategy with its success condition
// negated over the same denominator
func (e *Engine) ComputeReverse(records []match.Record, name string) (*Reverse, bool) {
	def, ok := e.catalogue.Lookup(name)
	if !ok {
		return nil, false
	}

	inv := def.Negate()
	s := e.Evaluate(records, inv)
	return &Reverse{
		Name:         inv.Name,
		Description:  inv.Description,
		Stats:        s,
		BreakEvenOdd: s.BreakEvenOdd,
	}, true
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns the shared engine over the built-in catalogue
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine(strategy.Default())
	})
	return defaultEngine
}

func ComputeAll(records []match.Record) []Stats {
	return Default().ComputeAll(records)
}

func ComputeOne(records []match.Record, name string) (*Details, bool) {
	return Default().ComputeOne(records, name)
}

func ComputeReverse(records []match.Record, name string) (*Reverse, bool) {
	return Default().ComputeReverse(records, name)
}
