package strategy

import (
	"fmt"

	"github.com/richard-senior/htft/pkg/match"
)

// Predicate is a pure test over a single match
type Predicate func(match.Record) bool

// Category groups definitions for presentation
type Category string

const (
	FullTimeResult Category = "ft-result"
	HalfTimeResult Category = "ht-result"
	Goals          Category = "goals"
	HalfTimeFull   Category = "ht-ft"
	HalfTimeScore  Category = "ht-score"
)

// Definition is one named betting rule.
//
// Unconditional definitions are judged against every match, conditional ones
// only against the matches that satisfy Applies.
type Definition struct {
	Name        string
	Description string
	Category    Category
	// Applies is the precondition; nil means every match applies
	Applies     Predicate
	Succeeds    Predicate
	Conditional bool
}

// AppliesTo reports whether the match counts towards this definition's denominator
func (d Definition) AppliesTo(m match.Record) bool {
	if !d.Conditional || d.Applies == nil {
		return true
	}
	return d.Applies(m)
}

// SucceedsOn reports whether the bet described by the definition wins on m
func (d Definition) SucceedsOn(m match.Record) bool {
	return d.Succeeds(m)
}

// Negate returns a definition with the same precondition and the opposite
// success condition. It is never added to a catalogue.
func (d Definition) Negate() Definition {
	inner := d.Succeeds
	return Definition{
		Name:        InverseName(d.Name),
		Description: fmt.Sprintf("Analyzes the failure of strategy '%s'", d.Name),
		Category:    d.Category,
		Applies:     d.Applies,
		Succeeds:    func(m match.Record) bool { return !inner(m) },
		Conditional: d.Conditional,
	}
}

// InverseName is the synthesized name of a negated definition
func InverseName(name string) string {
	return "Inverse of: " + name
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("strategy definition has no name")
	}
	if d.Succeeds == nil {
		return fmt.Errorf("strategy %q has no success condition", d.Name)
	}
	if d.Conditional && d.Applies == nil {
		return fmt.Errorf("conditional strategy %q has no precondition", d.Name)
	}
	return nil
}
