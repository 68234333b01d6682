package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/htft/pkg/match"
)

func rec(htH, htA, ftH, ftA int) match.Record {
	return match.Record{HTHome: htH, HTAway: htA, FTHome: ftH, FTAway: ftA}
}

func TestDefaultCatalogueOrder(t *testing.T) {
	c := Default()
	require.Equal(t, 23, c.Len())

	names := c.Names()
	assert.Equal(t, "Back Home (FT)", names[0])
	assert.Equal(t, "Over 0.5 HT", names[6])
	assert.Equal(t, "HT score unchanged at FT", names[17])
	assert.Equal(t, "Away leads HT by 1 → wins FT", names[22])

	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
	}
}

func TestDefaultPredicates(t *testing.T) {
	c := Default()
	tests := []struct {
		name     string
		m        match.Record
		applies  bool
		succeeds bool
	}{
		{"Back Home (FT)", rec(0, 0, 2, 1), true, true},
		{"Back Draw (FT)", rec(0, 0, 2, 1), true, false},
		{"Back Away (HT)", rec(0, 1, 2, 1), true, true},
		{"Over 0.5 HT", rec(0, 0, 1, 0), true, false},
		{"Over 2.5 FT", rec(0, 0, 2, 1), true, true},
		{"Under 2.5 FT", rec(0, 0, 2, 1), true, false},
		{"Both Teams Score", rec(0, 0, 1, 1), true, true},
		{"Over 0.5 2nd-half", rec(1, 1, 1, 1), true, false},
		{"Home leads HT → wins FT", rec(0, 0, 1, 0), false, true},
		{"Home leads HT → wins FT", rec(1, 0, 1, 1), true, false},
		{"Draw HT → Draw FT", rec(1, 1, 2, 2), true, true},
		{"HT score unchanged at FT", rec(1, 0, 1, 0), true, true},
		{"Home wins FT after 1-0 HT", rec(2, 0, 3, 0), false, true},
		{"Away wins FT after 0-2 HT", rec(0, 2, 1, 3), true, true},
		{"Away leads HT by 1 → wins FT", rec(1, 2, 1, 3), true, true},
		{"Away leads HT by 1 → wins FT", rec(0, 2, 0, 2), false, true},
	}
	for _, tt := range tests {
		d, ok := c.Lookup(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.applies, d.AppliesTo(tt.m), "applies %s %s", tt.name, tt.m)
		assert.Equal(t, tt.succeeds, d.SucceedsOn(tt.m), "succeeds %s %s", tt.name, tt.m)
	}
}

func TestConditionalFlag(t *testing.T) {
	for _, d := range Default().Definitions() {
		if d.Category == HalfTimeScore {
			assert.True(t, d.Conditional, d.Name)
		}
		if d.Category == Goals || d.Category == FullTimeResult || d.Category == HalfTimeResult {
			assert.False(t, d.Conditional, d.Name)
		}
	}
}

func TestNegate(t *testing.T) {
	d, ok := Default().Lookup("Back Home (FT)")
	require.True(t, ok)

	inv := d.Negate()
	assert.Equal(t, "Inverse of: Back Home (FT)", inv.Name)
	assert.Equal(t, "Analyzes the failure of strategy 'Back Home (FT)'", inv.Description)
	for _, m := range []match.Record{rec(0, 0, 1, 0), rec(0, 0, 0, 0), rec(0, 0, 0, 1)} {
		assert.NotEqual(t, d.SucceedsOn(m), inv.SucceedsOn(m))
		assert.Equal(t, d.AppliesTo(m), inv.AppliesTo(m))
	}
}

func TestRegisterRejectsBadDefinitions(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	ok := func(match.Record) bool { return true }
	require.NoError(t, c.Register(Definition{Name: "a", Succeeds: ok}))
	assert.Error(t, c.Register(Definition{Name: "a", Succeeds: ok}))
	assert.Error(t, c.Register(Definition{Succeeds: ok}))
	assert.Error(t, c.Register(Definition{Name: "b"}))
	assert.Error(t, c.Register(Definition{Name: "c", Succeeds: ok, Conditional: true}))

	_, err = New(Definition{Name: "x", Succeeds: ok}, Definition{Name: "x", Succeeds: ok})
	assert.Error(t, err)

	_, found := c.Lookup("missing")
	assert.False(t, found)
}

func TestDefinitionsIsACopy(t *testing.T) {
	c := Default()
	defs := c.Definitions()
	defs[0].Name = "changed"
	assert.Equal(t, "Back Home (FT)", c.Names()[0])
}
