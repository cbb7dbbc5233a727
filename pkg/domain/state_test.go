package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"ENTRY", StateEntry},
		{" quAL_finance ", StateQualFinance},
		{"ENTRY_SOCIAL", StateRapport},
		{"STAGE_1_PATTERN", StatePattern},
		{"STAGE_10_QUAL_RELATIONSHIP", StateQualRelationshipGoal},
		{"ROUTE_LOW_TICKET", StateRouteLowTicket},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseState_Invalid(t *testing.T) {
	for _, in := range []string{"", "START", "HARD_STOP", "STAGE_11"} {
		_, err := ParseState(in)
		assert.ErrorIs(t, err, ErrInvalidState, "input %q", in)
	}
}

func TestAllStates_OrderAndValidity(t *testing.T) {
	states := AllStates()
	require.Len(t, states, 19)
	assert.Equal(t, InitialState, states[0])
	assert.Equal(t, StateEnd, states[len(states)-1])
	for _, s := range states {
		assert.True(t, s.Valid(), s)
	}

	// Returned slice is a copy.
	states[0] = "MUTATED"
	assert.Equal(t, StateEntry, AllStates()[0])
}

func TestState_Classification(t *testing.T) {
	assert.True(t, StateEnd.IsTerminal())
	assert.False(t, StateRouteHighTicket.IsTerminal())
	assert.True(t, StateRouteHighTicket.IsRoute())
	assert.True(t, StateRouteLowTicket.IsRoute())
	assert.True(t, StateQualAge.IsQualification())
	assert.False(t, StateProgramFraming.IsQualification())
	assert.True(t, StateReframe.IsDiscovery())
	assert.False(t, StateRapport.IsDiscovery())

	c, ok := StateQualFinance.Category()
	assert.True(t, ok)
	assert.Equal(t, CategoryFinance, c)
	_, ok = StateQualAge.Category()
	assert.False(t, ok)
}
