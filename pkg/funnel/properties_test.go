package funnel_test

import (
	"context"
	"testing"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"",
	"   ",
	"hi",
	"hello!",
	"fuck off",
	"hi, I need help with dating",
	"idk",
	"ok",
	"it happens all the time",
	"last night she ghosted me",
	"I live in Texas",
	"I live in Brazil",
	"I'm 34",
	"something serious",
	"nothing serious",
	"I go to the gym",
	"out of shape",
	"I'm broke",
	"money is not an issue",
	"no thanks",
	"yes",
	"😀😀😀",
	"Québec, ça va?",
}

func edgeSet() map[[2]domain.State]bool {
	set := make(map[[2]domain.State]bool)
	for _, e := range funnel.Edges() {
		set[[2]domain.State{e.From, e.To}] = true
	}
	return set
}

func TestProperty_TotalAndOnDeclaredEdges(t *testing.T) {
	eng := funnel.New()
	known := edgeSet()

	for _, state := range domain.AllStates() {
		for _, text := range corpus {
			attrs := &domain.Attributes{}
			next, err := eng.Process(state, attrs, text)
			require.NoError(t, err, "%s / %q", state, text)
			assert.True(t, next.Valid(), "%s / %q -> %q", state, text, next)
			assert.True(t, known[[2]domain.State{state, next}],
				"undeclared edge %s -> %s for %q", state, next, text)
		}
	}
}

func TestProperty_Deterministic(t *testing.T) {
	eng := funnel.New()
	seeds := []*domain.Attributes{
		{},
		{AbuseCount: 1},
		{TurnCount: 3, ProblemSignalCount: 1},
		{LocationRegion: domain.RegionOther},
		{FinancialBucket: domain.BucketMid},
	}

	for _, state := range domain.AllStates() {
		for _, text := range corpus {
			for _, seed := range seeds {
				a, b := seed.Clone(), seed.Clone()
				nextA, errA := eng.Process(state, a, text)
				nextB, errB := eng.Process(state, b, text)
				require.NoError(t, errA)
				require.NoError(t, errB)
				assert.Equal(t, nextA, nextB)
				assert.Equal(t, *a, *b)
			}
		}
	}
}

func TestProperty_EndAbsorbs(t *testing.T) {
	eng := funnel.New()
	for _, text := range corpus {
		attrs := &domain.Attributes{AbuseCount: 1, StallCount: 4, LocationRegion: domain.RegionUS}
		before := *attrs
		next, err := eng.Process(domain.StateEnd, attrs, text)
		require.NoError(t, err)
		assert.Equal(t, domain.StateEnd, next)
		assert.Equal(t, before, *attrs, "END never mutates attributes")
	}
}

func TestProperty_HardStopAbsorbs(t *testing.T) {
	eng := funnel.New()
	for _, state := range domain.AllStates() {
		for _, text := range corpus {
			attrs := &domain.Attributes{HardStopTriggered: true, AbuseCount: 2}
			next, err := eng.Process(state, attrs, text)
			require.NoError(t, err)
			assert.Equal(t, domain.StateEnd, next)
			assert.True(t, attrs.HardStopTriggered)
		}
	}
}

func TestProperty_MonotonicCounters(t *testing.T) {
	eng := funnel.New()
	ctx := context.Background()

	// Replay the corpus many times from every state, carrying one bag.
	for _, start := range domain.AllStates() {
		state := start
		attrs := &domain.Attributes{}
		prev := *attrs
		for round := 0; round < 3; round++ {
			for _, text := range corpus {
				evt, err := eng.Transition(ctx, "prop", state, attrs, text)
				require.NoError(t, err)
				state = evt.To

				assert.GreaterOrEqual(t, attrs.AbuseCount, prev.AbuseCount)
				assert.GreaterOrEqual(t, attrs.StallCount, prev.StallCount)
				assert.GreaterOrEqual(t, attrs.ProblemSignalCount, prev.ProblemSignalCount)
				if prev.HardStopTriggered {
					assert.True(t, attrs.HardStopTriggered)
				}
				if prev.FinanceCompleted {
					assert.True(t, attrs.FinanceCompleted)
				}
				if prev.ProblemConfirmed {
					assert.True(t, attrs.ProblemConfirmed)
				}
				prev = *attrs
			}
		}
	}
}
