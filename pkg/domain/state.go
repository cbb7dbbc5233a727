package domain

import (
	"fmt"
	"strings"
)

// State is a stage of the sales funnel. The set is closed: values outside
// AllStates are rejected by ParseState.
type State string

const (
	StateEntry                State = "ENTRY"
	StateRapport              State = "RAPPORT"
	StatePattern              State = "PATTERN"
	StateTimeCost             State = "TIME_COST"
	StateAdditionalChallenges State = "ADDITIONAL_CHALLENGES"
	StateFailedSolutions      State = "FAILED_SOLUTIONS"
	StateGoal                 State = "GOAL"
	StateGap                  State = "GAP"
	StateReframe              State = "REFRAME"
	StateIntroCoaching        State = "INTRO_COACHING"
	StateProgramFraming       State = "PROGRAM_FRAMING"
	StateQualLocation         State = "QUAL_LOCATION"
	StateQualAge              State = "QUAL_AGE"
	StateQualRelationshipGoal State = "QUAL_RELATIONSHIP_GOAL"
	StateQualFitness          State = "QUAL_FITNESS"
	StateQualFinance          State = "QUAL_FINANCE"
	StateRouteHighTicket      State = "ROUTE_HIGH_TICKET"
	StateRouteLowTicket       State = "ROUTE_LOW_TICKET"
	StateEnd                  State = "END"
)

// InitialState is where every new session starts.
const InitialState = StateEntry

var orderedStates = []State{
	StateEntry,
	StateRapport,
	StatePattern,
	StateTimeCost,
	StateAdditionalChallenges,
	StateFailedSolutions,
	StateGoal,
	StateGap,
	StateReframe,
	StateIntroCoaching,
	StateProgramFraming,
	StateQualLocation,
	StateQualAge,
	StateQualRelationshipGoal,
	StateQualFitness,
	StateQualFinance,
	StateRouteHighTicket,
	StateRouteLowTicket,
	StateEnd,
}

// aliases maps names from the earlier linear funnel (and the social stage's
// old name) onto the canonical set, so persisted sessions keep loading.
var aliases = map[string]State{
	"ENTRY_SOCIAL":               StateRapport,
	"STAGE_1_PATTERN":            StatePattern,
	"STAGE_2_TIME_COST":          StateTimeCost,
	"STAGE_3_ADDITIONAL":         StateAdditionalChallenges,
	"STAGE_4_FAILED_SOLUTIONS":   StateFailedSolutions,
	"STAGE_5_GOAL":               StateGoal,
	"STAGE_6_GAP":                StateGap,
	"STAGE_7_REFRAME":            StateReframe,
	"STAGE_8_INTRO_COACHING":     StateIntroCoaching,
	"STAGE_9_PROGRAM_FRAMING":    StateProgramFraming,
	"STAGE_10_QUAL_LOCATION":     StateQualLocation,
	"STAGE_10_QUAL_AGE":          StateQualAge,
	"STAGE_10_QUAL_RELATIONSHIP": StateQualRelationshipGoal,
	"STAGE_10_QUAL_FITNESS":      StateQualFitness,
	"STAGE_10_QUAL_FINANCE":      StateQualFinance,
}

// AllStates returns the canonical states in funnel order.
func AllStates() []State {
	out := make([]State, len(orderedStates))
	copy(out, orderedStates)
	return out
}

// ParseState resolves a wire value into a State.
// Returns ErrInvalidState for anything outside the closed set.
func ParseState(s string) (State, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if st := State(key); st.Valid() {
		return st, nil
	}
	if st, ok := aliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
}

// Valid reports whether s is one of the canonical states.
func (s State) Valid() bool {
	for _, st := range orderedStates {
		if st == s {
			return true
		}
	}
	return false
}

func (s State) String() string { return string(s) }

// IsTerminal reports whether s is the absorbing END state.
func (s State) IsTerminal() bool { return s == StateEnd }

// IsRoute reports whether s is one of the two routing outcomes.
func (s State) IsRoute() bool {
	return s == StateRouteHighTicket || s == StateRouteLowTicket
}

// IsQualification reports whether s exists only to resolve one attribute.
func (s State) IsQualification() bool {
	switch s {
	case StateQualLocation, StateQualAge, StateQualRelationshipGoal, StateQualFitness, StateQualFinance:
		return true
	}
	return false
}

// IsDiscovery reports whether s belongs to the problem discovery stretch.
func (s State) IsDiscovery() bool {
	switch s {
	case StatePattern, StateTimeCost, StateAdditionalChallenges, StateFailedSolutions,
		StateGoal, StateGap, StateReframe:
		return true
	}
	return false
}

// Category returns the extractor category a qualification state resolves.
// The second value is false for states that do not consume an extractor.
func (s State) Category() (Category, bool) {
	switch s {
	case StateQualLocation:
		return CategoryLocation, true
	case StateQualRelationshipGoal:
		return CategoryRelationshipGoal, true
	case StateQualFitness:
		return CategoryFitness, true
	case StateQualFinance:
		return CategoryFinance, true
	}
	return "", false
}
