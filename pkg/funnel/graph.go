package funnel

import "github.com/aretw0/setter/pkg/domain"

// Edge is one possible transition and the condition that takes it.
// Self loops are listed where a state can hold.
type Edge struct {
	From      domain.State `json:"from"`
	To        domain.State `json:"to"`
	Condition string       `json:"condition"`
}

var edges = []Edge{
	{domain.StateEntry, domain.StateEntry, "abusive (first warning) or turn 0"},
	{domain.StateEntry, domain.StateEnd, "second abusive message"},
	{domain.StateEntry, domain.StatePattern, "dating or emotional context"},
	{domain.StateEntry, domain.StateRapport, "turn >= 1"},
	{domain.StateRapport, domain.StatePattern, "always"},
	{domain.StatePattern, domain.StatePattern, "no exit signal"},
	{domain.StatePattern, domain.StateTimeCost, "stall, scenario, help or exhaustion; problem confirmed; turn limit"},
	{domain.StateTimeCost, domain.StateTimeCost, "empty"},
	{domain.StateTimeCost, domain.StateAdditionalChallenges, "answered"},
	{domain.StateAdditionalChallenges, domain.StateAdditionalChallenges, "empty"},
	{domain.StateAdditionalChallenges, domain.StateFailedSolutions, "answered"},
	{domain.StateFailedSolutions, domain.StateFailedSolutions, "empty"},
	{domain.StateFailedSolutions, domain.StateGoal, "answered"},
	{domain.StateGoal, domain.StateGoal, "empty"},
	{domain.StateGoal, domain.StateGap, "answered"},
	{domain.StateGap, domain.StateGap, "empty"},
	{domain.StateGap, domain.StateReframe, "answered"},
	{domain.StateReframe, domain.StateReframe, "empty"},
	{domain.StateReframe, domain.StateIntroCoaching, "answered"},
	{domain.StateIntroCoaching, domain.StateProgramFraming, "always"},
	{domain.StateProgramFraming, domain.StateProgramFraming, "declined"},
	{domain.StateProgramFraming, domain.StateQualLocation, "accepted or unmatched"},
	{domain.StateQualLocation, domain.StateQualLocation, "unresolved"},
	{domain.StateQualLocation, domain.StateQualAge, "US, CANADA or EU"},
	{domain.StateQualLocation, domain.StateRouteLowTicket, "OTHER"},
	{domain.StateQualAge, domain.StateQualAge, "empty"},
	{domain.StateQualAge, domain.StateQualRelationshipGoal, "answered"},
	{domain.StateQualRelationshipGoal, domain.StateQualRelationshipGoal, "unresolved"},
	{domain.StateQualRelationshipGoal, domain.StateQualFitness, "resolved"},
	{domain.StateQualFitness, domain.StateQualFitness, "unresolved"},
	{domain.StateQualFitness, domain.StateQualFinance, "resolved"},
	{domain.StateQualFinance, domain.StateQualFinance, "unresolved, short"},
	{domain.StateQualFinance, domain.StateRouteLowTicket, "low"},
	{domain.StateQualFinance, domain.StateRouteHighTicket, "mid, high or unresolved answer > 5 runes"},
	{domain.StateRouteHighTicket, domain.StateEnd, "always"},
	{domain.StateRouteLowTicket, domain.StateEnd, "always"},
	{domain.StateEnd, domain.StateEnd, "absorbing"},
}

// Edges returns the static transition table in funnel order.
// The hard stop edge from every state to END is implied and not listed.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Successors lists the distinct states reachable from s in one step,
// excluding the implied hard stop.
func Successors(s domain.State) []domain.State {
	var out []domain.State
	seen := make(map[domain.State]bool)
	for _, e := range edges {
		if e.From == s && !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	return out
}
