package funnel

import (
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/signals"
)

// Reasons recorded on transition events.
const (
	ReasonAbsorbed         = "absorbed"
	ReasonHardStop         = "hard_stop"
	ReasonAbuseWarning     = "abuse_warning"
	ReasonEntryExit        = "entry_exit"
	ReasonTurnLimit        = "turn_limit"
	ReasonHold             = "hold"
	ReasonUnconditional    = "unconditional"
	ReasonProblemExit      = "problem_exit"
	ReasonProblemConfirmed = "problem_confirmed"
	ReasonEmpty            = "empty"
	ReasonAdvance          = "advance"
	ReasonDecline          = "decline"
	ReasonPermission       = "permission"
	ReasonQualified        = "region_qualified"
	ReasonRegionOther      = "region_other"
	ReasonUnresolved       = "unresolved"
	ReasonResolved         = "resolved"
	ReasonFinanceLow       = "finance_low"
	ReasonFinanceHigh      = "finance_high"
	ReasonFinanceDefault   = "finance_default"
	ReasonReplay           = "replay"
)

const (
	// abuseLimit abusive messages end the conversation.
	abuseLimit = 2
	// entryTurnLimit repeated ENTRY turns move on to small talk.
	entryTurnLimit = 1
	// problemSignalLimit confirmations mark the problem as confirmed.
	problemSignalLimit = 2
	// financeMinLength is the rune count above which an unclassified
	// finance answer still routes high ticket.
	financeMinLength = 5
)

type guard func(e *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string)

var guards map[domain.State]guard

func init() {
	guards = map[domain.State]guard{
		domain.StateEntry:                guardEntry,
		domain.StateRapport:              always(domain.StatePattern),
		domain.StatePattern:              guardPattern,
		domain.StateTimeCost:             discovery(domain.StateTimeCost, domain.StateAdditionalChallenges),
		domain.StateAdditionalChallenges: discovery(domain.StateAdditionalChallenges, domain.StateFailedSolutions),
		domain.StateFailedSolutions:      discovery(domain.StateFailedSolutions, domain.StateGoal),
		domain.StateGoal:                 discovery(domain.StateGoal, domain.StateGap),
		domain.StateGap:                  discovery(domain.StateGap, domain.StateReframe),
		domain.StateReframe:              discovery(domain.StateReframe, domain.StateIntroCoaching),
		domain.StateIntroCoaching:        always(domain.StateProgramFraming),
		domain.StateProgramFraming:       guardCoachingPermission,
		domain.StateQualLocation:         guardLocation,
		domain.StateQualAge:              guardAge,
		domain.StateQualRelationshipGoal: guardRelationshipGoal,
		domain.StateQualFitness:          guardFitness,
		domain.StateQualFinance:          guardFinance,
		domain.StateRouteHighTicket:      always(domain.StateEnd),
		domain.StateRouteLowTicket:       always(domain.StateEnd),
	}
}

func always(next domain.State) guard {
	return func(_ *Engine, _ *domain.Attributes, _ signals.Signals) (domain.State, string) {
		return next, ReasonUnconditional
	}
}

func guardEntry(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if s.Abusive {
		a.AbuseCount++
		if a.AbuseCount >= abuseLimit {
			a.HardStopTriggered = true
			return domain.StateEnd, ReasonHardStop
		}
		return domain.StateEntry, ReasonAbuseWarning
	}
	if s.ExitEntry {
		return domain.StatePattern, ReasonEntryExit
	}
	if a.TurnCount >= entryTurnLimit {
		return domain.StateRapport, ReasonTurnLimit
	}
	return domain.StateEntry, ReasonHold
}

func guardPattern(e *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if s.ExitProblemDiscovery {
		return domain.StateTimeCost, ReasonProblemExit
	}
	if s.Stall || s.OffTopic {
		a.StallCount++
	}
	if s.ConfirmsPattern || s.Emotional {
		a.ProblemSignalCount++
		if a.ProblemSignalCount >= problemSignalLimit {
			a.ProblemConfirmed = true
		}
	}
	if a.ProblemConfirmed {
		return domain.StateTimeCost, ReasonProblemConfirmed
	}
	if a.TurnCount >= e.patternTurnLimit {
		return domain.StateTimeCost, ReasonTurnLimit
	}
	return domain.StatePattern, ReasonHold
}

// discovery advances on any non-empty answer. Stalls are counted but do not block.
func discovery(self, next domain.State) guard {
	return func(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
		if s.Empty() {
			return self, ReasonEmpty
		}
		if s.Stall {
			a.StallCount++
		}
		return next, ReasonAdvance
	}
}

func guardCoachingPermission(_ *Engine, _ *domain.Attributes, s signals.Signals) (domain.State, string) {
	if !s.ExitCoachingTransition {
		return domain.StateProgramFraming, ReasonDecline
	}
	return domain.StateQualLocation, ReasonPermission
}

func guardLocation(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if a.LocationRegion == domain.RegionUnresolved {
		switch {
		case s.Location != nil:
			a.LocationRegion = s.Location.Region
			a.LocationDetail = s.Location.Detail
		case !s.Empty() && !s.StallPhrase:
			// A real answer naming no known place.
			a.LocationRegion = domain.RegionOther
			a.LocationDetail = s.Normalized
		}
	}

	switch {
	case a.LocationRegion.Qualifies():
		return domain.StateQualAge, ReasonQualified
	case a.LocationRegion == domain.RegionOther:
		return domain.StateRouteLowTicket, ReasonRegionOther
	}
	return domain.StateQualLocation, ReasonUnresolved
}

func guardAge(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if s.Age > 0 {
		a.Age = s.Age
	}
	if s.Empty() {
		return domain.StateQualAge, ReasonEmpty
	}
	return domain.StateQualRelationshipGoal, ReasonAdvance
}

func guardRelationshipGoal(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if a.RelationshipGoal == domain.GoalUnresolved {
		a.RelationshipGoal = s.RelationshipGoal
	}
	if a.RelationshipGoal == domain.GoalUnresolved {
		return domain.StateQualRelationshipGoal, ReasonUnresolved
	}
	return domain.StateQualFitness, ReasonResolved
}

func guardFitness(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if a.FitnessLevel == domain.FitnessUnresolved {
		a.FitnessLevel = s.Fitness
	}
	if a.FitnessLevel == domain.FitnessUnresolved {
		return domain.StateQualFitness, ReasonUnresolved
	}
	return domain.StateQualFinance, ReasonResolved
}

// guardFinance routes the lead. An unclassified answer longer than
// financeMinLength runes routes high ticket: this optimistic default is a
// business heuristic and may send leads who cannot pay to the sales call.
func guardFinance(_ *Engine, a *domain.Attributes, s signals.Signals) (domain.State, string) {
	if a.FinanceCompleted {
		if a.FinancialBucket == domain.BucketLow {
			return domain.StateRouteLowTicket, ReasonReplay
		}
		return domain.StateRouteHighTicket, ReasonReplay
	}

	if a.FinancialBucket == domain.BucketUnresolved {
		a.FinancialBucket = s.FinancialBucket
	}

	switch a.FinancialBucket {
	case domain.BucketLow:
		a.FinanceCompleted = true
		return domain.StateRouteLowTicket, ReasonFinanceLow
	case domain.BucketMid, domain.BucketHigh:
		a.FinanceCompleted = true
		return domain.StateRouteHighTicket, ReasonFinanceHigh
	}

	if s.RawLength > financeMinLength {
		a.FinanceCompleted = true
		return domain.StateRouteHighTicket, ReasonFinanceDefault
	}
	return domain.StateQualFinance, ReasonUnresolved
}
