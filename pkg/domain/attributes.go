package domain

import (
	"github.com/mitchellh/mapstructure"
)

// Attribute keys as they travel over the wire and into storage.
const (
	KeyTurnCount          = "current_state_turn_count"
	KeyAbuseCount         = "abuse_count"
	KeyHardStopTriggered  = "hard_stop_triggered"
	KeyStallCount         = "stall_count"
	KeyProblemSignalCount = "problem_signal_count"
	KeyProblemConfirmed   = "problem_confirmed"
	KeyLocationRegion     = "location_region"
	KeyLocationDetail     = "location_detail"
	KeyAge                = "age"
	KeyRelationshipGoal   = "relationship_goal"
	KeyFitnessLevel       = "fitness_level"
	KeyFinancialBucket    = "financial_bucket"
	KeyFinanceCompleted   = "finance_completed"
)

// Attributes is the per-session bag the engine reads and mutates in place.
// It is owned by exactly one session; the caller serializes access to it.
//
// Counters only grow and the triggered/completed flags are never cleared
// within a session's lifetime.
type Attributes struct {
	TurnCount          int  `json:"current_state_turn_count" mapstructure:"current_state_turn_count"`
	AbuseCount         int  `json:"abuse_count" mapstructure:"abuse_count"`
	HardStopTriggered  bool `json:"hard_stop_triggered" mapstructure:"hard_stop_triggered"`
	StallCount         int  `json:"stall_count" mapstructure:"stall_count"`
	ProblemSignalCount int  `json:"problem_signal_count" mapstructure:"problem_signal_count"`
	ProblemConfirmed   bool `json:"problem_confirmed" mapstructure:"problem_confirmed"`

	LocationRegion   Region           `json:"location_region,omitempty" mapstructure:"location_region"`
	LocationDetail   string           `json:"location_detail,omitempty" mapstructure:"location_detail"`
	Age              int              `json:"age,omitempty" mapstructure:"age"`
	RelationshipGoal RelationshipGoal `json:"relationship_goal,omitempty" mapstructure:"relationship_goal"`
	FitnessLevel     FitnessLevel     `json:"fitness_level,omitempty" mapstructure:"fitness_level"`
	FinancialBucket  FinancialBucket  `json:"financial_bucket,omitempty" mapstructure:"financial_bucket"`
	FinanceCompleted bool             `json:"finance_completed" mapstructure:"finance_completed"`
}

// AttributesFromMap decodes a best-effort attribute bag. Unknown keys are
// ignored, values of the wrong type fall back to the zero value and labels
// outside their closed set become unresolved. It never fails.
func AttributesFromMap(m map[string]any) *Attributes {
	attrs := &Attributes{}
	if len(m) == 0 {
		return attrs
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           attrs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return attrs
	}

	// Decode key by key so one corrupted value does not discard the rest.
	for k, v := range m {
		_ = dec.Decode(map[string]any{k: v})
	}

	attrs.sanitize()
	return attrs
}

func (a *Attributes) sanitize() {
	a.LocationRegion, _ = ParseRegion(string(a.LocationRegion))
	a.RelationshipGoal, _ = ParseRelationshipGoal(string(a.RelationshipGoal))
	a.FitnessLevel, _ = ParseFitnessLevel(string(a.FitnessLevel))
	a.FinancialBucket, _ = ParseFinancialBucket(string(a.FinancialBucket))
	if a.TurnCount < 0 {
		a.TurnCount = 0
	}
	if a.AbuseCount < 0 {
		a.AbuseCount = 0
	}
	if a.StallCount < 0 {
		a.StallCount = 0
	}
	if a.ProblemSignalCount < 0 {
		a.ProblemSignalCount = 0
	}
	if a.Age < 0 {
		a.Age = 0
	}
}

// ToMap renders the bag for the wire. Unresolved labels are omitted.
func (a *Attributes) ToMap() map[string]any {
	m := map[string]any{
		KeyTurnCount:          a.TurnCount,
		KeyAbuseCount:         a.AbuseCount,
		KeyHardStopTriggered:  a.HardStopTriggered,
		KeyStallCount:         a.StallCount,
		KeyProblemSignalCount: a.ProblemSignalCount,
		KeyProblemConfirmed:   a.ProblemConfirmed,
		KeyFinanceCompleted:   a.FinanceCompleted,
	}
	if a.LocationRegion != RegionUnresolved {
		m[KeyLocationRegion] = string(a.LocationRegion)
	}
	if a.LocationDetail != "" {
		m[KeyLocationDetail] = a.LocationDetail
	}
	if a.Age > 0 {
		m[KeyAge] = a.Age
	}
	if a.RelationshipGoal != GoalUnresolved {
		m[KeyRelationshipGoal] = string(a.RelationshipGoal)
	}
	if a.FitnessLevel != FitnessUnresolved {
		m[KeyFitnessLevel] = string(a.FitnessLevel)
	}
	if a.FinancialBucket != BucketUnresolved {
		m[KeyFinancialBucket] = string(a.FinancialBucket)
	}
	return m
}

// Clone returns an independent copy.
func (a *Attributes) Clone() *Attributes {
	c := *a
	return &c
}

// Apply writes a resolved extractor label into the matching attribute.
// Unresolved labels leave the bag untouched.
func (a *Attributes) Apply(l Label) {
	if !l.Resolved {
		return
	}
	switch l.Category {
	case CategoryLocation:
		if r, ok := ParseRegion(l.Value); ok {
			a.LocationRegion = r
		}
	case CategoryRelationshipGoal:
		if g, ok := ParseRelationshipGoal(l.Value); ok {
			a.RelationshipGoal = g
		}
	case CategoryFitness:
		if f, ok := ParseFitnessLevel(l.Value); ok {
			a.FitnessLevel = f
		}
	case CategoryFinance:
		if b, ok := ParseFinancialBucket(l.Value); ok {
			a.FinancialBucket = b
		}
	}
}

// Resolved reports whether the attribute behind a category already holds a value.
func (a *Attributes) Resolved(c Category) bool {
	switch c {
	case CategoryLocation:
		return a.LocationRegion != RegionUnresolved
	case CategoryRelationshipGoal:
		return a.RelationshipGoal != GoalUnresolved
	case CategoryFitness:
		return a.FitnessLevel != FitnessUnresolved
	case CategoryFinance:
		return a.FinancialBucket != BucketUnresolved
	}
	return false
}

// TrackTurn maintains current_state_turn_count after a step:
// reset on a state change, incremented on a repeat.
func (a *Attributes) TrackTurn(prev, next State) {
	if prev != next {
		a.TurnCount = 0
		return
	}
	a.TurnCount++
}
