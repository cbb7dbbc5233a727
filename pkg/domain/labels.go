package domain

import "strings"

// Category names an attribute the semantic extractor can resolve.
type Category string

const (
	CategoryLocation         Category = "location"
	CategoryRelationshipGoal Category = "relationship_goal"
	CategoryFitness          Category = "fitness"
	CategoryFinance          Category = "finance"
)

// Categories lists every extractor category.
func Categories() []Category {
	return []Category{CategoryLocation, CategoryRelationshipGoal, CategoryFitness, CategoryFinance}
}

// Region is the resolved location bucket. The zero value is unresolved.
type Region string

const (
	RegionUnresolved Region = ""
	RegionUS         Region = "US"
	RegionCanada     Region = "CANADA"
	RegionEU         Region = "EU"
	RegionOther      Region = "OTHER"
)

// ParseRegion is case-insensitive; unknown values are unresolved.
func ParseRegion(s string) (Region, bool) {
	switch r := Region(strings.ToUpper(strings.TrimSpace(s))); r {
	case RegionUS, RegionCanada, RegionEU, RegionOther:
		return r, true
	}
	return RegionUnresolved, false
}

// Qualifies reports whether the region keeps the lead in the high-ticket path.
func (r Region) Qualifies() bool {
	return r == RegionUS || r == RegionCanada || r == RegionEU
}

// RelationshipGoal is what the lead is looking for. The zero value is unresolved.
type RelationshipGoal string

const (
	GoalUnresolved RelationshipGoal = ""
	GoalSerious    RelationshipGoal = "SERIOUS"
	GoalCasual     RelationshipGoal = "CASUAL"
)

func ParseRelationshipGoal(s string) (RelationshipGoal, bool) {
	switch g := RelationshipGoal(strings.ToUpper(strings.TrimSpace(s))); g {
	case GoalSerious, GoalCasual:
		return g, true
	}
	return GoalUnresolved, false
}

// FitnessLevel is the self-reported fitness bucket. The zero value is unresolved.
type FitnessLevel string

const (
	FitnessUnresolved FitnessLevel = ""
	FitnessFit        FitnessLevel = "FIT"
	FitnessAverage    FitnessLevel = "AVERAGE"
	FitnessUnfit      FitnessLevel = "UNFIT"
)

func ParseFitnessLevel(s string) (FitnessLevel, bool) {
	switch f := FitnessLevel(strings.ToUpper(strings.TrimSpace(s))); f {
	case FitnessFit, FitnessAverage, FitnessUnfit:
		return f, true
	}
	return FitnessUnresolved, false
}

// FinancialBucket is the lead's budget bucket. Wire values are lowercase.
// The zero value is unresolved.
type FinancialBucket string

const (
	BucketUnresolved FinancialBucket = ""
	BucketLow        FinancialBucket = "low"
	BucketMid        FinancialBucket = "mid"
	BucketHigh       FinancialBucket = "high"
)

func ParseFinancialBucket(s string) (FinancialBucket, bool) {
	switch b := FinancialBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketLow, BucketMid, BucketHigh:
		return b, true
	}
	return BucketUnresolved, false
}

// Label is the tagged result of one extraction: either one of the finite
// values for its category or unresolved.
type Label struct {
	Category Category `json:"category"`
	Value    string   `json:"value,omitempty"`
	Resolved bool     `json:"resolved"`
}

// Unresolved builds the explicit "no answer" result for a category.
func Unresolved(c Category) Label {
	return Label{Category: c}
}

// ParseLabel validates a raw classifier answer against the category's closed
// set. Anything that does not parse is unresolved.
func ParseLabel(c Category, raw string) Label {
	var (
		value string
		ok    bool
	)
	switch c {
	case CategoryLocation:
		var r Region
		r, ok = ParseRegion(raw)
		value = string(r)
	case CategoryRelationshipGoal:
		var g RelationshipGoal
		g, ok = ParseRelationshipGoal(raw)
		value = string(g)
	case CategoryFitness:
		var f FitnessLevel
		f, ok = ParseFitnessLevel(raw)
		value = string(f)
	case CategoryFinance:
		var b FinancialBucket
		b, ok = ParseFinancialBucket(raw)
		value = string(b)
	}
	if !ok {
		return Unresolved(c)
	}
	return Label{Category: c, Value: value, Resolved: true}
}
