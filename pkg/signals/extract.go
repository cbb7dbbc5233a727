package signals

import (
	"strconv"
	"strings"

	"github.com/aretw0/setter/pkg/domain"
)

// LocationMatch is the result of a rule-based location lookup.
type LocationMatch struct {
	Region domain.Region `json:"region"`
	Detail string        `json:"detail"`
}

// locationOrder is the fixed scan order; the first hit wins.
var locationOrder = []struct {
	set    string
	region domain.Region
}{
	{SetUSStates, domain.RegionUS},
	{SetCanadaProvinces, domain.RegionCanada},
	{SetEUCountries, domain.RegionEU},
	{SetEURegion, domain.RegionEU},
	{SetUSCountry, domain.RegionUS},
	{SetCanadaCountry, domain.RegionCanada},
}

// ExtractLocationDetail scans for a place name. Like every detector it
// matches substrings, so short tokens such as "eu" also fire inside other
// words ("museum").
func (d *Detector) ExtractLocationDetail(text string) (LocationMatch, bool) {
	n := Normalize(text)
	for _, step := range locationOrder {
		if p, ok := d.book.Set(step.set).Match(n); ok {
			return LocationMatch{Region: step.region, Detail: p}, true
		}
	}
	return LocationMatch{}, false
}

// ClassifyRelationshipGoal checks casual phrases before serious ones.
func (d *Detector) ClassifyRelationshipGoal(text string) domain.RelationshipGoal {
	n := Normalize(text)
	switch {
	case d.book.Set(SetRelationshipCasual).Contains(n):
		return domain.GoalCasual
	case d.book.Set(SetRelationshipSerious).Contains(n):
		return domain.GoalSerious
	}
	return domain.GoalUnresolved
}

// ClassifyFitness checks unfit, then average, then fit, so "not fit" wins over "fit".
func (d *Detector) ClassifyFitness(text string) domain.FitnessLevel {
	n := Normalize(text)
	switch {
	case d.book.Set(SetFitnessUnfit).Contains(n):
		return domain.FitnessUnfit
	case d.book.Set(SetFitnessAverage).Contains(n):
		return domain.FitnessAverage
	case d.book.Set(SetFitnessFit).Contains(n):
		return domain.FitnessFit
	}
	return domain.FitnessUnresolved
}

// HasFitnessLevel reports whether any fitness bucket matches.
func (d *Detector) HasFitnessLevel(text string) bool {
	return d.ClassifyFitness(text) != domain.FitnessUnresolved
}

// GetFinancialBucket checks low, then mid, then high.
func (d *Detector) GetFinancialBucket(text string) domain.FinancialBucket {
	n := Normalize(text)
	switch {
	case d.book.Set(SetFinanceLow).Contains(n):
		return domain.BucketLow
	case d.book.Set(SetFinanceMid).Contains(n):
		return domain.BucketMid
	case d.book.Set(SetFinanceHigh).Contains(n):
		return domain.BucketHigh
	}
	return domain.BucketUnresolved
}

const (
	minAge = 18
	maxAge = 99
)

// ExtractAge returns the first whole-number token between 18 and 99.
func ExtractAge(text string) (int, bool) {
	for _, tok := range strings.Fields(Normalize(text)) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n >= minAge && n <= maxAge {
			return n, true
		}
	}
	return 0, false
}

func ExtractLocationDetail(text string) (LocationMatch, bool) {
	return defaultDetector.ExtractLocationDetail(text)
}

func ClassifyRelationshipGoal(text string) domain.RelationshipGoal {
	return defaultDetector.ClassifyRelationshipGoal(text)
}

func ClassifyFitness(text string) domain.FitnessLevel { return defaultDetector.ClassifyFitness(text) }
func HasFitnessLevel(text string) bool                { return defaultDetector.HasFitnessLevel(text) }

func GetFinancialBucket(text string) domain.FinancialBucket {
	return defaultDetector.GetFinancialBucket(text)
}
