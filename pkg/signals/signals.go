package signals

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/setter/pkg/domain"
)

// Signals is everything the detectors say about one message. It is computed
// once per turn and handed to the transition engine.
type Signals struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	// RawLength counts runes of the raw message.
	RawLength int `json:"raw_length"`
	Tokens    int `json:"tokens"`

	Abusive          bool `json:"abusive"`
	DatingContext    bool `json:"dating_context"`
	Emotional        bool `json:"emotional"`
	OrientationOnly  bool `json:"orientation_only"`
	OffTopic         bool `json:"off_topic"`
	HelpSeeking      bool `json:"help_seeking"`
	SpecificScenario bool `json:"specific_scenario"`
	Exhaustion       bool `json:"exhaustion"`
	Stall            bool `json:"stall"`
	StallPhrase      bool `json:"stall_phrase"`
	ConfirmsPattern  bool `json:"confirms_pattern"`
	Affirmative      bool `json:"affirmative"`
	Negative         bool `json:"negative"`

	ExitEntry              bool `json:"exit_entry"`
	ExitRapport            bool `json:"exit_rapport"`
	ExitProblemDiscovery   bool `json:"exit_problem_discovery"`
	ExitCoachingTransition bool `json:"exit_coaching_transition"`

	Location         *LocationMatch          `json:"location,omitempty"`
	RelationshipGoal domain.RelationshipGoal `json:"relationship_goal,omitempty"`
	Fitness          domain.FitnessLevel     `json:"fitness,omitempty"`
	FinancialBucket  domain.FinancialBucket  `json:"financial_bucket,omitempty"`
	Age              int                     `json:"age,omitempty"`
}

// Empty reports whether the message had no content after normalization.
func (s Signals) Empty() bool { return s.Normalized == "" }

// Detect normalizes raw once and evaluates every detector.
func (d *Detector) Detect(raw string) Signals {
	n := Normalize(raw)
	s := Signals{
		Raw:        raw,
		Normalized: n,
		RawLength:  utf8.RuneCountInString(raw),
		Tokens:     len(strings.Fields(n)),

		Abusive:          d.IsAbusive(n),
		DatingContext:    d.HasDatingContext(n),
		Emotional:        d.HasEmotionalSignal(n),
		OrientationOnly:  d.IsOrientationOnly(n),
		OffTopic:         d.IsOffTopic(n),
		HelpSeeking:      d.IsHelpSeeking(n),
		SpecificScenario: d.HasSpecificScenario(n),
		Exhaustion:       d.HasExhaustion(n),
		Stall:            d.IsStallResponse(n),
		StallPhrase:      d.IsStallPhrase(n),
		ConfirmsPattern:  d.ConfirmsPattern(raw),
		Affirmative:      d.IsAffirmative(n),
		Negative:         d.IsNegative(n),

		ExitEntry:              d.ShouldExitEntry(n),
		ExitRapport:            d.ShouldExitRapport(n),
		ExitProblemDiscovery:   d.ShouldExitProblemDiscovery(n),
		ExitCoachingTransition: d.ShouldExitCoachingTransition(n),

		RelationshipGoal: d.ClassifyRelationshipGoal(n),
		Fitness:          d.ClassifyFitness(n),
		FinancialBucket:  d.GetFinancialBucket(n),
	}
	if loc, ok := d.ExtractLocationDetail(n); ok {
		s.Location = &loc
	}
	if age, ok := ExtractAge(n); ok {
		s.Age = age
	}
	return s
}

// Detect evaluates raw against the default phrasebook.
func Detect(raw string) Signals { return defaultDetector.Detect(raw) }
