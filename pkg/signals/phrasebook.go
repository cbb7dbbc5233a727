package signals

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// Names of the phrase sets the detectors depend on.
const (
	SetAbusive             = "abusive"
	SetDating              = "dating"
	SetEmotional           = "emotional"
	SetOrientation         = "orientation"
	SetOffTopic            = "off_topic"
	SetHelpSeeking         = "help_seeking"
	SetStall               = "stall"
	SetSpecificScenario    = "specific_scenario"
	SetExhaustion          = "exhaustion"
	SetPatternConfirmation = "pattern_confirmation"
	SetAffirmative         = "affirmative"
	SetAffirmativeExact    = "affirmative_exact"
	SetNegative            = "negative"
	SetNegativeExact       = "negative_exact"
	SetUSStates            = "us_states"
	SetCanadaProvinces     = "canada_provinces"
	SetEUCountries         = "eu_countries"
	SetEURegion            = "eu_region"
	SetUSCountry           = "us_country"
	SetCanadaCountry       = "canada_country"
	SetRelationshipSerious = "relationship_serious"
	SetRelationshipCasual  = "relationship_casual"
	SetFitnessFit          = "fitness_fit"
	SetFitnessAverage      = "fitness_average"
	SetFitnessUnfit        = "fitness_unfit"
	SetFinanceLow          = "finance_low"
	SetFinanceMid          = "finance_mid"
	SetFinanceHigh         = "finance_high"
)

var requiredSets = []string{
	SetAbusive, SetDating, SetEmotional, SetOrientation, SetOffTopic, SetHelpSeeking,
	SetStall, SetSpecificScenario, SetExhaustion, SetPatternConfirmation,
	SetAffirmative, SetAffirmativeExact, SetNegative, SetNegativeExact,
	SetUSStates, SetCanadaProvinces, SetEUCountries, SetEURegion, SetUSCountry, SetCanadaCountry,
	SetRelationshipSerious, SetRelationshipCasual,
	SetFitnessFit, SetFitnessAverage, SetFitnessUnfit,
	SetFinanceLow, SetFinanceMid, SetFinanceHigh,
}

// PhraseSet is an immutable, ordered list of normalized phrases.
type PhraseSet struct {
	name    string
	phrases []string
}

// Name returns the set's name in the phrasebook.
func (s PhraseSet) Name() string { return s.name }

// Phrases returns a copy of the phrases in file order.
func (s PhraseSet) Phrases() []string {
	out := make([]string, len(s.phrases))
	copy(out, s.phrases)
	return out
}

// Len returns the number of phrases.
func (s PhraseSet) Len() int { return len(s.phrases) }

// Contains reports whether any phrase occurs in text as a raw substring.
// "kill" matches "skillful": that is the intended semantics.
func (s PhraseSet) Contains(text string) bool {
	_, ok := s.Match(text)
	return ok
}

// Match returns the first phrase, in set order, that occurs in text.
func (s PhraseSet) Match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, p := range s.phrases {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// Equals reports whether text is exactly one of the phrases.
func (s PhraseSet) Equals(text string) bool {
	for _, p := range s.phrases {
		if text == p {
			return true
		}
	}
	return false
}

// Phrasebook is a named collection of phrase sets. It is immutable once built
// and safe for concurrent use.
type Phrasebook struct {
	sets map[string]PhraseSet
}

type phraseFile struct {
	Sets map[string][]string `yaml:"sets"`
}

// ParsePhrasebook builds a phrasebook from YAML. Phrases are normalized and
// blank entries dropped. It does not check for required sets; see Validate.
func ParsePhrasebook(data []byte) (*Phrasebook, error) {
	var f phraseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse phrasebook: %w", err)
	}

	book := &Phrasebook{sets: make(map[string]PhraseSet, len(f.Sets))}
	for name, raw := range f.Sets {
		phrases := make([]string, 0, len(raw))
		for _, p := range raw {
			if n := Normalize(p); n != "" {
				phrases = append(phrases, n)
			}
		}
		book.sets[name] = PhraseSet{name: name, phrases: phrases}
	}
	return book, nil
}

// LoadPhrasebook reads an override file and layers it over the embedded
// defaults: every set present in the file replaces the default set.
func LoadPhrasebook(path string) (*Phrasebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phrasebook: %w", err)
	}

	override, err := ParsePhrasebook(data)
	if err != nil {
		return nil, err
	}

	merged := DefaultPhrasebook().merge(override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

var defaultBook = sync.OnceValue(func() *Phrasebook {
	book, err := ParsePhrasebook(defaultPhrases)
	if err != nil {
		panic(fmt.Sprintf("signals: embedded phrasebook is invalid: %v", err))
	}
	if err := book.Validate(); err != nil {
		panic(fmt.Sprintf("signals: embedded phrasebook is incomplete: %v", err))
	}
	return book
})

// DefaultPhrasebook returns the embedded phrasebook.
func DefaultPhrasebook() *Phrasebook {
	return defaultBook()
}

func (b *Phrasebook) merge(other *Phrasebook) *Phrasebook {
	out := &Phrasebook{sets: make(map[string]PhraseSet, len(b.sets))}
	for k, v := range b.sets {
		out.sets[k] = v
	}
	for k, v := range other.sets {
		out.sets[k] = v
	}
	return out
}

// Set returns the named set. Unknown names yield an empty set, which never matches.
func (b *Phrasebook) Set(name string) PhraseSet {
	if s, ok := b.sets[name]; ok {
		return s
	}
	return PhraseSet{name: name}
}

// Names lists the set names, sorted.
func (b *Phrasebook) Names() []string {
	names := make([]string, 0, len(b.sets))
	for name := range b.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every set the detectors rely on exists and is non-empty.
func (b *Phrasebook) Validate() error {
	var missing []string
	for _, name := range requiredSets {
		if b.Set(name).Len() == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("phrasebook is missing sets: %s", strings.Join(missing, ", "))
	}
	return nil
}
