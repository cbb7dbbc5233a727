package signals

import (
	"strings"
)

// stallTokenLimit is the longest reply, in tokens, still treated as a stall.
const stallTokenLimit = 4

// Detector evaluates text against a phrasebook. Methods expect normalized
// text unless documented otherwise.
type Detector struct {
	book *Phrasebook
}

// NewDetector creates a detector over the given phrasebook.
// A nil phrasebook selects the embedded default.
func NewDetector(book *Phrasebook) *Detector {
	if book == nil {
		book = DefaultPhrasebook()
	}
	return &Detector{book: book}
}

var defaultDetector = NewDetector(nil)

// Default returns the detector over the embedded phrasebook.
func Default() *Detector { return defaultDetector }

// Phrasebook returns the phrasebook backing the detector.
func (d *Detector) Phrasebook() *Phrasebook { return d.book }

func (d *Detector) IsAbusive(text string) bool {
	return d.book.Set(SetAbusive).Contains(text)
}

func (d *Detector) HasDatingContext(text string) bool {
	return d.book.Set(SetDating).Contains(text)
}

func (d *Detector) HasEmotionalSignal(text string) bool {
	return d.book.Set(SetEmotional).Contains(text)
}

func (d *Detector) IsOffTopic(text string) bool {
	return d.book.Set(SetOffTopic).Contains(text)
}

func (d *Detector) IsHelpSeeking(text string) bool {
	return d.book.Set(SetHelpSeeking).Contains(text)
}

func (d *Detector) HasSpecificScenario(text string) bool {
	return d.book.Set(SetSpecificScenario).Contains(text)
}

func (d *Detector) HasExhaustion(text string) bool {
	return d.book.Set(SetExhaustion).Contains(text)
}

// IsStallPhrase reports a non-committal answer such as "idk". In discovery
// it doubles as a request for guidance.
func (d *Detector) IsStallPhrase(text string) bool {
	return d.book.Set(SetStall).Contains(text)
}

// IsStallResponse reports a short or non-committal reply: at most four
// tokens after normalization, or a stall phrase.
func (d *Detector) IsStallResponse(text string) bool {
	n := Normalize(text)
	if len(strings.Fields(n)) <= stallTokenLimit {
		return true
	}
	return d.IsStallPhrase(n)
}

// IsOrientationOnly reports a bare greeting or "who are you". It compares the
// lowered, trimmed text exactly; it does not run the full normalizer.
func (d *Detector) IsOrientationOnly(text string) bool {
	return d.book.Set(SetOrientation).Equals(lower(text))
}

// ConfirmsPattern reports the user recognising a recurring pattern. Like
// IsOrientationOnly it works on lowered text, not normalized text.
func (d *Detector) ConfirmsPattern(text string) bool {
	return d.book.Set(SetPatternConfirmation).Contains(lower(text))
}

// IsAffirmative matches a short exact "yes" form or an affirmative phrase.
func (d *Detector) IsAffirmative(text string) bool {
	return d.book.Set(SetAffirmativeExact).Equals(text) || d.book.Set(SetAffirmative).Contains(text)
}

// IsNegative matches a short exact "no" form or a declining phrase.
func (d *Detector) IsNegative(text string) bool {
	return d.book.Set(SetNegativeExact).Equals(text) || d.book.Set(SetNegative).Contains(text)
}

// Package-level helpers over the default phrasebook.

func IsAbusive(text string) bool           { return defaultDetector.IsAbusive(text) }
func HasDatingContext(text string) bool    { return defaultDetector.HasDatingContext(text) }
func HasEmotionalSignal(text string) bool  { return defaultDetector.HasEmotionalSignal(text) }
func IsOffTopic(text string) bool          { return defaultDetector.IsOffTopic(text) }
func IsHelpSeeking(text string) bool       { return defaultDetector.IsHelpSeeking(text) }
func HasSpecificScenario(text string) bool { return defaultDetector.HasSpecificScenario(text) }
func HasExhaustion(text string) bool       { return defaultDetector.HasExhaustion(text) }
func IsStallResponse(text string) bool     { return defaultDetector.IsStallResponse(text) }
func IsOrientationOnly(text string) bool   { return defaultDetector.IsOrientationOnly(text) }
func ConfirmsPattern(text string) bool     { return defaultDetector.ConfirmsPattern(text) }
func IsAffirmative(text string) bool       { return defaultDetector.IsAffirmative(text) }
func IsNegative(text string) bool          { return defaultDetector.IsNegative(text) }
