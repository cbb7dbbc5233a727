package signals

// Stage-exit gates. Each normalizes its input and ORs a few detectors.

// ShouldExitEntry reports a first message that skips small talk and goes
// straight to dating or feelings. Bare greetings never exit.
func (d *Detector) ShouldExitEntry(text string) bool {
	n := Normalize(text)
	if d.IsOrientationOnly(n) {
		return false
	}
	return d.HasDatingContext(n) || d.HasEmotionalSignal(n)
}

// ShouldExitRapport reports a social reply that already carries discovery content.
func (d *Detector) ShouldExitRapport(text string) bool {
	n := Normalize(text)
	return d.HasDatingContext(n) || d.HasEmotionalSignal(n) ||
		d.IsHelpSeeking(n) || d.HasSpecificScenario(n)
}

// ShouldExitProblemDiscovery reports that pattern digging is done: the user
// is stuck ("idk"), described a concrete scenario, asked for help, or is worn out.
func (d *Detector) ShouldExitProblemDiscovery(text string) bool {
	n := Normalize(text)
	return d.IsStallPhrase(n) || d.HasSpecificScenario(n) ||
		d.IsHelpSeeking(n) || d.HasExhaustion(n)
}

// ShouldExitCoachingTransition is the permission gate: a decline holds the
// stage, an affirmative or anything unmatched lets it advance.
func (d *Detector) ShouldExitCoachingTransition(text string) bool {
	return !d.IsNegative(Normalize(text))
}

func ShouldExitEntry(text string) bool   { return defaultDetector.ShouldExitEntry(text) }
func ShouldExitRapport(text string) bool { return defaultDetector.ShouldExitRapport(text) }
func ShouldExitProblemDiscovery(text string) bool {
	return defaultDetector.ShouldExitProblemDiscovery(text)
}
func ShouldExitCoachingTransition(text string) bool {
	return defaultDetector.ShouldExitCoachingTransition(text)
}
