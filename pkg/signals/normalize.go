package signals

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// apostrophes folds typographic apostrophes into the ASCII one. NFKD has no
// compatibility mapping for them, so without this "don’t" would split.
var apostrophes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"ʼ", "'",
	"´", "'",
	"`", "'",
)

// Normalize prepares raw user text for phrase matching:
// compatibility decomposition, lowercasing, every rune that is not a letter,
// digit, underscore, whitespace or apostrophe replaced by a space, then
// whitespace collapsed and trimmed. Combining marks left by the
// decomposition are dropped rather than turned into spaces, so "québec"
// becomes "quebec" and not "que bec". This deliberately differs from a plain
// non-word-to-space pass and lets accented place names match their phrases.
//
// Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKD.String(apostrophes.Replace(text))
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '\'':
			b.WriteRune(r)
			space = false
		default:
			// whitespace and everything else collapse into one separator
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// lower is the lighter folding some detectors use instead of Normalize.
func lower(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
