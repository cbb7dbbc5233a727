package openai

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stockOpener matches the filler the models like to open with.
var stockOpener = regexp.MustCompile(`(?i)^(hey|got it|sure thing|makes sense|totally)[.,\s]+(\.\.\.)?\s*`)

// Spaced forms come first so "a — b" becomes "a, b".
var dashes = strings.NewReplacer(" — ", ", ", "—", ", ", " - ", ", ")

// CleanFormatting makes a reply read like a text message: stock openers are
// stripped, dashes become commas and the first letter is lowercased.
func CleanFormatting(text string) string {
	if text == "" {
		return ""
	}

	text = stockOpener.ReplaceAllString(text, "")
	text = dashes.Replace(text)

	if r, size := utf8.DecodeRuneInString(text); r != utf8.RuneError {
		text = string(unicode.ToLower(r)) + text[size:]
	}

	return strings.TrimSpace(text)
}
