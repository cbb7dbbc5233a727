package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", ""},
		{"Only Punctuation", "?!...", ""},
		{"Lowercase And Strip", "Hi, I need help with DATING!", "hi i need help with dating"},
		{"Curly Apostrophe", "don’t   stop", "don't stop"},
		{"Diacritics", "Québec", "quebec"},
		{"Ligature", "ﬁne", "fine"},
		{"Underscore Kept", "snake_case & tabs\t\n", "snake_case tabs"},
		{"Fullwidth", "ＴＥＸＡＳ", "texas"},
		{"Hyphen Splits", "long-term", "long term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  Hello   World  ",
		"I’m  from Montréal!!",
		"ＡＢＣ１２３ ﬁ",
		"emoji 😀 and ñ",
		"tab\tnew\nline",
		"'''",
		"İstanbul",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
