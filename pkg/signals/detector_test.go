package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAbusive_SubstringSemantics(t *testing.T) {
	assert.True(t, IsAbusive(Normalize("fuck off")))
	assert.True(t, IsAbusive("go die"))
	// Substring matching is deliberate, false positives included.
	assert.True(t, IsAbusive("that was skillful"))
	assert.True(t, IsAbusive("i studied"))
	assert.False(t, IsAbusive("have a nice day"))
	assert.False(t, IsAbusive(""))
}

func TestIsOrientationOnly(t *testing.T) {
	assert.True(t, IsOrientationOnly("Hello"))
	assert.True(t, IsOrientationOnly("  are you a bot "))
	// Punctuation is not stripped: only lowering and trimming apply.
	assert.False(t, IsOrientationOnly("hello!"))
	assert.False(t, IsOrientationOnly("hello there friend"))
}

func TestIsStallResponse(t *testing.T) {
	assert.True(t, IsStallResponse(""))
	assert.True(t, IsStallResponse("ok"))
	assert.True(t, IsStallResponse("meh, not much"))
	assert.True(t, IsStallResponse("honestly i dont know what to tell you"))
	assert.False(t, IsStallResponse("she stopped replying after our second date"))
}

func TestConfirmsPattern_LowersOnly(t *testing.T) {
	assert.True(t, ConfirmsPattern("Yes, EXACTLY that"))
	assert.True(t, ConfirmsPattern("it happens ALL THE TIME"))
	// Curly apostrophes are not folded on this path.
	assert.False(t, ConfirmsPattern("that’s me"))
	assert.True(t, ConfirmsPattern("that's me"))
}

func TestAffirmativeNegative(t *testing.T) {
	assert.True(t, IsAffirmative("yes"))
	assert.True(t, IsAffirmative(Normalize("Yes please!")))
	assert.False(t, IsAffirmative("sure thing"))

	assert.True(t, IsNegative("no"))
	assert.True(t, IsNegative("i'm not interested"))
	assert.False(t, IsNegative("i know"), "bare 'no' only matches exactly")
}

func TestDetectorFamilies(t *testing.T) {
	assert.True(t, HasDatingContext("i'm on tinder"))
	assert.True(t, HasEmotionalSignal("i feel so lonely"))
	assert.True(t, IsOffTopic("what's the weather like"))
	assert.True(t, IsHelpSeeking("what should i do"))
	assert.True(t, HasSpecificScenario("last night she left me on read"))
	assert.True(t, HasExhaustion("honestly i'm exhausted"))
	assert.False(t, HasExhaustion("it's fine"))
}

func TestCustomPhrasebook(t *testing.T) {
	book, err := ParsePhrasebook([]byte(`
sets:
  abusive: [heck]
`))
	assert.NoError(t, err)

	d := NewDetector(book)
	assert.True(t, d.IsAbusive("oh heck"))
	assert.False(t, d.IsAbusive("fuck"))
	// Sets absent from the book never match.
	assert.False(t, d.HasDatingContext("dating"))
}
