package signals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPhrasebook_Valid(t *testing.T) {
	book := DefaultPhrasebook()
	require.NoError(t, book.Validate())
	for _, name := range requiredSets {
		assert.Contains(t, book.Names(), name)
	}
}

func TestPhrasebook_NormalizesOnLoad(t *testing.T) {
	book, err := ParsePhrasebook([]byte(`
sets:
  greeting: ["  Hey-There ", "", "???"]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"hey there"}, book.Set("greeting").Phrases())
}

func TestPhrasebook_ValidateMissing(t *testing.T) {
	book, err := ParsePhrasebook([]byte(`sets: {abusive: [x]}`))
	require.NoError(t, err)
	err = book.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dating")
	assert.NotContains(t, err.Error(), "abusive,")
}

func TestParsePhrasebook_InvalidYAML(t *testing.T) {
	_, err := ParsePhrasebook([]byte("sets: [unclosed"))
	assert.Error(t, err)
}

func TestLoadPhrasebook_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sets:\n  abusive: [heck]\n"), 0o644))

	book, err := LoadPhrasebook(path)
	require.NoError(t, err)

	d := NewDetector(book)
	assert.True(t, d.IsAbusive("oh heck"))
	assert.False(t, d.IsAbusive("fuck off"))
	assert.True(t, d.HasDatingContext("dating"), "untouched sets come from the defaults")
}

func TestLoadPhrasebook_EmptyRequiredSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sets:\n  abusive: []\n"), 0o644))

	_, err := LoadPhrasebook(path)
	assert.ErrorContains(t, err, "abusive")
}

func TestLoadPhrasebook_MissingFile(t *testing.T) {
	_, err := LoadPhrasebook(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPhraseSet_MatchIsSubstring(t *testing.T) {
	book, err := ParsePhrasebook([]byte("sets:\n  s: [eu, new york]\n"))
	require.NoError(t, err)
	s := book.Set("s")

	p, ok := s.Match("museum")
	assert.True(t, ok)
	assert.Equal(t, "eu", p)
	p, ok = s.Match("from new york city")
	assert.True(t, ok)
	assert.Equal(t, "new york", p)
	_, ok = s.Match("")
	assert.False(t, ok)
}
