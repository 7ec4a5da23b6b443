package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	lex := Default()
	require.NoError(t, lex.validate())

	assert.Contains(t, lex.Brands, "YAMAHA")
	assert.Equal(t, "ナチュラル", lex.DefaultColor)
	assert.NotEmpty(t, lex.CategoryOrder)
	for _, cat := range lex.CategoryOrder {
		assert.NotEmpty(t, lex.Categories[cat], "category %q has no keywords", cat)
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("partial override keeps defaults", func(t *testing.T) {
		path := writeLexicon(t, `{"brands": ["Suzuki", "Tokai"]}`)
		lex, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"Suzuki", "Tokai"}, lex.Brands)
		// untouched sections fall back to the built-ins
		assert.Equal(t, Default().CategoryOrder, lex.CategoryOrder)
		assert.Equal(t, "ナチュラル", lex.DefaultColor)
	})

	t.Run("inconsistent category override is rejected", func(t *testing.T) {
		path := writeLexicon(t, `{
			"categories": {"ギター": ["guitar"]},
			"category_order": ["ギター", "ベース"]
		}`)
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeLexicon(t, `{`)
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func writeLexicon(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexicon.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
