package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildUserPrompt(t *testing.T) {
	t.Run("embeds source text verbatim", func(t *testing.T) {
		p := BuildUserPrompt("YAMAHA FG830 ナチュラル 45,000円")
		assert.Contains(t, p, "YAMAHA FG830 ナチュラル 45,000円")
		assert.Contains(t, p, "推測や想像で情報を補完しない")
		assert.Contains(t, p, `"product_name"`)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, BuildUserPrompt("abc"), BuildUserPrompt("abc"))
	})

	t.Run("oversized text is cut on a rune boundary", func(t *testing.T) {
		text := strings.Repeat("あ", maxPromptText) // 3 bytes per rune
		p := BuildUserPrompt(text)
		assert.True(t, utf8.ValidString(p))
		assert.Less(t, len(p), len(text)+1000)
	})
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildProductJSONSchema()

	t.Run("clean record passes", func(t *testing.T) {
		data := []byte(`{"product_name":"FG830","price":"45000"}`)
		assert.NoError(t, ValidateJSONAgainstSchema(schema, data))
	})

	t.Run("numeric price fails", func(t *testing.T) {
		data := []byte(`{"product_name":"FG830","price":45000}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, data))
	})

	t.Run("unknown key fails", func(t *testing.T) {
		data := []byte(`{"product_name":"FG830","confidence":"high"}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, data))
	})
}
