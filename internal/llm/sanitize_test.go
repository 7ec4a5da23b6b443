package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	t.Run("strips fences", func(t *testing.T) {
		in := "```json\n[{\"a\":\"1\"}]\n```"
		assert.Equal(t, `[{"a":"1"}]`, CleanJSON(in))
	})

	t.Run("normalizes smart quotes", func(t *testing.T) {
		in := `[{“product_name”: “YAMAHA’s FG830”}]`
		assert.Equal(t, `[{"product_name": "YAMAHA's FG830"}]`, CleanJSON(in))
	})

	t.Run("clean input unchanged", func(t *testing.T) {
		in := `[{"a":"1"}]`
		assert.Equal(t, in, CleanJSON(in))
	})
}

func TestSanitizeRecordObject(t *testing.T) {
	t.Run("drops unknown and null keys", func(t *testing.T) {
		m := map[string]any{
			"product_name": "FG830",
			"confidence":   "high", // not a schema property
			"color":        nil,
		}
		got, touched := SanitizeRecordObject(m, nil)
		assert.Equal(t, map[string]any{"product_name": "FG830"}, got)
		assert.Len(t, touched, 2)
	})

	t.Run("coerces numeric money fields to strings", func(t *testing.T) {
		m := map[string]any{
			"product_name": "FG830",
			"price":        float64(45000),
			"list_price":   float64(49500.5),
		}
		got, touched := SanitizeRecordObject(m, nil)
		assert.Equal(t, "45000", got["price"])
		assert.Equal(t, "49500.5", got["list_price"])
		assert.NotEmpty(t, touched)
	})

	t.Run("string money fields untouched", func(t *testing.T) {
		m := map[string]any{"product_name": "FG830", "price": "¥45,000"}
		got, touched := SanitizeRecordObject(m, nil)
		assert.Equal(t, "¥45,000", got["price"])
		assert.Empty(t, touched)
	})

	t.Run("non-scalar money field dropped", func(t *testing.T) {
		m := map[string]any{"product_name": "FG830", "price": []any{"45000"}}
		got, _ := SanitizeRecordObject(m, nil)
		_, ok := got["price"]
		assert.False(t, ok)
	})
}

func TestDecodeRecordArray(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		items, err := DecodeRecordArray(`[{"a":"1"},{"b":"2"}]`)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("single object wrapped", func(t *testing.T) {
		items, err := DecodeRecordArray(`{"a":"1"}`)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0]["a"])
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeRecordArray("nope")
		assert.Error(t, err)
	})
}
