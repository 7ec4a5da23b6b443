package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gakkiten/inventory-tracker/constants"
)

func TestExtractSingleLine(t *testing.T) {
	e := NewExtractor(nil, nil)

	recs := e.Extract("YAMAHA FG830 ナチュラル 新品 45,000円")
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "YAMAHA", r.Manufacturer)
	assert.Equal(t, "FG830", r.ModelNumber)
	assert.Equal(t, "45000", r.Price)
	assert.Equal(t, "ナチュラル", r.Color)
	assert.Equal(t, string(constants.ConditionNew), r.Condition)
	assert.Contains(t, r.ProductName, "YAMAHA")
	assert.Contains(t, r.ProductName, "FG830")
	// no category keyword on the line
	assert.Equal(t, string(constants.Other), r.Category)
}

func TestExtractCategoryAndCondition(t *testing.T) {
	e := NewExtractor(nil, nil)

	t.Run("category keyword on line", func(t *testing.T) {
		recs := e.Extract("Fender Stratocaster エレキギター 中古 ¥120,000")
		require.Len(t, recs, 1)
		assert.Equal(t, string(constants.Guitar), recs[0].Category)
		assert.Equal(t, string(constants.ConditionUsed), recs[0].Condition)
	})

	t.Run("condition defaults to used", func(t *testing.T) {
		recs := e.Extract("Roland TD-17 ドラム 98000円")
		require.Len(t, recs, 1)
		assert.Equal(t, string(constants.ConditionUsed), recs[0].Condition)
	})

	t.Run("junk keyword", func(t *testing.T) {
		recs := e.Extract("Gibson Les Paul ギター ジャンク 35,000円")
		require.Len(t, recs, 1)
		assert.Equal(t, string(constants.ConditionJunk), recs[0].Condition)
	})
}

func TestExtractPriceNotations(t *testing.T) {
	e := NewExtractor(nil, nil)
	tests := []struct {
		line string
		want string
	}{
		{"YAMAHA FG830 ¥12,345", "12345"},
		{"YAMAHA FG830 12345円", "12345"},
		{"YAMAHA FG830 12,345¥", "12345"},
		{"YAMAHA FG830 ￥45,000", "45000"},
	}
	for _, tt := range tests {
		recs := e.Extract(tt.line)
		require.Len(t, recs, 1, "line %q", tt.line)
		assert.Equal(t, tt.want, recs[0].Price, "line %q", tt.line)
	}
}

func TestExtractSkipsLines(t *testing.T) {
	e := NewExtractor(nil, nil)

	t.Run("no brand", func(t *testing.T) {
		assert.Empty(t, e.Extract("アコースティックギター 45,000円"))
	})

	t.Run("brand without price", func(t *testing.T) {
		assert.Empty(t, e.Extract("YAMAHA FG830 ナチュラル"))
	})

	t.Run("blank and noise lines", func(t *testing.T) {
		assert.Empty(t, e.Extract("\n\n  \n請求書\n"))
	})
}

func TestExtractMultipleLines(t *testing.T) {
	e := NewExtractor(nil, nil)
	text := "YAMAHA FG830 ナチュラル 45,000円\n" +
		"Fender Jazz Bass ベース ¥135,000\n" +
		"YAMAHA FG830 ナチュラル 45,000円\n" // duplicate line
	recs := e.Extract(text)
	require.Len(t, recs, 2)
	assert.Equal(t, "YAMAHA", recs[0].Manufacturer)
	assert.Equal(t, "Fender", recs[1].Manufacturer)
	assert.Equal(t, string(constants.Bass), recs[1].Category)
}

func TestExtractModelPicksLongestToken(t *testing.T) {
	e := NewExtractor(nil, nil)
	recs := e.Extract("KORG microKORG XL+ シンセ synth 52,800円")
	require.Len(t, recs, 1)
	assert.Equal(t, "microKORG", recs[0].ModelNumber)
}
