package constants

import (
	"strings"
)

// Category is the canonical product category for an inventory item.
// Labels are the Japanese store-facing strings; they are stored verbatim.
type Category string

const (
	Guitar        Category = "ギター"
	Bass          Category = "ベース"
	Drums         Category = "ドラム"
	KeyboardPiano Category = "キーボード・ピアノ"
	WindInstr     Category = "管楽器"
	StringInstr   Category = "弦楽器"
	Amplifier     Category = "アンプ"
	Effects       Category = "エフェクター"
	Accessories   Category = "アクセサリー"
	Other         Category = "その他"
)

var allCategories = []Category{
	Guitar,
	Bass,
	Drums,
	KeyboardPiano,
	WindInstr,
	StringInstr,
	Amplifier,
	Effects,
	Accessories,
	Other,
}

func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func CategoriesAsStrings() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form label (English or Japanese) onto the enum.
// Returns Other and false when the label is unknown.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"guitar":     Guitar,
		"エレキギター":     Guitar,
		"アコギ":        Guitar,
		"bass":       Bass,
		"エレキベース":     Bass,
		"drum":       Drums,
		"drums":      Drums,
		"ドラムセット":     Drums,
		"piano":      KeyboardPiano,
		"keyboard":   KeyboardPiano,
		"ピアノ":        KeyboardPiano,
		"キーボード":      KeyboardPiano,
		"amp":        Amplifier,
		"amplifier":  Amplifier,
		"effect":     Effects,
		"pedal":      Effects,
		"accessory":  Accessories,
		"その他の楽器":     Other,
		"other":      Other,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
