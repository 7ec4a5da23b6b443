package lexicon

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gakkiten/inventory-tracker/constants"
)

// Lexicon holds the dictionaries driving the heuristic pattern extractor.
// Kept as data so the tables can be extended without touching the scanner,
// and unit-tested independently of it.
type Lexicon struct {
	// Brands are matched case-insensitively as substrings of a line.
	Brands []string `json:"brands"`
	// Categories maps a canonical category label to its trigger keywords.
	// Iterated in CategoryOrder; first match wins.
	Categories    map[string][]string `json:"categories"`
	CategoryOrder []string            `json:"category_order"`
	// Colors are matched case-insensitively; DefaultColor is used when no
	// color appears on the line.
	Colors       []string `json:"colors"`
	DefaultColor string   `json:"default_color"`
	// Conditions maps a canonical condition label to its trigger keywords.
	Conditions     map[string][]string `json:"conditions"`
	ConditionOrder []string            `json:"condition_order"`
}

// Default returns the built-in tables for the instrument-shop domain.
func Default() *Lexicon {
	return &Lexicon{
		Brands: []string{
			"YAMAHA", "Fender", "Gibson", "Martin", "Taylor", "Ibanez", "ESP", "PRS",
			"Roland", "KORG", "Casio", "Pearl", "Tama", "DW", "Ludwig", "Boss", "MXR",
			"Marshall", "Gretsch", "Epiphone", "Squier", "Jackson", "Schecter",
		},
		Categories: map[string][]string{
			string(constants.Guitar):        {"guitar", "ギター", "エレキギター", "アコギ", "strat", "les paul", "telecaster"},
			string(constants.Bass):          {"bass", "ベース", "エレキベース", "jazz bass", "precision"},
			string(constants.Drums):         {"drum", "ドラム", "ドラムセット", "snare", "cymbal", "kit"},
			string(constants.KeyboardPiano): {"piano", "keyboard", "ピアノ", "キーボード", "synth"},
			string(constants.Amplifier):     {"amp", "amplifier", "アンプ", "combo", "head"},
			string(constants.Effects):       {"effect", "pedal", "エフェクター", "distortion", "reverb", "delay"},
		},
		CategoryOrder: []string{
			string(constants.Guitar),
			string(constants.Bass),
			string(constants.Drums),
			string(constants.KeyboardPiano),
			string(constants.Amplifier),
			string(constants.Effects),
		},
		Colors: []string{
			"ナチュラル", "ブラック", "ホワイト", "レッド", "ブルー", "サンバースト",
		},
		DefaultColor: "ナチュラル",
		Conditions: map[string][]string{
			string(constants.ConditionNew):     {"新品", "未使用", "mint"},
			string(constants.ConditionDisplay): {"展示品", "展示"},
			string(constants.ConditionGradeB):  {"b級品", "b級"},
			string(constants.ConditionJunk):    {"ジャンク", "junk", "故障"},
			string(constants.ConditionUsed):    {"中古", "used"},
		},
		ConditionOrder: []string{
			string(constants.ConditionNew),
			string(constants.ConditionDisplay),
			string(constants.ConditionGradeB),
			string(constants.ConditionJunk),
			string(constants.ConditionUsed),
		},
	}
}

// LoadFile reads a lexicon from a JSON file. Missing sections fall back to
// the defaults so a partial override stays usable.
func LoadFile(path string) (*Lexicon, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	lex := Default()
	var override Lexicon
	if err := json.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if len(override.Brands) > 0 {
		lex.Brands = override.Brands
	}
	if len(override.Categories) > 0 {
		lex.Categories = override.Categories
		lex.CategoryOrder = override.CategoryOrder
	}
	if len(override.Colors) > 0 {
		lex.Colors = override.Colors
	}
	if override.DefaultColor != "" {
		lex.DefaultColor = override.DefaultColor
	}
	if len(override.Conditions) > 0 {
		lex.Conditions = override.Conditions
		lex.ConditionOrder = override.ConditionOrder
	}
	if err := lex.validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

func (l *Lexicon) validate() error {
	if len(l.Brands) == 0 {
		return fmt.Errorf("lexicon: brands table is empty")
	}
	for _, cat := range l.CategoryOrder {
		if _, ok := l.Categories[cat]; !ok {
			return fmt.Errorf("lexicon: category_order entry %q has no keyword set", cat)
		}
	}
	for _, cond := range l.ConditionOrder {
		if _, ok := l.Conditions[cond]; !ok {
			return fmt.Errorf("lexicon: condition_order entry %q has no keyword set", cond)
		}
	}
	return nil
}
