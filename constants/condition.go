package constants

import "strings"

// Condition is the canonical item condition. Stable store-facing values.
type Condition string

const (
	ConditionNew     Condition = "新品"
	ConditionUsed    Condition = "中古"
	ConditionDisplay Condition = "展示品"
	ConditionGradeB  Condition = "B級品"
	ConditionJunk    Condition = "ジャンク"
)

var allConditions = []Condition{
	ConditionNew,
	ConditionUsed,
	ConditionDisplay,
	ConditionGradeB,
	ConditionJunk,
}

func ConditionsAsStrings() []string {
	result := make([]string, len(allConditions))
	for i, c := range allConditions {
		result[i] = string(c)
	}
	return result
}

// CanonicalizeCondition maps a free-form condition label onto the enum.
// Returns ConditionUsed and false when the label is unknown.
func CanonicalizeCondition(input string) (Condition, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return ConditionUsed, false
	}

	synonyms := map[string]Condition{
		"new":     ConditionNew,
		"mint":    ConditionNew,
		"未使用":     ConditionNew,
		"used":    ConditionUsed,
		"美品":      ConditionUsed,
		"中古良品":    ConditionUsed,
		"display": ConditionDisplay,
		"展示":      ConditionDisplay,
		"b級":      ConditionGradeB,
		"junk":    ConditionJunk,
		"broken":  ConditionJunk,
		"故障":      ConditionJunk,
	}
	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	for _, c := range allConditions {
		if normalized == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return ConditionUsed, false
}
