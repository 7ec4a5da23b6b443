package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

var fenceCleaner = strings.NewReplacer(
	"```json", "",
	"```", "",
	"“", `"`, // smart double quotes
	"”", `"`,
	"‘", "'", // smart single quotes
	"’", "'",
)

// CleanJSON strips leftover code-fence markers and normalizes smart
// quotation marks to ASCII so the string has a chance of parsing.
func CleanJSON(s string) string {
	return strings.TrimSpace(fenceCleaner.Replace(s))
}

// moneyKeys are fields the model sometimes emits as numbers instead of the
// digit strings our schema wants.
var moneyKeys = []string{"price", "list_price", "wholesale_price", "wholesale_rate", "gross_margin"}

// allowedKeys is the schema property set; anything else the model invented
// is removed before validation.
var allowedKeys = map[string]struct{}{
	"category": {}, "product_name": {}, "manufacturer": {}, "model_number": {},
	"color": {}, "condition": {}, "price": {}, "supplier": {}, "list_price": {},
	"wholesale_price": {}, "wholesale_rate": {}, "gross_margin": {},
	"serial_number": {}, "purchase_date": {}, "notes": {},
}

// SanitizeRecordObject normalizes one decoded record object so it can pass
// the strict schema: drops null and unknown keys, coerces numeric money
// values to strings. Returns the cleaned object and the list of touched keys.
func SanitizeRecordObject(m map[string]any, logger *slog.Logger) (map[string]any, []string) {
	if logger == nil {
		logger = slog.Default()
	}
	var touched []string

	for k, v := range m {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			touched = append(touched, k+"(unknown)")
			continue
		}
		if v == nil {
			delete(m, k)
			touched = append(touched, k+"(null)")
		}
	}

	for _, k := range moneyKeys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			if t == float64(int64(t)) {
				m[k] = fmt.Sprintf("%d", int64(t))
			} else {
				m[k] = fmt.Sprintf("%v", t)
			}
			touched = append(touched, k+"(number)")
		case string:
			// leave strings alone; record post-processing coerces them
		default:
			delete(m, k)
			touched = append(touched, k+"(type)")
		}
	}

	if len(touched) > 0 {
		logger.Warn("llm.sanitize.applied", "touched", touched)
	}
	return m, touched
}

// DecodeRecordArray parses a cleaned JSON string into generic record
// objects. A top-level object is tolerated and wrapped.
func DecodeRecordArray(cleaned string) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return items, nil
	}
	var single map[string]any
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil {
		return []map[string]any{single}, nil
	}
	return nil, fmt.Errorf("decode record array: not a JSON array or object")
}
