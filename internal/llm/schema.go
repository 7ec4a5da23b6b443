package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildProductJSONSchema returns the JSON-Schema (draft 2020-12 subset) one
// extracted record must satisfy. Every field is a string — money fields are
// digit strings in this system — and nothing outside the known set is
// allowed, which is what makes fabricated structure detectable.
func BuildProductJSONSchema() map[string]any {
	stringProp := map[string]any{"type": "string"}
	props := map[string]any{
		"category":        stringProp,
		"product_name":    stringProp,
		"manufacturer":    stringProp,
		"model_number":    stringProp,
		"color":           stringProp,
		"condition":       stringProp,
		"price":           stringProp,
		"supplier":        stringProp,
		"list_price":      stringProp,
		"wholesale_price": stringProp,
		"wholesale_rate":  stringProp,
		"gross_margin":    stringProp,
		"serial_number":   stringProp,
		"purchase_date":   stringProp,
		"notes":           stringProp,
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
