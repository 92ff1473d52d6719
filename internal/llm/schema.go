package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildExtractionJSONSchema returns the schema a sanitized reply must satisfy.
// Every field is optional: a reply without items is a valid empty extraction.
func BuildExtractionJSONSchema() map[string]any {
	str := map[string]any{"type": "string", "minLength": 1}
	strList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	itemProps := map[string]any{}
	for k := range itemStringKeys {
		itemProps[k] = str
	}
	for k := range itemListKeys {
		itemProps[k] = strList
	}
	itemProps["pagina_origem"] = map[string]any{"type": "integer", "minimum": 0}
	for k, keys := range itemObjectKeys {
		itemProps[k] = objectOf(keys)
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"numero_documento":  str,
			"total_items":       map[string]any{"type": "integer", "minimum": 0},
			"extraction_method": str,
			"processed_at":      str,
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           itemProps,
				},
			},
		},
	}
}

func objectOf(keys map[string]struct{}) map[string]any {
	props := map[string]any{}
	for k := range keys {
		props[k] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema compiles schemaMap and validates data against it.
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
