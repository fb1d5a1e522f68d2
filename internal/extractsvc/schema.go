package extractsvc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildNotesJSONSchema returns the delivery-note response schema as a generic
// map. The vision model is prompted to produce exactly this shape, and every
// model reply is validated against it before the service answers.
//
// The unit pattern allows the empty string: an uncertain unit code comes back
// empty with a warning, never guessed.
func BuildNotesJSONSchema() map[string]any {
	note := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"datum", "aantal", "eenheid"},
		"properties": map[string]any{
			"datum":  map[string]any{"type": "string"},
			"aantal": map[string]any{"type": "string"},
			"eenheid": map[string]any{
				"type":    "string",
				"pattern": `^([A-Z][0-9]{2})?$`,
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"warnings": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"notes"},
		"properties": map[string]any{
			"notes": map[string]any{
				"type":  "array",
				"items": note,
			},
		},
	}
}

// compileNotesSchema compiles the schema once for the lifetime of a handler.
func compileNotesSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildNotesJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("notes.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("notes.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validatePayload checks raw model output against the compiled schema.
func validatePayload(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal model output: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("model output does not match schema: %w", err)
	}
	return nil
}
