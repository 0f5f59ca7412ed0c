package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The oracle's JSON answers are validated against these schemas before any
// field is trusted. Confidence enums accept the Spanish labels customs
// prompts elicit; normalizeConfidence folds them afterwards.
const estimateSchemaJSON = `{
	"type": "object",
	"properties": {
		"estimated_code": {"type": "string", "minLength": 2},
		"justification": {"type": "string"},
		"confidence": {"type": "string", "enum": ["high", "medium", "low", "alta", "media", "baja"]},
		"needs_deep_search": {"type": "boolean"},
		"alternatives": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"code": {"type": "string"},
					"reason": {"type": "string"}
				},
				"required": ["code"]
			}
		}
	},
	"required": ["estimated_code", "confidence"]
}`

const selectionSchemaJSON = `{
	"type": "object",
	"properties": {
		"chosen_index": {"type": "integer", "minimum": 1},
		"justification": {"type": "string"},
		"confidence": {"type": "string", "enum": ["high", "medium", "low", "alta", "media", "baja"]}
	},
	"required": ["chosen_index"]
}`

var (
	estimateSchema  = jsonschema.MustCompileString("estimate.json", estimateSchemaJSON)
	selectionSchema = jsonschema.MustCompileString("selection.json", selectionSchemaJSON)
)

func validateEstimate(raw string) error {
	return validateAgainst(estimateSchema, raw, "estimate")
}

func validateSelection(raw string) error {
	return validateAgainst(selectionSchema, raw, "selection")
}

func validateAgainst(schema *jsonschema.Schema, raw, kind string) error {
	var v any
	if err := json.Unmarshal([]byte(stripFences(raw)), &v); err != nil {
		return fmt.Errorf("%s response is not valid JSON: %w", kind, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%s response failed schema validation: %w", kind, err)
	}
	return nil
}
