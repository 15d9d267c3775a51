// Package validation provides JSON schema validation for recipe ingestion
// payloads coming from the external admin panel.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const recipeSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"name": {"type": "string", "minLength": 1, "maxLength": 255},
		"country": {"type": "string", "maxLength": 100},
		"categories": {
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"maxItems": 20
		},
		"image_url": {"type": "string", "format": "uri"}
	},
	"additionalProperties": false
}`

// ValidationResult collects the schema violations for one payload.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// RecipeValidator validates ingestion payloads against the recipe schema.
type RecipeValidator struct {
	schema *gojsonschema.Schema
}

func NewRecipeValidator() (*RecipeValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recipeSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile recipe schema: %w", err)
	}
	return &RecipeValidator{schema: schema}, nil
}

// ValidateRecipe checks a decoded JSON document (map or struct) against the
// recipe ingestion schema.
func (v *RecipeValidator) ValidateRecipe(document interface{}) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, desc.String())
	}
	return out
}
