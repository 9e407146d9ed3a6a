// Package vocab loads the field vocabulary searched for on each page.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Default returns the built-in vocabulary.
func Default() []entity.FieldDefinition {
	fields := constants.LabFields()
	out := make([]entity.FieldDefinition, len(fields))
	for i, f := range fields {
		out[i] = entity.FieldDefinition{Field: f.Field, Synonyms: f.Synonyms}
	}
	return out
}

// FileSchema is the JSON Schema a vocabulary file must satisfy.
func FileSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"field"},
			"properties": map[string]any{
				"field": map[string]any{"type": "string", "minLength": 1},
				"synonyms": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	}
}

// Parse validates and decodes a vocabulary document. Field order is search order.
func Parse(data []byte) ([]entity.FieldDefinition, error) {
	if err := common.ValidateJSONAgainstSchema(FileSchema(), data); err != nil {
		return nil, err
	}
	var defs []entity.FieldDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if _, dup := seen[d.Field]; dup {
			return nil, common.NewAppError("VOCAB_ERROR", fmt.Sprintf("duplicate field %q", d.Field), common.ErrValidation)
		}
		seen[d.Field] = struct{}{}
	}
	return defs, nil
}

// LoadFile reads a vocabulary file; an empty path returns the built-in vocabulary.
func LoadFile(path string) ([]entity.FieldDefinition, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data)
}
