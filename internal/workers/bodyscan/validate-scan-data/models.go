// internal/workers/bodyscan/validate-scan-data/models.go
package validatescandata

import (
	"bodyscan-workers/internal/common/validation"
	"bodyscan-workers/internal/models"
)

// Input is the raw scan-matching request as submitted by the caller. The
// sections stay untyped so that every missing or mistyped field is reported
// through the schema validator instead of silently zeroing out.
type Input struct {
	MatchingConfig      map[string]interface{} `json:"matching_config"`
	ExtractedData       map[string]interface{} `json:"extracted_data"`
	SemanticProfile     map[string]interface{} `json:"semantic_profile"`
	UserSemanticIndices map[string]interface{} `json:"user_semantic_indices"`
}

type Output struct {
	IsValid          bool                         `json:"is_valid"`
	UserQueryProfile *models.UserQueryProfile     `json:"user_query_profile,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validation_errors,omitempty"`
}

func one() *float64 {
	v := 1.0
	return &v
}

// requestSchema describes the required request fields: sex, morph_index,
// muscle_index and estimated_bmi, plus the optional limit and semantic
// labels.
func requestSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"matching_config": {
				Type: "object",
				Properties: map[string]validation.Property{
					"gender": {Type: "string", Enum: []string{"masculine", "feminine"}},
					"limit":  {Type: "number", Minimum: one()},
				},
				Required: []string{"gender"},
			},
			"extracted_data": {
				Type: "object",
				Properties: map[string]validation.Property{
					"estimated_bmi": {Type: "number"},
				},
				Required: []string{"estimated_bmi"},
			},
			"user_semantic_indices": {
				Type: "object",
				Properties: map[string]validation.Property{
					"morph_index":  {Type: "number"},
					"muscle_index": {Type: "number"},
				},
				Required: []string{"morph_index", "muscle_index"},
			},
			"semantic_profile": {
				Type: "object",
				Properties: map[string]validation.Property{
					"obesity":     {Type: "string"},
					"muscularity": {Type: "string"},
					"level":       {Type: "string"},
					"morphotype":  {Type: "string"},
				},
			},
		},
		Required:             []string{"matching_config", "extracted_data", "user_semantic_indices"},
		AdditionalProperties: true,
	}
}
