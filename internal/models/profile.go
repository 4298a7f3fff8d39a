// internal/models/profile.go
package models

// SemanticProfile carries the categorical labels derived upstream from the
// body scan. All matching against these labels is exact string equality.
type SemanticProfile struct {
	Obesity     string `json:"obesity"`
	Muscularity string `json:"muscularity"`
	Level       string `json:"level"`
	Morphotype  string `json:"morphotype"`
}

// UserQueryProfile is the normalized matching request. Built once per request
// from caller input and never mutated afterwards.
type UserQueryProfile struct {
	SexCode        SexCode         `json:"sex_code"`
	EstimatedBMI   float64         `json:"estimated_bmi"`
	Semantic       SemanticProfile `json:"semantic_profile"`
	MorphIndex     float64         `json:"morph_index"`
	MuscleIndex    float64         `json:"muscle_index"`
	RequestedLimit int             `json:"requested_limit"`
}
