// internal/models/archetype.go
package models

// SexCode identifies the canonical sex of an archetype or request.
type SexCode string

const (
	SexMasculine SexCode = "masculine"
	SexFeminine  SexCode = "feminine"
)

// Valid reports whether the code is one of the two canonical values.
func (s SexCode) Valid() bool {
	return s == SexMasculine || s == SexFeminine
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the interval, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ContainsWithTolerance widens the interval by tol on both sides before testing.
func (r Range) ContainsWithTolerance(v, tol float64) bool {
	return v >= r.Min-tol && v <= r.Max+tol
}

// Archetype is one reference morphology row from the catalog. Instances are
// immutable once loaded; they live for the duration of a single request.
type Archetype struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	SexCode             SexCode            `json:"sex_code"`
	BMIRange            Range              `json:"bmi_range"`
	ObesityCategory     string             `json:"obesity_category"`
	MuscularityCategory string             `json:"muscularity_category"`
	Level               string             `json:"level"`
	MorphotypeCode      string             `json:"morphotype_code"`
	MorphValues         map[string]float64 `json:"morph_values"`
	LimbMasses          map[string]float64 `json:"limb_masses"`
	MorphIndex          float64            `json:"morph_index"`
	MuscleIndex         float64            `json:"muscle_index"`
}

// ScoredArchetype is an archetype annotated with its ranking distance.
type ScoredArchetype struct {
	Archetype
	Distance float64 `json:"distance"`
}

// MappingSource tags where a gender mapping came from.
type MappingSource string

const (
	MappingSourceCatalog  MappingSource = "catalog"
	MappingSourceFallback MappingSource = "hardcoded_fallback"
)

// GenderMapping holds the canonical per-sex ranges for every shape parameter
// and limb-mass parameter, plus the global index ranges.
type GenderMapping struct {
	SexCode          SexCode          `json:"sex_code"`
	MorphValueRanges map[string]Range `json:"morph_value_ranges"`
	LimbMassRanges   map[string]Range `json:"limb_mass_ranges"`
	BMIRange         Range            `json:"bmi_range"`
	HeightRange      Range            `json:"height_range"`
	WeightRange      Range            `json:"weight_range"`
	MorphIndexRange  Range            `json:"morph_index_range"`
	MuscleIndexRange Range            `json:"muscle_index_range"`
	Source           MappingSource    `json:"source"`
}

// MappingMetadata describes how the mapping for a request was obtained.
type MappingMetadata struct {
	MappingSource  MappingSource `json:"mapping_source"`
	FallbackUsed   bool          `json:"fallback_used"`
	FallbackReason string        `json:"fallback_reason,omitempty"`
}
