// internal/models/envelope.go
package models

// RangeSource tags the provenance of one envelope range.
type RangeSource string

const (
	RangeSourceArchetypes      RangeSource = "archetypes"
	RangeSourceCatalogFallback RangeSource = "catalog_fallback"
)

// EnvelopeRange is the per-parameter constraint handed to the downstream
// avatar refinement step. Min/Max are the effective bounds; ArchetypeMin/Max
// preserve the raw extremes observed across the selected archetypes.
type EnvelopeRange struct {
	Min          float64     `json:"min"`
	Max          float64     `json:"max"`
	ArchetypeMin float64     `json:"archetype_min"`
	ArchetypeMax float64     `json:"archetype_max"`
	Source       RangeSource `json:"source"`
}

// Envelope is the full set of per-parameter bounds for one request.
type Envelope struct {
	ShapeParams map[string]EnvelopeRange `json:"shape_params_envelope"`
	LimbMasses  map[string]EnvelopeRange `json:"limb_masses_envelope"`
	Metadata    EnvelopeMetadata         `json:"envelope_metadata"`
}

// EnvelopeMetadata is the data-quality signal attached to every envelope.
// A mostly-fallback envelope means the selected archetype set was too sparse
// or homogeneous to usefully constrain refinement.
type EnvelopeMetadata struct {
	EnvelopeID            string   `json:"envelope_id"`
	ArchetypesUsed        []string `json:"archetypes_used"`
	TotalKeysProcessed    int      `json:"total_keys_processed"`
	KeysWithArchetypeData int      `json:"keys_with_archetype_data"`
	KeysUsingDBFallback   int      `json:"keys_using_db_fallback"`
	GeneratedAt           string   `json:"envelope_generation_timestamp"`
	Version               string   `json:"envelope_version"`
}
