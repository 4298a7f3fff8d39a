// internal/workers/bodyscan/build-envelope/models.go
package buildenvelope

import "bodyscan-workers/internal/models"

// Input names the archetypes to rebuild an envelope from, for avatar
// re-generation flows that must not re-run matching.
type Input struct {
	SexCode      models.SexCode `json:"sex_code"`
	ArchetypeIDs []string       `json:"archetype_ids"`
}

type Output struct {
	K5Envelope      models.Envelope        `json:"k5_envelope"`
	MappingMetadata models.MappingMetadata `json:"mapping_metadata"`
	EnvelopeIssues  []string               `json:"envelope_issues,omitempty"`
}
