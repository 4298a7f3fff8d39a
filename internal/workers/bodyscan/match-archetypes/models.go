// internal/workers/bodyscan/match-archetypes/models.go
package matcharchetypes

import "bodyscan-workers/internal/models"

const (
	StatusSuccess = "success"
	StatusNoMatch = "no_match"
)

// Input is the normalized request, usually produced upstream by the
// validate-scan-data worker.
type Input struct {
	UserQueryProfile models.UserQueryProfile `json:"user_query_profile"`
}

// Output is the full matching response. Logical failure keeps the same
// shape: empty selection, fallback-sourced envelope, status "no_match".
type Output struct {
	Status                 string                  `json:"status"`
	SelectedArchetypes     []models.ScoredArchetype `json:"selected_archetypes"`
	K5Envelope             models.Envelope         `json:"k5_envelope"`
	StrategyUsed           models.Strategy         `json:"strategy_used"`
	SemanticCoherenceScore float64                 `json:"semantic_coherence_score"`
	FilteringStats         models.FilteringStats   `json:"filtering_stats"`
	MappingMetadata        models.MappingMetadata  `json:"mapping_metadata"`
	UserSemanticProfile    models.UserQueryProfile `json:"user_semantic_profile"`
	EnvelopeIssues         []string                `json:"envelope_issues,omitempty"`
}
