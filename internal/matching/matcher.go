// internal/matching/matcher.go
package matching

import (
	"bodyscan-workers/internal/models"
)

// Config aggregates the tuning constants for one matching run.
type Config struct {
	Pipeline PipelineConfig
	Ranker   RankerConfig
	Envelope EnvelopeConfig
}

// DefaultConfig returns the pinned tuning constants. Deployments override
// them through the matching section of the service configuration.
func DefaultConfig() Config {
	return Config{
		Pipeline: PipelineConfig{
			BMITolerance:      0.5,
			BMIMaxRelaxations: 3,
		},
		Ranker: RankerConfig{
			MorphWeight:  1.0,
			MuscleWeight: 1.0,
			DefaultLimit: 5,
		},
		Envelope: EnvelopeConfig{
			ShapeMargin: 0.10,
			LimbMargin:  0.05,
			Version:     "k5-v1",
		},
	}
}

// Result is one complete matching cycle: ranked selection, the (possibly
// corrected) envelope, and the integrity report for diagnostics.
type Result struct {
	Selection models.SelectionResult
	Envelope  models.Envelope
	Integrity IntegrityReport
}

// Match runs the full cycle over an already-loaded catalog and gender
// mapping: filter funnel, distance ranking, envelope construction, integrity
// validation. It is a pure function of its inputs; callers own all I/O and
// decide how to emit the diagnostics it returns.
//
// A zero-candidate outcome is returned as a well-formed Result with an empty
// selection and a fully fallback-sourced envelope, never as an error.
func Match(catalog []models.Archetype, mapping models.GenderMapping, profile models.UserQueryProfile, cfg Config) Result {
	filtered := FilterCandidates(catalog, profile, cfg.Pipeline)
	selection := Rank(filtered, profile, cfg.Ranker)

	envelope := BuildEnvelope(selection.Selected, mapping, cfg.Envelope)
	report := ValidateEnvelope(envelope)
	if report.Corrected != nil {
		envelope = *report.Corrected
	}

	return Result{
		Selection: selection,
		Envelope:  envelope,
		Integrity: report,
	}
}
