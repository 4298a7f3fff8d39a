// internal/workers/bodyscan/match-archetypes/config.go
package matcharchetypes

import (
	"time"

	"bodyscan-workers/internal/common/config"
	"bodyscan-workers/internal/matching"
)

type Config struct {
	Timeout  time.Duration
	Matching matching.Config
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		Matching: matching.DefaultConfig(),
	}
}

// ConfigFromService maps the service-level matching section onto the engine
// tuning constants.
func ConfigFromService(cfg *config.Config) *Config {
	m := matching.DefaultConfig()
	m.Pipeline.BMITolerance = cfg.Matching.BMITolerance
	m.Pipeline.BMIMaxRelaxations = cfg.Matching.BMIMaxRelaxations
	m.Ranker.MorphWeight = cfg.Matching.MorphWeight
	m.Ranker.MuscleWeight = cfg.Matching.MuscleWeight
	m.Ranker.DefaultLimit = cfg.Matching.DefaultLimit
	m.Envelope.ShapeMargin = cfg.Matching.ShapeMargin
	m.Envelope.LimbMargin = cfg.Matching.LimbMargin
	m.Envelope.Version = cfg.Matching.EnvelopeVersion

	return &Config{
		Timeout:  config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		Matching: m,
	}
}
