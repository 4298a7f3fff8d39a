// internal/workers/bodyscan/build-envelope/config.go
package buildenvelope

import (
	"time"

	"bodyscan-workers/internal/common/config"
	"bodyscan-workers/internal/matching"
)

type Config struct {
	Timeout  time.Duration
	Envelope matching.EnvelopeConfig
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		Envelope: matching.DefaultConfig().Envelope,
	}
}

func ConfigFromService(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		Envelope: matching.EnvelopeConfig{
			ShapeMargin: cfg.Matching.ShapeMargin,
			LimbMargin:  cfg.Matching.LimbMargin,
			Version:     cfg.Matching.EnvelopeVersion,
		},
	}
}
