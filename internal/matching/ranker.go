// internal/matching/ranker.go
package matching

import (
	"sort"

	"bodyscan-workers/internal/models"
)

// RankerConfig holds the distance weighting and the default selection size.
type RankerConfig struct {
	MorphWeight  float64
	MuscleWeight float64
	DefaultLimit int
}

// Rank computes the weighted index distance for every surviving candidate,
// orders ascending and truncates to the requested limit. Ties keep catalog
// order (stable sort) so results are deterministic.
func Rank(pr PipelineResult, profile models.UserQueryProfile, cfg RankerConfig) models.SelectionResult {
	limit := profile.RequestedLimit
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}

	scored := make([]models.ScoredArchetype, 0, len(pr.Candidates))
	for _, a := range pr.Candidates {
		scored = append(scored, models.ScoredArchetype{
			Archetype: a,
			Distance:  distance(a, profile, cfg),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	stats := pr.Stats
	stats.FinalSelected = len(scored)

	return models.SelectionResult{
		Selected:       scored,
		Strategy:       strategyFor(stats),
		CoherenceScore: coherence(scored),
		Stats:          stats,
	}
}

func distance(a models.Archetype, profile models.UserQueryProfile, cfg RankerConfig) float64 {
	return cfg.MorphWeight*abs(profile.MorphIndex-a.MorphIndex) +
		cfg.MuscleWeight*abs(profile.MuscleIndex-a.MuscleIndex)
}

// coherence is a normalized inverse of the mean distance: 1 when every
// selected archetype sits exactly on the user's indices, approaching 0 as
// the mean distance grows. Empty selections score 0.
func coherence(selected []models.ScoredArchetype) float64 {
	if len(selected) == 0 {
		return 0
	}
	var sum float64
	for _, s := range selected {
		sum += s.Distance
	}
	mean := sum / float64(len(selected))
	return 1 / (1 + mean)
}

func strategyFor(stats models.FilteringStats) models.Strategy {
	switch {
	case stats.FinalSelected == 0:
		return models.StrategyLogicalFailure
	case stats.BMIRelaxationApplied:
		return models.StrategyBMIRelaxed
	default:
		return models.StrategyExact
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
