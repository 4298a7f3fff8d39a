// internal/matching/pipeline.go
package matching

import (
	"bodyscan-workers/internal/models"
)

// PipelineConfig holds the BMI relaxation tuning constants. The original
// values were not observable upstream; these defaults are pinned by
// regression tests and overridable through configuration.
type PipelineConfig struct {
	// BMITolerance is how much the acceptance window widens per relaxation
	// step, on each side.
	BMITolerance float64
	// BMIMaxRelaxations bounds the number of relaxation steps.
	BMIMaxRelaxations int
}

// PipelineResult is the surviving candidate set plus the recorded funnel.
type PipelineResult struct {
	Candidates []models.Archetype
	Stats      models.FilteringStats
}

// FilterCandidates applies the ordered categorical filters to the full
// catalog. Sex and muscularity gates are hard: they are never relaxed, even
// when they produce an empty set. The BMI gate relaxes a bounded number of
// times. Morphotype and semantic-label gates are advisory: when one would
// empty the set it is skipped instead.
//
// An empty final set is not an error here; the caller classifies it as a
// logical failure.
func FilterCandidates(catalog []models.Archetype, profile models.UserQueryProfile, cfg PipelineConfig) PipelineResult {
	stats := models.FilteringStats{Total: len(catalog)}

	survivors := filterBySex(catalog, profile.SexCode)
	stats.AfterSexFilter = len(survivors)

	survivors = filterByMuscularity(survivors, profile.Semantic.Muscularity)
	stats.AfterMuscularGating = len(survivors)

	survivors, relaxSteps := filterByBMI(survivors, profile.EstimatedBMI, cfg)
	stats.AfterBMIFilter = len(survivors)
	stats.BMIRelaxationApplied = relaxSteps > 0
	stats.BMIRelaxationSteps = relaxSteps

	survivors = softFilter(survivors, func(a models.Archetype) bool {
		return a.MorphotypeCode == profile.Semantic.Morphotype
	})
	stats.AfterMorphotypeFilter = len(survivors)

	survivors = softFilter(survivors, func(a models.Archetype) bool {
		return a.ObesityCategory == profile.Semantic.Obesity && a.Level == profile.Semantic.Level
	})
	stats.AfterSemanticFilter = len(survivors)

	return PipelineResult{Candidates: survivors, Stats: stats}
}

func filterBySex(in []models.Archetype, sex models.SexCode) []models.Archetype {
	var out []models.Archetype
	for _, a := range in {
		if a.SexCode == sex {
			out = append(out, a)
		}
	}
	return out
}

// filterByMuscularity enforces the zero-muscular-mismatch guarantee: only
// archetypes sharing the user's exact muscularity category survive.
func filterByMuscularity(in []models.Archetype, category string) []models.Archetype {
	var out []models.Archetype
	for _, a := range in {
		if a.MuscularityCategory == category {
			out = append(out, a)
		}
	}
	return out
}

// filterByBMI keeps archetypes whose BMI range contains the estimate. When
// that empties the set the acceptance window widens by cfg.BMITolerance per
// step, up to cfg.BMIMaxRelaxations steps. Returns the survivors and the
// number of relaxation steps that were needed (0 when the strict pass hit).
func filterByBMI(in []models.Archetype, bmi float64, cfg PipelineConfig) ([]models.Archetype, int) {
	if len(in) == 0 {
		return nil, 0
	}
	for step := 0; step <= cfg.BMIMaxRelaxations; step++ {
		tol := float64(step) * cfg.BMITolerance
		var out []models.Archetype
		for _, a := range in {
			if a.BMIRange.ContainsWithTolerance(bmi, tol) {
				out = append(out, a)
			}
		}
		if len(out) > 0 {
			return out, step
		}
	}
	return nil, cfg.BMIMaxRelaxations
}

// softFilter applies pred but keeps the input unchanged when the filtered
// set would be empty.
func softFilter(in []models.Archetype, pred func(models.Archetype) bool) []models.Archetype {
	if len(in) == 0 {
		return in
	}
	var out []models.Archetype
	for _, a := range in {
		if pred(a) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return in
	}
	return out
}
