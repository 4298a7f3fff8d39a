// internal/matching/pipeline_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bodyscan-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func testPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BMITolerance:      0.5,
		BMIMaxRelaxations: 3,
	}
}

func testArchetype(id string, mutate ...func(*models.Archetype)) models.Archetype {
	a := models.Archetype{
		ID:                  id,
		Name:                "Archetype " + id,
		SexCode:             models.SexMasculine,
		BMIRange:            models.Range{Min: 20, Max: 25},
		ObesityCategory:     "Normal",
		MuscularityCategory: "Normal",
		Level:               "Intermediate",
		MorphotypeCode:      "rectangle",
		MorphValues:         map[string]float64{"thin": 0.2, "belly": 0.1},
		LimbMasses:          map[string]float64{"arm_mass": 1.0, "leg_mass": 1.1},
		MorphIndex:          0.5,
		MuscleIndex:         0.5,
	}
	for _, m := range mutate {
		m(&a)
	}
	return a
}

func testProfile(mutate ...func(*models.UserQueryProfile)) models.UserQueryProfile {
	p := models.UserQueryProfile{
		SexCode:      models.SexMasculine,
		EstimatedBMI: 22.5,
		Semantic: models.SemanticProfile{
			Obesity:     "Normal",
			Muscularity: "Normal",
			Level:       "Intermediate",
			Morphotype:  "rectangle",
		},
		MorphIndex:     0.5,
		MuscleIndex:    0.5,
		RequestedLimit: 5,
	}
	for _, m := range mutate {
		m(&p)
	}
	return p
}

func assertFunnelNonIncreasing(t *testing.T, s models.FilteringStats) {
	t.Helper()
	counters := []int{
		s.Total,
		s.AfterSexFilter,
		s.AfterMuscularGating,
		s.AfterBMIFilter,
		s.AfterMorphotypeFilter,
		s.AfterSemanticFilter,
		s.FinalSelected,
	}
	for i := 1; i < len(counters); i++ {
		assert.LessOrEqual(t, counters[i], counters[i-1], "funnel counter %d increased", i)
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestFilterCandidates_ExactMatch(t *testing.T) {
	catalog := []models.Archetype{
		testArchetype("a1"),
		testArchetype("a2"),
		testArchetype("a3", func(a *models.Archetype) { a.SexCode = models.SexFeminine }),
	}

	res := FilterCandidates(catalog, testProfile(), testPipelineConfig())

	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.AfterSexFilter)
	assert.Equal(t, 2, res.Stats.AfterSemanticFilter)
	assert.False(t, res.Stats.BMIRelaxationApplied)
	assertFunnelNonIncreasing(t, res.Stats)
}

func TestFilterCandidates_SexGateIsHard(t *testing.T) {
	catalog := []models.Archetype{
		testArchetype("f1", func(a *models.Archetype) { a.SexCode = models.SexFeminine }),
		testArchetype("f2", func(a *models.Archetype) { a.SexCode = models.SexFeminine }),
	}

	res := FilterCandidates(catalog, testProfile(), testPipelineConfig())

	assert.Empty(t, res.Candidates)
	assert.Equal(t, 0, res.Stats.AfterSexFilter)
	assert.Equal(t, 0, res.Stats.AfterSemanticFilter)
	assertFunnelNonIncreasing(t, res.Stats)
}

func TestFilterCandidates_MuscularGateNeverRelaxes(t *testing.T) {
	// Catalog has matching sex but no matching muscularity; the gate must
	// empty the set rather than loosen.
	catalog := []models.Archetype{
		testArchetype("a1", func(a *models.Archetype) { a.MuscularityCategory = "Normal" }),
		testArchetype("a2", func(a *models.Archetype) { a.MuscularityCategory = "Maigre" }),
	}
	profile := testProfile(func(p *models.UserQueryProfile) { p.Semantic.Muscularity = "Musclé" })

	res := FilterCandidates(catalog, profile, testPipelineConfig())

	assert.Empty(t, res.Candidates)
	assert.Equal(t, 2, res.Stats.AfterSexFilter)
	assert.Equal(t, 0, res.Stats.AfterMuscularGating)
}

func TestFilterCandidates_BMIRelaxation(t *testing.T) {
	tests := []struct {
		name          string
		estimatedBMI  float64
		wantSurvivors int
		wantRelaxed   bool
		wantSteps     int
	}{
		{"inside range, no relaxation", 22.0, 1, false, 0},
		{"one step out", 25.4, 1, true, 1},
		{"two steps out", 26.0, 1, true, 2},
		{"beyond relaxation bound", 30.0, 0, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := []models.Archetype{testArchetype("a1")} // BMI 20-25
			profile := testProfile(func(p *models.UserQueryProfile) { p.EstimatedBMI = tt.estimatedBMI })

			res := FilterCandidates(catalog, profile, testPipelineConfig())

			assert.Len(t, res.Candidates, tt.wantSurvivors)
			assert.Equal(t, tt.wantRelaxed, res.Stats.BMIRelaxationApplied)
			assert.Equal(t, tt.wantSteps, res.Stats.BMIRelaxationSteps)
			assertFunnelNonIncreasing(t, res.Stats)
		})
	}
}

func TestFilterCandidates_MorphotypeIsSoft(t *testing.T) {
	// No archetype shares the user's morphotype; the stage must skip instead
	// of emptying the set.
	catalog := []models.Archetype{
		testArchetype("a1", func(a *models.Archetype) { a.MorphotypeCode = "oval" }),
		testArchetype("a2", func(a *models.Archetype) { a.MorphotypeCode = "triangle" }),
	}

	res := FilterCandidates(catalog, testProfile(), testPipelineConfig())

	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, 2, res.Stats.AfterMorphotypeFilter)
}

func TestFilterCandidates_MorphotypeNarrowsWhenPossible(t *testing.T) {
	catalog := []models.Archetype{
		testArchetype("a1"),
		testArchetype("a2", func(a *models.Archetype) { a.MorphotypeCode = "oval" }),
	}

	res := FilterCandidates(catalog, testProfile(), testPipelineConfig())

	assert.Len(t, res.Candidates, 1)
	assert.Equal(t, "a1", res.Candidates[0].ID)
}

func TestFilterCandidates_SemanticFilterIsSoft(t *testing.T) {
	catalog := []models.Archetype{
		testArchetype("a1", func(a *models.Archetype) { a.ObesityCategory = "Surpoids" }),
	}

	res := FilterCandidates(catalog, testProfile(), testPipelineConfig())

	assert.Len(t, res.Candidates, 1)
	assert.Equal(t, 1, res.Stats.AfterSemanticFilter)
}

func TestFilterCandidates_SemanticFilterMatchesObesityAndLevel(t *testing.T) {
	catalog := []models.Archetype{
		testArchetype("a1"),
		testArchetype("a2", func(a *models.Archetype) { a.Level = "Avancé" }),
	}

	res := FilterCandidates(catalog, testProfile(), testPipelineConfig())

	assert.Len(t, res.Candidates, 1)
	assert.Equal(t, "a1", res.Candidates[0].ID)
}

func TestFilterCandidates_EmptyCatalog(t *testing.T) {
	res := FilterCandidates(nil, testProfile(), testPipelineConfig())

	assert.Empty(t, res.Candidates)
	assert.Equal(t, 0, res.Stats.Total)
	assert.False(t, res.Stats.BMIRelaxationApplied)
	assertFunnelNonIncreasing(t, res.Stats)
}
