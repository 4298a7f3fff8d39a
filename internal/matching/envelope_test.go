// internal/matching/envelope_test.go
package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodyscan-workers/internal/models"
)

func testEnvelopeConfig() EnvelopeConfig {
	return EnvelopeConfig{
		ShapeMargin: 0.10,
		LimbMargin:  0.05,
		Version:     "k5-v1",
	}
}

func testMapping() models.GenderMapping {
	return models.GenderMapping{
		SexCode: models.SexMasculine,
		MorphValueRanges: map[string]models.Range{
			"thin":  {Min: -0.5, Max: 1.0},
			"belly": {Min: -1.0, Max: 1.0},
		},
		LimbMassRanges: map[string]models.Range{
			"arm_mass": {Min: 0.7, Max: 1.4},
		},
		BMIRange:         models.Range{Min: 15, Max: 45},
		MorphIndexRange:  models.Range{Min: 0, Max: 1},
		MuscleIndexRange: models.Range{Min: 0, Max: 1},
		Source:           models.MappingSourceCatalog,
	}
}

func scoredWith(id string, morphs map[string]float64, limbs map[string]float64) models.ScoredArchetype {
	a := testArchetype(id)
	a.MorphValues = morphs
	a.LimbMasses = limbs
	return models.ScoredArchetype{Archetype: a}
}

func TestBuildEnvelope_ArchetypeSourcedRangeWithMargin(t *testing.T) {
	// Three values 0.1/0.3/0.5 against catalog [-0.5, 1.0] with a 10% margin:
	// span 0.4, margin 0.04, bounds 0.06..0.54.
	selected := []models.ScoredArchetype{
		scoredWith("a1", map[string]float64{"thin": 0.1}, nil),
		scoredWith("a2", map[string]float64{"thin": 0.3}, nil),
		scoredWith("a3", map[string]float64{"thin": 0.5}, nil),
	}

	env := BuildEnvelope(selected, testMapping(), testEnvelopeConfig())

	r := env.ShapeParams["thin"]
	assert.Equal(t, models.RangeSourceArchetypes, r.Source)
	assert.InDelta(t, 0.1, r.ArchetypeMin, 1e-9)
	assert.InDelta(t, 0.5, r.ArchetypeMax, 1e-9)
	assert.InDelta(t, 0.06, r.Min, 1e-9)
	assert.InDelta(t, 0.54, r.Max, 1e-9)
}

func TestBuildEnvelope_ClipsToCatalogRange(t *testing.T) {
	selected := []models.ScoredArchetype{
		scoredWith("a1", map[string]float64{"thin": -0.49}, nil),
		scoredWith("a2", map[string]float64{"thin": 0.99}, nil),
	}

	env := BuildEnvelope(selected, testMapping(), testEnvelopeConfig())

	r := env.ShapeParams["thin"]
	catalog := testMapping().MorphValueRanges["thin"]
	assert.GreaterOrEqual(t, r.Min, catalog.Min)
	assert.LessOrEqual(t, r.Max, catalog.Max)
	assert.Equal(t, models.RangeSourceArchetypes, r.Source)
}

func TestBuildEnvelope_FallbackWhenTooFewDataPoints(t *testing.T) {
	tests := []struct {
		name     string
		selected []models.ScoredArchetype
	}{
		{"no archetypes", nil},
		{"single value", []models.ScoredArchetype{
			scoredWith("a1", map[string]float64{"thin": 0.3}, nil),
		}},
		{"identical values are one data point", []models.ScoredArchetype{
			scoredWith("a1", map[string]float64{"thin": 0.3}, nil),
			scoredWith("a2", map[string]float64{"thin": 0.3}, nil),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := BuildEnvelope(tt.selected, testMapping(), testEnvelopeConfig())

			r := env.ShapeParams["thin"]
			assert.Equal(t, models.RangeSourceCatalogFallback, r.Source)
			assert.Equal(t, -0.5, r.Min)
			assert.Equal(t, 1.0, r.Max)
			assert.Equal(t, -0.5, r.ArchetypeMin)
			assert.Equal(t, 1.0, r.ArchetypeMax)
		})
	}
}

func TestBuildEnvelope_MissingKeyOnOneArchetype(t *testing.T) {
	// a2 does not define "belly"; its absence must not disturb the key's
	// computation nor the other keys.
	selected := []models.ScoredArchetype{
		scoredWith("a1", map[string]float64{"thin": 0.1, "belly": 0.2}, nil),
		scoredWith("a2", map[string]float64{"thin": 0.4}, nil),
		scoredWith("a3", map[string]float64{"thin": 0.5, "belly": 0.6}, nil),
	}

	env := BuildEnvelope(selected, testMapping(), testEnvelopeConfig())

	assert.Equal(t, models.RangeSourceArchetypes, env.ShapeParams["thin"].Source)
	belly := env.ShapeParams["belly"]
	assert.Equal(t, models.RangeSourceArchetypes, belly.Source)
	assert.InDelta(t, 0.2, belly.ArchetypeMin, 1e-9)
	assert.InDelta(t, 0.6, belly.ArchetypeMax, 1e-9)
}

func TestBuildEnvelope_LimbMarginIsFivePercent(t *testing.T) {
	selected := []models.ScoredArchetype{
		scoredWith("a1", nil, map[string]float64{"arm_mass": 1.0}),
		scoredWith("a2", nil, map[string]float64{"arm_mass": 1.2}),
	}

	env := BuildEnvelope(selected, testMapping(), testEnvelopeConfig())

	r := env.LimbMasses["arm_mass"]
	// span 0.2, margin 0.01
	assert.InDelta(t, 0.99, r.Min, 1e-9)
	assert.InDelta(t, 1.21, r.Max, 1e-9)
}

func TestBuildEnvelope_Metadata(t *testing.T) {
	selected := []models.ScoredArchetype{
		scoredWith("a1", map[string]float64{"thin": 0.1}, nil),
		scoredWith("a2", map[string]float64{"thin": 0.4}, nil),
	}

	env := BuildEnvelope(selected, testMapping(), testEnvelopeConfig())

	md := env.Metadata
	assert.Equal(t, []string{"a1", "a2"}, md.ArchetypesUsed)
	assert.Equal(t, 3, md.TotalKeysProcessed)
	assert.Equal(t, 1, md.KeysWithArchetypeData)
	assert.Equal(t, 2, md.KeysUsingDBFallback)
	assert.Equal(t, "k5-v1", md.Version)
	assert.NotEmpty(t, md.EnvelopeID)

	ts, err := time.Parse(time.RFC3339, md.GeneratedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}
