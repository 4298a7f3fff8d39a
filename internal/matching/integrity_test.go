// internal/matching/integrity_test.go
package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodyscan-workers/internal/models"
)

func validEnvelope() models.Envelope {
	return models.Envelope{
		ShapeParams: map[string]models.EnvelopeRange{
			"thin": {Min: 0.06, Max: 0.54, ArchetypeMin: 0.1, ArchetypeMax: 0.5, Source: models.RangeSourceArchetypes},
		},
		LimbMasses: map[string]models.EnvelopeRange{
			"arm_mass": {Min: 0.9, Max: 1.2, ArchetypeMin: 0.95, ArchetypeMax: 1.15, Source: models.RangeSourceArchetypes},
		},
		Metadata: models.EnvelopeMetadata{EnvelopeID: "env-1", Version: "k5-v1"},
	}
}

func TestValidateEnvelope_ValidIsUntouched(t *testing.T) {
	report := ValidateEnvelope(validEnvelope())

	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
	assert.Nil(t, report.Corrected)
}

func TestValidateEnvelope_Idempotent(t *testing.T) {
	env := validEnvelope()
	env.ShapeParams["bad"] = models.EnvelopeRange{Min: 0.8, Max: 0.2, Source: models.RangeSourceArchetypes}

	first := ValidateEnvelope(env)
	require.NotNil(t, first.Corrected)

	second := ValidateEnvelope(*first.Corrected)
	assert.True(t, second.Valid)
	assert.Nil(t, second.Corrected)
}

func TestValidateEnvelope_SwapsInvertedRange(t *testing.T) {
	env := validEnvelope()
	env.ShapeParams["inverted"] = models.EnvelopeRange{Min: 0.9, Max: -0.3, Source: models.RangeSourceArchetypes}

	report := ValidateEnvelope(env)

	require.False(t, report.Valid)
	require.NotNil(t, report.Corrected)
	fixed := report.Corrected.ShapeParams["inverted"]
	assert.Equal(t, -0.3, fixed.Min)
	assert.Equal(t, 0.9, fixed.Max)
	assert.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "shape_params.inverted")
}

func TestValidateEnvelope_RepairsNonFiniteBounds(t *testing.T) {
	tests := []struct {
		name    string
		class   string
		r       models.EnvelopeRange
		wantMin float64
		wantMax float64
	}{
		{"NaN shape min", "shape", models.EnvelopeRange{Min: math.NaN(), Max: 0.5}, -1, 0.5},
		{"Inf shape max", "shape", models.EnvelopeRange{Min: -0.2, Max: math.Inf(1)}, -0.2, 1},
		{"both shape bounds", "shape", models.EnvelopeRange{Min: math.Inf(-1), Max: math.NaN()}, -1, 1},
		{"NaN limb min", "limb", models.EnvelopeRange{Min: math.NaN(), Max: 1.1}, 0.8, 1.1},
		{"Inf limb max", "limb", models.EnvelopeRange{Min: 0.9, Max: math.Inf(1)}, 0.9, 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			if tt.class == "shape" {
				env.ShapeParams["broken"] = tt.r
			} else {
				env.LimbMasses["broken"] = tt.r
			}

			report := ValidateEnvelope(env)

			require.False(t, report.Valid)
			require.NotNil(t, report.Corrected)
			var fixed models.EnvelopeRange
			if tt.class == "shape" {
				fixed = report.Corrected.ShapeParams["broken"]
			} else {
				fixed = report.Corrected.LimbMasses["broken"]
			}
			assert.Equal(t, tt.wantMin, fixed.Min)
			assert.Equal(t, tt.wantMax, fixed.Max)
		})
	}
}

func TestValidateEnvelope_AllBoundsFiniteAndOrderedAfterRepair(t *testing.T) {
	// Adversarial envelope: every malformation at once.
	env := models.Envelope{
		ShapeParams: map[string]models.EnvelopeRange{
			"a": {Min: math.NaN(), Max: math.NaN()},
			"b": {Min: 2, Max: -2},
			"c": {Min: math.Inf(1), Max: math.Inf(-1)},
		},
		LimbMasses: map[string]models.EnvelopeRange{
			"d": {Min: math.Inf(1), Max: 0.5},
			"e": {Min: 1.4, Max: 0.6},
		},
	}

	report := ValidateEnvelope(env)

	require.NotNil(t, report.Corrected)
	check := func(m map[string]models.EnvelopeRange) {
		for key, r := range m {
			assert.False(t, math.IsNaN(r.Min) || math.IsInf(r.Min, 0), "key %s min", key)
			assert.False(t, math.IsNaN(r.Max) || math.IsInf(r.Max, 0), "key %s max", key)
			assert.LessOrEqual(t, r.Min, r.Max, "key %s ordering", key)
		}
	}
	check(report.Corrected.ShapeParams)
	check(report.Corrected.LimbMasses)
	assert.False(t, report.Valid)
}

func TestValidateEnvelope_OriginalEnvelopeNotMutated(t *testing.T) {
	env := validEnvelope()
	env.ShapeParams["inverted"] = models.EnvelopeRange{Min: 1, Max: 0}

	_ = ValidateEnvelope(env)

	assert.Equal(t, 1.0, env.ShapeParams["inverted"].Min)
	assert.Equal(t, 0.0, env.ShapeParams["inverted"].Max)
}
