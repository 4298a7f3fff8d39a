// internal/workers/bodyscan/validate-scan-data/handler_test.go
package validatescandata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bodyscan-workers/internal/common/errors"
	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/models"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func validRequest() map[string]interface{} {
	return map[string]interface{}{
		"matching_config": map[string]interface{}{
			"gender": "masculine",
			"limit":  float64(3),
		},
		"extracted_data": map[string]interface{}{
			"estimated_bmi": 23.4,
		},
		"semantic_profile": map[string]interface{}{
			"obesity":     "Normal",
			"muscularity": "Normal",
			"level":       "Intermediate",
			"morphotype":  "rectangle",
		},
		"user_semantic_indices": map[string]interface{}{
			"morph_index":  0.42,
			"muscle_index": 0.61,
		},
	}
}

func TestExecute_ValidRequestProducesProfile(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, out.IsValid)
	require.NotNil(t, out.UserQueryProfile)

	p := out.UserQueryProfile
	assert.Equal(t, models.SexMasculine, p.SexCode)
	assert.InDelta(t, 23.4, p.EstimatedBMI, 1e-9)
	assert.InDelta(t, 0.42, p.MorphIndex, 1e-9)
	assert.InDelta(t, 0.61, p.MuscleIndex, 1e-9)
	assert.Equal(t, 3, p.RequestedLimit)
	assert.Equal(t, "Normal", p.Semantic.Muscularity)
	assert.Equal(t, "Normal", p.Semantic.Obesity)
	assert.Equal(t, "rectangle", p.Semantic.Morphotype)
}

func TestExecute_MissingLimitFallsBackToDefault(t *testing.T) {
	h := newTestHandler(t)

	req := validRequest()
	delete(req["matching_config"].(map[string]interface{}), "limit")

	out, err := h.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, h.config.DefaultLimit, out.UserQueryProfile.RequestedLimit)
}

func TestExecute_SemanticProfileIsOptional(t *testing.T) {
	h := newTestHandler(t)

	req := validRequest()
	delete(req, "semantic_profile")

	out, err := h.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, out.UserQueryProfile.Semantic.Obesity)
}

func TestExecute_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req map[string]interface{})
	}{
		{
			name:   "missing matching_config",
			mutate: func(req map[string]interface{}) { delete(req, "matching_config") },
		},
		{
			name: "missing gender",
			mutate: func(req map[string]interface{}) {
				delete(req["matching_config"].(map[string]interface{}), "gender")
			},
		},
		{
			name: "unknown gender value",
			mutate: func(req map[string]interface{}) {
				req["matching_config"].(map[string]interface{})["gender"] = "other"
			},
		},
		{
			name: "missing estimated_bmi",
			mutate: func(req map[string]interface{}) {
				delete(req["extracted_data"].(map[string]interface{}), "estimated_bmi")
			},
		},
		{
			name: "estimated_bmi wrong type",
			mutate: func(req map[string]interface{}) {
				req["extracted_data"].(map[string]interface{})["estimated_bmi"] = "23.4"
			},
		},
		{
			name:   "missing indices section",
			mutate: func(req map[string]interface{}) { delete(req, "user_semantic_indices") },
		},
		{
			name: "missing muscle_index",
			mutate: func(req map[string]interface{}) {
				delete(req["user_semantic_indices"].(map[string]interface{}), "muscle_index")
			},
		},
		{
			name: "morph_index wrong type",
			mutate: func(req map[string]interface{}) {
				req["user_semantic_indices"].(map[string]interface{})["morph_index"] = true
			},
		},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			out, err := h.Execute(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, out)

			stdErr, ok := err.(*apperrors.StandardError)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}
