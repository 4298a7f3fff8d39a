// internal/workers/bodyscan/validate-scan-data/handler.go
package validatescandata

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "bodyscan-workers/internal/common/errors"
	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/common/validation"
	"bodyscan-workers/internal/models"
)

const (
	TaskType = "validate-scan-data"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job,
			apperrors.NewValidationFailedError("request is not a JSON object: "+err.Error()))
		return nil
	}

	output, err := h.execute(ctx, raw)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	h.completeJob(ctx, client, job, output)
	return nil
}

func (h *Handler) execute(_ context.Context, raw map[string]interface{}) (*Output, error) {
	result := validation.ValidateInput(raw, requestSchema())
	if !result.Valid {
		h.logger.Warn("request rejected", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return nil, apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	profile := buildProfile(raw, h.config.DefaultLimit)
	return &Output{
		IsValid:          true,
		UserQueryProfile: &profile,
	}, nil
}

// buildProfile assumes raw already passed schema validation: sections and
// required numerics are present with the right types.
func buildProfile(raw map[string]interface{}, defaultLimit int) models.UserQueryProfile {
	matching := section(raw, "matching_config")
	extracted := section(raw, "extracted_data")
	indices := section(raw, "user_semantic_indices")
	semantic := section(raw, "semantic_profile")

	limit := defaultLimit
	if v, ok := numberAt(matching, "limit"); ok && v >= 1 {
		limit = int(v)
	}

	bmi, _ := numberAt(extracted, "estimated_bmi")
	morph, _ := numberAt(indices, "morph_index")
	muscle, _ := numberAt(indices, "muscle_index")

	return models.UserQueryProfile{
		SexCode:      models.SexCode(stringAt(matching, "gender")),
		EstimatedBMI: bmi,
		Semantic: models.SemanticProfile{
			Obesity:     stringAt(semantic, "obesity"),
			Muscularity: stringAt(semantic, "muscularity"),
			Level:       stringAt(semantic, "level"),
			Morphotype:  stringAt(semantic, "morphotype"),
		},
		MorphIndex:     morph,
		MuscleIndex:    muscle,
		RequestedLimit: limit,
	}
}

func section(raw map[string]interface{}, key string) map[string]interface{} {
	if m, ok := raw[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func stringAt(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func numberAt(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute exposes the pure validation step for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, raw map[string]interface{}) (*Output, error) {
	return h.execute(ctx, raw)
}
