// internal/workers/bodyscan/match-archetypes/handler.go
package matcharchetypes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "bodyscan-workers/internal/common/errors"
	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/common/metrics"
	"bodyscan-workers/internal/matching"
	"bodyscan-workers/internal/models"
)

const (
	TaskType = "match-archetypes"
)

// CatalogStore is the read side of the archetype catalog.
type CatalogStore interface {
	Archetypes(ctx context.Context) ([]models.Archetype, error)
}

// MappingResolver produces the per-sex gender mapping with provenance.
type MappingResolver interface {
	Resolve(ctx context.Context, sex models.SexCode) (models.GenderMapping, models.MappingMetadata, error)
}

type Handler struct {
	config       *Config
	catalog      CatalogStore
	mappings     MappingResolver
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, catalog CatalogStore, mappings MappingResolver, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		catalog:      catalog,
		mappings:     mappings,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeValidationFailed)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job,
			apperrors.NewValidationFailedError("parse input: "+err.Error()))
		return nil
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := string(apperrors.ErrCodeMatchingFailed)
		if stdErr, ok := err.(*apperrors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	h.completeJob(ctx, client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile := input.UserQueryProfile
	if !profile.SexCode.Valid() {
		return nil, apperrors.NewValidationFailedError("sex_code must be masculine or feminine")
	}

	mapping, mappingMeta, err := h.mappings.Resolve(ctx, profile.SexCode)
	if err != nil {
		return nil, err // MAPPING_UNAVAILABLE, already classified
	}
	if mappingMeta.FallbackUsed {
		metrics.MappingFallbacks.WithLabelValues(string(profile.SexCode)).Inc()
	}

	catalog, err := h.catalog.Archetypes(ctx)
	if err != nil {
		return nil, classifyCatalogError(err)
	}

	result := matching.Match(catalog, mapping, profile, h.config.Matching)

	metrics.MatchingSelections.WithLabelValues(string(result.Selection.Strategy)).Inc()
	if len(result.Integrity.Issues) > 0 {
		metrics.EnvelopeCorrections.Inc()
		h.logger.Warn("envelope corrected", map[string]interface{}{
			"issues": result.Integrity.Issues,
		})
	}

	status := StatusSuccess
	if len(result.Selection.Selected) == 0 {
		status = StatusNoMatch
		h.logger.Info("no archetypes survived filtering", map[string]interface{}{
			"sexCode":        profile.SexCode,
			"filteringStats": result.Selection.Stats,
		})
	}

	h.logger.Info("matching completed", map[string]interface{}{
		"status":        status,
		"strategy":      result.Selection.Strategy,
		"selected":      len(result.Selection.Selected),
		"coherence":     result.Selection.CoherenceScore,
		"mappingSource": mappingMeta.MappingSource,
	})

	selected := result.Selection.Selected
	if selected == nil {
		selected = []models.ScoredArchetype{}
	}

	return &Output{
		Status:                 status,
		SelectedArchetypes:     selected,
		K5Envelope:             result.Envelope,
		StrategyUsed:           result.Selection.Strategy,
		SemanticCoherenceScore: result.Selection.CoherenceScore,
		FilteringStats:         result.Selection.Stats,
		MappingMetadata:        mappingMeta,
		UserSemanticProfile:    profile,
		EnvelopeIssues:         result.Integrity.Issues,
	}, nil
}

// classifyCatalogError maps repository failures onto the retryable error
// taxonomy.
func classifyCatalogError(err error) *apperrors.StandardError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewCatalogQueryTimeoutError("archetypes")
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") {
		return apperrors.NewCatalogConnectionFailedError(err)
	}

	return apperrors.NewCatalogQueryFailedError("archetypes", err)
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

// Execute exposes the matching cycle for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
