// internal/workers/bodyscan/build-envelope/handler.go
package buildenvelope

import (
	"context"
	"encoding/json"
	"fmt"
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
	TaskType = "build-envelope"
)

// CatalogStore resolves explicit archetype id lists.
type CatalogStore interface {
	ArchetypesByIDs(ctx context.Context, ids []string) ([]models.Archetype, error)
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
	if !input.SexCode.Valid() {
		return nil, apperrors.NewValidationFailedError("sex_code must be masculine or feminine")
	}
	if len(input.ArchetypeIDs) == 0 {
		return nil, apperrors.NewValidationFailedError("archetype_ids must not be empty")
	}

	mapping, mappingMeta, err := h.mappings.Resolve(ctx, input.SexCode)
	if err != nil {
		return nil, err
	}

	archetypes, err := h.catalog.ArchetypesByIDs(ctx, input.ArchetypeIDs)
	if err != nil {
		return nil, apperrors.NewCatalogQueryFailedError("archetypes by ids", err)
	}
	if len(archetypes) == 0 {
		return nil, apperrors.NewArchetypesNotFoundError(fmt.Sprintf("ids: %v", input.ArchetypeIDs))
	}

	scored := make([]models.ScoredArchetype, len(archetypes))
	for i, a := range archetypes {
		scored[i] = models.ScoredArchetype{Archetype: a}
	}

	envelope := matching.BuildEnvelope(scored, mapping, h.config.Envelope)
	report := matching.ValidateEnvelope(envelope)
	if report.Corrected != nil {
		envelope = *report.Corrected
		metrics.EnvelopeCorrections.Inc()
	}

	h.logger.Info("envelope built", map[string]interface{}{
		"archetypes":   len(archetypes),
		"totalKeys":    envelope.Metadata.TotalKeysProcessed,
		"fallbackKeys": envelope.Metadata.KeysUsingDBFallback,
	})

	return &Output{
		K5Envelope:      envelope,
		MappingMetadata: mappingMeta,
		EnvelopeIssues:  report.Issues,
	}, nil
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

// Execute exposes envelope construction for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
