// internal/workers/formation/validate-payload/handler.go
package validatepayload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "formation-engine/internal/common/errors"
	"formation-engine/internal/common/logger"
	"formation-engine/internal/common/metrics"
	"formation-engine/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-formation-payload"
)

var (
	ErrMissingKind = errors.New("MISSING_KIND")
)

type Handler struct {
	config       *Config
	registry     *validation.Registry
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, registry *validation.Registry, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		registry:     registry,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, classify(input.Kind, err))
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute exposes execute for testing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Kind == "" {
		return nil, fmt.Errorf("%w: kind is required", ErrMissingKind)
	}

	vs, err := h.registry.Validate(validation.Kind(input.Kind), input.Payload)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = validation.Violations{}
	}

	result := metrics.ResultValid
	if !vs.Valid() {
		result = metrics.ResultInvalid
	}
	metrics.ValidationsTotal.WithLabelValues(input.Kind, result).Inc()

	h.logger.Debug("payload validated", map[string]interface{}{
		"kind":       input.Kind,
		"violations": len(vs),
	})

	return &Output{
		Kind:       input.Kind,
		IsValid:    vs.Valid(),
		Errors:     vs.Messages(),
		Violations: vs,
	}, nil
}

func classify(kind string, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, validation.ErrUnknownKind):
		return apperrors.NewUnknownValidatorError(kind)
	case errors.Is(err, validation.ErrInvalidConstruction):
		return apperrors.NewValidatorContractError(kind, err)
	case errors.Is(err, ErrMissingKind):
		return apperrors.NewInvalidInputError(err.Error())
	default:
		return apperrors.Normalize(err)
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	if apperrors.IsConfigurationError(stdErr.Code) {
		metrics.ConfigurationErrorsTotal.WithLabelValues(string(stdErr.Code)).Inc()
	}
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		h.fail(ctx, client, job, apperrors.Normalize(err))
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error":  err.Error(),
			"jobKey": job.Key,
		})
	}
}
