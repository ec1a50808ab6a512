// internal/workers/formation/advance-step/handler.go
package advancestep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "formation-engine/internal/common/errors"
	"formation-engine/internal/common/logger"
	"formation-engine/internal/common/metrics"
	"formation-engine/internal/common/validation"
	"formation-engine/internal/models"
	"formation-engine/internal/store"
	"formation-engine/internal/workflow"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "advance-formation-step"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

// FormationStore loads and persists the workflow aggregate.
type FormationStore interface {
	GetWorkflow(ctx context.Context, id string) (*models.WorkflowInstance, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	RecordStepOutcome(ctx context.Context, app *models.Application, step models.WorkflowStep, from models.StepStatus) error
}

type Handler struct {
	config       *Config
	store        FormationStore
	tracker      *workflow.Tracker
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, formationStore FormationStore, tracker *workflow.Tracker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        formationStore,
		tracker:      tracker,
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
		h.fail(ctx, client, job, classify(&input, err))
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.WorkflowInstanceID == "" {
		return nil, fmt.Errorf("%w: workflowInstanceId is required", ErrInvalidInput)
	}
	if input.StepNumber < 1 {
		return nil, fmt.Errorf("%w: stepNumber must be positive, got %d", ErrInvalidInput, input.StepNumber)
	}

	wf, err := h.store.GetWorkflow(ctx, input.WorkflowInstanceID)
	if err != nil {
		return nil, err
	}
	app, err := h.store.GetApplication(ctx, wf.ApplicationID)
	if err != nil {
		if errors.Is(err, store.ErrApplicationNotFound) {
			return nil, apperrors.NewApplicationNotFoundError(wf.ApplicationID)
		}
		return nil, err
	}

	if err := applySubmission(app, input.SubmittedData); err != nil {
		return nil, err
	}

	transition, err := h.tracker.Advance(wf.Steps, input.StepNumber, app)
	if err != nil {
		return nil, err
	}

	steps := replaceStep(wf.Steps, transition.Step)
	complete := false
	if next, ok := h.tracker.NextStep(steps, app); ok {
		app.FormationStep = next.StepType
	} else {
		app.FormationStep = transition.Step.StepType
		complete = true
	}
	app.CompletionPercentage = h.tracker.CompletionPercentage(steps, app)

	if err := h.store.RecordStepOutcome(ctx, app, transition.Step, transition.From); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			return nil, apperrors.NewConcurrentModificationError(app.ID)
		}
		return nil, err
	}

	metrics.StepTransitionsTotal.WithLabelValues(string(transition.Step.StepType), string(transition.Status)).Inc()

	h.logger.Info("step advanced", map[string]interface{}{
		"workflowInstanceId":   wf.ID,
		"applicationId":        app.ID,
		"stepNumber":           transition.Step.StepNumber,
		"stepType":             transition.Step.StepType,
		"from":                 transition.From,
		"status":               transition.Status,
		"violations":           len(transition.Violations),
		"completionPercentage": app.CompletionPercentage,
	})

	violations := transition.Violations
	if violations == nil {
		violations = validation.Violations{}
	}

	return &Output{
		WorkflowInstanceID:   wf.ID,
		ApplicationID:        app.ID,
		StepNumber:           transition.Step.StepNumber,
		StepType:             transition.Step.StepType,
		Status:               transition.Status,
		Errors:               violations.Messages(),
		Violations:           violations,
		FormationStep:        app.FormationStep,
		CompletionPercentage: app.CompletionPercentage,
		WorkflowComplete:     complete,
	}, nil
}

// applySubmission overlays the submitted fields onto app. A submitted list
// replaces the stored one whole; absent keys keep their stored value.
// Identity, status and version are owned by the store and survive the
// overlay.
func applySubmission(app *models.Application, data json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("%w: submittedData: %v", ErrInvalidInput, err)
	}
	// encoding/json decodes into existing slice elements, so a new person
	// would inherit fields left out of the submission.
	for key := range fields {
		switch {
		case strings.EqualFold(key, "shareholders"):
			app.Shareholders = nil
		case strings.EqualFold(key, "directors"):
			app.Directors = nil
		case strings.EqualFold(key, "nameOptions"):
			app.NameOptions = nil
		case strings.EqualFold(key, "activityCodes"):
			app.ActivityCodes = nil
		}
	}

	id, owner, status, version := app.ID, app.OwnerID, app.Status, app.Version
	createdAt := app.CreatedAt
	if err := json.Unmarshal(trimmed, app); err != nil {
		return fmt.Errorf("%w: submittedData: %v", ErrInvalidInput, err)
	}
	app.ID, app.OwnerID, app.Status, app.Version = id, owner, status, version
	app.CreatedAt = createdAt
	return nil
}

func replaceStep(steps []models.WorkflowStep, updated models.WorkflowStep) []models.WorkflowStep {
	out := make([]models.WorkflowStep, len(steps))
	copy(out, steps)
	for i := range out {
		if out[i].StepNumber == updated.StepNumber {
			out[i] = updated
		}
	}
	return out
}

func classify(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, store.ErrWorkflowNotFound):
		return apperrors.NewWorkflowNotFoundError(input.WorkflowInstanceID)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError("advance_step")
	case errors.Is(err, store.ErrQueryFailed):
		return apperrors.NewQueryExecutionFailedError("advance_step", err)
	case errors.Is(err, workflow.ErrStepNotFound):
		return apperrors.NewWorkflowContractError(apperrors.ErrCodeStepNotFound, err)
	case errors.Is(err, workflow.ErrInvalidTransition):
		return apperrors.NewWorkflowContractError(apperrors.ErrCodeInvalidStepTransition, err)
	case errors.Is(err, workflow.ErrStepOutOfOrder):
		return apperrors.NewWorkflowContractError(apperrors.ErrCodeStepOutOfOrder, err)
	case errors.Is(err, workflow.ErrStepSkipped):
		return apperrors.NewWorkflowContractError(apperrors.ErrCodeStepSkipped, err)
	case errors.Is(err, workflow.ErrNonContiguousSteps):
		return apperrors.NewWorkflowContractError(apperrors.ErrCodeNonContiguousSteps, err)
	case errors.Is(err, validation.ErrInvalidConstruction), errors.Is(err, validation.ErrUnknownKind):
		return apperrors.NewValidatorContractError(fmt.Sprintf("step %d", input.StepNumber), err)
	default:
		return apperrors.Normalize(err)
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
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
