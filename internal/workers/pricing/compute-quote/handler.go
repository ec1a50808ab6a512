// internal/workers/pricing/compute-quote/handler.go
package computequote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "formation-engine/internal/common/errors"
	"formation-engine/internal/common/logger"
	"formation-engine/internal/common/metrics"
	"formation-engine/internal/common/observability"
	"formation-engine/internal/models"
	"formation-engine/internal/pricing"
	"formation-engine/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "compute-formation-quote"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

type ApplicationStore interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
}

type PromotionUsageStore interface {
	CyclesConsumed(ctx context.Context, applicationID string) (map[string]int, error)
}

type Handler struct {
	config       *Config
	applications ApplicationStore
	usage        PromotionUsageStore
	catalogs     pricing.CatalogSource
	calculator   *pricing.Calculator
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(
	config *Config,
	applications ApplicationStore,
	usage PromotionUsageStore,
	catalogs pricing.CatalogSource,
	calculator *pricing.Calculator,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		applications: applications,
		usage:        usage,
		catalogs:     catalogs,
		calculator:   calculator,
		obs:          obs,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
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
		h.fail(ctx, client, job, start, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, classify(err))
		return
	}

	h.completeJob(ctx, client, job, start, output)
}

// Execute exposes execute for testing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrInvalidInput)
	}
	asOf, err := h.parseAsOf(input.AsOf)
	if err != nil {
		return nil, err
	}

	ctx, span := h.obs.StartSpan(ctx, "pricing.compute_quote",
		attribute.String("application.id", input.ApplicationID),
		attribute.String("quote.as_of", asOf.Format(time.RFC3339)))
	defer span.End()

	var (
		app    *models.Application
		cycles map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := h.applications.GetApplication(gctx, input.ApplicationID)
		if err != nil {
			if errors.Is(err, store.ErrApplicationNotFound) {
				return apperrors.NewApplicationNotFoundError(input.ApplicationID)
			}
			return err
		}
		app = a
		return nil
	})
	g.Go(func() error {
		c, err := h.usage.CyclesConsumed(gctx, input.ApplicationID)
		if err != nil {
			return err
		}
		cycles = c
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("freezone.id", app.FreezoneID))

	resolveStart := time.Now()
	catalog, err := h.catalogs.ActiveCatalogFor(ctx, app.FreezoneID, asOf)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, h.configurationError(app, asOf, err)
	}

	quote, err := h.calculator.Quote(app, catalog, pricing.QuoteContext{
		AsOf:                  asOf,
		RenewalCyclesConsumed: cycles,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, h.configurationError(app, asOf, err)
	}
	h.obs.RecordQuoteDuration(ctx, app.FreezoneID, time.Since(resolveStart))

	metrics.QuotesTotal.WithLabelValues(app.FreezoneID).Inc()
	for _, li := range quote.LineItems {
		if li.Waived {
			metrics.WaivedLinesTotal.WithLabelValues(li.PromotionKey).Inc()
		}
	}

	h.logger.Info("quote computed", map[string]interface{}{
		"applicationId":  app.ID,
		"freezoneId":     app.FreezoneID,
		"catalogId":      catalog.ID,
		"catalogVersion": catalog.Version,
		"lineItems":      len(quote.LineItems),
		"total":          quote.Total.String(),
		"warnings":       len(quote.Warnings),
	})

	return newOutput(app.FreezoneID, quote), nil
}

// parseAsOf accepts an RFC 3339 timestamp or a calendar date, which is read
// as the start of that day in the configured location.
func (h *Handler) parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return h.now(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, h.config.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: asOf %q is neither RFC 3339 nor YYYY-MM-DD", ErrInvalidInput, raw)
	}
	return t, nil
}

// configurationError maps catalog faults onto their error codes. They need an
// operator, so they are logged at error level and never retried.
func (h *Handler) configurationError(app *models.Application, asOf time.Time, err error) error {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, pricing.ErrCatalogNotActive):
		stdErr = apperrors.NewCatalogNotActiveError(app.FreezoneID, asOf)
	case errors.Is(err, pricing.ErrCatalogAmbiguous):
		stdErr = apperrors.NewCatalogAmbiguousError(app.FreezoneID)
	case errors.Is(err, pricing.ErrCatalogInvalid):
		stdErr = apperrors.NewCatalogInvalidError(err.Error())
	case errors.Is(err, pricing.ErrLicensePackageNotFound):
		stdErr = apperrors.NewLicensePackageNotFoundError(err.Error())
	case errors.Is(err, pricing.ErrFeeNotConfigured):
		stdErr = apperrors.NewFeeNotConfiguredError(err.Error())
	default:
		return err
	}

	metrics.ConfigurationErrorsTotal.WithLabelValues(string(stdErr.Code)).Inc()
	h.logger.Error("pricing configuration error", map[string]interface{}{
		"applicationId": app.ID,
		"freezoneId":    app.FreezoneID,
		"asOf":          asOf.Format(time.RFC3339),
		"errorCode":     string(stdErr.Code),
		"error":         err.Error(),
	})
	return stdErr
}

func classify(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError("compute_quote")
	case errors.Is(err, store.ErrQueryFailed):
		return apperrors.NewQueryExecutionFailedError("compute_quote", err)
	default:
		return apperrors.Normalize(err)
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		h.fail(ctx, client, job, start, apperrors.Normalize(err))
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error":  err.Error(),
			"jobKey": job.Key,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}
