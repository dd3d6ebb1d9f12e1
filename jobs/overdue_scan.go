package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/evita-erp/evita-erp/internal/analytics"
	"github.com/evita-erp/evita-erp/internal/invoicing"
	jobmetrics "github.com/evita-erp/evita-erp/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueScanJob stamps the stored vencido flag on every invoice whose
// due date passed. Account status derivation reads only this flag, so
// the scan is what makes overdue invoices visible to collections.
type OverdueScanJob struct {
	Invoicing *invoicing.Service
	Analytics *analytics.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewOverdueScanJob wires dependencies for the scan handler.
func NewOverdueScanJob(invoicingSvc *invoicing.Service, analyticsSvc *analytics.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Invoicing: invoicingSvc,
		Analytics: analyticsSvc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue scan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoicing == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	tracker := j.metrics().Track(TaskOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Time("as_of", asOf))
	logger.Info("starting overdue scan")

	stamped, err := j.Invoicing.MarkOverdue(ctx, asOf)
	if err != nil {
		resultErr = err
		logger.Error("mark overdue", slog.Any("error", err))
		return resultErr
	}

	if stamped > 0 && j.Analytics != nil {
		if err := j.Analytics.Invalidate(ctx); err != nil {
			logger.Warn("bump analytics cache", slog.Any("error", err))
		}
	}

	logger.Info("completed overdue scan", slog.Int64("stamped", stamped))
	return resultErr
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskOverdueScan))
}

func (j *OverdueScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
