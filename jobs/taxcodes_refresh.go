package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/alima/supply/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TaxCodeRefresher reloads the cached SAT code set.
type TaxCodeRefresher interface {
	Refresh(ctx context.Context) ([]string, error)
}

// TaxCodesRefreshJob replaces the Redis copy of the SAT product codes.
type TaxCodesRefreshJob struct {
	Store   TaxCodeRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewTaxCodesRefreshJob wires dependencies for the refresh handler.
func NewTaxCodesRefreshJob(store TaxCodeRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *TaxCodesRefreshJob {
	return &TaxCodesRefreshJob{Store: store, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes TaskTaxCodesRefresh tasks.
func (j *TaxCodesRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("taxcodes refresh: handler not configured")
	}
	var payload TaxCodesRefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskTaxCodesRefresh)
	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	start := time.Now()
	codes, err := j.Store.Refresh(ctx)
	if err != nil {
		logger.Error("refresh tax codes", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddItems(TaskTaxCodesRefresh, len(codes))
	logger.Info("refreshed tax codes", slog.Int("codes", len(codes)), slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *TaxCodesRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTaxCodesRefresh))
	}
	return slog.Default().With(slog.String("job", TaskTaxCodesRefresh))
}

func (j *TaxCodesRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
