package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/alima/supply/internal/jobs"
	"github.com/alima/supply/internal/pricelists"
	"github.com/alima/supply/internal/suppliers"
)

// BranchSource resolves restaurant branches by id.
type BranchSource interface {
	BranchesByIDs(ctx context.Context, ids []uuid.UUID) ([]suppliers.Branch, error)
}

// NoticeStore persists one notice per branch and version. Recording the
// same (branch, price list, version) twice is a no-op.
type NoticeStore interface {
	RecordNotices(ctx context.Context, evt pricelists.PublishedEvent, branches []suppliers.Branch) (int, error)
}

// PriceListPublishedJob fans a published version out to its branches.
type PriceListPublishedJob struct {
	Branches BranchSource
	Notices  NoticeStore
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewPriceListPublishedJob wires dependencies for the notification handler.
func NewPriceListPublishedJob(branches BranchSource, notices NoticeStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *PriceListPublishedJob {
	return &PriceListPublishedJob{Branches: branches, Notices: notices, Logger: logger, Metrics: metrics}
}

// Handle processes TaskPriceListPublished tasks.
func (j *PriceListPublishedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Branches == nil || j.Notices == nil {
		return errors.New("pricelist published: handler not configured")
	}
	var evt pricelists.PublishedEvent
	if err := json.Unmarshal(t.Payload(), &evt); err != nil {
		return asynq.SkipRetry
	}
	if evt.PriceListID == uuid.Nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskPriceListPublished)
	logger := j.logger().With(
		slog.String("price_list_id", evt.PriceListID.String()),
		slog.Int64("version", evt.Version),
	)
	if len(evt.BranchIDs) == 0 {
		logger.Info("price list has no branches to notify")
		return tracker.End(nil)
	}

	branches, err := j.Branches.BranchesByIDs(ctx, evt.BranchIDs)
	if err != nil {
		logger.Error("load branches", slog.Any("error", err))
		return tracker.End(err)
	}
	if missing := len(evt.BranchIDs) - len(branches); missing > 0 {
		logger.Warn("some branches no longer exist", slog.Int("missing", missing))
	}
	recorded, err := j.Notices.RecordNotices(ctx, evt, branches)
	if err != nil {
		logger.Error("record notices", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddItems(TaskPriceListPublished, recorded)
	logger.Info("notified branches", slog.Int("branches", len(branches)), slog.Int("recorded", recorded))
	return tracker.End(nil)
}

func (j *PriceListPublishedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPriceListPublished))
	}
	return slog.Default().With(slog.String("job", TaskPriceListPublished))
}

func (j *PriceListPublishedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// PGNoticeStore writes notices to price_list_notifications.
type PGNoticeStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPGNoticeStore constructs the PostgreSQL notice store.
func NewPGNoticeStore(pool *pgxpool.Pool) *PGNoticeStore {
	return &PGNoticeStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// RecordNotices inserts the pending notices and returns how many were new.
func (s *PGNoticeStore) RecordNotices(ctx context.Context, evt pricelists.PublishedEvent, branches []suppliers.Branch) (int, error) {
	if s == nil || s.pool == nil {
		return 0, errors.New("pricelist published: pool not configured")
	}
	const query = `INSERT INTO price_list_notifications
		(id, restaurant_branch_id, price_list_id, version, price_list_name, price_count, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (restaurant_branch_id, price_list_id, version) DO NOTHING`
	recorded := 0
	now := s.now()
	for _, b := range branches {
		tag, err := s.pool.Exec(ctx, query, uuid.New(), b.ID, evt.PriceListID, evt.Version, evt.Name, evt.PriceCount, evt.PublishedAt, now)
		if err != nil {
			return recorded, err
		}
		recorded += int(tag.RowsAffected())
	}
	return recorded, nil
}
