package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/writemytrip/ownerdesk/internal/jobs"
	"github.com/writemytrip/ownerdesk/internal/platform/db"
	"github.com/writemytrip/ownerdesk/internal/reporting"
)

const warmupJobName = "report_warmup"

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OwnerSource lists the owners whose reports are worth precomputing.
type OwnerSource interface {
	OwnersWithProperties(ctx context.Context) ([]uuid.UUID, error)
}

// ReportBuilder runs the tracked owner reports. Each run commits its
// snapshot to the report cache.
type ReportBuilder interface {
	Dashboard(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[reporting.DashboardReport], error)
	Finance(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[reporting.FinanceReport], error)
}

// ReportWarmupJob precomputes dashboard and finance snapshots.
type ReportWarmupJob struct {
	Owners  OwnerSource
	Reports ReportBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	// OwnerTimeout bounds the reports of a single owner.
	OwnerTimeout time.Duration
	clock        func() time.Time
}

// NewReportWarmupJob wires dependencies for the warm-up handler.
func NewReportWarmupJob(owners OwnerSource, reports ReportBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Owners:       owners,
		Reports:      reports,
		Logger:       logger,
		Metrics:      metrics,
		OwnerTimeout: 30 * time.Second,
		clock:        time.Now,
	}
}

// Handle processes report warm-up tasks. Owners whose reports could not be
// built make the task fail so asynq retries it.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("report warmup: decode payload: %w", asynq.SkipRetry)
	}
	ownerID, single, err := payload.Owner()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(warmupJobName)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()

	owners := []uuid.UUID{ownerID}
	if !single {
		if j.Owners == nil {
			return errors.New("report warmup: owner source not configured")
		}
		owners, err = j.Owners.OwnersWithProperties(ctx)
		if err != nil {
			logger.Error("load warmup owners", slog.Any("error", err))
			return err
		}
	}
	if len(owners) == 0 {
		logger.Info("no owners to warm")
		return nil
	}

	var failed []error
	for _, owner := range owners {
		if err := j.warmOwner(ctx, owner); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("warm owner reports", slog.String("owner_id", owner.String()), slog.Any("error", err))
			failed = append(failed, err)
		}
	}
	warmed := len(owners) - len(failed)
	j.metrics().AddOwners(warmupJobName, "warmed", warmed)
	j.metrics().AddOwners(warmupJobName, "failed", len(failed))
	logger.Info("completed report warmup",
		slog.Int("owners", len(owners)),
		slog.Int("failed", len(failed)),
		slog.Duration("duration", j.now().Sub(start)))
	return errors.Join(failed...)
}

// errStaleWarmup marks a run that could only serve a fallback snapshot.
var errStaleWarmup = errors.New("report build failed")

func (j *ReportWarmupJob) warmOwner(ctx context.Context, ownerID uuid.UUID) error {
	if j.OwnerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.OwnerTimeout)
		defer cancel()
	}
	dash, err := j.Reports.Dashboard(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("owner %s dashboard: %w", ownerID, err)
	}
	if dash.Notice == reporting.NoticeFetchFailed {
		return fmt.Errorf("owner %s dashboard: %w", ownerID, errStaleWarmup)
	}
	fin, err := j.Reports.Finance(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("owner %s finance: %w", ownerID, err)
	}
	if fin.Notice == reporting.NoticeFetchFailed {
		return fmt.Errorf("owner %s finance: %w", ownerID, errStaleWarmup)
	}
	return nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}

// PGOwnerSource reads owners from PostgreSQL.
type PGOwnerSource struct {
	pool *pgxpool.Pool
}

// NewPGOwnerSource constructs a PGOwnerSource.
func NewPGOwnerSource(pool *pgxpool.Pool) *PGOwnerSource {
	return &PGOwnerSource{pool: pool}
}

// OwnersWithProperties lists owners that have at least one property.
func (s *PGOwnerSource) OwnersWithProperties(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT owner_id FROM hotels WHERE owner_id IS NOT NULL ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("report warmup: list owners: %w", err)
	}
	return db.Collect(rows, func(row pgx.Row) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
}
