package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/writemytrip/ownerdesk/internal/app"
	jobmetrics "github.com/writemytrip/ownerdesk/internal/jobs"
	"github.com/writemytrip/ownerdesk/internal/platform/cache"
	"github.com/writemytrip/ownerdesk/internal/platform/db"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}

	if len(os.Args) > 1 {
		if err := runCommand(ctx, redisOpt, os.Args[1:]); err != nil {
			logger.Error("worker command", slog.String("command", os.Args[1]), slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, TimeZone: cfg.AppTimezone})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	refresher := reporting.NewRefresher(reportCache, logger, reporting.NewMetrics(nil))
	reportService := reporting.NewService(reporting.NewPGStore(pool), refresher, reporting.Config{
		Location:       cfg.Location(),
		CommissionRate: cfg.CommissionRate,
	})

	warmupJob := jobs.NewReportWarmupJob(jobs.NewPGOwnerSource(pool), reportService, logger, jobmetrics.NewMetrics(nil))
	warmupTask, err := jobs.NewReportWarmupTask(uuid.Nil)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpt,
		Logger:    logger,
		Location:  cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("warmup_cron", cfg.WarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, redisOpt asynq.RedisClientOpt, args []string) error {
	cli := NewJobsCLI(redisOpt)
	defer func() { _ = cli.Close() }()

	switch args[0] {
	case "warmup":
		owner := ""
		if len(args) > 1 {
			owner = args[1]
		}
		info, err := cli.TriggerWarmup(ctx, owner)
		if err != nil {
			return err
		}
		fmt.Printf("queued %s as %s\n", info.Type, info.ID)
	case "stats":
		stats, err := cli.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	default:
		return fmt.Errorf("unknown command %q (want warmup [owner-id] or stats)", args[0])
	}
	return nil
}
