package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/fantasy-contest/internal/app"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/platform/tracing"
)

var jobTracer = tracing.New("fantasy-contest/cmd/worker", "")

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger := app.NewLogger(cfg).Named("worker")
	defer func() { _ = logger.Sync() }()

	stopObservability, err := app.StartObservability(cfg, logger)
	if err != nil {
		logger.Error("start observability", "error", err)
		os.Exit(1)
	}
	defer stopObservability()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		logger.Error("create scheduler", "error", err)
		os.Exit(1)
	}

	if container.Ingestion != nil {
		if _, err := scheduler.NewJob(
			gocron.DurationJob(cfg.JobLiveInterval),
			gocron.NewTask(func() { runIngestion(ctx, container, logger) }),
			gocron.WithName("live-stats-ingestion"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		); err != nil {
			logger.Error("schedule ingestion", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("live stats ingestion not scheduled, provider disabled")
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.JobSettlementSweepInterval),
		gocron.NewTask(func() { runSweep(ctx, container, logger) }),
		gocron.WithName("settlement-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		logger.Error("schedule settlement sweep", "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("worker started",
		"live_interval", cfg.JobLiveInterval,
		"sweep_interval", cfg.JobSettlementSweepInterval,
	)

	<-ctx.Done()

	if err := scheduler.Shutdown(); err != nil {
		logger.Error("scheduler shutdown failed", "error", err)
	}
	logger.Info("worker stopped")
}

func runIngestion(ctx context.Context, c *app.Container, logger *logging.Logger) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := jobTracer.StartRoot(ctx, "worker.LiveStatsIngestion")
	defer span.End()

	report, err := c.Ingestion.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "live stats ingestion failed", "error", err)
		return
	}
	logger.InfoContext(ctx, "live stats ingestion finished",
		"fixtures_selected", report.FixturesSelected,
		"fixtures_processed", report.FixturesProcessed,
		"stats_upserted", report.StatsUpserted,
		"dispatched", len(report.Dispatched),
		"failures", len(report.Failures),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
}

func runSweep(ctx context.Context, c *app.Container, logger *logging.Logger) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := jobTracer.StartRoot(ctx, "worker.SettlementSweep")
	defer span.End()

	dispatched := c.Sweep.Run(ctx)
	if len(dispatched) > 0 {
		logger.InfoContext(ctx, "settlement sweep dispatched", "competitions", dispatched)
	}
}
