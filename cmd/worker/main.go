package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"adstudio/internal/bootstrap"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

const (
	dequeueTimeout = 5 * time.Second
	retryDelay     = 2 * time.Second
)

type batchQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (pipeline.QueuedBatch, bool, error)
}

type batchWorker struct {
	queue  batchQueue
	batch  pipeline.BatchRunner
	logger infra.Logger
	sleep  func(ctx context.Context, d time.Duration)
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("worker: REDIS_URL is required")
	}
	client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer client.Close()

	pool, err := infra.NewDBPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	services, err := bootstrap.NewServices(cfg, infra.NewSQLRunner(pool, logger), bootstrap.NewLocker(client, logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure pipeline")
	}

	w := &batchWorker{queue: pipeline.NewQueue(client), batch: services.Batch, logger: logger, sleep: sleepContext}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *batchWorker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, ok, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("worker: failed to dequeue batch")
			w.sleep(ctx, retryDelay)
			continue
		}
		if !ok {
			continue
		}
		w.handle(ctx, job)
	}
}

func (w *batchWorker) handle(ctx context.Context, job pipeline.QueuedBatch) {
	logger := w.logger.With().
		Str("job_id", job.ID).
		Str("project_id", job.Request.ProjectID).
		Int("year", job.Request.Year).
		Int("month", job.Request.Month).
		Logger()
	logger.Info().Msg("worker: picked batch")

	err := w.batch.Run(ctx, job.Request, func(ev domain.ProgressEvent) {
		switch ev.Type {
		case domain.EventLog:
			logger.Debug().Msg(ev.Message)
		case domain.EventResult:
			e := logger.Info()
			if ev.Status == domain.DayStatusError {
				e = logger.Warn()
			}
			e.Str("date", ev.Date).Str("status", string(ev.Status)).Str("file", ev.File).Str("error", ev.Error).Msg("worker: day finished")
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("worker: batch failed")
		return
	}
	logger.Info().Msg("worker: batch done")
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
