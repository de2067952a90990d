package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"adstudio/internal/adapter/repo"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

type enqueuer interface {
	Enqueue(ctx context.Context, req domain.BatchRequest) (pipeline.QueuedBatch, error)
}

type projectLister interface {
	List(ctx context.Context) ([]domain.Project, error)
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "scheduler").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("scheduler: REDIS_URL is required")
	}
	client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: redis connection failed")
	}
	defer client.Close()

	pool, err := infra.NewDBPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: db connection failed")
	}
	defer pool.Close()

	projects := repo.NewProjectRepository(infra.NewSQLRunner(pool, logger))
	queue := pipeline.NewQueue(client)

	c := cron.New()
	_, err = c.AddFunc(cfg.ScheduleCron, func() {
		n, err := enqueueNextMonth(ctx, projects, queue, time.Now())
		if err != nil {
			logger.Error().Err(err).Int("enqueued", n).Msg("scheduler: enqueue failed")
			return
		}
		logger.Info().Int("enqueued", n).Msg("scheduler: next month queued")
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.ScheduleCron).Msg("scheduler: invalid SCHEDULE_CRON")
	}
	c.Start()
	logger.Info().Str("schedule", cfg.ScheduleCron).Msg("scheduler: started")

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("scheduler: stopped")
}

// enqueueNextMonth queues a live batch for the month after now for every
// project and returns how many were queued.
func enqueueNextMonth(ctx context.Context, projects projectLister, queue enqueuer, now time.Time) (int, error) {
	next := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	list, err := projects.List(ctx)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, p := range list {
		req := domain.BatchRequest{ProjectID: p.ID, Year: next.Year(), Month: int(next.Month())}
		if _, err := queue.Enqueue(ctx, req); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}
