package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"adstudio/internal/bootstrap"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	req, err := parseRequest(args, time.Now(), stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// stdout carries the event stream
	logger := infra.NewLoggerTo(cfg.AppEnv, stderr).With().Str("cmd", "adgen").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("adgen: db connection failed")
		return 1
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("adgen: redis connection failed")
			return 1
		}
		defer redisClient.Close()
	}

	services, err := bootstrap.NewServices(cfg, infra.NewSQLRunner(pool, logger), bootstrap.NewLocker(redisClient, logger), logger)
	if err != nil {
		logger.Error().Err(err).Msg("adgen: failed to configure pipeline")
		return 1
	}

	return streamBatch(ctx, services.Batch, req, cfg.EventBuffer, stdout, logger)
}

func parseRequest(args []string, now time.Time, stderr io.Writer) (domain.BatchRequest, error) {
	var req domain.BatchRequest
	fs := flag.NewFlagSet("adgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.IntVar(&req.Year, "year", now.Year(), "target year")
	fs.IntVar(&req.Month, "month", int(now.Month()), "target month (1-12)")
	fs.BoolVar(&req.IsTest, "test", false, "generate a single test day")
	if err := fs.Parse(args); err != nil {
		return req, err
	}
	if req.ProjectID == "" {
		return req, fmt.Errorf("-project is required")
	}
	return req, nil
}

// streamBatch writes every event as one NDJSON line and returns 1 when the
// batch ended with an error event.
func streamBatch(ctx context.Context, batch pipeline.BatchRunner, req domain.BatchRequest, buffer int, stdout io.Writer, logger infra.Logger) int {
	out := bufio.NewWriter(stdout)
	defer out.Flush()
	writer := pipeline.NewNDJSONWriter(out, func() { _ = out.Flush() })

	code := 0
	stream := pipeline.Stream(ctx, batch, req, buffer)
	for ev := range stream.Events() {
		if ev.Type == domain.EventError {
			code = 1
		}
		if err := writer.Write(ev); err != nil {
			logger.Error().Err(err).Msg("adgen: write event failed")
		}
	}
	return code
}
